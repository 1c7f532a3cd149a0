package twse

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/tsubasarcs/etf-strategy-automation/internal/contracts"
)

// twt49uResponse is the TWT49U (ex-dividend announcements) envelope.
type twt49uResponse struct {
	Stat   string     `json:"stat"`
	Fields []string   `json:"fields"`
	Data   [][]string `json:"data"`
}

// exDividendEntry is one announced ex-dividend event.
type exDividendEntry struct {
	Code   string
	ExDate time.Time
}

// FetchExDividends fetches announced ex-dividend events for the month
// containing the given date.
func (c *Client) FetchExDividends(ctx context.Context, month time.Time) ([]exDividendEntry, error) {
	url := fmt.Sprintf("%s/rwd/zh/afterTrading/TWT49U?response=json&date=%s",
		c.baseURL, month.In(c.loc).Format("20060102"))

	var resp twt49uResponse
	if err := c.httpClient.GetJSON(ctx, url, requestHeaders, &resp); err != nil {
		return nil, fmt.Errorf("fetch TWT49U failed: %w", err)
	}

	if resp.Stat != "OK" {
		c.logger.WithFields(map[string]interface{}{
			"month": month.Format("2006-01"),
			"stat":  resp.Stat,
		}).Debug("TWT49U returned no data")
		return nil, nil
	}

	var entries []exDividendEntry
	for _, row := range resp.Data {
		if len(row) < 2 {
			continue
		}
		code := strings.TrimSpace(row[0])
		exDate, err := parseFlexibleDate(strings.TrimSpace(row[1]), c.loc)
		if err != nil {
			continue
		}
		entries = append(entries, exDividendEntry{Code: code, ExDate: exDate})
	}
	return entries, nil
}

// FetchDividendCalendar sweeps announced ex-dividend events from
// monthsBack months in the past through monthsAhead months out and
// keeps only the tracked codes.
func (c *Client) FetchDividendCalendar(ctx context.Context, codes []string, monthsBack, monthsAhead int, now time.Time) (contracts.DividendCalendar, error) {
	tracked := make(map[string]bool, len(codes))
	for _, code := range codes {
		tracked[code] = true
	}

	calendar := make(contracts.DividendCalendar)
	for offset := -monthsBack; offset <= monthsAhead; offset++ {
		month := now.In(c.loc).AddDate(0, offset, 0)
		entries, err := c.FetchExDividends(ctx, month)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			c.logger.WithError(err).WithField("month", month.Format("2006-01")).
				Warn("Ex-dividend fetch failed, continuing")
			continue
		}
		for _, entry := range entries {
			if !tracked[entry.Code] {
				continue
			}
			calendar[entry.Code] = append(calendar[entry.Code], entry.ExDate.Format("2006-01-02"))
		}
	}

	// Dedupe and sort per code by merging into an empty calendar.
	return contracts.DividendCalendar{}.Merge(calendar), nil
}

// FetchDividendCalendarHTML scrapes the exchange's ETF dividend
// calendar page. Fallback path when the JSON endpoint has no rows for
// upcoming events.
func (c *Client) FetchDividendCalendarHTML(ctx context.Context, codes []string) (contracts.DividendCalendar, error) {
	url := c.baseURL + "/zh/ETFortune/dividendCalendar"

	resp, err := c.httpClient.Get(ctx, url, requestHeaders)
	if err != nil {
		return nil, fmt.Errorf("fetch dividend calendar page failed: %w", err)
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse dividend calendar page failed: %w", err)
	}

	return c.parseDividendCalendarDoc(doc, codes), nil
}

// parseDividendCalendarDoc walks table rows looking for tracked codes
// and a date-shaped cell in the same row.
func (c *Client) parseDividendCalendarDoc(doc *goquery.Document, codes []string) contracts.DividendCalendar {
	tracked := make(map[string]bool, len(codes))
	for _, code := range codes {
		tracked[code] = true
	}

	found := make(contracts.DividendCalendar)
	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		var code string
		var dates []string
		row.Find("td").Each(func(_ int, cell *goquery.Selection) {
			text := strings.TrimSpace(cell.Text())
			if code == "" && tracked[text] {
				code = text
				return
			}
			if m := dateCellPattern.FindString(text); m != "" {
				if d, err := parseFlexibleDate(m, c.loc); err == nil {
					dates = append(dates, d.Format("2006-01-02"))
				}
			}
		})
		if code != "" && len(dates) > 0 {
			found[code] = append(found[code], dates...)
		}
	})

	calendar := contracts.DividendCalendar{}.Merge(found)
	c.logger.WithFields(map[string]interface{}{
		"codes": len(calendar),
		"dates": calendar.TotalDates(),
	}).Debug("Parsed dividend calendar page")
	return calendar
}

var dateCellPattern = regexp.MustCompile(`\d{2,4}[/-]\d{1,2}[/-]\d{1,2}`)

// parseFlexibleDate handles the date shapes the exchange emits:
// 20250716, 2025-07-16, 2025/07/16, and ROC 114/07/16.
func parseFlexibleDate(s string, loc *time.Location) (time.Time, error) {
	for _, layout := range []string{"20060102", "2006-01-02", "2006/01/02"} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return parseROCDate(s, loc)
}
