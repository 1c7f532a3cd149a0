package twse

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/tsubasarcs/etf-strategy-automation/internal/contracts"
)

// stockDayResponse is the STOCK_DAY JSON envelope. Rows are string
// arrays: date, volume, turnover, open, high, low, close, change, count.
type stockDayResponse struct {
	Stat   string     `json:"stat"`
	Date   string     `json:"date"`
	Title  string     `json:"title"`
	Fields []string   `json:"fields"`
	Data   [][]string `json:"data"`
}

// FetchMonth fetches one month of daily bars for a stock. yearMonth is
// any day inside the target month; the exchange returns the whole month.
func (c *Client) FetchMonth(ctx context.Context, stockCode string, yearMonth time.Time) ([]contracts.PriceBar, error) {
	url := fmt.Sprintf("%s/exchangeReport/STOCK_DAY?response=json&date=%s01&stockNo=%s",
		c.baseURL, yearMonth.Format("200601"), stockCode)

	var resp stockDayResponse
	if err := c.httpClient.GetJSON(ctx, url, requestHeaders, &resp); err != nil {
		return nil, fmt.Errorf("fetch STOCK_DAY failed: %w", err)
	}

	if resp.Stat != "OK" {
		// Months with no trading data come back with a rejection stat.
		c.logger.WithFields(map[string]interface{}{
			"stock_code": stockCode,
			"month":      yearMonth.Format("2006-01"),
			"stat":       resp.Stat,
		}).Debug("STOCK_DAY returned no data")
		return nil, nil
	}

	bars := c.parseStockDayRows(stockCode, resp.Data)

	c.logger.WithFields(map[string]interface{}{
		"stock_code": stockCode,
		"month":      yearMonth.Format("2006-01"),
		"count":      len(bars),
	}).Debug("Fetched monthly bars")
	return bars, nil
}

// FetchHistory fetches the last monthsBack months of daily bars,
// deduplicated and sorted by date ascending.
func (c *Client) FetchHistory(ctx context.Context, stockCode string, monthsBack int, now time.Time) ([]contracts.PriceBar, error) {
	seen := make(map[string]bool)
	var bars []contracts.PriceBar

	for i := 0; i < monthsBack; i++ {
		month := now.In(c.loc).AddDate(0, -i, 0)
		monthly, err := c.FetchMonth(ctx, stockCode, month)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			c.logger.WithError(err).WithField("month", month.Format("2006-01")).
				Warn("Monthly fetch failed, continuing")
			continue
		}
		for _, bar := range monthly {
			key := bar.Date.Format("2006-01-02")
			if seen[key] {
				continue
			}
			seen[key] = true
			bars = append(bars, bar)
		}
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	return bars, nil
}

// parseStockDayRows parses the string rows, skipping malformed ones.
func (c *Client) parseStockDayRows(stockCode string, rows [][]string) []contracts.PriceBar {
	var bars []contracts.PriceBar
	for _, row := range rows {
		if len(row) < 9 {
			continue
		}

		date, err := parseROCDate(row[0], c.loc)
		if err != nil {
			c.logger.WithField("raw", row[0]).Warn("Skipping row with bad date")
			continue
		}

		volume, err1 := parseGroupedInt(row[1])
		turnover, err2 := parseGroupedFloat(row[2])
		open, err3 := parseGroupedFloat(row[3])
		high, err4 := parseGroupedFloat(row[4])
		low, err5 := parseGroupedFloat(row[5])
		closePrice, err6 := parseGroupedFloat(row[6])
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil || err5 != nil || err6 != nil {
			c.logger.WithField("date", row[0]).Warn("Skipping row with bad numbers")
			continue
		}

		bars = append(bars, contracts.PriceBar{
			Code:     stockCode,
			Date:     date,
			Open:     open,
			High:     high,
			Low:      low,
			Close:    closePrice,
			Volume:   volume,
			Turnover: turnover,
		})
	}
	return bars
}

// parseROCDate parses a Republic of China calendar date like
// "114/01/15" into 2025-01-15.
func parseROCDate(s string, loc *time.Location) (time.Time, error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 3 {
		return time.Time{}, fmt.Errorf("not a ROC date: %q", s)
	}

	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, fmt.Errorf("bad ROC year in %q", s)
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil || month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("bad month in %q", s)
	}
	day, err := strconv.Atoi(parts[2])
	if err != nil || day < 1 || day > 31 {
		return time.Time{}, fmt.Errorf("bad day in %q", s)
	}

	return time.Date(year+1911, time.Month(month), day, 0, 0, 0, 0, loc), nil
}

func parseGroupedFloat(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" || s == "--" {
		return 0, fmt.Errorf("empty numeric field")
	}
	return strconv.ParseFloat(s, 64)
}

func parseGroupedInt(s string) (int64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" || s == "--" {
		return 0, fmt.Errorf("empty numeric field")
	}
	return strconv.ParseInt(s, 10, 64)
}
