package windows

import (
	"fmt"
	"sort"
	"time"

	"github.com/tsubasarcs/etf-strategy-automation/internal/contracts"
	"github.com/tsubasarcs/etf-strategy-automation/pkg/logger"
)

// Buy windows always open the day after the event; the close of each
// window comes from Bounds.
const buyWindowMinDays = 1

// Bounds sets the window boundaries in whole days around an ex-dividend
// date.
type Bounds struct {
	PostEventDays      int // last buy day after the event
	PreEventDays       int // furthest liquidate look-ahead before the event
	HighConfidenceDays int // last high confidence buy day
}

// DefaultBounds returns the built-in window boundaries.
func DefaultBounds() Bounds {
	return Bounds{PostEventDays: 7, PreEventDays: 3, HighConfidenceDays: 3}
}

// Detector classifies ETFs into dividend trading windows. Day offsets
// are computed on midnight-aligned exchange-local dates so that the
// window boundaries cannot drift with time of day.
type Detector struct {
	bounds Bounds
	loc    *time.Location
	logger *logger.Logger
}

// NewDetector creates a detector aligned to the Taiwan exchange calendar.
func NewDetector(bounds Bounds, log *logger.Logger) *Detector {
	loc, err := time.LoadLocation("Asia/Taipei")
	if err != nil {
		loc = time.FixedZone("CST", 8*60*60)
	}
	return &Detector{bounds: bounds, loc: loc, logger: log}
}

// FindWindows scans every (ETF, ex-dividend date) pair in the calendar
// and returns the hits, sorted by ascending profile priority, then
// ascending day offset. Malformed dates are skipped, never fatal.
func (d *Detector) FindWindows(calendar contracts.DividendCalendar, profiles map[string]contracts.ETFProfile, today time.Time) []contracts.WindowHit {
	day := d.midnight(today)

	var hits []contracts.WindowHit
	for _, code := range calendar.Codes() {
		profile := contracts.ProfileOr(profiles, code)

		for _, dateStr := range calendar[code] {
			eventDate, err := time.ParseInLocation("2006-01-02", dateStr, d.loc)
			if err != nil {
				d.logger.WithFields(map[string]interface{}{
					"code": code,
					"date": dateStr,
				}).Warn("Skipping unparsable ex-dividend date")
				continue
			}

			if hit, ok := d.buyWindow(code, eventDate, day, profile); ok {
				hits = append(hits, hit)
			}
			if hit, ok := d.liquidateWindow(code, eventDate, day, profile); ok {
				hits = append(hits, hit)
			}
		}
	}

	// Priority first, then the nearer offset; code and kind keep the
	// order fully deterministic when both still tie.
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Priority != hits[j].Priority {
			return hits[i].Priority < hits[j].Priority
		}
		if hits[i].DaysOffset != hits[j].DaysOffset {
			return hits[i].DaysOffset < hits[j].DaysOffset
		}
		if hits[i].Code != hits[j].Code {
			return hits[i].Code < hits[j].Code
		}
		return hits[i].Kind < hits[j].Kind
	})

	return hits
}

// buyWindow emits a POST_EVENT_BUY hit when today falls inside the
// post-event range. Recovery is strongest in the first few days, so
// confidence drops to medium past the high confidence boundary.
func (d *Detector) buyWindow(code string, eventDate, today time.Time, profile contracts.ETFProfile) (contracts.WindowHit, bool) {
	daysAfter := wholeDays(today.Sub(d.midnight(eventDate)))
	if daysAfter < buyWindowMinDays || daysAfter > d.bounds.PostEventDays {
		return contracts.WindowHit{}, false
	}

	confidence := contracts.ConfidenceHigh
	if daysAfter > d.bounds.HighConfidenceDays {
		confidence = contracts.ConfidenceMedium
	}

	return contracts.WindowHit{
		Code:       code,
		Kind:       contracts.WindowPostEventBuy,
		EventDate:  d.midnight(eventDate),
		DaysOffset: daysAfter,
		Confidence: confidence,
		Reason:     fmt.Sprintf("day %d after ex-dividend, recovery buy window", daysAfter),
		Priority:   profile.Priority,
	}, true
}

// liquidateWindow emits a PRE_EVENT_LIQUIDATE hit when the ex-dividend
// date is at most PreEventDays ahead. Liquidation timing is uniformly
// urgent inside the window, so confidence is always high.
func (d *Detector) liquidateWindow(code string, eventDate, today time.Time, profile contracts.ETFProfile) (contracts.WindowHit, bool) {
	daysTo := wholeDays(d.midnight(eventDate).Sub(today))
	if daysTo < 0 || daysTo > d.bounds.PreEventDays {
		return contracts.WindowHit{}, false
	}

	return contracts.WindowHit{
		Code:       code,
		Kind:       contracts.WindowPreEventLiquidate,
		EventDate:  d.midnight(eventDate),
		DaysOffset: daysTo,
		Confidence: contracts.ConfidenceHigh,
		Reason:     fmt.Sprintf("ex-dividend in %d day(s), prepare to liquidate", daysTo),
		Priority:   profile.Priority,
	}, true
}

// midnight truncates t to 00:00 in the detector's location.
func (d *Detector) midnight(t time.Time) time.Time {
	y, m, day := t.In(d.loc).Date()
	return time.Date(y, m, day, 0, 0, 0, 0, d.loc)
}

func wholeDays(delta time.Duration) int {
	return int(delta.Hours() / 24)
}
