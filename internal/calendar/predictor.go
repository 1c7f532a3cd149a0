package calendar

import (
	"context"
	"time"

	"github.com/tsubasarcs/etf-strategy-automation/internal/contracts"
	"github.com/tsubasarcs/etf-strategy-automation/pkg/logger"
)

// Schedule describes an ETF's recurring payout pattern: which months
// it goes ex-dividend and on roughly which day.
type Schedule struct {
	Months []int
	Day    int
}

const (
	defaultHorizonMonths = 18
	defaultMaxPerETF     = 6
)

// Predictor generates expected ex-dividend dates from known quarterly
// payout patterns. Last-resort source when no confirmed dates are
// available from the exchange or storage.
type Predictor struct {
	schedules     map[string]Schedule
	horizonMonths int
	maxPerETF     int
	loc           *time.Location
	logger        *logger.Logger
}

// NewPredictor creates a predictor over the given payout schedules.
func NewPredictor(schedules map[string]Schedule, log *logger.Logger) *Predictor {
	loc, err := time.LoadLocation("Asia/Taipei")
	if err != nil {
		loc = time.FixedZone("CST", 8*60*60)
	}
	return &Predictor{
		schedules:     schedules,
		horizonMonths: defaultHorizonMonths,
		maxPerETF:     defaultMaxPerETF,
		loc:           loc,
		logger:        log,
	}
}

// Predict returns future pattern dates per ETF, strictly after today
// and within the horizon, capped per ETF, sorted ascending.
func (p *Predictor) Predict(today time.Time) contracts.DividendCalendar {
	today = today.In(p.loc)
	horizon := today.AddDate(0, p.horizonMonths, 0)

	predicted := make(contracts.DividendCalendar)
	for code, schedule := range p.schedules {
		if len(schedule.Months) == 0 || schedule.Day < 1 {
			continue
		}

		var dates []string
		for year := today.Year(); year <= horizon.Year(); year++ {
			for _, month := range schedule.Months {
				d := time.Date(year, time.Month(month), schedule.Day, 0, 0, 0, 0, p.loc)
				if !d.After(today) || d.After(horizon) {
					continue
				}
				dates = append(dates, d.Format("2006-01-02"))
			}
		}

		// Months within a year may be unordered in config.
		dates = contracts.DividendCalendar{code: dates}.Merge(nil)[code]
		if len(dates) > p.maxPerETF {
			dates = dates[:p.maxPerETF]
		}
		if len(dates) > 0 {
			predicted[code] = dates
		}
	}

	p.logger.WithFields(map[string]interface{}{
		"codes": len(predicted),
		"dates": predicted.TotalDates(),
	}).Debug("Predicted dividend dates from payout patterns")
	return predicted
}

// Provider adapts the predictor into a chain Provider. The now func
// is called at fetch time so long-lived chains stay current.
func (p *Predictor) Provider(now func() time.Time) Provider {
	return ProviderFunc{
		ProviderName: "pattern-predictor",
		Fn: func(ctx context.Context) (contracts.DividendCalendar, error) {
			return p.Predict(now()), nil
		},
	}
}
