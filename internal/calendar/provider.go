package calendar

import (
	"context"

	"github.com/tsubasarcs/etf-strategy-automation/internal/contracts"
	"github.com/tsubasarcs/etf-strategy-automation/pkg/logger"
)

// Provider supplies ex-dividend dates from one source.
type Provider interface {
	Name() string
	Fetch(ctx context.Context) (contracts.DividendCalendar, error)
}

// ProviderFunc adapts a function into a named Provider.
type ProviderFunc struct {
	ProviderName string
	Fn           func(ctx context.Context) (contracts.DividendCalendar, error)
}

func (p ProviderFunc) Name() string { return p.ProviderName }

func (p ProviderFunc) Fetch(ctx context.Context) (contracts.DividendCalendar, error) {
	return p.Fn(ctx)
}

// Chain resolves the dividend calendar by trying providers in order.
// The first provider that returns a non-empty calendar wins; failures
// are logged and the next source is tried.
type Chain struct {
	providers []Provider
	logger    *logger.Logger
}

// NewChain creates a provider chain. Order matters: confirmed sources
// first, predictions last.
func NewChain(log *logger.Logger, providers ...Provider) *Chain {
	return &Chain{providers: providers, logger: log}
}

// Resolve returns the first non-empty calendar in the chain, or an
// empty calendar when every provider fails or comes back empty.
func (c *Chain) Resolve(ctx context.Context) contracts.DividendCalendar {
	for _, p := range c.providers {
		if ctx.Err() != nil {
			return contracts.DividendCalendar{}
		}

		calendar, err := p.Fetch(ctx)
		if err != nil {
			c.logger.WithError(err).WithField("provider", p.Name()).
				Warn("Calendar provider failed, trying next")
			continue
		}
		if calendar.TotalDates() == 0 {
			c.logger.WithField("provider", p.Name()).Debug("Calendar provider empty, trying next")
			continue
		}

		c.logger.WithFields(map[string]interface{}{
			"provider": p.Name(),
			"codes":    len(calendar),
			"dates":    calendar.TotalDates(),
		}).Info("Resolved dividend calendar")
		return calendar
	}

	c.logger.Warn("No calendar provider returned dates")
	return contracts.DividendCalendar{}
}
