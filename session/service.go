package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/coachfolio/portfolio"
	"github.com/coachfolio/portfolio/metrics"
	"go.uber.org/zap"
)

// QuoteFetcher fetches live prices. The result may be partial along with an
// error.
type QuoteFetcher interface {
	Quotes(ctx context.Context, symbols ...string) (portfolio.Quotes, error)
}

// Service opens trading sessions and applies their orders.
type Service struct {
	store    Store
	fallback portfolio.QuoteSource
	live     QuoteFetcher
	cash     portfolio.Money
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

type Option func(*Service)

// WithLiveQuotes makes valuations ask f first for prices.
func WithLiveQuotes(f QuoteFetcher) Option { return func(s *Service) { s.live = f } }

// WithStartingCash sets the cash of new sessions.
func WithStartingCash(m portfolio.Money) Option { return func(s *Service) { s.cash = m } }

func WithLogger(l *zap.Logger) Option { return func(s *Service) { s.logger = l } }

func WithMetrics(m *metrics.Metrics) Option { return func(s *Service) { s.metrics = m } }

// NewService returns a Service storing sessions in store. Valuations use
// fallback for prices that cannot be fetched live, fallback may be nil.
func NewService(store Store, fallback portfolio.QuoteSource, opts ...Option) *Service {
	s := &Service{
		store:    store,
		fallback: fallback,
		cash:     portfolio.DefaultStartingCash,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StartingCash returns the cash of sessions opened with Open.
func (s *Service) StartingCash() portfolio.Money { return s.cash }

// Open starts a session for ownerID with the configured starting cash.
func (s *Service) Open(ctx context.Context, ownerID string) (string, *portfolio.Ledger, error) {
	return s.OpenWithCash(ctx, ownerID, s.cash)
}

// OpenWithCash starts a session for ownerID with cash.
func (s *Service) OpenWithCash(ctx context.Context, ownerID string, cash portfolio.Money) (string, *portfolio.Ledger, error) {
	l, err := portfolio.Open(ownerID, cash)
	if err != nil {
		return "", nil, err
	}
	id, err := s.store.Create(ctx, l)
	if err != nil {
		return "", nil, fmt.Errorf("cannot open session: %w", err)
	}
	if s.metrics != nil {
		s.metrics.SessionsOpen.Inc()
	}
	s.logger.Info("session opened",
		zap.String("session", id),
		zap.String("owner", ownerID),
		zap.Stringer("cash", cash))
	return id, l, nil
}

// Ledger returns a copy of the ledger of session id.
func (s *Service) Ledger(ctx context.Context, id string) (*portfolio.Ledger, error) {
	return s.store.Load(ctx, id)
}

// PlaceOrder applies o to session id and returns the new portfolio. A rejected
// order returns a *portfolio.OrderError and leaves the session unchanged.
func (s *Service) PlaceOrder(ctx context.Context, id string, o portfolio.Order) (*portfolio.Portfolio, error) {
	l, err := s.store.Update(ctx, id, func(l *portfolio.Ledger) error { return l.Apply(o) })

	var rejected *portfolio.OrderError
	switch {
	case errors.As(err, &rejected):
		if s.metrics != nil {
			s.metrics.OrdersRejected.WithLabelValues(string(rejected.Kind)).Inc()
		}
		s.logger.Info("order rejected",
			zap.String("session", id),
			zap.Stringer("order", o),
			zap.String("kind", string(rejected.Kind)),
			zap.String("reason", rejected.Reason))
		return nil, err
	case err != nil:
		s.logger.Error("order failed", zap.String("session", id), zap.Stringer("order", o), zap.Error(err))
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.OrdersApplied.WithLabelValues(o.Side.String()).Inc()
	}
	p := l.Portfolio()
	s.logger.Info("order applied",
		zap.String("session", id),
		zap.Stringer("order", o),
		zap.Stringer("cash", p.Cash()))
	return p, nil
}

// Quotes returns the price source for the given symbols: live prices first,
// then the fallback source.
func (s *Service) Quotes(ctx context.Context, symbols ...string) portfolio.QuoteSource {
	chain := portfolio.QuoteChain{}
	if s.live != nil && len(symbols) > 0 {
		live, err := s.live.Quotes(ctx, symbols...)
		if err != nil {
			if s.metrics != nil {
				s.metrics.QuoteErrors.Inc()
			}
			s.logger.Warn("live quotes unavailable", zap.Strings("symbols", symbols), zap.Error(err))
		}
		if len(live) > 0 {
			chain = append(chain, live)
		}
	}
	if s.fallback != nil {
		chain = append(chain, s.fallback)
	}
	return chain
}

// Valuate values the portfolio of session id at the current prices.
func (s *Service) Valuate(ctx context.Context, id string) (portfolio.Valuation, *portfolio.Ledger, error) {
	start := time.Now()
	l, err := s.store.Load(ctx, id)
	if err != nil {
		return portfolio.Valuation{}, nil, err
	}
	v := l.Valuate(s.Quotes(ctx, l.Portfolio().Symbols()...))
	if s.metrics != nil {
		s.metrics.ValuationDur.Observe(time.Since(start).Seconds())
	}
	return v, l, nil
}

// Close ends session id.
func (s *Service) Close(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.SessionsOpen.Dec()
	}
	s.logger.Info("session closed", zap.String("session", id))
	return nil
}
