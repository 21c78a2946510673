// Package server exposes the trading sessions and the catalog as a JSON HTTP API.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/coachfolio/portfolio/advisor"
	"github.com/coachfolio/portfolio/catalog"
	"github.com/coachfolio/portfolio/finnhub"
	"github.com/coachfolio/portfolio/metrics"
	"github.com/coachfolio/portfolio/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

// NewsFetcher returns the latest stories about a company.
type NewsFetcher interface {
	CompanyNews(ctx context.Context, symbol string, daysBack int) (finnhub.CompanyNews, error)
}

type Server struct {
	R        *chi.Mux
	Sessions *session.Service
	Catalog  *catalog.Catalog
	Advisor  *advisor.Advisor // nil disables the analysis route
	News     NewsFetcher      // nil serves the catalog news only
	Metrics  *metrics.Metrics
	Logger   *zap.Logger
}

type Option func(*Server)

func WithAdvisor(a *advisor.Advisor) Option { return func(s *Server) { s.Advisor = a } }

func WithLiveNews(f NewsFetcher) Option { return func(s *Server) { s.News = f } }

func WithMetrics(m *metrics.Metrics) Option { return func(s *Server) { s.Metrics = m } }

// New wires the router, the middleware and the routes.
func New(sessions *session.Service, c *catalog.Catalog, logger *zap.Logger, corsOrigin string, opts ...Option) *Server {
	s := &Server{
		R:        chi.NewRouter(),
		Sessions: sessions,
		Catalog:  c,
		Logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.R.Use(middleware.Recoverer)
	s.R.Use(s.logRequests)
	s.R.Use(cors.New(cors.Options{
		AllowedOrigins: []string{corsOrigin},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}).Handler)

	s.routes()
	return s
}

func (s *Server) routes() {
	s.R.Get("/health", func(rw http.ResponseWriter, r *http.Request) {
		sendData(rw, http.StatusOK, map[string]string{"status": "ok"})
	})
	if s.Metrics != nil {
		s.R.Handle("/metrics", s.Metrics.Handler())
	}

	s.R.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.openSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.getPortfolio)
			r.Delete("/", s.closeSession)
			r.Get("/orders", s.getOrders)
			r.Post("/orders", s.placeOrder)
			r.Get("/valuation", s.getValuation)
			r.Get("/report", s.getReport)
			r.Get("/achievements", s.getAchievements)
			r.Get("/analysis/{symbol}", s.getAnalysis)
		})
	})

	s.R.Get("/news/{symbol}", s.getCompanyNews)

	s.R.Route("/catalog", func(r chi.Router) {
		r.Get("/stocks", s.getStocks)
		r.Get("/categories", s.getCategories)
		r.Get("/achievements", s.getCatalogAchievements)
		r.Get("/paths", s.getPaths)
		r.Get("/lessons", s.getLessons)
		r.Get("/news", s.getNews)
		r.Get("/leaderboard", s.getLeaderboard)
		r.Get("/teams/open", s.getOpenTeams)
	})
}

// statusRecorder captures the status written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: rw, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.Logger.Info("http_request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.String("ip", r.RemoteAddr),
			zap.Duration("latency", time.Since(start)),
		)
	})
}

// HTTPServer returns an http.Server serving the routes on addr.
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s.R,
		ReadHeaderTimeout: 10 * time.Second,
	}
}
