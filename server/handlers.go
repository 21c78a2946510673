package server

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"slices"
	"strconv"

	"github.com/coachfolio/portfolio"
	"github.com/coachfolio/portfolio/advisor"
	"github.com/coachfolio/portfolio/finnhub"
	"github.com/coachfolio/portfolio/renderer"
	"github.com/coachfolio/portfolio/session"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type openRequest struct {
	Owner string           `json:"owner"`
	Cash  *decimal.Decimal `json:"cash,omitempty"`
}

type orderRequest struct {
	Symbol    string          `json:"symbol"`
	Side      portfolio.Side  `json:"side"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

type sessionResponse struct {
	ID        string               `json:"id"`
	Portfolio *portfolio.Portfolio `json:"portfolio"`
}

type rejection struct {
	Kind   portfolio.ErrorKind `json:"kind"`
	Reason string              `json:"reason"`
	Order  portfolio.Order     `json:"order"`
}

// sessionError maps a session failure to its HTTP status.
func (s *Server) sessionError(rw http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, session.ErrNotFound) {
		sendError(rw, http.StatusNotFound, err)
		return
	}
	s.Logger.Error("session failure", zap.String("path", r.URL.Path), zap.Error(err))
	sendError(rw, http.StatusInternalServerError, err)
}

func (s *Server) openSession(rw http.ResponseWriter, r *http.Request) {
	var req openRequest
	if err := getBody(r, &req); err != nil {
		sendError(rw, http.StatusBadRequest, err)
		return
	}
	if req.Owner == "" {
		sendError(rw, http.StatusBadRequest, errors.New("owner is required"))
		return
	}
	cash := s.Sessions.StartingCash()
	if req.Cash != nil {
		if req.Cash.IsNegative() {
			sendError(rw, http.StatusBadRequest, fmt.Errorf("starting cash cannot be negative: %s", req.Cash))
			return
		}
		cash = portfolio.M(*req.Cash, cash.Currency())
	}

	id, l, err := s.Sessions.OpenWithCash(r.Context(), req.Owner, cash)
	if err != nil {
		s.sessionError(rw, r, err)
		return
	}
	sendData(rw, http.StatusCreated, sessionResponse{ID: id, Portfolio: l.Portfolio()})
}

func (s *Server) getPortfolio(rw http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	l, err := s.Sessions.Ledger(r.Context(), id)
	if err != nil {
		s.sessionError(rw, r, err)
		return
	}
	sendData(rw, http.StatusOK, sessionResponse{ID: id, Portfolio: l.Portfolio()})
}

func (s *Server) closeSession(rw http.ResponseWriter, r *http.Request) {
	if err := s.Sessions.Close(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.sessionError(rw, r, err)
		return
	}
	sendData(rw, http.StatusOK, nil)
}

func (s *Server) getOrders(rw http.ResponseWriter, r *http.Request) {
	l, err := s.Sessions.Ledger(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.sessionError(rw, r, err)
		return
	}
	sendData(rw, http.StatusOK, map[string]any{
		"opening": l.Opening(),
		"orders":  append([]portfolio.Order{}, slices.Collect(l.Orders())...),
		"stats":   l.Stats(),
	})
}

func (s *Server) placeOrder(rw http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req orderRequest
	if err := getBody(r, &req); err != nil {
		sendError(rw, http.StatusBadRequest, err)
		return
	}
	l, err := s.Sessions.Ledger(r.Context(), id)
	if err != nil {
		s.sessionError(rw, r, err)
		return
	}
	o := portfolio.Order{
		Symbol:    portfolio.NormalizeSymbol(req.Symbol),
		Side:      req.Side,
		Quantity:  portfolio.Q(req.Quantity),
		UnitPrice: portfolio.M(req.UnitPrice, l.Portfolio().Currency()),
	}

	p, err := s.Sessions.PlaceOrder(r.Context(), id, o)
	var rejected *portfolio.OrderError
	switch {
	case errors.As(err, &rejected):
		sendResponse(rw, httpResp{
			Status:  http.StatusUnprocessableEntity,
			IsError: true,
			Error:   rejected.Error(),
			Data:    rejection{Kind: rejected.Kind, Reason: rejected.Reason, Order: rejected.Order},
		})
		return
	case err != nil:
		s.sessionError(rw, r, err)
		return
	}
	sendData(rw, http.StatusCreated, sessionResponse{ID: id, Portfolio: p})
}

func (s *Server) getValuation(rw http.ResponseWriter, r *http.Request) {
	v, _, err := s.Sessions.Valuate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.sessionError(rw, r, err)
		return
	}
	sendData(rw, http.StatusOK, v)
}

var reportPage = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Portfolio of {{.Owner}}</title></head>
<body>
{{.Body}}</body>
</html>
`))

type reportData struct {
	Owner string
	// Body is the markdown report converted by goldmark, raw HTML omitted.
	Body template.HTML
}

func (s *Server) getReport(rw http.ResponseWriter, r *http.Request) {
	v, l, err := s.Sessions.Valuate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.sessionError(rw, r, err)
		return
	}
	body, err := renderer.HTML(renderer.RenderValuation(v) + "\n" + renderer.RenderOrders(l))
	if err != nil {
		sendError(rw, http.StatusInternalServerError, err)
		return
	}
	rw.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := reportPage.Execute(rw, reportData{Owner: v.OwnerID, Body: template.HTML(body)}); err != nil {
		s.Logger.Error("writing report", zap.Error(err))
	}
}

func (s *Server) getAchievements(rw http.ResponseWriter, r *http.Request) {
	l, err := s.Sessions.Ledger(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.sessionError(rw, r, err)
		return
	}
	quotes := s.Sessions.Quotes(r.Context(), l.Portfolio().Symbols()...)
	sendData(rw, http.StatusOK, s.Catalog.Board(s.Catalog.StatsOf(l, quotes)))
}

func (s *Server) getAnalysis(rw http.ResponseWriter, r *http.Request) {
	if s.Advisor == nil {
		sendError(rw, http.StatusNotImplemented, errors.New("analysis is not configured"))
		return
	}
	v, _, err := s.Sessions.Valuate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.sessionError(rw, r, err)
		return
	}
	symbol := chi.URLParam(r, "symbol")
	text, err := s.Advisor.Analyze(r.Context(), v, symbol)
	switch {
	case errors.Is(err, advisor.ErrNotHeld):
		sendError(rw, http.StatusNotFound, err)
		return
	case err != nil:
		s.Logger.Warn("analysis failed", zap.String("symbol", symbol), zap.Error(err))
		sendError(rw, http.StatusBadGateway, err)
		return
	}
	sendData(rw, http.StatusOK, map[string]string{
		"symbol":   portfolio.NormalizeSymbol(symbol),
		"analysis": text,
	})
}

func (s *Server) getStocks(rw http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sendData(rw, http.StatusOK, s.Catalog.SearchStocks(q.Get("q"), q.Get("category")))
}

func (s *Server) getCategories(rw http.ResponseWriter, r *http.Request) {
	sendData(rw, http.StatusOK, s.Catalog.Categories())
}

func (s *Server) getCatalogAchievements(rw http.ResponseWriter, r *http.Request) {
	sendData(rw, http.StatusOK, s.Catalog.Achievements(r.URL.Query().Get("category")))
}

func (s *Server) getPaths(rw http.ResponseWriter, r *http.Request) {
	sendData(rw, http.StatusOK, s.Catalog.Paths())
}

func (s *Server) getLessons(rw http.ResponseWriter, r *http.Request) {
	sendData(rw, http.StatusOK, s.Catalog.Lessons())
}

func (s *Server) getNews(rw http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sendData(rw, http.StatusOK, s.Catalog.News(q.Get("category"), q.Get("symbol")))
}

// getCompanyNews serves the live stories about a symbol, or the catalog news
// mentioning it when no live feed is configured.
func (s *Server) getCompanyNews(rw http.ResponseWriter, r *http.Request) {
	symbol := portfolio.NormalizeSymbol(chi.URLParam(r, "symbol"))
	days := finnhub.DefaultNewsDays
	if d := r.URL.Query().Get("days"); d != "" {
		n, err := strconv.Atoi(d)
		if err != nil || n <= 0 {
			sendError(rw, http.StatusBadRequest, fmt.Errorf("days must be a positive number, got %q", d))
			return
		}
		days = n
	}

	if s.News == nil {
		news := finnhub.CompanyNews{Symbol: symbol, Stories: []finnhub.Story{}}
		for _, a := range s.Catalog.News("", symbol) {
			news.Stories = append(news.Stories, finnhub.Story{
				ID:       int64(a.ID),
				Headline: a.Title,
				Source:   a.Author,
				Category: a.Category,
				Related:  symbol,
			})
		}
		sendData(rw, http.StatusOK, news)
		return
	}

	news, err := s.News.CompanyNews(r.Context(), symbol, days)
	if err != nil {
		s.Logger.Warn("company news failed", zap.String("symbol", symbol), zap.Error(err))
		sendError(rw, http.StatusBadGateway, err)
		return
	}
	if news.Stories == nil {
		news.Stories = []finnhub.Story{}
	}
	sendData(rw, http.StatusOK, news)
}

func (s *Server) getLeaderboard(rw http.ResponseWriter, r *http.Request) {
	sendData(rw, http.StatusOK, s.Catalog.Leaderboard())
}

func (s *Server) getOpenTeams(rw http.ResponseWriter, r *http.Request) {
	sendData(rw, http.StatusOK, s.Catalog.OpenTeams())
}
