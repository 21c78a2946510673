// Package renderer renders portfolios and catalog pages as markdown.
package renderer

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"

	"github.com/coachfolio/portfolio"
	"github.com/coachfolio/portfolio/catalog"
	"github.com/coachfolio/portfolio/finnhub"
	"github.com/shopspring/decimal"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

//go:embed templates/*.md
var templates embed.FS

var funcs = template.FuncMap{
	"fixed":  func(d decimal.Decimal) string { return d.StringFixed(2) },
	"signed": signed,
	"inc":    func(i int) int { return i + 1 },
	"stale": func(hs []portfolio.HoldingValuation) bool {
		for _, h := range hs {
			if h.Stale {
				return true
			}
		}
		return false
	},
}

// signed formats a percentage number with its sign and two decimals.
func signed(d decimal.Decimal) string {
	s := d.StringFixed(2)
	if d.Round(2).IsPositive() {
		return "+" + s + "%"
	}
	return s + "%"
}

// RenderValuation renders a valuation: summary then holdings.
func RenderValuation(v portfolio.Valuation) string {
	partials := map[string]string{
		"valuation_title":    "valuation_title.md",
		"valuation_summary":  "valuation_summary.md",
		"valuation_holdings": "valuation_holdings.md",
	}
	return renderTemplate("valuation", "valuation.md", partials, v)
}

type orderLine struct {
	N      int
	Order  portfolio.Order
	Amount portfolio.Money
	Cash   portfolio.Money // after the order
}

type orderLog struct {
	OwnerID string
	Opening portfolio.Money
	Lines   []orderLine
	Stats   portfolio.Stats
}

// RenderOrders renders the order log of l with the cash after each order.
func RenderOrders(l *portfolio.Ledger) string {
	log := orderLog{
		OwnerID: l.Opening().OwnerID(),
		Opening: l.Opening().Cash(),
		Stats:   l.Stats(),
	}
	cash := log.Opening
	for o := range l.Orders() {
		amount := o.Amount()
		if o.Side == portfolio.Buy {
			cash = cash.Sub(amount)
		} else {
			cash = cash.Add(amount)
		}
		log.Lines = append(log.Lines, orderLine{N: len(log.Lines) + 1, Order: o, Amount: amount, Cash: cash})
	}
	return renderTemplate("orders", "orders.md", nil, log)
}

func RenderStocks(stocks []catalog.Stock) string {
	return renderTemplate("stocks", "stocks.md", nil, stocks)
}

func RenderNews(articles []catalog.Article) string {
	return renderTemplate("news", "news.md", nil, articles)
}

// RenderCompanyNews renders the live stories about a company.
func RenderCompanyNews(news finnhub.CompanyNews) string {
	return renderTemplate("company_news", "company_news.md", nil, news)
}

func RenderAchievements(b catalog.Board) string {
	return renderTemplate("achievements", "achievements.md", nil, b)
}

func RenderLeaderboard(standings []catalog.Standing) string {
	return renderTemplate("leaderboard", "leaderboard.md", nil, standings)
}

func RenderPaths(paths []catalog.Path) string {
	return renderTemplate("paths", "paths.md", nil, paths)
}

// HTML converts markdown to an HTML fragment, tables included.
func HTML(md string) (string, error) {
	var b bytes.Buffer
	converter := goldmark.New(goldmark.WithExtensions(extension.GFM))
	if err := converter.Convert([]byte(md), &b); err != nil {
		return "", err
	}
	return b.String(), nil
}

// renderTemplate is a generic utility to render a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, "templates/"+mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Funcs(funcs).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		content, err := fs.ReadFile(templates, "templates/"+file)
		if err != nil {
			return fmt.Sprintf("error reading partial template %q: %v", file, err)
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}
