package finnhub

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/coachfolio/portfolio"
)

// DefaultNewsDays is the period of CompanyNews when daysBack is not positive.
const DefaultNewsDays = 2

// maxStories bounds the stories returned by CompanyNews, the most recent first.
const maxStories = 10

// dateLayout of the from and to parameters of /company-news.
const dateLayout = "2006-01-02"

// Story is a news article about a company.
type Story struct {
	ID       int64     `json:"id"`
	Headline string    `json:"headline"`
	Summary  string    `json:"summary,omitempty"`
	Source   string    `json:"source,omitempty"`
	URL      string    `json:"url,omitempty"`
	Image    string    `json:"image,omitempty"`
	Category string    `json:"category,omitempty"`
	Related  string    `json:"related,omitempty"`
	Datetime time.Time `json:"datetime,omitzero"`
}

// CompanyNews are the stories about Symbol published between From and To.
type CompanyNews struct {
	Symbol  string  `json:"symbol"`
	From    string  `json:"from,omitempty"`
	To      string  `json:"to,omitempty"`
	Live    bool    `json:"live"`
	Stories []Story `json:"news"`
}

// storiesPath selects the articles of a /company-news response:
//
//	[{"category":"company","datetime":1700000000,"headline":"...","id":123,"image":"...","related":"AAPL","source":"Yahoo","summary":"...","url":"..."}]
const storiesPath = "$[*]"

// CompanyNews fetches the stories about symbol of the last daysBack days.
func (c *Client) CompanyNews(ctx context.Context, symbol string, daysBack int) (CompanyNews, error) {
	symbol = portfolio.NormalizeSymbol(symbol)
	if daysBack <= 0 {
		daysBack = DefaultNewsDays
	}
	to := c.now()
	from := to.AddDate(0, 0, -daysBack)
	res := CompanyNews{
		Symbol: symbol,
		From:   from.Format(dateLayout),
		To:     to.Format(dateLayout),
		Live:   true,
	}

	q := url.Values{"symbol": {symbol}, "from": {res.From}, "to": {res.To}, "token": {c.token}}
	var jobj any
	if err := c.jwget(ctx, c.base+"/company-news?"+q.Encode(), &jobj); err != nil {
		return res, fmt.Errorf("error retrieving news of %q: %w", symbol, err)
	}
	jval, err := jsonpath.Get(storiesPath, jobj)
	if err != nil {
		return res, fmt.Errorf("error parsing news of %q: %q %w", symbol, storiesPath, err)
	}
	articles, ok := jval.([]any)
	if !ok {
		return res, fmt.Errorf("error parsing news of %q: not a list %v", symbol, jval)
	}
	for _, a := range articles {
		if len(res.Stories) == maxStories {
			break
		}
		obj, ok := a.(map[string]any)
		if !ok {
			continue
		}
		res.Stories = append(res.Stories, story(obj))
	}
	return res, nil
}

func story(obj map[string]any) Story {
	str := func(key string) string {
		s, _ := obj[key].(string)
		return s
	}
	num := func(key string) int64 {
		f, _ := obj[key].(float64)
		return int64(f)
	}
	s := Story{
		ID:       num("id"),
		Headline: str("headline"),
		Summary:  str("summary"),
		Source:   str("source"),
		URL:      str("url"),
		Image:    str("image"),
		Category: str("category"),
		Related:  str("related"),
	}
	if ts := num("datetime"); ts > 0 {
		s.Datetime = time.Unix(ts, 0).UTC()
	}
	return s
}
