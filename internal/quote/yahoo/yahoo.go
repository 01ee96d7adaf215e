// Package yahoo implements quote.Source against the Yahoo Finance chart and
// quoteSummary endpoints.
package yahoo

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"goldetf/internal/httpx"
	"goldetf/internal/logger"
	"goldetf/internal/quote"
)

const (
	defaultBaseURL = "https://query1.finance.yahoo.com"
	maxBodyBytes   = 4 << 20
)

// navKeys are the quoteSummary fields consulted, in order, when a NAV value
// has to come from provider metadata.
var navKeys = []string{"navPrice", "netAssetValue", "nav"}

type Config struct {
	Name    string // display name, default: Yahoo
	BaseURL string
}

type Client struct {
	cfg    Config
	client *httpx.Client
	log    *zap.SugaredLogger
}

func New(cfg Config, hc *httpx.Client) *Client {
	if cfg.Name == "" {
		cfg.Name = "Yahoo"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	return &Client{cfg: cfg, client: hc, log: logger.Get().Named("yahoo")}
}

func (c *Client) Name() string { return c.cfg.Name }

// History fetches the chart endpoint for one ticker.
func (c *Client) History(ctx context.Context, ticker, period, interval string) (quote.Series, error) {
	if interval == "" {
		interval = "1d"
	}
	u := fmt.Sprintf("%s/v8/finance/chart/%s?range=%s&interval=%s&includePrePost=false",
		c.cfg.BaseURL, url.PathEscape(ticker), url.QueryEscape(period), url.QueryEscape(interval))
	body, err := c.get(ctx, "history", ticker, u)
	if err != nil {
		return nil, err
	}
	return parseChart(body, ticker)
}

// BatchHistory fetches one chart call per ticker within a single invocation.
// A rate-limit failure aborts the whole batch immediately; missing or
// delisted tickers are logged and skipped so one dead symbol cannot sink the
// rest of the fleet.
func (c *Client) BatchHistory(ctx context.Context, tickers []string, period string) (map[string]quote.Series, error) {
	out := make(map[string]quote.Series, len(tickers))
	var firstErr error
	for _, t := range tickers {
		s, err := c.History(ctx, t, period, "1d")
		if err != nil {
			switch quote.KindOf(err) {
			case quote.KindRateLimited:
				return nil, err
			case quote.KindNotFound:
				c.log.Warnw("batch: ticker not found or delisted, skipping", "ticker", t, "period", period)
			default:
				if firstErr == nil {
					firstErr = err
				}
			}
			continue
		}
		if len(s) > 0 {
			out[t] = s
		}
	}
	if len(out) == 0 && firstErr != nil {
		return nil, firstErr
	}
	return out, nil
}

// InfoFields fetches best-effort metadata (NAV fallback fields, market
// volume) from the quoteSummary endpoint.
func (c *Client) InfoFields(ctx context.Context, ticker string) (map[string]float64, error) {
	u := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=price%%2CdefaultKeyStatistics",
		c.cfg.BaseURL, url.PathEscape(ticker))
	body, err := c.get(ctx, "info", ticker, u)
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(body) {
		return nil, &quote.Error{Kind: quote.KindMalformed, Ticker: ticker, Op: "info", Err: fmt.Errorf("invalid JSON")}
	}
	root := gjson.GetBytes(body, "quoteSummary.result.0")
	if !root.Exists() {
		return nil, &quote.Error{Kind: quote.KindMalformed, Ticker: ticker, Op: "info", Err: fmt.Errorf("no result")}
	}

	fields := make(map[string]float64)
	for _, key := range navKeys {
		if v := root.Get("defaultKeyStatistics." + key + ".raw"); v.Exists() && v.Float() > 0 {
			fields[key] = v.Float()
			break
		}
	}
	for out, path := range map[string]string{
		"regularMarketPrice":  "price.regularMarketPrice.raw",
		"previousClose":       "price.regularMarketPreviousClose.raw",
		"regularMarketVolume": "price.regularMarketVolume.raw",
	} {
		if v := root.Get(path); v.Exists() && v.Float() > 0 {
			fields[out] = v.Float()
		}
	}
	return fields, nil
}

// get performs the request and classifies transport-level failures.
func (c *Client) get(ctx context.Context, op, ticker, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &quote.Error{Kind: quote.KindOther, Ticker: ticker, Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.client.Do(ctx, req)
	if err != nil {
		return nil, &quote.Error{Kind: quote.KindOther, Ticker: ticker, Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &quote.Error{Kind: quote.KindRateLimited, Ticker: ticker, Op: op,
			Err: fmt.Errorf("status %d", resp.StatusCode)}
	case resp.StatusCode == http.StatusNotFound:
		return nil, &quote.Error{Kind: quote.KindNotFound, Ticker: ticker, Op: op,
			Err: fmt.Errorf("status %d", resp.StatusCode)}
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, &quote.Error{Kind: quote.KindOther, Ticker: ticker, Op: op,
			Err: fmt.Errorf("status %d: %s", resp.StatusCode, snippet(body))}
	}
	if readErr != nil {
		return nil, &quote.Error{Kind: quote.KindMalformed, Ticker: ticker, Op: op, Err: readErr}
	}
	return body, nil
}

// parseChart extracts a Series from a chart payload, classifying empty or
// undecodable responses as malformed and provider "Not Found" verdicts as
// not-found so the resolver can abandon the alias.
func parseChart(body []byte, ticker string) (quote.Series, error) {
	if !gjson.ValidBytes(body) {
		return nil, &quote.Error{Kind: quote.KindMalformed, Ticker: ticker, Op: "history", Err: fmt.Errorf("invalid JSON")}
	}
	chart := gjson.GetBytes(body, "chart")
	if !chart.Exists() {
		return nil, &quote.Error{Kind: quote.KindMalformed, Ticker: ticker, Op: "history", Err: fmt.Errorf("no chart object")}
	}
	if cerr := chart.Get("error"); cerr.Exists() && cerr.Type != gjson.Null {
		code := cerr.Get("code").String()
		if code == "Not Found" {
			return nil, &quote.Error{Kind: quote.KindNotFound, Ticker: ticker, Op: "history",
				Err: fmt.Errorf("provider error: %s", cerr.Get("description").String())}
		}
		return nil, &quote.Error{Kind: quote.KindOther, Ticker: ticker, Op: "history",
			Err: fmt.Errorf("provider error: code=%q %s", code, cerr.Get("description").String())}
	}
	result := chart.Get("result.0")
	if !result.Exists() {
		return nil, &quote.Error{Kind: quote.KindMalformed, Ticker: ticker, Op: "history", Err: fmt.Errorf("empty result")}
	}

	timestamps := result.Get("timestamp").Array()
	closes := result.Get("indicators.quote.0.close").Array()
	volumes := result.Get("indicators.quote.0.volume").Array()

	series := make(quote.Series, 0, len(closes))
	for i, cl := range closes {
		if cl.Type == gjson.Null || cl.Float() <= 0 {
			continue // market holidays and padding rows come back as nulls
		}
		bar := quote.Bar{Close: cl.Float()}
		if i < len(timestamps) {
			bar.Time = time.Unix(timestamps[i].Int(), 0).UTC()
		}
		if i < len(volumes) && volumes[i].Type != gjson.Null {
			bar.Volume = volumes[i].Int()
		}
		series = append(series, bar)
	}
	if len(series) == 0 {
		return nil, &quote.Error{Kind: quote.KindMalformed, Ticker: ticker, Op: "history", Err: fmt.Errorf("no usable bars")}
	}
	return series, nil
}

func snippet(b []byte) string {
	const max = 256
	if len(b) > max {
		b = b[:max]
	}
	return string(b)
}
