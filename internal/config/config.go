// Package config loads the service configuration: JSON file with defaults
// baked in, then environment variable overrides for deploy-time tuning.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"goldetf/internal/fund"
)

type Server struct {
	Port              string `json:"port"`
	RequestTimeoutSec int    `json:"request_timeout_sec"`
}

type Fetch struct {
	BaseURL               string `json:"base_url"`
	ProviderTimeoutSec    int    `json:"provider_timeout_sec"`
	MinRequestIntervalSec int    `json:"min_request_interval_sec"`
	RetryCount            int    `json:"retry_count"`
	CacheTTLSec           int    `json:"cache_ttl_sec"`
	FundCacheMaxItems     int    `json:"fund_cache_max_items"`
	SpotCacheMaxItems     int    `json:"spot_cache_max_items"`
	RefreshIntervalSec    int    `json:"refresh_interval_sec"`
	FleetPauseSec         int    `json:"fleet_pause_sec"`
	GoldFuturesTicker     string `json:"gold_futures_ticker"`
	FXTicker              string `json:"fx_ticker"`
}

// FundEntry is one fund in the configured registry. Active defaults to true
// when omitted.
type FundEntry struct {
	Symbol           string   `json:"symbol"`
	Name             string   `json:"name"`
	Ticker           string   `json:"ticker"`
	Alternatives     []string `json:"alternatives"`
	GoldBackingGrams *float64 `json:"gold_backing_grams"`
	NavPrice         *float64 `json:"nav_price"`
	StopajRate       *float64 `json:"stopaj_rate"`
	ExpenseRatio     *float64 `json:"expense_ratio"`
	Active           *bool    `json:"active"`
}

type Config struct {
	Server Server      `json:"server"`
	Fetch  Fetch       `json:"fetch"`
	Funds  []FundEntry `json:"funds"`
}

func Default() Config {
	return Config{
		Server: Server{Port: "8080", RequestTimeoutSec: 60},
		Fetch: Fetch{
			BaseURL:               "https://query1.finance.yahoo.com",
			ProviderTimeoutSec:    15,
			MinRequestIntervalSec: 3,
			RetryCount:            3,
			CacheTTLSec:           300,
			FundCacheMaxItems:     100,
			SpotCacheMaxItems:     10,
			RefreshIntervalSec:    300,
			FleetPauseSec:         3,
			GoldFuturesTicker:     "GC=F",
			FXTicker:              "USDTRY=X",
		},
		Funds: []FundEntry{
			{
				Symbol:           "ZGOLD",
				Name:             "Ziraat Portfoy Altin Katilim BYF",
				Ticker:           "ZGOLD.IS",
				Alternatives:     []string{"ZGOLD"},
				GoldBackingGrams: f64(0.0981),
				NavPrice:         f64(626.702),
				StopajRate:       f64(0),
				ExpenseRatio:     f64(0),
			},
			{
				Symbol:           "GLDTR",
				Name:             "QNB Finans Portfoy Altin BYF",
				Ticker:           "GLDTR.IS",
				Alternatives:     []string{"GLDTR"},
				GoldBackingGrams: f64(0.085),
				NavPrice:         f64(538.2205),
				StopajRate:       f64(0),
				ExpenseRatio:     f64(0),
			},
			{
				Symbol:           "ISGLK",
				Name:             "Is Portfoy Altin Katilim BYF",
				Ticker:           "ISGLK.IS",
				Alternatives:     []string{"ISGLK"},
				GoldBackingGrams: f64(0.102),
				NavPrice:         f64(626.702),
				StopajRate:       f64(0),
				ExpenseRatio:     f64(0),
			},
			{
				Symbol: "GLD",
				Name:   "Istanbul Gold BYF",
				Ticker: "GLD.IS",
				Active: boolPtr(false),
			},
			{
				Symbol: "GLDTR2",
				Name:   "Finans Portfoy Ikinci Altin BYF",
				Ticker: "GLDTR2.IS",
				Active: boolPtr(false),
			},
		},
	}
}

// Load reads JSON config from path. If path is empty or the file does not
// exist, it returns defaults. Environment variables override select fields.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		if _, err := os.Stat("config.json"); err == nil {
			path = "config.json"
		}
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err == nil {
			if err := json.Unmarshal(b, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config: %w", err)
			}
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

// Registry materializes the configured fund list.
func (c Config) Registry() *fund.Registry {
	funds := make([]fund.Fund, 0, len(c.Funds))
	for _, e := range c.Funds {
		active := true
		if e.Active != nil {
			active = *e.Active
		}
		funds = append(funds, fund.Fund{
			Symbol:           strings.ToUpper(e.Symbol),
			Name:             e.Name,
			Ticker:           e.Ticker,
			Alternatives:     e.Alternatives,
			GoldBackingGrams: e.GoldBackingGrams,
			NavPrice:         e.NavPrice,
			StopajRate:       e.StopajRate,
			ExpenseRatio:     e.ExpenseRatio,
			Active:           active,
		})
	}
	return fund.NewRegistry(funds)
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
	if x, ok := envInt("REQUEST_TIMEOUT_SEC"); ok && x > 0 {
		cfg.Server.RequestTimeoutSec = x
	}
	if v := os.Getenv("QUOTE_BASE_URL"); v != "" {
		cfg.Fetch.BaseURL = v
	}
	if x, ok := envInt("PROVIDER_TIMEOUT_SEC"); ok && x > 0 {
		cfg.Fetch.ProviderTimeoutSec = x
	}
	if x, ok := envInt("MIN_REQUEST_INTERVAL_SEC"); ok && x >= 0 {
		cfg.Fetch.MinRequestIntervalSec = x
	}
	if x, ok := envInt("RETRY_COUNT"); ok && x > 0 {
		cfg.Fetch.RetryCount = x
	}
	if x, ok := envInt("CACHE_TTL_SEC"); ok && x >= 0 {
		cfg.Fetch.CacheTTLSec = x
	}
	if x, ok := envInt("FUND_CACHE_MAX_ITEMS"); ok && x > 0 {
		cfg.Fetch.FundCacheMaxItems = x
	}
	if x, ok := envInt("SPOT_CACHE_MAX_ITEMS"); ok && x > 0 {
		cfg.Fetch.SpotCacheMaxItems = x
	}
	if x, ok := envInt("REFRESH_INTERVAL_SEC"); ok && x >= 0 {
		cfg.Fetch.RefreshIntervalSec = x
	}
	if x, ok := envInt("FLEET_PAUSE_SEC"); ok && x >= 0 {
		cfg.Fetch.FleetPauseSec = x
	}
	if v := os.Getenv("GOLD_FUTURES_TICKER"); v != "" {
		cfg.Fetch.GoldFuturesTicker = v
	}
	if v := os.Getenv("FX_TICKER"); v != "" {
		cfg.Fetch.FXTicker = v
	}
}

func envInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	var x int
	if _, err := fmt.Sscanf(v, "%d", &x); err != nil {
		return 0, false
	}
	return x, true
}

func f64(v float64) *float64 { return &v }
func boolPtr(v bool) *bool   { return &v }
