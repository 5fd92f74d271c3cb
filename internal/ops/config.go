// Package ops resolves the JSON run configuration into the values the
// engine consumes.
package ops

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"time"

	"main/internal/engine"
	"main/internal/model/enum"
	"main/internal/risk"
)

// FileConfig mirrors the JSON config layout.
type FileConfig struct {
	Exchange        ExchangeConfig `json:"exchange"`
	Backtest        BacktestConfig `json:"backtest"`
	Routes          []RouteConfig  `json:"routes"`
	Hyperparameters HPConfig       `json:"hyperparameters"`
	Data            DataConfig     `json:"data"`
}

// ExchangeConfig describes the simulated account.
type ExchangeConfig struct {
	Name           string  `json:"name"`
	Balance        float64 `json:"balance"`
	FeeRate        float64 `json:"feeRate"`
	InstrumentType string  `json:"instrumentType"`
	Leverage       float64 `json:"leverage"`
	LotSize        float64 `json:"lotSize"`
}

// BacktestConfig bounds the simulated range.
type BacktestConfig struct {
	Start  string  `json:"start"`
	Finish string  `json:"finish"`
	Speed  float64 `json:"speed"`
}

// RouteConfig declares one route; list order is the per-candle
// visitation order.
type RouteConfig struct {
	Exchange    string `json:"exchange"`
	Symbol      string `json:"symbol"`
	Timeframe   string `json:"timeframe"`
	Strategy    string `json:"strategy"`
	GapTolerant bool   `json:"gapTolerant"`
}

// HPConfig carries run-level hyperparameter overrides.
type HPConfig struct {
	DNA    string         `json:"dna"`
	Values map[string]any `json:"values"`
}

// DataConfig selects the candle source.
type DataConfig struct {
	Driver   string         `json:"driver"` // csv | kline-json | postgres
	Path     string         `json:"path"`
	Postgres PostgresConfig `json:"postgres"`
}

// PostgresConfig describes the candle database connection.
type PostgresConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Database string `json:"database"`
	SSLMode  string `json:"sslMode"`
}

// Loaded is the resolved configuration ready for use.
type Loaded struct {
	Engine   engine.Config
	Exchange string
	Routes   []RouteConfig
	Data     DataConfig
}

// Load reads and resolves the config file.
func Load(path string) (Loaded, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Loaded{}, fmt.Errorf("read config: %w", err)
	}

	var fc FileConfig
	if err := json.Unmarshal(data, &fc); err != nil {
		return Loaded{}, fmt.Errorf("parse config: %w", err)
	}
	return resolve(fc)
}

func resolve(fc FileConfig) (Loaded, error) {
	if len(fc.Routes) == 0 {
		return Loaded{}, fmt.Errorf("config declares no routes")
	}

	instrument, err := enum.ParseInstrumentType(fc.Exchange.InstrumentType)
	if err != nil {
		return Loaded{}, err
	}

	start, err := parseDate(fc.Backtest.Start, 0)
	if err != nil {
		return Loaded{}, fmt.Errorf("backtest.start: %w", err)
	}
	finish, err := parseDate(fc.Backtest.Finish, math.MaxInt64)
	if err != nil {
		return Loaded{}, fmt.Errorf("backtest.finish: %w", err)
	}

	return Loaded{
		Engine: engine.Config{
			Risk: risk.Config{
				Instrument: instrument,
				Leverage:   fc.Exchange.Leverage,
				FeeRate:    fc.Exchange.FeeRate,
				LotSize:    fc.Exchange.LotSize,
			},
			Balance:    fc.Exchange.Balance,
			Start:      start,
			Finish:     finish,
			Speed:      fc.Backtest.Speed,
			HPExplicit: fc.Hyperparameters.Values,
			DNA:        fc.Hyperparameters.DNA,
		},
		Exchange: fc.Exchange.Name,
		Routes:   fc.Routes,
		Data:     fc.Data,
	}, nil
}

func parseDate(s string, fallback int64) (int64, error) {
	if s == "" {
		return fallback, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return 0, err
	}
	return t.UnixMilli(), nil
}
