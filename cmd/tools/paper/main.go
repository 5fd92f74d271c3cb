// Command paper replays a candle range paced against the wall clock, so
// a strategy can be watched live before it touches real money.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/yanun0323/pkg/sys"

	"main/internal/candle"
	"main/internal/engine"
	"main/internal/model"
	"main/internal/ops"
	"main/internal/strategy/sample"
)

func main() {
	configPath := flag.String("config", "config.json", "Path to JSON config")
	speed := flag.Float64("speed", 1, "Playback speed (1=real-time)")
	flag.Parse()

	if *speed <= 0 {
		log.Fatalf("speed must be > 0")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-sys.Shutdown()
		cancel()
	}()

	loaded, err := ops.Load(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	loaded.Engine.Speed = *speed

	store, closeStore, err := openStore(loaded)
	if err != nil {
		log.Fatalf("store init failed: %v", err)
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Printf("store close failed: %v", err)
		}
	}()

	specs, err := routeSpecs(loaded)
	if err != nil {
		log.Fatalf("route init failed: %v", err)
	}

	run, err := engine.New(loaded.Engine, store, specs)
	if err != nil {
		log.Fatalf("engine init failed: %v", err)
	}

	results, err := run.Run(ctx)
	if err != nil {
		log.Fatalf("run failed: %v", err)
	}
	printSummary(results)
}

func routeSpecs(loaded ops.Loaded) ([]engine.RouteSpec, error) {
	specs := make([]engine.RouteSpec, 0, len(loaded.Routes))
	for _, rc := range loaded.Routes {
		strat, err := sample.New(rc.Strategy)
		if err != nil {
			return nil, err
		}
		exchange := rc.Exchange
		if exchange == "" {
			exchange = loaded.Exchange
		}
		specs = append(specs, engine.RouteSpec{
			Exchange:    exchange,
			Symbol:      rc.Symbol,
			Timeframe:   rc.Timeframe,
			Strategy:    strat,
			GapTolerant: rc.GapTolerant,
		})
	}
	return specs, nil
}

func openStore(loaded ops.Loaded) (candle.Store, func() error, error) {
	noop := func() error { return nil }

	switch loaded.Data.Driver {
	case "", "csv", "kline-json":
		store := candle.NewMemoryStore()
		for _, rc := range loaded.Routes {
			exchange := rc.Exchange
			if exchange == "" {
				exchange = loaded.Exchange
			}
			key := candle.Key{Exchange: exchange, Symbol: rc.Symbol, Timeframe: rc.Timeframe}
			candles, err := readSeries(loaded.Data, rc)
			if err != nil {
				return nil, nil, err
			}
			store.AddSeries(key, candles, rc.GapTolerant)
		}
		return store, noop, nil

	case "postgres":
		pg := loaded.Data.Postgres
		repo, err := candle.NewRepository(candle.PostgresOption{
			Host:     pg.Host,
			Port:     pg.Port,
			User:     pg.User,
			Password: pg.Password,
			Database: pg.Database,
			SSLMode:  pg.SSLMode,
		})
		if err != nil {
			return nil, nil, err
		}
		for _, rc := range loaded.Routes {
			if !rc.GapTolerant {
				continue
			}
			exchange := rc.Exchange
			if exchange == "" {
				exchange = loaded.Exchange
			}
			repo.MarkGapTolerant(candle.Key{Exchange: exchange, Symbol: rc.Symbol, Timeframe: rc.Timeframe})
		}
		return repo, repo.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown data driver %q", loaded.Data.Driver)
	}
}

func readSeries(data ops.DataConfig, rc ops.RouteConfig) (model.Candles, error) {
	name := strings.ReplaceAll(rc.Symbol, "/", "-") + "_" + rc.Timeframe

	switch data.Driver {
	case "", "csv":
		f, err := os.Open(filepath.Join(data.Path, name+".csv"))
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return candle.ReadCSV(f)
	case "kline-json":
		raw, err := os.ReadFile(filepath.Join(data.Path, name+".json"))
		if err != nil {
			return nil, err
		}
		return candle.ReadKlineJSON(raw)
	}
	return nil, fmt.Errorf("unknown data driver %q", data.Driver)
}

func printSummary(results *engine.Results) {
	pf := fmt.Sprintf("%.2f", results.ProfitFactor)
	if math.IsInf(results.ProfitFactor, 1) {
		pf = "INF"
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Start", "Final", "Total P&L", "Trades", "Cancelled", "Win rate", "Profit factor")
	table.Append(
		fmt.Sprintf("%.2f", results.StartBalance),
		fmt.Sprintf("%.2f", results.FinalBalance),
		fmt.Sprintf("%.2f", results.TotalPnL),
		fmt.Sprintf("%d", results.TotalTrades),
		fmt.Sprintf("%d", len(results.Canceled)),
		fmt.Sprintf("%.1f%%", results.WinRate*100),
		pf,
	)
	table.Render()
}
