package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/olekukonko/tablewriter"

	"main/internal/candle"
	"main/internal/engine"
	"main/internal/hyper"
	"main/internal/model"
	"main/internal/ops"
	"main/internal/optimize"
	"main/internal/strategy/sample"
)

func main() {
	configPath := flag.String("config", "config.json", "Path to JSON config")
	candidates := flag.Int("candidates", 100, "Number of DNA candidates to evaluate")
	workers := flag.Int("workers", runtime.NumCPU(), "Parallel candidate runs")
	seed := flag.Int64("seed", time.Now().UnixNano(), "Random seed for DNA sampling")
	top := flag.Int("top", 10, "Number of best candidates to print")
	skipPrecheck := flag.Bool("skip-precheck", false, "Skip the baseline profitability check")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loaded, err := ops.Load(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	// Search runs are never paced and never carry a fixed DNA; the
	// candidate's genes replace whatever the config declares.
	loaded.Engine.Speed = 0
	loaded.Engine.DNA = ""

	store, closeStore, err := openStore(loaded)
	if err != nil {
		log.Fatalf("store init failed: %v", err)
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Printf("store close failed: %v", err)
		}
	}()

	// The gene string length follows the first route's strategy; mixed
	// strategy routes cannot share one DNA.
	specs, err := hyperSpecs(loaded)
	if err != nil {
		log.Fatalf("%v", err)
	}

	factory := func(dna string) (*engine.Engine, error) {
		cfg := loaded.Engine
		cfg.DNA = dna
		routeSpecs, err := routeSpecs(loaded)
		if err != nil {
			return nil, err
		}
		return engine.New(cfg, store, routeSpecs)
	}

	if !*skipPrecheck {
		if err := optimize.Precheck(ctx, factory); err != nil {
			if errors.Is(err, optimize.ErrUnprofitableBaseline) {
				log.Fatalf("precheck failed: %v (use -skip-precheck to search anyway)", err)
			}
			log.Fatalf("precheck failed: %v", err)
		}
	}

	evaluated, best, err := optimize.Search(ctx, specs, factory, *candidates, *workers, *seed)
	if err != nil {
		log.Fatalf("search failed: %v", err)
	}
	if best == nil {
		log.Fatalf("no candidate completed")
	}

	printTop(evaluated, *top)
	fmt.Printf("\nbest DNA: %q  total P&L: %.2f  trades: %d\n",
		best.DNA, best.Results.TotalPnL, best.Results.TotalTrades)

	// The defaults' gene string is the reference point for the table.
	if defaults, err := hyper.Resolve(specs, nil, ""); err == nil {
		if dna, err := hyper.EncodeDNA(specs, defaults); err == nil {
			fmt.Printf("defaults DNA: %q\n", dna)
		}
	}
}

func hyperSpecs(loaded ops.Loaded) ([]hyper.Spec, error) {
	if len(loaded.Routes) == 0 {
		return nil, fmt.Errorf("config declares no routes")
	}
	strat, err := sample.New(loaded.Routes[0].Strategy)
	if err != nil {
		return nil, err
	}
	return strat.Hyperparameters(), nil
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

func printTop(evaluated []optimize.Candidate, n int) {
	sorted := make([]optimize.Candidate, len(evaluated))
	copy(sorted, evaluated)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Results.TotalPnL > sorted[j].Results.TotalPnL
	})
	if n > len(sorted) {
		n = len(sorted)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("#", "DNA", "Total P&L", "Trades", "Win rate")
	for i := 0; i < n; i++ {
		c := sorted[i]
		table.Append(
			fmt.Sprintf("%d", i+1),
			fmt.Sprintf("%q", c.DNA),
			fmt.Sprintf("%.2f", c.Results.TotalPnL),
			fmt.Sprintf("%d", c.Results.TotalTrades),
			fmt.Sprintf("%.1f%%", c.Results.WinRate*100),
		)
	}
	table.Render()
}
