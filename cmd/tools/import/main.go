// Command import loads candle files into the postgres candle store so
// backtests can read them through the database driver. With
// -aggregate-to the input is compressed into a larger timeframe before
// insertion.
package main

import (
	"flag"
	"log"
	"os"
	"strings"

	"main/internal/candle"
	"main/internal/model"
)

func main() {
	input := flag.String("input", "", "Candle file to import")
	format := flag.String("format", "csv", "Input format: csv | kline-json")
	exchange := flag.String("exchange", "", "Exchange name for the series key")
	symbol := flag.String("symbol", "", "Symbol for the series key")
	timeframe := flag.String("timeframe", "", "Timeframe of the input candles")
	aggregateTo := flag.String("aggregate-to", "", "Aggregate input candles into this timeframe before insert")

	pgHost := flag.String("pg-host", "localhost", "Postgres host")
	pgPort := flag.Int("pg-port", 5432, "Postgres port")
	pgUser := flag.String("pg-user", "", "Postgres user")
	pgPassword := flag.String("pg-password", "", "Postgres password")
	pgDatabase := flag.String("pg-database", "", "Postgres database")
	pgSSLMode := flag.String("pg-sslmode", "disable", "Postgres sslmode")
	flag.Parse()

	if *input == "" || *exchange == "" || *symbol == "" || *timeframe == "" {
		log.Fatalf("input, exchange, symbol and timeframe are required")
	}

	candles, err := readInput(*input, *format)
	if err != nil {
		log.Fatalf("read input failed: %v", err)
	}
	if len(candles) == 0 {
		log.Fatalf("input holds no candles")
	}

	seriesTimeframe := *timeframe
	if *aggregateTo != "" && *aggregateTo != *timeframe {
		candles, err = candle.AggregateTo(candles, *timeframe, *aggregateTo)
		if err != nil {
			log.Fatalf("aggregate failed: %v", err)
		}
		if len(candles) == 0 {
			log.Fatalf("aggregation to %s leaves no complete candles", *aggregateTo)
		}
		seriesTimeframe = *aggregateTo
	}

	repo, err := candle.NewRepository(candle.PostgresOption{
		Host:     *pgHost,
		Port:     *pgPort,
		User:     *pgUser,
		Password: *pgPassword,
		Database: *pgDatabase,
		SSLMode:  *pgSSLMode,
	})
	if err != nil {
		log.Fatalf("repository init failed: %v", err)
	}
	defer func() {
		if err := repo.Close(); err != nil {
			log.Printf("repository close failed: %v", err)
		}
	}()

	key := candle.Key{Exchange: *exchange, Symbol: *symbol, Timeframe: seriesTimeframe}
	if err := repo.Insert(key, candles); err != nil {
		log.Fatalf("insert failed: %v", err)
	}

	log.Printf("imported %d candles into %s:%s:%s", len(candles), *exchange, *symbol, seriesTimeframe)
}

func readInput(path, format string) (model.Candles, error) {
	switch strings.ToLower(format) {
	case "csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return candle.ReadCSV(f)
	case "kline-json":
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return candle.ReadKlineJSON(raw)
	default:
		log.Fatalf("unknown format %q", format)
		return nil, nil
	}
}
