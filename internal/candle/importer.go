package candle

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/yanun0323/decimal"
	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"

	"main/internal/model"
)

// ReadCSV parses candles from a CSV stream with the contract column
// order: timestamp, open, close, high, low, volume. A header row is
// detected and skipped.
func ReadCSV(r io.Reader) (model.Candles, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	var out model.Candles
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "read csv record")
		}
		line++

		if len(record) < 6 {
			return nil, errors.Errorf("csv line %d: want 6 columns, got %d", line, len(record))
		}
		if line == 1 && !isNumeric(record[0]) {
			continue
		}

		var a [6]float64
		for i := 0; i < 6; i++ {
			v, err := strconv.ParseFloat(strings.TrimSpace(record[i]), 64)
			if err != nil {
				return nil, errors.Errorf("csv line %d column %d: %v", line, i, err)
			}
			a[i] = v
		}
		out = append(out, model.CandleFromArray(a))
	}

	logs.Infof("imported %d candles from csv", len(out))
	return out, nil
}

// klineRow is one exchange-style kline array entry. Exchanges ship the
// numeric fields as JSON strings; decimal handles both encodings.
// Kline column order is openTime, open, high, low, close, volume and is
// remapped to the candle contract order here.
type klineRow []decimal.Decimal

// ReadKlineJSON parses candles from an exchange kline dump.
func ReadKlineJSON(data []byte) (model.Candles, error) {
	var rows []klineRow
	if err := sonic.Unmarshal(data, &rows); err != nil {
		return nil, errors.Wrap(err, "unmarshal kline json")
	}

	out := make(model.Candles, 0, len(rows))
	for i, row := range rows {
		if len(row) < 6 {
			return nil, errors.Errorf("kline row %d: want 6 fields, got %d", i, len(row))
		}

		var v [6]float64
		for j := 0; j < 6; j++ {
			f, err := strconv.ParseFloat(row[j].String(), 64)
			if err != nil {
				return nil, errors.Errorf("kline row %d field %d: %v", i, j, err)
			}
			v[j] = f
		}

		out = append(out, model.Candle{
			Timestamp: int64(v[0]),
			Open:      v[1],
			High:      v[2],
			Low:       v[3],
			Close:     v[4],
			Volume:    v[5],
		})
	}

	logs.Infof("imported %d candles from kline json", len(out))
	return out, nil
}

func isNumeric(s string) bool {
	_, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return err == nil
}
