package candle

import (
	"fmt"
	"net/url"

	"github.com/yanun0323/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"main/internal/model"
)

const (
	defaultPostgresHost    = "localhost"
	defaultPostgresPort    = 5432
	defaultPostgresSSLMode = "disable"
)

// PostgresOption defines connection options for the candle database.
type PostgresOption struct {
	Host       string
	Port       int
	User       string
	Password   string
	Database   string
	SSLMode    string
	ConnString string
}

// Row is the stored form of one candle.
type Row struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	Exchange  string `gorm:"index:idx_series,priority:1"`
	Symbol    string `gorm:"index:idx_series,priority:2"`
	Timeframe string `gorm:"index:idx_series,priority:3"`
	Timestamp int64  `gorm:"index:idx_series,priority:4"`
	Open      float64
	Close     float64
	High      float64
	Low       float64
	Volume    float64
}

// TableName implements gorm's table naming.
func (Row) TableName() string { return "candles" }

// Repository reads and bulk-writes candle series in postgres.
type Repository struct {
	db          *gorm.DB
	gapTolerant map[Key]bool
}

// NewRepository opens the connection and migrates the candles table.
func NewRepository(opt PostgresOption) (*Repository, error) {
	db, err := gorm.Open(postgres.Open(opt.dsn()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, errors.Wrap(err, "open postgres")
	}

	if err := db.AutoMigrate(&Row{}); err != nil {
		return nil, errors.Wrap(err, "migrate candles table")
	}

	return &Repository{db: db, gapTolerant: make(map[Key]bool)}, nil
}

// MarkGapTolerant flags a series as calendar-gapped.
func (r *Repository) MarkGapTolerant(key Key) {
	r.gapTolerant[key] = true
}

// Range implements Store.
func (r *Repository) Range(exchange, symbol, timeframe string, start, end int64) (model.Candles, error) {
	var rows []Row
	err := r.db.
		Where("exchange = ? AND symbol = ? AND timeframe = ? AND timestamp >= ? AND timestamp < ?",
			exchange, symbol, timeframe, start, end).
		Order("timestamp asc").
		Find(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "select candles")
	}

	if len(rows) == 0 {
		if r.gapTolerant[Key{Exchange: exchange, Symbol: symbol, Timeframe: timeframe}] {
			return model.Candles{}, nil
		}
		return nil, ErrCandleNotFound
	}

	out := make(model.Candles, len(rows))
	for i, row := range rows {
		out[i] = model.Candle{
			Timestamp: row.Timestamp,
			Open:      row.Open,
			Close:     row.Close,
			High:      row.High,
			Low:       row.Low,
			Volume:    row.Volume,
		}
	}
	return out, nil
}

// Insert bulk-writes a series, batched to keep statements bounded.
func (r *Repository) Insert(key Key, candles model.Candles) error {
	if len(candles) == 0 {
		return nil
	}

	rows := make([]Row, len(candles))
	for i, c := range candles {
		rows[i] = Row{
			Exchange:  key.Exchange,
			Symbol:    key.Symbol,
			Timeframe: key.Timeframe,
			Timestamp: c.Timestamp,
			Open:      c.Open,
			Close:     c.Close,
			High:      c.High,
			Low:       c.Low,
			Volume:    c.Volume,
		}
	}

	if err := r.db.CreateInBatches(rows, 1000).Error; err != nil {
		return errors.Wrap(err, "insert candles")
	}
	return nil
}

// Close releases the underlying connection pool.
func (r *Repository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (opt PostgresOption) dsn() string {
	if opt.ConnString != "" {
		return opt.ConnString
	}

	host := opt.Host
	if host == "" {
		host = defaultPostgresHost
	}
	port := opt.Port
	if port == 0 {
		port = defaultPostgresPort
	}
	sslMode := opt.SSLMode
	if sslMode == "" {
		sslMode = defaultPostgresSSLMode
	}

	u := &url.URL{
		Scheme: "postgres",
		Host:   fmt.Sprintf("%s:%d", host, port),
	}
	if opt.User != "" {
		if opt.Password != "" {
			u.User = url.UserPassword(opt.User, opt.Password)
		} else {
			u.User = url.User(opt.User)
		}
	}
	if opt.Database != "" {
		u.Path = "/" + opt.Database
	}

	query := url.Values{}
	query.Set("sslmode", sslMode)
	u.RawQuery = query.Encode()

	return u.String()
}
