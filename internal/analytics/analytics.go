// Package analytics records completed searches for offline analysis.
// Logging is strictly best-effort: sinks may fail, callers log and
// move on, and a search response never waits on durability.
package analytics

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/segmentio/kafka-go"
)

// Record is one completed search, flights or hotels. Domain-specific
// fields stay empty for the other search type.
type Record struct {
	SearchID      string    `json:"search_id"`
	SearchType    string    `json:"search_type"`
	Origin        string    `json:"origin,omitempty"`
	Destination   string    `json:"destination,omitempty"`
	DepartureDate string    `json:"departure_date,omitempty"`
	ReturnDate    string    `json:"return_date,omitempty"`
	CheckIn       string    `json:"check_in,omitempty"`
	CheckOut      string    `json:"check_out,omitempty"`
	Adults        int       `json:"adults"`
	Children      int       `json:"children"`
	Rooms         int       `json:"rooms,omitempty"`
	ResultsCount  int       `json:"results_count"`
	CacheHit      bool      `json:"cache_hit"`
	SearchTimeMS  int64     `json:"search_time_ms"`
	Providers     []string  `json:"providers"`
	CreatedAt     time.Time `json:"created_at"`
}

type Sink interface {
	LogSearch(ctx context.Context, rec Record) error
	Close() error
}

// NopSink discards records. It is the default when no analytics
// backend is configured.
type NopSink struct{}

func (NopSink) LogSearch(ctx context.Context, rec Record) error { return nil }

func (NopSink) Close() error { return nil }

// PostgresSink appends records to the search_logs table.
type PostgresSink struct {
	pool *pgxpool.Pool
}

func NewPostgresSink(ctx context.Context, dsn string) (*PostgresSink, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &PostgresSink{pool: pool}, nil
}

func (s *PostgresSink) LogSearch(ctx context.Context, rec Record) error {
	providers, err := json.Marshal(rec.Providers)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO search_logs (
			search_id, search_type, origin, destination,
			departure_date, return_date, check_in, check_out,
			adults, children, rooms, results_count,
			cache_hit, search_time_ms, providers, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		rec.SearchID, rec.SearchType, rec.Origin, rec.Destination,
		rec.DepartureDate, rec.ReturnDate, rec.CheckIn, rec.CheckOut,
		rec.Adults, rec.Children, rec.Rooms, rec.ResultsCount,
		rec.CacheHit, rec.SearchTimeMS, providers, rec.CreatedAt)
	return err
}

func (s *PostgresSink) Close() error {
	s.pool.Close()
	return nil
}

// KafkaSink publishes records as JSON messages keyed by search id.
type KafkaSink struct {
	writer *kafka.Writer
}

func NewKafkaSink(brokers []string, topic string) *KafkaSink {
	return &KafkaSink{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			Async:        false,
		},
	}
}

func (s *KafkaSink) LogSearch(ctx context.Context, rec Record) error {
	value, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(rec.SearchID),
		Value: value,
	})
}

func (s *KafkaSink) Close() error {
	return s.writer.Close()
}
