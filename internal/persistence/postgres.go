package persistence

import (
	"context"
	"fmt"
	"time"

	_ "github.com/lib/pq" // Postgres driver

	"database/sql"
)

// PostgresStore implements Store against a Postgres connection, following
// the teacher's per-repository-struct layout.
type PostgresStore struct {
	db             *sql.DB
	sources        SourceRepository
	contentItems   ContentItemRepository
	qualitySignals QualitySignalRepository
	ingestionJobs  IngestionJobRepository
	trendingTerms  TrendingTermRepository
}

// NewPostgresStore opens a connection pool and verifies it with a ping.
func NewPostgresStore(connectionString string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &PostgresStore{db: db}
	s.sources = &postgresSourceRepo{db: db}
	s.contentItems = &postgresContentItemRepo{db: db}
	s.qualitySignals = &postgresQualitySignalRepo{db: db}
	s.ingestionJobs = &postgresIngestionJobRepo{db: db}
	s.trendingTerms = &postgresTrendingTermRepo{db: db}
	return s, nil
}

func (s *PostgresStore) Sources() SourceRepository               { return s.sources }
func (s *PostgresStore) ContentItems() ContentItemRepository      { return s.contentItems }
func (s *PostgresStore) QualitySignals() QualitySignalRepository  { return s.qualitySignals }
func (s *PostgresStore) IngestionJobs() IngestionJobRepository    { return s.ingestionJobs }
func (s *PostgresStore) TrendingTerms() TrendingTermRepository    { return s.trendingTerms }
func (s *PostgresStore) Raw() RawQuerier                          { return s.db }
func (s *PostgresStore) Close() error                             { return s.db.Close() }

// DB exposes the underlying pool for the migration runner.
func (s *PostgresStore) DB() *sql.DB { return s.db }
