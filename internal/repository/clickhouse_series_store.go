package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"MacroLens/internal/domain/models"
	pkgch "MacroLens/pkg/clickhouse"
	applogger "MacroLens/pkg/logger"
)

// CHSeriesStore implements SeriesStore backed by ClickHouse.
type CHSeriesStore struct {
	db       *sql.DB
	ch       *pkgch.Client
	database string
	l        *applogger.Logger
}

func NewCHSeriesStore(ch *pkgch.Client, database string) *CHSeriesStore {
	if database == "" {
		database = "macrolens"
	}
	return &CHSeriesStore{db: ch.DB(), ch: ch, database: database}
}

// SetLogger injects a structured logger.
func (s *CHSeriesStore) SetLogger(l *applogger.Logger) { s.l = l }

// Init ensures the database and series table exist. Idempotent.
func (s *CHSeriesStore) Init(ctx context.Context) error {
	stmts := []string{
		fmt.Sprintf(`CREATE DATABASE IF NOT EXISTS %s`, s.database),
		fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS %s.series_points (
            source    LowCardinality(String),
            series_id LowCardinality(String),
            ts        DateTime('UTC'),
            value     Float64
        ) ENGINE = ReplacingMergeTree
        ORDER BY (source, series_id, ts)
    `, s.database),
	}
	return s.ch.InitSchema(ctx, stmts)
}

func (s *CHSeriesStore) SaveSeries(ctx context.Context, source string, series models.TimeSeries) error {
	if series.Empty() {
		return nil
	}
	start := time.Now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save series: %w", err)
	}

	q := fmt.Sprintf(`INSERT INTO %s.series_points (source, series_id, ts, value) VALUES (?, ?, ?, ?)`, s.database)
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare save series: %w", err)
	}
	defer stmt.Close()

	for _, p := range series.Points {
		if _, err := stmt.ExecContext(ctx, source, series.ID, p.Time.UTC(), p.Value); err != nil {
			_ = tx.Rollback()
			if s.l != nil {
				s.l.Error("clickhouse save_series exec error",
					applogger.String("source", source),
					applogger.String("series", series.ID),
					applogger.Error(err),
				)
			}
			return fmt.Errorf("save series point: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save series: %w", err)
	}

	if s.l != nil {
		s.l.Debug("clickhouse save_series ok",
			applogger.String("source", source),
			applogger.String("series", series.ID),
			applogger.Int("rows", series.Len()),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return nil
}

func (s *CHSeriesStore) GetSeries(ctx context.Context, source, id string) (models.TimeSeries, error) {
	start := time.Now()

	q := fmt.Sprintf(`
        SELECT ts, value
        FROM %s.series_points FINAL
        WHERE source = ? AND series_id = ?
        ORDER BY ts ASC
    `, s.database)
	rows, err := s.db.QueryContext(ctx, q, source, id)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse get_series query error",
				applogger.String("source", source),
				applogger.String("series", id),
				applogger.Error(err),
			)
		}
		return models.TimeSeries{}, fmt.Errorf("get series: %w", err)
	}
	defer rows.Close()

	out := models.TimeSeries{ID: id, Points: make([]models.SeriesPoint, 0, 1024)}
	for rows.Next() {
		var p models.SeriesPoint
		if err := rows.Scan(&p.Time, &p.Value); err != nil {
			return models.TimeSeries{}, fmt.Errorf("scan series point: %w", err)
		}
		p.Time = p.Time.UTC()
		out.Points = append(out.Points, p)
	}
	if err := rows.Err(); err != nil {
		return models.TimeSeries{}, fmt.Errorf("rows: %w", err)
	}

	if s.l != nil {
		s.l.Debug("clickhouse get_series ok",
			applogger.String("source", source),
			applogger.String("series", id),
			applogger.Int("rows", out.Len()),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}

// Health performs a connectivity check.
func (s *CHSeriesStore) Health(ctx context.Context) error {
	return s.ch.Health(ctx)
}

// Close closes the underlying connection pool.
func (s *CHSeriesStore) Close() error {
	return s.ch.Close()
}
