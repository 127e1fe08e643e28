package writer

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/whosonfirst/go-nearby-places"
)

// SQLWriter implements the `Writer` interface for results stored in a SQLite or PostgreSQL database.
// Each run is a row in the `runs` table and its venues are rows in the `venues` table.
type SQLWriter struct {
	Writer
	db     *sql.DB
	engine string
}

func init() {

	ctx := context.Background()

	err := RegisterWriter(ctx, "sqlite", NewSQLWriter)

	if err != nil {
		panic(err)
	}

	err = RegisterWriter(ctx, "postgres", NewSQLWriter)

	if err != nil {
		panic(err)
	}
}

// NewSQLWriter returns a new SQLWriter configured by 'uri' in the form of:
//
//	sqlite:///path/to/venues.db
//	postgres://{USER}:{PASSWORD}@{HOST}/{DATABASE}?sslmode=disable
//
// Tables are created if they don't already exist.
func NewSQLWriter(ctx context.Context, uri string) (Writer, error) {

	u, err := url.Parse(uri)

	if err != nil {
		return nil, err
	}

	var engine string
	var dsn string

	switch u.Scheme {
	case "sqlite":

		if u.Path == "" {
			return nil, fmt.Errorf("Missing database path")
		}

		engine = "sqlite3"
		dsn = u.Path

	case "postgres":
		engine = "postgres"
		dsn = uri
	default:
		return nil, fmt.Errorf("Unsupported database scheme '%s'", u.Scheme)
	}

	db, err := sql.Open(engine, dsn)

	if err != nil {
		return nil, fmt.Errorf("Failed to open database, %w", err)
	}

	if engine == "postgres" {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(time.Minute * 5)
	}

	err = db.PingContext(ctx)

	if err != nil {
		db.Close()
		return nil, fmt.Errorf("Failed to ping database, %w", err)
	}

	wr := &SQLWriter{
		db:     db,
		engine: engine,
	}

	err = wr.createTables(ctx)

	if err != nil {
		db.Close()
		return nil, err
	}

	return wr, nil
}

func (wr *SQLWriter) createTables(ctx context.Context) error {

	float_type := "REAL"

	if wr.engine == "postgres" {
		float_type = "DOUBLE PRECISION"
	}

	statements := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS runs (
			id         TEXT PRIMARY KEY,
			address    TEXT,
			latitude   %s NOT NULL,
			longitude  %s NOT NULL,
			radius     %s NOT NULL,
			categories TEXT,
			stats      TEXT,
			created    TIMESTAMP NOT NULL
		)`, float_type, float_type, float_type),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS venues (
			run_id          TEXT NOT NULL,
			id              TEXT NOT NULL,
			name            TEXT,
			categories      TEXT,
			latitude        %s NOT NULL,
			longitude       %s NOT NULL,
			distance_meters INTEGER NOT NULL,
			rating          %s,
			review_count    INTEGER NOT NULL DEFAULT 0,
			price_level     INTEGER,
			opening_hours   TEXT,
			address         TEXT,
			url             TEXT,
			PRIMARY KEY (run_id, id)
		)`, float_type, float_type, float_type),
		`CREATE INDEX IF NOT EXISTS idx_venues_id ON venues (id)`,
		`CREATE INDEX IF NOT EXISTS idx_venues_distance ON venues (run_id, distance_meters)`,
	}

	for _, q := range statements {

		_, err := wr.db.ExecContext(ctx, q)

		if err != nil {
			return fmt.Errorf("Failed to create tables, %w", err)
		}
	}

	return nil
}

// Write stores 'results' in a single transaction. Rows for a run that was already written are replaced.
func (wr *SQLWriter) Write(ctx context.Context, results *places.Results) (err error) {

	stats, err := json.Marshal(results.Stats)

	if err != nil {
		return fmt.Errorf("Failed to encode stats, %w", err)
	}

	tx, err := wr.db.BeginTx(ctx, nil)

	if err != nil {
		return fmt.Errorf("Failed to begin transaction, %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	q_run := wr.rebind(`INSERT INTO runs (id, address, latitude, longitude, radius, categories, stats, created)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			address = excluded.address,
			latitude = excluded.latitude,
			longitude = excluded.longitude,
			radius = excluded.radius,
			categories = excluded.categories,
			stats = excluded.stats,
			created = excluded.created`)

	_, err = tx.ExecContext(ctx, q_run,
		results.Id,
		results.Address,
		results.Origin.Latitude,
		results.Origin.Longitude,
		results.Radius,
		strings.Join(results.Categories, ","),
		string(stats),
		results.CreatedAt.UTC(),
	)

	if err != nil {
		return fmt.Errorf("Failed to insert run %s, %w", results.Id, err)
	}

	q_venue := wr.rebind(`INSERT INTO venues (run_id, id, name, categories, latitude, longitude, distance_meters, rating, review_count, price_level, opening_hours, address, url)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (run_id, id) DO UPDATE SET
			name = excluded.name,
			categories = excluded.categories,
			latitude = excluded.latitude,
			longitude = excluded.longitude,
			distance_meters = excluded.distance_meters,
			rating = excluded.rating,
			review_count = excluded.review_count,
			price_level = excluded.price_level,
			opening_hours = excluded.opening_hours,
			address = excluded.address,
			url = excluded.url`)

	stmt, err := tx.PrepareContext(ctx, q_venue)

	if err != nil {
		return fmt.Errorf("Failed to prepare statement, %w", err)
	}

	defer stmt.Close()

	for _, v := range results.Venues {

		var rating sql.NullFloat64
		var price_level sql.NullInt64
		var opening_hours sql.NullString

		if v.Rating != nil {
			rating = sql.NullFloat64{Float64: *v.Rating, Valid: true}
		}

		if v.PriceLevel != nil {
			price_level = sql.NullInt64{Int64: int64(*v.PriceLevel), Valid: true}
		}

		if v.OpeningHours != nil {

			enc_hours, err := json.Marshal(v.OpeningHours)

			if err != nil {
				return fmt.Errorf("Failed to encode opening hours for %s, %w", v.Id, err)
			}

			opening_hours = sql.NullString{String: string(enc_hours), Valid: true}
		}

		_, err = stmt.ExecContext(ctx,
			results.Id,
			v.Id,
			v.Name,
			strings.Join(v.Categories, ","),
			v.Location.Latitude,
			v.Location.Longitude,
			v.DistanceMeters,
			rating,
			v.ReviewCount,
			price_level,
			opening_hours,
			v.Address,
			v.URL,
		)

		if err != nil {
			return fmt.Errorf("Failed to insert venue %s, %w", v.Id, err)
		}
	}

	err = tx.Commit()

	if err != nil {
		return fmt.Errorf("Failed to commit transaction, %w", err)
	}

	slog.Debug("Stored venues", "engine", wr.engine, "run", results.Id, "count", len(results.Venues))
	return nil
}

func (wr *SQLWriter) Close() error {
	return wr.db.Close()
}

// rebind replaces '?' placeholders with the numbered placeholders PostgreSQL expects.
func (wr *SQLWriter) rebind(q string) string {

	if wr.engine != "postgres" {
		return q
	}

	var b strings.Builder
	n := 0

	for _, r := range q {

		if r == '?' {
			n += 1
			fmt.Fprintf(&b, "$%d", n)
			continue
		}

		b.WriteRune(r)
	}

	return b.String()
}
