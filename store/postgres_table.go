package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"prakriti-darpan/models"
)

const reportColumns = `id, "timestamp", image_url, location_name, latitude, longitude, trash_type, severity, description, analysis_raw`

// PostgresTable stores reports in a PostgreSQL "reports" table.
type PostgresTable struct {
	db      *sql.DB
	timeout time.Duration
}

// NewPostgresTable wraps an open database handle.
func NewPostgresTable(db *sql.DB) *PostgresTable {
	return &PostgresTable{db: db, timeout: 10 * time.Second}
}

// Migrate creates the reports table and its indexes if they do not exist.
func (t *PostgresTable) Migrate(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	_, err := t.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS reports (
			id            TEXT PRIMARY KEY,
			"timestamp"   BIGINT           NOT NULL,
			image_url     TEXT             NOT NULL,
			location_name TEXT             NOT NULL DEFAULT '',
			latitude      DOUBLE PRECISION,
			longitude     DOUBLE PRECISION,
			trash_type    TEXT             NOT NULL,
			severity      TEXT             NOT NULL,
			description   TEXT             NOT NULL DEFAULT '',
			analysis_raw  TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_reports_timestamp  ON reports("timestamp" DESC);
		CREATE INDEX IF NOT EXISTS idx_reports_trash_type ON reports(trash_type);
	`)
	if err != nil {
		return fmt.Errorf("postgres: migrate: %w", err)
	}
	return nil
}

func (t *PostgresTable) List(ctx context.Context) ([]models.Report, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	rows, err := t.db.QueryContext(ctx, `SELECT `+reportColumns+` FROM reports ORDER BY "timestamp" DESC`)
	if err != nil {
		return nil, fmt.Errorf("postgres: list reports: %w", err)
	}
	defer rows.Close()

	reports := []models.Report{}
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan report: %w", err)
		}
		reports = append(reports, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list reports: %w", err)
	}
	return reports, nil
}

func (t *PostgresTable) Get(ctx context.Context, id string) (models.Report, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	row := t.db.QueryRowContext(ctx, `SELECT `+reportColumns+` FROM reports WHERE id = $1`, id)
	r, err := scanReport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Report{}, ErrRowNotFound
	}
	if err != nil {
		return models.Report{}, fmt.Errorf("postgres: get report %q: %w", id, err)
	}
	return r, nil
}

func (t *PostgresTable) Insert(ctx context.Context, report models.Report) error {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	_, err := t.db.ExecContext(ctx,
		`INSERT INTO reports (`+reportColumns+`) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		reportArgs(report)...)
	if err != nil {
		return fmt.Errorf("postgres: insert report %q: %w", report.ID, err)
	}
	return nil
}

// InsertMany inserts all reports in one statement. Rows whose id already
// exists are skipped.
func (t *PostgresTable) InsertMany(ctx context.Context, reports []models.Report) error {
	if len(reports) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	query, args := insertManyQuery(reports)
	if _, err := t.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("postgres: insert %d reports: %w", len(reports), err)
	}
	return nil
}

func (t *PostgresTable) Update(ctx context.Context, report models.Report) error {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	_, err := t.db.ExecContext(ctx, `
		UPDATE reports SET
			"timestamp" = $2, image_url = $3, location_name = $4, latitude = $5, longitude = $6,
			trash_type = $7, severity = $8, description = $9, analysis_raw = $10
		WHERE id = $1`,
		reportArgs(report)...)
	if err != nil {
		return fmt.Errorf("postgres: update report %q: %w", report.ID, err)
	}
	return nil
}

func (t *PostgresTable) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	if _, err := t.db.ExecContext(ctx, `DELETE FROM reports WHERE id = $1`, id); err != nil {
		return fmt.Errorf("postgres: delete report %q: %w", id, err)
	}
	return nil
}

func (t *PostgresTable) Close(context.Context) error {
	return t.db.Close()
}

const reportArgCount = 10

func reportArgs(r models.Report) []interface{} {
	return []interface{}{
		r.ID,
		r.Timestamp,
		r.ImageURL,
		r.LocationName,
		r.Latitude,
		r.Longitude,
		r.TrashType,
		r.Severity,
		r.Description,
		sql.NullString{String: r.AnalysisRaw, Valid: r.AnalysisRaw != ""},
	}
}

func insertManyQuery(reports []models.Report) (string, []interface{}) {
	valueStrings := make([]string, 0, len(reports))
	valueArgs := make([]interface{}, 0, len(reports)*reportArgCount)

	for idx, r := range reports {
		base := idx * reportArgCount
		placeholders := make([]string, reportArgCount)
		for i := range placeholders {
			placeholders[i] = fmt.Sprintf("$%d", base+i+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(placeholders, ",")+")")
		valueArgs = append(valueArgs, reportArgs(r)...)
	}

	query := fmt.Sprintf(`INSERT INTO reports (%s) VALUES %s ON CONFLICT (id) DO NOTHING`,
		reportColumns, strings.Join(valueStrings, ","))
	return query, valueArgs
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanReport(row rowScanner) (models.Report, error) {
	var (
		r           models.Report
		lat, lng    sql.NullFloat64
		analysisRaw sql.NullString
	)
	err := row.Scan(
		&r.ID,
		&r.Timestamp,
		&r.ImageURL,
		&r.LocationName,
		&lat,
		&lng,
		&r.TrashType,
		&r.Severity,
		&r.Description,
		&analysisRaw,
	)
	if err != nil {
		return models.Report{}, err
	}
	if lat.Valid {
		r.Latitude = &lat.Float64
	}
	if lng.Valid {
		r.Longitude = &lng.Float64
	}
	r.AnalysisRaw = analysisRaw.String
	return r, nil
}
