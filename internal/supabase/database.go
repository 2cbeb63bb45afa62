package supabase

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"face-swap-backend/internal/jobs"
	"face-swap-backend/internal/models"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// DatabaseClient stores job rows over a direct SQL connection to the same
// table PostgREST exposes, or to a local SQLite file.
type DatabaseClient struct {
	db     *sql.DB
	driver string
	table  string
}

func NewDatabaseClient(driver, dsn, table string) (*DatabaseClient, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	client, err := NewDatabaseClientFromDB(db, driver, table)
	if err != nil {
		db.Close()
		return nil, err
	}
	return client, nil
}

func NewDatabaseClientFromDB(db *sql.DB, driver, table string) (*DatabaseClient, error) {
	if !identifierPattern.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	if driver == "sqlite3" {
		db.SetMaxOpenConns(1)
	}
	return &DatabaseClient{db: db, driver: driver, table: table}, nil
}

func (d *DatabaseClient) DB() *sql.DB {
	return d.db
}

func (d *DatabaseClient) CreateJob(ctx context.Context, job *models.Job) error {
	now := time.Now().UTC()
	createdAt := now
	if job.CreatedAt != nil {
		createdAt = *job.CreatedAt
	}

	_, err := d.db.ExecContext(ctx, d.rebind(`
		INSERT INTO `+d.table+` (job_id, url, original_filename, result_filename, type, result, error_message, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`), job.JobID, nullString(job.URL), nullString(job.OriginalFilename), nullString(job.ResultFilename),
		nullString(job.Type), nullJSON(job.Result), nullString(job.ErrorMessage), createdAt, now)
	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}
	return nil
}

func (d *DatabaseClient) UpdateJob(ctx context.Context, jobID string, update models.JobUpdate) error {
	if update.IsEmpty() {
		return nil
	}

	var sets []string
	var args []any
	if update.URL != nil {
		sets = append(sets, "url = ?")
		args = append(args, *update.URL)
	}
	if update.ResultFilename != nil {
		sets = append(sets, "result_filename = ?")
		args = append(args, *update.ResultFilename)
	}
	if update.Result != nil {
		sets = append(sets, "result = ?")
		args = append(args, string(update.Result))
	}
	if update.ErrorMessage != nil {
		sets = append(sets, "error_message = ?")
		args = append(args, *update.ErrorMessage)
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now().UTC(), jobID)

	res, err := d.db.ExecContext(ctx, d.rebind(
		"UPDATE "+d.table+" SET "+strings.Join(sets, ", ")+" WHERE job_id = ?",
	), args...)
	if err != nil {
		return fmt.Errorf("failed to update job: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update job: %w", err)
	}
	if affected == 0 {
		return jobs.ErrJobNotFound
	}
	return nil
}

func (d *DatabaseClient) GetJob(ctx context.Context, jobID string) (*models.Job, error) {
	var job models.Job
	var url, original, result, kind, output, errorMessage sql.NullString
	var createdAt, updatedAt sql.NullTime
	err := d.db.QueryRowContext(ctx, d.rebind(`
		SELECT job_id, url, original_filename, result_filename, type, result, error_message, created_at, updated_at
		FROM `+d.table+`
		WHERE job_id = ?
	`), jobID).Scan(
		&job.JobID, &url, &original, &result, &kind, &output, &errorMessage, &createdAt, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, jobs.ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	job.URL = fromNullString(url)
	job.OriginalFilename = fromNullString(original)
	job.ResultFilename = fromNullString(result)
	job.Type = fromNullString(kind)
	job.ErrorMessage = fromNullString(errorMessage)
	if output.Valid && output.String != "" {
		job.Result = []byte(output.String)
	}
	if createdAt.Valid {
		job.CreatedAt = &createdAt.Time
	}
	if updatedAt.Valid {
		job.UpdatedAt = &updatedAt.Time
	}
	return &job, nil
}

func (d *DatabaseClient) Close() error {
	return d.db.Close()
}

// rebind rewrites ? placeholders to $n for postgres.
func (d *DatabaseClient) rebind(query string) string {
	if d.driver != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullJSON(raw []byte) sql.NullString {
	if len(raw) == 0 {
		return sql.NullString{}
	}
	return sql.NullString{String: string(raw), Valid: true}
}

func fromNullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
