package database

import (
	"bytes"
	"context"
	"database/sql"
	"embed"
	"fmt"
	"regexp"
	"text/template"

	"github.com/pressly/goose/v3"
	gooseDB "github.com/pressly/goose/v3/database"
	"github.com/rs/zerolog"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

var (
	migrationTemplates = template.Must(template.ParseFS(migrationsFS, "migrations/*.sql"))
	identifierPattern  = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// jobMigrations lists the templated migrations in version order.
var jobMigrations = []struct {
	version int64
	up      string
	down    string
}{
	{version: 1, up: "00001_create_jobs.up.sql", down: "00001_create_jobs.down.sql"},
}

type Migrator struct {
	db      *sql.DB
	dialect goose.Dialect
	table   string
	log     zerolog.Logger
}

// NewMigrator wraps an open connection. driver is the database/sql driver
// name ("postgres" or "sqlite3"); table is the job table to create.
func NewMigrator(db *sql.DB, driver, table string, log zerolog.Logger) (*Migrator, error) {
	dialect, err := dialectFor(driver)
	if err != nil {
		return nil, err
	}
	if !identifierPattern.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	return &Migrator{db: db, dialect: dialect, table: table, log: log}, nil
}

// VersionTable is where goose tracks the applied versions for this job table.
func (m *Migrator) VersionTable() string {
	return "goose_" + m.table + "_version"
}

func (m *Migrator) Run() error {
	ctx := context.Background()

	provider, err := m.provider()
	if err != nil {
		return err
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	for _, r := range results {
		m.log.Info().Int64("version", r.Source.Version).Dur("duration", r.Duration).Str("table", m.table).Msg("migration applied")
	}

	version, err := provider.GetDBVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to read migration version: %w", err)
	}
	m.log.Info().Int64("version", version).Str("table", m.table).Msg("migrations applied")
	return nil
}

func (m *Migrator) provider() (*goose.Provider, error) {
	store, err := gooseDB.NewStore(m.dialect, m.VersionTable())
	if err != nil {
		return nil, fmt.Errorf("failed to create migration store: %w", err)
	}

	migrations := make([]*goose.Migration, 0, len(jobMigrations))
	for _, jm := range jobMigrations {
		up, err := m.render(jm.up)
		if err != nil {
			return nil, err
		}
		down, err := m.render(jm.down)
		if err != nil {
			return nil, err
		}
		migrations = append(migrations, goose.NewGoMigration(jm.version, execTx(up), execTx(down)))
	}

	provider, err := goose.NewProvider(goose.DialectCustom, m.db, nil,
		goose.WithStore(store),
		goose.WithDisableGlobalRegistry(true),
		goose.WithGoMigrations(migrations...),
		goose.WithLogger(gooseLogger{log: m.log}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration provider: %w", err)
	}
	return provider, nil
}

func (m *Migrator) render(name string) (string, error) {
	var buf bytes.Buffer
	if err := migrationTemplates.ExecuteTemplate(&buf, name, struct{ Table string }{m.table}); err != nil {
		return "", fmt.Errorf("failed to render migration %s: %w", name, err)
	}
	return buf.String(), nil
}

func execTx(query string) *goose.GoFunc {
	return &goose.GoFunc{
		RunTx: func(ctx context.Context, tx *sql.Tx) error {
			_, err := tx.ExecContext(ctx, query)
			return err
		},
	}
}

func dialectFor(driver string) (goose.Dialect, error) {
	switch driver {
	case "postgres":
		return goose.DialectPostgres, nil
	case "sqlite3":
		return goose.DialectSQLite3, nil
	default:
		return "", fmt.Errorf("unsupported migration driver %q", driver)
	}
}

type gooseLogger struct {
	log zerolog.Logger
}

func (l gooseLogger) Fatalf(format string, v ...interface{}) {
	l.log.Fatal().Msgf(format, v...)
}

func (l gooseLogger) Printf(format string, v ...interface{}) {
	l.log.Debug().Msgf(format, v...)
}
