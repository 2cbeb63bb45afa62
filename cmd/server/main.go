// @title           Face Swap Backend API
// @version         1.0.0
// @description     Image orchestration API: face swap, cartoonify, background removal and character generation. Long-running work is queued and polled through GET /job/{job_id}.

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8000
// @BasePath  /

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"face-swap-backend/internal/config"
	"face-swap-backend/internal/logger"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "face-swap-backend",
		Short:         "Face swap, cartoonify and background removal API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath)
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file (default $CONFIG_FILE)")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath)
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Apply job table migrations to the SQL job store",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(configPath)
		},
	})

	return root
}

func loadConfig(path string) (*config.Config, zerolog.Logger, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "warning: failed to read .env: %v\n", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, logger.New(cfg.Environment), nil
}

func runServe(configPath string) error {
	cfg, log, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}

	a, err := newApp(cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("failed to start")
		return err
	}
	return a.run()
}

func runMigrate(configPath string) error {
	cfg, log, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}

	backend := cfg.StoreBackend()
	if backend != config.StorePostgres && backend != config.StoreSQLite {
		err := fmt.Errorf("migrations apply to the postgres and sqlite job stores, not %q", backend)
		log.Error().Err(err).Msg("migrate")
		return err
	}

	db, err := openDatabase(cfg, backend, log)
	if err != nil {
		log.Error().Err(err).Msg("migrate")
		return err
	}
	defer db.Close()

	log.Info().Str("job_store", backend).Msg("migrations completed")
	return nil
}
