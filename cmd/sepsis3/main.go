package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/halfer53/sepsis3-mimic/internal/api"
	"github.com/halfer53/sepsis3-mimic/internal/config"
	"github.com/halfer53/sepsis3-mimic/internal/evaluation"
	"github.com/halfer53/sepsis3-mimic/internal/export"
	"github.com/halfer53/sepsis3-mimic/internal/lods"
	"github.com/halfer53/sepsis3-mimic/internal/mimic"
	"github.com/halfer53/sepsis3-mimic/internal/platform/db"
	"github.com/halfer53/sepsis3-mimic/internal/platform/middleware"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "sepsis3",
		Short: "LODS severity scoring over a MIMIC database",
	}

	rootCmd.AddCommand(scoreCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(evaluateCmd())
	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newLogger follows the loaded configuration: human-readable console output in
// development, JSON otherwise.
func newLogger(cfg *config.Config, out io.Writer) zerolog.Logger {
	if cfg.IsDev() {
		return zerolog.New(zerolog.ConsoleWriter{Out: out}).With().Timestamp().Logger()
	}
	return zerolog.New(out).With().Timestamp().Logger()
}

func connect(ctx context.Context) (*config.Config, *pgxpool.Pool, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, nil, err
	}
	return cfg, pool, nil
}

func scoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "score",
		Short: "Compute LODS scores for all eligible ICU stays and store them",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			cfg, pool, err := connect(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			logger := newLogger(cfg, os.Stdout)
			pipeline := lods.NewPipeline(mimic.NewRepository(pool), logger, cfg.Workers)
			run, err := pipeline.RunAndStore(ctx, lods.NewScoreRepo(pool))
			if err != nil {
				return err
			}

			fmt.Printf("Run %s scored %d stays.\n", run.ID, run.StayCount)
			return nil
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			ctx := context.Background()
			_, pool, err := connect(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			count, err := db.NewMigrator(pool, dir).Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			ctx := context.Background()
			_, pool, err := connect(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			statuses, err := db.NewMigrator(pool, dir).Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export stored scores to a Parquet file",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, _ := cmd.Flags().GetString("out")

			ctx := context.Background()
			_, pool, err := connect(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			store := lods.NewScoreRepo(pool)
			scores, _, err := store.List(ctx, 1<<31-1, 0)
			if err != nil {
				return err
			}

			writer, err := export.NewScoreWriter(out)
			if err != nil {
				return err
			}
			if err := writer.WriteAll(scores); err != nil {
				return err
			}

			fmt.Printf("Wrote %d score(s) to %s.\n", writer.Count(), out)
			return nil
		},
	}
	cmd.Flags().String("out", "lods_scores.parquet", "Output file path")
	return cmd
}

func evaluateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Evaluate score discrimination against hospital mortality",
		RunE: func(cmd *cobra.Command, args []string) error {
			devFraction, _ := cmd.Flags().GetFloat64("dev-fraction")
			iterations, _ := cmd.Flags().GetInt("bootstrap")
			seed, _ := cmd.Flags().GetInt64("seed")

			ctx := context.Background()
			_, pool, err := connect(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			store := lods.NewScoreRepo(pool)
			scores, _, err := store.List(ctx, 1<<31-1, 0)
			if err != nil {
				return err
			}
			outcomes, err := mimic.NewRepository(pool).ListOutcomes(ctx)
			if err != nil {
				return err
			}

			labeled := evaluation.Join(scores, outcomes)
			dev, val := evaluation.Split(labeled, devFraction, seed)

			for _, sample := range []struct {
				name    string
				samples []evaluation.Labeled
			}{
				{"development", dev},
				{"validation", val},
			} {
				report, err := evaluation.Evaluate(sample.samples, iterations, seed)
				if err != nil {
					return fmt.Errorf("%s set: %w", sample.name, err)
				}
				fmt.Printf("%s: n=%d deaths=%d AUC=%.3f (95%% CI %.3f-%.3f)\n",
					sample.name, report.N, report.Positives,
					report.AUC, report.CILower, report.CIUpper)
			}
			return nil
		},
	}
	cmd.Flags().Float64("dev-fraction", 0.7, "Fraction of stays in the development set")
	cmd.Flags().Int("bootstrap", 1000, "Bootstrap iterations for the confidence interval")
	cmd.Flags().Int64("seed", 42, "Seed for the split and bootstrap")
	return cmd
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve stored scores over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func runServer() error {
	ctx := context.Background()
	cfg, pool, err := connect(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	logger := newLogger(cfg, os.Stdout)
	logger.Info().Msg("connected to database")

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))

	e.GET("/health", db.HealthHandler(pool))

	apiV1 := e.Group("/api/v1")
	api.NewHandler(lods.NewScoreRepo(pool)).RegisterRoutes(apiV1)

	// Graceful shutdown on SIGINT/SIGTERM
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("shutdown failed")
		}
	}()

	logger.Info().Str("port", cfg.Port).Msg("server listening")
	if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
		logger.Fatal().Err(err).Msg("server stopped")
	}
	return nil
}
