package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jdavenport/fairroster/internal/config"
	"github.com/jdavenport/fairroster/pkg/core/model"
	"github.com/jdavenport/fairroster/pkg/core/services"
	"github.com/jdavenport/fairroster/pkg/postgres"
	"github.com/jdavenport/fairroster/pkg/utils/logging"
)

// App holds the application dependencies
type App struct {
	cfg    *config.Config
	store  *postgres.Store
	logger *zap.Logger
	ctx    context.Context
}

var (
	env string
	app *App
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "fairroster",
		Short: "Fairroster CLI - Generate coverage slots and assign workers fairly",
		Long:  `A CLI tool for materializing coverage slots from role definitions and assigning workers to them with a difficulty-weighted fairness ledger.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app != nil {
				if app.logger != nil {
					app.logger.Sync()
				}
				if app.store != nil {
					app.store.Close()
				}
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment (required: test, prod, etc.)")
	if err := rootCmd.MarkPersistentFlagRequired("env"); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	rootCmd.AddCommand(importDataCmd())
	rootCmd.AddCommand(listPeriodsCmd())
	rootCmd.AddCommand(generateSlotsCmd())
	rootCmd.AddCommand(assignCmd())
	rootCmd.AddCommand(reportCmd())
	rootCmd.AddCommand(listWorkersCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initApp sets up logger, config and the database store
func initApp() error {
	var err error
	app = &App{
		ctx: context.Background(),
	}

	app.logger, err = logging.InitLogger(env)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.logger.Info("Starting application", zap.String("environment", env))

	app.cfg, err = config.LoadWithEnv(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	app.logger.Debug("Configuration loaded successfully")

	app.store, err = postgres.NewStore(app.ctx, app.cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := app.store.RunMigrations(app.ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	app.logger.Info("Database initialized successfully")

	return nil
}

// Command definitions

func importDataCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "importData <dataset.yaml>",
		Short: "Import a period with its roles, workers, constraints and ratings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := services.ImportDataset(app.ctx, app.store, app.logger, args[0])
			if err != nil {
				return err
			}

			fmt.Printf("\nDataset imported!\n\n")
			fmt.Printf("Period ID:   %s\n", result.PeriodID)
			fmt.Printf("Roles:       %d\n", result.Roles)
			fmt.Printf("Workers:     %d\n", result.Workers)
			fmt.Printf("Constraints: %d\n", result.Constraints)
			fmt.Printf("Ratings:     %d\n\n", result.Ratings)

			return nil
		},
	}
}

func listPeriodsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "listPeriods",
		Short: "List all scheduling periods",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			periods, err := app.store.GetPeriods(app.ctx)
			if err != nil {
				return fmt.Errorf("failed to list periods: %w", err)
			}

			fmt.Printf("\nFound %d periods:\n\n", len(periods))
			for _, p := range periods {
				fmt.Printf("- %s  %s  (%s to %s)\n",
					p.ID, p.Name,
					p.Start.Format("2006-01-02 15:04"),
					p.End.Format("2006-01-02 15:04"))
			}
			fmt.Println()

			return nil
		},
	}
}

func generateSlotsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generateSlots <period_id>",
		Short: "Generate coverage slots for a period from its role definitions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dryRun, _ := cmd.Flags().GetBool("dry-run")

			result, err := services.GenerateSlots(app.ctx, app.store, app.logger, args[0], app.cfg.Generator, dryRun)
			if err != nil {
				return err
			}

			fmt.Printf("\nGenerated %d slots for period %q\n", len(result.Slots), result.Period.Name)
			printDiagnostics(result.Diagnostics)
			if result.Saved {
				fmt.Println("Slots saved (previous slots and assignments replaced).")
			} else {
				fmt.Println("Dry run - nothing saved.")
			}
			fmt.Println()

			return nil
		},
	}

	cmd.Flags().Bool("dry-run", false, "Run without saving to database")

	return cmd
}

func assignCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assign <period_id>",
		Short: "Assign workers to the period's slots using the fairness ledger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seed, _ := cmd.Flags().GetInt64("seed")
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			forceCommit, _ := cmd.Flags().GetBool("force-commit")

			if !cmd.Flags().Changed("seed") {
				seed = time.Now().UnixNano()
			}
			// Always surface the seed so any run can be reproduced
			fmt.Printf("Using seed %d\n", seed)

			result, err := services.RunAssignment(app.ctx, app.store, app.cfg, app.logger, args[0], seed, dryRun, forceCommit)
			if err != nil {
				return err
			}

			if result.Success {
				fmt.Printf("\nAssignment succeeded for period %q\n", result.Period.Name)
			} else {
				fmt.Printf("\nAssignment incomplete for period %q: %d slots unassigned\n",
					result.Period.Name, result.Unassigned)
			}
			printDiagnostics(result.Diagnostics)
			printStats(result.Stats)
			if result.Saved {
				fmt.Println("Assignments saved.")
			} else {
				fmt.Println("Assignments not saved.")
			}
			fmt.Println()

			return nil
		},
	}

	cmd.Flags().Int64("seed", 0, "Seed for reproducible tie-breaking (defaults to current time)")
	cmd.Flags().Bool("dry-run", false, "Run without saving to database")
	cmd.Flags().Bool("force-commit", false, "Save assignments even when some slots are unassigned")

	return cmd
}

func reportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report <period_id>",
		Short: "Show the per-worker fairness report for a period",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := services.FairnessReport(app.ctx, app.store, app.cfg, app.logger, args[0])
			if err != nil {
				return err
			}

			fmt.Printf("\nFairness report for period %q\n", result.Period.Name)
			if result.Unassigned > 0 {
				fmt.Printf("(%d slots currently unassigned)\n", result.Unassigned)
			}
			printStats(result.Rows)
			fmt.Println()

			return nil
		},
	}
}

func listWorkersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "listWorkers",
		Short: "List all workers with their qualifications",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			workers, err := app.store.GetWorkers(app.ctx)
			if err != nil {
				return fmt.Errorf("failed to list workers: %w", err)
			}

			fmt.Printf("\nFound %d workers:\n\n", len(workers))
			for _, w := range workers {
				maxHours := "no cap"
				if w.MaxHoursPerPeriod != nil {
					maxHours = fmt.Sprintf("max %.1fh", *w.MaxHoursPerPeriod)
				}
				fmt.Printf("- %s (%s) - %s - qualified for %d roles\n",
					w.Name, w.ID, maxHours, len(w.QualifiedRoleIDs))
			}
			fmt.Println()

			return nil
		},
	}
}

func printDiagnostics(diagnostics []model.Diagnostic) {
	for _, diag := range diagnostics {
		fmt.Printf("  [%s] %s\n", diag.Severity, diag.Message)
	}
}

func printStats(stats []services.WorkerStats) {
	if len(stats) == 0 {
		return
	}
	fmt.Printf("\n%-20s %8s %10s %14s\n", "Worker", "Shifts", "Hours", "Weighted")
	for _, row := range stats {
		fmt.Printf("%-20s %8d %10.1f %14.1f\n",
			row.Name, row.AssignedShifts, row.RealHours, row.WeightedHours)
	}
}
