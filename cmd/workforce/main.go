package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/godilite/workforce-intel/internal/app"
	"github.com/godilite/workforce-intel/internal/config"
	"github.com/godilite/workforce-intel/internal/service"
)

type env struct {
	cfg    *config.Config
	cols   config.Columns
	logger *zap.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	e := &env{}
	var envFile string

	root := &cobra.Command{
		Use:           "workforce",
		Short:         "Partner and engineer workforce intelligence from utilization and CSAT workbooks",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load(envFile)

			e.cfg = config.LoadFromEnv()
			if err := e.cfg.Validate(); err != nil {
				return err
			}
			logger, err := config.NewLogger(e.cfg)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			e.logger = logger

			cols, err := config.LoadColumns(e.cfg.ColumnsFile)
			if err != nil {
				return err
			}
			e.cols = cols
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if e.logger != nil {
				_ = e.logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")

	root.AddCommand(newBuildCmd(e), newFetchCmd(e), newServeCmd(e))
	return root
}

func newBuildCmd(e *env) *cobra.Command {
	var opts service.RunOptions

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Rebuild the partner mapping, engineer profiles and dashboard stats",
		RunE: func(cmd *cobra.Command, args []string) error {
			core, err := app.NewCore(cmd.Context(), e.cfg, e.cols, e.logger)
			if err != nil {
				return err
			}
			defer core.Close()

			res, err := core.Pipeline.Run(cmd.Context(), opts)
			if err != nil {
				return fmt.Errorf("build failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "run %s written to %s (data as of %s)\n",
				res.RunID, res.OutputDir, res.Report.Stats.DataAsOf)
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.Fetch, "fetch", false, "Download both workbooks from SharePoint before building")
	cmd.Flags().StringVar(&opts.OutputDir, "out", "", "Output directory for the JSON documents (default: OUTPUT_DIR)")
	cmd.Flags().BoolVar(&opts.Publish, "publish", false, "Also publish the run to Postgres (needs POSTGRES_URL)")
	return cmd
}

func newFetchCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "fetch",
		Short: "Download both workbooks from SharePoint without building",
		RunE: func(cmd *cobra.Command, args []string) error {
			core, err := app.NewCore(cmd.Context(), e.cfg, e.cols, e.logger)
			if err != nil {
				return err
			}
			defer core.Close()

			if err := core.Pipeline.Fetch(cmd.Context()); err != nil {
				if errors.Is(err, service.ErrFetchNotConfigured) {
					return fmt.Errorf("%w: set SHAREPOINT_TENANT_ID, AZURE_CLIENT_ID, AZURE_CLIENT_SECRET and SHAREPOINT_SITE_URL", err)
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "fetched %s and %s\n", e.cfg.UtilizationPath, e.cfg.CsatPath)
			return nil
		},
	}
}

func newServeCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard API over gRPC and HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := app.NewApp(cmd.Context(), e.cfg, e.cols, e.logger)
			if err != nil {
				return fmt.Errorf("failed to initialize application: %w", err)
			}
			return application.Run(cmd.Context())
		},
	}
}
