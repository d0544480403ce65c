// Package main provides the CLI entry point for exsanitize-go.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/ukaji3/exsanitize-go/internal/config"
	"github.com/ukaji3/exsanitize-go/internal/logging"
	"github.com/ukaji3/exsanitize-go/internal/server"
	"github.com/ukaji3/exsanitize-go/pkg/exsanitize"
	"github.com/ukaji3/exsanitize-go/pkg/exsanitize/models"
	"github.com/ukaji3/exsanitize-go/pkg/exsanitize/output"
)

// Version is set at build time.
var Version = "0.1.0"

// configKey is used to store config in context.
type configKey struct{}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "exsanitize [data.xlsx] [ranges.xlsx]",
		Short: "Check spreadsheet rows against parameter ranges",
		Long: `exsanitize-go reads a data workbook and a ranges workbook (columns
parameter, min, max), checks every data row against the ranges and splits
the rows into clean and bad workbooks. Bad rows carry an issues column.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "version" {
				return nil
			}

			cfg, err := config.Load(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}

			logger := logging.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
			if cfg.File != "" {
				logger.Debug("using config file", "path", cfg.File)
			}

			ctx := context.WithValue(cmd.Context(), configKey{}, cfg)
			cmd.SetContext(logging.WithLogger(ctx, logger))
			return nil
		},
		Args:          cobra.ExactArgs(2),
		RunE:          runSanitize,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: ./exsanitize.yaml)")
	pf.String("log-level", "info", "Log level: debug, info, warn, error")
	pf.String("log-format", "text", "Log format: text, json")

	f := rootCmd.Flags()
	f.String("data-sheet", "", "Sheet holding the data rows (default: first sheet)")
	f.String("ranges-sheet", "", "Sheet holding the parameter ranges (default: first sheet)")
	f.String("out-dir", ".", "Directory for the clean and bad workbooks")
	f.String("clean-file", "clean_data.xlsx", "File name of the clean workbook")
	f.String("bad-file", "bad_data.xlsx", "File name of the bad workbook")
	f.StringP("format", "f", config.FormatTable, "Output format: table, json, none")
	f.Int("preview-rows", 0, "Rows shown per table (0 shows all)")
	f.Bool("pretty", false, "Pretty-print JSON output")
	f.Bool("no-write", false, "Do not write the clean and bad workbooks")

	_ = rootCmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{config.FormatTable, config.FormatJSON, config.FormatNone}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the upload page and the sanitize API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := getConfig(cmd.Context())
			logger := logging.FromContext(cmd.Context())

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return server.New(cfg.Server, logger).ListenAndServe(ctx)
		},
	}

	cmd.Flags().String("addr", "", "Listen address (default: 127.0.0.1:8501)")
	cmd.Flags().Int64("max-upload-bytes", 0, "Maximum size of one upload request")

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "exsanitize %s\n", Version)
		},
	}
}

func runSanitize(cmd *cobra.Command, args []string) error {
	cfg := getConfig(cmd.Context())
	logger := logging.FromContext(cmd.Context())

	opts := exsanitize.Options{
		DataSheet:   cfg.DataSheet,
		RangesSheet: cfg.RangesSheet,
		Logger:      logger,
	}

	in, err := exsanitize.LoadFiles(args[0], args[1], opts)
	if err != nil {
		return fmt.Errorf("sanitization failed: %w", err)
	}

	result, err := exsanitize.Sanitize(in.Data, in.Ranges, opts)
	if err != nil {
		return fmt.Errorf("sanitization failed: %w", err)
	}

	out := cmd.OutOrStdout()
	switch cfg.Output.Format {
	case config.FormatTable:
		if err := renderTables(out, in, result, cfg.Output.PreviewRows); err != nil {
			return fmt.Errorf("failed to render output: %w", err)
		}
	case config.FormatJSON:
		jsonData, err := output.ResultToJSON(result, cfg.Output.Pretty)
		if err != nil {
			return fmt.Errorf("serialization failed: %w", err)
		}
		fmt.Fprintln(out, string(jsonData))
	}

	if !cfg.Output.Write {
		return nil
	}
	return writeWorkbooks(cfg.Output, result, logger)
}

func renderTables(w io.Writer, in *exsanitize.Inputs, result *models.Result, limit int) error {
	if err := output.RenderTable(w, "Uploaded Data", in.Data, limit); err != nil {
		return err
	}
	if err := output.RenderBounds(w, "Parameter Ranges", result.Bounds); err != nil {
		return err
	}
	if err := output.RenderTable(w, "Clean Data", result.Clean, limit); err != nil {
		return err
	}
	return output.RenderTable(w, "Bad Data", result.Bad, limit)
}

func writeWorkbooks(cfg config.OutputConfig, result *models.Result, logger *slog.Logger) error {
	if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	files := []struct {
		name  string
		table *models.Table
	}{
		{cfg.CleanFile, result.Clean},
		{cfg.BadFile, result.Bad},
	}
	for _, f := range files {
		path := filepath.Join(cfg.Dir, f.name)
		if err := output.SaveXLSX(path, f.table, ""); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		logger.Info("wrote workbook", "path", path, "rows", f.table.Len())
	}
	return nil
}

// getConfig retrieves the config from the command context.
func getConfig(ctx context.Context) *config.Config {
	if c, ok := ctx.Value(configKey{}).(*config.Config); ok {
		return c
	}
	cfg, err := config.Load("", nil)
	if err != nil {
		return &config.Config{}
	}
	return cfg
}
