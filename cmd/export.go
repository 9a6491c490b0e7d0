package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/frahmantamala/timesheet/internal/entry"
	"github.com/frahmantamala/timesheet/internal/export"
	"github.com/frahmantamala/timesheet/pkg/logger"
)

var exportOpts struct {
	Out     string
	User    string
	Project string
	Status  string
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write entries to a CSV file",
	Long:  `Export entries, newest first, in the same CSV layout as the download endpoint.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return err
		}

		d, err := openDatabase(cfg.Database)
		if err != nil {
			return err
		}
		defer d.Close()

		lg := logger.LoggerWrapper()
		app, err := newApplication(cmd.Context(), cfg, d, lg)
		if err != nil {
			return err
		}

		out := exportOpts.Out
		if out == "" {
			out = export.Filename(time.Now())
		}
		f, err := os.Create(filepath.Clean(out))
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", out, err)
		}
		defer f.Close()

		n, err := exportEntries(cmd.Context(), app, f, entry.Filter{
			UserEmail: exportOpts.User,
			ProjectID: exportOpts.Project,
			Status:    exportOpts.Status,
		})
		if err != nil {
			return err
		}

		lg.Info("export written", "file", out, "entries", n)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOpts.Out, "out", "o", "", "output file (default timesheet-YYYY-MM-DD.csv)")
	exportCmd.Flags().StringVar(&exportOpts.User, "user", "", "only entries of this email")
	exportCmd.Flags().StringVar(&exportOpts.Project, "project", "", "only entries of this project id")
	exportCmd.Flags().StringVar(&exportOpts.Status, "status", "", "approved, pending or rejected")
}

func exportEntries(ctx context.Context, app *application, w io.Writer, f entry.Filter) (int, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	entries, err := app.Entry.ExportSet(ctx, adminPrincipal(), f)
	if err != nil {
		return 0, err
	}
	if err := export.Write(w, entries); err != nil {
		return 0, fmt.Errorf("failed to write csv: %w", err)
	}
	return len(entries), nil
}
