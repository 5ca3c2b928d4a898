package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mpelletier/rosterd/app"
	"github.com/mpelletier/rosterd/config"
	"github.com/mpelletier/rosterd/infra/logger"
	"github.com/mpelletier/rosterd/infra/rosterfile"
	"github.com/mpelletier/rosterd/pkg/export"
)

var (
	exportJSON string
	exportCSV  string
	exportXLSX string
)

var runCmd = &cobra.Command{
	Use:   "run <roster-file>",
	Short: "Run the assignment engine against one day's roster",
	Args:  cobra.ExactArgs(1),
	RunE:  runDay,
}

func init() {
	runCmd.Flags().StringVar(&exportJSON, "export-json", "", "write the resulting schedule to this JSON file")
	runCmd.Flags().StringVar(&exportCSV, "export-csv", "", "write the resulting schedule to this CSV file")
	runCmd.Flags().StringVar(&exportXLSX, "export-xlsx", "", "write the resulting schedule to this XLSX file")
	rootCmd.AddCommand(runCmd)
}

func runDay(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	f, err := rosterfile.Load(args[0])
	if err != nil {
		return fmt.Errorf("load roster: %w", err)
	}
	day, err := f.Build()
	if err != nil {
		return fmt.Errorf("build roster: %w", err)
	}

	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	logg := logger.New("run-command")
	defer func() {
		if err := svc.Close(); err != nil {
			logg.Errorf("service close: %v", err)
		}
	}()

	res := svc.RunDay(day.Schedule, day.Staff, day.Students)
	fmt.Fprintln(cmd.OutOrStdout(), res.Report.String())
	for _, msg := range res.Errors {
		fmt.Fprintln(cmd.ErrOrStderr(), msg)
	}
	if err := exportDay(day); err != nil {
		return err
	}
	if res.Unresolved() > 0 {
		return fmt.Errorf("%d coverage gaps remain", res.Unresolved())
	}
	return nil
}

func exportDay(day rosterfile.Day) error {
	if exportJSON == "" && exportCSV == "" && exportXLSX == "" {
		return nil
	}
	rows := export.BuildRows(day.Schedule, day.Staff, day.Students)
	writers := []struct {
		path  string
		write func(io.Writer, []export.Row) error
	}{
		{exportJSON, export.WriteJSON},
		{exportCSV, export.WriteCSV},
		{exportXLSX, export.WriteXLSX},
	}
	for _, w := range writers {
		if w.path == "" {
			continue
		}
		file, err := os.Create(w.path)
		if err != nil {
			return fmt.Errorf("create %s: %w", w.path, err)
		}
		if err := w.write(file, rows); err != nil {
			_ = file.Close()
			return fmt.Errorf("write %s: %w", w.path, err)
		}
		if err := file.Close(); err != nil {
			return fmt.Errorf("close %s: %w", w.path, err)
		}
	}
	return nil
}
