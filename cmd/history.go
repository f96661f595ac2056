// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 The Railscope Authors

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/railscope/railscope/pkg/history"
	"github.com/railscope/railscope/pkg/record"
)

var (
	historyDBPath  string
	historyDevice  string
	historyLimit   int
	historyFormat  string
	historyOutPath string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Archive and query past recordings",
	Long: `Manage the local telemetry archive.

Recordings made with 'railscope record' can be imported into a SQLite
archive, listed, and exported as CSV or JSON. The archive location comes
from --db, the history section of the config file, or the default under the
user config directory.`,
}

var historyImportCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Load a recording into the archive",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryImport,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived samples, newest first",
	RunE:  runHistoryList,
}

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export archived samples as CSV or JSON",
	RunE:  runHistoryExport,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.PersistentFlags().StringVar(&historyDBPath, "db", "", "Archive database file (default from config)")

	historyListCmd.Flags().StringVar(&historyDevice, "device", "", "Only samples from this device")
	historyListCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum samples to list (0 = all)")

	historyExportCmd.Flags().StringVar(&historyDevice, "device", "", "Only samples from this device")
	historyExportCmd.Flags().IntVar(&historyLimit, "limit", 0, "Maximum samples to export (0 = all)")
	historyExportCmd.Flags().StringVar(&historyFormat, "format", "csv", "Export format: csv or json")
	historyExportCmd.Flags().StringVar(&historyOutPath, "out", "", "Output file (default stdout)")

	historyCmd.AddCommand(historyImportCmd)
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyExportCmd)
}

// archivePath resolves the database location: flag, then config, then the
// default under the user config directory.
func archivePath() (string, error) {
	if historyDBPath != "" {
		return historyDBPath, nil
	}
	if appConfig != nil && appConfig.History.Path != "" {
		return appConfig.History.Path, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("no --db given and no user config directory: %v", err)
	}
	return filepath.Join(dir, "railscope", "history.db"), nil
}

func openArchive() (*history.DB, error) {
	path, err := archivePath()
	if err != nil {
		return nil, err
	}
	return history.Open(path)
}

func runHistoryImport(cmd *cobra.Command, args []string) error {
	r, err := record.Open(args[0])
	if err != nil {
		return err
	}
	defer r.Close()

	db, err := openArchive()
	if err != nil {
		return err
	}
	defer db.Close()

	count, err := db.Import(r)
	if err != nil {
		return fmt.Errorf("import stopped after %d samples: %w", count, err)
	}

	fmt.Printf("%d samples imported into %s\n", count, db.Path())
	return nil
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	db, err := openArchive()
	if err != nil {
		return err
	}
	defer db.Close()

	samples, err := db.ListSamples(history.SampleFilter{
		Device: historyDevice,
		Limit:  historyLimit,
	})
	if err != nil {
		return err
	}

	if len(samples) == 0 {
		fmt.Println("No archived samples.")
		return nil
	}

	fmt.Printf("%-6s %-20s %-10s %7s %7s %6s %7s\n",
		"ID", "Taken", "Name", "Temp1", "Temp2", "Fan", "Total")
	for _, s := range samples {
		fmt.Printf("%-6d %-20s %-10s %6.1fC %6.1fC %5.0f %6.1fW\n",
			s.ID, s.Taken.Format("2006-01-02 15:04:05"), s.Name,
			s.TempA, s.TempB, s.FanRPM, s.TotalWatts)
	}
	fmt.Printf("\n%d samples\n", len(samples))
	return nil
}

func runHistoryExport(cmd *cobra.Command, args []string) error {
	db, err := openArchive()
	if err != nil {
		return err
	}
	defer db.Close()

	out := os.Stdout
	if historyOutPath != "" {
		f, err := os.Create(historyOutPath)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	filter := history.SampleFilter{
		Device: historyDevice,
		Limit:  historyLimit,
	}

	switch historyFormat {
	case "csv":
		err = db.ExportCSV(out, filter)
	case "json":
		err = db.ExportJSON(out, filter)
	default:
		return fmt.Errorf("unknown format %q (use csv or json)", historyFormat)
	}
	if err != nil {
		return err
	}

	if historyOutPath != "" {
		fmt.Printf("Exported to %s\n", historyOutPath)
	}
	return nil
}
