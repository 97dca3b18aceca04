// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/barcode-sheet/internal/history"
	"github.com/pdiddy/barcode-sheet/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent runs",
	Long: `History prints the most recent runs recorded in the history ledger:
when each started, its source, renderer, image and page counts, and the
sheet it wrote or the error that stopped it.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	dbPath := viper.GetString("history_db")
	if dbPath == "" {
		dbPath = types.DefaultHistoryDB
	}
	if !filepath.IsAbs(dbPath) {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		dbPath = filepath.Join(wd, dbPath)
	}

	store, err := history.NewStore(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := store.List(cmd.Context(), limit)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatHistory(os.Stdout, runs, jsonOutput)
}

func formatHistory(w io.Writer, runs []types.RunRecord, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}

	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return nil
	}

	fmt.Fprintf(w, "%-4s  %-19s  %-11s  %-24s  %-10s  %6s  %5s  %8s  %s\n",
		"ID", "Started", "Status", "Source", "Renderer", "Images", "Pages", "Duration", "Result")
	fmt.Fprintln(w, strings.Repeat("-", 120))

	for _, r := range runs {
		src := filepath.Base(r.Source)
		if len(src) > 24 {
			src = src[:21] + "..."
		}
		result := filepath.Base(r.Output)
		if r.Status != types.RunSucceeded {
			result = r.Error
		}
		fmt.Fprintf(w, "%-4d  %-19s  %-11s  %-24s  %-10s  %6d  %5d  %8s  %s\n",
			r.ID, r.StartedAt.Local().Format(time.DateTime), r.Status, src, r.Renderer,
			r.Images, r.Pages, r.Duration().Round(time.Millisecond), result)
	}

	fmt.Fprintf(w, "\n%d run(s)\n", len(runs))
	return nil
}

func init() {
	historyCmd.Flags().Int("limit", 20, "maximum number of runs to list")
	historyCmd.Flags().Bool("json", false, "output runs as JSON")

	rootCmd.AddCommand(historyCmd)
}
