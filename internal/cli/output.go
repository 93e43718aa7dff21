// Package cli provides CLI output formatting and display functions.
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/AdrianWisniewskiKaggle/Country-Specific-User-Ranking-Dashboard/internal/board"
	"github.com/AdrianWisniewskiKaggle/Country-Specific-User-Ranking-Dashboard/internal/etl"
)

// OutputOptions configures CLI output behavior.
type OutputOptions struct {
	Verbose bool
	Quiet   bool
	JSON    bool
}

// PrintRows displays rendered rows either as a text table or as JSON.
func PrintRows(rows []board.DisplayRow, opts OutputOptions) error {
	if opts.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	widths := columnWidths(rows)

	var header strings.Builder
	for i, col := range board.Columns {
		if i > 0 {
			header.WriteString("  ")
		}
		header.WriteString(pad(col, widths[i]))
	}
	fmt.Println(header.String())
	fmt.Println(strings.Repeat("-", len(header.String())))

	for _, row := range rows {
		var line strings.Builder
		for i, col := range board.Columns {
			if i > 0 {
				line.WriteString("  ")
			}
			line.WriteString(pad(cellString(row[col]), widths[i]))
		}
		fmt.Println(line.String())
	}

	if !opts.Quiet {
		fmt.Printf("\n%d row(s)\n", len(rows))
	}
	return nil
}

// PrintRefreshSummary displays the result of a metadata refresh run.
func PrintRefreshSummary(summary *etl.Summary, output string, opts OutputOptions) {
	if opts.Quiet {
		return
	}
	fmt.Println("✓ Metadata refresh completed")
	fmt.Printf("  Records written: %d\n", summary.Records)
	fmt.Printf("  Output: %s\n", output)
	if opts.Verbose {
		fmt.Printf("  Users read: %d\n", summary.Users)
		fmt.Printf("  Achievement rows read: %d\n", summary.Achievements)
		fmt.Printf("  Rows dropped (unranked): %d\n", summary.Dropped)
	}
}

// columnWidths computes the display width of each projected column.
func columnWidths(rows []board.DisplayRow) []int {
	widths := make([]int, len(board.Columns))
	for i, col := range board.Columns {
		widths[i] = len(col)
	}
	for _, row := range rows {
		for i, col := range board.Columns {
			if w := len(cellString(row[col])); w > widths[i] {
				widths[i] = w
			}
		}
	}
	return widths
}

func cellString(v interface{}) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
