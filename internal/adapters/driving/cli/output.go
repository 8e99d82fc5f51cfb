package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/annotate/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/annotate/internal/core/domain"
)

var outputStyles = styles.DefaultStyles()

// printTable writes rows under a header, padding each column to its widest cell.
func printTable(cmd *cobra.Command, headers []string, rows [][]string) {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	cells := make([]string, len(headers))
	for i, h := range headers {
		cells[i] = outputStyles.Header.Render(pad(h, widths[i]))
	}
	cmd.Println(strings.TrimRight(strings.Join(cells, ""), " "))

	for _, row := range rows {
		line := make([]string, len(row))
		for i, cell := range row {
			line[i] = pad(cell, widths[i]+2)
		}
		cmd.Println(strings.TrimRight(strings.Join(line, ""), " "))
	}
}

func pad(s string, width int) string {
	if n := lipgloss.Width(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

func truncate(s string, maxLen int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func parseMode(raw string) (domain.Mode, error) {
	mode := domain.Mode(strings.ToLower(raw))
	if mode != "" && !mode.IsValid() {
		return "", fmt.Errorf("%w: unknown mode %q (want extraction or segmentation)", domain.ErrInvalidInput, raw)
	}
	return mode, nil
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
