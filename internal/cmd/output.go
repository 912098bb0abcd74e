package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/autocare/autocare/internal/config"
	"github.com/autocare/autocare/internal/tui/styles"
	"github.com/autocare/autocare/internal/util"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// maxCellWidth caps table columns so long free text does not wrap rows.
const maxCellWidth = 40

// table is a plain column layout for list output.
type table struct {
	headers []string
	rows    [][]string
}

func newTable(headers ...string) *table {
	return &table{headers: headers}
}

func (t *table) add(cells ...string) {
	t.rows = append(t.rows, cells)
}

func (t *table) render(w io.Writer) error {
	if len(t.rows) == 0 {
		_, err := fmt.Fprintln(w, styles.Muted.Render("Nothing to show."))
		return err
	}

	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			widths[i] = min(max(widths[i], lipgloss.Width(cell)), maxCellWidth)
		}
	}

	header := make([]string, len(t.headers))
	for i, h := range t.headers {
		header[i] = util.PadRight(styles.Primary.Bold(true).Render(h), widths[i])
	}
	if _, err := fmt.Fprintln(w, strings.TrimRight(strings.Join(header, "  "), " ")); err != nil {
		return err
	}

	for _, row := range t.rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = util.PadRight(cell, widths[i])
		}
		if _, err := fmt.Fprintln(w, strings.TrimRight(strings.Join(cells, "  "), " ")); err != nil {
			return err
		}
	}
	return nil
}

// outputFormat returns the --output flag, falling back to the configured format.
func outputFormat(cmd *cobra.Command, cfg *config.Config) (string, error) {
	format, _ := cmd.Flags().GetString("output")
	if format == "" {
		format = cfg.Output.Format
	}
	if !slices.Contains(config.ValidOutputFormats(), format) {
		return "", fmt.Errorf("invalid output format %q (valid: %s)", format, strings.Join(config.ValidOutputFormats(), ", "))
	}
	return format, nil
}

// render writes v as JSON or YAML, or calls tableFn for table output.
func render(cmd *cobra.Command, cfg *config.Config, v any, tableFn func() *table) error {
	format, err := outputFormat(cmd, cfg)
	if err != nil {
		return err
	}

	w := out(cmd)
	switch format {
	case "json":
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return tableFn().render(w)
	}
}
