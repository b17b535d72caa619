package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/Iron-Ham/sheetview/internal/grid"
	"github.com/Iron-Ham/sheetview/internal/tui/styles"
)

var catCmd = &cobra.Command{
	Use:   "cat <file>",
	Short: "Print a document as a table",
	Long: `Load an S2V document into the engine and print the computed values as a
table. Use "-" to read the document from standard input.

Examples:
  sheetview cat budget.s2v
  sheetview cat --range B2:D10 budget.s2v
  sheetview cat --raw --plain budget.s2v | column -t -s $'\t'`,
	Args: cobra.ExactArgs(1),
	RunE: runCat,
}

var (
	catRaw   bool
	catPlain bool
	catRange string
)

func init() {
	rootCmd.AddCommand(catCmd)
	catCmd.Flags().BoolVar(&catRaw, "raw", false, "print cell contents (formulas) instead of computed values")
	catCmd.Flags().BoolVar(&catPlain, "plain", false, "print tab-separated values without borders")
	catCmd.Flags().StringVar(&catRange, "range", "", "limit output to a cell range such as A1:D10")
}

// cellRange is an inclusive rectangle of cells.
type cellRange struct {
	From, To grid.Address
}

// parseRange parses "A1:D10" or a single reference. The corners may be
// given in any order.
func parseRange(s string) (cellRange, error) {
	first, second, found := strings.Cut(strings.TrimSpace(s), ":")
	from, err := grid.ParseA1(first)
	if err != nil {
		return cellRange{}, fmt.Errorf("invalid range %q: %w", s, err)
	}
	to := from
	if found {
		if to, err = grid.ParseA1(second); err != nil {
			return cellRange{}, fmt.Errorf("invalid range %q: %w", s, err)
		}
	}
	return cellRange{
		From: grid.Address{Row: min(from.Row, to.Row), Col: min(from.Col, to.Col)},
		To:   grid.Address{Row: max(from.Row, to.Row), Col: max(from.Col, to.Col)},
	}, nil
}

// catOptions controls renderSheet.
type catOptions struct {
	Raw   bool
	Plain bool
	// Range is nil for the populated extent of the sheet.
	Range *cellRange
}

func runCat(cmd *cobra.Command, args []string) error {
	opts := catOptions{Raw: catRaw, Plain: catPlain}
	if catRange != "" {
		r, err := parseRange(catRange)
		if err != nil {
			return err
		}
		opts.Range = &r
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg).WithComponent("cat")
	defer func() { _ = logger.Close() }()

	text, err := readInput(args[0], cmd.InOrStdin())
	if err != nil {
		return err
	}
	ctrl, err := openHeadless(cmd.Context(), cfg, text, logger)
	if err != nil {
		return err
	}
	defer func() { _ = ctrl.Bridge().Close() }()

	fmt.Fprintln(cmd.OutOrStdout(), renderSheet(ctrl, opts))
	return nil
}

// renderSheet formats the cells of ctrl's sheet.
func renderSheet(ctrl *grid.Controller, opts catOptions) string {
	bridge := ctrl.Bridge()
	r := cellRange{
		From: grid.Address{Row: 1, Col: 1},
		To:   grid.Address{Row: bridge.RowCount(), Col: bridge.ColumnCount()},
	}
	if opts.Range != nil {
		r = *opts.Range
	}
	if !r.To.Valid() {
		return "(empty sheet)"
	}

	cell := func(row, col int) string {
		if opts.Raw {
			return bridge.CellContent(row, col)
		}
		return bridge.CellDisplay(row, col)
	}

	if opts.Plain {
		var sb strings.Builder
		for row := r.From.Row; row <= r.To.Row; row++ {
			if row > r.From.Row {
				sb.WriteByte('\n')
			}
			for col := r.From.Col; col <= r.To.Col; col++ {
				if col > r.From.Col {
					sb.WriteByte('\t')
				}
				sb.WriteString(cell(row, col))
			}
		}
		return sb.String()
	}

	headers := []string{""}
	for col := r.From.Col; col <= r.To.Col; col++ {
		headers = append(headers, grid.ColumnLabel(col))
	}
	rows := make([][]string, 0, r.To.Row-r.From.Row+1)
	for row := r.From.Row; row <= r.To.Row; row++ {
		line := []string{strconv.Itoa(row)}
		for col := r.From.Col; col <= r.To.Col; col++ {
			line = append(line, cell(row, col))
		}
		rows = append(rows, line)
	}

	palette := styles.DefaultPalette()
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(palette.Header).Padding(0, 1)
	rowHeaderStyle := lipgloss.NewStyle().Foreground(palette.Muted).Padding(0, 1).Align(lipgloss.Right)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	numberStyle := cellStyle.Align(lipgloss.Right)
	errorStyle := cellStyle.Foreground(palette.Error)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(palette.Border)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 0:
				return rowHeaderStyle
			}
			a := grid.Address{Row: r.From.Row + row, Col: r.From.Col + col - 1}
			if bridge.IsCellError(a.Row, a.Col) {
				return errorStyle
			}
			if !opts.Raw && isNumeric(bridge.CellDisplay(a.Row, a.Col)) {
				return numberStyle
			}
			return cellStyle
		})
	return t.String()
}

func isNumeric(s string) bool {
	_, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return err == nil
}
