package cmd

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/Iron-Ham/sheetview/internal/fileio"
	"github.com/Iron-Ham/sheetview/internal/grid"
)

var exportCmd = &cobra.Command{
	Use:   "export <input> <output>",
	Short: "Convert a document to S2V or XLSX",
	Long: `Load a document into the engine and write it back out. The output format
follows the output file extension:

  .s2v   S2V text covering the used range, formulas kept
  .xlsx  an Excel workbook with values and formulas

Use "-" as input to read standard input, or as output to write S2V to
standard output.`,
	Args: cobra.ExactArgs(2),
	RunE: runExport,
}

var exportForce bool

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().BoolVarP(&exportForce, "force", "f", false, "overwrite an existing output file")
}

// xlsxWriter is implemented by engines that can produce a workbook file.
type xlsxWriter interface {
	WriteXLSX(w io.Writer) error
}

func runExport(cmd *cobra.Command, args []string) error {
	in, out := args[0], args[1]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg).WithComponent("export")
	defer func() { _ = logger.Close() }()

	text, err := readInput(in, cmd.InOrStdin())
	if err != nil {
		return err
	}
	ctrl, err := openHeadless(cmd.Context(), cfg, text, logger)
	if err != nil {
		return err
	}
	defer func() { _ = ctrl.Bridge().Close() }()

	if out == stdinName {
		_, err := io.WriteString(cmd.OutOrStdout(), ctrl.Encode()+"\n")
		return err
	}
	if !exportForce {
		if exists, _ := afero.Exists(appFs, out); exists {
			return fmt.Errorf("%s already exists (use --force to overwrite)", out)
		}
	}

	data, err := exportData(ctrl, out)
	if err != nil {
		return err
	}
	if err := fileio.WriteAtomic(appFs, out, data, 0o644); err != nil {
		return err
	}
	logger.Info("document exported", "input", in, "output", out, "bytes", len(data))
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %s\n", out)
	return nil
}

// exportData encodes the sheet in the format named by path's extension.
func exportData(ctrl *grid.Controller, path string) ([]byte, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".s2v", ".txt", "":
		return []byte(ctrl.Encode()), nil
	case ".xlsx":
		w, ok := ctrl.Bridge().Engine().(xlsxWriter)
		if !ok {
			return nil, fmt.Errorf("engine %q cannot write XLSX", ctrl.Bridge().Name())
		}
		var buf bytes.Buffer
		if err := w.WriteXLSX(&buf); err != nil {
			return nil, fmt.Errorf("failed to write workbook: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported output format %q (use .s2v or .xlsx)", ext)
	}
}
