package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ironsheep/brick-mosaic-mcp/internal/palette"
	"github.com/ironsheep/brick-mosaic-mcp/internal/shape"
)

var (
	paletteMode string
	paletteCSV  bool
)

var paletteCmd = &cobra.Command{
	Use:   "palette",
	Short: "List the built-in colors for a stud shape",
	Args:  cobra.NoArgs,
	RunE:  runPalette,
}

func init() {
	paletteCmd.Flags().StringVarP(&paletteMode, "mode", "m", "", "stud shape (circle, square, circle_plate, square_plate); empty lists every color")
	paletteCmd.Flags().BoolVar(&paletteCSV, "csv", false, "write CSV importable as custom colors")
	rootCmd.AddCommand(paletteCmd)
}

func runPalette(cmd *cobra.Command, args []string) error {
	mode, ok := shape.Parse(paletteMode)
	if !ok {
		return fmt.Errorf("unknown mode %q", paletteMode)
	}
	colors := palette.BuiltIn(mode)

	out := cmd.OutOrStdout()
	if paletteCSV {
		return palette.ExportCSV(out, colors)
	}

	label := "all shapes"
	if mode != shape.None {
		label = mode.Label()
	}
	fmt.Fprintf(out, "%d colors (%s)\n", len(colors), label)
	for _, c := range colors {
		fmt.Fprintf(out, "  %-8s %s  %s\n", c.ID, c.Hex, c.Name)
	}
	return nil
}
