package cli

import (
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ironsheep/brick-mosaic-mcp/internal/imaging"
	"github.com/ironsheep/brick-mosaic-mcp/internal/instructions"
	"github.com/ironsheep/brick-mosaic-mcp/internal/mosaic"
	"github.com/ironsheep/brick-mosaic-mcp/internal/palette"
	"github.com/ironsheep/brick-mosaic-mcp/internal/render"
	"github.com/ironsheep/brick-mosaic-mcp/internal/shape"
)

// Output file names.
const (
	MosaicFile       = "mosaic.png"
	InstructionsFile = "instructions.json"
	LegendFile       = "legend.csv"
)

var (
	genWidth       int
	genHeight      int
	genMode        string
	genFilter      string
	genCustom      string
	genSectionSize int
	genOutDir      string
	genSections    bool
	genCellSize    int
	genCropAspect  bool
)

var generateCmd = &cobra.Command{
	Use:   "generate <image>",
	Short: "Generate a mosaic preview and build instructions from an image",
	Long: `Maps the image onto a width x height stud grid, renders the preview
and writes sectioned build instructions.

Writes to the output directory:
  mosaic.png         preview
  instructions.json  sections, cell numbers and the global legend
  legend.csv         parts list`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().IntVarP(&genWidth, "width", "W", 32, "grid width in studs")
	generateCmd.Flags().IntVarP(&genHeight, "height", "H", 32, "grid height in studs")
	generateCmd.Flags().StringVarP(&genMode, "mode", "m", "", "stud shape (default from BRICK_MOSAIC_PIXEL_MODE)")
	generateCmd.Flags().StringVarP(&genFilter, "filter", "f", "", `tone filter, e.g. "saturate(1.2) contrast(0.9)"`)
	generateCmd.Flags().StringVarP(&genCustom, "custom", "c", "", "CSV of custom colors (Color Name, Hex Code)")
	generateCmd.Flags().IntVarP(&genSectionSize, "section-size", "s", 0, "instruction section size in studs (default from BRICK_MOSAIC_SECTION_SIZE)")
	generateCmd.Flags().StringVarP(&genOutDir, "out", "o", "./mosaic_out", "output directory")
	generateCmd.Flags().BoolVar(&genSections, "sections", false, "draw section lines and numbers on the preview")
	generateCmd.Flags().IntVar(&genCellSize, "cell-size", 0, "preview pixels per stud (0 = computed)")
	generateCmd.Flags().BoolVar(&genCropAspect, "crop", false, "center-crop the image to the grid aspect ratio first")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	start := time.Now()
	cfg, log := setup()

	mode := cfg.PixelMode
	if genMode != "" {
		m, ok := shape.Parse(genMode)
		if !ok || m == shape.None {
			return fmt.Errorf("unknown mode %q", genMode)
		}
		mode = m
	}
	sectionSize := genSectionSize
	if sectionSize <= 0 {
		sectionSize = cfg.SectionSize
	}

	absOutput, err := filepath.Abs(genOutDir)
	if err != nil {
		return fmt.Errorf("resolve output path: %w", err)
	}

	src, err := imaging.NewImageCache().LoadSource(args[0])
	if err != nil {
		return err
	}
	if genCropAspect {
		cropped, err := imaging.CropToAspect(src.Image, genWidth, genHeight, imaging.DefaultCropFraction)
		if err != nil {
			return err
		}
		src = imaging.NewSource(cropped)
	}

	var custom []palette.Color
	if genCustom != "" {
		custom, err = loadCustomColors(genCustom, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
	}

	log.WithField("image", args[0]).WithField("custom", len(custom)).Debug("generating")

	engine := mosaic.NewEngine(cfg.EngineConfig(log))
	res, err := engine.Generate(cmd.Context(), mosaic.Request{
		Source: src,
		Width:  genWidth,
		Height: genHeight,
		Filter: genFilter,
		Mode:   mode,
		Custom: custom,
	})
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}

	if err := os.MkdirAll(absOutput, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	cellSize := genCellSize
	if cellSize <= 0 {
		cellSize = res.Dimensions.CellSize
	}
	grid := engine.Grid()
	img, err := render.Render(grid, genWidth, genHeight, cellSize, mode)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	var preview image.Image = img
	if genSections {
		preview = render.DrawSections(img, render.SectionOptions{SectionSize: sectionSize, CellSize: cellSize, ShowNumbers: true})
	}
	if !preview.Bounds().Empty() {
		if err := render.SavePNG(filepath.Join(absOutput, MosaicFile), preview); err != nil {
			return err
		}
	}

	usage := engine.Usage()
	doc, err := instructions.Build(grid, genWidth, genHeight, sectionSize, usage.Combined())
	if err != nil {
		return fmt.Errorf("instructions: %w", err)
	}
	if err := instructions.WriteJSON(doc, filepath.Join(absOutput, InstructionsFile)); err != nil {
		return fmt.Errorf("write instructions: %w", err)
	}
	if err := instructions.SaveLegendCSV(doc.Legend, filepath.Join(absOutput, LegendFile)); err != nil {
		return fmt.Errorf("write legend: %w", err)
	}

	printGenerateReport(cmd.OutOrStdout(), doc, mode, absOutput, time.Since(start))
	return nil
}

func loadCustomColors(path string, warn io.Writer) ([]palette.Color, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open custom colors: %w", err)
	}
	defer f.Close()

	imported, err := palette.ImportCSV(f, nil)
	if err != nil {
		return nil, fmt.Errorf("import custom colors: %w", err)
	}
	for _, row := range imported.Skipped {
		fmt.Fprintf(warn, "skipped %s line %d (%s): %s\n", filepath.Base(path), row.Line, row.Name, row.Reason)
	}
	return palette.NormalizeCustom(imported.Colors)
}

func printGenerateReport(w io.Writer, doc *instructions.Document, mode shape.Mode, outDir string, elapsed time.Duration) {
	ov := doc.Overview
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Grid:        %d x %d studs (%s)\n", ov.Width, ov.Height, mode.Label())
	fmt.Fprintf(w, "  Studs:       %d\n", ov.TotalStuds)
	fmt.Fprintf(w, "  Colors:      %d\n", ov.TotalColors)
	fmt.Fprintf(w, "  Sections:    %d (%d x %d of %d studs)\n", ov.TotalSections, ov.SectionColumns, ov.SectionRows, ov.SectionSize)
	fmt.Fprintf(w, "  Time:        %s\n", elapsed.Round(time.Millisecond))
	fmt.Fprintln(w)

	n := len(doc.Legend)
	if n > 10 {
		n = 10
	}
	if n > 0 {
		fmt.Fprintf(w, "  Top %d colors:\n", n)
		for _, e := range doc.Legend[:n] {
			fmt.Fprintf(w, "    %3d  %-28s %s  %6d\n", e.Label, e.Name, e.Hex, e.Count)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "  Output:      %s\n", outDir)
	fmt.Fprintln(w)
}
