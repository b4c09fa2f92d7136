package cli

import (
	"bytes"
	"context"
	"encoding/csv"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ironsheep/brick-mosaic-mcp/internal/palette"
)

func writeImage(t *testing.T, dir string) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, color.RGBA{255, 0, 0, 255})
		}
	}
	path := filepath.Join(dir, "input.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

// resetFlags restores flag variables between runs of the shared command tree.
func resetFlags() {
	verbose = false
	genWidth, genHeight = 32, 32
	genMode, genFilter, genCustom = "", "", ""
	genSectionSize, genCellSize = 0, 0
	genOutDir = "./mosaic_out"
	genSections, genCropAspect = false, false
	paletteMode, paletteCSV = "", false
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := Execute(context.Background(), BuildInfo{})
	return out.String(), err
}

func TestGenerateCommand(t *testing.T) {
	dir := t.TempDir()
	input := writeImage(t, dir)
	customPath := filepath.Join(dir, "custom.csv")
	require.NoError(t, os.WriteFile(customPath, []byte("Color Name,Hex Code\nPure Red,#FF0000\nPure Blue,#0000FF\nBad,#XYZ\n"), 0o644))
	outDir := filepath.Join(dir, "out")

	out, err := run(t, "generate", input,
		"--width", "8", "--height", "4",
		"--mode", "circle_plate",
		"--custom", customPath,
		"--section-size", "4",
		"--cell-size", "6",
		"--sections",
		"--out", outDir,
	)
	require.NoError(t, err, out)
	require.Contains(t, out, "8 x 4 studs (Round Plate)")
	require.Contains(t, out, "Sections:    2")
	require.Contains(t, out, "skipped custom.csv line 4")

	for _, name := range []string{MosaicFile, InstructionsFile, LegendFile} {
		_, err := os.Stat(filepath.Join(outDir, name))
		require.NoError(t, err, name)
	}

	f, err := os.Open(filepath.Join(outDir, MosaicFile))
	require.NoError(t, err)
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)
	require.Equal(t, 48, cfg.Width)
	require.Equal(t, 24, cfg.Height)

	legend, err := os.Open(filepath.Join(outDir, LegendFile))
	require.NoError(t, err)
	defer legend.Close()
	records, err := csv.NewReader(legend).ReadAll()
	require.NoError(t, err)
	require.Equal(t, []string{"Number", "Color Name", "Hex Code", "Count"}, records[0])
	require.Len(t, records, 2)
	require.Equal(t, []string{"1", "Pure Red", "#FF0000", "32"}, records[1])
}

func TestGenerateCommandErrors(t *testing.T) {
	dir := t.TempDir()
	input := writeImage(t, dir)

	_, err := run(t, "generate", filepath.Join(dir, "missing.png"), "--out", dir)
	require.Error(t, err)

	_, err = run(t, "generate", input, "--mode", "hexagon", "--out", dir)
	require.Error(t, err)
}

func TestPaletteCommand(t *testing.T) {
	out, err := run(t, "palette", "--csv", "--mode", "square")
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Equal(t, []string{palette.HeaderName, palette.HeaderHex}, records[0])
	require.Len(t, records, len(palette.BuiltIn("square"))+1)

	out, err = run(t, "palette")
	require.NoError(t, err)
	require.Contains(t, out, "(all shapes)")
}
