package cmd

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writeFixture(t *testing.T, path string, w, h int, hot []image.Point) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 64, A: 255})
		}
	}
	for _, p := range hot {
		img.SetNRGBA(p.X, p.Y, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

// resetFlags restores flag-bound globals between Execute calls; cobra
// only overwrites them for flags present in the argument list.
func resetFlags() {
	threshold = 0
	errorBudget = "0"
	outputPath = ""
	silent = false
	verbose = false
	workers = 0
}

func run(t *testing.T, args ...string) int {
	t.Helper()
	resetFlags()
	rootCmd.SetArgs(args)
	return Execute()
}

func TestExitCodes(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.png")
	b := filepath.Join(dir, "b.png")
	c := filepath.Join(dir, "c.png")
	small := filepath.Join(dir, "small.png")

	writeFixture(t, a, 32, 32, nil)
	writeFixture(t, b, 32, 32, nil)
	writeFixture(t, c, 32, 32, []image.Point{{X: 3, Y: 7}})
	writeFixture(t, small, 16, 32, nil)

	cases := []struct {
		name string
		args []string
		want int
	}{
		{"identical", []string{a, b}, ExitMatch},
		{"identical_verbose", []string{a, b, "-v"}, ExitMatch},
		{"one_pixel", []string{a, c}, ExitMismatch},
		{"one_pixel_within_budget", []string{a, c, "-e", "1"}, ExitMatch},
		{"one_pixel_ratio_budget", []string{a, c, "-e", "1%"}, ExitMatch},
		{"one_pixel_silent", []string{a, c, "-s"}, ExitMismatch},
		{"threshold_one", []string{a, c, "-t", "1"}, ExitMatch},
		{"dimension_mismatch", []string{a, small}, ExitError},
		{"missing_file", []string{a, filepath.Join(dir, "nope.png")}, ExitError},
		{"bad_threshold", []string{a, b, "-t", "7"}, ExitError},
		{"bad_budget", []string{a, b, "-e", "lots"}, ExitError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := run(t, tc.args...); got != tc.want {
				t.Errorf("exit code = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestDiffImageAlwaysWrittenWithOutput(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.png")
	b := filepath.Join(dir, "b.png")
	writeFixture(t, a, 16, 16, nil)
	writeFixture(t, b, 16, 16, []image.Point{{X: 1, Y: 1}})

	// Mismatch: error image written.
	out := filepath.Join(dir, "diff.png")
	if got := run(t, a, b, "-o", out); got != ExitMismatch {
		t.Fatalf("exit code = %d, want %d", got, ExitMismatch)
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("error image not written: %v", err)
	}

	// Match: the error image is still written (all black).
	outMatch := filepath.Join(dir, "diff-match.png")
	if got := run(t, a, a, "-o", outMatch); got != ExitMatch {
		t.Fatalf("exit code = %d, want %d", got, ExitMatch)
	}
	if _, err := os.Stat(outMatch); err != nil {
		t.Errorf("error image not written on match: %v", err)
	}
}

func TestDiffOutputUnsupportedExtension(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.png")
	writeFixture(t, a, 8, 8, nil)

	if got := run(t, a, a, "-o", filepath.Join(dir, "diff.xyz")); got != ExitError {
		t.Errorf("exit code = %d, want %d", got, ExitError)
	}
}
