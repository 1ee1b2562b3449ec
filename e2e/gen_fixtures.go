//go:build ignore

// gen_fixtures creates image pairs for the E2E smoke test.
// Usage: go run gen_fixtures.go <output_dir>
package main

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: gen_fixtures <output_dir>")
		os.Exit(1)
	}
	dir := os.Args[1]
	os.MkdirAll(dir, 0o755)

	base := gradient(100, 100)

	// Identical pair (expect exit 0).
	writeImage(filepath.Join(dir, "baseline.png"), base)
	writeImage(filepath.Join(dir, "same.png"), base)

	// One pixel flipped to full white (expect exit 1 at -t 0.1).
	oneOff := gradient(100, 100)
	oneOff.SetNRGBA(50, 50, color.NRGBA{255, 255, 255, 255})
	writeImage(filepath.Join(dir, "one-pixel.png"), oneOff)

	// Uniform small shift in every pixel (passes at -t 0.1, fails at -t 0).
	shifted := gradient(100, 100)
	for i := 0; i < len(shifted.Pix); i += 4 {
		shifted.Pix[i] += 10
	}
	writeImage(filepath.Join(dir, "shifted.png"), shifted)

	// Different dimensions (expect exit 2).
	writeImage(filepath.Join(dir, "small.png"), gradient(50, 100))

	// Alpha-only difference pair.
	writeImage(filepath.Join(dir, "alpha-a.png"), alphaGradient(60, 60, 255))
	writeImage(filepath.Join(dir, "alpha-b.png"), alphaGradient(60, 60, 128))

	fmt.Fprintf(os.Stderr, "[gen_fixtures] created 7 fixtures in %s\n", dir)
}

func gradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x * 200 / w),
				G: uint8(y * 200 / h),
				B: 128,
				A: 255,
			})
		}
	}
	return img
}

func alphaGradient(w, h int, maxAlpha uint8) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: 220, G: 60, B: 30,
				A: uint8(int(maxAlpha) * x / w),
			})
		}
	}
	return img
}

func writeImage(path string, img *image.NRGBA) {
	f, err := os.Create(path)
	if err != nil {
		panic(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		panic(err)
	}
}
