// Package compare implements pixel-wise image comparison.
//
// Two images are compared channel by channel. A pixel is classified as
// different when any compared channel differs from its counterpart by
// more than the tolerance; the boundary is inclusive on the matching
// side. R, G and B are always compared, alpha only when requested (see
// Options.IncludeAlpha). The verdict is MATCH when the number of
// differing pixels stays within the error budget.
//
// The pixel loop is partitioned into row ranges across workers. Every
// worker owns a disjoint slice of the error image and keeps a local
// counter, so the result is identical for any worker count.
package compare

import (
	"fmt"
	"image"
	"image/color"
	"runtime"
	"sync"
	"sync/atomic"
)

// Options configures a single comparison.
type Options struct {
	// Threshold is the per-channel tolerance in [0, 1].
	// 0 requires exact equality, 1 tolerates everything.
	Threshold float64

	// Budget is the number of pixels allowed to differ before the
	// verdict is a mismatch. The zero value allows none.
	Budget Budget

	// IncludeAlpha compares the alpha channel in addition to RGB.
	// Callers should set this only when both source images carry
	// an alpha channel; otherwise alpha is ignored.
	IncludeAlpha bool

	// RenderDiff materializes the pixel error image in Result.Diff.
	RenderDiff bool

	// Workers is the number of parallel row workers (0 = GOMAXPROCS).
	Workers int
}

// Result is the immutable outcome of one comparison.
type Result struct {
	// Matches is true when DifferentPixels is within the error budget.
	Matches bool

	// DifferentPixels is the number of pixels exceeding the threshold.
	DifferentPixels int

	// TotalPixels is width × height.
	TotalPixels int

	// Ratio is DifferentPixels / TotalPixels (0 for empty images).
	// It does not depend on the error budget.
	Ratio float64

	// Diff is the pixel error image, nil unless Options.RenderDiff.
	// Channels that exceeded the tolerance hold 128 | diff>>1 so any
	// error is visible at half intensity or more; channels within
	// tolerance hold 0. Alpha is always 255.
	Diff *image.NRGBA
}

// DimensionMismatchError reports images whose sizes differ.
// Comparison does not proceed; this is a precondition failure,
// not a mismatch verdict.
type DimensionMismatchError struct {
	AWidth, AHeight int
	BWidth, BHeight int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("image dimensions do not match (got %dx%d and %dx%d)",
		e.AWidth, e.AHeight, e.BWidth, e.BHeight)
}

// Compare runs the pixel-wise comparison of a against b.
// Inputs are never mutated.
func Compare(a, b image.Image, opts Options) (*Result, error) {
	if opts.Threshold < 0 || opts.Threshold > 1 {
		return nil, fmt.Errorf("threshold %v out of range [0, 1]", opts.Threshold)
	}

	aw, ah := a.Bounds().Dx(), a.Bounds().Dy()
	bw, bh := b.Bounds().Dx(), b.Bounds().Dy()
	if aw != bw || ah != bh {
		return nil, &DimensionMismatchError{aw, ah, bw, bh}
	}

	total := aw * ah
	limit := opts.Budget.PixelLimit(total)

	// Zero-area images trivially match: no pixel can differ.
	if total == 0 {
		res := &Result{Matches: true}
		if opts.RenderDiff {
			res.Diff = image.NewNRGBA(image.Rect(0, 0, aw, ah))
		}
		return res, nil
	}

	// Truncating scale mirrors the [0,1] -> [0,255] flag mapping:
	// a channel pair matches while |va-vb| <= bound.
	bound := uint8(opts.Threshold * 255)

	var diff *image.NRGBA
	if opts.RenderDiff {
		diff = image.NewNRGBA(image.Rect(0, 0, aw, ah))
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > ah {
		workers = ah
	}

	an, aFast := a.(*image.NRGBA)
	bn, bFast := b.(*image.NRGBA)

	var wrong int64
	rowsPerWorker := ah / workers

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		y0 := i * rowsPerWorker
		y1 := y0 + rowsPerWorker
		if i == workers-1 {
			y1 = ah
		}
		go func(y0, y1 int) {
			defer wg.Done()
			var local int64
			if aFast && bFast {
				local = compareRowsNRGBA(an, bn, diff, bound, opts.IncludeAlpha, y0, y1)
			} else {
				local = compareRowsGeneric(a, b, diff, bound, opts.IncludeAlpha, y0, y1)
			}
			atomic.AddInt64(&wrong, local)
		}(y0, y1)
	}
	wg.Wait()

	n := int(wrong)
	return &Result{
		Matches:         n <= limit,
		DifferentPixels: n,
		TotalPixels:     total,
		Ratio:           float64(n) / float64(total),
		Diff:            diff,
	}, nil
}

// compareRowsNRGBA walks raw Pix data for the common case where both
// inputs are *image.NRGBA (everything the imageio collaborator loads).
func compareRowsNRGBA(a, b, diff *image.NRGBA, bound uint8, alpha bool, y0, y1 int) int64 {
	var wrong int64
	w := a.Rect.Dx()

	channels := 3
	if alpha {
		channels = 4
	}

	for y := y0; y < y1; y++ {
		ao := a.PixOffset(a.Rect.Min.X, a.Rect.Min.Y+y)
		bo := b.PixOffset(b.Rect.Min.X, b.Rect.Min.Y+y)
		var do int
		if diff != nil {
			do = diff.PixOffset(0, y)
		}

		for x := 0; x < w; x++ {
			pixelDiffers := false
			for c := 0; c < channels; c++ {
				d := absDiff(a.Pix[ao+c], b.Pix[bo+c])
				exceeded := d > bound
				if exceeded {
					pixelDiffers = true
				}
				if diff != nil && c < 3 {
					diff.Pix[do+c] = errorValue(d, exceeded)
				}
			}
			if diff != nil {
				diff.Pix[do+3] = 0xff
			}
			if pixelDiffers {
				wrong++
			}
			ao += 4
			bo += 4
			do += 4
		}
	}
	return wrong
}

// compareRowsGeneric handles arbitrary image.Image inputs through the
// color model, one pixel at a time.
func compareRowsGeneric(a, b image.Image, diff *image.NRGBA, bound uint8, alpha bool, y0, y1 int) int64 {
	var wrong int64
	ab, bb := a.Bounds(), b.Bounds()
	w := ab.Dx()

	for y := y0; y < y1; y++ {
		for x := 0; x < w; x++ {
			ca := color.NRGBAModel.Convert(a.At(ab.Min.X+x, ab.Min.Y+y)).(color.NRGBA)
			cb := color.NRGBAModel.Convert(b.At(bb.Min.X+x, bb.Min.Y+y)).(color.NRGBA)

			av := [4]uint8{ca.R, ca.G, ca.B, ca.A}
			bv := [4]uint8{cb.R, cb.G, cb.B, cb.A}

			channels := 3
			if alpha {
				channels = 4
			}

			pixelDiffers := false
			var out [3]uint8
			for c := 0; c < channels; c++ {
				d := absDiff(av[c], bv[c])
				exceeded := d > bound
				if exceeded {
					pixelDiffers = true
				}
				if c < 3 {
					out[c] = errorValue(d, exceeded)
				}
			}
			if diff != nil {
				diff.SetNRGBA(x, y, color.NRGBA{R: out[0], G: out[1], B: out[2], A: 0xff})
			}
			if pixelDiffers {
				wrong++
			}
		}
	}
	return wrong
}

// errorValue encodes one channel of the pixel error image. Differences
// above the tolerance are remapped from [0,255] to [128,255] so they
// stay visible; differences within tolerance are snapped to 0.
func errorValue(d uint8, exceeded bool) uint8 {
	if !exceeded {
		return 0
	}
	return 128 | d>>1
}

func absDiff(a, b uint8) uint8 {
	if a > b {
		return a - b
	}
	return b - a
}
