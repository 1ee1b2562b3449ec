package compare

import (
	"fmt"
	"strconv"
	"strings"
)

// Budget is the number of differing pixels tolerated before a
// comparison counts as a mismatch. It is either an absolute pixel
// count or a ratio of the total pixel count. The zero value tolerates
// no differing pixels.
type Budget struct {
	ratio   float64
	pixels  int
	isRatio bool
}

// AbsoluteBudget tolerates up to n differing pixels.
func AbsoluteBudget(n int) Budget {
	return Budget{pixels: n}
}

// RatioBudget tolerates up to r of the total pixel count, r in [0, 1].
func RatioBudget(r float64) Budget {
	return Budget{ratio: r, isRatio: true}
}

// ParseBudget reads a budget from its flag form: a plain non-negative
// integer ("250") is an absolute count, a percentage ("2.5%") is a
// ratio of the image area.
func ParseBudget(s string) (Budget, error) {
	if p, ok := strings.CutSuffix(s, "%"); ok {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return Budget{}, fmt.Errorf("parse error budget %q: %w", s, err)
		}
		if v < 0 || v > 100 {
			return Budget{}, fmt.Errorf("error budget %q out of range [0%%, 100%%]", s)
		}
		return RatioBudget(v / 100), nil
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return Budget{}, fmt.Errorf("parse error budget %q: %w", s, err)
	}
	if n < 0 {
		return Budget{}, fmt.Errorf("error budget %q must be non-negative", s)
	}
	return AbsoluteBudget(n), nil
}

// PixelLimit resolves the budget against the image area, returning the
// maximum number of pixels allowed to differ.
func (b Budget) PixelLimit(totalPixels int) int {
	if b.isRatio {
		return int(b.ratio * float64(totalPixels))
	}
	return b.pixels
}

func (b Budget) String() string {
	if b.isRatio {
		return fmt.Sprintf("%g%%", b.ratio*100)
	}
	return strconv.Itoa(b.pixels)
}
