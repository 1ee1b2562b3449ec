package cmd

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/yahiaetman/imgcmp/internal/compare"
	"github.com/yahiaetman/imgcmp/internal/imageio"
)

var (
	version = "0.1.0"

	threshold   float64
	errorBudget string
	outputPath  string
	silent      bool
	verbose     bool
	workers     int
)

// Exit codes. A mismatch verdict is a normal outcome and must stay
// distinguishable from operational failures.
const (
	ExitMatch    = 0
	ExitMismatch = 1
	ExitError    = 2
)

var rootCmd = &cobra.Command{
	Use:   "imgcmp <image1> <image2>",
	Short: "Pixel-wise image comparison for visual regression checks",
	Long: `imgcmp compares two images pixel by pixel.

For each pixel, every channel is compared with its counterpart. If the
error of any channel exceeds the threshold, the whole pixel is counted
as different. If the number of different pixels exceeds the error
budget, the result is a mismatch.

When generating an error image, channels within the threshold are kept
at 0; a failing channel holds 128 (half intensity) plus half its error,
so any difference stays visible.

Exit codes: 0 when the images match, 1 on a mismatch, 2 on an
operational failure (unreadable file, decode error, size mismatch).`,
	Version:       version,
	Args:          cobra.ExactArgs(2),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runCompare,
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		if _, ok := err.(mismatchError); ok {
			return ExitMismatch
		}
		if !silent {
			fmt.Fprintf(os.Stderr, "imgcmp: %v\n", err)
		}
		return ExitError
	}
	return ExitMatch
}

func init() {
	rootCmd.Flags().Float64VarP(&threshold, "threshold", "t", 0,
		"per-channel tolerance in [0,1]; 0 requires exact equality, 1 tolerates everything")
	rootCmd.Flags().StringVarP(&errorBudget, "error", "e", "0",
		"pixels allowed to differ before a mismatch: a count or a percentage (\"2.5%\")")
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "",
		"write the pixel error image to this path (format from extension)")
	rootCmd.Flags().BoolVarP(&silent, "silent", "s", false,
		"no console output, errors included")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false,
		"extra output: difference percentage, digests, timing")
	rootCmd.Flags().IntVarP(&workers, "workers", "w", 0,
		"parallel row workers (0 = GOMAXPROCS)")

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"imgcmp %s (%s/%s, %s)\n",
		version, runtime.GOOS, runtime.GOARCH, runtime.Version(),
	))
}

// mismatchError carries the mismatch verdict out of RunE so Execute
// can map it to ExitMismatch instead of ExitError.
type mismatchError struct{}

func (mismatchError) Error() string { return "images do not match" }

func runCompare(_ *cobra.Command, args []string) error {
	start := time.Now()

	if threshold < 0 || threshold > 1 {
		return fmt.Errorf("threshold %v out of range [0, 1]", threshold)
	}
	budget, err := compare.ParseBudget(errorBudget)
	if err != nil {
		return err
	}

	a, err := imageio.Load(args[0])
	if err != nil {
		return err
	}
	b, err := imageio.Load(args[1])
	if err != nil {
		return err
	}

	logVerbose("first:  %s (%s, %dx%d, digest %016x)",
		a.Path, a.Format, a.Image.Rect.Dx(), a.Image.Rect.Dy(), a.Digest)
	logVerbose("second: %s (%s, %dx%d, digest %016x)",
		b.Path, b.Format, b.Image.Rect.Dx(), b.Image.Rect.Dy(), b.Digest)

	wantDiff := outputPath != ""

	var res *compare.Result
	if a.Digest == b.Digest && !wantDiff {
		// Byte-identical files cannot differ at any threshold.
		logVerbose("inputs are byte-identical, skipping pixel pass")
		res = &compare.Result{
			Matches:     true,
			TotalPixels: a.Image.Rect.Dx() * a.Image.Rect.Dy(),
		}
	} else {
		res, err = compare.Compare(a.Image, b.Image, compare.Options{
			Threshold:    threshold,
			Budget:       budget,
			IncludeAlpha: a.HasAlpha && b.HasAlpha,
			RenderDiff:   wantDiff,
			Workers:      workers,
		})
		if err != nil {
			return err
		}
	}

	if wantDiff {
		if err := imageio.Save(res.Diff, outputPath); err != nil {
			return err
		}
		logVerbose("error image written to %s", outputPath)
	}

	logVerbose("compared %d pixels in %s", res.TotalPixels, time.Since(start).Round(time.Microsecond))

	if !silent {
		if res.Matches {
			fmt.Println("MATCH")
		} else {
			fmt.Println("MISMATCH DETECTED")
		}
		if verbose {
			fmt.Printf("Different Pixels: %g%%\n", res.Ratio*100)
		}
	}

	if !res.Matches {
		return mismatchError{}
	}
	return nil
}

// logVerbose prints a message only when --verbose is set
// (and --silent is not).
func logVerbose(format string, args ...any) {
	if verbose && !silent {
		fmt.Fprintf(os.Stderr, "[imgcmp] "+format+"\n", args...)
	}
}
