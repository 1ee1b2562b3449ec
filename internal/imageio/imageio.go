// Package imageio is the file I/O collaborator: it turns a path into a
// decoded pixel grid and writes images back. The comparator itself
// never touches the filesystem.
package imageio

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/cespare/xxhash/v2"
	"github.com/disintegration/imaging"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Source is one decoded input image plus the metadata the CLI reports.
type Source struct {
	// Path is the path the image was loaded from.
	Path string
	// Image is the decoded grid, normalized to 8-bit NRGBA.
	Image *image.NRGBA
	// Format is the detected source format (png, jpeg, webp, ...).
	Format string
	// HasAlpha is true when the decoded image is not fully opaque,
	// recorded before normalization flattens format differences.
	HasAlpha bool
	// Digest is the xxHash64 of the raw file bytes. Equal digests
	// short-circuit the comparison: the files are byte-identical.
	Digest uint64
}

// Load reads and decodes the image at path. All formats registered via
// image.Decode are accepted: png, jpeg, gif, webp, bmp, tiff.
func Load(path string) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	return &Source{
		Path:     path,
		Image:    imaging.Clone(img),
		Format:   format,
		HasAlpha: hasAlpha(img),
		Digest:   xxhash.Sum64(data),
	}, nil
}

// Save writes img to path in a format inferred from the extension
// (.png, .jpg/.jpeg, .gif, .tif/.tiff, .bmp).
func Save(img image.Image, path string) error {
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func hasAlpha(img image.Image) bool {
	switch src := img.(type) {
	case *image.NRGBA:
		return pixHasAlpha(src.Pix)
	case *image.RGBA:
		return pixHasAlpha(src.Pix)
	case *image.YCbCr, *image.Gray:
		return false
	default:
		bounds := img.Bounds()
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				_, _, _, a := img.At(x, y).RGBA()
				if a < 65535 {
					return true
				}
			}
		}
		return false
	}
}

func pixHasAlpha(pix []uint8) bool {
	for i := 3; i < len(pix); i += 4 {
		if pix[i] < 255 {
			return true
		}
	}
	return false
}
