package mosaic

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"github.com/ironsheep/mosaic-tools/internal/imaging"
	"github.com/ironsheep/mosaic-tools/internal/logging"
)

// ComposeFile decodes the target at path and composes it, in parallel unless
// single is set. A target that cannot be decoded fails with an error wrapping
// imaging.ErrDecode.
func (c *Composer) ComposeFile(ctx context.Context, path string, single bool) (*image.RGBA, error) {
	target, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("target %s: %w", path, err)
	}
	if single {
		return c.ComposeSingle(ctx, target)
	}
	return c.Compose(ctx, target)
}

// OutputPath returns where the composite for targetPath is written:
// resultsDir/<target base name without extension>.png.
func OutputPath(resultsDir, targetPath string) string {
	base := filepath.Base(targetPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(resultsDir, stem+".png")
}

// WriteComposite encodes img as PNG in memory and then writes it to
// OutputPath(resultsDir, targetPath) in one atomic step. It returns the path
// written.
func WriteComposite(img image.Image, resultsDir, targetPath string) (string, error) {
	var buf bytes.Buffer
	if err := imaging.EncodePNG(&buf, img); err != nil {
		return "", err
	}

	out := OutputPath(resultsDir, targetPath)
	if err := imaging.WriteFileAtomic(out, buf.Bytes()); err != nil {
		return "", err
	}
	logging.Logger().Info("composite written", "path", out, "bytes", buf.Len(),
		"width", img.Bounds().Dx(), "height", img.Bounds().Dy())
	return out, nil
}
