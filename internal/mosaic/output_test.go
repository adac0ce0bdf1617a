package mosaic

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/ironsheep/mosaic-tools/internal/imaging"
)

func TestOutputPath(t *testing.T) {
	tests := []struct {
		target string
		want   string
	}{
		{"photo.jpg", filepath.Join("results", "photo.png")},
		{"/some/dir/holiday.PNG", filepath.Join("results", "holiday.png")},
		{"archive.tar.gz", filepath.Join("results", "archive.tar.png")},
		{"noext", filepath.Join("results", "noext.png")},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			if got := OutputPath("results", tt.target); got != tt.want {
				t.Errorf("OutputPath(%q) = %q, want %q", tt.target, got, tt.want)
			}
		})
	}
}

func TestComposeFile(t *testing.T) {
	dir := t.TempDir()
	c := newComposer(t, primaryIndex(t), Options{TileEdge: edge, Workers: 4, Seed: 1})

	target, _ := patternTarget(40, 30)
	path := filepath.Join(dir, "target.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, target); err != nil {
		t.Fatal(err)
	}
	f.Close()

	for _, single := range []bool{false, true} {
		out, err := c.ComposeFile(context.Background(), path, single)
		if err != nil {
			t.Fatalf("single=%v: ComposeFile failed: %v", single, err)
		}
		if out.Bounds().Dx() != 40 || out.Bounds().Dy() != 30 {
			t.Errorf("single=%v: size = %v, want 40x30", single, out.Bounds())
		}
	}
}

func TestComposeFile_BadTarget(t *testing.T) {
	dir := t.TempDir()
	c := newComposer(t, primaryIndex(t), Options{TileEdge: edge, Workers: 4, Seed: 1})

	corrupt := filepath.Join(dir, "corrupt.jpg")
	if err := os.WriteFile(corrupt, []byte{0xff, 0xd8, 0x00}, 0o644); err != nil {
		t.Fatal(err)
	}

	for _, path := range []string{corrupt, filepath.Join(dir, "missing.png")} {
		if _, err := c.ComposeFile(context.Background(), path, false); !errors.Is(err, imaging.ErrDecode) {
			t.Errorf("ComposeFile(%s): expected ErrDecode, got %v", filepath.Base(path), err)
		}
	}
}

func TestWriteComposite(t *testing.T) {
	resultsDir := t.TempDir()
	c := newComposer(t, primaryIndex(t), Options{TileEdge: edge, Workers: 4, Seed: 1})
	target, _ := patternTarget(50, 50)

	img, err := c.Compose(context.Background(), target)
	if err != nil {
		t.Fatal(err)
	}

	written, err := WriteComposite(img, resultsDir, "/elsewhere/sunset.jpeg")
	if err != nil {
		t.Fatalf("WriteComposite failed: %v", err)
	}
	if want := filepath.Join(resultsDir, "sunset.png"); written != want {
		t.Errorf("written to %q, want %q", written, want)
	}

	data, err := os.ReadFile(written)
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a PNG: %v", err)
	}
	if decoded.Bounds() != img.Bounds() {
		t.Fatalf("decoded bounds = %v, want %v", decoded.Bounds(), img.Bounds())
	}
	for y := 0; y < 50; y += 7 {
		for x := 0; x < 50; x += 7 {
			if imaging.FromColor(decoded.At(x, y)) != imaging.FromColor(img.At(x, y)) {
				t.Fatalf("pixel (%d,%d) changed in PNG round trip", x, y)
			}
		}
	}

	entries, err := os.ReadDir(resultsDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("results dir holds %d entries, want only the composite", len(entries))
	}
}

func TestWriteComposite_MissingDir(t *testing.T) {
	target, _ := patternTarget(20, 20)
	img, err := newComposer(t, primaryIndex(t), Options{TileEdge: edge, Workers: 1, Seed: 1}).
		ComposeSingle(context.Background(), target)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := WriteComposite(img, filepath.Join(t.TempDir(), "nope"), "x.png"); err == nil {
		t.Error("expected error writing into a missing directory")
	}
}
