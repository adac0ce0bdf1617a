package index

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"

	"github.com/ironsheep/mosaic-tools/internal/imaging"
)

// ErrPersistence reports a persisted index that cannot be used: unreadable,
// truncated, corrupt, written by another format version, or describing an
// invalid index.
var ErrPersistence = errors.New("persisted color index unusable")

const formatVersion byte = 1

var magic = [8]byte{'M', 'O', 'S', 'A', 'I', 'C', 'I', 'X'}

// entry is the gob shape of one color and its tiles.
type entry struct {
	Color imaging.Color
	Tiles []string
}

// Encode writes idx to w in the persisted format.
func Encode(w io.Writer, idx *Index) error {
	if _, err := w.Write(magic[:]); err != nil {
		return fmt.Errorf("failed to write index header: %w", err)
	}
	if _, err := w.Write([]byte{formatVersion}); err != nil {
		return fmt.Errorf("failed to write index header: %w", err)
	}

	zw, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("failed to create zstd writer: %w", err)
	}

	entries := make([]entry, 0, idx.Len())
	for _, c := range idx.keys {
		entries = append(entries, entry{Color: c, Tiles: idx.tiles[c]})
	}
	if err := gob.NewEncoder(zw).Encode(entries); err != nil {
		zw.Close()
		return fmt.Errorf("failed to encode index: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to flush index: %w", err)
	}
	return nil
}

// Decode reads an index previously written by Encode. Every failure wraps
// ErrPersistence.
func Decode(r io.Reader) (*Index, error) {
	var header [len(magic) + 1]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("%w: reading header: %v", ErrPersistence, err)
	}
	if !bytes.Equal(header[:len(magic)], magic[:]) {
		return nil, fmt.Errorf("%w: not an index file", ErrPersistence)
	}
	if v := header[len(magic)]; v != formatVersion {
		return nil, fmt.Errorf("%w: format version %d, want %d", ErrPersistence, v, formatVersion)
	}

	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	defer zr.Close()

	// Reading to EOF makes zstd verify the frame checksum before any entry
	// is trusted.
	body, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	var entries []entry
	if err := gob.NewDecoder(bytes.NewReader(body)).Decode(&entries); err != nil {
		return nil, fmt.Errorf("%w: decoding entries: %v", ErrPersistence, err)
	}

	var b Builder
	for _, e := range entries {
		if len(e.Tiles) == 0 {
			return nil, fmt.Errorf("%w: color %v has no tiles", ErrPersistence, e.Color)
		}
		if _, dup := b.tiles[e.Color]; dup {
			return nil, fmt.Errorf("%w: color %v listed twice", ErrPersistence, e.Color)
		}
		for _, t := range e.Tiles {
			b.Add(e.Color, t)
		}
	}
	idx, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return idx, nil
}

// Save writes idx to path. The file is replaced atomically.
func Save(path string, idx *Index) error {
	var buf bytes.Buffer
	if err := Encode(&buf, idx); err != nil {
		return err
	}
	return imaging.WriteFileAtomic(path, buf.Bytes())
}

// Load reads the index stored at path. A missing or unreadable file is
// reported like a corrupt one, wrapping ErrPersistence, with the fs error
// also in the chain.
func Load(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	defer f.Close()

	idx, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return idx, nil
}
