package index

import (
	"bytes"
	"encoding/gob"
	"testing"

	"github.com/klauspost/compress/zstd"
)

// encodeEntries writes a well-formed header followed by arbitrary entries,
// bypassing the Index invariants.
func encodeEntries(t *testing.T, entries []entry) []byte {
	t.Helper()
	var buf bytes.Buffer
	buf.Write(magic[:])
	buf.WriteByte(formatVersion)

	zw, err := zstd.NewWriter(&buf)
	if err != nil {
		t.Fatalf("zstd.NewWriter: %v", err)
	}
	if err := gob.NewEncoder(zw).Encode(entries); err != nil {
		t.Fatalf("gob encode: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zstd close: %v", err)
	}
	return buf.Bytes()
}
