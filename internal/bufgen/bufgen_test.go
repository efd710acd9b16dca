package bufgen

import (
	"bytes"
	"testing"

	"github.com/klauspost/compress/flate"
)

func TestGenerateZeroSize(t *testing.T) {
	if buf := Generate(0, 0, 0); buf != nil {
		t.Fatalf("Generate(0,...) = %v, want nil", buf)
	}
}

func TestGeneratePrintablePatternLength(t *testing.T) {
	buf := Generate(10000, 0, 0)
	if int64(len(buf)) != 10000 {
		t.Fatalf("len(buf) = %d, want 10000", len(buf))
	}
	for _, b := range buf {
		if b < 0x09 || b > 0x7e {
			t.Fatalf("non-printable byte %x in uncompressed pattern", b)
		}
	}
}

func TestGeneratePrintablePatternDeterministic(t *testing.T) {
	a := Generate(5000, 0, 0)
	b := Generate(5000, 0, 0)
	if !bytes.Equal(a, b) {
		t.Fatal("printable pattern is not deterministic across calls")
	}
}

func TestGenerateCompressibleLength(t *testing.T) {
	for _, sz := range []int64{4096, 8192, 100000} {
		buf := Generate(sz, 2, 50)
		if int64(len(buf)) != sz {
			t.Fatalf("Generate(%d, 2, 50): len = %d, want %d", sz, len(buf), sz)
		}
	}
}

// A larger compressionRatio means fewer random bytes per block (spec.md:83's
// ⌊4096/compression_ratio⌋), so a 10:1 target should compress well under a
// 1:1 target would.
func TestGenerateCompressibleAchievesRatio(t *testing.T) {
	const size = 1 << 20 // 1 MiB
	buf := Generate(size, 10, 0)

	var compressed bytes.Buffer
	w, err := flate.NewWriter(&compressed, flate.BestCompression)
	if err != nil {
		t.Fatalf("flate.NewWriter: %v", err)
	}
	if _, err := w.Write(buf); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	ratio := float64(compressed.Len()) / float64(size)
	if ratio > 0.35 {
		t.Fatalf("buffer built with compressionRatio=10 compressed to %.2f of original, want well under 0.35", ratio)
	}
}

func TestGenerateDedupeProducesRepeatedBlocks(t *testing.T) {
	const size = 64 * 1024
	buf := Generate(size, 2, 90)
	firstBlock := buf[:blockSize]
	found := false
	for off := blockSize; off+blockSize <= len(buf); off += blockSize {
		if bytes.Equal(buf[off:off+blockSize], firstBlock) {
			found = true
			break
		}
	}
	if !found {
		t.Fatal("expected at least one duplicate 4 KiB block with dedupePercentage=90")
	}
}
