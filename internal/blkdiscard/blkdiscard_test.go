package blkdiscard

import (
	"os"
	"testing"
)

// Discard requires a real block device; there is no loop device available
// in the default test sandbox, so this only runs when FSDRIFT_TEST_DEVICE
// is set to a writable block device path (e.g. a loop device set up by
// the caller).
func TestDiscardAgainstRealDevice(t *testing.T) {
	dev := os.Getenv("FSDRIFT_TEST_DEVICE")
	if dev == "" {
		t.Skip("FSDRIFT_TEST_DEVICE not set; skipping real-device BLKDISCARD test")
	}
	f, err := os.OpenFile(dev, os.O_RDWR, 0)
	if err != nil {
		t.Fatalf("open %s: %v", dev, err)
	}
	defer f.Close()

	if err := Discard(f, 0, 4096); err != nil {
		t.Fatalf("Discard: %v", err)
	}
}

func TestRequestEncoding(t *testing.T) {
	if request != 4727 {
		t.Fatalf("BLKDISCARD request = %d, want 4727 ((0x12<<8)|119)", request)
	}
}
