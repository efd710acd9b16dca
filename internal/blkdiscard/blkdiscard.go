// Package blkdiscard issues the BLKDISCARD ioctl against a raw block
// device file descriptor, telling the device that a byte range is no
// longer in use.
package blkdiscard

import (
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

// request is the numeric ioctl for BLKDISCARD: _IO(0x12, 119).
const request = (0x12 << 8) | 119

// Discard tells the device backing f to discard the length bytes
// starting at offset. Both values are passed to the kernel as a packed
// pair of little-endian uint64s, per the ioctl's documented argument
// layout.
func Discard(f *os.File, offset, length int64) error {
	rng := [2]uint64{uint64(offset), uint64(length)}
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, f.Fd(), uintptr(request), uintptr(unsafe.Pointer(&rng)))
	if errno != 0 {
		return fmt.Errorf("BLKDISCARD(offset=%d, length=%d): %w", offset, length, errno)
	}
	return nil
}
