// Package pathmap turns a namespace index into a filesystem path under a
// fixed N-ary directory tree, or short-circuits to a raw device path.
package pathmap

import (
	"fmt"
	"path/filepath"
)

// largePrime multiplies the file index before taking each level's modulus.
// It has no common factor with typical dirs_per_level values, which is
// what gives the tree approximately uniform coverage for indices drawn
// uniformly at random.
const largePrime = 12373

// Mapper computes paths for one run's fixed (levels, dirsPerLevel,
// prefix, topDirectory) configuration. It holds no mutable state: PathOf
// is a pure function of its inputs, as required by spec invariant (path
// stability across calls for a fixed index).
type Mapper struct {
	TopDirectory string
	Prefix       string
	Levels       int
	DirsPerLevel int
	RawDevice    string
}

// New builds a Mapper. When rawDevice is non-empty, PathOf always returns
// it, bypassing directory-tree generation entirely.
func New(topDirectory, prefix string, levels, dirsPerLevel int, rawDevice string) *Mapper {
	return &Mapper{
		TopDirectory: topDirectory,
		Prefix:       prefix,
		Levels:       levels,
		DirsPerLevel: dirsPerLevel,
		RawDevice:    rawDevice,
	}
}

// TotalDirs is D^L, the number of leaf directories in the tree.
func (m *Mapper) TotalDirs() int64 {
	total := int64(1)
	for i := 0; i < m.Levels; i++ {
		total *= int64(m.DirsPerLevel)
	}
	return total
}

// DirOf returns the leaf directory for index, without the file name
// component. It multiplies index by largePrime once, then at
// each level takes the modulus by DirsPerLevel and divides the running
// value by DirsPerLevel for the next level — the same integer-division
// chain as the reference implementation, which matters for levels > 1.
func (m *Mapper) DirOf(index int64) string {
	dir := m.TopDirectory
	running := index * largePrime
	for i := 0; i < m.Levels; i++ {
		subdirIndex := 1 + (running % int64(m.DirsPerLevel))
		dir = filepath.Join(dir, fmt.Sprintf("d%04d", subdirIndex))
		running /= int64(m.DirsPerLevel)
	}
	return dir
}

// FileName returns the leaf file name for index: <prefix><9-digit index>.
func (m *Mapper) FileName(index int64) string {
	return fmt.Sprintf("%s%09d", m.Prefix, index)
}

// PathOf returns the full path for index, or RawDevice verbatim in
// rawdevice mode.
func (m *Mapper) PathOf(index int64) string {
	if m.RawDevice != "" {
		return m.RawDevice
	}
	return filepath.Join(m.DirOf(index), m.FileName(index))
}
