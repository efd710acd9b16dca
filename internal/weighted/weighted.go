// Package weighted parses operation-weight tables and draws operation
// kinds from the resulting cumulative distribution.
package weighted

import (
	"bufio"
	"fmt"
	"io"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"strings"
)

// OpKind identifies one of the eleven operations fsdrift can issue.
type OpKind int

const (
	Read OpKind = iota
	RandomRead
	Create
	RandomWrite
	Append
	Link
	Delete
	Rename
	Truncate
	Hardlink
	RandomDiscard

	numOpKinds
)

var opNames = [numOpKinds]string{
	Read:          "read",
	RandomRead:    "random_read",
	Create:        "create",
	RandomWrite:   "random_write",
	Append:        "append",
	Link:          "link",
	Delete:        "delete",
	Rename:        "rename",
	Truncate:      "truncate",
	Hardlink:      "hardlink",
	RandomDiscard: "random_discard",
}

func (k OpKind) String() string {
	if k < 0 || int(k) >= len(opNames) {
		return "unknown"
	}
	return opNames[k]
}

// ParseOpKind maps a workload-table token to an OpKind.
func ParseOpKind(name string) (OpKind, error) {
	for k, n := range opNames {
		if n == name {
			return OpKind(k), nil
		}
	}
	return 0, fmt.Errorf("unknown operation kind %q", name)
}

// AllOpKinds returns every defined OpKind, in a stable order.
func AllOpKinds() []OpKind {
	kinds := make([]OpKind, numOpKinds)
	for i := range kinds {
		kinds[i] = OpKind(i)
	}
	return kinds
}

// Source draws OpKinds according to a normalized weight table.
type Source struct {
	kinds []OpKind
	// cumulative[i] is the upper bound of kinds[i]'s share of [0,1).
	cumulative []float64
}

// NewEqualWeights builds a Source that draws every known OpKind with
// equal probability — the default when no workload table is supplied.
func NewEqualWeights() *Source {
	weights := make(map[OpKind]float64, numOpKinds)
	for _, k := range AllOpKinds() {
		weights[k] = 1
	}
	return newSource(weights)
}

// ParseWorkloadTable reads "<op_name> <weight>" pairs, one per line;
// blank lines and lines starting with '#' are ignored. An unknown op name
// is a run-fatal configuration error.
func ParseWorkloadTable(r io.Reader) (*Source, error) {
	weights := make(map[OpKind]float64)
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("workload table line %d: expected \"<op> <weight>\", got %q", lineNo, line)
		}
		kind, err := ParseOpKind(fields[0])
		if err != nil {
			return nil, fmt.Errorf("workload table line %d: %w", lineNo, err)
		}
		weight, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("workload table line %d: invalid weight %q: %w", lineNo, fields[1], err)
		}
		if weight < 0 {
			return nil, fmt.Errorf("workload table line %d: weight must be non-negative, got %g", lineNo, weight)
		}
		weights[kind] = weight
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(weights) == 0 {
		return nil, fmt.Errorf("workload table is empty")
	}
	return newSource(weights), nil
}

// ParseWorkloadTableFile opens filename and parses it as a workload table.
func ParseWorkloadTableFile(filename string) (*Source, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseWorkloadTable(f)
}

func newSource(weights map[OpKind]float64) *Source {
	var total float64
	for _, w := range weights {
		total += w
	}

	kinds := make([]OpKind, 0, len(weights))
	for k := range weights {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })

	cumulative := make([]float64, len(kinds))
	var running float64
	for i, k := range kinds {
		if total > 0 {
			running += weights[k] / total
		}
		cumulative[i] = running
	}
	if len(cumulative) > 0 {
		cumulative[len(cumulative)-1] = 1
	}

	return &Source{kinds: kinds, cumulative: cumulative}
}

// Next draws a uniform value in [0,1) and binary-searches the cumulative
// table for the matching OpKind. Zero-weight kinds, having no span in the
// cumulative table, are never drawn.
func (s *Source) Next(rnd *rand.Rand) OpKind {
	p := rnd.Float64()
	i := sort.Search(len(s.cumulative), func(i int) bool { return s.cumulative[i] > p })
	if i >= len(s.kinds) {
		i = len(s.kinds) - 1
	}
	return s.kinds[i]
}
