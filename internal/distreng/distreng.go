// Package distreng draws namespace indices from either a uniform
// distribution over [0, max_files_per_dir] or a "moving mean" gaussian
// distribution over [0, max_files), and persists the gaussian engine's
// simulated time between runs.
package distreng

import (
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/google/renameio"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/distr1/fsdrift/internal/config"
)

// DefaultSimTimeFile is the well-known path the original implementation
// uses for persisting simulated_time between runs.
const DefaultSimTimeFile = "/var/tmp/fsdrift-simtime.tmp"

// timeSaveRate: simulated_time is flushed to disk every this-many ticks,
// matching the reference cadence.
const timeSaveRate = 5

// Engine draws the next namespace index for one worker's operation.
// Uniform draws need nothing but a source of randomness; gaussian draws
// additionally need the shared, mutex-guarded simulated time and the
// last computed center (exposed for stats/debugging).
type Engine struct {
	distr        config.DistrType
	maxFiles     int64
	meanVelocity float64
	stddev       float64
	stddevsAhead float64
	driftTimeSec int64
	simTimeFile  string

	mu            sync.Mutex
	simulatedTime int64
	lastCenter    float64
	loaded        bool
}

// New builds an Engine. simTimeFile may be empty, in which case
// DefaultSimTimeFile is used.
func New(cfg *config.Config, simTimeFile string) *Engine {
	if simTimeFile == "" {
		simTimeFile = DefaultSimTimeFile
	}
	return &Engine{
		distr:        cfg.Distribution,
		maxFiles:     cfg.MaxFiles,
		meanVelocity: cfg.MeanVelocity,
		stddev:       cfg.GaussianStddev,
		stddevsAhead: cfg.CreateStddevsAhead,
		driftTimeSec: cfg.DriftTimeSec,
		simTimeFile:  simTimeFile,
	}
}

// NextIndex draws the next namespace index in [0, maxFilesPerDir] for
// uniform, or [0, maxFiles) for gaussian. isCreate shifts the gaussian
// center forward so creates run ahead of reads in the namespace.
func (e *Engine) NextIndex(rnd *rand.Rand, isCreate bool, maxFilesPerDir int64) int64 {
	if e.distr == config.Uniform {
		// Reference inclusive upper bound: randint(0, n) includes n.
		return rnd.Int63n(maxFilesPerDir + 1)
	}
	return e.nextGaussianIndex(rnd, isCreate)
}

func (e *Engine) nextGaussianIndex(rnd *rand.Rand, isCreate bool) int64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.loaded {
		e.simulatedTime = e.loadSimTime()
		e.loaded = true
	}

	center := float64(e.simulatedTime) * e.meanVelocity
	if isCreate {
		center += e.stddevsAhead * e.stddev
	}
	e.lastCenter = center

	draw := distuv.Normal{Mu: center, Sigma: e.stddev, Src: rnd}.Rand()
	index := euclideanMod(int64(draw), e.maxFiles)

	if e.driftTimeSec == config.DriftNone {
		e.simulatedTime++
	}
	if e.simulatedTime%timeSaveRate == 0 {
		e.saveSimTime(e.simulatedTime)
	}
	return index
}

// AdvanceWallClock is called from a driver worker's loop, once drift_time
// wall-clock seconds have passed since that worker's last advance, when
// drift_time is a positive threshold rather than -1 (advance per draw); it
// bumps simulated time by drift_time seconds.
func (e *Engine) AdvanceWallClock() {
	if e.driftTimeSec <= 0 {
		return
	}
	e.mu.Lock()
	e.simulatedTime += e.driftTimeSec
	e.mu.Unlock()
}

// LastCenter returns the most recently computed gaussian center, for
// stats reporting/tests.
func (e *Engine) LastCenter() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastCenter
}

// SimulatedTime returns the current simulated time value.
func (e *Engine) SimulatedTime() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.simulatedTime
}

func (e *Engine) loadSimTime() int64 {
	data, err := os.ReadFile(e.simTimeFile)
	if err != nil {
		return 0
	}
	v, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return 0
	}
	return v
}

// saveSimTime persists t via renameio so a concurrent reader never
// observes a partially-written file.
func (e *Engine) saveSimTime(t int64) {
	content := []byte(fmt.Sprintf("%10d", t))
	_ = renameio.WriteFile(e.simTimeFile, content, 0o644)
}

// euclideanMod returns the non-negative remainder of a mod n, matching
// Python's modulo semantics for negative gaussian draws.
func euclideanMod(a, n int64) int64 {
	m := a % n
	if m < 0 {
		m += n
	}
	return m
}
