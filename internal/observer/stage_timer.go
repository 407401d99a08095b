// Package observer accounts for kernelscope's own wall-clock overhead per
// pipeline stage, repurposing the teacher's self-overhead tracker for a
// batch tool: there is no live child process to sample CPU/RSS/IO deltas
// from, only a sequence of named stages (the report command times load,
// analyze and emit) whose duration is worth reporting alongside a
// large-disassembly run's output. Only wall-clock time is recorded.
package observer

import (
	"sync"
	"time"

	"github.com/dmitriimaksimovdevelop/kernelscope/internal/model"
)

// Timeline accumulates one model.StageTiming per completed stage, in
// completion order, guarded the same way the teacher guards its PID set —
// a mutex around a shared slice, since stages may complete out of order
// when run concurrently.
type Timeline struct {
	mu     sync.Mutex
	stages []model.StageTiming
}

// NewTimeline creates an empty Timeline.
func NewTimeline() *Timeline {
	return &Timeline{}
}

// Stage is a started-but-not-yet-finished timing span, returned by Start so
// the caller can bracket arbitrary work instead of passing a closure.
type Stage struct {
	name  string
	start time.Time
}

// Start begins timing one named pipeline stage.
func (tl *Timeline) Start(name string) *Stage {
	return &Stage{name: name, start: time.Now()}
}

// Finish records the stage's elapsed duration on tl and returns it.
func (s *Stage) Finish(tl *Timeline) model.StageTiming {
	timing := model.StageTiming{Stage: s.name, Duration: time.Since(s.start)}
	tl.mu.Lock()
	tl.stages = append(tl.stages, timing)
	tl.mu.Unlock()
	return timing
}

// Track times fn as one named stage and records the result on tl.
func (tl *Timeline) Track(name string, fn func()) model.StageTiming {
	stage := tl.Start(name)
	fn()
	return stage.Finish(tl)
}

// Stages returns every recorded timing, in completion order.
func (tl *Timeline) Stages() []model.StageTiming {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	out := make([]model.StageTiming, len(tl.stages))
	copy(out, tl.stages)
	return out
}

// Total sums every recorded stage's duration.
func (tl *Timeline) Total() time.Duration {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	var total time.Duration
	for _, s := range tl.stages {
		total += s.Duration
	}
	return total
}
