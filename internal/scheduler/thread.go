// Package scheduler is the cooperative thread runner (C7): one tick steps
// every active thread exactly once, in registration order, matching §4.6's
// single-threaded scheduling model. It is deliberately not built on the
// teacher's goroutine worker pool (internal/concurrency.WorkerPool) — §5
// requires single-threaded cooperative execution of scripts — but keeps that
// package's shape for its own bookkeeping: a central struct holding named
// collections behind a small set of methods, the way ConcurrencyModule holds
// WorkerPools/RateLimiters/Semaphores.
package scheduler

import (
	"math/rand"
	"time"

	"scratchcore/internal/codegen"
	"scratchcore/internal/ir"
	"scratchcore/internal/project"
)

// Status mirrors §4.6's thread status taxonomy. ACTIVE/RETIRED are scheduler
// bookkeeping; the YIELDED sub-kinds come straight from the ExecState's
// WaitKind so a monitor or `dump` command can explain why a thread isn't
// progressing without the scheduler re-deriving it.
type Status int

const (
	StatusActive Status = iota
	StatusYielded
	StatusStuckWait
	StatusBroadcastWait
	StatusSleeping
	StatusRetired
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusYielded:
		return "yielded"
	case StatusStuckWait:
		return "stuck_wait"
	case StatusBroadcastWait:
		return "broadcast_wait"
	case StatusSleeping:
		return "sleeping"
	case StatusRetired:
		return "retired"
	default:
		return "unknown"
	}
}

// Thread is one running script or clone-lifetime instance (§4.6).
type Thread struct {
	ID       string
	Target   *project.Target
	HatParam string // the broadcast name / key / backdrop this thread was spawned for

	exec   *codegen.ExecState
	Status Status

	CreatedAt time.Time
	// broadcastGroup is set when this thread was spawned to answer a
	// broadcast_and_wait; the waiter polls the group's completion by id.
	broadcastGroup interface{}
}

func newScriptThread(id string, script *ir.Script, target *project.Target, host codegen.Host, rng *rand.Rand, now time.Time) *Thread {
	return &Thread{
		ID:        id,
		Target:    target,
		HatParam:  script.HatParams.Broadcast,
		exec:      codegen.NewScriptExecState(script, target, host, rng),
		CreatedAt: now,
	}
}

// statusFromStep translates a Step verdict (plus, when yielded, the
// ExecState's own WaitKind) into the richer §4.6 status taxonomy.
func statusFromStep(result codegen.Status, exec *codegen.ExecState) Status {
	switch result {
	case codegen.Done, codegen.Retired:
		return StatusRetired
	default:
		switch exec.WaitKind() {
		case codegen.WaitSleeping:
			return StatusSleeping
		case codegen.WaitBroadcast:
			return StatusBroadcastWait
		case codegen.WaitHelper:
			return StatusStuckWait
		default:
			return StatusYielded
		}
	}
}


