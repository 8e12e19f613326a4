// Package monitor implements the monitor manager and cloud-variable hooks
// (C9, §4.8): watcher visibility, on-demand monitor evaluation, and the
// non-blocking, per-id-coalesced cloud-variable persistence path.
package monitor

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"scratchcore/internal/project"
	"scratchcore/internal/values"
)

// CloudStore is the external cloud-variable storage collaborator (§6,
// "the cloud-variable storage transport... named at its interface, its
// internals are not specified").
type CloudStore interface {
	Save(ctx context.Context, id string, value float64) error
}

// Manager implements scheduler.Monitors: watcher visibility plus the
// cloud-variable write path. Grounded on the teacher's
// ConcurrencyModule — a small struct holding named, mutex-guarded state
// behind narrow methods — generalized from worker/rate-limiter bookkeeping
// to monitor/cloud bookkeeping.
type Manager struct {
	store CloudStore

	mu      sync.Mutex
	visible map[string]bool
	pending map[string]float64 // cloud variable id -> latest unflushed value

	group singleflight.Group
}

func NewManager(store CloudStore) *Manager {
	return &Manager{
		store:   store,
		visible: map[string]bool{},
		pending: map[string]float64{},
	}
}

func visKey(target *project.Target, varID string) string {
	return target.ID + "\x00" + varID
}

// SetVariableVisible toggles a watcher on/off (`show_variable`/
// `hide_variable`).
func (m *Manager) SetVariableVisible(target *project.Target, varID string, visible bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.visible[visKey(target, varID)] = visible
}

// IsVisible reports whether a variable's watcher is currently shown.
// Variables default to hidden until `show_variable` runs, matching
// Scratch's default monitor state for non-stage-declared variables.
func (m *Manager) IsVisible(target *project.Target, varID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.visible[visKey(target, varID)]
}

// ReadMonitor evaluates a variable monitor on demand — no dirty flag, per
// §4.8 — by reading the live Variable straight off the target.
func (m *Manager) ReadMonitor(target *project.Target, varID string) string {
	v, ok := target.GetVariable(varID)
	if !ok {
		return ""
	}
	return values.ToScratchString(v.Value)
}

// Snapshot serializes every currently-visible monitor to a value map, keyed
// "<targetName>.<varName>" (§C "monitor snapshot export"). It has no
// scheduling effect — a host UI or test harness calls it between ticks, not
// the scheduler itself.
func (m *Manager) Snapshot(proj *project.Project) map[string]string {
	out := map[string]string{}
	for _, t := range proj.AllTargets() {
		for varID, v := range t.Variables {
			if !m.IsVisible(t, varID) {
				continue
			}
			out[t.Name+"."+v.Name] = values.ToScratchString(v.Value)
		}
	}
	return out
}

// ScheduleCloudWrite records the latest value for a cloud variable id;
// the actual push is deferred to FlushCloud so scripts never block on it
// (§4.8, "the write path is non-blocking").
func (m *Manager) ScheduleCloudWrite(target *project.Target, varID string, value interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending[varID] = values.ToNumberOrNaN(value)
}

// FlushCloud dispatches every pending cloud write since the last flush.
// Writing to the same id 100 times within a tick only ever schedules one
// pending entry (last value wins) — S10's "exactly one terminal value"
// falls straight out of `pending` being a map, not a log. singleflight
// additionally collapses a flush still in flight for an id with the next
// tick's flush of that same id, so a slow store never queues up redundant
// saves.
func (m *Manager) FlushCloud(ctx context.Context) error {
	if m.store == nil {
		return nil
	}
	m.mu.Lock()
	batch := m.pending
	m.pending = map[string]float64{}
	m.mu.Unlock()

	var firstErr error
	for id, value := range batch {
		id, value := id, value
		_, err, _ := m.group.Do(id, func() (interface{}, error) {
			return nil, m.store.Save(ctx, id, value)
		})
		if err != nil && firstErr == nil {
			firstErr = err // logged by the collaborator; does not affect script semantics (§7)
		}
	}
	return firstErr
}


