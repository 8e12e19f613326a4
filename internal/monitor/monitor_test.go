package monitor

import (
	"context"
	"sync"
	"testing"

	"scratchcore/internal/project"
)

type fakeStore struct {
	mu    sync.Mutex
	calls int
	saved map[string]float64
}

func newFakeStore() *fakeStore { return &fakeStore{saved: map[string]float64{}} }

func (s *fakeStore) Save(ctx context.Context, id string, value float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.saved[id] = value
	return nil
}

func TestVisibilityToggle(t *testing.T) {
	m := NewManager(nil)
	target := project.NewSprite("s1", "Sprite1")
	if m.IsVisible(target, "v1") {
		t.Fatal("expected a variable to default to hidden")
	}
	m.SetVariableVisible(target, "v1", true)
	if !m.IsVisible(target, "v1") {
		t.Fatal("expected visibility to flip to true")
	}
}

func TestCloudWriteCoalescesWithinATick(t *testing.T) {
	store := newFakeStore()
	m := NewManager(store)
	target := project.NewSprite("s1", "Sprite1")
	for i := 0; i < 100; i++ {
		m.ScheduleCloudWrite(target, "score", float64(i))
	}
	if err := m.FlushCloud(context.Background()); err != nil {
		t.Fatalf("FlushCloud error: %v", err)
	}
	if store.calls != 1 {
		t.Fatalf("store.calls = %d, want exactly 1 (coalesced)", store.calls)
	}
	if store.saved["score"] != 99 {
		t.Fatalf("saved value = %v, want the terminal write (99)", store.saved["score"])
	}
}

func TestFlushWithNothingPendingIsANoOp(t *testing.T) {
	store := newFakeStore()
	m := NewManager(store)
	if err := m.FlushCloud(context.Background()); err != nil {
		t.Fatalf("FlushCloud error: %v", err)
	}
	if store.calls != 0 {
		t.Fatalf("store.calls = %d, want 0", store.calls)
	}
}

func TestReadMonitorReflectsLiveVariable(t *testing.T) {
	m := NewManager(nil)
	target := project.NewSprite("s1", "Sprite1")
	target.Variables["v1"] = &project.Variable{ID: "v1", Name: "v1", Kind: project.KindScalar, Value: 7.0}
	if got := m.ReadMonitor(target, "v1"); got != "7" {
		t.Fatalf("ReadMonitor = %q, want %q", got, "7")
	}
}

func TestSnapshotOnlyIncludesVisibleMonitors(t *testing.T) {
	stage := project.NewStage("stage")
	sprite := project.NewSprite("s1", "Sprite1")
	sprite.Variables["v1"] = &project.Variable{ID: "v1", Name: "score", Kind: project.KindScalar, Value: 7.0}
	sprite.Variables["v2"] = &project.Variable{ID: "v2", Name: "hidden", Kind: project.KindScalar, Value: 1.0}
	proj := project.NewProject(stage)
	proj.Sprites = append(proj.Sprites, sprite)

	m := NewManager(nil)
	m.SetVariableVisible(sprite, "v1", true)

	snap := m.Snapshot(proj)
	if snap["Sprite1.score"] != "7" {
		t.Fatalf("snapshot missing visible monitor, got %#v", snap)
	}
	if _, ok := snap["Sprite1.hidden"]; ok {
		t.Fatal("snapshot should not include a monitor that was never made visible")
	}
}


