package scheduler

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/kr/pretty"

	"scratchcore/internal/codegen"
	"scratchcore/internal/ir"
	"scratchcore/internal/irgen"
	"scratchcore/internal/project"
)

type fakeHelpers struct{}

func (fakeHelpers) Reporter(opcode string, target *project.Target, args map[string]interface{}, fields map[string]string) interface{} {
	return nil
}
func (fakeHelpers) Stack(opcode string, target *project.Target, args map[string]interface{}, fields map[string]string, handle interface{}) codegen.HelperResult {
	return codegen.HelperResult{Status: codegen.HelperComplete}
}

type fakeMonitors struct {
	flushed int
}

func (m *fakeMonitors) SetVariableVisible(target *project.Target, varID string, visible bool) {}
func (m *fakeMonitors) ScheduleCloudWrite(target *project.Target, varID string, value interface{}) {}
func (m *fakeMonitors) FlushCloud(ctx context.Context) error                                  { m.flushed++; return nil }

func setVar(id string, value ir.Input) *ir.StackBlock {
	b := ir.NewStackBlock(ir.OpVarSet, map[string]ir.Input{"value": value}, false, "b")
	b.Extra = ir.VarRef{ID: id, Name: id}
	return b
}

func buildProject() (*project.Project, *irgen.CompiledProject) {
	stage := project.NewStage("stage")
	sprite := project.NewSprite("spriteA", "SpriteA")
	sprite.Variables["hits"] = &project.Variable{ID: "hits", Name: "hits", Kind: project.KindScalar, Value: 0.0}
	proj := project.NewProject(stage)
	proj.Sprites = append(proj.Sprites, sprite)

	greenFlag := &ir.Script{
		HatOpcode: ir.OpHatGreenFlag,
		Body:      []*ir.StackBlock{setVar("hits", ir.NewConstant(1.0))},
	}
	onPing := &ir.Script{
		HatOpcode: ir.OpHatBroadcastReceived,
		HatParams: ir.HatParams{Broadcast: "ping"},
		Body:      []*ir.StackBlock{setVar("hits", ir.NewConstant(2.0))},
	}
	compiled := &irgen.CompiledProject{Targets: []*irgen.CompiledTarget{
		{TargetID: sprite.ID, Scripts: []*ir.Script{greenFlag, onPing}},
	}}
	return proj, compiled
}

func TestStartFiresGreenFlagScripts(t *testing.T) {
	proj, compiled := buildProject()
	sched := New(proj, compiled, fakeHelpers{}, &fakeMonitors{}, WithClock(func() time.Time { return time.Unix(0, 0) }))
	sched.Start()
	if len(sched.threads) != 1 {
		t.Fatalf("threads = %d, want 1 green-flag thread", len(sched.threads))
	}
	sched.Tick()
	v, _ := proj.Sprites[0].GetVariable("hits")
	if v.Value != 1.0 {
		t.Fatalf("hits = %v, want 1", v.Value)
	}
	if len(sched.threads) != 0 {
		t.Fatalf("expected the single-statement thread to retire and be reaped, got %d left", len(sched.threads))
	}
}

func TestBroadcastSpawnsMatchingReceivers(t *testing.T) {
	proj, compiled := buildProject()
	sched := New(proj, compiled, fakeHelpers{}, &fakeMonitors{}, WithClock(func() time.Time { return time.Unix(0, 0) }))
	sched.Broadcast("ping")
	if len(sched.threads) != 1 {
		t.Fatalf("threads = %d, want 1 broadcast receiver", len(sched.threads))
	}
	sched.Tick()
	v, _ := proj.Sprites[0].GetVariable("hits")
	if v.Value != 2.0 {
		t.Fatalf("hits = %v, want 2", v.Value)
	}
}

func TestBroadcastAndWaitReportsDoneOnlyAfterReceiversRetire(t *testing.T) {
	proj, compiled := buildProject()
	sched := New(proj, compiled, fakeHelpers{}, &fakeMonitors{}, WithClock(func() time.Time { return time.Unix(0, 0) }))
	handle := "wait-handle"
	if done := sched.BroadcastAndWait("ping", handle); done {
		t.Fatal("expected BroadcastAndWait to report not-done while the receiver is still pending")
	}
	sched.Tick()
	if done := sched.BroadcastAndWait("ping", handle); !done {
		t.Fatal("expected BroadcastAndWait to report done once the receiver thread retired")
	}
}

func TestStopAllRetiresOtherThreadsButNotCurrent(t *testing.T) {
	proj, compiled := buildProject()
	sched := New(proj, compiled, fakeHelpers{}, &fakeMonitors{}, WithClock(func() time.Time { return time.Unix(0, 0) }))
	sched.Start()
	sched.Broadcast("ping")
	if len(sched.threads) != 2 {
		t.Fatalf("threads = %d, want 2", len(sched.threads))
	}
	sched.current = sched.threads[0]
	sched.StopAll()
	if sched.threads[0].Status == StatusRetired {
		t.Fatal("current thread must not be retired by its own StopAll call")
	}
	if sched.threads[1].Status != StatusRetired {
		t.Fatal("expected the other thread to be retired by StopAll")
	}
}

func TestCreateAndDeleteClone(t *testing.T) {
	proj, compiled := buildProject()
	sched := New(proj, compiled, fakeHelpers{}, &fakeMonitors{}, WithClock(func() time.Time { return time.Unix(0, 0) }))
	before := len(sched.liveTargets)
	sourceIdx := -1
	for i, tg := range sched.liveTargets {
		if tg == proj.Sprites[0] {
			sourceIdx = i
			break
		}
	}
	sched.CreateCloneOf(proj.Sprites[0], "_myself_")
	if len(sched.liveTargets) != before+1 {
		t.Fatalf("liveTargets = %d, want %d", len(sched.liveTargets), before+1)
	}
	clone := sched.liveTargets[sourceIdx+1]
	if !clone.IsClone {
		t.Fatal("expected the clone to be inserted immediately behind its originator")
	}
	sched.DeleteThisClone(clone)
	if len(sched.liveTargets) != before {
		t.Fatalf("liveTargets after delete = %d, want %d", len(sched.liveTargets), before)
	}
}

func TestCreateCloneOfStopsAtCloneCap(t *testing.T) {
	proj, compiled := buildProject()
	sched := New(proj, compiled, fakeHelpers{}, &fakeMonitors{},
		WithClock(func() time.Time { return time.Unix(0, 0) }),
		WithRuntimeConfig(NewRuntimeConfig(WithCloneCap(1))))
	before := append([]*project.Target(nil), sched.liveTargets...)

	sched.CreateCloneOf(proj.Sprites[0], "_myself_")
	sched.CreateCloneOf(proj.Sprites[0], "_myself_")

	if len(sched.liveTargets) != len(before)+1 {
		t.Fatalf("diff vs expected one extra clone:\n%s", strDiff(before, sched.liveTargets))
	}
}

// strDiff renders a readable %#v-style diff between two slices of targets,
// used when a clone-cap assertion fails to show exactly which entries differ.
func strDiff(want, got []*project.Target) string {
	return strings.Join(pretty.Diff(want, got), "\n")
}

func TestRunFlushesCloudOnEveryTick(t *testing.T) {
	proj, compiled := buildProject()
	monitors := &fakeMonitors{}
	sched := New(proj, compiled, fakeHelpers{}, monitors, WithClock(func() time.Time { return time.Unix(0, 0) }))
	ctx, cancel := context.WithTimeout(context.Background(), 25*time.Millisecond)
	defer cancel()
	_ = sched.Run(ctx, 5*time.Millisecond)
	if monitors.flushed == 0 {
		t.Fatal("expected at least one cloud flush during Run")
	}
}


