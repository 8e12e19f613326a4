package codegen

import (
	"math/rand"
	"testing"
	"time"

	"scratchcore/internal/ir"
	"scratchcore/internal/irgen"
	"scratchcore/internal/project"
)

// fakeHost is a minimal, controllable Host for exercising ExecState.Step
// without a real scheduler or block-helper table.
type fakeHost struct {
	now                  time.Time
	advance              time.Duration // simulated wall-clock progress added on every Now() call
	budget               time.Duration
	procedures           map[string]*irgen.CompiledProcedure
	stoppedAll           bool
	stoppedOthr          *project.Target
	broadcasts           []string
	broadcastAndWaitDone bool
}

func newFakeHost() *fakeHost {
	return &fakeHost{
		now:                  time.Unix(0, 0),
		budget:               500 * time.Millisecond,
		procedures:           map[string]*irgen.CompiledProcedure{},
		broadcastAndWaitDone: true,
	}
}

func (h *fakeHost) CallReporterHelper(opcode string, target *project.Target, args map[string]interface{}, fields map[string]string) interface{} {
	return nil
}
func (h *fakeHost) CallStackHelper(opcode string, target *project.Target, args map[string]interface{}, fields map[string]string, handle interface{}) HelperResult {
	return HelperResult{Status: HelperComplete}
}
func (h *fakeHost) Broadcast(name string) { h.broadcasts = append(h.broadcasts, name) }
func (h *fakeHost) BroadcastAndWait(name string, handle interface{}) bool { return h.broadcastAndWaitDone }
func (h *fakeHost) CreateCloneOf(target *project.Target, option string)  {}
func (h *fakeHost) DeleteThisClone(target *project.Target)               {}
func (h *fakeHost) StopAll()                                             { h.stoppedAll = true }
func (h *fakeHost) StopOthers(target *project.Target)                    { h.stoppedOthr = target }
func (h *fakeHost) SetVariableVisible(target *project.Target, varID string, visible bool) {}
func (h *fakeHost) SaveCloudVariable(target *project.Target, varID string, value interface{}) {}
func (h *fakeHost) LookupProcedure(targetID, procCode string) (*irgen.CompiledProcedure, bool) {
	p, ok := h.procedures[project.ProcedureKey(targetID, procCode)]
	return p, ok
}
func (h *fakeHost) Now() time.Time {
	h.now = h.now.Add(h.advance)
	return h.now
}
func (h *fakeHost) StuckBudget() time.Duration { return h.budget }

func newTestTarget() *project.Target {
	t := project.NewSprite("spriteA", "SpriteA")
	t.Variables["v"] = &project.Variable{ID: "v", Name: "v", Kind: project.KindScalar, Value: 0.0}
	t.Lists["l"] = &project.Variable{ID: "l", Name: "l", Kind: project.KindList}
	return t
}

func constNum(n float64) *ir.Constant { return ir.NewConstant(n) }

func setVar(id string, value ir.Input) *ir.StackBlock {
	b := ir.NewStackBlock(ir.OpVarSet, map[string]ir.Input{"value": value}, false, "b")
	b.Extra = ir.VarRef{ID: id, Name: id}
	return b
}

func TestSimpleScriptCompletesWithoutYielding(t *testing.T) {
	target := newTestTarget()
	host := newFakeHost()
	body := []*ir.StackBlock{
		setVar("v", constNum(1)),
		setVar("v", constNum(2)),
	}
	e := NewScriptExecState(&ir.Script{Body: body}, target, host, rand.New(rand.NewSource(1)))
	if status := e.Step(host); status != Done {
		t.Fatalf("status = %v, want Done", status)
	}
	v, _ := target.GetVariable("v")
	if v.Value != 2.0 {
		t.Fatalf("v = %v, want 2", v.Value)
	}
}

func TestRepeatYieldsAtBottomOfBodyNonWarp(t *testing.T) {
	target := newTestTarget()
	host := newFakeHost()
	varGet := func() *ir.InputReporter {
		r := ir.NewInputReporter(ir.OpVarGet, ir.Any, nil)
		r.Extra = ir.VarRef{ID: "v", Name: "v"}
		return r
	}
	incr := ir.NewInputReporter(ir.OpAdd, ir.NumberOrNaN, map[string]ir.Input{"a": varGet(), "b": constNum(1)})
	repeat := ir.NewStackBlock(ir.OpRepeat, map[string]ir.Input{"times": constNum(3)}, true, "r")
	repeat.Substacks["body"] = []*ir.StackBlock{setVar("v", incr)}

	e := NewScriptExecState(&ir.Script{Body: []*ir.StackBlock{repeat}}, target, host, rand.New(rand.NewSource(1)))

	for i := 0; i < 2; i++ {
		if status := e.Step(host); status != Yielded {
			t.Fatalf("iteration %d: status = %v, want Yielded", i, status)
		}
	}
	if status := e.Step(host); status != Done {
		t.Fatalf("final status = %v, want Done", status)
	}
	v, _ := target.GetVariable("v")
	if v.Value != 3.0 {
		t.Fatalf("v = %v, want 3", v.Value)
	}
}

func TestWarpForeverLoopYieldsOnlyWhenStuckBudgetExceeded(t *testing.T) {
	target := newTestTarget()
	host := newFakeHost()
	forever := ir.NewStackBlock(ir.OpForever, nil, true, "f")
	forever.Substacks["body"] = []*ir.StackBlock{setVar("v", constNum(1))}
	allAtOnce := ir.NewStackBlock(ir.OpAllAtOnce, nil, false, "a")
	allAtOnce.Substacks["body"] = []*ir.StackBlock{forever}

	e := NewScriptExecState(&ir.Script{Body: []*ir.StackBlock{allAtOnce}}, target, host, rand.New(rand.NewSource(1)))

	// Each Now() call advances the fake clock, simulating wall-clock
	// progress inside a single Step call; once elapsed time exceeds the
	// stuck-detect budget, a warp loop must still yield (§4.6).
	host.advance = 50 * time.Millisecond
	if status := e.Step(host); status != Yielded {
		t.Fatalf("status = %v, want Yielded (stuck-detect)", status)
	}
}

func TestStopThisScriptRetiresThread(t *testing.T) {
	target := newTestTarget()
	host := newFakeHost()
	stop := ir.NewStackBlock(ir.OpStop, nil, false, "s")
	stop.Extra = "this script"
	body := []*ir.StackBlock{setVar("v", constNum(9)), stop, setVar("v", constNum(99))}
	e := NewScriptExecState(&ir.Script{Body: body}, target, host, rand.New(rand.NewSource(1)))
	if status := e.Step(host); status != Retired {
		t.Fatalf("status = %v, want Retired", status)
	}
	v, _ := target.GetVariable("v")
	if v.Value != 9.0 {
		t.Fatalf("v = %v, want 9 (statement after stop must not run)", v.Value)
	}
}

func TestStopAllRetiresThisThreadAndSignalsHost(t *testing.T) {
	target := newTestTarget()
	host := newFakeHost()
	stop := ir.NewStackBlock(ir.OpStop, nil, false, "s")
	stop.Extra = "all"
	e := NewScriptExecState(&ir.Script{Body: []*ir.StackBlock{stop}}, target, host, rand.New(rand.NewSource(1)))
	if status := e.Step(host); status != Retired {
		t.Fatalf("status = %v, want Retired", status)
	}
	if !host.stoppedAll {
		t.Fatal("expected host.StopAll to have been called")
	}
}

func TestWaitBlockYieldsUntilDeadline(t *testing.T) {
	target := newTestTarget()
	host := newFakeHost()
	wait := ir.NewStackBlock(ir.OpWait, map[string]ir.Input{"secs": constNum(1)}, true, "w")
	body := []*ir.StackBlock{wait, setVar("v", constNum(7))}
	e := NewScriptExecState(&ir.Script{Body: body}, target, host, rand.New(rand.NewSource(1)))

	if status := e.Step(host); status != Yielded {
		t.Fatalf("first status = %v, want Yielded", status)
	}
	if status := e.Step(host); status != Yielded {
		t.Fatalf("second status (before deadline) = %v, want Yielded", status)
	}
	host.now = host.now.Add(2 * time.Second)
	if status := e.Step(host); status != Done {
		t.Fatalf("final status = %v, want Done", status)
	}
	v, _ := target.GetVariable("v")
	if v.Value != 7.0 {
		t.Fatalf("v = %v, want 7", v.Value)
	}
}

func TestNonWarpRecursiveCallArmsAYieldBeforeRecursing(t *testing.T) {
	target := newTestTarget()
	host := newFakeHost()
	host.procedures[project.ProcedureKey("spriteA", "rec")] = &irgen.CompiledProcedure{
		TargetID: "spriteA", ProcCode: "rec", Warp: false, Body: nil,
	}
	call := ir.NewStackBlock(ir.OpProcedureCall, nil, false, "call")
	call.Extra = ir.ProcedureCallRef{ProcCode: "rec"}

	e := NewScriptExecState(&ir.Script{Body: []*ir.StackBlock{}}, target, host, rand.New(rand.NewSource(1)))
	// Simulate already being inside a non-warp "rec" frame, as a recursive
	// call to itself would be.
	e.stack = append(e.stack, &frame{kind: frameProcedure, procCode: "rec"})

	if res := e.exec(host, e.stack[len(e.stack)-1], call); res != stepRepeat {
		t.Fatalf("first encounter: exec = %v, want stepRepeat (armed)", res)
	}
	if e.armedRecursion != call {
		t.Fatal("expected the call block to be armed for a yield")
	}
	if res := e.exec(host, e.stack[len(e.stack)-1], call); res != stepDone {
		t.Fatalf("second encounter: exec = %v, want stepDone (pushes the call)", res)
	}
	if e.armedRecursion != nil {
		t.Fatal("expected armedRecursion cleared after the recursive call was pushed")
	}
	top := e.stack[len(e.stack)-1]
	if top.kind != frameProcedure || top.procCode != "rec" {
		t.Fatal("expected a new frameProcedure for the recursive call to be pushed")
	}
}

func TestWarpRecursiveCallNeverArmsAYield(t *testing.T) {
	target := newTestTarget()
	host := newFakeHost()
	host.procedures[project.ProcedureKey("spriteA", "rec")] = &irgen.CompiledProcedure{
		TargetID: "spriteA", ProcCode: "rec", Warp: true, Body: nil,
	}
	call := ir.NewStackBlock(ir.OpProcedureCall, nil, false, "call")
	call.Extra = ir.ProcedureCallRef{ProcCode: "rec"}

	e := NewScriptExecState(&ir.Script{Body: []*ir.StackBlock{}}, target, host, rand.New(rand.NewSource(1)))
	e.warpDepth = 1
	e.stack = append(e.stack, &frame{kind: frameProcedure, procCode: "rec", warp: true})

	if res := e.exec(host, e.stack[len(e.stack)-1], call); res != stepDone {
		t.Fatalf("exec = %v, want stepDone (warp recursion pushes immediately)", res)
	}
	if e.armedRecursion != nil {
		t.Fatal("expected no armed recursion under warp")
	}
}

func TestReporterPositionProcedureCallReturnsDefaultWhenBodyBlocks(t *testing.T) {
	target := newTestTarget()
	host := newFakeHost()
	host.broadcastAndWaitDone = false // fan-out never completes within this call

	bcast := ir.NewStackBlock(ir.OpBroadcastAndWait, map[string]ir.Input{"name": ir.NewConstant("go")}, false, "bw")
	host.procedures[project.ProcedureKey("spriteA", "blocker")] = &irgen.CompiledProcedure{
		TargetID: "spriteA", ProcCode: "blocker", Body: []*ir.StackBlock{bcast},
	}

	ctx := &EvalContext{Target: target, Rand: rand.New(rand.NewSource(1)), Host: host}
	call := ir.NewInputReporter(ir.OpProcedureCall, ir.Any, nil)
	call.Extra = ir.ProcedureCallRef{ProcCode: "blocker"}

	done := make(chan interface{}, 1)
	go func() { done <- ctx.Eval(call) }()
	select {
	case got := <-done:
		if got != "" {
			t.Fatalf("Eval(procedure call) = %v, want \"\" (default) when the body blocks", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("reporter-position procedure call hung instead of detecting it blocked")
	}
}

func TestEvalArithmeticAndComparison(t *testing.T) {
	target := newTestTarget()
	host := newFakeHost()
	ctx := &EvalContext{Target: target, Rand: rand.New(rand.NewSource(1)), Host: host}
	sum := ir.NewInputReporter(ir.OpAdd, ir.NumberOrNaN, map[string]ir.Input{"a": constNum(2), "b": constNum(3)})
	if got := ctx.Eval(sum); got != 5.0 {
		t.Fatalf("2+3 = %v, want 5", got)
	}
	lt := ir.NewInputReporter(ir.OpLess, ir.Boolean, map[string]ir.Input{"a": constNum(2), "b": constNum(3)})
	if got := ctx.Eval(lt); got != true {
		t.Fatalf("2<3 = %v, want true", got)
	}
}

func TestRoundHalfAwayFromZero(t *testing.T) {
	cases := map[float64]float64{2.5: 3, -2.5: -2, -0.5: 0, 0.5: 1}
	for in, want := range cases {
		if got := roundHalfAwayFromZero(in); got != want {
			t.Errorf("round(%v) = %v, want %v", in, got, want)
		}
	}
}


