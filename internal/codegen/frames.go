package codegen

import (
	"time"

	"scratchcore/internal/ir"
	"scratchcore/internal/values"
)

// frameKind distinguishes the shapes of pending work an ExecState can have
// on its stack. Loop/wait/helper frames carry their own re-entry state so a
// suspended thread resumes at exactly the point it left off (§4.5/§4.6).
type frameKind int

const (
	frameSeq frameKind = iota // a plain statement list: if/else branch, procedure body, top-level script body
	frameAllAtOnce
	frameProcedure
	frameRepeat
	frameForever
	frameLoopCond // control_while / control_repeat_until: both store a "keep looping" predicate in cond
	frameForEach
	frameWaitTime
	frameWaitUntil
	frameBroadcastWait
	frameHelperPending
)

type frame struct {
	kind frameKind
	body []*ir.StackBlock
	pos  int

	remaining int
	condBlock *ir.StackBlock

	nValue int
	index  int
	varRef ir.VarRef

	procCode  string
	warp      bool
	savedArgs map[string]interface{}

	deadline      time.Time
	condExpr      ir.Input
	broadcastName string

	helperOpcode string
	helperFields map[string]string
	helperArgs   map[string]interface{}
}

// WaitKind classifies what a Yielded ExecState is currently suspended on,
// letting the scheduler (C7) surface the richer §4.6 thread-status taxonomy
// (STUCK_WAIT, BROADCAST_WAIT, SLEEPING) without reaching into frame internals.
type WaitKind int

const (
	WaitNone WaitKind = iota
	WaitSleeping
	WaitBroadcast
	WaitHelper
)

// WaitKind reports why a Yielded ExecState is suspended.
func (e *ExecState) WaitKind() WaitKind {
	if len(e.stack) == 0 {
		return WaitNone
	}
	switch e.stack[len(e.stack)-1].kind {
	case frameWaitTime, frameWaitUntil:
		return WaitSleeping
	case frameBroadcastWait:
		return WaitBroadcast
	case frameHelperPending:
		return WaitHelper
	default:
		return WaitNone
	}
}

// ExecState is one thread's execution: an explicit call/loop stack over the
// target's compiled IR, plus the ambient warp depth the generator doesn't
// bake into individual frames (§4.3: warp is inherited by nested calls, not
// a per-block property).
type ExecState struct {
	ctx       *EvalContext
	stack     []*frame
	warpDepth int

	armedRecursion *ir.StackBlock

	returned    bool
	returnValue interface{}

	// syncMode drives a reporter-position procedure call to completion in
	// one host tick (§4.5: reporter-position custom block calls always run
	// synchronously, never suspending the caller).
	syncMode bool

	stepStart time.Time
}

// NewExecState binds a script's body to a fresh single-frame stack.
func NewExecState(ctx *EvalContext, body []*ir.StackBlock) *ExecState {
	return &ExecState{ctx: ctx, stack: []*frame{{kind: frameSeq, body: body}}}
}

func (e *ExecState) push(f *frame) {
	e.stack = append(e.stack, f)
}

// yield-gating categories returned by popFrame.
const (
	yieldNone = iota
	yieldWarpGated
	yieldAlways
)

// stepResult is exec's verdict on the single statement it just ran.
type stepResult int

const (
	stepDone stepResult = iota
	stepRepeat
	stepRetire
	stepYieldNow
)

// Step runs this thread until it yields, finishes its whole body, or
// retires, per the §4.5 code generator contract. Each yield point resumes
// at the exact same program point on the next call.
func (e *ExecState) Step(host Host) Status {
	if len(e.stack) == 0 {
		return Done
	}
	e.stepStart = host.Now()
	for {
		if len(e.stack) == 0 {
			return Done
		}
		top := e.stack[len(e.stack)-1]
		if top.pos >= len(top.body) {
			cont, yk, retire := e.popFrame(host, top)
			if retire {
				return Retired
			}
			if !cont {
				continue
			}
			if e.syncMode && yk == yieldAlways {
				return Blocked
			}
			if e.shouldYield(host, yk) {
				return Yielded
			}
			continue
		}
		block := top.body[top.pos]
		top.pos++
		switch e.exec(host, top, block) {
		case stepRepeat:
			top.pos--
			if e.syncMode {
				continue
			}
			return Yielded
		case stepRetire:
			return Retired
		case stepYieldNow:
			if e.syncMode {
				continue
			}
			return Yielded
		case stepDone:
		}
	}
}

func (e *ExecState) shouldYield(host Host, yk int) bool {
	if e.syncMode {
		return false
	}
	switch yk {
	case yieldAlways:
		return true
	case yieldWarpGated:
		return e.warpDepth == 0 || host.Now().Sub(e.stepStart) > host.StuckBudget()
	default:
		return false
	}
}

func (e *ExecState) popFrame(host Host, top *frame) (cont bool, yk int, retire bool) {
	pop := func() { e.stack = e.stack[:len(e.stack)-1] }
	switch top.kind {
	case frameSeq:
		pop()
		return false, yieldNone, false
	case frameAllAtOnce:
		pop()
		e.warpDepth--
		return false, yieldNone, false
	case frameProcedure:
		pop()
		e.ctx.Args = top.savedArgs
		if top.warp {
			e.warpDepth--
		}
		return false, yieldNone, false
	case frameRepeat:
		top.remaining--
		if top.remaining <= 0 {
			pop()
			return false, yieldNone, false
		}
		top.pos = 0
		return true, yieldWarpGated, false
	case frameForever:
		top.pos = 0
		return true, yieldWarpGated, false
	case frameLoopCond:
		if !values.ToBoolean(e.ctx.Eval(top.condBlock.Inputs["cond"])) {
			pop()
			return false, yieldNone, false
		}
		top.pos = 0
		return true, yieldWarpGated, false
	case frameForEach:
		top.index++
		if top.index > top.nValue {
			pop()
			return false, yieldNone, false
		}
		e.ctx.Target.SetVariable(top.varRef.ID, float64(top.index))
		top.pos = 0
		return true, yieldWarpGated, false
	case frameWaitTime:
		if !host.Now().Before(top.deadline) {
			pop()
			return false, yieldNone, false
		}
		return true, yieldAlways, false
	case frameWaitUntil:
		if values.ToBoolean(e.ctx.Eval(top.condExpr)) {
			pop()
			return false, yieldNone, false
		}
		return true, yieldAlways, false
	case frameBroadcastWait:
		if host.BroadcastAndWait(top.broadcastName, top) {
			pop()
			return false, yieldNone, false
		}
		return true, yieldAlways, false
	case frameHelperPending:
		res := host.CallStackHelper(top.helperOpcode, e.ctx.Target, top.helperArgs, top.helperFields, top)
		switch res.Status {
		case HelperRetireScript:
			pop()
			return false, yieldNone, true
		case HelperComplete:
			pop()
			return false, yieldNone, false
		default:
			return true, yieldAlways, false
		}
	default:
		pop()
		return false, yieldNone, false
	}
}

// exec runs one statement-position block. It either completes it (stepDone,
// possibly after pushing a child frame), arranges to re-run it on the next
// Step (stepRepeat/stepYieldNow), or retires the thread outright (stepRetire).
func (e *ExecState) exec(host Host, top *frame, block *ir.StackBlock) stepResult {
	switch block.Opcode {
	case ir.OpRepeat:
		n := int(values.ToNumber(e.ctx.Eval(block.Inputs["times"])))
		if n <= 0 {
			return stepDone
		}
		e.push(&frame{kind: frameRepeat, body: block.Substacks["body"], remaining: n})
		return stepDone

	case ir.OpForever:
		e.push(&frame{kind: frameForever, body: block.Substacks["body"]})
		return stepDone

	case ir.OpIf:
		if values.ToBoolean(e.ctx.Eval(block.Inputs["cond"])) {
			e.push(&frame{kind: frameSeq, body: block.Substacks["then"]})
		}
		return stepDone

	case ir.OpIfElse:
		if values.ToBoolean(e.ctx.Eval(block.Inputs["cond"])) {
			e.push(&frame{kind: frameSeq, body: block.Substacks["then"]})
		} else {
			e.push(&frame{kind: frameSeq, body: block.Substacks["else"]})
		}
		return stepDone

	case ir.OpRepeatUntil, ir.OpWhile:
		// Both store a "keep looping" predicate in cond (control_repeat_until
		// negates its raw condition at generation time for exactly this
		// reason), so both run through the same frame kind.
		if !values.ToBoolean(e.ctx.Eval(block.Inputs["cond"])) {
			return stepDone
		}
		e.push(&frame{kind: frameLoopCond, body: block.Substacks["body"], condBlock: block})
		return stepDone

	case ir.OpForEach:
		n := int(values.ToNumber(e.ctx.Eval(block.Inputs["n"])))
		ref, _ := block.Extra.(ir.VarRef)
		if n <= 0 {
			return stepDone
		}
		e.ctx.Target.SetVariable(ref.ID, float64(1))
		e.push(&frame{kind: frameForEach, body: block.Substacks["body"], nValue: n, index: 1, varRef: ref})
		return stepDone

	case ir.OpAllAtOnce:
		e.warpDepth++
		e.push(&frame{kind: frameAllAtOnce, body: block.Substacks["body"]})
		return stepDone

	case ir.OpWait:
		secs := values.ToNumber(e.ctx.Eval(block.Inputs["secs"]))
		if secs <= 0 {
			return stepDone
		}
		e.push(&frame{kind: frameWaitTime, deadline: host.Now().Add(time.Duration(secs * float64(time.Second)))})
		return stepYieldNow

	case ir.OpWaitUntil:
		if values.ToBoolean(e.ctx.Eval(block.Inputs["cond"])) {
			return stepDone
		}
		e.push(&frame{kind: frameWaitUntil, condExpr: block.Inputs["cond"]})
		return stepYieldNow

	case ir.OpStop:
		opt, _ := block.Extra.(string)
		switch opt {
		case "all":
			host.StopAll()
			return stepRetire
		case "this script":
			return stepRetire
		default: // "other scripts in sprite" / "other scripts in stage"
			host.StopOthers(e.ctx.Target)
			return stepDone
		}

	case ir.OpCreateCloneOf:
		opt := values.ToScratchString(e.ctx.Eval(block.Inputs["target"]))
		host.CreateCloneOf(e.ctx.Target, opt)
		return stepDone

	case ir.OpDeleteThisClone:
		host.DeleteThisClone(e.ctx.Target)
		return stepRetire

	case ir.OpBroadcast:
		name := values.ToScratchString(e.ctx.Eval(block.Inputs["name"]))
		host.Broadcast(name)
		return stepDone

	case ir.OpBroadcastAndWait:
		name := values.ToScratchString(e.ctx.Eval(block.Inputs["name"]))
		f := &frame{kind: frameBroadcastWait, broadcastName: name}
		if host.BroadcastAndWait(name, f) {
			return stepDone
		}
		e.push(f)
		return stepYieldNow

	case ir.OpVarSet:
		ref, _ := block.Extra.(ir.VarRef)
		value := e.ctx.Eval(block.Inputs["value"])
		e.ctx.Target.SetVariable(ref.ID, value)
		if v, ok := e.ctx.Target.GetVariable(ref.ID); ok && v.IsCloud {
			host.SaveCloudVariable(e.ctx.Target, ref.ID, value)
		}
		return stepDone

	case ir.OpShowVariable:
		ref, _ := block.Extra.(ir.VarRef)
		host.SetVariableVisible(e.ctx.Target, ref.ID, true)
		return stepDone
	case ir.OpHideVariable:
		ref, _ := block.Extra.(ir.VarRef)
		host.SetVariableVisible(e.ctx.Target, ref.ID, false)
		return stepDone

	case ir.OpListAdd:
		ref, _ := block.Extra.(ir.VarRef)
		item := e.ctx.Eval(block.Inputs["item"])
		if lst, ok := e.ctx.Target.GetList(ref.ID); ok && len(lst.List) < values.MaxListLength {
			lst.List = append(lst.List, item)
		}
		return stepDone

	case ir.OpListDelete:
		ref, _ := block.Extra.(ir.VarRef)
		if lst, ok := e.ctx.Target.GetList(ref.ID); ok {
			idx := values.ToListIndex(e.ctx.Eval(block.Inputs["index"]), len(lst.List), true, e.ctx.Rand)
			switch idx {
			case values.ListAll:
				lst.List = lst.List[:0]
			case values.ListInvalid:
			default:
				i := int(idx) - 1
				lst.List = append(lst.List[:i], lst.List[i+1:]...)
			}
		}
		return stepDone

	case ir.OpListDeleteAll:
		ref, _ := block.Extra.(ir.VarRef)
		if lst, ok := e.ctx.Target.GetList(ref.ID); ok {
			lst.List = lst.List[:0]
		}
		return stepDone

	case ir.OpListInsert:
		ref, _ := block.Extra.(ir.VarRef)
		item := e.ctx.Eval(block.Inputs["item"])
		if lst, ok := e.ctx.Target.GetList(ref.ID); ok && len(lst.List) < values.MaxListLength {
			idx := values.ToListIndex(e.ctx.Eval(block.Inputs["index"]), len(lst.List)+1, false, e.ctx.Rand)
			if idx != values.ListInvalid {
				i := int(idx) - 1
				lst.List = append(lst.List, nil)
				copy(lst.List[i+1:], lst.List[i:])
				lst.List[i] = item
			}
		}
		return stepDone

	case ir.OpListSet:
		ref, _ := block.Extra.(ir.VarRef)
		item := e.ctx.Eval(block.Inputs["item"])
		if lst, ok := e.ctx.Target.GetList(ref.ID); ok {
			idx := values.ToListIndex(e.ctx.Eval(block.Inputs["index"]), len(lst.List), false, e.ctx.Rand)
			if idx != values.ListInvalid {
				lst.List[idx-1] = item
			}
		}
		return stepDone

	case ir.OpProcedureCall:
		return e.execProcedureCall(host, block)

	case ir.OpProcedureReturn:
		e.returnValue = e.ctx.Eval(block.Inputs["value"])
		e.returned = true
		e.unwindToNearestProcedure()
		return stepDone

	case ir.OpHelperCall:
		return e.execHelperCall(host, block)

	default:
		return stepDone
	}
}

func (e *ExecState) execProcedureCall(host Host, block *ir.StackBlock) stepResult {
	ref, _ := block.Extra.(ir.ProcedureCallRef)
	if e.warpDepth == 0 && e.isRecursiveCall(ref.ProcCode) {
		if e.armedRecursion == block {
			e.armedRecursion = nil
		} else {
			e.armedRecursion = block
			return stepRepeat
		}
	}
	proc, ok := host.LookupProcedure(e.ctx.Target.ID, ref.ProcCode)
	if !ok {
		return stepDone
	}
	args := make(map[string]interface{}, len(proc.ArgumentNames))
	for i, name := range proc.ArgumentNames {
		switch {
		case i < len(ref.Args):
			args[name] = e.ctx.Eval(ref.Args[i])
		case i < len(proc.ArgumentDefaults):
			args[name] = proc.ArgumentDefaults[i]
		}
	}
	saved := e.ctx.Args
	e.ctx.Args = args
	if proc.Warp {
		e.warpDepth++
	}
	e.push(&frame{kind: frameProcedure, body: proc.Body, procCode: proc.ProcCode, warp: proc.Warp, savedArgs: saved})
	return stepDone
}

func (e *ExecState) execHelperCall(host Host, block *ir.StackBlock) stepResult {
	ref, _ := block.Extra.(ir.HelperRef)
	args := e.ctx.evalAll(ref.Inputs)
	if !block.Yields {
		host.CallStackHelper(ref.Opcode, e.ctx.Target, args, ref.Fields, nil)
		return stepDone
	}
	f := &frame{kind: frameHelperPending, helperOpcode: ref.Opcode, helperFields: ref.Fields, helperArgs: args}
	res := host.CallStackHelper(ref.Opcode, e.ctx.Target, args, ref.Fields, f)
	switch res.Status {
	case HelperRetireScript:
		return stepRetire
	case HelperComplete:
		return stepDone
	default:
		e.push(f)
		return stepYieldNow
	}
}

// isRecursiveCall reports whether procCode is already active further down
// this thread's stack, the condition under which a non-warp call inserts a
// yield before recursing (§4.6 "bound host stack growth").
func (e *ExecState) isRecursiveCall(procCode string) bool {
	for _, f := range e.stack {
		if f.kind == frameProcedure && f.procCode == procCode {
			return true
		}
	}
	return false
}

// unwindToNearestProcedure pops frames (restoring warp depth for any
// all_at_once block abandoned along the way) until it has popped the
// innermost procedure frame, implementing procedures_return.
func (e *ExecState) unwindToNearestProcedure() {
	for len(e.stack) > 0 {
		top := e.stack[len(e.stack)-1]
		e.stack = e.stack[:len(e.stack)-1]
		if top.kind == frameAllAtOnce {
			e.warpDepth--
		}
		if top.kind == frameProcedure {
			e.ctx.Args = top.savedArgs
			if top.warp {
				e.warpDepth--
			}
			return
		}
	}
}


