package codegen

import (
	"math/rand"

	"scratchcore/internal/ir"
	"scratchcore/internal/irgen"
	"scratchcore/internal/project"
	"scratchcore/internal/scratchlog"
)

// NewScriptExecState binds a compiled script's body to a fresh thread state,
// ready for the scheduler to Step. One ExecState belongs to exactly one
// Thread record (C7); the scheduler owns retry/reschedule, this package
// only owns "what happens on the next Step".
func NewScriptExecState(script *ir.Script, target *project.Target, host Host, rng *rand.Rand) *ExecState {
	ctx := &EvalContext{Target: target, Rand: rng, Host: host}
	return NewExecState(ctx, script.Body)
}

// NewProcedureCallExecState binds a procedure body to a fresh thread state
// for a statement-position call site entered directly by the scheduler (used
// when a broadcast or clone hat is itself, unusually, a procedure body is
// never the case in practice — procedures are always entered via
// OpProcedureCall inside a script's own ExecState — but the constructor is
// kept symmetrical with NewScriptExecState for callers that bind procedures
// standalone, e.g. tests).
func NewProcedureCallExecState(proc *irgen.CompiledProcedure, target *project.Target, args map[string]interface{}, host Host, rng *rand.Rand) *ExecState {
	ctx := &EvalContext{Target: target, Args: args, Rand: rng, Host: host}
	e := NewExecState(ctx, proc.Body)
	if proc.Warp {
		e.warpDepth = 1
	}
	return e
}

// callProcedureSync runs a procedure call to completion within a single host
// tick, for a reporter-position procedures_call (§4.5). It never yields back
// to the scheduler; if its body hits a genuine suspend point (wait,
// broadcast-and-wait, a pending helper) it can't honor it — nothing else
// gets to run while this call is on the stack — so it gives up and reports
// the call's default value instead of hanging (§7 runtime helper failure).
func (c *EvalContext) callProcedureSync(ref ir.ProcedureCallRef) interface{} {
	proc, ok := c.Host.LookupProcedure(c.Target.ID, ref.ProcCode)
	if !ok {
		return ""
	}
	args := make(map[string]interface{}, len(proc.ArgumentNames))
	for i, name := range proc.ArgumentNames {
		switch {
		case i < len(ref.Args):
			args[name] = c.Eval(ref.Args[i])
		case i < len(proc.ArgumentDefaults):
			args[name] = proc.ArgumentDefaults[i]
		}
	}
	nested := &EvalContext{Target: c.Target, Args: args, Rand: c.Rand, Host: c.Host}
	sub := NewExecState(nested, proc.Body)
	sub.syncMode = true
	if status := sub.Step(c.Host); status == Blocked {
		scratchlog.Default.Warn("procedure %q blocked on a suspend point inside a reporter-position call; returning default value", ref.ProcCode)
		return ""
	}
	if sub.returned {
		return sub.returnValue
	}
	return ""
}


