package codegen

import (
	"time"

	"scratchcore/internal/irgen"
	"scratchcore/internal/project"
)

// Host is everything a running script needs from the scheduler and the
// block-helper table (C7, C8) that codegen itself doesn't own: broadcasts,
// clone lifecycle, side-effecting helper dispatch, procedure lookup, and the
// wall clock. A frame-stack ExecState is otherwise self-contained.
type Host interface {
	// CallReporterHelper runs a reporter-position block helper (motion,
	// looks, sensing, ...) to completion; reporters never suspend (§4.5).
	CallReporterHelper(opcode string, target *project.Target, args map[string]interface{}, fields map[string]string) interface{}

	// CallStackHelper runs (or polls) a stack-position block helper. handle
	// is a value stable across polls of the same pending call, letting the
	// helper implementation key its own deadline/wait bookkeeping without
	// codegen needing to know its shape.
	CallStackHelper(opcode string, target *project.Target, args map[string]interface{}, fields map[string]string, handle interface{}) HelperResult

	Broadcast(name string)
	// BroadcastAndWait starts (on first call for a given handle) or polls a
	// broadcast-and-wait fan-out; true once every receiving script has
	// retired or there were none to begin with.
	BroadcastAndWait(name string, handle interface{}) bool

	CreateCloneOf(target *project.Target, option string)
	DeleteThisClone(target *project.Target)

	StopAll()
	StopOthers(target *project.Target)

	SetVariableVisible(target *project.Target, varID string, visible bool)

	// SaveCloudVariable schedules a non-blocking persistence push for a
	// cloud-flagged variable (§4.8); the script never waits on it.
	SaveCloudVariable(target *project.Target, varID string, value interface{})

	LookupProcedure(targetID, procCode string) (*irgen.CompiledProcedure, bool)

	Now() time.Time
	StuckBudget() time.Duration
}


