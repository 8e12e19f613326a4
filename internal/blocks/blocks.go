// Package blocks implements the side-effecting block helpers (§4.7, C8):
// the motion/looks/sound/sensing/clone primitives a compiled script invokes
// through codegen.Host.CallReporterHelper/CallStackHelper. Grounded on
// sentra's RegisterHTTPFunctions style (internal/vm/network_http.go) — a
// flat name→function table registered against a host, one function per
// opcode — generalized from "native function returning (Value, error)" to
// "helper returning a plain value or a HelperStatus", since block helpers
// report suspension, not Go errors.
package blocks

import (
	"math/rand"
	"time"

	"scratchcore/internal/codegen"
	"scratchcore/internal/project"
	"scratchcore/internal/values"
)

// Input is the external mouse/keyboard collaborator (§6: "input
// (mouse/keyboard)... named at their interfaces, internals not specified").
// A nil Input leaves mouse/keyboard reporters at their zero value.
type Input interface {
	MouseX() float64
	MouseY() float64
	MouseDown() bool
	KeyPressed(key string) bool
}

// Answerer is the external "ask and wait" prompt collaborator. A nil
// Answerer answers every question with the empty string.
type Answerer interface {
	Ask(target *project.Target, question string) string
}

// Blocks is the block-helper table. One instance is shared by every target
// in a project; per-target state it needs but project.Target doesn't carry
// (the global answer, the timer epoch) lives here.
type Blocks struct {
	Clock    func() time.Time
	Input    Input
	Answerer Answerer
	Rand     *rand.Rand

	answer     string
	timerStart time.Time

	reporters  map[string]reporterFunc
	stacks     map[string]stackFunc
	deadlines  map[interface{}]*deadline
}

type reporterFunc func(b *Blocks, target *project.Target, args map[string]interface{}, fields map[string]string) interface{}

// stackFunc runs (or polls, via deadline) a stack-position helper. Every
// poll of the same call site receives the same *deadline; its armed flag is
// false only on the first invocation.
type stackFunc func(b *Blocks, target *project.Target, args map[string]interface{}, fields map[string]string, d *deadline) codegen.HelperResult

// deadline is the per-call-site bookkeeping CallStackHelper's opaque handle
// resolves to — one wall-clock deadline, set on first invocation.
type deadline struct {
	until time.Time
	armed bool
}

// New builds a Blocks table with the given collaborators. Input, Answerer
// and Rand may be nil/zero; Clock defaults to time.Now.
func New(input Input, answerer Answerer, rng *rand.Rand) *Blocks {
	b := &Blocks{Clock: time.Now, Input: input, Answerer: answerer, Rand: rng}
	b.timerStart = b.Clock()
	b.deadlines = map[interface{}]*deadline{}
	b.reporters = motionReporters(b)
	for k, v := range looksReporters(b) {
		b.reporters[k] = v
	}
	for k, v := range soundReporters(b) {
		b.reporters[k] = v
	}
	for k, v := range sensingReporters(b) {
		b.reporters[k] = v
	}
	b.stacks = motionStacks(b)
	for k, v := range looksStacks(b) {
		b.stacks[k] = v
	}
	for k, v := range soundStacks(b) {
		b.stacks[k] = v
	}
	for k, v := range sensingStacks(b) {
		b.stacks[k] = v
	}
	return b
}

// Reporter implements scheduler.Helpers.
func (b *Blocks) Reporter(opcode string, target *project.Target, args map[string]interface{}, fields map[string]string) interface{} {
	if fn, ok := b.reporters[opcode]; ok {
		return fn(b, target, args, fields)
	}
	return ""
}

// Stack implements scheduler.Helpers. handle is the *frame the caller uses
// to key per-call-site state (see codegen.Host); we stash our own
// *deadline behind it the first time we see a given handle.
func (b *Blocks) Stack(opcode string, target *project.Target, args map[string]interface{}, fields map[string]string, handle interface{}) codegen.HelperResult {
	fn, ok := b.stacks[opcode]
	if !ok {
		return codegen.HelperResult{Status: codegen.HelperComplete}
	}
	d := b.deadlineFor(handle)
	res := fn(b, target, args, fields, d)
	if res.Status != codegen.HelperPending {
		b.clearDeadline(handle)
	}
	return res
}

func (b *Blocks) deadlineFor(handle interface{}) *deadline {
	d, ok := b.deadlines[handle]
	if !ok {
		d = &deadline{}
		b.deadlines[handle] = d
	}
	return d
}

func (b *Blocks) clearDeadline(handle interface{}) {
	delete(b.deadlines, handle)
}

func (b *Blocks) num(args map[string]interface{}, key string) float64 {
	return values.ToNumberOrNaN(args[key])
}

func (b *Blocks) str(args map[string]interface{}, key string) string {
	return values.ToScratchString(args[key])
}


