package irgen

import (
	"scratchcore/internal/ir"
	"scratchcore/internal/scratcherr"
)

// CompiledProcedure is a lifted custom-block body plus its declared shape,
// ready for the code generator to bind into a callable (§4.3 Procedures:
// "Definitions are lifted into independent compiled functions keyed by
// (target, proccode, warp)").
type CompiledProcedure struct {
	TargetID         string
	ProcCode         string
	ArgumentNames    []string
	ArgumentDefaults []string
	Warp             bool
	Body             []*ir.StackBlock
}

// LiftProcedures scans every top-level procedures_definition block on the
// target and compiles its body independently of any call site, per §4.3.
func (g *Generator) LiftProcedures() []*CompiledProcedure {
	var out []*CompiledProcedure
	for _, id := range g.Target.BlockOrder {
		block, ok := g.Target.Blocks[id]
		if !ok || !block.TopLevel || block.Opcode != "procedures_definition" {
			continue
		}
		proto := g.prototypeOf(block)
		if proto == nil || proto.Mutation == nil {
			g.warn(scratcherr.ParseShape, block.ID, block.Opcode, "procedure definition missing its prototype mutation")
			continue
		}
		g.visiting = map[string]bool{}
		body := g.descendSubstack(block.Next)
		out = append(out, &CompiledProcedure{
			TargetID:         g.Target.ID,
			ProcCode:         proto.Mutation.ProcCode,
			ArgumentNames:    proto.Mutation.ArgumentNames,
			ArgumentDefaults: proto.Mutation.ArgumentDefaults,
			Warp:             proto.Mutation.Warp,
			Body:             body,
		})
	}
	return out
}

func (g *Generator) prototypeOf(def *RawBlock) *RawBlock {
	custom, ok := def.Inputs["custom_block"]
	if !ok || custom.BlockID == "" {
		return nil
	}
	return g.Target.Blocks[custom.BlockID]
}

// descendProcedureCallStack lowers a procedures_call used as a statement.
// Argument values are positional, in the callee's declared argument-id
// order (§4.3). No yield is inserted here; whether a recursive self-call
// yields first is decided at run time by codegen's procedure-call step.
func (g *Generator) descendProcedureCallStack(block *RawBlock) *ir.StackBlock {
	call := g.buildProcedureCall(block)
	node := ir.NewStackBlock(ir.OpProcedureCall, nil, false, block.ID)
	node.Extra = call
	return node
}

func (g *Generator) descendProcedureCallReporter(block *RawBlock) ir.Input {
	call := g.buildProcedureCall(block)
	return withExtra(ir.NewInputReporter(ir.OpProcedureCall, ir.Any, nil), call)
}

func (g *Generator) buildProcedureCall(block *RawBlock) ir.ProcedureCallRef {
	if block.Mutation == nil {
		g.warn(scratcherr.ParseShape, block.ID, block.Opcode, "procedure call missing mutation")
		return ir.ProcedureCallRef{}
	}
	args := make([]ir.Input, len(block.Mutation.ArgumentIDs))
	for i, argID := range block.Mutation.ArgumentIDs {
		args[i] = g.descendInput(block, argID)
	}
	return ir.ProcedureCallRef{ProcCode: block.Mutation.ProcCode, Args: args}
}


