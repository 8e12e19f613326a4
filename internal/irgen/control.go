package irgen

import (
	"scratchcore/internal/ir"
	"scratchcore/internal/project"
	"scratchcore/internal/scratcherr"
)

// descendStackBlock lowers a single statement-position block. Loop bodies
// set Yields true on the StackBlock representing the loop itself; the code
// generator (C6) is what actually decides whether to emit a yield, honoring
// ambient warp state, but the generator still records the block's own
// "wants to yield every iteration" intent here per §4.3.
func (g *Generator) descendStackBlock(block *RawBlock) *ir.StackBlock {
	switch block.Opcode {
	case "control_repeat":
		times := ir.CastInput(g.descendInput(block, "TIMES"), ir.Number)
		body := g.descendSubstack(g.substackBlockID(block, "SUBSTACK"))
		node := ir.NewStackBlock(ir.OpRepeat, map[string]ir.Input{"times": times}, true, block.ID)
		node.Substacks["body"] = body
		return node

	case "control_forever":
		body := g.descendSubstack(g.substackBlockID(block, "SUBSTACK"))
		node := ir.NewStackBlock(ir.OpForever, nil, true, block.ID)
		node.Substacks["body"] = body
		return node

	case "control_if":
		cond := ir.CastInput(g.descendInput(block, "CONDITION"), ir.Boolean)
		then := g.descendSubstack(g.substackBlockID(block, "SUBSTACK"))
		node := ir.NewStackBlock(ir.OpIf, map[string]ir.Input{"cond": cond}, false, block.ID)
		node.Substacks["then"] = then
		return node

	case "control_if_else":
		cond := ir.CastInput(g.descendInput(block, "CONDITION"), ir.Boolean)
		then := g.descendSubstack(g.substackBlockID(block, "SUBSTACK"))
		els := g.descendSubstack(g.substackBlockID(block, "SUBSTACK2"))
		node := ir.NewStackBlock(ir.OpIfElse, map[string]ir.Input{"cond": cond}, false, block.ID)
		node.Substacks["then"] = then
		node.Substacks["else"] = els
		return node

	case "control_repeat_until":
		// §4.3: cast to boolean first, THEN wrap in NOT — negating after
		// the cast avoids double negation.
		raw := g.descendInput(block, "CONDITION")
		casted := ir.CastInput(raw, ir.Boolean)
		negated := ir.NewInputReporter(ir.OpNot, ir.Boolean, map[string]ir.Input{"value": casted})
		body := g.descendSubstack(g.substackBlockID(block, "SUBSTACK"))
		node := ir.NewStackBlock(ir.OpRepeatUntil, map[string]ir.Input{"cond": negated}, true, block.ID)
		node.Substacks["body"] = body
		return node

	case "control_while":
		cond := ir.CastInput(g.descendInput(block, "CONDITION"), ir.Boolean)
		body := g.descendSubstack(g.substackBlockID(block, "SUBSTACK"))
		node := ir.NewStackBlock(ir.OpWhile, map[string]ir.Input{"cond": cond}, true, block.ID)
		node.Substacks["body"] = body
		return node

	case "control_wait":
		secs := ir.CastInput(g.descendInput(block, "DURATION"), ir.Number)
		return ir.NewStackBlock(ir.OpWait, map[string]ir.Input{"secs": secs}, true, block.ID)

	case "control_wait_until":
		cond := ir.CastInput(g.descendInput(block, "CONDITION"), ir.Boolean)
		return ir.NewStackBlock(ir.OpWaitUntil, map[string]ir.Input{"cond": cond}, true, block.ID)

	case "control_stop":
		opt := g.fieldName(block, "STOP_OPTION")
		return withStringExtra(ir.NewStackBlock(ir.OpStop, nil, false, block.ID), opt)

	case "control_create_clone_of":
		target := g.descendInput(block, "CLONE_OPTION")
		return ir.NewStackBlock(ir.OpCreateCloneOf, map[string]ir.Input{"target": target}, false, block.ID)

	case "control_delete_this_clone":
		return ir.NewStackBlock(ir.OpDeleteThisClone, nil, false, block.ID)

	case "control_for_each":
		id, varName := g.descendVariable(block, "VARIABLE", project.KindScalar)
		n := ir.CastInput(g.descendInput(block, "VALUE"), ir.Number)
		body := g.descendSubstack(g.substackBlockID(block, "SUBSTACK"))
		node := withVarExtra(ir.NewStackBlock(ir.OpForEach, map[string]ir.Input{"n": n}, true, block.ID), ir.VarRef{ID: id, Name: varName})
		node.Substacks["body"] = body
		return node

	case "control_all_at_once":
		body := g.descendSubstack(g.substackBlockID(block, "SUBSTACK"))
		node := ir.NewStackBlock(ir.OpAllAtOnce, nil, false, block.ID)
		node.Substacks["body"] = body
		return node

	case "event_broadcast":
		name := g.descendInput(block, "BROADCAST_INPUT")
		return ir.NewStackBlock(ir.OpBroadcast, map[string]ir.Input{"name": name}, false, block.ID)

	case "event_broadcastandwait":
		name := g.descendInput(block, "BROADCAST_INPUT")
		return ir.NewStackBlock(ir.OpBroadcastAndWait, map[string]ir.Input{"name": name}, true, block.ID)

	case "data_setvariableto":
		id, name := g.descendVariable(block, "VARIABLE", project.KindScalar)
		v := g.descendInput(block, "VALUE")
		return withVarExtra(ir.NewStackBlock(ir.OpVarSet, map[string]ir.Input{"value": v}, false, block.ID), ir.VarRef{ID: id, Name: name})

	case "data_changevariableby":
		// §4.3: sugared to setvariable(v, v + delta) so type inference can
		// specialize the add.
		id, name := g.descendVariable(block, "VARIABLE", project.KindScalar)
		delta := ir.CastInput(g.descendInput(block, "VALUE"), ir.Number)
		current := withExtra(ir.NewInputReporter(ir.OpVarGet, ir.Any, nil), ir.VarRef{ID: id, Name: name})
		sum := ir.NewInputReporter(ir.OpAdd, ir.NumberOrNaN, map[string]ir.Input{"a": ir.CastInput(current, ir.Number), "b": delta})
		return withVarExtra(ir.NewStackBlock(ir.OpVarSet, map[string]ir.Input{"value": sum}, false, block.ID), ir.VarRef{ID: id, Name: name})

	case "data_showvariable":
		id, name := g.descendVariable(block, "VARIABLE", project.KindScalar)
		return withVarExtra(ir.NewStackBlock(ir.OpShowVariable, nil, false, block.ID), ir.VarRef{ID: id, Name: name})
	case "data_hidevariable":
		id, name := g.descendVariable(block, "VARIABLE", project.KindScalar)
		return withVarExtra(ir.NewStackBlock(ir.OpHideVariable, nil, false, block.ID), ir.VarRef{ID: id, Name: name})

	case "data_addtolist":
		id, name := g.descendVariable(block, "LIST", project.KindList)
		item := g.descendInput(block, "ITEM")
		return withVarExtra(ir.NewStackBlock(ir.OpListAdd, map[string]ir.Input{"item": item}, false, block.ID), ir.VarRef{ID: id, Name: name})
	case "data_deleteoflist":
		id, name := g.descendVariable(block, "LIST", project.KindList)
		idx := g.descendInput(block, "INDEX")
		return withVarExtra(ir.NewStackBlock(ir.OpListDelete, map[string]ir.Input{"index": idx}, false, block.ID), ir.VarRef{ID: id, Name: name})
	case "data_deletealloflist":
		id, name := g.descendVariable(block, "LIST", project.KindList)
		return withVarExtra(ir.NewStackBlock(ir.OpListDeleteAll, nil, false, block.ID), ir.VarRef{ID: id, Name: name})
	case "data_insertatlist":
		id, name := g.descendVariable(block, "LIST", project.KindList)
		idx := g.descendInput(block, "INDEX")
		item := g.descendInput(block, "ITEM")
		return withVarExtra(ir.NewStackBlock(ir.OpListInsert, map[string]ir.Input{"index": idx, "item": item}, false, block.ID), ir.VarRef{ID: id, Name: name})
	case "data_replaceitemoflist":
		id, name := g.descendVariable(block, "LIST", project.KindList)
		idx := g.descendInput(block, "INDEX")
		item := g.descendInput(block, "ITEM")
		return withVarExtra(ir.NewStackBlock(ir.OpListSet, map[string]ir.Input{"index": idx, "item": item}, false, block.ID), ir.VarRef{ID: id, Name: name})

	case "procedures_call":
		return g.descendProcedureCallStack(block)
	case "procedures_return":
		v := g.descendInput(block, "VALUE")
		return ir.NewStackBlock(ir.OpProcedureReturn, map[string]ir.Input{"value": v}, false, block.ID)
	case "procedures_definition", "procedures_prototype":
		return nil // bodies are lifted separately (procedures.go); the definition hat itself has no step behavior

	default:
		return g.descendHelperStack(block)
	}
}

// substackBlockID extracts the nested-body block id from a SUBSTACK-style
// input, which the loader represents as a block reference with no literal
// value.
func (g *Generator) substackBlockID(block *RawBlock, name string) string {
	if raw, ok := block.Inputs[name]; ok {
		return raw.BlockID
	}
	return ""
}

func withVarExtra(b *ir.StackBlock, ref ir.VarRef) *ir.StackBlock {
	b.Extra = ref
	return b
}

// withStringExtra is the StackBlock analog of withExtra for the common case
// of a plain string payload (the stop option).
func withStringExtra(b *ir.StackBlock, s string) *ir.StackBlock {
	b.Extra = s
	return b
}

func (g *Generator) descendHelperStack(block *RawBlock) *ir.StackBlock {
	if recognizedHelperStacks[block.Opcode] {
		inputs := g.descendAllInputs(block)
		node := ir.NewStackBlock(ir.OpHelperCall, inputs, helperMayYield(block.Opcode), block.ID)
		node.Extra = ir.HelperRef{Opcode: block.Opcode, Inputs: inputs, Fields: g.allFieldNames(block)}
		return node
	}
	switch familyOf(block.Opcode) {
	case familyKnown:
		g.fatal(scratcherr.UnknownOpcode, block.ID, block.Opcode, "unknown opcode in a known block family")
	default:
		g.warn(scratcherr.UnknownOpcode, block.ID, block.Opcode, "soft-skipped unsupported extension block")
	}
	return nil
}

// helperMayYield flags the handful of helper stack blocks that are
// time-bounded (§4.7): their first invocation seeds a deadline and later
// re-entries check it, which requires a yield point the scheduler can
// resume through.
func helperMayYield(opcode string) bool {
	switch opcode {
	case "looks_sayforsecs", "looks_thinkforsecs", "sound_playuntildone",
		"looks_switchbackdropandwait", "sensing_askandwait", "motion_glideto", "motion_glidesecstoxy":
		return true
	default:
		return false
	}
}


