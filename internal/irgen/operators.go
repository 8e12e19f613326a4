package irgen

import (
	"strings"

	"scratchcore/internal/ir"
	"scratchcore/internal/project"
	"scratchcore/internal/scratcherr"
	"scratchcore/internal/values"
)

// familyKind classifies an opcode's prefix for the §7 unknown-opcode policy.
type familyKind int

const (
	familyKnown       familyKind = iota // motion/looks/sound/sensing/data/control/operator/event/procedures
	familyExtension                     // pen/music/text2speech/...: soft-skip on unknown opcode
	familyUnrecognized
)

var knownFamilies = []string{
	"motion_", "looks_", "sound_", "sensing_", "data_", "control_",
	"operator_", "event_", "procedures_", "argument_",
}

var extensionFamilies = []string{
	"pen_", "music_", "text2speech_", "translate_", "videosensing_", "makeymakey_",
}

func familyOf(opcode string) familyKind {
	for _, p := range knownFamilies {
		if strings.HasPrefix(opcode, p) {
			return familyKnown
		}
	}
	for _, p := range extensionFamilies {
		if strings.HasPrefix(opcode, p) {
			return familyExtension
		}
	}
	return familyUnrecognized
}

// withExtra sets a reporter's opcode-specific static payload and returns it,
// a small builder used throughout this file since ir.InputReporter itself
// stays a plain struct (no methods) per the teacher's node style.
func withExtra(r *ir.InputReporter, extra interface{}) *ir.InputReporter {
	r.Extra = extra
	return r
}

// descendReporter lowers an expression-position block into an InputReporter
// (or a folded Constant).
func (g *Generator) descendReporter(block *RawBlock) ir.Input {
	switch block.Opcode {
	case "operator_add":
		return g.foldOrBuildNumeric(block, ir.OpAdd)
	case "operator_subtract":
		return g.foldOrBuildNumeric(block, ir.OpSubtract)
	case "operator_multiply":
		return g.foldOrBuildNumeric(block, ir.OpMultiply)
	case "operator_divide":
		return g.foldOrBuildNumeric(block, ir.OpDivide)
	case "operator_mod":
		return g.foldOrBuildNumeric(block, ir.OpMod)
	case "operator_round":
		v := ir.CastInput(g.descendInput(block, "NUM"), ir.Number)
		return ir.NewInputReporter(ir.OpRound, ir.NumberInt, map[string]ir.Input{"value": v})
	case "operator_mathop":
		op := g.fieldName(block, "OPERATOR")
		v := ir.CastInput(g.descendInput(block, "NUM"), ir.Number)
		if c, ok := v.(*ir.Constant); ok {
			folded := values.MathOp(op, values.ToNumber(c.Value))
			return ir.NewConstant(folded)
		}
		return withExtra(ir.NewInputReporter(ir.OpMathOp, ir.NumberOrNaN, map[string]ir.Input{"value": v}), op)
	case "operator_lt":
		return g.foldOrBuildCompare(block, ir.OpLess)
	case "operator_gt":
		return g.foldOrBuildCompare(block, ir.OpGreater)
	case "operator_equals":
		return g.foldOrBuildCompare(block, ir.OpEquals)
	case "operator_and":
		return g.foldOrBuildLogic(block, true)
	case "operator_or":
		return g.foldOrBuildLogic(block, false)
	case "operator_not":
		v := ir.CastInput(g.descendInput(block, "OPERAND"), ir.Boolean)
		if c, ok := v.(*ir.Constant); ok {
			return ir.NewConstant(!values.ToBoolean(c.Value))
		}
		return ir.NewInputReporter(ir.OpNot, ir.Boolean, map[string]ir.Input{"value": v})
	case "operator_join":
		a := ir.CastInput(g.descendInput(block, "STRING1"), ir.String)
		b := ir.CastInput(g.descendInput(block, "STRING2"), ir.String)
		return ir.NewInputReporter(ir.OpJoin, ir.String, map[string]ir.Input{"a": a, "b": b})
	case "operator_letter_of":
		idx := ir.CastInput(g.descendInput(block, "LETTER"), ir.Number)
		s := ir.CastInput(g.descendInput(block, "STRING"), ir.String)
		return ir.NewInputReporter(ir.OpLetterOf, ir.String, map[string]ir.Input{"index": idx, "value": s})
	case "operator_length":
		s := ir.CastInput(g.descendInput(block, "STRING"), ir.String)
		return ir.NewInputReporter(ir.OpStringLength, ir.NumberInt, map[string]ir.Input{"value": s})
	case "operator_contains":
		a := ir.CastInput(g.descendInput(block, "STRING1"), ir.String)
		b := ir.CastInput(g.descendInput(block, "STRING2"), ir.String)
		return ir.NewInputReporter(ir.OpContains, ir.Boolean, map[string]ir.Input{"a": a, "b": b})
	case "operator_random":
		a := g.descendInput(block, "FROM")
		b := g.descendInput(block, "TO")
		return ir.NewInputReporter(ir.OpRandom, ir.NumberOrNaN, map[string]ir.Input{"from": a, "to": b})

	case "data_variable":
		id, name := g.descendVariable(block, "VARIABLE", project.KindScalar)
		return withExtra(ir.NewInputReporter(ir.OpVarGet, ir.Any, nil), ir.VarRef{ID: id, Name: name})
	case "data_listcontents":
		id, name := g.descendVariable(block, "LIST", project.KindList)
		return withExtra(ir.NewInputReporter(ir.OpListContents, ir.String, nil), ir.VarRef{ID: id, Name: name})
	case "data_itemoflist":
		idx := g.descendInput(block, "INDEX")
		id, name := g.descendVariable(block, "LIST", project.KindList)
		return withExtra(ir.NewInputReporter(ir.OpListGet, ir.Any, map[string]ir.Input{"index": idx}), ir.VarRef{ID: id, Name: name})
	case "data_lengthoflist":
		id, name := g.descendVariable(block, "LIST", project.KindList)
		return withExtra(ir.NewInputReporter(ir.OpListLength, ir.NumberInt, nil), ir.VarRef{ID: id, Name: name})
	case "data_listcontainsitem":
		id, name := g.descendVariable(block, "LIST", project.KindList)
		item := g.descendInput(block, "ITEM")
		return withExtra(ir.NewInputReporter(ir.OpListContains, ir.Boolean, map[string]ir.Input{"item": item}), ir.VarRef{ID: id, Name: name})

	case "argument_reporter_string_number":
		return withExtra(ir.NewInputReporter(ir.OpArgumentReporterStringNumber, ir.Any, nil), g.fieldName(block, "VALUE"))
	case "argument_reporter_boolean":
		return withExtra(ir.NewInputReporter(ir.OpArgumentReporterBoolean, ir.Boolean, nil), g.fieldName(block, "VALUE"))

	case "procedures_call":
		return g.descendProcedureCallReporter(block)

	default:
		return g.descendHelperReporter(block)
	}
}

// descendHelperReporter is the fallback for motion/looks/sound/sensing
// reporters (e.g. sensing_mousex, looks_costumenumbername) that don't need
// bespoke IR shape: they become a generic helper-call reporter the code
// generator resolves against the block-helper table (C8). An unrecognized
// opcode under a known family is fatal; under an extension (or wholly
// unrecognized) family it is a soft-skip producing an empty-string constant.
func (g *Generator) descendHelperReporter(block *RawBlock) ir.Input {
	if recognizedHelperReporters[block.Opcode] {
		inputs := g.descendAllInputs(block)
		return withExtra(ir.NewInputReporter(ir.OpHelperCall, ir.Any, inputs),
			ir.HelperRef{Opcode: block.Opcode, Inputs: inputs, Fields: g.allFieldNames(block)})
	}
	switch familyOf(block.Opcode) {
	case familyKnown:
		// A known-family opcode with no bespoke case and no helper-table
		// binding is a genuine unknown opcode — fatal per §7.
		g.fatal(scratcherr.UnknownOpcode, block.ID, block.Opcode, "unknown opcode in a known block family")
		return ir.NewConstant("")
	default:
		g.warn(scratcherr.UnknownOpcode, block.ID, block.Opcode, "soft-skipped unsupported extension reporter")
		return ir.NewConstant("")
	}
}

func (g *Generator) descendAllInputs(block *RawBlock) map[string]ir.Input {
	out := map[string]ir.Input{}
	for name := range block.Inputs {
		out[name] = g.descendInput(block, name)
	}
	return out
}

func (g *Generator) allFieldNames(block *RawBlock) map[string]string {
	out := map[string]string{}
	for name, f := range block.Fields {
		out[name] = f.Name
	}
	return out
}



