// Package codegen is the code generator (C6): it turns an optimized IR
// script into an executable form the scheduler can single-step. Rather than
// a flat bytecode plus interpreter, it walks the IR directly at execution
// time over an explicit frame stack (frames.go) — the generator's "compile"
// step is really just binding a Script/CompiledProcedure to an EvalContext,
// since the IR tree itself is already the executable form once optimized.
package codegen

import (
	"math"
	"math/rand"

	"scratchcore/internal/ir"
	"scratchcore/internal/project"
	"scratchcore/internal/values"
)

// EvalContext is everything a pure expression evaluation needs: the target
// whose variables/lists are in scope, the enclosing procedure's argument
// frame (nil outside a procedure body), and a source of randomness.
type EvalContext struct {
	Target *project.Target
	Args   map[string]interface{} // argument name -> value, set by a procedure call frame
	Rand   *rand.Rand
	Host   Host
}

// Eval computes an Input's runtime value. Every case here is pure per §4.5
// ("constants and variable reads produced by reporters are pure; no
// suspension") — the one exception, procedures_call in reporter position,
// is also run to completion here rather than suspended: real Scratch runs
// reporter-position custom block calls synchronously regardless of warp,
// so codegen mirrors that rather than threading a yield through Eval.
func (c *EvalContext) Eval(in ir.Input) interface{} {
	switch n := in.(type) {
	case *ir.Constant:
		return n.Value
	case *ir.InputReporter:
		return c.evalReporter(n)
	default:
		return nil
	}
}

func (c *EvalContext) evalReporter(n *ir.InputReporter) interface{} {
	switch n.Opcode {
	case ir.OpConstant:
		return c.Eval(n.Inputs[""])

	case ir.OpCastNumber:
		return values.ToNumber(c.Eval(n.Inputs["value"]))
	case ir.OpCastNumberOrNaN:
		return values.ToNumberOrNaN(c.Eval(n.Inputs["value"]))
	case ir.OpCastBoolean:
		return values.ToBoolean(c.Eval(n.Inputs["value"]))
	case ir.OpCastString:
		return values.ToScratchString(c.Eval(n.Inputs["value"]))
	case ir.OpCastColor:
		return c.Eval(n.Inputs["value"])
	case ir.OpCastNumberIndex:
		return values.ToNumber(c.Eval(n.Inputs["value"]))

	case ir.OpAdd:
		return values.ToNumber(c.Eval(n.Inputs["a"])) + values.ToNumber(c.Eval(n.Inputs["b"]))
	case ir.OpSubtract:
		return values.ToNumber(c.Eval(n.Inputs["a"])) - values.ToNumber(c.Eval(n.Inputs["b"]))
	case ir.OpMultiply:
		return values.ToNumber(c.Eval(n.Inputs["a"])) * values.ToNumber(c.Eval(n.Inputs["b"]))
	case ir.OpDivide:
		return values.ToNumber(c.Eval(n.Inputs["a"])) / values.ToNumber(c.Eval(n.Inputs["b"]))
	case ir.OpMod:
		return values.Mod(values.ToNumber(c.Eval(n.Inputs["a"])), values.ToNumber(c.Eval(n.Inputs["b"])))
	case ir.OpRound:
		return roundHalfAwayFromZero(values.ToNumber(c.Eval(n.Inputs["value"])))
	case ir.OpMathOp:
		op, _ := n.Extra.(string)
		return values.MathOp(op, values.ToNumber(c.Eval(n.Inputs["value"])))

	case ir.OpLess:
		return values.Compare(c.Eval(n.Inputs["a"]), c.Eval(n.Inputs["b"])) < 0
	case ir.OpGreater:
		return values.Compare(c.Eval(n.Inputs["a"]), c.Eval(n.Inputs["b"])) > 0
	case ir.OpEquals:
		return values.Compare(c.Eval(n.Inputs["a"]), c.Eval(n.Inputs["b"])) == 0
	case ir.OpAnd:
		return values.ToBoolean(c.Eval(n.Inputs["a"])) && values.ToBoolean(c.Eval(n.Inputs["b"]))
	case ir.OpOr:
		return values.ToBoolean(c.Eval(n.Inputs["a"])) || values.ToBoolean(c.Eval(n.Inputs["b"]))
	case ir.OpNot:
		return !values.ToBoolean(c.Eval(n.Inputs["value"]))

	case ir.OpJoin:
		return values.ToScratchString(c.Eval(n.Inputs["a"])) + values.ToScratchString(c.Eval(n.Inputs["b"]))
	case ir.OpLetterOf:
		return values.LetterOf(values.ToNumber(c.Eval(n.Inputs["index"])), values.ToScratchString(c.Eval(n.Inputs["value"])))
	case ir.OpStringLength:
		return float64(len([]rune(values.ToScratchString(c.Eval(n.Inputs["value"])))))
	case ir.OpContains:
		return values.Contains(values.ToScratchString(c.Eval(n.Inputs["a"])), values.ToScratchString(c.Eval(n.Inputs["b"])))
	case ir.OpRandom:
		return values.Random(c.Eval(n.Inputs["from"]), c.Eval(n.Inputs["to"]), c.Rand)

	case ir.OpVarGet:
		return c.readVar(n)
	case ir.OpListContents:
		return values.ListContents(c.readList(n))
	case ir.OpListGet:
		list := c.readList(n)
		idx := values.ToListIndex(c.Eval(n.Inputs["index"]), len(list), false, c.Rand)
		if idx == values.ListInvalid {
			return ""
		}
		return list[idx-1]
	case ir.OpListLength:
		return float64(len(c.readList(n)))
	case ir.OpListContains:
		needle := values.ToScratchString(c.Eval(n.Inputs["item"]))
		for _, item := range c.readList(n) {
			if values.Compare(item, needle) == 0 {
				return true
			}
		}
		return false

	case ir.OpArgumentReporterStringNumber:
		name, _ := n.Extra.(string)
		if c.Args == nil {
			return 0.0
		}
		return c.Args[name]
	case ir.OpArgumentReporterBoolean:
		name, _ := n.Extra.(string)
		if c.Args == nil {
			return false
		}
		return values.ToBoolean(c.Args[name])

	case ir.OpProcedureCall:
		ref, _ := n.Extra.(ir.ProcedureCallRef)
		return c.callProcedureSync(ref)

	case ir.OpHelperCall:
		ref, _ := n.Extra.(ir.HelperRef)
		return c.Host.CallReporterHelper(ref.Opcode, c.Target, c.evalAll(n.Inputs), ref.Fields)

	default:
		return nil
	}
}

func (c *EvalContext) evalAll(inputs map[string]ir.Input) map[string]interface{} {
	out := make(map[string]interface{}, len(inputs))
	for name, in := range inputs {
		out[name] = c.Eval(in)
	}
	return out
}

func (c *EvalContext) readVar(n *ir.InputReporter) interface{} {
	ref, _ := n.Extra.(ir.VarRef)
	v, ok := c.Target.GetVariable(ref.ID)
	if !ok {
		return 0.0
	}
	return v.Value
}

func (c *EvalContext) readList(n *ir.InputReporter) []interface{} {
	ref, _ := n.Extra.(ir.VarRef)
	v, ok := c.Target.GetList(ref.ID)
	if !ok {
		return nil
	}
	return v.List
}

// roundHalfAwayFromZero matches JS Math.round, which Scratch's "round"
// operator delegates to: half-values round toward positive infinity, so
// round(-0.5) == 0 and round(2.5) == 3.
func roundHalfAwayFromZero(x float64) float64 {
	return math.Floor(x + 0.5)
}


