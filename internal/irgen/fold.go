package irgen

import (
	"math"

	"scratchcore/internal/ir"
	"scratchcore/internal/values"
)

// foldOrBuildNumeric implements the arithmetic half of §4.4(a) constant
// folding: when both operands are Constants, compute the result eagerly and
// tag it with ClassifyNumber; otherwise emit the runtime op over cast
// operands.
func (g *Generator) foldOrBuildNumeric(block *RawBlock, op ir.Opcode) ir.Input {
	a := ir.CastInput(g.descendInput(block, "NUM1"), ir.Number)
	b := ir.CastInput(g.descendInput(block, "NUM2"), ir.Number)
	ca, aConst := a.(*ir.Constant)
	cb, bConst := b.(*ir.Constant)
	if aConst && bConst {
		av, bv := values.ToNumber(ca.Value), values.ToNumber(cb.Value)
		result := applyNumeric(op, av, bv)
		return ir.NewConstant(result)
	}
	declared := declaredNumericType(op, ir.TypeOf(a), ir.TypeOf(b))
	return ir.NewInputReporter(op, declared, map[string]ir.Input{"a": a, "b": b})
}

func applyNumeric(op ir.Opcode, a, b float64) float64 {
	switch op {
	case ir.OpAdd:
		return a + b
	case ir.OpSubtract:
		return a - b
	case ir.OpMultiply:
		return a * b
	case ir.OpDivide:
		return a / b // Go's float division already yields ±Inf/NaN per §4.1 S4
	case ir.OpMod:
		return values.Mod(a, b)
	default:
		return math.NaN()
	}
}

// declaredNumericType runs the §4.4 type-inference tables when operands
// aren't both constant, so downstream casts can still be eliminated later by
// the optimizer (C5) even without folding.
func declaredNumericType(op ir.Opcode, l, r ir.Type) ir.Type {
	switch op {
	case ir.OpAdd:
		return ir.AddType(l, r)
	case ir.OpSubtract:
		return ir.SubtractType(l, r)
	case ir.OpMultiply:
		return ir.MultiplyType(l, r)
	case ir.OpDivide:
		return ir.DivideType(l, r)
	default:
		return ir.NumberOrNaN
	}
}

// foldOrBuildCompare implements §4.3 Operators comparison + the §4.4(a)
// carve-out: folding of string comparisons at compile time is forbidden
// unless both sides are numeric literals.
func (g *Generator) foldOrBuildCompare(block *RawBlock, op ir.Opcode) ir.Input {
	a := g.descendInput(block, "OPERAND1")
	b := g.descendInput(block, "OPERAND2")
	if bothNumericConstants(a, b) {
		ca, cb := a.(*ir.Constant), b.(*ir.Constant)
		cmp := values.Compare(values.ToNumber(ca.Value), values.ToNumber(cb.Value))
		return ir.NewConstant(applyCompare(op, cmp))
	}
	return ir.NewInputReporter(op, ir.Boolean, map[string]ir.Input{"a": a, "b": b})
}

func bothNumericConstants(a, b ir.Input) bool {
	ca, aOk := a.(*ir.Constant)
	cb, bOk := b.(*ir.Constant)
	return aOk && bOk && isNumericLiteral(ca) && isNumericLiteral(cb)
}

// isNumericLiteral is true for a float64 constant, or a string constant
// that is itself numeric-shaped (e.g. the literal "5" typed into a
// comparison block's shadow input) — §4.4(a)'s "unless both sides are
// numeric literals" carve-out.
func isNumericLiteral(c *ir.Constant) bool {
	switch c.Value.(type) {
	case float64:
		return true
	case string:
		return c.Type == ir.StringNum
	default:
		return false
	}
}

func applyCompare(op ir.Opcode, cmp int) bool {
	switch op {
	case ir.OpLess:
		return cmp < 0
	case ir.OpGreater:
		return cmp > 0
	case ir.OpEquals:
		return cmp == 0
	default:
		return false
	}
}

// foldOrBuildLogic implements §4.3 and/or with short-circuit folding:
// isAnd == true for AND, false for OR. "false AND X -> false"; "true OR X
// -> true", folded at generation time when the short-circuiting side is a
// constant.
func (g *Generator) foldOrBuildLogic(block *RawBlock, isAnd bool) ir.Input {
	a := ir.CastInput(g.descendInput(block, "OPERAND1"), ir.Boolean)
	b := ir.CastInput(g.descendInput(block, "OPERAND2"), ir.Boolean)
	if ca, ok := a.(*ir.Constant); ok {
		av := values.ToBoolean(ca.Value)
		if isAnd && !av {
			return ir.NewConstant(false)
		}
		if !isAnd && av {
			return ir.NewConstant(true)
		}
		if cb, ok := b.(*ir.Constant); ok {
			bv := values.ToBoolean(cb.Value)
			if isAnd {
				return ir.NewConstant(av && bv)
			}
			return ir.NewConstant(av || bv)
		}
		return b // a was the non-short-circuiting identity; result is just b
	}
	if cb, ok := b.(*ir.Constant); ok {
		bv := values.ToBoolean(cb.Value)
		if isAnd && !bv {
			return ir.NewConstant(false)
		}
		if !isAnd && bv {
			return ir.NewConstant(true)
		}
		return a
	}
	op := ir.OpAnd
	if !isAnd {
		op = ir.OpOr
	}
	return ir.NewInputReporter(op, ir.Boolean, map[string]ir.Input{"a": a, "b": b})
}


