// Package optimize is the second IR pass (C5): it runs after the generator
// has already folded constants and inserted casts, and only does two things
// per script — collapse casts the generator proved redundant once child
// types are known, and re-tighten a node's declared type from its (possibly
// now-narrower) children via the §4.4 inference tables.
package optimize

import "scratchcore/internal/ir"

// Optimizer holds a small per-run memo table so a reporter shared by more
// than one parent (the generator can produce DAGs, not just trees, when a
// shadow input is reused) is only retyped once, mirroring the teacher's
// OptimizedVM builtin-resolution cache: resolve once, reuse the pointer.
type Optimizer struct {
	seen map[ir.Input]ir.Input
}

// New returns a ready-to-use Optimizer.
func New() *Optimizer {
	return &Optimizer{seen: map[ir.Input]ir.Input{}}
}

// Scripts optimizes every script in place and returns the same slice, for
// call-site convenience (`scripts = optimize.New().Scripts(scripts)`).
func (o *Optimizer) Scripts(scripts []*ir.Script) []*ir.Script {
	for _, s := range scripts {
		o.Script(s)
	}
	return scripts
}

// Script rewrites one script's body in place.
func (o *Optimizer) Script(s *ir.Script) {
	if s.HatParams.Threshold != nil {
		s.HatParams.Threshold = toReporter(o.rewriteInput(s.HatParams.Threshold))
	}
	s.Body = o.rewriteBlocks(s.Body)
}

func toReporter(in ir.Input) *ir.InputReporter {
	if r, ok := in.(*ir.InputReporter); ok {
		return r
	}
	return nil
}

func (o *Optimizer) rewriteBlocks(blocks []*ir.StackBlock) []*ir.StackBlock {
	for _, b := range blocks {
		o.rewriteStack(b)
	}
	return blocks
}

func (o *Optimizer) rewriteStack(b *ir.StackBlock) {
	for name, in := range b.Inputs {
		b.Inputs[name] = o.rewriteInput(in)
	}
	for role, body := range b.Substacks {
		b.Substacks[role] = o.rewriteBlocks(body)
	}
}

// rewriteInput is the workhorse: recurse into children first (so their
// types are already tightened), then either strip a now-redundant cast or
// re-tighten the node's own declared type.
func (o *Optimizer) rewriteInput(in ir.Input) ir.Input {
	if in == nil {
		return nil
	}
	if cached, ok := o.seen[in]; ok {
		return cached
	}

	switch n := in.(type) {
	case *ir.Constant:
		o.seen[in] = n
		return n

	case *ir.InputReporter:
		for name, child := range n.Inputs {
			n.Inputs[name] = o.rewriteInput(child)
		}
		if mask, ok := castMask(n.Opcode); ok {
			child := n.Inputs["value"]
			if ir.IsAlways(ir.TypeOf(child), mask) {
				o.seen[in] = child
				return child
			}
			o.seen[in] = n
			return n
		}
		n.Type = retightenedType(n)
		o.seen[in] = n
		return n

	default:
		return in
	}
}

func castMask(op ir.Opcode) (ir.Type, bool) {
	switch op {
	case ir.OpCastNumber:
		return ir.Number, true
	case ir.OpCastNumberOrNaN:
		return ir.NumberOrNaN, true
	case ir.OpCastBoolean:
		return ir.Boolean, true
	case ir.OpCastString:
		return ir.String, true
	case ir.OpCastColor:
		return ir.Color, true
	case ir.OpCastNumberIndex:
		return ir.NumberInt, true
	default:
		return 0, false
	}
}

// retightenedType implements get_input_type(node, state): for the binary
// arithmetic family it reruns the §4.4 tables against the (possibly now
// narrower) child types; everything else keeps its already-declared type,
// never falling back to ANY (§4.4: "must fall back to node.declared_type,
// never to ANY, for opcodes the optimizer does not analyse").
func retightenedType(n *ir.InputReporter) ir.Type {
	switch n.Opcode {
	case ir.OpAdd:
		return ir.AddType(ir.TypeOf(n.Inputs["a"]), ir.TypeOf(n.Inputs["b"]))
	case ir.OpSubtract:
		return ir.SubtractType(ir.TypeOf(n.Inputs["a"]), ir.TypeOf(n.Inputs["b"]))
	case ir.OpMultiply:
		return ir.MultiplyType(ir.TypeOf(n.Inputs["a"]), ir.TypeOf(n.Inputs["b"]))
	case ir.OpDivide:
		return ir.DivideType(ir.TypeOf(n.Inputs["a"]), ir.TypeOf(n.Inputs["b"]))
	default:
		return n.Type
	}
}


