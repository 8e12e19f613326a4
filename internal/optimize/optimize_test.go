package optimize

import (
	"testing"

	"scratchcore/internal/ir"
)

func TestCastEliminatedWhenChildAlwaysInMask(t *testing.T) {
	lit := ir.NewConstant(5.0) // NumberPosInt, always Number
	cast := &ir.InputReporter{Opcode: ir.OpCastNumber, Type: ir.Number, Inputs: map[string]ir.Input{"value": lit}}
	block := ir.NewStackBlock(ir.OpWait, map[string]ir.Input{"secs": cast}, true, "b1")

	New().Scripts([]*ir.Script{{Body: []*ir.StackBlock{block}}})

	if block.Inputs["secs"] != ir.Input(lit) {
		t.Fatalf("expected cast collapsed to the literal, got %#v", block.Inputs["secs"])
	}
}

func TestCastKeptWhenChildNotAlwaysInMask(t *testing.T) {
	helper := &ir.InputReporter{Opcode: ir.OpHelperCall, Type: ir.Any}
	cast := &ir.InputReporter{Opcode: ir.OpCastNumber, Type: ir.Number, Inputs: map[string]ir.Input{"value": helper}}
	block := ir.NewStackBlock(ir.OpWait, map[string]ir.Input{"secs": cast}, true, "b1")

	New().Scripts([]*ir.Script{{Body: []*ir.StackBlock{block}}})

	if block.Inputs["secs"] != ir.Input(cast) {
		t.Fatalf("expected cast kept since helper call is not always Number, got %#v", block.Inputs["secs"])
	}
}

func TestRetightenAddTypeFromNarrowerChildren(t *testing.T) {
	a := ir.NewConstant(1.0) // NumberPosInt
	helper := &ir.InputReporter{Opcode: ir.OpHelperCall, Type: ir.NumberPos}
	add := &ir.InputReporter{Opcode: ir.OpAdd, Type: ir.NumberOrNaN, Inputs: map[string]ir.Input{"a": a, "b": helper}}
	block := ir.NewStackBlock(ir.OpWait, map[string]ir.Input{"secs": add}, true, "b1")

	New().Scripts([]*ir.Script{{Body: []*ir.StackBlock{block}}})

	want := ir.AddType(ir.NumberPosInt, ir.NumberPos)
	if add.Type != want {
		t.Fatalf("expected retightened add type %v, got %v", want, add.Type)
	}
}

func TestUnanalyzedOpcodeKeepsDeclaredType(t *testing.T) {
	helper := &ir.InputReporter{Opcode: ir.OpMathOp, Type: ir.NumberOrNaN, Inputs: map[string]ir.Input{"value": ir.NewConstant(2.0)}}
	block := ir.NewStackBlock(ir.OpWait, map[string]ir.Input{"secs": helper}, true, "b1")

	New().Scripts([]*ir.Script{{Body: []*ir.StackBlock{block}}})

	if helper.Type != ir.NumberOrNaN {
		t.Fatalf("expected declared type preserved for an unanalysed opcode, got %v", helper.Type)
	}
}

func TestSharedSubtreeOptimizedOnce(t *testing.T) {
	shared := &ir.InputReporter{Opcode: ir.OpCastNumber, Type: ir.Number, Inputs: map[string]ir.Input{"value": ir.NewConstant(3.0)}}
	b1 := ir.NewStackBlock(ir.OpWait, map[string]ir.Input{"secs": shared}, true, "b1")
	b2 := ir.NewStackBlock(ir.OpWaitUntil, map[string]ir.Input{"cond": shared}, true, "b2")

	New().Scripts([]*ir.Script{{Body: []*ir.StackBlock{b1, b2}}})

	if b1.Inputs["secs"] != b2.Inputs["cond"] {
		t.Fatalf("expected both references to the shared cast to collapse to the same node")
	}
}

func TestNestedSubstackIsOptimized(t *testing.T) {
	cast := &ir.InputReporter{Opcode: ir.OpCastBoolean, Type: ir.Boolean, Inputs: map[string]ir.Input{"value": ir.NewConstant(true)}}
	inner := ir.NewStackBlock(ir.OpWaitUntil, map[string]ir.Input{"cond": cast}, true, "inner")
	outer := ir.NewStackBlock(ir.OpRepeat, map[string]ir.Input{"times": ir.NewConstant(3.0)}, true, "outer")
	outer.Substacks["body"] = []*ir.StackBlock{inner}

	New().Scripts([]*ir.Script{{Body: []*ir.StackBlock{outer}}})

	if _, ok := inner.Inputs["cond"].(*ir.Constant); !ok {
		t.Fatalf("expected the nested cast collapsed to the boolean constant, got %#v", inner.Inputs["cond"])
	}
}


