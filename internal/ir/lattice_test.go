package ir

import (
	"math"
	"testing"
)

func TestIsAlways(t *testing.T) {
	if !IsAlways(NumberPosInt, Number) {
		t.Error("POS_INT should always be NUMBER")
	}
	if IsAlways(NumberPosInt|StringNum, Number) {
		t.Error("mixed type should not always be NUMBER")
	}
	if IsAlways(0, Number) {
		t.Error("empty type is never 'always' anything")
	}
}

func TestIsSometimes(t *testing.T) {
	if !IsSometimes(NumberPosInt|StringNum, Number) {
		t.Error("expected sometimes NUMBER")
	}
	if IsSometimes(StringNum, Number) {
		t.Error("did not expect sometimes NUMBER")
	}
}

func TestClassifyNumber(t *testing.T) {
	cases := []struct {
		in   float64
		want Type
	}{
		{0, NumberZero},
		{math.Copysign(0, -1), NumberNegZero},
		{5, NumberPosInt},
		{-5, NumberNegInt},
		{5.5, NumberPosFract},
		{-5.5, NumberNegFract},
		{math.Inf(1), NumberPosInf},
		{math.Inf(-1), NumberNegInf},
		{math.NaN(), NumberNaN},
	}
	for _, c := range cases {
		if got := ClassifyNumber(c.in); got != c.want {
			t.Errorf("ClassifyNumber(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestNegateSign(t *testing.T) {
	if NegateSign(NumberPosInt) != NumberNegInt {
		t.Error("expected POS_INT negated to NEG_INT")
	}
	if NegateSign(NumberZero) != NumberNegZero {
		t.Error("expected ZERO negated to NEG_ZERO")
	}
	if NegateSign(NegateSign(NumberPosFract)) != NumberPosFract {
		t.Error("double negate should be identity")
	}
}

func TestCastEliminatedWhenAlways(t *testing.T) {
	c := NewConstant(5.0)
	casted := CastInput(c, Number)
	if casted != Input(c) {
		t.Error("cast over an already-always-Number constant should be a no-op")
	}
}

func TestCastInsertedWhenNotAlways(t *testing.T) {
	c := NewConstant("hello")
	casted := CastInput(c, Number)
	rep, ok := casted.(*InputReporter)
	if !ok || rep.Opcode != OpCastNumber {
		t.Error("expected a CAST_NUMBER wrapper around a non-numeric string constant")
	}
}


