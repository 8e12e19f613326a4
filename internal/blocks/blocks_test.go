package blocks

import (
	"math/rand"
	"testing"
	"time"

	"scratchcore/internal/codegen"
	"scratchcore/internal/project"
)

func newTestTarget() *project.Target {
	t := project.NewSprite("s1", "Sprite1")
	return t
}

func TestMotionSetXY(t *testing.T) {
	b := New(nil, nil, rand.New(rand.NewSource(1)))
	target := newTestTarget()
	b.Stack("motion_gotoxy", target, map[string]interface{}{"X": 10.0, "Y": -20.0}, nil, "h1")
	if target.X != 10 || target.Y != -20 {
		t.Fatalf("position = (%v, %v), want (10, -20)", target.X, target.Y)
	}
}

func TestMotionMoveStepsFollowsDirection(t *testing.T) {
	b := New(nil, nil, rand.New(rand.NewSource(1)))
	target := newTestTarget()
	target.Direction = 90 // facing right
	b.Stack("motion_movesteps", target, map[string]interface{}{"STEPS": 10.0}, nil, "h1")
	if target.X < 9.99 || target.X > 10.01 || target.Y < -0.01 || target.Y > 0.01 {
		t.Fatalf("position = (%v, %v), want approx (10, 0)", target.X, target.Y)
	}
}

func TestGlideToInterpolatesThenCompletes(t *testing.T) {
	now := time.Unix(0, 0)
	b := New(nil, nil, rand.New(rand.NewSource(1)))
	b.Clock = func() time.Time { return now }
	target := newTestTarget()
	target.X, target.Y = 0, 0

	res := b.Stack("motion_glidesecstoxy", target, map[string]interface{}{"SECS": 1.0, "X": 100.0, "Y": 0.0}, nil, "glide1")
	if res.Status != codegen.HelperPending {
		t.Fatalf("first poll status = %v, want HelperPending", res.Status)
	}
	now = now.Add(2 * time.Second)
	res = b.Stack("motion_glidesecstoxy", target, map[string]interface{}{"SECS": 1.0, "X": 100.0, "Y": 0.0}, nil, "glide1")
	if res.Status != codegen.HelperComplete {
		t.Fatalf("second poll status = %v, want HelperComplete", res.Status)
	}
	if target.X != 100 {
		t.Fatalf("X = %v, want 100 after deadline", target.X)
	}
}

func TestSayForSecsSuspendsForDuration(t *testing.T) {
	now := time.Unix(0, 0)
	b := New(nil, nil, nil)
	b.Clock = func() time.Time { return now }
	target := newTestTarget()

	res := b.Stack("looks_sayforsecs", target, map[string]interface{}{"MESSAGE": "hi", "SECS": 2.0}, nil, "say1")
	if res.Status != codegen.HelperPending {
		t.Fatalf("status = %v, want HelperPending", res.Status)
	}
	now = now.Add(3 * time.Second)
	res = b.Stack("looks_sayforsecs", target, map[string]interface{}{"MESSAGE": "hi", "SECS": 2.0}, nil, "say1")
	if res.Status != codegen.HelperComplete {
		t.Fatalf("status = %v, want HelperComplete", res.Status)
	}
}

func TestTouchingEdge(t *testing.T) {
	b := New(nil, nil, nil)
	target := newTestTarget()
	target.X = 500
	got := b.Reporter("sensing_touchingobject", target, map[string]interface{}{"TOUCHINGOBJECTMENU": "_edge_"}, nil)
	if got != true {
		t.Fatalf("touching edge = %v, want true", got)
	}
}

func TestSensingOfReadsPosition(t *testing.T) {
	b := New(nil, nil, nil)
	target := newTestTarget()
	target.X = 42
	got := b.Reporter("sensing_of", target, nil, map[string]string{"PROPERTY": "x position"})
	if got != 42.0 {
		t.Fatalf("sensing_of x position = %v, want 42", got)
	}
}

func TestAskAndWaitUsesAnswerer(t *testing.T) {
	b := New(nil, answererFunc(func(t *project.Target, q string) string { return "42" }), nil)
	target := newTestTarget()
	b.Stack("sensing_askandwait", target, map[string]interface{}{"QUESTION": "age?"}, nil, "ask1")
	if got := b.Reporter("sensing_answer", target, nil, nil); got != "42" {
		t.Fatalf("answer = %v, want 42", got)
	}
}

type answererFunc func(t *project.Target, q string) string

func (f answererFunc) Ask(t *project.Target, q string) string { return f(t, q) }

func TestVolumeClamped(t *testing.T) {
	b := New(nil, nil, nil)
	target := newTestTarget()
	b.Stack("sound_setvolumeto", target, map[string]interface{}{"VOLUME": 150.0}, nil, "v1")
	if target.Volume != 100 {
		t.Fatalf("volume = %v, want clamped to 100", target.Volume)
	}
}


