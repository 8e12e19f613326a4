package project

import "testing"

func TestCloneSharesVariablesByReference(t *testing.T) {
	sprite := NewSprite("s1", "Cat")
	sprite.Variables["v1"] = &Variable{ID: "v1", Name: "score", Kind: KindScalar, Value: 0.0}

	clone := sprite.Clone()
	if clone == nil {
		t.Fatal("expected a clone")
	}
	if !clone.IsClone {
		t.Fatal("expected IsClone true")
	}
	if clone.CloneID == "" {
		t.Fatal("expected a stable clone id")
	}

	clone.SetVariable("v1", 5.0)
	v, ok := sprite.GetVariable("v1")
	if !ok || v.Value != 5.0 {
		t.Fatal("expected clone writes to be visible on the original (shared by reference)")
	}
}

func TestStageCannotBeCloned(t *testing.T) {
	stage := NewStage("stage")
	if stage.Clone() != nil {
		t.Fatal("expected nil clone of the stage")
	}
}

func TestFindBroadcastByNameCaseInsensitive(t *testing.T) {
	broadcasts := map[string]*Broadcast{"b1": {ID: "b1", Name: "Go"}}
	b, ok := FindBroadcastByName(broadcasts, "go")
	if !ok || b.ID != "b1" {
		t.Fatal("expected case-insensitive match")
	}
}

func TestAllTargetsOrder(t *testing.T) {
	stage := NewStage("stage")
	s1 := NewSprite("s1", "A")
	s2 := NewSprite("s2", "B")
	p := NewProject(stage)
	p.Sprites = []*Target{s1, s2}
	all := p.AllTargets()
	if len(all) != 3 || all[0] != stage || all[1] != s1 || all[2] != s2 {
		t.Fatal("expected stage first, then sprites in project order")
	}
}


