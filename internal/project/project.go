// Package project implements the in-memory project model (C2): targets,
// variables, lists, costumes, sounds and broadcasts, plus clone lifecycle.
package project

import (
	"strings"
	"sync"

	"github.com/google/uuid"
)

// VariableKind distinguishes a scalar variable, a list, or a broadcast
// message (§3.3).
type VariableKind int

const (
	KindScalar VariableKind = iota
	KindList
	KindBroadcast
)

// Variable is a scalar or list variable owned by a Target.
type Variable struct {
	ID      string
	Name    string
	Kind    VariableKind
	Value   interface{}   // valid when Kind == KindScalar
	List    []interface{} // valid when Kind == KindList
	IsCloud bool
}

// Broadcast is a globally visible named event (§3.3).
type Broadcast struct {
	ID   string
	Name string
}

// Costume and Sound are asset references; decoding is out of scope (§1) —
// the core only needs identity and index bookkeeping.
type Costume struct {
	ID   string
	Name string
}

type Sound struct {
	ID   string
	Name string
}

// RotationStyle mirrors Scratch's sprite rotation-style field.
type RotationStyle int

const (
	RotationAllAround RotationStyle = iota
	RotationLeftRight
	RotationDontRotate
)

// Target is either the Stage or a Sprite (which may itself be a Clone).
type Target struct {
	ID       string
	Name     string
	IsStage  bool
	IsClone  bool
	CloneID  string // stable clone identity, independent of slice position
	Original *Target // the sprite this clone was spawned from, nil otherwise

	mu        sync.RWMutex
	Variables map[string]*Variable
	Lists     map[string]*Variable

	Costumes       []*Costume
	CurrentCostume int
	Sounds         []*Sound

	X, Y          float64
	Direction     float64
	Size          float64
	Volume        float64
	Visible       bool
	RotationStyle RotationStyle
	Draggable     bool
	LayerOrder    int
}

// NewStage creates the singleton Stage target.
func NewStage(id string) *Target {
	return &Target{
		ID: id, Name: "Stage", IsStage: true,
		Variables: map[string]*Variable{}, Lists: map[string]*Variable{},
		Size: 100, Volume: 100, Visible: true,
	}
}

// NewSprite creates an original (non-clone) sprite.
func NewSprite(id, name string) *Target {
	return &Target{
		ID: id, Name: name,
		Variables: map[string]*Variable{}, Lists: map[string]*Variable{},
		Size: 100, Volume: 100, Visible: true, Direction: 90,
	}
}

// Clone spawns a runtime clone of a sprite (§3.3 Ownership/lifecycle): the
// clone gets its own position/costume/fields but shares the originating
// sprite's scalar and list variables *by reference* — scripts running
// against the clone read/write the same Variable objects as the original.
func (t *Target) Clone() *Target {
	if t.IsStage {
		return nil // the stage cannot be cloned
	}
	t.mu.RLock()
	defer t.mu.RUnlock()

	clone := &Target{
		ID:       t.ID,
		Name:     t.Name,
		IsClone:  true,
		CloneID:  uuid.NewString(),
		Original: originalOf(t),

		Variables: t.Variables, // shared by reference, per §3.3
		Lists:     t.Lists,

		CurrentCostume: t.CurrentCostume,
		X:              t.X,
		Y:              t.Y,
		Direction:      t.Direction,
		Size:           t.Size,
		Volume:         t.Volume,
		Visible:        t.Visible,
		RotationStyle:  t.RotationStyle,
		Draggable:      t.Draggable,
		LayerOrder:     t.LayerOrder,
	}
	clone.Costumes = append([]*Costume(nil), t.Costumes...)
	clone.Sounds = append([]*Sound(nil), t.Sounds...)
	return clone
}

func originalOf(t *Target) *Target {
	if t.Original != nil {
		return t.Original
	}
	return t
}

// GetVariable looks a scalar variable up by id.
func (t *Target) GetVariable(id string) (*Variable, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.Variables[id]
	return v, ok
}

// SetVariable writes a scalar variable's value.
func (t *Target) SetVariable(id string, v interface{}) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if existing, ok := t.Variables[id]; ok {
		existing.Value = v
	}
}

// GetList looks a list variable up by id.
func (t *Target) GetList(id string) (*Variable, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.Lists[id]
	return v, ok
}

// Procedure is a custom-block definition, owned by a sprite but callable by
// its clones (§3.3).
type Procedure struct {
	ProcCode         string
	ArgumentIDs      []string
	ArgumentNames    []string
	ArgumentDefaults []string
	Warp             bool
	Body             []string // block ids of the body's top block; resolved by irgen
}

// FindBroadcastByName does a case-insensitive lookup (§4.3 "Broadcasts as
// values ... with name equality via case-insensitive compare").
func FindBroadcastByName(broadcasts map[string]*Broadcast, name string) (*Broadcast, bool) {
	lower := strings.ToLower(name)
	for _, b := range broadcasts {
		if strings.ToLower(b.Name) == lower {
			return b, true
		}
	}
	return nil, false
}

// Project is the whole loaded program: every target, every procedure keyed
// by owner+proccode, and the global broadcast table.
type Project struct {
	Stage      *Target
	Sprites    []*Target // project order
	Broadcasts map[string]*Broadcast
	Procedures map[string]*Procedure // key: target id + "\x00" + proccode
}

// NewProject builds an empty project shell around a stage.
func NewProject(stage *Target) *Project {
	return &Project{
		Stage:      stage,
		Broadcasts: map[string]*Broadcast{},
		Procedures: map[string]*Procedure{},
	}
}

// ProcedureKey builds the Procedures map key for a (target, proccode) pair.
func ProcedureKey(targetID, proccode string) string {
	return targetID + "\x00" + proccode
}

// AllTargets returns stage then sprites, in the stable scheduling order
// described in §4.6. Clones are not included: the scheduler splices them
// into its own live-target list just behind their originator.
func (p *Project) AllTargets() []*Target {
	out := make([]*Target, 0, 1+len(p.Sprites))
	out = append(out, p.Stage)
	out = append(out, p.Sprites...)
	return out
}


