package irgen

import (
	"scratchcore/internal/ir"
	"scratchcore/internal/project"
	"scratchcore/internal/scratcherr"
)

// Diagnostic is a compile note, fatal or not (§C Supplemented features:
// compile-time diagnostics list), surfaced alongside the CompiledProject.
type Diagnostic struct {
	Err *scratcherr.CompileError
}

// Generator walks one target's block arena and lowers hat-rooted stacks into
// ir.Script values. It never follows raw pointers: every reference is an id
// looked up in Blocks, per §9 "store blocks in an arena ... descend by id".
type Generator struct {
	Target  *RawTarget
	Project *project.Project

	visiting    map[string]bool // cycle guard for the current descent
	diagnostics []Diagnostic
}

// NewGenerator builds a generator bound to one target's raw block arena.
func NewGenerator(target *RawTarget, proj *project.Project) *Generator {
	return &Generator{Target: target, Project: proj, visiting: map[string]bool{}}
}

// Diagnostics returns every note, fatal or not, accumulated so far.
func (g *Generator) Diagnostics() []Diagnostic { return g.diagnostics }

func (g *Generator) warn(kind scratcherr.Kind, blockID, opcode, format string, args ...interface{}) {
	loc := scratcherr.BlockLocation{TargetName: g.Target.Name, BlockID: blockID, Opcode: opcode}
	g.diagnostics = append(g.diagnostics, Diagnostic{Err: scratcherr.New(kind, loc, format, args...)})
}

// fatal records a compile-fatal diagnostic (§7: unknown opcode in a known
// family). HasFatal reports whether any such diagnostic was recorded.
func (g *Generator) fatal(kind scratcherr.Kind, blockID, opcode, format string, args ...interface{}) {
	loc := scratcherr.BlockLocation{TargetName: g.Target.Name, BlockID: blockID, Opcode: opcode}
	g.diagnostics = append(g.diagnostics, Diagnostic{Err: scratcherr.Fatal(kind, loc, format, args...)})
}

// HasFatal reports whether any accumulated diagnostic is fatal.
func (g *Generator) HasFatal() bool {
	for _, d := range g.diagnostics {
		if d.Err.Fatal {
			return true
		}
	}
	return false
}

// GenerateAll lowers every top-level hat block on the target into a Script,
// in BlockOrder (preserving original JSON key order, per §4.6 "within each
// target, scripts are executed in project (JSON) order").
func (g *Generator) GenerateAll() []*ir.Script {
	var scripts []*ir.Script
	for _, id := range g.Target.BlockOrder {
		block, ok := g.Target.Blocks[id]
		if !ok || !block.TopLevel {
			continue
		}
		hatOp, isHat := hatOpcodes[block.Opcode]
		if !isHat {
			continue // non-hat top-level blocks (e.g. orphaned stacks) produce no script
		}
		g.visiting = map[string]bool{}
		body := g.descendSubstack(block.Next)
		scripts = append(scripts, &ir.Script{
			HatOpcode: hatOp,
			HatParams: g.hatParams(block),
			TargetID:  g.Target.ID,
			Body:      body,
		})
	}
	return scripts
}

var hatOpcodes = map[string]ir.Opcode{
	"event_whenflagclicked":     ir.OpHatGreenFlag,
	"event_whenkeypressed":      ir.OpHatKeyPressed,
	"event_whenbroadcastreceived": ir.OpHatBroadcastReceived,
	"event_whenthisspriteclicked": ir.OpHatSpriteClicked,
	"event_whenstageclicked":    ir.OpHatStageClicked,
	"event_whenbackdropswitchesto": ir.OpHatBackdropSwitchesTo,
	"event_whengreaterthan":     ir.OpHatGreaterThan,
	"control_start_as_clone":    ir.OpHatStartAsClone,
}

func (g *Generator) hatParams(block *RawBlock) ir.HatParams {
	var hp ir.HatParams
	switch block.Opcode {
	case "event_whenkeypressed":
		hp.Key = g.fieldName(block, "KEY_OPTION")
	case "event_whenbroadcastreceived":
		hp.Broadcast = g.fieldName(block, "BROADCAST_OPTION")
	case "event_whenbackdropswitchesto":
		hp.Backdrop = g.fieldName(block, "BACKDROP")
	case "event_whengreaterthan":
		hp.Comparator = g.fieldName(block, "WHENGREATERTHANMENU")
		hp.Threshold = toReporter(g.descendInput(block, "VALUE"))
	}
	return hp
}

func toReporter(in ir.Input) *ir.InputReporter {
	if r, ok := in.(*ir.InputReporter); ok {
		return r
	}
	if c, ok := in.(*ir.Constant); ok {
		return ir.NewInputReporter(ir.OpConstant, c.Type, map[string]ir.Input{"": c})
	}
	return nil
}

// descendSubstack lowers a linear chain of stack blocks starting at blockID,
// following Next links until empty, a visited id (malformed cycle, §9), or a
// missing id (§7 parse-shape error: skip and continue).
func (g *Generator) descendSubstack(blockID string) []*ir.StackBlock {
	var out []*ir.StackBlock
	for blockID != "" {
		if g.visiting[blockID] {
			g.warn(scratcherr.ParseShape, blockID, "", "cyclic next/parent reference; treating as end of substack")
			break
		}
		block, ok := g.Target.Blocks[blockID]
		if !ok {
			g.warn(scratcherr.ParseShape, blockID, "", "missing block id reference")
			break
		}
		g.visiting[blockID] = true
		node := g.descendStackBlock(block)
		if node != nil {
			out = append(out, node)
		}
		blockID = block.Next
	}
	return out
}

// descendInput resolves a named input slot to an Input, applying constant
// folding and shadow-literal handling. Missing inputs degrade to a Constant
// zero/empty-string per Scratch's own default-shadow behavior.
func (g *Generator) descendInput(block *RawBlock, name string) ir.Input {
	raw, ok := block.Inputs[name]
	if !ok {
		return ir.NewConstant(0.0)
	}
	if raw.BlockID == "" {
		if raw.HasLit {
			return ir.NewConstant(raw.Literal)
		}
		return ir.NewConstant(0.0)
	}
	child, ok := g.Target.Blocks[raw.BlockID]
	if !ok {
		g.warn(scratcherr.ParseShape, raw.BlockID, "", "input %q references missing block", name)
		return ir.NewConstant(0.0)
	}
	if g.visiting[raw.BlockID] {
		g.warn(scratcherr.ParseShape, raw.BlockID, child.Opcode, "cyclic input reference on %q", name)
		return ir.NewConstant(0.0)
	}
	g.visiting[raw.BlockID] = true
	result := g.descendReporter(child)
	delete(g.visiting, raw.BlockID)
	return result
}

// descendField resolves a dropdown field to its name, accepting both the
// "[name, id]" and "{id, name}" shapes (§6) — both normalize to RawField in
// the loader, so this just reads Name.
func (g *Generator) descendField(block *RawBlock, name string) string {
	return g.fieldName(block, name)
}

func (g *Generator) fieldName(block *RawBlock, name string) string {
	if f, ok := block.Fields[name]; ok {
		return f.Name
	}
	return ""
}

// descendVariable returns the id and name a VARIABLE/LIST field carries, as
// written; it does not look the variable up on the target or the stage.
func (g *Generator) descendVariable(block *RawBlock, field string, kind project.VariableKind) (id, name string) {
	f, ok := block.Fields[field]
	if !ok {
		return "", ""
	}
	return f.ID, f.Name
}


