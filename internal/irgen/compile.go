package irgen

import (
	"scratchcore/internal/ir"
	"scratchcore/internal/project"
)

// CompiledTarget is one target's lowered scripts and procedures, plus any
// diagnostics raised while compiling it.
type CompiledTarget struct {
	TargetID    string
	Scripts     []*ir.Script
	Procedures  []*CompiledProcedure
	Diagnostics []Diagnostic
}

// CompiledProject is the full output of IR generation across every target in
// a project, the boundary between this package and the optimizer (C5).
type CompiledProject struct {
	Targets []*CompiledTarget
}

// HasFatal reports whether any target raised a fatal diagnostic.
func (cp *CompiledProject) HasFatal() bool {
	for _, t := range cp.Targets {
		for _, d := range t.Diagnostics {
			if d.Err.Fatal {
				return true
			}
		}
	}
	return false
}

// Compile lowers every raw target into IR, running GenerateAll and
// LiftProcedures per target and collecting diagnostics along the way. A
// caller that finds HasFatal true should not hand the result to the
// optimizer or scheduler (§7: a fatal diagnostic aborts compilation of the
// affected target).
func Compile(proj *project.Project, rawTargets []*RawTarget) *CompiledProject {
	out := &CompiledProject{}
	for _, rt := range rawTargets {
		g := NewGenerator(rt, proj)
		scripts := g.GenerateAll()
		procs := g.LiftProcedures()
		out.Targets = append(out.Targets, &CompiledTarget{
			TargetID:    rt.ID,
			Scripts:     scripts,
			Procedures:  procs,
			Diagnostics: g.Diagnostics(),
		})
	}
	return out
}


