package blocks

import (
	"math"
	"strconv"

	"scratchcore/internal/codegen"
	"scratchcore/internal/project"
)

func looksReporters(b *Blocks) map[string]reporterFunc {
	return map[string]reporterFunc{
		"looks_size": func(b *Blocks, t *project.Target, args map[string]interface{}, fields map[string]string) interface{} {
			return t.Size
		},
		"looks_costumenumbername": func(b *Blocks, t *project.Target, args map[string]interface{}, fields map[string]string) interface{} {
			return costumeNumberName(t.Costumes, t.CurrentCostume, fields["NUMBER_NAME"])
		},
		"looks_backdropnumbername": func(b *Blocks, t *project.Target, args map[string]interface{}, fields map[string]string) interface{} {
			return costumeNumberName(t.Costumes, t.CurrentCostume, fields["NUMBER_NAME"])
		},
	}
}

func costumeNumberName(costumes []*project.Costume, idx int, which string) interface{} {
	if which == "name" {
		if idx >= 0 && idx < len(costumes) {
			return costumes[idx].Name
		}
		return ""
	}
	return float64(idx + 1)
}

func looksStacks(b *Blocks) map[string]stackFunc {
	return map[string]stackFunc{
		"looks_sayforsecs": func(b *Blocks, t *project.Target, args map[string]interface{}, fields map[string]string, d *deadline) codegen.HelperResult {
			return timedNoOp(b, b.num(args, "SECS"), d)
		},
		"looks_say": func(b *Blocks, t *project.Target, args map[string]interface{}, fields map[string]string, d *deadline) codegen.HelperResult {
			return complete()
		},
		"looks_thinkforsecs": func(b *Blocks, t *project.Target, args map[string]interface{}, fields map[string]string, d *deadline) codegen.HelperResult {
			return timedNoOp(b, b.num(args, "SECS"), d)
		},
		"looks_think": func(b *Blocks, t *project.Target, args map[string]interface{}, fields map[string]string, d *deadline) codegen.HelperResult {
			return complete()
		},
		"looks_switchcostumeto": func(b *Blocks, t *project.Target, args map[string]interface{}, fields map[string]string, d *deadline) codegen.HelperResult {
			switchCostume(t, b.str(args, "COSTUME"))
			return complete()
		},
		"looks_nextcostume": func(b *Blocks, t *project.Target, args map[string]interface{}, fields map[string]string, d *deadline) codegen.HelperResult {
			if len(t.Costumes) > 0 {
				t.CurrentCostume = (t.CurrentCostume + 1) % len(t.Costumes)
			}
			return complete()
		},
		"looks_switchbackdropto": func(b *Blocks, t *project.Target, args map[string]interface{}, fields map[string]string, d *deadline) codegen.HelperResult {
			switchCostume(t, b.str(args, "BACKDROP"))
			return complete()
		},
		"looks_switchbackdropandwait": func(b *Blocks, t *project.Target, args map[string]interface{}, fields map[string]string, d *deadline) codegen.HelperResult {
			switchCostume(t, b.str(args, "BACKDROP"))
			return complete()
		},
		"looks_nextbackdrop": func(b *Blocks, t *project.Target, args map[string]interface{}, fields map[string]string, d *deadline) codegen.HelperResult {
			if len(t.Costumes) > 0 {
				t.CurrentCostume = (t.CurrentCostume + 1) % len(t.Costumes)
			}
			return complete()
		},
		"looks_changesizeby": func(b *Blocks, t *project.Target, args map[string]interface{}, fields map[string]string, d *deadline) codegen.HelperResult {
			t.Size += b.num(args, "CHANGE")
			return complete()
		},
		"looks_setsizeto": func(b *Blocks, t *project.Target, args map[string]interface{}, fields map[string]string, d *deadline) codegen.HelperResult {
			t.Size = b.num(args, "SIZE")
			return complete()
		},
		"looks_changeeffectby": func(b *Blocks, t *project.Target, args map[string]interface{}, fields map[string]string, d *deadline) codegen.HelperResult {
			return complete() // no bitmap renderer to apply graphic effects to (§1 out of scope)
		},
		"looks_seteffectto": func(b *Blocks, t *project.Target, args map[string]interface{}, fields map[string]string, d *deadline) codegen.HelperResult {
			return complete()
		},
		"looks_cleargraphiceffects": func(b *Blocks, t *project.Target, args map[string]interface{}, fields map[string]string, d *deadline) codegen.HelperResult {
			return complete()
		},
		"looks_show": func(b *Blocks, t *project.Target, args map[string]interface{}, fields map[string]string, d *deadline) codegen.HelperResult {
			t.Visible = true
			return complete()
		},
		"looks_hide": func(b *Blocks, t *project.Target, args map[string]interface{}, fields map[string]string, d *deadline) codegen.HelperResult {
			t.Visible = false
			return complete()
		},
		"looks_gotofrontback": func(b *Blocks, t *project.Target, args map[string]interface{}, fields map[string]string, d *deadline) codegen.HelperResult {
			if fields["FRONT_BACK"] == "front" {
				t.LayerOrder = math.MaxInt32
			} else {
				t.LayerOrder = 0
			}
			return complete()
		},
		"looks_goforwardbackwardlayers": func(b *Blocks, t *project.Target, args map[string]interface{}, fields map[string]string, d *deadline) codegen.HelperResult {
			n := int(b.num(args, "NUM"))
			if fields["FORWARD_BACKWARD"] == "backward" {
				n = -n
			}
			t.LayerOrder += n
			return complete()
		},
	}
}

// timedNoOp backs say/think-for-secs, which have no rendered bubble to
// display but must still suspend the calling script for the given
// duration (§4.7's time-bounded-effect contract).
func timedNoOp(b *Blocks, secs float64, d *deadline) codegen.HelperResult {
	if secs <= 0 {
		return complete()
	}
	now := b.Clock()
	if !d.armed {
		d.armed = true
		d.until = now.Add(secondsToDuration(secs))
	}
	if !now.Before(d.until) {
		return complete()
	}
	return codegen.HelperResult{Status: codegen.HelperPending}
}

func switchCostume(t *project.Target, name string) {
	for i, c := range t.Costumes {
		if c.Name == name {
			t.CurrentCostume = i
			return
		}
	}
	if n, err := strconv.Atoi(name); err == nil {
		if idx := n - 1; idx >= 0 && idx < len(t.Costumes) {
			t.CurrentCostume = idx
		}
	}
}


