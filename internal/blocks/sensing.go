package blocks

import (
	"math"
	"time"

	"scratchcore/internal/codegen"
	"scratchcore/internal/project"
)

func sensingReporters(b *Blocks) map[string]reporterFunc {
	return map[string]reporterFunc{
		// No bitmap renderer exists to test collision against (§1 out of
		// scope); "_edge_" and geometric distance are real computation,
		// everything else degrades to false rather than guessing.
		"sensing_touchingobject": func(b *Blocks, t *project.Target, args map[string]interface{}, fields map[string]string) interface{} {
			switch b.str(args, "TOUCHINGOBJECTMENU") {
			case "_edge_":
				return touchingEdge(t)
			default:
				return false
			}
		},
		"sensing_touchingcolor":       func(b *Blocks, t *project.Target, args map[string]interface{}, fields map[string]string) interface{} { return false },
		"sensing_coloristouchingcolor": func(b *Blocks, t *project.Target, args map[string]interface{}, fields map[string]string) interface{} { return false },
		"sensing_distanceto": func(b *Blocks, t *project.Target, args map[string]interface{}, fields map[string]string) interface{} {
			mx, my, ok := mouseOrTarget(b, b.str(args, "DISTANCETOMENU"))
			if !ok {
				return 10000.0
			}
			return math.Hypot(mx-t.X, my-t.Y)
		},
		"sensing_answer": func(b *Blocks, t *project.Target, args map[string]interface{}, fields map[string]string) interface{} {
			return b.answer
		},
		"sensing_keypressed": func(b *Blocks, t *project.Target, args map[string]interface{}, fields map[string]string) interface{} {
			if b.Input == nil {
				return false
			}
			return b.Input.KeyPressed(b.str(args, "KEY_OPTION"))
		},
		"sensing_mousedown": func(b *Blocks, t *project.Target, args map[string]interface{}, fields map[string]string) interface{} {
			if b.Input == nil {
				return false
			}
			return b.Input.MouseDown()
		},
		"sensing_mousex": func(b *Blocks, t *project.Target, args map[string]interface{}, fields map[string]string) interface{} {
			if b.Input == nil {
				return 0.0
			}
			return b.Input.MouseX()
		},
		"sensing_mousey": func(b *Blocks, t *project.Target, args map[string]interface{}, fields map[string]string) interface{} {
			if b.Input == nil {
				return 0.0
			}
			return b.Input.MouseY()
		},
		"sensing_loudness": func(b *Blocks, t *project.Target, args map[string]interface{}, fields map[string]string) interface{} {
			return -1.0 // no microphone collaborator wired (§1 out of scope: audio)
		},
		"sensing_timer": func(b *Blocks, t *project.Target, args map[string]interface{}, fields map[string]string) interface{} {
			return b.Clock().Sub(b.timerStart).Seconds()
		},
		"sensing_of": func(b *Blocks, t *project.Target, args map[string]interface{}, fields map[string]string) interface{} {
			return propertyOf(t, fields["PROPERTY"])
		},
		"sensing_current": func(b *Blocks, t *project.Target, args map[string]interface{}, fields map[string]string) interface{} {
			now := b.Clock()
			switch fields["CURRENTMENU"] {
			case "YEAR":
				return float64(now.Year())
			case "MONTH":
				return float64(now.Month())
			case "DATE":
				return float64(now.Day())
			case "DAYOFWEEK":
				return float64(now.Weekday()) + 1
			case "HOUR":
				return float64(now.Hour())
			case "MINUTE":
				return float64(now.Minute())
			case "SECOND":
				return float64(now.Second())
			default:
				return 0.0
			}
		},
		"sensing_dayssince2000": func(b *Blocks, t *project.Target, args map[string]interface{}, fields map[string]string) interface{} {
			epoch := time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)
			return b.Clock().Sub(epoch).Hours() / 24
		},
		"sensing_username": func(b *Blocks, t *project.Target, args map[string]interface{}, fields map[string]string) interface{} {
			return "" // no account system (§1 out of scope)
		},
	}
}

func sensingStacks(b *Blocks) map[string]stackFunc {
	return map[string]stackFunc{
		"sensing_askandwait": func(b *Blocks, t *project.Target, args map[string]interface{}, fields map[string]string, d *deadline) codegen.HelperResult {
			if b.Answerer != nil {
				b.answer = b.Answerer.Ask(t, b.str(args, "QUESTION"))
			} else {
				b.answer = ""
			}
			return complete()
		},
		"sensing_setdragmode": func(b *Blocks, t *project.Target, args map[string]interface{}, fields map[string]string, d *deadline) codegen.HelperResult {
			t.Draggable = fields["DRAG_MODE"] == "draggable"
			return complete()
		},
		"sensing_resettimer": func(b *Blocks, t *project.Target, args map[string]interface{}, fields map[string]string, d *deadline) codegen.HelperResult {
			b.timerStart = b.Clock()
			return complete()
		},
	}
}

func touchingEdge(t *project.Target) bool {
	return t.X <= -stageHalfWidth || t.X >= stageHalfWidth || t.Y <= -stageHalfHeight || t.Y >= stageHalfHeight
}

func propertyOf(t *project.Target, prop string) interface{} {
	switch prop {
	case "x position":
		return t.X
	case "y position":
		return t.Y
	case "direction":
		return t.Direction
	case "costume #":
		return float64(t.CurrentCostume + 1)
	case "size":
		return t.Size
	case "volume":
		return t.Volume
	default:
		if v, ok := t.GetVariable(prop); ok {
			return v.Value
		}
		return 0.0
	}
}


