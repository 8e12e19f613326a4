package blocks

import (
	"math"
	"time"

	"scratchcore/internal/codegen"
	"scratchcore/internal/project"
)

func secondsToDuration(secs float64) time.Duration {
	return time.Duration(secs * float64(time.Second))
}

const (
	stageHalfWidth  = 240
	stageHalfHeight = 180
)

func motionReporters(b *Blocks) map[string]reporterFunc {
	return map[string]reporterFunc{
		"motion_xposition": func(b *Blocks, t *project.Target, args map[string]interface{}, fields map[string]string) interface{} {
			return t.X
		},
		"motion_yposition": func(b *Blocks, t *project.Target, args map[string]interface{}, fields map[string]string) interface{} {
			return t.Y
		},
		"motion_direction": func(b *Blocks, t *project.Target, args map[string]interface{}, fields map[string]string) interface{} {
			return t.Direction
		},
	}
}

func motionStacks(b *Blocks) map[string]stackFunc {
	return map[string]stackFunc{
		"motion_movesteps": func(b *Blocks, t *project.Target, args map[string]interface{}, fields map[string]string, d *deadline) codegen.HelperResult {
			steps := b.num(args, "STEPS")
			rad := (90 - t.Direction) * math.Pi / 180
			t.X += steps * math.Cos(rad)
			t.Y += steps * math.Sin(rad)
			return complete()
		},
		"motion_turnright": func(b *Blocks, t *project.Target, args map[string]interface{}, fields map[string]string, d *deadline) codegen.HelperResult {
			t.Direction = normalizeDirection(t.Direction + b.num(args, "DEGREES"))
			return complete()
		},
		"motion_turnleft": func(b *Blocks, t *project.Target, args map[string]interface{}, fields map[string]string, d *deadline) codegen.HelperResult {
			t.Direction = normalizeDirection(t.Direction - b.num(args, "DEGREES"))
			return complete()
		},
		"motion_goto": func(b *Blocks, t *project.Target, args map[string]interface{}, fields map[string]string, d *deadline) codegen.HelperResult {
			switch b.str(args, "TO") {
			case "_mouse_":
				if b.Input != nil && !t.IsStage {
					t.X, t.Y = b.Input.MouseX(), b.Input.MouseY()
				}
			case "_random_":
				if b.Rand != nil {
					t.X = b.Rand.Float64()*2*stageHalfWidth - stageHalfWidth
					t.Y = b.Rand.Float64()*2*stageHalfHeight - stageHalfHeight
				}
			}
			return complete()
		},
		"motion_gotoxy": func(b *Blocks, t *project.Target, args map[string]interface{}, fields map[string]string, d *deadline) codegen.HelperResult {
			t.X, t.Y = b.num(args, "X"), b.num(args, "Y")
			return complete()
		},
		"motion_glideto": func(b *Blocks, t *project.Target, args map[string]interface{}, fields map[string]string, d *deadline) codegen.HelperResult {
			return glide(b, t, b.num(args, "SECS"), t.X, t.Y, t.X, t.Y, d)
		},
		"motion_glidesecstoxy": func(b *Blocks, t *project.Target, args map[string]interface{}, fields map[string]string, d *deadline) codegen.HelperResult {
			return glide(b, t, b.num(args, "SECS"), t.X, t.Y, b.num(args, "X"), b.num(args, "Y"), d)
		},
		"motion_pointindirection": func(b *Blocks, t *project.Target, args map[string]interface{}, fields map[string]string, d *deadline) codegen.HelperResult {
			t.Direction = normalizeDirection(b.num(args, "DIRECTION"))
			return complete()
		},
		"motion_pointtowards": func(b *Blocks, t *project.Target, args map[string]interface{}, fields map[string]string, d *deadline) codegen.HelperResult {
			mx, my, ok := mouseOrTarget(b, b.str(args, "TOWARDS"))
			if ok {
				t.Direction = normalizeDirection(90 - math.Atan2(my-t.Y, mx-t.X)*180/math.Pi)
			}
			return complete()
		},
		"motion_changexby": func(b *Blocks, t *project.Target, args map[string]interface{}, fields map[string]string, d *deadline) codegen.HelperResult {
			t.X += b.num(args, "DX")
			return complete()
		},
		"motion_setx": func(b *Blocks, t *project.Target, args map[string]interface{}, fields map[string]string, d *deadline) codegen.HelperResult {
			t.X = b.num(args, "X")
			return complete()
		},
		"motion_changeyby": func(b *Blocks, t *project.Target, args map[string]interface{}, fields map[string]string, d *deadline) codegen.HelperResult {
			t.Y += b.num(args, "DY")
			return complete()
		},
		"motion_sety": func(b *Blocks, t *project.Target, args map[string]interface{}, fields map[string]string, d *deadline) codegen.HelperResult {
			t.Y = b.num(args, "Y")
			return complete()
		},
		"motion_ifonedgebounce": func(b *Blocks, t *project.Target, args map[string]interface{}, fields map[string]string, d *deadline) codegen.HelperResult {
			if t.X > stageHalfWidth {
				t.X = stageHalfWidth
				t.Direction = normalizeDirection(-t.Direction)
			} else if t.X < -stageHalfWidth {
				t.X = -stageHalfWidth
				t.Direction = normalizeDirection(-t.Direction)
			}
			if t.Y > stageHalfHeight {
				t.Y = stageHalfHeight
				t.Direction = normalizeDirection(180 - t.Direction)
			} else if t.Y < -stageHalfHeight {
				t.Y = -stageHalfHeight
				t.Direction = normalizeDirection(180 - t.Direction)
			}
			return complete()
		},
		"motion_setrotationstyle": func(b *Blocks, t *project.Target, args map[string]interface{}, fields map[string]string, d *deadline) codegen.HelperResult {
			switch fields["STYLE"] {
			case "left-right":
				t.RotationStyle = project.RotationLeftRight
			case "don't rotate":
				t.RotationStyle = project.RotationDontRotate
			default:
				t.RotationStyle = project.RotationAllAround
			}
			return complete()
		},
	}
}

// glide is motion's one genuinely time-bounded helper (§4.7): on first
// invocation it arms a deadline and snapshots start/end position; every
// later poll interpolates linearly by elapsed/total and reports pending
// until the deadline passes, at which point it snaps to the destination.
func glide(b *Blocks, t *project.Target, secs, x0, y0, x1, y1 float64, d *deadline) codegen.HelperResult {
	if secs <= 0 {
		t.X, t.Y = x1, y1
		return complete()
	}
	now := b.Clock()
	if !d.armed {
		d.armed = true
		d.until = now.Add(secondsToDuration(secs))
	}
	if !now.Before(d.until) {
		t.X, t.Y = x1, y1
		return complete()
	}
	remaining := d.until.Sub(now).Seconds()
	frac := 1 - remaining/secs
	t.X = x0 + (x1-x0)*frac
	t.Y = y0 + (y1-y0)*frac
	return codegen.HelperResult{Status: codegen.HelperPending}
}

func normalizeDirection(d float64) float64 {
	d = math.Mod(d+180, 360)
	if d < 0 {
		d += 360
	}
	return d - 180
}

func mouseOrTarget(b *Blocks, option string) (x, y float64, ok bool) {
	if option == "_mouse_" {
		if b.Input == nil {
			return 0, 0, false
		}
		return b.Input.MouseX(), b.Input.MouseY(), true
	}
	return 0, 0, false
}

func complete() codegen.HelperResult { return codegen.HelperResult{Status: codegen.HelperComplete} }


