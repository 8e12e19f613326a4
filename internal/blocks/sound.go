package blocks

import (
	"scratchcore/internal/codegen"
	"scratchcore/internal/project"
)

func soundReporters(b *Blocks) map[string]reporterFunc {
	return map[string]reporterFunc{
		"sound_volume": func(b *Blocks, t *project.Target, args map[string]interface{}, fields map[string]string) interface{} {
			return t.Volume
		},
	}
}

// soundStacks implement volume/effect bookkeeping exactly; playback itself
// has no audio engine to decode against (§1 out of scope), so play/
// playuntildone complete immediately rather than suspend for a real clip
// duration.
func soundStacks(b *Blocks) map[string]stackFunc {
	return map[string]stackFunc{
		"sound_play": func(b *Blocks, t *project.Target, args map[string]interface{}, fields map[string]string, d *deadline) codegen.HelperResult {
			return complete()
		},
		"sound_playuntildone": func(b *Blocks, t *project.Target, args map[string]interface{}, fields map[string]string, d *deadline) codegen.HelperResult {
			return complete()
		},
		"sound_stopallsounds": func(b *Blocks, t *project.Target, args map[string]interface{}, fields map[string]string, d *deadline) codegen.HelperResult {
			return complete()
		},
		"sound_changeeffectby": func(b *Blocks, t *project.Target, args map[string]interface{}, fields map[string]string, d *deadline) codegen.HelperResult {
			return complete()
		},
		"sound_seteffectto": func(b *Blocks, t *project.Target, args map[string]interface{}, fields map[string]string, d *deadline) codegen.HelperResult {
			return complete()
		},
		"sound_cleareffects": func(b *Blocks, t *project.Target, args map[string]interface{}, fields map[string]string, d *deadline) codegen.HelperResult {
			return complete()
		},
		"sound_changevolumeby": func(b *Blocks, t *project.Target, args map[string]interface{}, fields map[string]string, d *deadline) codegen.HelperResult {
			t.Volume = clampVolume(t.Volume + b.num(args, "VOLUME"))
			return complete()
		},
		"sound_setvolumeto": func(b *Blocks, t *project.Target, args map[string]interface{}, fields map[string]string, d *deadline) codegen.HelperResult {
			t.Volume = clampVolume(b.num(args, "VOLUME"))
			return complete()
		},
	}
}

func clampVolume(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}


