package irgen

// recognizedHelperReporters are known-family reporter opcodes with no
// bespoke IR shape: they lower straight to a generic OpHelperCall node that
// the code generator binds against the block-helper table (C8). Anything
// under a known family NOT in this list (and with no bespoke case in
// descendReporter) is a genuine unknown opcode — fatal per §7.
var recognizedHelperReporters = map[string]bool{
	"motion_xposition": true, "motion_yposition": true, "motion_direction": true,

	"looks_size": true, "looks_costumenumbername": true, "looks_backdropnumbername": true,

	"sound_volume": true,

	"sensing_touchingobject": true, "sensing_touchingcolor": true,
	"sensing_coloristouchingcolor": true, "sensing_distanceto": true,
	"sensing_answer": true, "sensing_keypressed": true, "sensing_mousedown": true,
	"sensing_mousex": true, "sensing_mousey": true, "sensing_loudness": true,
	"sensing_timer": true, "sensing_of": true, "sensing_current": true,
	"sensing_dayssince2000": true, "sensing_username": true,
}

// recognizedHelperStacks are known-family stack-block opcodes with no
// bespoke control-flow shape: they lower to a generic OpHelperCall stack
// block dispatched through the block-helper table (C8).
var recognizedHelperStacks = map[string]bool{
	"motion_movesteps": true, "motion_turnright": true, "motion_turnleft": true,
	"motion_goto": true, "motion_gotoxy": true, "motion_glideto": true,
	"motion_glidesecstoxy": true, "motion_pointindirection": true,
	"motion_pointtowards": true, "motion_changexby": true, "motion_setx": true,
	"motion_changeyby": true, "motion_sety": true, "motion_ifonedgebounce": true,
	"motion_setrotationstyle": true,

	"looks_sayforsecs": true, "looks_say": true, "looks_thinkforsecs": true,
	"looks_think": true, "looks_switchcostumeto": true, "looks_nextcostume": true,
	"looks_switchbackdropto": true, "looks_switchbackdropandwait": true,
	"looks_nextbackdrop": true, "looks_changesizeby": true, "looks_setsizeto": true,
	"looks_changeeffectby": true, "looks_seteffectto": true, "looks_cleargraphiceffects": true,
	"looks_show": true, "looks_hide": true, "looks_gotofrontback": true,
	"looks_goforwardbackwardlayers": true,

	"sound_playuntildone": true, "sound_play": true, "sound_stopallsounds": true,
	"sound_changeeffectby": true, "sound_seteffectto": true, "sound_cleareffects": true,
	"sound_changevolumeby": true, "sound_setvolumeto": true,

	"sensing_askandwait": true, "sensing_setdragmode": true, "sensing_resettimer": true,
}


