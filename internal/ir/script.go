package ir

// HatParams carries the static parameters of a hat block (the key pressed,
// the broadcast name, the backdrop name, ...), resolved once at generation
// time so the scheduler can index scripts by event kind + params (§4.3
// Events: "register thread entry points with the scheduler, keyed by event
// kind and parameters").
type HatParams struct {
	Key        string // whenkeypressed
	Broadcast  string // whenbroadcastreceived / whengreaterthan target
	Backdrop   string // whenbackdropswitchesto
	Comparator string // whengreaterthan ("loudness"/"timer")
	Threshold  *InputReporter
}

// Script is a compiled-from-IR hat-rooted unit, per §3.3.
type Script struct {
	HatOpcode Opcode
	HatParams HatParams
	TargetID  string
	Body      []*StackBlock
}


