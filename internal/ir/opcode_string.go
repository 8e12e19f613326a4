package ir

import "fmt"

var opcodeNames = [...]string{
	OpUnknown: "unknown",

	OpRepeat:           "repeat",
	OpForever:          "forever",
	OpIf:               "if",
	OpIfElse:           "if_else",
	OpRepeatUntil:      "repeat_until",
	OpWhile:            "while",
	OpWait:             "wait",
	OpWaitUntil:        "wait_until",
	OpStop:             "stop",
	OpCreateCloneOf:    "create_clone_of",
	OpDeleteThisClone:  "delete_this_clone",
	OpAllAtOnce:        "all_at_once",
	OpForEach:          "for_each",

	OpHatGreenFlag:          "hat_green_flag",
	OpHatKeyPressed:         "hat_key_pressed",
	OpHatBroadcastReceived:  "hat_broadcast_received",
	OpHatSpriteClicked:      "hat_sprite_clicked",
	OpHatStageClicked:       "hat_stage_clicked",
	OpHatBackdropSwitchesTo: "hat_backdrop_switches_to",
	OpHatGreaterThan:        "hat_greater_than",
	OpHatStartAsClone:       "hat_start_as_clone",
	OpBroadcast:             "broadcast",
	OpBroadcastAndWait:      "broadcast_and_wait",

	OpAdd:          "add",
	OpSubtract:     "subtract",
	OpMultiply:     "multiply",
	OpDivide:       "divide",
	OpMod:          "mod",
	OpRound:        "round",
	OpMathOp:       "mathop",
	OpLess:         "less",
	OpGreater:      "greater",
	OpEquals:       "equals",
	OpAnd:          "and",
	OpOr:           "or",
	OpNot:          "not",
	OpJoin:         "join",
	OpLetterOf:     "letter_of",
	OpStringLength: "string_length",
	OpContains:     "contains",
	OpRandom:       "random",

	OpVarGet:         "var_get",
	OpVarSet:         "var_set",
	OpVarChange:      "var_change",
	OpListGet:        "list_get",
	OpListSet:        "list_set",
	OpListAdd:        "list_add",
	OpListDelete:     "list_delete",
	OpListDeleteAll:  "list_delete_all",
	OpListInsert:     "list_insert",
	OpListLength:     "list_length",
	OpListContains:   "list_contains",
	OpListContents:   "list_contents",
	OpShowVariable:   "show_variable",
	OpHideVariable:   "hide_variable",

	OpProcedureCall:                 "procedure_call",
	OpProcedureDefinition:           "procedure_definition",
	OpProcedureReturn:               "procedure_return",
	OpArgumentReporterStringNumber:  "argument_reporter_string_number",
	OpArgumentReporterBoolean:       "argument_reporter_boolean",

	OpCastNumber:      "cast_number",
	OpCastNumberOrNaN: "cast_number_or_nan",
	OpCastBoolean:     "cast_boolean",
	OpCastString:      "cast_string",
	OpCastColor:       "cast_color",
	OpCastNumberIndex: "cast_number_index",

	OpConstant:   "constant",
	OpHelperCall: "helper_call",
}

// String names an opcode for diagnostics and dump output; unrecognized
// values (shouldn't happen for a closed enum, but defensive against a bad
// cast) print their raw integer.
func (o Opcode) String() string {
	if int(o) >= 0 && int(o) < len(opcodeNames) && opcodeNames[o] != "" {
		return opcodeNames[o]
	}
	return fmt.Sprintf("opcode(%d)", int(o))
}


