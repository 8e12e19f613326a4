package main

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"scratchcore/internal/irgen"
	"scratchcore/internal/project"
)

// wireProject is the subset of sb3's project.json this loader understands:
// the block graph, variable/list/broadcast tables, and target identity.
// Costume/sound asset bytes are out of scope (§1) — only their id/name pairs
// survive into project.Costume/project.Sound.
type wireProject struct {
	Targets []wireTarget `json:"targets"`
}

type wireTarget struct {
	Name       string                     `json:"name"`
	IsStage    bool                       `json:"isStage"`
	Variables  map[string][]json.RawMessage `json:"variables"`
	Lists      map[string][]json.RawMessage `json:"lists"`
	Broadcasts map[string]string          `json:"broadcasts"`
	Blocks     map[string]wireBlock       `json:"blocks"`
	Costumes   []wireAsset                `json:"costumes"`
	Sounds     []wireAsset                `json:"sounds"`
	Volume     float64                    `json:"volume"`
}

type wireAsset struct {
	Name string `json:"name"`
}

type wireBlock struct {
	Opcode   string                       `json:"opcode"`
	Next     *string                      `json:"next"`
	Parent   *string                      `json:"parent"`
	Inputs   map[string]json.RawMessage   `json:"inputs"`
	Fields   map[string][]json.RawMessage `json:"fields"`
	Shadow   bool                         `json:"shadow"`
	TopLevel bool                         `json:"topLevel"`
	Mutation *wireMutation                `json:"mutation"`
}

// wireMutation mirrors sb3's oddity of double-encoding its argument lists as
// JSON-strings-of-JSON-arrays rather than plain arrays.
type wireMutation struct {
	ProcCode         string `json:"proccode"`
	ArgumentIDs      string `json:"argumentids"`
	ArgumentNames    string `json:"argumentnames"`
	ArgumentDefaults string `json:"argumentdefaults"`
	Warp             bool   `json:"warp"`
}

// LoadProject reads a project from either a bare project.json file or a
// `.sb3`-shaped zip archive containing one, and lowers it into a
// project.Project plus the RawTargets the IR generator (C4) consumes.
func LoadProject(path string) (*project.Project, []*irgen.RawTarget, error) {
	raw, err := readProjectJSON(path)
	if err != nil {
		return nil, nil, err
	}
	var wp wireProject
	if err := json.Unmarshal(raw, &wp); err != nil {
		return nil, nil, fmt.Errorf("parse project.json: %w", err)
	}
	return buildProject(wp)
}

func readProjectJSON(path string) ([]byte, error) {
	if strings.EqualFold(filepath.Ext(path), ".sb3") {
		return readProjectJSONFromZip(path)
	}
	return os.ReadFile(path)
}

func readProjectJSONFromZip(path string) ([]byte, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open sb3 archive: %w", err)
	}
	defer zr.Close()
	for _, f := range zr.File {
		if f.Name != "project.json" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open project.json in archive: %w", err)
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("%s: no project.json in archive", path)
}

func buildProject(wp wireProject) (*project.Project, []*irgen.RawTarget, error) {
	var stageTarget *project.Target
	var proj *project.Project
	var rawTargets []*irgen.RawTarget

	// The stage must be built first so NewProject has somewhere to anchor,
	// but sb3 doesn't guarantee target order; do a first pass for it.
	for i, wt := range wp.Targets {
		if wt.IsStage {
			stageTarget = project.NewStage(fmt.Sprintf("target%d", i))
			break
		}
	}
	if stageTarget == nil {
		return nil, nil, fmt.Errorf("project has no stage target")
	}
	proj = project.NewProject(stageTarget)

	for i, wt := range wp.Targets {
		id := fmt.Sprintf("target%d", i)
		var t *project.Target
		if wt.IsStage {
			t = stageTarget
		} else {
			t = project.NewSprite(id, wt.Name)
			proj.Sprites = append(proj.Sprites, t)
		}
		if wt.Volume > 0 {
			t.Volume = wt.Volume
		}
		for _, c := range wt.Costumes {
			t.Costumes = append(t.Costumes, &project.Costume{Name: c.Name})
		}
		for _, s := range wt.Sounds {
			t.Sounds = append(t.Sounds, &project.Sound{Name: s.Name})
		}

		rt := &irgen.RawTarget{
			ID:         id,
			Name:       wt.Name,
			IsStage:    wt.IsStage,
			Blocks:     map[string]*irgen.RawBlock{},
			Variables:  map[string]irgen.RawVariable{},
			Lists:      map[string]irgen.RawVariable{},
			Broadcasts: map[string]string{},
		}

		for varID, tuple := range wt.Variables {
			rv, err := decodeVariableTuple(tuple)
			if err != nil {
				return nil, nil, fmt.Errorf("target %s variable %s: %w", wt.Name, varID, err)
			}
			rt.Variables[varID] = rv
			t.Variables[varID] = &project.Variable{ID: varID, Name: rv.Name, Kind: project.KindScalar, Value: rv.Value, IsCloud: rv.IsCloud}
		}
		for listID, tuple := range wt.Lists {
			rv, err := decodeVariableTuple(tuple)
			if err != nil {
				return nil, nil, fmt.Errorf("target %s list %s: %w", wt.Name, listID, err)
			}
			rt.Lists[listID] = rv
			items, _ := rv.Value.([]interface{})
			t.Lists[listID] = &project.Variable{ID: listID, Name: rv.Name, Kind: project.KindList, List: items}
		}
		for bcastID, name := range wt.Broadcasts {
			rt.Broadcasts[bcastID] = name
			proj.Broadcasts[bcastID] = &project.Broadcast{ID: bcastID, Name: name}
		}

		for blockID, wb := range wt.Blocks {
			rb, err := decodeBlock(blockID, wb)
			if err != nil {
				return nil, nil, fmt.Errorf("target %s block %s: %w", wt.Name, blockID, err)
			}
			rt.Blocks[blockID] = rb
			if rb.TopLevel {
				rt.BlockOrder = append(rt.BlockOrder, blockID)
			}
		}
		rawTargets = append(rawTargets, rt)
	}
	return proj, rawTargets, nil
}

func decodeVariableTuple(tuple []json.RawMessage) (irgen.RawVariable, error) {
	if len(tuple) < 2 {
		return irgen.RawVariable{}, fmt.Errorf("expected [name, value] tuple, got %d elements", len(tuple))
	}
	var name string
	if err := json.Unmarshal(tuple[0], &name); err != nil {
		return irgen.RawVariable{}, fmt.Errorf("variable name: %w", err)
	}
	var value interface{}
	if err := json.Unmarshal(tuple[1], &value); err != nil {
		return irgen.RawVariable{}, fmt.Errorf("variable value: %w", err)
	}
	cloud := false
	if len(tuple) >= 3 {
		_ = json.Unmarshal(tuple[2], &cloud)
	}
	return irgen.RawVariable{Name: name, Value: value, IsCloud: cloud}, nil
}

func decodeBlock(id string, wb wireBlock) (*irgen.RawBlock, error) {
	rb := &irgen.RawBlock{
		ID:       id,
		Opcode:   wb.Opcode,
		Shadow:   wb.Shadow,
		TopLevel: wb.TopLevel,
		Inputs:   map[string]irgen.RawInput{},
		Fields:   map[string]irgen.RawField{},
	}
	if wb.Next != nil {
		rb.Next = *wb.Next
	}
	if wb.Parent != nil {
		rb.Parent = *wb.Parent
	}
	for name, raw := range wb.Inputs {
		in, err := decodeInput(raw)
		if err != nil {
			return nil, fmt.Errorf("input %s: %w", name, err)
		}
		rb.Inputs[name] = in
	}
	for name, tuple := range wb.Fields {
		f, err := decodeField(tuple)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", name, err)
		}
		rb.Fields[name] = f
	}
	if wb.Mutation != nil {
		rb.Mutation = &irgen.Mutation{
			ProcCode:         wb.Mutation.ProcCode,
			ArgumentIDs:      decodeDoubleEncodedStrings(wb.Mutation.ArgumentIDs),
			ArgumentNames:    decodeDoubleEncodedStrings(wb.Mutation.ArgumentNames),
			ArgumentDefaults: decodeDoubleEncodedStrings(wb.Mutation.ArgumentDefaults),
			Warp:             wb.Mutation.Warp,
		}
	}
	return rb, nil
}

// decodeInput handles sb3's `[shadowKind, value]` input shape, where value
// is either a block-id string (a reporter feeds this slot) or a
// `[typeNum, literal, ...]` inline shadow.
func decodeInput(raw json.RawMessage) (irgen.RawInput, error) {
	var arr []json.RawMessage
	if err := json.Unmarshal(raw, &arr); err != nil || len(arr) < 2 {
		return irgen.RawInput{}, fmt.Errorf("malformed input shape %s", raw)
	}
	var blockID string
	if err := json.Unmarshal(arr[1], &blockID); err == nil && blockID != "" {
		return irgen.RawInput{BlockID: blockID}, nil
	}
	var shadow []json.RawMessage
	if err := json.Unmarshal(arr[1], &shadow); err == nil && len(shadow) >= 2 {
		var lit interface{}
		if err := json.Unmarshal(shadow[1], &lit); err == nil {
			return irgen.RawInput{Literal: lit, HasLit: true}, nil
		}
	}
	return irgen.RawInput{}, nil
}

func decodeField(tuple []json.RawMessage) (irgen.RawField, error) {
	if len(tuple) == 0 {
		return irgen.RawField{}, fmt.Errorf("empty field tuple")
	}
	var name string
	if err := json.Unmarshal(tuple[0], &name); err != nil {
		return irgen.RawField{}, fmt.Errorf("field name: %w", err)
	}
	f := irgen.RawField{Name: name}
	if len(tuple) >= 2 {
		var id string
		_ = json.Unmarshal(tuple[1], &id)
		f.ID = id
	}
	return f, nil
}

// decodeDoubleEncodedStrings parses sb3's argumentids/argumentnames/
// argumentdefaults mutation fields, each a JSON array re-encoded as a
// string. An empty or malformed value yields no arguments rather than an
// error — procedures.go already tolerates a nil slice.
func decodeDoubleEncodedStrings(encoded string) []string {
	if encoded == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(encoded), &out); err != nil {
		return nil
	}
	return out
}


