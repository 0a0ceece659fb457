package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrEnvelope is returned when a payload cannot be read as a result envelope
// in any of the supported dialects.
var ErrEnvelope = errors.New("invalid result envelope")

// Envelope is the top-level query response: warnings plus an ordered list of
// blocks.
type Envelope struct {
	Kind     string   `json:"type,omitempty"`
	Warnings []string `json:"warnings"`
	Blocks   []Block  `json:"blocks"`
}

// Empty reports whether the envelope has nothing to render.
func (e Envelope) Empty() bool {
	return len(e.Blocks) == 0 && len(e.Warnings) == 0
}

// DecodeEnvelope reads a payload in any of the observed dialects:
//
//	[ {block}, ... ]                         flat list
//	{ "type": ..., "warnings": [...], "blocks": [...] }
//	{ "type": ..., "warnings": [...], "block": {...} }
//	{ block fields... }                      a single bare block
//
// A null "blocks" or "block" field means the envelope has no blocks.
//
// Entries of the block list that are not objects become empty blocks, which
// classify as unsupported.
func DecodeEnvelope(data []byte) (Envelope, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return Envelope{}, fmt.Errorf("%w: empty payload", ErrEnvelope)
	}

	switch trimmed[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return Envelope{}, fmt.Errorf("%w: %v", ErrEnvelope, err)
		}
		return Envelope{Blocks: decodeBlocks(items)}, nil
	case '{':
	default:
		return Envelope{}, fmt.Errorf("%w: expected an object or a list", ErrEnvelope)
	}

	var top Block
	if err := json.Unmarshal(trimmed, &top); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrEnvelope, err)
	}

	_, hasBlocks := top["blocks"]
	_, hasBlock := top["block"]

	switch {
	case hasBlocks:
		env := Envelope{Kind: top.Text("type"), Warnings: decodeWarnings(top["warnings"])}
		if !top.Has("blocks") {
			return env, nil
		}
		if !top.IsList("blocks") {
			return Envelope{}, fmt.Errorf("%w: blocks must be a list", ErrEnvelope)
		}
		var items []json.RawMessage
		if err := json.Unmarshal(top["blocks"], &items); err != nil {
			return Envelope{}, fmt.Errorf("%w: blocks: %v", ErrEnvelope, err)
		}
		env.Blocks = decodeBlocks(items)
		return env, nil
	case hasBlock:
		env := Envelope{Kind: top.Text("type"), Warnings: decodeWarnings(top["warnings"])}
		if top.Has("block") {
			env.Blocks = decodeBlocks([]json.RawMessage{top["block"]})
		}
		return env, nil
	case len(top) == 0:
		return Envelope{}, nil
	case isEnvelopeOnly(top):
		return Envelope{
			Kind:     top.Text("type"),
			Warnings: decodeWarnings(top["warnings"]),
		}, nil
	default:
		return Envelope{Blocks: []Block{top}}, nil
	}
}

// isEnvelopeOnly reports whether an object carries only envelope-level keys,
// e.g. {"type":"summary","warnings":[...]} with no blocks.
func isEnvelopeOnly(top Block) bool {
	for key := range top {
		if key != "type" && key != "warnings" {
			return false
		}
	}
	return top.Has("warnings")
}

func decodeBlocks(items []json.RawMessage) []Block {
	blocks := make([]Block, 0, len(items))
	for _, item := range items {
		var b Block
		if err := json.Unmarshal(item, &b); err != nil || b == nil {
			b = Block{}
		}
		blocks = append(blocks, b)
	}
	return blocks
}

func decodeWarnings(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		var single string
		if err := json.Unmarshal(raw, &single); err == nil && single != "" {
			return []string{single}
		}
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err == nil && s != "" {
			out = append(out, s)
		}
	}
	return out
}
