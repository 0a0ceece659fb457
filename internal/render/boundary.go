package render

import (
	"context"
	"fmt"
)

// Stage names the pipeline step a block was in when it failed.
type Stage string

const (
	StageClassify  Stage = "classify"
	StageNormalize Stage = "normalize"
	StageAggregate Stage = "aggregate"
	StageRender    Stage = "render"
)

// Diagnostic is reported once for every degraded block.
type Diagnostic struct {
	BlockIndex   int    `json:"blockIndex"`
	Stage        Stage  `json:"stage"`
	ErrorMessage string `json:"errorMessage"`
}

// Sink receives diagnostics for degraded blocks.
type Sink interface {
	Report(ctx context.Context, d Diagnostic)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, d Diagnostic)

// Report calls f(ctx, d).
func (f SinkFunc) Report(ctx context.Context, d Diagnostic) { f(ctx, d) }

// Outcome is the result of rendering one block: either a node (possibly nil
// when the block was omitted) or a degraded placeholder with its diagnostic.
type Outcome struct {
	Node       *Node
	Diagnostic *Diagnostic
}

// Degraded reports whether the block failed and was replaced.
func (o Outcome) Degraded() bool {
	return o.Diagnostic != nil
}

// boundary isolates the stages of a single block. Once a stage fails the
// boundary is degraded and later stages are skipped; a new boundary is built
// for every block of every render pass.
type boundary struct {
	index int
	diag  *Diagnostic
}

// run executes fn as the given stage, converting both returned errors and
// panics into a diagnostic. It reports whether the stage succeeded.
func (b *boundary) run(stage Stage, fn func() error) (ok bool) {
	if b.diag != nil {
		return false
	}
	defer func() {
		if r := recover(); r != nil {
			b.fail(stage, fmt.Errorf("panic: %v", r))
			ok = false
		}
	}()
	if err := fn(); err != nil {
		b.fail(stage, err)
		return false
	}
	return true
}

func (b *boundary) fail(stage Stage, err error) {
	b.diag = &Diagnostic{BlockIndex: b.index, Stage: stage, ErrorMessage: err.Error()}
}

// outcome returns the fallback placeholder when degraded, otherwise node.
func (b *boundary) outcome(node *Node) Outcome {
	if b.diag == nil {
		return Outcome{Node: node}
	}
	return Outcome{
		Node: &Node{
			Type:    NodeFallback,
			Block:   b.index,
			Message: FallbackMessage,
		},
		Diagnostic: b.diag,
	}
}
