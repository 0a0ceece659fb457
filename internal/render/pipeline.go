package render

import (
	"context"
	"strings"
)

// WarningSeparator joins envelope warnings into the single banner line.
const WarningSeparator = " · "

// Pipeline turns envelopes into render trees. It holds no per-render state
// and is safe for concurrent use once configured.
type Pipeline struct {
	dispatcher *Dispatcher
	sink       Sink
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithSink sets the diagnostic sink for degraded blocks.
func WithSink(s Sink) Option {
	return func(p *Pipeline) { p.sink = s }
}

// WithChartFamily registers an extra chart generator.
func WithChartFamily(family string, gen ChartGenerator) Option {
	return func(p *Pipeline) { p.dispatcher.Register(family, gen) }
}

// New creates a pipeline with the built-in generators.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		dispatcher: NewDispatcher(),
		sink:       SinkFunc(func(context.Context, Diagnostic) {}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Render runs every block of the envelope through classify, normalize,
// aggregate and dispatch, in order. A failing block is replaced by the
// fallback node and reported to the sink; its siblings are unaffected.
func (p *Pipeline) Render(ctx context.Context, env Envelope) Tree {
	tree := Tree{Nodes: make([]Node, 0, len(env.Blocks))}
	if len(env.Warnings) > 0 {
		tree.Warning = strings.Join(env.Warnings, WarningSeparator)
	}

	for i, b := range env.Blocks {
		out := p.RenderBlock(i, b)
		if out.Degraded() {
			tree.Degraded++
			p.report(ctx, *out.Diagnostic)
		}
		if out.Node != nil {
			tree.Nodes = append(tree.Nodes, *out.Node)
		}
	}
	return tree
}

// report hands d to the sink. A panicking sink loses the diagnostic but not
// the rest of the render.
func (p *Pipeline) report(ctx context.Context, d Diagnostic) {
	defer func() { _ = recover() }()
	p.sink.Report(ctx, d)
}

// RenderBlock renders one block inside its own isolation boundary.
func (p *Pipeline) RenderBlock(index int, b Block) Outcome {
	bnd := &boundary{index: index}

	var kind Kind
	bnd.run(StageClassify, func() error {
		kind = Classify(b)
		return nil
	})

	var m Model
	bnd.run(StageNormalize, func() error {
		var err error
		m, err = Normalize(b, kind)
		return err
	})

	bnd.run(StageAggregate, func() error {
		m = Aggregate(m)
		return nil
	})

	var node *Node
	bnd.run(StageRender, func() error {
		var err error
		node, err = p.dispatcher.Dispatch(kind, m)
		return err
	})

	if node != nil {
		node.Block = index
	}
	return bnd.outcome(node)
}
