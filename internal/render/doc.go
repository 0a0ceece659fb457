// Package render converts loosely structured result blocks into bounded
// render trees.
//
// Each block goes through four stages: classification into a render kind,
// normalization into a bounded Model, aggregation of series statistics, and
// dispatch to a node generator. The stages of one block run inside an
// isolation boundary: an error or panic replaces that block's node with a
// fallback placeholder and emits a Diagnostic, leaving other blocks intact.
package render
