// Package graph implements the processing graph: nodes wrapping
// operations, pads and connections between them, the visitor framework
// that walks the dependency relation, the region propagation passes and
// the one-shot evaluation manager.
//
// # Model
//
// Every [Node] lives in an [Arena] and is addressed by a stable [NodeID].
// Pads, connections and parent/child links store handles, never owning
// pointers, so removing a node only requires disconnecting it.
//
// A node becomes a graph (a subgraph) when its first child is added.
// Graphs expose boundary proxy nodes created by [Node.InputProxy] and
// [Node.OutputProxy]; connecting to a graph connects to its proxies.
//
// # Evaluation
//
// [EvalMgr] evaluates one rectangle of a node's output by running, in
// order, the Have pass (defined regions), the Need pass (requested
// regions), the CR pass (result rectangles and consumer counts), the Eval
// pass (operation processing) and the Finish pass (context teardown).
// Each evaluation uses a fresh [ContextID]; per-context node state lives
// in a [Dynamic].
//
// The package is single-threaded: a graph must not be edited while it is
// being evaluated.
package graph
