package graph

import "fmt"

// Connection links an output pad of a source node to an input pad of a
// sink node. It stores handles and pad indices only.
type Connection struct {
	arena     *Arena
	sink      NodeID
	sinkPad   int
	source    NodeID
	sourcePad int
}

// Sink returns the consuming node.
func (c *Connection) Sink() *Node { return c.arena.Node(c.sink) }

// SinkPad returns the consuming input pad.
func (c *Connection) SinkPad() *Pad { return c.Sink().pads[c.sinkPad] }

// Source returns the producing node.
func (c *Connection) Source() *Node { return c.arena.Node(c.source) }

// SourcePad returns the producing output pad.
func (c *Connection) SourcePad() *Pad { return c.Source().pads[c.sourcePad] }

// String returns "source.pad -> sink.pad".
func (c *Connection) String() string {
	return fmt.Sprintf("%s -> %s", c.SourcePad(), c.SinkPad())
}

// Connect connects the output pad sourcePad of source to the input pad
// sinkPad of sink, replacing whatever was connected to sinkPad before.
//
// Graph nodes are connected through their proxies. Connect returns false
// and logs a warning when a pad is missing or has the wrong direction,
// when the nodes belong to different arenas, or when the connection would
// create a loop. Connecting an already connected pair succeeds without
// changes.
func Connect(sink *Node, sinkPad string, source *Node, sourcePad string) bool {
	if sink == nil || source == nil {
		slogger().Warn("graph: connect: nil node")
		return false
	}
	if sink.arena != source.arena {
		slogger().Warn("graph: connect: nodes belong to different arenas",
			"sink", sink, "source", source)
		return false
	}
	if sink.removed || source.removed {
		slogger().Warn("graph: connect: node was removed", "sink", sink, "source", source)
		return false
	}
	// Proxies are looked up here and only created once the connection is
	// known to be valid. A missing proxy has no connections, so it can
	// neither close a loop nor lack its pad.
	realSink, realSinkPad := sink, sinkPad
	if sink.IsGraph() {
		realSink, realSinkPad = sink.inputProxy(sinkPad), "input"
	}
	realSource, realSourcePad := source, sourcePad
	if source.IsGraph() {
		realSource, realSourcePad = source.outputProxy(sourcePad), "output"
	}

	if realSink != nil && realSource != nil &&
		(realSource == realSink || realSource.HasSource(realSink)) {
		slogger().Warn("graph: connect: construction of loop requested",
			"sink", sink, "source", source)
		return false
	}

	var in, out *Pad
	if realSink != nil {
		in = realSink.ownPad(realSinkPad)
		if in == nil || !in.IsInput() {
			slogger().Warn("graph: connect: no such input pad", "node", sink, "pad", sinkPad)
			return false
		}
	}
	if realSource != nil {
		out = realSource.ownPad(realSourcePad)
		if out == nil || !out.IsOutput() {
			slogger().Warn("graph: connect: no such output pad", "node", source, "pad", sourcePad)
			return false
		}
	}
	if realSink == nil {
		realSink = sink.InputProxy(sinkPad)
		in = realSink.ownPad("input")
	}
	if realSource == nil {
		realSource = source.OutputProxy(sourcePad)
		out = realSource.ownPad("output")
	}

	if in.ConnectedTo() == out {
		return true
	}
	disconnectPad(in)

	c := &Connection{
		arena:     sink.arena,
		sink:      realSink.id,
		sinkPad:   in.index,
		source:    realSource.id,
		sourcePad: out.index,
	}
	in.addConnection(c)
	out.addConnection(c)
	realSink.sources = append(realSink.sources, c)
	realSource.sinks = append(realSource.sinks, c)

	realSink.Invalidate(realSource.haveRect)
	return true
}

// Disconnect removes the connection on the input pad sinkPad of sink. It
// returns false when nothing was connected.
func Disconnect(sink *Node, sinkPad string) bool {
	if sink == nil {
		return false
	}
	realSink, realSinkPad := sink, sinkPad
	if sink.IsGraph() {
		p := sink.inputProxy(sinkPad)
		if p == nil {
			return false
		}
		realSink, realSinkPad = p, "input"
	}
	in := realSink.ownPad(realSinkPad)
	if in == nil || !in.IsInput() {
		slogger().Warn("graph: disconnect: no such input pad", "node", sink, "pad", sinkPad)
		return false
	}
	return disconnectPad(in)
}

func disconnectPad(in *Pad) bool {
	c := in.Connection()
	if c == nil {
		return false
	}
	sink, source := c.Sink(), c.Source()
	if sink == nil || sink.id != in.node {
		panic(fmt.Sprintf("graph: connection %p recorded on %s but targets node %d", c, in, c.sink))
	}
	have := source.haveRect

	in.removeConnection(c)
	c.SourcePad().removeConnection(c)
	sink.sources = removeConn(sink.sources, c)
	source.sinks = removeConn(source.sinks, c)

	sink.Invalidate(have)
	return true
}

func removeConn(list []*Connection, c *Connection) []*Connection {
	for i, x := range list {
		if x == c {
			return append(list[:i], list[i+1:]...)
		}
	}
	panic(fmt.Sprintf("graph: connection %v missing from node list", c))
}

// Link connects the "output" pad of source to the "input" pad of sink.
func Link(source, sink *Node) bool {
	return Connect(sink, "input", source, "output")
}

// LinkMany links the nodes into a chain, each feeding the next. It stops
// at the first failure.
func LinkMany(nodes ...*Node) bool {
	for i := 0; i+1 < len(nodes); i++ {
		if !Link(nodes[i], nodes[i+1]) {
			return false
		}
	}
	return true
}

// DisconnectAll removes every connection of n, on both sides.
func DisconnectAll(n *Node) {
	if n == nil {
		return
	}
	for len(n.sources) > 0 {
		disconnectPad(n.sources[0].SinkPad())
	}
	for len(n.sinks) > 0 {
		disconnectPad(n.sinks[0].SinkPad())
	}
}

