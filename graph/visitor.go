package graph

// Visitable is a vertex of a dependency graph that visitors can walk.
type Visitable interface {
	// DependsOn returns the visitables that must be visited first.
	DependsOn() []Visitable

	// Accept dispatches to the visitor method for the concrete type.
	Accept(v Visitor)

	// NeedsVisiting reports whether the traversal should include the
	// visitable at all.
	NeedsVisiting() bool
}

// Visitor receives the visitables of a traversal.
type Visitor interface {
	VisitNode(n *Node)
	VisitPad(p *Pad)
}

// BaseVisitor records the visit order. Concrete visitors embed it and
// call its methods to keep the record.
type BaseVisitor struct {
	visits []Visitable
}

// VisitNode records n.
func (b *BaseVisitor) VisitNode(n *Node) { b.visits = append(b.visits, n) }

// VisitPad records p.
func (b *BaseVisitor) VisitPad(p *Pad) { b.visits = append(b.visits, p) }

// Visits returns the recorded visit order.
func (b *BaseVisitor) Visits() []Visitable { return b.visits }

// visitInfo is the per-call traversal state of one visitable.
type visitInfo struct {
	visited     bool
	discovered  bool
	sharedCount int
}

// DFS visits every visitable reachable from root exactly once, each one
// after all of its dependencies (post-order). Visitables that do not need
// visiting are skipped together with the dependencies only they lead to.
func DFS(v Visitor, root Visitable) {
	if root == nil || !root.NeedsVisiting() {
		return
	}
	state := make(map[Visitable]*visitInfo)
	var walk func(Visitable)
	walk = func(cur Visitable) {
		state[cur] = &visitInfo{discovered: true}
		for _, dep := range cur.DependsOn() {
			if dep == nil || !dep.NeedsVisiting() {
				continue
			}
			if _, seen := state[dep]; !seen {
				walk(dep)
			}
		}
		cur.Accept(v)
		state[cur].visited = true
	}
	walk(root)
}

// BFS visits every visitable reachable from root exactly once, starting
// at root and moving toward the sources. A visitable is visited only
// after every reachable visitable depending on it has been visited, so
// a source with several consumers sees all of them first.
func BFS(v Visitor, root Visitable) {
	if root == nil || !root.NeedsVisiting() {
		return
	}
	state := make(map[Visitable]*visitInfo)
	var count func(Visitable)
	count = func(cur Visitable) {
		state[cur] = &visitInfo{}
		for _, dep := range cur.DependsOn() {
			if dep == nil || !dep.NeedsVisiting() {
				continue
			}
			if _, seen := state[dep]; !seen {
				count(dep)
			}
			state[dep].sharedCount++
		}
	}
	count(root)

	queue := []Visitable{root}
	state[root].discovered = true
	stalled := 0
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		info := state[cur]
		if info.sharedCount > 0 {
			queue = append(queue, cur)
			if stalled++; stalled > len(queue) {
				slogger().Warn("graph: bfs: dependency cycle, traversal aborted", "pending", len(queue))
				return
			}
			continue
		}
		stalled = 0
		for _, dep := range cur.DependsOn() {
			if dep == nil || !dep.NeedsVisiting() {
				continue
			}
			d := state[dep]
			d.sharedCount--
			if !d.discovered {
				d.discovered = true
				queue = append(queue, dep)
			}
		}
		cur.Accept(v)
		info.visited = true
	}
}
