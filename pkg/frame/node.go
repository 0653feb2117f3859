package frame

import "sync"

// Event is dispatched on a Node or a Window.
type Event struct {
	// Type names the event, e.g. "menu-item-selected".
	Type string

	// Detail is the event payload.
	Detail any

	// Bubbles makes the event visit every ancestor of the target.
	Bubbles bool

	// Composed marks the event as crossing encapsulation boundaries.
	// Nodes here have no shadow roots, so it is carried for observers only.
	Composed bool

	// Target is the node the event was dispatched on. Set by DispatchEvent.
	Target *Node

	// CurrentTarget is the node whose listeners are running.
	CurrentTarget *Node
}

// Node is an element in a document tree.
type Node struct {
	name string

	mu       sync.RWMutex
	parent   *Node
	children []*Node

	lmu       sync.Mutex
	listeners map[string]*registry[Event]
}

// NewNode returns a detached node.
func NewNode(name string) *Node {
	return &Node{
		name:      name,
		listeners: make(map[string]*registry[Event]),
	}
}

// Name returns the node name.
func (n *Node) Name() string {
	return n.name
}

// Parent returns the parent node or nil when detached.
func (n *Node) Parent() *Node {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.parent
}

// AppendChild attaches c under n, detaching it from any previous parent.
func (n *Node) AppendChild(c *Node) {
	c.Remove()

	n.mu.Lock()
	n.children = append(n.children, c)
	n.mu.Unlock()

	c.mu.Lock()
	c.parent = n
	c.mu.Unlock()
}

// Children returns a copy of the child list.
func (n *Node) Children() []*Node {
	n.mu.RLock()
	defer n.mu.RUnlock()

	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// Remove detaches n from its parent. No-op when already detached.
func (n *Node) Remove() {
	n.mu.Lock()
	p := n.parent
	n.parent = nil
	n.mu.Unlock()

	if p == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for i, c := range p.children {
		if c == n {
			p.children = append(p.children[:i:i], p.children[i+1:]...)
			break
		}
	}
}

// Contains reports whether c is n or one of its descendants.
func (n *Node) Contains(c *Node) bool {
	for cur := c; cur != nil; cur = cur.Parent() {
		if cur == n {
			return true
		}
	}
	return false
}

// AddEventListener registers fn for events of the given type and returns
// a function that removes it.
func (n *Node) AddEventListener(eventType string, fn func(Event)) func() {
	n.lmu.Lock()
	r, ok := n.listeners[eventType]
	if !ok {
		r = &registry[Event]{}
		n.listeners[eventType] = r
	}
	n.lmu.Unlock()

	return r.add(fn)
}

// ListenerCount returns the number of listeners registered for eventType.
func (n *Node) ListenerCount(eventType string) int {
	n.lmu.Lock()
	r, ok := n.listeners[eventType]
	n.lmu.Unlock()

	if !ok {
		return 0
	}
	return r.len()
}

// DispatchEvent runs the listeners of n and, for bubbling events, of every
// ancestor, nearest first.
func (n *Node) DispatchEvent(ev Event) {
	ev.Target = n

	for cur := n; cur != nil; cur = cur.Parent() {
		cur.lmu.Lock()
		r := cur.listeners[ev.Type]
		cur.lmu.Unlock()

		if r != nil {
			ev.CurrentTarget = cur
			r.dispatch(ev.Type, ev)
		}

		if !ev.Bubbles {
			return
		}
	}
}
