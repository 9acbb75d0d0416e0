package scene

import (
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrNotChild  = errors.New("scene: node is not a child of parent")
	ErrHasParent = errors.New("scene: node already has a parent")
	ErrFreed     = errors.New("scene: node has been freed")
	ErrCycle     = errors.New("scene: insertion would create a cycle")
)

// Node is an owned position in the scene tree
// A node has at most one parent; children are ordered and addressed by index
// Not safe for concurrent use, the tree is mutated from the game loop only
type Node struct {
	name     string
	parent   *Node
	children []*Node
	freed    bool

	exiting hookList // fired when the node leaves its parent's subtree
	release hookList // fired once when the node is freed
}

// NewNode creates a detached node
func NewNode(name string) *Node {
	return &Node{name: name}
}

func (n *Node) Name() string {
	return n.name
}

// Parent returns nil for roots and detached nodes
func (n *Node) Parent() *Node {
	return n.parent
}

// Index returns the position within the parent, -1 without a parent
func (n *Node) Index() int {
	if n.parent == nil {
		return -1
	}
	for i, c := range n.parent.children {
		if c == n {
			return i
		}
	}
	return -1
}

func (n *Node) ChildCount() int {
	return len(n.children)
}

// Child returns nil for an out-of-range index
func (n *Node) Child(i int) *Node {
	if i < 0 || i >= len(n.children) {
		return nil
	}
	return n.children[i]
}

// Children returns a copy of the ordered child list
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// IsFreed reports whether Free has run on this node
func (n *Node) IsFreed() bool {
	return n.freed
}

// AddChild appends child as the last child
func (n *Node) AddChild(child *Node) error {
	return n.InsertChild(child, len(n.children))
}

// InsertChild places child at index, clamped to [0, ChildCount]
func (n *Node) InsertChild(child *Node, index int) error {
	switch {
	case n.freed || child.freed:
		return ErrFreed
	case child.parent != nil:
		return errors.Wrapf(ErrHasParent, "insert %q under %q", child.name, n.name)
	case child == n || child.isAncestorOf(n):
		return errors.Wrapf(ErrCycle, "insert %q under %q", child.name, n.name)
	}

	if index < 0 {
		index = 0
	}
	if index > len(n.children) {
		index = len(n.children)
	}

	n.children = append(n.children, nil)
	copy(n.children[index+1:], n.children[index:])
	n.children[index] = child
	child.parent = n
	return nil
}

// RemoveChild detaches child and its subtree, keeping all of their state
// Exiting hooks run on the subtree, deepest first, before the link is cut
func (n *Node) RemoveChild(child *Node) error {
	idx := child.Index()
	if child.parent != n || idx < 0 {
		return errors.Wrapf(ErrNotChild, "remove %q from %q", child.name, n.name)
	}

	child.fireExiting()

	// Hooks may have restructured the tree, resolve the index again
	idx = child.Index()
	if child.parent != n || idx < 0 {
		return nil
	}
	n.cut(idx)
	return nil
}

// Detach cuts child out like RemoveChild but fires no exiting hooks anywhere in the subtree
// Used for deliberate structural removal where the subtree is expected back
func (n *Node) Detach(child *Node) error {
	idx := child.Index()
	if child.parent != n || idx < 0 {
		return errors.Wrapf(ErrNotChild, "detach %q from %q", child.name, n.name)
	}
	n.cut(idx)
	return nil
}

func (n *Node) cut(idx int) {
	child := n.children[idx]
	n.children = append(n.children[:idx], n.children[idx+1:]...)
	child.parent = nil
}

// Free removes the node from its parent and destroys its subtree
// Release hooks fire for every node in the subtree, deepest first; Free on a freed node is a no-op
func (n *Node) Free() {
	if n.freed {
		return
	}
	if n.parent != nil {
		_ = n.parent.RemoveChild(n)
	}
	n.freeSubtree()
}

// OnExiting registers fn to run whenever the node leaves the tree
// The returned func cancels the registration and is safe to call more than once
func (n *Node) OnExiting(fn func()) (cancel func()) {
	return n.exiting.add(fn)
}

// OnFreed registers fn to run when the node is freed
func (n *Node) OnFreed(fn func()) (cancel func()) {
	return n.release.add(fn)
}

// Root walks up to the topmost ancestor
func (n *Node) Root() *Node {
	r := n
	for r.parent != nil {
		r = r.parent
	}
	return r
}

// Path renders the ancestry as /root/child/leaf
func (n *Node) Path() string {
	var parts []string
	for p := n; p != nil; p = p.parent {
		parts = append(parts, p.name)
	}
	var sb strings.Builder
	for i := len(parts) - 1; i >= 0; i-- {
		sb.WriteByte('/')
		sb.WriteString(parts[i])
	}
	return sb.String()
}

// Walk visits the subtree pre-order; returning false from fn prunes that branch
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.Children() {
		c.Walk(fn)
	}
}

// Find returns the first node in the subtree with the given name
func (n *Node) Find(name string) *Node {
	var found *Node
	n.Walk(func(c *Node) bool {
		if found != nil {
			return false
		}
		if c.name == name {
			found = c
			return false
		}
		return true
	})
	return found
}

func (n *Node) isAncestorOf(other *Node) bool {
	for p := other.parent; p != nil; p = p.parent {
		if p == n {
			return true
		}
	}
	return false
}

func (n *Node) fireExiting() {
	for _, c := range n.Children() {
		c.fireExiting()
	}
	n.exiting.fire()
}

func (n *Node) freeSubtree() {
	for _, c := range n.Children() {
		c.freeSubtree()
	}
	n.freed = true
	n.release.fire()
	n.exiting.clear()
	n.release.clear()
}
