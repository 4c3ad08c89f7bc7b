package tree

import (
	"kiln/internal/item"
	"kiln/internal/pipeline"
)

// NodeID addresses a node in the tree arena. IDs are stable for the life of
// the tree; removed nodes are tombstoned, never reused.
type NodeID int

// InvalidID marks a missing node reference.
const InvalidID NodeID = -1

// CheckState is the tri-state selection model exposed to UIs. Task nodes are
// only ever Unchecked or Checked; PartiallyChecked is derived for item nodes
// whose descendants disagree.
type CheckState int

const (
	Unchecked CheckState = iota
	PartiallyChecked
	Checked
)

func (c CheckState) String() string {
	switch c {
	case Checked:
		return "checked"
	case PartiallyChecked:
		return "partial"
	default:
		return "unchecked"
	}
}

type node struct {
	parent   NodeID
	children []NodeID
	item     *item.Item
	task     *Task
	check    CheckState
	removed  bool
}

// Tree is the in-memory hierarchy of item and task nodes. Nodes live in an
// arena addressed by NodeID; the parent relation is a lookup key, not an
// ownership edge.
type Tree struct {
	nodes []node
}

// New creates a tree containing only the synthetic root node.
func New() *Tree {
	return &Tree{nodes: []node{{parent: InvalidID}}}
}

// Root returns the synthetic root node.
func (t *Tree) Root() NodeID { return 0 }

func (t *Tree) valid(id NodeID) bool {
	return id >= 0 && int(id) < len(t.nodes) && !t.nodes[id].removed
}

// AddItem appends an item node under parent and returns its ID.
func (t *Tree) AddItem(parent NodeID, it *item.Item) NodeID {
	if !t.valid(parent) {
		return InvalidID
	}
	id := NodeID(len(t.nodes))
	t.nodes = append(t.nodes, node{parent: parent, item: it})
	t.nodes[parent].children = append(t.nodes[parent].children, id)
	return id
}

// AddTask appends a task node under an item node and returns its ID.
func (t *Tree) AddTask(parent NodeID, task *Task) NodeID {
	if !t.valid(parent) || t.nodes[parent].item == nil {
		return InvalidID
	}
	id := NodeID(len(t.nodes))
	t.nodes = append(t.nodes, node{parent: parent, task: task})
	t.nodes[parent].children = append(t.nodes[parent].children, id)
	return id
}

// AttachTasks pairs every item node with each pipeline stage whose filters
// match the item type, in configured stage order. Returns the number of
// tasks created.
func (t *Tree) AttachTasks(p *pipeline.Pipeline) int {
	created := 0
	descriptors := p.Descriptors()
	for id := range t.nodes {
		n := &t.nodes[id]
		if n.removed || n.item == nil {
			continue
		}
		for _, desc := range descriptors {
			if !desc.Matches(n.item.Type) {
				continue
			}
			if t.AddTask(NodeID(id), NewTask(n.item, desc)) != InvalidID {
				created++
			}
		}
	}
	return created
}

// Item returns the item carried by a node, or nil for task and root nodes.
func (t *Tree) Item(id NodeID) *item.Item {
	if !t.valid(id) {
		return nil
	}
	return t.nodes[id].item
}

// Task returns the task carried by a node, or nil for item and root nodes.
func (t *Tree) Task(id NodeID) *Task {
	if !t.valid(id) {
		return nil
	}
	return t.nodes[id].task
}

// Parent returns the parent node ID, or InvalidID for the root.
func (t *Tree) Parent(id NodeID) NodeID {
	if !t.valid(id) {
		return InvalidID
	}
	return t.nodes[id].parent
}

// Children returns the live child node IDs in insertion order.
func (t *Tree) Children(id NodeID) []NodeID {
	if !t.valid(id) {
		return nil
	}
	out := make([]NodeID, 0, len(t.nodes[id].children))
	for _, child := range t.nodes[id].children {
		if t.valid(child) {
			out = append(out, child)
		}
	}
	return out
}

// Walk visits the subtree rooted at id in depth-first pre-order. Returning
// false from fn stops the walk.
func (t *Tree) Walk(id NodeID, fn func(NodeID) bool) {
	if !t.valid(id) {
		return
	}
	if !fn(id) {
		return
	}
	for _, child := range t.nodes[id].children {
		if t.valid(child) {
			t.Walk(child, fn)
		}
	}
}

// TaskNodes returns every live task node in tree traversal order. With
// producer stages configured before consumers, this order realizes the
// producer-to-consumer execution contract.
func (t *Tree) TaskNodes() []NodeID {
	var out []NodeID
	t.Walk(t.Root(), func(id NodeID) bool {
		if t.nodes[id].task != nil {
			out = append(out, id)
		}
		return true
	})
	return out
}

// RemoveTask tombstones a task node. Used for tasks whose plugin did not
// accept the item: they are dropped from the executable set entirely.
func (t *Tree) RemoveTask(id NodeID) {
	if !t.valid(id) || t.nodes[id].task == nil {
		return
	}
	parent := t.nodes[id].parent
	t.nodes[id].removed = true
	t.nodes[parent].check = t.derive(parent)
	t.refreshAncestors(parent)
}

// CheckState returns a node's current check state.
func (t *Tree) CheckState(id NodeID) CheckState {
	if !t.valid(id) {
		return Unchecked
	}
	return t.nodes[id].check
}

// ItemActive reports the effective active state of a node: its own item flag
// combined with every ancestor's. A child can never be more active than its
// parent.
func (t *Tree) ItemActive(id NodeID) bool {
	for cur := id; t.valid(cur); cur = t.nodes[cur].parent {
		if it := t.nodes[cur].item; it != nil && !it.Active {
			return false
		}
	}
	return true
}

// ItemVisible reports the effective visible state of a node, suppressed
// top-down like ItemActive.
func (t *Tree) ItemVisible(id NodeID) bool {
	for cur := id; t.valid(cur); cur = t.nodes[cur].parent {
		if it := t.nodes[cur].item; it != nil && !it.Visible {
			return false
		}
	}
	return true
}

// SetCheckState applies a check state to a node. For item nodes the state
// cascades: checking selects every active, enabled descendant task and
// unchecking clears every descendant. For task nodes the change re-derives
// each ancestor's tri-state. When applyToAllOfSamePlugin is set on a task
// node, the state is applied to every task in the tree sharing the same
// plugin descriptor, regardless of position.
func (t *Tree) SetCheckState(id NodeID, state CheckState, applyToAllOfSamePlugin bool) {
	if !t.valid(id) {
		return
	}
	n := &t.nodes[id]

	if n.task != nil {
		if applyToAllOfSamePlugin {
			desc := n.task.Plugin
			for other := range t.nodes {
				o := &t.nodes[other]
				if o.removed || o.task == nil || o.task.Plugin != desc {
					continue
				}
				t.setTaskCheck(NodeID(other), state)
				t.refreshAncestors(NodeID(other))
			}
			return
		}
		t.setTaskCheck(id, state)
		t.refreshAncestors(id)
		return
	}

	switch state {
	case Checked:
		t.cascadeCheck(id)
	case Unchecked:
		t.cascadeUncheck(id)
	default:
		return
	}
	n.check = t.derive(id)
	t.refreshAncestors(id)
}

// setTaskCheck assigns a task's check state, enforcing both floors at the
// point of assignment: a direct attempt to check a disabled task silently
// degrades to unchecked, and an attempt to uncheck a required task silently
// degrades to checked. The disabled floor wins when a task is both.
func (t *Tree) setTaskCheck(id NodeID, state CheckState) {
	n := &t.nodes[id]
	if state == PartiallyChecked {
		state = Checked
	}
	if state == Unchecked && n.task.Required {
		state = Checked
	}
	if state == Checked && (!n.task.Enabled || !t.ItemActive(n.parent)) {
		state = Unchecked
	}
	n.check = state
}

func (t *Tree) cascadeCheck(id NodeID) {
	for _, child := range t.Children(id) {
		c := &t.nodes[child]
		switch {
		case c.task != nil:
			if c.task.Enabled {
				t.setTaskCheck(child, Checked)
			}
		case c.item != nil:
			if !c.item.Active {
				continue
			}
			t.cascadeCheck(child)
			c.check = t.derive(child)
		}
	}
}

func (t *Tree) cascadeUncheck(id NodeID) {
	for _, child := range t.Children(id) {
		c := &t.nodes[child]
		switch {
		case c.task != nil:
			t.setTaskCheck(child, Unchecked)
		case c.item != nil:
			t.cascadeUncheck(child)
			c.check = t.derive(child)
		}
	}
}

// derive computes an item node's tri-state from its live children. Nodes
// without any task-bearing descendants keep their current state.
func (t *Tree) derive(id NodeID) CheckState {
	var (
		sawAny       bool
		sawChecked   bool
		sawUnchecked bool
	)
	for _, child := range t.Children(id) {
		c := &t.nodes[child]
		var state CheckState
		switch {
		case c.task != nil:
			state = c.check
		case c.item != nil:
			if !t.hasTasks(child) {
				continue
			}
			state = c.check
		default:
			continue
		}
		sawAny = true
		switch state {
		case Checked:
			sawChecked = true
		case PartiallyChecked:
			sawChecked = true
			sawUnchecked = true
		default:
			sawUnchecked = true
		}
	}
	if !sawAny {
		return t.nodes[id].check
	}
	switch {
	case sawChecked && sawUnchecked:
		return PartiallyChecked
	case sawChecked:
		return Checked
	default:
		return Unchecked
	}
}

func (t *Tree) hasTasks(id NodeID) bool {
	found := false
	t.Walk(id, func(n NodeID) bool {
		if t.nodes[n].task != nil {
			found = true
			return false
		}
		return true
	})
	return found
}

func (t *Tree) refreshAncestors(id NodeID) {
	for cur := t.Parent(id); cur != InvalidID; cur = t.Parent(cur) {
		t.nodes[cur].check = t.derive(cur)
	}
}

// Summary returns the ordered list of plugin names whose tasks are currently
// checked under the given node. Names appear once each, in first-seen
// traversal order; the list is empty when nothing is checked.
func (t *Tree) Summary(id NodeID) []string {
	names := []string{}
	seen := make(map[string]struct{})
	t.Walk(id, func(n NodeID) bool {
		task := t.nodes[n].task
		if task == nil || !task.Visible || t.nodes[n].check != Checked {
			return true
		}
		name := task.Plugin.Name()
		if _, ok := seen[name]; !ok {
			seen[name] = struct{}{}
			names = append(names, name)
		}
		return true
	})
	return names
}
