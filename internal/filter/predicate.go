package filter

import "sort"

// Predicate is either a Leaf or a nested Node.
type Predicate interface {
	isPredicate()
}

// Comparison is one resolved constraint on a column.
type Comparison struct {
	Operator Operator
	Value    string
	Null     bool
	Textual  bool
	Kind     string
}

// Leaf is the conjunction of comparisons applied to a single column.
type Leaf []Comparison

// Node maps a path segment to a Leaf or to the Node of a related entity.
// All entries of a Node are AND-ed.
type Node map[string]Predicate

func (Leaf) isPredicate() {}
func (Node) isPredicate() {}

// Keys returns the node's segments in a stable order.
func (n Node) Keys() []string {
	keys := make([]string, 0, len(n))
	for k := range n {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (n Node) insert(segs []string, c Comparison) error {
	key := segs[0]
	if len(segs) == 1 {
		switch existing := n[key].(type) {
		case nil:
			n[key] = Leaf{c}
		case Leaf:
			n[key] = append(existing, c)
		case Node:
			return invalidf("%q is a relation, not a column", key)
		}
		return nil
	}

	var child Node
	switch existing := n[key].(type) {
	case nil:
		child = Node{}
		n[key] = child
	case Node:
		child = existing
	case Leaf:
		return invalidf("%q is a column, not a relation", key)
	}
	return child.insert(segs[1:], c)
}

// PredicateSet is the parsed form of a filter expression for one root
// entity. Nodes are OR-ed; it never holds more than two of them.
type PredicateSet struct {
	Root  string
	Nodes []Node
}

type builderState int

const (
	stateIdle builderState = iota
	stateAwaitingSecond
	stateDone
	stateFailed
)

// Builder assembles a PredicateSet from at most two fragments.
type Builder struct {
	set   *PredicateSet
	state builderState
}

func NewBuilder(root string) *Builder {
	return &Builder{set: &PredicateSet{Root: root}}
}

// Apply adds frag to the set. The first fragment takes None. The second
// takes And, which merges into the first node, or Or, which starts a new
// node holding only the second fragment.
func (b *Builder) Apply(frag Fragment, op Logical) error {
	err := b.apply(frag, op)
	if err != nil {
		b.state = stateFailed
	}
	return err
}

func (b *Builder) apply(frag Fragment, op Logical) error {
	if frag.Path.Root() != b.set.Root {
		return invalidf("field path %q does not belong to %s", frag.Path.String(), b.set.Root)
	}
	segs := frag.Path.Rest()
	if len(segs) == 0 {
		return invalidf("field path %q names no column", frag.Path.String())
	}
	c := Comparison{
		Operator: frag.Operator,
		Value:    frag.Value,
		Null:     frag.Null,
		Textual:  frag.Textual,
		Kind:     frag.Kind,
	}

	switch b.state {
	case stateIdle:
		if op != None {
			return invalidf("%s without a preceding condition", op)
		}
		node := Node{}
		if err := node.insert(segs, c); err != nil {
			return err
		}
		b.set.Nodes = append(b.set.Nodes, node)
		b.state = stateAwaitingSecond
		return nil

	case stateAwaitingSecond:
		switch op {
		case And:
			if err := b.set.Nodes[0].insert(segs, c); err != nil {
				return err
			}
		case Or:
			node := Node{}
			if err := node.insert(segs, c); err != nil {
				return err
			}
			b.set.Nodes = append(b.set.Nodes, node)
		default:
			return invalidf("second condition needs AND or OR")
		}
		b.state = stateDone
		return nil

	case stateDone:
		return invalidf("only one AND/OR is supported per filter")
	}
	return invalidf("filter parsing already failed")
}

// Result returns the built set, or nil when nothing was applied or a
// previous Apply failed.
func (b *Builder) Result() *PredicateSet {
	if b.state == stateAwaitingSecond || b.state == stateDone {
		return b.set
	}
	return nil
}
