package graph

import (
	"fmt"
	"strings"

	"github.com/broady/routegen/ir"
)

// GuardPolicy decides how many guards one middleware node contributes.
type GuardPolicy int

const (
	// PolicyExclusive gives auth_required precedence over admin_required;
	// a node contributes at most one guard.
	PolicyExclusive GuardPolicy = iota

	// PolicyStacked contributes every flagged guard, auth before admin.
	PolicyStacked
)

// String returns the policy name.
func (p GuardPolicy) String() string {
	switch p {
	case PolicyStacked:
		return "stacked"
	default:
		return "exclusive"
	}
}

// ParseGuardPolicy parses "exclusive" or "stacked". The empty string is
// exclusive.
func ParseGuardPolicy(s string) (GuardPolicy, error) {
	switch strings.ToLower(s) {
	case "", "exclusive":
		return PolicyExclusive, nil
	case "stacked":
		return PolicyStacked, nil
	default:
		return PolicyExclusive, fmt.Errorf("unknown guard policy %q (expected \"exclusive\" or \"stacked\")", s)
	}
}

// Index answers id lookups over an immutable node list.
type Index struct {
	nodes []Node
	byID  map[string][]int
	order []string // ids in first-seen order
}

// NewIndex builds an index over nodes. Nodes without an id and invalid
// nodes are not indexed.
func NewIndex(nodes []Node) *Index {
	idx := &Index{
		nodes: nodes,
		byID:  make(map[string][]int, len(nodes)),
	}
	for i, n := range nodes {
		if n.ID == "" || n.Kind == KindInvalid {
			continue
		}
		if _, ok := idx.byID[n.ID]; !ok {
			idx.order = append(idx.order, n.ID)
		}
		idx.byID[n.ID] = append(idx.byID[n.ID], i)
	}
	return idx
}

// Nodes returns the indexed nodes in document order.
func (x *Index) Nodes() []Node {
	return x.nodes
}

// Lookup returns the first node with the given id and the number of nodes
// sharing it. The node is the zero value when count is zero.
func (x *Index) Lookup(id string) (Node, int) {
	positions := x.byID[id]
	if len(positions) == 0 {
		return Node{}, 0
	}
	return x.nodes[positions[0]], len(positions)
}

// DuplicateIDs returns ids used by more than one node, in first-seen order.
func (x *Index) DuplicateIDs() []string {
	var dups []string
	for _, id := range x.order {
		if len(x.byID[id]) > 1 {
			dups = append(dups, id)
		}
	}
	return dups
}

// ResolveGuards follows the endpoint's source edge and returns the guards it
// must run, in order. An unset or dangling source, or a source that is not a
// middleware node, yields no guards. A source shared by several nodes is an
// *AmbiguousSourceError.
func (x *Index) ResolveGuards(endpoint Node, policy GuardPolicy) ([]ir.Guard, error) {
	if endpoint.Source == "" {
		return nil, nil
	}
	src, count := x.Lookup(endpoint.Source)
	switch {
	case count == 0:
		return nil, nil
	case count > 1:
		return nil, &AmbiguousSourceError{
			NodeID:  endpoint.ID,
			Source:  endpoint.Source,
			Matches: count,
		}
	}
	return src.Guards(policy), nil
}

// ResolveGuards resolves the guards of one endpoint with the exclusive
// policy. Callers resolving many endpoints should build an Index once.
func ResolveGuards(nodes []Node, endpoint Node) ([]ir.Guard, error) {
	return NewIndex(nodes).ResolveGuards(endpoint, PolicyExclusive)
}
