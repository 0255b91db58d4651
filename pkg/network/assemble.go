package network

import (
	"fmt"

	"github.com/matzehuels/prodnet/pkg/errors"
	"github.com/matzehuels/prodnet/pkg/iotable"
)

// Stage names reported on failure.
const (
	StageUpstreamness = "upstreamness"
	StageAssemble     = "assemble"
)

// Build runs upstreamness, share construction, relevance filtering, top-k
// selection and assembly over a sanitized table.
func Build(t *iotable.Table, p Params) (*Network, error) {
	if p.TopK <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "top-k must be positive, got %d", p.TopK)
	}
	if err := errors.ValidateThreshold(p.Threshold); err != nil {
		return nil, err
	}
	if t.Len() == 0 {
		return &Network{}, nil
	}

	u, err := Upstreamness(t, p.ConditionCap)
	if err != nil {
		return nil, errors.AtStage(StageUpstreamness, err)
	}
	nodes := make([]Industry, t.Len())
	for i, code := range t.Codes {
		nodes[i] = Industry{
			Code:         code,
			Name:         t.Names[i],
			Upstreamness: round(u[i], UpstreamnessDecimals),
		}
	}

	in := InputShares(t)
	outShares := OutputShares(t)
	filtered := FilterMagnitudes(t.Flow, RelevanceMask(in, p.Threshold))

	suppliers := SelectSuppliers(filtered, in, t.Codes, p.TopK)
	customers := SelectCustomers(filtered, outShares, t.Codes, p.TopK)

	net, err := Assemble(nodes, suppliers, customers)
	if err != nil {
		return nil, errors.AtStage(StageAssemble, err)
	}
	return net, nil
}

// Assemble merges nodes with their supplier and customer lists.
//
// All three inputs must follow the same canonical order, and every edge must
// point at a known industry other than its owner; otherwise Assemble fails
// with INCONSISTENT_INDEX.
func Assemble(nodes []Industry, suppliers, customers []EdgeList) (*Network, error) {
	idx := make(map[string]int, len(nodes))
	for i, n := range nodes {
		if _, dup := idx[n.Code]; dup {
			return nil, errors.New(errors.ErrCodeInconsistentIndex, "duplicate node %q", n.Code)
		}
		idx[n.Code] = i
	}

	check := func(kind string, lists []EdgeList) error {
		if len(lists) != len(nodes) {
			return errors.New(errors.ErrCodeInconsistentIndex, "%d %s lists for %d nodes", len(lists), kind, len(nodes))
		}
		for i, l := range lists {
			if l.Code != nodes[i].Code {
				return errors.New(errors.ErrCodeInconsistentIndex,
					"%s list %d is for %q, want %q", kind, i, l.Code, nodes[i].Code)
			}
			for _, e := range l.Edges {
				if _, ok := idx[e.Code]; !ok {
					return errors.New(errors.ErrCodeInconsistentIndex, "%s of %q: unknown industry %q", kind, l.Code, e.Code)
				}
				if e.Code == l.Code {
					return errors.New(errors.ErrCodeInconsistentIndex, "%s of %q: self-loop", kind, l.Code)
				}
			}
		}
		return nil
	}
	if err := check("supplier", suppliers); err != nil {
		return nil, err
	}
	if err := check("customer", customers); err != nil {
		return nil, err
	}

	return &Network{
		Nodes:     append([]Industry(nil), nodes...),
		Suppliers: cloneLists(suppliers),
		Customers: cloneLists(customers),
	}, nil
}

func cloneLists(lists []EdgeList) []EdgeList {
	out := make([]EdgeList, len(lists))
	for i, l := range lists {
		out[i] = EdgeList{Code: l.Code, Edges: append([]Edge{}, l.Edges...)}
	}
	return out
}

// String summarizes the network for logs.
func (n *Network) String() string {
	s, c := n.EdgeCounts()
	return fmt.Sprintf("network(%d industries, %d supplier edges, %d customer edges)", n.Len(), s, c)
}
