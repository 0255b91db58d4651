package network

import (
	"github.com/matzehuels/prodnet/pkg/errors"
)

// Neighbor is an industry adjacent to a focus industry.
type Neighbor struct {
	Industry
	// InputShare is the neighbour's share of the focus industry's
	// intermediate inputs (0 if it is not a supplier).
	InputShare float64
	// OutputShare is the neighbour's share of the focus industry's
	// intermediate sales (0 if it is not a customer).
	OutputShare float64
}

// Neighborhood groups the partners of one focus industry. An industry that
// is both a supplier and a customer appears only in Both.
type Neighborhood struct {
	Focus     Industry
	Suppliers []Neighbor
	Customers []Neighbor
	Both      []Neighbor
}

// Neighborhood returns the first-degree neighbourhood of code.
// It fails with NOT_FOUND for an unknown code.
func (n *Network) Neighborhood(code string) (*Neighborhood, error) {
	idx := n.Index()
	i, ok := idx[code]
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "industry %q not in network", code)
	}

	sup := make(map[string]float64, len(n.Suppliers[i].Edges))
	for _, e := range n.Suppliers[i].Edges {
		sup[e.Code] = e.Share
	}
	cust := make(map[string]float64, len(n.Customers[i].Edges))
	for _, e := range n.Customers[i].Edges {
		cust[e.Code] = e.Share
	}

	nb := &Neighborhood{Focus: n.Nodes[i]}
	for _, e := range n.Suppliers[i].Edges {
		neighbor := Neighbor{Industry: n.Nodes[idx[e.Code]], InputShare: e.Share}
		if share, both := cust[e.Code]; both {
			neighbor.OutputShare = share
			nb.Both = append(nb.Both, neighbor)
			continue
		}
		nb.Suppliers = append(nb.Suppliers, neighbor)
	}
	for _, e := range n.Customers[i].Edges {
		if _, both := sup[e.Code]; both {
			continue
		}
		nb.Customers = append(nb.Customers, Neighbor{Industry: n.Nodes[idx[e.Code]], OutputShare: e.Share})
	}
	return nb, nil
}
