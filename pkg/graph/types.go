package graph

import (
	"github.com/matzehuels/prodnet/pkg/errors"
	"github.com/matzehuels/prodnet/pkg/network"
)

// SchemaVersion is the version of the document format written by this
// package. Readers reject any other version.
const SchemaVersion = 1

// Document is the canonical serialization format for production networks.
//
// The three collections are aligned by index: Suppliers[i] and Customers[i]
// describe Nodes[i]. Within a list, Percentages[k] belongs to the k-th code.
type Document struct {
	SchemaVersion int            `json:"schema_version"`
	Meta          *Meta          `json:"meta,omitempty"`
	Nodes         []Node         `json:"nodes"`
	Suppliers     []SupplierList `json:"suppliers"`
	Customers     []CustomerList `json:"customers"`
}

// Meta records how a document was produced. It carries no timestamps so
// that repeated runs produce identical bytes.
type Meta struct {
	Schema    string  `json:"schema,omitempty"`
	TableHash string  `json:"table_hash,omitempty"`
	Threshold float64 `json:"threshold"`
	TopK      int     `json:"top_k"`
}

// Node is one industry.
type Node struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Upstreamness float64 `json:"upstreamness"`
}

// SupplierList holds the suppliers of one industry and their input shares.
type SupplierList struct {
	ID          string    `json:"id"`
	Suppliers   []string  `json:"suppliers"`
	Percentages []float64 `json:"percentages"`
}

// CustomerList holds the customers of one industry and their output shares.
type CustomerList struct {
	ID          string    `json:"id"`
	Customers   []string  `json:"customers"`
	Percentages []float64 `json:"percentages"`
}

// FromNetwork converts a network to its serialization format. meta may be
// nil.
func FromNetwork(n *network.Network, meta *Meta) Document {
	doc := Document{
		SchemaVersion: SchemaVersion,
		Meta:          meta,
		Nodes:         make([]Node, len(n.Nodes)),
		Suppliers:     make([]SupplierList, len(n.Suppliers)),
		Customers:     make([]CustomerList, len(n.Customers)),
	}
	for i, node := range n.Nodes {
		doc.Nodes[i] = Node{ID: node.Code, Name: node.Name, Upstreamness: node.Upstreamness}
	}
	for i, l := range n.Suppliers {
		doc.Suppliers[i] = SupplierList{ID: l.Code, Suppliers: l.Codes(), Percentages: l.Shares()}
	}
	for i, l := range n.Customers {
		doc.Customers[i] = CustomerList{ID: l.Code, Customers: l.Codes(), Percentages: l.Shares()}
	}
	return doc
}

// ToNetwork converts a document back to a network.
// Returns INVALID_FORMAT for an unknown schema version and
// INCONSISTENT_INDEX when the collections are not aligned.
func ToNetwork(doc Document) (*network.Network, error) {
	if doc.SchemaVersion != SchemaVersion {
		return nil, errors.New(errors.ErrCodeInvalidFormat,
			"unsupported schema_version %d, want %d", doc.SchemaVersion, SchemaVersion)
	}

	nodes := make([]network.Industry, len(doc.Nodes))
	for i, n := range doc.Nodes {
		nodes[i] = network.Industry{Code: n.ID, Name: n.Name, Upstreamness: n.Upstreamness}
	}

	suppliers := make([]network.EdgeList, len(doc.Suppliers))
	for i, l := range doc.Suppliers {
		edges, err := zipEdges(l.ID, "suppliers", l.Suppliers, l.Percentages)
		if err != nil {
			return nil, err
		}
		suppliers[i] = network.EdgeList{Code: l.ID, Edges: edges}
	}

	customers := make([]network.EdgeList, len(doc.Customers))
	for i, l := range doc.Customers {
		edges, err := zipEdges(l.ID, "customers", l.Customers, l.Percentages)
		if err != nil {
			return nil, err
		}
		customers[i] = network.EdgeList{Code: l.ID, Edges: edges}
	}

	return network.Assemble(nodes, suppliers, customers)
}

func zipEdges(id, kind string, codes []string, shares []float64) ([]network.Edge, error) {
	if len(codes) != len(shares) {
		return nil, errors.New(errors.ErrCodeInconsistentIndex,
			"%s of %q: %d codes but %d percentages", kind, id, len(codes), len(shares))
	}
	edges := make([]network.Edge, len(codes))
	for k, c := range codes {
		edges[k] = network.Edge{Code: c, Share: shares[k]}
	}
	return edges, nil
}
