package network

// Defaults for [Params].
const (
	// DefaultTopK is the number of suppliers and customers kept per industry.
	DefaultTopK = 5

	// DefaultConditionCap is the largest 1-norm condition number of (I - A)
	// accepted before the inversion is declared singular.
	DefaultConditionCap = 1e12

	// DefaultThreshold keeps every flow with a non-zero input share.
	DefaultThreshold = 0.0
)

// Rounding applied to exported values.
const (
	UpstreamnessDecimals = 2
	ShareDecimals        = 3
)

// Params controls a single network build. The zero value is not useful;
// start from [DefaultParams].
type Params struct {
	// Threshold is the minimum input share, in [0, 1], for a flow to count
	// as material.
	Threshold float64
	// TopK bounds each supplier and customer list.
	TopK int
	// ConditionCap bounds cond(I - A); see [DefaultConditionCap].
	ConditionCap float64
}

// DefaultParams returns the parameters used by the original network:
// threshold 0, top 5, condition cap 1e12.
func DefaultParams() Params {
	return Params{
		Threshold:    DefaultThreshold,
		TopK:         DefaultTopK,
		ConditionCap: DefaultConditionCap,
	}
}

// Industry is a node of the production network.
type Industry struct {
	Code string
	Name string
	// Upstreamness is rounded to [UpstreamnessDecimals].
	Upstreamness float64
}

// Edge is one entry of a supplier or customer list. Share is the input
// share (suppliers) or output share (customers), rounded to
// [ShareDecimals].
type Edge struct {
	Code  string
	Share float64
}

// EdgeList holds the selected partners of one industry in canonical order.
type EdgeList struct {
	Code  string
	Edges []Edge
}

// Codes returns the partner codes in list order.
func (l EdgeList) Codes() []string {
	out := make([]string, len(l.Edges))
	for i, e := range l.Edges {
		out[i] = e.Code
	}
	return out
}

// Shares returns the partner shares in list order.
func (l EdgeList) Shares() []float64 {
	out := make([]float64, len(l.Edges))
	for i, e := range l.Edges {
		out[i] = e.Share
	}
	return out
}

// Network is the production network: nodes in canonical industry order and,
// aligned by index, each node's supplier and customer lists.
type Network struct {
	Nodes     []Industry
	Suppliers []EdgeList
	Customers []EdgeList
}

// Len returns the number of industries.
func (n *Network) Len() int { return len(n.Nodes) }

// Index maps each industry code to its position.
func (n *Network) Index() map[string]int {
	idx := make(map[string]int, len(n.Nodes))
	for i, node := range n.Nodes {
		idx[node.Code] = i
	}
	return idx
}

// Node returns the industry with the given code.
func (n *Network) Node(code string) (Industry, bool) {
	for _, node := range n.Nodes {
		if node.Code == code {
			return node, true
		}
	}
	return Industry{}, false
}

// EdgeCounts returns the total number of supplier and customer edges.
func (n *Network) EdgeCounts() (suppliers, customers int) {
	for _, l := range n.Suppliers {
		suppliers += len(l.Edges)
	}
	for _, l := range n.Customers {
		customers += len(l.Edges)
	}
	return suppliers, customers
}
