package pipeline

import (
	"context"

	"github.com/matzehuels/prodnet/pkg/errors"
	"github.com/matzehuels/prodnet/pkg/graph"
	"github.com/matzehuels/prodnet/pkg/network"
)

// DOT returns the Graphviz source for net under opts: the whole network, or
// the neighbourhood of opts.Focus.
func DOT(net *network.Network, opts RenderOptions) (string, error) {
	if opts.Focus == "" {
		return graph.ToDOT(net, graph.DOTOptions{Direction: opts.Direction, Detailed: opts.Detailed}), nil
	}
	nb, err := net.Neighborhood(opts.Focus)
	if err != nil {
		return "", err
	}
	return graph.NeighborhoodDOT(nb), nil
}

func render(ctx context.Context, net *network.Network, netData []byte, opts RenderOptions) ([]byte, error) {
	if opts.Format == FormatJSON && opts.Focus == "" {
		return netData, nil
	}
	if opts.Format == FormatJSON {
		return nil, errors.New(errors.ErrCodeUnsupported, "json output is not available for a single neighbourhood")
	}

	dot, err := DOT(net, opts)
	if err != nil {
		return nil, err
	}
	switch opts.Format {
	case FormatDOT:
		return []byte(dot), nil
	case FormatSVG:
		return graph.RenderSVG(ctx, dot)
	default:
		return nil, ValidateFormat(opts.Format)
	}
}
