// Package pkg provides the core libraries for prodnet production networks.
//
// # Overview
//
// prodnet turns a national input-output use table into a production
// network: one node per industry carrying its upstreamness, and for every
// industry a short list of its most important suppliers and customers. The
// pkg directory is organized into four areas:
//
//  1. [schema] and [iotable] - the canonical table layout, loading and sanitizing
//  2. [network] - the numerical core (Leontief upstreamness, shares, filtering, top-k)
//  3. [graph] - JSON documents and DOT/SVG drawings of a network
//  4. [pipeline] - orchestration with caching ([cache]) and stage hooks ([observability])
//
// # Architecture
//
// The typical data flow:
//
//	use table (.xlsx / .csv)
//	         ↓
//	    [iotable] Load + Sanitize against a [schema]
//	         ↓
//	    [network] Build (upstreamness, shares, relevance, top-k, assemble)
//	         ↓
//	    [graph] JSON document, DOT, SVG
//
// # Quick Start
//
//	raw, err := iotable.Load("use.xlsx", schema.Default().Layout)
//	if err != nil {
//	    return err
//	}
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil, nil)
//	result, err := runner.Execute(ctx, raw, schema.Default(), pipeline.Options{Threshold: 0.05})
//	if err != nil {
//	    return err
//	}
//	return graph.WriteNetworkFile(result.Network, result.Meta(), "network.json")
//
// Errors carry a code from [errors] and, when raised inside the pipeline,
// the stage that failed.
//
// [schema]: https://pkg.go.dev/github.com/matzehuels/prodnet/pkg/schema
// [iotable]: https://pkg.go.dev/github.com/matzehuels/prodnet/pkg/iotable
// [network]: https://pkg.go.dev/github.com/matzehuels/prodnet/pkg/network
// [graph]: https://pkg.go.dev/github.com/matzehuels/prodnet/pkg/graph
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/prodnet/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/prodnet/pkg/cache
// [observability]: https://pkg.go.dev/github.com/matzehuels/prodnet/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/prodnet/pkg/errors
package pkg
