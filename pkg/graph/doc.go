// Package graph provides the serialization format for production networks
// and their Graphviz diagrams.
//
// # Document Format
//
// A network is written as one JSON document with three collections aligned
// by index:
//
//	{
//	  "schema_version": 1,
//	  "nodes": [{"id": "A", "name": "Farms", "upstreamness": 1.58}],
//	  "suppliers": [{"id": "A", "suppliers": ["B"], "percentages": [0.167]}],
//	  "customers": [{"id": "A", "customers": ["B"], "percentages": [0.833]}]
//	}
//
// Upstreamness carries two decimals and percentages three. The optional
// meta object records the schema scope, table hash, threshold and top-k
// used for the build. Documents with another schema_version are rejected.
//
// Common operations:
//
//	net, meta, _ := graph.ReadNetworkFile("network.json")
//	graph.WriteNetworkFile(net, meta, "copy.json")
//	data, _ := graph.MarshalNetwork(net, nil)
//
// # Diagrams
//
// [ToDOT] draws the whole network and [NeighborhoodDOT] one industry's
// neighbourhood. [RenderSVG] turns either into SVG with the embedded
// Graphviz build, so no system installation is needed.
package graph
