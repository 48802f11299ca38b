// Package domain defines the core business entities for neuralmap.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - NeuralFile: A project file handed to the graph builder
//   - NeuralNode / NeuralEdge: The typed graph derived from a file list
//   - NeuralGraph: The serialised graph document (version 2.0)
//   - SimNode / SimLink: Simulation snapshots of nodes and links
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
