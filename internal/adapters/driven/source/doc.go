// Package source provides the shared pieces of the NeuralFile producers:
// a Router that dispatches a location to the first source that accepts it,
// and the skip rules every source applies.
//
// Implementations live in sub-packages:
//   - filesystem: local project directories, plus a change Watcher
//   - github: repositories addressed as github://owner/repo[@ref]
package source
