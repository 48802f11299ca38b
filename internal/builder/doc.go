// Package builder turns a flat list of project files into a typed graph.
//
// The graph has one project root, folder nodes mirroring the directory
// structure, one node per file, and three edge kinds: parent_child
// containment, imports resolved from import statements, and semantic
// co-references inferred from shared HTML/CSS selectors.
//
// Import and selector detection are regular-expression heuristics, not
// parsers. A class name that happens to appear in unrelated code text still
// counts as a reference.
//
// Build is a pure function of its input apart from generated ids and
// timestamps, which are injectable through Options. Handle wraps it in the
// request/response message shape used across the worker boundary.
package builder
