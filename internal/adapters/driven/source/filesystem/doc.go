// Package filesystem produces NeuralFiles from a local project directory
// and watches it for changes.
//
// Paths are slash-separated and prefixed with the project directory's name,
// so "~/code/shop/src/app.ts" scanned from "~/code/shop" becomes
// "shop/src/app.ts". Hidden entries and dependency or build output
// directories are skipped.
package filesystem
