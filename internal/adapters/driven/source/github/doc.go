// Package github produces NeuralFiles from a GitHub repository.
//
// Locations have the form github://owner/repo or github://owner/repo@ref.
// Without a ref the repository's default branch is used. The whole tree is
// listed with one recursive call and text blobs are fetched in parallel,
// throttled by a token bucket that also honours GitHub's rate limit headers.
//
// Authentication is optional: an empty token gives anonymous access with
// GitHub's lower unauthenticated quota.
package github
