// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package x509chain implements canonical ordering of [X.509] certificate sets
// for pinning. It provides capabilities to:
//   - Sort an unordered certificate set into a root-first chain using
//     subject/issuer name linkage.
//   - Extract the (root, pinned) pair that a pinned connection must match.
//   - Fetch the chain presented by a remote TLS endpoint.
//   - Render sorted chains as markdown tables or ASCII trees.
//
// Sorting is strict by design: a set whose path is broken, or where two
// certificates continue the same link, is rejected instead of repaired. A
// chain with two candidates for one position is exactly the situation pinning
// exists to detect.
//
// [X.509]: https://grokipedia.com/page/X.509
package x509chain
