// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package gc provides buffer pooling helpers that reduce garbage collection
// overhead for I/O operations. It wraps [github.com/valyala/bytebufferpool]
// behind small interfaces so callers never depend on the pool implementation
// directly. The pinner uses it when reading certificate bundles from disk.
package gc
