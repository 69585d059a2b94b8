// Copyright 2026 The Blend Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides a pure Go CPU backend for tensor operations.
//
// # Overview
//
// This package implements a CPU backend with:
//   - Pure Go implementation (no CGO)
//   - Float32 and Float64 support
//   - Batched matrix multiplication split across goroutines
//   - A fused Gram kernel that computes only the upper triangle
//
// # Basic Usage
//
//	import (
//	    "github.com/syfxie/Blend/backend/cpu"
//	    "github.com/syfxie/Blend/gram"
//	    "github.com/syfxie/Blend/tensor"
//	)
//
//	func main() {
//	    backend := cpu.New()
//	    x := tensor.Zeros[float32](tensor.Shape{1, 32, 32, 64}, backend)
//	    g, err := gram.Normalized(x) // Shape: [1, 64, 64]
//	}
//
// # Parallelism
//
// Batched kernels distribute (batch, row) pairs over a worker pool sized by
// ParallelConfig. Use NewWithConfig(Sequential()) to keep everything on the
// calling goroutine.
//
// # Thread Safety
//
// A Backend holds no mutable state and may be shared between goroutines.
package cpu
