// Copyright 2026 The Blend Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the tensor types Blend's Gram computations run on.
//
// # Overview
//
// This package exposes:
//   - Generic type-safe tensors (Tensor[T, B])
//   - RawTensor, the runtime-typed representation backends operate on
//   - The Backend interface implemented by backend/cpu
//   - Shape, DataType and Device definitions
//
// # Basic Usage
//
//	import (
//	    "github.com/syfxie/Blend/backend/cpu"
//	    "github.com/syfxie/Blend/tensor"
//	)
//
//	func main() {
//	    backend := cpu.New()
//
//	    x := tensor.Zeros[float32](tensor.Shape{1, 32, 32, 64}, backend)
//	    f := x.Reshape(32*32, 64).T() // Shape: [64, 1024]
//	    g := f.MatMul(f.T())          // Shape: [64, 64]
//	}
//
// # Layout
//
// Tensors are dense and row-major. Feature maps are channels-last:
// (batch, height, width, channel).
//
// # Supported Data Types
//
// Tensors may hold float32, float64, int32, int64, uint8 or bool. Gram
// matrices are defined for the Float subset (float32, float64) only.
package tensor
