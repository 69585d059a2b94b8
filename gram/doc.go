// Copyright 2026 The Blend Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package gram computes Gram matrices of convolutional feature maps.
//
// # Overview
//
// A Gram matrix holds the pairwise inner products between the channels of a
// feature map, summed over every spatial position. Neural style transfer uses
// it as the style target of a layer.
//
// Feature tensors are channels-last:
//   - (B, H, W, C) for a batch
//   - (H, W, C) for a single feature map
//
// Results are always (B, C, C); an unbatched input yields (1, C, C).
//
// # Variants
//
//   - Normalized: batched input, entries divided by H*W
//   - Flatten: single feature map, raw sums via F·Fᵀ with F = (C, H*W)
//   - Compute: either rank, normalization chosen by Config
//
// # Basic Usage
//
//	backend := cpu.New()
//	x, _ := tensor.FromSlice(data, tensor.Shape{1, 2, 2, 2}, backend)
//	g, err := gram.Normalized(x)
//	if err != nil {
//	    return err
//	}
//	sym, _ := gram.SymDense(g, 0) // *mat.SymDense for gonum
//
// # Errors
//
// Every error wraps ErrShape or ErrType. Use errors.As with *ShapeError or
// *TypeError for details.
package gram
