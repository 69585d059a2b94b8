// Copyright 2026 The Blend Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package gram

import (
	"github.com/syfxie/Blend/internal/gram"
	"github.com/syfxie/Blend/tensor"
	"gonum.org/v1/gonum/mat"
)

// Config controls Compute.
type Config = gram.Config

// DefaultConfig returns a normalizing config with logging disabled.
func DefaultConfig() Config {
	return gram.DefaultConfig()
}

// FusedBackend is implemented by backends with a fused Gram kernel.
// The CPU backend implements it.
type FusedBackend = gram.FusedBackend

// ShapeError reports an input whose rank or dimensions do not fit.
type ShapeError = gram.ShapeError

// TypeError reports a tensor that is not float32 or float64.
type TypeError = gram.TypeError

// Common errors.
var (
	ErrShape = gram.ErrShape
	ErrType  = gram.ErrType
)

// Normalized returns the Gram matrices of a (B, H, W, C) tensor divided by H*W.
// The result is (B, C, C).
func Normalized[T tensor.Float, B tensor.Backend](x *tensor.Tensor[T, B]) (*tensor.Tensor[T, B], error) {
	return gram.Normalized(x)
}

// Flatten returns the unnormalized Gram matrix of a (H, W, C) tensor as (1, C, C).
func Flatten[T tensor.Float, B tensor.Backend](x *tensor.Tensor[T, B]) (*tensor.Tensor[T, B], error) {
	return gram.Flatten(x)
}

// Compute returns per-batch Gram matrices of a (B, H, W, C) or (H, W, C)
// tensor under cfg.
func Compute[T tensor.Float, B tensor.Backend](x *tensor.Tensor[T, B], cfg Config) (*tensor.Tensor[T, B], error) {
	return gram.Compute(x, cfg)
}

// ComputeRaw is Compute for runtime-typed tensors.
func ComputeRaw(b tensor.Backend, x *tensor.RawTensor, cfg Config) (*tensor.RawTensor, error) {
	return gram.ComputeRaw(b, x, cfg)
}

// SymDense copies batch element b of a (B, C, C) Gram tensor into a gonum
// symmetric matrix.
func SymDense[T tensor.Float, B tensor.Backend](g *tensor.Tensor[T, B], b int) (*mat.SymDense, error) {
	return gram.SymDense(g, b)
}
