// Package gram computes Gram matrices of convolutional feature maps, the
// channel-correlation statistics used as style targets in neural style
// transfer.
//
// Feature tensors are channels-last: (B, H, W, C), or (H, W, C) for a single
// sample. The result holds one (C, C) matrix per batch element:
//
//	G[b, c, d] = sum over (i, j) of x[b, i, j, c] * x[b, i, j, d]
//
// optionally divided by H*W.
package gram

import (
	"fmt"

	"github.com/syfxie/Blend/internal/tensor"
)

const (
	layoutBatched   = "(B, H, W, C)"
	layoutUnbatched = "(H, W, C)"
	layoutAny       = layoutBatched + " or " + layoutUnbatched
)

// FusedBackend is implemented by backends with a fused Gram kernel.
// Backends without it fall back to Transpose followed by BatchMatMul.
type FusedBackend interface {
	// Gram maps [B, N, C] to [B, C, C] with out[b,i,j] = sum_n x[b,n,i]*x[b,n,j].
	Gram(x *tensor.RawTensor) *tensor.RawTensor
}

// Normalized returns the Gram matrices of a batched feature tensor, divided
// by the number of spatial positions.
//
// x must be (B, H, W, C); the result is (B, C, C).
//
// Example:
//
//	x := tensor.Randn[float32](tensor.Shape{1, 64, 64, 128}, rng, backend)
//	g, err := gram.Normalized(x) // Shape: [1, 128, 128]
func Normalized[T tensor.Float, B tensor.Backend](x *tensor.Tensor[T, B]) (*tensor.Tensor[T, B], error) {
	const op = "gram.Normalized"
	if x == nil {
		return nil, errNil(op)
	}
	if x.Shape().Rank() != 4 {
		return nil, &ShapeError{Op: op, Shape: x.Shape(), Want: layoutBatched}
	}
	raw, err := compute(op, x.Backend(), x.Raw(), DefaultConfig())
	if err != nil {
		return nil, err
	}
	return tensor.New[T, B](raw, x.Backend()), nil
}

// Flatten returns the unnormalized Gram matrix of a single feature map.
//
// x must be (H, W, C). It is flattened to F = (C, H*W), one row per channel,
// and the result F·Fᵀ is returned with a leading batch axis: (1, C, C).
func Flatten[T tensor.Float, B tensor.Backend](x *tensor.Tensor[T, B]) (*tensor.Tensor[T, B], error) {
	const op = "gram.Flatten"
	if x == nil {
		return nil, errNil(op)
	}
	shape := x.Shape()
	if shape.Rank() != 3 {
		return nil, &ShapeError{Op: op, Shape: shape, Want: layoutUnbatched}
	}
	if err := checkInput(op, x.Raw()); err != nil {
		return nil, err
	}

	b := x.Backend()
	h, w, c := shape[0], shape[1], shape[2]

	// Channels-last memory cannot be read as (C, H*W) directly; go through
	// (H*W, C) and transpose.
	spatial, err := reshape(op, b, x.Raw(), tensor.Shape{h * w, c})
	if err != nil {
		return nil, err
	}
	f := b.Transpose(spatial, 1, 0)
	g := b.MatMul(f, spatial)

	return tensor.New[T, B](b.Unsqueeze(g, 0), b), nil
}

// Compute returns per-batch Gram matrices for x under cfg.
//
// x may be (B, H, W, C) or (H, W, C); an unbatched input is treated as a
// batch of one. The result is (B, C, C).
func Compute[T tensor.Float, B tensor.Backend](x *tensor.Tensor[T, B], cfg Config) (*tensor.Tensor[T, B], error) {
	const op = "gram.Compute"
	if x == nil {
		return nil, errNil(op)
	}
	raw, err := compute(op, x.Backend(), x.Raw(), cfg)
	if err != nil {
		return nil, err
	}
	return tensor.New[T, B](raw, x.Backend()), nil
}

// ComputeRaw is Compute for runtime-typed tensors. It returns a *TypeError
// when x is not float32 or float64.
func ComputeRaw(b tensor.Backend, x *tensor.RawTensor, cfg Config) (*tensor.RawTensor, error) {
	return compute("gram.ComputeRaw", b, x, cfg)
}

func compute(op string, b tensor.Backend, x *tensor.RawTensor, cfg Config) (*tensor.RawTensor, error) {
	if err := checkInput(op, x); err != nil {
		return nil, err
	}

	log := cfg.logger().With("op", op, "backend", b.Name())
	log.Debug("gram input", "shape", x.Shape(), "dtype", x.DType())

	shape := x.Shape()
	var batch, h, w, c int
	switch shape.Rank() {
	case 3:
		batch, h, w, c = 1, shape[0], shape[1], shape[2]
	case 4:
		batch, h, w, c = shape[0], shape[1], shape[2], shape[3]
	default:
		return nil, &ShapeError{Op: op, Shape: shape, Want: layoutAny}
	}

	flat, err := reshape(op, b, x, tensor.Shape{batch, h * w, c})
	if err != nil {
		return nil, err
	}
	log.Debug("gram flattened", "shape", flat.Shape())

	var g *tensor.RawTensor
	if gb, ok := b.(FusedBackend); ok {
		g = gb.Gram(flat)
	} else {
		g = b.BatchMatMul(b.Transpose(flat, 0, 2, 1), flat)
	}

	if cfg.Normalize {
		g = b.DivScalar(g, spatialSize(x.DType(), h*w))
	}
	log.Debug("gram result", "shape", g.Shape(), "normalized", cfg.Normalize)

	return g, nil
}

// checkInput rejects non-float dtypes and non-positive dimensions.
func checkInput(op string, x *tensor.RawTensor) error {
	if x == nil {
		return errNil(op)
	}
	if !x.DType().IsFloat() {
		return &TypeError{Op: op, DType: x.DType()}
	}
	if err := x.Shape().Validate(); err != nil {
		return &ShapeError{Op: op, Shape: x.Shape(), Want: "positive dimensions"}
	}
	return nil
}

func errNil(op string) error {
	return fmt.Errorf("%s: nil tensor: %w", op, ErrShape)
}

// reshape checks the element count before handing off to the backend, which
// panics on a mismatch.
func reshape(op string, b tensor.Backend, x *tensor.RawTensor, shape tensor.Shape) (*tensor.RawTensor, error) {
	if shape.NumElements() != x.NumElements() {
		return nil, &ShapeError{
			Op:    op,
			Shape: x.Shape(),
			Want:  fmt.Sprintf("%d elements to reshape to %v", shape.NumElements(), shape),
		}
	}
	return b.Reshape(x, shape), nil
}

// spatialSize returns n as a scalar of the given dtype.
func spatialSize(dtype tensor.DataType, n int) any {
	if dtype == tensor.Float32 {
		return float32(n)
	}
	return float64(n)
}
