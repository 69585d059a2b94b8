package cpu

import (
	"fmt"

	"github.com/syfxie/Blend/internal/parallel"
	"github.com/syfxie/Blend/internal/tensor"
)

// Gram computes per-batch channel correlations of a flattened feature tensor.
//
// Input is [B, N, C] (N spatial positions, C channels); output is [B, C, C]
// with out[b, i, j] = sum_n x[b, n, i] * x[b, n, j]. Only the upper triangle
// is accumulated and then mirrored, so the result is exactly symmetric.
//
// Work is split by output row, so per-unit cost is uneven: row i computes
// c-i entries.
func (cpu *CPUBackend) Gram(x *tensor.RawTensor) *tensor.RawTensor {
	shape := x.Shape()
	if len(shape) != 3 {
		panic(fmt.Sprintf("gram: input must be 3D [B, N, C], got %dD", len(shape)))
	}
	batch, n, c := shape[0], shape[1], shape[2]

	result, err := tensor.NewRaw(tensor.Shape{batch, c, c}, x.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("gram: failed to create result tensor: %v", err))
	}

	switch x.DType() {
	case tensor.Float32:
		gram(result.AsFloat32(), x.AsFloat32(), batch, n, c, cpu.parallel)
	case tensor.Float64:
		gram(result.AsFloat64(), x.AsFloat64(), batch, n, c, cpu.parallel)
	default:
		panic(fmt.Sprintf("gram: unsupported dtype %s", x.DType()))
	}

	return result
}

// gram splits work by row: one unit per (batch, i) pair. The unit for row i
// writes out[i, j] and out[j, i] for j >= i only, so no two units touch the
// same element. Row i costs c-i dot products, so units near the top of the
// matrix carry more work than those near the bottom; chunks handed out by
// parallel.ForBatch are contiguous rows and inherit that imbalance.
func gram[T ~float32 | ~float64](dst, src []T, batch, n, c int, cfg parallel.Config) {
	parallel.ForBatch(batch, c, func(b, i int) {
		feat := src[b*n*c : (b+1)*n*c]
		out := dst[b*c*c : (b+1)*c*c]
		for j := i; j < c; j++ {
			var sum T
			for k := 0; k < n; k++ {
				sum += feat[k*c+i] * feat[k*c+j]
			}
			out[i*c+j] = sum
			out[j*c+i] = sum
		}
	}, cfg)
}
