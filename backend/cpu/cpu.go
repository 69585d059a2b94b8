// Copyright 2026 The Blend Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package cpu

import (
	internalcpu "github.com/syfxie/Blend/internal/backend/cpu"
	"github.com/syfxie/Blend/internal/parallel"
	"github.com/syfxie/Blend/tensor"
)

// Backend represents the CPU backend implementation.
//
// CPU backend provides pure Go implementations of the tensor operations Gram
// computations need, plus a fused symmetric Gram kernel.
type Backend = internalcpu.CPUBackend

// Compile-time check that Backend implements tensor.Backend.
var _ tensor.Backend = (*Backend)(nil)

// ParallelConfig controls how batched kernels fan out across goroutines.
type ParallelConfig = parallel.Config

// New creates a new CPU backend.
//
// Example:
//
//	import (
//	    "github.com/syfxie/Blend/backend/cpu"
//	    "github.com/syfxie/Blend/tensor"
//	)
//
//	func main() {
//	    backend := cpu.New()
//	    x := tensor.Zeros[float32](tensor.Shape{2, 3}, backend)
//	}
func New() *Backend {
	return internalcpu.New()
}

// NewWithConfig creates a CPU backend with an explicit parallelism config.
//
//	backend := cpu.NewWithConfig(cpu.Sequential())
func NewWithConfig(cfg ParallelConfig) *Backend {
	return internalcpu.NewWithConfig(cfg)
}

// DefaultParallelConfig returns the config New uses: one worker per CPU.
func DefaultParallelConfig() ParallelConfig {
	return parallel.DefaultConfig()
}

// Sequential returns a config that runs every kernel on the calling goroutine.
func Sequential() ParallelConfig {
	return parallel.Sequential()
}
