// Copyright 2026 The Blend Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/syfxie/Blend/backend/cpu"
	"github.com/syfxie/Blend/tensor"
)

// TestBackendInterface verifies that the CPU backend implements tensor.Backend.
func TestBackendInterface(_ *testing.T) {
	var _ tensor.Backend = cpu.New()
}

func TestRawTensorAPI(t *testing.T) {
	raw, err := tensor.NewRaw(tensor.Shape{2, 3}, tensor.Float32, tensor.CPU)
	require.NoError(t, err)

	assert.Equal(t, tensor.Shape{2, 3}, raw.Shape())
	assert.Equal(t, tensor.Float32, raw.DType())
	assert.Equal(t, tensor.CPU, raw.Device())
	assert.Equal(t, 6, raw.NumElements())
	assert.Equal(t, 24, raw.ByteSize())
	assert.Len(t, raw.AsFloat32(), 6)
}

func TestFromSliceErrors(t *testing.T) {
	backend := cpu.New()

	_, err := tensor.FromSlice([]float32{1, 2, 3}, tensor.Shape{2, 2}, backend)
	assert.ErrorIs(t, err, tensor.ErrShapeMismatch)

	_, err = tensor.NewRaw(tensor.Shape{-1}, tensor.Float64, tensor.CPU)
	assert.ErrorIs(t, err, tensor.ErrInvalidShape)
}

func TestFlattenChannelsLast(t *testing.T) {
	backend := cpu.New()

	// (H=1, W=2, C=3): positions hold [0 1 2] and [3 4 5].
	x, err := tensor.FromSlice([]float64{0, 1, 2, 3, 4, 5}, tensor.Shape{1, 2, 3}, backend)
	require.NoError(t, err)

	f := x.Reshape(2, 3).T()
	assert.Equal(t, tensor.Shape{3, 2}, f.Shape())
	assert.Equal(t, []float64{0, 3, 1, 4, 2, 5}, f.Data(), "one row per channel")

	g := f.MatMul(f.T())
	assert.Equal(t, []float64{9, 12, 15, 12, 17, 22, 15, 22, 29}, g.Data())
}

func TestNewWrapsRaw(t *testing.T) {
	backend := cpu.New()
	raw, err := tensor.NewRaw(tensor.Shape{2}, tensor.Float64, tensor.CPU)
	require.NoError(t, err)
	raw.AsFloat64()[1] = 7

	x := tensor.New[float64](raw, backend)
	assert.Equal(t, 7.0, x.At(1))
	assert.Same(t, raw, x.Raw())
}
