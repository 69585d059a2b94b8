package gram

import (
	"bytes"
	"errors"
	"log/slog"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/syfxie/Blend/internal/backend/cpu"
	"github.com/syfxie/Blend/internal/parallel"
	"github.com/syfxie/Blend/internal/tensor"
)

var _ FusedBackend = (*cpu.CPUBackend)(nil)

// exampleFeatures is a (1, 2, 2, 2) map whose channels are [1,0,0,1] and
// [0,1,1,0] over the four spatial positions.
var exampleFeatures = []float64{
	1, 0, 0, 1,
	0, 1, 1, 0,
}

func newBackends() map[string]tensor.Backend {
	return map[string]tensor.Backend{
		"cpu":            cpu.New(),
		"cpu/sequential": cpu.NewWithConfig(parallel.Sequential()),
		"mock":           tensor.NewMockBackend(),
	}
}

func TestNormalized_WorkedExample(t *testing.T) {
	for name, backend := range newBackends() {
		t.Run(name, func(t *testing.T) {
			x, err := tensor.FromSlice(exampleFeatures, tensor.Shape{1, 2, 2, 2}, backend)
			require.NoError(t, err)

			g, err := Normalized(x)
			require.NoError(t, err)

			assert.Equal(t, tensor.Shape{1, 2, 2}, g.Shape())
			assert.InDeltaSlice(t, []float64{0.5, 0, 0, 0.5}, g.Data(), 1e-12)
		})
	}
}

func TestFlatten_WorkedExample(t *testing.T) {
	for name, backend := range newBackends() {
		t.Run(name, func(t *testing.T) {
			x, err := tensor.FromSlice(exampleFeatures, tensor.Shape{2, 2, 2}, backend)
			require.NoError(t, err)

			g, err := Flatten(x)
			require.NoError(t, err)

			assert.Equal(t, tensor.Shape{1, 2, 2}, g.Shape())
			assert.InDeltaSlice(t, []float64{2, 0, 0, 2}, g.Data(), 1e-12)
		})
	}
}

func TestCompute_Symmetric(t *testing.T) {
	rng := rand.New(rand.NewSource(11))

	for name, backend := range newBackends() {
		t.Run(name, func(t *testing.T) {
			x := tensor.Randn[float32](tensor.Shape{3, 5, 4, 6}, rng, backend)

			g, err := Compute(x, DefaultConfig())
			require.NoError(t, err)
			require.Equal(t, tensor.Shape{3, 6, 6}, g.Shape())

			for b := 0; b < 3; b++ {
				for i := 0; i < 6; i++ {
					for j := 0; j < 6; j++ {
						assert.InDelta(t, g.At(b, i, j), g.At(b, j, i), 1e-6, "batch %d (%d,%d)", b, i, j)
					}
				}
			}
		})
	}
}

func TestCompute_ZeroInput(t *testing.T) {
	shapes := []tensor.Shape{
		{1, 1, 1, 1},
		{2, 3, 4, 5},
		{7, 2, 3},
	}

	for _, backend := range newBackends() {
		for _, shape := range shapes {
			for _, normalize := range []bool{true, false} {
				x := tensor.Zeros[float64](shape, backend)

				g, err := Compute(x, Config{Normalize: normalize})
				require.NoError(t, err)
				for i, v := range g.Data() {
					assert.Zero(t, v, "shape %v element %d", shape, i)
				}
			}
		}
	}
}

func TestNormalized_ConstantInput(t *testing.T) {
	tests := []struct {
		shape tensor.Shape
		value float64
	}{
		{tensor.Shape{1, 2, 2, 1}, 1},
		{tensor.Shape{1, 4, 3, 5}, 3},
		{tensor.Shape{1, 8, 8, 2}, -0.5},
		{tensor.Shape{1, 1, 7, 3}, 1.25},
	}

	for name, backend := range newBackends() {
		t.Run(name, func(t *testing.T) {
			for _, tt := range tests {
				x := tensor.Full[float64](tt.shape, tt.value, backend)

				g, err := Normalized(x)
				require.NoError(t, err)

				c := tt.shape[3]
				require.Equal(t, tensor.Shape{1, c, c}, g.Shape())
				for _, v := range g.Data() {
					assert.InDelta(t, tt.value*tt.value, v, 1e-12, "shape %v value %v", tt.shape, tt.value)
				}
			}
		})
	}
}

func TestCompute_DoublingScalesByFour(t *testing.T) {
	rng := rand.New(rand.NewSource(5))

	for name, backend := range newBackends() {
		t.Run(name, func(t *testing.T) {
			x := tensor.Randn[float64](tensor.Shape{2, 4, 4, 3}, rng, backend)
			doubled := x.MulScalar(2)

			for _, normalize := range []bool{true, false} {
				cfg := Config{Normalize: normalize}
				g, err := Compute(x, cfg)
				require.NoError(t, err)
				g2, err := Compute(doubled, cfg)
				require.NoError(t, err)

				want := g.MulScalar(4).Data()
				assert.Equal(t, want, g2.Data(), "normalize=%v", normalize)
			}
		})
	}
}

func TestNormalized_RejectsWrongRank(t *testing.T) {
	backend := cpu.New()

	for _, shape := range []tensor.Shape{{4, 4}, {2, 2, 2}, {1, 2, 2, 2, 1}} {
		x := tensor.Zeros[float32](shape, backend)

		g, err := Normalized(x)
		assert.Nil(t, g)
		require.Error(t, err)

		var se *ShapeError
		require.True(t, errors.As(err, &se), "shape %v", shape)
		assert.Equal(t, "gram.Normalized", se.Op)
		assert.Equal(t, shape, se.Shape)
		assert.ErrorIs(t, err, ErrShape)
	}
}

func TestFlatten_RejectsWrongRank(t *testing.T) {
	backend := cpu.New()

	for _, shape := range []tensor.Shape{{1, 2, 2, 2}, {4, 4}} {
		x := tensor.Zeros[float64](shape, backend)

		_, err := Flatten(x)
		var se *ShapeError
		require.ErrorAs(t, err, &se, "shape %v", shape)
		assert.Equal(t, "gram.Flatten", se.Op)
	}
}

func TestCompute_RejectsWrongRank(t *testing.T) {
	x := tensor.Zeros[float64](tensor.Shape{3, 3}, cpu.New())

	_, err := Compute(x, DefaultConfig())
	assert.ErrorIs(t, err, ErrShape)
	assert.Contains(t, err.Error(), "(B, H, W, C) or (H, W, C)")
}

func TestComputeRaw_RejectsNonFloat(t *testing.T) {
	backend := cpu.New()

	for _, dtype := range []tensor.DataType{tensor.Int32, tensor.Int64, tensor.Uint8, tensor.Bool} {
		raw, err := tensor.NewRaw(tensor.Shape{1, 2, 2, 3}, dtype, tensor.CPU)
		require.NoError(t, err)

		g, err := ComputeRaw(backend, raw, DefaultConfig())
		assert.Nil(t, g)

		var te *TypeError
		require.ErrorAs(t, err, &te, dtype.String())
		assert.Equal(t, dtype, te.DType)
		assert.ErrorIs(t, err, ErrType)
		assert.NotErrorIs(t, err, ErrShape)
	}
}

func TestComputeRaw_NilTensor(t *testing.T) {
	_, err := ComputeRaw(cpu.New(), nil, DefaultConfig())
	assert.ErrorIs(t, err, ErrShape)
}

func TestGenericEntries_NilTensor(t *testing.T) {
	var x *tensor.Tensor[float64, *cpu.CPUBackend]

	entries := map[string]func() (*tensor.Tensor[float64, *cpu.CPUBackend], error){
		"Normalized": func() (*tensor.Tensor[float64, *cpu.CPUBackend], error) { return Normalized(x) },
		"Flatten":    func() (*tensor.Tensor[float64, *cpu.CPUBackend], error) { return Flatten(x) },
		"Compute": func() (*tensor.Tensor[float64, *cpu.CPUBackend], error) {
			return Compute(x, DefaultConfig())
		},
	}

	for name, entry := range entries {
		t.Run(name, func(t *testing.T) {
			var (
				g   *tensor.Tensor[float64, *cpu.CPUBackend]
				err error
			)
			require.NotPanics(t, func() { g, err = entry() })
			assert.Nil(t, g)
			assert.ErrorIs(t, err, ErrShape)
			assert.Contains(t, err.Error(), "gram."+name+": nil tensor")
		})
	}
}

// activation is a named float type, as callers may define for feature maps.
type activation float32

func TestCompute_NamedFloatType(t *testing.T) {
	for name, backend := range newBackends() {
		t.Run(name, func(t *testing.T) {
			x, err := tensor.FromSlice([]activation{1, 0, 0, 1, 0, 1, 1, 0}, tensor.Shape{1, 2, 2, 2}, backend)
			require.NoError(t, err)
			assert.Equal(t, tensor.Float32, x.DType())

			var g *tensor.Tensor[activation, tensor.Backend]
			require.NotPanics(t, func() { g, err = Normalized(x) })
			require.NoError(t, err)
			assert.Equal(t, []activation{0.5, 0, 0, 0.5}, g.Data())

			f, err := Flatten(x.Reshape(2, 2, 2))
			require.NoError(t, err)
			assert.Equal(t, []activation{2, 0, 0, 2}, f.Data())

			sym, err := SymDense(g, 0)
			require.NoError(t, err)
			assert.Equal(t, 0.5, sym.At(1, 1))
		})
	}
}

func TestCompute_NamedFloatZeros(t *testing.T) {
	x := tensor.Zeros[activation](tensor.Shape{1, 2, 2, 2}, cpu.New())

	require.NotPanics(t, func() {
		g, err := Normalized(x)
		if assert.NoError(t, err) {
			assert.Equal(t, []activation{0, 0, 0, 0}, g.Data())
		}
	})
}

func TestComputeRaw_Float32(t *testing.T) {
	backend := cpu.New()
	x, err := tensor.FromSlice([]float32{1, 0, 0, 1, 0, 1, 1, 0}, tensor.Shape{1, 2, 2, 2}, backend)
	require.NoError(t, err)

	g, err := ComputeRaw(backend, x.Raw(), DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, tensor.Float32, g.DType())
	assert.Equal(t, []float32{0.5, 0, 0, 0.5}, g.AsFloat32())
}

func TestReshape_ElementCountMismatch(t *testing.T) {
	x := tensor.Zeros[float64](tensor.Shape{2, 3, 4}, tensor.NewMockBackend())

	_, err := reshape("gram.Flatten", x.Backend(), x.Raw(), tensor.Shape{5, 4})
	var se *ShapeError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, tensor.Shape{2, 3, 4}, se.Shape)
}

func TestFlatten_MatchesUnnormalizedCompute(t *testing.T) {
	rng := rand.New(rand.NewSource(3))

	for name, backend := range newBackends() {
		t.Run(name, func(t *testing.T) {
			x := tensor.Randn[float64](tensor.Shape{5, 3, 4}, rng, backend)

			flat, err := Flatten(x)
			require.NoError(t, err)
			unnorm, err := Compute(x, Config{Normalize: false})
			require.NoError(t, err)

			assert.Equal(t, unnorm.Shape(), flat.Shape())
			assert.InDeltaSlice(t, unnorm.Data(), flat.Data(), 1e-9)
		})
	}
}

func TestCompute_FusedMatchesFallback(t *testing.T) {
	x := tensor.Randn[float64](tensor.Shape{3, 6, 5, 7}, rand.New(rand.NewSource(9)), cpu.New())

	fused, err := Compute(x, DefaultConfig())
	require.NoError(t, err)

	mock := tensor.NewMockBackend()
	y, err := tensor.FromSlice(x.Data(), x.Shape(), mock)
	require.NoError(t, err)
	fallback, err := Compute(y, DefaultConfig())
	require.NoError(t, err)

	assert.InDeltaSlice(t, fallback.Data(), fused.Data(), 1e-9)
}

func TestCompute_BatchElementsIndependent(t *testing.T) {
	backend := cpu.New()
	rng := rand.New(rand.NewSource(21))
	h, w, c := 3, 4, 5

	batched := tensor.Randn[float64](tensor.Shape{2, h, w, c}, rng, backend)
	g, err := Compute(batched, DefaultConfig())
	require.NoError(t, err)
	require.Equal(t, tensor.Shape{2, c, c}, g.Shape())

	n := h * w * c
	for b := 0; b < 2; b++ {
		single, err := tensor.FromSlice(batched.Data()[b*n:(b+1)*n], tensor.Shape{h, w, c}, backend)
		require.NoError(t, err)

		gb, err := Compute(single, DefaultConfig())
		require.NoError(t, err)
		require.Equal(t, tensor.Shape{1, c, c}, gb.Shape())
		assert.InDeltaSlice(t, gb.Data(), g.Data()[b*c*c:(b+1)*c*c], 1e-12, "batch %d", b)
	}
}

func TestCompute_DoesNotModifyInput(t *testing.T) {
	for name, backend := range newBackends() {
		t.Run(name, func(t *testing.T) {
			x := tensor.Randn[float32](tensor.Shape{2, 3, 3, 4}, rand.New(rand.NewSource(1)), backend)
			before := append([]float32(nil), x.Data()...)

			_, err := Normalized(x)
			require.NoError(t, err)
			_, err = Flatten(x.Reshape(6, 3, 4))
			require.NoError(t, err)

			assert.Equal(t, before, x.Data())
		})
	}
}

func TestCompute_DebugLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	x := tensor.Zeros[float64](tensor.Shape{1, 2, 2, 3}, cpu.New())
	_, err := Compute(x, Config{Normalize: true, Logger: logger})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "gram input")
	assert.Contains(t, out, "gram flattened")
	assert.Contains(t, out, "gram result")
	assert.Contains(t, out, "backend=CPU")
}

func TestCompute_NoLoggingByDefault(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })

	x := tensor.Zeros[float64](tensor.Shape{1, 2, 2, 3}, cpu.New())
	_, err := Compute(x, DefaultConfig())
	require.NoError(t, err)

	assert.Empty(t, buf.String())
}

func BenchmarkNormalized(b *testing.B) {
	rng := rand.New(rand.NewSource(1))

	for name, backend := range map[string]tensor.Backend{
		"fused":    cpu.New(),
		"fallback": tensor.NewMockBackend(),
	} {
		x := tensor.Randn[float32](tensor.Shape{1, 32, 32, 64}, rng, backend)
		b.Run(name, func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				if _, err := Normalized(x); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
