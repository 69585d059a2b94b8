package tensor

import "fmt"

// Verify that MockBackend implements Backend.
var _ Backend = (*MockBackend)(nil)

// MockBackend is a simple backend for testing.
// It implements all operations naively in float64 for correctness
// verification and supports Float32 and Float64 tensors only.
type MockBackend struct{}

// NewMockBackend creates a new MockBackend.
func NewMockBackend() *MockBackend {
	return &MockBackend{}
}

// Name returns the backend name.
func (m *MockBackend) Name() string {
	return "mock"
}

// Device returns the device type.
func (m *MockBackend) Device() Device {
	return CPU
}

// MatMul performs naive 2D matrix multiplication.
func (m *MockBackend) MatMul(a, b *RawTensor) *RawTensor {
	as, bs := a.Shape(), b.Shape()
	if len(as) != 2 || len(bs) != 2 || as[1] != bs[0] {
		panic(fmt.Sprintf("mock matmul: incompatible shapes %v @ %v", as, bs))
	}
	av, bv := values(a), values(b)
	rows, inner, cols := as[0], as[1], bs[1]
	out := make([]float64, rows*cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			for k := 0; k < inner; k++ {
				out[i*cols+j] += av[i*inner+k] * bv[k*cols+j]
			}
		}
	}
	return m.fromValues(out, Shape{rows, cols}, a.DType())
}

// BatchMatMul performs naive batched matrix multiplication on 3D tensors.
func (m *MockBackend) BatchMatMul(a, b *RawTensor) *RawTensor {
	as, bs := a.Shape(), b.Shape()
	if len(as) != 3 || len(bs) != 3 || as[0] != bs[0] || as[2] != bs[1] {
		panic(fmt.Sprintf("mock batchmatmul: incompatible shapes %v @ %v", as, bs))
	}
	av, bv := values(a), values(b)
	batch, rows, inner, cols := as[0], as[1], as[2], bs[2]
	out := make([]float64, batch*rows*cols)
	for n := 0; n < batch; n++ {
		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				var sum float64
				for k := 0; k < inner; k++ {
					sum += av[n*rows*inner+i*inner+k] * bv[n*inner*cols+k*cols+j]
				}
				out[n*rows*cols+i*cols+j] = sum
			}
		}
	}
	return m.fromValues(out, Shape{batch, rows, cols}, a.DType())
}

// Reshape copies the data under a new shape.
func (m *MockBackend) Reshape(t *RawTensor, newShape Shape) *RawTensor {
	if newShape.NumElements() != t.NumElements() {
		panic(fmt.Sprintf("mock reshape: %v -> %v changes element count", t.Shape(), newShape))
	}
	return m.fromValues(values(t), newShape, t.DType())
}

// Transpose permutes dimensions; no axes reverses them.
func (m *MockBackend) Transpose(t *RawTensor, axes ...int) *RawTensor {
	shape := t.Shape()
	ndim := len(shape)
	if len(axes) == 0 {
		axes = make([]int, ndim)
		for i := range axes {
			axes[i] = ndim - 1 - i
		}
	}
	if len(axes) != ndim {
		panic(fmt.Sprintf("mock transpose: axes length %d != ndim %d", len(axes), ndim))
	}

	newShape := make(Shape, ndim)
	for i, ax := range axes {
		newShape[i] = shape[ax]
	}
	srcStrides := shape.ComputeStrides()
	src := values(t)
	out := make([]float64, len(src))

	// Walk the destination in order and gather from the source.
	coords := make([]int, ndim)
	for i := range out {
		srcIdx := 0
		for d, ax := range axes {
			srcIdx += coords[d] * srcStrides[ax]
		}
		out[i] = src[srcIdx]
		for d := ndim - 1; d >= 0; d-- {
			coords[d]++
			if coords[d] < newShape[d] {
				break
			}
			coords[d] = 0
		}
	}
	return m.fromValues(out, newShape, t.DType())
}

// Unsqueeze inserts a size-1 dimension at dim.
func (m *MockBackend) Unsqueeze(x *RawTensor, dim int) *RawTensor {
	shape := x.Shape()
	if dim < 0 {
		dim = len(shape) + 1 + dim
	}
	newShape := make(Shape, 0, len(shape)+1)
	newShape = append(newShape, shape[:dim]...)
	newShape = append(newShape, 1)
	newShape = append(newShape, shape[dim:]...)
	return m.Reshape(x, newShape)
}

// MulScalar multiplies each element by scalar.
func (m *MockBackend) MulScalar(x *RawTensor, scalar any) *RawTensor {
	s := scalarValue(scalar)
	v := values(x)
	for i := range v {
		v[i] *= s
	}
	return m.fromValues(v, x.Shape(), x.DType())
}

// DivScalar divides each element by scalar.
func (m *MockBackend) DivScalar(x *RawTensor, scalar any) *RawTensor {
	s := scalarValue(scalar)
	v := values(x)
	for i := range v {
		v[i] /= s
	}
	return m.fromValues(v, x.Shape(), x.DType())
}

// values returns a float64 copy of the tensor's elements.
func values(r *RawTensor) []float64 {
	out := make([]float64, r.NumElements())
	switch r.DType() {
	case Float32:
		for i, v := range r.AsFloat32() {
			out[i] = float64(v)
		}
	case Float64:
		copy(out, r.AsFloat64())
	default:
		panic(fmt.Sprintf("mock: unsupported dtype %s", r.DType()))
	}
	return out
}

func (m *MockBackend) fromValues(v []float64, shape Shape, dtype DataType) *RawTensor {
	result, err := NewRaw(shape, dtype, m.Device())
	if err != nil {
		panic(err)
	}
	switch dtype {
	case Float32:
		dst := result.AsFloat32()
		for i := range dst {
			dst[i] = float32(v[i])
		}
	case Float64:
		copy(result.AsFloat64(), v)
	default:
		panic(fmt.Sprintf("mock: unsupported dtype %s", dtype))
	}
	return result
}

func scalarValue(scalar any) float64 {
	switch s := scalar.(type) {
	case float32:
		return float64(s)
	case float64:
		return s
	default:
		panic(fmt.Sprintf("mock: unsupported scalar type %T", scalar))
	}
}
