package gram_test

import (
	"errors"
	"fmt"

	"github.com/syfxie/Blend/backend/cpu"
	"github.com/syfxie/Blend/gram"
	"github.com/syfxie/Blend/tensor"
	"gonum.org/v1/gonum/mat"
)

func ExampleNormalized() {
	backend := cpu.New()

	// One 2×2 feature map with two channels.
	x, err := tensor.FromSlice([]float64{
		1, 0, 0, 1,
		0, 1, 1, 0,
	}, tensor.Shape{1, 2, 2, 2}, backend)
	if err != nil {
		panic(err)
	}

	g, err := gram.Normalized(x)
	if err != nil {
		panic(err)
	}
	fmt.Println(g.Shape(), g.Data())
	// Output: [1 2 2] [0.5 0 0 0.5]
}

func ExampleFlatten() {
	backend := cpu.New()

	x, err := tensor.FromSlice([]float32{
		1, 0, 0, 1,
		0, 1, 1, 0,
	}, tensor.Shape{2, 2, 2}, backend)
	if err != nil {
		panic(err)
	}

	g, err := gram.Flatten(x)
	if err != nil {
		panic(err)
	}
	fmt.Println(g.Shape(), g.Data())
	// Output: [1 2 2] [2 0 0 2]
}

func ExampleSymDense() {
	backend := cpu.New()

	x, err := tensor.FromSlice([]float64{1, 2, 3, 4, 5, 6}, tensor.Shape{3, 1, 2}, backend)
	if err != nil {
		panic(err)
	}

	g, err := gram.Compute(x, gram.Config{Normalize: false})
	if err != nil {
		panic(err)
	}
	sym, err := gram.SymDense(g, 0)
	if err != nil {
		panic(err)
	}
	fmt.Printf("%v\n", mat.Formatted(sym))
	// Output:
	// ⎡35  44⎤
	// ⎣44  56⎦
}

func ExampleShapeError() {
	backend := cpu.New()
	x := tensor.Zeros[float32](tensor.Shape{4, 4}, backend)

	_, err := gram.Normalized(x)

	var shapeErr *gram.ShapeError
	fmt.Println(errors.Is(err, gram.ErrShape), errors.As(err, &shapeErr))
	fmt.Println(err)
	// Output:
	// true true
	// gram.Normalized: incompatible tensor shape [4 4]: want (B, H, W, C)
}
