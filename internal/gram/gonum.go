package gram

import (
	"fmt"

	"github.com/syfxie/Blend/internal/tensor"
	"gonum.org/v1/gonum/mat"
)

// SymDense copies the (C, C) matrix of batch element b out of a Gram tensor
// of shape (B, C, C) into a gonum symmetric matrix.
//
// Only the upper triangle is read; Gram tensors are symmetric by
// construction.
func SymDense[T tensor.Float, B tensor.Backend](g *tensor.Tensor[T, B], b int) (*mat.SymDense, error) {
	const op = "gram.SymDense"
	shape := g.Shape()
	if shape.Rank() != 3 || shape[1] != shape[2] {
		return nil, &ShapeError{Op: op, Shape: shape, Want: "(B, C, C)"}
	}
	if b < 0 || b >= shape[0] {
		return nil, fmt.Errorf("%s: batch index %d out of range [0, %d): %w", op, b, shape[0], ErrShape)
	}

	c := shape[1]
	data := g.Data()[b*c*c : (b+1)*c*c]
	sym := mat.NewSymDense(c, nil)
	for i := 0; i < c; i++ {
		for j := i; j < c; j++ {
			sym.SetSym(i, j, float64(data[i*c+j]))
		}
	}
	return sym, nil
}
