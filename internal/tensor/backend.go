package tensor

// Backend defines the operations a compute backend must provide for Gram
// matrix computation. Backends panic on invalid arguments; callers are
// expected to validate shapes first.
//
// Implementations:
//   - CPU: pure Go (internal/backend/cpu)
//   - MockBackend: naive reference used in tests
type Backend interface {
	// Matrix operations

	// MatMul multiplies two 2D tensors: [M, K] @ [K, N] -> [M, N].
	MatMul(a, b *RawTensor) *RawTensor

	// BatchMatMul performs batched matrix multiplication for 3D/4D tensors.
	// For 3D: [B, M, K] @ [B, K, N] -> [B, M, N]
	// For 4D: [B, H, M, K] @ [B, H, K, N] -> [B, H, M, N]
	BatchMatMul(a, b *RawTensor) *RawTensor

	// Shape operations
	Reshape(t *RawTensor, newShape Shape) *RawTensor
	Transpose(t *RawTensor, axes ...int) *RawTensor
	Unsqueeze(x *RawTensor, dim int) *RawTensor // add dimension of size 1

	// Scalar operations (element-wise with scalar)
	MulScalar(x *RawTensor, scalar any) *RawTensor
	DivScalar(x *RawTensor, scalar any) *RawTensor

	// Metadata
	Name() string
	Device() Device
}
