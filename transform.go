package animtex

// Matrix represents a 2D affine transformation matrix.
// It uses a 2x3 matrix in row-major order:
//
//	| a  b  c |
//	| d  e  f |
//
// This represents the transformation:
//
//	x' = a*x + b*y + c
//	y' = d*x + e*y + f
type Matrix struct {
	A, B, C float64
	D, E, F float64
}

// Identity returns the identity transformation matrix.
func Identity() Matrix {
	return Matrix{
		A: 1, B: 0, C: 0,
		D: 0, E: 1, F: 0,
	}
}

// Translate creates a translation matrix.
func Translate(x, y float64) Matrix {
	return Matrix{
		A: 1, B: 0, C: x,
		D: 0, E: 1, F: y,
	}
}

// Scale creates a scaling matrix.
func Scale(x, y float64) Matrix {
	return Matrix{
		A: x, B: 0, C: 0,
		D: 0, E: y, F: 0,
	}
}

// Multiply multiplies two matrices (m * other).
func (m Matrix) Multiply(other Matrix) Matrix {
	return Matrix{
		A: m.A*other.A + m.B*other.D,
		B: m.A*other.B + m.B*other.E,
		C: m.A*other.C + m.B*other.F + m.C,
		D: m.D*other.A + m.E*other.D,
		E: m.D*other.B + m.E*other.E,
		F: m.D*other.C + m.E*other.F + m.F,
	}
}

// Placement returns the transform that maps the unit quad onto a patch's
// position within the canvas, both in [0,1] space with a bottom-left origin.
// Frame offsets are measured from the canvas top-left, so the vertical
// translation flips the Y axis:
//
//	sx = patchWidth  / canvasWidth
//	sy = patchHeight / canvasHeight
//	tx = offsetLeft  / canvasWidth
//	ty = (canvasHeight - (offsetTop + patchHeight)) / canvasHeight
//
// A patch covering the full canvas at offset (0,0) yields the identity.
func Placement(r Rect, canvasWidth, canvasHeight int) Matrix {
	cw := float64(canvasWidth)
	ch := float64(canvasHeight)
	sx := float64(r.Width) / cw
	sy := float64(r.Height) / ch
	tx := float64(r.Left) / cw
	ty := (ch - float64(r.Top+r.Height)) / ch
	return Translate(tx, ty).Multiply(Scale(sx, sy))
}
