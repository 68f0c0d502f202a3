package comp

import (
	_ "embed"
	"encoding/binary"
	"math"
)

// Embedded patch compositing shader source.
//
//go:embed shaders/composite.wgsl
var compositeShaderSource string

// quadVertexStride is the byte stride per vertex in the compositing
// pipeline. Layout per vertex:
//
//	position (vec2<f32>) = 8 bytes  (location 0)
//	uv       (vec2<f32>) = 8 bytes  (location 1)
//
// Total = 16 bytes per vertex.
const quadVertexStride = 16

// quadIndexCount is the number of indices in the unit quad (two triangles).
const quadIndexCount = 6

// compositeUniformSize is the byte size of the compositing uniform buffer.
// Layout: transform (mat4x4<f32>) = 64 bytes + mode/padding (4 x u32) =
// 16 bytes = 80 bytes.
const compositeUniformSize = 80

// buildQuadVertexData serializes the unit quad into raw vertex bytes.
// Positions span [0,1] with a bottom-left origin; UVs flip vertically so
// v=0 (the texture's top row) lands at the top of the quad.
func buildQuadVertexData() []byte {
	data := make([]byte, 4*quadVertexStride)
	off := 0
	write := func(x, y, u, v float32) {
		binary.LittleEndian.PutUint32(data[off:], math.Float32bits(x))
		binary.LittleEndian.PutUint32(data[off+4:], math.Float32bits(y))
		binary.LittleEndian.PutUint32(data[off+8:], math.Float32bits(u))
		binary.LittleEndian.PutUint32(data[off+12:], math.Float32bits(v))
		off += quadVertexStride
	}
	write(0, 0, 0, 1) // bottom-left
	write(1, 0, 1, 1) // bottom-right
	write(1, 1, 1, 0) // top-right
	write(0, 1, 0, 0) // top-left
	return data
}

// buildQuadIndexData serializes the quad indices (0,1,2 / 2,3,0).
func buildQuadIndexData() []byte {
	indices := []uint16{0, 1, 2, 2, 3, 0}
	data := make([]byte, len(indices)*2)
	for i, idx := range indices {
		binary.LittleEndian.PutUint16(data[i*2:], idx)
	}
	return data
}

// makeCompositeUniform creates the 80-byte uniform buffer for a patch draw.
func makeCompositeUniform(t Affine, mode Mode) []byte {
	buf := make([]byte, compositeUniformSize)
	off := 0

	// Affine packed into a mat4x4. Row i of the 2x3 affine occupies
	// column i of the matrix, so the shader transforms positions as
	// v * transform.
	// Input affine: a b c / d e f
	// Output 4x4:   a b 0 c / d e 0 f / 0 0 1 0 / 0 0 0 1
	m := [16]float32{
		t.A, t.B, 0, t.C,
		t.D, t.E, 0, t.F,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
	for _, v := range m {
		binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(v))
		off += 4
	}

	// Mode flag; remaining three u32 slots stay zero for alignment.
	binary.LittleEndian.PutUint32(buf[off:], uint32(mode))

	return buf
}

// CompositeShaderSource returns the WGSL source for the compositing shader.
func CompositeShaderSource() string {
	return compositeShaderSource
}
