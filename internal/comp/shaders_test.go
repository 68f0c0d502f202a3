package comp

import (
	"encoding/binary"
	"math"
	"strings"
	"testing"
)

func TestShaderSourceEmbedded(t *testing.T) {
	src := CompositeShaderSource()
	if src == "" {
		t.Fatal("composite shader source is empty")
	}
	for _, entry := range []string{"vs_main", "fs_main", "patch_tex"} {
		if !strings.Contains(src, entry) {
			t.Errorf("shader source missing %q", entry)
		}
	}
}

func TestBuildQuadVertexData(t *testing.T) {
	data := buildQuadVertexData()
	if len(data) != 4*quadVertexStride {
		t.Fatalf("vertex data is %d bytes, want %d", len(data), 4*quadVertexStride)
	}

	readF32 := func(off int) float32 {
		return math.Float32frombits(binary.LittleEndian.Uint32(data[off:]))
	}

	// Vertex layout: x, y, u, v per vertex. The top-left vertex (0,1)
	// must carry uv (0,0) so the texture's top row lands at the top of
	// the quad.
	type vert struct{ x, y, u, v float32 }
	want := []vert{
		{0, 0, 0, 1},
		{1, 0, 1, 1},
		{1, 1, 1, 0},
		{0, 1, 0, 0},
	}
	for i, w := range want {
		off := i * quadVertexStride
		got := vert{readF32(off), readF32(off + 4), readF32(off + 8), readF32(off + 12)}
		if got != w {
			t.Errorf("vertex %d = %+v, want %+v", i, got, w)
		}
	}
}

func TestBuildQuadIndexData(t *testing.T) {
	data := buildQuadIndexData()
	if len(data) != quadIndexCount*2 {
		t.Fatalf("index data is %d bytes, want %d", len(data), quadIndexCount*2)
	}
	want := []uint16{0, 1, 2, 2, 3, 0}
	for i, w := range want {
		if got := binary.LittleEndian.Uint16(data[i*2:]); got != w {
			t.Errorf("index %d = %d, want %d", i, got, w)
		}
	}
}

func TestMakeCompositeUniform(t *testing.T) {
	a := Affine{A: 0.5, B: 0, C: 0.25, D: 0, E: 0.1, F: 0.9}
	buf := makeCompositeUniform(a, ModeOpaque)

	if len(buf) != compositeUniformSize {
		t.Fatalf("uniform is %d bytes, want %d", len(buf), compositeUniformSize)
	}

	readF32 := func(off int) float32 {
		return math.Float32frombits(binary.LittleEndian.Uint32(buf[off:]))
	}

	// Affine rows land in the first two matrix columns with the
	// translation in the fourth component.
	wantMat := [16]float32{
		0.5, 0, 0, 0.25,
		0, 0.1, 0, 0.9,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
	for i, w := range wantMat {
		if got := readF32(i * 4); got != w {
			t.Errorf("matrix[%d] = %v, want %v", i, got, w)
		}
	}

	if mode := binary.LittleEndian.Uint32(buf[64:]); mode != uint32(ModeOpaque) {
		t.Errorf("mode = %d, want %d", mode, ModeOpaque)
	}
	// Padding stays zero.
	for off := 68; off < compositeUniformSize; off += 4 {
		if v := binary.LittleEndian.Uint32(buf[off:]); v != 0 {
			t.Errorf("padding at %d = %d, want 0", off, v)
		}
	}
}

func TestIdentityAffine(t *testing.T) {
	id := IdentityAffine()
	if id.A != 1 || id.E != 1 || id.B != 0 || id.C != 0 || id.D != 0 || id.F != 0 {
		t.Errorf("IdentityAffine() = %+v", id)
	}
}
