package geometry

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JohnAlanCalma/forge-server-utils/config"
	"github.com/JohnAlanCalma/forge-server-utils/pack/packfile"
)

func putInt32(b *bytes.Buffer, v int32) {
	binary.Write(b, binary.LittleEndian, v)
}

func putUint32(b *bytes.Buffer, v uint32) {
	binary.Write(b, binary.LittleEndian, v)
}

func putFloat32(b *bytes.Buffer, v float32) {
	putUint32(b, math.Float32bits(v))
}

func putString(b *bytes.Buffer, s string) {
	putInt32(b, int32(len(s)))
	b.WriteString(s)
}

// geometryPack wraps octm payloads into a pack file buffer with one
// OpenCTM-typed entry per payload.
func geometryPack(typeTag string, payloads ...[]byte) []byte {
	var b bytes.Buffer

	putString(&b, "test.pf")
	putInt32(&b, 1)

	offsets := make([]uint32, len(payloads))
	for i, p := range payloads {
		offsets[i] = uint32(b.Len())
		putUint32(&b, 0)
		b.Write(p)
	}

	entriesOffset := uint32(b.Len())
	putInt32(&b, int32(len(payloads)))
	for _, o := range offsets {
		putUint32(&b, o)
	}

	typesOffset := uint32(b.Len())
	putInt32(&b, 1)
	putString(&b, "Autodesk.CloudPlatform.Geometry")
	putString(&b, typeTag)
	putInt32(&b, 1)

	putUint32(&b, entriesOffset)
	putUint32(&b, typesOffset)

	return b.Bytes()
}

type rawMesh struct {
	vertices [][3]float32
	indices  []uint32
	normals  [][3]float32
	uvmaps   []rawUVMap
	comment  string
	method   string
	magic    string
	version  int32
}

type rawUVMap struct {
	name string
	file string
	uvs  [][2]float32
}

func (rm *rawMesh) build() []byte {
	magic := rm.magic
	if magic == "" {
		magic = "OCTM"
	}
	version := rm.version
	if version == 0 {
		version = 5
	}
	method := rm.method
	if method == "" {
		method = "RAW"
	}

	var b bytes.Buffer
	b.WriteString(magic)
	putInt32(&b, version)
	b.WriteString(method)
	b.WriteByte(0)

	flags := uint32(0)
	if rm.normals != nil {
		flags |= FLAG_NORMALS
	}

	putInt32(&b, int32(len(rm.vertices)))
	putInt32(&b, int32(len(rm.indices)/3))
	putInt32(&b, int32(len(rm.uvmaps)))
	putInt32(&b, 0) // attrs
	putUint32(&b, flags)
	putString(&b, rm.comment)

	b.WriteString("INDX")
	for _, index := range rm.indices {
		putUint32(&b, index)
	}

	b.WriteString("VERT")
	for _, v := range rm.vertices {
		putFloat32(&b, v[0])
		putFloat32(&b, v[1])
		putFloat32(&b, v[2])
	}

	if rm.normals != nil {
		b.WriteString("NORM")
		for _, n := range rm.normals {
			putFloat32(&b, n[0])
			putFloat32(&b, n[1])
			putFloat32(&b, n[2])
		}
	}

	for _, uv := range rm.uvmaps {
		b.WriteString("TEXC")
		putString(&b, uv.name)
		putString(&b, uv.file)
		for _, p := range uv.uvs {
			putFloat32(&b, p[0])
			putFloat32(&b, p[1])
		}
	}

	return b.Bytes()
}

func decodePack(t *testing.T, b []byte) []*Mesh {
	t.Helper()
	pf, err := packfile.NewReader(b, nil)
	require.NoError(t, err)
	return DecodeAll(pf)
}

var testTriangle = rawMesh{
	vertices: [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
	indices:  []uint32{0, 1, 2},
}

func TestDecodeRawTriangle(t *testing.T) {
	meshes := decodePack(t, geometryPack(TYPE_OPENCTM, testTriangle.build()))
	require.Len(t, meshes, 1)
	m := meshes[0]
	require.NotNil(t, m)

	assert.EqualValues(t, 3, m.VertexCount)
	assert.EqualValues(t, 1, m.TriangleCount)
	assert.Len(t, m.Vertices, 9)
	assert.Equal(t, []uint32{0, 1, 2}, m.Indices)
	assert.Nil(t, m.Normals)
	assert.Empty(t, m.UVMaps)
	assert.Equal(t, [3]float32{0, 0, 0}, [3]float32(m.BBoxMin))
	assert.Equal(t, [3]float32{1, 1, 0}, [3]float32(m.BBoxMax))
}

func TestDecodeRawUVChannel(t *testing.T) {
	rm := testTriangle
	rm.uvmaps = []rawUVMap{{
		name: "diffuse",
		file: "diffuse.png",
		uvs:  [][2]float32{{0, 0}, {1, 0}, {0, 1}},
	}}

	meshes := decodePack(t, geometryPack(TYPE_OPENCTM, rm.build()))
	require.Len(t, meshes, 1)
	m := meshes[0]
	require.NotNil(t, m)

	require.Len(t, m.UVMaps, 1)
	assert.Equal(t, "diffuse", m.UVMaps[0].Name)
	assert.Equal(t, "diffuse.png", m.UVMaps[0].File)
	assert.Len(t, m.UVMaps[0].UVs, 6)
}

func TestDecodeNormalsRenormalized(t *testing.T) {
	rm := testTriangle
	rm.normals = [][3]float32{{0, 0, 2}, {0, 3, 0}, {0.5, 0.5, 0.5}}

	meshes := decodePack(t, geometryPack(TYPE_OPENCTM, rm.build()))
	require.Len(t, meshes, 1)
	m := meshes[0]
	require.NotNil(t, m)

	require.Len(t, m.Normals, 9)
	for i := 0; i < len(m.Normals); i += 3 {
		x, y, z := float64(m.Normals[i]), float64(m.Normals[i+1]), float64(m.Normals[i+2])
		assert.InDelta(t, 1.0, math.Sqrt(x*x+y*y+z*z), 1e-6, "normal %d", i/3)
	}
	assert.InDelta(t, 1.0, float64(m.Normals[2]), 1e-6)
}

func TestZeroLengthNormalYieldsAbsence(t *testing.T) {
	rm := testTriangle
	rm.normals = [][3]float32{{0, 0, 1}, {0, 0, 0}, {0, 0, 1}}

	meshes := decodePack(t, geometryPack(TYPE_OPENCTM, rm.build()))
	require.Len(t, meshes, 1)
	assert.Nil(t, meshes[0])
}

func TestLinesEntryYieldsAbsence(t *testing.T) {
	meshes := decodePack(t, geometryPack(TYPE_LINES, []byte{1, 2, 3, 4}))
	require.Len(t, meshes, 1)
	assert.Nil(t, meshes[0])
}

func TestUnknownTypeYieldsAbsence(t *testing.T) {
	meshes := decodePack(t, geometryPack("Autodesk.CloudPlatform.Fragments", []byte{1, 2, 3, 4}))
	require.Len(t, meshes, 1)
	assert.Nil(t, meshes[0])
}

func TestCompressedMethodYieldsAbsence(t *testing.T) {
	rm := testTriangle
	rm.method = "MG2"

	meshes := decodePack(t, geometryPack(TYPE_OPENCTM, rm.build()))
	require.Len(t, meshes, 1)
	assert.Nil(t, meshes[0])
}

func TestCorruptedMagicKeepsSequenceAlive(t *testing.T) {
	broken := testTriangle
	broken.magic = "NOPE"

	meshes := decodePack(t, geometryPack(TYPE_OPENCTM, broken.build(), testTriangle.build()))
	require.Len(t, meshes, 2)
	assert.Nil(t, meshes[0])
	require.NotNil(t, meshes[1])
	assert.Len(t, meshes[1].Vertices, 9)
}

func TestTruncatedVertexSectionYieldsAbsence(t *testing.T) {
	// drop the last float of the vertex section; the decoder must not read
	// on into the following entry's bytes
	truncated := testTriangle.build()
	truncated = truncated[:len(truncated)-4]

	meshes := decodePack(t, geometryPack(TYPE_OPENCTM, truncated, testTriangle.build()))
	require.Len(t, meshes, 2)
	assert.Nil(t, meshes[0])
	require.NotNil(t, meshes[1])
	assert.Equal(t, [3]float32{1, 1, 0}, [3]float32(meshes[1].BBoxMax))
}

func TestZeroVertexMeshKeepsSentinelBox(t *testing.T) {
	meshes := decodePack(t, geometryPack(TYPE_OPENCTM, (&rawMesh{}).build()))
	require.Len(t, meshes, 1)
	m := meshes[0]
	require.NotNil(t, m)

	assert.EqualValues(t, 0, m.VertexCount)
	assert.Empty(t, m.Indices)
	assert.Empty(t, m.Vertices)
	assert.Equal(t, float32(math.MaxFloat32), m.BBoxMin[0])
	assert.Equal(t, float32(-math.MaxFloat32), m.BBoxMax[0])
}

func TestSectionTagMismatchYieldsAbsence(t *testing.T) {
	payload := testTriangle.build()
	// overwrite "INDX" with garbage
	copy(payload[bytes.Index(payload, []byte("INDX")):], "XXXX")

	meshes := decodePack(t, geometryPack(TYPE_OPENCTM, payload))
	require.Len(t, meshes, 1)
	assert.Nil(t, meshes[0])
}

func TestIndexOutOfRangeYieldsAbsence(t *testing.T) {
	rm := testTriangle
	rm.indices = []uint32{0, 1, 7}

	meshes := decodePack(t, geometryPack(TYPE_OPENCTM, rm.build()))
	require.Len(t, meshes, 1)
	assert.Nil(t, meshes[0])
}

func TestIndexWidth16Limit(t *testing.T) {
	require.NoError(t, config.SetIndexWidth(config.IndexWidth16))
	defer config.SetIndexWidth(config.IndexWidth32)

	vertices := make([][3]float32, 0x10001)
	rm := rawMesh{
		vertices: vertices,
		indices:  []uint32{0, 1, 0x10000},
	}

	meshes := decodePack(t, geometryPack(TYPE_OPENCTM, rm.build()))
	require.Len(t, meshes, 1)
	assert.Nil(t, meshes[0], "index 0x10000 must not fit 16-bit width")

	require.NoError(t, config.SetIndexWidth(config.IndexWidth32))
	meshes = decodePack(t, geometryPack(TYPE_OPENCTM, rm.build()))
	require.NotNil(t, meshes[0])
}

func TestDecodeIsDeterministic(t *testing.T) {
	rm := testTriangle
	rm.comment = "decoded twice"
	rm.normals = [][3]float32{{0, 0, 1}, {0, 1, 0}, {1, 0, 0}}
	rm.uvmaps = []rawUVMap{{name: "uv0", file: "a.png", uvs: [][2]float32{{0, 0}, {1, 0}, {0, 1}}}}
	b := geometryPack(TYPE_OPENCTM, rm.build())

	first := decodePack(t, b)
	second := decodePack(t, b)
	require.Equal(t, first, second)
}

func TestDecoderLazyPull(t *testing.T) {
	b := geometryPack(TYPE_OPENCTM, testTriangle.build(), testTriangle.build())
	pf, err := packfile.NewReader(b, nil)
	require.NoError(t, err)

	d := NewDecoder(pf)
	m, ok := d.Next()
	require.True(t, ok)
	require.NotNil(t, m)

	// caller stops early, nothing else is consumed
	m, ok = d.Next()
	require.True(t, ok)
	require.NotNil(t, m)
	m, ok = d.Next()
	assert.False(t, ok)
	assert.Nil(t, m)
}
