package geometry

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/JohnAlanCalma/forge-server-utils/config"
	"github.com/JohnAlanCalma/forge-server-utils/pack/packfile"
	"github.com/JohnAlanCalma/forge-server-utils/status"
	"github.com/JohnAlanCalma/forge-server-utils/utils"
)

const (
	OCTM_MAGIC   = "OCTM"
	OCTM_VERSION = 5

	METHOD_RAW = "RAW"
)

// decodeOpenCTM expects the cursor at the payload start of an OpenCTM
// entry. Returns (nil, nil) for recognized but unsupported compression
// methods, the error return is reserved for corrupted payloads.
func decodeOpenCTM(r *packfile.Reader, exlog *utils.Logger) (*Mesh, error) {
	magic := r.ReadString(4)
	if err := r.Err(); err != nil {
		return nil, err
	}
	if magic != OCTM_MAGIC {
		return nil, errors.Errorf("Invalid OpenCTM magic %q", magic)
	}

	version := r.ReadInt32()
	if err := r.Err(); err != nil {
		return nil, err
	}
	if version != OCTM_VERSION {
		return nil, errors.Errorf("Unsupported OpenCTM version %d", version)
	}

	method := r.ReadString(3)
	r.ReadUint8() // zero byte of the method fourCC
	if err := r.Err(); err != nil {
		return nil, err
	}

	exlog.Printf("octm version %d method %q", version, method)

	switch method {
	case METHOD_RAW:
		return decodeRaw(r, exlog)
	default:
		status.Info("[geometry] compressed OpenCTM method %q is not supported", method)
		return nil, nil
	}
}

func decodeRaw(r *packfile.Reader, exlog *utils.Logger) (*Mesh, error) {
	m := &Mesh{}
	m.VertexCount = r.ReadInt32()
	m.TriangleCount = r.ReadInt32()
	m.UVCount = r.ReadInt32()
	m.AttrCount = r.ReadInt32()
	m.Flags = r.ReadUint32()
	m.Comment = r.ReadString(int(r.ReadInt32()))
	if err := r.Err(); err != nil {
		return nil, errors.Wrap(err, "Mesh header")
	}
	if m.VertexCount < 0 || m.TriangleCount < 0 || m.UVCount < 0 || m.AttrCount < 0 {
		return nil, errors.Errorf("Negative count in mesh header: vertices %d triangles %d uv channels %d attrs %d",
			m.VertexCount, m.TriangleCount, m.UVCount, m.AttrCount)
	}

	exlog.Printf("| vertices: %d triangles: %d uv channels: %d attrs: %d flags: 0x%.8x comment: %q",
		m.VertexCount, m.TriangleCount, m.UVCount, m.AttrCount, m.Flags, m.Comment)

	// do not trust counts before allocating
	need := 12*int64(m.TriangleCount) + 12*int64(m.VertexCount)
	if m.Flags&FLAG_NORMALS != 0 {
		need += 12 * int64(m.VertexCount)
	}
	need += int64(m.UVCount) * 8 * int64(m.VertexCount)
	if need > int64(r.Remaining()) {
		return nil, errors.Errorf("Mesh of %d+ bytes cannot fit remaining %d bytes", need, r.Remaining())
	}

	if err := m.parseIndices(r); err != nil {
		return nil, err
	}
	if err := m.parseVertices(r, exlog); err != nil {
		return nil, err
	}
	if m.Flags&FLAG_NORMALS != 0 {
		if err := m.parseNormals(r); err != nil {
			return nil, err
		}
	}
	if err := m.parseUVMaps(r, exlog); err != nil {
		return nil, err
	}

	return m, nil
}

func expectFourCC(r *packfile.Reader, want string) error {
	got := r.ReadString(4)
	if err := r.Err(); err != nil {
		return err
	}
	if got != want {
		return errors.Errorf("Expected %q section, got %q", want, got)
	}
	return nil
}

func (m *Mesh) parseIndices(r *packfile.Reader) error {
	if err := expectFourCC(r, "INDX"); err != nil {
		return err
	}

	maxIndex := uint32(math.MaxUint32)
	if config.GetIndexWidth() == config.IndexWidth16 {
		maxIndex = math.MaxUint16
	}

	m.Indices = make([]uint32, 3*m.TriangleCount)
	for i := range m.Indices {
		m.Indices[i] = r.ReadUint32()
	}
	if err := r.Err(); err != nil {
		return errors.Wrap(err, "Index section")
	}

	for i, index := range m.Indices {
		if index >= uint32(m.VertexCount) {
			return errors.Errorf("Index %d of triangle %d references vertex %d of %d",
				i%3, i/3, index, m.VertexCount)
		}
		if index > maxIndex {
			return errors.Errorf("Index value %d exceeds configured %d-bit index width",
				index, config.GetIndexWidth())
		}
	}
	return nil
}

func (m *Mesh) parseVertices(r *packfile.Reader, exlog *utils.Logger) error {
	if err := expectFourCC(r, "VERT"); err != nil {
		return err
	}

	min := mgl32.Vec3{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32}
	max := mgl32.Vec3{-math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32}

	m.Vertices = make([]float32, 3*m.VertexCount)
	for i := 0; i < len(m.Vertices); i += 3 {
		v := mgl32.Vec3{r.ReadFloat32(), r.ReadFloat32(), r.ReadFloat32()}
		copy(m.Vertices[i:i+3], v[:])
		min = utils.Vec3Min(min, v)
		max = utils.Vec3Max(max, v)
	}
	if err := r.Err(); err != nil {
		return errors.Wrap(err, "Vertex section")
	}

	// zero vertices leave the box at the float32 extremes
	m.BBoxMin, m.BBoxMax = min, max
	exlog.Printf("| bbox min %v max %v", min, max)
	return nil
}

func (m *Mesh) parseNormals(r *packfile.Reader) error {
	if err := expectFourCC(r, "NORM"); err != nil {
		return err
	}

	m.Normals = make([]float32, 3*m.VertexCount)
	for i := 0; i < len(m.Normals); i += 3 {
		n := mgl32.Vec3{r.ReadFloat32(), r.ReadFloat32(), r.ReadFloat32()}
		dot := n.Dot(n)
		if dot == 0 {
			if err := r.Err(); err != nil {
				return errors.Wrap(err, "Normal section")
			}
			return errors.Errorf("Zero length normal for vertex %d", i/3)
		}
		if dot != 1 {
			n = n.Mul(1 / float32(math.Sqrt(float64(dot))))
		}
		copy(m.Normals[i:i+3], n[:])
	}
	return errors.Wrap(r.Err(), "Normal section")
}

func (m *Mesh) parseUVMaps(r *packfile.Reader, exlog *utils.Logger) error {
	m.UVMaps = make([]UVMap, 0, m.UVCount)
	for c := int32(0); c < m.UVCount; c++ {
		if err := expectFourCC(r, "TEXC"); err != nil {
			return errors.Wrapf(err, "UV channel %d", c)
		}

		var uv UVMap
		uv.Name = r.ReadString(int(r.ReadInt32()))
		uv.File = r.ReadString(int(r.ReadInt32()))
		uv.UVs = make([]float32, 2*m.VertexCount)
		for i := range uv.UVs {
			uv.UVs[i] = r.ReadFloat32()
		}
		if err := r.Err(); err != nil {
			return errors.Wrapf(err, "UV channel %d", c)
		}

		exlog.Printf("| uv channel %d: %q from %q", c, uv.Name, uv.File)
		m.UVMaps = append(m.UVMaps, uv)
	}
	return nil
}
