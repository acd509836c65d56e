package geometry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/JohnAlanCalma/forge-server-utils/pack/packfile"
	"github.com/JohnAlanCalma/forge-server-utils/status"
	"github.com/JohnAlanCalma/forge-server-utils/utils"
)

const (
	TYPE_OPENCTM = "Autodesk.CloudPlatform.OpenCTM"
	TYPE_LINES   = "Autodesk.CloudPlatform.Lines"
	TYPE_POINTS  = "Autodesk.CloudPlatform.Points"
)

const FLAG_NORMALS = 1

type UVMap struct {
	Name string
	File string
	UVs  []float32 // 2 floats per vertex
}

type Mesh struct {
	VertexCount   int32
	TriangleCount int32
	UVCount       int32
	AttrCount     int32
	Flags         uint32
	Comment       string

	Indices  []uint32  // 3 per triangle
	Vertices []float32 // 3 per vertex
	Normals  []float32 // 3 per vertex, nil if absent
	UVMaps   []UVMap

	BBoxMin mgl32.Vec3
	BBoxMax mgl32.Vec3
}

func (m *Mesh) Marshal(rsrc *packfile.EntryRsrc) (interface{}, error) {
	return m, nil
}

func entryLog(rsrc *packfile.EntryRsrc) *utils.Logger {
	fpath := filepath.Join("logs", rsrc.Reader.Name(), fmt.Sprintf("%.4d.octm.log", rsrc.Entry.Id))
	os.MkdirAll(filepath.Dir(fpath), 0777)
	f, err := os.Create(fpath)
	if err != nil {
		return nil
	}
	return &utils.Logger{Writer: f}
}

func init() {
	packfile.SetHandler(TYPE_OPENCTM, func(rsrc *packfile.EntryRsrc) (packfile.File, error) {
		exlog := entryLog(rsrc)
		if exlog != nil {
			defer exlog.Writer.(*os.File).Close()
		}

		m, err := decodeOpenCTM(rsrc.Reader, exlog)
		if err != nil {
			return nil, err
		}
		if m == nil {
			// compressed method, reported already
			return nil, nil
		}
		return m, nil
	})

	for _, typeTag := range []string{TYPE_LINES, TYPE_POINTS} {
		typeTag := typeTag
		packfile.SetHandler(typeTag, func(rsrc *packfile.EntryRsrc) (packfile.File, error) {
			status.Info("[geometry] %s: %s entries are not supported", rsrc.Name(), typeTag)
			return nil, nil
		})
	}
}
