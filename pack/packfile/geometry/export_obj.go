package geometry

import (
	"fmt"
	"io"
)

func (m *Mesh) ExportObj(_w io.Writer) error {
	w := func(format string, args ...interface{}) {
		_w.Write(([]byte)(fmt.Sprintf(format+"\n", args...)))
	}

	if m.Comment != "" {
		w("# %s", m.Comment)
	}

	for i := 0; i < len(m.Vertices); i += 3 {
		w("v %f %f %f", m.Vertices[i], m.Vertices[i+1], m.Vertices[i+2])
	}

	haveUV := len(m.UVMaps) != 0
	if haveUV {
		uvs := m.UVMaps[0].UVs
		for i := 0; i < len(uvs); i += 2 {
			w("vt %f %f", uvs[i], -uvs[i+1])
		}
	}

	haveNorm := m.Normals != nil
	if haveNorm {
		for i := 0; i < len(m.Normals); i += 3 {
			w("vn %f %f %f", m.Normals[i], m.Normals[i+1], m.Normals[i+2])
		}
	}

	for i := 0; i < len(m.Indices); i += 3 {
		f := m.Indices[i : i+3]
		if haveNorm {
			if haveUV {
				w("f %v/%v/%v %v/%v/%v %v/%v/%v",
					f[0]+1, f[0]+1, f[0]+1,
					f[1]+1, f[1]+1, f[1]+1,
					f[2]+1, f[2]+1, f[2]+1)
			} else {
				w("f %v//%v %v//%v %v//%v",
					f[0]+1, f[0]+1,
					f[1]+1, f[1]+1,
					f[2]+1, f[2]+1)
			}
		} else {
			if haveUV {
				w("f %v/%v %v/%v %v/%v",
					f[0]+1, f[0]+1,
					f[1]+1, f[1]+1,
					f[2]+1, f[2]+1)
			} else {
				w("f %v %v %v", f[0]+1, f[1]+1, f[2]+1)
			}
		}
	}

	return nil
}
