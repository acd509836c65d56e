package geometry

import (
	"github.com/JohnAlanCalma/forge-server-utils/pack/packfile"
	"github.com/JohnAlanCalma/forge-server-utils/status"
	"github.com/JohnAlanCalma/forge-server-utils/utils"
)

// Decoder walks pack file entries in index order and produces exactly one
// result per entry: a decoded mesh, or nil when the entry is unsupported
// or corrupted. Scene graphs reference geometry by entry index, so the
// produced sequence must stay aligned with the entry list.
//
// A Decoder drives the Reader's cursor, so at most one Decoder may run
// against a Reader at a time.
type Decoder struct {
	pf    *packfile.Reader
	next  packfile.EntryId
	exlog *utils.Logger
}

func NewDecoder(pf *packfile.Reader) *Decoder {
	return &Decoder{pf: pf}
}

func NewDecoderWithLog(pf *packfile.Reader, exlog *utils.Logger) *Decoder {
	return &Decoder{pf: pf, exlog: exlog}
}

// Next decodes the next entry. The second result is false when entries
// are exhausted.
func (d *Decoder) Next() (*Mesh, bool) {
	if int(d.next) >= d.pf.EntryCount() {
		return nil, false
	}
	id := d.next
	d.next++

	t := d.pf.SeekEntry(id)
	d.exlog.Printf("- entry %d type %q version %d", id, t.Type, t.Version)

	switch t.Type {
	case TYPE_OPENCTM:
		if t.Version < 1 {
			status.Error("[geometry] %s entry %d: unsupported mesh version %d", d.pf.Name(), id, t.Version)
			return nil, true
		}
		m, err := decodeOpenCTM(d.pf, d.exlog)
		if err != nil {
			status.Error("[geometry] %s entry %d: %v", d.pf.Name(), id, err)
			return nil, true
		}
		// m stays nil for compressed methods
		return m, true
	case TYPE_LINES, TYPE_POINTS:
		status.Info("[geometry] %s entry %d: %s entries are not supported", d.pf.Name(), id, t.Type)
		return nil, true
	default:
		status.Info("[geometry] %s entry %d: unknown entry type %q", d.pf.Name(), id, t.Type)
		return nil, true
	}
}

// DecodeAll drains the decoder into an entry-index-aligned slice.
func DecodeAll(pf *packfile.Reader) []*Mesh {
	d := NewDecoder(pf)
	meshes := make([]*Mesh, 0, pf.EntryCount())
	for {
		m, ok := d.Next()
		if !ok {
			break
		}
		meshes = append(meshes, m)
	}
	return meshes
}
