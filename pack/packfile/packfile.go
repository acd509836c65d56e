package packfile

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/pkg/errors"

	"github.com/JohnAlanCalma/forge-server-utils/pack"
	"github.com/JohnAlanCalma/forge-server-utils/utils"
)

// Binary layout of a pack file (all values little-endian):
//   header:  int32 idLen, idLen bytes, int32 version
//   ....     entry payloads
//   entries directory: int32 count, count * uint32 payload offset
//   types directory:   int32 count, count * (str class, str type, int32 version)
//   footer (last 8 bytes): uint32 entriesOffset, uint32 typesOffset
// Each entry payload starts with uint32 index into the types directory.

const FOOTER_SIZE = 8

type EntryId int

type EntryType struct {
	Class   string
	Type    string
	Version int32
}

type Entry struct {
	Id     EntryId
	Offset uint32 // payload start, past the type index
	Size   uint32
	Type   *EntryType
}

type File interface {
	Marshal(rsrc *EntryRsrc) (interface{}, error)
}

type FileLoader func(rsrc *EntryRsrc) (File, error)

var gHandlers map[string]FileLoader = make(map[string]FileLoader, 0)

func SetHandler(typeTag string, ldr FileLoader) {
	gHandlers[typeTag] = ldr
}

type Reader struct {
	Source  utils.ResourceSource `json:"-"`
	Id      string
	Version int32
	Types   []EntryType
	Entries []Entry

	b     []byte
	pos   int
	limit int
	err   error

	cache map[EntryId]File
}

func NewReader(b []byte, src utils.ResourceSource) (*Reader, error) {
	r := &Reader{
		Source: src,
		b:      b,
		cache:  make(map[EntryId]File),
	}

	if err := r.parseHeader(); err != nil {
		return nil, errors.Wrap(err, "Error when parsing header")
	}
	if err := r.parseDirectories(); err != nil {
		return nil, errors.Wrap(err, "Error when parsing directories")
	}

	return r, nil
}

func (r *Reader) Name() string {
	if r.Source != nil {
		return r.Source.Name()
	}
	return r.Id
}

func (r *Reader) EntryCount() int {
	return len(r.Entries)
}

// SeekEntry positions the read cursor at the payload start of entry id and
// returns the entry's type record. Reads are bounded by the entry's extent,
// a payload truncated mid-section must not leak into the neighboring entry.
// An out of range id is a caller bug, not a property of the buffer.
func (r *Reader) SeekEntry(id EntryId) *EntryType {
	if id < 0 || int(id) >= len(r.Entries) {
		panic(fmt.Sprintf("packfile: entry index %d out of range [0:%d)", id, len(r.Entries)))
	}
	e := &r.Entries[id]
	r.pos = int(e.Offset)
	r.limit = int(e.Offset + e.Size)
	r.err = nil
	return e.Type
}

func (r *Reader) EntryData(id EntryId) []byte {
	if id < 0 || int(id) >= len(r.Entries) {
		panic(fmt.Sprintf("packfile: entry index %d out of range [0:%d)", id, len(r.Entries)))
	}
	e := &r.Entries[id]
	return r.b[e.Offset : e.Offset+e.Size]
}

// Err reports the first cursor overrun since the last SeekEntry. Once set,
// every following primitive read returns a zero value.
func (r *Reader) Err() error {
	return r.err
}

// Remaining is an upper bound of bytes still readable from the cursor.
func (r *Reader) Remaining() int {
	if r.err != nil || r.pos > r.limit {
		return 0
	}
	return r.limit - r.pos
}

func (r *Reader) take(n int, what string) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 {
		r.err = errors.Errorf("Negative read of %d bytes (%s) at 0x%x", n, what, r.pos)
		return nil
	}
	if r.pos+n > r.limit {
		r.err = errors.Errorf("Read of %d bytes (%s) crosses boundary 0x%x at 0x%x", n, what, r.limit, r.pos)
		return nil
	}
	b := r.b[r.pos : r.pos+n]
	r.pos += n
	return b
}

func (r *Reader) ReadUint8() uint8 {
	if b := r.take(1, "uint8"); b != nil {
		return b[0]
	}
	return 0
}

func (r *Reader) ReadInt8() int8 {
	return int8(r.ReadUint8())
}

func (r *Reader) ReadUint32() uint32 {
	if b := r.take(4, "uint32"); b != nil {
		return binary.LittleEndian.Uint32(b)
	}
	return 0
}

func (r *Reader) ReadInt32() int32 {
	return int32(r.ReadUint32())
}

func (r *Reader) ReadFloat32() float32 {
	if b := r.take(4, "float32"); b != nil {
		return math.Float32frombits(binary.LittleEndian.Uint32(b))
	}
	return 0
}

// ReadString consumes n bytes and decodes them with the configured charmap.
func (r *Reader) ReadString(n int) string {
	if b := r.take(n, "string"); b != nil {
		return utils.BytesToString(b)
	}
	return ""
}

func (r *Reader) parseHeader() error {
	r.pos = 0
	r.limit = len(r.b)
	r.err = nil
	r.Id = r.ReadString(int(r.ReadInt32()))
	r.Version = r.ReadInt32()
	return r.err
}

func (r *Reader) seekDirectory(offset uint32, what string) error {
	if int64(offset) > int64(len(r.b)-FOOTER_SIZE) {
		return errors.Errorf("%s directory offset 0x%x out of range", what, offset)
	}
	r.pos = int(offset)
	r.limit = len(r.b)
	r.err = nil
	return nil
}

func (r *Reader) parseDirectories() error {
	if len(r.b) < FOOTER_SIZE {
		return errors.Errorf("Buffer of %d bytes cannot hold directory footer", len(r.b))
	}
	entriesOffset := binary.LittleEndian.Uint32(r.b[len(r.b)-8:])
	typesOffset := binary.LittleEndian.Uint32(r.b[len(r.b)-4:])

	if err := r.parseTypes(typesOffset); err != nil {
		return err
	}
	if err := r.parseEntries(entriesOffset, typesOffset); err != nil {
		return err
	}
	return nil
}

func (r *Reader) parseTypes(typesOffset uint32) error {
	if err := r.seekDirectory(typesOffset, "types"); err != nil {
		return err
	}

	count := r.ReadInt32()
	if r.err != nil {
		return r.err
	}
	// 12 bytes is the least a type record can occupy
	if count < 0 || int(count) > r.Remaining()/12 {
		return errors.Errorf("Types directory of %d records cannot fit buffer", count)
	}

	r.Types = make([]EntryType, count)
	for i := range r.Types {
		t := &r.Types[i]
		t.Class = r.ReadString(int(r.ReadInt32()))
		t.Type = r.ReadString(int(r.ReadInt32()))
		t.Version = r.ReadInt32()
	}
	if r.err != nil {
		return errors.Wrap(r.err, "Error when reading type records")
	}
	return nil
}

func (r *Reader) parseEntries(entriesOffset uint32, typesOffset uint32) error {
	if err := r.seekDirectory(entriesOffset, "entries"); err != nil {
		return err
	}

	count := r.ReadInt32()
	if r.err != nil {
		return r.err
	}
	if count < 0 || int(count) > r.Remaining()/4 {
		return errors.Errorf("Entries directory of %d records cannot fit buffer", count)
	}

	offsets := make([]uint32, count)
	for i := range offsets {
		offsets[i] = r.ReadUint32()
	}
	if r.err != nil {
		return errors.Wrap(r.err, "Error when reading entry offsets")
	}

	r.Entries = make([]Entry, count)
	for i, offset := range offsets {
		if int64(offset)+4 > int64(len(r.b)-FOOTER_SIZE) {
			return errors.Errorf("Entry %d offset 0x%x out of range", i, offset)
		}
		typeIndex := binary.LittleEndian.Uint32(r.b[offset:])
		if typeIndex >= uint32(len(r.Types)) {
			return errors.Errorf("Entry %d type index %d out of range [0:%d)", i, typeIndex, len(r.Types))
		}
		r.Entries[i] = Entry{
			Id:     EntryId(i),
			Offset: offset + 4,
			Type:   &r.Types[typeIndex],
		}
	}

	// entry payload runs to the closest following structure
	for i := range r.Entries {
		e := &r.Entries[i]
		end := uint32(len(r.b) - FOOTER_SIZE)
		for _, candidate := range offsets {
			if candidate >= e.Offset && candidate < end {
				end = candidate
			}
		}
		for _, candidate := range []uint32{entriesOffset, typesOffset} {
			if candidate >= e.Offset && candidate < end {
				end = candidate
			}
		}
		e.Size = end - e.Offset
	}

	return nil
}

func (r *Reader) CallHandler(id EntryId) (File, error) {
	t := r.SeekEntry(id)

	h, ex := gHandlers[t.Type]
	if !ex {
		return nil, errors.Errorf("Cannot find handler for entry type %q", t.Type)
	}

	instance, err := h(&EntryRsrc{Reader: r, Entry: &r.Entries[id]})
	if err != nil {
		return nil, errors.Wrapf(err, "Handler for %q failed", t.Type)
	}
	r.cache[id] = instance
	return instance, nil
}

func (r *Reader) GetInstanceFromEntry(id EntryId) (File, error) {
	if instance, ex := r.cache[id]; ex {
		return instance, nil
	}
	return r.CallHandler(id)
}

type EntryRsrc struct {
	Reader *Reader
	Entry  *Entry
}

func (r *EntryRsrc) Name() string {
	return fmt.Sprintf("%s-%d", r.Reader.Name(), r.Entry.Id)
}

func (r *EntryRsrc) Size() int64 {
	return int64(r.Entry.Size)
}

func init() {
	pack.SetHandler(".PF", func(src utils.ResourceSource, r *io.SectionReader) (interface{}, error) {
		b := make([]byte, r.Size())
		if _, err := io.ReadFull(r, b); err != nil {
			return nil, errors.Wrapf(err, "Cannot read pack file %q", src.Name())
		}
		return NewReader(b, src)
	})
}
