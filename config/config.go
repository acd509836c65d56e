package config

import "github.com/pkg/errors"

// IndexWidth is the widest triangle index value a decoded mesh is allowed
// to carry. The upstream authoring pipeline emits 32-bit indices, but some
// consumers store them in 16-bit buffers; with IndexWidth16 selected an
// index above 0xFFFF fails the decode instead of silently truncating.
type IndexWidth int

const (
	IndexWidth32 IndexWidth = 32
	IndexWidth16 IndexWidth = 16
)

var triangleIndexWidth = IndexWidth32

func GetIndexWidth() IndexWidth {
	return triangleIndexWidth
}

func SetIndexWidth(w IndexWidth) error {
	if w != IndexWidth16 && w != IndexWidth32 {
		return errors.Errorf("Unsupported triangle index width %d", w)
	}
	triangleIndexWidth = w
	return nil
}
