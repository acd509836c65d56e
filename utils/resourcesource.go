package utils

// ResourceSource identifies where a decoded instance came from.
// Pack sources are read-only, there is no save path.
type ResourceSource interface {
	Name() string
	Size() int64
}
