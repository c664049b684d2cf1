package audio

type FileOperation int

const (
	opErr FileOperation = iota
	noop

	// Audio was synthesized.
	created

	// Audio was found in the cache.
	skipped

	// Output was written.
	copied
	converted
)

func (o FileOperation) String() string {
	switch o {
	case opErr:
		return "error"
	case noop:
		return "noop"
	case created:
		return "created"
	case skipped:
		return "skipped"
	case copied:
		return "copied"
	case converted:
		return "converted"
	default:
		return "unknown"
	}
}
