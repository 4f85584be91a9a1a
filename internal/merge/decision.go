package merge

import (
	"defaultpoetry/internal/tomldoc"
)

// Action is the outcome of resolving one key.
type Action int

const (
	// Merged means the key was absent in the target and the source value was
	// inserted.
	Merged Action = iota
	// SkippedTypeConflict means the key exists with an incompatible kind and
	// force was not set.
	SkippedTypeConflict
	// SkippedKeyExists means a scalar key already exists and force was not
	// set.
	SkippedKeyExists
	// AppendedArrayItem means a source item missing from the target array was
	// appended.
	AppendedArrayItem
	// Overwrote means force replaced an existing value.
	Overwrote
)

func (a Action) String() string {
	switch a {
	case Merged:
		return "merged"
	case SkippedTypeConflict:
		return "skipped-type-conflict"
	case SkippedKeyExists:
		return "skipped-key-exists"
	case AppendedArrayItem:
		return "appended"
	case Overwrote:
		return "overwrote"
	default:
		return "unknown"
	}
}

// Skipped reports whether the action left the target untouched.
func (a Action) Skipped() bool {
	return a == SkippedTypeConflict || a == SkippedKeyExists
}

// Path is the sequence of keys from the document root to a value.
type Path []string

// Child returns a new path extended by key. p is not modified.
func (p Path) Child(key string) Path {
	out := make(Path, len(p)+1)
	copy(out, p)
	out[len(p)] = key
	return out
}

// String renders the path as a dotted TOML key.
func (p Path) String() string {
	return tomldoc.FormatPath(p...)
}

// Decision records how one key path was resolved.
//
// Value is the node that ended up in the target (the inserted value, the
// appended item or the overwriting value); for skipped decisions it is the
// source value that was not applied. Previous is the target value before the
// decision, nil when the key was absent.
type Decision struct {
	Action     Action
	Path       Path
	Value      tomldoc.Node
	Previous   tomldoc.Node
	SourceKind tomldoc.Kind
	TargetKind tomldoc.Kind
}
