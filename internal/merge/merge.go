package merge

import (
	"errors"
	"fmt"

	"defaultpoetry/internal/tomldoc"
)

var (
	// ErrCyclicDocument is returned when a table or array contains itself.
	ErrCyclicDocument = errors.New("cyclic document")
	// ErrNilTable is returned when the target or source table is nil.
	ErrNilTable = errors.New("nil table")
)

// Options controls conflict resolution.
type Options struct {
	// Force overwrites existing scalars and type-conflicting values. It has no
	// effect on arrays, which are always unioned.
	Force bool
}

// Compatible reports whether source may be merged onto target without a type
// conflict. A missing target is always compatible.
func Compatible(source, target tomldoc.Node) bool {
	if target == nil {
		return true
	}
	return source.Kind() == target.Kind()
}

// Merge folds source into target in place and returns one decision per
// resolved key path, depth-first in source key order. Keys that only exist in
// target are never removed and source is never modified; values copied into
// target are deep clones.
func Merge(target, source *tomldoc.Table, opts Options) ([]Decision, error) {
	if target == nil || source == nil {
		return nil, ErrNilTable
	}
	if err := checkAcyclic(source, nil, map[tomldoc.Node]bool{}); err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}
	if err := checkAcyclic(target, nil, map[tomldoc.Node]bool{}); err != nil {
		return nil, fmt.Errorf("target: %w", err)
	}

	m := &merger{opts: opts}
	m.table(target, source, nil)
	return m.decisions, nil
}

type merger struct {
	opts      Options
	decisions []Decision
}

func (m *merger) emit(d Decision) {
	m.decisions = append(m.decisions, d)
}

func (m *merger) table(target, source *tomldoc.Table, path Path) {
	for key, value := range source.All() {
		keyPath := path.Child(key)
		current := target.Get(key)

		if !Compatible(value, current) {
			if !m.opts.Force {
				m.emit(Decision{
					Action:     SkippedTypeConflict,
					Path:       keyPath,
					Value:      value,
					Previous:   current,
					SourceKind: value.Kind(),
					TargetKind: current.Kind(),
				})
				continue
			}
			m.insert(target, source, key, keyPath, current, Overwrote)
			continue
		}

		if current == nil {
			m.insert(target, source, key, keyPath, nil, Merged)
			continue
		}

		switch {
		case value.Kind().IsArray():
			m.array(current.(*tomldoc.Array), value.(*tomldoc.Array), keyPath)
		case value.Kind() == tomldoc.KindTable:
			m.table(current.(*tomldoc.Table), value.(*tomldoc.Table), keyPath)
		case m.opts.Force:
			m.insert(target, source, key, keyPath, current, Overwrote)
		default:
			m.emit(Decision{
				Action:     SkippedKeyExists,
				Path:       keyPath,
				Value:      value,
				Previous:   current,
				SourceKind: value.Kind(),
				TargetKind: current.Kind(),
			})
		}
	}
}

func (m *merger) insert(target, source *tomldoc.Table, key string, path Path, previous tomldoc.Node, action Action) {
	value := target.Adopt(key, source)
	d := Decision{
		Action:     action,
		Path:       path,
		Value:      value,
		Previous:   previous,
		SourceKind: value.Kind(),
	}
	if previous != nil {
		d.TargetKind = previous.Kind()
	}
	m.emit(d)
}

// array appends every source item not already present in target. Items
// appended earlier in the same pass count as present, so duplicates within
// source collapse too.
func (m *merger) array(target, source *tomldoc.Array, path Path) {
	seen := make([]tomldoc.Node, 0, target.Len()+source.Len())
	for _, item := range target.All() {
		seen = append(seen, item)
	}

	for _, item := range source.All() {
		if containsEqual(seen, item) {
			continue
		}
		clone := item.Clone()
		target.Append(clone)
		seen = append(seen, clone)
		m.emit(Decision{
			Action:     AppendedArrayItem,
			Path:       path,
			Value:      clone,
			SourceKind: source.Kind(),
			TargetKind: target.Kind(),
		})
	}
}

func containsEqual(nodes []tomldoc.Node, n tomldoc.Node) bool {
	for _, candidate := range nodes {
		if tomldoc.Equal(candidate, n) {
			return true
		}
	}
	return false
}

// checkAcyclic fails when a container is reachable from itself. Shared
// subtrees that are not on the current path are allowed.
func checkAcyclic(n tomldoc.Node, path Path, onPath map[tomldoc.Node]bool) error {
	switch v := n.(type) {
	case *tomldoc.Table:
		if onPath[v] {
			return fmt.Errorf("%w at %s", ErrCyclicDocument, displayPath(path))
		}
		onPath[v] = true
		defer delete(onPath, v)
		for key, child := range v.All() {
			if err := checkAcyclic(child, path.Child(key), onPath); err != nil {
				return err
			}
		}
	case *tomldoc.Array:
		if onPath[v] {
			return fmt.Errorf("%w at %s", ErrCyclicDocument, displayPath(path))
		}
		onPath[v] = true
		defer delete(onPath, v)
		for i, child := range v.All() {
			if err := checkAcyclic(child, path.Child(fmt.Sprintf("[%d]", i)), onPath); err != nil {
				return err
			}
		}
	}
	return nil
}

func displayPath(p Path) string {
	if len(p) == 0 {
		return "<root>"
	}
	return p.String()
}
