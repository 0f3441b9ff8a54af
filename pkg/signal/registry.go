package signal

import "slices"

// ID identifies one subscription on one cell. IDs start at 1 and grow
// monotonically; they are never handed out twice by the same cell.
type ID uint64

// notifier is one registered observer.
type notifier[T any] struct {
	id   ID
	dead bool
	fn   func(T)
}

// registry is the ordered observer list of a cell. Entries stay sorted by
// id so lookups can binary search. Entries cancelled during a notification
// pass are tombstoned and compacted by sweep once the pass is over.
type registry[T any] struct {
	entries []notifier[T]

	// live counts entries that are not tombstoned.
	live int

	// needsSweep is set when at least one entry was tombstoned.
	needsSweep bool
}

func (r *registry[T]) len() int {
	return len(r.entries)
}

func (r *registry[T]) at(i int) notifier[T] {
	return r.entries[i]
}

// insert adds a live entry at its sorted position. Outside of nested
// subscribes this is always the tail.
func (r *registry[T]) insert(id ID, fn func(T)) {
	n := notifier[T]{id: id, fn: fn}
	if k := len(r.entries); k == 0 || r.entries[k-1].id < id {
		r.entries = append(r.entries, n)
	} else {
		i, _ := r.find(id)
		r.entries = slices.Insert(r.entries, i, n)
	}
	r.live++
}

// find returns the position of id, or the position it would be inserted at.
func (r *registry[T]) find(id ID) (int, bool) {
	return slices.BinarySearchFunc(r.entries, id, func(n notifier[T], target ID) int {
		switch {
		case n.id < target:
			return -1
		case n.id > target:
			return 1
		default:
			return 0
		}
	})
}

// remove deletes the entry at i immediately.
func (r *registry[T]) remove(i int) {
	if !r.entries[i].dead {
		r.live--
	}
	r.entries = slices.Delete(r.entries, i, i+1)
}

// tombstone marks the entry at i dead without moving anything.
func (r *registry[T]) tombstone(i int) {
	if r.entries[i].dead {
		return
	}
	r.entries[i].dead = true
	r.live--
	r.needsSweep = true
}

// sweep compacts tombstoned entries out of the list.
func (r *registry[T]) sweep() {
	if !r.needsSweep {
		return
	}
	r.needsSweep = false
	r.entries = slices.DeleteFunc(r.entries, func(n notifier[T]) bool {
		return n.dead
	})
}

// ids lists every entry id, tombstones included.
func (r *registry[T]) ids() []ID {
	out := make([]ID, len(r.entries))
	for i, n := range r.entries {
		out[i] = n.id
	}
	return out
}
