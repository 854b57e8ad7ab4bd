// Package idset provides ordered, duplicate-free uuid slices used for
// the denormalized membership references on persons and departments.
// Keeping them sorted makes persisted arrays and test fixtures stable.
package idset

import (
	"bytes"

	"github.com/google/uuid"
)

func Contains(set []uuid.UUID, id uuid.UUID) bool {
	for _, v := range set {
		if v == id {
			return true
		}
	}
	return false
}

func Add(set []uuid.UUID, id uuid.UUID) []uuid.UUID {
	if id == uuid.Nil || Contains(set, id) {
		return set
	}
	out := make([]uuid.UUID, 0, len(set)+1)
	inserted := false
	for _, v := range set {
		if !inserted && bytes.Compare(id[:], v[:]) < 0 {
			out = append(out, id)
			inserted = true
		}
		out = append(out, v)
	}
	if !inserted {
		out = append(out, id)
	}
	return out
}

func Remove(set []uuid.UUID, id uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(set))
	for _, v := range set {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func Clone(set []uuid.UUID) []uuid.UUID {
	if set == nil {
		return nil
	}
	out := make([]uuid.UUID, len(set))
	copy(out, set)
	return out
}

// Equal compares as sets, ignoring order.
func Equal(a, b []uuid.UUID) bool {
	if len(a) != len(b) {
		return false
	}
	for _, v := range a {
		if !Contains(b, v) {
			return false
		}
	}
	return true
}

// Normalize returns a sorted copy with duplicates and nil ids dropped.
func Normalize(set []uuid.UUID) []uuid.UUID {
	var out []uuid.UUID
	for _, v := range set {
		out = Add(out, v)
	}
	return out
}
