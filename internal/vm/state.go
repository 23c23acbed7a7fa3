package vm

import (
	"github.com/rangoo94/object-regexp/pkg/objects"
)

// captures is a slot-indexed, copy-on-write group table.
type captures []capture

type capture struct {
	span objects.Span
	ok   bool
}

// with returns a copy of c with slot set to span.
func (c captures) with(slot int32, span objects.Span, size int) captures {
	next := make(captures, size)
	copy(next, c)
	next[slot] = capture{span: span, ok: true}
	return next
}

func (c captures) groups(names []string) objects.Groups {
	out := make(objects.Groups, len(names))
	for slot, g := range c {
		if g.ok {
			out[names[slot]] = g.span
		}
	}
	return out
}

// frame records an open construct. Frames are never modified once pushed,
// so save-points can share them.
type frame struct {
	node int32
	// start is the position the construct, or the current loop iteration,
	// started at.
	start  int
	groups captures
	// point is the save-point pushed when the construct was entered.
	point *savePoint
	// mark is the save-point top when an atomic group was entered.
	mark   *savePoint
	parent *frame
}

type action uint8

const (
	// enter runs the instruction from its beginning.
	enter action = iota
	// complete continues as if the instruction had just succeeded.
	complete
	// fail continues as if the instruction had just failed.
	fail
)

// savePoint is a place the search can return to.
type savePoint struct {
	action  action
	node    int32
	pos     int
	groups  captures
	frames  *frame
	ignored bool
	prev    *savePoint
}
