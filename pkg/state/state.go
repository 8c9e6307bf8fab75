// Package state provides observable values for layout trees.
//
// An [Observer] implements layout.ReadObserver. Measure policies and modifiers
// that read a [Value] through Get while a node is measured or placed are
// recorded against that node; the next Set invalidates exactly the nodes that
// read the old value.
//
//	obs := state.NewObserver()
//	width := state.NewValue(obs, 40)
//	leaf := policy.Leaf(func() geom.Size { return geom.Size{Width: width.Get(), Height: 10} })
//	// ... attach the tree to an owner whose Observer() returns obs ...
//	width.Set(80) // the leaf is asked to remeasure
//
// Like the layout tree it serves, an Observer belongs to one goroutine.
package state

import (
	"cmp"
	"slices"
)

// Observer records which observed scopes read which values.
type Observer struct {
	current *record
	scopes  map[any]*record
	readers map[any]map[*record]struct{}
	seq     uint64

	batchDepth int
	pending    []*record
}

// record is one observed scope and the values its last run read.
type record struct {
	scope     any
	onChanged func(scope any)
	reads     map[any]struct{}
	seq       uint64
	parent    *record
}

// NewObserver returns an empty observer.
func NewObserver() *Observer {
	return &Observer{
		scopes:  make(map[any]*record),
		readers: make(map[any]map[*record]struct{}),
	}
}

// ObserveReads runs block and records the values it reads under scope,
// replacing what an earlier run recorded. The first change to one of them
// calls onChanged(scope) once. Reads made by a nested ObserveReads belong to
// the nested scope only.
func (o *Observer) ObserveReads(scope any, onChanged func(scope any), block func()) {
	rec, ok := o.scopes[scope]
	if ok {
		o.forget(rec)
	} else {
		rec = &record{scope: scope, reads: make(map[any]struct{})}
		o.scopes[scope] = rec
	}
	o.seq++
	rec.seq = o.seq
	rec.onChanged = onChanged

	rec.parent = o.current
	o.current = rec
	defer func() { o.current = rec.parent }()
	block()
}

// Clear drops everything recorded for scope.
func (o *Observer) Clear(scope any) {
	if rec, ok := o.scopes[scope]; ok {
		o.forget(rec)
		delete(o.scopes, scope)
	}
}

// ClearIf drops everything recorded for the scopes match accepts.
func (o *Observer) ClearIf(match func(scope any) bool) {
	for scope, rec := range o.scopes {
		if match(scope) {
			o.forget(rec)
			delete(o.scopes, scope)
		}
	}
}

// Observed reports how many scopes currently hold reads.
func (o *Observer) Observed() int {
	n := 0
	for _, rec := range o.scopes {
		if len(rec.reads) > 0 {
			n++
		}
	}
	return n
}

// Batch runs fn and delivers the changes it makes once fn returns. A scope
// invalidated several times inside fn is notified once.
func (o *Observer) Batch(fn func()) {
	o.batchDepth++
	defer func() {
		o.batchDepth--
		if o.batchDepth == 0 {
			o.flush()
		}
	}()
	fn()
}

func (o *Observer) read(src any) {
	rec := o.current
	if rec == nil {
		return
	}
	rec.reads[src] = struct{}{}
	rs, ok := o.readers[src]
	if !ok {
		rs = make(map[*record]struct{})
		o.readers[src] = rs
	}
	rs[rec] = struct{}{}
}

func (o *Observer) changed(src any) {
	rs := o.readers[src]
	if len(rs) == 0 {
		return
	}
	recs := make([]*record, 0, len(rs))
	for rec := range rs {
		recs = append(recs, rec)
	}
	slices.SortFunc(recs, func(a, b *record) int { return cmp.Compare(a.seq, b.seq) })
	for _, rec := range recs {
		o.forget(rec)
		o.pending = append(o.pending, rec)
	}
	if o.batchDepth == 0 {
		o.flush()
	}
}

// forget removes the reads of rec so it is notified at most once per run.
func (o *Observer) forget(rec *record) {
	for src := range rec.reads {
		if rs, ok := o.readers[src]; ok {
			delete(rs, rec)
			if len(rs) == 0 {
				delete(o.readers, src)
			}
		}
	}
	clear(rec.reads)
}

func (o *Observer) flush() {
	for len(o.pending) > 0 {
		pending := o.pending
		o.pending = nil
		seen := make(map[*record]bool, len(pending))
		for _, rec := range pending {
			if seen[rec] {
				continue
			}
			seen[rec] = true
			if rec.onChanged != nil {
				rec.onChanged(rec.scope)
			}
		}
	}
}

// =============================================================================
// Values
// =============================================================================

// Value is an observable value.
type Value[T comparable] struct {
	obs *Observer
	v   T
}

// NewValue returns a value tracked by obs.
func NewValue[T comparable](obs *Observer, v T) *Value[T] {
	return &Value[T]{obs: obs, v: v}
}

// Get returns the value and records the read in the innermost observed scope.
func (v *Value[T]) Get() T {
	v.obs.read(v)
	return v.v
}

// Peek returns the value without recording a read.
func (v *Value[T]) Peek() T { return v.v }

// Set stores x. Scopes that read the old value are notified unless x equals it.
func (v *Value[T]) Set(x T) {
	if x == v.v {
		return
	}
	v.v = x
	v.obs.changed(v)
}

// Update applies fn to the current value and stores the result.
func (v *Value[T]) Update(fn func(T) T) { v.Set(fn(v.v)) }
