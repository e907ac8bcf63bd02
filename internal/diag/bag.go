package diag

import (
	"sort"

	"fortio.org/safecast"
)

// MaxLimit is the largest cap a Bag can hold.
const MaxLimit = int(^uint16(0))

// Bag collects diagnostics without a bound. The cap is applied by Truncate,
// once the items are in report order.
type Bag struct {
	items []Diagnostic
	max   uint16
}

// NewBag returns a bag capped at max items. Values above MaxLimit or below
// zero fall back to MaxLimit.
func NewBag(max int) *Bag {
	capped, err := safecast.Conv[uint16](max)
	if err != nil {
		capped = ^uint16(0)
	}
	return &Bag{
		items: make([]Diagnostic, 0, min(int(capped), 64)),
		max:   capped,
	}
}

func (b *Bag) Add(d Diagnostic) {
	b.items = append(b.items, d)
}

// Truncate drops everything past the cap and returns how many items went.
func (b *Bag) Truncate() int {
	limit := int(b.max)
	if len(b.items) <= limit {
		return 0
	}
	dropped := len(b.items) - limit
	clear(b.items[limit:])
	b.items = b.items[:limit]
	return dropped
}

func (b *Bag) Len() int {
	return len(b.items)
}

// Items returns the backing slice. Callers must not modify it.
func (b *Bag) Items() []Diagnostic {
	return b.items
}

// Codes returns the codes of all items in bag order.
func (b *Bag) Codes() []Code {
	out := make([]Code, len(b.items))
	for i, d := range b.items {
		out[i] = d.Code
	}
	return out
}

// Count returns how many items carry code.
func (b *Bag) Count(code Code) int {
	n := 0
	for _, d := range b.items {
		if d.Code == code {
			n++
		}
	}
	return n
}

// Filter keeps only the items for which keep returns true.
func (b *Bag) Filter(keep func(Diagnostic) bool) {
	out := b.items[:0]
	for _, d := range b.items {
		if keep(d) {
			out = append(out, d)
		}
	}
	clear(b.items[len(out):])
	b.items = out
}

// Transform rewrites every item in place.
func (b *Bag) Transform(fn func(Diagnostic) Diagnostic) {
	for i := range b.items {
		b.items[i] = fn(b.items[i])
	}
}

// Sort orders items by type, initializer and statement, then severity
// (highest first), then code.
func (b *Bag) Sort() {
	sort.SliceStable(b.items, func(i, j int) bool {
		di, dj := b.items[i], b.items[j]
		if di.Order != dj.Order {
			return di.Order.Less(dj.Order)
		}
		if di.Severity != dj.Severity {
			return di.Severity > dj.Severity
		}
		return di.Code < dj.Code
	})
}
