package diag

type dedupKey struct {
	code  Code
	sev   Severity
	subj  string
	prop  string
	order Order
	msg   string
}

// DedupReporter wraps another Reporter and suppresses duplicate diagnostics
// with the same code, severity, location and message.
type DedupReporter struct {
	next Reporter
	seen map[dedupKey]struct{}
}

// NewDedupReporter returns a Reporter that filters out duplicates while
// forwarding unique diagnostics to the provided reporter.
func NewDedupReporter(next Reporter) *DedupReporter {
	return &DedupReporter{
		next: next,
		seen: make(map[dedupKey]struct{}),
	}
}

func (r *DedupReporter) Report(code Code, sev Severity, loc Location, msg string, notes []Note) {
	if r == nil {
		return
	}
	subj := loc.Initializer
	if subj == "" {
		subj = loc.Type
	}
	key := dedupKey{
		code:  code,
		sev:   sev,
		subj:  subj,
		prop:  loc.Property,
		order: loc.Order,
		msg:   msg,
	}
	if _, ok := r.seen[key]; ok {
		return
	}
	r.seen[key] = struct{}{}
	if r.next != nil {
		r.next.Report(code, sev, loc, msg, notes)
	}
}
