package diag

import (
	"fmt"
	"sort"
	"strings"
)

// Policy rewrites severities per code. A code mapped to Off is dropped.
type Policy struct {
	overrides map[Code]policyAction
}

type policyAction struct {
	off bool
	sev Severity
}

// ParsePolicy builds a Policy from taxonomy names (or code IDs) to
// "error", "warning", "info" or "off".
func ParsePolicy(raw map[string]string) (*Policy, error) {
	p := &Policy{overrides: make(map[Code]policyAction, len(raw))}
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, name := range keys {
		code, ok := ParseCode(name)
		if !ok {
			return nil, fmt.Errorf("unknown diagnostic %q", name)
		}
		value := strings.TrimSpace(raw[name])
		if strings.EqualFold(value, "off") {
			p.overrides[code] = policyAction{off: true}
			continue
		}
		sev, err := ParseSeverity(value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		p.overrides[code] = policyAction{sev: sev}
	}
	return p, nil
}

// Apply returns the effective severity for code and whether the diagnostic
// survives.
func (p *Policy) Apply(code Code, sev Severity) (Severity, bool) {
	if p == nil {
		return sev, true
	}
	act, ok := p.overrides[code]
	if !ok {
		return sev, true
	}
	if act.off {
		return sev, false
	}
	return act.sev, true
}

// Fingerprint is a stable textual form of the policy, used in cache keys.
func (p *Policy) Fingerprint() string {
	if p == nil || len(p.overrides) == 0 {
		return ""
	}
	codes := make([]Code, 0, len(p.overrides))
	for c := range p.overrides {
		codes = append(codes, c)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	var b strings.Builder
	for _, c := range codes {
		act := p.overrides[c]
		if act.off {
			fmt.Fprintf(&b, "%s=off;", c.ID())
			continue
		}
		fmt.Fprintf(&b, "%s=%s;", c.ID(), act.sev.Label())
	}
	return b.String()
}

// PolicyReporter applies a Policy before forwarding.
type PolicyReporter struct {
	Policy *Policy
	Next   Reporter
}

func (r PolicyReporter) Report(code Code, sev Severity, loc Location, msg string, notes []Note) {
	if r.Next == nil {
		return
	}
	sev, keep := r.Policy.Apply(code, sev)
	if !keep {
		return
	}
	r.Next.Report(code, sev, loc, msg, notes)
}
