// Package testkit holds structural checks shared by tests and fuzz
// harnesses.
package testkit

import (
	"fmt"
	"slices"

	"initcheck/internal/check"
	"initcheck/internal/diag"
)

// CheckResultInvariants verifies the shape of a finished run:
//  1. diagnostics are in output order and carry a known code and a subject
//  2. skipped types have no resolved set, plan or outcomes
//  3. every other type has one outcome per declared initializer
func CheckResultInvariants(res *check.Result) error {
	if res == nil || res.Graph == nil || res.Bag == nil {
		return fmt.Errorf("incomplete result")
	}

	items := res.Bag.Items()
	for i, d := range items {
		if d.Code == diag.UnknownCode {
			return fmt.Errorf("diagnostic %d has no code: %q", i, d.Message)
		}
		if d.Subject() == "" {
			return fmt.Errorf("diagnostic %d (%s) has no subject", i, d.Code.ID())
		}
		if i > 0 && d.Order.Less(items[i-1].Order) {
			return fmt.Errorf("diagnostic %d (%s) is out of order", i, d.Code.ID())
		}
	}

	for _, t := range res.Graph.Types() {
		id := t.ID()
		if slices.Contains(res.Skipped, id) {
			if _, ok := res.Resolved[id]; ok {
				return fmt.Errorf("skipped type %s was resolved", id)
			}
			if _, ok := res.Plans[id]; ok {
				return fmt.Errorf("skipped type %s has a delegation plan", id)
			}
			if _, ok := res.Outcomes[id]; ok {
				return fmt.Errorf("skipped type %s has outcomes", id)
			}
			continue
		}
		outcomes, ok := res.Outcomes[id]
		if !ok {
			// a canceled run stops before the definit phase
			continue
		}
		if len(outcomes) != len(t.Inits) {
			return fmt.Errorf("type %s: %d outcomes for %d initializers", id, len(outcomes), len(t.Inits))
		}
		for i, o := range outcomes {
			if o.Init != t.Inits[i] {
				return fmt.Errorf("type %s: outcome %d belongs to another initializer", id, i)
			}
		}
	}
	return nil
}
