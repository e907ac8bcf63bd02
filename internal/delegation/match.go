package delegation

import "initcheck/internal/typegraph"

// MatchStatus is the outcome of resolving a delegation call.
type MatchStatus uint8

const (
	MatchNone MatchStatus = iota
	MatchFound
	MatchAmbiguous
)

// Match picks the initializer a call with the given argument labels binds to.
// Arguments bind to parameters in order; a parameter without an argument must
// have a default. The best candidate skips the fewest defaulted parameters;
// equally good candidates make the call ambiguous.
func Match(args []typegraph.Arg, candidates []*typegraph.Init) (*typegraph.Init, MatchStatus) {
	var (
		best     *typegraph.Init
		bestSkip = -1
		tie      bool
	)
	for _, c := range candidates {
		skip, ok := bind(args, c.Params)
		if !ok {
			continue
		}
		switch {
		case best == nil || skip < bestSkip:
			best, bestSkip, tie = c, skip, false
		case skip == bestSkip:
			tie = true
		}
	}
	switch {
	case best == nil:
		return nil, MatchNone
	case tie:
		return nil, MatchAmbiguous
	}
	return best, MatchFound
}

func bind(args []typegraph.Arg, params []typegraph.Param) (skipped int, ok bool) {
	j := 0
	for _, p := range params {
		if j < len(args) && argLabel(args[j]) == p.ExternalLabel() {
			j++
			continue
		}
		if !p.HasDefault {
			return 0, false
		}
		skipped++
	}
	return skipped, j == len(args)
}

func argLabel(a typegraph.Arg) string {
	if a.Label == "" {
		return "_"
	}
	return a.Label
}
