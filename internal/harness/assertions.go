package harness

import (
	"fmt"

	"github.com/wanderers-guide/wanderers-guide-sub000/internal/breakdown"
)

// EvaluateAssertions checks every assertion against a settled result,
// recording failures on the result. All assertions run; a scenario
// report shows every broken expectation, not just the first.
func EvaluateAssertions(r *Result, assertions []Assertion) {
	for i, a := range assertions {
		if msg := evaluateAssertion(r, &a); msg != "" {
			r.AddError(fmt.Sprintf("assertion[%d] (%s): %s", i, a.Type, msg))
		}
	}
}

func evaluateAssertion(r *Result, a *Assertion) string {
	switch a.Type {
	case AssertVariable:
		v, ok := r.vars.Get(r.id, a.Variable)
		if !ok {
			return fmt.Sprintf("variable %q not set", a.Variable)
		}
		if got := v.Value.String(); got != a.Value {
			return fmt.Sprintf("variable %q = %q, want %q", a.Variable, got, a.Value)
		}

	case AssertTotal:
		pb, ok := breakdown.Proficiency(r.vars, r.id, a.Variable)
		if !ok {
			return fmt.Sprintf("variable %q is not a proficiency", a.Variable)
		}
		if pb.Total != a.Total {
			return fmt.Sprintf("%s total = %d, want %d", a.Variable, pb.Total, a.Total)
		}

	case AssertPendingCount:
		if got := len(r.Pending); got != a.Count {
			return fmt.Sprintf("pending selections = %d, want %d", got, a.Count)
		}

	case AssertHistoryCount:
		if got := len(r.vars.History(r.id, a.Variable)); got != a.Count {
			return fmt.Sprintf("history entries on %q = %d, want %d", a.Variable, got, a.Count)
		}

	case AssertHP:
		if r.Sheet.HP.Total != a.Total {
			return fmt.Sprintf("hp total = %d, want %d", r.Sheet.HP.Total, a.Total)
		}

	case AssertAC:
		if r.Sheet.AC.Total != a.Total {
			return fmt.Sprintf("ac total = %d, want %d", r.Sheet.AC.Total, a.Total)
		}

	case AssertSpeed:
		if r.Sheet.Speed.Total != a.Total {
			return fmt.Sprintf("speed total = %d, want %d", r.Sheet.Speed.Total, a.Total)
		}

	default:
		return fmt.Sprintf("unknown assertion type %q", a.Type)
	}
	return ""
}
