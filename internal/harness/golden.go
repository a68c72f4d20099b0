package harness

import (
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// RunWithGolden executes a scenario and compares a stable text rendering
// of the settled result against testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, renderGolden(result))

	return result, nil
}

// renderGolden flattens a result into line-oriented text: the headline
// numbers, then every snapshot variable with its ledgers. Selection
// paths are hashes and are left out; the pending count covers them.
func renderGolden(r *Result) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "scenario: %s\n", r.Scenario)
	fmt.Fprintf(&b, "passes: %d\n", r.Passes)
	fmt.Fprintf(&b, "pending: %d\n", len(r.Pending))
	fmt.Fprintf(&b, "skipped: %d\n", len(r.Skipped))
	fmt.Fprintf(&b, "hp: %d/%d ac: %d speed: %d\n",
		r.Sheet.HPCurrent, r.Sheet.HP.Total, r.Sheet.AC.Total, r.Sheet.Speed.Total)

	for _, v := range r.Snapshot {
		fmt.Fprintf(&b, "%s [%s] %q\n", v.Name, v.Variant, v.Value)
		for _, h := range v.History {
			fmt.Fprintf(&b, "  @%d %s: %q -> %q\n", h.Timestamp, h.Source, h.From, h.To)
		}
		for _, bn := range v.Bonuses {
			fmt.Fprintf(&b, "  @%d %s: %+d (%s)", bn.Timestamp, bn.Source, bn.Amount, bn.Type)
			if bn.Conditional {
				b.WriteString(" conditional")
			}
			b.WriteString("\n")
		}
	}
	return []byte(b.String())
}
