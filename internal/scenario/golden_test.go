package scenario

import (
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"
)

// TestGoldenReports runs every scenario under testdata and compares the
// rendered report against its golden file. Regenerate with: go test
// ./internal/scenario -update
func TestGoldenReports(t *testing.T) {
	scenarios := []string{
		"king_beats_queen",
		"war_escalation",
		"outcome_space",
		"stacked_deck",
	}
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	for _, name := range scenarios {
		t.Run(name, func(t *testing.T) {
			sc, err := Load(filepath.Join("testdata", name+".yaml"))
			require.NoError(t, err)

			report, err := Run(sc)
			require.NoError(t, err)
			require.Zero(t, report.Failures(), report.Render())

			g.Assert(t, name, []byte(report.Render()))
		})
	}
}
