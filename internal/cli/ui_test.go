package cli

import (
	"strings"
	"testing"

	"github.com/matzehuels/natalchart/pkg/chart"
)

func TestOddsTableOrdersByShare(t *testing.T) {
	out := oddsTable([]chart.SignOdds{
		{Sign: "Taurus", Percent: 46.2},
		{Sign: "Gemini", Percent: 53.8},
	})
	g, tau := strings.Index(out, "Gemini"), strings.Index(out, "Taurus")
	if g < 0 || tau < 0 {
		t.Fatalf("table is missing a sign:\n%s", out)
	}
	if g > tau {
		t.Errorf("Gemini (53.8%%) should be listed before Taurus:\n%s", out)
	}
	if !strings.Contains(out, "53.8%") {
		t.Errorf("table should show percentages:\n%s", out)
	}
}
