package render

import (
	"strings"
	"testing"

	"github.com/pschleger/workflow-canvas/pkg/workflow"
)

func testConfiguration() workflow.Configuration {
	return workflow.Configuration{
		Name:         "order",
		Version:      "1.0",
		InitialState: "pending",
		States: map[string]workflow.StateDefinition{
			"pending": {
				Name: "Pending",
				Transitions: []workflow.TransitionDefinition{
					{Name: "Ship", Next: "shipped"},
					{Name: "Cancel", Next: "cancelled", Disabled: true},
				},
			},
			"shipped":   {Name: "Shipped"},
			"cancelled": {Name: "Cancelled"},
		},
	}
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(testConfiguration(), Options{})

	wants := []string{
		"digraph workflow {",
		"rankdir=TB;",
		`"pending" -> "shipped"`,
		`"pending" -> "cancelled"`,
	}
	for _, want := range wants {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT output missing %q:\n%s", want, dot)
		}
	}
}

func TestToDOTMarksInitialAndTerminal(t *testing.T) {
	dot := ToDOT(testConfiguration(), Options{})

	for _, line := range strings.Split(dot, "\n") {
		switch {
		case strings.HasPrefix(strings.TrimSpace(line), `"pending" [`):
			if !strings.Contains(line, "penwidth=2") {
				t.Errorf("initial state not bold: %s", line)
			}
		case strings.HasPrefix(strings.TrimSpace(line), `"shipped" [`):
			if !strings.Contains(line, "fillcolor=lightgrey") {
				t.Errorf("terminal state not grey: %s", line)
			}
		}
	}
}

func TestToDOTDisabledTransitionsAreDashed(t *testing.T) {
	dot := ToDOT(testConfiguration(), Options{})

	for _, line := range strings.Split(dot, "\n") {
		if strings.Contains(line, `-> "cancelled"`) && !strings.Contains(line, "style=dashed") {
			t.Errorf("disabled transition not dashed: %s", line)
		}
		if strings.Contains(line, `-> "shipped"`) && strings.Contains(line, "style=dashed") {
			t.Errorf("enabled transition dashed: %s", line)
		}
	}
}

func TestToDOTDirection(t *testing.T) {
	dot := ToDOT(testConfiguration(), Options{Direction: "LR"})
	if !strings.Contains(dot, "rankdir=LR;") {
		t.Errorf("DOT output missing rankdir=LR:\n%s", dot)
	}
}

func TestToDOTDetailed(t *testing.T) {
	c := testConfiguration()
	pending := c.States["pending"]
	pending.Transitions[0].Criterion = &workflow.Criterion{
		Field: "paid", Operator: workflow.OperatorEquals, Value: true,
	}
	c.States["pending"] = pending

	dot := ToDOT(c, Options{Detailed: true})
	if !strings.Contains(dot, "if paid") {
		t.Errorf("detailed DOT output missing criterion:\n%s", dot)
	}
}

func TestToDOTDeterministic(t *testing.T) {
	c := testConfiguration()
	first := ToDOT(c, Options{})
	for range 5 {
		if again := ToDOT(c, Options{}); again != first {
			t.Fatal("DOT output not deterministic")
		}
	}
}
