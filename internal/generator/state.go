package generator

import (
	"fmt"
	"strings"

	"archmap/internal/model"
)

// StateDiagram renders a state machine as a mermaid state diagram. Every
// declared state becomes a node, the initial state is the unique entry
// point, and each transition is a labeled edge.
func (g *Generator) StateDiagram(sm *model.StateMachine) string {
	lines := []string{"stateDiagram-v2"}

	for _, state := range sm.States {
		stateID := sanitizeID(state.ID)
		lines = append(lines, fmt.Sprintf("    %s : %s", stateID, state.Name))
		if state.Description != "" {
			lines = append(lines, fmt.Sprintf("    note right of %s : %s", stateID, state.Description))
		}
	}

	lines = append(lines, "")
	lines = append(lines, fmt.Sprintf("    [*] --> %s", sanitizeID(sm.Initial)))

	for _, tr := range sm.Transitions {
		lines = append(lines, fmt.Sprintf("    %s --> %s : %s",
			sanitizeID(tr.From), sanitizeID(tr.To), transitionLabel(tr)))
	}

	return strings.Join(lines, "\n")
}

// transitionLabel combines trigger, guard (bracketed), action
// (slash-prefixed), and sequence back-reference (parenthesized).
func transitionLabel(tr *model.Transition) string {
	label := tr.Trigger
	if tr.Guard != "" {
		label += " [" + tr.Guard + "]"
	}
	if tr.Action != "" {
		label += " / " + tr.Action
	}
	if tr.Sequence != "" {
		label += " (" + tr.Sequence + ")"
	}
	return label
}
