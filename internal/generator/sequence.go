package generator

import (
	"fmt"
	"strings"

	"archmap/internal/model"
)

// SequenceDiagram renders one interaction scenario as a mermaid sequence
// diagram. Participants are declared in first-appearance order across all
// steps, nested parallel and alternative branches included.
func (g *Generator) SequenceDiagram(seq *model.Sequence) string {
	lines := []string{"sequenceDiagram"}

	for _, ref := range collectParticipants(seq.Steps) {
		lines = append(lines, fmt.Sprintf("    participant %s as %s", sanitizeID(ref), displayName(ref)))
	}
	lines = append(lines, "")

	renderSteps(&lines, seq.Steps, "    ")

	return strings.Join(lines, "\n")
}

// collectParticipants gathers distinct step endpoints in first-appearance
// order, walking nested parallel and alt branches depth-first.
func collectParticipants(steps []*model.Step) []string {
	var order []string
	seen := make(map[string]bool)

	var walk func(steps []*model.Step)
	walk = func(steps []*model.Step) {
		for _, step := range steps {
			for _, ref := range []string{step.From, step.To} {
				if !seen[ref] {
					seen[ref] = true
					order = append(order, ref)
				}
			}
			walk(step.Parallel)
			for _, block := range step.Alt {
				walk(block.Steps)
			}
		}
	}
	walk(steps)
	return order
}

// displayName shortens a dotted path to its last one or two segments for
// readability on the diagram.
func displayName(ref string) string {
	segments := strings.Split(ref, ".")
	if len(segments) >= 2 {
		return strings.Join(segments[len(segments)-2:], ".")
	}
	return ref
}

func renderSteps(lines *[]string, steps []*model.Step, indent string) {
	for _, step := range steps {
		renderStep(lines, step, indent)
	}
}

func renderStep(lines *[]string, step *model.Step, indent string) {
	if len(step.Parallel) > 0 {
		// Concurrent block: primary action first, each sibling as an
		// "and" branch.
		*lines = append(*lines, indent+"par "+step.Action)
		*lines = append(*lines, indent+"    "+arrowLine(step))
		renderNote(lines, step, indent+"    ")
		for _, sibling := range step.Parallel {
			*lines = append(*lines, indent+"and "+sibling.Action)
			renderStep(lines, sibling, indent+"    ")
		}
		*lines = append(*lines, indent+"end")
	} else {
		*lines = append(*lines, indent+arrowLine(step))
		renderNote(lines, step, indent)
	}

	if len(step.Alt) > 0 {
		for i, block := range step.Alt {
			keyword := "alt"
			if i > 0 {
				keyword = "else"
			}
			*lines = append(*lines, indent+keyword+" "+block.Condition)
			renderSteps(lines, block.Steps, indent+"    ")
		}
		*lines = append(*lines, indent+"end")
	}
}

// arrowLine renders one action. A conditioned step uses the dashed arrow
// and carries its condition in the label.
func arrowLine(step *model.Step) string {
	from := sanitizeID(step.From)
	to := sanitizeID(step.To)
	if step.Condition != "" {
		return fmt.Sprintf("%s-->>%s: [%s] %s", from, to, step.Condition, step.Action)
	}
	return fmt.Sprintf("%s->>%s: %s", from, to, step.Action)
}

func renderNote(lines *[]string, step *model.Step, indent string) {
	if step.Note == "" {
		return
	}
	*lines = append(*lines, fmt.Sprintf("%sNote over %s,%s: %s", indent, sanitizeID(step.From), sanitizeID(step.To), step.Note))
}
