package validator

import (
	"fmt"

	"archmap/internal/model"
	"archmap/internal/resolver"
)

// Severity of a validation issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is a single problem found in a model. Issues are data: the
// validator never aborts on them, it accumulates them and keeps going.
type Issue struct {
	Severity Severity
	Message  string
	Path     string // resource/interface path or reference, when known
	Rule     string // rule identifier, e.g. "unique-ids"
}

// Result of validating an architecture model. Errors invalidate the model;
// warnings never do.
type Result struct {
	Valid    bool
	Errors   []Issue
	Warnings []Issue
}

// TotalIssues returns the combined error and warning count.
func (r *Result) TotalIssues() int {
	return len(r.Errors) + len(r.Warnings)
}

func (r *Result) addError(rule, path, format string, args ...any) {
	r.Errors = append(r.Errors, Issue{
		Severity: SeverityError,
		Message:  fmt.Sprintf(format, args...),
		Path:     path,
		Rule:     rule,
	})
	r.Valid = false
}

func (r *Result) addWarning(rule, path, format string, args ...any) {
	r.Warnings = append(r.Warnings, Issue{
		Severity: SeverityWarning,
		Message:  fmt.Sprintf(format, args...),
		Path:     path,
		Rule:     rule,
	})
}

// Validator runs a fixed, ordered battery of structural and referential
// checks against a model. The order is semantically irrelevant but kept
// stable so two runs over the same model produce identical output.
type Validator struct {
	m        *model.ArchitectureModel
	resolver *resolver.PathResolver
}

// New creates a validator for the model. The validator indexes the model
// leniently so it can complete a full pass even when paths collide; the
// collisions themselves surface under the unique-ids rule.
func New(m *model.ArchitectureModel) *Validator {
	r := resolver.New(m)
	r.IndexAll()
	return &Validator{m: m, resolver: r}
}

// Validate runs every rule and returns the accumulated result. Running it
// twice on the same model yields identical results.
func (v *Validator) Validate() *Result {
	result := &Result{Valid: true}

	// Errors.
	v.checkUniqueIDs(result)
	v.checkAbstractResources(result)
	v.checkRelationshipReferences(result)
	v.checkSequenceReferences(result)
	v.checkStateMachineReferences(result)
	v.checkStateMachineAnchoring(result)

	// Warnings.
	v.checkStateReachability(result)
	v.checkOrphanInterfaces(result)
	v.checkOrphanSequences(result)

	return result
}

// Rule 1: full paths globally unique, ids unique among direct siblings.
// Paths are recomputed here rather than read from the index so the check
// stands on its own; the sibling check fires independently because its
// message distinguishes "same path" from "same parent, same id".
func (v *Validator) checkUniqueIDs(result *Result) {
	seenPaths := make(map[string]bool)

	var check func(res *model.Resource, parentPath string)
	check = func(res *model.Resource, parentPath string) {
		currentPath := res.ID
		if parentPath != "" {
			currentPath = parentPath + "." + res.ID
		}

		if seenPaths[currentPath] {
			result.addError("unique-ids", currentPath,
				"Duplicate resource path: %s", currentPath)
		}
		seenPaths[currentPath] = true

		childIDs := make(map[string]bool)
		for _, child := range res.Children {
			if childIDs[child.ID] {
				result.addError("unique-ids", currentPath,
					"Duplicate sibling ID '%s' under '%s'", child.ID, currentPath)
			}
			childIDs[child.ID] = true
		}

		for _, child := range res.Children {
			check(child, currentPath)
		}
	}

	rootIDs := make(map[string]bool)
	for _, root := range v.m.Resources {
		if rootIDs[root.ID] {
			result.addError("unique-ids", root.ID,
				"Duplicate sibling ID '%s' at root", root.ID)
		}
		rootIDs[root.ID] = true
	}
	for _, root := range v.m.Resources {
		check(root, "")
	}
}

// Rule 2: an abstract resource must contain at least one child.
func (v *Validator) checkAbstractResources(result *Result) {
	v.m.Walk(func(res *model.Resource, _ int) {
		if res.Abstract && len(res.Children) == 0 {
			result.addError("abstract-resources", res.FullPath,
				"Abstract resource '%s' has no children", res.FullPath)
		}
	})
}

// Rule 3: every relationship endpoint must resolve. Each unresolved
// endpoint is its own error.
func (v *Validator) checkRelationshipReferences(result *Result) {
	for _, rel := range v.m.Relationships {
		if !v.resolver.Resolve(rel.From).Found() {
			result.addError("relationship-references", rel.From,
				"Relationship 'from' reference not found: %s", rel.From)
		}
		if !v.resolver.Resolve(rel.To).Found() {
			result.addError("relationship-references", rel.To,
				"Relationship 'to' reference not found: %s", rel.To)
		}
		if rel.Via != "" && !v.resolver.Resolve(rel.Via).Found() {
			result.addError("relationship-references", rel.Via,
				"Relationship 'via' reference not found: %s", rel.Via)
		}
	}
}

// Rule 4: every step endpoint must resolve, recursively through parallel
// and alt nesting. The external-actor token is exempt for "from" only.
// Each error carries a position tag so a step three levels deep is still
// findable.
func (v *Validator) checkSequenceReferences(result *Result) {
	for _, seq := range v.m.Sequences {
		v.checkSteps(result, seq, seq.Steps, "steps")
	}
}

func (v *Validator) checkSteps(result *Result, seq *model.Sequence, steps []*model.Step, position string) {
	for i, step := range steps {
		pos := fmt.Sprintf("%s[%d]", position, i)

		if step.From != model.ExternalActor && !v.resolver.Resolve(step.From).Found() {
			result.addError("sequence-references", step.From,
				"Sequence '%s' %s: 'from' reference not found: %s", seq.ID, pos, step.From)
		}
		if !v.resolver.Resolve(step.To).Found() {
			result.addError("sequence-references", step.To,
				"Sequence '%s' %s: 'to' reference not found: %s", seq.ID, pos, step.To)
		}

		if len(step.Parallel) > 0 {
			v.checkSteps(result, seq, step.Parallel, pos+".parallel")
		}
		for j, block := range step.Alt {
			v.checkSteps(result, seq, block.Steps, fmt.Sprintf("%s.alt[%d].steps", pos, j))
		}
	}
}

// Rule 5: state machine internal references. The anchored resource must
// exist, initial and every transition endpoint must be declared states,
// and a transition's sequence back-reference must name a declared sequence.
func (v *Validator) checkStateMachineReferences(result *Result) {
	declaredSequences := make(map[string]bool)
	for _, seq := range v.m.Sequences {
		declaredSequences[seq.ID] = true
	}

	for _, sm := range v.m.StateMachines {
		if v.resolver.ResolveResource(sm.Resource) == nil {
			result.addError("state-machine-references", sm.Resource,
				"State machine '%s' resource not found: %s", sm.ID, sm.Resource)
		}

		states := make(map[string]bool)
		for _, state := range sm.States {
			states[state.ID] = true
		}

		if !states[sm.Initial] {
			result.addError("state-machine-references", sm.Resource,
				"State machine '%s' initial state not declared: %s", sm.ID, sm.Initial)
		}

		for _, tr := range sm.Transitions {
			if !states[tr.From] {
				result.addError("state-machine-references", sm.Resource,
					"State machine '%s' transition 'from' state not declared: %s", sm.ID, tr.From)
			}
			if !states[tr.To] {
				result.addError("state-machine-references", sm.Resource,
					"State machine '%s' transition 'to' state not declared: %s", sm.ID, tr.To)
			}
			if tr.Sequence != "" && !declaredSequences[tr.Sequence] {
				result.addError("state-machine-references", sm.Resource,
					"State machine '%s' transition references unknown sequence: %s", sm.ID, tr.Sequence)
			}
		}
	}
}

// Rule 6: a state machine must anchor to a concrete resource. An abstract
// resource has no runtime, so it has no operational states.
func (v *Validator) checkStateMachineAnchoring(result *Result) {
	for _, sm := range v.m.StateMachines {
		res := v.resolver.ResolveResource(sm.Resource)
		if res != nil && res.Abstract {
			result.addError("state-machine-anchoring", sm.Resource,
				"State machine '%s' is anchored to abstract resource '%s'", sm.ID, sm.Resource)
		}
	}
}

// Rule 7 (warning): every declared state should be reachable from the
// initial state via transitions. Unreachable states may be reserved for
// future transitions, so this never invalidates the model.
func (v *Validator) checkStateReachability(result *Result) {
	for _, sm := range v.m.StateMachines {
		next := make(map[string][]string)
		for _, tr := range sm.Transitions {
			next[tr.From] = append(next[tr.From], tr.To)
		}

		reached := map[string]bool{sm.Initial: true}
		queue := []string{sm.Initial}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			for _, to := range next[cur] {
				if !reached[to] {
					reached[to] = true
					queue = append(queue, to)
				}
			}
		}

		for _, state := range sm.States {
			if !reached[state.ID] {
				result.addWarning("state-reachability", sm.Resource,
					"State machine '%s' state '%s' is unreachable from initial state '%s'",
					sm.ID, state.ID, sm.Initial)
			}
		}
	}
}

// Rule 8 (warning): interfaces never referenced by any relationship.
func (v *Validator) checkOrphanInterfaces(result *Result) {
	used := make(map[string]bool)
	for _, rel := range v.m.Relationships {
		if v.resolver.Resolve(rel.From).IsInterface {
			used[rel.From] = true
		}
		if v.resolver.Resolve(rel.To).IsInterface {
			used[rel.To] = true
		}
	}

	// Walk the tree rather than ranging the index so the report order is
	// deterministic.
	v.m.Walk(func(res *model.Resource, _ int) {
		for _, iface := range res.Interfaces {
			if !used[iface.FullPath] {
				result.addWarning("orphan-interfaces", iface.FullPath,
					"Interface '%s' is not used in any relationships", iface.FullPath)
			}
		}
	})
}

// Rule 9 (warning): sequences never referenced by any transition.
func (v *Validator) checkOrphanSequences(result *Result) {
	referenced := make(map[string]bool)
	for _, sm := range v.m.StateMachines {
		for _, tr := range sm.Transitions {
			if tr.Sequence != "" {
				referenced[tr.Sequence] = true
			}
		}
	}

	for _, seq := range v.m.Sequences {
		if !referenced[seq.ID] {
			result.addWarning("orphan-sequences", seq.ID,
				"Sequence '%s' is not referenced by any state machine transition", seq.ID)
		}
	}
}
