package model

// ExternalActor is the reserved step origin for actors outside the modeled
// system. It is exempt from path resolution when used as a step's "from".
const ExternalActor = "user"

// Interface is a named interaction point exposed by a resource.
type Interface struct {
	ID          string         `yaml:"id"`
	Protocol    string         `yaml:"protocol"`
	Direction   string         `yaml:"direction"` // request-response | publish | subscribe | bidirectional
	Description string         `yaml:"description,omitempty"`
	Topic       string         `yaml:"topic,omitempty"`
	Metadata    map[string]any `yaml:"metadata,omitempty"`

	// Computed during indexing, never serialized.
	Parent   *Resource `yaml:"-"`
	FullPath string    `yaml:"-"`
}

// CodeRef points into the implementation backing a resource.
type CodeRef struct {
	Path        string `yaml:"path"`
	Lines       string `yaml:"lines,omitempty"`
	Function    string `yaml:"function,omitempty"`
	Description string `yaml:"description,omitempty"`
}

// Resource is a node in the architecture tree. Children are exclusively
// owned; the tree is a strict forest. The Type field is an open string tag
// ("go-service", "docker-service", ...), extensible by convention.
type Resource struct {
	ID             string         `yaml:"id"`
	Name           string         `yaml:"name"`
	Type           string         `yaml:"type"`
	Abstract       bool           `yaml:"abstract,omitempty"`
	Technology     string         `yaml:"technology,omitempty"`
	Description    string         `yaml:"description,omitempty"`
	Repository     string         `yaml:"repository,omitempty"`
	Instance       string         `yaml:"instance,omitempty"`
	Tags           []string       `yaml:"tags,omitempty"`
	Metadata       map[string]any `yaml:"metadata,omitempty"`
	Interfaces     []*Interface   `yaml:"interfaces,omitempty"`
	Children       []*Resource    `yaml:"children,omitempty"`
	Implementation []*CodeRef     `yaml:"implementation,omitempty"`

	// Computed during indexing, never serialized. Parent is a weak
	// back-reference; ownership flows strictly through Children.
	Parent   *Resource `yaml:"-"`
	FullPath string    `yaml:"-"`
}

// Walk visits the resource and its subtree in depth-first pre-order,
// children in declaration order. The callback receives the depth relative
// to the receiver (0 for the receiver itself).
func (r *Resource) Walk(fn func(res *Resource, depth int)) {
	r.walk(0, fn)
}

func (r *Resource) walk(depth int, fn func(res *Resource, depth int)) {
	fn(r, depth)
	for _, child := range r.Children {
		child.walk(depth+1, fn)
	}
}

// Relationship is a directed edge between two resource or interface paths.
// Via names an optional intermediary, rendered as a two-hop edge.
type Relationship struct {
	From        string         `yaml:"from"`
	To          string         `yaml:"to"`
	Via         string         `yaml:"via,omitempty"`
	Description string         `yaml:"description,omitempty"`
	Tags        []string       `yaml:"tags,omitempty"`
	Metadata    map[string]any `yaml:"metadata,omitempty"`
}

// AlternativeBlock is one guarded branch of an alternative step.
type AlternativeBlock struct {
	Condition string  `yaml:"condition"`
	Steps     []*Step `yaml:"steps"`
}

// Step is one action in a sequence. Parallel holds concurrent sibling
// steps; Alt holds mutually exclusive branches. A step carries at most one
// of the two; a step with neither is plain sequential.
type Step struct {
	From      string              `yaml:"from"`
	To        string              `yaml:"to"`
	Action    string              `yaml:"action"`
	Condition string              `yaml:"condition,omitempty"`
	Note      string              `yaml:"note,omitempty"`
	Parallel  []*Step             `yaml:"parallel,omitempty"`
	Alt       []*AlternativeBlock `yaml:"alt,omitempty"`
}

// Sequence is a named ordered interaction scenario.
type Sequence struct {
	ID          string  `yaml:"id"`
	Name        string  `yaml:"name"`
	Steps       []*Step `yaml:"steps"`
	Description string  `yaml:"description,omitempty"`
	Trigger     string  `yaml:"trigger,omitempty"`
}

// State is one operational state of a state machine.
type State struct {
	ID          string         `yaml:"id"`
	Name        string         `yaml:"name"`
	Description string         `yaml:"description,omitempty"`
	Tags        []string       `yaml:"tags,omitempty"`
	Metadata    map[string]any `yaml:"metadata,omitempty"`
}

// Transition moves a state machine between two declared states.
type Transition struct {
	From     string `yaml:"from"`
	To       string `yaml:"to"`
	Trigger  string `yaml:"trigger"`
	Guard    string `yaml:"guard,omitempty"`
	Action   string `yaml:"action,omitempty"`
	Sequence string `yaml:"sequence,omitempty"` // optional back-reference to a Sequence id
}

// StateMachine captures operational states for exactly one concrete resource.
type StateMachine struct {
	ID          string        `yaml:"id"`
	Name        string        `yaml:"name"`
	Resource    string        `yaml:"resource"` // dotted path of the anchored resource
	Initial     string        `yaml:"initial"`
	States      []*State      `yaml:"states"`
	Transitions []*Transition `yaml:"transitions"`
}

// ArchitectureModel is the aggregate root: a forest of resources plus flat
// lists of relationships, sequences, and state machines. The model is built
// once from parsed input, indexed once by the resolver, then only read.
type ArchitectureModel struct {
	Resources     []*Resource     `yaml:"resources,omitempty"`
	Relationships []*Relationship `yaml:"relationships,omitempty"`
	Sequences     []*Sequence     `yaml:"sequences,omitempty"`
	StateMachines []*StateMachine `yaml:"state_machines,omitempty"`

	// Lookup indexes over full dotted paths, populated by the resolver.
	ResourceIndex  map[string]*Resource  `yaml:"-"`
	InterfaceIndex map[string]*Interface `yaml:"-"`

	// Source files the model was loaded from, for error reporting.
	SourceFiles []string `yaml:"-"`
}

// Walk visits every resource in the forest in depth-first pre-order, roots
// in declaration order. Depth is 0 for roots.
func (m *ArchitectureModel) Walk(fn func(res *Resource, depth int)) {
	for _, root := range m.Resources {
		root.Walk(fn)
	}
}

// ResourceCount returns the total number of resources, nested included.
func (m *ArchitectureModel) ResourceCount() int {
	count := 0
	m.Walk(func(*Resource, int) { count++ })
	return count
}

// InterfaceCount returns the total number of interfaces across all resources.
func (m *ArchitectureModel) InterfaceCount() int {
	count := 0
	m.Walk(func(res *Resource, _ int) { count += len(res.Interfaces) })
	return count
}

// SequenceByID returns the declared sequence with the given id, or nil.
func (m *ArchitectureModel) SequenceByID(id string) *Sequence {
	for _, seq := range m.Sequences {
		if seq.ID == id {
			return seq
		}
	}
	return nil
}

// StateMachineByID returns the declared state machine with the given id, or nil.
func (m *ArchitectureModel) StateMachineByID(id string) *StateMachine {
	for _, sm := range m.StateMachines {
		if sm.ID == id {
			return sm
		}
	}
	return nil
}
