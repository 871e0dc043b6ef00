package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleModel() *ArchitectureModel {
	return &ArchitectureModel{
		Resources: []*Resource{
			{
				ID:       "platform",
				Name:     "Platform",
				Type:     "domain",
				Abstract: true,
				Children: []*Resource{
					{
						ID:   "api",
						Name: "API",
						Type: "go-service",
						Interfaces: []*Interface{
							{ID: "rest", Protocol: "http", Direction: "request-response"},
							{ID: "events", Protocol: "amqp", Direction: "publish"},
						},
					},
					{
						ID:   "worker",
						Name: "Worker",
						Type: "go-service",
					},
				},
			},
			{
				ID:   "db",
				Name: "Database",
				Type: "docker-service",
				Interfaces: []*Interface{
					{ID: "sql", Protocol: "postgres", Direction: "request-response"},
				},
			},
		},
		Sequences: []*Sequence{
			{ID: "checkout", Name: "Checkout"},
		},
		StateMachines: []*StateMachine{
			{ID: "api-lifecycle", Name: "API Lifecycle", Resource: "platform.api"},
		},
	}
}

func TestModel_Walk(t *testing.T) {
	m := sampleModel()

	var visited []string
	var depths []int
	m.Walk(func(res *Resource, depth int) {
		visited = append(visited, res.ID)
		depths = append(depths, depth)
	})

	assert.Equal(t, []string{"platform", "api", "worker", "db"}, visited,
		"walk should be depth-first pre-order, roots in declaration order")
	assert.Equal(t, []int{0, 1, 1, 0}, depths)
}

func TestModel_Counts(t *testing.T) {
	m := sampleModel()

	assert.Equal(t, 4, m.ResourceCount())
	assert.Equal(t, 3, m.InterfaceCount())
}

func TestModel_Lookups(t *testing.T) {
	m := sampleModel()

	t.Run("Sequence by id", func(t *testing.T) {
		seq := m.SequenceByID("checkout")
		require.NotNil(t, seq)
		assert.Equal(t, "Checkout", seq.Name)
		assert.Nil(t, m.SequenceByID("missing"))
	})

	t.Run("State machine by id", func(t *testing.T) {
		sm := m.StateMachineByID("api-lifecycle")
		require.NotNil(t, sm)
		assert.Equal(t, "platform.api", sm.Resource)
		assert.Nil(t, m.StateMachineByID("missing"))
	})
}
