package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"archmap/internal/model"
)

const singleDoc = `
resources:
  - id: shop
    name: Shop
    type: domain
    abstract: true
    children:
      - id: api
        name: API
        type: go-service
        interfaces:
          - id: rest
            protocol: http
            direction: request-response
  - id: db
    name: Database
    type: docker-service

relationships:
  - from: shop.api
    to: db
    description: reads

sequences:
  - id: checkout
    name: Checkout
    steps:
      - from: user
        to: shop.api
        action: place order

state_machines:
  - id: api-lifecycle
    name: API Lifecycle
    resource: shop.api
    initial: idle
    states:
      - id: idle
        name: Idle
    transitions: []
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_SingleFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "architecture.yaml", singleDoc)

	m, err := Load(path, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, 3, m.ResourceCount())
	assert.Len(t, m.Relationships, 1)
	assert.Len(t, m.Sequences, 1)
	assert.Len(t, m.StateMachines, 1)
	assert.Equal(t, []string{path}, m.SourceFiles)

	api := m.Resources[0].Children[0]
	require.Len(t, api.Interfaces, 1)
	assert.Equal(t, "http", api.Interfaces[0].Protocol)
}

func TestLoad_Directory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "10-resources.yaml", `
resources:
  - id: api
    name: API
    type: go-service
`)
	writeFile(t, dir, "20-more.yaml", `
resources:
  - id: db
    name: Database
    type: docker-service
relationships:
  - from: api
    to: db
`)

	m, err := Load(dir, DefaultOptions())
	require.NoError(t, err)

	require.Len(t, m.Resources, 2)
	assert.Equal(t, "api", m.Resources[0].ID, "fragments merge in sorted file order")
	assert.Equal(t, "db", m.Resources[1].ID)
	assert.Len(t, m.Relationships, 1)
	assert.Len(t, m.SourceFiles, 2)
}

func TestLoad_DuplicateTopLevelIDs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", `
resources:
  - id: api
    name: API
    type: go-service
`)
	writeFile(t, dir, "b.yaml", `
resources:
  - id: api
    name: API Again
    type: go-service
`)

	_, err := Load(dir, DefaultOptions())
	require.Error(t, err)

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Contains(t, loadErr.Message, "Duplicate resource ID: api")
}

func TestLoad_Failures(t *testing.T) {
	t.Run("Missing path", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), DefaultOptions())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Path not found")
	})

	t.Run("Empty directory", func(t *testing.T) {
		_, err := Load(t.TempDir(), DefaultOptions())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "No YAML files found")
	})

	t.Run("Broken YAML", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "bad.yaml", "resources:\n  - id: [unclosed")
		_, err := Load(path, DefaultOptions())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "YAML parsing error")
	})
}

func TestLoad_SchemaValidation(t *testing.T) {
	missingName := `
resources:
  - id: api
    type: go-service
`

	t.Run("Rejects entries missing required fields", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "bad.yaml", missingName)
		_, err := Load(path, DefaultOptions())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Schema validation failed for resource 0")
	})

	t.Run("Skipped when disabled", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "bad.yaml", missingName)
		m, err := Load(path, Options{ValidateSchema: false})
		require.NoError(t, err)
		assert.Equal(t, 1, m.ResourceCount())
	})

	t.Run("Rejects unknown fields", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "bad.yaml", `
resources:
  - id: api
    name: API
    type: go-service
    color: purple
`)
		_, err := Load(path, DefaultOptions())
		require.Error(t, err)
	})
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "architecture.yaml", singleDoc)

	m, err := Load(src, DefaultOptions())
	require.NoError(t, err)

	out := filepath.Join(dir, "saved.yaml")
	require.NoError(t, Save(m, out))

	reloaded, err := Load(out, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, m.ResourceCount(), reloaded.ResourceCount())
	assert.Equal(t, len(m.Relationships), len(reloaded.Relationships))
	assert.Equal(t, len(m.Sequences), len(reloaded.Sequences))
	assert.Equal(t, len(m.StateMachines), len(reloaded.StateMachines))
	assert.Equal(t, m.Resources[0].Children[0].Interfaces[0].Protocol,
		reloaded.Resources[0].Children[0].Interfaces[0].Protocol)
}

func TestSaveOmitsComputedFields(t *testing.T) {
	m := &model.ArchitectureModel{
		Resources: []*model.Resource{
			{ID: "api", Name: "API", Type: "go-service", FullPath: "api"},
		},
		ResourceIndex: map[string]*model.Resource{"api": nil},
		SourceFiles:   []string{"somewhere.yaml"},
	}
	path := filepath.Join(t.TempDir(), "out.yaml")
	require.NoError(t, Save(m, path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "fullpath")
	assert.NotContains(t, string(raw), "resourceindex")
	assert.NotContains(t, string(raw), "sourcefiles")
}
