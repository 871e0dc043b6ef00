package generator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"archmap/internal/model"
	"archmap/internal/resolver"
)

func diagramModel() *model.ArchitectureModel {
	return &model.ArchitectureModel{
		Resources: []*model.Resource{
			{
				ID: "shop", Name: "Shop", Type: "domain", Abstract: true,
				Children: []*model.Resource{
					{
						ID: "api", Name: "API", Type: "go-service",
						Interfaces: []*model.Interface{
							{ID: "rest", Protocol: "http", Direction: "request-response"},
						},
					},
					{ID: "worker", Name: "Worker", Type: "go-service"},
				},
			},
			{ID: "db", Name: "Database", Type: "docker-service"},
		},
		Relationships: []*model.Relationship{
			{From: "shop.api", To: "db", Description: "reads"},
			{From: "shop.worker", To: "shop.api.rest"},
		},
	}
}

func newGenerator(t *testing.T, m *model.ArchitectureModel) *Generator {
	t.Helper()
	r := resolver.New(m)
	require.NoError(t, r.Index())
	return New(m, r)
}

func TestGenerator_Render(t *testing.T) {
	g := newGenerator(t, diagramModel())

	t.Run("Mermaid format", func(t *testing.T) {
		out, err := g.Render(FormatMermaid, ZoomLandscape)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(out, "graph TB"))
	})

	t.Run("Unknown format is an error", func(t *testing.T) {
		_, err := g.Render("plantuml", ZoomLandscape)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported diagram format")
	})
}

func TestGenerator_FlowchartZoom(t *testing.T) {
	g := newGenerator(t, diagramModel())

	t.Run("Landscape shows roots only", func(t *testing.T) {
		out := g.Flowchart(ZoomLandscape)

		assert.Contains(t, out, "shop[Shop]")
		assert.Contains(t, out, "db[Database]")
		assert.NotContains(t, out, "shop_api[")
		assert.NotContains(t, out, "shop_worker")
	})

	t.Run("Domain groups abstract boundaries", func(t *testing.T) {
		out := g.Flowchart(ZoomDomain)

		assert.Contains(t, out, `subgraph cluster_shop["Shop"]`)
		assert.Contains(t, out, "shop_api[API<br/>go-service]")
		assert.Contains(t, out, "shop_worker[Worker<br/>go-service]")
		assert.Contains(t, out, "end")
		assert.Contains(t, out, "db[Database<br/>docker-service]")
	})

	t.Run("Service shows concrete resources and interfaces", func(t *testing.T) {
		out := g.Flowchart(ZoomService)

		assert.NotContains(t, out, "shop[", "abstract resources are out of scope at service zoom")
		assert.Contains(t, out, "shop_api[API<br/>go-service]")
		assert.Contains(t, out, "shop_api_rest[rest<br/>http]")
		assert.Contains(t, out, "shop_api --> shop_api_rest")
	})

	t.Run("Domain under a concrete root", func(t *testing.T) {
		m := &model.ArchitectureModel{
			Resources: []*model.Resource{
				{
					ID: "root", Name: "Root", Type: "system",
					Children: []*model.Resource{
						{
							ID: "domain", Name: "Domain", Type: "domain", Abstract: true,
							Children: []*model.Resource{
								{ID: "svc", Name: "Service", Type: "go-service"},
							},
						},
					},
				},
			},
		}
		out := newGenerator(t, m).Flowchart(ZoomDomain)

		assert.Contains(t, out, "root[Root<br/>system]")
		assert.Contains(t, out, `subgraph cluster_root_domain["Domain"]`)
		assert.Contains(t, out, "root_domain_svc[Service<br/>go-service]")
	})

	t.Run("Default shows everything", func(t *testing.T) {
		out := g.Flowchart("")

		assert.Contains(t, out, "shop[Shop<br/>domain]")
		assert.Contains(t, out, "shop_api[API<br/>go-service]")
		assert.Contains(t, out, "db[Database<br/>docker-service]")
	})
}

func TestGenerator_FlowchartEdges(t *testing.T) {
	t.Run("Edge labels and interface endpoints", func(t *testing.T) {
		g := newGenerator(t, diagramModel())
		out := g.Flowchart("")

		assert.Contains(t, out, "shop_api -->|reads| db")
		assert.Contains(t, out, "shop_worker --> shop_api_rest")
	})

	t.Run("Via renders two hops", func(t *testing.T) {
		m := diagramModel()
		m.Relationships = []*model.Relationship{
			{From: "shop.worker", To: "db", Via: "shop.api", Description: "through the api"},
		}
		g := newGenerator(t, m)
		out := g.Flowchart("")

		assert.Contains(t, out, "shop_worker -->|through the api| shop_api")
		assert.Contains(t, out, "shop_api --> db")
	})

	t.Run("Edges between hidden endpoints are dropped", func(t *testing.T) {
		g := newGenerator(t, diagramModel())
		out := g.Flowchart(ZoomLandscape)

		assert.NotContains(t, out, "-->", "no relationship has both endpoints visible at landscape zoom")
	})
}

func TestGenerator_Deterministic(t *testing.T) {
	g := newGenerator(t, diagramModel())

	first := g.Flowchart(ZoomDomain)
	second := g.Flowchart(ZoomDomain)
	assert.Equal(t, first, second)
}

func TestSanitizeID(t *testing.T) {
	assert.Equal(t, "shop_api_rest", sanitizeID("shop.api.rest"))
	assert.Equal(t, "my_service", sanitizeID("my-service"))
}
