package generator

import (
	"fmt"
	"strings"

	"archmap/internal/model"
	"archmap/internal/resolver"
)

// Zoom levels controlling how much of the resource tree a component
// diagram shows. Any other value renders every resource at every depth.
const (
	ZoomLandscape = "landscape" // root resources only
	ZoomDomain    = "domain"    // abstraction boundaries and their direct children
	ZoomService   = "service"   // concrete resources plus their interfaces
)

// FormatMermaid is the only diagram syntax currently supported.
const FormatMermaid = "mermaid"

// Generator renders deterministic text diagrams from an indexed model.
type Generator struct {
	m        *model.ArchitectureModel
	resolver *resolver.PathResolver
}

// New creates a generator over an already-indexed model.
func New(m *model.ArchitectureModel, r *resolver.PathResolver) *Generator {
	return &Generator{m: m, resolver: r}
}

// Render produces a component diagram in the requested format and zoom.
// An unknown format is a returned error, never a panic.
func (g *Generator) Render(format, zoom string) (string, error) {
	switch format {
	case FormatMermaid:
		return g.Flowchart(zoom), nil
	default:
		return "", fmt.Errorf("unsupported diagram format: %q", format)
	}
}

// Flowchart renders the component graph for the given zoom level.
func (g *Generator) Flowchart(zoom string) string {
	nodes, relationships := g.collectNodesForView(zoom)
	return g.renderFlowchart(nodes, relationships, zoom)
}

// collectNodesForView filters resources and relationships by zoom level in
// one pass over the pre-order traversal of each root.
func (g *Generator) collectNodesForView(zoom string) ([]*model.Resource, []*model.Relationship) {
	var nodes []*model.Resource
	seen := make(map[*model.Resource]bool)
	add := func(res *model.Resource) {
		if !seen[res] {
			seen[res] = true
			nodes = append(nodes, res)
		}
	}

	switch zoom {
	case ZoomLandscape:
		for _, root := range g.m.Resources {
			add(root)
		}
	case ZoomDomain:
		g.m.Walk(func(res *model.Resource, depth int) {
			switch {
			case depth == 0 || res.Abstract:
				add(res)
			case res.Parent != nil && res.Parent.Abstract:
				add(res)
			}
		})
	case ZoomService:
		g.m.Walk(func(res *model.Resource, _ int) {
			if !res.Abstract {
				add(res)
			}
		})
	default:
		g.m.Walk(func(res *model.Resource, _ int) {
			add(res)
		})
	}

	nodePaths := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		nodePaths[n.FullPath] = true
	}

	// At service zoom, interfaces of visible resources are nodes too.
	visiblePaths := make(map[string]bool, len(nodePaths))
	for p := range nodePaths {
		visiblePaths[p] = true
	}
	if zoom == ZoomService {
		for _, n := range nodes {
			for _, iface := range n.Interfaces {
				visiblePaths[n.FullPath+"."+iface.ID] = true
			}
		}
	}

	// A relationship renders only when both endpoints are visible: exact
	// path match first, then the endpoint's owning resource. An edge
	// between two interfaces still renders between their parent resources
	// when interfaces are out of scope at this zoom.
	visible := func(ref string) bool {
		if visiblePaths[ref] {
			return true
		}
		if result := g.resolver.Resolve(ref); result.Found() && result.Resource != nil {
			return nodePaths[result.Resource.FullPath]
		}
		return false
	}

	var filtered []*model.Relationship
	for _, rel := range g.m.Relationships {
		if visible(rel.From) && visible(rel.To) {
			filtered = append(filtered, rel)
		}
	}

	return nodes, filtered
}

func (g *Generator) renderFlowchart(nodes []*model.Resource, relationships []*model.Relationship, zoom string) string {
	lines := []string{"graph TB"}
	seenIDs := make(map[string]bool)

	if zoom == ZoomDomain {
		renderDomainView(&lines, nodes, seenIDs)
	} else {
		for _, res := range nodes {
			nodeID := sanitizeID(res.FullPath)
			if seenIDs[nodeID] {
				continue
			}
			seenIDs[nodeID] = true

			label := formatNodeLabel(res, zoom != ZoomLandscape, false)
			lines = append(lines, fmt.Sprintf("    %s[%s]", nodeID, label))

			if zoom == ZoomService {
				for _, iface := range res.Interfaces {
					ifaceID := sanitizeID(res.FullPath + "." + iface.ID)
					lines = append(lines, fmt.Sprintf("    %s[%s<br/>%s]", ifaceID, iface.ID, iface.Protocol))
					lines = append(lines, fmt.Sprintf("    %s --> %s", nodeID, ifaceID))
				}
			}
		}
	}

	lines = append(lines, "")

	for _, rel := range relationships {
		fromID := sanitizeID(rel.From)
		toID := sanitizeID(rel.To)

		arrow := ""
		if rel.Description != "" {
			arrow = "|" + rel.Description + "|"
		}

		if rel.Via != "" {
			viaID := sanitizeID(rel.Via)
			lines = append(lines, fmt.Sprintf("    %s -->%s %s", fromID, arrow, viaID))
			lines = append(lines, fmt.Sprintf("    %s --> %s", viaID, toID))
		} else {
			lines = append(lines, fmt.Sprintf("    %s -->%s %s", fromID, arrow, toID))
		}
	}

	return strings.Join(lines, "\n")
}

// renderDomainView groups each abstract resource and its visible children
// into a bounded subgraph labeled with the abstract resource's name. Nodes
// arrive in pre-order, so an abstract resource always opens its subgraph
// before its children would render on their own.
func renderDomainView(lines *[]string, nodes []*model.Resource, seenIDs map[string]bool) {
	for _, node := range nodes {
		nodeID := sanitizeID(node.FullPath)
		if seenIDs[nodeID] {
			continue
		}

		var children []*model.Resource
		for _, n := range nodes {
			if n.Parent == node {
				children = append(children, n)
			}
		}

		if node.Abstract && len(children) > 0 {
			seenIDs[nodeID] = true
			*lines = append(*lines, fmt.Sprintf("    subgraph cluster_%s[%q]", nodeID, node.Name))
			for _, child := range children {
				childID := sanitizeID(child.FullPath)
				if seenIDs[childID] {
					continue
				}
				seenIDs[childID] = true
				*lines = append(*lines, fmt.Sprintf("        %s[%s]", childID, formatNodeLabel(child, true, false)))
			}
			*lines = append(*lines, "    end")
		} else {
			seenIDs[nodeID] = true
			*lines = append(*lines, fmt.Sprintf("    %s[%s]", nodeID, formatNodeLabel(node, true, false)))
		}
	}
}

// formatNodeLabel builds the multi-line mermaid node label.
func formatNodeLabel(res *model.Resource, includeType, includeTech bool) string {
	parts := []string{res.Name}
	if includeType {
		parts = append(parts, res.Type)
	}
	if includeTech && res.Technology != "" {
		parts = append(parts, res.Technology)
	}
	return strings.Join(parts, "<br/>")
}

// sanitizeID converts a dotted path into a valid mermaid node identifier.
// Mermaid identifiers cannot contain dots or dashes.
func sanitizeID(path string) string {
	path = strings.ReplaceAll(path, ".", "_")
	return strings.ReplaceAll(path, "-", "_")
}
