package resolver

import (
	"fmt"
	"strings"

	"archmap/internal/model"
)

// ResolutionResult is the outcome of resolving a dotted path that may name
// either a resource or an interface.
type ResolutionResult struct {
	Path        string
	Resource    *model.Resource
	Interface   *model.Interface
	IsResource  bool
	IsInterface bool
}

// Found reports whether the path resolved to anything.
func (r ResolutionResult) Found() bool {
	return r.Resource != nil || r.Interface != nil
}

// PathResolver resolves dotted path notation against an architecture model.
// It builds two indexes in a single tree walk:
//
//	resource index:  full path -> *model.Resource
//	interface index: full path -> *model.Interface
//
// Indexing assigns full paths and parent back-references on the model, so a
// model must not be indexed concurrently by multiple resolvers. Index once,
// then treat the model as read-only.
type PathResolver struct {
	m *model.ArchitectureModel
}

// Model returns the indexed model for callers holding only the resolver.
func (p *PathResolver) Model() *model.ArchitectureModel { return p.m }

type pathCollision struct {
	path string
	kind string // "resource" or "interface"
}

// New creates a resolver for the given model. Call Index or IndexAll before
// resolving.
func New(m *model.ArchitectureModel) *PathResolver {
	return &PathResolver{m: m}
}

// Index walks every root resource, assigns full paths and parent
// back-references, and populates both indexes. It aborts with an error on
// the first full-path collision: a model with colliding paths cannot be
// addressed and must not be used.
func (p *PathResolver) Index() error {
	var firstCollision *pathCollision
	p.buildIndexes(func(c pathCollision) bool {
		firstCollision = &c
		return false // stop walking
	})
	if firstCollision != nil {
		return fmt.Errorf("duplicate %s path: %s", firstCollision.kind, firstCollision.path)
	}
	return nil
}

// IndexAll is the lenient variant used by the validator: it completes the
// full walk even when paths collide (last occurrence wins in the index) so
// that every collision can be reported as a diagnostic afterwards.
func (p *PathResolver) IndexAll() {
	p.buildIndexes(func(pathCollision) bool { return true })
}

func (p *PathResolver) buildIndexes(onCollision func(pathCollision) bool) {
	p.m.ResourceIndex = make(map[string]*model.Resource)
	p.m.InterfaceIndex = make(map[string]*model.Interface)

	var walk func(res *model.Resource, parentPath string) bool
	walk = func(res *model.Resource, parentPath string) bool {
		fullPath := res.ID
		if parentPath != "" {
			fullPath = parentPath + "." + res.ID
		}
		res.FullPath = fullPath

		if _, exists := p.m.ResourceIndex[fullPath]; exists {
			if !onCollision(pathCollision{path: fullPath, kind: "resource"}) {
				return false
			}
		}
		p.m.ResourceIndex[fullPath] = res

		for _, iface := range res.Interfaces {
			ifacePath := fullPath + "." + iface.ID
			iface.FullPath = ifacePath
			iface.Parent = res
			if _, exists := p.m.InterfaceIndex[ifacePath]; exists {
				if !onCollision(pathCollision{path: ifacePath, kind: "interface"}) {
					return false
				}
			}
			p.m.InterfaceIndex[ifacePath] = iface
		}

		for _, child := range res.Children {
			child.Parent = res
			if !walk(child, fullPath) {
				return false
			}
		}
		return true
	}

	for _, root := range p.m.Resources {
		root.Parent = nil
		if !walk(root, "") {
			return
		}
	}
}

// ResolveResource looks up a resource by full dotted path.
func (p *PathResolver) ResolveResource(path string) *model.Resource {
	return p.m.ResourceIndex[path]
}

// ResolveInterface looks up an interface by full dotted path.
func (p *PathResolver) ResolveInterface(path string) *model.Interface {
	return p.m.InterfaceIndex[path]
}

// Resolve resolves a path to either a resource or an interface. The path
// grammar is ambiguous ("a.b.c" could be resource c or interface c of
// resource a.b), so the tie-break is explicit: an interface match always
// wins; the owning resource is derived by stripping the last segment.
func (p *PathResolver) Resolve(path string) ResolutionResult {
	if iface := p.ResolveInterface(path); iface != nil {
		ownerPath := path
		if i := strings.LastIndex(path, "."); i >= 0 {
			ownerPath = path[:i]
		}
		return ResolutionResult{
			Path:        path,
			Resource:    p.ResolveResource(ownerPath),
			Interface:   iface,
			IsInterface: true,
		}
	}

	if res := p.ResolveResource(path); res != nil {
		return ResolutionResult{Path: path, Resource: res, IsResource: true}
	}

	return ResolutionResult{Path: path}
}

// ResourcePaths returns every indexed resource path. Order is unspecified.
func (p *PathResolver) ResourcePaths() []string {
	paths := make([]string, 0, len(p.m.ResourceIndex))
	for path := range p.m.ResourceIndex {
		paths = append(paths, path)
	}
	return paths
}

// InterfacePaths returns every indexed interface path. Order is unspecified.
func (p *PathResolver) InterfacePaths() []string {
	paths := make([]string, 0, len(p.m.InterfaceIndex))
	for path := range p.m.InterfaceIndex {
		paths = append(paths, path)
	}
	return paths
}

// FindResourcesByType returns all resources with the given type tag.
// Order is unspecified; sort before rendering.
func (p *PathResolver) FindResourcesByType(resourceType string) []*model.Resource {
	var out []*model.Resource
	for _, res := range p.m.ResourceIndex {
		if res.Type == resourceType {
			out = append(out, res)
		}
	}
	return out
}

// FindInterfacesByProtocol returns all interfaces speaking the given
// protocol. Order is unspecified; sort before rendering.
func (p *PathResolver) FindInterfacesByProtocol(protocol string) []*model.Interface {
	var out []*model.Interface
	for _, iface := range p.m.InterfaceIndex {
		if iface.Protocol == protocol {
			out = append(out, iface)
		}
	}
	return out
}

// ParentChain returns the self-inclusive chain from the resource up to its
// root, ordered child-to-root.
func (p *PathResolver) ParentChain(res *model.Resource) []*model.Resource {
	chain := []*model.Resource{res}
	for cur := res.Parent; cur != nil; cur = cur.Parent {
		chain = append(chain, cur)
	}
	return chain
}

// ChildResources returns direct children, or the full subtree in
// depth-first pre-order (excluding the resource itself) when recursive.
func (p *PathResolver) ChildResources(res *model.Resource, recursive bool) []*model.Resource {
	if !recursive {
		return res.Children
	}
	var out []*model.Resource
	for _, child := range res.Children {
		out = append(out, child)
		out = append(out, p.ChildResources(child, true)...)
	}
	return out
}
