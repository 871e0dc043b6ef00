package extractor

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"archmap/internal/model"
)

// ComposeExtractor extracts one resource per service from docker-compose
// files, with published ports surfaced as interfaces.
type ComposeExtractor struct{}

// NewComposeExtractor creates a docker-compose extractor.
func NewComposeExtractor() *ComposeExtractor {
	return &ComposeExtractor{}
}

func (c *ComposeExtractor) Name() string { return "docker-compose" }

func (c *ComposeExtractor) CanExtract(path string) bool {
	switch baseName(path) {
	case "docker-compose.yml", "docker-compose.yaml":
		return true
	}
	return false
}

type composeFile struct {
	Services map[string]composeService `yaml:"services"`
}

// Environment and volumes stay untyped: compose allows both list and map
// forms and the extractor only carries them through as metadata.
type composeService struct {
	Image       string   `yaml:"image"`
	Ports       []string `yaml:"ports"`
	Environment any      `yaml:"environment"`
	Volumes     any      `yaml:"volumes"`
}

// Extract returns one resource per declared service, sorted by service
// name for deterministic output.
func (c *ComposeExtractor) Extract(path string) ([]*model.Resource, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &ExtractionError{File: path, Err: err}
	}

	var compose composeFile
	if err := yaml.Unmarshal(raw, &compose); err != nil {
		return nil, &ExtractionError{File: path, Err: fmt.Errorf("parsing docker-compose YAML: %w", err)}
	}

	names := make([]string, 0, len(compose.Services))
	for name := range compose.Services {
		names = append(names, name)
	}
	sort.Strings(names)

	var resources []*model.Resource
	for _, name := range names {
		resources = append(resources, c.extractService(name, compose.Services[name], path))
	}
	return resources, nil
}

func (c *ComposeExtractor) extractService(name string, svc composeService, path string) *model.Resource {
	var interfaces []*model.Interface
	for _, port := range svc.Ports {
		containerPort := port
		if i := strings.LastIndexByte(port, ':'); i >= 0 {
			containerPort = port[i+1:]
		}
		containerPort, _, _ = strings.Cut(containerPort, "/")

		interfaces = append(interfaces, &model.Interface{
			ID:          "port-" + containerPort,
			Protocol:    portProtocol(containerPort),
			Direction:   "request-response",
			Description: "Service port " + containerPort,
			Metadata:    map[string]any{"port": containerPort},
		})
	}

	image := svc.Image
	if image == "" {
		image = "unknown"
	}
	metadata := map[string]any{
		"image":        image,
		"compose_file": path,
	}
	if svc.Environment != nil {
		metadata["environment"] = svc.Environment
	}
	if svc.Volumes != nil {
		metadata["volumes"] = svc.Volumes
	}

	return &model.Resource{
		ID:          strings.ReplaceAll(name, "_", "-"),
		Name:        titleCase(strings.NewReplacer("_", " ", "-", " ").Replace(name)),
		Type:        "docker-service",
		Technology:  imageTechnology(image),
		Description: "Docker service: " + name,
		Repository:  path,
		Tags:        []string{"docker"},
		Metadata:    metadata,
		Interfaces:  interfaces,
	}
}

func portProtocol(port string) string {
	switch port {
	case "80", "8080", "443":
		return "http"
	}
	return "tcp"
}

// imageTechnology maps a container image to a display technology name.
func imageTechnology(image string) string {
	base, _, _ := strings.Cut(image, ":")
	if i := strings.LastIndexByte(base, '/'); i >= 0 {
		base = base[i+1:]
	}

	known := map[string]string{
		"postgres": "PostgreSQL",
		"mysql":    "MySQL",
		"redis":    "Redis",
		"nginx":    "nginx",
		"node":     "Node.js",
		"python":   "Python",
		"golang":   "Go",
		"go":       "Go",
	}
	if tech, ok := known[strings.ToLower(base)]; ok {
		return tech
	}
	return titleCase(base)
}
