package extractor

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"archmap/internal/model"
)

// KubernetesExtractor extracts resources from Kubernetes manifests:
// workloads and Services become resources, ports become interfaces,
// labels become tags.
type KubernetesExtractor struct{}

// NewKubernetesExtractor creates a Kubernetes manifest extractor.
func NewKubernetesExtractor() *KubernetesExtractor {
	return &KubernetesExtractor{}
}

func (k *KubernetesExtractor) Name() string { return "kubernetes" }

var supportedKinds = map[string]bool{
	"Deployment":  true,
	"Pod":         true,
	"StatefulSet": true,
	"DaemonSet":   true,
	"Service":     true,
}

// CanExtract accepts YAML files whose first document carries the
// apiVersion/kind manifest markers.
func (k *KubernetesExtractor) CanExtract(path string) bool {
	switch {
	case strings.HasSuffix(path, ".yaml"), strings.HasSuffix(path, ".yml"):
	default:
		return false
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return false
	}
	_, hasVersion := doc["apiVersion"]
	_, hasKind := doc["kind"]
	return hasVersion && hasKind
}

type k8sManifest struct {
	Kind     string `yaml:"kind"`
	Metadata struct {
		Name      string            `yaml:"name"`
		Namespace string            `yaml:"namespace"`
		Labels    map[string]string `yaml:"labels"`
	} `yaml:"metadata"`
	Spec struct {
		Ports []struct {
			Name       string `yaml:"name"`
			Port       int    `yaml:"port"`
			TargetPort any    `yaml:"targetPort"`
			Protocol   string `yaml:"protocol"`
		} `yaml:"ports"`
		Template struct {
			Spec struct {
				Containers []struct {
					Image string `yaml:"image"`
					Ports []struct {
						Name          string `yaml:"name"`
						ContainerPort int    `yaml:"containerPort"`
					} `yaml:"ports"`
				} `yaml:"containers"`
			} `yaml:"spec"`
		} `yaml:"template"`
	} `yaml:"spec"`
}

// Extract walks every document in the manifest (multi-document YAML is
// common for Kubernetes) and returns one resource per supported kind.
func (k *KubernetesExtractor) Extract(path string) ([]*model.Resource, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &ExtractionError{File: path, Err: err}
	}

	decoder := yaml.NewDecoder(strings.NewReader(string(raw)))
	var resources []*model.Resource
	for {
		var manifest k8sManifest
		if err := decoder.Decode(&manifest); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, &ExtractionError{File: path, Err: fmt.Errorf("parsing Kubernetes YAML: %w", err)}
		}
		if !supportedKinds[manifest.Kind] {
			continue
		}
		resources = append(resources, k.extractManifest(&manifest, path))
	}

	return resources, nil
}

func (k *KubernetesExtractor) extractManifest(manifest *k8sManifest, path string) *model.Resource {
	name := manifest.Metadata.Name
	if name == "" {
		name = "unknown"
	}
	namespace := manifest.Metadata.Namespace
	if namespace == "" {
		namespace = "default"
	}

	tags := []string{"kubernetes", strings.ToLower(manifest.Kind)}
	for key, value := range manifest.Metadata.Labels {
		tags = append(tags, key+":"+value)
	}

	var interfaces []*model.Interface
	if manifest.Kind == "Service" {
		interfaces = serviceInterfaces(manifest)
	} else {
		interfaces = containerInterfaces(manifest)
	}

	metadata := map[string]any{
		"kind":      manifest.Kind,
		"namespace": namespace,
		"manifest":  path,
	}
	if len(manifest.Metadata.Labels) > 0 {
		metadata["labels"] = manifest.Metadata.Labels
	}

	return &model.Resource{
		ID:          strings.ReplaceAll(name, "_", "-"),
		Name:        titleCase(strings.NewReplacer("-", " ", "_", " ").Replace(name)),
		Type:        "k8s-" + strings.ToLower(manifest.Kind),
		Technology:  k.technology(manifest),
		Description: fmt.Sprintf("Kubernetes %s: %s", manifest.Kind, name),
		Repository:  path,
		Tags:        tags,
		Metadata:    metadata,
		Interfaces:  interfaces,
	}
}

func serviceInterfaces(manifest *k8sManifest) []*model.Interface {
	var interfaces []*model.Interface
	for _, port := range manifest.Spec.Ports {
		id := port.Name
		if id == "" {
			id = fmt.Sprintf("port-%d", port.Port)
		}
		protocol := strings.ToLower(port.Protocol)
		if protocol == "" {
			protocol = "tcp"
		}
		target := port.TargetPort
		if target == nil {
			target = port.Port
		}

		interfaces = append(interfaces, &model.Interface{
			ID:          strings.ReplaceAll(id, "_", "-"),
			Protocol:    wellKnownHTTP(port.Port, protocol),
			Direction:   "request-response",
			Description: fmt.Sprintf("Service port %d -> %v", port.Port, target),
			Metadata: map[string]any{
				"port":       fmt.Sprintf("%d", port.Port),
				"targetPort": fmt.Sprintf("%v", target),
				"protocol":   protocol,
			},
		})
	}
	return interfaces
}

func containerInterfaces(manifest *k8sManifest) []*model.Interface {
	var interfaces []*model.Interface
	for _, container := range manifest.Spec.Template.Spec.Containers {
		for _, port := range container.Ports {
			id := port.Name
			if id == "" {
				id = fmt.Sprintf("port-%d", port.ContainerPort)
			}
			interfaces = append(interfaces, &model.Interface{
				ID:          strings.ReplaceAll(id, "_", "-"),
				Protocol:    wellKnownHTTP(port.ContainerPort, "tcp"),
				Direction:   "request-response",
				Description: fmt.Sprintf("Container port %d", port.ContainerPort),
				Metadata:    map[string]any{"port": fmt.Sprintf("%d", port.ContainerPort)},
			})
		}
	}
	return interfaces
}

func wellKnownHTTP(port int, fallback string) string {
	switch port {
	case 80, 8080, 443:
		return "http"
	}
	return fallback
}

func (k *KubernetesExtractor) technology(manifest *k8sManifest) string {
	containers := manifest.Spec.Template.Spec.Containers
	if len(containers) > 0 && containers[0].Image != "" {
		base, _, _ := strings.Cut(containers[0].Image, ":")
		if i := strings.LastIndexByte(base, '/'); i >= 0 {
			base = base[i+1:]
		}
		return titleCase(base)
	}
	return "Kubernetes"
}
