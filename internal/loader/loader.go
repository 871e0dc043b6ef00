// Package loader reads architecture model documents from YAML, merges
// multi-file fragments, validates them against the embedded JSON schemas,
// and hands back a single model.ArchitectureModel. All loader failures are
// fatal: a model that cannot be loaded can be neither validated nor
// rendered.
package loader

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"archmap/internal/model"
)

// LoadError is a fatal error while loading or parsing model documents.
type LoadError struct {
	Message string
	File    string
}

func (e *LoadError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("File: %s | %s", e.File, e.Message)
	}
	return e.Message
}

func loadErrorf(file, format string, args ...any) *LoadError {
	return &LoadError{Message: fmt.Sprintf(format, args...), File: file}
}

// Options controls loading behavior.
type Options struct {
	// ValidateSchema enables JSON-Schema validation of every top-level
	// entry before the model is built.
	ValidateSchema bool
}

// DefaultOptions validates schemas, matching the CLI default.
func DefaultOptions() Options {
	return Options{ValidateSchema: true}
}

// Load reads an architecture model from a YAML file, or from a directory
// of YAML fragments which are merged into one document. Merging rejects
// duplicate top-level resource, sequence, and state-machine ids across
// documents; nested path collisions are the resolver's concern.
func Load(path string, opts Options) (*model.ArchitectureModel, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, loadErrorf("", "Path not found: %s", path)
	}

	var (
		data        map[string]any
		sourceFiles []string
	)

	if info.IsDir() {
		files, err := findYAMLFiles(path)
		if err != nil {
			return nil, err
		}
		if len(files) == 0 {
			return nil, loadErrorf("", "No YAML files found in directory: %s", path)
		}

		var docs []map[string]any
		for _, file := range files {
			doc, err := LoadFile(file)
			if err != nil {
				return nil, err
			}
			if opts.ValidateSchema {
				if err := validateDocument(doc, file); err != nil {
					return nil, err
				}
			}
			docs = append(docs, doc)
			sourceFiles = append(sourceFiles, file)
		}

		data, err = mergeDocuments(docs)
		if err != nil {
			return nil, err
		}
	} else {
		data, err = LoadFile(path)
		if err != nil {
			return nil, err
		}
		if opts.ValidateSchema {
			if err := validateDocument(data, path); err != nil {
				return nil, err
			}
		}
		sourceFiles = []string{path}
	}

	m, err := decodeModel(data)
	if err != nil {
		return nil, err
	}
	m.SourceFiles = sourceFiles
	return m, nil
}

// LoadFile reads and parses a single YAML document into a raw map. An
// empty file yields an empty map.
func LoadFile(path string) (map[string]any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, loadErrorf(path, "Error loading file: %v", err)
	}

	var data map[string]any
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, loadErrorf(path, "YAML parsing error: %v", err)
	}
	if data == nil {
		data = map[string]any{}
	}
	return data, nil
}

// findYAMLFiles collects every .yaml/.yml file under dir, sorted for
// deterministic merge order.
func findYAMLFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch filepath.Ext(path) {
		case ".yaml", ".yml":
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, loadErrorf("", "Error scanning directory %s: %v", dir, err)
	}
	sort.Strings(files)
	return files, nil
}

// mergeDocuments concatenates the top-level sections of several documents,
// rejecting duplicate top-level ids. This check is distinct from the
// validator's post-merge full-path checks: it fires at load time, before a
// model even exists.
func mergeDocuments(docs []map[string]any) (map[string]any, error) {
	merged := map[string]any{
		"resources":      []any{},
		"relationships":  []any{},
		"sequences":      []any{},
		"state_machines": []any{},
	}

	seenResources := make(map[string]bool)
	seenSequences := make(map[string]bool)
	seenStateMachines := make(map[string]bool)

	appendUnique := func(section string, entries []any, seen map[string]bool, label string) error {
		for _, entry := range entries {
			id := entryID(entry)
			if id != "" && seen[id] {
				return loadErrorf("", "Duplicate %s ID: %s", label, id)
			}
			seen[id] = true
			merged[section] = append(merged[section].([]any), entry)
		}
		return nil
	}

	for _, doc := range docs {
		if err := appendUnique("resources", asList(doc["resources"]), seenResources, "resource"); err != nil {
			return nil, err
		}
		merged["relationships"] = append(merged["relationships"].([]any), asList(doc["relationships"])...)
		if err := appendUnique("sequences", asList(doc["sequences"]), seenSequences, "sequence"); err != nil {
			return nil, err
		}
		if err := appendUnique("state_machines", asList(doc["state_machines"]), seenStateMachines, "state machine"); err != nil {
			return nil, err
		}
	}

	return merged, nil
}

func asList(v any) []any {
	list, _ := v.([]any)
	return list
}

func entryID(entry any) string {
	m, ok := entry.(map[string]any)
	if !ok {
		return ""
	}
	id, _ := m["id"].(string)
	return id
}

// decodeModel turns the raw merged document into typed model structs by
// round-tripping through the YAML codec.
func decodeModel(data map[string]any) (*model.ArchitectureModel, error) {
	raw, err := yaml.Marshal(data)
	if err != nil {
		return nil, loadErrorf("", "Error parsing model: %v", err)
	}
	var m model.ArchitectureModel
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, loadErrorf("", "Error parsing model: %v", err)
	}
	return &m, nil
}

// Save writes a model back to a YAML file. Computed fields (paths, parent
// back-references, indexes) are never serialized, so a saved model reloads
// into an equivalent un-indexed model.
func Save(m *model.ArchitectureModel, path string) error {
	raw, err := yaml.Marshal(m)
	if err != nil {
		return loadErrorf(path, "Error saving model: %v", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return loadErrorf(path, "Error saving model: %v", err)
	}
	return nil
}
