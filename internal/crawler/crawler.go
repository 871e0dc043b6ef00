// Package crawler walks a directory tree, applies the extractor registry
// to every file, and assembles the results into an architecture model.
package crawler

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"

	"archmap/internal/extractor"
	"archmap/internal/model"
)

// Crawler scans a directory for files the extractors can handle.
type Crawler struct {
	extractors []extractor.Extractor
	ignored    []string
}

// New creates a crawler over the given extractors. Files are offered to
// extractors in order; the first capable one wins.
func New(extractors []extractor.Extractor) *Crawler {
	return &Crawler{
		extractors: extractors,
		ignored:    []string{".git", ".svn", "vendor", "node_modules", "testdata"},
	}
}

// Ignore adds directory names to skip during scans.
func (c *Crawler) Ignore(names ...string) {
	c.ignored = append(c.ignored, names...)
}

// Result carries the assembled model plus per-file extraction failures.
// A failing file never aborts the scan; its error is reported alongside
// the resources extracted from the files that did parse.
type Result struct {
	Model  *model.ArchitectureModel
	Errors []error
}

// ExtractDirectory scans root (recursively, sorted walk order), extracts
// resources from every supported file, and deduplicates them by id (first
// occurrence wins).
func (c *Crawler) ExtractDirectory(root string) (*Result, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			for _, ign := range c.ignored {
				if d.Name() == ign {
					return filepath.SkipDir
				}
			}
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, err)
	}
	sort.Strings(files)

	result := &Result{Model: &model.ArchitectureModel{}}
	seen := make(map[string]bool)

	for _, file := range files {
		resources, err := c.ExtractFile(file)
		if err != nil {
			result.Errors = append(result.Errors, err)
			continue
		}
		for _, res := range resources {
			if seen[res.ID] {
				continue
			}
			seen[res.ID] = true
			result.Model.Resources = append(result.Model.Resources, res)
		}
	}

	return result, nil
}

// ExtractFile applies the first capable extractor to a single file. Files
// no extractor recognizes yield no resources and no error.
func (c *Crawler) ExtractFile(path string) ([]*model.Resource, error) {
	for _, ext := range c.extractors {
		if ext.CanExtract(path) {
			return ext.Extract(path)
		}
	}
	return nil, nil
}
