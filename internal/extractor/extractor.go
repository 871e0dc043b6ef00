// Package extractor reverse-engineers architecture resources from foreign
// file formats. Each extractor announces what it can handle via CanExtract
// and returns plain model resources; assembling them into a model is the
// crawler's job.
package extractor

import (
	"fmt"

	"archmap/internal/model"
)

// Extractor turns one file into zero or more architecture resources.
type Extractor interface {
	Name() string
	CanExtract(path string) bool
	Extract(path string) ([]*model.Resource, error)
}

// ExtractionError wraps a failure against a specific file.
type ExtractionError struct {
	File string
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction failed for %s: %v", e.File, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// DefaultExtractors returns every built-in extractor, in the order they
// are tried against a file. First capable extractor wins.
func DefaultExtractors() []Extractor {
	return []Extractor{
		NewBashExtractor(),
		NewComposeExtractor(),
		NewKubernetesExtractor(),
	}
}
