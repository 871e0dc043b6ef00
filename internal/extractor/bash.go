package extractor

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/bash"

	"archmap/internal/model"
)

// BashExtractor extracts one resource per bash script: the script itself,
// with its functions surfaced as interfaces and code references.
type BashExtractor struct{}

// NewBashExtractor creates a bash script extractor.
func NewBashExtractor() *BashExtractor {
	return &BashExtractor{}
}

func (b *BashExtractor) Name() string { return "bash" }

// CanExtract accepts .sh/.bash files and extensionless files with a
// bash or sh shebang.
func (b *BashExtractor) CanExtract(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}

	if strings.HasSuffix(path, ".sh") || strings.HasSuffix(path, ".bash") {
		return true
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	firstLine, _, _ := strings.Cut(string(raw), "\n")
	return strings.HasPrefix(firstLine, "#!") &&
		(strings.Contains(firstLine, "bash") || strings.Contains(firstLine, "sh"))
}

type bashFunction struct {
	name        string
	startLine   int
	endLine     int
	description string
}

// Extract parses the script with the tree-sitter bash grammar and builds
// a single resource carrying an interface and a code reference per
// function definition.
func (b *BashExtractor) Extract(path string) ([]*model.Resource, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, &ExtractionError{File: path, Err: err}
	}
	lines := strings.Split(string(source), "\n")

	functions, err := b.parseFunctions(source, lines)
	if err != nil {
		return nil, &ExtractionError{File: path, Err: err}
	}

	var interfaces []*model.Interface
	var implementation []*model.CodeRef
	for _, fn := range functions {
		description := fn.description
		if description == "" {
			description = "Function: " + fn.name
		}
		interfaces = append(interfaces, &model.Interface{
			ID:          strings.ReplaceAll(fn.name, "_", "-"),
			Protocol:    "bash-function",
			Direction:   "request-response",
			Description: description,
		})
		implementation = append(implementation, &model.CodeRef{
			Path:        path,
			Lines:       fmt.Sprintf("%d-%d", fn.startLine, fn.endLine),
			Function:    fn.name,
			Description: fn.description,
		})
	}

	resourceType := "bash-library"
	if info, err := os.Stat(path); err == nil && info.Mode()&0o111 != 0 {
		resourceType = "bash-script"
	}

	description := headerDescription(lines)
	if description == "" {
		description = "Bash script: " + baseName(path)
	}

	resource := &model.Resource{
		ID:             fileID(path),
		Name:           fileName(path),
		Type:           resourceType,
		Technology:     "Bash",
		Description:    description,
		Repository:     path,
		Interfaces:     interfaces,
		Implementation: implementation,
	}

	return []*model.Resource{resource}, nil
}

// parseFunctions runs a tree-sitter query for function definitions and
// attaches the comment block immediately above each one as its
// description.
func (b *BashExtractor) parseFunctions(source []byte, lines []string) ([]bashFunction, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(bash.GetLanguage())
	tree, err := parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, err
	}

	query, err := sitter.NewQuery([]byte(`(function_definition name: (word) @name) @func`), bash.GetLanguage())
	if err != nil {
		return nil, err
	}

	cursor := sitter.NewQueryCursor()
	cursor.Exec(query, tree.RootNode())

	var functions []bashFunction
	for {
		match, ok := cursor.NextMatch()
		if !ok {
			break
		}

		var fn bashFunction
		for _, capture := range match.Captures {
			switch query.CaptureNameForId(capture.Index) {
			case "func":
				fn.startLine = int(capture.Node.StartPoint().Row) + 1
				fn.endLine = int(capture.Node.EndPoint().Row) + 1
			case "name":
				fn.name = capture.Node.Content(source)
			}
		}
		if fn.name == "" {
			continue
		}
		fn.description = commentAbove(lines, fn.startLine)
		functions = append(functions, fn)
	}

	return functions, nil
}

// headerDescription joins the comment block at the top of the script,
// skipping the shebang.
func headerDescription(lines []string) string {
	var parts []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "#!") {
			continue
		}
		if line == "" && len(parts) == 0 {
			continue
		}
		if strings.HasPrefix(line, "#") {
			if comment := strings.TrimSpace(strings.TrimLeft(line, "#")); comment != "" {
				parts = append(parts, comment)
			}
		} else {
			break
		}
	}
	return strings.Join(parts, " ")
}

// commentAbove collects the contiguous comment block directly above a
// function definition, at most five lines.
func commentAbove(lines []string, startLine int) string {
	var parts []string
	for i := startLine - 2; i >= 0 && len(parts) < 5; i-- {
		line := strings.TrimSpace(lines[i])
		if !strings.HasPrefix(line, "#") || strings.HasPrefix(line, "#!") {
			break
		}
		if comment := strings.TrimSpace(strings.TrimLeft(line, "#")); comment != "" {
			parts = append([]string{comment}, parts...)
		}
	}
	return strings.Join(parts, " ")
}

var camelBoundary = regexp.MustCompile(`([a-z0-9])([A-Z])`)

// fileID derives a kebab-case resource id from the file name.
func fileID(path string) string {
	name := stem(path)
	name = strings.ReplaceAll(name, "_", "-")
	return strings.ToLower(camelBoundary.ReplaceAllString(name, "$1-$2"))
}

// fileName derives a human-readable resource name from the file name.
func fileName(path string) string {
	name := stem(path)
	name = strings.ReplaceAll(name, "_", " ")
	name = strings.ReplaceAll(name, "-", " ")
	return titleCase(name)
}

func baseName(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[i+1:]
	}
	return path
}

func stem(path string) string {
	name := baseName(path)
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		return name[:i]
	}
	return name
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}
