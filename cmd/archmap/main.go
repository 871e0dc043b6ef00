package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"archmap/internal/config"
	"archmap/internal/crawler"
	"archmap/internal/extractor"
	"archmap/internal/generator"
	"archmap/internal/loader"
	"archmap/internal/model"
	"archmap/internal/resolver"
	"archmap/internal/validator"

	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:   "archmap",
		Short: "Architecture models: validate, render, and reverse-engineer",
	}
	configPath string
	skipSchema bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "archmap.yaml", "Path to the archmap config file")
	rootCmd.PersistentFlags().BoolVar(&skipSchema, "no-schema", false, "Skip JSON-Schema validation while loading")

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(diagramCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(extractCmd)
}

// loadModel resolves the model path (argument wins over config) and loads
// it. Load failures are fatal: nothing downstream can run without a model.
func loadModel(args []string) *model.ArchitectureModel {
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	path := cfg.Model.Path
	if len(args) > 0 {
		path = args[0]
	}

	opts := loader.DefaultOptions()
	opts.ValidateSchema = !skipSchema

	m, err := loader.Load(path, opts)
	if err != nil {
		log.Fatalf("Failed to load model: %v", err)
	}
	return m
}

var validateCmd = &cobra.Command{
	Use:   "validate [path]",
	Short: "Validate an architecture model",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		m := loadModel(args)
		result := validator.New(m).Validate()

		if result.Valid {
			fmt.Println("Validation passed")
		} else {
			fmt.Printf("Validation failed: %d error(s), %d warning(s)\n", len(result.Errors), len(result.Warnings))
			for _, issue := range result.Errors {
				printIssue(issue)
			}
		}
		if len(result.Warnings) > 0 {
			fmt.Printf("%d warning(s)\n", len(result.Warnings))
			for _, issue := range result.Warnings {
				printIssue(issue)
			}
		}

		fmt.Println("\nSummary:")
		fmt.Printf("  Resources: %d\n", m.ResourceCount())
		fmt.Printf("  Interfaces: %d\n", m.InterfaceCount())
		fmt.Printf("  Relationships: %d\n", len(m.Relationships))
		fmt.Printf("  Sequences: %d\n", len(m.Sequences))
		fmt.Printf("  State Machines: %d\n", len(m.StateMachines))

		if !result.Valid {
			os.Exit(1)
		}
	},
}

func printIssue(issue validator.Issue) {
	line := fmt.Sprintf("  [%s] %s", issue.Rule, issue.Message)
	if issue.Path != "" {
		line += " (path: " + issue.Path + ")"
	}
	fmt.Println(line)
}

var (
	diagramFormat  string
	diagramZoom    string
	diagramOutput  string
	diagramSeq     string
	diagramMachine string
)

var diagramCmd = &cobra.Command{
	Use:   "diagram [path]",
	Short: "Render a component, sequence, or state diagram",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		m := loadModel(args)

		r := resolver.New(m)
		if err := r.Index(); err != nil {
			log.Fatalf("Cannot index model: %v", err)
		}
		gen := generator.New(m, r)

		cfg, err := config.Load(configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		format := diagramFormat
		if format == "" {
			format = cfg.Diagram.Format
		}
		zoom := diagramZoom
		if zoom == "" {
			zoom = cfg.Diagram.Zoom
		}

		var diagram string
		switch {
		case diagramSeq != "":
			seq := m.SequenceByID(diagramSeq)
			if seq == nil {
				log.Fatalf("Unknown sequence: %s", diagramSeq)
			}
			diagram = gen.SequenceDiagram(seq)
		case diagramMachine != "":
			sm := m.StateMachineByID(diagramMachine)
			if sm == nil {
				log.Fatalf("Unknown state machine: %s", diagramMachine)
			}
			diagram = gen.StateDiagram(sm)
		default:
			var err error
			diagram, err = gen.Render(format, zoom)
			if err != nil {
				log.Fatalf("Cannot render diagram: %v", err)
			}
		}

		if diagramOutput == "" {
			fmt.Println(diagram)
			return
		}
		content := fmt.Sprintf("# Architecture Diagram\n\n```%s\n%s\n```\n", format, diagram)
		if err := os.WriteFile(diagramOutput, []byte(content), 0o644); err != nil {
			log.Fatalf("Failed to write diagram: %v", err)
		}
		fmt.Printf("Diagram written to: %s\n", diagramOutput)
	},
}

func init() {
	diagramCmd.Flags().StringVarP(&diagramFormat, "format", "f", "", "Diagram format (default from config)")
	diagramCmd.Flags().StringVarP(&diagramZoom, "zoom", "z", "", "Zoom level: landscape, domain, service (default from config)")
	diagramCmd.Flags().StringVarP(&diagramOutput, "output", "o", "", "Write diagram to file instead of stdout")
	diagramCmd.Flags().StringVar(&diagramSeq, "sequence", "", "Render the sequence diagram with this id")
	diagramCmd.Flags().StringVar(&diagramMachine, "state-machine", "", "Render the state diagram with this id")
}

var (
	listType  string
	listTag   string
	listQuery string
)

var listCmd = &cobra.Command{
	Use:   "list [path]",
	Short: "List model resources as a tree",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		m := loadModel(args)

		roots := filterResources(m.Resources, listType, listTag, listQuery)
		if len(roots) == 0 {
			fmt.Println("No resources found matching filters.")
			return
		}

		for _, root := range roots {
			printTree(root, 0)
			fmt.Println()
		}

		fmt.Println("Summary:")
		fmt.Printf("  Resources: %d\n", m.ResourceCount())
		fmt.Printf("  Interfaces: %d\n", m.InterfaceCount())
		fmt.Printf("  Relationships: %d\n", len(m.Relationships))
	},
}

func init() {
	listCmd.Flags().StringVarP(&listType, "type", "t", "", "Filter by resource type")
	listCmd.Flags().StringVar(&listTag, "tag", "", "Filter by tag")
	listCmd.Flags().StringVarP(&listQuery, "query", "q", "", "Search in name or description")
}

func filterResources(resources []*model.Resource, resourceType, tag, query string) []*model.Resource {
	if resourceType == "" && tag == "" && query == "" {
		return resources
	}
	var out []*model.Resource
	for _, res := range resources {
		if resourceType != "" && res.Type != resourceType {
			continue
		}
		if tag != "" && !containsString(res.Tags, tag) {
			continue
		}
		if query != "" {
			q := strings.ToLower(query)
			if !strings.Contains(strings.ToLower(res.Name), q) &&
				!strings.Contains(strings.ToLower(res.Description), q) {
				continue
			}
		}
		out = append(out, res)
	}
	return out
}

func containsString(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}

func printTree(res *model.Resource, depth int) {
	indent := strings.Repeat("  ", depth)
	label := fmt.Sprintf("%s%s (%s) [%s]", indent, res.Name, res.ID, res.Type)
	if res.Technology != "" {
		label += " - " + res.Technology
	}
	if res.Abstract {
		label += " (abstract)"
	}
	fmt.Println(label)

	for _, iface := range res.Interfaces {
		fmt.Printf("%s  -> %s (%s, %s)\n", indent, iface.ID, iface.Protocol, iface.Direction)
	}
	for _, child := range res.Children {
		printTree(child, depth+1)
	}
}

var extractOutput string

var extractCmd = &cobra.Command{
	Use:   "extract <dir>",
	Short: "Reverse-engineer an architecture model from code and manifests",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load(configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		c := crawler.New(extractor.DefaultExtractors())
		c.Ignore(cfg.Extract.Ignore...)
		result, err := c.ExtractDirectory(args[0])
		if err != nil {
			log.Fatalf("Extraction failed: %v", err)
		}

		for _, extractionErr := range result.Errors {
			log.Printf("Warning: %v", extractionErr)
		}
		fmt.Printf("Extracted %d resource(s).\n", len(result.Model.Resources))

		if err := loader.Save(result.Model, extractOutput); err != nil {
			log.Fatalf("Failed to write model: %v", err)
		}
		fmt.Printf("Model written to: %s\n", extractOutput)
	},
}

func init() {
	extractCmd.Flags().StringVarP(&extractOutput, "output", "o", "architecture.yaml", "Output model file")
}
