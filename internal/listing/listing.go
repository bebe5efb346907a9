// Package listing builds and writes the index.html directory listing fragment.
package listing

import (
	"fmt"
	"html"
	"path"
	"slices"
	"strings"

	"github.com/taigrr/dirindex/internal/filesystem"
	"github.com/taigrr/dirindex/internal/pathfilter"
	"github.com/taigrr/dirindex/internal/types"
)

const heading = "<h1>Directory Listing</h1>"

// Generator produces listing documents for directories under a filesystem root.
type Generator struct {
	fileSystem *filesystem.Service
	pathFilter *pathfilter.PathFilter
	config     types.Configuration
}

// New creates a Generator. The filter is compiled from cfg; an empty
// OutputName falls back to index.html. The output file never lists itself,
// whether or not its name is on the ignore list.
func New(fs *filesystem.Service, cfg types.Configuration) (*Generator, error) {
	if cfg.OutputName == "" {
		cfg.OutputName = types.DefaultOutputName
	}
	filterConfig := cfg.FilterConfig()
	if !slices.Contains(filterConfig.IgnoreList, cfg.OutputName) {
		filterConfig.IgnoreList = append(slices.Clone(filterConfig.IgnoreList), cfg.OutputName)
	}
	pf, err := pathfilter.New(filterConfig)
	if err != nil {
		return nil, err
	}
	return &Generator{
		fileSystem: fs,
		pathFilter: pf,
		config:     cfg,
	}, nil
}

// Generate writes the listing for cfg.TargetDirectory.
func Generate(cfg types.Configuration) (types.GenerateResult, error) {
	gen, err := New(filesystem.New(cfg.TargetDirectory), cfg)
	if err != nil {
		return types.GenerateResult{}, err
	}
	return gen.Generate("")
}

// Build scans dir, relative to the filesystem root, and returns the filtered document.
func (g *Generator) Build(dir string) (types.ListingDocument, error) {
	entries, err := g.fileSystem.ListDirectory(dir)
	if err != nil {
		return types.ListingDocument{}, err
	}

	if g.config.SortEntries {
		slices.SortFunc(entries, func(a, b types.DirectoryEntry) int {
			return strings.Compare(a.Name, b.Name)
		})
	}

	doc := types.ListingDocument{Directory: dir}
	for _, entry := range g.pathFilter.FilterEntries(entries) {
		doc.Items = append(doc.Items, itemFor(entry))
	}
	return doc, nil
}

// Generate builds the document for dir and overwrites its index file.
func (g *Generator) Generate(dir string) (types.GenerateResult, error) {
	doc, err := g.Build(dir)
	if err != nil {
		return types.GenerateResult{}, err
	}

	target := path.Join(dir, g.config.OutputName)
	written, err := g.fileSystem.WriteFile(target, []byte(Render(doc, g.config.PrettyPrint)), g.config.AtomicWrite)
	if err != nil {
		return types.GenerateResult{}, fmt.Errorf("failed to write listing: %w", err)
	}
	return types.GenerateResult{Path: written, Document: doc}, nil
}

// Config returns the configuration the generator was built with.
func (g *Generator) Config() types.Configuration {
	return g.config
}

// Render serializes doc as an HTML fragment. Pretty output puts the heading,
// the opening tag and every item on its own line.
func Render(doc types.ListingDocument, pretty bool) string {
	var b strings.Builder
	b.WriteString(heading)
	if pretty {
		b.WriteString("\n")
	}
	b.WriteString("<ul>")
	if pretty {
		b.WriteString("\n")
	}

	for _, item := range doc.Items {
		fmt.Fprintf(&b, "<li><a href='%s'>%s</a></li>", html.EscapeString(item.Href), html.EscapeString(item.DisplayName))
		if pretty {
			b.WriteString("\n")
		}
	}

	b.WriteString("</ul>")
	return b.String()
}

func itemFor(entry types.DirectoryEntry) types.ListingItem {
	if entry.Kind == types.KindDirectory {
		return types.ListingItem{DisplayName: entry.Name + "/", Href: entry.Name + "/"}
	}
	return types.ListingItem{DisplayName: entry.Name, Href: entry.Name}
}
