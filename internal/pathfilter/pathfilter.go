// Package pathfilter decides which directory entries belong in a listing.
package pathfilter

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gobwas/glob"
	"github.com/taigrr/dirindex/internal/types"
)

// PathFilter filters directory entries by ignore list, exclude patterns and file extension.
type PathFilter struct {
	ignoreList          []string
	supportedExtensions []string
	excludePatterns     []glob.Glob
}

// New creates a PathFilter. A nil config yields the default filter, which
// accepts .html files and directories and ignores index.html. A non-nil
// config replaces the defaults entirely; empty lists are legal. Empty
// extensions are dropped, so they never match every file.
func New(config *types.PathFilterConfig) (*PathFilter, error) {
	if config == nil {
		defaults := types.DefaultConfiguration()
		config = defaults.FilterConfig()
	}

	pf := &PathFilter{
		ignoreList: slices.Clone(config.IgnoreList),
		supportedExtensions: slices.DeleteFunc(slices.Clone(config.SupportedExtensions), func(ext string) bool {
			return ext == ""
		}),
	}

	for _, pattern := range config.ExcludePatterns {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}
		pf.excludePatterns = append(pf.excludePatterns, g)
	}

	return pf, nil
}

// IsIgnored reports whether name is in the ignore list or matches an exclude pattern.
func (pf *PathFilter) IsIgnored(name string) bool {
	if slices.Contains(pf.ignoreList, name) {
		return true
	}
	for _, g := range pf.excludePatterns {
		if g.Match(name) {
			return true
		}
	}
	return false
}

// HasSupportedExtension reports whether name ends with one of the supported suffixes.
// The comparison is case-sensitive.
func (pf *PathFilter) HasSupportedExtension(name string) bool {
	for _, ext := range pf.supportedExtensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// Allows checks if an entry belongs in the listing. Directories bypass the
// extension check; the ignore list applies to every kind.
func (pf *PathFilter) Allows(entry types.DirectoryEntry) bool {
	if pf.IsIgnored(entry.Name) {
		return false
	}

	switch entry.Kind {
	case types.KindDirectory:
		return true
	case types.KindFile:
		return pf.HasSupportedExtension(entry.Name)
	default:
		return false
	}
}

// FilterEntries filters a slice of entries to only include allowed ones, keeping their order.
func (pf *PathFilter) FilterEntries(entries []types.DirectoryEntry) []types.DirectoryEntry {
	var allowed []types.DirectoryEntry
	for _, entry := range entries {
		if pf.Allows(entry) {
			allowed = append(allowed, entry)
		}
	}
	return allowed
}
