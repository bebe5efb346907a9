// Package types defines the data structures shared across dirindex.
package types

// EntryKind distinguishes the directory children that can appear in a listing.
type EntryKind int

const (
	// KindFile is a regular file.
	KindFile EntryKind = iota
	// KindDirectory is a directory.
	KindDirectory
)

func (k EntryKind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDirectory:
		return "directory"
	default:
		return "unknown"
	}
}

type (
	// DirectoryEntry is an immediate child of a scanned directory.
	DirectoryEntry struct {
		Name string    `json:"name"`
		Kind EntryKind `json:"kind"`
	}

	// ListingItem is one rendered link of a listing.
	ListingItem struct {
		DisplayName string `json:"displayName"`
		Href        string `json:"href"`
	}

	// ListingDocument is the ordered set of links written to the index file.
	ListingDocument struct {
		Directory string        `json:"directory"`
		Items     []ListingItem `json:"items"`
	}

	// PathFilterConfig contains configuration for the path filter.
	PathFilterConfig struct {
		IgnoreList          []string `json:"ignoreList"`
		SupportedExtensions []string `json:"supportedExtensions"`
		ExcludePatterns     []string `json:"excludePatterns"`
	}
)

// GenerateResult describes a completed generation.
type GenerateResult struct {
	Path     string          `json:"path"`
	Document ListingDocument `json:"document"`
}
