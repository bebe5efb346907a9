package main

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/taigrr/dirindex/internal/types"
)

type (
	// GenerateInput contains parameters for generating a listing.
	GenerateInput struct {
		Path string `json:"path,omitempty" jsonschema:"Directory relative to the served root (default: root)"`
	}

	// GenerateOutput contains the result of generating a listing.
	GenerateOutput struct {
		Success bool                `json:"success"`
		Path    string              `json:"path"`
		Items   []types.ListingItem `json:"items"`
	}

	// ListInput contains parameters for previewing a listing.
	ListInput struct {
		Path string `json:"path,omitempty" jsonschema:"Directory relative to the served root (default: root)"`
	}

	// ListOutput contains the entries a listing would include.
	ListOutput struct {
		Path  string              `json:"path"`
		Items []types.ListingItem `json:"items"`
		HTML  string              `json:"html"`
	}
)

func registerTools(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "generate_listing",
		Description: "Write the index file for a directory under the served root. Lists subdirectories and files with a supported extension, skipping ignored names. Overwrites any existing index file.",
	}, handleGenerate)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_directory",
		Description: "Return the entries and HTML a listing of the directory would contain, without writing anything.",
	}, handleList)
}
