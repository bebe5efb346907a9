package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/taigrr/dirindex/internal/listing"
	"github.com/taigrr/dirindex/internal/types"
)

func handleGenerate(ctx context.Context, req *mcp.CallToolRequest, input GenerateInput) (*mcp.CallToolResult, GenerateOutput, error) {
	path := strings.TrimSpace(input.Path)
	if err := requireDirectory(path); err != nil {
		return &mcp.CallToolResult{IsError: true}, GenerateOutput{Success: false, Path: path}, err
	}

	result, err := generator.Generate(path)
	if err != nil {
		return &mcp.CallToolResult{IsError: true}, GenerateOutput{Success: false, Path: path}, err
	}

	written, err := filepath.Rel(fileSystem.GetRootPath(), result.Path)
	if err != nil {
		written = result.Path
	}

	return nil, GenerateOutput{
		Success: true,
		Path:    filepath.ToSlash(written),
		Items:   nonNil(result.Document.Items),
	}, nil
}

func handleList(ctx context.Context, req *mcp.CallToolRequest, input ListInput) (*mcp.CallToolResult, ListOutput, error) {
	path := strings.TrimSpace(input.Path)
	if err := requireDirectory(path); err != nil {
		return &mcp.CallToolResult{IsError: true}, ListOutput{Path: path}, err
	}

	doc, err := generator.Build(path)
	if err != nil {
		return &mcp.CallToolResult{IsError: true}, ListOutput{Path: path}, err
	}

	return nil, ListOutput{
		Path:  path,
		Items: nonNil(doc.Items),
		HTML:  listing.Render(doc, generator.Config().PrettyPrint),
	}, nil
}

func requireDirectory(path string) error {
	isDir, err := fileSystem.IsDirectory(path)
	if err != nil {
		return err
	}
	if !isDir {
		return fmt.Errorf("not a directory: %s", path)
	}
	return nil
}

func nonNil(items []types.ListingItem) []types.ListingItem {
	if items == nil {
		return []types.ListingItem{}
	}
	return items
}
