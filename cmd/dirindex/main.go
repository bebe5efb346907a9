// Package main implements the dirindex command, which writes an index.html
// listing the files and subdirectories of a directory.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/fang"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
	"github.com/taigrr/dirindex/internal/config"
	"github.com/taigrr/dirindex/internal/filesystem"
	"github.com/taigrr/dirindex/internal/listing"
	"github.com/taigrr/dirindex/internal/watch"
)

var (
	fileSystem *filesystem.Service
	generator  *listing.Generator
)

func main() {
	if err := fang.Execute(
		context.Background(),
		newRootCmd(),
		fang.WithVersion(version),
		fang.WithoutCompletions(),
		fang.WithoutManpage(),
	); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := config.New()

	cmd := &cobra.Command{
		Use:   "dirindex [directory]",
		Short: "Write an index.html listing a directory",
		Long: `dirindex scans the immediate children of a directory and writes an
index.html fragment into it linking to every subdirectory and to every
file with a supported extension. Entries on the ignore list are left out.`,
		Example: `dirindex examples
dirindex site --ext .html --ext .pdf --ignore index.html --ignore drafts
dirindex site --watch`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Load(args); err != nil {
				return err
			}
			return runGenerate(cmd, cfg)
		},
	}
	if err := cfg.InitFlags(cmd); err != nil {
		panic(err)
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:     "serve [root]",
			Short:   "Serve listing tools over MCP on stdio",
			Example: `dirindex serve ~/site`,
			Args:    cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := cfg.Load(nil); err != nil {
					return err
				}
				return runServer(cmd, cfg, args)
			},
		},
		&cobra.Command{
			Use:   "config",
			Short: "Print the effective configuration as YAML",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := cfg.Load(nil); err != nil {
					return err
				}
				data, err := cfg.YAML()
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			},
		},
	)

	return cmd
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func runGenerate(cmd *cobra.Command, cfg *config.Config) error {
	logger := newLogger(cmd.ErrOrStderr(), cfg.Verbose)
	logger.Debug("Configuration",
		"dir", cfg.Listing.TargetDirectory,
		"extensions", cfg.Listing.SupportedExtensions,
		"ignore", cfg.Listing.IgnoreList,
		"exclude", cfg.Listing.ExcludePatterns,
		"sort", cfg.Listing.SortEntries,
		"pretty", cfg.Listing.PrettyPrint,
		"atomic", cfg.Listing.AtomicWrite,
		"config_file", cfg.ConfigFile,
	)

	fileSystem = filesystem.New(cfg.Listing.TargetDirectory)
	var err error
	generator, err = listing.New(fileSystem, cfg.Listing)
	if err != nil {
		return err
	}

	generate := func() error {
		result, err := generator.Generate("")
		if err != nil {
			return err
		}
		for _, item := range result.Document.Items {
			logger.Debug("Listed", "href", item.Href)
		}
		logger.Info("Wrote listing", "path", result.Path, "items", len(result.Document.Items))
		return nil
	}

	if err := generate(); err != nil {
		return err
	}
	if !cfg.Watch {
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	watcher, err := watch.New(fileSystem.GetRootPath(), generator.Config().OutputName, generate, watch.WithLogger(logger))
	if err != nil {
		return err
	}
	defer watcher.Close()

	return watcher.Run(ctx)
}

func runServer(cmd *cobra.Command, cfg *config.Config, args []string) error {
	logger := newLogger(cmd.ErrOrStderr(), cfg.Verbose)

	var rootPath string
	if len(args) > 0 {
		rootPath = args[0]
	} else {
		var err error
		rootPath, err = os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get current directory: %w", err)
		}
	}

	fileSystem = filesystem.New(rootPath)
	var err error
	generator, err = listing.New(fileSystem, cfg.Listing)
	if err != nil {
		return err
	}

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "dirindex",
		Version: version,
	}, nil)

	registerTools(server)

	logger.Info("Serving MCP on stdio", "root", fileSystem.GetRootPath())
	if err := server.Run(cmd.Context(), &mcp.StdioTransport{}); err != nil {
		return fmt.Errorf("error running server: %w", err)
	}

	return nil
}
