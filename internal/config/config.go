// Package config layers command-line flags, DIRINDEX_* environment variables
// and an optional dirindex.yaml file into a generation configuration.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/taigrr/dirindex/internal/types"
	"gopkg.in/yaml.v3"
)

const (
	envPrefix  = "dirindex"
	configName = "dirindex"
)

var flagKeys = []string{"dir", "ext", "ignore", "exclude", "sort", "pretty", "output", "atomic", "watch", "config", "verbose"}

// fileSettings mirrors the viper keys, so a rendered configuration can be
// passed back through --config.
type fileSettings struct {
	Dir     string   `yaml:"dir"`
	Ext     []string `yaml:"ext"`
	Ignore  []string `yaml:"ignore"`
	Exclude []string `yaml:"exclude"`
	Sort    bool     `yaml:"sort"`
	Pretty  bool     `yaml:"pretty"`
	Output  string   `yaml:"output"`
	Atomic  bool     `yaml:"atomic"`
	Watch   bool     `yaml:"watch"`
	Verbose bool     `yaml:"verbose"`
}

// Config holds the effective settings of one dirindex invocation. Listing
// carries everything the generator needs; the remaining fields only steer the
// command itself.
type Config struct {
	Listing    types.Configuration
	ConfigFile string
	Watch      bool
	Verbose    bool

	v *viper.Viper
}

// New returns a Config backed by its own viper instance.
func New() *Config {
	return &Config{v: viper.New()}
}

// InitFlags registers the persistent flags on cmd and binds them to viper keys.
func (c *Config) InitFlags(cmd *cobra.Command) error {
	defaults := types.DefaultConfiguration()

	f := cmd.PersistentFlags()
	f.StringP("dir", "d", defaults.TargetDirectory, "directory to list")
	f.StringSliceP("ext", "e", defaults.SupportedExtensions, "supported file extension suffixes")
	f.StringSliceP("ignore", "i", defaults.IgnoreList, "entry names to leave out of the listing")
	f.StringSliceP("exclude", "x", nil, "glob patterns of entry names to leave out")
	f.Bool("sort", defaults.SortEntries, "sort entries by name")
	f.Bool("pretty", defaults.PrettyPrint, "put each list item on its own line")
	f.StringP("output", "o", defaults.OutputName, "name of the generated index file")
	f.Bool("atomic", defaults.AtomicWrite, "write through a temporary file and rename")
	f.BoolP("watch", "w", false, "regenerate whenever the directory changes")
	f.StringP("config", "c", "", "path to config file")
	f.BoolP("verbose", "v", false, "enable debug logging")

	for _, name := range flagKeys {
		if err := c.v.BindPFlag(name, f.Lookup(name)); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}
	c.v.SetEnvPrefix(envPrefix)
	c.v.AutomaticEnv()
	return nil
}

// Load reads the config file, if any, and populates c. A positional
// directory argument overrides every other source of the target directory.
func (c *Config) Load(args []string) error {
	if cfgFile := c.v.GetString("config"); cfgFile != "" {
		c.v.SetConfigFile(cfgFile)
	} else {
		c.v.SetConfigName(configName)
		c.v.AddConfigPath(".")
	}

	if err := c.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error loading config: %w", err)
		}
	}

	c.ConfigFile = c.v.ConfigFileUsed()
	c.Watch = c.v.GetBool("watch")
	c.Verbose = c.v.GetBool("verbose")
	c.Listing = types.Configuration{
		TargetDirectory:     c.v.GetString("dir"),
		SupportedExtensions: splitList(c.v.GetStringSlice("ext")),
		IgnoreList:          splitList(c.v.GetStringSlice("ignore")),
		ExcludePatterns:     splitList(c.v.GetStringSlice("exclude")),
		SortEntries:         c.v.GetBool("sort"),
		PrettyPrint:         c.v.GetBool("pretty"),
		OutputName:          c.v.GetString("output"),
		AtomicWrite:         c.v.GetBool("atomic"),
	}

	if len(args) > 0 {
		c.Listing.TargetDirectory = args[0]
	}
	if c.Listing.TargetDirectory == "" {
		c.Listing.TargetDirectory = types.DefaultTargetDirectory
	}
	if c.Listing.OutputName == "" {
		c.Listing.OutputName = types.DefaultOutputName
	}
	if strings.ContainsAny(c.Listing.OutputName, `/\`) {
		return fmt.Errorf("output must be a file name, not a path: %s", c.Listing.OutputName)
	}

	return nil
}

// YAML renders the effective configuration in the config file format.
func (c *Config) YAML() ([]byte, error) {
	out := fileSettings{
		Dir:     c.Listing.TargetDirectory,
		Ext:     c.Listing.SupportedExtensions,
		Ignore:  c.Listing.IgnoreList,
		Exclude: c.Listing.ExcludePatterns,
		Sort:    c.Listing.SortEntries,
		Pretty:  c.Listing.PrettyPrint,
		Output:  c.Listing.OutputName,
		Atomic:  c.Listing.AtomicWrite,
		Watch:   c.Watch,
		Verbose: c.Verbose,
	}

	data, err := yaml.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("failed to render config: %w", err)
	}
	return data, nil
}

// splitList accepts both repeated values and comma separated values, which is
// how lists arrive from environment variables.
func splitList(values []string) []string {
	list := []string{}
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				list = append(list, part)
			}
		}
	}
	return list
}
