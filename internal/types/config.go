package types

const (
	// DefaultTargetDirectory is the directory listed when none is given.
	DefaultTargetDirectory = "examples"
	// DefaultOutputName is the name of the generated index file.
	DefaultOutputName = "index.html"
)

// Configuration holds everything a generation run needs.
type Configuration struct {
	TargetDirectory     string   `json:"targetDirectory" yaml:"target_directory"`
	SupportedExtensions []string `json:"supportedExtensions" yaml:"supported_extensions"`
	IgnoreList          []string `json:"ignoreList" yaml:"ignore_list"`
	ExcludePatterns     []string `json:"excludePatterns,omitempty" yaml:"exclude_patterns,omitempty"`
	SortEntries         bool     `json:"sortEntries" yaml:"sort_entries"`
	PrettyPrint         bool     `json:"prettyPrint" yaml:"pretty_print"`
	OutputName          string   `json:"outputName" yaml:"output_name"`
	AtomicWrite         bool     `json:"atomicWrite" yaml:"atomic_write"`
}

// DefaultConfiguration returns the configuration of a bare invocation.
func DefaultConfiguration() Configuration {
	return Configuration{
		TargetDirectory:     DefaultTargetDirectory,
		SupportedExtensions: []string{".html"},
		IgnoreList:          []string{DefaultOutputName},
		SortEntries:         true,
		PrettyPrint:         true,
		OutputName:          DefaultOutputName,
	}
}

// FilterConfig extracts the path filter settings.
func (c Configuration) FilterConfig() *PathFilterConfig {
	return &PathFilterConfig{
		IgnoreList:          c.IgnoreList,
		SupportedExtensions: c.SupportedExtensions,
		ExcludePatterns:     c.ExcludePatterns,
	}
}
