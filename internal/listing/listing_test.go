package listing

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"
	"github.com/taigrr/dirindex/internal/filesystem"
	"github.com/taigrr/dirindex/internal/types"
)

func setupTestDir(t *testing.T) string {
	t.Helper()
	tmpDir, err := os.MkdirTemp("", "dirindex-listing-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tmpDir) })
	return tmpDir
}

// populate creates files for names and directories for names ending in "/".
func populate(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		if strings.HasSuffix(name, "/") {
			if err := os.MkdirAll(filepath.Join(dir, name), 0o755); err != nil {
				t.Fatalf("mkdir %s: %v", name, err)
			}
			continue
		}
		if err := os.WriteFile(filepath.Join(dir, name), []byte(name), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
}

func configFor(dir string) types.Configuration {
	cfg := types.DefaultConfiguration()
	cfg.TargetDirectory = dir
	return cfg
}

type link struct {
	Href string
	Text string
}

func parseLinks(t *testing.T, fragment string) []link {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		t.Fatalf("parse fragment: %v", err)
	}
	if got := doc.Find("h1").Text(); got != "Directory Listing" {
		t.Errorf("heading = %q, want %q", got, "Directory Listing")
	}
	var links []link
	doc.Find("ul > li > a").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		links = append(links, link{Href: href, Text: s.Text()})
	})
	return links
}

func readIndex(t *testing.T, dir string) string {
	t.Helper()
	content, err := os.ReadFile(filepath.Join(dir, "index.html"))
	if err != nil {
		t.Fatalf("read index.html: %v", err)
	}
	return string(content)
}

func TestGenerate_Scenario(t *testing.T) {
	dir := setupTestDir(t)
	populate(t, dir, "a.html", "b.html", "notes.txt", "sub/", "index.html")

	result, err := Generate(configFor(dir))
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if result.Path != filepath.Join(dir, "index.html") {
		t.Errorf("Generate() path = %q, want %q", result.Path, filepath.Join(dir, "index.html"))
	}
	if len(result.Document.Items) != 3 {
		t.Errorf("Generate() returned %d items, want 3", len(result.Document.Items))
	}

	want := "<h1>Directory Listing</h1>\n<ul>\n" +
		"<li><a href='a.html'>a.html</a></li>\n" +
		"<li><a href='b.html'>b.html</a></li>\n" +
		"<li><a href='sub/'>sub/</a></li>\n" +
		"</ul>"
	if got := readIndex(t, dir); got != want {
		t.Errorf("index.html mismatch (-want +got):\n%s", cmp.Diff(want, got))
	}
}

func TestGenerate_EveryAllowedChildOnce(t *testing.T) {
	dir := setupTestDir(t)
	populate(t, dir, "x.html", "y.html", "z.html", "docs/", "img/")

	if _, err := Generate(configFor(dir)); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	got := parseLinks(t, readIndex(t, dir))
	want := []link{
		{"docs/", "docs/"},
		{"img/", "img/"},
		{"x.html", "x.html"},
		{"y.html", "y.html"},
		{"z.html", "z.html"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("links mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerate_Idempotent(t *testing.T) {
	dir := setupTestDir(t)
	populate(t, dir, "a.html", "sub/", "notes.txt")

	cfg := configFor(dir)
	if _, err := Generate(cfg); err != nil {
		t.Fatalf("first Generate() error = %v", err)
	}
	first := readIndex(t, dir)

	if _, err := Generate(cfg); err != nil {
		t.Fatalf("second Generate() error = %v", err)
	}
	if second := readIndex(t, dir); second != first {
		t.Errorf("second run differs:\n%s", cmp.Diff(first, second))
	}
}

func TestGenerate_IgnoredDirectory(t *testing.T) {
	dir := setupTestDir(t)
	populate(t, dir, "a.html", "private/", "public/")

	cfg := configFor(dir)
	cfg.IgnoreList = append(cfg.IgnoreList, "private")
	if _, err := Generate(cfg); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	got := parseLinks(t, readIndex(t, dir))
	want := []link{{"a.html", "a.html"}, {"public/", "public/"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("links mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerate_SymlinksSkipped(t *testing.T) {
	dir := setupTestDir(t)
	populate(t, dir, "a.html", "sub/")
	if err := os.Symlink(filepath.Join(dir, "a.html"), filepath.Join(dir, "alias.html")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	if err := os.Symlink(filepath.Join(dir, "sub"), filepath.Join(dir, "subalias")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	if _, err := Generate(configFor(dir)); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	got := parseLinks(t, readIndex(t, dir))
	want := []link{{"a.html", "a.html"}, {"sub/", "sub/"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("links mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerate_CompactOutput(t *testing.T) {
	dir := setupTestDir(t)
	populate(t, dir, "a.html", "sub/")

	cfg := configFor(dir)
	cfg.PrettyPrint = false
	if _, err := Generate(cfg); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	want := "<h1>Directory Listing</h1><ul><li><a href='a.html'>a.html</a></li><li><a href='sub/'>sub/</a></li></ul>"
	if got := readIndex(t, dir); got != want {
		t.Errorf("index.html = %q, want %q", got, want)
	}
}

func TestGenerate_UnsortedKeepsEveryEntry(t *testing.T) {
	dir := setupTestDir(t)
	populate(t, dir, "c.html", "a.html", "b.html")

	cfg := configFor(dir)
	cfg.SortEntries = false
	gen, err := New(filesystem.New(dir), cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	doc, err := gen.Build("")
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	seen := make(map[string]int)
	for _, item := range doc.Items {
		seen[item.Href]++
	}
	want := map[string]int{"a.html": 1, "b.html": 1, "c.html": 1}
	if diff := cmp.Diff(want, seen); diff != "" {
		t.Errorf("items mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerate_CustomOutputName(t *testing.T) {
	dir := setupTestDir(t)
	populate(t, dir, "a.html")

	cfg := configFor(dir)
	cfg.OutputName = "listing.html"
	cfg.IgnoreList = []string{"listing.html"}
	cfg.AtomicWrite = true

	result, err := Generate(cfg)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if filepath.Base(result.Path) != "listing.html" {
		t.Errorf("Generate() path = %q, want listing.html", result.Path)
	}
	if _, err := os.Stat(filepath.Join(dir, "index.html")); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("index.html should not be written, stat error = %v", err)
	}
}

func TestGenerate_CustomOutputNameIdempotent(t *testing.T) {
	dir := setupTestDir(t)
	populate(t, dir, "a.html", "sub/")

	cfg := configFor(dir)
	cfg.OutputName = "listing.html"
	ignore := cfg.IgnoreList

	read := func() string {
		t.Helper()
		content, err := os.ReadFile(filepath.Join(dir, "listing.html"))
		if err != nil {
			t.Fatalf("read listing.html: %v", err)
		}
		return string(content)
	}

	if _, err := Generate(cfg); err != nil {
		t.Fatalf("first Generate() error = %v", err)
	}
	first := read()

	result, err := Generate(cfg)
	if err != nil {
		t.Fatalf("second Generate() error = %v", err)
	}
	if second := read(); second != first {
		t.Errorf("second run differs:\n%s", cmp.Diff(first, second))
	}

	for _, item := range result.Document.Items {
		if item.Href == "listing.html" {
			t.Errorf("listing includes its own output file: %+v", result.Document.Items)
		}
	}
	if diff := cmp.Diff([]string{"index.html"}, ignore); diff != "" {
		t.Errorf("caller ignore list modified (-want +got):\n%s", diff)
	}
}

func TestGenerate_Errors(t *testing.T) {
	t.Run("missing directory", func(t *testing.T) {
		dir := setupTestDir(t)
		_, err := Generate(configFor(filepath.Join(dir, "missing")))
		if !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("Generate() error = %v, want fs.ErrNotExist", err)
		}
	})

	t.Run("invalid exclude pattern", func(t *testing.T) {
		dir := setupTestDir(t)
		cfg := configFor(dir)
		cfg.ExcludePatterns = []string{"[oops"}
		if _, err := Generate(cfg); err == nil {
			t.Error("Generate() error = nil, want error")
		}
	})

	t.Run("read-only directory", func(t *testing.T) {
		if os.Geteuid() == 0 {
			t.Skip("permission checks do not apply to root")
		}
		dir := setupTestDir(t)
		populate(t, dir, "a.html")
		os.Chmod(dir, 0o555)
		defer os.Chmod(dir, 0o755)

		_, err := Generate(configFor(dir))
		if !errors.Is(err, fs.ErrPermission) {
			t.Errorf("Generate() error = %v, want fs.ErrPermission", err)
		}
	})
}

func TestGenerator_Subdirectory(t *testing.T) {
	dir := setupTestDir(t)
	populate(t, dir, "site/", "site/a.html", "site/drafts/")

	gen, err := New(filesystem.New(dir), configFor(dir))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	result, err := gen.Generate("site")
	if err != nil {
		t.Fatalf("Generate(site) error = %v", err)
	}
	if result.Path != filepath.Join(dir, "site", "index.html") {
		t.Errorf("Generate(site) path = %q", result.Path)
	}
	want := []types.ListingItem{
		{DisplayName: "a.html", Href: "a.html"},
		{DisplayName: "drafts/", Href: "drafts/"},
	}
	if diff := cmp.Diff(want, result.Document.Items); diff != "" {
		t.Errorf("items mismatch (-want +got):\n%s", diff)
	}
	if _, err := os.Stat(filepath.Join(dir, "index.html")); err == nil {
		t.Error("root index.html should not exist")
	}
}

func TestRender(t *testing.T) {
	doc := types.ListingDocument{Items: []types.ListingItem{
		{DisplayName: "a.html", Href: "a.html"},
		{DisplayName: "sub/", Href: "sub/"},
	}}

	tests := []struct {
		name   string
		doc    types.ListingDocument
		pretty bool
		want   string
	}{
		{
			name:   "pretty",
			doc:    doc,
			pretty: true,
			want:   "<h1>Directory Listing</h1>\n<ul>\n<li><a href='a.html'>a.html</a></li>\n<li><a href='sub/'>sub/</a></li>\n</ul>",
		},
		{
			name: "compact",
			doc:  doc,
			want: "<h1>Directory Listing</h1><ul><li><a href='a.html'>a.html</a></li><li><a href='sub/'>sub/</a></li></ul>",
		},
		{
			name:   "empty pretty",
			pretty: true,
			want:   "<h1>Directory Listing</h1>\n<ul>\n</ul>",
		},
		{
			name: "escapes markup",
			doc: types.ListingDocument{Items: []types.ListingItem{
				{DisplayName: "it's <b>&.html", Href: "it's <b>&.html"},
			}},
			want: "<h1>Directory Listing</h1><ul><li><a href='it&#39;s &lt;b&gt;&amp;.html'>it&#39;s &lt;b&gt;&amp;.html</a></li></ul>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Render(tt.doc, tt.pretty); got != tt.want {
				t.Errorf("Render() = %q, want %q", got, tt.want)
			}
		})
	}
}
