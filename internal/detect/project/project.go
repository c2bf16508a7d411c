// Package project implements the project-artifact detector: a pruning
// directory walk that identifies build-output directories by structural
// criteria instead of name alone.
package project

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/heftdev/heft/internal/bloat"
	"github.com/heftdev/heft/internal/sizer"
)

const detectorName = "project-artifacts"

// installedPackageAncestors are directory names that, if found among a
// candidate's ancestors, mark it as living inside an already-installed
// package rather than being project bloat itself (e.g. a __pycache__ inside
// a venv's site-packages).
var installedPackageAncestors = map[string]bool{
	"site-packages": true,
	"dist-packages": true,
	"node_modules":  true,
	".venv":         true,
	"venv":          true,
}

// unconditionalArtifacts are accepted without any sibling-manifest check.
// vendor is deliberately absent: it has its own case below requiring a
// sibling go.mod or composer.json, since a bare "vendor" directory is too
// common a name to accept on its own.
var unconditionalArtifacts = map[string]bool{
	"node_modules": true,
}

// pythonCacheArtifacts are accepted unless nested inside an installed
// package; .venv and venv additionally need a sibling Python manifest.
var pythonCacheArtifacts = map[string]bool{
	".venv":          true,
	"venv":           true,
	"__pycache__":    true,
	".pytest_cache":  true,
	".mypy_cache":    true,
	".tox":           true,
}

var sourceExtensions = map[string]bool{
	".go": true, ".rs": true, ".js": true, ".ts": true, ".jsx": true,
	".tsx": true, ".py": true, ".java": true, ".kt": true, ".swift": true,
}

// Detector is the project-artifact detector (C3).
type Detector struct {
	Sizer *sizer.Sizer
	names *nameCache
}

// New returns a ready-to-use project-artifact detector.
func New() *Detector {
	return &Detector{Sizer: sizer.New(8), names: newNameCache()}
}

func (d *Detector) Name() string { return detectorName }

func (d *Detector) Available(cfg *bloat.Config) bool { return !cfg.Disable(detectorName) }

func (d *Detector) Scan(ctx context.Context, cfg *bloat.Config) bloat.DetectorResult {
	var result bloat.DetectorResult
	seenArtifacts := map[string]bool{}

	for _, root := range cfg.Roots {
		d.walk(ctx, root, seenArtifacts, &result)
	}
	return result
}

// walk recurses from dir, pruning into accepted artifact directories instead
// of descending into them.
func (d *Detector) walk(ctx context.Context, dir string, seen map[string]bool, result *bloat.DetectorResult) {
	select {
	case <-ctx.Done():
		return
	default:
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			result.Diagnostics = append(result.Diagnostics, fmt.Sprintf("read %s: %v", dir, err))
		}
		return
	}

	for _, de := range entries {
		if !de.IsDir() {
			continue
		}
		name := de.Name()
		childPath := filepath.Join(dir, name)

		if seen[childPath] {
			continue
		}

		if accepted, reason := d.detectArtifact(childPath, name); accepted {
			seen[childPath] = true
			size, diags := d.Sizer.Size(ctx, childPath)
			result.Diagnostics = append(result.Diagnostics, diags...)

			entry := bloat.Entry{
				Category:         bloat.ProjectArtifact,
				Name:             d.projectLabel(childPath, name),
				Path:             childPath,
				Kind:             bloat.KindFilesystemPath,
				SizeBytes:        size,
				ReclaimableBytes: size,
				DetectorOrigin:   detectorName,
			}
			if age, ok := sourceAgeDays(childPath); ok {
				entry.LastModifiedDays = &age
			}
			_ = reason
			result.Entries = append(result.Entries, entry)
			continue
		}

		if isHidden(name) && !pythonCacheArtifacts[name] {
			continue
		}

		d.walk(ctx, childPath, seen, result)
	}
}

// detectArtifact applies the structural-verification rules. reason is a
// short diagnostic string describing why a name-matching directory was
// rejected, for future use in verbose diagnostics.
func (d *Detector) detectArtifact(path, name string) (accepted bool, reason string) {
	dir := filepath.Dir(path)

	switch {
	case unconditionalArtifacts[name]:
		return true, ""

	case pythonCacheArtifacts[name]:
		if isInsideInstalledPackages(path) {
			return false, "inside an installed package"
		}
		if name == ".venv" || name == "venv" {
			if !hasSiblingAny(dir, "requirements.txt", "setup.py", "pyproject.toml", "setup.cfg") {
				return false, "no sibling python manifest"
			}
		}
		return true, ""

	case name == "target":
		if hasSiblingAny(dir, "Cargo.toml", "pom.xml") || hasSiblingGlob(dir, "build.gradle*") {
			return true, ""
		}
		return false, "no sibling Cargo.toml/pom.xml/build.gradle"

	case name == "build" || name == "dist":
		if hasSiblingAny(dir, "package.json", "pyproject.toml", "setup.py", "pom.xml") || hasSiblingGlob(dir, "build.gradle*") {
			return true, ""
		}
		return false, "no sibling manifest"

	case name == ".gradle":
		if hasSiblingGlob(dir, "build.gradle*") || hasSiblingGlob(dir, "settings.gradle*") {
			return true, ""
		}
		return false, "no sibling build.gradle"

	case name == "DerivedData":
		if isUnderHomeBounded(path, 10) && looksLikeXcodeDerivedData(path) {
			return true, ""
		}
		return false, "not under home or missing xcode structure"

	case name == "bin" || name == "obj":
		if hasSiblingGlob(dir, "*.csproj") || hasSiblingGlob(dir, "*.sln") {
			return true, ""
		}
		return false, "no sibling .csproj/.sln"

	case name == "vendor":
		if hasSiblingAny(dir, "go.mod", "composer.json") {
			return true, ""
		}
		return false, "no sibling go.mod/composer.json"

	default:
		return false, "not an artifact name"
	}
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

func isInsideInstalledPackages(path string) bool {
	dir := filepath.Dir(path)
	for {
		base := filepath.Base(dir)
		if installedPackageAncestors[base] {
			return true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return false
		}
		dir = parent
	}
}

// isUnderHomeBounded reports whether home is reached within maxAncestors
// steps up from path. It resolves home with os.UserHomeDir itself rather
// than through the Config's Platform.
func isUnderHomeBounded(path string, maxAncestors int) bool {
	home, err := os.UserHomeDir()
	if err != nil {
		return false
	}
	home = filepath.Clean(home)
	dir := filepath.Clean(path)
	for i := 0; i < maxAncestors; i++ {
		if dir == home {
			return true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return false
		}
		dir = parent
	}
	return false
}

func looksLikeXcodeDerivedData(path string) bool {
	entries, err := os.ReadDir(path)
	if err != nil {
		return false
	}
	for _, de := range entries {
		if de.IsDir() && (de.Name() == "Build" || strings.Contains(de.Name(), "-")) {
			return true
		}
	}
	return false
}

func hasSiblingAny(dir string, names ...string) bool {
	for _, n := range names {
		if _, err := os.Stat(filepath.Join(dir, n)); err == nil {
			return true
		}
	}
	return false
}

func hasSiblingGlob(dir, pattern string) bool {
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	return err == nil && len(matches) > 0
}

// sourceAgeDays returns the age in days of the most recently modified
// source file among siblings of the artifact directory, bounded to a
// traversal depth of 3 so one project cannot dominate the scan.
func sourceAgeDays(artifactPath string) (int64, bool) {
	root := filepath.Dir(artifactPath)
	var newest time.Time

	var walk func(dir string, depth int)
	walk = func(dir string, depth int) {
		if depth > 3 {
			return
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			return
		}
		for _, de := range entries {
			name := de.Name()
			if de.IsDir() {
				if unconditionalArtifacts[name] || pythonCacheArtifacts[name] || name == "target" || name == "build" || name == "dist" {
					continue
				}
				walk(filepath.Join(dir, name), depth+1)
				continue
			}
			if !sourceExtensions[filepath.Ext(name)] {
				continue
			}
			info, err := de.Info()
			if err != nil {
				continue
			}
			if info.ModTime().After(newest) {
				newest = info.ModTime()
			}
		}
	}
	walk(root, 0)

	if newest.IsZero() {
		return 0, false
	}
	return int64(time.Since(newest).Hours() / 24), true
}

// projectLabel derives a human-readable label for an accepted artifact,
// reading the sibling manifest for a project name where one exists, falling
// back to the directory name of the project root, cached per project root to
// avoid redundant manifest parsing within one scan.
func (d *Detector) projectLabel(artifactPath, artifactName string) string {
	projectRoot := filepath.Dir(artifactPath)
	if name, ok := d.names.get(projectRoot); ok {
		return name + "/" + artifactName
	}
	name := readProjectName(projectRoot)
	d.names.set(projectRoot, name)
	return name + "/" + artifactName
}

func readProjectName(projectRoot string) string {
	if name, ok := readJSONField(filepath.Join(projectRoot, "package.json"), "name"); ok {
		return name
	}
	if name, ok := readJSONField(filepath.Join(projectRoot, "composer.json"), "name"); ok {
		return name
	}
	if name, ok := readCargoPackageName(filepath.Join(projectRoot, "Cargo.toml")); ok {
		return name
	}
	if name, ok := readGoModuleName(filepath.Join(projectRoot, "go.mod")); ok {
		return name
	}
	return filepath.Base(projectRoot)
}

func readJSONField(path, field string) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil {
		return "", false
	}
	v, ok := obj[field].(string)
	return v, ok && v != ""
}

func readCargoPackageName(path string) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	inPackage := false
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "[") {
			inPackage = line == "[package]"
			continue
		}
		if !inPackage || !strings.HasPrefix(line, "name") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		name := strings.Trim(strings.TrimSpace(parts[1]), `"`)
		if name != "" {
			return name, true
		}
	}
	return "", false
}

func readGoModuleName(path string) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	for _, line := range strings.Split(string(data), "\n") {
		if strings.HasPrefix(line, "module ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "module ")), true
		}
	}
	return "", false
}

// nameCache maps project-root path to derived project name, bounding memory
// use across a scan that may touch thousands of roots. When full it evicts
// the oldest inserted key (FIFO); lookups do not refresh an entry's age.
type nameCache struct {
	mu    sync.Mutex
	items map[string]string
	order []string
	max   int
}

func newNameCache() *nameCache {
	return &nameCache{items: make(map[string]string), max: 4096}
}

func (c *nameCache) get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.items[key]
	return v, ok
}

func (c *nameCache) set(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.items[key]; !exists {
		if len(c.order) >= c.max {
			oldest := c.order[0]
			c.order = c.order[1:]
			delete(c.items, oldest)
		}
		c.order = append(c.order, key)
	}
	c.items[key] = value
}
