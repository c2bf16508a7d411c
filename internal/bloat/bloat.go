// Package bloat defines the shared data model detectors produce and the
// contract the orchestrator drives them through.
package bloat

import (
	"context"
	"time"

	"github.com/heftdev/heft/internal/platform"
)

// Category classifies a BloatEntry. The String form is the stable on-disk
// and on-wire representation — never fmt's default enum rendering, which
// would change if a constant were renamed.
type Category uint8

const (
	ProjectArtifact Category = iota
	PackageCache
	ContainerData
	IdeData
	SystemCache
)

func (c Category) String() string {
	switch c {
	case ProjectArtifact:
		return "project-artifacts"
	case PackageCache:
		return "package-cache"
	case ContainerData:
		return "container-data"
	case IdeData:
		return "ide-data"
	case SystemCache:
		return "system-cache"
	default:
		return "unknown"
	}
}

// ParseCategory parses the stable string form back into a Category.
func ParseCategory(s string) (Category, bool) {
	switch s {
	case "project-artifacts":
		return ProjectArtifact, true
	case "package-cache":
		return PackageCache, true
	case "container-data":
		return ContainerData, true
	case "ide-data":
		return IdeData, true
	case "system-cache":
		return SystemCache, true
	default:
		return 0, false
	}
}

// Kind distinguishes how a BloatEntry maps to something deletable.
type Kind uint8

const (
	KindFilesystemPath Kind = iota
	KindDockerImages
	KindDockerContainers
	KindDockerVolumes
	KindDockerBuildCache
	KindVMDiskImage
)

// Entry is the universal unit produced by detectors.
type Entry struct {
	Category         Category
	Name             string
	Path             string // absolute path, or "<none>" for aggregates
	Kind             Kind
	SizeBytes        uint64
	ReclaimableBytes uint64
	LastModifiedDays *int64 // nil when undefined (aggregates)
	DetectorOrigin   string
}

// DetectorResult is what a single detector invocation returns.
type DetectorResult struct {
	Entries     []Entry
	Diagnostics []string
}

// Config is the resolved configuration passed to every detector and to the
// cleanup engine. Platform is a field, not a global lookup, so tests can
// substitute a fake platform.
type Config struct {
	Platform        *platform.Platform
	Roots           []string
	DockerEnabled   bool
	Disabled        map[string]bool
	SubprocessTimeout time.Duration
	Verbose         bool
	CacheOverrides  map[string]string // tool -> path override from config.toml
}

// Disable reports whether a detector name has been explicitly disabled.
func (c *Config) Disable(name string) bool {
	if c.Disabled == nil {
		return false
	}
	return c.Disabled[name]
}

// Detector is the uniform capability the orchestrator drives.
type Detector interface {
	Name() string
	Available(cfg *Config) bool
	Scan(ctx context.Context, cfg *Config) DetectorResult
}
