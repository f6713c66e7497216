// Package artifact locates the release binary described by the build
// system's output-metadata.json descriptor.
package artifact

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// DescriptorName is the descriptor file the build writes into the release dir.
const DescriptorName = "output-metadata.json"

// ErrArtifactNotFound is wrapped by every failure to resolve an artifact.
var ErrArtifactNotFound = errors.New("artifact not found")

// Descriptor is the subset of the build descriptor we read.
type Descriptor struct {
	Elements []Element `json:"elements"`
}

// Element describes one produced artifact.
type Element struct {
	VersionName string `json:"versionName"`
	OutputFile  string `json:"outputFile"`
}

// Artifact is a resolved release binary.
type Artifact struct {
	Version string `json:"version" yaml:"version"`
	Path    string `json:"path" yaml:"path"`
}

// Locate reads the descriptor inside releaseDir and resolves the first element.
func Locate(releaseDir string) (Artifact, error) {
	p := filepath.Join(releaseDir, DescriptorName)
	b, err := os.ReadFile(p)
	if err != nil {
		return Artifact{}, fmt.Errorf("%w: read %s: %v", ErrArtifactNotFound, DescriptorName, err)
	}
	var d Descriptor
	if err := json.Unmarshal(b, &d); err != nil {
		return Artifact{}, fmt.Errorf("%w: parse %s: %v", ErrArtifactNotFound, DescriptorName, err)
	}
	a, err := Resolve(releaseDir, d)
	if err != nil {
		return Artifact{}, err
	}
	if _, err := os.Stat(a.Path); err != nil {
		return Artifact{}, fmt.Errorf("%w: %s missing", ErrArtifactNotFound, filepath.Base(a.Path))
	}
	return a, nil
}

// Resolve picks the authoritative (first) element of d. The returned path is
// absolute when releaseDir can be made absolute.
func Resolve(releaseDir string, d Descriptor) (Artifact, error) {
	if len(d.Elements) == 0 {
		return Artifact{}, fmt.Errorf("%w: descriptor has no elements", ErrArtifactNotFound)
	}
	el := d.Elements[0]
	if el.VersionName == "" {
		return Artifact{}, fmt.Errorf("%w: missing versionName", ErrArtifactNotFound)
	}
	if el.OutputFile == "" {
		return Artifact{}, fmt.Errorf("%w: missing outputFile", ErrArtifactNotFound)
	}
	p := filepath.Join(releaseDir, el.OutputFile)
	if abs, err := filepath.Abs(p); err == nil {
		p = abs
	}
	return Artifact{Version: el.VersionName, Path: p}, nil
}
