// Package manifest sniffs dependency manifests at a repository root so
// inventory reports can say what a project depends on without parsing
// every ecosystem's format.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
)

// maxContent caps how much of a manifest is carried into reports.
const maxContent = 50_000

// manifestNames lists the well-known manifest files per ecosystem, in
// report order.
var manifestNames = []string{
	// Python
	"requirements.txt",
	"pyproject.toml",
	"Pipfile",
	"environment.yml",
	// Node
	"package.json",
	// Go
	"go.mod",
	"go.sum",
	// Ruby
	"Gemfile",
	"Gemfile.lock",
	// Java / Gradle / Maven
	"build.gradle",
	"build.gradle.kts",
	"settings.gradle",
	"pom.xml",
	// Swift / Apple
	"Package.swift",
	"Podfile",
	"Cartfile",
}

// Manifest is one dependency manifest found at a repository root.
type Manifest struct {
	Name        string `json:"name" toon:"name"`
	Content     string `json:"content" toon:"content"`
	Fingerprint string `json:"fingerprint" toon:"fingerprint"`
	Truncated   bool   `json:"truncated" toon:"truncated"`
}

// Sniff reads the well-known manifests present at root. Unreadable files
// are skipped. The fingerprint covers the full file, not the truncated
// content, so it tracks real changes.
func Sniff(root string) []Manifest {
	var manifests []Manifest

	for _, name := range manifestNames {
		data, err := os.ReadFile(filepath.Join(root, name))
		if err != nil {
			continue
		}

		m := Manifest{
			Name:        name,
			Fingerprint: fmt.Sprintf("%016x", xxhash.Sum64(data)),
		}
		if len(data) > maxContent {
			data = data[:maxContent]
			m.Truncated = true
		}
		m.Content = string(data)

		manifests = append(manifests, m)
	}

	return manifests
}
