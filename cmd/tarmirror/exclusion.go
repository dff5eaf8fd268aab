// cmd/tarmirror/exclusion.go
package main

import (
	"log/slog"
	"path/filepath"
	"strings"
)

// hiddenMarker is the leading character of hidden entry names.
const hiddenMarker = "."

// PathInfo holds information about a directory entry being considered during the build.
type PathInfo struct {
	AbsPath  string // Path on the filesystem, as joined from the root
	RelPath  string // Path relative to the tree root, using slashes
	BaseName string // Final component of the path
	IsDir    bool   // Is the path a directory?
}

// Excluder defines the interface for checking if an entry should be left out of the tree.
type Excluder interface {
	IsExcluded(info PathInfo) (excluded bool, reason string, pattern string)
}

// isHidden reports whether a single path component is hidden.
func isHidden(name string) bool {
	return strings.HasPrefix(name, hiddenMarker)
}

// hasHiddenComponent reports whether any component of a slash-separated path is hidden.
func hasHiddenComponent(relPath string) bool {
	for _, part := range strings.Split(relPath, "/") {
		if isHidden(part) {
			return true
		}
	}
	return false
}

// HiddenExcluder drops entries whose name starts with the hidden marker.
type HiddenExcluder struct{}

func (HiddenExcluder) IsExcluded(info PathInfo) (bool, string, string) {
	if isHidden(info.BaseName) {
		return true, "hidden entry", hiddenMarker + "*"
	}
	return false, "", ""
}

// GlobExcluder drops entries whose basename or root-relative path matches one of the patterns.
type GlobExcluder struct {
	patterns []string
}

// NewGlobExcluder validates the patterns and keeps the usable ones.
func NewGlobExcluder(patterns []string) *GlobExcluder {
	valid := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		if _, errMatch := filepath.Match(pattern, "a"); errMatch != nil {
			slog.Warn("Invalid exclude pattern syntax, ignoring.", "pattern", pattern, "error", errMatch)
			continue
		}
		valid = append(valid, strings.TrimRight(pattern, `\/`))
	}
	slog.Debug("Using validated exclude patterns", "patterns", valid)
	return &GlobExcluder{patterns: valid}
}

// Len returns the number of usable patterns.
func (e *GlobExcluder) Len() int { return len(e.patterns) }

func (e *GlobExcluder) IsExcluded(info PathInfo) (bool, string, string) {
	if match, p := matchesGlob(info.BaseName, e.patterns); match {
		return true, "basename match", p
	}
	if match, p := matchesGlob(info.RelPath, e.patterns); match {
		return true, "relative path match", p
	}
	return false, "", ""
}

// ExcluderChain applies its members in order; the first match wins.
type ExcluderChain []Excluder

func (c ExcluderChain) IsExcluded(info PathInfo) (bool, string, string) {
	for _, e := range c {
		if e == nil {
			continue
		}
		if excluded, reason, pattern := e.IsExcluded(info); excluded {
			return true, reason, pattern
		}
	}
	return false, "", ""
}

// matchesGlob returns the first pattern matching name.
func matchesGlob(name string, patterns []string) (bool, string) {
	for _, p := range patterns {
		if ok, _ := filepath.Match(p, name); ok {
			return true, p
		}
	}
	return false, ""
}
