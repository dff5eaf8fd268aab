// cmd/tarmirror/gitignore.go
package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	gocodewalker "github.com/boyter/gocodewalker"
)

// GitignoreFilter excludes files that .gitignore or .ignore rules below the
// root leave out. Directories are never excluded by it, and hidden paths are
// left to the hidden-entry rule because the walker does not report them.
type GitignoreFilter struct {
	root    string
	visible map[string]struct{} // root-relative slash paths reported by the walker
}

// NewGitignoreFilter walks root once and records every file the ignore rules keep.
func NewGitignoreFilter(root string) (*GitignoreFilter, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("could not resolve %s: %w", root, err)
	}

	filter := &GitignoreFilter{root: absRoot, visible: make(map[string]struct{})}

	fileListQueue := make(chan *gocodewalker.File, 100)
	fileWalker := gocodewalker.NewFileWalker(absRoot, fileListQueue)
	fileWalker.IgnoreGitIgnore = false
	fileWalker.IgnoreIgnoreFile = false

	var walkErr error
	var firstWalkError firstError
	processingDone := make(chan struct{})

	go func() {
		defer close(processingDone)
		fileWalker.SetErrorHandler(func(e error) bool {
			slog.Warn("Error reported by file walker.", "root", absRoot, "error", e)
			firstWalkError.record(e)
			return true
		})
		walkErr = fileWalker.Start()
	}()

	for f := range fileListQueue {
		relPath, errRel := filepath.Rel(absRoot, f.Location)
		if errRel != nil {
			slog.Debug("Walker reported a path outside the root.", "path", f.Location, "error", errRel)
			continue
		}
		filter.visible[filepath.ToSlash(relPath)] = struct{}{}
	}
	<-processingDone

	if walkErr == nil {
		walkErr = firstWalkError.get()
	}
	if walkErr != nil {
		return nil, fmt.Errorf("ignore-file walk failed for '%s': %w", absRoot, walkErr)
	}
	slog.Debug("Ignore rules evaluated.", "root", absRoot, "visibleFiles", len(filter.visible))
	return filter, nil
}

// firstError keeps the first error reported by the walker's goroutines.
type firstError struct {
	mu  sync.Mutex
	err error
}

func (f *firstError) record(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err == nil {
		f.err = err
	}
}

func (f *firstError) get() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

func (g *GitignoreFilter) IsExcluded(info PathInfo) (bool, string, string) {
	if info.IsDir || hasHiddenComponent(info.RelPath) {
		return false, "", ""
	}
	if _, ok := g.visible[info.RelPath]; ok {
		return false, "", ""
	}
	return true, "ignore file match", ""
}
