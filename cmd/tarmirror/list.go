// cmd/tarmirror/list.go
package main

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

const listSeparator = " -> "

// ListEntry is one "SOURCE -> DEST" line of a list file.
type ListEntry struct {
	Source string
	Dest   string
}

// LoadListFile reads a list file. Relative paths are resolved against the
// directory holding the list file.
func LoadListFile(listPath string) ([]ListEntry, error) {
	f, err := os.Open(listPath)
	if err != nil {
		return nil, &ConfigError{Key: "list", Err: err}
	}
	defer f.Close()

	absList, err := filepath.Abs(listPath)
	if err != nil {
		return nil, &ConfigError{Key: "list", Err: err}
	}
	return ParseList(f, filepath.Dir(absList))
}

// ParseList parses list lines; blank lines and lines starting with '#' are skipped.
func ParseList(r io.Reader, baseDir string) ([]ListEntry, error) {
	sc := bufio.NewScanner(r)
	var entries []ListEntry
	lineNum := 0
	for sc.Scan() {
		lineNum++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		source, dest, found := strings.Cut(line, listSeparator)
		source, dest = strings.TrimSpace(source), strings.TrimSpace(dest)
		if !found || source == "" || dest == "" {
			return nil, &ConfigError{Key: "list", Err: fmt.Errorf("line %d: expected 'SOURCE%sDEST', got %q", lineNum, listSeparator, line)}
		}
		entries = append(entries, ListEntry{
			Source: resolveAgainst(baseDir, source),
			Dest:   resolveAgainst(baseDir, dest),
		})
	}
	if err := sc.Err(); err != nil {
		return nil, &ConfigError{Key: "list", Err: err}
	}
	slog.Debug("List file parsed.", "entries", len(entries))
	return entries, nil
}

func resolveAgainst(baseDir, p string) string {
	if filepath.IsAbs(p) || baseDir == "" {
		return filepath.Clean(p)
	}
	return filepath.Join(baseDir, p)
}

// ListEntryError ties a failure to the list entry it happened in.
type ListEntryError struct {
	Entry ListEntry
	Err   error
}

func (e *ListEntryError) Error() string {
	return fmt.Sprintf("%s -> %s: %v", e.Entry.Source, e.Entry.Dest, e.Err)
}

func (e *ListEntryError) Unwrap() error { return e.Err }

// ArchiveList builds and archives each entry in order. The first failure
// stops the run; the reports of the entries handled so far are returned with it.
func ArchiveList(entries []ListEntry, buildOpts func(source string) (BuildOptions, error), archiver Archiver, opts ArchiveOptions) ([]*Report, error) {
	reports := make([]*Report, 0, len(entries))
	for _, entry := range entries {
		report, err := archiveListEntry(entry, buildOpts, archiver, opts)
		if report != nil {
			reports = append(reports, report)
		}
		if err != nil {
			return reports, &ListEntryError{Entry: entry, Err: err}
		}
	}
	return reports, nil
}

func archiveListEntry(entry ListEntry, buildOpts func(source string) (BuildOptions, error), archiver Archiver, opts ArchiveOptions) (*Report, error) {
	bOpts, err := buildOpts(entry.Source)
	if err != nil {
		return nil, err
	}
	tree, err := BuildTree(entry.Source, bOpts)
	if err != nil {
		return nil, err
	}
	if err := PrepareDestination(entry.Dest); err != nil {
		return nil, err
	}
	slog.Info("Archiving list entry.", "source", entry.Source, "dest", entry.Dest)
	return ArchiveTree(tree, entry.Dest, archiver, opts)
}
