// cmd/tarmirror/errors.go
package main

import (
	"fmt"
)

// PathError reports a source root that does not exist, is not a directory,
// or cannot be listed.
type PathError struct {
	Path string
	Err  error
}

func (e *PathError) Error() string {
	return fmt.Sprintf("directory %s doesn't exist or cannot be listed: %v", e.Path, e.Err)
}

func (e *PathError) Unwrap() error { return e.Err }

// DirCreateError reports a destination directory that could not be created.
type DirCreateError struct {
	Path string
	Err  error
}

func (e *DirCreateError) Error() string {
	return fmt.Sprintf("cannot create directory %s: %v", e.Path, e.Err)
}

func (e *DirCreateError) Unwrap() error { return e.Err }

// ArchiveError reports a failed archiver run. Status is the archiver's exit
// code, or -1 when the archiver was not run (it could not be started, or its
// output would have overwritten another archive of the same run).
type ArchiveError struct {
	Path   string
	Status int
	Err    error
}

func (e *ArchiveError) Error() string {
	if e.Status < 0 {
		return fmt.Sprintf("archiving %s failed: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("return code of tar (archiving %s) was: %d", e.Path, e.Status)
}

func (e *ArchiveError) Unwrap() error { return e.Err }

// ConfigError reports an unusable setting: an unknown compression name,
// an undecodable config file or a malformed list file.
type ConfigError struct {
	Key string
	Err error
}

func (e *ConfigError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("configuration error: %v", e.Err)
	}
	return fmt.Sprintf("configuration error (%s): %v", e.Key, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }
