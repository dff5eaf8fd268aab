// cmd/tarmirror/archive.go
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ArchiveRequest describes one archiver run.
type ArchiveRequest struct {
	Dir         string   // directory the archiver changes into
	Output      string   // archive file to create
	Members     []string // names relative to Dir
	Compression Compression
	Verbose     bool
}

// Args returns the archiver command line, without the command itself:
// [-v] [<compression flag>] -c -C <dir> -f <output> <members...>
func (r ArchiveRequest) Args() []string {
	args := make([]string, 0, 6+len(r.Members))
	if r.Verbose {
		args = append(args, "-v")
	}
	if r.Compression.Flag != "" {
		args = append(args, r.Compression.Flag)
	}
	args = append(args, "-c", "-C", r.Dir, "-f", r.Output)
	for _, member := range r.Members {
		// A leading dash would be read as an option.
		if strings.HasPrefix(member, "-") {
			member = "./" + member
		}
		args = append(args, member)
	}
	return args
}

// Archiver creates one archive per call and reports the completion status.
// A non-nil error means the archiver could not be run at all.
type Archiver interface {
	Archive(req ArchiveRequest) (status int, err error)
}

// TarArchiver runs an external tar-compatible command.
type TarArchiver struct {
	Command string    // defaults to "tar"
	Stdout  io.Writer // receives the archiver's output in verbose mode
	Stderr  io.Writer
}

func (t *TarArchiver) Archive(req ArchiveRequest) (int, error) {
	command := t.Command
	if command == "" {
		command = "tar"
	}
	cmd := exec.Command(command, req.Args()...)
	if req.Verbose {
		cmd.Stdout = t.Stdout
	}
	// A nil Stdout sends the output to the null device.
	cmd.Stderr = t.Stderr

	slog.Debug("Running archiver.", "command", command, "args", cmd.Args[1:])
	err := cmd.Run()
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return -1, err
}

// ArchiveOptions carries the per-run settings of ArchiveTree.
type ArchiveOptions struct {
	Compression Compression
	Verbose     bool
	Out         io.Writer // progress lines; nil discards them
}

// ArchiveInfo is one archive produced by a run.
type ArchiveInfo struct {
	Path string // relative to the destination root, slash separated
	Size int64  // -1 when the file could not be inspected
}

// Report lists what a run produced, in creation order.
type Report struct {
	Dest     string
	Dirs     []string // mirrored directories, relative to Dest
	Archives []ArchiveInfo
}

var errOwnArchiveClash = errors.New("own files archive name is taken by a subdirectory")

type archiveRun struct {
	archiver Archiver
	opts     ArchiveOptions
	report   *Report
}

// ArchiveTree archives tree into dest. A leaf directory becomes one archive
// "<dest>/<name>.tar<ext>"; a directory with subdirectories becomes a mirrored
// directory "<dest>/<name>" holding an archive of its own files (if any) and
// the results for its children. The first failure stops the walk and is
// returned together with the report of everything done so far.
func ArchiveTree(tree *TreeNode, dest string, archiver Archiver, opts ArchiveOptions) (*Report, error) {
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	run := &archiveRun{
		archiver: archiver,
		opts:     opts,
		report:   &Report{Dest: dest},
	}
	err := run.archiveSubtree(tree, dest)
	return run.report, err
}

func (r *archiveRun) archiveSubtree(node *TreeNode, dest string) error {
	fmt.Fprintf(r.opts.Out, "Archiving files in %s...", node.Path)

	if node.IsLeaf() {
		req := ArchiveRequest{
			Dir:         filepath.Dir(filepath.Clean(node.Path)),
			Output:      filepath.Join(dest, r.opts.Compression.ArchiveName(node.Name)),
			Members:     []string{node.Name},
			Compression: r.opts.Compression,
			Verbose:     r.opts.Verbose,
		}
		if err := r.create(node, req); err != nil {
			fmt.Fprintln(r.opts.Out, "failed")
			return err
		}
		fmt.Fprintln(r.opts.Out, "done")
		return nil
	}

	mirror := filepath.Join(dest, node.Name)
	if len(node.Files) > 0 {
		if clash := r.ownArchiveClash(node); clash != nil {
			output := filepath.Join(mirror, r.opts.Compression.ArchiveName(node.Name))
			slog.Error("Own-files archive would be overwritten.", "path", node.Path, "subdirectory", clash.Path, "archive", output)
			fmt.Fprintln(r.opts.Out, "failed")
			return &ArchiveError{Path: node.Path, Status: -1, Err: fmt.Errorf("%w: %s is also produced by %s", errOwnArchiveClash, output, clash.Path)}
		}
	}
	if err := ensureDir(mirror); err != nil {
		fmt.Fprintln(r.opts.Out, "failed")
		return err
	}
	r.report.Dirs = append(r.report.Dirs, r.relative(mirror))

	if len(node.Files) > 0 {
		req := ArchiveRequest{
			Dir:         node.Path,
			Output:      filepath.Join(mirror, r.opts.Compression.ArchiveName(node.Name)),
			Members:     append([]string(nil), node.Files...),
			Compression: r.opts.Compression,
			Verbose:     r.opts.Verbose,
		}
		if err := r.create(node, req); err != nil {
			fmt.Fprintln(r.opts.Out, "failed")
			return err
		}
	}
	fmt.Fprintln(r.opts.Out, "done")

	for _, child := range node.Children {
		if err := r.archiveSubtree(child, mirror); err != nil {
			return err
		}
	}
	return nil
}

// ownArchiveClash returns the child whose output would take the path of
// node's own-files archive, or nil.
func (r *archiveRun) ownArchiveClash(node *TreeNode) *TreeNode {
	own := r.opts.Compression.ArchiveName(node.Name)
	for _, child := range node.Children {
		childOutput := child.Name
		if child.IsLeaf() {
			childOutput = r.opts.Compression.ArchiveName(child.Name)
		}
		if childOutput == own {
			return child
		}
	}
	return nil
}

func (r *archiveRun) create(node *TreeNode, req ArchiveRequest) error {
	status, err := r.archiver.Archive(req)
	if err != nil {
		slog.Error("Archiver could not be started.", "path", node.Path, "error", err)
		return &ArchiveError{Path: node.Path, Status: -1, Err: err}
	}
	if status != 0 {
		slog.Error("Archiver reported failure.", "path", node.Path, "status", status)
		return &ArchiveError{Path: node.Path, Status: status}
	}

	size := int64(-1)
	if info, errStat := os.Stat(req.Output); errStat == nil {
		size = info.Size()
	} else {
		slog.Debug("Could not stat created archive.", "path", req.Output, "error", errStat)
	}
	r.report.Archives = append(r.report.Archives, ArchiveInfo{Path: r.relative(req.Output), Size: size})
	slog.Debug("Archive created.", "source", node.Path, "archive", req.Output, "members", len(req.Members))
	return nil
}

func (r *archiveRun) relative(p string) string {
	rel, err := filepath.Rel(r.report.Dest, p)
	if err != nil {
		return filepath.ToSlash(p)
	}
	return filepath.ToSlash(rel)
}

// ensureDir creates path unless a directory (or a symlink to one) already
// exists there. The parent must exist: mirrored directories are created
// strictly top-down.
func ensureDir(path string) error {
	info, err := os.Stat(path)
	switch {
	case err == nil && info.IsDir():
		slog.Debug("Destination directory exists.", "path", path)
		return nil
	case err == nil:
		return &DirCreateError{Path: path, Err: errors.New("a file with this name already exists")}
	case errors.Is(err, os.ErrNotExist):
		if errMkdir := os.Mkdir(path, 0o755); errMkdir != nil {
			return &DirCreateError{Path: path, Err: errMkdir}
		}
		slog.Debug("Destination directory created.", "path", path)
		return nil
	default:
		return &DirCreateError{Path: path, Err: err}
	}
}

// PrepareDestination creates the destination root (and missing parents)
// before any archiving starts.
func PrepareDestination(dest string) error {
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return &DirCreateError{Path: dest, Err: err}
	}
	return nil
}
