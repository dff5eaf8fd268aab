// cmd/tarmirror/tree.go
package main

import (
	"errors"
	"log/slog"
	"os"
	"path"
	"path/filepath"
)

// TreeNode is one directory of the in-memory tree.
type TreeNode struct {
	Path     string      // Filesystem path of the directory
	Name     string      // Final component of Path
	Files    []string    // Names of non-directory entries, in listing order
	Children []*TreeNode // One node per subdirectory, in listing order
	Parent   *TreeNode   // nil for the root; never used for upward traversal
}

// BuildOptions controls which entries make it into the tree.
type BuildOptions struct {
	IncludeHidden bool
	Exclude       Excluder // optional extra rules (globs, gitignore)
}

func newTreeNode(p string, parent *TreeNode) *TreeNode {
	return &TreeNode{
		Path:   p,
		Name:   filepath.Base(filepath.Clean(p)),
		Parent: parent,
	}
}

// IsLeaf reports whether the directory has no subdirectories.
func (n *TreeNode) IsLeaf() bool {
	return len(n.Children) == 0
}

// RelPath returns the slash-separated path of n relative to its root ("" for the root).
func (n *TreeNode) RelPath() string {
	if n.Parent == nil {
		return ""
	}
	return path.Join(n.Parent.RelPath(), n.Name)
}

// CountDirs returns the number of directories in the subtree, n included.
func (n *TreeNode) CountDirs() int {
	total := 1
	for _, child := range n.Children {
		total += child.CountDirs()
	}
	return total
}

// CountFiles returns the number of files in the subtree.
func (n *TreeNode) CountFiles() int {
	total := len(n.Files)
	for _, child := range n.Children {
		total += child.CountFiles()
	}
	return total
}

// BuildTree lists root and every directory below it, depth-first, and
// returns the populated tree. Any listing failure aborts the whole build.
func BuildTree(root string, opts BuildOptions) (*TreeNode, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, &PathError{Path: root, Err: err}
	}
	if !info.IsDir() {
		return nil, &PathError{Path: root, Err: errors.New("not a directory")}
	}

	var rules ExcluderChain
	if !opts.IncludeHidden {
		rules = append(rules, HiddenExcluder{})
	}
	if opts.Exclude != nil {
		rules = append(rules, opts.Exclude)
	}

	slog.Debug("Building directory tree.", "root", root, "includeHidden", opts.IncludeHidden)
	tree := newTreeNode(root, nil)
	if err := buildSubtree(tree, rules); err != nil {
		return nil, err
	}
	slog.Debug("Directory tree built.", "root", root, "dirs", tree.CountDirs(), "files", tree.CountFiles())
	return tree, nil
}

func buildSubtree(node *TreeNode, rules ExcluderChain) error {
	entries, err := os.ReadDir(node.Path)
	if err != nil {
		return &PathError{Path: node.Path, Err: err}
	}

	parentRel := node.RelPath()
	for _, entry := range entries {
		name := entry.Name()
		entryPath := filepath.Join(node.Path, name)
		pathInfo := PathInfo{
			AbsPath:  entryPath,
			RelPath:  path.Join(parentRel, name),
			BaseName: name,
			IsDir:    entry.IsDir(),
		}
		if excluded, reason, pattern := rules.IsExcluded(pathInfo); excluded {
			slog.Debug("Skipping entry.", "path", pathInfo.RelPath, "reason", reason, "pattern", pattern)
			continue
		}
		if pathInfo.IsDir {
			node.Children = append(node.Children, newTreeNode(entryPath, node))
		} else {
			node.Files = append(node.Files, name)
		}
	}

	for _, child := range node.Children {
		if err := buildSubtree(child, rules); err != nil {
			return err
		}
	}
	return nil
}
