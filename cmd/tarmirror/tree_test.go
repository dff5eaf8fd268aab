// cmd/tarmirror/tree_test.go
package main

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func childNames(node *TreeNode) []string {
	names := make([]string, 0, len(node.Children))
	for _, child := range node.Children {
		names = append(names, child.Name)
	}
	return names
}

func findChild(t *testing.T, node *TreeNode, name string) *TreeNode {
	t.Helper()
	for _, child := range node.Children {
		if child.Name == name {
			return child
		}
	}
	require.FailNow(t, "child not found", "%s has no child %q", node.Path, name)
	return nil
}

func TestBuildTree_Basic(t *testing.T) {
	structure := map[string]string{
		"a.txt":          "a",
		"b.txt":          "b",
		"src/":           "",
		"src/main.go":    "package main",
		"src/pkg/":       "",
		"src/pkg/lib.go": "package pkg",
		"empty/":         "",
	}
	root := setupTestDir(t, structure)

	tree, err := BuildTree(root, BuildOptions{})
	require.NoError(t, err)

	assert.Equal(t, filepath.Base(root), tree.Name)
	assert.Nil(t, tree.Parent)
	assert.Equal(t, "", tree.RelPath())
	assert.Equal(t, []string{"a.txt", "b.txt"}, tree.Files)
	assert.ElementsMatch(t, []string{"empty", "src"}, childNames(tree))
	assert.False(t, tree.IsLeaf())

	src := findChild(t, tree, "src")
	assert.Same(t, tree, src.Parent)
	assert.Equal(t, "src", src.RelPath())
	assert.Equal(t, []string{"main.go"}, src.Files)
	assert.Equal(t, filepath.Join(root, "src"), src.Path)

	pkg := findChild(t, src, "pkg")
	assert.Equal(t, "src/pkg", pkg.RelPath())
	assert.True(t, pkg.IsLeaf())
	assert.Equal(t, []string{"lib.go"}, pkg.Files)

	empty := findChild(t, tree, "empty")
	assert.True(t, empty.IsLeaf())
	assert.Empty(t, empty.Files)

	assert.Equal(t, 4, tree.CountDirs())
	assert.Equal(t, 4, tree.CountFiles())
}

func TestBuildTree_HiddenEntries(t *testing.T) {
	structure := map[string]string{
		".env":               "SECRET=1",
		"visible.txt":        "v",
		".cache/":            "",
		".cache/blob":        "b",
		"sub/":               "",
		"sub/.hidden_file":   "h",
		"sub/.hidden_dir/":   "",
		"sub/shown.txt":      "s",
		"sub/deeper/":        "",
		"sub/deeper/.secret": "x",
	}
	root := setupTestDir(t, structure)

	t.Run("Excluded by default at every depth", func(t *testing.T) {
		tree, err := BuildTree(root, BuildOptions{})
		require.NoError(t, err)
		assert.Equal(t, []string{"visible.txt"}, tree.Files)
		assert.Equal(t, []string{"sub"}, childNames(tree))
		sub := findChild(t, tree, "sub")
		assert.Equal(t, []string{"shown.txt"}, sub.Files)
		assert.Equal(t, []string{"deeper"}, childNames(sub))
		assert.Empty(t, findChild(t, sub, "deeper").Files)
	})

	t.Run("Included on request at every depth", func(t *testing.T) {
		tree, err := BuildTree(root, BuildOptions{IncludeHidden: true})
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{".env", "visible.txt"}, tree.Files)
		assert.ElementsMatch(t, []string{".cache", "sub"}, childNames(tree))
		sub := findChild(t, tree, "sub")
		assert.ElementsMatch(t, []string{".hidden_file", "shown.txt"}, sub.Files)
		assert.ElementsMatch(t, []string{".hidden_dir", "deeper"}, childNames(sub))
		assert.Equal(t, []string{".secret"}, findChild(t, sub, "deeper").Files)
	})
}

func TestBuildTree_GlobExcludes(t *testing.T) {
	structure := map[string]string{
		"keep.txt":         "k",
		"debug.log":        "l",
		"build/":           "",
		"build/out.bin":    "o",
		"docs/":            "",
		"docs/readme.md":   "r",
		"docs/notes.log":   "n",
		"docs/drafts/":     "",
		"docs/drafts/a.md": "a",
	}
	root := setupTestDir(t, structure)
	logBuf := setupTestLogger(t)

	tree, err := BuildTree(root, BuildOptions{Exclude: NewGlobExcluder([]string{"*.log", "build", "docs/drafts"})})
	require.NoError(t, err)

	assert.Equal(t, []string{"keep.txt"}, tree.Files)
	assert.Equal(t, []string{"docs"}, childNames(tree))
	docs := findChild(t, tree, "docs")
	assert.Equal(t, []string{"readme.md"}, docs.Files)
	assert.Empty(t, docs.Children)

	logOutput := logBuf.String()
	assert.Contains(t, logOutput, "path=debug.log")
	assert.Contains(t, logOutput, "reason=\"relative path match\"")
}

func TestBuildTree_RootErrors(t *testing.T) {
	t.Run("Missing root", func(t *testing.T) {
		missing := filepath.Join(t.TempDir(), "nosuchdir")
		tree, err := BuildTree(missing, BuildOptions{})
		assert.Nil(t, tree)
		var pathErr *PathError
		require.ErrorAs(t, err, &pathErr)
		assert.Equal(t, missing, pathErr.Path)
		assert.True(t, errors.Is(err, fs.ErrNotExist))
	})

	t.Run("Root is a file", func(t *testing.T) {
		root := setupTestDir(t, map[string]string{"file.txt": "x"})
		tree, err := BuildTree(filepath.Join(root, "file.txt"), BuildOptions{})
		assert.Nil(t, tree)
		var pathErr *PathError
		require.ErrorAs(t, err, &pathErr)
		assert.Contains(t, err.Error(), "not a directory")
	})
}

func TestBuildTree_UnreadableSubdirectoryFailsWholeBuild(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("Skipping permission-based listing test on Windows")
	}
	if os.Geteuid() == 0 {
		t.Skip("Skipping permission-based listing test as root")
	}
	root := setupTestDir(t, map[string]string{"ok/": "", "locked/": "", "locked/inner.txt": "x"})
	locked := filepath.Join(root, "locked")
	require.NoError(t, os.Chmod(locked, 0000))
	t.Cleanup(func() { _ = os.Chmod(locked, 0755) })

	tree, err := BuildTree(root, BuildOptions{})
	assert.Nil(t, tree)
	var pathErr *PathError
	require.ErrorAs(t, err, &pathErr)
	assert.Equal(t, locked, pathErr.Path)
	assert.True(t, errors.Is(err, fs.ErrPermission))
}

func TestTreeNode_NameFromPath(t *testing.T) {
	node := newTreeNode("/tmp/project/", nil)
	assert.Equal(t, "project", node.Name)
	child := newTreeNode("/tmp/project/sub", node)
	assert.Equal(t, "sub", child.Name)
	assert.Equal(t, "sub", child.RelPath())
}
