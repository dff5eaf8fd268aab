// cmd/tarmirror/render.go
package main

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// prefixSuffixLength is the width of the "| " prefix plus the space before a
// directory's suffix. Children are indented by the parent's name length plus this.
const prefixSuffixLength = 3

// RenderOptions selects what the tree view shows.
type RenderOptions struct {
	ShowFiles  bool
	ShowCounts bool
}

// RenderTree writes the textual view of tree to w. It only reads the tree.
func RenderTree(w io.Writer, tree *TreeNode, opts RenderOptions) error {
	return renderSubtree(w, tree, 0, opts)
}

func renderSubtree(w io.Writer, node *TreeNode, indent int, opts RenderOptions) error {
	if _, err := fmt.Fprintf(w, "%s| %s%s\n", strings.Repeat(" ", indent), node.Name, nodeSuffix(node, opts.ShowCounts)); err != nil {
		return err
	}

	childIndent := indent + utf8.RuneCountInString(node.Name) + prefixSuffixLength
	if opts.ShowFiles {
		spaces := strings.Repeat(" ", childIndent)
		for _, file := range node.Files {
			if _, err := fmt.Fprintf(w, "%s* %s\n", spaces, file); err != nil {
				return err
			}
		}
	}
	for _, child := range node.Children {
		if err := renderSubtree(w, child, childIndent, opts); err != nil {
			return err
		}
	}
	return nil
}

// nodeSuffix: "+" has subdirectories, "o" empty leaf, ":" leaf with files (or counts requested).
func nodeSuffix(node *TreeNode, showCounts bool) string {
	switch {
	case len(node.Children) > 0:
		return " +"
	case len(node.Files) == 0 && !showCounts:
		return " o"
	case showCounts:
		return fmt.Sprintf(" : %d", len(node.Files))
	default:
		return " :"
	}
}
