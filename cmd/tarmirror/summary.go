// cmd/tarmirror/summary.go
package main

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
)

// summaryNode is one entry of the destination layout printed after a run.
type summaryNode struct {
	Name     string
	Children map[string]*summaryNode
	Archive  *ArchiveInfo
}

// buildSummaryTree arranges the report's directories and archives by path.
func buildSummaryTree(report *Report) *summaryNode {
	root := &summaryNode{Name: ".", Children: make(map[string]*summaryNode)}

	insert := func(p string, archive *ArchiveInfo) {
		parts := strings.Split(p, "/")
		currentNode := root
		for j, part := range parts {
			if part == "" || part == "." {
				continue
			}
			childNode, exists := currentNode.Children[part]
			if !exists {
				childNode = &summaryNode{Name: part, Children: make(map[string]*summaryNode)}
				currentNode.Children[part] = childNode
			}
			if j == len(parts)-1 && archive != nil {
				if childNode.Archive != nil {
					slog.Warn("Summary conflict: archive listed twice.", "path", p)
				}
				childNode.Archive = archive
			}
			currentNode = childNode
		}
	}

	for _, dir := range report.Dirs {
		insert(dir, nil)
	}
	for i := range report.Archives {
		insert(report.Archives[i].Path, &report.Archives[i])
	}
	return root
}

func sortedChildNames(node *summaryNode) []string {
	childNames := make([]string, 0, len(node.Children))
	for name := range node.Children {
		childNames = append(childNames, name)
	}
	sort.Strings(childNames)
	return childNames
}

func printSummaryRecursive(writer io.Writer, node *summaryNode, indent string, isLast bool) {
	if node.Name == "." {
		childNames := sortedChildNames(node)
		for i, name := range childNames {
			printSummaryRecursive(writer, node.Children[name], indent, i == len(childNames)-1)
		}
		return
	}

	connector := tern(isLast, "└── ", "├── ")
	info := ""
	if node.Archive != nil {
		info = tern(node.Archive.Size < 0, " (size unknown)", fmt.Sprintf(" (%s)", formatBytes(node.Archive.Size)))
	} else {
		info = "/"
	}
	fmt.Fprintf(writer, "%s%s%s%s\n", indent, connector, node.Name, info)

	childIndent := indent + tern(isLast, "    ", "│   ")
	childNames := sortedChildNames(node)
	for i, name := range childNames {
		printSummaryRecursive(writer, node.Children[name], childIndent, i == len(childNames)-1)
	}
}

// printSummaryListSection prints a titled, path-sorted list.
func printSummaryListSection[K comparable, V any](
	writer io.Writer,
	titleFormat string,
	items map[K]V,
	getPath func(K) string,
	getDetails func(K, V) string,
) {
	fmt.Fprintf(writer, titleFormat, len(items))
	if len(items) == 0 {
		return
	}
	keys := make([]K, 0, len(items))
	for k := range items {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return getPath(keys[i]) < getPath(keys[j]) })
	for _, k := range keys {
		pathStr := getPath(k)
		detailsStr := ""
		if getDetails != nil {
			detailsStr = getDetails(k, items[k])
		}
		if detailsStr != "" {
			fmt.Fprintf(writer, "- %s: %s\n", pathStr, detailsStr)
		} else {
			fmt.Fprintf(writer, "- %s\n", pathStr)
		}
	}
}

// printSummary writes the produced layout of every report, followed by the
// errors keyed by source path.
func printSummary(outputWriter io.Writer, reports []*Report, errorSources map[string]error) {
	fmt.Fprintln(outputWriter, "\n--- Summary ---")

	for _, report := range reports {
		if report == nil {
			continue
		}
		var totalSize int64
		for _, a := range report.Archives {
			if a.Size > 0 {
				totalSize += a.Size
			}
		}
		if len(report.Archives) == 0 && len(report.Dirs) == 0 {
			fmt.Fprintf(outputWriter, "Nothing was written to '%s'.\n", report.Dest)
			continue
		}
		fmt.Fprintf(outputWriter, "Created %d archives (%s total) and %d directories in '%s':\n",
			len(report.Archives), formatBytes(totalSize), len(report.Dirs), report.Dest)
		printSummaryRecursive(outputWriter, buildSummaryTree(report), "", true)
	}

	if len(errorSources) > 0 {
		printSummaryListSection(outputWriter, "\nErrors encountered (%d):\n",
			errorSources, func(path string) string { return path },
			func(path string, err error) string { return err.Error() })
	}

	fmt.Fprintln(outputWriter, "---------------")
}
