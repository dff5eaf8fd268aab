// cmd/tarmirror/helpers.go
package main

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"
)

// mapsKeys Helper to get sorted map keys for logging and listings
func mapsKeys[M ~map[K]V, K comparable, V any](m M) []K {
	r := make([]K, 0, len(m))
	for k := range m {
		r = append(r, k)
	}
	sort.Slice(r, func(i, j int) bool {
		ki := fmt.Sprint(r[i])
		kj := fmt.Sprint(r[j])
		return ki < kj
	})
	return r
}

// formatBytes formats bytes into human-readable string.
func formatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	val := float64(b) / float64(div)
	unitPrefix := "KMGTPE"[exp]
	if val == float64(int64(val)) {
		return fmt.Sprintf("%d %ciB", int64(val), unitPrefix)
	}
	return fmt.Sprintf("%.1f %ciB", val, unitPrefix)
}

func tern[T any](cond bool, a, b T) T {
	if cond {
		return a
	}
	return b
}

// splitPatterns flattens comma separated entries and drops blanks.
func splitPatterns(list []string) []string {
	out := make([]string, 0, len(list))
	for _, item := range list {
		for _, part := range strings.Split(item, ",") {
			if cleaned := strings.TrimSpace(part); cleaned != "" {
				out = append(out, cleaned)
			}
		}
	}
	return out
}

// confirm asks a yes/no question; anything but n/no (any case) counts as yes.
func confirm(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprint(out, question)
	answer, _ := bufio.NewReader(in).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "n", "no":
		return false
	}
	return true
}
