// dev_process_utils/increment_version.go
//
// Bumps the patch level of `const Version` in the tarmirror command.
// Usage: go run ./dev_process_utils [path/to/main.go]
package main

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
)

const defaultVersionFile = "cmd/tarmirror/main.go"

// bumpPatch rewrites every `const Version = "x.y.z"` line with z+1.
// It returns the new content and whether a version line was found.
func bumpPatch(content string) (string, bool, error) {
	lines := strings.Split(content, "\n")
	re := regexp.MustCompile(`^const Version\s*=\s*(['"]?)(\d+\.\d+\.)(\d+)(['"]?.*)$`)

	versionUpdated := false
	updatedLines := make([]string, 0, len(lines))
	for _, line := range lines {
		matches := re.FindStringSubmatch(line)
		if len(matches) != 5 {
			updatedLines = append(updatedLines, line)
			continue
		}
		patchNumber, err := strconv.Atoi(matches[3])
		if err != nil {
			return "", false, fmt.Errorf("invalid version format: %w", err)
		}
		updatedLines = append(updatedLines, fmt.Sprintf("const Version = %s%s%d%s", matches[1], matches[2], patchNumber+1, matches[4]))
		versionUpdated = true
	}
	return strings.Join(updatedLines, "\n"), versionUpdated, nil
}

func updateVersionInFile(versionFile string) bool {
	// Read the file
	content, err := os.ReadFile(versionFile)
	if err != nil {
		fmt.Printf("Error: File '%s' not found.\n", versionFile)
		return false
	}
	updatedContent, versionUpdated, err := bumpPatch(string(content))
	if err != nil {
		fmt.Println("Error:", err)
		return false
	}
	if !versionUpdated {
		fmt.Println("Error: VERSION constant not found.")
		return false
	}

	// Write the updated content back to the file
	err = os.WriteFile(versionFile, []byte(updatedContent), 0644)
	if err != nil {
		fmt.Printf("Error: Could not write to file '%s'.\n", versionFile)
		return false
	}

	fmt.Printf("Version updated in %s\n", versionFile)
	return true
} // End of updateVersionInFile

func main() {
	versionFile := defaultVersionFile
	if len(os.Args) > 1 {
		versionFile = os.Args[1]
	}
	if updateVersionInFile(versionFile) {
		os.Exit(0) // Success
	} else {
		os.Exit(1) // Failure
	}
} // End of main
