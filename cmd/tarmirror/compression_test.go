// cmd/tarmirror/compression_test.go
package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCompression(t *testing.T) {
	testCases := []struct {
		name      string
		flag      string
		extension string
	}{
		{"gzip", "-z", ".gz"},
		{"bzip", "-j", ".bz"},
		{"xz", "-J", ".xz"},
		{"none", "", ""},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c, err := ParseCompression(tc.name)
			require.NoError(t, err)
			assert.Equal(t, tc.name, c.Name)
			assert.Equal(t, tc.flag, c.Flag)
			assert.Equal(t, tc.extension, c.Extension)
			assert.Equal(t, "dir.tar"+tc.extension, c.ArchiveName("dir"))
		})
	}
}

func TestParseCompression_Unknown(t *testing.T) {
	for _, name := range []string{"zip", "GZIP", "", "bzip2"} {
		_, err := ParseCompression(name)
		var configErr *ConfigError
		require.ErrorAs(t, err, &configErr, "name %q", name)
		assert.Equal(t, "compression", configErr.Key)
		assert.Contains(t, err.Error(), "bzip, gzip, none, xz")
	}
}

func TestCompressionNames(t *testing.T) {
	assert.Equal(t, []string{"bzip", "gzip", "none", "xz"}, CompressionNames())
}
