package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestLoadEmptyPathIsDefault(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, len(Default().Products), len(c.Products))
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"name":"Crate","price":7.5},{"name":"Skid","price":"3"}]`), 0o644))

	c, err := Load(path)
	require.NoError(t, err)

	p, ok := c.Find("Crate")
	require.True(t, ok)
	assert.Equal(t, "7.5", p.Price.String())

	_, ok = c.Find("Nope")
	assert.False(t, ok)
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"empty":     `[]`,
		"no name":   `[{"price":1}]`,
		"negative":  `[{"name":"a","price":-1}]`,
		"duplicate": `[{"name":"a","price":1},{"name":"a","price":2}]`,
		"not json":  `{`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "c.json")
			require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
