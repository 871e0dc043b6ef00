package crawler

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"archmap/internal/extractor"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func TestCrawler_ExtractDirectory(t *testing.T) {
	root := writeTree(t, map[string]string{
		"deploy/docker-compose.yml": "services:\n  web:\n    image: nginx:1.27\n",
		"scripts/backup.sh":         "#!/bin/bash\nbackup_db() {\n  echo backup\n}\n",
		"README.md":                 "# nothing to extract here\n",
		"vendor/docker-compose.yml": "services:\n  ghost:\n    image: nginx\n",
	})

	c := New(extractor.DefaultExtractors())
	result, err := c.ExtractDirectory(root)
	require.NoError(t, err)
	assert.Empty(t, result.Errors)

	var ids []string
	for _, res := range result.Model.Resources {
		ids = append(ids, res.ID)
	}

	assert.Contains(t, ids, "web")
	assert.Contains(t, ids, "backup")
	assert.NotContains(t, ids, "ghost", "ignored directories are skipped")
	assert.Len(t, ids, 2)
}

func TestCrawler_DeduplicatesByID(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a/docker-compose.yml": "services:\n  web:\n    image: nginx:1.27\n",
		"b/docker-compose.yml": "services:\n  web:\n    image: httpd:2.4\n",
	})

	c := New(extractor.DefaultExtractors())
	result, err := c.ExtractDirectory(root)
	require.NoError(t, err)

	require.Len(t, result.Model.Resources, 1)
	assert.Equal(t, "nginx", result.Model.Resources[0].Technology,
		"first occurrence in sorted walk order wins")
}

func TestCrawler_CollectsErrorsWithoutAborting(t *testing.T) {
	root := writeTree(t, map[string]string{
		"bad/docker-compose.yml":  "services: [broken",
		"good/docker-compose.yml": "services:\n  db:\n    image: postgres:16\n",
	})

	c := New(extractor.DefaultExtractors())
	result, err := c.ExtractDirectory(root)
	require.NoError(t, err)

	assert.Len(t, result.Errors, 1)
	require.Len(t, result.Model.Resources, 1)
	assert.Equal(t, "db", result.Model.Resources[0].ID)
}

func TestCrawler_Ignore(t *testing.T) {
	root := writeTree(t, map[string]string{
		"keep/docker-compose.yml": "services:\n  web:\n    image: nginx\n",
		"skip/docker-compose.yml": "services:\n  db:\n    image: postgres\n",
	})

	c := New(extractor.DefaultExtractors())
	c.Ignore("skip")
	result, err := c.ExtractDirectory(root)
	require.NoError(t, err)

	require.Len(t, result.Model.Resources, 1)
	assert.Equal(t, "web", result.Model.Resources[0].ID)
}

func TestCrawler_ExtractFile(t *testing.T) {
	root := writeTree(t, map[string]string{
		"notes.txt": "plain text\n",
	})

	c := New(extractor.DefaultExtractors())
	resources, err := c.ExtractFile(filepath.Join(root, "notes.txt"))
	require.NoError(t, err)
	assert.Nil(t, resources, "unsupported files yield neither resources nor an error")
}
