package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jcdickinson/rsdocmd/internal/config"
	"github.com/jcdickinson/rsdocmd/internal/rustdoc"
	"github.com/jcdickinson/rsdocmd/internal/service"
)

func TestParseCrateArgs(t *testing.T) {
	t.Parallel()
	got := parseCrateArgs([]string{"serde", "tokio@1.40.0", "geo@latest"}, true)
	assert.Equal(t, []service.Request{
		{Name: "serde", Refresh: true},
		{Name: "tokio", Version: "1.40.0", Refresh: true},
		{Name: "geo", Version: "latest", Refresh: true},
	}, got)
}

func TestOutputName(t *testing.T) {
	t.Parallel()
	c, err := rustdoc.Parse([]byte(`{"root":"0:0","crate_version":"0.29.0","format_version":39,"index":{
		"0:0":{"name":"geo","inner":{"module":{"items":[]}}}}}`))
	assert.NoError(t, err)
	assert.Equal(t, "geo-0.29.0.md", outputName(c, config.FormatMarkdown))
	assert.Equal(t, "geo-0.29.0.html", outputName(c, config.FormatHTML))

	c.CrateVersion = ""
	assert.Equal(t, "geo.md", outputName(c, config.FormatMarkdown))
}

func TestIsDir(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	file := filepath.Join(dir, "out.md")
	assert.NoError(t, os.WriteFile(file, nil, 0644))

	assert.True(t, isDir(dir))
	assert.True(t, isDir("not-yet-created/"))
	assert.False(t, isDir(file))
	assert.False(t, isDir(""))
}
