package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_HasSubcommands(t *testing.T) {
	root := NewRootCmd()

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}

	for _, want := range []string{"serve", "search", "ai", "analyze", "health", "config", "version"} {
		assert.Contains(t, names, want)
	}
}

func TestVersionCmd_Output(t *testing.T) {
	root := NewRootCmd()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs([]string{"version"})

	require.NoError(t, root.Execute())
	assert.Contains(t, buf.String(), "omnisearch")
}

func TestVersionCmd_JSON(t *testing.T) {
	root := NewRootCmd()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs([]string{"version", "--json"})

	require.NoError(t, root.Execute())
	assert.Contains(t, buf.String(), `"version"`)
	assert.Contains(t, buf.String(), `"go_version"`)
}
