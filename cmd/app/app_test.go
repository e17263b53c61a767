package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCLICommands(t *testing.T) {
	app := newCLI()

	names := make([]string, 0, len(app.Commands))
	for _, cmd := range app.Commands {
		names = append(names, cmd.Name)
	}
	assert.Equal(t, []string{"serve", "analyze", "index"}, names)
}

func TestAnalyzeRequiresImage(t *testing.T) {
	app := newCLI()
	var out bytes.Buffer
	app.Writer = &out
	app.ErrWriter = &out

	err := app.Run([]string{"style-finder", "analyze", "--alternatives"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "image")
}
