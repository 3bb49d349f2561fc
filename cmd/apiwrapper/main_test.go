package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/apiwrapper/internal/cli"
)

func TestRun_Version(t *testing.T) {
	var out, errOut bytes.Buffer
	code := run([]string{"version"}, &out, &errOut)

	assert.Equal(t, cli.ExitSuccess, code)
	assert.Contains(t, out.String(), "apiwrapper ")
	assert.Empty(t, errOut.String())
}

func TestRun_ExitCodes(t *testing.T) {
	var out, errOut bytes.Buffer
	code := run([]string{"dump", "hash", "[1,"}, &out, &errOut)

	assert.Equal(t, cli.ExitCommandError, code)
	assert.Contains(t, errOut.String(), "Error: invalid JSON")
}

func TestRun_UnknownCommand(t *testing.T) {
	var out, errOut bytes.Buffer
	code := run([]string{"nope"}, &out, &errOut)

	assert.Equal(t, cli.ExitFailure, code)
	assert.Contains(t, errOut.String(), `unknown command "nope"`)
}
