package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCmd_Executes(t *testing.T) {
	originalVersion := version
	version = "1.2.3"
	defer func() { version = originalVersion }()

	out, err := execute(t, nil, nil, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "sibyl version 1.2.3")
}

func TestSetVersion(t *testing.T) {
	originalVersion := version
	defer func() { version = originalVersion }()

	SetVersion("9.9.9")
	assert.Equal(t, "9.9.9", version)

	// Empty input keeps the current value.
	SetVersion("")
	assert.Equal(t, "9.9.9", version)
}
