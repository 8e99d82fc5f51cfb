package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/annotate/internal/adapters/driving/mcp"
)

func TestMCPServeCmd_Flags(t *testing.T) {
	port := mcpServeCmd.Flags().Lookup("port")
	if assert.NotNil(t, port) {
		assert.Equal(t, "p", port.Shorthand)
		assert.Equal(t, "0", port.DefValue)
	}
}

func TestMCPServeCmd_RequiresDataService(t *testing.T) {
	Configure(nil)

	_, err := execute(t, "mcp", "serve")

	assert.ErrorIs(t, err, mcp.ErrMissingDataService)
}
