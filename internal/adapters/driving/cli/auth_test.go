package cli

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/annotate/internal/core/domain"
)

func TestAuthCmd_HasSubcommands(t *testing.T) {
	names := make([]string, 0, len(authCmd.Commands()))
	for _, c := range authCmd.Commands() {
		names = append(names, c.Name())
	}

	assert.ElementsMatch(t, []string{"login", "logout", "status"}, names)
}

func TestAuthStatusCmd_SignedOut(t *testing.T) {
	setupTestServices(t)

	out, err := execute(t, "auth", "status")

	require.NoError(t, err)
	assert.Contains(t, out, "Not signed in")
}

func TestAuthLoginCmd_WithFlags(t *testing.T) {
	env := setupTestServices(t)

	out, err := execute(t, "auth", "login", "--token", "tok-123", "--account", "ana@example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed in as ana@example.com")

	creds, err := env.creds.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-123", creds.AccessToken)

	out, err = execute(t, "auth", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed in as ana@example.com")
}

func TestAuthLoginCmd_ReadsTokenFromInput(t *testing.T) {
	env := setupTestServices(t)

	out, err := executeWithInput(t, "tok-from-prompt\n", "auth", "login")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed in")

	creds, err := env.creds.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-from-prompt", creds.AccessToken)
}

func TestAuthLoginCmd_EmptyToken(t *testing.T) {
	setupTestServices(t)

	_, err := executeWithInput(t, "\n", "auth", "login")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "a token is required")
}

func TestAuthLogoutCmd(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "auth", "login", "--token", "tok-123")
	require.NoError(t, err)

	out, err := execute(t, "auth", "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed out")

	out, err = execute(t, "auth", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Not signed in")
}

func TestAuthStatusCmd_Expired(t *testing.T) {
	env := setupTestServices(t)
	require.NoError(t, env.creds.Save(context.Background(), domain.Credentials{
		AccessToken: "old",
		Expiry:      time.Now().Add(-time.Hour),
	}))

	out, err := execute(t, "auth", "status")

	require.NoError(t, err)
	assert.Contains(t, out, "Session expired")
}

func TestAuthLoginCmd_ServiceNotConfigured(t *testing.T) {
	Configure(nil)

	_, err := execute(t, "auth", "login", "--token", "x")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "auth service not configured")
}
