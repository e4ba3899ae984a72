package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandTree(t *testing.T) {
	for _, def := range []Definition{UserService, TicketService} {
		root := NewRootCommand(def)
		assert.Equal(t, def.Use, root.Use)

		serve, _, err := root.Find([]string{"serve"})
		require.NoError(t, err)
		assert.Equal(t, "serve", serve.Name())

		for _, sub := range []string{"up", "down"} {
			cmd, _, err := root.Find([]string{"migrate", sub})
			require.NoError(t, err)
			assert.Equal(t, sub, cmd.Name())
		}
	}
}

func TestMigrateRequiresDSN(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "")
	root := NewRootCommand(UserService)
	root.SetArgs([]string{"migrate", "up"})
	root.SilenceErrors = true
	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "POSTGRES_DSN")
}
