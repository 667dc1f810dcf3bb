package handler

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thenoetrevino/propboard/internal/cli"
	"github.com/thenoetrevino/propboard/internal/config"
	"github.com/thenoetrevino/propboard/internal/types"
)

// ============================================================================
// Test Helpers
// ============================================================================

func createTestCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{
		Use: "test",
		Run: func(cmd *cobra.Command, args []string) {},
	}
	cmd.Flags().String("id", "", "")
	cmd.Flags().String("board", "", "")
	cmd.Flags().String("role", "", "")
	cmd.Flags().String("actor", "", "")
	cmd.Flags().String("name", "", "")
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

// ============================================================================
// IDS
// ============================================================================

func TestProposalID(t *testing.T) {
	tests := []struct {
		name    string
		flags   []string
		args    []string
		want    types.ProposalID
		wantErr bool
	}{
		{name: "positional", args: []string{"p-1"}, want: "p-1"},
		{name: "flag", flags: []string{"--id", " p-2 "}, want: "p-2"},
		{name: "positional wins", flags: []string{"--id", "p-2"}, args: []string{"p-1"}, want: "p-1"},
		{name: "missing", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewFlagParser(createTestCommand(t, tt.flags...), nil)
			got, err := p.ProposalID(tt.args)
			if tt.wantErr {
				var usage *cli.UsageError
				assert.ErrorAs(t, err, &usage)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBoardID(t *testing.T) {
	t.Run("flag", func(t *testing.T) {
		t.Setenv("PROPBOARD_BOARD", "from-env")
		p := NewFlagParser(createTestCommand(t, "--board", "board-1"), nil)
		got, err := p.BoardID()
		require.NoError(t, err)
		assert.Equal(t, types.BoardID("board-1"), got)
	})

	t.Run("environment", func(t *testing.T) {
		t.Setenv("PROPBOARD_BOARD", "from-env")
		p := NewFlagParser(createTestCommand(t), nil)
		got, err := p.BoardID()
		require.NoError(t, err)
		assert.Equal(t, types.BoardID("from-env"), got)
	})

	t.Run("missing", func(t *testing.T) {
		t.Setenv("PROPBOARD_BOARD", "")
		p := NewFlagParser(createTestCommand(t), nil)
		_, err := p.BoardID()
		assert.Equal(t, cli.ExitUsage, cli.ExitCode(err))
	})
}

// ============================================================================
// FALLBACKS
// ============================================================================

func TestRole(t *testing.T) {
	c := &cli.CLI{Config: config.Default()}
	c.Config.Workflow.Role = "capture_manager"

	assert.Equal(t, types.Role("admin"), NewFlagParser(createTestCommand(t, "--role", "admin"), c).Role())
	assert.Equal(t, types.Role("capture_manager"), NewFlagParser(createTestCommand(t), c).Role())
	assert.Empty(t, NewFlagParser(createTestCommand(t), nil).Role())
}

func TestActor(t *testing.T) {
	t.Setenv("PROPBOARD_ACTOR", "dana")
	assert.Equal(t, "lee", NewFlagParser(createTestCommand(t, "--actor", "lee"), nil).Actor())
	assert.Equal(t, "dana", NewFlagParser(createTestCommand(t), nil).Actor())
}

func TestString(t *testing.T) {
	p := NewFlagParser(createTestCommand(t, "--name", "  Cloud  "), nil)
	got, err := p.String("name")
	require.NoError(t, err)
	assert.Equal(t, "Cloud", got)
	assert.True(t, p.Changed("name"))
	assert.False(t, p.Changed("board"))

	_, err = NewFlagParser(createTestCommand(t, "--name", "   "), nil).String("name")
	assert.Equal(t, cli.ExitUsage, cli.ExitCode(err))

	_, err = p.String("nope")
	assert.Error(t, err)
}
