package cli

import (
	"bytes"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "qteleport", cmd.Use)
	assert.Contains(t, cmd.Long, "teleportation")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"build", "run", "check", "history", "view"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	configFlag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, configFlag)
	assert.Equal(t, "c", configFlag.Shorthand)
}

func TestBuildFlagsShared(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"build", "run", "view"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err)
		for _, flag := range []string{"layout", "qubits", "direction", "bell", "barriers", "hbase"} {
			assert.NotNil(t, sub.Flags().Lookup(flag), "%s --%s", name, flag)
		}
	}

	build, _, err := cmd.Find([]string{"build"})
	require.NoError(t, err)
	layout := build.Flags().Lookup("layout")
	require.NotNil(t, layout)
	assert.Equal(t, "[0,1,2,3,4]", layout.DefValue)
}

func TestInvalidFormat(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--format", "xml", "check"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad flag")))

	wrapped := errors.Wrap(WrapExitError(ExitCommandError, "outer", errors.New("inner")), "context")
	assert.Equal(t, ExitCommandError, GetExitCode(wrapped))
	assert.Equal(t, "context: outer: inner", wrapped.Error())
}

func TestTopOutcome(t *testing.T) {
	assert.Equal(t, "-", topOutcome(nil))
	assert.Equal(t, "01 (5)", topOutcome([]Outcome{
		{Bits: "00", Count: 3},
		{Bits: "01", Count: 5},
		{Bits: "10", Count: 5},
	}))
}
