package base

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommand_Name(t *testing.T) {
	tests := []struct {
		name      string
		usageLine string
		wantLong  string
		wantShort string
	}{
		{"root", "coredumpmcp", "", ""},
		{"command", "coredumpmcp list [flags]", "list", "list"},
		{"subcommand", "coredumpmcp config set [flags] <on|off>", "config set", "set"},
		{"no flags", "coredumpmcp trace <id>", "trace <id>", "<id>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Command{UsageLine: tt.usageLine}
			assert.Equal(t, tt.wantLong, c.LongName())
			assert.Equal(t, tt.wantShort, c.Name())
		})
	}
}

func TestSetExitStatus(t *testing.T) {
	t.Cleanup(func() { exitStatus = 0 })
	SetExitStatus(SInvalidParameters)
	assert.Equal(t, int(SInvalidParameters), GetExitStatus())
	SetExitStatus(SGenericError) // lower codes don't override
	assert.Equal(t, int(SInvalidParameters), GetExitStatus())
	SetExitStatus(SUserError)
	assert.Equal(t, int(SUserError), GetExitStatus())
}

func TestCommand_Runnable(t *testing.T) {
	assert.False(t, CoredumpMCP.Runnable())
	assert.True(t, (&Command{Run: func(ctx context.Context, cmd *Command, args []string) error { return nil }}).Runnable())
}
