package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPasswordCommand(t *testing.T) {
	t.Setenv("DOCADMIN_AUTH_BCRYPT_COST", "4")

	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--env-file", "", "hash-password", "StrongPass1!"})
	require.NoError(t, cmd.Execute())

	hash := strings.TrimSpace(out.String())
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("StrongPass1!")))
}

func TestHashPasswordCommandReadsStdin(t *testing.T) {
	t.Setenv("DOCADMIN_AUTH_BCRYPT_COST", "4")

	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetIn(strings.NewReader("from-stdin\n"))
	cmd.SetArgs([]string{"--env-file", "", "hash-password"})
	require.NoError(t, cmd.Execute())

	hash := strings.TrimSpace(out.String())
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("from-stdin")))
}

func TestMigrateRequiresPostgres(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "sqlite")

	cmd := newRootCommand()
	cmd.SetArgs([]string{"--env-file", "", "migrate"})
	err := cmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_DRIVER")
}

func TestInvalidConfigFailsBeforeRunning(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "oracle")

	cmd := newRootCommand()
	cmd.SetArgs([]string{"--env-file", "", "hash-password", "x"})
	require.Error(t, cmd.Execute())
}
