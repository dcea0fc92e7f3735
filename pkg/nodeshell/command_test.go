package nodeshell

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuote(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "''"},
		{"qm", "qm"},
		{"/var/lock/qemu-server/lock-101.conf", "/var/lock/qemu-server/lock-101.conf"},
		{"name: pve1", "'name: pve1'"},
		{"a'b", `'a'\''b'`},
		{"$(reboot)", "'$(reboot)'"},
		{"x; rm -rf /", "'x; rm -rf /'"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Quote(tt.in))
		})
	}
}

func TestCommandString(t *testing.T) {
	cmd := NewCommand("qm", "importdisk", "9001", "/var/tmp/jammy server.img", "local-lvm", "--format", "qcow2")
	assert.Equal(t, "qm importdisk 9001 '/var/tmp/jammy server.img' local-lvm --format qcow2", cmd.String())

	grep := NewCommand("grep", "-A3", "name: pve1", "/etc/pve/corosync.conf")
	assert.Equal(t, "grep -A3 'name: pve1' /etc/pve/corosync.conf", grep.String())
}

func TestCommandWithStdin(t *testing.T) {
	base := NewCommand("tee", "/tmp/x")
	withIn := base.WithStdin(strings.NewReader("data"))
	assert.Nil(t, base.Stdin)
	assert.NotNil(t, withIn.Stdin)
}

func TestResultSuccess(t *testing.T) {
	var nilRes *Result
	assert.False(t, nilRes.Success())
	assert.True(t, (&Result{}).Success())
	assert.False(t, (&Result{ExitCode: 2}).Success())
}

func TestNewExecutor_Defaults(t *testing.T) {
	e, err := NewExecutor(&Config{})
	require.NoError(t, err)
	assert.Equal(t, "root", e.config.User)
	assert.Equal(t, 22, e.config.Port)
	assert.Equal(t, "10.0.0.5:22", e.address("10.0.0.5"))
	assert.Equal(t, "10.0.0.5:2222", e.address("10.0.0.5:2222"))
}

func TestNewExecutor_BadKey(t *testing.T) {
	_, err := NewExecutor(&Config{PrivateKey: []byte("not a key")})
	assert.Error(t, err)
}

func TestRunPrivileged_NoCredentials(t *testing.T) {
	e, err := NewExecutorFromConfig(viper.New())
	require.NoError(t, err)
	_, err = e.RunPrivileged(context.Background(), "10.0.0.5", NewCommand("true"), time.Second)
	assert.ErrorIs(t, err, ErrNoCredentials)
}
