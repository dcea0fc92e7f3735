package cloudinit

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestBuildUserData(t *testing.T) {
	out, err := BuildUserData(Options{
		Hostname: "web-01",
		Username: "ops",
		Password: "s3cret",
		SSHKeys:  "ssh-ed25519 AAAA one\n\nssh-rsa BBBB two\n",
	})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "#cloud-config\n"))

	var parsed UserData
	require.NoError(t, yaml.Unmarshal([]byte(strings.TrimPrefix(out, "#cloud-config\n")), &parsed))

	require.Len(t, parsed.Users, 1)
	assert.Equal(t, "ops", parsed.Users[0].Name)
	assert.Equal(t, "ALL=(ALL) NOPASSWD:ALL", parsed.Users[0].Sudo)
	assert.False(t, parsed.Users[0].LockPasswd)
	assert.Equal(t, []string{"ssh-ed25519 AAAA one", "ssh-rsa BBBB two"}, parsed.Users[0].SSHAuthorizedKeys)
	require.NotNil(t, parsed.Chpasswd)
	assert.Equal(t, "ops:s3cret\n", parsed.Chpasswd.List)
	assert.True(t, parsed.SSHPwAuth)
	assert.Equal(t, []string{"qemu-guest-agent", "openssh-server"}, parsed.Packages)
	assert.Contains(t, parsed.RunCmd, "systemctl enable qemu-guest-agent")
	assert.Contains(t, out, "PasswordAuthentication yes")
}

func TestBuildUserData_NoPassword(t *testing.T) {
	out, err := BuildUserData(Options{Username: "ops"})
	require.NoError(t, err)
	assert.NotContains(t, out, "chpasswd")
}

func TestBuildUserData_RequiresUser(t *testing.T) {
	_, err := BuildUserData(Options{})
	assert.Error(t, err)
}
