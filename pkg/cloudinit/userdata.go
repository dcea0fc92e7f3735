// Package cloudinit 生成首启用户数据片段（cloud-config）
package cloudinit

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

type User struct {
	Name              string   `yaml:"name"`
	Gecos             string   `yaml:"gecos,omitempty"`
	Sudo              string   `yaml:"sudo,omitempty"`
	Groups            string   `yaml:"groups,omitempty"`
	Shell             string   `yaml:"shell,omitempty"`
	LockPasswd        bool     `yaml:"lock_passwd"`
	SSHAuthorizedKeys []string `yaml:"ssh_authorized_keys,omitempty"`
}

type Chpasswd struct {
	List   string `yaml:"list"`
	Expire bool   `yaml:"expire"`
}

type UserData struct {
	Hostname       string    `yaml:"hostname,omitempty"`
	Users          []User    `yaml:"users"`
	Chpasswd       *Chpasswd `yaml:"chpasswd,omitempty"`
	DisableRoot    bool      `yaml:"disable_root"`
	SSHPwAuth      bool      `yaml:"ssh_pwauth"`
	PackageUpdate  bool      `yaml:"package_update"`
	PackageUpgrade bool      `yaml:"package_upgrade"`
	Packages       []string  `yaml:"packages,omitempty"`
	RunCmd         []string  `yaml:"runcmd,omitempty"`
}

// Options 构建用户数据所需的输入
type Options struct {
	Hostname string
	Username string
	Password string
	SSHKeys  string
}

var guestPackages = []string{"qemu-guest-agent", "openssh-server"}

var guestCommands = []string{
	"systemctl enable qemu-guest-agent",
	"systemctl start qemu-guest-agent",
	"systemctl enable ssh",
	"systemctl start ssh",
	`sed -i 's/^#*PasswordAuthentication.*/PasswordAuthentication yes/' /etc/ssh/sshd_config`,
	`sed -i 's/^#*PubkeyAuthentication.*/PubkeyAuthentication yes/' /etc/ssh/sshd_config`,
	`sed -i 's/^#*PermitRootLogin.*/PermitRootLogin yes/' /etc/ssh/sshd_config`,
	"systemctl restart ssh || systemctl restart sshd",
}

// BuildUserData 创建登录用户、安装 guest agent 与 SSH，并强制开启密码登录
func BuildUserData(opts Options) (string, error) {
	if opts.Username == "" {
		return "", fmt.Errorf("username cannot be empty")
	}

	user := User{
		Name:       opts.Username,
		Gecos:      opts.Username,
		Sudo:       "ALL=(ALL) NOPASSWD:ALL",
		Groups:     "users, admin, sudo",
		Shell:      "/bin/bash",
		LockPasswd: false,
	}
	user.SSHAuthorizedKeys = splitKeys(opts.SSHKeys)

	ud := UserData{
		Hostname:       opts.Hostname,
		Users:          []User{user},
		DisableRoot:    false,
		SSHPwAuth:      true,
		PackageUpdate:  true,
		PackageUpgrade: true,
		Packages:       guestPackages,
		RunCmd:         guestCommands,
	}
	if opts.Password != "" {
		ud.Chpasswd = &Chpasswd{
			List:   fmt.Sprintf("%s:%s\n", opts.Username, opts.Password),
			Expire: false,
		}
	}

	out, err := yaml.Marshal(&ud)
	if err != nil {
		return "", fmt.Errorf("failed to marshal user-data to YAML: %w", err)
	}
	return "#cloud-config\n" + string(out), nil
}

func splitKeys(raw string) []string {
	var keys []string
	for _, line := range strings.Split(raw, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			keys = append(keys, line)
		}
	}
	return keys
}
