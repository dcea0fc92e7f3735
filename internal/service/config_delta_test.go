package service

import (
	"net/url"
	"testing"

	"pvedeploy/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeBootOrder(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", "order=scsi0;net0"},
		{"cdn", "order=scsi0;ide2;net0"},
		{"CDN", "order=scsi0;ide2;net0"},
		{"dnc", "order=scsi0;net0;ide2"},
		{"ncd", "order=net0;scsi0;ide2"},
		{"ndc", "order=net0;scsi0;ide2"},
		{"c", "order=scsi0"},
		{"d", "order=scsi0"},
		{"n", "order=net0"},
		{"xyz", "order=scsi0;ide2;net0"},
		{"scsi0;net0", "order=scsi0;net0"},
		{"order=net0;scsi0", "order=net0;scsi0"},
		{"  cdn  ", "order=scsi0;ide2;net0"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeBootOrder(tt.in))
		})
	}
}

func baseDeployment() *model.Deployment {
	return &model.Deployment{
		Id:         1,
		VmName:     "web-01",
		NodeName:   "pve1",
		VMID:       120,
		CPUSockets: 1,
		CPUCores:   2,
		CPUType:    "host",
		Memory:     2048,
		DiskSize:   20,
		Storage:    "local-lvm",
		Scsihw:     "virtio-scsi-pci",
		Bios:       "seabios",
		Machine:    "pc",
		Tablet:     1,
		Kvm:        1,
		Acpi:       1,
		Agent:      1,
		Username:   "ops",
	}
}

func TestDiffAgainstTemplate_Defaults(t *testing.T) {
	v := DiffAgainstTemplate(baseDeployment()).Values()

	assert.Equal(t, url.Values{
		"cores":   {"2"},
		"sockets": {"1"},
		"memory":  {"2048"},
		"boot":    {"order=scsi0;net0"},
	}, v)
}

func TestDiffAgainstTemplate_Overrides(t *testing.T) {
	dep := baseDeployment()
	dep.CPUType = "kvm64"
	dep.CPUFlags = "+aes"
	dep.CPULimit = 1.5
	dep.CPUUnits = 2048
	dep.Numa = 1
	balloon := 0
	dep.Balloon = &balloon
	dep.Bios = "ovmf"
	dep.Machine = "q35"
	dep.Vga = "std"
	dep.Scsihw = "lsi"
	dep.Tablet = 0
	dep.Kvm = 0
	dep.Agent = 0
	dep.Protection = 1
	dep.Hotplug = "disk,network"
	dep.StartupOrder = 2
	dep.StartupUp = 30
	dep.Tags = "web;prod"
	onboot := int8(1)
	dep.Onboot = &onboot
	dep.BootOrder = "cdn"
	dep.NetworkInterfaces = `[{"bridge":"vmbr1"},{"bridge":"vmbr2","model":"e1000"}]`

	v := DiffAgainstTemplate(dep).Values()

	assert.Equal(t, "kvm64,+aes", v.Get("cpu"))
	assert.Equal(t, "1.5", v.Get("cpulimit"))
	assert.Equal(t, "2048", v.Get("cpuunits"))
	assert.Equal(t, "1", v.Get("numa"))
	assert.Equal(t, "0", v.Get("balloon"))
	assert.Equal(t, "ovmf", v.Get("bios"))
	assert.Equal(t, "q35", v.Get("machine"))
	assert.Equal(t, "std", v.Get("vga"))
	assert.Equal(t, "lsi", v.Get("scsihw"))
	assert.Equal(t, "0", v.Get("tablet"))
	assert.Equal(t, "0", v.Get("kvm"))
	assert.Equal(t, "0", v.Get("agent"))
	assert.False(t, v.Has("acpi"))
	assert.Equal(t, "1", v.Get("protection"))
	assert.Equal(t, "disk,network", v.Get("hotplug"))
	assert.Equal(t, "order=2,up=30", v.Get("startup"))
	assert.Equal(t, "web;prod", v.Get("tags"))
	assert.Equal(t, "1", v.Get("onboot"))
	assert.Equal(t, "order=scsi0;ide2;net0", v.Get("boot"))
	assert.Equal(t, "virtio,bridge=vmbr1", v.Get("net1"))
	assert.Equal(t, "e1000,bridge=vmbr2", v.Get("net2"))
	assert.False(t, v.Has("net0"))
}

func TestDiffAgainstTemplate_FlagsWithoutType(t *testing.T) {
	dep := baseDeployment()
	dep.CPUFlags = "+pcid"

	d := DiffAgainstTemplate(dep)
	require.NotNil(t, d.CPU)
	assert.Equal(t, "host,+pcid", *d.CPU)
}

func TestDiffAgainstTemplate_BadInterfacesIgnored(t *testing.T) {
	dep := baseDeployment()
	dep.NetworkInterfaces = "not json"

	assert.Nil(t, DiffAgainstTemplate(dep).Nets)
}

func TestFirstBootValues(t *testing.T) {
	dep := baseDeployment()
	dep.Password = "s3cret"
	dep.SSHKey = "ssh-ed25519 AAAAC3Nza+/x ops@laptop\n"
	dep.IPAddress = "192.168.1.50"
	dep.Netmask = "255.255.255.0"
	dep.Gateway = "192.168.1.1"
	dep.DNSServers = "1.1.1.1, 8.8.8.8"

	v := FirstBootValues(dep)

	assert.Equal(t, "ops", v.Get("ciuser"))
	assert.Equal(t, "s3cret", v.Get("cipassword"))
	assert.Equal(t, "ssh-ed25519%20AAAAC3Nza%2B%2Fx%20ops%40laptop", v.Get("sshkeys"))
	assert.Equal(t, "ip=192.168.1.50/24,gw=192.168.1.1", v.Get("ipconfig0"))
	assert.Equal(t, "1.1.1.1 8.8.8.8", v.Get("nameserver"))
	assert.Equal(t, "local", v.Get("searchdomain"))
}

func TestFirstBootValues_DHCP(t *testing.T) {
	dep := baseDeployment()

	v := FirstBootValues(dep)

	assert.Equal(t, "ip=dhcp", v.Get("ipconfig0"))
	assert.False(t, v.Has("nameserver"))
	assert.False(t, v.Has("searchdomain"))
	assert.False(t, v.Has("cipassword"))
}

func TestIPConfig(t *testing.T) {
	assert.Equal(t, "ip=dhcp", IPConfig("", "24", "10.0.0.1"))
	assert.Equal(t, "ip=10.0.0.5/16", IPConfig("10.0.0.5", "16", ""))
	assert.Equal(t, "ip=10.0.0.5/16", IPConfig("10.0.0.5", "/16", ""))
	assert.Equal(t, "ip=10.0.0.5/24", IPConfig("10.0.0.5", "", ""))
	assert.Equal(t, "ip=10.0.0.5/20,gw=10.0.0.1", IPConfig("10.0.0.5", "255.255.240.0", "10.0.0.1"))
	assert.Equal(t, "ip=10.0.0.5/24", IPConfig("10.0.0.5", "255.0.255.0", ""))
}
