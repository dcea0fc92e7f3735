package service

import (
	"encoding/json"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	v1 "pvedeploy/api/v1"
	"pvedeploy/internal/model"
)

// 旧式三字母启动顺序到设备列表
var legacyBootOrder = map[string]string{
	"cdn": "scsi0;ide2;net0",
	"dnc": "scsi0;net0;ide2",
	"ncd": "net0;scsi0;ide2",
	"ndc": "net0;scsi0;ide2",
	"c":   "scsi0",
	"d":   "scsi0",
	"n":   "net0",
}

const defaultBootOrder = "order=scsi0;net0"

// NormalizeBootOrder 转换为 Proxmox 8 的 order=dev1;dev2 格式
func NormalizeBootOrder(v string) string {
	v = strings.TrimSpace(v)
	switch {
	case v == "":
		return defaultBootOrder
	case strings.Contains(v, "="):
		return v
	case strings.Contains(v, ";"):
		return "order=" + v
	}
	if devices, ok := legacyBootOrder[strings.ToLower(v)]; ok {
		return "order=" + devices
	}
	return "order=scsi0;ide2;net0"
}

// ConfigDelta 克隆后需要写入的配置，nil 字段不写
type ConfigDelta struct {
	Cores   *int
	Sockets *int
	Memory  *int

	CPU      *string
	CPULimit *float64
	CPUUnits *int
	Numa     *int
	Balloon  *int
	Shares   *int

	Bios    *string
	Machine *string
	Vga     *string
	Scsihw  *string

	Tablet     *int
	Hotplug    *string
	Protection *int
	Kvm        *int
	Acpi       *int
	Agent      *int
	Startup    *string

	Description *string
	Tags        *string
	Onboot      *int
	Boot        *string

	// net1..netN
	Nets map[int]string
}

// DiffAgainstTemplate 只生成偏离模板默认值的字段；cores/sockets/memory/boot 总是写入
func DiffAgainstTemplate(dep *model.Deployment) ConfigDelta {
	d := ConfigDelta{
		Cores:   intPtr(dep.CPUCores),
		Sockets: intPtr(dep.CPUSockets),
		Memory:  intPtr(dep.Memory),
		Boot:    strPtr(NormalizeBootOrder(dep.BootOrder)),
	}

	if dep.CPUType != "" && dep.CPUType != "host" {
		d.CPU = strPtr(dep.CPUType)
	}
	if dep.CPUFlags != "" {
		cpu := "host"
		if d.CPU != nil {
			cpu = *d.CPU
		}
		d.CPU = strPtr(cpu + "," + dep.CPUFlags)
	}
	if dep.CPULimit > 0 {
		v := dep.CPULimit
		d.CPULimit = &v
	}
	if dep.CPUUnits > 0 {
		d.CPUUnits = intPtr(dep.CPUUnits)
	}
	if dep.Numa == 1 {
		d.Numa = intPtr(1)
	}
	if dep.Balloon != nil {
		d.Balloon = intPtr(*dep.Balloon)
	}
	if dep.Shares > 0 {
		d.Shares = intPtr(dep.Shares)
	}

	if dep.Bios == "ovmf" {
		d.Bios = strPtr("ovmf")
	}
	if dep.Machine != "" && dep.Machine != "pc" {
		d.Machine = strPtr(dep.Machine)
	}
	// 模板默认可能是 spice/qxl，设置了就写
	if dep.Vga != "" {
		d.Vga = strPtr(dep.Vga)
	}
	if dep.Scsihw != "" && dep.Scsihw != "virtio-scsi-pci" {
		d.Scsihw = strPtr(dep.Scsihw)
	}

	if dep.Tablet == 0 {
		d.Tablet = intPtr(0)
	}
	if dep.Hotplug != "" {
		d.Hotplug = strPtr(dep.Hotplug)
	}
	if dep.Protection == 1 {
		d.Protection = intPtr(1)
	}
	if dep.Kvm == 0 {
		d.Kvm = intPtr(0)
	}
	if dep.Acpi == 0 {
		d.Acpi = intPtr(0)
	}
	if dep.Agent == 0 {
		d.Agent = intPtr(0)
	}
	if s := startupValue(dep); s != "" {
		d.Startup = strPtr(s)
	}

	if dep.Description != "" {
		d.Description = strPtr(dep.Description)
	}
	if dep.Tags != "" {
		d.Tags = strPtr(dep.Tags)
	}
	if dep.Onboot != nil {
		d.Onboot = intPtr(int(*dep.Onboot))
	}

	if nics := parseNetworkInterfaces(dep.NetworkInterfaces); len(nics) > 0 {
		d.Nets = make(map[int]string, len(nics))
		for i, nic := range nics {
			d.Nets[i+1] = nicValue(nic)
		}
	}
	return d
}

func startupValue(dep *model.Deployment) string {
	var parts []string
	if dep.StartupOrder != 0 {
		parts = append(parts, "order="+strconv.Itoa(dep.StartupOrder))
	}
	if dep.StartupUp != 0 {
		parts = append(parts, "up="+strconv.Itoa(dep.StartupUp))
	}
	if dep.StartupDown != 0 {
		parts = append(parts, "down="+strconv.Itoa(dep.StartupDown))
	}
	return strings.Join(parts, ",")
}

func parseNetworkInterfaces(raw string) []v1.NetworkInterface {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var nics []v1.NetworkInterface
	if err := json.Unmarshal([]byte(raw), &nics); err != nil {
		return nil
	}
	return nics
}

func nicValue(nic v1.NetworkInterface) string {
	nicModel := nic.Model
	if nicModel == "" {
		nicModel = "virtio"
	}
	bridge := nic.Bridge
	if bridge == "" {
		bridge = "vmbr0"
	}
	return nicModel + ",bridge=" + bridge
}

// Values 序列化为 PUT /config 的表单
func (d ConfigDelta) Values() url.Values {
	v := url.Values{}
	setInt(v, "cores", d.Cores)
	setInt(v, "sockets", d.Sockets)
	setInt(v, "memory", d.Memory)
	setStr(v, "cpu", d.CPU)
	if d.CPULimit != nil {
		v.Set("cpulimit", strconv.FormatFloat(*d.CPULimit, 'f', -1, 64))
	}
	setInt(v, "cpuunits", d.CPUUnits)
	setInt(v, "numa", d.Numa)
	setInt(v, "balloon", d.Balloon)
	setInt(v, "shares", d.Shares)
	setStr(v, "bios", d.Bios)
	setStr(v, "machine", d.Machine)
	setStr(v, "vga", d.Vga)
	setStr(v, "scsihw", d.Scsihw)
	setInt(v, "tablet", d.Tablet)
	setStr(v, "hotplug", d.Hotplug)
	setInt(v, "protection", d.Protection)
	setInt(v, "kvm", d.Kvm)
	setInt(v, "acpi", d.Acpi)
	setInt(v, "agent", d.Agent)
	setStr(v, "startup", d.Startup)
	setStr(v, "description", d.Description)
	setStr(v, "tags", d.Tags)
	setInt(v, "onboot", d.Onboot)
	setStr(v, "boot", d.Boot)
	for idx, nic := range d.Nets {
		v.Set(fmt.Sprintf("net%d", idx), nic)
	}
	return v
}

// FirstBootValues 声明式 cloud-init 参数
func FirstBootValues(dep *model.Deployment) url.Values {
	v := url.Values{}
	if dep.Username != "" {
		v.Set("ciuser", dep.Username)
	}
	if dep.Password != "" {
		v.Set("cipassword", dep.Password)
	}
	if dep.SSHKey != "" {
		v.Set("sshkeys", EncodeSSHKeys(dep.SSHKey))
	}
	v.Set("ipconfig0", IPConfig(dep.IPAddress, dep.Netmask, dep.Gateway))
	if dep.DNSServers != "" {
		v.Set("nameserver", strings.Join(strings.FieldsFunc(dep.DNSServers, func(r rune) bool {
			return r == ',' || r == ' '
		}), " "))
		v.Set("searchdomain", "local")
	}
	return v
}

// EncodeSSHKeys Proxmox 要求 sshkeys 先做一次 URL 编码（空格为 %20）
func EncodeSSHKeys(keys string) string {
	return strings.ReplaceAll(url.QueryEscape(strings.TrimSpace(keys)), "+", "%20")
}

// IPConfig 无静态地址时使用 dhcp；掩码可以是前缀长度或点分格式
func IPConfig(ip, mask, gw string) string {
	if ip == "" {
		return "ip=dhcp"
	}
	cfg := "ip=" + ip + "/" + maskPrefix(mask)
	if gw != "" {
		cfg += ",gw=" + gw
	}
	return cfg
}

func maskPrefix(mask string) string {
	mask = strings.TrimPrefix(strings.TrimSpace(mask), "/")
	if mask == "" {
		return "24"
	}
	if ip := net.ParseIP(mask).To4(); ip != nil {
		ones, bits := net.IPv4Mask(ip[0], ip[1], ip[2], ip[3]).Size()
		if bits == 0 {
			return "24"
		}
		return strconv.Itoa(ones)
	}
	return mask
}

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func setInt(v url.Values, key string, p *int) {
	if p != nil {
		v.Set(key, strconv.Itoa(*p))
	}
}

func setStr(v url.Values, key string, p *string) {
	if p != nil {
		v.Set(key, *p)
	}
}
