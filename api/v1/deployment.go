package v1

import "time"

// NetworkInterface 附加网卡（net1..netN）
type NetworkInterface struct {
	Bridge string `json:"bridge,omitempty" example:"vmbr1"`
	Model  string `json:"model,omitempty" example:"virtio"`
}

// CreateDeploymentRequest 创建部署记录并触发部署
type CreateDeploymentRequest struct {
	VmName   string `json:"vm_name" binding:"required" example:"web-01"`
	Hostname string `json:"hostname,omitempty" example:"web-01"`
	NodeID   int64  `json:"node_id" binding:"required" example:"1"`

	// 二选一：云镜像（模板克隆）或 ISO（手动安装）
	CloudImageID *int64 `json:"cloud_image_id,omitempty" example:"1"`
	IsoImageID   *int64 `json:"iso_image_id,omitempty"`

	OSType     string   `json:"os_type,omitempty" example:"linux"`
	CPUSockets int      `json:"cpu_sockets,omitempty" example:"1"`
	CPUCores   int      `json:"cpu_cores,omitempty" example:"2"`
	CPUType    string   `json:"cpu_type,omitempty" example:"host"`
	CPUFlags   string   `json:"cpu_flags,omitempty" example:"+aes"`
	CPULimit   float64  `json:"cpu_limit,omitempty"`
	CPUUnits   int      `json:"cpu_units,omitempty"`
	Numa       bool     `json:"numa,omitempty"`
	Memory     int      `json:"memory,omitempty" example:"2048"` // MB
	Balloon    *int     `json:"balloon,omitempty"`
	Shares     int      `json:"shares,omitempty"`
	DiskSize   int      `json:"disk_size,omitempty" example:"20"` // GB
	Storage    string   `json:"storage,omitempty" example:"local-lvm"`
	IsoStorage string   `json:"iso_storage,omitempty" example:"local"`
	Scsihw     string   `json:"scsihw,omitempty" example:"virtio-scsi-pci"`
	Bios       string   `json:"bios,omitempty" example:"seabios"`
	Machine    string   `json:"machine,omitempty" example:"pc"`
	Vga        string   `json:"vga,omitempty" example:"std"`
	BootOrder  string   `json:"boot_order,omitempty" example:"cdn"`
	Onboot     *bool    `json:"onboot,omitempty"`
	Tablet     *bool    `json:"tablet,omitempty"`
	Hotplug    string   `json:"hotplug,omitempty" example:"disk,network,usb"`
	Protection bool     `json:"protection,omitempty"`
	Kvm        *bool    `json:"kvm,omitempty"`
	Acpi       *bool    `json:"acpi,omitempty"`
	Agent      *bool    `json:"agent,omitempty"`
	Startup    *Startup `json:"startup,omitempty"`

	Description string `json:"description,omitempty"`
	Tags        string `json:"tags,omitempty" example:"web;prod"`

	NetworkBridge     string             `json:"network_bridge,omitempty" example:"vmbr0"`
	NetworkInterfaces []NetworkInterface `json:"network_interfaces,omitempty"`
	IPAddress         string             `json:"ip_address,omitempty" example:"192.168.1.50"`
	Gateway           string             `json:"gateway,omitempty" example:"192.168.1.1"`
	Netmask           string             `json:"netmask,omitempty" example:"24"`
	DNSServers        string             `json:"dns_servers,omitempty" example:"1.1.1.1,8.8.8.8"`

	Username string `json:"username" binding:"required" example:"ops"`
	Password string `json:"password,omitempty"`
	SSHKey   string `json:"ssh_key,omitempty"`

	// Creator 由鉴权信息填充
	Creator string `json:"-"`
}

type Startup struct {
	Order int `json:"order,omitempty"`
	Up    int `json:"up,omitempty"`
	Down  int `json:"down,omitempty"`
}

type CreateDeploymentResponseData struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
}

// ProgressResponseData 部署进度
type ProgressResponseData struct {
	ID          int64     `json:"id"`
	RunID       string    `json:"run_id"`
	Status      string    `json:"status"`
	Message     string    `json:"message"`
	ErrorDetail string    `json:"error_detail,omitempty"`
	VMID        uint32    `json:"vmid,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}
