package model

import (
	"time"
)

type DeploymentStatus string

const (
	DeploymentStatusCreating DeploymentStatus = "creating"
	DeploymentStatusRunning  DeploymentStatus = "running"
	DeploymentStatusStopped  DeploymentStatus = "stopped"
	DeploymentStatusError    DeploymentStatus = "error"
	DeploymentStatusDeleting DeploymentStatus = "deleting"
)

// IsTerminal 部署任务已结束（成功或失败）
func (s DeploymentStatus) IsTerminal() bool {
	switch s {
	case DeploymentStatusRunning, DeploymentStatusStopped, DeploymentStatusError:
		return true
	}
	return false
}

// CanTransition 状态只能前进；任何状态都可进入 error，error 只能被重新触发为 creating
func CanTransition(from, to DeploymentStatus) bool {
	if to == DeploymentStatusError {
		return true
	}
	switch from {
	case "":
		return to == DeploymentStatusCreating
	case DeploymentStatusCreating:
		return to == DeploymentStatusRunning || to == DeploymentStatusStopped
	case DeploymentStatusRunning, DeploymentStatusStopped:
		return to == DeploymentStatusDeleting
	case DeploymentStatusError:
		return to == DeploymentStatusCreating || to == DeploymentStatusDeleting
	}
	return false
}

type Deployment struct {
	Id       int64  `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	RunID    string `json:"run_id" gorm:"column:run_id;index"` // 每次触发重新生成
	VmName   string `json:"vm_name" gorm:"column:vm_name"`
	Hostname string `json:"hostname" gorm:"column:hostname"`
	VMID     uint32 `json:"vmid" gorm:"column:vmid"` // 0 表示未分配

	ClusterID int64  `json:"cluster_id" gorm:"column:cluster_id;index"`
	NodeID    int64  `json:"node_id" gorm:"column:node_id"`
	NodeName  string `json:"node_name" gorm:"column:node_name"`

	CloudImageID *int64 `json:"cloud_image_id" gorm:"column:cloud_image_id"`
	IsoImageID   *int64 `json:"iso_image_id" gorm:"column:iso_image_id"`
	OSType       string `json:"os_type" gorm:"column:os_type"`

	CPUSockets   int     `json:"cpu_sockets" gorm:"column:cpu_sockets"`
	CPUCores     int     `json:"cpu_cores" gorm:"column:cpu_cores"`
	CPUType      string  `json:"cpu_type" gorm:"column:cpu_type"`
	CPUFlags     string  `json:"cpu_flags" gorm:"column:cpu_flags"`
	CPULimit     float64 `json:"cpu_limit" gorm:"column:cpu_limit"`
	CPUUnits     int     `json:"cpu_units" gorm:"column:cpu_units"`
	Numa         int8    `json:"numa" gorm:"column:numa"`
	Memory       int     `json:"memory" gorm:"column:memory"` // MB
	Balloon      *int    `json:"balloon" gorm:"column:balloon"`
	Shares       int     `json:"shares" gorm:"column:shares"`
	DiskSize     int     `json:"disk_size" gorm:"column:disk_size"` // GB
	Storage      string  `json:"storage" gorm:"column:storage"`
	IsoStorage   string  `json:"iso_storage" gorm:"column:iso_storage"`
	Scsihw       string  `json:"scsihw" gorm:"column:scsihw"`
	Bios         string  `json:"bios" gorm:"column:bios"`
	Machine      string  `json:"machine" gorm:"column:machine"`
	Vga          string  `json:"vga" gorm:"column:vga"`
	BootOrder    string  `json:"boot_order" gorm:"column:boot_order"`
	Onboot       *int8   `json:"onboot" gorm:"column:onboot"`
	Tablet       int8    `json:"tablet" gorm:"column:tablet"`
	Hotplug      string  `json:"hotplug" gorm:"column:hotplug"`
	Protection   int8    `json:"protection" gorm:"column:protection"`
	StartupOrder int     `json:"startup_order" gorm:"column:startup_order"`
	StartupUp    int     `json:"startup_up" gorm:"column:startup_up"`
	StartupDown  int     `json:"startup_down" gorm:"column:startup_down"`
	Kvm          int8    `json:"kvm" gorm:"column:kvm"`
	Acpi         int8    `json:"acpi" gorm:"column:acpi"`
	Agent        int8    `json:"agent" gorm:"column:agent"`
	Description  string  `json:"description" gorm:"column:description;type:text"`
	Tags         string  `json:"tags" gorm:"column:tags"`

	NetworkBridge     string `json:"network_bridge" gorm:"column:network_bridge"`
	NetworkInterfaces string `json:"network_interfaces" gorm:"column:network_interfaces;type:text"` // JSON 数组
	IPAddress         string `json:"ip_address" gorm:"column:ip_address"`
	Gateway           string `json:"gateway" gorm:"column:gateway"`
	Netmask           string `json:"netmask" gorm:"column:netmask"`
	DNSServers        string `json:"dns_servers" gorm:"column:dns_servers"`

	Username string `json:"username" gorm:"column:username"`
	Password string `json:"-" gorm:"column:password"`
	SSHKey   string `json:"ssh_key" gorm:"column:ssh_key;type:text"`

	Status        DeploymentStatus `json:"status" gorm:"column:status;index"`
	StatusMessage string           `json:"status_message" gorm:"column:status_message"`
	ErrorMessage  string           `json:"error_message" gorm:"column:error_message;type:text"`

	CreateTime time.Time  `json:"create_time" gorm:"column:gmt_create"`
	UpdateTime time.Time  `json:"update_time" gorm:"column:gmt_modified"`
	DeployedAt *time.Time `json:"deployed_at" gorm:"column:deployed_at"`
	Creator    string     `json:"creator" gorm:"column:creator"`
}

func (Deployment) TableName() string {
	return "deployment"
}

// DeploymentEvent 进度流水，写入 MongoDB
type DeploymentEvent struct {
	DeploymentID int64            `json:"deployment_id" bson:"deployment_id"`
	RunID        string           `json:"run_id" bson:"run_id"`
	Status       DeploymentStatus `json:"status" bson:"status"`
	Message      string           `json:"message" bson:"message"`
	Error        string           `json:"error,omitempty" bson:"error,omitempty"`
	VMID         uint32           `json:"vmid,omitempty" bson:"vmid,omitempty"`
	At           time.Time        `json:"at" bson:"at"`
}
