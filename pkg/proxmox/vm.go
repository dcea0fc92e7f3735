package proxmox

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// CreateQemuVM 创建 QEMU 虚拟机（空机/ISO 安装等）
// POST /api2/json/nodes/{node}/qemu
// 返回：UPID（任务ID）
func (c *ProxmoxClient) CreateQemuVM(ctx context.Context, nodeName string, params url.Values) (string, error) {
	path := fmt.Sprintf("/nodes/%s/qemu", nodeName)
	var upid string
	if err := c.PostForm(ctx, path, params, &upid); err != nil {
		return "", err
	}
	return upid, nil
}

// CloneVMRequest 克隆虚拟机请求参数
type CloneVMRequest struct {
	NewID       uint32 `json:"newid"`                 // 新虚拟机的ID
	Name        string `json:"name,omitempty"`        // 新虚拟机的名称
	Target      string `json:"target,omitempty"`      // 目标节点
	Full        bool   `json:"full,omitempty"`        // 完整克隆
	Storage     string `json:"storage,omitempty"`     // 目标存储
	Format      string `json:"format,omitempty"`      // 存储格式
	Description string `json:"description,omitempty"` // 描述
}

// CloneVM 克隆虚拟机
// POST /api2/json/nodes/{node}/qemu/{vmid}/clone
// 参数需要通过 URL query string 传递
func (c *ProxmoxClient) CloneVM(ctx context.Context, nodeName string, sourceVMID uint32, req *CloneVMRequest) (string, error) {
	path := fmt.Sprintf("/nodes/%s/qemu/%d/clone", nodeName, sourceVMID)

	params := url.Values{}
	params.Set("newid", strconv.FormatUint(uint64(req.NewID), 10))
	if req.Name != "" {
		params.Set("name", req.Name)
	}
	if req.Target != "" {
		params.Set("target", req.Target)
	}
	if req.Full {
		params.Set("full", "1")
	} else {
		params.Set("full", "0")
	}
	if req.Storage != "" {
		params.Set("storage", req.Storage)
	}
	if req.Format != "" {
		params.Set("format", req.Format)
	}
	if req.Description != "" {
		params.Set("description", req.Description)
	}

	var upid string
	if err := c.PostQuery(ctx, path, params, &upid); err != nil {
		return "", err
	}
	return upid, nil
}

// GetVMConfig 获取虚拟机配置（也用于检查虚拟机是否存在）
func (c *ProxmoxClient) GetVMConfig(ctx context.Context, nodeName string, vmID uint32) (map[string]interface{}, error) {
	path := fmt.Sprintf("/nodes/%s/qemu/%d/config", nodeName, vmID)
	var config map[string]interface{}
	if err := c.Get(ctx, path, &config); err != nil {
		return nil, err
	}
	return config, nil
}

// UpdateVMConfig 同步更新虚拟机配置
// PUT /api2/json/nodes/{node}/qemu/{vmid}/config
func (c *ProxmoxClient) UpdateVMConfig(ctx context.Context, nodeName string, vmID uint32, params url.Values) error {
	path := fmt.Sprintf("/nodes/%s/qemu/%d/config", nodeName, vmID)
	return c.PutForm(ctx, path, params, nil)
}

// ResizeVMDisk 扩容磁盘，size 形如 "+20G"
// PUT /api2/json/nodes/{node}/qemu/{vmid}/resize
// 新版本返回 UPID，旧版本返回空
func (c *ProxmoxClient) ResizeVMDisk(ctx context.Context, nodeName string, vmID uint32, disk, size string) (string, error) {
	path := fmt.Sprintf("/nodes/%s/qemu/%d/resize", nodeName, vmID)
	params := url.Values{}
	params.Set("disk", disk)
	params.Set("size", size)

	var upid string
	if err := c.PutForm(ctx, path, params, &upid); err != nil {
		return "", err
	}
	return upid, nil
}

func (c *ProxmoxClient) vmStatus(ctx context.Context, nodeName string, vmID uint32, action string, params url.Values) (string, error) {
	path := fmt.Sprintf("/nodes/%s/qemu/%d/status/%s", nodeName, vmID, action)
	var upid string
	if err := c.PostQuery(ctx, path, params, &upid); err != nil {
		return "", err
	}
	return upid, nil
}

// StartVM 启动虚拟机
func (c *ProxmoxClient) StartVM(ctx context.Context, nodeName string, vmID uint32) (string, error) {
	return c.vmStatus(ctx, nodeName, vmID, "start", nil)
}

// StopVM 强制停止虚拟机
func (c *ProxmoxClient) StopVM(ctx context.Context, nodeName string, vmID uint32) (string, error) {
	params := url.Values{}
	params.Set("timeout", "30") // 等待最多30秒
	return c.vmStatus(ctx, nodeName, vmID, "stop", params)
}

// ShutdownVM 通过 ACPI 关机
func (c *ProxmoxClient) ShutdownVM(ctx context.Context, nodeName string, vmID uint32) (string, error) {
	params := url.Values{}
	params.Set("timeout", "60")
	return c.vmStatus(ctx, nodeName, vmID, "shutdown", params)
}

// RebootVM 重启虚拟机
func (c *ProxmoxClient) RebootVM(ctx context.Context, nodeName string, vmID uint32) (string, error) {
	return c.vmStatus(ctx, nodeName, vmID, "reboot", nil)
}

// DeleteVM 删除虚拟机，删除前需要确保虚拟机已停止
// DELETE /api2/json/nodes/{node}/qemu/{vmid}
func (c *ProxmoxClient) DeleteVM(ctx context.Context, nodeName string, vmID uint32, purge bool) (string, error) {
	path := fmt.Sprintf("/nodes/%s/qemu/%d", nodeName, vmID)

	params := url.Values{}
	if purge {
		params.Set("purge", "1")
		params.Set("destroy-unreferenced-disks", "1")
	}

	var upid string
	if err := c.Delete(ctx, path, params, &upid); err != nil {
		return "", err
	}
	return upid, nil
}

// ConvertToTemplate 将虚拟机转换为模板
// POST /api2/json/nodes/{node}/qemu/{vmid}/template
func (c *ProxmoxClient) ConvertToTemplate(ctx context.Context, nodeName string, vmID uint32) (string, error) {
	path := fmt.Sprintf("/nodes/%s/qemu/%d/template", nodeName, vmID)

	var upid string
	if err := c.PostForm(ctx, path, url.Values{}, &upid); err != nil {
		return "", fmt.Errorf("failed to convert VM %d to template on node %s: %w", vmID, nodeName, err)
	}
	return upid, nil
}

// GetNextFreeVMID 获取集群中下一个可用的 VMID
// GET /api2/json/cluster/nextid
// Proxmox API 返回的可能是字符串格式的数字
func (c *ProxmoxClient) GetNextFreeVMID(ctx context.Context) (uint32, error) {
	var result interface{}
	if err := c.Get(ctx, "/cluster/nextid", &result); err != nil {
		return 0, fmt.Errorf("failed to get next free vmid: %w", err)
	}

	switch v := result.(type) {
	case float64:
		return uint32(v), nil
	case string:
		vmid, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return 0, fmt.Errorf("failed to parse vmid string '%s': %w", v, err)
		}
		return uint32(vmid), nil
	default:
		return 0, fmt.Errorf("unexpected vmid type: %T, value: %v", result, result)
	}
}
