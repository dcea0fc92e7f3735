package proxmox

import (
	"context"
	"fmt"
	"net/url"
)

type NodeInfo struct {
	Node   string  `json:"node"`
	Status string  `json:"status"`
	CPU    float64 `json:"cpu"`
	MaxCPU int     `json:"maxcpu"`
	Mem    int64   `json:"mem"`
	MaxMem int64   `json:"maxmem"`
	Uptime int64   `json:"uptime"`
}

type StorageInfo struct {
	Storage string `json:"storage"`
	Type    string `json:"type"`
	Content string `json:"content"`
	Active  int    `json:"active"`
	Enabled int    `json:"enabled"`
	Shared  int    `json:"shared"`
	Avail   int64  `json:"avail"`
	Total   int64  `json:"total"`
	Used    int64  `json:"used"`
}

// ListNodes 获取集群节点列表
// GET /api2/json/nodes
func (c *ProxmoxClient) ListNodes(ctx context.Context) ([]NodeInfo, error) {
	var nodes []NodeInfo
	if err := c.Get(ctx, "/nodes", &nodes); err != nil {
		return nil, err
	}
	return nodes, nil
}

// GetNodeStorage 获取节点可用存储
// GET /api2/json/nodes/{node}/storage
func (c *ProxmoxClient) GetNodeStorage(ctx context.Context, nodeName string) ([]StorageInfo, error) {
	path := fmt.Sprintf("/nodes/%s/storage", nodeName)
	var storages []StorageInfo
	if err := c.Get(ctx, path, &storages); err != nil {
		return nil, err
	}
	return storages, nil
}

// GetNodeNetworks 获取节点网络列表
// GET /api2/json/nodes/{node}/network
func (c *ProxmoxClient) GetNodeNetworks(ctx context.Context, nodeName string) ([]map[string]interface{}, error) {
	path := fmt.Sprintf("/nodes/%s/network", nodeName)
	var networks []map[string]interface{}
	if err := c.Get(ctx, path, &networks); err != nil {
		return nil, err
	}
	return networks, nil
}

// GetClusterStatus 获取集群状态
// GET /api2/json/cluster/status
func (c *ProxmoxClient) GetClusterStatus(ctx context.Context) ([]map[string]interface{}, error) {
	var status []map[string]interface{}
	if err := c.Get(ctx, "/cluster/status", &status); err != nil {
		return nil, err
	}
	return status, nil
}

// GetStorageContent 获取存储内容列表
// GET /api2/json/nodes/{node}/storage/{storage}/content
// 可通过 content 过滤类型: images,iso,backup 等
func (c *ProxmoxClient) GetStorageContent(ctx context.Context, nodeName, storage, content string) ([]map[string]interface{}, error) {
	path := fmt.Sprintf("/nodes/%s/storage/%s/content", nodeName, storage)

	params := url.Values{}
	if content != "" {
		params.Set("content", content)
	}

	var result []map[string]interface{}
	if err := c.GetWithQuery(ctx, path, params, &result); err != nil {
		return nil, err
	}
	return result, nil
}
