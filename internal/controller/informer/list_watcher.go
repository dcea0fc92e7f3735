package informer

import (
	"context"

	"pvedeploy/internal/model"
	"pvedeploy/pkg/proxmox"
)

// InventoryClient 清单同步所需的 Proxmox API 子集
type InventoryClient interface {
	ListNodes(ctx context.Context) ([]proxmox.NodeInfo, error)
	GetClusterStatus(ctx context.Context) ([]map[string]interface{}, error)
	GetNodeStorage(ctx context.Context, nodeName string) ([]proxmox.StorageInfo, error)
}

// NodeListWatcher 节点列表
type NodeListWatcher struct {
	client    InventoryClient
	clusterID int64
	env       string
}

func NewNodeListWatcher(client InventoryClient, clusterID int64, env string) ListWatcher {
	return &NodeListWatcher{
		client:    client,
		clusterID: clusterID,
		env:       env,
	}
}

func (w *NodeListWatcher) List(ctx context.Context) ([]interface{}, error) {
	nodes, err := w.client.ListNodes(ctx)
	if err != nil {
		return nil, err
	}

	// /cluster/status 失败时不阻断，节点 IP 留空
	nodeIPMap := make(map[string]string)
	if status, err := w.client.GetClusterStatus(ctx); err == nil {
		for _, item := range status {
			if t, _ := item["type"].(string); t != "node" {
				continue
			}
			name, _ := item["name"].(string)
			if ip, _ := item["ip"].(string); name != "" && ip != "" {
				nodeIPMap[name] = ip
			}
		}
	}

	result := make([]interface{}, 0, len(nodes))
	for _, n := range nodes {
		result = append(result, &model.PveNode{
			NodeName:  n.Node,
			IPAddress: nodeIPMap[n.Node],
			ClusterID: w.clusterID,
			Status:    n.Status,
			Env:       w.env,
		})
	}
	return result, nil
}

// StorageListWatcher 单个节点上的存储列表
type StorageListWatcher struct {
	client    InventoryClient
	clusterID int64
	nodeName  string
}

func NewStorageListWatcher(client InventoryClient, clusterID int64, nodeName string) ListWatcher {
	return &StorageListWatcher{
		client:    client,
		clusterID: clusterID,
		nodeName:  nodeName,
	}
}

func (w *StorageListWatcher) List(ctx context.Context) ([]interface{}, error) {
	storages, err := w.client.GetNodeStorage(ctx, w.nodeName)
	if err != nil {
		return nil, err
	}

	result := make([]interface{}, 0, len(storages))
	for _, s := range storages {
		var fraction float64
		if s.Total > 0 {
			fraction = float64(s.Used) / float64(s.Total)
		}
		result = append(result, &model.PveStorage{
			NodeName:     w.nodeName,
			ClusterID:    w.clusterID,
			StorageName:  s.Storage,
			Type:         s.Type,
			Content:      s.Content,
			Shared:       s.Shared,
			Active:       s.Active,
			Enabled:      s.Enabled,
			Avail:        s.Avail,
			Used:         s.Used,
			Total:        s.Total,
			UsedFraction: fraction,
		})
	}
	return result, nil
}
