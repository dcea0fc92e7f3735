package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"time"

	"pvedeploy/internal/model"
	"pvedeploy/pkg/nodeshell"
	"pvedeploy/pkg/proxmox"
)

// HypervisorClient 部署引擎使用的 Proxmox API 子集，由 *proxmox.ProxmoxClient 实现
type HypervisorClient interface {
	GetVersion(ctx context.Context) (map[string]interface{}, error)
	ListNodes(ctx context.Context) ([]proxmox.NodeInfo, error)
	GetNodeStorage(ctx context.Context, nodeName string) ([]proxmox.StorageInfo, error)
	GetNodeNetworks(ctx context.Context, nodeName string) ([]map[string]interface{}, error)
	GetClusterStatus(ctx context.Context) ([]map[string]interface{}, error)
	GetNextFreeVMID(ctx context.Context) (uint32, error)

	CreateQemuVM(ctx context.Context, nodeName string, params url.Values) (string, error)
	WaitForTask(ctx context.Context, nodeName, upid string, timeout time.Duration) error
	GetVMConfig(ctx context.Context, nodeName string, vmID uint32) (map[string]interface{}, error)
	UpdateVMConfig(ctx context.Context, nodeName string, vmID uint32, params url.Values) error
	CloneVM(ctx context.Context, nodeName string, sourceVMID uint32, req *proxmox.CloneVMRequest) (string, error)
	ResizeVMDisk(ctx context.Context, nodeName string, vmID uint32, disk, size string) (string, error)
	StartVM(ctx context.Context, nodeName string, vmID uint32) (string, error)
	StopVM(ctx context.Context, nodeName string, vmID uint32) (string, error)
	ShutdownVM(ctx context.Context, nodeName string, vmID uint32) (string, error)
	RebootVM(ctx context.Context, nodeName string, vmID uint32) (string, error)
	DeleteVM(ctx context.Context, nodeName string, vmID uint32, purge bool) (string, error)
	ConvertToTemplate(ctx context.Context, nodeName string, vmID uint32) (string, error)

	GetStorageContent(ctx context.Context, nodeName, storage, content string) ([]map[string]interface{}, error)
	UploadStorageContent(ctx context.Context, nodeName, storage, content, filename string, file io.Reader, size int64, progress proxmox.ProgressFunc) (string, error)
}

var _ HypervisorClient = (*proxmox.ProxmoxClient)(nil)

// HypervisorFactory 为集群创建客户端
type HypervisorFactory interface {
	ForCluster(cluster *model.PveCluster) (HypervisorClient, error)
}

type proxmoxFactory struct{}

func NewHypervisorFactory() HypervisorFactory {
	return proxmoxFactory{}
}

func (proxmoxFactory) ForCluster(cluster *model.PveCluster) (HypervisorClient, error) {
	return proxmox.NewProxmoxClient(cluster.ApiUrl, cluster.UserId, cluster.UserToken)
}

// Connect 创建客户端并用 GetVersion 验证连通性
func Connect(ctx context.Context, factory HypervisorFactory, cluster *model.PveCluster) (HypervisorClient, error) {
	client, err := factory.ForCluster(cluster)
	if err != nil {
		return nil, &ConnectivityError{Cluster: cluster.ClusterName, Err: err}
	}
	if _, err := client.GetVersion(ctx); err != nil {
		return nil, &ConnectivityError{Cluster: cluster.ClusterName, Err: err}
	}
	return client, nil
}

// NodeShell 特权通道，由 *nodeshell.Executor 实现
type NodeShell interface {
	RunPrivileged(ctx context.Context, nodeAddress string, cmd nodeshell.Command, timeout time.Duration) (*nodeshell.Result, error)
}

var _ NodeShell = (*nodeshell.Executor)(nil)

// runChecked 非零退出转换为 PrivilegedExecutionError
func runChecked(ctx context.Context, shell NodeShell, addr string, cmd nodeshell.Command, timeout time.Duration) (*nodeshell.Result, error) {
	res, err := shell.RunPrivileged(ctx, addr, cmd, timeout)
	if err != nil {
		return nil, fmt.Errorf("privileged channel to %s: %w", addr, err)
	}
	if res.ExitCode != 0 {
		return res, &PrivilegedExecutionError{
			Node:     addr,
			Command:  cmd.String(),
			ExitCode: res.ExitCode,
			Stderr:   res.Stderr,
		}
	}
	return res, nil
}

// waitTask 等待任务并把超时转换为 TimeoutError
func waitTask(ctx context.Context, client HypervisorClient, node, upid, op string, timeout time.Duration) error {
	err := client.WaitForTask(ctx, node, upid, timeout)
	if err != nil && errors.Is(err, proxmox.ErrTaskTimeout) {
		return &TimeoutError{Op: op, After: timeout, Err: err}
	}
	return err
}

// isTemplateConfig template 字段可能是 int/float/string/bool
func isTemplateConfig(config map[string]interface{}) bool {
	switch v := config["template"].(type) {
	case int:
		return v == 1
	case int64:
		return v == 1
	case float64:
		return v == 1
	case string:
		return v == "1" || v == "true"
	case bool:
		return v
	}
	return false
}

func configString(config map[string]interface{}, key string) string {
	switch v := config[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
