package service

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"pvedeploy/internal/model"
	"pvedeploy/internal/repository"
	"pvedeploy/pkg/log"
	"pvedeploy/pkg/nodeshell"

	"go.uber.org/zap"
)

// NodeAddressResolver 解析节点的实际 IP：集群状态 → 节点记录 → corosync 配置
type NodeAddressResolver struct {
	shell    NodeShell
	nodeRepo repository.PveNodeRepository
	logger   *log.Logger
	timeout  time.Duration

	cache sync.Map // "cluster/node" -> ip
}

func NewNodeAddressResolver(shell NodeShell, nodeRepo repository.PveNodeRepository, logger *log.Logger) *NodeAddressResolver {
	return &NodeAddressResolver{
		shell:    shell,
		nodeRepo: nodeRepo,
		logger:   logger,
		timeout:  30 * time.Second,
	}
}

func (r *NodeAddressResolver) Resolve(ctx context.Context, client HypervisorClient, cluster *model.PveCluster, nodeName string) (string, error) {
	key := fmt.Sprintf("%d/%s", cluster.Id, nodeName)
	if v, ok := r.cache.Load(key); ok {
		return v.(string), nil
	}

	addr, err := r.resolve(ctx, client, cluster, nodeName)
	if err != nil {
		return "", err
	}
	r.cache.Store(key, addr)
	return addr, nil
}

// Forget 删除缓存，节点地址变化后调用
func (r *NodeAddressResolver) Forget(cluster *model.PveCluster, nodeName string) {
	r.cache.Delete(fmt.Sprintf("%d/%s", cluster.Id, nodeName))
}

func (r *NodeAddressResolver) resolve(ctx context.Context, client HypervisorClient, cluster *model.PveCluster, nodeName string) (string, error) {
	status, err := client.GetClusterStatus(ctx)
	if err != nil {
		r.logger.WithContext(ctx).Warn("failed to get cluster status for node address", zap.String("node", nodeName), zap.Error(err))
	}
	for _, item := range status {
		if configString(item, "type") != "node" || configString(item, "name") != nodeName {
			continue
		}
		if ip := configString(item, "ip"); ip != "" {
			return ip, nil
		}
	}

	if r.nodeRepo != nil {
		node, err := r.nodeRepo.GetByNodeName(ctx, nodeName, cluster.Id)
		if err != nil {
			r.logger.WithContext(ctx).Warn("failed to load node record", zap.String("node", nodeName), zap.Error(err))
		}
		if node != nil && node.IPAddress != "" {
			return node.IPAddress, nil
		}
	}

	host := cluster.ApiHost()
	if host == "" {
		return "", &ResourceUnavailableError{Kind: "Node address", Name: nodeName, Where: cluster.ClusterName}
	}
	cmd := nodeshell.NewCommand("grep", "-A3", "name: "+nodeName, "/etc/pve/corosync.conf")
	res, err := runChecked(ctx, r.shell, host, cmd, r.timeout)
	if err != nil {
		return "", err
	}
	if ip := parseRing0Addr(res.Stdout); ip != "" {
		return ip, nil
	}
	return "", &ResourceUnavailableError{Kind: "Node address", Name: nodeName, Where: cluster.ClusterName}
}

func parseRing0Addr(out string) string {
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if v, ok := strings.CutPrefix(line, "ring0_addr:"); ok {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
