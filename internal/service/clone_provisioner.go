package service

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"pvedeploy/internal/model"
	"pvedeploy/internal/repository"
	"pvedeploy/pkg/cloudinit"
	"pvedeploy/pkg/log"
	"pvedeploy/pkg/nodeshell"
	"pvedeploy/pkg/proxmox"

	"go.uber.org/zap"
)

// 可以存放 snippets 的文件型存储
var fileBackedStorage = map[string]bool{
	"dir":       true,
	"nfs":       true,
	"cifs":      true,
	"cephfs":    true,
	"glusterfs": true,
}

type CloneProvisionerConfig struct {
	CloneWaitTimeout time.Duration
	PollInterval     time.Duration
	TaskTimeout      time.Duration
	TemplateDiskGB   int
	SnippetStorage   string
	SnippetDir       string
	ShellTimeout     time.Duration
}

type CloneProvisioner struct {
	storageRepo repository.PveStorageRepository
	shell       NodeShell
	resolver    *NodeAddressResolver
	locks       *LockRetryExecutor
	logger      *log.Logger
	cfg         CloneProvisionerConfig
}

func NewCloneProvisioner(
	storageRepo repository.PveStorageRepository,
	shell NodeShell,
	resolver *NodeAddressResolver,
	locks *LockRetryExecutor,
	logger *log.Logger,
	cfg CloneProvisionerConfig,
) *CloneProvisioner {
	if cfg.CloneWaitTimeout <= 0 {
		cfg.CloneWaitTimeout = 180 * time.Second
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 3 * time.Second
	}
	if cfg.TaskTimeout <= 0 {
		cfg.TaskTimeout = 5 * time.Minute
	}
	if cfg.TemplateDiskGB <= 0 {
		cfg.TemplateDiskGB = 10
	}
	if cfg.SnippetStorage == "" {
		cfg.SnippetStorage = "local"
	}
	if cfg.SnippetDir == "" {
		cfg.SnippetDir = "/var/lib/vz/snippets"
	}
	if cfg.ShellTimeout <= 0 {
		cfg.ShellTimeout = time.Minute
	}
	return &CloneProvisioner{
		storageRepo: storageRepo,
		shell:       shell,
		resolver:    resolver,
		locks:       locks,
		logger:      logger,
		cfg:         cfg,
	}
}

// ValidateStorage 存储必须出现在目标节点的存储列表中
func (p *CloneProvisioner) ValidateStorage(ctx context.Context, client HypervisorClient, nodeName, storage string) error {
	list, err := client.GetNodeStorage(ctx, nodeName)
	if err != nil {
		p.logger.WithContext(ctx).Warn("could not validate storage, continuing",
			zap.String("node", nodeName), zap.String("storage", storage), zap.Error(err))
		return nil
	}
	var names []string
	for _, s := range list {
		if s.Enabled == 0 && s.Active == 0 {
			continue
		}
		if s.Storage == storage {
			return nil
		}
		names = append(names, s.Storage)
	}
	if len(names) > 5 {
		names = names[:5]
	}
	return &ResourceUnavailableError{
		Kind:      "Storage",
		Name:      storage,
		Where:     fmt.Sprintf("node '%s'", nodeName),
		Available: names,
	}
}

// Provision 从模板完整克隆并定制，完成后虚拟机已启动
func (p *CloneProvisioner) Provision(
	ctx context.Context,
	client HypervisorClient,
	cluster *model.PveCluster,
	dep *model.Deployment,
	loc *TemplateLocation,
	progress ProgressReporter,
) error {
	logger := p.logger.WithContext(ctx).With(zap.Uint32("vmid", dep.VMID), zap.String("node", dep.NodeName))
	target := LockTarget{Client: client, Cluster: cluster, NodeName: dep.NodeName, VMID: dep.VMID}

	progress("Cloning cloud image template...")
	// 新 vmid 尚不存在，只处理锁文件
	cloneTarget := LockTarget{Client: client, Cluster: cluster, NodeName: dep.NodeName}
	err := p.locks.Execute(ctx, cloneTarget, func(ctx context.Context) error {
		_, err := client.CloneVM(ctx, loc.NodeName, loc.TemplateID, &proxmox.CloneVMRequest{
			NewID:   dep.VMID,
			Name:    dep.VmName,
			Target:  dep.NodeName,
			Full:    true,
			Storage: dep.Storage,
		})
		return err
	})
	if err != nil {
		return err
	}
	logger.Info("clone started", zap.Uint32("template", loc.TemplateID), zap.String("source_node", loc.NodeName))

	progress("Cloning VM from template (copying disks)...")
	if err := p.waitClone(ctx, client, dep.NodeName, dep.VMID); err != nil {
		return err
	}

	progress("Customizing VM resources...")
	delta := DiffAgainstTemplate(dep)
	if err := p.locks.ExecuteProactive(ctx, target, func(ctx context.Context) error {
		return client.UpdateVMConfig(ctx, dep.NodeName, dep.VMID, delta.Values())
	}); err != nil {
		return err
	}

	if grow := dep.DiskSize - p.cfg.TemplateDiskGB; grow > 0 {
		err := p.locks.ExecuteProactive(ctx, target, func(ctx context.Context) error {
			upid, err := client.ResizeVMDisk(ctx, dep.NodeName, dep.VMID, "scsi0", fmt.Sprintf("+%dG", grow))
			if err != nil {
				return err
			}
			return waitTask(ctx, client, dep.NodeName, upid, fmt.Sprintf("resize VM %d", dep.VMID), p.cfg.TaskTimeout)
		})
		if err != nil {
			logger.Warn("disk resize failed", zap.Int("disk_size", dep.DiskSize), zap.Error(err))
		}
	}

	progress("Configuring cloud-init...")
	if err := p.locks.Execute(ctx, target, func(ctx context.Context) error {
		return client.UpdateVMConfig(ctx, dep.NodeName, dep.VMID, FirstBootValues(dep))
	}); err != nil {
		return err
	}

	if err := p.stageSnippet(ctx, client, cluster, dep); err != nil {
		logger.Warn("could not create custom cloud-init snippet", zap.Error(err))
	}

	// cloud-init 盘只生成一次，重新指定以应用新配置
	if err := p.locks.ExecuteProactive(ctx, target, func(ctx context.Context) error {
		v := url.Values{}
		v.Set("ide2", dep.Storage+":cloudinit")
		return client.UpdateVMConfig(ctx, dep.NodeName, dep.VMID, v)
	}); err != nil {
		logger.Warn("failed to regenerate cloud-init drive", zap.Error(err))
	}

	progress("Starting VM...")
	if err := p.start(ctx, client, dep.NodeName, dep.VMID); err != nil {
		logger.Warn("failed to start VM, but VM was created successfully", zap.Error(err))
	}
	return nil
}

// waitClone 轮询直到 clone 锁消失且 scsi0 存在
func (p *CloneProvisioner) waitClone(ctx context.Context, client HypervisorClient, nodeName string, vmid uint32) error {
	deadline := time.Now().Add(p.cfg.CloneWaitTimeout)
	ticker := time.NewTicker(p.cfg.PollInterval)
	defer ticker.Stop()

	for {
		config, err := client.GetVMConfig(ctx, nodeName, vmid)
		switch {
		case err != nil:
			p.logger.WithContext(ctx).Debug("error checking clone status", zap.Uint32("vmid", vmid), zap.Error(err))
		case configString(config, "lock") == "clone":
		case configString(config, "scsi0") != "":
			return nil
		default:
			p.logger.WithContext(ctx).Warn("clone lock released but no scsi0 disk yet", zap.Uint32("vmid", vmid))
		}

		if !time.Now().Before(deadline) {
			return &TimeoutError{Op: fmt.Sprintf("VM %d clone", vmid), After: p.cfg.CloneWaitTimeout}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (p *CloneProvisioner) start(ctx context.Context, client HypervisorClient, nodeName string, vmid uint32) error {
	upid, err := client.StartVM(ctx, nodeName, vmid)
	if err != nil {
		return err
	}
	return waitTask(ctx, client, nodeName, upid, fmt.Sprintf("start VM %d", vmid), p.cfg.TaskTimeout)
}

// stageSnippet 写入自定义 user-data 片段并通过 cicustom 引用
func (p *CloneProvisioner) stageSnippet(ctx context.Context, client HypervisorClient, cluster *model.PveCluster, dep *model.Deployment) error {
	if err := p.checkSnippetStorage(ctx, cluster, dep.NodeName); err != nil {
		return err
	}

	hostname := dep.Hostname
	if hostname == "" {
		hostname = dep.VmName
	}
	content, err := cloudinit.BuildUserData(cloudinit.Options{
		Hostname: hostname,
		Username: dep.Username,
		Password: dep.Password,
		SSHKeys:  dep.SSHKey,
	})
	if err != nil {
		return err
	}

	addr, err := p.resolver.Resolve(ctx, client, cluster, dep.NodeName)
	if err != nil {
		return err
	}
	name := fmt.Sprintf("cloud-init-%d.yml", dep.VMID)
	file := path.Join(p.cfg.SnippetDir, name)

	if _, err := runChecked(ctx, p.shell, addr, nodeshell.NewCommand("mkdir", "-p", p.cfg.SnippetDir), p.cfg.ShellTimeout); err != nil {
		return err
	}
	if _, err := runChecked(ctx, p.shell, addr,
		nodeshell.NewCommand("tee", file).WithStdin(strings.NewReader(content)), p.cfg.ShellTimeout); err != nil {
		return err
	}
	if _, err := runChecked(ctx, p.shell, addr, nodeshell.NewCommand("test", "-f", file), p.cfg.ShellTimeout); err != nil {
		return fmt.Errorf("snippet file not found at %s: %w", file, err)
	}

	v := url.Values{}
	v.Set("cicustom", "user="+p.cfg.SnippetStorage+":snippets/"+name)
	if err := client.UpdateVMConfig(ctx, dep.NodeName, dep.VMID, v); err != nil {
		return err
	}
	p.logger.WithContext(ctx).Info("applied custom cloud-init user-data", zap.Uint32("vmid", dep.VMID), zap.String("file", file))
	return nil
}

// checkSnippetStorage 块存储（lvm/zfs 等）不能存放 snippets；库存中查不到时放行
func (p *CloneProvisioner) checkSnippetStorage(ctx context.Context, cluster *model.PveCluster, nodeName string) error {
	storages, err := p.storageRepo.ListByNode(ctx, cluster.Id, nodeName)
	if err != nil || len(storages) == 0 {
		return nil
	}
	var fileBacked []string
	for _, s := range storages {
		if fileBackedStorage[s.Type] {
			fileBacked = append(fileBacked, s.StorageName)
		}
	}
	for _, s := range storages {
		if s.StorageName != p.cfg.SnippetStorage {
			continue
		}
		if fileBackedStorage[s.Type] {
			return nil
		}
		return &ResourceUnavailableError{
			Kind:      "Snippet storage",
			Name:      s.StorageName,
			Where:     fmt.Sprintf("node '%s'", nodeName),
			Available: fileBacked,
			Err:       fmt.Errorf("storage type %s is not file-backed", s.Type),
		}
	}
	return nil
}
