package service

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"pvedeploy/internal/metrics"
	"pvedeploy/internal/model"
	"pvedeploy/internal/repository"
	"pvedeploy/pkg/lock"
	"pvedeploy/pkg/log"
	"pvedeploy/pkg/nodeshell"
	"pvedeploy/pkg/proxmox"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// TemplateKey (节点序号, 镜像 id) -> 确定的模板 vmid
type TemplateKey struct {
	NodeIndex int64
	ImageID   int64
}

func (k TemplateKey) Validate() error {
	if k.NodeIndex < 1 || k.NodeIndex > 99 {
		return &ResourceUnavailableError{Kind: "Template slot", Name: fmt.Sprintf("node index %d", k.NodeIndex),
			Err: fmt.Errorf("node index must be within [1,99]")}
	}
	if k.ImageID < 1 || k.ImageID > 99 {
		return &ResourceUnavailableError{Kind: "Template slot", Name: fmt.Sprintf("image id %d", k.ImageID),
			Err: fmt.Errorf("image id must be within [1,99]")}
	}
	return nil
}

// ID base + 100*(nodeIndex-1) + imageID
func (k TemplateKey) ID(base uint32) uint32 {
	return base + uint32(100*(k.NodeIndex-1)) + uint32(k.ImageID)
}

type TemplateLocation struct {
	TemplateID uint32
	NodeName   string
	Built      bool
}

// ProgressReporter 向部署记录写入一条进度消息
type ProgressReporter func(message string)

type TemplateCacheConfig struct {
	BaseID       uint32
	Bridge       string
	TaskTimeout  time.Duration
	BuildTimeout time.Duration
}

type TemplateCache struct {
	nodeRepo  repository.PveNodeRepository
	imageRepo repository.CloudImageRepository
	images    *ImageStore
	shell     NodeShell
	resolver  *NodeAddressResolver
	locker    *lock.Locker // nil 时不加分布式锁
	logger    *log.Logger
	cfg       TemplateCacheConfig
}

func NewTemplateCache(
	nodeRepo repository.PveNodeRepository,
	imageRepo repository.CloudImageRepository,
	images *ImageStore,
	shell NodeShell,
	resolver *NodeAddressResolver,
	locker *lock.Locker,
	logger *log.Logger,
	cfg TemplateCacheConfig,
) *TemplateCache {
	if cfg.BaseID == 0 {
		cfg.BaseID = 9000
	}
	if cfg.Bridge == "" {
		cfg.Bridge = "vmbr0"
	}
	if cfg.TaskTimeout <= 0 {
		cfg.TaskTimeout = 5 * time.Minute
	}
	if cfg.BuildTimeout <= 0 {
		cfg.BuildTimeout = 30 * time.Minute
	}
	return &TemplateCache{
		nodeRepo:  nodeRepo,
		imageRepo: imageRepo,
		images:    images,
		shell:     shell,
		resolver:  resolver,
		locker:    locker,
		logger:    logger,
		cfg:       cfg,
	}
}

type occupant struct {
	node       string
	isTemplate bool
}

// scan 在集群的每个节点上查找 vmid
func (c *TemplateCache) scan(ctx context.Context, client HypervisorClient, nodes []*model.PveNode, vmid uint32) ([]occupant, error) {
	found := make([]*occupant, len(nodes))
	g, gctx := errgroup.WithContext(ctx)
	for i, n := range nodes {
		i, name := i, n.NodeName
		g.Go(func() error {
			config, err := client.GetVMConfig(gctx, name, vmid)
			if err != nil {
				if !proxmox.IsNotFound(err) {
					c.logger.WithContext(ctx).Debug("template scan error, treating as absent",
						zap.String("node", name), zap.Uint32("vmid", vmid), zap.Error(err))
				}
				return nil
			}
			found[i] = &occupant{node: name, isTemplate: isTemplateConfig(config)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	var out []occupant
	for _, o := range found {
		if o != nil {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (c *TemplateCache) deleteVM(ctx context.Context, client HypervisorClient, nodeName string, vmid uint32) error {
	upid, err := client.DeleteVM(ctx, nodeName, vmid, true)
	if err != nil {
		return err
	}
	return waitTask(ctx, client, nodeName, upid, fmt.Sprintf("delete VM %d", vmid), c.cfg.TaskTimeout)
}

// reconcile 删除其他节点上的占用者；目标节点上是模板则命中，不是模板则删除
func (c *TemplateCache) reconcile(ctx context.Context, client HypervisorClient, nodes []*model.PveNode, target string, vmid uint32) (bool, error) {
	occupants, err := c.scan(ctx, client, nodes, vmid)
	if err != nil {
		return false, err
	}

	hit := false
	for _, o := range occupants {
		if o.node == target {
			continue
		}
		metrics.RecordTemplateCache(metrics.CacheMisplaced)
		c.logger.WithContext(ctx).Warn("template id occupied on wrong node, deleting",
			zap.Uint32("vmid", vmid), zap.String("node", o.node), zap.String("expected", target))
		if err := c.deleteVM(ctx, client, o.node, vmid); err != nil {
			return false, fmt.Errorf("cannot proceed: VM %d exists on wrong node %s and could not be deleted: %w", vmid, o.node, err)
		}
	}
	for _, o := range occupants {
		if o.node != target {
			continue
		}
		if o.isTemplate {
			hit = true
			continue
		}
		metrics.RecordTemplateCache(metrics.CacheCorrupt)
		c.logger.WithContext(ctx).Warn("template id occupied by non-template VM, deleting",
			zap.Uint32("vmid", vmid), zap.String("node", o.node))
		if err := c.deleteVM(ctx, client, o.node, vmid); err != nil {
			c.logger.WithContext(ctx).Error("failed to delete non-template VM",
				zap.Uint32("vmid", vmid), zap.String("node", o.node), zap.Error(err))
		}
	}
	return hit, nil
}

// Resolve 返回 (节点, 镜像) 对应的可克隆模板，缺失时在目标节点构建
func (c *TemplateCache) Resolve(
	ctx context.Context,
	client HypervisorClient,
	cluster *model.PveCluster,
	node *model.PveNode,
	image *model.CloudImage,
	storage string,
	progress ProgressReporter,
) (*TemplateLocation, error) {
	key := TemplateKey{NodeIndex: node.Id, ImageID: image.Id}
	if err := key.Validate(); err != nil {
		return nil, err
	}
	vmid := key.ID(c.cfg.BaseID)

	nodes, err := c.nodeRepo.GetByClusterID(ctx, cluster.Id)
	if err != nil {
		return nil, err
	}
	if !containsNode(nodes, node.NodeName) {
		nodes = append(nodes, node)
	}

	hit, err := c.reconcile(ctx, client, nodes, node.NodeName, vmid)
	if err != nil {
		return nil, err
	}
	if hit {
		metrics.RecordTemplateCache(metrics.CacheHit)
		c.logger.WithContext(ctx).Info("template cache hit", zap.Uint32("vmid", vmid), zap.String("node", node.NodeName))
		return &TemplateLocation{TemplateID: vmid, NodeName: node.NodeName}, nil
	}

	metrics.RecordTemplateCache(metrics.CacheMiss)
	if progress != nil {
		progress("Setting up cloud image (first time - takes ~5 min)...")
	}

	if c.locker != nil {
		lk, err := c.locker.Acquire(ctx, fmt.Sprintf("template:%d:%s:%d", cluster.Id, node.NodeName, image.Id), c.cfg.BuildTimeout, 5*time.Second)
		if err != nil {
			return nil, fmt.Errorf("acquire template build lock: %w", err)
		}
		defer func() {
			if err := lk.Release(context.Background()); err != nil {
				c.logger.WithContext(ctx).Warn("failed to release template build lock", zap.String("key", lk.Key()), zap.Error(err))
			}
		}()
		// 等锁期间可能已被其他实例构建
		if hit, err := c.reconcile(ctx, client, nodes, node.NodeName, vmid); err != nil {
			return nil, err
		} else if hit {
			metrics.RecordTemplateCache(metrics.CacheHit)
			return &TemplateLocation{TemplateID: vmid, NodeName: node.NodeName}, nil
		}
	}

	started := time.Now()
	if err := c.build(ctx, client, cluster, node.NodeName, vmid, image, storage); err != nil {
		return nil, fmt.Errorf("failed to create cloud image template: %w", err)
	}
	metrics.RecordTemplateBuild(started)
	return &TemplateLocation{TemplateID: vmid, NodeName: node.NodeName, Built: true}, nil
}

var unsafeNameRe = regexp.MustCompile(`[^A-Za-z0-9.-]+`)

func (c *TemplateCache) build(ctx context.Context, client HypervisorClient, cluster *model.PveCluster, nodeName string, vmid uint32, image *model.CloudImage, storage string) error {
	logger := c.logger.WithContext(ctx)
	logger.Info("building template", zap.Uint32("vmid", vmid), zap.String("node", nodeName), zap.Int64("image_id", image.Id))

	localPath, err := c.images.EnsureLocal(ctx, image)
	if err != nil {
		return err
	}

	params := url.Values{}
	params.Set("vmid", strconv.FormatUint(uint64(vmid), 10))
	params.Set("name", "tpl-"+unsafeNameRe.ReplaceAllString(image.Name, "-"))
	params.Set("memory", "2048")
	params.Set("cores", "2")
	params.Set("net0", "virtio,bridge="+c.cfg.Bridge)
	params.Set("vga", "qxl")
	params.Set("ostype", "l26")
	params.Set("scsihw", "virtio-scsi-pci")
	params.Set("agent", "enabled=1")
	upid, err := client.CreateQemuVM(ctx, nodeName, params)
	if err != nil {
		return fmt.Errorf("create template VM on %s: %w", nodeName, err)
	}
	if err := waitTask(ctx, client, nodeName, upid, fmt.Sprintf("create template VM %d", vmid), c.cfg.TaskTimeout); err != nil {
		return err
	}

	addr, err := c.resolver.Resolve(ctx, client, cluster, nodeName)
	if err != nil {
		return err
	}

	remote := "/var/tmp/" + filepath.Base(localPath)
	f, err := c.images.OpenCloudImage(localPath)
	if err != nil {
		return err
	}
	_, err = runChecked(ctx, c.shell, addr,
		nodeshell.NewCommand("dd", "of="+remote, "bs=4M", "status=none").WithStdin(f), c.cfg.BuildTimeout)
	f.Close()
	if err != nil {
		return err
	}
	defer func() {
		if _, err := runChecked(context.Background(), c.shell, addr, nodeshell.NewCommand("rm", "-f", remote), time.Minute); err != nil {
			logger.Warn("failed to remove staged image", zap.String("path", remote), zap.Error(err))
		}
	}()

	id := strconv.FormatUint(uint64(vmid), 10)
	if _, err := runChecked(ctx, c.shell, addr,
		nodeshell.NewCommand("qm", "importdisk", id, remote, storage, "--format", "qcow2"), c.cfg.BuildTimeout); err != nil {
		return err
	}

	config, err := client.GetVMConfig(ctx, nodeName, vmid)
	if err != nil {
		return err
	}
	volume := configString(config, "unused0")
	if volume == "" {
		return fmt.Errorf("imported disk not found on VM %d (no unused0)", vmid)
	}

	attach := url.Values{}
	attach.Set("scsi0", volume)
	attach.Set("ide2", storage+":cloudinit")
	attach.Set("boot", "order=scsi0")
	attach.Set("serial0", "socket")
	if err := client.UpdateVMConfig(ctx, nodeName, vmid, attach); err != nil {
		return err
	}

	upid, err = client.ConvertToTemplate(ctx, nodeName, vmid)
	if err != nil {
		return err
	}
	if err := waitTask(ctx, client, nodeName, upid, fmt.Sprintf("convert VM %d to template", vmid), c.cfg.TaskTimeout); err != nil {
		return err
	}
	logger.Info("template ready", zap.Uint32("vmid", vmid), zap.String("node", nodeName))
	return nil
}

// AuditReport 巡检结果
type AuditReport struct {
	Checked   int
	Misplaced int
	Corrupt   int
}

// AuditTemplates 巡检所有节点上的模板 id：删除错位的占用者，非模板占用只记录（可能正在构建）
func (c *TemplateCache) AuditTemplates(ctx context.Context, client HypervisorClient, cluster *model.PveCluster) (*AuditReport, error) {
	nodes, err := c.nodeRepo.GetByClusterID(ctx, cluster.Id)
	if err != nil {
		return nil, err
	}
	images, err := c.imageRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	report := &AuditReport{}
	for _, owner := range nodes {
		for _, image := range images {
			key := TemplateKey{NodeIndex: owner.Id, ImageID: image.Id}
			if key.Validate() != nil {
				continue
			}
			vmid := key.ID(c.cfg.BaseID)
			occupants, err := c.scan(ctx, client, nodes, vmid)
			if err != nil {
				return report, err
			}
			report.Checked++
			for _, o := range occupants {
				switch {
				case o.node != owner.NodeName:
					report.Misplaced++
					metrics.RecordTemplateCache(metrics.CacheMisplaced)
					if err := c.deleteVM(ctx, client, o.node, vmid); err != nil {
						c.logger.WithContext(ctx).Error("failed to delete misplaced template",
							zap.Uint32("vmid", vmid), zap.String("node", o.node), zap.Error(err))
					}
				case !o.isTemplate:
					report.Corrupt++
					c.logger.WithContext(ctx).Warn("non-template VM at template id",
						zap.Uint32("vmid", vmid), zap.String("node", o.node))
				}
			}
		}
	}
	return report, nil
}

func containsNode(nodes []*model.PveNode, name string) bool {
	for _, n := range nodes {
		if n.NodeName == name {
			return true
		}
	}
	return false
}
