package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	v1 "pvedeploy/api/v1"
	"pvedeploy/internal/metrics"
	"pvedeploy/internal/model"
	"pvedeploy/internal/repository"
	"pvedeploy/pkg/proxmox"

	"go.uber.org/zap"
)

type DeploymentService interface {
	CreateDeployment(ctx context.Context, req *v1.CreateDeploymentRequest) (*v1.CreateDeploymentResponseData, error)
	// StartDeployment 幂等触发，立即返回
	StartDeployment(ctx context.Context, id int64) error
	GetProgress(ctx context.Context, id int64) (*Progress, error)
	WatchProgress(ctx context.Context, id int64) (<-chan Progress, func(), error)
	ListEvents(ctx context.Context, id int64, runID string) ([]*model.DeploymentEvent, error)
	// DeleteDeployment 停止并删除虚拟机，然后删除记录
	DeleteDeployment(ctx context.Context, id int64) error
	// Run 后台任务主体
	Run(ctx context.Context, id int64) error
	PurgeProgress(now time.Time) int
	AuditTemplates(ctx context.Context) error
	// RecoverInterrupted 进程重启后把遗留的 creating 记录标记为 error
	RecoverInterrupted(ctx context.Context) (int, error)
}

type DeploymentConfig struct {
	Workers           int
	QueueSize         int
	TaskTimeout       time.Duration
	DefaultStorage    string
	DefaultBridge     string
	DefaultIsoStorage string
}

func NewDeploymentService(
	service *Service,
	deploymentRepo repository.DeploymentRepository,
	eventRepo repository.DeploymentEventRepository,
	clusterRepo repository.PveClusterRepository,
	nodeRepo repository.PveNodeRepository,
	cloudImageRepo repository.CloudImageRepository,
	isoImageRepo repository.IsoImageRepository,
	factory HypervisorFactory,
	templates *TemplateCache,
	cloner *CloneProvisioner,
	isoProvisioner *IsoProvisioner,
	locks *LockRetryExecutor,
	store *ProgressStore,
	mirror ProgressMirror,
	cfg DeploymentConfig,
) DeploymentService {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 100
	}
	if cfg.TaskTimeout <= 0 {
		cfg.TaskTimeout = 5 * time.Minute
	}
	s := &deploymentService{
		Service:        service,
		deploymentRepo: deploymentRepo,
		eventRepo:      eventRepo,
		clusterRepo:    clusterRepo,
		nodeRepo:       nodeRepo,
		cloudImageRepo: cloudImageRepo,
		isoImageRepo:   isoImageRepo,
		factory:        factory,
		templates:      templates,
		cloner:         cloner,
		isoProvisioner: isoProvisioner,
		locks:          locks,
		store:          store,
		mirror:         mirror,
		cfg:            cfg,
		queue:          make(chan int64, cfg.QueueSize),
	}

	for i := 0; i < cfg.Workers; i++ {
		go s.worker()
	}
	return s
}

type deploymentService struct {
	*Service
	deploymentRepo repository.DeploymentRepository
	eventRepo      repository.DeploymentEventRepository
	clusterRepo    repository.PveClusterRepository
	nodeRepo       repository.PveNodeRepository
	cloudImageRepo repository.CloudImageRepository
	isoImageRepo   repository.IsoImageRepository
	factory        HypervisorFactory
	templates      *TemplateCache
	cloner         *CloneProvisioner
	isoProvisioner *IsoProvisioner
	locks          *LockRetryExecutor
	store          *ProgressStore
	mirror         ProgressMirror
	cfg            DeploymentConfig

	queue    chan int64
	inflight sync.Map // deployment id -> run id
	// finishMu 让终态写入与释放 inflight 对触发方原子可见
	finishMu sync.Mutex
}

func (s *deploymentService) CreateDeployment(ctx context.Context, req *v1.CreateDeploymentRequest) (*v1.CreateDeploymentResponseData, error) {
	if (req.CloudImageID == nil) == (req.IsoImageID == nil) {
		return nil, v1.ErrImageSourceConflict
	}

	var dep *model.Deployment
	err := s.tm.Transaction(ctx, func(ctx context.Context) error {
		node, err := s.nodeRepo.GetByID(ctx, req.NodeID)
		if err != nil {
			return err
		}
		if node == nil {
			return v1.ErrNodeNotFound
		}
		cluster, err := s.clusterRepo.GetByID(ctx, node.ClusterID)
		if err != nil {
			return err
		}
		if cluster == nil {
			return v1.ErrClusterNotFound
		}

		osType := req.OSType
		if req.CloudImageID != nil {
			image, err := s.cloudImageRepo.GetByID(ctx, *req.CloudImageID)
			if err != nil {
				return err
			}
			if image == nil {
				return v1.ErrImageNotFound
			}
			osType = orDefault(osType, image.OSType)
		} else {
			iso, err := s.isoImageRepo.GetByID(ctx, *req.IsoImageID)
			if err != nil {
				return err
			}
			if iso == nil {
				return v1.ErrImageNotFound
			}
			osType = orDefault(osType, iso.OSType)
		}

		dep = s.newRecord(req, node, osType)
		return s.deploymentRepo.Create(ctx, dep)
	})
	if err != nil {
		if errors.Is(err, v1.ErrNodeNotFound) || errors.Is(err, v1.ErrClusterNotFound) || errors.Is(err, v1.ErrImageNotFound) {
			return nil, err
		}
		s.logger.WithContext(ctx).Error("failed to create deployment", zap.Error(err))
		return nil, v1.ErrInternalServerError
	}

	if err := s.StartDeployment(ctx, dep.Id); err != nil {
		return nil, err
	}
	return &v1.CreateDeploymentResponseData{ID: dep.Id, Status: string(model.DeploymentStatusCreating)}, nil
}

func (s *deploymentService) newRecord(req *v1.CreateDeploymentRequest, node *model.PveNode, osType string) *model.Deployment {
	dep := &model.Deployment{
		VmName:       req.VmName,
		Hostname:     orDefault(req.Hostname, req.VmName),
		ClusterID:    node.ClusterID,
		NodeID:       node.Id,
		NodeName:     node.NodeName,
		CloudImageID: req.CloudImageID,
		IsoImageID:   req.IsoImageID,
		OSType:       osType,
		CPUSockets:   orDefaultInt(req.CPUSockets, 1),
		CPUCores:     orDefaultInt(req.CPUCores, 2),
		CPUType:      orDefault(req.CPUType, "host"),
		CPUFlags:     req.CPUFlags,
		CPULimit:     req.CPULimit,
		CPUUnits:     req.CPUUnits,
		Numa:         boolInt8(req.Numa),
		Memory:       orDefaultInt(req.Memory, 2048),
		Balloon:      req.Balloon,
		Shares:       req.Shares,
		DiskSize:     orDefaultInt(req.DiskSize, 20),
		Storage:      orDefault(req.Storage, s.cfg.DefaultStorage),
		IsoStorage:   orDefault(req.IsoStorage, s.cfg.DefaultIsoStorage),
		Scsihw:       orDefault(req.Scsihw, "virtio-scsi-pci"),
		Bios:         orDefault(req.Bios, "seabios"),
		Machine:      orDefault(req.Machine, "pc"),
		Vga:          orDefault(req.Vga, "std"),
		BootOrder:    req.BootOrder,
		Tablet:       optBool(req.Tablet, true),
		Hotplug:      req.Hotplug,
		Protection:   boolInt8(req.Protection),
		Kvm:          optBool(req.Kvm, true),
		Acpi:         optBool(req.Acpi, true),
		Agent:        optBool(req.Agent, true),
		Description:  req.Description,
		Tags:         req.Tags,

		NetworkBridge: orDefault(req.NetworkBridge, s.cfg.DefaultBridge),
		IPAddress:     req.IPAddress,
		Gateway:       req.Gateway,
		Netmask:       req.Netmask,
		DNSServers:    req.DNSServers,

		Username: req.Username,
		Password: req.Password,
		SSHKey:   req.SSHKey,

		Status:        model.DeploymentStatusCreating,
		StatusMessage: "Initializing VM deployment...",
		Creator:       req.Creator,
	}
	if req.Onboot != nil {
		v := boolInt8(*req.Onboot)
		dep.Onboot = &v
	}
	if req.Startup != nil {
		dep.StartupOrder = req.Startup.Order
		dep.StartupUp = req.Startup.Up
		dep.StartupDown = req.Startup.Down
	}
	if len(req.NetworkInterfaces) > 0 {
		if b, err := json.Marshal(req.NetworkInterfaces); err == nil {
			dep.NetworkInterfaces = string(b)
		}
	}
	return dep
}

func (s *deploymentService) StartDeployment(ctx context.Context, id int64) error {
	s.finishMu.Lock()
	defer s.finishMu.Unlock()

	dep, err := s.deploymentRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.WithContext(ctx).Error("failed to get deployment", zap.Int64("id", id), zap.Error(err))
		return v1.ErrInternalServerError
	}
	if dep == nil {
		return v1.ErrDeploymentNotFound
	}

	switch dep.Status {
	case model.DeploymentStatusDeleting:
		return v1.ErrDeploymentBusy
	case model.DeploymentStatusRunning, model.DeploymentStatusStopped:
		return v1.ErrInvalidOperation
	}

	runID, err := s.sid.GenString()
	if err != nil {
		return err
	}
	// 同一记录只允许一个进行中的任务
	if _, loaded := s.inflight.LoadOrStore(id, runID); loaded {
		return nil
	}

	const message = "Initializing VM deployment..."
	if err := s.deploymentRepo.ResetForRun(ctx, id, runID, message); err != nil {
		s.inflight.Delete(id)
		s.logger.WithContext(ctx).Error("failed to reset deployment", zap.Int64("id", id), zap.Error(err))
		return v1.ErrInternalServerError
	}
	s.publish(ctx, Progress{
		DeploymentID: id,
		RunID:        runID,
		Status:       model.DeploymentStatusCreating,
		Message:      message,
	})
	s.enqueue(ctx, id)
	return nil
}

func (s *deploymentService) enqueue(ctx context.Context, id int64) {
	select {
	case s.queue <- id:
		s.logger.WithContext(ctx).Info("deployment queued", zap.Int64("id", id))
	default:
		s.logger.WithContext(ctx).Warn("deployment queue is full, deployment may be delayed", zap.Int64("id", id))
		// 队列满时不丢任务
		go func() {
			s.queue <- id
		}()
	}
	metrics.SetQueueDepth(len(s.queue))
}

func (s *deploymentService) worker() {
	for id := range s.queue {
		metrics.SetQueueDepth(len(s.queue))
		// 与请求解耦，任务不可取消
		_ = s.Run(context.Background(), id)
	}
}

// Run 无论成功、失败还是 panic，都以终态结束并释放 inflight
func (s *deploymentService) Run(ctx context.Context, id int64) (err error) {
	dep, err := s.deploymentRepo.GetByID(ctx, id)
	if err != nil || dep == nil {
		if err == nil {
			err = v1.ErrDeploymentNotFound
		}
		s.abandon(ctx, id, err)
		return err
	}
	if runID, ok := s.inflight.Load(id); ok {
		dep.RunID = runID.(string)
	}
	ctx = s.logger.WithValue(ctx, zap.Int64("deployment_id", dep.Id), zap.String("run_id", dep.RunID))

	path := metrics.PathISO
	if dep.CloudImageID != nil {
		path = metrics.PathCloud
	}
	started := time.Now()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
			s.logger.WithContext(ctx).Error("deployment panicked", zap.Uint32("vmid", dep.VMID), zap.Any("panic", r), zap.Stack("stack"))
			s.finish(ctx, dep, repository.ProgressUpdate{}, err)
			metrics.RecordDeployment(path, metrics.OutcomeError, started)
		}
	}()

	status, message, err := s.deploy(ctx, dep)
	if err == nil && !model.CanTransition(model.DeploymentStatusCreating, status) {
		err = fmt.Errorf("invalid transition to %s", status)
	}
	if err != nil {
		s.logger.WithContext(ctx).Error("deployment failed", zap.Uint32("vmid", dep.VMID), zap.Error(err))
		s.finish(ctx, dep, repository.ProgressUpdate{}, err)
		metrics.RecordDeployment(path, metrics.OutcomeError, started)
		return err
	}

	now := time.Now()
	s.finish(ctx, dep, repository.ProgressUpdate{
		Status:        status,
		StatusMessage: message,
		DeployedAt:    &now,
	}, nil)
	outcome := metrics.OutcomeRunning
	if status == model.DeploymentStatusStopped {
		outcome = metrics.OutcomeStopped
	}
	metrics.RecordDeployment(path, outcome, started)
	s.logger.WithContext(ctx).Info("deployment finished", zap.Uint32("vmid", dep.VMID), zap.String("status", string(status)))
	return nil
}

// finish 写入终态并释放 inflight；cause 非空时写入 ERROR
func (s *deploymentService) finish(ctx context.Context, dep *model.Deployment, upd repository.ProgressUpdate, cause error) {
	s.finishMu.Lock()
	defer s.finishMu.Unlock()
	if cause != nil {
		s.fail(ctx, dep, cause)
	} else {
		s.write(ctx, dep, upd)
	}
	s.inflight.Delete(dep.Id)
}

// abandon 记录无法加载时直接把状态改为 ERROR
func (s *deploymentService) abandon(ctx context.Context, id int64, cause error) {
	s.finishMu.Lock()
	defer s.finishMu.Unlock()
	defer s.inflight.Delete(id)

	s.logger.WithContext(ctx).Error("failed to load deployment for run", zap.Int64("id", id), zap.Error(cause))
	if errors.Is(cause, v1.ErrDeploymentNotFound) {
		return
	}
	detail := cause.Error()
	err := s.deploymentRepo.UpdateProgress(ctx, id, repository.ProgressUpdate{
		Status:        model.DeploymentStatusError,
		StatusMessage: "Deployment failed",
		ErrorMessage:  &detail,
	})
	if err != nil {
		s.logger.WithContext(ctx).Error("failed to persist progress", zap.Int64("id", id), zap.Error(err))
	}
	p := Progress{DeploymentID: id, Status: model.DeploymentStatusError, Message: "Deployment failed", ErrorDetail: detail}
	if runID, ok := s.inflight.Load(id); ok {
		p.RunID = runID.(string)
	}
	s.publish(ctx, p)
}

// deploy 返回最终状态与消息
func (s *deploymentService) deploy(ctx context.Context, dep *model.Deployment) (model.DeploymentStatus, string, error) {
	report := func(message string) { s.report(ctx, dep, message) }

	report("Connecting to Proxmox datacenter...")
	cluster, err := s.clusterRepo.GetByID(ctx, dep.ClusterID)
	if err != nil {
		return "", "", err
	}
	if cluster == nil {
		return "", "", &ResourceUnavailableError{Kind: "Cluster", Name: fmt.Sprint(dep.ClusterID)}
	}

	report("Locating target node...")
	node, err := s.nodeRepo.GetByID(ctx, dep.NodeID)
	if err != nil {
		return "", "", err
	}
	if node == nil {
		return "", "", &ResourceUnavailableError{Kind: "Node", Name: dep.NodeName, Where: cluster.ClusterName}
	}
	dep.NodeName = node.NodeName

	report("Establishing connection to Proxmox API...")
	client, err := Connect(ctx, s.factory, cluster)
	if err != nil {
		return "", "", err
	}
	if err := s.checkNode(ctx, client, cluster, node.NodeName); err != nil {
		return "", "", err
	}

	report("Allocating VM ID...")
	vmid, err := client.GetNextFreeVMID(ctx)
	if err != nil {
		return "", "", err
	}
	dep.VMID = vmid
	s.write(ctx, dep, repository.ProgressUpdate{VMID: &vmid})
	s.logger.WithContext(ctx).Info("allocated VM ID", zap.Uint32("vmid", vmid), zap.String("vm_name", dep.VmName))

	source, err := s.imageSource(ctx, dep)
	if err != nil {
		return "", "", err
	}
	if source.Clonable() {
		return s.deployFromCloudImage(ctx, client, cluster, node, dep, source.(*model.CloudImage), report)
	}
	return s.deployFromISO(ctx, client, dep, source.(*model.IsoImage), report)
}

// ImageSource 部署镜像来源，按能力区分克隆路径与 ISO 安装路径
type ImageSource interface {
	Clonable() bool
	DisplayName() string
}

func (s *deploymentService) imageSource(ctx context.Context, dep *model.Deployment) (ImageSource, error) {
	switch {
	case dep.CloudImageID != nil:
		image, err := s.cloudImageRepo.GetByID(ctx, *dep.CloudImageID)
		if err != nil {
			return nil, err
		}
		if image == nil {
			return nil, &ResourceUnavailableError{Kind: "Cloud image", Name: fmt.Sprint(*dep.CloudImageID)}
		}
		return image, nil
	case dep.IsoImageID != nil:
		iso, err := s.isoImageRepo.GetByID(ctx, *dep.IsoImageID)
		if err != nil {
			return nil, err
		}
		if iso == nil {
			return nil, &ResourceUnavailableError{Kind: "ISO image", Name: fmt.Sprint(*dep.IsoImageID)}
		}
		return iso, nil
	}
	return nil, &ResourceUnavailableError{Kind: "Image", Name: dep.VmName, Err: errors.New("no image source")}
}

func (s *deploymentService) deployFromCloudImage(
	ctx context.Context,
	client HypervisorClient,
	cluster *model.PveCluster,
	node *model.PveNode,
	dep *model.Deployment,
	image *model.CloudImage,
	report ProgressReporter,
) (model.DeploymentStatus, string, error) {
	report(fmt.Sprintf("Preparing cloud image: %s...", image.DisplayName()))
	dep.Storage = orDefault(dep.Storage, s.cfg.DefaultStorage)

	report("Validating storage availability...")
	if err := s.cloner.ValidateStorage(ctx, client, node.NodeName, dep.Storage); err != nil {
		return "", "", err
	}

	loc, err := s.templates.Resolve(ctx, client, cluster, node, image, dep.Storage, report)
	if err != nil {
		return "", "", err
	}
	if err := s.cloner.Provision(ctx, client, cluster, dep, loc, report); err != nil {
		return "", "", err
	}
	return model.DeploymentStatusRunning, fmt.Sprintf("VM %d deployed successfully from cloud image!", dep.VMID), nil
}

func (s *deploymentService) deployFromISO(ctx context.Context, client HypervisorClient, dep *model.Deployment, iso *model.IsoImage, report ProgressReporter) (model.DeploymentStatus, string, error) {
	started, err := s.isoProvisioner.Provision(ctx, client, dep, iso, report)
	if err != nil {
		return "", "", err
	}
	status := model.DeploymentStatusRunning
	if !started {
		status = model.DeploymentStatusStopped
	}
	return status, "VM created. Access the console to complete OS installation.", nil
}

// checkNode 节点必须在集群当前成员列表中
func (s *deploymentService) checkNode(ctx context.Context, client HypervisorClient, cluster *model.PveCluster, nodeName string) error {
	nodes, err := client.ListNodes(ctx)
	if err != nil {
		s.logger.WithContext(ctx).Warn("could not list cluster nodes", zap.Error(err))
		return nil
	}
	names := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if n.Node == nodeName {
			return nil
		}
		names = append(names, n.Node)
	}
	return &ResourceUnavailableError{Kind: "Node", Name: nodeName, Where: cluster.ClusterName, Available: names}
}

func (s *deploymentService) report(ctx context.Context, dep *model.Deployment, message string) {
	s.write(ctx, dep, repository.ProgressUpdate{StatusMessage: message})
}

func (s *deploymentService) fail(ctx context.Context, dep *model.Deployment, cause error) {
	detail := cause.Error()
	s.write(ctx, dep, repository.ProgressUpdate{
		Status:        model.DeploymentStatusError,
		StatusMessage: "Deployment failed",
		ErrorMessage:  &detail,
	})
}

// write 独立提交一次进度，同时更新内存进度、Redis 镜像与事件流水
func (s *deploymentService) write(ctx context.Context, dep *model.Deployment, upd repository.ProgressUpdate) {
	if err := s.deploymentRepo.UpdateProgress(ctx, dep.Id, upd); err != nil {
		s.logger.WithContext(ctx).Error("failed to persist progress", zap.Int64("id", dep.Id), zap.Error(err))
	}

	if upd.Status != "" {
		dep.Status = upd.Status
	}
	if upd.StatusMessage != "" {
		dep.StatusMessage = upd.StatusMessage
	}
	if upd.ErrorMessage != nil {
		dep.ErrorMessage = *upd.ErrorMessage
	}
	if upd.DeployedAt != nil {
		dep.DeployedAt = upd.DeployedAt
	}
	s.publish(ctx, Progress{
		DeploymentID: dep.Id,
		RunID:        dep.RunID,
		Status:       dep.Status,
		Message:      dep.StatusMessage,
		ErrorDetail:  dep.ErrorMessage,
		VMID:         dep.VMID,
	})
}

func (s *deploymentService) publish(ctx context.Context, p Progress) {
	p.UpdatedAt = time.Now()
	s.store.Put(p)
	if s.mirror != nil {
		if err := s.mirror.Publish(ctx, p); err != nil {
			s.logger.WithContext(ctx).Warn("failed to mirror progress", zap.Int64("id", p.DeploymentID), zap.Error(err))
		}
	}
	if s.eventRepo != nil {
		ev := &model.DeploymentEvent{
			DeploymentID: p.DeploymentID,
			RunID:        p.RunID,
			Status:       p.Status,
			Message:      p.Message,
			Error:        p.ErrorDetail,
			VMID:         p.VMID,
			At:           p.UpdatedAt,
		}
		if err := s.eventRepo.Append(ctx, ev); err != nil {
			s.logger.WithContext(ctx).Warn("failed to append deployment event", zap.Int64("id", p.DeploymentID), zap.Error(err))
		}
	}
}

func (s *deploymentService) GetProgress(ctx context.Context, id int64) (*Progress, error) {
	if p, ok := s.store.Get(id); ok {
		return &p, nil
	}
	if s.mirror != nil {
		p, err := s.mirror.Load(ctx, id)
		if err != nil {
			s.logger.WithContext(ctx).Warn("failed to load mirrored progress", zap.Int64("id", id), zap.Error(err))
		}
		if p != nil {
			return p, nil
		}
	}

	dep, err := s.deploymentRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.WithContext(ctx).Error("failed to get deployment", zap.Int64("id", id), zap.Error(err))
		return nil, v1.ErrInternalServerError
	}
	if dep == nil {
		return nil, v1.ErrDeploymentNotFound
	}
	p := progressFromRecord(dep)
	return &p, nil
}

func (s *deploymentService) WatchProgress(ctx context.Context, id int64) (<-chan Progress, func(), error) {
	if _, err := s.GetProgress(ctx, id); err != nil {
		return nil, nil, err
	}
	ch, cancel := s.store.Subscribe(id)
	return ch, cancel, nil
}

func (s *deploymentService) ListEvents(ctx context.Context, id int64, runID string) ([]*model.DeploymentEvent, error) {
	events, err := s.eventRepo.ListByDeployment(ctx, id, runID)
	if err != nil {
		s.logger.WithContext(ctx).Error("failed to list deployment events", zap.Int64("id", id), zap.Error(err))
		return nil, v1.ErrInternalServerError
	}
	return events, nil
}

func (s *deploymentService) DeleteDeployment(ctx context.Context, id int64) error {
	dep, err := s.deploymentRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.WithContext(ctx).Error("failed to get deployment", zap.Int64("id", id), zap.Error(err))
		return v1.ErrInternalServerError
	}
	if dep == nil {
		return v1.ErrDeploymentNotFound
	}
	if _, running := s.inflight.Load(id); running || dep.Status == model.DeploymentStatusCreating {
		return v1.ErrInvalidOperation
	}
	if dep.Status != model.DeploymentStatusDeleting {
		if !model.CanTransition(dep.Status, model.DeploymentStatusDeleting) {
			return v1.ErrInvalidOperation
		}
		s.write(ctx, dep, repository.ProgressUpdate{
			Status:        model.DeploymentStatusDeleting,
			StatusMessage: "Deleting VM...",
		})
	}

	if dep.VMID != 0 {
		if err := s.destroyVM(ctx, dep); err != nil {
			s.logger.WithContext(ctx).Error("failed to delete VM", zap.Int64("id", id), zap.Uint32("vmid", dep.VMID), zap.Error(err))
			s.fail(ctx, dep, err)
			return err
		}
	}

	if err := s.deploymentRepo.Delete(ctx, id); err != nil {
		s.logger.WithContext(ctx).Error("failed to delete deployment record", zap.Int64("id", id), zap.Error(err))
		return v1.ErrInternalServerError
	}
	s.store.Delete(id)
	if s.mirror != nil {
		if err := s.mirror.Remove(ctx, id); err != nil {
			s.logger.WithContext(ctx).Warn("failed to remove mirrored progress", zap.Int64("id", id), zap.Error(err))
		}
	}
	s.logger.WithContext(ctx).Info("deployment deleted", zap.Int64("id", id), zap.Uint32("vmid", dep.VMID))
	return nil
}

// destroyVM 先停止再删除；虚拟机已不存在视为成功
func (s *deploymentService) destroyVM(ctx context.Context, dep *model.Deployment) error {
	cluster, err := s.clusterRepo.GetByID(ctx, dep.ClusterID)
	if err != nil {
		return err
	}
	if cluster == nil {
		return &ResourceUnavailableError{Kind: "Cluster", Name: fmt.Sprint(dep.ClusterID)}
	}
	client, err := Connect(ctx, s.factory, cluster)
	if err != nil {
		return err
	}
	target := LockTarget{Client: client, Cluster: cluster, NodeName: dep.NodeName, VMID: dep.VMID}

	err = s.locks.ExecuteProactive(ctx, target, func(ctx context.Context) error {
		upid, err := client.StopVM(ctx, dep.NodeName, dep.VMID)
		if err != nil {
			return err
		}
		return waitTask(ctx, client, dep.NodeName, upid, fmt.Sprintf("stop VM %d", dep.VMID), s.cfg.TaskTimeout)
	})
	if err != nil {
		if proxmox.IsNotFound(err) {
			return nil
		}
		// 已经是停止状态等情况，继续删除
		s.logger.WithContext(ctx).Warn("stop VM failed, deleting anyway", zap.Uint32("vmid", dep.VMID), zap.Error(err))
	}

	err = s.locks.Execute(ctx, target, func(ctx context.Context) error {
		upid, err := client.DeleteVM(ctx, dep.NodeName, dep.VMID, true)
		if err != nil {
			return err
		}
		return waitTask(ctx, client, dep.NodeName, upid, fmt.Sprintf("delete VM %d", dep.VMID), s.cfg.TaskTimeout)
	})
	if err != nil && !proxmox.IsNotFound(err) {
		return err
	}
	return nil
}

func (s *deploymentService) PurgeProgress(now time.Time) int {
	return s.store.Purge(now)
}

func (s *deploymentService) AuditTemplates(ctx context.Context) error {
	clusters, err := s.clusterRepo.GetAllEnabled(ctx)
	if err != nil {
		return err
	}
	var errs []error
	for _, cluster := range clusters {
		client, err := Connect(ctx, s.factory, cluster)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		report, err := s.templates.AuditTemplates(ctx, client, cluster)
		if err != nil {
			errs = append(errs, fmt.Errorf("audit %s: %w", cluster.ClusterName, err))
			continue
		}
		s.logger.WithContext(ctx).Info("template audit finished",
			zap.String("cluster", cluster.ClusterName),
			zap.Int("checked", report.Checked),
			zap.Int("misplaced", report.Misplaced),
			zap.Int("corrupt", report.Corrupt))
	}
	return errors.Join(errs...)
}

func (s *deploymentService) RecoverInterrupted(ctx context.Context) (int, error) {
	deps, err := s.deploymentRepo.ListByStatus(ctx, model.DeploymentStatusCreating)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, dep := range deps {
		if _, ok := s.inflight.Load(dep.Id); ok {
			continue
		}
		s.fail(ctx, dep, errors.New("deployment interrupted by service restart"))
		n++
	}
	return n, nil
}

func boolInt8(b bool) int8 {
	if b {
		return 1
	}
	return 0
}

func optBool(b *bool, def bool) int8 {
	if b == nil {
		return boolInt8(def)
	}
	return boolInt8(*b)
}
