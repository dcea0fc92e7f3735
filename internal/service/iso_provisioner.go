package service

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"

	"pvedeploy/internal/metrics"
	"pvedeploy/internal/model"
	"pvedeploy/pkg/log"

	"go.uber.org/zap"
)

// SanitizeMediaName 存储层对文件名敏感，只保留字母、数字、'_'、'.'、'-'
func SanitizeMediaName(name string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '.' || r == '-' {
			return r
		}
		return '_'
	}, name)
}

type IsoProvisionerConfig struct {
	DefaultStorage    string
	DefaultBridge     string
	DefaultIsoStorage string
	ProgressInterval  time.Duration
	TaskTimeout       time.Duration
}

type IsoProvisioner struct {
	images *ImageStore
	logger *log.Logger
	cfg    IsoProvisionerConfig
}

func NewIsoProvisioner(images *ImageStore, logger *log.Logger, cfg IsoProvisionerConfig) *IsoProvisioner {
	if cfg.DefaultStorage == "" {
		cfg.DefaultStorage = "local-lvm"
	}
	if cfg.DefaultBridge == "" {
		cfg.DefaultBridge = "vmbr0"
	}
	if cfg.DefaultIsoStorage == "" {
		cfg.DefaultIsoStorage = "local"
	}
	if cfg.ProgressInterval <= 0 {
		cfg.ProgressInterval = 500 * time.Millisecond
	}
	if cfg.TaskTimeout <= 0 {
		cfg.TaskTimeout = 5 * time.Minute
	}
	return &IsoProvisioner{images: images, logger: logger, cfg: cfg}
}

// Provision 确保介质存在，创建并启动虚拟机；返回虚拟机是否已启动
func (p *IsoProvisioner) Provision(
	ctx context.Context,
	client HypervisorClient,
	dep *model.Deployment,
	iso *model.IsoImage,
	progress ProgressReporter,
) (bool, error) {
	logger := p.logger.WithContext(ctx).With(zap.Uint32("vmid", dep.VMID), zap.String("node", dep.NodeName))

	progress("Preparing installation media...")
	volume, err := p.ensureMedia(ctx, client, dep, iso, progress)
	if err != nil {
		return false, err
	}

	progress(fmt.Sprintf("Creating VM %d on node %s...", dep.VMID, dep.NodeName))
	upid, err := client.CreateQemuVM(ctx, dep.NodeName, p.createParams(dep, volume))
	if err != nil {
		return false, fmt.Errorf("failed to create VM in Proxmox: %w", err)
	}
	if err := waitTask(ctx, client, dep.NodeName, upid, fmt.Sprintf("create VM %d", dep.VMID), p.cfg.TaskTimeout); err != nil {
		return false, err
	}

	progress("Starting VM...")
	upid, err = client.StartVM(ctx, dep.NodeName, dep.VMID)
	if err == nil {
		err = waitTask(ctx, client, dep.NodeName, upid, fmt.Sprintf("start VM %d", dep.VMID), p.cfg.TaskTimeout)
	}
	if err != nil {
		logger.Warn("failed to start VM", zap.Error(err))
		return false, nil
	}
	return true, nil
}

// ensureMedia 返回 <storage>:iso/<name>，不存在时上传
func (p *IsoProvisioner) ensureMedia(ctx context.Context, client HypervisorClient, dep *model.Deployment, iso *model.IsoImage, progress ProgressReporter) (string, error) {
	storage := dep.IsoStorage
	if storage == "" {
		storage = p.cfg.DefaultIsoStorage
	}
	name := SanitizeMediaName(iso.Filename)
	volume := storage + ":iso/" + name

	content, err := client.GetStorageContent(ctx, dep.NodeName, storage, "iso")
	if err != nil {
		p.logger.WithContext(ctx).Warn("failed to list iso content, uploading", zap.String("storage", storage), zap.Error(err))
	}
	for _, item := range content {
		if configString(item, "volid") == volume {
			progress("ISO found on Proxmox. Preparing VM configuration...")
			return volume, nil
		}
	}

	f, size, err := p.images.OpenISO(ctx, iso)
	if err != nil {
		return "", err
	}
	defer f.Close()

	progress(fmt.Sprintf("Uploading ISO %s to Proxmox (this may take several minutes)...", iso.Name))
	reporter := newUploadReporter(size, p.cfg.ProgressInterval, progress)
	upid, err := client.UploadStorageContent(ctx, dep.NodeName, storage, "iso", name, f, size, reporter.Report)
	if err != nil {
		return "", fmt.Errorf("failed to upload ISO %s to Proxmox: %w", name, err)
	}
	if err := waitTask(ctx, client, dep.NodeName, upid, "upload "+name, p.cfg.TaskTimeout); err != nil {
		return "", err
	}
	metrics.AddUploadBytes(size)
	reporter.Done()
	return volume, nil
}

func (p *IsoProvisioner) createParams(dep *model.Deployment, volume string) url.Values {
	storage := orDefault(dep.Storage, p.cfg.DefaultStorage)
	bridge := orDefault(dep.NetworkBridge, p.cfg.DefaultBridge)

	v := url.Values{}
	v.Set("vmid", strconv.FormatUint(uint64(dep.VMID), 10))
	v.Set("name", dep.VmName)
	v.Set("sockets", strconv.Itoa(orDefaultInt(dep.CPUSockets, 1)))
	v.Set("cores", strconv.Itoa(orDefaultInt(dep.CPUCores, 1)))
	v.Set("memory", strconv.Itoa(orDefaultInt(dep.Memory, 2048)))
	v.Set("scsihw", orDefault(dep.Scsihw, "virtio-scsi-pci"))
	v.Set("scsi0", fmt.Sprintf("%s:%d", storage, orDefaultInt(dep.DiskSize, 32)))
	v.Set("net0", "virtio,bridge="+bridge)
	v.Set("ostype", "l26")
	v.Set("agent", "1")

	cpu := ""
	if dep.CPUType != "" && dep.CPUType != "host" {
		cpu = dep.CPUType
	}
	if dep.CPUFlags != "" {
		cpu = orDefault(cpu, "host") + "," + dep.CPUFlags
	}
	if cpu != "" {
		v.Set("cpu", cpu)
	}
	if dep.Numa == 1 {
		v.Set("numa", "1")
	}
	if dep.Bios == "ovmf" {
		v.Set("bios", "ovmf")
	}
	if dep.Machine != "" && dep.Machine != "pc" {
		v.Set("machine", dep.Machine)
	}
	if dep.Vga != "" && dep.Vga != "std" {
		v.Set("vga", dep.Vga)
	}
	v.Set("boot", NormalizeBootOrder(orDefault(dep.BootOrder, "cdn")))
	for i, nic := range parseNetworkInterfaces(dep.NetworkInterfaces) {
		v.Set(fmt.Sprintf("net%d", i+1), nicValue(nic))
	}
	v.Set("ide2", volume+",media=cdrom")
	return v
}

// uploadReporter 把上传进度节流为进度消息
type uploadReporter struct {
	mu       sync.Mutex
	total    int64
	sent     int64
	started  time.Time
	last     time.Time
	interval time.Duration
	report   ProgressReporter
}

func newUploadReporter(total int64, interval time.Duration, report ProgressReporter) *uploadReporter {
	now := time.Now()
	return &uploadReporter{total: total, started: now, interval: interval, report: report}
}

const mb = 1024 * 1024

func (r *uploadReporter) Report(sent, total int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if total > 0 {
		r.total = total
	}
	r.sent = sent
	now := time.Now()
	if now.Sub(r.last) < r.interval && sent != r.total {
		return
	}
	r.last = now

	elapsed := now.Sub(r.started).Seconds()
	done := float64(sent) / mb
	speed := 0.0
	if elapsed > 0 {
		speed = done / elapsed
	}
	pct := 0
	if r.total > 0 {
		pct = int(sent * 100 / r.total)
	}
	eta := ""
	if speed > 0 {
		if secs := (float64(r.total)/mb - done) / speed; secs > 1 {
			eta = fmt.Sprintf(" - ETA %ds", int(secs))
		}
	}
	r.report(fmt.Sprintf("Uploading: %d%% (%.1f/%.1f MB @ %.1f MB/s%s)", pct, done, float64(r.total)/mb, speed, eta))
}

func (r *uploadReporter) Done() {
	r.mu.Lock()
	defer r.mu.Unlock()
	elapsed := time.Since(r.started).Seconds()
	speed := 0.0
	if elapsed > 0 {
		speed = float64(r.sent) / mb / elapsed
	}
	r.report(fmt.Sprintf("Upload complete! (%.1f MB/s average)", speed))
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func orDefaultInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
