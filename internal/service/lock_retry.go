package service

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"pvedeploy/internal/metrics"
	"pvedeploy/internal/model"
	"pvedeploy/pkg/log"
	"pvedeploy/pkg/nodeshell"
	"pvedeploy/pkg/proxmox"

	"go.uber.org/zap"
)

type LockMode int

const (
	LockModeNone LockMode = iota
	// LockModeObject 配置里的 lock 字段（clone/migrate/...）
	LockModeObject
	// LockModeFile /var/lock/qemu-server/lock-<id>.conf 残留
	LockModeFile
)

func (m LockMode) String() string {
	switch m {
	case LockModeObject:
		return "object"
	case LockModeFile:
		return "file"
	}
	return "none"
}

var lockFileRe = regexp.MustCompile(`lock-(\d+)\.conf`)

// ClassifyLockError 识别两种锁冲突；文件锁同时返回被锁的 vmid
func ClassifyLockError(err error) (LockMode, uint32) {
	if err == nil {
		return LockModeNone, 0
	}
	msg := err.Error()
	if strings.Contains(msg, "can't lock file") {
		if m := lockFileRe.FindStringSubmatch(msg); m != nil {
			id, perr := strconv.ParseUint(m[1], 10, 32)
			if perr == nil {
				return LockModeFile, uint32(id)
			}
		}
	}
	lower := strings.ToLower(msg)
	if strings.Contains(lower, "vm is locked") || strings.Contains(lower, "is locked (") || strings.Contains(lower, " is locked") {
		return LockModeObject, 0
	}
	return LockModeNone, 0
}

// LockTarget 被包裹操作作用的虚拟机
type LockTarget struct {
	Client   HypervisorClient
	Cluster  *model.PveCluster
	NodeName string
	VMID     uint32
}

type LockRetryExecutor struct {
	shell       NodeShell
	resolver    *NodeAddressResolver
	logger      *log.Logger
	maxAttempts int
	settleDelay time.Duration
	cmdTimeout  time.Duration
}

type LockRetryConfig struct {
	MaxAttempts int
	SettleDelay time.Duration
}

func NewLockRetryExecutor(shell NodeShell, resolver *NodeAddressResolver, logger *log.Logger, cfg LockRetryConfig) *LockRetryExecutor {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 2
	}
	return &LockRetryExecutor{
		shell:       shell,
		resolver:    resolver,
		logger:      logger,
		maxAttempts: cfg.MaxAttempts,
		settleDelay: cfg.SettleDelay,
		cmdTimeout:  30 * time.Second,
	}
}

type retryState int

const (
	stateAttempt retryState = iota
	stateCleanup
)

// Execute attempt → success | 锁冲突 → cleanup → attempt | 其他错误 → abort
func (e *LockRetryExecutor) Execute(ctx context.Context, target LockTarget, op func(ctx context.Context) error) error {
	var (
		state    = stateAttempt
		attempts int
		lastErr  error
		mode     LockMode
		lockedID uint32
	)

	for {
		switch state {
		case stateAttempt:
			attempts++
			lastErr = op(ctx)
			if lastErr == nil {
				if attempts > 1 {
					metrics.RecordLockContention(mode.String(), metrics.LockCleared)
				}
				return nil
			}
			mode, lockedID = ClassifyLockError(lastErr)
			// 没有目标 vmid 时对象锁无法定位
			if mode == LockModeNone || (mode == LockModeObject && target.VMID == 0) {
				return lastErr
			}
			if attempts >= e.maxAttempts {
				metrics.RecordLockContention(mode.String(), metrics.LockExhausted)
				return &LockContentionError{VMID: target.VMID, Mode: mode, Attempts: attempts, Err: lastErr}
			}
			e.logger.WithContext(ctx).Warn("lock contention, clearing and retrying",
				zap.Uint32("vmid", target.VMID),
				zap.String("mode", mode.String()),
				zap.Uint32("locked_id", lockedID),
				zap.Error(lastErr))
			state = stateCleanup

		case stateCleanup:
			var err error
			if mode == LockModeFile {
				if err = e.ClearFileLock(ctx, target, lockedID); err == nil {
					err = sleepCtx(ctx, e.settleDelay)
				}
			} else {
				_, err = e.ClearObjectLock(ctx, target)
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if err != nil {
				e.logger.WithContext(ctx).Warn("lock cleanup failed, retrying anyway",
					zap.Uint32("vmid", target.VMID), zap.Error(err))
			}
			state = stateAttempt
		}
	}
}

// ExecuteProactive 先清理对象锁再执行，用于克隆、改配置、扩容等容易与锁竞争的操作
func (e *LockRetryExecutor) ExecuteProactive(ctx context.Context, target LockTarget, op func(ctx context.Context) error) error {
	if target.VMID != 0 {
		if _, err := e.ClearObjectLock(ctx, target); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			e.logger.WithContext(ctx).Warn("proactive unlock failed", zap.Uint32("vmid", target.VMID), zap.Error(err))
		}
	}
	return e.Execute(ctx, target, op)
}

// ClearObjectLock 配置中存在 lock 时在所在节点执行 qm unlock，等待后复查；返回是否执行了解锁
func (e *LockRetryExecutor) ClearObjectLock(ctx context.Context, target LockTarget) (bool, error) {
	if target.VMID == 0 {
		return false, nil
	}
	config, err := target.Client.GetVMConfig(ctx, target.NodeName, target.VMID)
	if err != nil {
		if proxmox.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	if configString(config, "lock") == "" {
		return false, nil
	}

	addr, err := e.resolver.Resolve(ctx, target.Client, target.Cluster, target.NodeName)
	if err != nil {
		return false, err
	}
	cmd := nodeshell.NewCommand("qm", "unlock", strconv.FormatUint(uint64(target.VMID), 10))
	if _, err := runChecked(ctx, e.shell, addr, cmd, e.cmdTimeout); err != nil {
		return false, err
	}
	e.logger.WithContext(ctx).Info("cleared VM lock",
		zap.Uint32("vmid", target.VMID),
		zap.String("node", target.NodeName),
		zap.String("lock", configString(config, "lock")))

	if err := sleepCtx(ctx, e.settleDelay); err != nil {
		return true, err
	}
	if after, err := target.Client.GetVMConfig(ctx, target.NodeName, target.VMID); err == nil && configString(after, "lock") != "" {
		e.logger.WithContext(ctx).Warn("lock still present after qm unlock",
			zap.Uint32("vmid", target.VMID), zap.String("lock", configString(after, "lock")))
	}
	return true, nil
}

// ClearFileLock 删除 lockedID 的锁文件（在持有该 id 的节点上），然后清理目标的对象锁
func (e *LockRetryExecutor) ClearFileLock(ctx context.Context, target LockTarget, lockedID uint32) error {
	holder := e.locateVM(ctx, target, lockedID)
	addr, err := e.resolver.Resolve(ctx, target.Client, target.Cluster, holder)
	if err != nil {
		return err
	}
	path := "/var/lock/qemu-server/lock-" + strconv.FormatUint(uint64(lockedID), 10) + ".conf"
	if _, err := runChecked(ctx, e.shell, addr, nodeshell.NewCommand("rm", "-f", path), e.cmdTimeout); err != nil {
		return err
	}
	e.logger.WithContext(ctx).Info("removed stale lock file",
		zap.Uint32("locked_id", lockedID), zap.String("node", holder))

	if target.VMID == 0 {
		return nil
	}
	_, err = e.ClearObjectLock(ctx, target)
	return err
}

// locateVM 找到持有 vmid 的节点，找不到时默认目标节点
func (e *LockRetryExecutor) locateVM(ctx context.Context, target LockTarget, vmid uint32) string {
	if vmid == target.VMID {
		return target.NodeName
	}
	nodes, err := target.Client.ListNodes(ctx)
	if err != nil {
		return target.NodeName
	}
	for _, n := range nodes {
		if _, err := target.Client.GetVMConfig(ctx, n.Node, vmid); err == nil {
			return n.Node
		}
	}
	return target.NodeName
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// IsLockContention 错误是否为锁冲突（含已耗尽重试）
func IsLockContention(err error) bool {
	var lce *LockContentionError
	if errors.As(err, &lce) {
		return true
	}
	mode, _ := ClassifyLockError(err)
	return mode != LockModeNone
}
