package service

import (
	"fmt"
	"strings"
	"time"
)

// ConnectivityError 无法连接或认证 Proxmox API
type ConnectivityError struct {
	Cluster string
	Err     error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("Failed to connect to Proxmox cluster %s: %v", e.Cluster, e.Err)
}

func (e *ConnectivityError) Unwrap() error { return e.Err }

// ResourceUnavailableError 节点、存储、镜像等引用无效，Available 列出可选项
type ResourceUnavailableError struct {
	Kind      string
	Name      string
	Where     string
	Available []string
	Err       error
}

func (e *ResourceUnavailableError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s '%s' is not available", e.Kind, e.Name)
	if e.Where != "" {
		fmt.Fprintf(&b, " on %s", e.Where)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	if len(e.Available) > 0 {
		fmt.Fprintf(&b, ". Available %s: %s", strings.ToLower(e.Kind), strings.Join(e.Available, ", "))
	}
	return b.String()
}

func (e *ResourceUnavailableError) Unwrap() error { return e.Err }

// LockContentionError 清锁重试次数用尽
type LockContentionError struct {
	VMID     uint32
	Mode     LockMode
	Attempts int
	Err      error
}

func (e *LockContentionError) Error() string {
	return fmt.Sprintf("VM %d still locked (%s) after %d attempts: %v", e.VMID, e.Mode, e.Attempts, e.Err)
}

func (e *LockContentionError) Unwrap() error { return e.Err }

// TimeoutError 克隆或任务等待超时，不重试
type TimeoutError struct {
	Op    string
	After time.Duration
	Err   error
}

func (e *TimeoutError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s did not complete within %s: %v", e.Op, e.After, e.Err)
	}
	return fmt.Sprintf("%s did not complete within %s", e.Op, e.After)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

// PrivilegedExecutionError 特权命令非零退出，保留原始 stderr
type PrivilegedExecutionError struct {
	Node     string
	Command  string
	ExitCode int
	Stderr   string
}

func (e *PrivilegedExecutionError) Error() string {
	return fmt.Sprintf("command %q on %s exited with %d: %s", e.Command, e.Node, e.ExitCode, strings.TrimSpace(e.Stderr))
}
