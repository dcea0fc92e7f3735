package proxmox

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// GetTaskStatus 获取任务状态
// GET /api2/json/nodes/{node}/tasks/{upid}/status
func (c *ProxmoxClient) GetTaskStatus(ctx context.Context, nodeName, upid string) (map[string]interface{}, error) {
	path := fmt.Sprintf("/nodes/%s/tasks/%s/status", nodeName, upid)
	var status map[string]interface{}
	if err := c.Get(ctx, path, &status); err != nil {
		return nil, err
	}
	return status, nil
}

// WaitForTask 轮询任务直到 status=stopped；exitstatus 不是 OK 或 WARNINGS 时返回 *TaskError。
// upid 为空表示接口是同步完成的，直接返回。
func (c *ProxmoxClient) WaitForTask(ctx context.Context, nodeName, upid string, timeout time.Duration) error {
	if upid == "" {
		return nil
	}
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	interval := c.PollInterval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		status, err := c.GetTaskStatus(waitCtx, nodeName, upid)
		if err != nil && !errors.Is(waitCtx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("failed to get task status %s: %w", upid, err)
		}
		if err == nil && status["status"] == "stopped" {
			exit, _ := status["exitstatus"].(string)
			if !taskSucceeded(exit) {
				return &TaskError{UPID: upid, ExitStatus: exit}
			}
			return nil
		}

		select {
		case <-waitCtx.Done():
			if errors.Is(waitCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
				return fmt.Errorf("%w: %s after %s", ErrTaskTimeout, upid, timeout)
			}
			return waitCtx.Err()
		case <-ticker.C:
		}
	}
}

// taskSucceeded 带告警完成的任务 exitstatus 形如 "WARNINGS: 2"
func taskSucceeded(exit string) bool {
	return exit == "OK" || strings.HasPrefix(exit, "WARNINGS:")
}
