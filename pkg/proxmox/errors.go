package proxmox

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var ErrTaskTimeout = errors.New("proxmox task wait timed out")

type APIError struct {
	StatusCode int
	Message    string
	Errors     map[string]interface{}
}

func (e *APIError) Error() string {
	if len(e.Errors) > 0 {
		return fmt.Sprintf("proxmox API error (status %d): %s %v", e.StatusCode, e.Message, e.Errors)
	}
	return fmt.Sprintf("proxmox API error (status %d): %s", e.StatusCode, e.Message)
}

// TaskError 任务结束但 exitstatus 不是 OK
type TaskError struct {
	UPID       string
	ExitStatus string
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("task %s failed: %s", e.UPID, e.ExitStatus)
}

// IsNotFound 对象不存在；PVE 对不存在的虚拟机配置返回 500 + "does not exist"
func IsNotFound(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	if apiErr.StatusCode == http.StatusNotFound {
		return true
	}
	msg := strings.ToLower(apiErr.Message)
	return strings.Contains(msg, "does not exist") || strings.Contains(msg, "not exist")
}
