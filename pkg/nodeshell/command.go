package nodeshell

import (
	"io"
	"strings"
)

// Command 以 argv 形式描述一次特权命令，避免拼接字符串
type Command struct {
	Name  string
	Args  []string
	Stdin io.Reader
}

func NewCommand(name string, args ...string) Command {
	return Command{Name: name, Args: args}
}

// WithStdin 返回一个带标准输入的副本
func (c Command) WithStdin(r io.Reader) Command {
	c.Stdin = r
	return c
}

// String 渲染为远端 shell 可执行的命令行，每个参数都做单引号转义
func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, Quote(c.Name))
	for _, a := range c.Args {
		parts = append(parts, Quote(a))
	}
	return strings.Join(parts, " ")
}

// Quote POSIX 单引号转义
func Quote(s string) string {
	if s == "" {
		return "''"
	}
	if isSafe(s) {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func isSafe(s string) bool {
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case strings.ContainsRune("-_./:=,+@%", r):
		default:
			return false
		}
	}
	return true
}

// Result 远端命令的执行结果
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

func (r *Result) Success() bool {
	return r != nil && r.ExitCode == 0
}
