package nodeshell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/spf13/viper"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

const (
	defaultPort        = 22
	defaultUser        = "root"
	defaultDialTimeout = 10 * time.Second
	defaultMaxRetries  = 3
	defaultRetryDelay  = time.Second
)

var ErrNoCredentials = errors.New("nodeshell: no private key configured")

type Config struct {
	User       string
	Port       int
	PrivateKey []byte

	// JumpHost host:port，为空时直连节点
	JumpHost string

	DialTimeout time.Duration
	MaxRetries  int
	RetryDelay  time.Duration

	// HostKeyCallback 为空时不校验主机密钥
	HostKeyCallback ssh.HostKeyCallback
}

// Executor 通过 SSH 在 PVE 节点上执行特权命令
type Executor struct {
	config *Config
	signer ssh.Signer
}

func NewExecutor(cfg *Config) (*Executor, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	c := *cfg
	if c.User == "" {
		c.User = defaultUser
	}
	if c.Port == 0 {
		c.Port = defaultPort
	}
	if c.DialTimeout == 0 {
		c.DialTimeout = defaultDialTimeout
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = defaultMaxRetries
	}
	if c.RetryDelay == 0 {
		c.RetryDelay = defaultRetryDelay
	}
	if c.HostKeyCallback == nil {
		c.HostKeyCallback = ssh.InsecureIgnoreHostKey() //nolint:gosec
	}

	e := &Executor{config: &c}
	if len(c.PrivateKey) > 0 {
		signer, err := ssh.ParsePrivateKey(c.PrivateKey)
		if err != nil {
			return nil, fmt.Errorf("failed to parse private key: %w", err)
		}
		e.signer = signer
	}
	return e, nil
}

// NewExecutorFromConfig 读取 shell.* 配置
func NewExecutorFromConfig(conf *viper.Viper) (*Executor, error) {
	cfg := &Config{
		User:        conf.GetString("shell.user"),
		Port:        conf.GetInt("shell.port"),
		JumpHost:    conf.GetString("shell.jump_host"),
		DialTimeout: conf.GetDuration("shell.dial_timeout"),
		MaxRetries:  conf.GetInt("shell.max_retries"),
	}
	if keyFile := conf.GetString("shell.private_key_file"); keyFile != "" {
		key, err := os.ReadFile(keyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read private key %s: %w", keyFile, err)
		}
		cfg.PrivateKey = key
	}
	if hostsFile := conf.GetString("shell.known_hosts_file"); hostsFile != "" {
		cb, err := knownhosts.New(hostsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load known hosts %s: %w", hostsFile, err)
		}
		cfg.HostKeyCallback = cb
	}
	return NewExecutor(cfg)
}

// RunPrivileged 在 nodeAddress 上执行命令。
// 传输失败返回 error；命令非零退出返回 Result 且 error 为 nil。
func (e *Executor) RunPrivileged(ctx context.Context, nodeAddress string, cmd Command, timeout time.Duration) (*Result, error) {
	if e.signer == nil {
		return nil, ErrNoCredentials
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	client, err := e.connect(ctx, nodeAddress)
	if err != nil {
		return nil, err
	}
	defer func() { _ = client.Close() }()

	session, err := client.NewSession()
	if err != nil {
		return nil, fmt.Errorf("failed to create SSH session on %s: %w", nodeAddress, err)
	}
	defer func() { _ = session.Close() }()

	var stdout, stderr bytes.Buffer
	session.Stdout = &stdout
	session.Stderr = &stderr
	if cmd.Stdin != nil {
		session.Stdin = cmd.Stdin
	}

	done := make(chan error, 1)
	go func() {
		done <- session.Run(cmd.String())
	}()

	select {
	case <-ctx.Done():
		_ = session.Signal(ssh.SIGKILL)
		_ = client.Close()
		return nil, fmt.Errorf("command %q on %s: %w", cmd.Name, nodeAddress, ctx.Err())
	case runErr := <-done:
		res := &Result{Stdout: stdout.String(), Stderr: stderr.String()}
		if runErr == nil {
			return res, nil
		}
		var exitErr *ssh.ExitError
		if errors.As(runErr, &exitErr) {
			res.ExitCode = exitErr.ExitStatus()
			return res, nil
		}
		return nil, fmt.Errorf("command %q on %s: %w", cmd.Name, nodeAddress, runErr)
	}
}

type chainedClient struct {
	*ssh.Client
	jump *ssh.Client
}

func (c *chainedClient) Close() error {
	err := c.Client.Close()
	if c.jump != nil {
		_ = c.jump.Close()
	}
	return err
}

func (e *Executor) clientConfig() *ssh.ClientConfig {
	return &ssh.ClientConfig{
		User:            e.config.User,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(e.signer)},
		HostKeyCallback: e.config.HostKeyCallback,
		Timeout:         e.config.DialTimeout,
	}
}

func (e *Executor) address(host string) string {
	if _, _, err := net.SplitHostPort(host); err == nil {
		return host
	}
	return net.JoinHostPort(host, strconv.Itoa(e.config.Port))
}

// connect 建立连接，失败时指数退避重试；认证失败不重试
func (e *Executor) connect(ctx context.Context, nodeAddress string) (*chainedClient, error) {
	addr := e.address(nodeAddress)
	cfg := e.clientConfig()

	var client *chainedClient
	op := func() error {
		c, err := e.dial(addr, cfg)
		if err != nil {
			if strings.Contains(err.Error(), "unable to authenticate") {
				return backoff.Permanent(err)
			}
			return err
		}
		client = c
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = e.config.RetryDelay
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(e.config.MaxRetries)), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		return nil, fmt.Errorf("failed to establish SSH connection to %s: %w", addr, err)
	}
	return client, nil
}

func (e *Executor) dial(addr string, cfg *ssh.ClientConfig) (*chainedClient, error) {
	if e.config.JumpHost == "" {
		c, err := ssh.Dial("tcp", addr, cfg)
		if err != nil {
			return nil, err
		}
		return &chainedClient{Client: c}, nil
	}

	jump, err := ssh.Dial("tcp", e.address(e.config.JumpHost), cfg)
	if err != nil {
		return nil, fmt.Errorf("jump host: %w", err)
	}
	conn, err := jump.Dial("tcp", addr)
	if err != nil {
		_ = jump.Close()
		return nil, err
	}
	ncc, chans, reqs, err := ssh.NewClientConn(conn, addr, cfg)
	if err != nil {
		_ = conn.Close()
		_ = jump.Close()
		return nil, err
	}
	return &chainedClient{Client: ssh.NewClient(ncc, chans, reqs), jump: jump}, nil
}
