package service

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"pvedeploy/internal/model"
	"pvedeploy/pkg/nodeshell"
	"pvedeploy/pkg/proxmox"
)

type fakeVM struct {
	node       string
	config     map[string]interface{}
	clonePolls int
}

// fakeCluster 内存中的 Proxmox 集群
type fakeCluster struct {
	mu sync.Mutex

	nodes      []string
	storages   []proxmox.StorageInfo
	vms        map[uint32]*fakeVM
	fileLocks  map[uint32]bool
	isoContent []string
	nextID     uint32
	seq        int

	cloneDelay int // clone 锁持续的 GetVMConfig 次数
	connectErr error
	startErr   error
	deleteErr  map[string]error // node -> error
	taskErr    map[string]error // op -> error

	creates  int
	deletes  int
	clones   int
	uploads  int
	updates  []url.Values
	resizes  []string
	uploaded []string
}

func newFakeCluster(nodes ...string) *fakeCluster {
	return &fakeCluster{
		nodes: nodes,
		storages: []proxmox.StorageInfo{
			{Storage: "local", Type: "dir", Active: 1, Enabled: 1},
			{Storage: "local-lvm", Type: "lvmthin", Active: 1, Enabled: 1},
		},
		vms:       make(map[uint32]*fakeVM),
		fileLocks: make(map[uint32]bool),
		nextID:    100,
		deleteErr: make(map[string]error),
		taskErr:   make(map[string]error),
	}
}

func notExist(node string, vmid uint32) error {
	return &proxmox.APIError{StatusCode: 500, Message: fmt.Sprintf("Configuration file 'nodes/%s/qemu-server/%d.conf' does not exist", node, vmid)}
}

func (c *fakeCluster) upid(node, op string, vmid uint32) string {
	c.seq++
	return fmt.Sprintf("UPID:%s:%08X:%s:%d:root@pam:", node, c.seq, op, vmid)
}

func (c *fakeCluster) lookup(node string, vmid uint32) (*fakeVM, error) {
	vm, ok := c.vms[vmid]
	if !ok || vm.node != node {
		return nil, notExist(node, vmid)
	}
	return vm, nil
}

func copyConfig(in map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// put 直接放置一台虚拟机
func (c *fakeCluster) put(node string, vmid uint32, config map[string]interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if config == nil {
		config = map[string]interface{}{}
	}
	c.vms[vmid] = &fakeVM{node: node, config: config}
}

func (c *fakeCluster) vm(vmid uint32) (string, map[string]interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	vm, ok := c.vms[vmid]
	if !ok {
		return "", nil, false
	}
	return vm.node, copyConfig(vm.config), true
}

func (c *fakeCluster) setLock(vmid uint32, lock string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if vm, ok := c.vms[vmid]; ok {
		vm.config["lock"] = lock
	}
}

func (c *fakeCluster) unlock(vmid uint32) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	vm, ok := c.vms[vmid]
	if !ok {
		return false
	}
	delete(vm.config, "lock")
	return true
}

func (c *fakeCluster) importDisk(vmid uint32, storage string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	vm, ok := c.vms[vmid]
	if !ok {
		return false
	}
	vm.config["unused0"] = fmt.Sprintf("%s:vm-%d-disk-0", storage, vmid)
	return true
}

func (c *fakeCluster) removeFileLock(vmid uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.fileLocks, vmid)
}

func (c *fakeCluster) counts() (creates, deletes, clones int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.creates, c.deletes, c.clones
}

func (c *fakeCluster) GetVersion(ctx context.Context) (map[string]interface{}, error) {
	if c.connectErr != nil {
		return nil, c.connectErr
	}
	return map[string]interface{}{"version": "8.2.4"}, nil
}

func (c *fakeCluster) ListNodes(ctx context.Context) ([]proxmox.NodeInfo, error) {
	out := make([]proxmox.NodeInfo, 0, len(c.nodes))
	for _, n := range c.nodes {
		out = append(out, proxmox.NodeInfo{Node: n, Status: "online"})
	}
	return out, nil
}

func (c *fakeCluster) GetNodeStorage(ctx context.Context, nodeName string) ([]proxmox.StorageInfo, error) {
	return c.storages, nil
}

func (c *fakeCluster) GetNodeNetworks(ctx context.Context, nodeName string) ([]map[string]interface{}, error) {
	return []map[string]interface{}{{"iface": "vmbr0", "type": "bridge"}}, nil
}

func (c *fakeCluster) GetClusterStatus(ctx context.Context) ([]map[string]interface{}, error) {
	out := []map[string]interface{}{{"type": "cluster", "name": "lab"}}
	for i, n := range c.nodes {
		out = append(out, map[string]interface{}{"type": "node", "name": n, "ip": fmt.Sprintf("10.0.0.%d", i+1)})
	}
	return out, nil
}

func (c *fakeCluster) GetNextFreeVMID(ctx context.Context) (uint32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for {
		id := c.nextID
		c.nextID++
		if _, used := c.vms[id]; !used {
			return id, nil
		}
	}
}

func (c *fakeCluster) CreateQemuVM(ctx context.Context, nodeName string, params url.Values) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id, err := strconv.ParseUint(params.Get("vmid"), 10, 32)
	if err != nil {
		return "", &proxmox.APIError{StatusCode: 400, Message: "invalid vmid"}
	}
	vmid := uint32(id)
	if vm, ok := c.vms[vmid]; ok {
		return "", &proxmox.APIError{StatusCode: 500, Message: fmt.Sprintf("VM %d already exists on node '%s'", vmid, vm.node)}
	}
	config := map[string]interface{}{}
	for k := range params {
		if k != "vmid" {
			config[k] = params.Get(k)
		}
	}
	c.vms[vmid] = &fakeVM{node: nodeName, config: config}
	c.creates++
	return c.upid(nodeName, "qmcreate", vmid), nil
}

func (c *fakeCluster) WaitForTask(ctx context.Context, nodeName, upid string, timeout time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for op, err := range c.taskErr {
		if strings.Contains(upid, ":"+op+":") {
			return err
		}
	}
	return nil
}

func (c *fakeCluster) GetVMConfig(ctx context.Context, nodeName string, vmID uint32) (map[string]interface{}, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	vm, err := c.lookup(nodeName, vmID)
	if err != nil {
		return nil, err
	}
	if vm.clonePolls > 0 {
		vm.clonePolls--
		if vm.clonePolls == 0 {
			delete(vm.config, "lock")
			vm.config["scsi0"] = fmt.Sprintf("local-lvm:vm-%d-disk-0,size=10G", vmID)
		}
	}
	return copyConfig(vm.config), nil
}

func (c *fakeCluster) UpdateVMConfig(ctx context.Context, nodeName string, vmID uint32, params url.Values) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	vm, err := c.lookup(nodeName, vmID)
	if err != nil {
		return err
	}
	if lock, ok := vm.config["lock"].(string); ok && lock != "" {
		return &proxmox.APIError{StatusCode: 500, Message: fmt.Sprintf("VM is locked (%s)", lock)}
	}
	for k := range params {
		vm.config[k] = params.Get(k)
	}
	if vol, ok := params["scsi0"]; ok && len(vol) > 0 && vm.config["unused0"] == vol[0] {
		delete(vm.config, "unused0")
	}
	c.updates = append(c.updates, params)
	return nil
}

func (c *fakeCluster) CloneVM(ctx context.Context, nodeName string, sourceVMID uint32, req *proxmox.CloneVMRequest) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fileLocks[sourceVMID] {
		return "", &proxmox.APIError{StatusCode: 500, Message: fmt.Sprintf("can't lock file '/var/lock/qemu-server/lock-%d.conf' - got timeout", sourceVMID)}
	}
	src, err := c.lookup(nodeName, sourceVMID)
	if err != nil {
		return "", err
	}
	if _, ok := c.vms[req.NewID]; ok {
		return "", &proxmox.APIError{StatusCode: 500, Message: fmt.Sprintf("VM %d already exists", req.NewID)}
	}
	config := copyConfig(src.config)
	delete(config, "template")
	delete(config, "scsi0")
	config["name"] = req.Name
	config["lock"] = "clone"
	target := req.Target
	if target == "" {
		target = nodeName
	}
	vm := &fakeVM{node: target, config: config, clonePolls: c.cloneDelay}
	if vm.clonePolls == 0 {
		delete(config, "lock")
		config["scsi0"] = fmt.Sprintf("%s:vm-%d-disk-0,size=10G", req.Storage, req.NewID)
	}
	c.vms[req.NewID] = vm
	c.clones++
	return c.upid(nodeName, "qmclone", sourceVMID), nil
}

func (c *fakeCluster) ResizeVMDisk(ctx context.Context, nodeName string, vmID uint32, disk, size string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := c.lookup(nodeName, vmID); err != nil {
		return "", err
	}
	c.resizes = append(c.resizes, disk+" "+size)
	return c.upid(nodeName, "resize", vmID), nil
}

func (c *fakeCluster) StartVM(ctx context.Context, nodeName string, vmID uint32) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := c.lookup(nodeName, vmID); err != nil {
		return "", err
	}
	if c.startErr != nil {
		return "", c.startErr
	}
	return c.upid(nodeName, "qmstart", vmID), nil
}

func (c *fakeCluster) StopVM(ctx context.Context, nodeName string, vmID uint32) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := c.lookup(nodeName, vmID); err != nil {
		return "", err
	}
	return c.upid(nodeName, "qmstop", vmID), nil
}

func (c *fakeCluster) ShutdownVM(ctx context.Context, nodeName string, vmID uint32) (string, error) {
	return c.StopVM(ctx, nodeName, vmID)
}

func (c *fakeCluster) RebootVM(ctx context.Context, nodeName string, vmID uint32) (string, error) {
	return c.StartVM(ctx, nodeName, vmID)
}

func (c *fakeCluster) DeleteVM(ctx context.Context, nodeName string, vmID uint32, purge bool) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.deleteErr[nodeName]; err != nil {
		return "", err
	}
	if _, err := c.lookup(nodeName, vmID); err != nil {
		return "", err
	}
	delete(c.vms, vmID)
	c.deletes++
	return c.upid(nodeName, "qmdestroy", vmID), nil
}

func (c *fakeCluster) ConvertToTemplate(ctx context.Context, nodeName string, vmID uint32) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	vm, err := c.lookup(nodeName, vmID)
	if err != nil {
		return "", err
	}
	vm.config["template"] = float64(1)
	return c.upid(nodeName, "qmtemplate", vmID), nil
}

func (c *fakeCluster) GetStorageContent(ctx context.Context, nodeName, storage, content string) ([]map[string]interface{}, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []map[string]interface{}
	for _, volid := range c.isoContent {
		out = append(out, map[string]interface{}{"volid": volid, "content": content})
	}
	return out, nil
}

func (c *fakeCluster) UploadStorageContent(ctx context.Context, nodeName, storage, content, filename string, file io.Reader, size int64, progress proxmox.ProgressFunc) (string, error) {
	n, err := io.Copy(io.Discard, file)
	if err != nil {
		return "", err
	}
	if progress != nil {
		progress(n, size)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.uploads++
	c.isoContent = append(c.isoContent, storage+":"+content+"/"+filename)
	c.uploaded = append(c.uploaded, filename)
	return c.upid(nodeName, "imgcopy", 0), nil
}

// occupants vmid 所在的节点
func (c *fakeCluster) occupants(vmid uint32) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []string
	if vm, ok := c.vms[vmid]; ok {
		out = append(out, vm.node)
	}
	sort.Strings(out)
	return out
}

type fakeFactory struct {
	client HypervisorClient
	err    error
}

func (f fakeFactory) ForCluster(*model.PveCluster) (HypervisorClient, error) {
	return f.client, f.err
}

// fakeShell 按命令名模拟节点上的特权命令
type fakeShell struct {
	cluster *fakeCluster

	mu       sync.Mutex
	commands []string
	fail     map[string]int // 命令名 -> 退出码
}

func newFakeShell(cluster *fakeCluster) *fakeShell {
	return &fakeShell{cluster: cluster, fail: make(map[string]int)}
}

func (s *fakeShell) RunPrivileged(ctx context.Context, nodeAddress string, cmd nodeshell.Command, timeout time.Duration) (*nodeshell.Result, error) {
	if cmd.Stdin != nil {
		if _, err := io.Copy(io.Discard, cmd.Stdin); err != nil {
			return nil, err
		}
	}
	s.mu.Lock()
	s.commands = append(s.commands, nodeAddress+" "+cmd.String())
	code, failing := s.fail[cmd.Name]
	s.mu.Unlock()
	if failing {
		return &nodeshell.Result{ExitCode: code, Stderr: cmd.Name + ": failed"}, nil
	}

	switch cmd.Name {
	case "qm":
		if len(cmd.Args) < 2 {
			break
		}
		id, _ := strconv.ParseUint(cmd.Args[1], 10, 32)
		switch cmd.Args[0] {
		case "unlock":
			if !s.cluster.unlock(uint32(id)) {
				return &nodeshell.Result{ExitCode: 2, Stderr: "Configuration file does not exist"}, nil
			}
		case "importdisk":
			if len(cmd.Args) < 4 || !s.cluster.importDisk(uint32(id), cmd.Args[3]) {
				return &nodeshell.Result{ExitCode: 2, Stderr: "Configuration file does not exist"}, nil
			}
		}
	case "rm":
		path := cmd.Args[len(cmd.Args)-1]
		if m := lockFileRe.FindStringSubmatch(path); m != nil {
			id, _ := strconv.ParseUint(m[1], 10, 32)
			s.cluster.removeFileLock(uint32(id))
		}
	}
	return &nodeshell.Result{}, nil
}

func (s *fakeShell) ran(prefix string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.commands {
		if i := strings.Index(c, " "); i >= 0 && strings.HasPrefix(c[i+1:], prefix) {
			n++
		}
	}
	return n
}

// recorder 收集进度消息
type recorder struct {
	mu       sync.Mutex
	messages []string
}

func (r *recorder) report(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, message)
}

func (r *recorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.messages...)
}
