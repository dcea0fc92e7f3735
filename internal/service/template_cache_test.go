package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"pvedeploy/internal/mocks"
	"pvedeploy/internal/model"
	"pvedeploy/pkg/log"

	"github.com/golang/mock/gomock"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubImageRepo struct {
	mu     sync.Mutex
	images []*model.CloudImage
	status map[int64]string
}

func (r *stubImageRepo) GetByID(ctx context.Context, id int64) (*model.CloudImage, error) {
	for _, img := range r.images {
		if img.Id == id {
			return img, nil
		}
	}
	return nil, nil
}

func (r *stubImageRepo) List(ctx context.Context) ([]*model.CloudImage, error) {
	return r.images, nil
}

func (r *stubImageRepo) UpdateDownload(ctx context.Context, id int64, status string, progress int, storagePath string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.status == nil {
		r.status = make(map[int64]string)
	}
	r.status[id] = status
	return nil
}

var (
	node1 = &model.PveNode{Id: 1, NodeName: "pve1", ClusterID: 1}
	node2 = &model.PveNode{Id: 2, NodeName: "pve2", ClusterID: 1}
)

func testCloudImage(t *testing.T) *model.CloudImage {
	t.Helper()
	path := filepath.Join(t.TempDir(), "jammy-server-cloudimg-amd64.img")
	require.NoError(t, os.WriteFile(path, []byte("qcow2 image bytes"), 0o644))
	return &model.CloudImage{Id: 3, Name: "Ubuntu 22.04", Filename: "jammy-server-cloudimg-amd64.img", StoragePath: path}
}

type templateFixture struct {
	cluster *fakeCluster
	shell   *fakeShell
	cache   *TemplateCache
	image   *model.CloudImage
	images  *stubImageRepo
}

func newTemplateFixture(t *testing.T) *templateFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	nodeRepo := mocks.NewMockPveNodeRepository(ctrl)
	nodeRepo.EXPECT().GetByClusterID(gomock.Any(), int64(1)).Return([]*model.PveNode{node1, node2}, nil).AnyTimes()

	cluster := newFakeCluster("pve1", "pve2")
	shell := newFakeShell(cluster)
	image := testCloudImage(t)
	images := &stubImageRepo{images: []*model.CloudImage{image}}
	logger := log.NewNop()
	store := NewImageStore(viper.New(), images, logger)
	resolver := NewNodeAddressResolver(shell, nodeRepo, logger)

	cache := NewTemplateCache(nodeRepo, images, store, shell, resolver, nil, logger, TemplateCacheConfig{BaseID: 9000})
	return &templateFixture{cluster: cluster, shell: shell, cache: cache, image: image, images: images}
}

func TestTemplateKey_ID(t *testing.T) {
	assert.Equal(t, uint32(9001), TemplateKey{NodeIndex: 1, ImageID: 1}.ID(9000))
	assert.Equal(t, uint32(9103), TemplateKey{NodeIndex: 2, ImageID: 3}.ID(9000))
	assert.Equal(t, uint32(18899), TemplateKey{NodeIndex: 99, ImageID: 99}.ID(9000))

	seen := make(map[uint32]TemplateKey)
	for n := int64(1); n <= 99; n++ {
		for i := int64(1); i <= 99; i++ {
			k := TemplateKey{NodeIndex: n, ImageID: i}
			require.NoError(t, k.Validate())
			id := k.ID(9000)
			if prev, ok := seen[id]; ok {
				t.Fatalf("%v and %v share template id %d", prev, k, id)
			}
			seen[id] = k
		}
	}
}

func TestTemplateKey_Validate(t *testing.T) {
	for _, k := range []TemplateKey{{0, 1}, {100, 1}, {1, 0}, {1, 100}} {
		err := k.Validate()
		var rue *ResourceUnavailableError
		assert.ErrorAs(t, err, &rue, "%v", k)
	}
}

func TestResolve_MissBuildsOnTarget(t *testing.T) {
	f := newTemplateFixture(t)
	rec := &recorder{}

	loc, err := f.cache.Resolve(context.Background(), f.cluster, testCluster, node1, f.image, "local-lvm", rec.report)
	require.NoError(t, err)

	assert.Equal(t, &TemplateLocation{TemplateID: 9003, NodeName: "pve1", Built: true}, loc)
	assert.Equal(t, []string{"Setting up cloud image (first time - takes ~5 min)..."}, rec.all())

	node, config, ok := f.cluster.vm(9003)
	require.True(t, ok)
	assert.Equal(t, "pve1", node)
	assert.True(t, isTemplateConfig(config))
	assert.Equal(t, "local-lvm:vm-9003-disk-0", config["scsi0"])
	assert.Equal(t, "local-lvm:cloudinit", config["ide2"])
	assert.Equal(t, "order=scsi0", config["boot"])
	assert.Equal(t, "socket", config["serial0"])
	assert.Equal(t, "tpl-Ubuntu-22.04", config["name"])
	assert.Equal(t, "qxl", config["vga"])
	assert.Nil(t, config["unused0"])

	assert.Equal(t, 1, f.shell.ran("dd of=/var/tmp/jammy-server-cloudimg-amd64.img"))
	assert.Equal(t, 1, f.shell.ran("qm importdisk 9003 /var/tmp/jammy-server-cloudimg-amd64.img local-lvm --format qcow2"))
	assert.Equal(t, 1, f.shell.ran("rm -f /var/tmp/jammy-server-cloudimg-amd64.img"))
}

func TestResolve_Hit(t *testing.T) {
	f := newTemplateFixture(t)
	f.cluster.put("pve1", 9003, map[string]interface{}{"template": float64(1), "scsi0": "local-lvm:base-9003-disk-0"})
	rec := &recorder{}

	loc, err := f.cache.Resolve(context.Background(), f.cluster, testCluster, node1, f.image, "local-lvm", rec.report)
	require.NoError(t, err)

	assert.False(t, loc.Built)
	assert.Equal(t, uint32(9003), loc.TemplateID)
	assert.Empty(t, rec.all())
	creates, deletes, _ := f.cluster.counts()
	assert.Zero(t, creates)
	assert.Zero(t, deletes)
}

func TestResolve_DeletesMisplacedOccupant(t *testing.T) {
	f := newTemplateFixture(t)
	f.cluster.put("pve2", 9003, map[string]interface{}{"template": float64(1)})

	loc, err := f.cache.Resolve(context.Background(), f.cluster, testCluster, node1, f.image, "local-lvm", nil)
	require.NoError(t, err)

	assert.True(t, loc.Built)
	assert.Equal(t, []string{"pve1"}, f.cluster.occupants(9003))
}

func TestResolve_MisplacedDeleteFailureIsFatal(t *testing.T) {
	f := newTemplateFixture(t)
	f.cluster.put("pve2", 9003, map[string]interface{}{"template": float64(1)})
	f.cluster.deleteErr["pve2"] = errors.New("VM is locked (backup)")

	_, err := f.cache.Resolve(context.Background(), f.cluster, testCluster, node1, f.image, "local-lvm", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot proceed: VM 9003 exists on wrong node pve2")
	creates, _, _ := f.cluster.counts()
	assert.Zero(t, creates)
}

func TestResolve_ReplacesNonTemplateOccupant(t *testing.T) {
	f := newTemplateFixture(t)
	f.cluster.put("pve1", 9003, map[string]interface{}{"name": "half-built"})

	loc, err := f.cache.Resolve(context.Background(), f.cluster, testCluster, node1, f.image, "local-lvm", nil)
	require.NoError(t, err)

	assert.True(t, loc.Built)
	_, config, _ := f.cluster.vm(9003)
	assert.True(t, isTemplateConfig(config))
	_, deletes, _ := f.cluster.counts()
	assert.Equal(t, 1, deletes)
}

func TestResolve_SlotOutOfRange(t *testing.T) {
	f := newTemplateFixture(t)
	big := &model.PveNode{Id: 120, NodeName: "pve1", ClusterID: 1}

	_, err := f.cache.Resolve(context.Background(), f.cluster, testCluster, big, f.image, "local-lvm", nil)
	var rue *ResourceUnavailableError
	require.ErrorAs(t, err, &rue)
}

func TestResolve_ImportFailure(t *testing.T) {
	f := newTemplateFixture(t)
	f.shell.fail["qm"] = 1

	_, err := f.cache.Resolve(context.Background(), f.cluster, testCluster, node1, f.image, "local-lvm", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create cloud image template")
	var pe *PrivilegedExecutionError
	assert.ErrorAs(t, err, &pe)
	// 暂存文件仍被清理
	assert.Equal(t, 1, f.shell.ran("rm -f /var/tmp/"))
}

func TestResolve_ConcurrentConverges(t *testing.T) {
	f := newTemplateFixture(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// 并发构建允许失败，最终状态必须收敛
			_, _ = f.cache.Resolve(context.Background(), f.cluster, testCluster, node1, f.image, "local-lvm", nil)
		}()
	}
	wg.Wait()

	loc, err := f.cache.Resolve(context.Background(), f.cluster, testCluster, node1, f.image, "local-lvm", nil)
	require.NoError(t, err)
	assert.Equal(t, uint32(9003), loc.TemplateID)

	assert.Equal(t, []string{"pve1"}, f.cluster.occupants(9003))
	_, config, _ := f.cluster.vm(9003)
	assert.True(t, isTemplateConfig(config))
}

func TestAuditTemplates(t *testing.T) {
	f := newTemplateFixture(t)
	// pve2 的模板 id 出现在 pve1 上
	f.cluster.put("pve1", 9103, map[string]interface{}{"template": float64(1)})
	// pve1 的模板 id 被普通虚拟机占用
	f.cluster.put("pve1", 9003, map[string]interface{}{"name": "building"})

	report, err := f.cache.AuditTemplates(context.Background(), f.cluster, testCluster)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Checked)
	assert.Equal(t, 1, report.Misplaced)
	assert.Equal(t, 1, report.Corrupt)
	assert.Empty(t, f.cluster.occupants(9103))
	assert.Equal(t, []string{"pve1"}, f.cluster.occupants(9003))
}
