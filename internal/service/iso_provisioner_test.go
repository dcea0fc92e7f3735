package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"pvedeploy/internal/model"
	"pvedeploy/pkg/log"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeMediaName(t *testing.T) {
	assert.Equal(t, "debian-12.5.0-amd64-netinst.iso", SanitizeMediaName("debian-12.5.0-amd64-netinst.iso"))
	assert.Equal(t, "debian_12__netinst_.iso", SanitizeMediaName("debian 12 (netinst).iso"))
	assert.Equal(t, "a_b_c.iso", SanitizeMediaName("a/b;c.iso"))
}

func TestUploadReporter_Throttles(t *testing.T) {
	rec := &recorder{}
	r := newUploadReporter(2*mb, time.Hour, rec.report)

	r.Report(mb, 2*mb)
	r.Report(mb+1, 2*mb)
	r.Report(2*mb, 2*mb)
	r.Done()

	msgs := rec.all()
	require.Len(t, msgs, 3)
	assert.True(t, strings.HasPrefix(msgs[0], "Uploading: 50% (1.0/2.0 MB @ "), msgs[0])
	assert.True(t, strings.HasPrefix(msgs[1], "Uploading: 100% (2.0/2.0 MB @ "), msgs[1])
	assert.True(t, strings.HasPrefix(msgs[2], "Upload complete! ("), msgs[2])
}

func newIsoFixture(t *testing.T) (*fakeCluster, *IsoProvisioner, *model.IsoImage) {
	t.Helper()
	dir := t.TempDir()
	iso := &model.IsoImage{Id: 7, Name: "Debian 12", Filename: "debian 12 (netinst).iso"}
	require.NoError(t, os.WriteFile(filepath.Join(dir, iso.Filename), []byte("iso payload"), 0o644))

	conf := viper.New()
	conf.Set("images.iso_dir", dir)
	store := NewImageStore(conf, &stubImageRepo{}, log.NewNop())
	p := NewIsoProvisioner(store, log.NewNop(), IsoProvisionerConfig{ProgressInterval: time.Hour})
	return newFakeCluster("pve1"), p, iso
}

func TestIsoProvision_UploadsMissingMedia(t *testing.T) {
	cluster, p, iso := newIsoFixture(t)
	rec := &recorder{}
	dep := baseDeployment()

	started, err := p.Provision(context.Background(), cluster, dep, iso, rec.report)
	require.NoError(t, err)
	assert.True(t, started)

	msgs := rec.all()
	require.Len(t, msgs, 6)
	assert.Equal(t, "Preparing installation media...", msgs[0])
	assert.Equal(t, "Uploading ISO Debian 12 to Proxmox (this may take several minutes)...", msgs[1])
	assert.True(t, strings.HasPrefix(msgs[2], "Uploading: 100%"), msgs[2])
	assert.True(t, strings.HasPrefix(msgs[3], "Upload complete!"), msgs[3])
	assert.Equal(t, "Creating VM 120 on node pve1...", msgs[4])
	assert.Equal(t, "Starting VM...", msgs[5])

	assert.Equal(t, []string{"debian_12__netinst_.iso"}, cluster.uploaded)
	node, config, ok := cluster.vm(120)
	require.True(t, ok)
	assert.Equal(t, "pve1", node)
	assert.Equal(t, "local:iso/debian_12__netinst_.iso,media=cdrom", config["ide2"])
	assert.Equal(t, "local-lvm:20", config["scsi0"])
	assert.Equal(t, "virtio,bridge=vmbr0", config["net0"])
	assert.Equal(t, "order=scsi0;ide2;net0", config["boot"])
	assert.Nil(t, config["cpu"])
}

func TestIsoProvision_ExistingMediaSkipsUpload(t *testing.T) {
	cluster, p, iso := newIsoFixture(t)
	cluster.isoContent = []string{"local:iso/debian_12__netinst_.iso"}
	rec := &recorder{}

	started, err := p.Provision(context.Background(), cluster, baseDeployment(), iso, rec.report)
	require.NoError(t, err)
	assert.True(t, started)
	assert.Zero(t, cluster.uploads)
	assert.Contains(t, rec.all(), "ISO found on Proxmox. Preparing VM configuration...")
}

func TestIsoProvision_MissingLocalFile(t *testing.T) {
	cluster, p, _ := newIsoFixture(t)

	_, err := p.Provision(context.Background(), cluster, baseDeployment(),
		&model.IsoImage{Id: 8, Name: "Alpine", Filename: "alpine.iso"}, func(string) {})
	var rue *ResourceUnavailableError
	require.ErrorAs(t, err, &rue)
	_, _, ok := cluster.vm(120)
	assert.False(t, ok)
}

func TestIsoProvision_StartFailureLeavesVMStopped(t *testing.T) {
	cluster, p, iso := newIsoFixture(t)
	cluster.startErr = assert.AnError

	started, err := p.Provision(context.Background(), cluster, baseDeployment(), iso, func(string) {})
	require.NoError(t, err)
	assert.False(t, started)
	_, _, ok := cluster.vm(120)
	assert.True(t, ok)
}

func TestIsoProvision_CreateFailure(t *testing.T) {
	cluster, p, iso := newIsoFixture(t)
	cluster.put("pve2", 120, nil)

	_, err := p.Provision(context.Background(), cluster, baseDeployment(), iso, func(string) {})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create VM in Proxmox")
}
