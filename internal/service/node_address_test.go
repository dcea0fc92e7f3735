package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"pvedeploy/internal/mocks"
	"pvedeploy/internal/model"
	"pvedeploy/pkg/log"
	"pvedeploy/pkg/nodeshell"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_FromClusterStatusIsCached(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockHypervisorClient(ctrl)
	r := NewNodeAddressResolver(mocks.NewMockNodeShell(ctrl), mocks.NewMockPveNodeRepository(ctrl), log.NewNop())

	client.EXPECT().GetClusterStatus(gomock.Any()).Return([]map[string]interface{}{
		{"type": "cluster", "name": "lab"},
		{"type": "node", "name": "pve2", "ip": "10.0.0.12"},
	}, nil).Times(1)

	for i := 0; i < 2; i++ {
		addr, err := r.Resolve(context.Background(), client, testCluster, "pve2")
		require.NoError(t, err)
		assert.Equal(t, "10.0.0.12", addr)
	}
}

func TestResolve_FallsBackToNodeRecord(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockHypervisorClient(ctrl)
	nodeRepo := mocks.NewMockPveNodeRepository(ctrl)
	r := NewNodeAddressResolver(mocks.NewMockNodeShell(ctrl), nodeRepo, log.NewNop())

	client.EXPECT().GetClusterStatus(gomock.Any()).Return([]map[string]interface{}{
		{"type": "node", "name": "pve2"},
	}, nil)
	nodeRepo.EXPECT().GetByNodeName(gomock.Any(), "pve2", int64(1)).
		Return(&model.PveNode{Id: 2, NodeName: "pve2", IPAddress: "192.168.10.2"}, nil)

	addr, err := r.Resolve(context.Background(), client, testCluster, "pve2")
	require.NoError(t, err)
	assert.Equal(t, "192.168.10.2", addr)
}

func TestResolve_FallsBackToCorosync(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockHypervisorClient(ctrl)
	nodeRepo := mocks.NewMockPveNodeRepository(ctrl)
	shell := mocks.NewMockNodeShell(ctrl)
	r := NewNodeAddressResolver(shell, nodeRepo, log.NewNop())

	client.EXPECT().GetClusterStatus(gomock.Any()).Return(nil, errors.New("403 permission denied"))
	nodeRepo.EXPECT().GetByNodeName(gomock.Any(), "pve3", int64(1)).Return(nil, nil)
	shell.EXPECT().
		RunPrivileged(gomock.Any(), "10.0.0.1", nodeshell.NewCommand("grep", "-A3", "name: pve3", "/etc/pve/corosync.conf"), 30*time.Second).
		Return(&nodeshell.Result{Stdout: "    name: pve3\n    nodeid: 3\n    quorum_votes: 1\n    ring0_addr: 172.16.0.3\n"}, nil)

	addr, err := r.Resolve(context.Background(), client, testCluster, "pve3")
	require.NoError(t, err)
	assert.Equal(t, "172.16.0.3", addr)
}

func TestResolve_Unresolvable(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockHypervisorClient(ctrl)
	nodeRepo := mocks.NewMockPveNodeRepository(ctrl)
	r := NewNodeAddressResolver(mocks.NewMockNodeShell(ctrl), nodeRepo, log.NewNop())

	client.EXPECT().GetClusterStatus(gomock.Any()).Return(nil, nil)
	nodeRepo.EXPECT().GetByNodeName(gomock.Any(), "pve9", int64(5)).Return(nil, nil)

	_, err := r.Resolve(context.Background(), client, &model.PveCluster{Id: 5, ClusterName: "edge"}, "pve9")
	var rue *ResourceUnavailableError
	require.ErrorAs(t, err, &rue)
}

func TestParseRing0Addr(t *testing.T) {
	assert.Equal(t, "10.1.1.1", parseRing0Addr("name: pve1\nring0_addr:   10.1.1.1  \n"))
	assert.Equal(t, "", parseRing0Addr("name: pve1\nnodeid: 1\n"))
}
