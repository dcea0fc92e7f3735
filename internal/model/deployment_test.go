package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to DeploymentStatus
		want     bool
	}{
		{"", DeploymentStatusCreating, true},
		{DeploymentStatusCreating, DeploymentStatusRunning, true},
		{DeploymentStatusCreating, DeploymentStatusStopped, true},
		{DeploymentStatusCreating, DeploymentStatusDeleting, false},
		{DeploymentStatusRunning, DeploymentStatusCreating, false},
		{DeploymentStatusRunning, DeploymentStatusDeleting, true},
		{DeploymentStatusStopped, DeploymentStatusDeleting, true},
		{DeploymentStatusDeleting, DeploymentStatusRunning, false},
		{DeploymentStatusDeleting, DeploymentStatusError, true},
		{DeploymentStatusRunning, DeploymentStatusError, true},
		{DeploymentStatusError, DeploymentStatusCreating, true},
		{DeploymentStatusError, DeploymentStatusRunning, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, DeploymentStatusCreating.IsTerminal())
	assert.False(t, DeploymentStatusDeleting.IsTerminal())
	assert.True(t, DeploymentStatusRunning.IsTerminal())
	assert.True(t, DeploymentStatusError.IsTerminal())
}

func TestPveClusterApiHost(t *testing.T) {
	c := &PveCluster{ApiUrl: "https://10.0.0.10:8006"}
	assert.Equal(t, "10.0.0.10", c.ApiHost())
}
