package proxmox

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *ProxmoxClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := NewProxmoxClient(srv.URL, "root@pam!deploy", "secret")
	require.NoError(t, err)
	c.PollInterval = 10 * time.Millisecond
	return c
}

func writeData(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"data": data})
}

func TestNewProxmoxClient_InvalidURL(t *testing.T) {
	_, err := NewProxmoxClient("not-a-url", "u", "t")
	assert.Error(t, err)
}

func TestRequest_SetsTokenAndDecodesData(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "PVEAPIToken=root@pam!deploy=secret", r.Header.Get("Authorization"))
		assert.Equal(t, "/api2/json/version", r.URL.Path)
		writeData(w, map[string]interface{}{"version": "8.2.4"})
	})

	v, err := c.GetVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "8.2.4", v["version"])
}

func TestRequest_APIErrorAndNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"data":null,"message":"Configuration file 'nodes/pve1/qemu-server/9001.conf' does not exist\n"}`))
	})

	_, err := c.GetVMConfig(context.Background(), "pve1", 9001)
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.True(t, IsNotFound(err))
	assert.False(t, IsNotFound(errors.New("does not exist")))
}

func TestGetNextFreeVMID_String(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeData(w, "105")
	})
	id, err := c.GetNextFreeVMID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint32(105), id)
}

func TestCloneVM_UsesQueryParams(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api2/json/nodes/pve1/qemu/9001/clone", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "120", q.Get("newid"))
		assert.Equal(t, "1", q.Get("full"))
		assert.Equal(t, "pve2", q.Get("target"))
		assert.Equal(t, "local-lvm", q.Get("storage"))
		writeData(w, "UPID:pve1:clone")
	})

	upid, err := c.CloneVM(context.Background(), "pve1", 9001, &CloneVMRequest{
		NewID: 120, Target: "pve2", Full: true, Storage: "local-lvm",
	})
	require.NoError(t, err)
	assert.Equal(t, "UPID:pve1:clone", upid)
}

func TestWaitForTask(t *testing.T) {
	t.Run("empty upid", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("unexpected request")
		})
		assert.NoError(t, c.WaitForTask(context.Background(), "pve1", "", time.Second))
	})

	t.Run("stops ok after polling", func(t *testing.T) {
		var calls int32
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if atomic.AddInt32(&calls, 1) < 3 {
				writeData(w, map[string]interface{}{"status": "running"})
				return
			}
			writeData(w, map[string]interface{}{"status": "stopped", "exitstatus": "OK"})
		})
		require.NoError(t, c.WaitForTask(context.Background(), "pve1", "UPID:x", time.Second))
		assert.GreaterOrEqual(t, atomic.LoadInt32(&calls), int32(3))
	})

	t.Run("failed exit status", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeData(w, map[string]interface{}{"status": "stopped", "exitstatus": "unable to create VM"})
		})
		err := c.WaitForTask(context.Background(), "pve1", "UPID:x", time.Second)
		var taskErr *TaskError
		require.True(t, errors.As(err, &taskErr))
		assert.Equal(t, "unable to create VM", taskErr.ExitStatus)
	})

	t.Run("warnings count as success", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeData(w, map[string]interface{}{"status": "stopped", "exitstatus": "WARNINGS: 2"})
		})
		assert.NoError(t, c.WaitForTask(context.Background(), "pve1", "UPID:x", time.Second))
	})

	t.Run("timeout", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeData(w, map[string]interface{}{"status": "running"})
		})
		err := c.WaitForTask(context.Background(), "pve1", "UPID:x", 50*time.Millisecond)
		assert.ErrorIs(t, err, ErrTaskTimeout)
	})
}

func TestUploadStorageContent_StreamsWithProgress(t *testing.T) {
	payload := strings.Repeat("iso-bytes-", 10000)

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api2/json/nodes/pve1/storage/local/upload", r.URL.Path)
		assert.Greater(t, r.ContentLength, int64(len(payload)))

		_, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		require.NoError(t, err)
		mr := multipart.NewReader(r.Body, params["boundary"])

		part, err := mr.NextPart()
		require.NoError(t, err)
		assert.Equal(t, "content", part.FormName())
		v, _ := io.ReadAll(part)
		assert.Equal(t, "iso", string(v))

		part, err = mr.NextPart()
		require.NoError(t, err)
		assert.Equal(t, "filename", part.FormName())
		assert.Equal(t, "debian_12.iso", part.FileName())
		got, _ := io.ReadAll(part)
		assert.Equal(t, payload, string(got))

		writeData(w, "UPID:pve1:upload")
	})

	var last, total int64
	upid, err := c.UploadStorageContent(context.Background(), "pve1", "local", "iso", "debian_12.iso",
		strings.NewReader(payload), int64(len(payload)), func(sent, t int64) {
			last, total = sent, t
		})
	require.NoError(t, err)
	assert.Equal(t, "UPID:pve1:upload", upid)
	assert.Equal(t, int64(len(payload)), last)
	assert.Equal(t, int64(len(payload)), total)
}
