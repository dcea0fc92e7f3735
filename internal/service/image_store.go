package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"pvedeploy/internal/model"
	"pvedeploy/internal/repository"
	"pvedeploy/pkg/log"

	"github.com/duke-git/lancet/v2/fileutil"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// ImageStore 本地镜像仓库：云镜像按需下载，ISO 由运维预先放置
type ImageStore struct {
	cloudDir  string
	isoDir    string
	client    *http.Client
	imageRepo repository.CloudImageRepository
	logger    *log.Logger

	locks sync.Map // image id -> *sync.Mutex
}

func NewImageStore(conf *viper.Viper, imageRepo repository.CloudImageRepository, logger *log.Logger) *ImageStore {
	return &ImageStore{
		cloudDir:  conf.GetString("images.cloud_dir"),
		isoDir:    conf.GetString("images.iso_dir"),
		client:    &http.Client{Timeout: 2 * time.Hour},
		imageRepo: imageRepo,
		logger:    logger,
	}
}

func (s *ImageStore) CloudImagePath(image *model.CloudImage) string {
	if image.StoragePath != "" {
		return image.StoragePath
	}
	return filepath.Join(s.cloudDir, image.Filename)
}

// EnsureLocal 确保云镜像已在本地，必要时下载并校验 sha256
func (s *ImageStore) EnsureLocal(ctx context.Context, image *model.CloudImage) (string, error) {
	mu, _ := s.locks.LoadOrStore(image.Id, &sync.Mutex{})
	mu.(*sync.Mutex).Lock()
	defer mu.(*sync.Mutex).Unlock()

	path := s.CloudImagePath(image)
	if fileutil.IsExist(path) {
		if image.Checksum == "" {
			return path, nil
		}
		sum, err := fileSHA256(path)
		if err == nil && strings.EqualFold(sum, image.Checksum) {
			return path, nil
		}
		s.logger.WithContext(ctx).Warn("cached cloud image checksum mismatch, downloading again",
			zap.Int64("image_id", image.Id), zap.String("path", path))
	}

	if image.DownloadURL == "" {
		return "", &ResourceUnavailableError{Kind: "Cloud image", Name: image.Name, Err: fmt.Errorf("no local copy at %s and no download url", path)}
	}
	if err := s.download(ctx, image, path); err != nil {
		s.markDownload(ctx, image.Id, model.DownloadStatusError, 0)
		return "", &ResourceUnavailableError{Kind: "Cloud image", Name: image.Name, Err: err}
	}
	image.StoragePath = path
	image.IsDownloaded = 1
	image.DownloadStatus = model.DownloadStatusCompleted
	return path, nil
}

func (s *ImageStore) download(ctx context.Context, image *model.CloudImage, path string) error {
	if err := fileutil.CreateDir(filepath.Dir(path) + string(filepath.Separator)); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, image.DownloadURL, nil)
	if err != nil {
		return err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("download %s: %w", image.DownloadURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download %s: %s", image.DownloadURL, resp.Status)
	}

	s.logger.WithContext(ctx).Info("downloading cloud image",
		zap.Int64("image_id", image.Id), zap.String("url", image.DownloadURL))
	s.markDownload(ctx, image.Id, model.DownloadStatusDownloading, 0)

	tmp := path + ".part"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	defer os.Remove(tmp)

	h := sha256.New()
	total := resp.ContentLength
	if total <= 0 {
		total = image.FileSize
	}
	pw := &downloadProgress{total: total, report: func(pct int) {
		s.markDownload(ctx, image.Id, model.DownloadStatusDownloading, pct)
	}}
	if _, err := io.Copy(io.MultiWriter(f, h, pw), resp.Body); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	if image.Checksum != "" {
		if sum := hex.EncodeToString(h.Sum(nil)); !strings.EqualFold(sum, image.Checksum) {
			return fmt.Errorf("checksum mismatch: expected %s, got %s", image.Checksum, sum)
		}
	}
	if err := os.Rename(tmp, path); err != nil {
		return err
	}
	return s.imageRepo.UpdateDownload(ctx, image.Id, model.DownloadStatusCompleted, 100, path)
}

// markDownload 下载状态只用于展示，写入失败不影响下载本身
func (s *ImageStore) markDownload(ctx context.Context, id int64, status string, pct int) {
	if err := s.imageRepo.UpdateDownload(ctx, id, status, pct, ""); err != nil {
		s.logger.WithContext(ctx).Warn("failed to update download status",
			zap.Int64("image_id", id), zap.String("status", status), zap.Error(err))
	}
}

// downloadProgress 每前进 5% 回调一次
type downloadProgress struct {
	total   int64
	written int64
	last    int
	report  func(pct int)
}

func (p *downloadProgress) Write(b []byte) (int, error) {
	p.written += int64(len(b))
	if p.total > 0 {
		pct := int(p.written * 100 / p.total)
		if pct >= p.last+5 && pct < 100 {
			p.last = pct
			p.report(pct)
		}
	}
	return len(b), nil
}

// OpenISO 打开本地 ISO 文件，返回大小
func (s *ImageStore) OpenISO(ctx context.Context, iso *model.IsoImage) (io.ReadCloser, int64, error) {
	path := iso.StoragePath
	if path == "" {
		path = filepath.Join(s.isoDir, iso.Filename)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, &ResourceUnavailableError{Kind: "ISO image", Name: iso.Name, Err: err}
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, err
	}
	return f, st.Size(), nil
}

// OpenCloudImage 打开已下载的云镜像，用于推送到节点
func (s *ImageStore) OpenCloudImage(path string) (io.ReadCloser, error) {
	return os.Open(path)
}

func fileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
