package model

import (
	"time"
)

const (
	DownloadStatusPending     = "pending"
	DownloadStatusDownloading = "downloading"
	DownloadStatusCompleted   = "completed"
	DownloadStatusError       = "error"
)

// CloudImage 可做成模板的云镜像
type CloudImage struct {
	Id               int64     `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	Name             string    `json:"name" gorm:"column:name"`
	Filename         string    `json:"filename" gorm:"column:filename"`
	OSType           string    `json:"os_type" gorm:"column:os_type"`
	Version          string    `json:"version" gorm:"column:version"`
	Architecture     string    `json:"architecture" gorm:"column:architecture"`
	FileSize         int64     `json:"file_size" gorm:"column:file_size"`
	Checksum         string    `json:"checksum" gorm:"column:checksum"` // sha256
	DownloadURL      string    `json:"download_url" gorm:"column:download_url"`
	StoragePath      string    `json:"storage_path" gorm:"column:storage_path"`
	IsDownloaded     int8      `json:"is_downloaded" gorm:"column:is_downloaded"`
	DownloadProgress int       `json:"download_progress" gorm:"column:download_progress"`
	DownloadStatus   string    `json:"download_status" gorm:"column:download_status"`
	CreateTime       time.Time `json:"create_time" gorm:"column:gmt_create"`
	UpdateTime       time.Time `json:"update_time" gorm:"column:gmt_modified"`
}

func (CloudImage) TableName() string {
	return "cloud_image"
}

// IsoImage 安装介质，只能走 ISO 安装流程
type IsoImage struct {
	Id          int64     `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	Name        string    `json:"name" gorm:"column:name"`
	Filename    string    `json:"filename" gorm:"column:filename"`
	OSType      string    `json:"os_type" gorm:"column:os_type"`
	FileSize    int64     `json:"file_size" gorm:"column:file_size"`
	Checksum    string    `json:"checksum" gorm:"column:checksum"`
	StoragePath string    `json:"storage_path" gorm:"column:storage_path"`
	IsAvailable int8      `json:"is_available" gorm:"column:is_available"`
	CreateTime  time.Time `json:"create_time" gorm:"column:gmt_create"`
	UpdateTime  time.Time `json:"update_time" gorm:"column:gmt_modified"`
}

func (IsoImage) TableName() string {
	return "iso_image"
}

// Clonable 云镜像可以做成模板后克隆
func (*CloudImage) Clonable() bool { return true }

func (i *CloudImage) DisplayName() string { return i.Name }

func (*IsoImage) Clonable() bool { return false }

func (i *IsoImage) DisplayName() string { return i.Name }
