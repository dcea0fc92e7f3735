package model

import (
	"net/url"
	"time"
)

type PveCluster struct {
	Id               int64     `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	ClusterName      string    `json:"cluster_name" gorm:"column:cluster_name"`
	ClusterNameAlias string    `json:"cluster_name_alias" gorm:"column:cluster_name_alias"`
	Env              string    `json:"env" gorm:"column:env"`
	Datacenter       string    `json:"datacenter" gorm:"column:datacenter"`
	ApiUrl           string    `json:"api_url" gorm:"column:api_url"`
	UserId           string    `json:"user_id" gorm:"column:user_id"`
	UserToken        string    `json:"-" gorm:"column:user_token"`
	IsSchedulable    int8      `json:"is_schedulable" gorm:"column:is_schedulable"` // 是否允许部署
	IsEnabled        int8      `json:"is_enabled" gorm:"column:is_enabled"`         // 是否启用资源同步，1-启用，0-禁用
	CreateTime       time.Time `json:"create_time" gorm:"column:gmt_create"`
	UpdateTime       time.Time `json:"update_time" gorm:"column:gmt_modified"`
	Creator          string    `json:"creator" gorm:"column:creator"`
	Modifier         string    `json:"modifier" gorm:"column:modifier"`
}

func (PveCluster) TableName() string {
	return "pve_cluster"
}

// ApiHost API 地址中的主机名，作为特权通道的兜底入口
func (c *PveCluster) ApiHost() string {
	u, err := url.Parse(c.ApiUrl)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
