package service

import (
	"pvedeploy/internal/repository"
	"pvedeploy/pkg/log"
	"pvedeploy/pkg/sid"
)

// RunIDGenerator 每次触发部署生成新的 run_id
type RunIDGenerator interface {
	GenString() (string, error)
}

type Service struct {
	logger *log.Logger
	sid    RunIDGenerator
	tm     repository.Transaction
}

func NewService(
	tm repository.Transaction,
	logger *log.Logger,
	sid *sid.Sid,
) *Service {
	return &Service{
		logger: logger,
		sid:    sid,
		tm:     tm,
	}
}
