package handler

import (
	"net/http"
	"strconv"
	"time"

	v1 "pvedeploy/api/v1"
	"pvedeploy/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type DeploymentHandler struct {
	*Handler
	deploymentService service.DeploymentService
}

func NewDeploymentHandler(handler *Handler, deploymentService service.DeploymentService) *DeploymentHandler {
	return &DeploymentHandler{
		Handler:           handler,
		deploymentService: deploymentService,
	}
}

func deploymentID(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		v1.HandleError(ctx, http.StatusBadRequest, v1.ErrBadRequest, nil)
		return 0, false
	}
	return id, true
}

func progressData(p *service.Progress) *v1.ProgressResponseData {
	return &v1.ProgressResponseData{
		ID:          p.DeploymentID,
		RunID:       p.RunID,
		Status:      string(p.Status),
		Message:     p.Message,
		ErrorDetail: p.ErrorDetail,
		VMID:        p.VMID,
		UpdatedAt:   p.UpdatedAt,
	}
}

// CreateDeployment godoc
// @Summary 创建部署并立即触发
// @Tags 部署模块
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body v1.CreateDeploymentRequest true "params"
// @Success 200 {object} v1.Response{data=v1.CreateDeploymentResponseData}
// @Router /api/v1/deployments [post]
func (h *DeploymentHandler) CreateDeployment(ctx *gin.Context) {
	req := new(v1.CreateDeploymentRequest)
	if err := ctx.ShouldBindJSON(req); err != nil {
		h.logger.WithContext(ctx).Warn("CreateDeployment bind json error", zap.Error(err))
		v1.HandleError(ctx, http.StatusBadRequest, v1.ErrBadRequest, nil)
		return
	}
	req.Creator = GetUserIdFromCtx(ctx)

	data, err := h.deploymentService.CreateDeployment(ctx, req)
	if err != nil {
		h.logger.WithContext(ctx).Error("deploymentService.CreateDeployment error", zap.Error(err))
		v1.HandleError(ctx, v1.HTTPStatus(err), err, nil)
		return
	}

	v1.HandleSuccess(ctx, data)
}

// StartDeployment godoc
// @Summary 重新触发部署
// @Description 已有任务在执行时直接返回成功
// @Tags 部署模块
// @Produce json
// @Security Bearer
// @Param id path int true "部署ID"
// @Success 200 {object} v1.Response
// @Router /api/v1/deployments/{id}/start [post]
func (h *DeploymentHandler) StartDeployment(ctx *gin.Context) {
	id, ok := deploymentID(ctx)
	if !ok {
		return
	}

	if err := h.deploymentService.StartDeployment(ctx, id); err != nil {
		h.logger.WithContext(ctx).Error("deploymentService.StartDeployment error", zap.Int64("id", id), zap.Error(err))
		v1.HandleError(ctx, v1.HTTPStatus(err), err, nil)
		return
	}

	v1.HandleSuccess(ctx, nil)
}

// GetProgress godoc
// @Summary 查询部署进度
// @Tags 部署模块
// @Produce json
// @Security Bearer
// @Param id path int true "部署ID"
// @Success 200 {object} v1.Response{data=v1.ProgressResponseData}
// @Router /api/v1/deployments/{id}/progress [get]
func (h *DeploymentHandler) GetProgress(ctx *gin.Context) {
	id, ok := deploymentID(ctx)
	if !ok {
		return
	}

	p, err := h.deploymentService.GetProgress(ctx, id)
	if err != nil {
		v1.HandleError(ctx, v1.HTTPStatus(err), err, nil)
		return
	}

	v1.HandleSuccess(ctx, progressData(p))
}

// ListEvents godoc
// @Summary 部署进度流水
// @Tags 部署模块
// @Produce json
// @Security Bearer
// @Param id path int true "部署ID"
// @Param run_id query string false "只返回某次触发的流水"
// @Success 200 {object} v1.Response
// @Router /api/v1/deployments/{id}/events [get]
func (h *DeploymentHandler) ListEvents(ctx *gin.Context) {
	id, ok := deploymentID(ctx)
	if !ok {
		return
	}

	events, err := h.deploymentService.ListEvents(ctx, id, ctx.Query("run_id"))
	if err != nil {
		v1.HandleError(ctx, v1.HTTPStatus(err), err, nil)
		return
	}

	v1.HandleSuccess(ctx, events)
}

// DeleteDeployment godoc
// @Summary 删除部署（停止并销毁虚拟机）
// @Tags 部署模块
// @Produce json
// @Security Bearer
// @Param id path int true "部署ID"
// @Success 200 {object} v1.Response
// @Router /api/v1/deployments/{id} [delete]
func (h *DeploymentHandler) DeleteDeployment(ctx *gin.Context) {
	id, ok := deploymentID(ctx)
	if !ok {
		return
	}

	if err := h.deploymentService.DeleteDeployment(ctx, id); err != nil {
		h.logger.WithContext(ctx).Error("deploymentService.DeleteDeployment error", zap.Int64("id", id), zap.Error(err))
		status := v1.HTTPStatus(err)
		if status == http.StatusInternalServerError {
			// 虚拟机删除失败的原因原样返回
			v1.HandleError(ctx, status, err, map[string]string{"error": err.Error()})
			return
		}
		v1.HandleError(ctx, status, err, nil)
		return
	}

	v1.HandleSuccess(ctx, nil)
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ProgressWS godoc
// @Summary 部署进度 WebSocket 推送
// @Description 连接后先推送当前进度，之后每次进度变化推送一次，进入终态后关闭
// @Tags 部署模块
// @Security Bearer
// @Param id path int true "部署ID"
// @Param token query string false "浏览器无法设置请求头时使用"
// @Router /api/v1/deployments/{id}/progress/ws [get]
func (h *DeploymentHandler) ProgressWS(ctx *gin.Context) {
	id, ok := deploymentID(ctx)
	if !ok {
		return
	}

	// 先订阅再取快照，两次调用之间的更新不会丢失
	updates, cancel, err := h.deploymentService.WatchProgress(ctx, id)
	if err != nil {
		v1.HandleError(ctx, v1.HTTPStatus(err), err, nil)
		return
	}
	defer cancel()
	current, err := h.deploymentService.GetProgress(ctx, id)
	if err != nil {
		v1.HandleError(ctx, v1.HTTPStatus(err), err, nil)
		return
	}

	conn, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		h.logger.WithContext(ctx).Warn("progress websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	send := func(p *service.Progress) bool {
		_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := conn.WriteJSON(progressData(p)); err != nil {
			return false
		}
		return !p.Status.IsTerminal()
	}

	if !send(current) {
		h.closeWS(conn)
		return
	}
	for {
		select {
		case <-closed:
			return
		case p, ok := <-updates:
			if !ok {
				return
			}
			if p.UpdatedAt.Before(current.UpdatedAt) {
				continue
			}
			if !send(&p) {
				h.closeWS(conn)
				return
			}
		}
	}
}

func (h *DeploymentHandler) closeWS(conn *websocket.Conn) {
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "deployment finished"),
		time.Now().Add(time.Second))
}
