package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"time"

	"pvedeploy/pkg/log"

	"github.com/duke-git/lancet/v2/cryptor"
	"github.com/duke-git/lancet/v2/random"
	"github.com/gin-gonic/gin"

	"go.uber.org/zap"
)

const maxLogBody = 4096

// 请求体中不允许落盘的字段
var sensitiveFields = []string{"password", "ssh_key", "cipassword", "token"}

func skipLogging(ctx *gin.Context) bool {
	path := ctx.Request.URL.Path
	return path == "/metrics" || strings.HasPrefix(path, "/swagger/")
}

func RequestLogMiddleware(logger *log.Logger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if skipLogging(ctx) {
			ctx.Next()
			return
		}
		uuid, err := random.UUIdV4()
		if err != nil {
			ctx.Next()
			return
		}
		logger.WithValue(ctx, zap.String("trace", cryptor.Md5String(uuid)))
		logger.WithValue(ctx, zap.String("request_method", ctx.Request.Method))
		logger.WithValue(ctx, zap.String("request_url", maskQuery(ctx)))

		if ctx.Request.Body != nil {
			if strings.HasPrefix(ctx.ContentType(), "multipart/form-data") {
				// 镜像上传体积很大，不读入内存
				logger.WithValue(ctx, zap.String("request_params", "[multipart/form-data body omitted]"))
			} else {
				bodyBytes, _ := ctx.GetRawData()
				ctx.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
				logger.WithValue(ctx, zap.String("request_params", redactBody(bodyBytes)))
			}
		}
		logger.WithContext(ctx).Info("Request")
		ctx.Next()
	}
}

func ResponseLogMiddleware(logger *log.Logger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if skipLogging(ctx) {
			ctx.Next()
			return
		}
		startTime := time.Now()
		// 进度推送是 WebSocket，不能包装 ResponseWriter
		if ctx.GetHeader("Upgrade") == "websocket" {
			ctx.Next()
			logger.WithContext(ctx).Info("Response (WebSocket)", zap.Duration("time", time.Since(startTime)))
			return
		}

		blw := &bodyLogWriter{body: bytes.NewBufferString(""), ResponseWriter: ctx.Writer}
		ctx.Writer = blw
		ctx.Next()
		body := blw.body.Bytes()
		if len(body) > maxLogBody {
			body = body[:maxLogBody]
		}
		logger.WithContext(ctx).Info("Response",
			zap.Int("status", ctx.Writer.Status()),
			zap.ByteString("response_body", body),
			zap.Duration("time", time.Since(startTime)))
	}
}

// redactBody 把 JSON 请求体里的口令和密钥替换掉，非 JSON 内容只截断
func redactBody(body []byte) string {
	var fields map[string]interface{}
	if err := json.Unmarshal(body, &fields); err == nil {
		for _, k := range sensitiveFields {
			if _, ok := fields[k]; ok {
				fields[k] = "******"
			}
		}
		if masked, err := json.Marshal(fields); err == nil {
			body = masked
		}
	}
	if len(body) > maxLogBody {
		body = body[:maxLogBody]
	}
	return string(body)
}

func maskQuery(ctx *gin.Context) string {
	u := *ctx.Request.URL
	q := u.Query()
	if q.Has("token") {
		q.Set("token", "******")
		u.RawQuery = q.Encode()
	}
	return u.String()
}

type bodyLogWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w bodyLogWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}
