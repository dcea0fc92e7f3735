package proxmox

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

// ProgressFunc 上传进度回调，sent 为已发送的文件字节数
type ProgressFunc func(sent, total int64)

type progressReader struct {
	r     io.Reader
	sent  int64
	total int64
	fn    ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.sent += int64(n)
		if p.fn != nil {
			p.fn(p.sent, p.total)
		}
	}
	return n, err
}

// UploadStorageContent 流式上传 ISO / 镜像到存储
// POST /api2/json/nodes/{node}/storage/{storage}/upload
// 文件字段名必须是 "filename"；multipart 头尾预先生成以便设置 Content-Length
func (c *ProxmoxClient) UploadStorageContent(
	ctx context.Context,
	nodeName, storage, content, filename string,
	file io.Reader,
	size int64,
	progress ProgressFunc,
) (string, error) {
	path := fmt.Sprintf("/nodes/%s/storage/%s/upload", nodeName, storage)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if content != "" {
		if err := writer.WriteField("content", content); err != nil {
			return "", err
		}
	}
	if _, err := writer.CreateFormFile("filename", filename); err != nil {
		return "", err
	}
	head := append([]byte(nil), buf.Bytes()...)
	buf.Reset()
	if err := writer.Close(); err != nil {
		return "", err
	}
	tail := append([]byte(nil), buf.Bytes()...)

	body := io.MultiReader(
		bytes.NewReader(head),
		&progressReader{r: file, total: size, fn: progress},
		bytes.NewReader(tail),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(path, nil), body)
	if err != nil {
		return "", err
	}
	req.ContentLength = int64(len(head)) + size + int64(len(tail))
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var data interface{}
	if err := c.do(ctx, c.uploadClient, req, &data); err != nil {
		return "", err
	}
	// upload 的 data 通常是 UPID 字符串
	upid, _ := data.(string)
	return upid, nil
}
