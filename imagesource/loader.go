// Package imagesource loads base images asynchronously from local paths,
// http(s) URLs, data: URLs and in-memory upload handles.
package imagesource

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/ByLCY/memeforge/logging"
)

// ErrImageLoadFailed wraps every load failure. The handle never becomes
// ready; callers may retry or pick another image.
var ErrImageLoadFailed = errors.New("image load failed")

// DefaultMaxBytes bounds the size of a fetched image.
const DefaultMaxBytes = 32 << 20

// Options configures a Loader.
type Options struct {
	BaseDir  string       // 相对路径的根目录
	Client   *http.Client // 为空时使用 30 秒超时的默认客户端
	Origin   string       // 页面来源；为空时任意 Access-Control-Allow-Origin 均视为允许
	Blobs    *Blobs       // blob: 句柄注册表，为空时新建
	MaxBytes int64
}

// Loader starts image loads. It is safe for concurrent use.
type Loader struct {
	baseDir  string
	client   *http.Client
	origin   string
	blobs    *Blobs
	maxBytes int64
}

// NewLoader creates a loader from opts.
func NewLoader(opts Options) *Loader {
	l := &Loader{
		baseDir:  opts.BaseDir,
		client:   opts.Client,
		origin:   opts.Origin,
		blobs:    opts.Blobs,
		maxBytes: opts.MaxBytes,
	}
	if l.client == nil {
		l.client = &http.Client{Timeout: 30 * time.Second}
	}
	if l.blobs == nil {
		l.blobs = NewBlobs()
	}
	if l.maxBytes <= 0 {
		l.maxBytes = DefaultMaxBytes
	}
	return l
}

// Blobs returns the registry used to resolve blob: handles.
func (l *Loader) Blobs() *Blobs { return l.blobs }

// Handle is a pending or finished image load, identified by its key.
type Handle struct {
	key     string
	done    chan struct{}
	img     image.Image
	tainted bool
	err     error
}

// Key returns the URL or path the image was requested with.
func (h *Handle) Key() string { return h.key }

// Done is closed once the load has succeeded or failed.
func (h *Handle) Done() <-chan struct{} { return h.done }

func (h *Handle) finished() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// Ready reports whether the image decoded successfully.
func (h *Handle) Ready() bool { return h.finished() && h.err == nil }

// Err returns the load error, or nil while pending or after success.
func (h *Handle) Err() error {
	if !h.finished() {
		return nil
	}
	return h.err
}

// Image returns the decoded raster, nil until ready.
func (h *Handle) Image() image.Image {
	if !h.Ready() {
		return nil
	}
	return h.img
}

// Tainted reports whether the image came from another origin without a
// CORS grant. Such images can be composited but not exported.
func (h *Handle) Tainted() bool { return h.Ready() && h.tainted }

// Wait blocks until the load finishes or ctx is done.
func (h *Handle) Wait(ctx context.Context) error {
	select {
	case <-h.done:
		return h.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Load starts loading key in the background and returns immediately.
func (l *Loader) Load(ctx context.Context, key string) *Handle {
	h := &Handle{key: key, done: make(chan struct{})}
	go func() {
		defer close(h.done)
		start := time.Now()
		img, tainted, err := l.fetch(ctx, key)
		if err != nil {
			h.err = fmt.Errorf("%w: %s: %v", ErrImageLoadFailed, shortKey(key), err)
			logging.Logger().Warn("image load failed", "key", shortKey(key), "err", err)
			return
		}
		h.img, h.tainted = img, tainted
		logging.Logger().Info("image loaded",
			"key", shortKey(key),
			"size", img.Bounds().Size().String(),
			"tainted", tainted,
			"elapsed", time.Since(start))
	}()
	return h
}

func (l *Loader) fetch(ctx context.Context, key string) (image.Image, bool, error) {
	data, tainted, err := l.read(ctx, key)
	if err != nil {
		return nil, false, err
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, false, fmt.Errorf("解码图片失败: %w", err)
	}
	return img, tainted, nil
}

func (l *Loader) read(ctx context.Context, key string) ([]byte, bool, error) {
	switch {
	case key == "":
		return nil, false, fmt.Errorf("图片地址为空")
	case strings.HasPrefix(key, "data:"):
		data, err := decodeDataURL(key)
		return data, false, err
	case strings.HasPrefix(key, blobScheme):
		data, ok := l.blobs.Get(key)
		if !ok {
			return nil, false, fmt.Errorf("上传句柄 %s 已释放", key)
		}
		return data, false, nil
	case strings.HasPrefix(key, "http://"), strings.HasPrefix(key, "https://"):
		return l.readHTTP(ctx, key)
	case strings.HasPrefix(key, "file://"):
		u, err := url.Parse(key)
		if err != nil {
			return nil, false, err
		}
		data, err := l.readFile(u.Path)
		return data, false, err
	default:
		data, err := l.readFile(key)
		return data, false, err
	}
}

func (l *Loader) readFile(path string) ([]byte, error) {
	if !filepath.IsAbs(path) && l.baseDir != "" {
		path = filepath.Join(l.baseDir, path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readLimited(f, l.maxBytes)
}

func (l *Loader) readHTTP(ctx context.Context, key string) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, key, nil)
	if err != nil {
		return nil, false, err
	}
	if l.origin != "" {
		req.Header.Set("Origin", l.origin)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, false, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("HTTP 状态 %s", resp.Status)
	}
	data, err := readLimited(resp.Body, l.maxBytes)
	if err != nil {
		return nil, false, err
	}
	return data, !l.corsAllowed(resp.Header), nil
}

// corsAllowed 模拟浏览器的跨域读取授权：没有匹配的 Access-Control-Allow-Origin 时图片会污染画布。
func (l *Loader) corsAllowed(h http.Header) bool {
	allow := strings.TrimSpace(h.Get("Access-Control-Allow-Origin"))
	switch {
	case allow == "":
		return false
	case allow == "*":
		return true
	case l.origin == "":
		return true
	default:
		return strings.EqualFold(allow, l.origin)
	}
}

func readLimited(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("图片超过 %d 字节上限", limit)
	}
	return data, nil
}

// decodeDataURL handles data:[<mediatype>][;base64],<payload>.
func decodeDataURL(u string) ([]byte, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(u, "data:"), ",")
	if !ok {
		return nil, fmt.Errorf("data URL 缺少逗号分隔符")
	}
	if strings.HasSuffix(strings.ToLower(meta), ";base64") {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("data URL base64 解码失败: %w", err)
		}
		return data, nil
	}
	s, err := url.PathUnescape(payload)
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}

func shortKey(key string) string {
	if strings.HasPrefix(key, "data:") && len(key) > 48 {
		return key[:48] + "..."
	}
	return key
}
