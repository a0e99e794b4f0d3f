// Package export turns a composited surface into a downloadable PNG.
package export

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"

	"github.com/ByLCY/memeforge/logging"
)

// DefaultFileName is the name offered for downloads.
const DefaultFileName = "meme.png"

var (
	// ErrNothingToExport 表示尚未合成任何画面。
	ErrNothingToExport = errors.New("nothing to export")
	// ErrExportBlocked 表示画面包含跨域图片，无法读出像素。
	ErrExportBlocked = errors.New("export blocked: surface is tainted by a cross-origin image")
	// ErrEncodeFailed wraps both the primary and the fallback encoder errors.
	ErrEncodeFailed = errors.New("png encode failed")
)

// Raster is the read side of a composited surface.
type Raster interface {
	Image() image.Image
	Tainted() bool
}

func check(r Raster) (image.Image, error) {
	if r == nil {
		return nil, ErrNothingToExport
	}
	img := r.Image()
	if img == nil || img.Bounds().Empty() {
		return nil, ErrNothingToExport
	}
	if r.Tainted() {
		return nil, ErrExportBlocked
	}
	return img, nil
}

// pngEncoders are tried in order until one succeeds. The fallback copies
// the pixels into a plain NRGBA image rebased at the origin before encoding,
// so it does not depend on the source image's own At/Bounds. It is a
// best-effort second chance: writes go to a memory buffer, so a failure of
// the primary usually means the fallback fails too.
var pngEncoders = []struct {
	name   string
	encode func(io.Writer, image.Image) error
}{
	{"image/png", func(w io.Writer, img image.Image) error {
		enc := png.Encoder{CompressionLevel: png.BestSpeed}
		return enc.Encode(w, img)
	}},
	{"imaging", func(w io.Writer, img image.Image) error {
		return imaging.Encode(w, imaging.Clone(img), imaging.PNG, imaging.PNGCompressionLevel(png.DefaultCompression))
	}},
}

// EncodePNG writes the surface as PNG. When the primary encoder fails the
// imaging encoder is tried before giving up.
func EncodePNG(w io.Writer, r Raster) error {
	img, err := check(r)
	if err != nil {
		return err
	}
	var (
		buf  bytes.Buffer
		errs []error
	)
	for _, enc := range pngEncoders {
		buf.Reset()
		eerr := enc.encode(&buf, img)
		if eerr == nil {
			_, err = w.Write(buf.Bytes())
			return err
		}
		logging.Logger().Warn("png encoder failed", "encoder", enc.name, "err", eerr)
		errs = append(errs, fmt.Errorf("%s: %w", enc.name, eerr))
	}
	return fmt.Errorf("%w: %w", ErrEncodeFailed, errors.Join(errs...))
}

// Bytes returns the PNG encoding of the surface.
func Bytes(r Raster) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodePNG(&buf, r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DataURL returns the surface as a data:image/png;base64 URL.
func DataURL(r Raster) (string, error) {
	data, err := Bytes(r)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(data), nil
}

// WriteFile encodes the surface into path. An empty path writes
// DefaultFileName in the working directory. The file is replaced
// atomically so a failed export never leaves a truncated PNG behind.
func WriteFile(path string, r Raster) (string, error) {
	if path == "" {
		path = DefaultFileName
	}
	data, err := Bytes(r)
	if err != nil {
		return "", err
	}
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".meme-*.png")
	if err != nil {
		return "", fmt.Errorf("创建临时文件失败: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("写入 PNG 失败: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("保存 %s 失败: %w", path, err)
	}
	logging.Logger().Info("meme exported", "path", path, "bytes", len(data))
	return path, nil
}
