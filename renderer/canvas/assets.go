package canvasrenderer

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/ByLCY/textbox/fonts"
)

func hasBuiltinPrefix(src string) bool {
	return strings.HasPrefix(src, "built-in:") || strings.HasPrefix(src, "builtin:")
}

func trimBuiltinPrefix(src string) string {
	return strings.TrimPrefix(strings.TrimPrefix(src, "built-in:"), "builtin:")
}

func readResource(res Resource) ([]byte, error) {
	if len(res.Bytes) > 0 {
		return res.Bytes, nil
	}
	if res.Path == "" {
		return nil, fmt.Errorf("资源既没有 Bytes 也没有 Path")
	}
	data, err := os.ReadFile(res.Path)
	if err != nil {
		return nil, fmt.Errorf("读取资源 %s 失败: %w", res.Path, err)
	}
	return data, nil
}

// resolvePath 将相对路径解析到资源目录；未设置资源目录时只接受绝对路径。
func (r *Renderer) resolvePath(src string) (string, error) {
	if filepath.IsAbs(src) {
		return src, nil
	}
	if r.baseDir == "" {
		return "", fmt.Errorf("未指定资源目录时不允许直接使用路径：%s（请改用 built-in: 或 %s）", src, fonts.Prefix)
	}
	return filepath.Join(r.baseDir, src), nil
}

func (r *Renderer) loadImage(src string) (image.Image, error) {
	var data []byte
	switch {
	case hasBuiltinPrefix(src):
		name := trimBuiltinPrefix(src)
		blob, ok := r.imageBlobs[name]
		if !ok {
			return nil, fmt.Errorf("找不到内置图片资源 built-in:%s", name)
		}
		data = blob
	case strings.HasPrefix(src, fonts.Prefix):
		return nil, fmt.Errorf("图片资源 %s 未找到（%s 仅支持内置字体）", src, fonts.Prefix)
	default:
		path, err := r.resolvePath(src)
		if err != nil {
			return nil, err
		}
		if data, err = readResource(Resource{Path: path}); err != nil {
			return nil, err
		}
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("解码图片 %s 失败: %w", src, err)
	}
	return img, nil
}

// fade 返回按 opacity 衰减 alpha 的副本；opacity >= 1 时原样返回。
func fade(img image.Image, opacity float64) image.Image {
	if opacity >= 1 {
		return img
	}
	opacity = max(opacity, 0)
	b := img.Bounds()
	out := image.NewNRGBA(b)
	mask := image.NewUniform(color.Alpha{A: uint8(opacity*255 + 0.5)})
	draw.DrawMask(out, b, img, b.Min, mask, image.Point{}, draw.Over)
	return out
}
