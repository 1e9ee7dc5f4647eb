package renderer

import (
	"github.com/ByLCY/textbox/document"
	"github.com/ByLCY/textbox/layout"
	"github.com/ByLCY/textbox/shape"
)

// TextRun 是一条文本放置命令，坐标为 sink 坐标（自下而上），(X, Y) 为基线起点。
type TextRun struct {
	Text    string       `json:"text"`
	Font    string       `json:"font"`
	Size    float64      `json:"size"`
	Color   layout.Color `json:"color"`
	Opacity float64      `json:"opacity"`
	X       float64      `json:"x"`
	Y       float64      `json:"y"`
}

// RectCommand 描述调试用的矩形边框。
type RectCommand struct {
	Frame     layout.Frame `json:"frame"`
	Color     layout.Color `json:"color"`
	LineWidth float64      `json:"lineWidth"`
}

// ImageCommand 描述一张图片的放置位置。
type ImageCommand struct {
	Src     string       `json:"src"`
	Frame   layout.Frame `json:"frame"`
	Opacity float64      `json:"opacity"`
}

// Sink 接收有序的绘制命令。命令顺序即绘制顺序，同一个 Sink 不可被多个调用交错使用。
type Sink interface {
	DrawText(run TextRun) error
	DrawRect(rect RectCommand) error
	DrawShape(s shape.Shape) error
	DrawImage(img ImageCommand) error
	// Save 与 Restore 成对保存/恢复图形状态（包括裁剪区域）。
	Save() error
	Restore() error
}

// Target 是一页可绘制的目标：sink、测量服务与页面高度。
type Target interface {
	Sink
	layout.Measurer
	PageHeight() float64
}

// Output 是渲染结果：最终文件字节以及每个文本框的溢出报告。
type Output struct {
	Bytes   []byte      `json:"-"`
	Reports []BoxReport `json:"reports"`
}

// BoxReport 记录某页某个文本框的溢出报告。
type BoxReport struct {
	Page   int                   `json:"page"`
	Name   string                `json:"name,omitempty"`
	Kind   string                `json:"kind"`
	Report layout.OverflowReport `json:"report"`
}

// Renderer 将文档输出为最终文件，例如 PDF。
type Renderer interface {
	Render(doc *document.Result) (*Output, error)
}
