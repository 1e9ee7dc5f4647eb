// Package shape 构建矩形（可圆角）与椭圆的路径算子，并描述描边、填充、虚线与裁剪。
// 坐标与 sink 一致（自下而上）；自上而下的文本框请先经 layout.Flip 换算。
package shape

import (
	"math"

	"github.com/ByLCY/textbox/layout"
)

// Kappa 是用 4 段三次贝塞尔曲线近似圆弧的控制点系数：4/3 * (sqrt(2) - 1)。
const Kappa = 0.5522847498307936

// OpKind 为路径算子类型。
type OpKind int

const (
	OpMoveTo OpKind = iota
	OpLineTo
	OpCubicTo
	OpClose
)

func (k OpKind) String() string {
	switch k {
	case OpMoveTo:
		return "m"
	case OpLineTo:
		return "l"
	case OpCubicTo:
		return "c"
	case OpClose:
		return "h"
	default:
		return "?"
	}
}

// Op 是单个路径算子；CubicTo 使用全部三个点，MoveTo/LineTo 只使用 X/Y。
type Op struct {
	Kind   OpKind
	X1, Y1 float64
	X2, Y2 float64
	X, Y   float64
}

// Path 按顺序累积路径算子。
type Path struct {
	ops []Op
}

func (p *Path) MoveTo(x, y float64) { p.ops = append(p.ops, Op{Kind: OpMoveTo, X: x, Y: y}) }
func (p *Path) LineTo(x, y float64) { p.ops = append(p.ops, Op{Kind: OpLineTo, X: x, Y: y}) }

func (p *Path) CubicTo(x1, y1, x2, y2, x, y float64) {
	p.ops = append(p.ops, Op{Kind: OpCubicTo, X1: x1, Y1: y1, X2: x2, Y2: y2, X: x, Y: y})
}

func (p *Path) Close() { p.ops = append(p.ops, Op{Kind: OpClose}) }

// Ops 返回累积的算子副本，供 sink 依次推送。
func (p *Path) Ops() []Op {
	out := make([]Op, len(p.ops))
	copy(out, p.ops)
	return out
}

// Empty 判断路径是否为空。
func (p *Path) Empty() bool { return p == nil || len(p.ops) == 0 }

// Rectangle 添加以 (x, y) 为左下角的矩形。
func (p *Path) Rectangle(x, y, w, h float64) {
	p.MoveTo(x, y)
	p.LineTo(x+w, y)
	p.LineTo(x+w, y+h)
	p.LineTo(x, y+h)
	p.Close()
}

// RoundedRectangle 添加圆角矩形；r 会被限制在短边的一半以内，r<=0 时退化为普通矩形。
func (p *Path) RoundedRectangle(x, y, w, h, r float64) {
	r = math.Min(r, math.Min(w, h)/2)
	if r <= 0 {
		p.Rectangle(x, y, w, h)
		return
	}
	o := r * Kappa
	p.MoveTo(x+r, y)
	p.LineTo(x+w-r, y)
	p.CubicTo(x+w-r+o, y, x+w, y+r-o, x+w, y+r)
	p.LineTo(x+w, y+h-r)
	p.CubicTo(x+w, y+h-r+o, x+w-r+o, y+h, x+w-r, y+h)
	p.LineTo(x+r, y+h)
	p.CubicTo(x+r-o, y+h, x, y+h-r+o, x, y+h-r)
	p.LineTo(x, y+r)
	p.CubicTo(x, y+r-o, x+r-o, y, x+r, y)
	p.Close()
}

// Ellipse 用 4 段三次贝塞尔曲线添加椭圆。
func (p *Path) Ellipse(cx, cy, rx, ry float64) {
	ox := rx * Kappa
	oy := ry * Kappa
	p.MoveTo(cx+rx, cy)
	p.CubicTo(cx+rx, cy+oy, cx+ox, cy+ry, cx, cy+ry)
	p.CubicTo(cx-ox, cy+ry, cx-rx, cy+oy, cx-rx, cy)
	p.CubicTo(cx-rx, cy-oy, cx-ox, cy-ry, cx, cy-ry)
	p.CubicTo(cx+ox, cy-ry, cx+rx, cy-oy, cx+rx, cy)
	p.Close()
}

// Style 描述路径的绘制方式。Fill 与 Stroke 均为空且 Clip 为假时不产生任何输出。
type Style struct {
	Fill        *layout.Color `json:"fill,omitempty"`
	Stroke      *layout.Color `json:"stroke,omitempty"`
	StrokeWidth float64       `json:"strokeWidth,omitempty"`
	Opacity     *float64      `json:"opacity,omitempty"`
	Dash        *Dash         `json:"dash,omitempty"`
	Clip        bool          `json:"clip,omitempty"` // 作为裁剪区域使用，之后的绘制只在其内部可见
}

// Alpha 返回不透明度，未设置时为 1。
func (s Style) Alpha() float64 {
	if s.Opacity == nil {
		return 1
	}
	return math.Max(0, math.Min(1, *s.Opacity))
}

// Shape 是一条带样式的路径。
type Shape struct {
	Path  *Path
	Style Style
}

// RectIn 在自上而下的文本框位置生成（圆角）矩形。
func RectIn(box layout.Box, pageHeight, radius float64, st Style) Shape {
	f := layout.Flip(box, pageHeight)
	p := &Path{}
	p.RoundedRectangle(f.Left, f.Bottom, f.Width, f.Height, radius)
	return Shape{Path: p, Style: st}
}

// EllipseIn 在自上而下的文本框内生成内切椭圆。
func EllipseIn(box layout.Box, pageHeight float64, st Style) Shape {
	f := layout.Flip(box, pageHeight)
	p := &Path{}
	p.Ellipse(f.Left+f.Width/2, f.Bottom+f.Height/2, f.Width/2, f.Height/2)
	return Shape{Path: p, Style: st}
}
