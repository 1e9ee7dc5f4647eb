package canvasrenderer

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/tdewolff/canvas"

	"github.com/ByLCY/textbox/layout"
	"github.com/ByLCY/textbox/renderer"
	"github.com/ByLCY/textbox/shape"
)

// ErrUnbalancedRestore 表示 Restore 调用次数多于 Save。
var ErrUnbalancedRestore = errors.New("canvas: Restore 没有对应的 Save")

// Page 是一页 canvas 画布，实现 renderer.Target。
// 使用 canvas 默认的笛卡尔坐标（原点在左下角），与 sink 约定一致。
//
// canvas 不支持任意裁剪路径，裁剪形状以其外接矩形生效：只绘制完全落在矩形内的文本与图片。
type Page struct {
	r      *Renderer
	canvas *canvas.Canvas
	ctx    *canvas.Context
	height float64

	clip  *layout.Frame
	saved []*layout.Frame
}

var _ renderer.Target = (*Page)(nil)

// NewPage 创建宽高以 pt 计的空白页面。字体需先通过 RegisterFont 注册。
func (r *Renderer) NewPage(width, height float64) *Page {
	c := canvas.New(toMm(width), toMm(height))
	return &Page{
		r:      r,
		canvas: c,
		ctx:    canvas.NewContext(c),
		height: height,
	}
}

// Canvas 返回底层画布，便于调用方自行输出为其他格式。
func (p *Page) Canvas() *canvas.Canvas { return p.canvas }

func (p *Page) PageHeight() float64 { return p.height }

func (p *Page) TextWidth(font, text string, size float64) (float64, error) {
	return p.r.TextWidth(font, text, size)
}

func (p *Page) DrawText(run renderer.TextRun) error {
	face, err := p.r.fontFace(run.Font, run.Size, colorOf(run.Color, run.Opacity))
	if err != nil {
		return err
	}
	if p.clip != nil {
		w := toPt(face.TextWidth(run.Text))
		if !contains(*p.clip, layout.Frame{Left: run.X, Bottom: run.Y, Width: w, Height: run.Size}) {
			return nil
		}
	}
	p.ctx.DrawText(toMm(run.X), toMm(run.Y), canvas.NewTextLine(face, run.Text, canvas.Left))
	return nil
}

func (p *Page) DrawRect(rc renderer.RectCommand) error {
	p.ctx.Push()
	defer p.ctx.Pop()
	p.ctx.SetFillColor(transparent)
	p.ctx.SetStrokeColor(colorOf(rc.Color, 1))
	p.ctx.SetStrokeWidth(toMm(rc.LineWidth))
	p.ctx.DrawPath(toMm(rc.Frame.Left), toMm(rc.Frame.Bottom), canvas.Rectangle(toMm(rc.Frame.Width), toMm(rc.Frame.Height)))
	return nil
}

func (p *Page) DrawShape(s shape.Shape) error {
	if s.Path.Empty() {
		return nil
	}
	if s.Style.Clip {
		bounds := opsBounds(s.Path.Ops())
		if p.clip != nil {
			bounds = intersect(*p.clip, bounds)
		}
		p.clip = &bounds
		return nil
	}
	if s.Style.Fill == nil && s.Style.Stroke == nil {
		return nil
	}

	p.ctx.Push()
	defer p.ctx.Pop()
	alpha := s.Style.Alpha()
	p.ctx.SetFillColor(transparent)
	p.ctx.SetStrokeColor(transparent)
	if s.Style.Fill != nil {
		p.ctx.SetFillColor(colorOf(*s.Style.Fill, alpha))
	}
	if s.Style.Stroke != nil {
		p.ctx.SetStrokeColor(colorOf(*s.Style.Stroke, alpha))
		p.ctx.SetStrokeWidth(toMm(s.Style.StrokeWidth))
		if pattern := s.Style.Dash.Pattern(); len(pattern) > 0 {
			dashes := make([]float64, len(pattern))
			for i, d := range pattern {
				dashes[i] = toMm(d)
			}
			p.ctx.SetDashes(toMm(s.Style.Dash.Offset), dashes...)
		}
	}
	p.ctx.DrawPath(0, 0, toCanvasPath(s.Path.Ops()))
	return nil
}

// DrawImage 按宽度等比缩放图片，左上角对齐 Frame 的左上角；高度由图片比例决定。
func (p *Page) DrawImage(img renderer.ImageCommand) error {
	decoded, err := p.r.loadImage(img.Src)
	if err != nil {
		return err
	}
	px := decoded.Bounds().Dx()
	if px <= 0 || img.Frame.Width <= 0 {
		return fmt.Errorf("图片 %s 尺寸无效", img.Src)
	}
	dpmm := float64(px) / toMm(img.Frame.Width)
	placed := layout.Frame{Left: img.Frame.Left, Width: img.Frame.Width}
	placed.Height = toPt(float64(decoded.Bounds().Dy()) / dpmm)
	placed.Bottom = img.Frame.Top() - placed.Height
	if p.clip != nil && !contains(*p.clip, placed) {
		return nil
	}
	p.ctx.DrawImage(toMm(placed.Left), toMm(placed.Bottom), fade(decoded, img.Opacity), canvas.DPMM(dpmm))
	return nil
}

func (p *Page) Save() error {
	p.ctx.Push()
	p.saved = append(p.saved, p.clip)
	return nil
}

func (p *Page) Restore() error {
	if len(p.saved) == 0 {
		return ErrUnbalancedRestore
	}
	p.ctx.Pop()
	p.clip = p.saved[len(p.saved)-1]
	p.saved = p.saved[:len(p.saved)-1]
	return nil
}

func toCanvasPath(ops []shape.Op) *canvas.Path {
	path := &canvas.Path{}
	for _, op := range ops {
		switch op.Kind {
		case shape.OpMoveTo:
			path.MoveTo(toMm(op.X), toMm(op.Y))
		case shape.OpLineTo:
			path.LineTo(toMm(op.X), toMm(op.Y))
		case shape.OpCubicTo:
			path.CubeTo(toMm(op.X1), toMm(op.Y1), toMm(op.X2), toMm(op.Y2), toMm(op.X), toMm(op.Y))
		case shape.OpClose:
			path.Close()
		}
	}
	return path
}

// opsBounds 返回算子端点与控制点的外接矩形；贝塞尔曲线位于控制点凸包内。
func opsBounds(ops []shape.Op) layout.Frame {
	first := true
	var x0, y0, x1, y1 float64
	add := func(x, y float64) {
		if first {
			x0, y0, x1, y1 = x, y, x, y
			first = false
			return
		}
		x0, y0 = min(x0, x), min(y0, y)
		x1, y1 = max(x1, x), max(y1, y)
	}
	for _, op := range ops {
		switch op.Kind {
		case shape.OpCubicTo:
			add(op.X1, op.Y1)
			add(op.X2, op.Y2)
			add(op.X, op.Y)
		case shape.OpMoveTo, shape.OpLineTo:
			add(op.X, op.Y)
		}
	}
	return layout.Frame{Left: x0, Bottom: y0, Width: x1 - x0, Height: y1 - y0}
}

func intersect(a, b layout.Frame) layout.Frame {
	left := max(a.Left, b.Left)
	bottom := max(a.Bottom, b.Bottom)
	right := min(a.Left+a.Width, b.Left+b.Width)
	top := min(a.Top(), b.Top())
	return layout.Frame{Left: left, Bottom: bottom, Width: max(right-left, 0), Height: max(top-bottom, 0)}
}

const clipEpsilon = 1e-6

var transparent = color.RGBA{}

func contains(outer, inner layout.Frame) bool {
	return inner.Left >= outer.Left-clipEpsilon &&
		inner.Bottom >= outer.Bottom-clipEpsilon &&
		inner.Left+inner.Width <= outer.Left+outer.Width+clipEpsilon &&
		inner.Top() <= outer.Top()+clipEpsilon
}

func colorOf(c layout.Color, opacity float64) color.Color {
	return canvas.RGBA(float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0, opacity)
}
