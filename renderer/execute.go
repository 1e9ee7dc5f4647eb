package renderer

import (
	"fmt"

	"github.com/ByLCY/textbox/document"
	"github.com/ByLCY/textbox/layout"
	"github.com/ByLCY/textbox/shape"
)

// RenderPage 按声明顺序把一页的绘制项发给 target，返回该页每个文本项的溢出报告。
// index 从 1 开始，仅用于报告与错误信息。
func RenderPage(t Target, index int, page document.Page) ([]BoxReport, error) {
	var reports []BoxReport
	for i, item := range page.Items {
		switch item.Kind {
		case document.ItemArea, document.ItemLine:
			draw := DrawTextArea
			if item.Kind == document.ItemLine {
				draw = DrawTextLine
			}
			rep, err := draw(t, item.Box, item.Fragments)
			if err != nil {
				return reports, itemError(index, i, item, err)
			}
			reports = append(reports, BoxReport{Page: index, Name: item.Name, Kind: string(item.Kind), Report: rep})
		case document.ItemRect, document.ItemEllipse:
			if err := t.DrawShape(itemShape(item, t.PageHeight())); err != nil {
				return reports, itemError(index, i, item, err)
			}
		case document.ItemImage:
			if err := t.DrawImage(ImageCommand{
				Src:     item.Src,
				Frame:   layout.Flip(item.Box, t.PageHeight()),
				Opacity: item.Opacity,
			}); err != nil {
				return reports, itemError(index, i, item, err)
			}
		default:
			return reports, itemError(index, i, item, fmt.Errorf("未知的绘制项类型"))
		}
	}
	return reports, nil
}

func itemShape(item document.Item, pageHeight float64) shape.Shape {
	var st shape.Style
	if item.ShapeStyle != nil {
		st = *item.ShapeStyle
	}
	if item.Kind == document.ItemEllipse {
		return shape.EllipseIn(item.Box, pageHeight, st)
	}
	return shape.RectIn(item.Box, pageHeight, item.Radius, st)
}

func itemError(page, i int, item document.Item, err error) error {
	if item.Name != "" {
		return fmt.Errorf("第 %d 页 %s %q: %w", page, item.Kind, item.Name, err)
	}
	return fmt.Errorf("第 %d 页第 %d 项 %s: %w", page, i+1, item.Kind, err)
}
