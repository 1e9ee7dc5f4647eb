package renderer

import (
	"fmt"

	"github.com/ByLCY/textbox/layout"
)

const borderWidth = 0.5

var borderColor = layout.Color{R: 255, G: 0, B: 0}

// DrawTextArea 在文本框内绘制可换行的多行文本，返回溢出报告。
// 报告溢出时若设置了 box.OnOverflow 也会回调；hide 策略下发生溢出则不向 sink 发出任何命令。
func DrawTextArea(t Target, box layout.Box, frags []layout.Fragment) (layout.OverflowReport, error) {
	comp, err := layout.ComposeArea(t, t.PageHeight(), box, frags)
	if err != nil {
		return layout.OverflowReport{}, fmt.Errorf("文本框排版失败: %w", err)
	}
	return finish(t, box, comp)
}

// DrawTextLine 在文本框内绘制单行文本（不换行），支持按片段或按词两端对齐。
func DrawTextLine(t Target, box layout.Box, frags []layout.Fragment) (layout.OverflowReport, error) {
	comp, err := layout.ComposeLine(t, t.PageHeight(), box, frags)
	if err != nil {
		return layout.OverflowReport{}, fmt.Errorf("单行文本排版失败: %w", err)
	}
	return finish(t, box, comp)
}

func finish(s Sink, box layout.Box, comp *layout.Composition) (rep layout.OverflowReport, err error) {
	rep = comp.Report
	if rep.Overflowed && box.OnOverflow != nil {
		box.OnOverflow(rep)
	}
	if comp.Hidden || len(comp.Lines) == 0 {
		return rep, nil
	}
	if box.Isolate {
		if err := s.Save(); err != nil {
			return rep, err
		}
		defer func() {
			if rerr := s.Restore(); err == nil {
				err = rerr
			}
		}()
	}
	if box.Border {
		if err := s.DrawRect(RectCommand{Frame: comp.Frame, Color: borderColor, LineWidth: borderWidth}); err != nil {
			return rep, err
		}
	}
	return rep, Emit(s, comp)
}

// Emit 按行、按 run 的顺序把定位结果发给 sink；sink 返回的错误原样向上传递。
func Emit(s Sink, comp *layout.Composition) error {
	for _, ln := range comp.Lines {
		for _, r := range ln.Runs {
			if err := s.DrawText(TextRun{
				Text:    r.Text,
				Font:    r.Style.Font,
				Size:    r.Style.Size,
				Color:   r.Style.Color,
				Opacity: r.Style.Opacity,
				X:       r.X,
				Y:       r.Y,
			}); err != nil {
				return err
			}
		}
	}
	return nil
}
