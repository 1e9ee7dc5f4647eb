package layout

import "fmt"

// Composition 是一次排版调用的完整结果：sink 坐标中的文本框、可绘制的行以及溢出报告。
type Composition struct {
	Frame  Frame            `json:"frame"`
	Lines  []PositionedLine `json:"lines"`
	Report OverflowReport   `json:"report"`
	Hidden bool             `json:"hidden,omitempty"` // hide 策略下整块放弃绘制
}

// ComposeArea 对多行文本框执行 测量 → 断行 → 溢出分类 → 定位。
func ComposeArea(m Measurer, pageHeight float64, box Box, frags []Fragment) (*Composition, error) {
	if m == nil {
		return nil, ErrNoMeasurer
	}
	box = box.withDefaults()
	pieces, err := MeasureAll(m, frags, box.defaults())
	if err != nil {
		return nil, err
	}
	lines, err := BreakLines(m, pieces, box.Width, box.Wrap)
	if err != nil {
		return nil, fmt.Errorf("断行失败: %w", err)
	}
	applyLineHeight(lines, box.LineHeight)

	render, rep := ClassifyArea(lines, box)
	comp := &Composition{
		Frame:  Flip(box, pageHeight),
		Report: rep,
		Hidden: box.Overflow == OverflowHide && rep.Overflowed,
	}
	comp.Lines, err = Position(m, render, comp.Frame, box, false)
	if err != nil {
		return nil, fmt.Errorf("定位失败: %w", err)
	}
	logComposition("text area", comp)
	return comp, nil
}

// ComposeLine 对单行文本执行排版：不换行，强制换行标记被忽略，溢出只有“全部绘制”或“全部隐藏”两种结果。
func ComposeLine(m Measurer, pageHeight float64, box Box, frags []Fragment) (*Composition, error) {
	if m == nil {
		return nil, ErrNoMeasurer
	}
	box = box.withDefaults()
	pieces, err := MeasureAll(m, frags, box.defaults())
	if err != nil {
		return nil, err
	}
	comp := &Composition{Frame: Flip(box, pageHeight)}
	if !hasText(pieces) {
		comp.Report = ClassifyLine(0, 0, box)
		return comp, nil
	}
	for i := range pieces {
		pieces[i].Break = false
	}
	ln := newLine(0, pieces, false)
	ln.ParagraphEnd = true
	lines := []Line{ln}
	applyLineHeight(lines, box.LineHeight)

	comp.Report = ClassifyLine(lines[0].Width, lines[0].Height, box)
	comp.Report.RenderedLines = 1
	for _, p := range pieces {
		comp.Report.Parts = append(comp.Report.Parts, p.Text)
	}
	if box.Overflow == OverflowHide && comp.Report.Overflowed {
		comp.Hidden = true
		comp.Report.RenderedLines = 0
		logComposition("text line", comp)
		return comp, nil
	}
	comp.Lines, err = Position(m, lines, comp.Frame, box, true)
	if err != nil {
		return nil, fmt.Errorf("定位失败: %w", err)
	}
	logComposition("text line", comp)
	return comp, nil
}

func logComposition(kind string, comp *Composition) {
	log := Logger()
	if comp.Hidden {
		log.Info(kind+" hidden on overflow", "message", comp.Report.Message)
		return
	}
	log.Debug(kind+" composed",
		"lines", len(comp.Lines),
		"overflowX", comp.Report.OverflowX,
		"overflowY", comp.Report.OverflowY,
		"message", comp.Report.Message,
	)
}
