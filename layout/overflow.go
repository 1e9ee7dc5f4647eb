package layout

const (
	msgOverflowBoth = "Text overflows both X (width) and Y (height)"
	msgOverflowX    = "Text overflows X (width)"
	msgOverflowY    = "Text overflows Y (height)"
	msgFits         = "Text fits within bounds"
)

// overflowMessage 按固定优先级选择提示：双轴 > X > Y > 未溢出。
func overflowMessage(x, y bool) string {
	switch {
	case x && y:
		return msgOverflowBoth
	case x:
		return msgOverflowX
	case y:
		return msgOverflowY
	default:
		return msgFits
	}
}

// cutIndex 返回累计行高首次超过 maxHeight 的行序号；全部放得下时返回 len(lines)。
func cutIndex(lines []Line, maxHeight float64) int {
	total := 0.0
	for i, ln := range lines {
		total += ln.Height
		if total > maxHeight {
			return i
		}
	}
	return len(lines)
}

// ClassifyArea 判断多行文本的溢出情况，并按策略选出需要绘制的行。
//
//   - report：全部绘制，仅报告；
//   - clip：从首个超高行起全部不绘制，并在报告中列出；
//   - hide：X 或 Y 任一溢出即什么都不绘制。
func ClassifyArea(lines []Line, box Box) ([]Line, OverflowReport) {
	box = box.withDefaults()
	cut := cutIndex(lines, box.Height)
	overflowY := cut < len(lines)

	render := lines
	if box.Overflow == OverflowClip {
		render = lines[:cut]
	}
	overflowX := false
	for _, ln := range render {
		if ln.Width > box.Width {
			overflowX = true
			break
		}
	}

	rep := OverflowReport{
		Overflowed: overflowX || overflowY,
		OverflowX:  overflowX,
		OverflowY:  overflowY,
		TotalLines: len(lines),
		MaxWidth:   box.Width,
		MaxHeight:  box.Height,
		Message:    overflowMessage(overflowX, overflowY),
	}
	for _, ln := range lines[cut:] {
		rep.OverflowedLines = append(rep.OverflowedLines, OverflowedLine{
			Index:  ln.Index,
			Text:   ln.Text(),
			Width:  ln.Width,
			Height: ln.Height,
		})
	}
	if box.Overflow == OverflowHide && rep.Overflowed {
		render = nil
	}
	for _, ln := range render {
		rep.ContentHeight += ln.Height
	}
	rep.RenderedLines = len(render)
	return render, rep
}

// ClassifyLine 是单行模式的溢出判断：宽度或高度任一超出即溢出，没有可截断的部分行。
func ClassifyLine(lineWidth, lineHeight float64, box Box) OverflowReport {
	x := lineWidth > box.Width
	y := lineHeight > box.Height
	return OverflowReport{
		Overflowed: x || y,
		OverflowX:  x,
		OverflowY:  y,
		LineWidth:  lineWidth,
		LineHeight: lineHeight,
		MaxWidth:   box.Width,
		MaxHeight:  box.Height,
		Message:    overflowMessage(x, y),
	}
}
