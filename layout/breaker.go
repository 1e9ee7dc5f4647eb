package layout

// BreakLines 按顺序消费已测量的片段，生成行列表。
//
// wrap 为 false 时只有强制换行会开始新行，片段不会被拆分；
// wrap 为 true 时，累计宽度超过 maxWidth 会先换行；单个片段宽于 maxWidth 时按词拆分并独占若干行，
// 连单个词都放不下时该词独占一行（不在词内按字符拆分）。
// 空文本片段不会触发换行，会随下一行保留；只含空文本的行不会输出。
func BreakLines(m Measurer, pieces []Piece, maxWidth float64, wrap bool) ([]Line, error) {
	b := &lineBuilder{}
	for _, p := range pieces {
		if p.Break {
			b.flush()
			b.forced = true
		}
		if !wrap || p.Text == "" || p.Width == 0 {
			b.add(p)
			continue
		}
		if p.Width > maxWidth {
			b.flush()
			if err := b.addSplit(m, p, maxWidth); err != nil {
				return nil, err
			}
			b.flush()
			continue
		}
		if len(b.cur) > 0 && b.width+p.Width > maxWidth {
			b.flush()
		}
		b.add(p)
	}
	b.flush()
	markParagraphEnds(b.lines)
	return b.lines, nil
}

type lineBuilder struct {
	lines   []Line
	cur     []Piece
	width   float64 // 不含行尾悬挂的空白
	forced  bool
	hanging bool
}

func (b *lineBuilder) add(p Piece) {
	b.cur = append(b.cur, p)
	b.width += p.Width
}

// addSplit 将过宽的片段按词贪心装入若干行。
// 放不下的空白挂在当前行尾，不计入行宽，因此拆出的行不会以空白开头或只含空白。
func (b *lineBuilder) addSplit(m Measurer, p Piece, maxWidth float64) error {
	words, err := splitPiece(m, p)
	if err != nil {
		return err
	}
	for _, w := range words {
		if hasText(b.cur) && (b.hanging || b.width+w.Width > maxWidth) {
			if isBlank(w.Text) {
				b.cur = append(b.cur, w)
				b.hanging = true
				continue
			}
			b.flush()
		}
		b.add(w)
	}
	return nil
}

func (b *lineBuilder) flush() {
	if !hasText(b.cur) {
		return
	}
	ln := newLine(len(b.lines), b.cur, b.forced)
	ln.Width = b.width
	b.lines = append(b.lines, ln)
	b.cur = nil
	b.width = 0
	b.forced = false
	b.hanging = false
}

func hasText(pieces []Piece) bool {
	for _, p := range pieces {
		if p.Text != "" {
			return true
		}
	}
	return false
}

func newLine(index int, pieces []Piece, forced bool) Line {
	ln := Line{Index: index, Pieces: pieces, Forced: forced}
	for _, p := range pieces {
		ln.Width += p.Width
		if p.Style.Size > ln.MaxSize {
			ln.MaxSize = p.Style.Size
		}
	}
	return ln
}

func markParagraphEnds(lines []Line) {
	for i := range lines {
		lines[i].ParagraphEnd = i == len(lines)-1 || lines[i+1].Forced
	}
}

// applyLineHeight 按行内最大字号与行高倍数计算每行高度。
func applyLineHeight(lines []Line, multiplier float64) {
	for i := range lines {
		size := lines[i].MaxSize
		if size <= 0 {
			size = DefaultFontSize
		}
		lines[i].Height = size * multiplier
	}
}
