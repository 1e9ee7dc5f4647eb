package layout

// Position 计算每行的纵向游标、起始横坐标以及两端对齐的间隙，返回可直接绘制的 run。
//
// lines 应为溢出分类后实际绘制的行，垂直对齐以它们的总高度为准。
// single 为 true 表示单行模式：按片段两端对齐时不合并样式，且最后一行同样参与两端对齐。
func Position(m Measurer, lines []Line, frame Frame, box Box, single bool) ([]PositionedLine, error) {
	box = box.withDefaults()

	total := 0.0
	for _, ln := range lines {
		total += ln.Height
	}
	cursor := frame.Top()
	switch box.VAlign {
	case VAlignMiddle:
		cursor -= (frame.Height - total) / 2
	case VAlignBottom:
		cursor -= frame.Height - total
	}

	out := make([]PositionedLine, 0, len(lines))
	for _, ln := range lines {
		pl := PositionedLine{
			Index:  ln.Index,
			Cursor: cursor,
			X:      frame.Left,
			Width:  ln.Width,
			Height: ln.Height,
		}
		natural := !single && ln.ParagraphEnd
		var err error
		switch box.Align {
		case AlignJustifyFragment:
			pl.Runs, pl.Gap = justifyFragments(ln, frame, single, natural)
		case AlignJustifyWord:
			pl.Runs, pl.Gap, err = justifyWords(m, ln, frame, natural)
			if err != nil {
				return nil, err
			}
		default:
			pl.X = frame.Left + alignOffset(frame.Width, ln.Width, box.Align)
			pl.Runs = placeRuns(visible(MergeRuns(ln.Pieces)), pl.X, 0)
		}
		for i := range pl.Runs {
			pl.Runs[i].Y = baseline(cursor, ln.MaxSize, pl.Runs[i].Style.Size)
		}
		out = append(out, pl)
		cursor -= ln.Height
	}
	return out, nil
}

// baseline 让同一行内不同字号的文本落在同一基线上：y = cursor - size - (maxSize - size)。
func baseline(cursor, maxSize, size float64) float64 {
	return cursor - size - (maxSize - size)
}

func alignOffset(container, width float64, align Align) float64 {
	switch align {
	case AlignCenter:
		return (container - width) / 2
	case AlignRight:
		return container - width
	default:
		return 0
	}
}

// placeRuns 自 x 起依次摆放，每段之后追加 gap。
func placeRuns(pieces []Piece, x, gap float64) []PlacedRun {
	runs := make([]PlacedRun, 0, len(pieces))
	for _, p := range pieces {
		runs = append(runs, PlacedRun{Text: p.Text, Style: p.Style, X: x, Width: p.Width})
		x += p.Width + gap
	}
	return runs
}

func visible(pieces []Piece) []Piece {
	out := pieces[:0:0]
	for _, p := range pieces {
		if p.Text != "" {
			out = append(out, p)
		}
	}
	return out
}

// slackGap 将剩余宽度平均分配到 n-1 个间隙；剩余为负时不再压缩。
func slackGap(boxWidth, used float64, n int) float64 {
	if n < 2 {
		return 0
	}
	gap := (boxWidth - used) / float64(n-1)
	if gap < 0 {
		return 0
	}
	return gap
}

// justifyFragments 在片段之间分配剩余宽度。多行模式先合并样式，单行模式直接使用原始片段。
func justifyFragments(ln Line, frame Frame, single, natural bool) ([]PlacedRun, float64) {
	merged := visible(MergeRuns(ln.Pieces))
	if natural {
		return placeRuns(merged, frame.Left, 0), 0
	}
	items := merged
	if single {
		items = visible(ln.Pieces)
	}
	if len(items) < 2 {
		return placeRuns(merged, frame.Left, 0), 0
	}
	gap := slackGap(frame.Width, ln.Width, len(items))
	return placeRuns(items, frame.Left, gap), gap
}

// justifyWords 重新按词切分，空白并入间隙，剩余宽度平均分配到词与词之间。
func justifyWords(m Measurer, ln Line, frame Frame, natural bool) ([]PlacedRun, float64, error) {
	if natural {
		return placeRuns(visible(MergeRuns(ln.Pieces)), frame.Left, 0), 0, nil
	}
	var words []Piece
	used := 0.0
	for _, p := range ln.Pieces {
		if p.Text == "" {
			continue
		}
		tokens, err := splitPiece(m, p)
		if err != nil {
			return nil, 0, err
		}
		for _, tok := range tokens {
			if isBlank(tok.Text) {
				continue
			}
			words = append(words, tok)
			used += tok.Width
		}
	}
	if len(words) < 2 {
		return placeRuns(visible(MergeRuns(ln.Pieces)), frame.Left, 0), 0, nil
	}
	gap := slackGap(frame.Width, used, len(words))
	return placeRuns(words, frame.Left, gap), gap, nil
}
