package layout

import (
	"fmt"
	"strings"
	"unicode"
)

// Measure 合并片段样式并测量其宽度。样式只在这里解析一次，绘制阶段直接复用 Piece.Style。
func Measure(m Measurer, f Fragment, def Style) (Piece, error) {
	st := resolve(f, def)
	p := Piece{Text: f.Text, Style: st, Break: f.Break}
	w, err := width(m, st, f.Text)
	if err != nil {
		return Piece{}, err
	}
	p.Width = w
	return p, nil
}

// MeasureAll 按顺序测量全部片段，遇到第一个错误立即返回。
func MeasureAll(m Measurer, frags []Fragment, def Style) ([]Piece, error) {
	out := make([]Piece, 0, len(frags))
	for i, f := range frags {
		p, err := Measure(m, f, def)
		if err != nil {
			return nil, fmt.Errorf("测量第 %d 个片段失败: %w", i, err)
		}
		out = append(out, p)
	}
	return out, nil
}

func width(m Measurer, st Style, text string) (float64, error) {
	if m == nil {
		return 0, ErrNoMeasurer
	}
	if text == "" {
		return 0, nil
	}
	return m.TextWidth(st.Font, text, st.Size)
}

// SplitWords 将片段按空白边界拆分：连续的非空白与连续的空白各成一个子片段，拼接后与原文完全一致。
// 强制换行标记只保留在第一个子片段上。
func SplitWords(f Fragment) []Fragment {
	tokens := tokenize(f.Text)
	if len(tokens) == 0 {
		return []Fragment{f}
	}
	out := make([]Fragment, len(tokens))
	for i, tok := range tokens {
		sub := f
		sub.Text = tok
		sub.Break = f.Break && i == 0
		out[i] = sub
	}
	return out
}

// splitPiece 是 SplitWords 的已测量版本，逐个测量子片段。
func splitPiece(m Measurer, p Piece) ([]Piece, error) {
	words := SplitWords(p.fragment())
	if len(words) <= 1 {
		return []Piece{p}, nil
	}
	out := make([]Piece, len(words))
	for i, w := range words {
		sub, err := Measure(m, w, p.Style)
		if err != nil {
			return nil, err
		}
		out[i] = sub
	}
	return out, nil
}

// fragment 把已解析的样式写回片段，重新测量时得到同一个 Style。
func (p Piece) fragment() Fragment {
	c, op := p.Style.Color, p.Style.Opacity
	return Fragment{
		Text:    p.Text,
		Font:    p.Style.Font,
		Size:    p.Style.Size,
		Color:   &c,
		Opacity: &op,
		Break:   p.Break,
	}
}

func tokenize(s string) []string {
	var tokens []string
	start := 0
	lastWasSpace := false
	for i, r := range s {
		isSpace := unicode.IsSpace(r)
		if i > start && isSpace != lastWasSpace {
			tokens = append(tokens, s[start:i])
			start = i
		}
		lastWasSpace = isSpace
	}
	if start < len(s) {
		tokens = append(tokens, s[start:])
	}
	return tokens
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
