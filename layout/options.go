package layout

const (
	DefaultFontSize   = 12.0
	DefaultLineHeight = 1.2
)

// Measurer 返回指定字体、字号下文本的前进宽度。实现必须对相同 (font, text, size) 给出相同结果。
type Measurer interface {
	TextWidth(font, text string, size float64) (float64, error)
}

// withDefaults 补齐文本框缺省配置，只在入口处调用一次。
func (b Box) withDefaults() Box {
	if b.Align == "" {
		b.Align = AlignLeft
	}
	if b.VAlign == "" {
		b.VAlign = VAlignTop
	}
	if b.LineHeight <= 0 {
		b.LineHeight = DefaultLineHeight
	}
	if b.Overflow == "" {
		b.Overflow = OverflowVisible
	}
	if b.FontSize <= 0 {
		b.FontSize = DefaultFontSize
	}
	return b
}

// defaults 返回片段缺省字段所取的样式。
func (b Box) defaults() Style {
	st := Style{Font: b.Font, Size: b.FontSize, Opacity: 1}
	if st.Size <= 0 {
		st.Size = DefaultFontSize
	}
	if b.Color != nil {
		st.Color = *b.Color
	}
	if b.Opacity != nil {
		st.Opacity = clamp01(*b.Opacity)
	}
	return st
}

// resolve 将片段的可选字段与默认样式合并。
func resolve(f Fragment, def Style) Style {
	st := def
	if f.Font != "" {
		st.Font = f.Font
	}
	if f.Size > 0 {
		st.Size = f.Size
	}
	if f.Color != nil {
		st.Color = *f.Color
	}
	if f.Opacity != nil {
		st.Opacity = clamp01(*f.Opacity)
	}
	return st
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// ParseAlign 解析对齐字符串，支持 start/end 等别名。
func ParseAlign(v string) (Align, bool) {
	switch v {
	case "", "left", "start":
		return AlignLeft, true
	case "center", "middle":
		return AlignCenter, true
	case "right", "end":
		return AlignRight, true
	case "justify", "justify-fragment":
		return AlignJustifyFragment, true
	case "justify-word", "justify-words":
		return AlignJustifyWord, true
	default:
		return AlignLeft, false
	}
}

// ParseVAlign 解析垂直对齐字符串。
func ParseVAlign(v string) (VAlign, bool) {
	switch v {
	case "", "top":
		return VAlignTop, true
	case "middle", "center":
		return VAlignMiddle, true
	case "bottom":
		return VAlignBottom, true
	default:
		return VAlignTop, false
	}
}

// ParseOverflow 解析溢出策略。
func ParseOverflow(v string) (OverflowPolicy, bool) {
	switch v {
	case "", "report", "visible":
		return OverflowVisible, true
	case "clip":
		return OverflowClip, true
	case "hide", "hidden":
		return OverflowHide, true
	default:
		return OverflowVisible, false
	}
}
