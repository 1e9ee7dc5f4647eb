package layout

// 该文件定义排版引擎的输入（片段、文本框）与输出（行、定位行、溢出报告），供测量、断行、布局与绘制共用。

// Color 采用 0-255 的 RGB 数值。
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// Equal 逐字段比较颜色。
func (c Color) Equal(o Color) bool {
	return c.R == o.R && c.G == o.G && c.B == o.B
}

// Fragment 是调用方提供的一段带样式文本，排版过程中不会被重新排序。
type Fragment struct {
	Text    string   `json:"text"`
	Font    string   `json:"font,omitempty"`    // 字体句柄，由 Measurer 解释
	Size    float64  `json:"size,omitempty"`    // <=0 时取文本框默认字号
	Color   *Color   `json:"color,omitempty"`   // 为空时取文本框默认颜色
	Opacity *float64 `json:"opacity,omitempty"` // 0-1，为空时取文本框默认透明度
	Break   bool     `json:"break,omitempty"`   // 在该片段之前强制换行
}

// Style 是片段与文本框默认值合并后的最终样式。
type Style struct {
	Font    string  `json:"font"`
	Size    float64 `json:"size"`
	Color   Color   `json:"color"`
	Opacity float64 `json:"opacity"`
}

// Equal 判断两个样式能否合并为同一个 run。
func (s Style) Equal(o Style) bool {
	return s.Font == o.Font && s.Size == o.Size && s.Color.Equal(o.Color) && s.Opacity == o.Opacity
}

// Piece 是已测量的片段（或按词拆出的子片段）。
type Piece struct {
	Text  string  `json:"text"`
	Style Style   `json:"style"`
	Width float64 `json:"width"`
	Break bool    `json:"break,omitempty"`
}

// Align 为水平对齐方式。
type Align string

const (
	AlignLeft            Align = "left"
	AlignCenter          Align = "center"
	AlignRight           Align = "right"
	AlignJustifyFragment Align = "justify"
	AlignJustifyWord     Align = "justify-word"
)

// VAlign 为垂直对齐方式。
type VAlign string

const (
	VAlignTop    VAlign = "top"
	VAlignMiddle VAlign = "middle"
	VAlignBottom VAlign = "bottom"
)

// OverflowPolicy 决定内容超出文本框时的处理方式。
type OverflowPolicy string

const (
	OverflowVisible OverflowPolicy = "report" // 仅报告，全部绘制
	OverflowClip    OverflowPolicy = "clip"   // 截断超出高度的行
	OverflowHide    OverflowPolicy = "hide"   // 任意溢出即整体放弃绘制
)

// Box 是目标矩形（自上而下坐标）及其排版配置。
type Box struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	Align      Align          `json:"align,omitempty"`
	VAlign     VAlign         `json:"valign,omitempty"`
	Wrap       bool           `json:"wrap"`
	LineHeight float64        `json:"lineHeight,omitempty"` // 行高倍数，<=0 时取 DefaultLineHeight
	Overflow   OverflowPolicy `json:"overflow,omitempty"`

	Font     string   `json:"font,omitempty"`
	FontSize float64  `json:"fontSize,omitempty"`
	Color    *Color   `json:"color,omitempty"`
	Opacity  *float64 `json:"opacity,omitempty"`

	Isolate bool `json:"isolate,omitempty"` // 绘制前后保存/恢复图形状态
	Border  bool `json:"border,omitempty"`  // 绘制文本框边框，便于调试

	OnOverflow func(OverflowReport) `json:"-"`
}

// Line 是断行后的一行。
type Line struct {
	Index   int     `json:"index"`
	Pieces  []Piece `json:"pieces"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	MaxSize float64 `json:"maxSize"`
	Forced  bool    `json:"forced,omitempty"` // 该行由强制换行开始
	// ParagraphEnd 为真表示这是段落最后一行（全部行的最后一行，或下一行由强制换行开始）。
	ParagraphEnd bool `json:"paragraphEnd,omitempty"`
}

// Text 拼接该行所有片段的文本。
func (l Line) Text() string {
	n := 0
	for _, p := range l.Pieces {
		n += len(p.Text)
	}
	buf := make([]byte, 0, n)
	for _, p := range l.Pieces {
		buf = append(buf, p.Text...)
	}
	return string(buf)
}

// PlacedRun 是最终交给绘制端的一段文本（sink 坐标，自下而上）。
type PlacedRun struct {
	Text  string  `json:"text"`
	Style Style   `json:"style"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Width float64 `json:"width"`
}

// PositionedLine 记录一行的纵向游标、起始横坐标与两端对齐时的间隙宽度。
type PositionedLine struct {
	Index  int         `json:"index"`
	Cursor float64     `json:"cursor"`
	X      float64     `json:"x"`
	Width  float64     `json:"width"`
	Height float64     `json:"height"`
	Gap    float64     `json:"gap,omitempty"`
	Runs   []PlacedRun `json:"runs"`
}

// OverflowedLine 描述一行未能放入文本框的内容及其原始序号。
type OverflowedLine struct {
	Index  int     `json:"index"`
	Text   string  `json:"text"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// OverflowReport 是溢出分类结果；单行模式填写 LineWidth/LineHeight/Parts，多行模式填写行数与溢出行。
type OverflowReport struct {
	Overflowed bool `json:"overflowed"`
	OverflowX  bool `json:"overflowX"`
	OverflowY  bool `json:"overflowY"`

	LineWidth  float64  `json:"lineWidth,omitempty"`
	LineHeight float64  `json:"lineHeight,omitempty"`
	Parts      []string `json:"parts,omitempty"`

	TotalLines      int              `json:"totalLines,omitempty"`
	RenderedLines   int              `json:"renderedLines"`
	ContentHeight   float64          `json:"contentHeight,omitempty"`
	OverflowedLines []OverflowedLine `json:"overflowedLines,omitempty"`

	MaxWidth  float64 `json:"maxWidth"`
	MaxHeight float64 `json:"maxHeight"`
	Message   string  `json:"message"`
}

// OverflowedIndices 返回溢出行的原始序号。
func (r OverflowReport) OverflowedIndices() []int {
	out := make([]int, len(r.OverflowedLines))
	for i, l := range r.OverflowedLines {
		out[i] = l.Index
	}
	return out
}
