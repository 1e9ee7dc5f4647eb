package document

import (
	"github.com/ByLCY/textbox/layout"
	"github.com/ByLCY/textbox/shape"
)

// 该文件定义文档编译结果：页面、页面上的绘制项以及资源描述，供渲染与调试 JSON 共用。
// 所有长度单位均为 pt，坐标采用自上而下的约定（与 layout.Box 一致）。

// Result 保存编译后的页面与资源信息。
type Result struct {
	Pages     []Page       `json:"pages"`
	Resources ResourceSet  `json:"resources"`
	Meta      DocumentMeta `json:"meta"`
}

// ResourceSet 记录解析出的字体、颜色与样式定义。
type ResourceSet struct {
	Fonts  map[string]FontResource `json:"fonts"`
	Colors map[string]layout.Color `json:"colors"`
	Styles map[string]Style        `json:"styles"`
}

// FontResource 描述字体资源，src 可以是文件路径或 embed:* 形式。
type FontResource struct {
	Name  string `json:"name"`
	Src   string `json:"src"`
	Style string `json:"style,omitempty"`
}

// Style 用于描述可继承的 span 样式。
type Style struct {
	Name    string            `json:"name"`
	Extends string            `json:"extends,omitempty"`
	Props   map[string]string `json:"props"`
}

// DocumentMeta 保存 PDF 元信息。
type DocumentMeta struct {
	Title    string   `json:"title"`
	Author   string   `json:"author"`
	Subject  string   `json:"subject"`
	Creator  string   `json:"creator"`
	Keywords []string `json:"keywords"`
}

// Page 记录页面尺寸与按声明顺序排列的绘制项。
type Page struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Items  []Item  `json:"items"`
}

// ItemKind 为绘制项类型。
type ItemKind string

const (
	ItemArea    ItemKind = "area"
	ItemLine    ItemKind = "line"
	ItemRect    ItemKind = "rect"
	ItemEllipse ItemKind = "ellipse"
	ItemImage   ItemKind = "image"
)

// Item 是页面上的一个绘制项；Box 为其位置，其余字段按 Kind 使用。
type Item struct {
	Kind      ItemKind          `json:"kind"`
	Name      string            `json:"name,omitempty"`
	Box       layout.Box        `json:"box"`
	Fragments []layout.Fragment `json:"fragments,omitempty"`

	Radius     float64      `json:"radius,omitempty"`
	ShapeStyle *shape.Style `json:"shapeStyle,omitempty"`

	Src     string  `json:"src,omitempty"`
	Opacity float64 `json:"opacity,omitempty"`
}
