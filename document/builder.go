// Package document 将 DSL AST 编译为逐页的绘制项：文本框、单行文本、形状与图片。
package document

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ByLCY/textbox/binding"
	"github.com/ByLCY/textbox/dsl"
	"github.com/ByLCY/textbox/fonts"
	"github.com/ByLCY/textbox/layout"
	"github.com/ByLCY/textbox/shape"
)

// DefaultFont 是未声明任何字体资源时注册的字体名。
const DefaultFont = "Body"

// Build 根据 DSL AST 生成页面与绘制项；data 用于替换 span 文本中的 ${path} 占位符。
func Build(doc *dsl.Document, data any) (*Result, error) {
	if doc == nil {
		return nil, fmt.Errorf("文档为空")
	}
	res, err := collectResources(doc)
	if err != nil {
		return nil, err
	}
	sections := doc.Pages()
	if len(sections) == 0 {
		return nil, fmt.Errorf("文档中缺少 page 段落")
	}

	b := &builder{res: res, data: data}
	pages := make([]Page, 0, len(sections))
	for i, section := range sections {
		page, err := b.buildPage(section)
		if err != nil {
			return nil, fmt.Errorf("第 %d 页: %w", i+1, err)
		}
		pages = append(pages, page)
	}
	return &Result{
		Pages:     pages,
		Resources: res,
		Meta:      collectMeta(doc),
	}, nil
}

type builder struct {
	res  ResourceSet
	data any
}

func (b *builder) buildPage(section *dsl.PageSection) (Page, error) {
	width, height, err := resolvePageSize(section.Spec)
	if err != nil {
		return Page{}, err
	}
	page := Page{Width: width, Height: height}
	if section.Block == nil {
		return page, nil
	}
	for _, cmd := range section.Block.Commands() {
		item, err := b.buildItem(cmd)
		if err != nil {
			return Page{}, err
		}
		page.Items = append(page.Items, item)
	}
	return page, nil
}

func (b *builder) buildItem(cmd *dsl.Command) (Item, error) {
	switch strings.ToLower(cmd.Name) {
	case "area":
		return b.buildText(cmd, ItemArea)
	case "line":
		return b.buildText(cmd, ItemLine)
	case "rect":
		return b.buildShape(cmd, ItemRect)
	case "ellipse":
		return b.buildShape(cmd, ItemEllipse)
	case "image":
		return b.buildImage(cmd)
	default:
		return Item{}, cmd.Errorf("未知命令")
	}
}

func (b *builder) buildText(cmd *dsl.Command, kind ItemKind) (Item, error) {
	styleName, attrs := cmd.Attributes(true)
	attrs, err := b.mergeStyle(styleName, attrs)
	if err != nil {
		return Item{}, cmd.Errorf("%w", err)
	}
	box, err := b.parseBox(attrs)
	if err != nil {
		return Item{}, cmd.Errorf("%w", err)
	}
	if box.Font == "" {
		box.Font = DefaultFont
		if err := b.checkFont(box.Font); err != nil {
			return Item{}, cmd.Errorf("未指定字体且缺少 %s: %w", DefaultFont, err)
		}
	}
	box.Wrap = kind == ItemArea
	if v, ok := attrs["wrap"]; ok {
		if box.Wrap, err = parseBool(v); err != nil {
			return Item{}, cmd.Errorf("wrap: %w", err)
		}
	}
	frags, err := b.collectFragments(cmd.Block)
	if err != nil {
		return Item{}, err
	}
	return Item{Kind: kind, Name: attrs["name"], Box: box, Fragments: frags}, nil
}

func (b *builder) parseBox(attrs map[string]string) (layout.Box, error) {
	var box layout.Box
	var err error
	for _, dim := range []struct {
		key string
		dst *float64
	}{{"x", &box.X}, {"y", &box.Y}, {"width", &box.Width}, {"height", &box.Height}} {
		if *dim.dst, err = lengthAttr(attrs, dim.key); err != nil {
			return box, err
		}
	}

	var ok bool
	if box.Align, ok = layout.ParseAlign(strings.ToLower(attrs["align"])); !ok {
		return box, fmt.Errorf("不支持的对齐方式 %q", attrs["align"])
	}
	if box.VAlign, ok = layout.ParseVAlign(strings.ToLower(attrs["valign"])); !ok {
		return box, fmt.Errorf("不支持的垂直对齐方式 %q", attrs["valign"])
	}
	if box.Overflow, ok = layout.ParseOverflow(strings.ToLower(attrs["overflow"])); !ok {
		return box, fmt.Errorf("不支持的溢出策略 %q", attrs["overflow"])
	}

	box.Font = attrs["font"]
	if box.Font != "" {
		if err := b.checkFont(box.Font); err != nil {
			return box, err
		}
	}
	if box.FontSize, err = lengthAttr(attrs, "size"); err != nil {
		return box, err
	}
	if v := attrs["line-height"]; v != "" {
		spec, err := layout.ParseLineHeight(v)
		if err != nil {
			return box, err
		}
		box.LineHeight = spec.Multiplier(box.FontSize)
	}
	if box.Color, err = b.colorAttr(attrs, "color"); err != nil {
		return box, err
	}
	if box.Opacity, err = opacityAttr(attrs); err != nil {
		return box, err
	}
	for _, flag := range []struct {
		key string
		dst *bool
	}{{"isolate", &box.Isolate}, {"border", &box.Border}} {
		if v, ok := attrs[flag.key]; ok {
			if *flag.dst, err = parseBool(v); err != nil {
				return box, fmt.Errorf("%s: %w", flag.key, err)
			}
		}
	}
	return box, nil
}

// collectFragments 按声明顺序收集片段：文本字面量、span 与 br。
// 文本中的换行符会拆分为带强制换行标记的片段。
func (b *builder) collectFragments(block *dsl.Block) ([]layout.Fragment, error) {
	if block == nil {
		return nil, nil
	}
	var (
		out     []layout.Fragment
		pending bool
	)
	for _, stmt := range block.Statements {
		switch {
		case stmt.Text != nil:
			out, pending = b.appendText(out, layout.Fragment{}, string(stmt.Text.Value), pending)
		case stmt.Command != nil && strings.EqualFold(stmt.Command.Name, "br"):
			pending = true
		case stmt.Command != nil && strings.EqualFold(stmt.Command.Name, "span"):
			base, brk, err := b.spanStyle(stmt.Command)
			if err != nil {
				return nil, err
			}
			out, pending = b.appendText(out, base, stmt.Command.Block.Text(), pending || brk)
		case stmt.Command != nil:
			return nil, stmt.Command.Errorf("文本块中只允许 span、br 与文本")
		}
	}
	return out, nil
}

func (b *builder) appendText(out []layout.Fragment, base layout.Fragment, text string, pending bool) ([]layout.Fragment, bool) {
	text = b.interpolate(text)
	for i, part := range strings.Split(text, "\n") {
		if i > 0 {
			pending = true
		}
		if part == "" {
			continue
		}
		f := base
		f.Text = part
		f.Break = pending
		pending = false
		out = append(out, f)
	}
	return out, pending
}

func (b *builder) interpolate(text string) string {
	if b.data == nil || !strings.Contains(text, "${") {
		return text
	}
	if missing := binding.Missing(text, b.data); len(missing) > 0 {
		layout.Logger().Warn("unresolved placeholders", "paths", missing)
	}
	return binding.Interpolate(text, b.data)
}

func (b *builder) spanStyle(cmd *dsl.Command) (layout.Fragment, bool, error) {
	styleName, attrs := cmd.Attributes(true)
	attrs, err := b.mergeStyle(styleName, attrs)
	if err != nil {
		return layout.Fragment{}, false, cmd.Errorf("%w", err)
	}
	var f layout.Fragment
	if f.Font = attrs["font"]; f.Font != "" {
		if err := b.checkFont(f.Font); err != nil {
			return f, false, cmd.Errorf("%w", err)
		}
	}
	if f.Size, err = lengthAttr(attrs, "size"); err != nil {
		return f, false, cmd.Errorf("%w", err)
	}
	if f.Color, err = b.colorAttr(attrs, "color"); err != nil {
		return f, false, cmd.Errorf("%w", err)
	}
	if f.Opacity, err = opacityAttr(attrs); err != nil {
		return f, false, cmd.Errorf("%w", err)
	}
	brk := false
	if v, ok := attrs["break"]; ok {
		if brk, err = parseBool(v); err != nil {
			return f, false, cmd.Errorf("break: %w", err)
		}
	}
	return f, brk, nil
}

func (b *builder) buildShape(cmd *dsl.Command, kind ItemKind) (Item, error) {
	styleName, attrs := cmd.Attributes(true)
	attrs, err := b.mergeStyle(styleName, attrs)
	if err != nil {
		return Item{}, cmd.Errorf("%w", err)
	}
	box, err := b.parseBox(map[string]string{
		"x": attrs["x"], "y": attrs["y"], "width": attrs["width"], "height": attrs["height"],
	})
	if err != nil {
		return Item{}, cmd.Errorf("%w", err)
	}
	if box.Width <= 0 || box.Height <= 0 {
		return Item{}, cmd.Errorf("宽高必须为正数")
	}
	st := shape.Style{}
	if st.Fill, err = b.colorAttr(attrs, "fill"); err != nil {
		return Item{}, cmd.Errorf("%w", err)
	}
	if st.Stroke, err = b.colorAttr(attrs, "stroke"); err != nil {
		return Item{}, cmd.Errorf("%w", err)
	}
	if st.StrokeWidth, err = lengthAttr(attrs, "stroke-width"); err != nil {
		return Item{}, cmd.Errorf("%w", err)
	}
	if st.Stroke != nil && st.StrokeWidth <= 0 {
		st.StrokeWidth = 1
	}
	if st.Opacity, err = opacityAttr(attrs); err != nil {
		return Item{}, cmd.Errorf("%w", err)
	}
	if v := attrs["dash"]; v != "" {
		if st.Dash, err = parseDash(v); err != nil {
			return Item{}, cmd.Errorf("dash: %w", err)
		}
	}
	if v, ok := attrs["clip"]; ok {
		if st.Clip, err = parseBool(v); err != nil {
			return Item{}, cmd.Errorf("clip: %w", err)
		}
	}
	item := Item{Kind: kind, Name: attrs["name"], Box: box, ShapeStyle: &st}
	if kind == ItemRect {
		if item.Radius, err = lengthAttr(attrs, "radius"); err != nil {
			return Item{}, cmd.Errorf("%w", err)
		}
	}
	return item, nil
}

func (b *builder) buildImage(cmd *dsl.Command) (Item, error) {
	_, attrs := cmd.Attributes(false)
	src := attrs["src"]
	if src == "" {
		return Item{}, cmd.Errorf("image 语句缺少 src")
	}
	box, err := b.parseBox(map[string]string{
		"x": attrs["x"], "y": attrs["y"], "width": attrs["width"], "height": attrs["height"],
	})
	if err != nil {
		return Item{}, cmd.Errorf("%w", err)
	}
	if box.Width <= 0 {
		return Item{}, cmd.Errorf("image 需要正的 width")
	}
	opacity := 1.0
	if p, err := opacityAttr(attrs); err != nil {
		return Item{}, cmd.Errorf("%w", err)
	} else if p != nil {
		opacity = *p
	}
	return Item{Kind: ItemImage, Name: attrs["name"], Box: box, Src: src, Opacity: opacity}, nil
}

// mergeStyle 将命名样式的属性作为默认值，行内属性覆盖之。
func (b *builder) mergeStyle(style string, inline map[string]string) (map[string]string, error) {
	out := make(map[string]string)
	if style != "" {
		s, ok := b.res.Styles[style]
		if !ok {
			return nil, fmt.Errorf("style %s 未定义", style)
		}
		for k, v := range s.Props {
			out[k] = v
		}
	}
	for k, v := range inline {
		out[k] = v
	}
	return out, nil
}

func (b *builder) checkFont(name string) error {
	if _, ok := b.res.Fonts[name]; !ok {
		return &layout.FontError{Font: name}
	}
	return nil
}

func (b *builder) colorAttr(attrs map[string]string, key string) (*layout.Color, error) {
	v := attrs[key]
	if v == "" {
		return nil, nil
	}
	c, err := resolveColor(v, b.res)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return &c, nil
}

func collectResources(doc *dsl.Document) (ResourceSet, error) {
	res := ResourceSet{
		Fonts:  map[string]FontResource{},
		Colors: map[string]layout.Color{},
		Styles: map[string]Style{},
	}
	rawStyles := map[string]Style{}

	for _, section := range doc.Sections {
		if section.Resources == nil || section.Resources.Block == nil {
			continue
		}
		for _, cmd := range section.Resources.Block.Commands() {
			switch cmd.Name {
			case "font":
				font := parseFontResource(cmd)
				if font.Name == "" || font.Src == "" {
					return res, cmd.Errorf("字体资源需要名称与 src")
				}
				res.Fonts[font.Name] = font
			case "color":
				name, value := parseColorResource(cmd)
				if name == "" || value == "" {
					return res, cmd.Errorf("颜色资源需要名称与取值")
				}
				c, err := parseColor(value)
				if err != nil {
					return res, cmd.Errorf("%w", err)
				}
				res.Colors[name] = c
			case "style":
				style := parseStyleResource(cmd)
				if style.Name == "" {
					return res, cmd.Errorf("样式资源需要名称")
				}
				rawStyles[style.Name] = style
			default:
				return res, cmd.Errorf("未知资源类型")
			}
		}
	}

	if len(res.Fonts) == 0 {
		res.Fonts[DefaultFont] = FontResource{Name: DefaultFont, Src: fonts.Prefix + "go-regular"}
	}

	resolved, err := resolveStyles(rawStyles)
	if err != nil {
		return res, err
	}
	res.Styles = resolved
	return res, nil
}

func collectMeta(doc *dsl.Document) DocumentMeta {
	meta := DocumentMeta{Creator: "textbox"}
	for _, section := range doc.Sections {
		if section.Meta == nil || section.Meta.Block == nil {
			continue
		}
		for _, stmt := range section.Meta.Block.Statements {
			if stmt.Assignment == nil {
				continue
			}
			val := stmt.Assignment.Value
			switch strings.ToLower(stmt.Assignment.Key) {
			case "title":
				meta.Title = val.String()
			case "author":
				meta.Author = val.String()
			case "subject":
				meta.Subject = val.String()
			case "creator":
				meta.Creator = val.String()
			case "keywords":
				meta.Keywords = val.Strings()
			}
		}
	}
	return meta
}

func parseFontResource(cmd *dsl.Command) FontResource {
	if len(cmd.Args) == 0 {
		return FontResource{}
	}
	font := FontResource{Name: cmd.Args[0].Value}
	for _, stmt := range blockAssignments(cmd.Block) {
		switch stmt.Key {
		case "src":
			font.Src = stmt.Value.String()
		case "style":
			font.Style = stmt.Value.String()
		}
	}
	return font
}

func parseStyleResource(cmd *dsl.Command) Style {
	if len(cmd.Args) == 0 {
		return Style{}
	}
	style := Style{Name: cmd.Args[0].Value, Props: map[string]string{}}
	if len(cmd.Args) >= 3 && strings.EqualFold(cmd.Args[1].Value, "extends") {
		style.Extends = cmd.Args[2].Value
	}
	for _, stmt := range blockAssignments(cmd.Block) {
		if val := stmt.Value.String(); val != "" {
			style.Props[stmt.Key] = val
		}
	}
	return style
}

func blockAssignments(block *dsl.Block) []*dsl.Assignment {
	if block == nil {
		return nil
	}
	var out []*dsl.Assignment
	for _, stmt := range block.Statements {
		if stmt.Assignment != nil {
			out = append(out, stmt.Assignment)
		}
	}
	return out
}

func resolveStyles(styles map[string]Style) (map[string]Style, error) {
	resolved := map[string]Style{}
	visiting := map[string]bool{}

	var dfs func(name string) (Style, error)
	dfs = func(name string) (Style, error) {
		if style, ok := resolved[name]; ok {
			return style, nil
		}
		style, ok := styles[name]
		if !ok {
			return Style{}, fmt.Errorf("style %s 未定义", name)
		}
		if visiting[name] {
			return Style{}, fmt.Errorf("style 继承存在循环：%s", name)
		}
		visiting[name] = true

		props := map[string]string{}
		if style.Extends != "" {
			parent, err := dfs(style.Extends)
			if err != nil {
				return Style{}, err
			}
			for k, v := range parent.Props {
				props[k] = v
			}
		}
		for k, v := range style.Props {
			props[k] = v
		}
		style.Props = props
		resolved[name] = style
		delete(visiting, name)
		return style, nil
	}

	for name := range styles {
		if _, err := dfs(name); err != nil {
			return nil, err
		}
	}
	return resolved, nil
}

// parseColorResource 支持 `color Accent #0F62FE` 与 `color Accent = #0F62FE`。
func parseColorResource(cmd *dsl.Command) (string, string) {
	if len(cmd.Args) < 2 {
		return "", ""
	}
	return cmd.Args[0].Value, cmd.Args[len(cmd.Args)-1].Value
}

// pagePresets 为常用纸张尺寸（mm）。
var pagePresets = map[string][2]float64{
	"A4":     {210, 297},
	"A5":     {148, 210},
	"LETTER": {215.9, 279.4},
}

// resolvePageSize 返回以 pt 为单位的页面宽高。
// 支持 `A4 landscape` 与 `custom width 300pt height 200pt`。
func resolvePageSize(spec dsl.PageSpec) (float64, float64, error) {
	var width, height float64
	params := spec.Params
	if strings.EqualFold(spec.Size, "custom") {
		attrs := map[string]string{}
		for i := 0; i+1 < len(params); i += 2 {
			attrs[params[i].Value] = params[i+1].Value
		}
		var err error
		if width, err = lengthAttr(attrs, "width"); err != nil {
			return 0, 0, err
		}
		if height, err = lengthAttr(attrs, "height"); err != nil {
			return 0, 0, err
		}
		if width <= 0 || height <= 0 {
			return 0, 0, fmt.Errorf("自定义页面需要正的 width 与 height")
		}
		return width, height, nil
	}

	base, ok := pagePresets[strings.ToUpper(spec.Size)]
	if !ok {
		return 0, 0, fmt.Errorf("暂不支持的纸张尺寸：%s", spec.Size)
	}
	width, height = base[0]*layout.MmToPt, base[1]*layout.MmToPt
	for _, token := range params {
		switch token.Value {
		case "landscape":
			width, height = height, width
		case "portrait":
		default:
			return 0, 0, fmt.Errorf("未知的页面参数：%s", token.Value)
		}
	}
	return width, height, nil
}

func resolveColor(value string, res ResourceSet) (layout.Color, error) {
	if c, ok := res.Colors[value]; ok {
		return c, nil
	}
	return parseColor(value)
}

// parseColor 解析 #RGB、#RRGGBB 与 #RRGGBBAA（忽略 alpha）。
func parseColor(value string) (layout.Color, error) {
	hex, ok := strings.CutPrefix(strings.TrimSpace(value), "#")
	if !ok {
		return layout.Color{}, fmt.Errorf("%w: %q", layout.ErrInvalidColor, value)
	}
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 && len(hex) != 8 {
		return layout.Color{}, fmt.Errorf("%w: %q", layout.ErrInvalidColor, value)
	}
	var rgb [3]int
	for i := range rgb {
		v, err := strconv.ParseUint(hex[i*2:i*2+2], 16, 8)
		if err != nil {
			return layout.Color{}, fmt.Errorf("%w: %q", layout.ErrInvalidColor, value)
		}
		rgb[i] = int(v)
	}
	return layout.Color{R: rgb[0], G: rgb[1], B: rgb[2]}, nil
}

// lengthAttr 将属性解析为 pt；属性缺失时返回 0。
func lengthAttr(attrs map[string]string, key string) (float64, error) {
	v := attrs[key]
	if v == "" {
		return 0, nil
	}
	l, err := layout.ParseLength(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return l.ToPT(), nil
}

func opacityAttr(attrs map[string]string) (*float64, error) {
	v := attrs["opacity"]
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSuffix(v, "%"), 64)
	if err != nil {
		return nil, fmt.Errorf("opacity %q 无法解析: %w", v, err)
	}
	if strings.HasSuffix(v, "%") {
		f /= 100
	}
	if f < 0 || f > 1 {
		return nil, fmt.Errorf("opacity 超出 0-1 范围: %q", v)
	}
	return &f, nil
}

var errBool = errors.New("需要 true 或 false")

// parseBool 的空值表示仅出现了属性名，视为开启。
func parseBool(v string) (bool, error) {
	switch strings.ToLower(v) {
	case "", "true", "yes", "on":
		return true, nil
	case "false", "no", "off":
		return false, nil
	default:
		return false, fmt.Errorf("%w: %q", errBool, v)
	}
}

// parseDash 解析 "3 2" 或 "3,2" 形式的虚线模式（单位与长度相同）。
func parseDash(v string) (*shape.Dash, error) {
	fields := strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == ' ' })
	lengths := make([]float64, 0, len(fields))
	for _, f := range fields {
		l, err := layout.ParseLength(f)
		if err != nil {
			return nil, err
		}
		lengths = append(lengths, l.ToPT())
	}
	return shape.NewDash(lengths...), nil
}
