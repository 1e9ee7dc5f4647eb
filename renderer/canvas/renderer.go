package canvasrenderer

import (
	"bytes"
	"fmt"
	"image/color"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/ByLCY/textbox/document"
	"github.com/ByLCY/textbox/fonts"
	"github.com/ByLCY/textbox/layout"
	"github.com/ByLCY/textbox/renderer"
)

// Renderer 通过 github.com/tdewolff/canvas 输出 PDF，同时作为 layout.Measurer 提供文本宽度。
// 对外接口一律使用 pt，与 canvas 交互时在边界换算为 mm。
type Renderer struct {
	baseDir string

	// 注入的资源，通过 built-in:<name> 引用
	fontBlobs  map[string][]byte
	imageBlobs map[string][]byte

	fontMu       sync.Mutex
	fontFamilies map[string]*fontFamilyEntry
}

var (
	_ renderer.Renderer = (*Renderer)(nil)
	_ layout.Measurer   = (*Renderer)(nil)
)

type fontFamilyEntry struct {
	family *canvas.FontFamily
	style  canvas.FontStyle
}

// Options configures the canvas renderer.
type Options struct {
	BaseDir string
	Fonts   map[string]Resource // built-in fonts accessible via built-in:<name>
	Images  map[string]Resource // built-in images accessible via built-in:<name>
}

// Resource can be provided either by Bytes or by Path.
type Resource struct {
	Bytes []byte
	Path  string
}

// NewRenderer creates a canvas-based renderer rooted at baseDir for resolving assets.
func NewRenderer(baseDir string) *Renderer { return NewRendererWithOptions(Options{BaseDir: baseDir}) }

// NewRendererWithOptions creates a renderer with injected resources and optional baseDir.
// 注入的资源若只给出 Path，会在构造时读取；读取失败的资源在被引用时报错。
func NewRendererWithOptions(opts Options) *Renderer {
	return &Renderer{
		baseDir:      opts.BaseDir,
		fontBlobs:    ingest(opts.Fonts),
		imageBlobs:   ingest(opts.Images),
		fontFamilies: map[string]*fontFamilyEntry{},
	}
}

func ingest(resources map[string]Resource) map[string][]byte {
	out := make(map[string][]byte, len(resources))
	for name, res := range resources {
		if name == "" {
			continue
		}
		data, err := readResource(res)
		if err != nil {
			layout.Logger().Warn("skip injected resource", "name", name, "err", err)
			continue
		}
		out[name] = data
	}
	return out
}

// Render 将文档的所有页面绘制为 PDF，并收集每个文本项的溢出报告。
func (r *Renderer) Render(doc *document.Result) (*renderer.Output, error) {
	if doc == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	if len(doc.Pages) == 0 {
		return nil, fmt.Errorf("缺少可渲染的页面")
	}
	for _, font := range doc.Resources.Fonts {
		if err := r.RegisterFont(font); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	first := doc.Pages[0]
	writer := pdf.New(&buf, toMm(first.Width), toMm(first.Height), nil)
	applyMeta(writer, doc.Meta)

	out := &renderer.Output{}
	for i, page := range doc.Pages {
		if i > 0 {
			writer.NewPage(toMm(page.Width), toMm(page.Height))
		}
		target := r.NewPage(page.Width, page.Height)
		reports, err := renderer.RenderPage(target, i+1, page)
		if err != nil {
			return nil, err
		}
		out.Reports = append(out.Reports, reports...)
		target.canvas.RenderTo(writer)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	out.Bytes = buf.Bytes()
	layout.Logger().Debug("pdf rendered", "pages", len(doc.Pages), "bytes", len(out.Bytes))
	return out, nil
}

func applyMeta(writer *pdf.PDF, meta document.DocumentMeta) {
	keywords := strings.Join(meta.Keywords, ", ")
	writer.SetInfo(meta.Title, meta.Subject, keywords, meta.Author, meta.Creator)
}

// RegisterFont 加载字体资源并以资源名注册；同名资源重复注册时保留第一次的结果。
func (r *Renderer) RegisterFont(font document.FontResource) error {
	if font.Name == "" {
		return fmt.Errorf("字体资源缺少名称")
	}
	r.fontMu.Lock()
	defer r.fontMu.Unlock()
	if _, ok := r.fontFamilies[font.Name]; ok {
		return nil
	}
	data, err := r.loadFontBytes(font)
	if err != nil {
		return &layout.FontError{Font: font.Name, Err: err}
	}
	style := parseFontStyle(font.Style)
	family := canvas.NewFontFamily(font.Name)
	if err := family.LoadFont(data, 0, style); err != nil {
		return &layout.FontError{Font: font.Name, Err: err}
	}
	r.fontFamilies[font.Name] = &fontFamilyEntry{family: family, style: style}
	return nil
}

// TextWidth 实现 layout.Measurer：size 与返回值均为 pt。
func (r *Renderer) TextWidth(font, text string, size float64) (float64, error) {
	face, err := r.fontFace(font, size, canvas.Black)
	if err != nil {
		return 0, err
	}
	if text == "" {
		return 0, nil
	}
	return toPt(face.TextWidth(text)), nil
}

// fontFace 不会退回默认字体：未注册的字体返回 *layout.FontError。
func (r *Renderer) fontFace(name string, sizePt float64, col color.Color) (*canvas.FontFace, error) {
	r.fontMu.Lock()
	entry, ok := r.fontFamilies[name]
	r.fontMu.Unlock()
	if !ok {
		return nil, &layout.FontError{Font: name}
	}
	return entry.family.Face(sizePt, col, entry.style, canvas.FontNormal), nil
}

func (r *Renderer) loadFontBytes(font document.FontResource) ([]byte, error) {
	src := font.Src
	switch {
	case src == "":
		return nil, fmt.Errorf("字体 %s 缺少 src", font.Name)
	case strings.HasPrefix(src, fonts.Prefix):
		return fonts.Load(src)
	case hasBuiltinPrefix(src):
		name := trimBuiltinPrefix(src)
		if blob, ok := r.fontBlobs[name]; ok {
			return blob, nil
		}
		return nil, fmt.Errorf("找不到内置字体资源 built-in:%s", name)
	default:
		path, err := r.resolvePath(src)
		if err != nil {
			return nil, err
		}
		return readResource(Resource{Path: path})
	}
}

func parseFontStyle(style string) canvas.FontStyle {
	s := strings.ToLower(style)
	result := canvas.FontRegular
	switch {
	case strings.Contains(s, "black"):
		result = canvas.FontBlack
	case strings.Contains(s, "extrabold"):
		result = canvas.FontExtraBold
	case strings.Contains(s, "semibold"), strings.Contains(s, "demibold"):
		result = canvas.FontSemiBold
	case strings.Contains(s, "bold"):
		result = canvas.FontBold
	case strings.Contains(s, "medium"):
		result = canvas.FontMedium
	case strings.Contains(s, "light"):
		result = canvas.FontLight
	}
	if strings.Contains(s, "italic") || strings.Contains(s, "oblique") {
		result |= canvas.FontItalic
	}
	return result
}

// toPt 将毫米(mm)转换为点(pt)。
func toPt(mm float64) float64 { return mm * layout.MmToPt }

// toMm 将点(pt)转换为毫米(mm)。
func toMm(pt float64) float64 { return pt * layout.PtToMm }
