package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ByLCY/textbox/document"
	"github.com/ByLCY/textbox/dsl"
	"github.com/ByLCY/textbox/layout"
	"github.com/ByLCY/textbox/renderer"
	canvasrenderer "github.com/ByLCY/textbox/renderer/canvas"
)

func main() {
	input := flag.String("in", "examples/demo.textbox", "DSL 文件路径")
	output := flag.String("out", "output/demo.pdf", "PDF 输出路径")
	debug := flag.String("debug", "", "溢出报告 JSON 输出路径")
	dataJSON := flag.String("data", "", "绑定到 DSL 的 JSON 数据")
	dataFile := flag.String("data-file", "", "绑定数据 JSON 文件，优先于 -data")
	verbose := flag.Bool("v", false, "输出排版日志")
	flag.Parse()

	if *verbose {
		layout.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	inputData, err := loadData(*dataJSON, *dataFile)
	if err != nil {
		log.Fatalf("解析 data JSON 失败: %v", err)
	}

	var r renderer.Renderer = canvasrenderer.NewRenderer(filepath.Dir(*input))
	out, err := run(*input, *output, *debug, inputData, r)
	if err != nil {
		log.Fatalf("生成 PDF 失败: %v", err)
	}
	for _, rep := range out.Reports {
		if rep.Report.Overflowed {
			log.Printf("第 %d 页 %s %s: %s", rep.Page, rep.Kind, rep.Name, rep.Report.Message)
		}
	}
	fmt.Printf("已生成 PDF：%s\n", *output)
}

func loadData(inline, path string) (any, error) {
	raw := []byte(inline)
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		raw = b
	}
	if len(raw) == 0 {
		return nil, nil
	}
	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	return data, nil
}

// run 串联解析、构建与渲染。
func run(inputPath, outputPath, debugPath string, data any, r renderer.Renderer) (*renderer.Output, error) {
	if r == nil {
		return nil, fmt.Errorf("renderer 不能为空")
	}
	file, err := os.Open(inputPath)
	if err != nil {
		return nil, fmt.Errorf("无法打开 DSL 文件 %s: %w", inputPath, err)
	}
	defer file.Close()

	doc, err := dsl.Parse(file)
	if err != nil {
		return nil, fmt.Errorf("解析 DSL 失败: %w", err)
	}

	result, err := document.Build(doc, data)
	if err != nil {
		return nil, fmt.Errorf("构建文档失败: %w", err)
	}

	out, err := r.Render(result)
	if err != nil {
		return nil, fmt.Errorf("渲染 PDF 失败: %w", err)
	}

	if debugPath != "" {
		if err := writeDebug(out, debugPath); err != nil {
			return nil, err
		}
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return nil, fmt.Errorf("创建输出目录失败: %w", err)
	}
	if err := os.WriteFile(outputPath, out.Bytes, 0o644); err != nil {
		return nil, fmt.Errorf("写入 PDF 文件失败: %w", err)
	}
	return out, nil
}

func writeDebug(out *renderer.Output, debugPath string) error {
	if err := os.MkdirAll(filepath.Dir(debugPath), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	if err := layout.WriteDebugJSON(out, debugPath); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}
