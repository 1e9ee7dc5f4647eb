package layout

import (
	"encoding/json"
	"os"
)

// WriteDebugJSON 将任意排版结果（例如各文本框的 Composition 或溢出报告）输出为 JSON，便于调试或可视化。
func WriteDebugJSON(v any, path string) error {
	if v == nil {
		return nil
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
