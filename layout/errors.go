package layout

import (
	"errors"
	"fmt"
)

var (
	// ErrNoMeasurer 表示调用方未提供测量服务。
	ErrNoMeasurer = errors.New("layout: 缺少测量服务 Measurer")
	// ErrUnknownFont 表示字体句柄未注册；不会退回默认字体。
	ErrUnknownFont = errors.New("layout: 字体未注册")
	// ErrInvalidColor 表示颜色值无法解析。
	ErrInvalidColor = errors.New("layout: 颜色值无法解析")
)

// FontError 携带出错的字体句柄，errors.Is(err, ErrUnknownFont) 成立。
type FontError struct {
	Font string
	Err  error
}

func (e *FontError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("layout: 字体 %q 不可用: %v", e.Font, e.Err)
	}
	return fmt.Sprintf("layout: 字体 %q 未注册", e.Font)
}

func (e *FontError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrUnknownFont
}
