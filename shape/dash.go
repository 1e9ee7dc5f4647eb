package shape

import "math"

// Dash 是描边虚线模式：交替的线段与间隙长度。
type Dash struct {
	Array  []float64 `json:"array"`
	Offset float64   `json:"offset,omitempty"`
}

// NewDash 由交替的线段/间隙长度构建虚线模式；负值取绝对值，
// 全部为 0（或未提供）时返回 nil，表示实线。
func NewDash(lengths ...float64) *Dash {
	solid := true
	normalized := make([]float64, len(lengths))
	for i, l := range lengths {
		normalized[i] = math.Abs(l)
		if normalized[i] > 0 {
			solid = false
		}
	}
	if solid {
		return nil
	}
	return &Dash{Array: normalized}
}

// WithOffset 返回带起始偏移的副本。
func (d *Dash) WithOffset(offset float64) *Dash {
	if d == nil {
		return nil
	}
	return &Dash{Array: d.Array, Offset: offset}
}

// Pattern 返回偶数长度的模式数组；奇数长度按惯例重复一次。
func (d *Dash) Pattern() []float64 {
	if d == nil || len(d.Array) == 0 {
		return nil
	}
	if len(d.Array)%2 == 0 {
		return d.Array
	}
	out := make([]float64, 0, len(d.Array)*2)
	out = append(out, d.Array...)
	return append(out, d.Array...)
}

// PatternLength 返回一个完整周期的长度。
func (d *Dash) PatternLength() float64 {
	total := 0.0
	for _, l := range d.Pattern() {
		total += l
	}
	return total
}
