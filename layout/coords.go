package layout

// Frame 是 sink 坐标系（自下而上）中的文本框：Left/Bottom 为左下角，Top = Bottom + Height。
type Frame struct {
	Left   float64 `json:"left"`
	Bottom float64 `json:"bottom"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Top 返回上边缘纵坐标。
func (f Frame) Top() float64 { return f.Bottom + f.Height }

// Flip 将自上而下的文本框换算到 sink 坐标：bottom = pageHeight - y - height。每个文本框只换算一次。
func Flip(b Box, pageHeight float64) Frame {
	return Frame{
		Left:   b.X,
		Bottom: pageHeight - b.Y - b.Height,
		Width:  b.Width,
		Height: b.Height,
	}
}
