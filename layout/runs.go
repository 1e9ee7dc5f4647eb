package layout

// MergeRuns 合并相邻且样式完全相同的片段（字体、字号、颜色、透明度）。
// 只在绘制前对单行使用；断行前合并会丢失词边界。
func MergeRuns(pieces []Piece) []Piece {
	if len(pieces) == 0 {
		return nil
	}
	out := make([]Piece, 0, len(pieces))
	cur := pieces[0]
	for _, p := range pieces[1:] {
		if p.Style.Equal(cur.Style) {
			cur.Text += p.Text
			cur.Width += p.Width
			continue
		}
		out = append(out, cur)
		cur = p
	}
	out = append(out, cur)
	return out
}
