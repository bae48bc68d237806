package geometry

// Bbox 像素坐标下的轴对齐边界框
type Bbox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Area 计算边界框面积
func (b Bbox) Area() float64 {
	return b.Width * b.Height
}

// PolygonToBbox 将多边形转换为轴对齐边界框
// 顶点格式为 [x, y] 对的有序列表,长度不足 2 的顶点被忽略
func PolygonToBbox(polygon [][]float64) Bbox {
	var xs, ys []float64
	for _, p := range polygon {
		if len(p) >= 1 {
			xs = append(xs, p[0])
		}
		if len(p) >= 2 {
			ys = append(ys, p[1])
		}
	}
	if len(xs) == 0 || len(ys) == 0 {
		return Bbox{}
	}

	minX, maxX := xs[0], xs[0]
	for _, x := range xs {
		if x < minX {
			minX = x
		}
		if x > maxX {
			maxX = x
		}
	}
	minY, maxY := ys[0], ys[0]
	for _, y := range ys {
		if y < minY {
			minY = y
		}
		if y > maxY {
			maxY = y
		}
	}

	return Bbox{
		X:      minX,
		Y:      minY,
		Width:  maxX - minX,
		Height: maxY - minY,
	}
}

// Normalize 将像素坐标归一化到 [0,1]
func Normalize(value float64, max float64) float64 {
	if max == 0 {
		return 0
	}
	return value / max
}

// BboxToQuad 将边界框展开为显式 4 点矩形
// 顶点顺序: 左上、右上、右下、左下
func BboxToQuad(b Bbox) [][]float64 {
	return [][]float64{
		{b.X, b.Y},
		{b.X + b.Width, b.Y},
		{b.X + b.Width, b.Y + b.Height},
		{b.X, b.Y + b.Height},
	}
}

// FlattenPolygon 将 [x, y] 顶点列表展平为单层坐标序列
// COCO segmentation 使用该格式
func FlattenPolygon(polygon [][]float64) []float64 {
	flat := make([]float64, 0, len(polygon)*2)
	for _, p := range polygon {
		flat = append(flat, p...)
	}
	return flat
}
