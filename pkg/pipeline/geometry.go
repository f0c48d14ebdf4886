package pipeline

import "github.com/devicelab-dev/axreplay/pkg/core"

// Transform maps recorded window-relative coordinates into live screen
// coordinates. Scale is computed per axis; window managers resize
// width and height independently, so scaleX == scaleY is never assumed.
type Transform struct {
	ScaleX  float64
	ScaleY  float64
	OffsetX float64
	OffsetY float64
}

// ComputeTransform derives the projection from the recorded and live
// window frames. Recorded points are window-relative, so the offset is
// the live window origin and the scale the ratio of dimensions.
func ComputeTransform(recorded, live core.Rect) Transform {
	sx, sy := 1.0, 1.0
	if recorded.W > 0 {
		sx = live.W / recorded.W
	}
	if recorded.H > 0 {
		sy = live.H / recorded.H
	}
	return Transform{ScaleX: sx, ScaleY: sy, OffsetX: live.X, OffsetY: live.Y}
}

// Point projects a window-relative point into live screen space.
func (t Transform) Point(p core.Point) core.Point {
	return core.Point{
		X: t.OffsetX + p.X*t.ScaleX,
		Y: t.OffsetY + p.Y*t.ScaleY,
	}
}

// Rect projects a window-relative rectangle into live screen space.
func (t Transform) Rect(r core.Rect) core.Rect {
	return core.Rect{
		X: t.OffsetX + r.X*t.ScaleX,
		Y: t.OffsetY + r.Y*t.ScaleY,
		W: r.W * t.ScaleX,
		H: r.H * t.ScaleY,
	}
}

// WindowScale is a single scalar for size comparisons, the mean of the
// per-axis scales.
func (t Transform) WindowScale() float64 {
	return (t.ScaleX + t.ScaleY) / 2
}
