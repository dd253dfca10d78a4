package render

// Zoom limits for the full-screen image preview
const (
	ZoomStep = 1.5
	ZoomMin  = 0.5
	ZoomMax  = 5.0
)

// Zoom is the state of an image preview. Panning is only possible while
// zoomed in past 1x.
type Zoom struct {
	Scale float64
	X, Y  float64
}

// NewZoom returns an unzoomed preview
func NewZoom() Zoom {
	return Zoom{Scale: 1}
}

// In zooms in one step
func (z Zoom) In() Zoom {
	return z.set(z.Scale * ZoomStep)
}

// Out zooms out one step
func (z Zoom) Out() Zoom {
	return z.set(z.Scale / ZoomStep)
}

// Reset returns to 1x
func (z Zoom) Reset() Zoom {
	return NewZoom()
}

// CanPan reports whether dragging moves the image
func (z Zoom) CanPan() bool {
	return z.Scale > 1
}

// Pan moves the image by dx, dy when zoomed in
func (z Zoom) Pan(dx, dy float64) Zoom {
	if !z.CanPan() {
		return z
	}
	z.X += dx
	z.Y += dy
	return z
}

func (z Zoom) set(scale float64) Zoom {
	if scale < ZoomMin {
		scale = ZoomMin
	}
	if scale > ZoomMax {
		scale = ZoomMax
	}
	z.Scale = scale
	if !z.CanPan() {
		z.X, z.Y = 0, 0
	}
	return z
}
