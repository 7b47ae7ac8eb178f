package viewer

import (
	"image"
	"image/color"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	"github.com/disintegration/imaging"
	"github.com/philipparndt/goratio/pkg/geometry"
	"github.com/philipparndt/goratio/pkg/series"
	"github.com/philipparndt/goratio/pkg/viewer/raster"
	"github.com/philipparndt/goratio/pkg/viewport"
	"github.com/philipparndt/goratio/pkg/watcher"
)

// Handler receives pointer input in image coordinates and supplies the
// overlay of the displayed frame
type Handler interface {
	Press(p geometry.Point)
	Move(p geometry.Point) bool
	Release()
	// Scroll is called for wheel input, up is true when scrolling up
	Scroll(up bool)
	Overlay() raster.Overlay
}

// FrameView displays one window-levelled frame with its measurement overlay.
// Left drag edits, shift or right drag pans.
type FrameView struct {
	widget.BaseWidget

	handler   Handler
	view      *viewport.Viewport
	grid      *series.Grid
	frame     *image.RGBA
	size      fyne.Size
	lineWidth float32
	relayout  *watcher.Debouncer

	image   *canvas.Image
	objects []fyne.CanvasObject
	panning bool
}

// NewFrameView creates a frame view. Layout changes are coalesced and
// redrawn after the debounce delay.
func NewFrameView(handler Handler, view *viewport.Viewport, debounce time.Duration) *FrameView {
	v := &FrameView{
		handler:   handler,
		view:      view,
		lineWidth: 2,
		image:     canvas.NewImageFromImage(nil),
	}
	v.image.FillMode = canvas.ImageFillStretch
	v.image.ScaleMode = canvas.ImageScalePixels
	v.relayout = watcher.NewDebouncer(debounce, func() {
		fyne.Do(v.Refresh)
	})
	v.ExtendBaseWidget(v)
	return v
}

// SetLineWidth sets the stroke width of overlay lines
func (v *FrameView) SetLineWidth(width float32) {
	v.lineWidth = width
}

// SetFrame shows a new frame with the given window
func (v *FrameView) SetFrame(grid *series.Grid, window viewport.WindowLevel) {
	v.grid = grid
	v.frame = nil
	if grid != nil {
		v.frame = raster.Render(grid, window)
	}
	v.Refresh()
}

func (v *FrameView) imageSize() viewport.Size {
	if v.grid == nil {
		return viewport.Size{}
	}
	return viewport.NewSize(float64(v.grid.Width), float64(v.grid.Height))
}

func (v *FrameView) widgetSize() viewport.Size {
	return viewport.NewSize(float64(v.size.Width), float64(v.size.Height))
}

// toImage and toScreen map through the pixel-aligned crop so clicks and the
// overlay line up with the displayed image
func (v *FrameView) toImage(pos fyne.Position) (geometry.Point, bool) {
	if v.grid == nil {
		return geometry.Point{}, false
	}
	r := v.view.VisiblePixels(v.imageSize())
	return viewport.FromScreen(geometry.NewPoint(float64(pos.X), float64(pos.Y)), r, v.widgetSize())
}

func (v *FrameView) toScreen(p geometry.Point) (fyne.Position, bool) {
	r := v.view.VisiblePixels(v.imageSize())
	s, ok := viewport.ToScreen(p, r, v.widgetSize())
	return fyne.NewPos(float32(s.X), float32(s.Y)), ok
}

// MouseDown starts a workflow click, a drag or a pan
func (v *FrameView) MouseDown(event *desktop.MouseEvent) {
	if event.Button == desktop.MouseButtonSecondary || event.Modifier&fyne.KeyModifierShift != 0 {
		v.panning = true
		return
	}
	if p, ok := v.toImage(event.Position); ok {
		v.handler.Press(p)
		v.Refresh()
	}
}

// MouseUp ends a drag or pan
func (v *FrameView) MouseUp(event *desktop.MouseEvent) {
	v.endDrag()
}

// Dragged moves the grabbed segment part or pans the view
func (v *FrameView) Dragged(event *fyne.DragEvent) {
	if v.panning {
		delta := geometry.NewPoint(float64(event.Dragged.DX), float64(event.Dragged.DY))
		if v.grid != nil && v.view.PanBy(delta, v.imageSize(), v.widgetSize()) {
			v.Refresh()
		}
		return
	}
	if p, ok := v.toImage(event.Position); ok && v.handler.Move(p) {
		v.Refresh()
	}
}

// DragEnd handles the end of a drag event
func (v *FrameView) DragEnd() {
	v.endDrag()
}

func (v *FrameView) endDrag() {
	v.panning = false
	v.handler.Release()
}

// Scrolled handles scroll events for frame navigation
func (v *FrameView) Scrolled(event *fyne.ScrollEvent) {
	if v.grid == nil || event.Scrolled.DY == 0 {
		return
	}
	v.handler.Scroll(event.Scrolled.DY > 0)
}

// CreateRenderer creates the renderer for the widget
func (v *FrameView) CreateRenderer() fyne.WidgetRenderer {
	v.rebuild()
	return &frameViewRenderer{view: v}
}

func (v *FrameView) rebuild() {
	v.objects = []fyne.CanvasObject{v.image}

	if v.frame == nil {
		v.image.Image = nil
		v.image.Refresh()
		return
	}

	r := v.view.VisiblePixels(v.imageSize())
	bounds := image.Rect(int(r.X0), int(r.Y0), int(r.X1), int(r.Y1))
	v.image.Image = imaging.Crop(v.frame, bounds)
	v.image.Refresh()

	o := v.handler.Overlay()
	if o.Bone != nil {
		v.addSegment(*o.Bone, color.RGBA{raster.BoneColor.R, raster.BoneColor.G, raster.BoneColor.B, 110})
	}
	if o.Primary != nil {
		v.addSegment(o.Shifted(*o.Primary, geometry.SideNegative), raster.PrimaryColor)
	}
	if o.Secondary != nil {
		v.addSegment(o.Shifted(*o.Secondary, geometry.SidePositive), raster.SecondaryColor)
	}
	for _, p := range o.Pending {
		v.addMarker(p, raster.PendingColor)
	}

	if o.Caption != "" {
		text := canvas.NewText(o.Caption, raster.CaptionColor)
		text.TextStyle = fyne.TextStyle{Bold: true}
		text.Move(fyne.NewPos(6, 4))
		v.objects = append(v.objects, text)
	}
}

func (v *FrameView) addSegment(s geometry.Segment, col color.Color) {
	p1, ok1 := v.toScreen(s.P1)
	p2, ok2 := v.toScreen(s.P2)
	if !ok1 || !ok2 {
		return
	}

	line := canvas.NewLine(col)
	line.StrokeWidth = v.lineWidth
	line.Position1 = p1
	line.Position2 = p2
	v.objects = append(v.objects, line)

	v.addMarker(s.P1, col)
	v.addMarker(s.P2, col)
}

func (v *FrameView) addMarker(p geometry.Point, col color.Color) {
	pos, ok := v.toScreen(p)
	if !ok {
		return
	}
	marker := canvas.NewCircle(col)
	size := v.lineWidth * 3
	marker.Resize(fyne.NewSize(size, size))
	marker.Move(fyne.NewPos(pos.X-size/2, pos.Y-size/2))
	v.objects = append(v.objects, marker)
}

type frameViewRenderer struct {
	view *FrameView
}

func (r *frameViewRenderer) Layout(size fyne.Size) {
	r.view.size = size
	r.view.image.Resize(size)
	r.view.relayout.Trigger()
}

func (r *frameViewRenderer) MinSize() fyne.Size {
	return fyne.NewSize(400, 400)
}

func (r *frameViewRenderer) Refresh() {
	r.view.rebuild()
	canvas.Refresh(r.view)
}

func (r *frameViewRenderer) Objects() []fyne.CanvasObject {
	return r.view.objects
}

func (r *frameViewRenderer) Destroy() {
	r.view.relayout.Stop()
}
