package render

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"sync"

	"periph.io/x/devices/v3/ssd1306/image1bit"
)

// Output is a physical or simulated display.
type Output interface {
	Show(img *image1bit.VerticalLSB) error
	Close() error
}

// Renderer paints frames and pushes them to an Output. It keeps a copy of the
// last frame so other goroutines can snapshot the screen.
type Renderer struct {
	out    Output
	canvas *Canvas

	mu     sync.Mutex
	last   *image1bit.VerticalLSB
	frames int
}

// NewRenderer creates a renderer for out.
func NewRenderer(out Output) *Renderer {
	return &Renderer{
		out:    out,
		canvas: NewCanvas(),
		last:   image1bit.NewVerticalLSB(image.Rect(0, 0, Width, Height)),
	}
}

// Render draws f and shows it.
func (r *Renderer) Render(f Frame) error {
	Paint(r.canvas, f)

	r.mu.Lock()
	copy(r.last.Pix, r.canvas.Image().Pix)
	r.frames++
	r.mu.Unlock()

	if err := r.out.Show(r.canvas.Image()); err != nil {
		return fmt.Errorf("show frame: %w", err)
	}
	return nil
}

// Frames returns how many frames have been rendered.
func (r *Renderer) Frames() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames
}

// Snapshot returns a copy of the last rendered frame.
func (r *Renderer) Snapshot() *image1bit.VerticalLSB {
	r.mu.Lock()
	defer r.mu.Unlock()
	img := image1bit.NewVerticalLSB(r.last.Bounds())
	copy(img.Pix, r.last.Pix)
	return img
}

// PNG writes the last rendered frame as a PNG image.
func (r *Renderer) PNG(w io.Writer) error {
	return png.Encode(w, r.Snapshot())
}

// Close releases the output.
func (r *Renderer) Close() error {
	return r.out.Close()
}

// Null discards frames.
type Null struct{}

func (Null) Show(*image1bit.VerticalLSB) error { return nil }
func (Null) Close() error                      { return nil }

// Recorder keeps every frame it is shown. Used in tests and by --print-state.
type Recorder struct {
	mu     sync.Mutex
	Images []*image1bit.VerticalLSB
	Err    error
	Closed bool
}

func (r *Recorder) Show(img *image1bit.VerticalLSB) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	cp := image1bit.NewVerticalLSB(img.Bounds())
	copy(cp.Pix, img.Pix)
	r.Images = append(r.Images, cp)
	return nil
}

func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Closed = true
	return nil
}

// Count returns the number of recorded frames.
func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Images)
}
