// Package render paints application views onto a 128x64 monochrome canvas
// and pushes the result to an OLED panel or a terminal.
package render

import (
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
)

// Panel dimensions.
const (
	Width  = 128
	Height = 64
)

// Canvas is a monochrome frame buffer in the SSD1306 page layout.
type Canvas struct {
	img *image1bit.VerticalLSB
}

// NewCanvas creates a blank canvas.
func NewCanvas() *Canvas {
	return &Canvas{img: image1bit.NewVerticalLSB(image.Rect(0, 0, Width, Height))}
}

// Image returns the underlying buffer.
func (c *Canvas) Image() *image1bit.VerticalLSB {
	return c.img
}

// Clear turns every pixel off.
func (c *Canvas) Clear() {
	for i := range c.img.Pix {
		c.img.Pix[i] = 0
	}
}

// Set turns one pixel on or off. Out-of-range coordinates are ignored.
func (c *Canvas) Set(x, y int, on bool) {
	if x < 0 || y < 0 || x >= Width || y >= Height {
		return
	}
	c.img.SetBit(x, y, image1bit.Bit(on))
}

// On reports whether a pixel is lit.
func (c *Canvas) On(x, y int) bool {
	if x < 0 || y < 0 || x >= Width || y >= Height {
		return false
	}
	return bool(c.img.BitAt(x, y))
}

// Lit counts lit pixels inside r.
func (c *Canvas) Lit(r image.Rectangle) int {
	n := 0
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if c.On(x, y) {
				n++
			}
		}
	}
	return n
}

// FillRect sets a w x h block.
func (c *Canvas) FillRect(x, y, w, h int, on bool) {
	for yy := y; yy < y+h; yy++ {
		for xx := x; xx < x+w; xx++ {
			c.Set(xx, yy, on)
		}
	}
}

// Rect draws a one-pixel outline.
func (c *Canvas) Rect(x, y, w, h int) {
	c.HLine(x, y, w)
	c.HLine(x, y+h-1, w)
	c.VLine(x, y, h)
	c.VLine(x+w-1, y, h)
}

// HLine draws a horizontal line of length w.
func (c *Canvas) HLine(x, y, w int) {
	c.FillRect(x, y, w, 1, true)
}

// VLine draws a vertical line of length h.
func (c *Canvas) VLine(x, y, h int) {
	c.FillRect(x, y, 1, h, true)
}

// FillCircle draws a filled disc.
func (c *Canvas) FillCircle(cx, cy, r int, on bool) {
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy <= r*r {
				c.Set(cx+dx, cy+dy, on)
			}
		}
	}
}

// Line draws a straight line with Bresenham's algorithm.
func (c *Canvas) Line(x0, y0, x1, y1 int) {
	dx, sx := abs(x1-x0), 1
	if x0 > x1 {
		sx = -1
	}
	dy, sy := -abs(y1-y0), 1
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		c.Set(x0, y0, true)
		if x0 == x1 && y0 == y1 {
			return
		}
		if e2 := 2 * e; e2 >= dy {
			e += dy
			x0 += sx
		} else if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Text draws s with the 7x13 font; y is the baseline.
func (c *Canvas) Text(x, y int, s string, on bool) {
	src := image.NewUniform(image1bit.Bit(on))
	d := font.Drawer{
		Dst:  c.img,
		Src:  src,
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

// TextWidth returns the advance of s in the 7x13 font.
func TextWidth(s string) int {
	return font.MeasureString(basicfont.Face7x13, s).Round()
}

// CenterText draws s horizontally centered on cx.
func (c *Canvas) CenterText(cx, y int, s string, on bool) {
	c.Text(cx-TextWidth(s)/2, y, s, on)
}

// smallFont is used for secondary labels.
var smallFont tinyfont.Fonter = &tinyfont.TomThumb

// SmallText draws s with the compact font; y is the baseline.
func (c *Canvas) SmallText(x, y int, s string, on bool) {
	col := color.RGBA{A: 0xff}
	if on {
		col = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	}
	tinyfont.WriteLine(displayer{c}, smallFont, int16(x), int16(y), s, col)
}

// CenterSmallText draws s in the compact font horizontally centered on cx.
func (c *Canvas) CenterSmallText(cx, y int, s string, on bool) {
	c.SmallText(cx-SmallTextWidth(s)/2, y, s, on)
}

// SmallTextWidth returns the width of s in the compact font.
func SmallTextWidth(s string) int {
	_, outbox := tinyfont.LineWidth(smallFont, s)
	return int(outbox)
}

// displayer adapts a Canvas to the drivers.Displayer interface tinyfont draws on.
type displayer struct {
	c *Canvas
}

var _ drivers.Displayer = displayer{}

func (d displayer) Size() (x, y int16) {
	return Width, Height
}

func (d displayer) SetPixel(x, y int16, col color.RGBA) {
	d.c.Set(int(x), int(y), col.R|col.G|col.B != 0)
}

func (d displayer) Display() error {
	return nil
}
