package render

import "github.com/sweeney/oledclock/internal/weather"

// Seven-segment patterns, bit 0 = a (top) through bit 6 = g (middle).
var segments = [10]uint8{0x3f, 0x06, 0x5b, 0x4f, 0x66, 0x6d, 0x7d, 0x07, 0x7f, 0x6f}

// Digit draws d (0..9) as a seven-segment glyph in a w x h box with stroke t.
func (c *Canvas) Digit(x, y, w, h, t, d int) {
	if d < 0 || d > 9 {
		return
	}
	s := segments[d]
	half := h / 2
	if s&0x01 != 0 { // a
		c.FillRect(x+t, y, w-2*t, t, true)
	}
	if s&0x02 != 0 { // b
		c.FillRect(x+w-t, y+t, t, half-t, true)
	}
	if s&0x04 != 0 { // c
		c.FillRect(x+w-t, y+half, t, h-half-t, true)
	}
	if s&0x08 != 0 { // d
		c.FillRect(x+t, y+h-t, w-2*t, t, true)
	}
	if s&0x10 != 0 { // e
		c.FillRect(x, y+half, t, h-half-t, true)
	}
	if s&0x20 != 0 { // f
		c.FillRect(x, y+t, t, half-t, true)
	}
	if s&0x40 != 0 { // g
		c.FillRect(x+t, y+half-t/2, w-2*t, t, true)
	}
}

// Colon draws the two dots between digit groups.
func (c *Canvas) Colon(x, y, h, t int) {
	c.FillRect(x, y+h/3-t/2, t, t, true)
	c.FillRect(x, y+2*h/3-t/2, t, t, true)
}

// WiFi draws a three-bar signal icon, or a cross when disconnected.
func (c *Canvas) WiFi(x, y int, connected bool) {
	if !connected {
		c.Line(x, y+2, x+6, y+8)
		c.Line(x, y+8, x+6, y+2)
		return
	}
	c.FillRect(x, y+7, 2, 3, true)
	c.FillRect(x+4, y+4, 2, 6, true)
	c.FillRect(x+8, y+1, 2, 9, true)
}

// Battery draws an 18x10 battery outline filled to percent. A negative
// percent draws an empty outline.
func (c *Canvas) Battery(x, y, percent int) {
	const w, h = 15, 10
	c.Rect(x, y, w, h)
	c.FillRect(x+w, y+3, 2, 4, true)
	if percent <= 0 {
		return
	}
	if percent > 100 {
		percent = 100
	}
	fill := (w - 4) * percent / 100
	if fill < 1 {
		fill = 1
	}
	c.FillRect(x+2, y+2, fill, h-4, true)
}

// WeatherIcon draws a 32x32 icon for a weather icon code.
func (c *Canvas) WeatherIcon(x, y, icon int) {
	switch icon {
	case weather.IconCloudy:
		c.cloud(x, y+6)
	case weather.IconRain:
		c.cloud(x, y)
		for i := 0; i < 4; i++ {
			c.Line(x+8+i*6, y+22, x+5+i*6, y+29)
		}
	case weather.IconSnow:
		c.cloud(x, y)
		for i := 0; i < 4; i++ {
			cx, cy := x+7+i*6, y+25+(i%2)*3
			c.Set(cx, cy, true)
			c.Set(cx-1, cy, true)
			c.Set(cx+1, cy, true)
			c.Set(cx, cy-1, true)
			c.Set(cx, cy+1, true)
		}
	case weather.IconFog:
		for i := 0; i < 5; i++ {
			off := (i % 2) * 4
			c.FillRect(x+2+off, y+6+i*5, 24, 2, true)
		}
	default:
		c.sun(x+16, y+16)
	}
}

func (c *Canvas) sun(cx, cy int) {
	c.FillCircle(cx, cy, 7, true)
	for _, d := range [][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}, {1, 1}, {1, -1}, {-1, 1}, {-1, -1}} {
		c.Line(cx+d[0]*10, cy+d[1]*10, cx+d[0]*13, cy+d[1]*13)
	}
}

// cloud draws a 32x20 cloud with its top-left at (x, y).
func (c *Canvas) cloud(x, y int) {
	c.FillCircle(x+10, y+12, 6, true)
	c.FillCircle(x+18, y+8, 8, true)
	c.FillCircle(x+25, y+13, 5, true)
	c.FillRect(x+4, y+13, 26, 6, true)
}
