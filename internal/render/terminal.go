package render

import (
	"github.com/nsf/termbox-go"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

const terminalHelp = "a/s/d click  A/S/D hold  q quit"

// Terminal shows frames in a terminal, two pixel rows per character cell.
type Terminal struct {
	ownsTerm bool
}

// NewTerminal initializes termbox unless another component already has.
func NewTerminal() (*Terminal, error) {
	t := &Terminal{}
	if !termbox.IsInit {
		if err := termbox.Init(); err != nil {
			return nil, err
		}
		t.ownsTerm = true
	}
	return t, nil
}

// cellRune returns the half-block character for a vertical pixel pair.
func cellRune(top, bottom bool) rune {
	switch {
	case top && bottom:
		return '█'
	case top:
		return '▀'
	case bottom:
		return '▄'
	default:
		return ' '
	}
}

func (t *Terminal) Show(img *image1bit.VerticalLSB) error {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y += 2 {
		row := (y - b.Min.Y) / 2
		for x := b.Min.X; x < b.Max.X; x++ {
			top := bool(img.BitAt(x, y))
			bottom := y+1 < b.Max.Y && bool(img.BitAt(x, y+1))
			termbox.SetCell(x-b.Min.X, row, cellRune(top, bottom), termbox.ColorWhite, termbox.ColorDefault)
		}
	}
	footer := (b.Dy() + 1) / 2
	for i, r := range terminalHelp {
		termbox.SetCell(i, footer+1, r, termbox.ColorDefault, termbox.ColorDefault)
	}
	return termbox.Flush()
}

func (t *Terminal) Close() error {
	if t.ownsTerm {
		termbox.Close()
	}
	return nil
}
