package render

import (
	"errors"
	"fmt"
	"image"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"
)

// OLED drives a 128x64 SSD1306 panel over I2C.
type OLED struct {
	bus i2c.BusCloser
	dev *ssd1306.Dev
}

// OpenOLED initializes the host drivers and opens the panel on the named
// I2C bus ("" selects the first available).
func OpenOLED(busName string) (*OLED, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("init host: %w", err)
	}
	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("open i2c bus %q: %w", busName, err)
	}
	opts := ssd1306.DefaultOpts
	opts.W, opts.H = Width, Height
	dev, err := ssd1306.NewI2C(bus, &opts)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("open ssd1306: %w", err)
	}
	return &OLED{bus: bus, dev: dev}, nil
}

func (o *OLED) Show(img *image1bit.VerticalLSB) error {
	return o.dev.Draw(o.dev.Bounds(), img, image.Point{})
}

// Close blanks the panel and releases the bus.
func (o *OLED) Close() error {
	var errs []error
	if err := o.dev.Halt(); err != nil {
		errs = append(errs, fmt.Errorf("halt display: %w", err))
	}
	if err := o.bus.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close i2c bus: %w", err))
	}
	return errors.Join(errs...)
}
