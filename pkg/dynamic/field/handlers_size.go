package field

import (
	"fmt"
	"math"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/goliatone/go-dynform/internal/values"
)

var sizeUnits = map[string]float64{
	"BYTE": 1,
	"KB":   humanize.KByte,
	"MB":   humanize.MByte,
	"GB":   humanize.GByte,
	"TB":   humanize.TByte,
	"PB":   humanize.PByte,
	"KIB":  humanize.KiByte,
	"MIB":  humanize.MiByte,
	"GIB":  humanize.GiByte,
	"TIB":  humanize.TiByte,
	"PIB":  humanize.PiByte,
}

// sizeHandler renders byte quantities. source_unit names the unit of the raw
// value (BYTE by default); display_unit fixes the output unit, otherwise the
// best unit is chosen (binary units when options.binary is set).
type sizeHandler struct{}

func (sizeHandler) DisplayData(value any, opts Options) (Display, error) {
	n, ok := values.Number(value)
	if !ok || n < 0 || math.IsNaN(n) || math.IsInf(n, 0) {
		return textDisplay(TypeSize, value), fmt.Errorf("%w: size expects a non-negative number, got %v", ErrInvalidValue, value)
	}
	source := strings.ToUpper(opts.StringOr("source_unit", "BYTE"))
	factor, ok := sizeUnits[source]
	if !ok {
		return textDisplay(TypeSize, value), fmt.Errorf("%w: unknown source_unit %q", ErrInvalidValue, source)
	}
	bytes := n * factor

	display := strings.ToUpper(opts.String("display_unit"))
	if display == "" || display == "AUTO" {
		if opts.Bool("binary") {
			return Display{Type: TypeSize, Text: humanize.IBytes(uint64(bytes))}, nil
		}
		return Display{Type: TypeSize, Text: humanize.Bytes(uint64(bytes))}, nil
	}
	target, ok := sizeUnits[display]
	if !ok {
		return textDisplay(TypeSize, value), fmt.Errorf("%w: unknown display_unit %q", ErrInvalidValue, display)
	}
	label := opts.StringOr("display_unit", display)
	if display == "BYTE" {
		label = "B"
	}
	return Display{Type: TypeSize, Text: humanize.FtoaWithDigits(bytes/target, 2) + " " + label}, nil
}

func (sizeHandler) FormBinding(value any, opts Options) Binding {
	b := inputBinding(value, opts)
	b.InputType = "number"
	return b
}
