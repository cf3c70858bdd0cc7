package receipt

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	logInternal "github.com/AlexStarov/starprnt-GoLang-lib/log"
)

var (
	// ErrUnknownStep is returned for a step kind Render does not know.
	ErrUnknownStep = errors.New("unknown receipt step")
	// ErrStepMode is returned for a step that has no meaning in the
	// template's mode, e.g. a barcode in a raster receipt.
	ErrStepMode = errors.New("step not supported in this mode")
	// ErrInvalidTemplate is returned for a template that fails to parse or
	// validate.
	ErrInvalidTemplate = errors.New("invalid receipt template")
)

// Mode is how a template is printed.
type Mode string

const (
	// ModeLine sends text as characters and uses the printer's fonts.
	ModeLine Mode = "line"
	// ModeRaster draws the text into an image and sends it as raster rows.
	ModeRaster Mode = "raster"
)

// Template describes one receipt. It is usually loaded from a TOML or YAML
// file, see Load.
type Template struct {
	Name string `toml:"name" yaml:"name"`
	Mode Mode   `toml:"mode" yaml:"mode"`
	// PrintableArea in dots: 576 for 3 inch paper, 832 for 4 inch.
	PrintableArea int `toml:"printable_area" yaml:"printable_area"`
	// Encoding of line mode text, a name known to package charset.
	Encoding string `toml:"encoding" yaml:"encoding"`
	// DotMatrix selects the impact printer text expansion commands.
	DotMatrix bool `toml:"dot_matrix" yaml:"dot_matrix"`

	// Raster document settings; empty means the receipt defaults.
	Speed       string `toml:"speed" yaml:"speed"`
	TopMargin   string `toml:"top_margin" yaml:"top_margin"`
	PageEnd     string `toml:"page_end" yaml:"page_end"`
	DocumentEnd string `toml:"document_end" yaml:"document_end"`

	// TextSize of raster text in dots.
	TextSize float64 `toml:"text_size" yaml:"text_size"`
	Compress bool    `toml:"compress" yaml:"compress"`

	Steps []Step `toml:"steps" yaml:"steps"`

	// Dir resolves relative image paths. Load sets it to the template's
	// directory.
	Dir string `toml:"-" yaml:"-"`
}

// Step is one entry of a template. Kind selects what it does; the other
// fields are read by the kinds that need them:
//
//	text       Text, Inline (no line feed), Bold and Size in raster mode
//	align      Value: left, center, right
//	bold, underline, invert
//	           Off turns the style off again
//	expand     Height, Width
//	tabs       Stops
//	barcode    Value (symbology), Data, Width, Height, Option
//	qrcode     Data, Value (correction L/M/Q/H), CellSize, Model
//	pdf417     Data, Security, Width (module), Height (aspect ratio)
//	image      Path, Dither
//	cut        Value: full, partial, full-feed, partial-feed
//	drawer     Drawer (1 or 2)
//	feed       Lines
//	raw        Data as hex, spaces allowed
//	init       reset the printer
type Step struct {
	Kind string `toml:"kind" yaml:"kind"`

	Text   string `toml:"text,omitempty" yaml:"text,omitempty"`
	Inline bool   `toml:"inline,omitempty" yaml:"inline,omitempty"`
	Value  string `toml:"value,omitempty" yaml:"value,omitempty"`
	Data   string `toml:"data,omitempty" yaml:"data,omitempty"`
	Off    bool   `toml:"off,omitempty" yaml:"off,omitempty"`
	Bold   bool   `toml:"bold,omitempty" yaml:"bold,omitempty"`

	Size     float64 `toml:"size,omitempty" yaml:"size,omitempty"`
	Height   int     `toml:"height,omitempty" yaml:"height,omitempty"`
	Width    int     `toml:"width,omitempty" yaml:"width,omitempty"`
	Option   int     `toml:"option,omitempty" yaml:"option,omitempty"`
	CellSize int     `toml:"cell_size,omitempty" yaml:"cell_size,omitempty"`
	Model    int     `toml:"model,omitempty" yaml:"model,omitempty"`
	Security int     `toml:"security,omitempty" yaml:"security,omitempty"`
	Stops    []int   `toml:"stops,omitempty" yaml:"stops,omitempty"`
	Lines    int     `toml:"lines,omitempty" yaml:"lines,omitempty"`
	Drawer   int     `toml:"drawer,omitempty" yaml:"drawer,omitempty"`

	Path   string `toml:"path,omitempty" yaml:"path,omitempty"`
	Dither bool   `toml:"dither,omitempty" yaml:"dither,omitempty"`
}

// Format of a template file.
type Format int

const (
	TOML Format = iota
	YAML
)

// FormatOf picks the format from a file extension: .yaml and .yml are YAML,
// everything else TOML.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML
	}
	return TOML
}

// Parse decodes and validates a template.
func Parse(data []byte, f Format) (*Template, error) {
	var t Template
	var err error
	switch f {
	case YAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(&t)
	default:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&t)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTemplate, err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// Load reads the template file at path.
func Load(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	t, err := Parse(data, FormatOf(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	t.Dir = filepath.Dir(path)

	logger := logInternal.Logger()
	logger.Debug().Str("file", path).Str("name", t.Name).Str("mode", string(t.Mode)).
		Int("steps", len(t.Steps)).Msg("Loaded receipt template")
	return t, nil
}

// Validate fills in the defaults (line mode, 3 inch paper) and checks the
// header fields. Steps are checked by Render.
func (t *Template) Validate() error {
	switch t.Mode {
	case "":
		t.Mode = ModeLine
	case ModeLine, ModeRaster:
	default:
		return fmt.Errorf("%w: mode %q", ErrInvalidTemplate, t.Mode)
	}
	if t.PrintableArea == 0 {
		t.PrintableArea = 576
	}
	if t.PrintableArea < 8 || t.PrintableArea > 0xffff {
		return fmt.Errorf("%w: printable area %d", ErrInvalidTemplate, t.PrintableArea)
	}
	if t.TextSize < 0 {
		return fmt.Errorf("%w: text size %g", ErrInvalidTemplate, t.TextSize)
	}
	if _, err := t.document(); err != nil {
		return err
	}
	return nil
}

// Marshal encodes t in format f. Loading the output gives t back.
func (t *Template) Marshal(f Format) ([]byte, error) {
	if f == YAML {
		return yaml.Marshal(t)
	}
	return toml.Marshal(t)
}
