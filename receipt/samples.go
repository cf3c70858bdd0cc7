package receipt

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

//go:embed samples/*.toml samples/*.yaml
var samples embed.FS

// SampleNames lists the built-in receipts: line_3inch, line_4inch,
// raster_3inch, dot_impact, jp_3inch, chs_3inch and cht_3inch.
func SampleNames() []string {
	entries, _ := fs.ReadDir(samples, "samples")
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		n := e.Name()
		names = append(names, strings.TrimSuffix(n, path.Ext(n)))
	}
	sort.Strings(names)
	return names
}

// Sample returns the built-in receipt called name.
func Sample(name string) (*Template, error) {
	entries, err := fs.ReadDir(samples, "samples")
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		n := e.Name()
		if strings.TrimSuffix(n, path.Ext(n)) != name {
			continue
		}
		data, err := samples.ReadFile(path.Join("samples", n))
		if err != nil {
			return nil, err
		}
		return Parse(data, FormatOf(n))
	}
	return nil, fmt.Errorf("%w: no sample named %q", ErrInvalidTemplate, name)
}
