package printer

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/AlexStarov/starprnt-GoLang-lib/charset"
)

func build(t *testing.T, cmds ...Command) []byte {
	t.Helper()
	b, err := Build(cmds...)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return b.Flatten()
}

func TestCommandBytes(t *testing.T) {
	tests := []struct {
		name string
		cmd  Command
		want []byte
	}{
		{"initialize", Initialize{}, []byte{0x1b, 0x40}},
		{"raw", Raw{Data: []byte{1, 2, 3}}, []byte{1, 2, 3}},
		{"line feed default", LineFeed{}, []byte{0x0a}},
		{"line feed 3", LineFeed{Lines: 3}, []byte{0x0a, 0x0a, 0x0a}},
		{"align center", Align{Alignment: AlignCenter}, []byte{0x1b, 0x1d, 'a', '1'}},
		{"align right", Align{Alignment: AlignRight}, []byte{0x1b, 0x1d, 'a', '2'}},
		{"emphasis on", Emphasis{On: true}, []byte{0x1b, 'E'}},
		{"emphasis off", Emphasis{}, []byte{0x1b, 'F'}},
		{"underline", Underline{On: true}, []byte{0x1b, '-', '1'}},
		{"invert", Invert{On: true}, []byte{0x1b, '4'}},
		{"invert off", Invert{}, []byte{0x1b, '5'}},
		{"expansion", Expansion{Height: 2, Width: 1}, []byte{0x1b, 'i', '2', '1'}},
		{"dot matrix expansion", Expansion{Width: 1, DotMatrix: true}, []byte{0x1b, 'h', '0', 0x1b, 'W', '1'}},
		{"tabs", HorizontalTabs{Stops: []int{2, 10, 34}}, []byte{0x1b, 'D', 2, 10, 34, 0}},
		{"tabs cleared", HorizontalTabs{}, []byte{0x1b, 'D', 0}},
		{"drawer 1", CashDrawer{Drawer: 1}, []byte{0x07}},
		{"drawer 2", CashDrawer{Drawer: 2}, []byte{0x1a}},
		{"cut partial feed", Cut{Type: PartialCutFeed}, []byte{0x1b, 'd', '3'}},
		{"cut full", Cut{Type: FullCut}, []byte{0x1b, 'd', '0'}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := build(t, tt.cmd)
			if !bytes.Equal(got, tt.want) {
				t.Errorf("got % x, want % x", got, tt.want)
			}
		})
	}
}

func TestCommandInvalid(t *testing.T) {
	tests := []struct {
		name string
		cmd  Command
	}{
		{"line feed too many", LineFeed{Lines: 256}},
		{"align", Align{Alignment: 7}},
		{"expansion height", Expansion{Height: 6}},
		{"expansion width", Expansion{Width: -1}},
		{"dot matrix expansion height", Expansion{Height: 2, DotMatrix: true}},
		{"tabs decreasing", HorizontalTabs{Stops: []int{8, 4}}},
		{"tabs too many", HorizontalTabs{Stops: []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17}}},
		{"tab past 255", HorizontalTabs{Stops: []int{256}}},
		{"drawer", CashDrawer{Drawer: 3}},
		{"cut", Cut{Type: 9}},
		{"text margin", Text{Style: TextStyle{LeftMargin: 300}}},
		{"text expansion", Text{Style: TextStyle{WidthExpansion: 6}}},
		{"dot matrix expansion", Text{Style: TextStyle{DotMatrix: true, HeightExpansion: 2}}},
		{"text encoding", Text{Encoding: "EBCDIC", Data: "x"}},
		{"text unencodable", Text{Encoding: charset.ISO8859_1, Data: "日本"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(Initialize{}, tt.cmd)
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("got %v, want ErrInvalidInput", err)
			}
			if !strings.Contains(err.Error(), "command 1") {
				t.Errorf("error %q does not name the command index", err)
			}
		})
	}
}

func TestBuildNilCommand(t *testing.T) {
	if _, err := Build(Initialize{}, nil); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("got %v", err)
	}
}

func TestBuildKeepsOrder(t *testing.T) {
	got := build(t, Initialize{}, Raw{Data: []byte("abc")}, LineFeed{}, CashDrawer{Drawer: 2})
	want := []byte{0x1b, 0x40, 'a', 'b', 'c', 0x0a, 0x1a}
	if !bytes.Equal(got, want) {
		t.Fatalf("got % x, want % x", got, want)
	}
}

func TestTextDefaults(t *testing.T) {
	got := build(t, Text{Data: "Hi"})
	want := []byte{
		0x1b, '/', '0',
		0x1b, '-', '0',
		0x1b, '5',
		0x1b, 'F',
		0x1b, '_', '0',
		0x12,
		0x1b, 'i', '0', '0',
		0x1b, 'l', 0,
		0x1b, 0x1d, 'a', '0',
		'H', 'i', 0x0a,
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("got % x\nwant % x", got, want)
	}
}

func TestTextStyled(t *testing.T) {
	got := build(t, Text{
		Style: TextStyle{
			SlashedZero: true, Underline: true, Invert: true, Emphasized: true,
			Upperline: true, UpsideDown: true, HeightExpansion: 1, WidthExpansion: 2,
			LeftMargin: 4, Alignment: AlignCenter,
		},
		Data:       "0",
		NoLineFeed: true,
	})
	want := []byte{
		0x1b, '/', '1',
		0x1b, '-', '1',
		0x1b, '4',
		0x1b, 'E',
		0x1b, '_', '1',
		0x0f,
		0x1b, 'i', '1', '2',
		0x1b, 'l', 4,
		0x1b, 0x1d, 'a', '1',
		'0',
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("got % x\nwant % x", got, want)
	}
}

func TestTextDotMatrix(t *testing.T) {
	got := build(t, Text{Style: TextStyle{DotMatrix: true, HeightExpansion: 1}, Data: "x", NoLineFeed: true})
	if !bytes.Contains(got, []byte{0x1b, 'h', '1', 0x1b, 'W', '0'}) {
		t.Fatalf("no dot matrix expansion in % x", got)
	}
	if bytes.Contains(got, []byte{0x1b, 'i'}) {
		t.Fatalf("thermal expansion in dot matrix output % x", got)
	}
}

func TestTextShiftJIS(t *testing.T) {
	got := build(t, Text{Encoding: charset.ShiftJIS, Data: "日本", NoLineFeed: true})
	if !bytes.HasPrefix(got, []byte{0x1b, 'q', 0x1b, '$', '1'}) {
		t.Fatalf("missing Kanji mode prefix: % x", got)
	}
	if !bytes.HasSuffix(got, []byte{0x93, 0xfa, 0x96, 0x7b}) {
		t.Fatalf("missing Shift_JIS text: % x", got)
	}
}

func TestParseHelpers(t *testing.T) {
	if a, err := ParseAlignment("centre"); err != nil || a != AlignCenter {
		t.Errorf("ParseAlignment(centre) = %v, %v", a, err)
	}
	if _, err := ParseAlignment("middle"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("ParseAlignment(middle) err = %v", err)
	}
	if c, err := ParseCutType(""); err != nil || c != FullCutFeed {
		t.Errorf("ParseCutType(\"\") = %v, %v", c, err)
	}
	if c, err := ParseCutType("partial"); err != nil || c != PartialCut {
		t.Errorf("ParseCutType(partial) = %v, %v", c, err)
	}
	if _, err := ParseCutType("half"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("ParseCutType(half) err = %v", err)
	}
}
