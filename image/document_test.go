package image

import (
	"bytes"
	"errors"
	"testing"
)

func TestDocumentBegin(t *testing.T) {
	got := DefaultDocument().Begin()
	want := []byte("\x1b*rA" +
		"\x1b*rQ1\x00" +
		"\x1b*rT2\x00" +
		"\x1b*rF9\x00" +
		"\x1b*rE9\x00" +
		"\x1b*rP0\x00" +
		"\x1b*rml0\x00" +
		"\x1b*rmr0\x00")
	if !bytes.Equal(got, want) {
		t.Fatalf("Begin() = %q, want %q", got, want)
	}
}

func TestDocumentEndAndPageBreak(t *testing.T) {
	d := DefaultDocument()
	if got := d.End(); !bytes.Equal(got, []byte("\x1b*rB")) {
		t.Errorf("End() = %q", got)
	}
	if got := d.PageBreak(); !bytes.Equal(got, []byte{0x1b, 0x0c, 0x00}) {
		t.Errorf("PageBreak() = % x", got)
	}
}

func TestDocumentValidate(t *testing.T) {
	if err := DefaultDocument().Validate(); err != nil {
		t.Fatalf("default document: %v", err)
	}
	bad := []Document{
		{Speed: 7},
		{TopMargin: -1},
		{PageEnd: 5},
		{DocumentEnd: 99},
		{PageLength: -1},
		{LeftMargin: -2},
	}
	for _, d := range bad {
		if err := d.Validate(); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("%+v: err = %v", d, err)
		}
	}
}

func TestParseNames(t *testing.T) {
	if s, err := ParseSpeed(" Medium "); err != nil || s != SpeedMedium {
		t.Errorf("ParseSpeed = %v, %v", s, err)
	}
	if m, err := ParseTopMargin("small"); err != nil || m != TopMarginSmall {
		t.Errorf("ParseTopMargin = %v, %v", m, err)
	}
	if m, err := ParsePageEndMode("feed-and-partial-cut"); err != nil || m != PageEndFeedAndPartialCut {
		t.Errorf("ParsePageEndMode = %v, %v", m, err)
	}
	if _, err := ParsePageEndMode("shred"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("unknown mode: err = %v", err)
	}
	if PageEndEject.String() != "eject" || PageEndMode(4).String() != "unknown(4)" {
		t.Errorf("String() = %q / %q", PageEndEject.String(), PageEndMode(4).String())
	}
}
