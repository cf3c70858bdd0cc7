package printer

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"testing"

	imgInternal "github.com/AlexStarov/starprnt-GoLang-lib/image"
)

func blackImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)
	return img
}

func TestBitmapIsWholeDocument(t *testing.T) {
	got := build(t, Bitmap{Image: blackImage(16, 2), MaxWidth: 16})

	doc := imgInternal.DefaultDocument()
	var want []byte
	want = append(want, doc.Begin()...)
	want = append(want, 0x1b, 'b', 2, 0, 0xff, 0xff)
	want = append(want, 0x1b, 'b', 2, 0, 0xff, 0xff)
	want = append(want, doc.End()...)
	if !bytes.Equal(got, want) {
		t.Fatalf("got % x\nwant % x", got, want)
	}

	bm, _, err := imgInternal.Decode(got)
	if err != nil {
		t.Fatal(err)
	}
	if bm.Width() != 16 || bm.Height() != 2 {
		t.Fatalf("decoded %v", bm)
	}
}

func TestRasterImageBetweenBeginEnd(t *testing.T) {
	doc := imgInternal.DefaultDocument()
	doc.Speed = imgInternal.SpeedLow
	got := build(t,
		RasterBegin{Document: doc},
		RasterImage{Image: blackImage(8, 3), Converter: imgInternal.Converter{MaxWidth: 576}, Compress: true},
		RasterPageBreak{},
		RasterEnd{Document: doc},
	)
	if !bytes.HasPrefix(got, doc.Begin()) {
		t.Fatalf("missing begin: % x", got)
	}
	if !bytes.HasSuffix(got, []byte{0x1b, 0x0c, 0x00, 0x1b, '*', 'r', 'B'}) {
		t.Fatalf("missing page break and end: % x", got)
	}
	bm, dec, err := imgInternal.Decode(got)
	if err != nil {
		t.Fatal(err)
	}
	if dec.Speed != imgInternal.SpeedLow || bm.Height() != 3 {
		t.Fatalf("decoded %v speed %v", bm, dec.Speed)
	}
}

func TestRasterText(t *testing.T) {
	got := build(t,
		RasterBegin{},
		RasterText{Text: "Star Micronics", Options: imgInternal.TextOptions{Width: 576}},
		RasterEnd{},
	)
	bm, _, err := imgInternal.Decode(got)
	if err != nil {
		t.Fatal(err)
	}
	if bm.Width() != 576 || bm.Height() == 0 {
		t.Fatalf("decoded %v", bm)
	}
}

func TestRasterInvalid(t *testing.T) {
	bad := imgInternal.DefaultDocument()
	bad.Speed = 9
	for _, c := range []Command{
		RasterBegin{Document: bad},
		RasterEnd{Document: bad},
		RasterImage{Image: nil, Converter: imgInternal.Converter{MaxWidth: 576}},
		RasterImage{Image: blackImage(8, 8)},
		RasterText{Text: "x"},
		Bitmap{Image: blackImage(8, 8)},
	} {
		if _, err := Build(c); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("%T: got %v", c, err)
		}
	}
}
