package image

import "fmt"

const bitsPerByte = 8

// Bitmap is a packed 1 bit per pixel image. Rows are stored top to bottom,
// Stride bytes each, most significant bit first; a set bit is a printed dot.
// Width is always a multiple of 8.
type Bitmap struct {
	data                  []byte
	width, height, stride int
}

// MaxBitmapWidth is the widest bitmap in dots whose rows still fit a raster
// row record.
const MaxBitmapWidth = maxRowBytes * bitsPerByte

// NewBitmap returns an all-white bitmap. width is padded up to a multiple of 8
// and capped at MaxBitmapWidth.
func NewBitmap(width, height int) *Bitmap {
	if width < 0 {
		width = 0
	}
	if width > MaxBitmapWidth {
		width = MaxBitmapWidth
	}
	if height < 0 {
		height = 0
	}
	stride := (width + bitsPerByte - 1) / bitsPerByte
	return &Bitmap{
		data:   make([]byte, stride*height),
		width:  stride * bitsPerByte,
		height: height,
		stride: stride,
	}
}

func (b *Bitmap) Width() int  { return b.width }
func (b *Bitmap) Height() int { return b.height }
func (b *Bitmap) Stride() int { return b.stride }

// Data returns the packed rows. The slice is shared with the bitmap.
func (b *Bitmap) Data() []byte { return b.data }

// Empty reports whether the bitmap has no dots to send.
func (b *Bitmap) Empty() bool { return b.width == 0 || b.height == 0 }

// Row returns row y as Stride bytes, shared with the bitmap.
func (b *Bitmap) Row(y int) []byte {
	return b.data[y*b.stride : (y+1)*b.stride]
}

// GetBit returns 1 for a black dot at (x, y), 0 otherwise.
func (b *Bitmap) GetBit(x, y int) byte {
	return (b.data[y*b.stride+x/bitsPerByte] >> (7 - uint(x%bitsPerByte))) & 1
}

// SetBit marks (x, y) black when on is true, white otherwise.
func (b *Bitmap) SetBit(x, y int, on bool) {
	i := y*b.stride + x/bitsPerByte
	mask := byte(0x80) >> uint(x%bitsPerByte)
	if on {
		b.data[i] |= mask
	} else {
		b.data[i] &^= mask
	}
}

func (b *Bitmap) String() string {
	return fmt.Sprintf("Bitmap(%d,%d)", b.width, b.height)
}
