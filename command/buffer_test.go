package command

import (
	"bytes"
	"math/rand/v2"
	"testing"
)

func TestFlattenEmpty(t *testing.T) {
	var b Buffer
	got := b.Flatten()
	if got == nil || len(got) != 0 {
		t.Fatalf("Flatten() on empty buffer = %v, want empty non-nil slice", got)
	}
	if b.Len() != 0 || b.Count() != 0 {
		t.Fatalf("Len=%d Count=%d, want 0 0", b.Len(), b.Count())
	}
}

func TestFlattenKeepsOrder(t *testing.T) {
	b := New([]byte{0x1b, 0x40}, []byte("Hello"), nil, []byte{0x0a})
	want := []byte{0x1b, 0x40, 'H', 'e', 'l', 'l', 'o', 0x0a}
	if got := b.Flatten(); !bytes.Equal(got, want) {
		t.Fatalf("Flatten() = % x, want % x", got, want)
	}
	if b.Count() != 4 {
		t.Errorf("Count() = %d, want 4 (zero-length fragment counts)", b.Count())
	}
}

func TestAppendCopiesFragment(t *testing.T) {
	frag := []byte{1, 2, 3}
	var b Buffer
	b.Append(frag)
	frag[0] = 9

	if got := b.Flatten(); got[0] != 1 {
		t.Fatalf("buffer saw caller mutation: % x", got)
	}
	out := b.Fragments()
	out[0][1] = 9
	if got := b.Flatten(); got[1] != 2 {
		t.Fatalf("Fragments() leaked internal storage: % x", got)
	}
}

func TestFlattenProperty(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for range 200 {
		var b Buffer
		var want []byte
		for range r.IntN(20) {
			frag := make([]byte, r.IntN(32))
			for i := range frag {
				frag[i] = byte(r.UintN(256))
			}
			b.Append(frag)
			want = append(want, frag...)
		}
		got := b.Flatten()
		if len(got) != b.Len() || len(got) != len(want) {
			t.Fatalf("len(Flatten())=%d Len()=%d want %d", len(got), b.Len(), len(want))
		}
		if !bytes.Equal(got, want) {
			t.Fatalf("Flatten() = % x, want % x", got, want)
		}
	}
}

func TestResetAndWriteTo(t *testing.T) {
	b := New([]byte("abc"), []byte("def"))

	var w bytes.Buffer
	n, err := b.WriteTo(&w)
	if err != nil || n != 6 || w.String() != "abcdef" {
		t.Fatalf("WriteTo = %d, %v, %q", n, err, w.String())
	}

	b.Reset()
	if b.Len() != 0 || b.Count() != 0 || len(b.Flatten()) != 0 {
		t.Fatal("Reset did not empty the buffer")
	}
}
