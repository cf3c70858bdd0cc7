package util

import (
	"bytes"
	"testing"
)

func TestIntLowHigh(t *testing.T) {
	tests := []struct {
		name    string
		n, b    int
		want    []byte
		wantErr bool
	}{
		{name: "single byte", n: 0x7f, b: 1, want: []byte{0x7f}},
		{name: "two bytes", n: 0x0102, b: 2, want: []byte{0x02, 0x01}},
		{name: "four bytes", n: 0x01020304, b: 4, want: []byte{0x04, 0x03, 0x02, 0x01}},
		{name: "zero padded", n: 5, b: 3, want: []byte{0x05, 0x00, 0x00}},
		{name: "overflow", n: 0x10000, b: 2, wantErr: true},
		{name: "negative", n: -1, b: 2, wantErr: true},
		{name: "bad width", n: 1, b: 5, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := IntLowHigh(tt.n, tt.b)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("IntLowHigh(%d, %d) expected error", tt.n, tt.b)
				}
				return
			}
			if err != nil {
				t.Fatalf("IntLowHigh(%d, %d) unexpected error: %v", tt.n, tt.b, err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("IntLowHigh(%d, %d) = % x, want % x", tt.n, tt.b, got, tt.want)
			}
		})
	}
}

func TestUint16LE(t *testing.T) {
	if got := Uint16LE(0xabcd); !bytes.Equal(got, []byte{0xcd, 0xab}) {
		t.Errorf("Uint16LE = % x", got)
	}
}
