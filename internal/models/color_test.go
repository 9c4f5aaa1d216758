package models

import "testing"

func TestParseColor(t *testing.T) {
	tests := []struct {
		input   string
		want    Color
		wantHex string
		wantErr bool
	}{
		{"#FD4C49", Color{0xFD, 0x4C, 0x49}, "#FD4C49", false},
		{"33cf69", Color{0x33, 0xCF, 0x69}, "#33CF69", false},
		{"#0af", Color{0x00, 0xAA, 0xFF}, "#00AAFF", false},
		{"#12345", Color{}, "", true},
		{"#GGGGGG", Color{}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseColor(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseColor(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got != tt.want {
				t.Errorf("ParseColor(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
			if got.Hex() != tt.wantHex {
				t.Errorf("Hex() = %q, want %q", got.Hex(), tt.wantHex)
			}
		})
	}
}
