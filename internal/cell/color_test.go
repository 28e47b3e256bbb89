package cell

import "testing"

func TestColorFromHex(t *testing.T) {
	tests := []struct {
		name    string
		hex     string
		r, g, b uint8
		wantErr bool
	}{
		{"six digit", "#ff8000", 255, 128, 0, false},
		{"three digit", "#f80", 255, 136, 0, false},
		{"no hash", "ff8000", 0, 0, 0, true},
		{"garbage", "#zzzzzz", 0, 0, 0, true},
		{"empty", "", 0, 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := ColorFromHex(tt.hex)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ColorFromHex(%q) error = %v, wantErr %v", tt.hex, err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if c.R != tt.r || c.G != tt.g || c.B != tt.b {
				t.Errorf("ColorFromHex(%q) = (%d,%d,%d), want (%d,%d,%d)",
					tt.hex, c.R, c.G, c.B, tt.r, tt.g, tt.b)
			}
		})
	}
}

func TestColorDefault(t *testing.T) {
	if !ColorDefault.IsDefault() {
		t.Error("ColorDefault should report IsDefault")
	}
	if ColorFromRGB(0, 0, 0).IsDefault() {
		t.Error("black is not the default color")
	}
	if !ColorDefault.Equals(ColorDefault) {
		t.Error("default colors should compare equal")
	}
}

func TestColorLightenDarken(t *testing.T) {
	mid := ColorFromRGB(100, 100, 100)

	lighter := mid.Lighten(0.5)
	if int(lighter.R)+int(lighter.G)+int(lighter.B) <= int(mid.R)+int(mid.G)+int(mid.B) {
		t.Errorf("Lighten should increase brightness, got %v", lighter)
	}

	darker := mid.Darken(0.5)
	if int(darker.R)+int(darker.G)+int(darker.B) >= int(mid.R)+int(mid.G)+int(mid.B) {
		t.Errorf("Darken should decrease brightness, got %v", darker)
	}

	// Indexed and default colors pass through untouched.
	idx := ColorFromIndex(3)
	if !idx.Lighten(0.5).Equals(idx) {
		t.Error("indexed colors should not be blended")
	}
	if !ColorDefault.Darken(0.5).IsDefault() {
		t.Error("the default color should not be blended")
	}
}

func TestColorBlendEndpoints(t *testing.T) {
	red := ColorFromRGB(255, 0, 0)
	blue := ColorFromRGB(0, 0, 255)

	if got := red.Blend(blue, 0); !got.Equals(red) {
		t.Errorf("Blend(t=0) = %v, want %v", got, red)
	}
	if got := red.Blend(blue, 1); !got.Equals(blue) {
		t.Errorf("Blend(t=1) = %v, want %v", got, blue)
	}
}
