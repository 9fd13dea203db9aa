package cmd

import "testing"

func TestParsePhotoFilename(t *testing.T) {
	tests := []struct {
		filename string
		roll     string
		name     string
		wantErr  bool
	}{
		{"R042_jane-doe.jpg", "R042", "jane doe", false},
		{"17_bob.png", "17", "bob", false},
		{"R001_anna-marie-smith.jpeg", "R001", "anna marie smith", false},
		{"noseparator.jpg", "", "", true},
		{"_missing-roll.jpg", "", "", true},
		{"R042_.jpg", "", "", true},
	}

	for _, tc := range tests {
		roll, name, err := parsePhotoFilename(tc.filename)
		if tc.wantErr {
			if err == nil {
				t.Errorf("parsePhotoFilename(%q) expected error", tc.filename)
			}
			continue
		}
		if err != nil {
			t.Errorf("parsePhotoFilename(%q) failed: %v", tc.filename, err)
			continue
		}
		if roll != tc.roll || name != tc.name {
			t.Errorf("parsePhotoFilename(%q) = (%q, %q), expected (%q, %q)", tc.filename, roll, name, tc.roll, tc.name)
		}
	}
}

func TestIsImageFile(t *testing.T) {
	for _, name := range []string{"a.jpg", "b.JPEG", "c.png", "d.webp"} {
		if !isImageFile(name) {
			t.Errorf("expected %q to be an image file", name)
		}
	}
	for _, name := range []string{"a.txt", "b.pdf", "noext"} {
		if isImageFile(name) {
			t.Errorf("expected %q not to be an image file", name)
		}
	}
}
