package constants

import "testing"

func TestIsValidFormat(t *testing.T) {
	for _, f := range ValidFormats {
		if !IsValidFormat(f) {
			t.Errorf("%q should be valid", f)
		}
	}
	if IsValidFormat("csv") {
		t.Error("csv should be invalid")
	}
}

func TestIsValidCompression(t *testing.T) {
	for _, c := range append(ValidCompressions, "") {
		if !IsValidCompression(c) {
			t.Errorf("%q should be valid", c)
		}
	}
	if IsValidCompression("brotli") {
		t.Error("brotli should be invalid")
	}
}
