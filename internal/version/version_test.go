package version

import (
	"errors"
	"fmt"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Version
		wantErr error
	}{
		{"short", "7.4", New(7, 4), nil},
		{"long", "7.4.9", NewWithPatch(7, 4, 9), nil},
		{"zero patch", "8.0.0", NewWithPatch(8, 0, 0), nil},
		{"max fields", "255.255.255", NewWithPatch(255, 255, 255), nil},
		{"empty", "", Version{}, ErrEmpty},
		{"too many fields", "7.4.8.5", Version{}, ErrBadLength},
		{"only major", "8", Version{}, ErrBadLength},
		{"letters", "A.B", Version{}, ErrInvalidInteger},
		{"overflow", "256.1", Version{}, ErrInvalidInteger},
		{"negative", "-1.2", Version{}, ErrInvalidInteger},
		{"trailing dot", "8.", Version{}, ErrInvalidInteger},
		{"bad patch", "8.1.x", Version{}, ErrInvalidInteger},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Parse(%q) error = %v, want %v", tt.input, err, tt.wantErr)
				}
				var parseErr *ParseError
				if !errors.As(err, &parseErr) {
					t.Fatalf("Parse(%q) error is %T, want *ParseError", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseFormatRoundTrip(t *testing.T) {
	for _, m := range []int{0, 1, 7, 8, 128, 255} {
		for _, n := range []int{0, 1, 4, 99, 255} {
			short := fmt.Sprintf("%d.%d", m, n)
			v, err := Parse(short)
			if err != nil {
				t.Fatalf("Parse(%q): %v", short, err)
			}
			if v.String() != short {
				t.Errorf("Parse(%q).String() = %q", short, v.String())
			}

			for _, p := range []int{0, 17, 255} {
				long := fmt.Sprintf("%d.%d.%d", m, n, p)
				v, err := Parse(long)
				if err != nil {
					t.Fatalf("Parse(%q): %v", long, err)
				}
				if v.String() != long {
					t.Errorf("Parse(%q).String() = %q", long, v.String())
				}
			}
		}
	}
}

func TestMatchesMajorMinor(t *testing.T) {
	if !NewWithPatch(8, 1, 2).MatchesMajorMinor(New(8, 1)) {
		t.Error("8.1.2 should match 8.1")
	}
	if NewWithPatch(8, 1, 2).MatchesMajorMinor(New(8, 0)) {
		t.Error("8.1.2 should not match 8.0")
	}
	if !New(8, 1).MatchesMajorMinor(NewWithPatch(8, 1, 30)) {
		t.Error("8.1 should match 8.1.30")
	}
}

func TestNewerPatchThan(t *testing.T) {
	tests := []struct {
		v, other string
		want     bool
	}{
		{"8.1.17", "8.1.16", true},
		{"8.1.17", "8.1.17", false},
		{"8.1.16", "8.1.17", false},
		{"8.1.17", "8.1", true},
		{"8.1", "8.1.17", false},
		{"8.2.1", "8.1.0", false},
	}

	for _, tt := range tests {
		t.Run(tt.v+" vs "+tt.other, func(t *testing.T) {
			got := MustParse(tt.v).NewerPatchThan(MustParse(tt.other))
			if got != tt.want {
				t.Errorf("NewerPatchThan = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMajorMinor(t *testing.T) {
	got := NewWithPatch(8, 1, 17).MajorMinor()
	if got.String() != "8.1" {
		t.Errorf("MajorMinor() = %q, want 8.1", got.String())
	}
}

func TestTextMarshaling(t *testing.T) {
	var v Version
	if err := v.UnmarshalText([]byte("8.2.5")); err != nil {
		t.Fatalf("UnmarshalText: %v", err)
	}
	if v != NewWithPatch(8, 2, 5) {
		t.Errorf("UnmarshalText = %+v", v)
	}

	text, err := v.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText: %v", err)
	}
	if string(text) != "8.2.5" {
		t.Errorf("MarshalText = %q", text)
	}

	if err := v.UnmarshalText([]byte("nope")); err == nil {
		t.Error("expected error for invalid text")
	}
}
