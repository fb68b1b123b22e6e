package resolve

import (
	"errors"
	"testing"

	"github.com/franz/netease-audit/internal/util"
)

func TestParseProfileID(t *testing.T) {
	tests := []struct {
		name      string
		reference string
		want      int64
		wantErr   bool
	}{
		{"fragment url", "https://music.163.com/#/artist?id=6452", 6452, false},
		{"id first", "https://music.163.com/artist?id=12138269&userid=99", 12138269, false},
		{"id last", "https://music.163.com/artist?userid=99&from=share&id=777", 777, false},
		{"bare id", "6452", 6452, false},
		{"no id", "https://music.163.com/#/artist?userid=99", 0, true},
		{"empty id", "https://music.163.com/#/artist?id=", 0, true},
		{"non numeric", "https://music.163.com/#/artist?id=abc", 0, true},
		{"no query", "https://music.163.com/", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseProfileID(tt.reference)
			if tt.wantErr {
				var malformed *util.MalformedReferenceError
				if !errors.As(err, &malformed) {
					t.Fatalf("expected MalformedReferenceError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseProfileID(%q) = %d, want %d", tt.reference, got, tt.want)
			}
		})
	}
}

func TestIsProfileReference(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"https://music.163.com/#/artist?id=6452", true},
		{"music.163.com/artist?id=1", true},
		{"6452", true},
		{"周杰伦", false},
		{"Jay Chou", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsProfileReference(tt.input); got != tt.want {
			t.Errorf("IsProfileReference(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestProfileLink(t *testing.T) {
	if got := ProfileLink(6452); got != "https://music.163.com/#/artist?id=6452" {
		t.Errorf("unexpected link %q", got)
	}
}

func TestRomanize(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"周杰伦", "zhou jie lun"},
		{"Jay Chou", "Jay Chou"},
		{"周杰伦 Jay", "zhou jie lun Jay"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Romanize(tt.input); got != tt.want {
			t.Errorf("Romanize(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
