package enrich

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/franz/netease-audit/internal/util"
)

func TestConvertSeconds(t *testing.T) {
	tests := []struct {
		name string
		secs int64
		want time.Time
	}{
		{"epoch", 0, time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"one day before epoch", -86400, time.Date(1969, 12, 31, 0, 0, 0, 0, time.UTC)},
		{"positive", 1059580800, time.Date(2003, 7, 30, 16, 0, 0, 0, time.UTC)},
		{"far past", -2208988800, time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ConvertSeconds(tt.secs)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ConvertSeconds(%d) = %v, want %v", tt.secs, got, tt.want)
			}
		})
	}
}

func TestConvertSecondsOutOfRange(t *testing.T) {
	for _, secs := range []int64{math.MinInt64, math.MaxInt64} {
		_, err := ConvertSeconds(secs)
		var dateErr *util.DateConversionError
		if !errors.As(err, &dateErr) {
			t.Errorf("ConvertSeconds(%d): expected DateConversionError, got %v", secs, err)
		}
	}
}

func TestReleaseDate(t *testing.T) {
	ms := func(v int64) *int64 { return &v }

	tests := []struct {
		name string
		in   *int64
		want time.Time
	}{
		{"missing", nil, FallbackDate},
		{"negative millis", ms(-86400000), time.Date(1969, 12, 31, 0, 0, 0, 0, time.UTC)},
		{"truncates millis", ms(1999), time.Date(1970, 1, 1, 0, 0, 1, 0, time.UTC)},
		{"overflow falls back", ms(math.MaxInt64), FallbackDate},
		{"underflow falls back", ms(math.MinInt64), FallbackDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ReleaseDate(tt.in); !got.Equal(tt.want) {
				t.Errorf("ReleaseDate() = %v, want %v", got, tt.want)
			}
		})
	}
}
