package enrich

import (
	"math"
	"time"

	"github.com/franz/netease-audit/internal/util"
)

// FallbackDate is used whenever a release timestamp cannot be converted
var FallbackDate = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)

var epoch = time.Unix(0, 0).UTC()

// 9999-12-31T23:59:59Z
const maxSeconds = 253402300799

// ReleaseDate converts a millisecond publish time into a release date.
// A missing or unconvertible value yields FallbackDate.
func ReleaseDate(publishTimeMS *int64) time.Time {
	if publishTimeMS == nil {
		return FallbackDate
	}
	t, err := ConvertSeconds(*publishTimeMS / 1000)
	if err != nil {
		util.DebugLog("Release date fallback: %v", err)
		return FallbackDate
	}
	return t
}

// ConvertSeconds converts seconds since the epoch to a UTC time. Negative
// values are handled as an explicit offset back from the epoch.
func ConvertSeconds(secs int64) (time.Time, error) {
	if secs < 0 {
		if secs < math.MinInt64/int64(time.Second) {
			return time.Time{}, &util.DateConversionError{Timestamp: secs, Reason: "negative offset out of range"}
		}
		return epoch.Add(time.Duration(secs) * time.Second), nil
	}

	if secs > maxSeconds {
		return time.Time{}, &util.DateConversionError{Timestamp: secs, Reason: "year out of range"}
	}
	return time.Unix(secs, 0).UTC(), nil
}
