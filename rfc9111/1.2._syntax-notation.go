package rfc9111

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// §  1.2.2. Delta Seconds
// §
// §  The delta-seconds rule specifies a non-negative integer, representing time
// §  in seconds.
// §
// §      delta-seconds  = 1*DIGIT
// §
// §  [...] If a cache receives a delta-seconds value greater than the greatest
// §  integer it can represent, or if any of its subsequent calculations overflows,
// §  the cache MUST consider the value to be 2147483648 (2^31) or the greatest
// §  positive integer it can conveniently represent.
const maxDeltaSeconds = 2147483648

// deltaSeconds parses delta-seconds into a duration.
// The boolean is false when the value is not a valid delta-seconds,
// in which case the caller should act as if the value was not present.
func deltaSeconds(secondsStr string) (time.Duration, bool) {
	secondsStr = strings.TrimSpace(secondsStr)
	if secondsStr == "" {
		return 0, false
	}
	seconds, err := strconv.ParseUint(secondsStr, 10, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return maxDeltaSeconds * time.Second, true
		}
		return 0, false
	}
	if seconds > maxDeltaSeconds {
		seconds = maxDeltaSeconds
	}
	return time.Second * time.Duration(seconds), true
}

func toDeltaSeconds(duration time.Duration) string {
	if duration < 0 {
		duration = 0
	}
	return fmt.Sprintf("%.f", duration.Truncate(time.Second).Seconds())
}

// This section is from the HTTP specification (RFC9110), not the cache specification
//
// §  5.6.7.  Date/Time Formats
// §
// §       HTTP-date    = IMF-fixdate / obs-date
// §
// §     An example of the preferred format is
// §
// §       Sun, 06 Nov 1994 08:49:37 GMT    ; IMF-fixdate
// §
// §     Examples of the two obsolete formats are
// §
// §       Sunday, 06-Nov-94 08:49:37 GMT   ; obsolete RFC 850 format
// §       Sun Nov  6 08:49:37 1994         ; ANSI C's asctime() format
// §
// §     A recipient that parses a timestamp value in an HTTP field MUST
// §     accept all three HTTP-date formats.
func HttpDate(dateStr string) (time.Time, error) {
	str := strings.TrimSpace(dateStr)
	if str == "" {
		return time.Time{}, fmt.Errorf("Empty HTTP date")
	}
	date, err := imfDate(str)
	if err == nil {
		return date, nil
	}
	// try to parse as obsolete date
	if date, obsErr := obsDate(str); obsErr == nil {
		return date, nil
	}
	// return original error if unsuccessful
	return time.Time{}, err
}

// ToHttpDate formats a timestamp in the IMF-fixdate format,
// which is the only format a sender may generate.
func ToHttpDate(t time.Time) string {
	return t.UTC().Format(imfDateLayout)
}

const (
	imfDateLayout    = "Mon, 02 Jan 2006 15:04:05 GMT"
	rfc850DateLayout = "Monday, 02-Jan-06 15:04:05 GMT"
)

func imfDate(dateStr string) (time.Time, error) {
	return time.Parse(imfDateLayout, normalizeDateStr(dateStr))
}

// §       rfc850-date  = day-name-l "," SP date2 SP time-of-day SP GMT
// §       asctime-date = day-name SP date3 SP time-of-day SP year
func obsDate(dateStr string) (time.Time, error) {
	str := normalizeDateStr(dateStr)
	if date, err := time.Parse(rfc850DateLayout, str); err == nil {
		return date, nil
	}
	return time.Parse(time.ANSIC, str)
}

// §     HTTP-date is case sensitive.  Note that Section 4.2 of [CACHING]
// §     relaxes this for cache recipients.
//
// time.Parse matches day and month names case-insensitively,
// so only the literal "GMT" needs normalizing.
func normalizeDateStr(dateStr string) string {
	return strings.ToUpper(dateStr)
}
