package playback

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/yungbote/belajar-alkitab-backend/internal/platform/apierr"
)

var mmssPattern = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)

// ParseMMSS converts teacher input like "1:30" into seconds. Minutes take
// one or two digits and seconds exactly two, below 60.
func ParseMMSS(s string) (int, error) {
	m := mmssPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, apierr.Validationf("invalid time %q: use m:ss", s)
	}
	minutes, _ := strconv.Atoi(m[1])
	seconds, _ := strconv.Atoi(m[2])
	if seconds >= 60 {
		return 0, apierr.Validationf("invalid time %q: seconds must be below 60", s)
	}
	return minutes*60 + seconds, nil
}

// ValidMMSS reports whether s would parse.
func ValidMMSS(s string) bool {
	_, err := ParseMMSS(s)
	return err == nil
}

// FormatSeconds renders seconds as "m:ss" with unpadded minutes.
func FormatSeconds(sec int) string {
	if sec < 0 {
		sec = 0
	}
	return fmt.Sprintf("%d:%02d", sec/60, sec%60)
}
