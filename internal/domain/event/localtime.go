package event

import (
	"fmt"
	"strings"
	"time"
)

// LocalTime is a wall-clock timestamp with no zone attached. The browser
// form submits datetime-local values ("2006-01-02T15:04") and the calendar
// grid consumes the same shape back, so both sides stay in local time.
type LocalTime time.Time

const wireLayout = "2006-01-02T15:04:05"

var parseLayouts = []string{
	wireLayout,
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02",
}

func ParseLocalTime(s string) (LocalTime, error) {
	s = strings.TrimSpace(s)

	for _, layout := range parseLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return LocalTime(t), nil
		}
	}

	return LocalTime{}, fmt.Errorf("unrecognized timestamp %q", s)
}

func (t *LocalTime) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)

	// An unset end date arrives as an empty string.
	if s == "" || s == "null" {
		*t = LocalTime{}
		return nil
	}

	parsed, err := ParseLocalTime(s)
	if err != nil {
		return err
	}

	*t = parsed
	return nil
}

func (t LocalTime) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.Time().Format(wireLayout) + `"`), nil
}

func (t LocalTime) Time() time.Time {
	return time.Time(t)
}

func (t LocalTime) IsZero() bool {
	return t.Time().IsZero()
}
