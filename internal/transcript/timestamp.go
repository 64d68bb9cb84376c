package transcript

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// stampPattern matches the timestamp token at the very start of a line.
var stampPattern = regexp.MustCompile(`^\d\d:\d\d:\d\d-\d`)

// stampWidth is the byte length of a timestamp token.
const stampWidth = len("00:00:00-0")

// ErrInvalidTimestamp reports a value that is not a well-formed HH:MM:SS-T token.
var ErrInvalidTimestamp = errors.New("invalid timestamp")

// SplitLine separates a leading timestamp token from the rest of the line.
// ok is false when the line does not start with a token, in which case rest
// is the whole line.
func SplitLine(line string) (stamp, rest string, ok bool) {
	if !stampPattern.MatchString(line) {
		return "", line, false
	}
	return line[:stampWidth], line[stampWidth:], true
}

// Timestamp is a parsed HH:MM:SS-T value. Tenth holds the single digit after
// the dash, read as tenths of a second.
type Timestamp struct {
	Hour   int
	Minute int
	Second int
	Tenth  int
}

// ParseTimestamp parses a complete HH:MM:SS-T token.
func ParseTimestamp(value string) (Timestamp, error) {
	if len(value) != stampWidth || !stampPattern.MatchString(value) {
		return Timestamp{}, fmt.Errorf("%w %q", ErrInvalidTimestamp, value)
	}
	hour, _ := strconv.Atoi(value[0:2])
	minute, _ := strconv.Atoi(value[3:5])
	second, _ := strconv.Atoi(value[6:8])
	tenth, _ := strconv.Atoi(value[9:10])
	if hour > 23 || minute > 59 || second > 59 {
		return Timestamp{}, fmt.Errorf("%w %q: field out of range", ErrInvalidTimestamp, value)
	}
	return Timestamp{Hour: hour, Minute: minute, Second: second, Tenth: tenth}, nil
}

// Offset returns the timestamp as elapsed time since 00:00:00-0.
func (t Timestamp) Offset() time.Duration {
	return time.Duration(t.Hour)*time.Hour +
		time.Duration(t.Minute)*time.Minute +
		time.Duration(t.Second)*time.Second +
		time.Duration(t.Tenth)*100*time.Millisecond
}

func (t Timestamp) String() string {
	return fmt.Sprintf("%02d:%02d:%02d-%d", t.Hour, t.Minute, t.Second, t.Tenth)
}

// Elapsed returns end minus start. Both values must parse.
func Elapsed(start, end string) (time.Duration, error) {
	s, err := ParseTimestamp(start)
	if err != nil {
		return 0, fmt.Errorf("start: %w", err)
	}
	e, err := ParseTimestamp(end)
	if err != nil {
		return 0, fmt.Errorf("end: %w", err)
	}
	return e.Offset() - s.Offset(), nil
}

// FormatElapsed renders a non-negative duration as H:MM:SS with a
// six-digit fractional part when sub-second precision is present,
// e.g. 0:00:17.200000.
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = -d
	}
	hours := d / time.Hour
	d -= hours * time.Hour
	minutes := d / time.Minute
	d -= minutes * time.Minute
	seconds := d / time.Second
	d -= seconds * time.Second
	micros := d / time.Microsecond
	out := fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	if micros > 0 {
		out += fmt.Sprintf(".%06d", micros)
	}
	return out
}
