package formatters

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// NullText is written in place of a database NULL.
const NullText = "null"

var timeTokens = []string{"yyyy", "yy", "MM", "dd", "HH", "mm", "ss", "SSS"}

var timeFormatReplacer = strings.NewReplacer(
	"yyyy", "2006",
	"yy", "06",
	"MM", "01",
	"dd", "02",
	"HH", "15",
	"mm", "04",
	"ss", "05",
	"SSS", "000", // Milliseconds
	"S", "0", // Deciseconds
)

// ConvertUserTimeFormat turns a yyyy-MM-dd HH:mm:ss style pattern into a Go layout.
func ConvertUserTimeFormat(userTimefmt string) string {
	return timeFormatReplacer.Replace(userTimefmt)
}

// HasTimeTokens reports whether a user pattern contains at least one date or time token.
func HasTimeTokens(userTimefmt string) bool {
	for _, tok := range timeTokens {
		if strings.Contains(userTimefmt, tok) {
			return true
		}
	}
	return false
}

// Default layouts per database column type, matching the text form the
// database itself prints for these types.
var typeLayouts = map[string]string{
	"DATE":          "2006-01-02",
	"TIME":          "15:04:05.999999",
	"TIMETZ":        "15:04:05.999999-07",
	"TIMESTAMP":     "2006-01-02 15:04:05.999999",
	"DATETIME":      "2006-01-02 15:04:05.999999",
	"SMALLDATETIME": "2006-01-02 15:04:05.999999",
	"TIMESTAMPTZ":   "2006-01-02 15:04:05.999999-07",
}

// zonedTypes carry an offset; only their values are moved to the configured
// time zone. DATE, TIME and TIMESTAMP are wall-clock values.
var zonedTypes = map[string]bool{
	"":            true,
	"TIMETZ":      true,
	"TIMESTAMPTZ": true,
}

// TextFormatter renders driver values as the text written to export files.
type TextFormatter struct {
	userLayout string
	loc        *time.Location
}

// NewTextFormatter builds a formatter for the given user time pattern and zone.
// An empty pattern renders time values with the layout of their column type,
// or RFC 3339 with nanoseconds when the type is unknown.
func NewTextFormatter(userTimefmt, timeZone string) (*TextFormatter, error) {
	f := &TextFormatter{}
	if userTimefmt != "" {
		f.userLayout = ConvertUserTimeFormat(userTimefmt)
	}
	if timeZone != "" {
		loc, err := time.LoadLocation(timeZone)
		if err != nil {
			return nil, fmt.Errorf("invalid timezone %q: %w", timeZone, err)
		}
		f.loc = loc
	}
	return f, nil
}

// Format returns the text form of a value of unknown column type.
func (f *TextFormatter) Format(v any) string {
	return f.FormatColumn(v, "")
}

// FormatColumn returns the text form of v read from a column whose database
// type is typeName (e.g. DATE, TIMESTAMPTZ). NULL becomes NullText.
func (f *TextFormatter) FormatColumn(v any, typeName string) string {
	switch val := v.(type) {
	case nil:
		return NullText
	case string:
		return val
	case []byte:
		if val == nil {
			return NullText
		}
		return string(val)
	case time.Time:
		return f.formatTime(val, strings.ToUpper(typeName))
	case bool:
		return strconv.FormatBool(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case int:
		return strconv.Itoa(val)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprintf("%v", val)
	}
}

func (f *TextFormatter) formatTime(t time.Time, typeName string) string {
	if f.loc != nil && zonedTypes[typeName] {
		t = t.In(f.loc)
	}
	if f.userLayout != "" {
		return t.Format(f.userLayout)
	}
	if layout, ok := typeLayouts[typeName]; ok {
		return t.Format(layout)
	}
	return t.Format(time.RFC3339Nano)
}
