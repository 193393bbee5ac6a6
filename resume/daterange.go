package resume

import (
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vinayprograms/resumekit/errors"
)

const (
	monthLayout   = "2006-01"
	displayLayout = "Jan,&nbsp;2006"
)

// DateRange is a span of months. A nil End means the span is ongoing.
type DateRange struct {
	Start time.Time
	End   *time.Time
}

// ParseDateRange parses "YYYY-MM~YYYY-MM" or "YYYY-MM~".
func ParseDateRange(s string) (DateRange, error) {
	parts := strings.Split(s, "~")
	if len(parts) != 2 {
		return DateRange{}, errors.Newf(errors.ErrCodeBadDateRange,
			"date range %q should have exactly two dates separated by ~", s)
	}
	start, err := time.Parse(monthLayout, strings.TrimSpace(parts[0]))
	if err != nil {
		return DateRange{}, errors.WrapWithCode(err, errors.ErrCodeBadDateRange, "start of "+s)
	}
	r := DateRange{Start: start}
	if end := strings.TrimSpace(parts[1]); end != "" {
		t, err := time.Parse(monthLayout, end)
		if err != nil {
			return DateRange{}, errors.WrapWithCode(err, errors.ErrCodeBadDateRange, "end of "+s)
		}
		r.End = &t
	}
	return r, nil
}

// String returns the input form.
func (r DateRange) String() string {
	if r.End == nil {
		return r.Start.Format(monthLayout) + "~"
	}
	return r.Start.Format(monthLayout) + "~" + r.End.Format(monthLayout)
}

// Display returns the printed form, e.g. "Jan,&nbsp;2020 - Current".
func (r DateRange) Display() string {
	end := "Current"
	if r.End != nil {
		end = r.End.Format(displayLayout)
	}
	return r.Start.Format(displayLayout) + " - " + end
}

// MarshalYAML implements yaml.Marshaler.
func (r DateRange) MarshalYAML() (interface{}, error) {
	return r.String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (r *DateRange) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return errors.Newf(errors.ErrCodeBadDateRange, "line %d: date range must be a string", node.Line)
	}
	parsed, err := ParseDateRange(node.Value)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
