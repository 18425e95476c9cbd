package validate

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/tabcheck/tabcheck/report"
	"github.com/tabcheck/tabcheck/sheet"
)

const (
	RuleRequired    = "required"
	RuleEmail       = "email"
	RulePhone       = "phone"
	RuleDateRange   = "dateRange"
	RuleNumberRange = "numberRange"
	RuleRegex       = "regex"
	RuleInList      = "inList"
	RuleUnique      = "unique"
)

// DefaultMinPhoneDigits is used by the phone rule when minDigits is not set.
const DefaultMinPhoneDigits = 10

var (
	emailRE    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	nonDigitRE = regexp.MustCompile(`\D`)
)

// dateLayouts are tried in order when a text value is read as a date.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006/01/02",
	"01/02/2006",
	"01-02-06",
}

func violation(col Column, idx int, v sheet.Value, msg string) report.ValidationError {
	return report.ValidationError{
		Row:     report.SourceRow(idx),
		Column:  col.Name,
		Value:   v,
		Message: msg,
	}
}

// eachPresent calls fn for every non-blank value of the column.
func eachPresent(col Column, fn func(idx int, v sheet.Value, s string)) {
	for idx, v := range col.Values {
		if sheet.IsBlank(v) {
			continue
		}
		fn(idx, v, sheet.Stringify(v))
	}
}

func evalRequired(col Column, _ Params) ([]report.ValidationError, error) {
	var ret []report.ValidationError
	for idx, v := range col.Values {
		if sheet.IsBlank(v) {
			ret = append(ret, violation(col, idx, v, fmt.Sprintf("%s must not be empty", col.Name)))
		}
	}
	return ret, nil
}

func evalEmail(col Column, _ Params) ([]report.ValidationError, error) {
	var ret []report.ValidationError
	eachPresent(col, func(idx int, v sheet.Value, s string) {
		if !emailRE.MatchString(s) {
			ret = append(ret, violation(col, idx, v, fmt.Sprintf("invalid email format: %s", s)))
		}
	})
	return ret, nil
}

func evalPhone(col Column, params Params) ([]report.ValidationError, error) {
	minDigits, err := params.Int(DefaultMinPhoneDigits, "minDigits", "min_digits")
	if err != nil {
		return nil, err
	}
	var ret []report.ValidationError
	eachPresent(col, func(idx int, v sheet.Value, s string) {
		if digits := nonDigitRE.ReplaceAllString(s, ""); len(digits) < minDigits {
			ret = append(ret, violation(
				col, idx, v, fmt.Sprintf("phone number has fewer than %d digits: %s", minDigits, s),
			))
		}
	})
	return ret, nil
}

func toTime(v sheet.Value) (time.Time, bool) {
	switch v := v.(type) {
	case time.Time:
		return v, true
	case string:
		s := strings.TrimSpace(v)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

func evalDateRange(col Column, params Params) ([]report.ValidationError, error) {
	minDate, hasMin, err := params.Date("min")
	if err != nil {
		return nil, err
	}
	maxDate, hasMax, err := params.Date("max")
	if err != nil {
		return nil, err
	}
	var ret []report.ValidationError
	eachPresent(col, func(idx int, v sheet.Value, s string) {
		t, ok := toTime(v)
		switch {
		case !ok:
			ret = append(ret, violation(col, idx, v, fmt.Sprintf("invalid date format: %s", s)))
		case hasMin && t.Before(minDate):
			ret = append(ret, violation(
				col, idx, v, fmt.Sprintf("date before %s: %s", minDate.Format(paramDateLayout), s),
			))
		case hasMax && t.After(maxDate):
			ret = append(ret, violation(
				col, idx, v, fmt.Sprintf("date after %s: %s", maxDate.Format(paramDateLayout), s),
			))
		}
	})
	return ret, nil
}

func evalNumberRange(col Column, params Params) ([]report.ValidationError, error) {
	minVal, minText, hasMin, err := params.Decimal("min")
	if err != nil {
		return nil, err
	}
	maxVal, maxText, hasMax, err := params.Decimal("max")
	if err != nil {
		return nil, err
	}
	var ret []report.ValidationError
	eachPresent(col, func(idx int, v sheet.Value, s string) {
		d, ok := toDecimal(v)
		switch {
		case !ok:
			ret = append(ret, violation(col, idx, v, fmt.Sprintf("not a valid number: %s", s)))
		case hasMin && d.Cmp(minVal) < 0:
			ret = append(ret, violation(col, idx, v, fmt.Sprintf("value less than %s: %s", minText, s)))
		case hasMax && d.Cmp(maxVal) > 0:
			ret = append(ret, violation(col, idx, v, fmt.Sprintf("value greater than %s: %s", maxText, s)))
		}
	})
	return ret, nil
}

func evalRegex(col Column, params Params) ([]report.ValidationError, error) {
	pattern, ok := params.String("pattern")
	if !ok || pattern == "" {
		return nil, errors.New("pattern is required")
	}
	// Matches are anchored at the start of the value only.
	re, err := regexp.Compile(`^(?:` + pattern + `)`)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid pattern %q", pattern)
	}
	msg, ok := params.String("message")
	if !ok {
		msg = fmt.Sprintf("does not match pattern: %s", pattern)
	}
	var ret []report.ValidationError
	eachPresent(col, func(idx int, v sheet.Value, s string) {
		if !re.MatchString(s) {
			ret = append(ret, violation(col, idx, v, msg))
		}
	})
	return ret, nil
}

func evalInList(col Column, params Params) ([]report.ValidationError, error) {
	allowed := params.List("values")
	set := make(map[string]struct{}, len(allowed))
	texts := make([]string, len(allowed))
	for i, a := range allowed {
		texts[i] = sheet.Stringify(a)
		set[texts[i]] = struct{}{}
	}
	var ret []report.ValidationError
	eachPresent(col, func(idx int, v sheet.Value, s string) {
		if _, ok := set[s]; !ok {
			ret = append(ret, violation(col, idx, v, fmt.Sprintf(
				"value %q is not allowed, must be one of: %s", s, strings.Join(texts, ", "),
			)))
		}
	})
	return ret, nil
}

func evalUnique(col Column, _ Params) ([]report.ValidationError, error) {
	seen := make(map[string]int)
	var ret []report.ValidationError
	eachPresent(col, func(idx int, v sheet.Value, s string) {
		if first, ok := seen[s]; ok {
			ret = append(ret, violation(col, idx, v, fmt.Sprintf("duplicate of row %d: %s", first, s)))
			return
		}
		seen[s] = report.SourceRow(idx)
	})
	return ret, nil
}
