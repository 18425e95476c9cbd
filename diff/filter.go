package diff

import (
	"regexp"

	"github.com/cockroachdb/errors"
)

const DefaultFilterString = ".*"

// FilterConfig restricts which columns take part in change detection.
type FilterConfig struct {
	// ColumnFilter is a POSIX regexp matched against column names.
	ColumnFilter string
}

func DefaultFilterConfig() FilterConfig {
	return FilterConfig{
		ColumnFilter: DefaultFilterString,
	}
}

// compile returns nil if the filter lets every column through.
func (c FilterConfig) compile() (*regexp.Regexp, error) {
	if c.ColumnFilter == "" || c.ColumnFilter == DefaultFilterString {
		return nil, nil
	}
	re, err := regexp.CompilePOSIX(c.ColumnFilter)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid column filter %q", c.ColumnFilter)
	}
	return re, nil
}
