package entity

import (
	"bytes"
	"strconv"
	"time"

	"github.com/jmgilman/go/errors"
)

// Epoch is the first millisecond of 2015, the platform's snowflake epoch.
const Epoch = 1420070400000

// Snowflake is a platform identifier. The platform sends snowflakes as JSON
// strings because they do not fit a JavaScript number.
type Snowflake uint64

// ParseSnowflake parses a decimal snowflake.
func ParseSnowflake(s string) (Snowflake, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, errors.CodeInvalidInput, "invalid snowflake %q", s)
	}
	return Snowflake(v), nil
}

// String returns the decimal form of the snowflake.
func (s Snowflake) String() string {
	return strconv.FormatUint(uint64(s), 10)
}

// IsZero reports whether the snowflake is unset.
func (s Snowflake) IsZero() bool {
	return s == 0
}

// CreatedAt extracts the creation time encoded in the snowflake.
func (s Snowflake) CreatedAt() time.Time {
	return time.UnixMilli(int64(s>>22) + Epoch).UTC()
}

// MarshalJSON encodes the snowflake as a JSON string.
func (s Snowflake) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(s.String())), nil
}

// UnmarshalJSON accepts both the string and the numeric form.
func (s *Snowflake) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*s = 0
		return nil
	}

	raw := string(data)
	if unquoted, err := strconv.Unquote(raw); err == nil {
		raw = unquoted
	}
	if raw == "" {
		*s = 0
		return nil
	}

	v, err := ParseSnowflake(raw)
	if err != nil {
		return err
	}
	*s = v
	return nil
}
