package models

import (
	"database/sql/driver"
	"fmt"
	"math/big"
	"time"
)

// Number stores arbitrary-precision integers as decimal strings in both
// the database and JSON.
type Number big.Int

func NewNumber(i int64) *Number {
	return (*Number)(big.NewInt(i))
}

func (n *Number) Int() *big.Int {
	if n == nil {
		return big.NewInt(0)
	}
	return (*big.Int)(n)
}

func (n *Number) String() string {
	return n.Int().String()
}

func (n *Number) Value() (driver.Value, error) {
	if n == nil {
		return "0", nil
	}
	return n.Int().String(), nil
}

func (n *Number) Scan(value interface{}) error {
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	case int64:
		(*big.Int)(n).SetInt64(v)
		return nil
	case nil:
		(*big.Int)(n).SetInt64(0)
		return nil
	default:
		return fmt.Errorf("number scan: unsupported type %T", value)
	}

	if _, ok := (*big.Int)(n).SetString(s, 10); !ok {
		return fmt.Errorf("number scan: invalid decimal %q", s)
	}
	return nil
}

func (n *Number) MarshalJSON() ([]byte, error) {
	return []byte(`"` + n.Int().String() + `"`), nil
}

func (n *Number) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	if s == "" || s == "null" {
		(*big.Int)(n).SetInt64(0)
		return nil
	}
	if _, ok := (*big.Int)(n).SetString(s, 10); !ok {
		return fmt.Errorf("number unmarshal: invalid decimal %q", s)
	}
	return nil
}

const localTimeFormat = "2006-01-02 15:04:05"

type LocalTime time.Time

func (t LocalTime) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Time(t).Format(localTimeFormat) + `"`), nil
}

func (t *LocalTime) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	parsed, err := time.ParseInLocation(localTimeFormat, s, time.Local)
	if err != nil {
		return err
	}
	*t = LocalTime(parsed)
	return nil
}

func (t LocalTime) Value() (driver.Value, error) {
	return time.Time(t), nil
}

func (t *LocalTime) Scan(value interface{}) error {
	switch v := value.(type) {
	case time.Time:
		*t = LocalTime(v)
		return nil
	case []byte:
		parsed, err := time.ParseInLocation(localTimeFormat, string(v), time.Local)
		if err != nil {
			return err
		}
		*t = LocalTime(parsed)
		return nil
	default:
		return fmt.Errorf("localtime scan: unsupported type %T", value)
	}
}
