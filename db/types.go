package db

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/weddingrsvp/rsvp/domain"
)

// stringList is a list of strings stored as a JSON array.
// It implements the sql.Scanner and driver.Valuer interfaces to handle database serialization.
type stringList []string

// Scan implements the sql.Scanner interface. NULL and unreadable values become an empty list.
func (l *stringList) Scan(value interface{}) error {
	*l = stringList{}
	if value == nil {
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T", v)
	}

	var list []string
	if err := json.Unmarshal(data, &list); err != nil || list == nil {
		return nil
	}
	*l = list
	return nil
}

// Value implements the driver.Valuer interface.
func (l stringList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func toAttendance(v sql.NullBool) domain.Attendance {
	if !v.Valid {
		return domain.AttendanceUnknown
	}
	return domain.AttendanceFromBool(v.Bool)
}

func fromAttendance(a domain.Attendance) sql.NullBool {
	switch a {
	case domain.AttendanceYes:
		return sql.NullBool{Bool: true, Valid: true}
	case domain.AttendanceNo:
		return sql.NullBool{Bool: false, Valid: true}
	default:
		return sql.NullBool{}
	}
}

func toStringPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func fromStringPtr(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func toInt64Ptr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	i := v.Int64
	return &i
}

func fromInt64Ptr(i *int64) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *i, Valid: true}
}

func toTime(v sql.NullTime) time.Time {
	if !v.Valid {
		return time.Time{}
	}
	return v.Time
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
