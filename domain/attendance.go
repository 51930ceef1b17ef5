package domain

import (
	"bytes"

	"github.com/tidwall/gjson"
)

// Attendance is a tri-state answer for a single event.
// The zero value is AttendanceUnknown, which keeps "no answer" distinct from "no".
type Attendance int8

const (
	AttendanceUnknown Attendance = iota // Not answered, JSON null.
	AttendanceYes                       // Confirmed, JSON true.
	AttendanceNo                        // Declined, JSON false.
)

// AttendanceFromBool maps a boolean answer onto Attendance.
func AttendanceFromBool(v bool) Attendance {
	if v {
		return AttendanceYes
	}
	return AttendanceNo
}

// AttendanceFromPtr maps a nullable boolean onto Attendance, nil being unknown.
func AttendanceFromPtr(v *bool) Attendance {
	if v == nil {
		return AttendanceUnknown
	}
	return AttendanceFromBool(*v)
}

// Ptr returns the nullable boolean form of the answer.
func (a Attendance) Ptr() *bool {
	switch a {
	case AttendanceYes:
		v := true
		return &v
	case AttendanceNo:
		v := false
		return &v
	default:
		return nil
	}
}

func (a Attendance) String() string {
	switch a {
	case AttendanceYes:
		return "yes"
	case AttendanceNo:
		return "no"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the answer as true, false or null.
func (a Attendance) MarshalJSON() ([]byte, error) {
	switch a {
	case AttendanceYes:
		return []byte("true"), nil
	case AttendanceNo:
		return []byte("false"), nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON never fails: anything other than true or false becomes AttendanceUnknown.
func (a *Attendance) UnmarshalJSON(data []byte) error {
	switch string(bytes.TrimSpace(data)) {
	case "true":
		*a = AttendanceYes
	case "false":
		*a = AttendanceNo
	default:
		*a = AttendanceUnknown
	}
	return nil
}

// Legacy values of the single-choice attendance field.
const (
	ChoiceCeremony = "ceremony"
	ChoiceLunch    = "lunch"
	ChoiceDecline  = "decline"
)

// AttendanceState is the canonical per-event attendance of a guest.
// It is derived on demand and never stored as such.
type AttendanceState struct {
	Ceremony Attendance `json:"attend_ceremony"`
	Lunch    Attendance `json:"attend_lunch"`
}

// AttendanceRecord carries every generation of attendance fields a guest record may hold.
type AttendanceRecord struct {
	AttendCeremony   Attendance // Per-event field, current format.
	AttendLunch      Attendance // Per-event field, current format.
	HasEventFields   bool       // Whether either per-event key is present, whatever its value.
	AttendanceChoice string     // Single-choice field: ceremony, lunch or decline.
	Attending        Attendance // Oldest format, a single yes/no/unknown.
}

// ParseAttendanceRecord reads the attendance fields out of an arbitrary JSON guest document.
// Missing, mistyped or malformed fields are treated as absent.
func ParseAttendanceRecord(data []byte) AttendanceRecord {
	var record AttendanceRecord
	if !gjson.ValidBytes(data) {
		return record
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return record
	}

	ceremony := doc.Get("attend_ceremony")
	lunch := doc.Get("attend_lunch")
	record.HasEventFields = ceremony.Exists() || lunch.Exists()
	record.AttendCeremony = attendanceFromResult(ceremony)
	record.AttendLunch = attendanceFromResult(lunch)

	if choice := doc.Get("attendance_choice"); choice.Type == gjson.String {
		record.AttendanceChoice = choice.Str
	}
	record.Attending = attendanceFromResult(doc.Get("attending"))
	return record
}

func attendanceFromResult(r gjson.Result) Attendance {
	switch r.Type {
	case gjson.True:
		return AttendanceYes
	case gjson.False:
		return AttendanceNo
	default:
		return AttendanceUnknown
	}
}

// DeriveAttendanceState reconciles the formats held by a record into one AttendanceState.
//
// The per-event fields win unless they are absent or both unknown, in which case the
// legacy fields are consulted in order: attendance_choice, then attending. A record whose
// per-event fields were explicitly cleared is therefore indistinguishable from one that
// was never migrated. A nil record yields an unknown state.
func DeriveAttendanceState(record *AttendanceRecord) AttendanceState {
	if record == nil {
		return AttendanceState{}
	}

	state := AttendanceState{
		Ceremony: record.AttendCeremony,
		Lunch:    record.AttendLunch,
	}
	noAnswer := state.Ceremony == AttendanceUnknown && state.Lunch == AttendanceUnknown
	if record.HasEventFields && !noAnswer {
		return state
	}

	for _, rule := range legacyRules {
		if rule.match(record) {
			return rule.state
		}
	}
	return state
}

type legacyRule struct {
	match func(*AttendanceRecord) bool
	state AttendanceState
}

// legacyRules are evaluated in order; the first match wins.
var legacyRules = []legacyRule{
	{
		match: func(r *AttendanceRecord) bool { return r.AttendanceChoice == ChoiceCeremony },
		state: AttendanceState{Ceremony: AttendanceYes, Lunch: AttendanceNo},
	},
	{
		match: func(r *AttendanceRecord) bool { return r.AttendanceChoice == ChoiceLunch },
		state: AttendanceState{Ceremony: AttendanceNo, Lunch: AttendanceYes},
	},
	{
		match: func(r *AttendanceRecord) bool { return r.AttendanceChoice == ChoiceDecline },
		state: AttendanceState{Ceremony: AttendanceNo, Lunch: AttendanceNo},
	},
	{
		match: func(r *AttendanceRecord) bool { return r.Attending == AttendanceYes },
		state: AttendanceState{Ceremony: AttendanceYes, Lunch: AttendanceUnknown},
	},
	{
		match: func(r *AttendanceRecord) bool { return r.Attending == AttendanceNo },
		state: AttendanceState{Ceremony: AttendanceNo, Lunch: AttendanceNo},
	},
}

// IsAttending reports whether the guest confirmed at least one event.
func IsAttending(record *AttendanceRecord) bool {
	return DeriveAttendanceState(record).Attending()
}

// IsDeclinedState reports whether both events were explicitly declined.
// An unanswered state is not declined.
func IsDeclinedState(state AttendanceState) bool {
	return state.Ceremony == AttendanceNo && state.Lunch == AttendanceNo
}

// Attending reports whether either event is confirmed.
func (s AttendanceState) Attending() bool {
	return s.Ceremony == AttendanceYes || s.Lunch == AttendanceYes
}

// Declined is IsDeclinedState in method form.
func (s AttendanceState) Declined() bool {
	return IsDeclinedState(s)
}

// LegacyAttending is the single yes/no/unknown value older clients understand.
func (s AttendanceState) LegacyAttending() Attendance {
	switch {
	case s.Attending():
		return AttendanceYes
	case s.Declined():
		return AttendanceNo
	default:
		return AttendanceUnknown
	}
}

// LegacyChoice is the single-choice value matching the state, or "" when none does.
func (s AttendanceState) LegacyChoice() string {
	switch s {
	case AttendanceState{Ceremony: AttendanceYes, Lunch: AttendanceNo}:
		return ChoiceCeremony
	case AttendanceState{Ceremony: AttendanceNo, Lunch: AttendanceYes}:
		return ChoiceLunch
	case AttendanceState{Ceremony: AttendanceNo, Lunch: AttendanceNo}:
		return ChoiceDecline
	default:
		return ""
	}
}
