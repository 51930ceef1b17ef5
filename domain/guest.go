package domain

import "time"

// GuestRepository defines the persistence contract for guests.
type GuestRepository interface {
	// GetGuest retrieves a guest by ID, returning ErrNotFound when missing.
	GetGuest(id int64) (*Guest, error)

	// ListIndividualGuests retrieves the guests that do not belong to any family.
	ListIndividualGuests() ([]*Guest, error)

	// ListGuests retrieves every guest.
	ListGuests() ([]*Guest, error)

	// CreateGuest inserts the guest and sets its ID and UpdatedAt.
	// It returns ErrInvalidFamily if FamilyID points to a missing family.
	CreateGuest(guest *Guest) error

	// UpdateGuest persists every field of the guest and refreshes UpdatedAt.
	// It returns ErrNotFound if the guest does not exist and ErrInvalidFamily if
	// FamilyID points to a missing family.
	UpdateGuest(guest *Guest) error

	// DeleteGuest removes the guest, returning ErrNotFound when missing.
	DeleteGuest(id int64) error
}

// Guest is an invited person. FamilyID is nil for individual invitations.
//
// The three generations of attendance fields are all kept: AttendCeremony and
// AttendLunch are authoritative, AttendanceChoice and Attending are maintained for
// older readers and consulted by DeriveAttendanceState when the former are unset.
type Guest struct {
	ID               int64      `json:"id"`
	Name             string     `json:"name"`
	FamilyID         *int64     `json:"family_id"`
	Attending        Attendance `json:"attending"`
	AttendanceChoice string     `json:"attendance_choice,omitempty"`
	AttendCeremony   Attendance `json:"attend_ceremony"`
	AttendLunch      Attendance `json:"attend_lunch"`
	Allergens        []string   `json:"allergens"`
	DietaryNotes     *string    `json:"dietary_notes"`
	AdminNotes       *string    `json:"admin_notes,omitempty"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// Record returns the attendance fields of the guest. Stored guests always carry the
// per-event columns, so HasEventFields is set.
func (g *Guest) Record() *AttendanceRecord {
	if g == nil {
		return nil
	}
	return &AttendanceRecord{
		AttendCeremony:   g.AttendCeremony,
		AttendLunch:      g.AttendLunch,
		HasEventFields:   true,
		AttendanceChoice: g.AttendanceChoice,
		Attending:        g.Attending,
	}
}

// State derives the guest's canonical attendance.
func (g *Guest) State() AttendanceState {
	return DeriveAttendanceState(g.Record())
}

// ApplyAttendance sets the per-event answers and brings the legacy fields in line with them.
func ApplyAttendance(g *Guest, ceremony, lunch Attendance) {
	state := AttendanceState{Ceremony: ceremony, Lunch: lunch}
	g.AttendCeremony = ceremony
	g.AttendLunch = lunch
	g.Attending = state.LegacyAttending()
	g.AttendanceChoice = state.LegacyChoice()
}

// ApplyLegacyAttending records an answer given in the oldest single-value form.
// A yes counts for both events, matching how historic answers were migrated.
func ApplyLegacyAttending(g *Guest, attending Attendance) {
	ApplyAttendance(g, attending, attending)
}

// AttendanceAnswer is an RSVP answer that may leave an event out.
// Events it does not name keep their current value.
type AttendanceAnswer struct {
	Ceremony    Attendance
	Lunch       Attendance
	HasCeremony bool
	HasLunch    bool
}

// FullAnswer answers both events with the given state.
func FullAnswer(state AttendanceState) AttendanceAnswer {
	return AttendanceAnswer{
		Ceremony:    state.Ceremony,
		Lunch:       state.Lunch,
		HasCeremony: true,
		HasLunch:    true,
	}
}

// LegacyAnswer is the single attending value of older clients, applied to both events
// like ApplyLegacyAttending.
func LegacyAnswer(attending Attendance) AttendanceAnswer {
	return FullAnswer(AttendanceState{Ceremony: attending, Lunch: attending})
}

// Given reports whether the answer names at least one event.
func (a AttendanceAnswer) Given() bool {
	return a.HasCeremony || a.HasLunch
}

// Merge returns current with the named events replaced.
func (a AttendanceAnswer) Merge(current AttendanceState) AttendanceState {
	if a.HasCeremony {
		current.Ceremony = a.Ceremony
	}
	if a.HasLunch {
		current.Lunch = a.Lunch
	}
	return current
}

// ApplyAnswer merges the answer over the guest's derived state and reports whether
// anything was answered.
func ApplyAnswer(g *Guest, a AttendanceAnswer) bool {
	if !a.Given() {
		return false
	}
	state := a.Merge(g.State())
	ApplyAttendance(g, state.Ceremony, state.Lunch)
	return true
}
