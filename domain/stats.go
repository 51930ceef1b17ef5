package domain

// StatsRepository provides the data needed for RSVP statistics.
type StatsRepository interface {
	// CountGuests returns the total number of guests.
	CountGuests() (int, error)
	// CountFamilies returns the total number of families.
	CountFamilies() (int, error)
	// CountPhotos returns the total number of gallery photos.
	CountPhotos() (int, error)
}

// RSVPStats summarises the answers of all guests.
type RSVPStats struct {
	TotalGuests int `json:"total_guests"`
	Confirmed   int `json:"confirmed"` // At least one event confirmed.
	Declined    int `json:"declined"`  // Both events declined.
	Pending     int `json:"pending"`
	Ceremony    int `json:"ceremony"` // Confirmed for the ceremony.
	Lunch       int `json:"lunch"`    // Confirmed for the lunch.
}

// ComputeStats derives statistics from the attendance state of every guest.
func ComputeStats(guests []*Guest) RSVPStats {
	stats := RSVPStats{TotalGuests: len(guests)}
	for _, g := range guests {
		state := g.State()
		switch {
		case state.Attending():
			stats.Confirmed++
		case state.Declined():
			stats.Declined++
		default:
			stats.Pending++
		}
		if state.Ceremony == AttendanceYes {
			stats.Ceremony++
		}
		if state.Lunch == AttendanceYes {
			stats.Lunch++
		}
	}
	return stats
}
