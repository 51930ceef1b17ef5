package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/tidwall/gjson"
	"github.com/weddingrsvp/rsvp/domain"
)

// WarningHeader is set on RSVP responses when the client already answered for another invitation.
const WarningHeader = "X-RSVP-Warning"

const multipleScopesWarning = "This device has already submitted RSVPs for another invitation"

// optional records whether a JSON field was present, so that an explicit null can be told apart from a missing key.
type optional[T any] struct {
	Set   bool
	Value T
}

func (o *optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	return json.Unmarshal(data, &o.Value)
}

type guestUpdateRequest struct {
	AttendCeremony optional[domain.Attendance] `json:"attend_ceremony"`
	AttendLunch    optional[domain.Attendance] `json:"attend_lunch"`
	Attending      optional[domain.Attendance] `json:"attending"`
	Allergens      []string                    `json:"allergens" binding:"omitempty,dive,allergen"`
	DietaryNotes   *string                     `json:"dietary_notes" binding:"omitempty,max=1000"`
}

type familyGuestsUpdateRequest struct {
	GuestUpdates map[string]json.RawMessage `json:"guest_updates" binding:"required"`
}

// publicGuest hides fields reserved to the organisers.
func publicGuest(g *domain.Guest) *domain.Guest {
	out := *g
	out.AdminNotes = nil
	return &out
}

func publicGuests(guests []*domain.Guest) []*domain.Guest {
	out := make([]*domain.Guest, len(guests))
	for i, g := range guests {
		out[i] = publicGuest(g)
	}
	return out
}

func publicFamily(f *domain.Family) *domain.Family {
	out := *f
	out.Guests = publicGuests(f.Guests)
	return &out
}

func (s *Server) listFamilies(c *gin.Context) {
	families, err := s.repo.ListFamilies()
	if err != nil {
		abortWithError(c, err, "Family not found")
		return
	}
	out := make([]*domain.Family, len(families))
	for i, f := range families {
		out[i] = publicFamily(f)
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) listGuests(c *gin.Context) {
	guests, err := s.repo.ListIndividualGuests()
	if err != nil {
		abortWithError(c, err, "Guest not found")
		return
	}
	c.JSON(http.StatusOK, publicGuests(guests))
}

// guestAnswer builds the answer of a guest request. Per-event fields win over the legacy
// attending flag; an event the request leaves out keeps its current value.
func guestAnswer(ceremony, lunch, attending optional[domain.Attendance]) domain.AttendanceAnswer {
	if ceremony.Set || lunch.Set {
		return domain.AttendanceAnswer{
			Ceremony:    ceremony.Value,
			Lunch:       lunch.Value,
			HasCeremony: ceremony.Set,
			HasLunch:    lunch.Set,
		}
	}
	if attending.Set {
		return domain.LegacyAnswer(attending.Value)
	}
	return domain.AttendanceAnswer{}
}

// applyGuestAnswer applies the attendance fields of a request to guest and reports whether any was given.
func applyGuestAnswer(guest *domain.Guest, ceremony, lunch, attending optional[domain.Attendance]) bool {
	return domain.ApplyAnswer(guest, guestAnswer(ceremony, lunch, attending))
}

func (s *Server) updateGuest(c *gin.Context) {
	id, ok := idParam(c, "Guest not found")
	if !ok {
		return
	}

	var req guestUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithBindError(c, err)
		return
	}

	guest, err := s.repo.GetGuest(id)
	if err != nil {
		abortWithError(c, err, "Guest not found")
		return
	}

	answered := applyGuestAnswer(guest, req.AttendCeremony, req.AttendLunch, req.Attending)
	if req.Allergens != nil {
		guest.Allergens = domain.NormalizeAllergens(req.Allergens)
	}
	if req.DietaryNotes != nil {
		guest.DietaryNotes = req.DietaryNotes
	}

	if err := s.repo.UpdateGuest(guest); err != nil {
		abortWithError(c, err, "Guest not found")
		return
	}
	if answered {
		s.auditVote(c, domain.ScopeGuest, guest.ID, []int64{guest.ID})
	}

	c.JSON(http.StatusOK, publicGuest(guest))
}

// parseFamilyAnswer reads one entry of guest_updates with the rules of a guest PATCH:
// named events are set and the others kept, a legacy attending value (bare or as a key)
// counts for both events. An object with only attendance_choice goes through the
// attendance normalizer.
func parseFamilyAnswer(raw json.RawMessage) (domain.AttendanceAnswer, error) {
	result := gjson.ParseBytes(raw)
	switch result.Type {
	case gjson.JSON:
		if !result.IsObject() {
			break
		}
		record := domain.ParseAttendanceRecord(raw)
		ceremony := result.Get("attend_ceremony")
		lunch := result.Get("attend_lunch")
		switch {
		case record.HasEventFields:
			return domain.AttendanceAnswer{
				Ceremony:    record.AttendCeremony,
				Lunch:       record.AttendLunch,
				HasCeremony: ceremony.Exists(),
				HasLunch:    lunch.Exists(),
			}, nil
		case result.Get("attending").Exists():
			return domain.LegacyAnswer(record.Attending), nil
		case record.AttendanceChoice != "":
			if state := domain.DeriveAttendanceState(&record); state != (domain.AttendanceState{}) {
				return domain.FullAnswer(state), nil
			}
		}
		return domain.AttendanceAnswer{}, nil
	case gjson.True:
		return domain.LegacyAnswer(domain.AttendanceYes), nil
	case gjson.False:
		return domain.LegacyAnswer(domain.AttendanceNo), nil
	case gjson.Null:
		return domain.LegacyAnswer(domain.AttendanceUnknown), nil
	}
	return domain.AttendanceAnswer{}, fmt.Errorf("unsupported answer %s", raw)
}

func (s *Server) updateFamilyGuests(c *gin.Context) {
	id, ok := idParam(c, "Family not found")
	if !ok {
		return
	}

	var req familyGuestsUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithBindError(c, err)
		return
	}

	answers := make(map[int64]domain.AttendanceAnswer, len(req.GuestUpdates))
	for key, raw := range req.GuestUpdates {
		guestID, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			abortWithDetail(c, http.StatusBadRequest, fmt.Sprintf("Invalid guest id: %s", key))
			return
		}
		answer, err := parseFamilyAnswer(raw)
		if err != nil {
			abortWithDetail(c, http.StatusBadRequest, fmt.Sprintf("Invalid answer for guest %d", guestID))
			return
		}
		answers[guestID] = answer
	}

	family, err := s.repo.GetFamily(id)
	if err != nil {
		abortWithError(c, err, "Family not found")
		return
	}

	if err := s.repo.UpdateFamilyAttendance(id, answers); err != nil {
		abortWithError(c, err, "Family not found")
		return
	}

	var members []int64
	for guestID, answer := range answers {
		if answer.Given() && family.HasMember(guestID) {
			members = append(members, guestID)
		}
	}
	if len(members) > 0 {
		slices.Sort(members)
		s.auditVote(c, domain.ScopeFamily, family.ID, members)
	}

	family, err = s.repo.GetFamily(id)
	if err != nil {
		abortWithError(c, err, "Family not found")
		return
	}
	c.JSON(http.StatusOK, publicFamily(family))
}

// auditVote flags a client that already answered for another invitation and records this answer.
// Audit failures are logged and never block the RSVP.
func (s *Server) auditVote(c *gin.Context, scopeType string, scopeID int64, guestIDs []int64) {
	ip := clientIP(c)

	others, err := s.repo.CountOtherScopes(ip, scopeType, scopeID)
	if err != nil {
		s.log.Warn("Checking vote audit", "ip", ip, "scope", scopeType, "scope_id", scopeID, "error", err)
	} else if others > 0 {
		c.Header(WarningHeader, multipleScopesWarning)
		s.log.Warn("Client answered for several invitations", "ip", ip, "scope", scopeType, "scope_id", scopeID, "other_scopes", others)
	}

	if err := s.repo.RecordVotes(ip, scopeType, scopeID, guestIDs); err != nil {
		s.log.Warn("Recording vote audit", "ip", ip, "scope", scopeType, "scope_id", scopeID, "error", err)
	}
}

func (s *Server) stats(c *gin.Context) {
	guests, err := s.repo.ListGuests()
	if err != nil {
		abortWithError(c, err, "Guest not found")
		return
	}
	c.JSON(http.StatusOK, domain.ComputeStats(guests))
}

func (s *Server) options(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"events":    domain.RSVPEvents,
		"allergens": domain.Allergens,
	})
}
