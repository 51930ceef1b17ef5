package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/weddingrsvp/rsvp/domain"
)

type adminGuestRequest struct {
	Name           optional[string]            `json:"name"`
	FamilyID       optional[*int64]            `json:"family_id"`
	AttendCeremony optional[domain.Attendance] `json:"attend_ceremony"`
	AttendLunch    optional[domain.Attendance] `json:"attend_lunch"`
	Attending      optional[domain.Attendance] `json:"attending"`
	Allergens      []string                    `json:"allergens" binding:"omitempty,dive,allergen"`
	DietaryNotes   optional[*string]           `json:"dietary_notes"`
	AdminNotes     optional[*string]           `json:"admin_notes"`
}

// apply copies the fields present in the request onto guest.
func (req *adminGuestRequest) apply(guest *domain.Guest) {
	if req.Name.Set {
		guest.Name = strings.TrimSpace(req.Name.Value)
	}
	if req.FamilyID.Set {
		guest.FamilyID = req.FamilyID.Value
	}
	applyGuestAnswer(guest, req.AttendCeremony, req.AttendLunch, req.Attending)
	if req.Allergens != nil {
		guest.Allergens = domain.NormalizeAllergens(req.Allergens)
	}
	if req.DietaryNotes.Set {
		guest.DietaryNotes = req.DietaryNotes.Value
	}
	if req.AdminNotes.Set {
		guest.AdminNotes = req.AdminNotes.Value
	}
}

type adminFamilyRequest struct {
	FamilyName string `json:"family_name"`
}

func (s *Server) adminData(c *gin.Context) {
	families, err := s.repo.ListFamilies()
	if err != nil {
		abortWithError(c, err, "Family not found")
		return
	}
	individuals, err := s.repo.ListIndividualGuests()
	if err != nil {
		abortWithError(c, err, "Guest not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"families": families, "individuals": individuals})
}

func (s *Server) adminCreateGuest(c *gin.Context) {
	var req adminGuestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithBindError(c, err)
		return
	}

	guest := &domain.Guest{Allergens: []string{}}
	req.apply(guest)
	if guest.Name == "" {
		abortWithDetail(c, http.StatusBadRequest, "Guest name is required")
		return
	}

	if err := s.repo.CreateGuest(guest); err != nil {
		abortWithError(c, err, "Guest not found")
		return
	}
	s.log.Info("Guest created", "guest_id", guest.ID, "name", guest.Name)
	c.JSON(http.StatusCreated, guest)
}

func (s *Server) adminUpdateGuest(c *gin.Context) {
	id, ok := idParam(c, "Guest not found")
	if !ok {
		return
	}

	var req adminGuestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithBindError(c, err)
		return
	}

	guest, err := s.repo.GetGuest(id)
	if err != nil {
		abortWithError(c, err, "Guest not found")
		return
	}

	req.apply(guest)
	if guest.Name == "" {
		abortWithDetail(c, http.StatusBadRequest, "Guest name is required")
		return
	}

	if err := s.repo.UpdateGuest(guest); err != nil {
		abortWithError(c, err, "Guest not found")
		return
	}
	c.JSON(http.StatusOK, guest)
}

func (s *Server) adminDeleteGuest(c *gin.Context) {
	id, ok := idParam(c, "Guest not found")
	if !ok {
		return
	}

	if err := s.repo.DeleteGuest(id); err != nil {
		abortWithError(c, err, "Guest not found")
		return
	}
	s.log.Info("Guest deleted", "guest_id", id)
	c.Status(http.StatusNoContent)
}

func (s *Server) adminCreateFamily(c *gin.Context) {
	var req adminFamilyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithBindError(c, err)
		return
	}

	name := strings.TrimSpace(req.FamilyName)
	if name == "" {
		abortWithDetail(c, http.StatusBadRequest, "Family name is required")
		return
	}

	family := &domain.Family{FamilyName: name}
	if err := s.repo.CreateFamily(family); err != nil {
		abortWithError(c, err, "Family not found")
		return
	}
	s.log.Info("Family created", "family_id", family.ID, "name", family.FamilyName)
	c.JSON(http.StatusCreated, family)
}

func (s *Server) adminUpdateFamily(c *gin.Context) {
	id, ok := idParam(c, "Family not found")
	if !ok {
		return
	}

	var req adminFamilyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithBindError(c, err)
		return
	}

	if name := strings.TrimSpace(req.FamilyName); name != "" {
		if err := s.repo.RenameFamily(id, name); err != nil {
			abortWithError(c, err, "Family not found")
			return
		}
	}

	family, err := s.repo.GetFamily(id)
	if err != nil {
		abortWithError(c, err, "Family not found")
		return
	}
	c.JSON(http.StatusOK, family)
}

func (s *Server) adminDeleteFamily(c *gin.Context) {
	id, ok := idParam(c, "Family not found")
	if !ok {
		return
	}

	if err := s.repo.DeleteFamily(id); err != nil {
		abortWithError(c, err, "Family not found")
		return
	}
	s.log.Info("Family deleted", "family_id", id)
	c.Status(http.StatusNoContent)
}
