// Package server exposes the RSVP, gallery and admin HTTP API.
package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	"github.com/weddingrsvp/rsvp/domain"
	"github.com/weddingrsvp/rsvp/gallery"
	"github.com/weddingrsvp/rsvp/logger"
)

// DefaultUploadRate is the per-client photo upload limit, in limiter format.
const DefaultUploadRate = "30-H"

// Repository is the storage the server reads and writes.
type Repository interface {
	domain.GuestRepository
	domain.FamilyRepository
	domain.PhotoRepository
	domain.VoteAuditRepository
}

// Config holds the HTTP settings of the server.
type Config struct {
	AdminPassword  string   // Empty disables every admin route.
	AllowedOrigins []string // CORS origins.
	UploadRate     string   // Photo uploads per client, e.g. "30-H". Defaults to DefaultUploadRate.
}

// Server routes API requests to the repository and the photo store.
type Server struct {
	config        Config
	repo          Repository
	photos        *gallery.Store
	log           logger.Logger
	uploadLimiter *limiter.Limiter
	router        *gin.Engine
}

// New builds a Server and its router.
func New(config Config, repo Repository, photos *gallery.Store, log logger.Logger) (*Server, error) {
	if log == nil {
		log = logger.Nop()
	}
	if config.UploadRate == "" {
		config.UploadRate = DefaultUploadRate
	}
	rate, err := limiter.NewRateFromFormatted(config.UploadRate)
	if err != nil {
		return nil, fmt.Errorf("parsing upload rate %q: %w", config.UploadRate, err)
	}
	if err := registerValidators(); err != nil {
		return nil, err
	}

	s := &Server{
		config:        config,
		repo:          repo,
		photos:        photos,
		log:           log,
		uploadLimiter: limiter.New(memory.NewStore(), rate),
	}
	s.buildRouter()
	return s, nil
}

// Handler returns the http.Handler serving the API.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) buildRouter() {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(LoggerMiddleware(s.log))
	r.Use(CORSMiddleware(s.config.AllowedOrigins))

	r.GET("/", s.health)
	if s.photos != nil {
		r.Static("/photos", s.photos.Dir)
	}

	api := r.Group("/api")
	api.GET("/families", s.listFamilies)
	api.GET("/guests", s.listGuests)
	api.PATCH("/guests/:id", s.updateGuest)
	api.PATCH("/families/:id/guests", s.updateFamilyGuests)
	api.GET("/rsvp/stats", s.stats)
	api.GET("/rsvp/options", s.options)

	api.POST("/photos", s.uploadPhoto)
	api.GET("/photos", s.listPhotos)
	api.DELETE("/photos/:id", AdminMiddleware(s.config.AdminPassword), s.deletePhoto)

	admin := api.Group("/admin", AdminMiddleware(s.config.AdminPassword))
	admin.GET("/data", s.adminData)
	admin.POST("/guests", s.adminCreateGuest)
	admin.PATCH("/guests/:id", s.adminUpdateGuest)
	admin.DELETE("/guests/:id", s.adminDeleteGuest)
	admin.POST("/families", s.adminCreateFamily)
	admin.PATCH("/families/:id", s.adminUpdateFamily)
	admin.DELETE("/families/:id", s.adminDeleteFamily)

	s.router = r
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Wedding RSVP API"})
}
