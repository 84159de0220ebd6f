package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/venuepass/venuepass/internal/application"
	"github.com/venuepass/venuepass/internal/domain/entity"
	"github.com/venuepass/venuepass/pkg/validation"
)

type LocationHandler struct {
	Ledger   *application.LocationService
	Verifier *application.VerificationService
	Events   *application.EventService
	Logger   *logrus.Logger
}

func NewLocationHandler(ledger *application.LocationService, verifier *application.VerificationService, events *application.EventService, logger *logrus.Logger) *LocationHandler {
	return &LocationHandler{Ledger: ledger, Verifier: verifier, Events: events, Logger: logger}
}

type assignRequest struct {
	VenueID string `json:"venue_id" binding:"required,uuid"`
	Day     string `json:"day" binding:"required,datetime=2006-01-02"`
	Reason  string `json:"reason"`
}

type verifyRequest struct {
	Latitude  float64 `json:"latitude" binding:"latitude"`
	Longitude float64 `json:"longitude" binding:"longitude"`
}

type venueRequest struct {
	ID          string  `json:"id"`
	Name        string  `json:"name" binding:"required"`
	Line1       string  `json:"address_line1"`
	Line2       string  `json:"address_line2"`
	City        string  `json:"city"`
	State       string  `json:"state"`
	PostalCode  string  `json:"postal_code"`
	Country     string  `json:"country"`
	Latitude    float64 `json:"latitude" binding:"latitude"`
	Longitude   float64 `json:"longitude" binding:"longitude"`
	RangeMeters float64 `json:"range_m" binding:"geo_range"`
}

// Assign POST /api/locations/assign
func (h *LocationHandler) Assign(c *gin.Context) {
	var req assignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, validation.ToDetails(err))
		return
	}
	day, err := time.Parse("2006-01-02", req.Day)
	if err != nil {
		badRequest(c, gin.H{"day": "must be a YYYY-MM-DD date"})
		return
	}
	a, err := h.Ledger.Assign(c.Request.Context(), c.GetString("userID"), req.VenueID, day, req.Reason)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, a, "location assigned")
}

// Assigned GET /api/locations/assigned
func (h *LocationHandler) Assigned(c *gin.Context) {
	list, err := h.Ledger.AssignmentsFor(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, list, "assigned locations")
}

// Verify POST /api/locations/verify
func (h *LocationHandler) Verify(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, validation.ToDetails(err))
		return
	}
	res := h.Verifier.Verify(c.Request.Context(), c.GetString("userID"), req.Latitude, req.Longitude)
	ok(c, http.StatusOK, res, "location verification")
}

// Venues GET /api/locations
func (h *LocationHandler) Venues(c *gin.Context) {
	venues, err := h.Events.ListVenues(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, venues, "venues")
}

// UpsertVenue POST /api/admin/venues
func (h *LocationHandler) UpsertVenue(c *gin.Context) {
	var req venueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, validation.ToDetails(err))
		return
	}
	v, err := h.Events.CreateOrUpdateVenue(c.Request.Context(), &entity.Venue{
		ID:   req.ID,
		Name: req.Name,
		Address: entity.Address{
			Line1:      req.Line1,
			Line2:      req.Line2,
			City:       req.City,
			State:      req.State,
			PostalCode: req.PostalCode,
			Country:    req.Country,
		},
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		RangeMeters: req.RangeMeters,
	})
	if err != nil {
		fail(c, err)
		return
	}
	status := http.StatusOK
	if req.ID == "" {
		status = http.StatusCreated
	}
	ok(c, status, v, "venue saved")
}
