package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/venuepass/venuepass/internal/application"
	"github.com/venuepass/venuepass/internal/domain/entity"
	"github.com/venuepass/venuepass/pkg/validation"
)

type EventHandler struct {
	Events *application.EventService
	Engine *application.RegistrationService
	Admin  *application.AdminService
	Logger *logrus.Logger
}

func NewEventHandler(events *application.EventService, engine *application.RegistrationService, admin *application.AdminService, logger *logrus.Logger) *EventHandler {
	return &EventHandler{Events: events, Engine: engine, Admin: admin, Logger: logger}
}

type eventRequest struct {
	ID          string     `json:"id"`
	Name        string     `json:"name" binding:"required"`
	Description string     `json:"description"`
	Speakers    []string   `json:"speakers"`
	Date        time.Time  `json:"date" binding:"required"`
	StartsAt    *time.Time `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at"`
	VenueID     string     `json:"venue_id" binding:"required,uuid"`
	Visible     *bool      `json:"visible"`
	MaxSeats    int        `json:"max_seats" binding:"gte=0"`
	Category    string     `json:"category"`
}

// List GET /api/events
func (h *EventHandler) List(c *gin.Context) {
	events, err := h.Events.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, events, "events")
}

// Get GET /api/events/:id
func (h *EventHandler) Get(c *gin.Context) {
	ev, err := h.Events.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, ev, "event")
}

// Search GET /api/events/search?q=&size=
func (h *EventHandler) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		badRequest(c, gin.H{"q": "is required"})
		return
	}
	size, _ := strconv.Atoi(c.Query("size"))
	hits, err := h.Events.Search(c.Request.Context(), q, size)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, hits, "search results")
}

// Register POST /api/events/:id/register
func (h *EventHandler) Register(c *gin.Context) {
	ev, err := h.Engine.Register(c.Request.Context(), c.Param("id"), c.GetString("userID"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, ev, "registered")
}

// Unregister DELETE /api/events/:id/register
func (h *EventHandler) Unregister(c *gin.Context) {
	ev, err := h.Engine.Unregister(c.Request.Context(), c.Param("id"), c.GetString("userID"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, ev, "unregistered")
}

// Registered GET /api/events/registered
func (h *EventHandler) Registered(c *gin.Context) {
	events, err := h.Engine.RegisteredEvents(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, events, "registered events")
}

// Upsert POST /api/admin/events
func (h *EventHandler) Upsert(c *gin.Context) {
	var req eventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, validation.ToDetails(err))
		return
	}
	ev, err := h.Events.CreateOrUpdate(c.Request.Context(), c.GetString("userID"), application.EventInput{
		ID:          req.ID,
		Name:        req.Name,
		Description: req.Description,
		Speakers:    req.Speakers,
		Date:        req.Date,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		VenueID:     req.VenueID,
		Visible:     req.Visible,
		MaxSeats:    req.MaxSeats,
		Category:    entity.EventCategory(req.Category),
	})
	if err != nil {
		fail(c, err)
		return
	}
	status := http.StatusOK
	if req.ID == "" {
		status = http.StatusCreated
	}
	ok(c, status, ev, "event saved")
}

type forceRegisterRequest struct {
	UserID string `json:"user_id" binding:"required,uuid"`
}

// ForceRegister POST /api/admin/events/:id/register
func (h *EventHandler) ForceRegister(c *gin.Context) {
	var req forceRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, validation.ToDetails(err))
		return
	}
	res, err := h.Admin.ForceRegister(c.Request.Context(), c.Param("id"), req.UserID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, res, "user force-registered")
}

// Reconcile GET /api/admin/registrations/reconcile
func (h *EventHandler) Reconcile(c *gin.Context) {
	found, err := h.Admin.ReconcileRegistrations(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"discrepancies": found, "count": len(found)}, "reconciliation report")
}
