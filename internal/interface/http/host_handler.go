package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/venuepass/venuepass/internal/application"
	"github.com/venuepass/venuepass/internal/domain/entity"
	"github.com/venuepass/venuepass/pkg/validation"
)

type HostHandler struct {
	Svc    *application.HostService
	Logger *logrus.Logger
}

func NewHostHandler(svc *application.HostService, logger *logrus.Logger) *HostHandler {
	return &HostHandler{Svc: svc, Logger: logger}
}

type hostRequest struct {
	ID                 string `json:"id"`
	Name               string `json:"name" binding:"required"`
	LegalName          string `json:"legal_name"`
	OrgType            string `json:"org_type"`
	VenueID            string `json:"venue_id" binding:"required,uuid"`
	ContactPerson      string `json:"contact_person"`
	ContactRole        string `json:"contact_role"`
	ContactEmail       string `json:"contact_email" binding:"omitempty,email"`
	ContactPhone       string `json:"contact_phone"`
	RegistrationNumber string `json:"registration_number"`
	TaxID              string `json:"tax_id"`
}

type memberRequest struct {
	UserID string `json:"user_id" binding:"required,uuid"`
	Role   string `json:"role" binding:"required"`
}

type updateMemberRequest struct {
	Role    string `json:"role"`
	Subrole string `json:"subrole"`
}

// Upsert POST /api/admin/hosts
func (h *HostHandler) Upsert(c *gin.Context) {
	var req hostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, validation.ToDetails(err))
		return
	}
	host, err := h.Svc.CreateOrUpdateHost(c.Request.Context(), &entity.Host{
		ID:        req.ID,
		Name:      req.Name,
		LegalName: req.LegalName,
		OrgType:   req.OrgType,
		VenueID:   req.VenueID,
		Contact: entity.HostContact{
			PersonName: req.ContactPerson,
			Role:       req.ContactRole,
			Email:      req.ContactEmail,
			Phone:      req.ContactPhone,
		},
		RegistrationNumber: req.RegistrationNumber,
		TaxID:              req.TaxID,
	})
	if err != nil {
		fail(c, err)
		return
	}
	status := http.StatusOK
	if req.ID == "" {
		status = http.StatusCreated
	}
	ok(c, status, host, "host saved")
}

// AddMember POST /api/admin/hosts/:id/members
func (h *HostHandler) AddMember(c *gin.Context) {
	var req memberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, validation.ToDetails(err))
		return
	}
	res, err := h.Svc.AddMember(c.Request.Context(), c.Param("id"), req.UserID, entity.Role(req.Role))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, res, "member added")
}

// RemoveMember DELETE /api/admin/hosts/:id/members/:userId
func (h *HostHandler) RemoveMember(c *gin.Context) {
	res, err := h.Svc.RemoveMember(c.Request.Context(), c.Param("id"), c.Param("userId"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, res, "member removed")
}

// ForceAddMember POST /api/admin/hosts/:id/members/force
func (h *HostHandler) ForceAddMember(c *gin.Context) {
	var req memberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, validation.ToDetails(err))
		return
	}
	res, err := h.Svc.ForceAddMember(c.Request.Context(), c.Param("id"), req.UserID, entity.Role(req.Role))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, res, "member reassigned")
}

// UpdateMember PUT /api/admin/members/:userId
func (h *HostHandler) UpdateMember(c *gin.Context) {
	var req updateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, validation.ToDetails(err))
		return
	}
	u, err := h.Svc.UpdateMember(c.Request.Context(), c.Param("userId"),
		entity.Role(req.Role), entity.Subrole(req.Subrole))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, userView(u), "member updated")
}
