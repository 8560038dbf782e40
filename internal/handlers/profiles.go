package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"dental-lab-backend/internal/models"
	"dental-lab-backend/internal/orders"
	"dental-lab-backend/internal/supabase"
)

type ProfilesHandler struct {
	dbClient *supabase.DatabaseClient
}

func NewProfilesHandler(dbClient *supabase.DatabaseClient) *ProfilesHandler {
	return &ProfilesHandler{dbClient: dbClient}
}

// GetProfile godoc
// @Summary     Get the signed-in practitioner's profile
// @Tags        profile
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.ProfileResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /profile [get]
func (h *ProfilesHandler) GetProfile(c *gin.Context) {
	if h.dbClient == nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "database not available"})
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	profile, err := h.dbClient.GetProfile(c.Request.Context(), userID)
	if errors.Is(err, orders.ErrNotFound) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "profile not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to load profile", Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, models.ProfileResponse{
		ID:        profile.ID.String(),
		Email:     profile.Email,
		FullName:  profile.FullName.String,
		CreatedAt: profile.CreatedAt,
	})
}

// UpdateProfile godoc
// @Summary     Update the practitioner's display name
// @Tags        profile
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.UpdateProfileRequest true "Profile fields"
// @Success     200 {object} models.ProfileResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /profile [put]
func (h *ProfilesHandler) UpdateProfile(c *gin.Context) {
	if h.dbClient == nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "database not available"})
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body", Message: err.Error()})
		return
	}
	fullName := strings.TrimSpace(req.FullName)
	if fullName == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "full_name is required"})
		return
	}

	if err := h.dbClient.UpdateProfileName(c.Request.Context(), userID, fullName); err != nil {
		if errors.Is(err, orders.ErrNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "profile not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to update profile", Message: err.Error()})
		return
	}

	profile, err := h.dbClient.GetProfile(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to load profile", Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, models.ProfileResponse{
		ID:        profile.ID.String(),
		Email:     profile.Email,
		FullName:  profile.FullName.String,
		CreatedAt: profile.CreatedAt,
	})
}
