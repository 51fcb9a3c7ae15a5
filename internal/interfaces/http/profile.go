package http

import (
	"errors"
	"net/http"

	domainprofiles "ebridge-portal/internal/domain/entity/profiles"

	"github.com/gin-gonic/gin"
)

var errProfilesDisabled = errors.New("profiles are not configured")

type profilePayload struct {
	FullName  string `json:"full_name"`
	Username  string `json:"username"`
	Website   string `json:"website"`
	AvatarURL string `json:"avatar_url"`
}

// getProfile returns the caller's profile, blank when nothing was saved yet
// @Summary      My profile
// @Tags         profile
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domainprofiles.Profile
// @Failure      401  {object}  errorResponse
// @Failure      503  {object}  errorResponse
// @Router       /me/profile [get]
func (h *Handler) getProfile(c *gin.Context) {
	if h.profiles == nil {
		writeError(c, http.StatusServiceUnavailable, errProfilesDisabled)
		return
	}
	p, err := h.profiles.Get(c.Request.Context(), sessionFrom(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// updateProfile replaces the editable profile fields of the caller
// @Summary      Update my profile
// @Description  Every field is replaced; an empty string clears it
// @Tags         profile
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      profilePayload  true  "Profile fields"
// @Success      200      {object}  domainprofiles.Profile
// @Failure      400      {object}  errorResponse
// @Failure      409      {object}  errorResponse
// @Failure      503      {object}  errorResponse
// @Router       /me/profile [put]
func (h *Handler) updateProfile(c *gin.Context) {
	if h.profiles == nil {
		writeError(c, http.StatusServiceUnavailable, errProfilesDisabled)
		return
	}
	var payload profilePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}
	p, err := h.profiles.Update(c.Request.Context(), sessionFrom(c), domainprofiles.Changes{
		FullName:  payload.FullName,
		Username:  payload.Username,
		Website:   payload.Website,
		AvatarURL: payload.AvatarURL,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
