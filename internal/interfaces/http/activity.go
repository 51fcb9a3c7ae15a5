package http

import (
	"net/http"

	"ebridge-portal/internal/domain/entity/activity"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type eventPayload struct {
	Kind       string         `json:"kind" binding:"required"`
	Properties map[string]any `json:"properties"`
}

// trackEvent records a client-side activity event
// @Summary      Track event
// @Description  Publish a page_view, login, signup, portfolio_action or proposal_action event
// @Tags         activity
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      eventPayload  true  "Event"
// @Success      202      {object}  activity.Event
// @Failure      400      {object}  errorResponse
// @Failure      503      {object}  errorResponse
// @Router       /events [post]
func (h *Handler) trackEvent(c *gin.Context) {
	if h.events == nil {
		writeError(c, statusFor(errEventsDisabled), errEventsDisabled)
		return
	}
	var payload eventPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}
	kind, err := activity.NewClientKind(payload.Kind)
	if err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}
	sess := sessionFrom(c)
	event := activity.NewEvent(sess.UserID, kind, payload.Properties, h.now())
	if err := h.events.Publish(c.Request.Context(), event); err != nil {
		h.logger.WithError(err).WithFields(logrus.Fields{
			"kind":    kind,
			"user_id": sess.UserID,
		}).Warn("publish client event failed")
		writeError(c, http.StatusServiceUnavailable, err)
		return
	}
	c.JSON(http.StatusAccepted, event)
}

// lastPrice returns the latest quote of an instrument
// @Summary      Last price
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        instrument_uid  path      string  true  "Instrument UID or FIGI"
// @Success      200             {object}  map[string]interface{}
// @Failure      502             {object}  errorResponse
// @Failure      503             {object}  errorResponse
// @Router       /admin/quotes/{instrument_uid} [get]
func (h *Handler) lastPrice(c *gin.Context) {
	if h.quotes == nil {
		writeError(c, statusFor(errQuotesDisabled), errQuotesDisabled)
		return
	}
	uid := c.Param("instrument_uid")
	price, err := h.quotes.LastPrice(c.Request.Context(), uid)
	if err != nil {
		h.logger.WithError(err).WithField("instrument_uid", uid).Warn("quote lookup failed")
		writeError(c, http.StatusBadGateway, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"instrument_uid": uid, "price": price})
}
