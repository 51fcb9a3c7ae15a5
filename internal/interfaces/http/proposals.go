package http

import (
	"errors"
	"io"
	"net/http"
	"time"

	appproposals "ebridge-portal/internal/application/service/proposals"
	domainproposals "ebridge-portal/internal/domain/entity/proposals"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type acceptPayload struct {
	Confirmed bool `json:"confirmed"`
}

type rejectPayload struct {
	Reason string `json:"reason"`
}

type issuePayload struct {
	ClientID        string     `json:"client_id" binding:"required"`
	Title           string     `json:"title" binding:"required"`
	Action          string     `json:"action" binding:"required"`
	Amount          float64    `json:"amount" binding:"required"`
	UnitPrice       float64    `json:"unit_price"`
	InstrumentUID   string     `json:"instrument_uid"`
	RiskLevel       string     `json:"risk_level" binding:"required"`
	Rationale       string     `json:"rationale"`
	ExpectedReturn  string     `json:"expected_return"`
	TimeHorizon     string     `json:"time_horizon"`
	AdditionalNotes string     `json:"additional_notes"`
	Deadline        *time.Time `json:"deadline"`
}

func (p issuePayload) toRequest() (appproposals.IssueRequest, error) {
	clientID, err := uuid.Parse(p.ClientID)
	if err != nil {
		return appproposals.IssueRequest{}, domainproposals.ErrMissingClient
	}
	action, err := domainproposals.NewAction(p.Action)
	if err != nil {
		return appproposals.IssueRequest{}, err
	}
	risk, err := domainproposals.NewRiskLevel(p.RiskLevel)
	if err != nil {
		return appproposals.IssueRequest{}, err
	}
	return appproposals.IssueRequest{
		NewParams: domainproposals.NewParams{
			ClientID:        clientID,
			Title:           p.Title,
			Action:          action,
			Amount:          p.Amount,
			UnitPrice:       p.UnitPrice,
			RiskLevel:       risk,
			Rationale:       p.Rationale,
			ExpectedReturn:  p.ExpectedReturn,
			TimeHorizon:     p.TimeHorizon,
			AdditionalNotes: p.AdditionalNotes,
			Deadline:        p.Deadline,
		},
		InstrumentUID: p.InstrumentUID,
	}, nil
}

// listOwnProposals returns the caller's proposals
// @Summary      List my proposals
// @Description  All proposals of the authenticated client, newest first
// @Tags         proposals
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domainproposals.Proposal
// @Failure      401  {object}  errorResponse
// @Failure      503  {object}  errorResponse
// @Router       /proposals [get]
func (h *Handler) listOwnProposals(c *gin.Context) {
	h.withOwnStore(c, func(store *appproposals.Store) []domainproposals.Proposal {
		return store.All()
	})
}

// listPendingProposals returns the caller's pending proposals
// @Summary      List my pending proposals
// @Tags         proposals
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domainproposals.Proposal
// @Failure      401  {object}  errorResponse
// @Failure      503  {object}  errorResponse
// @Router       /proposals/pending [get]
func (h *Handler) listPendingProposals(c *gin.Context) {
	h.withOwnStore(c, func(store *appproposals.Store) []domainproposals.Proposal {
		return store.Pending()
	})
}

// listProposalHistory returns the caller's decided proposals
// @Summary      List my decided proposals
// @Description  Accepted and rejected proposals, most recent decision first
// @Tags         proposals
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domainproposals.Proposal
// @Failure      401  {object}  errorResponse
// @Failure      503  {object}  errorResponse
// @Router       /proposals/history [get]
func (h *Handler) listProposalHistory(c *gin.Context) {
	h.withOwnStore(c, func(store *appproposals.Store) []domainproposals.Proposal {
		return store.History()
	})
}

func (h *Handler) withOwnStore(c *gin.Context, view func(*appproposals.Store) []domainproposals.Proposal) {
	store, err := h.proposals.LoadOwn(c.Request.Context(), sessionFrom(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view(store))
}

// acceptProposal accepts a pending proposal
// @Summary      Accept proposal
// @Description  Accept a pending proposal. Requires the legal confirmation flag.
// @Tags         proposals
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string         true  "Proposal ID"
// @Param        payload  body      acceptPayload  true  "Legal confirmation"
// @Success      200      {object}  domainproposals.Proposal
// @Failure      400      {object}  errorResponse
// @Failure      404      {object}  errorResponse
// @Failure      409      {object}  errorResponse
// @Failure      422      {object}  errorResponse
// @Failure      503      {object}  errorResponse
// @Router       /proposals/{id}/accept [post]
func (h *Handler) acceptProposal(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}
	var payload acceptPayload
	if err := bindOptionalJSON(c, &payload); err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}
	p, err := h.proposals.Accept(c.Request.Context(), sessionFrom(c), id, payload.Confirmed)
	h.writeDecision(c, p, err)
}

// rejectProposal rejects a pending proposal
// @Summary      Reject proposal
// @Tags         proposals
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string         true   "Proposal ID"
// @Param        payload  body      rejectPayload  false  "Optional reason"
// @Success      200      {object}  domainproposals.Proposal
// @Failure      400      {object}  errorResponse
// @Failure      404      {object}  errorResponse
// @Failure      409      {object}  errorResponse
// @Failure      503      {object}  errorResponse
// @Router       /proposals/{id}/reject [post]
func (h *Handler) rejectProposal(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}
	var payload rejectPayload
	if err := bindOptionalJSON(c, &payload); err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}
	p, err := h.proposals.Reject(c.Request.Context(), sessionFrom(c), id, payload.Reason)
	h.writeDecision(c, p, err)
}

// writeDecision answers a decision. A conflict carries the stored proposal so the
// client can show its current state.
func (h *Handler) writeDecision(c *gin.Context, p *domainproposals.Proposal, err error) {
	if err != nil {
		if errors.Is(err, appproposals.ErrAlreadyDecided) && p != nil {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "proposal": p})
			return
		}
		h.fail(c, err)
		return
	}
	h.invalidateSummary(c.Request.Context())
	c.JSON(http.StatusOK, p)
}

// issueProposal creates a proposal for a client
// @Summary      Issue proposal
// @Description  Create a pending proposal. unit_price may be omitted when instrument_uid is given.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      issuePayload  true  "Proposal data"
// @Success      201      {object}  domainproposals.Proposal
// @Failure      400      {object}  errorResponse
// @Failure      403      {object}  errorResponse
// @Failure      502      {object}  errorResponse
// @Router       /admin/proposals [post]
func (h *Handler) issueProposal(c *gin.Context) {
	var payload issuePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}
	req, err := payload.toRequest()
	if err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}
	p, err := h.proposals.Issue(c.Request.Context(), sessionFrom(c), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.invalidateSummary(c.Request.Context())
	c.JSON(http.StatusCreated, p)
}

// listProposals lists proposals across clients
// @Summary      List proposals
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        status     query     string  false  "pending, accepted or rejected"
// @Param        client_id  query     string  false  "Client ID"
// @Success      200        {array}   domainproposals.Proposal
// @Failure      400        {object}  errorResponse
// @Failure      403        {object}  errorResponse
// @Failure      503        {object}  errorResponse
// @Router       /admin/proposals [get]
func (h *Handler) listProposals(c *gin.Context) {
	var filter domainproposals.Filter
	if raw := c.Query("status"); raw != "" {
		status, err := domainproposals.NewStatus(raw)
		if err != nil {
			writeError(c, http.StatusBadRequest, err)
			return
		}
		filter.Status = status
	}
	if raw := c.Query("client_id"); raw != "" {
		clientID, err := uuid.Parse(raw)
		if err != nil {
			writeError(c, http.StatusBadRequest, errMissingID)
			return
		}
		filter.ClientID = clientID
	}
	list, err := h.proposals.List(c.Request.Context(), sessionFrom(c), filter)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// proposalSummary returns portfolio-wide proposal statistics
// @Summary      Proposal summary
// @Description  Counts per status, total values, acceptance rate and stale pending count
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domainproposals.Summary
// @Failure      403  {object}  errorResponse
// @Failure      503  {object}  errorResponse
// @Router       /admin/proposals/summary [get]
func (h *Handler) proposalSummary(c *gin.Context) {
	summary, err := h.proposals.Summary(c.Request.Context(), sessionFrom(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func parseIDParam(c *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, errMissingID
	}
	return id, nil
}

// bindOptionalJSON binds the body into dst and treats an empty body as zero values.
func bindOptionalJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
