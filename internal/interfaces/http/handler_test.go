package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	appdocuments "ebridge-portal/internal/application/service/documents"
	appprofiles "ebridge-portal/internal/application/service/profiles"
	appproposals "ebridge-portal/internal/application/service/proposals"
	domaindocuments "ebridge-portal/internal/domain/entity/documents"
	domainprofiles "ebridge-portal/internal/domain/entity/profiles"
	domainproposals "ebridge-portal/internal/domain/entity/proposals"
	"ebridge-portal/internal/domain/entity/session"
	"ebridge-portal/internal/infrastructure/auth"
	"ebridge-portal/internal/infrastructure/memory"
	"ebridge-portal/internal/infrastructure/signature"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 1, 16, 10, 30, 0, 0, time.UTC)

type quoteStub map[string]float64

func (q quoteStub) LastPrice(_ context.Context, uid string) (float64, error) {
	if price, ok := q[uid]; ok {
		return price, nil
	}
	return 0, errors.New("no quote")
}

type observed struct {
	route, code string
}

type observerStub struct {
	seen []observed
}

func (o *observerStub) ObserveRequest(_, route, code string, _ float64) {
	o.seen = append(o.seen, observed{route: route, code: code})
}

type testServer struct {
	handler   *Handler
	tokens    *auth.Authenticator
	proposals *memory.ProposalRepository
	files     *memory.FileStorage
	events    *memory.EventLog
	observer  *observerStub
	client    session.Session
	staff     session.Session
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens, err := auth.NewAuthenticator("test-secret", "ebridge-portal")
	require.NoError(t, err)

	propRepo := memory.NewProposalRepository()
	files := memory.NewFileStorage("https://files.example.test" + FilesPath)
	events := memory.NewEventLog()
	clock := func() time.Time { return testNow }
	quotes := quoteStub{"BBG000B9XRY4": 190.25}

	props := appproposals.NewService(propRepo, signature.RandomSigner{}, quotes,
		appproposals.WithPublisher(events), appproposals.WithClock(clock))
	docs := appdocuments.NewService(memory.NewDocumentRepository(), files,
		appdocuments.WithPublisher(events), appdocuments.WithClock(clock))
	profiles := appprofiles.NewService(memory.NewProfileRepository(),
		appprofiles.WithPublisher(events), appprofiles.WithClock(clock))
	observer := &observerStub{}

	client, err := session.New(uuid.New(), "marco.rossi@example.com", session.RoleClient)
	require.NoError(t, err)
	staff, err := session.New(uuid.New(), "advisor@example.com", session.RoleStaff)
	require.NoError(t, err)

	h := NewHandler(props, docs, profiles, tokens,
		WithQuotes(quotes),
		WithFiles(files),
		WithEvents(events),
		WithMetrics(observer, http.NotFoundHandler()),
		WithClock(clock),
	)
	return &testServer{
		handler:   h,
		tokens:    tokens,
		proposals: propRepo,
		files:     files,
		events:    events,
		observer:  observer,
		client:    client,
		staff:     staff,
	}
}

func (s *testServer) token(t *testing.T, sess session.Session) string {
	t.Helper()
	token, err := s.tokens.Issue(sess, time.Hour)
	require.NoError(t, err)
	return token
}

func (s *testServer) do(t *testing.T, sess *session.Session, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if sess != nil {
		req.Header.Set("Authorization", "Bearer "+s.token(t, *sess))
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) seed(t *testing.T, clientID uuid.UUID) domainproposals.Proposal {
	t.Helper()
	p, err := domainproposals.New(domainproposals.NewParams{
		ClientID:  clientID,
		Title:     "Bitcoin (BTC)",
		Action:    domainproposals.ActionBuy,
		Amount:    0.5,
		UnitPrice: 65400,
		RiskLevel: domainproposals.RiskMedium,
		Rationale: "Strong support levels after the recent correction.",
	}, testNow)
	require.NoError(t, err)
	require.NoError(t, s.proposals.Create(context.Background(), p))
	return *p
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestHealthIsPublic(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, nil, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestAuthentication(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, nil, http.MethodGet, "/api/v1/me", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	bad := httptest.NewRecorder()
	s.handler.ServeHTTP(bad, req)
	assert.Equal(t, http.StatusUnauthorized, bad.Code)

	rec = s.do(t, &s.client, http.MethodGet, "/api/v1/me", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decode[session.Session](t, rec)
	assert.Equal(t, s.client, me)
}

func TestAdminRequiresStaff(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, &s.client, http.MethodGet, "/api/v1/admin/proposals", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, &s.staff, http.MethodGet, "/api/v1/admin/proposals", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestClientProposalViews(t *testing.T) {
	s := newTestServer(t)
	open := s.seed(t, s.client.UserID)
	decided := s.seed(t, s.client.UserID)
	s.seed(t, uuid.New())

	rec := s.do(t, &s.client, http.MethodPost, "/api/v1/proposals/"+decided.ID.String()+"/reject", rejectPayload{Reason: "too risky"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	all := decode[[]domainproposals.Proposal](t, s.do(t, &s.client, http.MethodGet, "/api/v1/proposals", nil))
	assert.Len(t, all, 2)

	pending := decode[[]domainproposals.Proposal](t, s.do(t, &s.client, http.MethodGet, "/api/v1/proposals/pending", nil))
	require.Len(t, pending, 1)
	assert.Equal(t, open.ID, pending[0].ID)

	history := decode[[]domainproposals.Proposal](t, s.do(t, &s.client, http.MethodGet, "/api/v1/proposals/history", nil))
	require.Len(t, history, 1)
	assert.Equal(t, decided.ID, history[0].ID)
	assert.Equal(t, "too risky", history[0].RejectionReason)
}

func TestAcceptProposal(t *testing.T) {
	s := newTestServer(t)
	p := s.seed(t, s.client.UserID)
	path := "/api/v1/proposals/" + p.ID.String() + "/accept"

	rec := s.do(t, &s.client, http.MethodPost, path, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = s.do(t, &s.client, http.MethodPost, path, acceptPayload{Confirmed: false})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = s.do(t, &s.client, http.MethodPost, path, acceptPayload{Confirmed: true})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	accepted := decode[domainproposals.Proposal](t, rec)
	assert.Equal(t, domainproposals.StatusAccepted, accepted.Status)
	require.NotNil(t, accepted.Signature)
	assert.Regexp(t, `^0x[0-9a-f]{32}$`, *accepted.Signature)
	assert.NoError(t, accepted.Validate())

	rec = s.do(t, &s.client, http.MethodPost, "/api/v1/proposals/"+p.ID.String()+"/reject", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	conflict := decode[struct {
		Error    string                   `json:"error"`
		Proposal domainproposals.Proposal `json:"proposal"`
	}](t, rec)
	assert.Equal(t, domainproposals.StatusAccepted, conflict.Proposal.Status)
	assert.Equal(t, *accepted.Signature, *conflict.Proposal.Signature)
}

func TestDecisionErrors(t *testing.T) {
	s := newTestServer(t)
	foreign := s.seed(t, uuid.New())

	tests := []struct {
		name string
		path string
		body any
		want int
	}{
		{name: "malformed id", path: "/api/v1/proposals/nope/accept", body: acceptPayload{Confirmed: true}, want: http.StatusBadRequest},
		{name: "unknown proposal", path: "/api/v1/proposals/" + uuid.NewString() + "/accept", body: acceptPayload{Confirmed: true}, want: http.StatusNotFound},
		{name: "foreign proposal", path: "/api/v1/proposals/" + foreign.ID.String() + "/reject", body: rejectPayload{}, want: http.StatusNotFound},
		{name: "malformed body", path: "/api/v1/proposals/" + foreign.ID.String() + "/accept", body: "confirmed", want: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, &s.client, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestIssueProposal(t *testing.T) {
	s := newTestServer(t)
	clientID := uuid.New()

	rec := s.do(t, &s.staff, http.MethodPost, "/api/v1/admin/proposals", map[string]any{
		"client_id":      clientID.String(),
		"title":          "Apple Inc. (AAPL)",
		"action":         "buy",
		"amount":         10,
		"instrument_uid": "BBG000B9XRY4",
		"risk_level":     "low",
		"rationale":      "Services revenue keeps compounding.",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	p := decode[domainproposals.Proposal](t, rec)
	assert.Equal(t, clientID, p.ClientID)
	assert.Equal(t, domainproposals.ActionBuy, p.Action)
	assert.Equal(t, 1902.5, p.TotalValue)
	assert.Equal(t, domainproposals.StatusPending, p.Status)

	rec = s.do(t, &s.staff, http.MethodPost, "/api/v1/admin/proposals", map[string]any{
		"client_id":      clientID.String(),
		"title":          "Unknown",
		"action":         "BUY",
		"amount":         1,
		"instrument_uid": "missing",
		"risk_level":     "low",
	})
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	rec = s.do(t, &s.staff, http.MethodPost, "/api/v1/admin/proposals", map[string]any{
		"client_id":  clientID.String(),
		"title":      "Apple Inc. (AAPL)",
		"action":     "HOLD",
		"amount":     1,
		"unit_price": 10,
		"risk_level": "low",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminListAndSummary(t *testing.T) {
	s := newTestServer(t)
	accepted := s.seed(t, s.client.UserID)
	s.seed(t, s.client.UserID)
	s.seed(t, uuid.New())

	rec := s.do(t, &s.client, http.MethodPost, "/api/v1/proposals/"+accepted.ID.String()+"/accept", acceptPayload{Confirmed: true})
	require.Equal(t, http.StatusOK, rec.Code)

	pending := decode[[]domainproposals.Proposal](t, s.do(t, &s.staff, http.MethodGet, "/api/v1/admin/proposals?status=pending", nil))
	assert.Len(t, pending, 2)

	own := decode[[]domainproposals.Proposal](t, s.do(t, &s.staff, http.MethodGet, "/api/v1/admin/proposals?client_id="+s.client.UserID.String(), nil))
	assert.Len(t, own, 2)

	rec = s.do(t, &s.staff, http.MethodGet, "/api/v1/admin/proposals?status=open", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	summary := decode[domainproposals.Summary](t, s.do(t, &s.staff, http.MethodGet, "/api/v1/admin/proposals/summary", nil))
	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 1, summary.Accepted)
	assert.Equal(t, 2, summary.Pending)
	assert.Equal(t, 32700.0, summary.AcceptedTotalValue)
}

func multipartUpload(t *testing.T, docType, fileName, contentType string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	require.NoError(t, w.WriteField("document_type", docType))
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, fileName))
	header.Set("Content-Type", contentType)
	part, err := w.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func (s *testServer) upload(t *testing.T, docType, fileName, contentType string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	body, formType := multipartUpload(t, docType, fileName, contentType, content)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", body)
	req.Header.Set("Content-Type", formType)
	req.Header.Set("Authorization", "Bearer "+s.token(t, s.client))
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func TestDocumentUploadAndReview(t *testing.T) {
	s := newTestServer(t)

	rec := s.upload(t, "passport", "my passport.pdf", "application/pdf", []byte("%PDF-1.7"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	doc := decode[domaindocuments.Document](t, rec)
	assert.Equal(t, domaindocuments.StatusPending, doc.Status)
	assert.Equal(t, "my_passport.pdf", doc.FileName)
	stored, _, ok := s.files.Object(doc.ObjectKey)
	require.True(t, ok)
	assert.Equal(t, []byte("%PDF-1.7"), stored)

	checklist := decode[struct {
		Completed     int  `json:"completed"`
		RequiredTotal int  `json:"required_total"`
		Complete      bool `json:"complete"`
	}](t, s.do(t, &s.client, http.MethodGet, "/api/v1/documents/checklist", nil))
	assert.Equal(t, 0, checklist.Completed)
	assert.Equal(t, 3, checklist.RequiredTotal)
	assert.False(t, checklist.Complete)

	queue := decode[[]domaindocuments.Document](t, s.do(t, &s.staff, http.MethodGet, "/api/v1/admin/documents?status=pending", nil))
	require.Len(t, queue, 1)

	approve := true
	rec = s.do(t, &s.staff, http.MethodPost, "/api/v1/admin/documents/"+doc.ID.String()+"/review", reviewPayload{Approve: &approve, Notes: "clear scan"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, domaindocuments.StatusApproved, decode[domaindocuments.Document](t, rec).Status)

	rec = s.do(t, &s.staff, http.MethodPost, "/api/v1/admin/documents/"+doc.ID.String()+"/review", reviewPayload{Approve: &approve})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, &s.staff, http.MethodPost, "/api/v1/admin/documents/"+doc.ID.String()+"/review", map[string]any{"notes": "missing verdict"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	url := decode[map[string]string](t, s.do(t, &s.client, http.MethodGet, "/api/v1/documents/"+doc.ID.String()+"/url", nil))
	assert.Equal(t, "https://files.example.test"+FilesPath+"/"+doc.ObjectKey, url["url"])

	other, err := session.New(uuid.New(), "someone@example.com", session.RoleClient)
	require.NoError(t, err)
	rec = s.do(t, &other, http.MethodGet, "/api/v1/documents/"+doc.ID.String()+"/url", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDocumentUploadRejects(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name        string
		docType     string
		contentType string
		content     []byte
		want        int
	}{
		{name: "unknown type", docType: "selfie", contentType: "image/png", content: []byte("png"), want: http.StatusBadRequest},
		{name: "unsupported mime", docType: "passport", contentType: "text/plain", content: []byte("hello"), want: http.StatusUnsupportedMediaType},
		{name: "empty file", docType: "passport", contentType: "image/png", content: nil, want: http.StatusBadRequest},
		{name: "too large", docType: "passport", contentType: "image/png", content: make([]byte, appdocuments.DefaultMaxFileSize+1), want: http.StatusRequestEntityTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.upload(t, tt.docType, "scan.png", tt.contentType, tt.content)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestTrackEvent(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, &s.client, http.MethodPost, "/api/v1/events", eventPayload{Kind: "page_view", Properties: map[string]any{"page": "/dashboard"}})
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	published := s.events.Events()
	require.Len(t, published, 1)
	assert.Equal(t, s.client.UserID, published[0].UserID)
	assert.Equal(t, "/dashboard", published[0].Properties["page"])
	assert.True(t, published[0].OccurredAt.Equal(testNow))

	rec = s.do(t, &s.client, http.MethodPost, "/api/v1/events", eventPayload{Kind: "proposal.decided"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLastPrice(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, &s.staff, http.MethodGet, "/api/v1/admin/quotes/BBG000B9XRY4", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"instrument_uid":"BBG000B9XRY4","price":190.25}`, rec.Body.String())

	rec = s.do(t, &s.staff, http.MethodGet, "/api/v1/admin/quotes/unknown", nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestRequestMetricsUseRouteTemplate(t *testing.T) {
	s := newTestServer(t)
	p := s.seed(t, s.client.UserID)

	s.do(t, &s.client, http.MethodPost, "/api/v1/proposals/"+p.ID.String()+"/accept", acceptPayload{Confirmed: true})
	s.do(t, nil, http.MethodGet, "/nowhere", nil)

	require.Len(t, s.observer.seen, 2)
	assert.Equal(t, observed{route: "/api/v1/proposals/:id/accept", code: "200"}, s.observer.seen[0])
	assert.Equal(t, observed{route: "unmatched", code: "404"}, s.observer.seen[1])
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{err: fmt.Errorf("%w: timeout", appproposals.ErrFetch), want: http.StatusServiceUnavailable},
		{err: appproposals.ErrConfirmationRequired, want: http.StatusUnprocessableEntity},
		{err: appproposals.ErrDecisionInFlight, want: http.StatusConflict},
		{err: fmt.Errorf("%w: %w", appproposals.ErrPersistence, errors.New("conn reset")), want: http.StatusServiceUnavailable},
		{err: domainproposals.ErrInvalidAmount, want: http.StatusBadRequest},
		{err: auth.ErrInvalidToken, want: http.StatusUnauthorized},
		{err: errors.New("boom"), want: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, "cache:GET:/api/v1/admin/proposals/summary?", cacheKey(http.MethodGet, summaryPath, ""))
}

func TestBearerToken(t *testing.T) {
	token, ok := bearerToken("bearer abc.def")
	assert.True(t, ok)
	assert.Equal(t, "abc.def", token)

	_, ok = bearerToken("Basic abc")
	assert.False(t, ok)
	_, ok = bearerToken("Bearer ")
	assert.False(t, ok)
}

func TestServeFile(t *testing.T) {
	s := newTestServer(t)

	rec := s.upload(t, "address_proof", "bill.png", "image/png", []byte("\x89PNG-bill"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	doc := decode[domaindocuments.Document](t, rec)

	url := decode[map[string]string](t, s.do(t, &s.client, http.MethodGet, "/api/v1/documents/"+doc.ID.String()+"/url", nil))
	path := strings.TrimPrefix(url["url"], "https://files.example.test")
	require.True(t, strings.HasPrefix(path, FilesPath+"/"), path)

	rec = s.do(t, nil, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, []byte("\x89PNG-bill"), rec.Body.Bytes())

	rec = s.do(t, nil, http.MethodGet, FilesPath+"/documents/missing.pdf", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProfile(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, &s.client, http.MethodGet, "/api/v1/me/profile", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	blank := decode[domainprofiles.Profile](t, rec)
	assert.Equal(t, s.client.UserID, blank.UserID)
	assert.Empty(t, blank.Username)

	rec = s.do(t, &s.client, http.MethodPut, "/api/v1/me/profile", profilePayload{
		FullName: "Marco Rossi",
		Username: "marco.rossi",
		Website:  "https://rossi.example.com",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	saved := decode[domainprofiles.Profile](t, s.do(t, &s.client, http.MethodGet, "/api/v1/me/profile", nil))
	assert.Equal(t, "Marco Rossi", saved.FullName)
	assert.Equal(t, "marco.rossi", saved.Username)
	assert.Equal(t, "https://rossi.example.com", saved.Website)
	assert.True(t, saved.UpdatedAt.Equal(testNow))

	rec = s.do(t, &s.client, http.MethodPut, "/api/v1/me/profile", profilePayload{Website: "rossi.example.com"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, &s.staff, http.MethodPut, "/api/v1/me/profile", profilePayload{Username: "marco.rossi"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, nil, http.MethodGet, "/api/v1/me/profile", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
