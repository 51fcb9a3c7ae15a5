// @title           eBridge Client Portal API
// @version         1.0
// @description     Investment proposals, KYC documents and activity tracking for eBridge clients and advisors
// @termsOfService  http://swagger.io/terms/

// @contact.name   API Support
// @contact.url    http://www.swagger.io/support
// @contact.email  support@swagger.io

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization

package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	appinterfaces "ebridge-portal/internal/application/interfaces"
	appdocuments "ebridge-portal/internal/application/service/documents"
	appprofiles "ebridge-portal/internal/application/service/profiles"
	appproposals "ebridge-portal/internal/application/service/proposals"
	domaindocuments "ebridge-portal/internal/domain/entity/documents"
	domainprofiles "ebridge-portal/internal/domain/entity/profiles"
	domainproposals "ebridge-portal/internal/domain/entity/proposals"
	"ebridge-portal/internal/domain/entity/session"
	interfaces "ebridge-portal/internal/domain/interfaces"
	"ebridge-portal/internal/infrastructure/auth"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const (
	clientBasePath = "/api/v1"
	adminBasePath  = "/api/v1/admin"

	summaryPath = adminBasePath + "/proposals/summary"

	// FilesPath serves objects of a development file storage passed with WithFiles.
	FilesPath = "/files"
)

var (
	errMissingID        = errors.New("invalid id")
	errQuotesDisabled   = errors.New("quote provider is not configured")
	errEventsDisabled   = errors.New("activity publishing is not configured")
	errStaffOnly        = errors.New("staff role required")
	errMissingUploadKey = errors.New("multipart field \"file\" is required")
	errObjectNotFound   = errors.New("object not found")
)

// TokenParser turns a bearer token into the request session.
type TokenParser interface {
	Parse(token string) (session.Session, error)
}

// ObjectSource exposes stored document bytes for development file storage.
type ObjectSource interface {
	Object(key string) (data []byte, contentType string, ok bool)
}

// RequestObserver records per-route request metrics.
type RequestObserver interface {
	ObserveRequest(method, route, code string, seconds float64)
}

type Handler struct {
	router    *gin.Engine
	proposals *appproposals.Service
	documents *appdocuments.Service
	profiles  *appprofiles.Service
	tokens    TokenParser
	files     ObjectSource
	quotes    interfaces.QuoteProvider
	events    interfaces.EventPublisher
	observer  RequestObserver
	metrics   http.Handler
	logger    *logrus.Logger
	cache     *redis.Client
	cacheTTL  time.Duration
	now       func() time.Time

	uploadLimit int64
}

var _ appinterfaces.HTTPHandler = (*Handler)(nil)

type Option func(*Handler)

func WithQuotes(quotes interfaces.QuoteProvider) Option {
	return func(h *Handler) { h.quotes = quotes }
}

// WithFiles serves the objects of files under FilesPath without authentication, the way
// presigned URLs of the object store are readable by anyone holding them.
func WithFiles(files ObjectSource) Option {
	return func(h *Handler) { h.files = files }
}

func WithEvents(pub interfaces.EventPublisher) Option {
	return func(h *Handler) { h.events = pub }
}

// WithMetrics records request metrics through observer and serves the registry on /metrics.
func WithMetrics(observer RequestObserver, gatherer http.Handler) Option {
	return func(h *Handler) {
		h.observer = observer
		h.metrics = gatherer
	}
}

func WithLogger(logger *logrus.Logger) Option {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

func WithCache(cache *redis.Client, ttl time.Duration) Option {
	return func(h *Handler) {
		h.cache = cache
		h.cacheTTL = ttl
	}
}

// WithUploadLimit caps the document upload size; it should match the documents service limit.
func WithUploadLimit(n int64) Option {
	return func(h *Handler) {
		if n > 0 {
			h.uploadLimit = n
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(h *Handler) { h.now = now }
}

func NewHandler(props *appproposals.Service, docs *appdocuments.Service, profiles *appprofiles.Service, tokens TokenParser, opts ...Option) *Handler {
	router := gin.New()

	h := &Handler{
		router:      router,
		proposals:   props,
		documents:   docs,
		profiles:    profiles,
		tokens:      tokens,
		metrics:     promhttp.Handler(),
		logger:      logrus.StandardLogger(),
		now:         time.Now,
		uploadLimit: appdocuments.DefaultMaxFileSize,
	}
	for _, opt := range opts {
		opt(h)
	}
	router.MaxMultipartMemory = h.uploadLimit
	router.Use(gin.Recovery(), h.requestLogger())
	h.registerRoutes()
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes() {
	h.router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	h.router.GET("/health", h.health)
	h.router.GET("/metrics", gin.WrapH(h.metrics))
	if h.files != nil {
		h.router.GET(FilesPath+"/*key", h.serveFile)
	}

	client := h.router.Group(clientBasePath)
	client.Use(h.authenticate())
	{
		client.GET("/me", h.me)
		client.GET("/me/profile", h.getProfile)
		client.PUT("/me/profile", h.updateProfile)

		client.GET("/proposals", h.listOwnProposals)
		client.GET("/proposals/pending", h.listPendingProposals)
		client.GET("/proposals/history", h.listProposalHistory)
		client.POST("/proposals/:id/accept", h.acceptProposal)
		client.POST("/proposals/:id/reject", h.rejectProposal)

		client.GET("/documents", h.listOwnDocuments)
		client.GET("/documents/checklist", h.documentChecklist)
		client.POST("/documents", h.uploadDocument)
		client.GET("/documents/:id/url", h.documentURL)

		client.POST("/events", h.trackEvent)
	}

	admin := h.router.Group(adminBasePath)
	admin.Use(h.authenticate(), h.requireStaff())
	{
		admin.POST("/proposals", h.issueProposal)
		admin.GET("/proposals", h.listProposals)

		summary := admin.Group("/proposals/summary")
		if h.cache != nil {
			summary.Use(h.cacheMiddleware())
		}
		summary.GET("", h.proposalSummary)

		admin.GET("/documents", h.listDocumentsForReview)
		admin.POST("/documents/:id/review", h.reviewDocument)

		admin.GET("/quotes/:instrument_uid", h.lastPrice)
	}
}

// health reports liveness
// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// me returns the authenticated session
// @Summary      Current user
// @Tags         session
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  session.Session
// @Failure      401  {object}  errorResponse
// @Router       /me [get]
func (h *Handler) me(c *gin.Context) {
	c.JSON(http.StatusOK, sessionFrom(c))
}

// statusFor maps service and domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, auth.ErrMissingToken), errors.Is(err, auth.ErrInvalidToken), errors.Is(err, session.ErrAnonymous):
		return http.StatusUnauthorized
	case errors.Is(err, appproposals.ErrForbidden), errors.Is(err, appdocuments.ErrForbidden), errors.Is(err, errStaffOnly):
		return http.StatusForbidden
	case errors.Is(err, domainproposals.ErrNotFound), errors.Is(err, domaindocuments.ErrNotFound), errors.Is(err, errObjectNotFound):
		return http.StatusNotFound
	case errors.Is(err, appproposals.ErrConfirmationRequired):
		return http.StatusUnprocessableEntity
	case errors.Is(err, appproposals.ErrAlreadyDecided),
		errors.Is(err, appproposals.ErrDecisionInFlight),
		errors.Is(err, domaindocuments.ErrAlreadyReviewed),
		errors.Is(err, domainprofiles.ErrUsernameTaken):
		return http.StatusConflict
	case errors.Is(err, appdocuments.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, appdocuments.ErrUnsupportedType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, appproposals.ErrQuote):
		return http.StatusBadGateway
	case errors.Is(err, appproposals.ErrFetch),
		errors.Is(err, appproposals.ErrPersistence),
		errors.Is(err, appdocuments.ErrStorage),
		errors.Is(err, appdocuments.ErrPersistence),
		errors.Is(err, appprofiles.ErrFetch),
		errors.Is(err, appprofiles.ErrPersistence),
		errors.Is(err, errQuotesDisabled),
		errors.Is(err, errEventsDisabled):
		return http.StatusServiceUnavailable
	case errors.Is(err, domainproposals.ErrMissingClient),
		errors.Is(err, domainproposals.ErrMissingTitle),
		errors.Is(err, domainproposals.ErrInvalidAmount),
		errors.Is(err, domainproposals.ErrInvalidUnitPrice),
		errors.Is(err, domaindocuments.ErrMissingFile),
		errors.Is(err, appdocuments.ErrEmptyFile),
		errors.Is(err, domainprofiles.ErrFullNameTooLong),
		errors.Is(err, domainprofiles.ErrInvalidUsername),
		errors.Is(err, domainprofiles.ErrInvalidURL):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.WithError(err).WithField("route", c.FullPath()).Error("request failed")
	}
	writeError(c, status, err)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(c *gin.Context, status int, err error) {
	if err == nil {
		status = http.StatusInternalServerError
		err = errors.New("unknown error")
	}
	c.JSON(status, errorResponse{Error: err.Error()})
}

// cacheMiddleware caches GET responses in Redis.
func (h *Handler) cacheMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.cache == nil || c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		key := cacheKey(c.Request.Method, c.FullPath(), c.Request.URL.RawQuery)
		ctx := c.Request.Context()

		if cached, err := h.cache.Get(ctx, key).Result(); err == nil {
			c.Header("X-Cache", "HIT")
			c.Data(http.StatusOK, "application/json", []byte(cached))
			c.Abort()
			return
		}

		recorder := &responseRecorder{
			ResponseWriter: c.Writer,
			status:         http.StatusOK,
			body:           &bytes.Buffer{},
		}
		c.Writer = recorder

		c.Next()

		if recorder.status >= 200 && recorder.status < 300 && recorder.body.Len() > 0 {
			if err := h.cache.Set(ctx, key, recorder.body.Bytes(), h.cacheTTL).Err(); err != nil {
				h.logger.WithError(err).WithField("key", key).Warn("cache write failed")
			}
		}
	}
}

// invalidateSummary drops the cached admin summary after a proposal changes.
func (h *Handler) invalidateSummary(ctx context.Context) {
	if h.cache == nil {
		return
	}
	key := cacheKey(http.MethodGet, summaryPath, "")
	if err := h.cache.Del(ctx, key).Err(); err != nil {
		h.logger.WithError(err).WithField("key", key).Warn("cache invalidation failed")
	}
}

type responseRecorder struct {
	gin.ResponseWriter
	body   *bytes.Buffer
	status int
}

func (r *responseRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseRecorder) Write(data []byte) (int, error) {
	if len(data) > 0 {
		r.body.Write(data)
	}
	return r.ResponseWriter.Write(data)
}

func cacheKey(method, path, rawQuery string) string {
	return fmt.Sprintf("cache:%s:%s?%s", method, path, rawQuery)
}
