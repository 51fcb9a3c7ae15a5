package http

import (
	"errors"
	"net/http"
	"strings"

	appdocuments "ebridge-portal/internal/application/service/documents"
	domaindocuments "ebridge-portal/internal/domain/entity/documents"

	"github.com/gin-gonic/gin"
)

// multipartOverhead leaves room for the form fields around the file part.
const multipartOverhead = 1 << 20

type reviewPayload struct {
	Approve *bool  `json:"approve" binding:"required"`
	Notes   string `json:"notes"`
}

// listOwnDocuments returns the caller's uploads
// @Summary      List my documents
// @Tags         documents
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domaindocuments.Document
// @Failure      401  {object}  errorResponse
// @Router       /documents [get]
func (h *Handler) listOwnDocuments(c *gin.Context) {
	docs, err := h.documents.List(c.Request.Context(), sessionFrom(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, docs)
}

// documentChecklist returns the KYC checklist of the caller
// @Summary      KYC checklist
// @Description  Latest upload per required document type and completion counters
// @Tags         documents
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domaindocuments.Checklist
// @Failure      401  {object}  errorResponse
// @Router       /documents/checklist [get]
func (h *Handler) documentChecklist(c *gin.Context) {
	checklist, err := h.documents.Checklist(c.Request.Context(), sessionFrom(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"items":          checklist.Items,
		"completed":      checklist.Completed,
		"required_total": checklist.RequiredTotal,
		"complete":       checklist.Complete(),
	})
}

// uploadDocument stores a KYC file
// @Summary      Upload document
// @Description  Multipart upload of a PDF, JPEG or PNG file up to 10 MiB
// @Tags         documents
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        document_type  formData  string  true  "passport, address_proof, source_of_funds or tax_document"
// @Param        file           formData  file    true  "Document file"
// @Success      201            {object}  domaindocuments.Document
// @Failure      400            {object}  errorResponse
// @Failure      413            {object}  errorResponse
// @Failure      415            {object}  errorResponse
// @Failure      503            {object}  errorResponse
// @Router       /documents [post]
func (h *Handler) uploadDocument(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.uploadLimit+multipartOverhead)

	docType, err := domaindocuments.NewDocumentType(c.PostForm("document_type"))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(c, http.StatusRequestEntityTooLarge, appdocuments.ErrFileTooLarge)
			return
		}
		writeError(c, http.StatusBadRequest, err)
		return
	}
	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(c, http.StatusRequestEntityTooLarge, appdocuments.ErrFileTooLarge)
			return
		}
		writeError(c, http.StatusBadRequest, errMissingUploadKey)
		return
	}
	file, err := header.Open()
	if err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}
	defer file.Close()

	doc, err := h.documents.Upload(c.Request.Context(), sessionFrom(c), appdocuments.UploadRequest{
		Type:        docType,
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, doc)
}

// documentURL returns a time-limited download link
// @Summary      Document download URL
// @Tags         documents
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Document ID"
// @Success      200  {object}  map[string]string
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /documents/{id}/url [get]
func (h *Handler) documentURL(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}
	url, err := h.documents.DownloadURL(c.Request.Context(), sessionFrom(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

// listDocumentsForReview lists uploads across clients
// @Summary      Documents for review
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "pending, approved or rejected; empty lists all"
// @Success      200     {array}   domaindocuments.Document
// @Failure      400     {object}  errorResponse
// @Failure      403     {object}  errorResponse
// @Router       /admin/documents [get]
func (h *Handler) listDocumentsForReview(c *gin.Context) {
	var status domaindocuments.Status
	if raw := c.Query("status"); raw != "" {
		parsed, err := domaindocuments.NewStatus(raw)
		if err != nil {
			writeError(c, http.StatusBadRequest, err)
			return
		}
		status = parsed
	}
	docs, err := h.documents.ListForReview(c.Request.Context(), sessionFrom(c), status)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, docs)
}

// reviewDocument approves or rejects a pending upload
// @Summary      Review document
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string         true  "Document ID"
// @Param        payload  body      reviewPayload  true  "Verdict"
// @Success      200      {object}  domaindocuments.Document
// @Failure      400      {object}  errorResponse
// @Failure      404      {object}  errorResponse
// @Failure      409      {object}  errorResponse
// @Router       /admin/documents/{id}/review [post]
func (h *Handler) reviewDocument(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}
	var payload reviewPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}
	doc, err := h.documents.Review(c.Request.Context(), sessionFrom(c), id, *payload.Approve, payload.Notes)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// serveFile returns an object of the development file storage
func (h *Handler) serveFile(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	data, contentType, ok := h.files.Object(key)
	if !ok {
		writeError(c, http.StatusNotFound, errObjectNotFound)
		return
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Data(http.StatusOK, contentType, data)
}
