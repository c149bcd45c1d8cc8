package api

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/nguyentantai21042004/brief-flow/internal/models"
	"github.com/nguyentantai21042004/brief-flow/internal/processor"
	"github.com/nguyentantai21042004/brief-flow/internal/summarizer"
	"github.com/nguyentantai21042004/brief-flow/pkg/apperr"
)

type APIError struct {
	Code    apperr.Code `json:"code"`
	Message string      `json:"message"`
}

type BatchHandler struct {
	proc       processor.Processor
	sourceRoot string
}

// NewBatchHandler serves batch requests. Local sources must live under sourceRoot.
func NewBatchHandler(proc processor.Processor, sourceRoot string) *BatchHandler {
	return &BatchHandler{proc: proc, sourceRoot: sourceRoot}
}

// Create runs a batch to completion and returns its result.
func (h *BatchHandler) Create(c *gin.Context) {
	var req models.BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperr.E(apperr.CodeInvalidArgument, "BatchHandler.Create", "invalid request body", err))
		return
	}
	if err := h.validateRequest(req); err != nil {
		writeError(c, err)
		return
	}

	batch := h.proc.Run(c.Request.Context(), req)
	c.JSON(http.StatusOK, batch)
}

// Styles lists the content styles a batch may request.
func (h *BatchHandler) Styles(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"styles": summarizer.StyleNames()})
}

func (h *BatchHandler) validateRequest(req models.BatchRequest) error {
	const op = "BatchHandler.Create"

	if err := req.Validate(); err != nil {
		return err
	}
	if req.ContentStyle != "" && !knownStyle(req.ContentStyle) {
		return apperr.E(apperr.CodeInvalidArgument, op,
			fmt.Sprintf("unknown content_style %q (one of %s)", req.ContentStyle, strings.Join(summarizer.StyleNames(), ", ")), nil)
	}
	for i, item := range req.Items {
		if item.ResolveKind() == models.SourceURL {
			continue
		}
		if !withinRoot(h.sourceRoot, item.Source) {
			return apperr.E(apperr.CodeInvalidArgument, op, fmt.Sprintf("items[%d].source must be under the source root", i), nil)
		}
	}
	return nil
}

// withinRoot reports whether path resolves inside root. An empty root allows nothing.
func withinRoot(root, path string) bool {
	if root == "" {
		return false
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return false
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(absRoot, absPath)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}

func knownStyle(style string) bool {
	for _, s := range summarizer.StyleNames() {
		if s == style {
			return true
		}
	}
	return false
}

func writeError(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	_ = c.Error(err)

	var ae *apperr.AppError
	if errors.As(err, &ae) {
		c.JSON(status, APIError{Code: ae.Code, Message: ae.Message})
		return
	}

	c.JSON(status, APIError{Code: apperr.CodeInternal, Message: http.StatusText(status)})
}
