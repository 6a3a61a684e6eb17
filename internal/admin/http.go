package admin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"strconv"

	"github.com/abduss/docadmin/internal/file"
	"github.com/abduss/docadmin/internal/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// multipartOverhead leaves room for the form boundaries and the label next to the file.
const multipartOverhead = 1 << 20

type fileService interface {
	Create(ctx context.Context, in file.CreateInput) (*file.Record, error)
	Update(ctx context.Context, id int64, in file.UpdateInput) (*file.Record, error)
	Get(ctx context.Context, id int64) (*file.Record, error)
	List(ctx context.Context) ([]*file.Record, error)
	Delete(ctx context.Context, id int64) error
	Open(ctx context.Context, id int64) (*file.Record, io.ReadCloser, error)
}

// Handler serves the file admin screens as JSON.
type Handler struct {
	files         fileService
	renderer      *Renderer
	maxUploadSize int64
	log           *zap.Logger
}

// NewHandler wires the admin controller.
func NewHandler(files fileService, renderer *Renderer, maxUploadSize int64, log *zap.Logger) *Handler {
	return &Handler{
		files:         files,
		renderer:      renderer,
		maxUploadSize: maxUploadSize,
		log:           log.Named("admin"),
	}
}

// RegisterRoutes mounts the file admin endpoints under /files.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	files := router.Group("/files")
	{
		files.GET("/fields", h.fields)
		files.GET("", h.list)
		files.POST("", h.create)
		files.GET("/:id", h.detail)
		files.POST("/:id", h.update)
		files.PATCH("/:id", h.update)
		files.DELETE("/:id", h.delete)
		files.GET("/:id/document", h.document)
	}
}

type recordView struct {
	Record *file.Record    `json:"record"`
	Fields []RenderedField `json:"fields"`
}

type listView struct {
	Fields  []Descriptor `json:"fields"`
	Records []recordView `json:"records"`
}

func (h *Handler) fields(c *gin.Context) {
	page, err := ParsePageName(c.DefaultQuery("page", string(PageIndex)))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"page":   page,
		"fields": Describe(ConfigureFields(page)),
	})
}

func (h *Handler) list(c *gin.Context) {
	records, err := h.files.List(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}

	fields := ConfigureFields(PageIndex)
	view := listView{Fields: Describe(fields), Records: make([]recordView, 0, len(records))}
	for _, rec := range records {
		rendered, err := h.renderer.Render(c.Request.Context(), fields, rec)
		if err != nil {
			h.writeError(c, err)
			return
		}
		view.Records = append(view.Records, recordView{Record: rec, Fields: rendered})
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) detail(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	rec, err := h.files.Get(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.writeRecord(c, http.StatusOK, rec)
}

func (h *Handler) create(c *gin.Context) {
	if !h.parseForm(c) {
		return
	}

	var form createForm
	if err := c.ShouldBind(&form); err != nil {
		h.writeError(c, labelError(err))
		return
	}

	rec, err := h.files.Create(c.Request.Context(), file.CreateInput{
		Label:  form.Label,
		Upload: formUpload(c),
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	logger.FromContext(c, h.log).Info("file created", zap.Int64("id", rec.ID()), zap.String("file_path", rec.FilePath()))
	h.writeRecord(c, http.StatusCreated, rec)
}

func (h *Handler) update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if !h.parseForm(c) {
		return
	}

	var in file.UpdateInput
	if label, present := c.GetPostForm("label"); present {
		if err := validateLabel(label); err != nil {
			h.writeError(c, err)
			return
		}
		in.Label = &label
	}
	in.Upload = formUpload(c)

	rec, err := h.files.Update(c.Request.Context(), id, in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.writeRecord(c, http.StatusOK, rec)
}

func (h *Handler) delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.files.Delete(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	logger.FromContext(c, h.log).Info("file deleted", zap.Int64("id", id))
	c.Status(http.StatusNoContent)
}

func (h *Handler) document(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	rec, body, err := h.files.Open(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	defer body.Close()

	name := path.Base(rec.FilePath())
	contentType := mime.TypeByExtension(path.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	size := int64(-1)
	if fs := rec.FileSize(); fs != nil {
		size = *fs
	}

	c.DataFromReader(http.StatusOK, size, contentType, body, map[string]string{
		"Content-Disposition": fmt.Sprintf("inline; filename=%q", name),
	})
}

func (h *Handler) writeRecord(c *gin.Context, status int, rec *file.Record) {
	rendered, err := h.renderer.Render(c.Request.Context(), ConfigureFields(PageDetail), rec)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(status, recordView{Record: rec, Fields: rendered})
}

// parseForm bounds the request body and parses multipart or urlencoded forms.
func (h *Handler) parseForm(c *gin.Context) bool {
	if h.maxUploadSize > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadSize+multipartOverhead)
	}
	_, err := c.MultipartForm()
	if err == nil || errors.Is(err, http.ErrNotMultipart) {
		return true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		h.writeError(c, file.ErrFileTooLarge)
		return false
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid form"})
	return false
}

func formUpload(c *gin.Context) *file.Upload {
	fh, err := c.FormFile("file")
	if err != nil {
		return nil
	}
	return file.UploadFromHeader(fh)
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, file.ErrLabelRequired),
		errors.Is(err, file.ErrLabelTooLong),
		errors.Is(err, file.ErrFileRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, file.ErrFileTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
	case errors.Is(err, file.ErrFileNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, file.ErrFilePathConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		logger.FromContext(c, h.log).Error("admin request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
