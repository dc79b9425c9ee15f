package handler

import (
	"io"
	"mime/multipart"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/lumina-gallery/lumina/gallery"
	"github.com/lumina-gallery/lumina/middleware"
	"go.uber.org/zap"
)

// Handler exposes the gallery service over HTTP. It owns no business logic:
// parse, delegate, translate.
type Handler struct {
	svc *gallery.Service
	log *zap.Logger
}

func New(svc *gallery.Service, log *zap.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// statusFor maps the gallery error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch gallery.KindOf(err) {
	case gallery.KindValidation:
		return fiber.StatusBadRequest
	case gallery.KindNotFound:
		return fiber.StatusNotFound
	case gallery.KindForbidden:
		return fiber.StatusForbidden
	case gallery.KindUpstream:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

func (h *Handler) fail(c *fiber.Ctx, err error) error {
	if gallery.KindOf(err) == gallery.KindInternal {
		h.log.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
	}
	return c.Status(statusFor(err)).JSON(fiber.Map{
		"status":  "error",
		"message": gallery.Reason(err),
		"data":    nil,
	})
}

func ok(c *fiber.Ctx, message string, data interface{}) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":  "success",
		"message": message,
		"data":    data,
	})
}

func readUpload(file *multipart.FileHeader) (gallery.IngestInput, error) {
	f, err := file.Open()
	if err != nil {
		return gallery.IngestInput{}, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return gallery.IngestInput{}, err
	}

	return gallery.IngestInput{
		Data:        data,
		Filename:    file.Filename,
		ContentType: file.Header.Get("Content-Type"),
	}, nil
}

func (h *Handler) UploadImage(c *fiber.Ctx) error {
	ownerID, err := middleware.OwnerID(c)
	if err != nil {
		return h.unauthorized(c)
	}

	file, err := c.FormFile("document")
	if err != nil {
		return h.fail(c, gallery.Validation("no file provided"))
	}

	input, err := readUpload(file)
	if err != nil {
		return h.fail(c, gallery.Validation("error opening the file"))
	}

	result, err := h.svc.Ingest(c.Context(), input, ownerID)
	if err != nil {
		return h.fail(c, err)
	}

	return ok(c, "Image uploaded successfully. Enrichment will begin shortly.", fiber.Map{
		"id":              result.Image.ID,
		"filename":        result.Image.Filename,
		"file_size":       result.Image.FileSize,
		"uploaded_at":     result.Image.CreatedAt,
		"original_url":    result.OriginalURL,
		"derivative_url":  result.DerivativeURL,
		"original_path":   result.Image.OriginalPath,
		"derivative_path": result.Image.DerivativePath,
	})
}

func (h *Handler) UploadImagesBulk(c *fiber.Ctx) error {
	ownerID, err := middleware.OwnerID(c)
	if err != nil {
		return h.unauthorized(c)
	}

	form, err := c.MultipartForm()
	if err != nil {
		return h.fail(c, gallery.Validation("invalid multipart form"))
	}

	files := form.File["documents"]
	if len(files) == 0 {
		return h.fail(c, gallery.Validation("no files provided"))
	}

	inputs := make([]gallery.IngestInput, 0, len(files))
	for _, file := range files {
		input, err := readUpload(file)
		if err != nil {
			// An unreadable part still gets a per-file outcome downstream.
			input = gallery.IngestInput{Filename: file.Filename}
		}
		inputs = append(inputs, input)
	}

	result := h.svc.BulkIngest(c.Context(), inputs, ownerID)
	return ok(c, "Bulk upload processed", result)
}

func (h *Handler) GetImages(c *fiber.Ctx) error {
	ownerID, err := middleware.OwnerID(c)
	if err != nil {
		return h.unauthorized(c)
	}

	params := gallery.ListParams{
		Limit:  c.QueryInt("limit", 20),
		Offset: c.QueryInt("offset", 0),
		Search: c.Query("search"),
		Tags:   splitCSV(c.Query("tags")),
		Colors: splitCSV(c.Query("colors")),
		SortBy: c.Query("sort_by", gallery.SortRecent),
	}

	result, err := h.svc.List(c.Context(), ownerID, params)
	if err != nil {
		return h.fail(c, err)
	}

	page := params.Offset/params.Limit + 1
	totalPages := (result.Total + params.Limit - 1) / params.Limit

	return ok(c, "Images fetched", fiber.Map{
		"images":      result.Items,
		"total":       result.Total,
		"count":       len(result.Items),
		"page":        page,
		"limit":       params.Limit,
		"offset":      params.Offset,
		"total_pages": totalPages,
	})
}

func (h *Handler) GetImage(c *fiber.Ctx) error {
	ownerID, err := middleware.OwnerID(c)
	if err != nil {
		return h.unauthorized(c)
	}

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return h.fail(c, gallery.Validation("invalid image id"))
	}

	item, err := h.svc.Get(c.Context(), ownerID, uint(id))
	if err != nil {
		return h.fail(c, err)
	}
	return ok(c, "Image found", item)
}

func (h *Handler) DeleteImage(c *fiber.Ctx) error {
	ownerID, err := middleware.OwnerID(c)
	if err != nil {
		return h.unauthorized(c)
	}

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return h.fail(c, gallery.Validation("invalid image id"))
	}

	if err := h.svc.Delete(c.Context(), ownerID, uint(id)); err != nil {
		return h.fail(c, err)
	}
	return ok(c, "Image deleted", nil)
}

func (h *Handler) UpdateImageMetadata(c *fiber.Ctx) error {
	ownerID, err := middleware.OwnerID(c)
	if err != nil {
		return h.unauthorized(c)
	}

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return h.fail(c, gallery.Validation("invalid image id"))
	}

	var body struct {
		Description *string  `json:"description"`
		Tags        []string `json:"tags"`
		Colors      []string `json:"colors"`
	}
	if err := c.BodyParser(&body); err != nil {
		return h.fail(c, gallery.Validation("invalid request body"))
	}

	item, err := h.svc.UpdateMetadata(c.Context(), ownerID, uint(id), gallery.MetadataPatch{
		Description: body.Description,
		Tags:        body.Tags,
		Colors:      body.Colors,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return ok(c, "Metadata updated", item)
}

func (h *Handler) GetSimilarImages(c *fiber.Ctx) error {
	ownerID, err := middleware.OwnerID(c)
	if err != nil {
		return h.unauthorized(c)
	}

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return h.fail(c, gallery.Validation("invalid image id"))
	}

	limit := c.QueryInt("limit", 6)

	similar, err := h.svc.FindSimilar(c.Context(), ownerID, uint(id), limit)
	if err != nil {
		return h.fail(c, err)
	}

	return ok(c, "Similar images found", fiber.Map{
		"similar": similar,
		"count":   len(similar),
	})
}

func (h *Handler) unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"status":  "error",
		"message": "Authentication required",
		"data":    nil,
	})
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
