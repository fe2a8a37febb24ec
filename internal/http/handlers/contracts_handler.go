package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
	"github.com/lampoon-ads/backend/internal/media"
	"github.com/lampoon-ads/backend/internal/middleware"
	"github.com/lampoon-ads/backend/internal/services"
	"go.uber.org/zap"
)

// ContractsHandler is the advertiser-facing advert surface. Every route
// sits behind the registration gate.
type ContractsHandler struct {
	adverts *services.AdvertService
	media   *media.Store
	log     *zap.Logger
}

func NewContractsHandler(adverts *services.AdvertService, store *media.Store, log *zap.Logger) *ContractsHandler {
	return &ContractsHandler{adverts: adverts, media: store, log: log}
}

func (h *ContractsHandler) List(c *fiber.Ctx) error {
	adverts, err := h.adverts.ListMine(c.Context(), middleware.GetProfile(c), queryInt(c, "limit", 20), queryInt(c, "offset", 0))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, adverts)
}

func (h *ContractsHandler) Get(c *fiber.Ctx) error {
	id, valid := paramID(c)
	if !valid {
		return badRequest(c, "invalid advert id")
	}
	advert, err := h.adverts.GetMine(c.Context(), middleware.GetProfile(c), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, advert)
}

func (h *ContractsHandler) Create(c *fiber.Ctx) error {
	in, err := h.advertInput(c, true)
	if err != nil {
		return badRequest(c, err.Error())
	}

	advert, err := h.adverts.CreateMine(c.Context(), middleware.GetUser(c), middleware.GetProfile(c), in)
	if err != nil {
		discardUpload(h.media, in.ImageFile, h.log)
		return respondError(c, h.log, err)
	}
	return created(c, advert)
}

func (h *ContractsHandler) Update(c *fiber.Ctx) error {
	id, valid := paramID(c)
	if !valid {
		return badRequest(c, "invalid advert id")
	}
	in, err := h.advertInput(c, false)
	if err != nil {
		return badRequest(c, err.Error())
	}

	advert, err := h.adverts.UpdateMine(c.Context(), middleware.GetUser(c), middleware.GetProfile(c), id, in)
	if err != nil {
		discardUpload(h.media, in.ImageFile, h.log)
		return respondError(c, h.log, err)
	}
	return ok(c, advert)
}

// advertInput reads the multipart form and stores image_file when sent.
func (h *ContractsHandler) advertInput(c *fiber.Ctx, requireImage bool) (services.AdvertInput, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return services.AdvertInput{}, errors.New("expected a multipart form")
	}

	issueIDs, err := parseUUIDs(form.Value["issue_ids"])
	if err != nil {
		return services.AdvertInput{}, fmt.Errorf("invalid issue id: %w", err)
	}
	in := services.AdvertInput{
		Size:        first(form.Value["size"]),
		Description: first(form.Value["description"]),
		IssueIDs:    issueIDs,
	}

	files := form.File["image_file"]
	if len(files) == 0 {
		if requireImage {
			return services.AdvertInput{}, errors.New("image_file is required")
		}
		return in, nil
	}

	in.ImageFile, err = saveUpload(c, h.media, files[0], h.log)
	return in, err
}

// saveUpload checks and writes an uploaded image, returning its stored path.
func saveUpload(c *fiber.Ctx, store *media.Store, fh *multipart.FileHeader, log *zap.Logger) (string, error) {
	if err := store.Check(fh.Filename, fh.Size); err != nil {
		return "", err
	}
	rel, abs, err := store.Place(fh.Filename)
	if err != nil {
		log.Error("failed to prepare media directory", zap.Error(err))
		return "", errors.New("could not store image")
	}
	if err := c.SaveFile(fh, abs); err != nil {
		log.Error("failed to save upload", zap.String("path", abs), zap.Error(err))
		discardUpload(store, rel, log)
		return "", errors.New("could not store image")
	}
	return rel, nil
}

// discardUpload removes an image saved for a request that then failed.
func discardUpload(store *media.Store, rel string, log *zap.Logger) {
	if rel == "" {
		return
	}
	if err := store.Remove(rel); err != nil {
		log.Warn("failed to remove orphaned upload", zap.String("path", rel), zap.Error(err))
	}
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
