package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/lampoon-ads/backend/internal/http/dto"
	"github.com/lampoon-ads/backend/internal/media"
	"github.com/lampoon-ads/backend/internal/middleware"
	"github.com/lampoon-ads/backend/internal/models"
	"github.com/lampoon-ads/backend/internal/repositories"
	"github.com/lampoon-ads/backend/internal/services"
	"go.uber.org/zap"
)

type AdvertHandler struct {
	adverts *services.AdvertService
	media   *media.Store
	log     *zap.Logger
}

func NewAdvertHandler(adverts *services.AdvertService, store *media.Store, log *zap.Logger) *AdvertHandler {
	return &AdvertHandler{adverts: adverts, media: store, log: log}
}

func (h *AdvertHandler) List(c *fiber.Ctx) error {
	advertiser, err := queryUUID(c, "advertiser")
	if err != nil {
		return badRequest(c, "invalid advertiser id")
	}
	issue, err := queryUUID(c, "issue")
	if err != nil {
		return badRequest(c, "invalid issue id")
	}

	adverts, err := h.adverts.List(c.Context(), repositories.AdvertFilter{
		AdvertiserID: advertiser,
		IssueID:      issue,
		Paid:         queryBool(c, "paid"),
		Size:         queryString(c, "size"),
		Query:        c.Query("q"),
		Limit:        queryInt(c, "limit", 20),
		Offset:       queryInt(c, "offset", 0),
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, adverts)
}

func (h *AdvertHandler) Get(c *fiber.Ctx) error {
	id, valid := paramID(c)
	if !valid {
		return badRequest(c, "invalid advert id")
	}
	advert, err := h.adverts.Get(c.Context(), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, advert)
}

func (h *AdvertHandler) Create(c *fiber.Ctx) error {
	a, err := advertFromRequest(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	if err := h.adverts.Create(c.Context(), middleware.GetActor(c), a); err != nil {
		return respondError(c, h.log, err)
	}
	return created(c, a)
}

func (h *AdvertHandler) Update(c *fiber.Ctx) error {
	id, valid := paramID(c)
	if !valid {
		return badRequest(c, "invalid advert id")
	}
	a, err := advertFromRequest(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	a.ID = id

	if err := h.adverts.Update(c.Context(), middleware.GetActor(c), a); err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, a)
}

func (h *AdvertHandler) Delete(c *fiber.Ctx) error {
	id, valid := paramID(c)
	if !valid {
		return badRequest(c, "invalid advert id")
	}
	if err := h.adverts.Delete(c.Context(), middleware.GetActor(c), id); err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, nil)
}

// Upload stores an image and returns the path to put in image_file.
func (h *AdvertHandler) Upload(c *fiber.Ctx) error {
	fh, err := c.FormFile("image_file")
	if err != nil {
		return badRequest(c, "image_file is required")
	}
	rel, err := saveUpload(c, h.media, fh, h.log)
	if err != nil {
		return badRequest(c, err.Error())
	}
	return created(c, fiber.Map{"image_file": rel})
}

func advertFromRequest(c *fiber.Ctx) (*models.Advert, error) {
	var req dto.AdvertRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, errInvalidBody
	}
	advertiserID, err := uuid.Parse(strings.TrimSpace(req.AdvertiserID))
	if err != nil {
		return nil, errors.New("invalid advertiser id")
	}
	issueIDs, err := parseUUIDs(req.IssueIDs)
	if err != nil {
		return nil, errors.New("invalid issue id")
	}
	return &models.Advert{
		AdvertiserID: advertiserID,
		Size:         req.Size,
		Description:  req.Description,
		ImageFile:    req.ImageFile,
		IssueIDs:     issueIDs,
		FinalPrice:   req.FinalPrice,
		Paid:         req.Paid,
		Notes:        req.Notes,
	}, nil
}
