package controller

import (
	"ai-tutoring-be/internal/pkg/serverutils"
	"ai-tutoring-be/internal/service"
	"ai-tutoring-be/pkg/document"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IDocumentController interface {
	RegisterRoutes(r fiber.Router, auth fiber.Handler)
	Validate(ctx *fiber.Ctx) error
	Upload(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	ListChunks(ctx *fiber.Ctx) error
}

type documentController struct {
	service service.IDocumentService
}

func NewDocumentController(service service.IDocumentService) IDocumentController {
	return &documentController{service: service}
}

func (c *documentController) RegisterRoutes(r fiber.Router, auth fiber.Handler) {
	h := r.Group("/document/v1")
	h.Use(auth)
	h.Post("/validate", c.Validate)
	h.Post("/upload", c.Upload)
	h.Get("/:id", c.Show)
	h.Get("/:id/chunks", c.ListChunks)
}

func formFile(ctx *fiber.Ctx) (document.File, error) {
	header, err := ctx.FormFile("file")
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "File is required")
	}
	return document.NewMultipartFile(header)
}

func (c *documentController) Validate(ctx *fiber.Ctx) error {
	file, err := formFile(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.Validate(ctx.UserContext(), file)
	if err != nil {
		return httpError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success validate document", res))
}

func (c *documentController) Upload(ctx *fiber.Ctx) error {
	file, err := formFile(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.Upload(ctx.UserContext(), userID(ctx), file)
	if err != nil {
		return httpError(err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success upload document", res))
}

func (c *documentController) Show(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid document id")
	}

	res, err := c.service.Show(ctx.UserContext(), userID(ctx), id)
	if err != nil {
		return httpError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success show document", res))
}

func (c *documentController) ListChunks(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid document id")
	}

	res, err := c.service.ListChunks(ctx.UserContext(), userID(ctx), id)
	if err != nil {
		return httpError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get document chunks", res))
}
