package controller

import (
	"ai-tutoring-be/internal/dto"
	"ai-tutoring-be/internal/pkg/serverutils"
	"ai-tutoring-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ISessionController interface {
	RegisterRoutes(r fiber.Router, auth fiber.Handler)
	Start(ctx *fiber.Ctx) error
	Resume(ctx *fiber.Ctx) error
	End(ctx *fiber.Ctx) error
	GetActive(ctx *fiber.Ctx) error
	UpdateContext(ctx *fiber.Ctx) error
	AddMessage(ctx *fiber.Ctx) error
	Snapshot(ctx *fiber.Ctx) error
	Restore(ctx *fiber.Ctx) error
	State(ctx *fiber.Ctx) error
}

type sessionController struct {
	service service.ISessionService
}

func NewSessionController(service service.ISessionService) ISessionController {
	return &sessionController{service: service}
}

func (c *sessionController) RegisterRoutes(r fiber.Router, auth fiber.Handler) {
	h := r.Group("/session/v1")
	h.Use(auth)
	h.Post("/start", c.Start)
	h.Post("/resume/:conversationId", c.Resume)
	h.Post("/:sessionId/end", c.End)
	h.Get("/active/:conversationId", c.GetActive)
	h.Patch("/context/:conversationId", c.UpdateContext)
	h.Post("/message/:conversationId", c.AddMessage)
	h.Get("/snapshot/:conversationId", c.Snapshot)
	h.Post("/snapshot/:conversationId/restore", c.Restore)
	h.Get("/state/:conversationId", c.State)
}

func parseBody(ctx *fiber.Ctx, req interface{}) error {
	if err := ctx.BodyParser(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	return serverutils.ValidateRequest(req)
}

func (c *sessionController) Start(ctx *fiber.Ctx) error {
	var req dto.StartSessionRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.Start(ctx.UserContext(), userID(ctx), clientMetadata(ctx), &req)
	if err != nil {
		return httpError(err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success start session", res))
}

func (c *sessionController) Resume(ctx *fiber.Ctx) error {
	res, err := c.service.Resume(ctx.UserContext(), userID(ctx), ctx.Params("conversationId"), clientMetadata(ctx))
	if err != nil {
		return httpError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success resume session", res))
}

func (c *sessionController) End(ctx *fiber.Ctx) error {
	res, err := c.service.End(ctx.UserContext(), userID(ctx), ctx.Params("sessionId"))
	if err != nil {
		return httpError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success end session", res))
}

func (c *sessionController) GetActive(ctx *fiber.Ctx) error {
	res, err := c.service.GetActive(ctx.UserContext(), userID(ctx), ctx.Params("conversationId"))
	if err != nil {
		return httpError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get active session", res))
}

func (c *sessionController) UpdateContext(ctx *fiber.Ctx) error {
	var req dto.UpdateContextRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.UpdateContext(ctx.UserContext(), userID(ctx), ctx.Params("conversationId"), &req)
	if err != nil {
		return httpError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success update context", res))
}

func (c *sessionController) AddMessage(ctx *fiber.Ctx) error {
	var req dto.AddMessageRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.AddMessage(ctx.UserContext(), userID(ctx), ctx.Params("conversationId"), &req)
	if err != nil {
		return httpError(err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success add message", res))
}

func (c *sessionController) Snapshot(ctx *fiber.Ctx) error {
	res, err := c.service.Snapshot(ctx.UserContext(), userID(ctx), ctx.Params("conversationId"))
	if err != nil {
		return httpError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success create snapshot", res))
}

func (c *sessionController) Restore(ctx *fiber.Ctx) error {
	var req dto.RestoreSnapshotRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.Restore(ctx.UserContext(), userID(ctx), ctx.Params("conversationId"), &req)
	if err != nil {
		return httpError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success restore snapshot", res))
}

func (c *sessionController) State(ctx *fiber.Ctx) error {
	res, err := c.service.State(ctx.UserContext(), userID(ctx), ctx.Params("conversationId"))
	if err != nil {
		return httpError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get conversation state", res))
}
