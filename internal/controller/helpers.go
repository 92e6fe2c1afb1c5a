package controller

import (
	"errors"

	"ai-tutoring-be/internal/entity"
	"ai-tutoring-be/internal/service"
	"ai-tutoring-be/pkg/session"

	"github.com/gofiber/fiber/v2"
)

func userID(ctx *fiber.Ctx) string {
	id, _ := ctx.Locals("user_id").(string)
	return id
}

func clientMetadata(ctx *fiber.Ctx) entity.ClientMetadata {
	return entity.ClientMetadata{UserAgent: ctx.Get(fiber.HeaderUserAgent)}
}

// httpError maps service errors onto status codes; anything else becomes a 500.
func httpError(err error) error {
	switch {
	case errors.Is(err, service.ErrConversationNotFound),
		errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrContextNotFound),
		errors.Is(err, service.ErrStateNotFound),
		errors.Is(err, service.ErrDocumentNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrDocumentRejected):
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, session.ErrEmptySnapshot),
		errors.Is(err, session.ErrConversationRequired):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, session.ErrSessionConflict):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	}
	return err
}
