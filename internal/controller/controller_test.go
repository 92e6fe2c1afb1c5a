package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"strings"
	"testing"

	"ai-tutoring-be/internal/dto"
	"ai-tutoring-be/internal/entity"
	"ai-tutoring-be/internal/pkg/serverutils"
	"ai-tutoring-be/internal/service"
	"ai-tutoring-be/pkg/document"
	"ai-tutoring-be/pkg/session"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeAuth(ctx *fiber.Ctx) error {
	ctx.Locals("user_id", "user-1")
	return ctx.Next()
}

func newApp(register func(api fiber.Router)) *fiber.App {
	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	register(app.Group("/api"))
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string) (int, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Mozilla/5.0 (iPad; CPU OS 17_0 like Mac OS X)")

	resp, err := app.Test(req)
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

type stubSessionService struct {
	service.ISessionService

	gotUserId string
	gotMeta   entity.ClientMetadata
	gotStart  *dto.StartSessionRequest
	endErr    error
}

func (s *stubSessionService) Start(ctx context.Context, userId string, meta entity.ClientMetadata, req *dto.StartSessionRequest) (*dto.SessionResponse, error) {
	s.gotUserId, s.gotMeta, s.gotStart = userId, meta, req
	return &dto.SessionResponse{Id: "s-1", ConversationId: "c-1", IsActive: true}, nil
}

func (s *stubSessionService) End(ctx context.Context, userId string, sessionId string) (*dto.SessionResponse, error) {
	if s.endErr != nil {
		return nil, s.endErr
	}
	return &dto.SessionResponse{Id: sessionId}, nil
}

func (s *stubSessionService) AddMessage(ctx context.Context, userId string, conversationId string, req *dto.AddMessageRequest) (*dto.AddMessageResponse, error) {
	return &dto.AddMessageResponse{Message: dto.MessageResponse{Id: "m-1", Role: req.Role, Content: req.Content}}, nil
}

func TestSessionController_Start(t *testing.T) {
	stub := &stubSessionService{}
	app := newApp(func(api fiber.Router) { NewSessionController(stub).RegisterRoutes(api, fakeAuth) })

	status, body := doJSON(t, app, "POST", "/api/session/v1/start", `{"persona_type":"math_tutor"}`)

	assert.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, "Success start session", body["message"])
	assert.Equal(t, "user-1", stub.gotUserId)
	assert.Contains(t, stub.gotMeta.UserAgent, "iPad")
	assert.Equal(t, "math_tutor", stub.gotStart.PersonaType)
}

func TestSessionController_StartValidation(t *testing.T) {
	app := newApp(func(api fiber.Router) { NewSessionController(&stubSessionService{}).RegisterRoutes(api, fakeAuth) })

	status, body := doJSON(t, app, "POST", "/api/session/v1/start", `{"conversation_id":"nope"}`)

	assert.Equal(t, fiber.StatusBadRequest, status)
	fields := body["data"].(map[string]interface{})
	assert.Contains(t, fields, "PersonaType")
	assert.Contains(t, fields, "ConversationId")
}

func TestSessionController_EndMapsNotFound(t *testing.T) {
	stub := &stubSessionService{endErr: service.ErrSessionNotFound}
	app := newApp(func(api fiber.Router) { NewSessionController(stub).RegisterRoutes(api, fakeAuth) })

	status, body := doJSON(t, app, "POST", "/api/session/v1/s-9/end", "")

	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "session not found", body["message"])
}

func TestSessionController_AddMessageRejectsUnknownRole(t *testing.T) {
	app := newApp(func(api fiber.Router) { NewSessionController(&stubSessionService{}).RegisterRoutes(api, fakeAuth) })

	status, _ := doJSON(t, app, "POST", "/api/session/v1/message/c-1", `{"role":"robot","content":"hi"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, body := doJSON(t, app, "POST", "/api/session/v1/message/c-1", `{"role":"user","content":"hi"}`)
	assert.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, "hi", body["data"].(map[string]interface{})["message"].(map[string]interface{})["content"])
}

type stubConversationService struct {
	service.IConversationService
}

func (stubConversationService) Show(ctx context.Context, userId string, id string) (*dto.ShowConversationResponse, error) {
	if id != "c-1" {
		return nil, fmt.Errorf("lookup: %w", service.ErrConversationNotFound)
	}
	return &dto.ShowConversationResponse{ConversationResponse: dto.ConversationResponse{Id: id}}, nil
}

func TestConversationController_Show(t *testing.T) {
	app := newApp(func(api fiber.Router) { NewConversationController(stubConversationService{}).RegisterRoutes(api, fakeAuth) })

	status, _ := doJSON(t, app, "GET", "/api/conversation/v1/c-1", "")
	assert.Equal(t, fiber.StatusOK, status)

	status, _ = doJSON(t, app, "GET", "/api/conversation/v1/c-2", "")
	assert.Equal(t, fiber.StatusNotFound, status)
}

type stubDocumentService struct {
	service.IDocumentService
	uploaded document.File
}

func (s *stubDocumentService) Upload(ctx context.Context, userId string, file document.File) (*dto.UploadDocumentResponse, error) {
	s.uploaded = file
	if file.Size() == 0 {
		return nil, fmt.Errorf("%w: File is empty", service.ErrDocumentRejected)
	}
	return &dto.UploadDocumentResponse{Id: uuid.New(), FileName: file.Name()}, nil
}

func multipartUpload(t *testing.T, name string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	part, err := w.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf, w.FormDataContentType()
}

func TestDocumentController_Upload(t *testing.T) {
	stub := &stubDocumentService{}
	app := newApp(func(api fiber.Router) { NewDocumentController(stub).RegisterRoutes(api, fakeAuth) })

	body, contentType := multipartUpload(t, "notes.txt", []byte("Fractions are parts of a whole."))
	req := httptest.NewRequest("POST", "/api/document/v1/upload", body)
	req.Header.Set("Content-Type", contentType)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	require.NotNil(t, stub.uploaded)
	assert.Equal(t, "notes.txt", stub.uploaded.Name())

	empty, contentType := multipartUpload(t, "empty.txt", nil)
	req = httptest.NewRequest("POST", "/api/document/v1/upload", empty)
	req.Header.Set("Content-Type", contentType)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
}

func TestDocumentController_MissingFileAndBadID(t *testing.T) {
	app := newApp(func(api fiber.Router) { NewDocumentController(&stubDocumentService{}).RegisterRoutes(api, fakeAuth) })

	status, body := doJSON(t, app, "POST", "/api/document/v1/validate", "")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "File is required", body["message"])

	status, _ = doJSON(t, app, "GET", "/api/document/v1/not-a-uuid", "")
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestHttpError(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{fmt.Errorf("show: %w", service.ErrConversationNotFound), fiber.StatusNotFound},
		{service.ErrDocumentRejected, fiber.StatusUnprocessableEntity},
		{session.ErrEmptySnapshot, fiber.StatusBadRequest},
		{session.ErrSessionConflict, fiber.StatusConflict},
	}

	for _, tt := range tests {
		var fiberErr *fiber.Error
		require.ErrorAs(t, httpError(tt.err), &fiberErr, tt.err.Error())
		assert.Equal(t, tt.code, fiberErr.Code, tt.err.Error())
	}

	plain := fmt.Errorf("boom")
	assert.Equal(t, plain, httpError(plain))
}
