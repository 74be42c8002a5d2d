package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", NewValidationError("bad"), fiber.StatusBadRequest},
		{"conflict", NewConflictError("taken"), fiber.StatusBadRequest},
		{"unauthorized", NewUnauthorizedError("login"), fiber.StatusUnauthorized},
		{"forbidden", NewForbiddenError("nope"), fiber.StatusForbidden},
		{"not found", NewNotFoundError("Post", 1), fiber.StatusNotFound},
		{"internal", NewInternalError(errors.New("db down")), fiber.StatusInternalServerError},
		{"wrapped", fmt.Errorf("outer: %w", NewForbiddenError("nope")), fiber.StatusForbidden},
		{"plain error", errors.New("boom"), fiber.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.err))
		})
	}
}

func TestIsCode(t *testing.T) {
	t.Parallel()
	assert.True(t, IsCode(NewNotFoundError("User", "alice"), CodeNotFound))
	assert.False(t, IsCode(NewNotFoundError("User", "alice"), CodeConflict))
	assert.False(t, IsCode(errors.New("plain"), CodeNotFound))
}

func TestNewNotFoundError_Message(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "User alice not found", NewNotFoundError("User", "alice").Error())
	assert.Equal(t, "Post 7 not found", NewNotFoundError("Post", 7).Error())
}

func TestRespond_HidesInternalDetails(t *testing.T) {
	app := fiber.New()
	app.Get("/internal", func(c *fiber.Ctx) error {
		return Respond(c, NewInternalError(errors.New("pq: connection refused")))
	})
	app.Get("/plain", func(c *fiber.Ctx) error {
		return Respond(c, errors.New("raw failure"))
	})
	app.Get("/forbidden", func(c *fiber.Ctx) error {
		return Respond(c, NewForbiddenError("You can only delete your own posts"))
	})

	tests := []struct {
		path       string
		wantStatus int
		wantBody   ErrorResponse
	}{
		{"/internal", http.StatusInternalServerError, ErrorResponse{Error: "Internal server error", Code: CodeInternal}},
		{"/plain", http.StatusInternalServerError, ErrorResponse{Error: "Internal server error", Code: CodeInternal}},
		{"/forbidden", http.StatusForbidden, ErrorResponse{Error: "You can only delete your own posts", Code: CodeForbidden}},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, tt.path, nil))
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			var body ErrorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.wantBody, body)
		})
	}
}
