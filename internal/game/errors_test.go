package game

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(invalidf("bad input")))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(conflictf("wrong state")))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(notFound("game", "g1")))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(internal("boom", errors.New("db down"))))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("plain")))

	// wrapped engine errors still map through errors.As
	wrapped := fmt.Errorf("handler: %w", notFound("player", "p1"))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(wrapped))
}

func TestUnexpectedErrorUnwraps(t *testing.T) {
	cause := errors.New("connection reset")
	err := internal("failed to load game", cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "failed to load game")
}
