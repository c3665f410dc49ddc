package apperrors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{NotFoundf("tenant %d", 7), http.StatusNotFound},
		{Forbiddenf("no access"), http.StatusForbidden},
		{Validationf("bad input"), http.StatusBadRequest},
		{ErrDuplicateAssignment, http.StatusConflict},
		{ErrUnsupportedMediaType, http.StatusUnsupportedMediaType},
		{Upstreamf("db down"), http.StatusInternalServerError},
		{errors.New("anything unknown"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, Status(tc.err), "error: %v", tc.err)
	}
}

func TestWrappersKeepSentinelAndContext(t *testing.T) {
	err := NotFoundf("question %d", 42)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "question 42")

	wrapped := Validationf("row %d: %v", 3, errors.New("missing domain"))
	assert.ErrorIs(t, wrapped, ErrValidation)
	assert.Contains(t, wrapped.Error(), "row 3")
}
