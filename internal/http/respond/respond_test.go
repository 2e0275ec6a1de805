package respond

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJSONSetsHeadersAndStatus(t *testing.T) {
	rr := httptest.NewRecorder()
	JSON(rr, http.StatusCreated, map[string]int{"totalDoctors": 3})

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"totalDoctors":3}`, rr.Body.String())
}

func TestErrorHidesDetailInProduction(t *testing.T) {
	rr := httptest.NewRecorder()
	Internal(rr, errors.New("pq: connection refused"), false)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"message":"Internal server error"}`, rr.Body.String())

	rr = httptest.NewRecorder()
	Internal(rr, errors.New("pq: connection refused"), true)
	assert.JSONEq(t, `{"message":"Internal server error","error":"pq: connection refused"}`, rr.Body.String())
}
