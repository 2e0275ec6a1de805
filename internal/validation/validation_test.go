package validation

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type shiftRequest struct {
	Name      string  `json:"name" validate:"required,min=2"`
	Email     string  `json:"email" validate:"required,email"`
	Gender    string  `json:"gender" validate:"required,oneof=Male Female Other"`
	StartTime string  `json:"startTime" validate:"required,hhmm"`
	Rate      float64 `json:"rate" validate:"gt=0"`
	Note      string  `json:"note,omitempty" validate:"omitempty,min=5"`
}

func (r *shiftRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
}

func (r *shiftRequest) ValidationMessages() map[string]string {
	return map[string]string{"name.min": "Full name too short"}
}

func TestStructValid(t *testing.T) {
	v := New()
	req := &shiftRequest{Name: "  Ali ", Email: "ali@example.com", Gender: "Male", StartTime: "09:00", Rate: 10}
	require.NoError(t, v.Struct(req))
	assert.Equal(t, "Ali", req.Name)
}

func TestStructFieldMessages(t *testing.T) {
	v := New()
	err := v.Struct(&shiftRequest{Name: " A ", Email: "nope", Gender: "Robot", StartTime: "9am", Rate: -1, Note: "hi"})
	require.Error(t, err)

	fields, ok := err.(FieldErrors)
	require.True(t, ok)
	assert.Equal(t, "Full name too short", fields["name"])
	assert.Equal(t, "Invalid email", fields["email"])
	assert.Equal(t, "Invalid enum value. Expected Male | Female | Other", fields["gender"])
	assert.Equal(t, "startTime must be in HH:MM format", fields["startTime"])
	assert.Equal(t, "rate must be a positive number", fields["rate"])
	assert.Equal(t, "note must contain at least 5 character(s)", fields["note"])
}

func TestBodyWritesValidationFailure(t *testing.T) {
	v := New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Ali","email":"x","gender":"Male","startTime":"09:00","rate":5}`))
	rr := httptest.NewRecorder()

	got, ok := Body[shiftRequest](v, rr, req)
	assert.False(t, ok)
	assert.Nil(t, got)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"message":"Validation failed","errors":{"email":"Invalid email"}}`, rr.Body.String())
}

func TestBodyMalformedJSON(t *testing.T) {
	v := New()
	rr := httptest.NewRecorder()
	_, ok := Body[shiftRequest](v, rr, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":`)))
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), `"general"`)

	rr = httptest.NewRecorder()
	_, ok = Body[shiftRequest](v, rr, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("")))
	assert.False(t, ok)
	assert.Contains(t, rr.Body.String(), "request body is required")
}

func TestBodySuccess(t *testing.T) {
	v := New()
	rr := httptest.NewRecorder()
	got, ok := Body[shiftRequest](v, rr, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Sara","email":"s@x.io","gender":"Female","startTime":"18:30","rate":2.5}`)))
	require.True(t, ok)
	assert.Equal(t, "Sara", got.Name)
	assert.Equal(t, 2.5, got.Rate)
}

func TestNewRegistersClockReadingRule(t *testing.T) {
	var v *Validator
	require.NotPanics(t, func() { v = New() })

	for reading, ok := range map[string]bool{"00:00": true, "23:59": true, "9:00": false, "9am": false, "12:3": false} {
		err := v.Struct(&shiftRequest{Name: "Ali", Email: "ali@example.com", Gender: "Male", StartTime: reading, Rate: 10})
		if ok {
			assert.NoError(t, err, reading)
		} else {
			assert.Error(t, err, reading)
		}
	}
}
