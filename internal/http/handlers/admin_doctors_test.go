package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/clinic-admin-platform/internal/staff"
	"github.com/wolfman30/clinic-admin-platform/pkg/logging"
)

const validDoctorBody = `{
	"fullName": "Ali Khan",
	"email": "ali@example.com",
	"password": "doctor123",
	"gender": "Male",
	"contact": "0300-1234567",
	"address": "Street 5, Lahore",
	"latestDegree": "MBBS",
	"designation": "Intern",
	"salary": "150000",
	"startTime": "09:00",
	"endTime": "17:30"
}`

func newDoctorsHandler(t *testing.T) (*AdminDoctorsHandler, *memStaffStore) {
	t.Helper()
	svc, store := newStaffService(t)
	return NewAdminDoctorsHandler(svc, nil, false, logging.Default()), store
}

func seedDoctors(t *testing.T, store *memStaffStore, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		_, err := store.CreateMember(context.Background(), staff.NewMember{
			Role:   staff.RoleDoctor,
			Name:   fmt.Sprintf("Doctor %c", 'A'+i),
			Email:  fmt.Sprintf("doc%d@example.com", i),
			Doctor: &staff.Doctor{Degree: "MBBS", Designation: staff.DesignationIntern},
			Salary: 1000,
		})
		require.NoError(t, err)
	}
}

func TestAdminDoctorsAdd(t *testing.T) {
	h, _ := newDoctorsHandler(t)

	rec := serve(h.Add, http.MethodPost, "/admin/add-doctor", validDoctorBody, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	body := decodeJSON(t, rec)
	assert.Equal(t, "Doctor added successfully.", body["message"])
	doctor := body["doctor"].(map[string]any)
	assert.Equal(t, "D-01-AliKhan", doctor["publicId"])
	assert.Equal(t, "09:00", doctor["workingStart"])
	assert.Equal(t, "17:30", doctor["workingEnd"])
	assert.Equal(t, 150000.0, doctor["salary"])
	assert.Equal(t, false, doctor["isDeleted"])
	assert.NotContains(t, doctor, "password")
}

func TestAdminDoctorsAddAllocatesSequentialIDs(t *testing.T) {
	h, _ := newDoctorsHandler(t)

	first := serve(h.Add, http.MethodPost, "/admin/add-doctor", validDoctorBody, "")
	require.Equal(t, http.StatusCreated, first.Code)

	second := serve(h.Add, http.MethodPost, "/admin/add-doctor", `{
		"fullName": "Sara O'Neil", "email": "sara@example.com", "password": "doctor123",
		"gender": "Female", "contact": "0300-7654321", "address": "Block 9, Karachi",
		"latestDegree": "FCPS", "designation": "Senior", "salary": 200000,
		"startTime": "10:00", "endTime": "18:00"
	}`, "")
	require.Equal(t, http.StatusCreated, second.Code, second.Body.String())
	doctor := decodeJSON(t, second)["doctor"].(map[string]any)
	assert.Equal(t, "D-02-SaraONeil", doctor["publicId"])
}

func TestAdminDoctorsAddValidation(t *testing.T) {
	h, _ := newDoctorsHandler(t)

	rec := serve(h.Add, http.MethodPost, "/admin/add-doctor", `{
		"fullName": "A", "email": "not-an-email", "password": "123",
		"gender": "Male", "contact": "0300-1234567", "address": "Street 5",
		"latestDegree": "MBBS", "designation": "Chief", "salary": -5,
		"startTime": "9am", "endTime": "17:00"
	}`, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decodeJSON(t, rec)
	assert.Equal(t, "Validation failed", body["message"])
	errs := body["errors"].(map[string]any)
	assert.Equal(t, "Full name too short", errs["fullName"])
	assert.Equal(t, "Invalid email", errs["email"])
	assert.Equal(t, "Password must be at least 6 characters", errs["password"])
	assert.Equal(t, "Invalid enum value. Expected Intern | Senior", errs["designation"])
	assert.Equal(t, "Salary must be a positive number", errs["salary"])
	assert.Equal(t, "startTime must be in HH:MM format", errs["startTime"])
	assert.NotContains(t, errs, "endTime")
}

func TestAdminDoctorsAddRejectsOutOfRangeSalary(t *testing.T) {
	cases := []struct {
		name   string
		salary string
		field  string
	}{
		{"infinity string", `"Infinity"`, "general"},
		{"negative infinity string", `"-Inf"`, "general"},
		{"nan string", `"NaN"`, "general"},
		{"huge exponent string", `"1e300"`, "salary"},
		{"huge number", `1e13`, "salary"},
		{"just over ten digits", `12345678901.5`, "salary"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h, store := newDoctorsHandler(t)
			body := strings.Replace(validDoctorBody, `"salary": "150000"`, `"salary": `+tc.salary, 1)

			rec := serve(h.Add, http.MethodPost, "/admin/add-doctor", body, "")
			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			errs := decodeJSON(t, rec)["errors"].(map[string]any)
			assert.Contains(t, errs, tc.field)
			if tc.field == "salary" {
				assert.Equal(t, "Salary is too large", errs["salary"])
			}
			assert.Empty(t, store.members)
		})
	}
}

func TestAdminDoctorsAddRoundsSalaryToCents(t *testing.T) {
	h, _ := newDoctorsHandler(t)
	body := strings.Replace(validDoctorBody, `"salary": "150000"`, `"salary": 1500.555`, 1)

	rec := serve(h.Add, http.MethodPost, "/admin/add-doctor", body, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, 1500.56, decodeJSON(t, rec)["doctor"].(map[string]any)["salary"])
}

func TestAdminDoctorsAddPublicIDCollisionIsServerError(t *testing.T) {
	h, store := newDoctorsHandler(t)
	store.createErr = staff.ErrPublicIDTaken

	rec := serve(h.Add, http.MethodPost, "/admin/add-doctor", validDoctorBody, "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, msgInternal, decodeJSON(t, rec)["message"])
}

func TestAdminDoctorsAddMalformedJSON(t *testing.T) {
	h, _ := newDoctorsHandler(t)

	rec := serve(h.Add, http.MethodPost, "/admin/add-doctor", `{"fullName":`, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	errs := decodeJSON(t, rec)["errors"].(map[string]any)
	assert.Contains(t, errs, "general")
}

func TestAdminDoctorsAddDuplicateEmail(t *testing.T) {
	h, _ := newDoctorsHandler(t)

	require.Equal(t, http.StatusCreated, serve(h.Add, http.MethodPost, "/admin/add-doctor", validDoctorBody, "").Code)
	rec := serve(h.Add, http.MethodPost, "/admin/add-doctor", validDoctorBody, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, msgEmailTaken, decodeJSON(t, rec)["message"])
}

func TestAdminDoctorsListPagination(t *testing.T) {
	h, store := newDoctorsHandler(t)
	seedDoctors(t, store, 25)

	rec := serve(h.List, http.MethodGet, "/admin/doctors", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeJSON(t, rec)
	assert.Equal(t, "Doctors retrieved successfully.", body["message"])
	assert.Len(t, body["data"], 10)
	pagination := body["pagination"].(map[string]any)
	assert.Equal(t, 25.0, pagination["total"])
	assert.Equal(t, 1.0, pagination["page"])
	assert.Equal(t, 10.0, pagination["limit"])
	assert.Equal(t, 3.0, pagination["totalPages"])

	rec = serve(h.List, http.MethodGet, "/admin/doctors?page=3&limit=10", "", "")
	body = decodeJSON(t, rec)
	assert.Len(t, body["data"], 5)

	rec = serve(h.List, http.MethodGet, "/admin/doctors?page=0&limit=1000", "", "")
	pagination = decodeJSON(t, rec)["pagination"].(map[string]any)
	assert.Equal(t, 1.0, pagination["page"])
	assert.Equal(t, 100.0, pagination["limit"])
}

func TestAdminDoctorsListSkipsDeleted(t *testing.T) {
	h, store := newDoctorsHandler(t)
	seedDoctors(t, store, 2)
	_, err := store.SoftDelete(context.Background(), staff.RoleDoctor, "D-01-DoctorA")
	require.NoError(t, err)

	body := decodeJSON(t, serve(h.List, http.MethodGet, "/admin/doctors", "", ""))
	data := body["data"].([]any)
	require.Len(t, data, 1)
	assert.Equal(t, "D-02-DoctorB", data[0].(map[string]any)["publicId"])

	count := decodeJSON(t, serve(h.Count, http.MethodGet, "/admin/doctors/count", "", ""))
	assert.Equal(t, 1.0, count["totalDoctors"])
	assert.Equal(t, "Doctor count retrieved successfully.", count["message"])
}

func TestAdminDoctorsGet(t *testing.T) {
	h, _ := newDoctorsHandler(t)
	require.Equal(t, http.StatusCreated, serve(h.Add, http.MethodPost, "/admin/add-doctor", validDoctorBody, "").Code)

	rec := serve(h.Get, http.MethodGet, "/admin/doctor/D-01-AliKhan", "", "D-01-AliKhan")
	require.Equal(t, http.StatusOK, rec.Code)
	doctor := decodeJSON(t, rec)["doctor"].(map[string]any)
	assert.Equal(t, "Ali Khan", doctor["name"])
	details := doctor["doctorDetails"].(map[string]any)
	assert.Equal(t, "MBBS", details["degree"])
	assert.Equal(t, "09:00", details["workingStart"])
	assert.Len(t, doctor["salaries"], 1)

	rec = serve(h.Get, http.MethodGet, "/admin/doctor/D-99-Nobody", "", "D-99-Nobody")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Doctor not found.", decodeJSON(t, rec)["message"])
}

func TestAdminDoctorsEdit(t *testing.T) {
	h, store := newDoctorsHandler(t)
	require.Equal(t, http.StatusCreated, serve(h.Add, http.MethodPost, "/admin/add-doctor", validDoctorBody, "").Code)

	rec := serve(h.Edit, http.MethodPut, "/admin/edit-doctor/D-01-AliKhan", `{
		"fullName": "Ali Khan", "startTime": "09:00", "salary": 150000, "password": "doctor123"
	}`, "D-01-AliKhan")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "No changes detected.", decodeJSON(t, rec)["message"])

	rec = serve(h.Edit, http.MethodPut, "/admin/edit-doctor/D-01-AliKhan", `{
		"designation": "Senior", "endTime": "18:15", "salary": "175000", "password": "newpass1"
	}`, "D-01-AliKhan")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeJSON(t, rec)
	assert.Equal(t, "Doctor updated successfully.", body["message"])
	updates := body["updates"].(map[string]any)
	assert.Equal(t, map[string]any{"passwordUpdated": true}, updates["user"])
	assert.Equal(t, map[string]any{"designation": "Senior", "workingEnd": "18:15"}, updates["doctor"])
	assert.Equal(t, 175000.0, updates["salary"])

	m := store.members["D-01-AliKhan"]
	assert.Len(t, m.Salaries, 2)
	assert.Equal(t, staff.DesignationSenior, m.Doctor.Designation)
}

func TestAdminDoctorsEditUnknownOrWrongRole(t *testing.T) {
	h, store := newDoctorsHandler(t)
	_, err := store.CreateMember(context.Background(), staff.NewMember{Role: staff.RoleReceptionist, Name: "Hina", Email: "hina@example.com", Salary: 1})
	require.NoError(t, err)

	rec := serve(h.Edit, http.MethodPut, "/admin/edit-doctor/R-01-Hina", `{"fullName":"Someone"}`, "R-01-Hina")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(h.Edit, http.MethodPut, "/admin/edit-doctor/D-01-X", `{"salary": -1}`, "D-01-X")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminDoctorsDelete(t *testing.T) {
	h, _ := newDoctorsHandler(t)
	require.Equal(t, http.StatusCreated, serve(h.Add, http.MethodPost, "/admin/add-doctor", validDoctorBody, "").Code)

	first := serve(h.Delete, http.MethodDelete, "/admin/delete-doctor/D-01-AliKhan", "", "D-01-AliKhan")
	require.Equal(t, http.StatusOK, first.Code)
	body := decodeJSON(t, first)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Doctor deleted successfully (soft delete applied)", body["message"])
	data := body["data"].(map[string]any)
	assert.Equal(t, true, data["isDeleted"])

	second := serve(h.Delete, http.MethodDelete, "/admin/delete-doctor/D-01-AliKhan", "", "D-01-AliKhan")
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, data["deletedAt"], decodeJSON(t, second)["data"].(map[string]any)["deletedAt"])

	missing := serve(h.Delete, http.MethodDelete, "/admin/delete-doctor/D-09-Nobody", "", "D-09-Nobody")
	assert.Equal(t, http.StatusNotFound, missing.Code)
	assert.Equal(t, map[string]any{"success": false, "message": "Doctor not found"}, decodeJSON(t, missing))
}
