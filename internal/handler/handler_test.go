package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fraol-12/WhisperBox/internal/auth"
	"github.com/Fraol-12/WhisperBox/internal/handler"
	"github.com/Fraol-12/WhisperBox/internal/middleware"
	"github.com/Fraol-12/WhisperBox/internal/model"
	"github.com/Fraol-12/WhisperBox/internal/router"
	"github.com/Fraol-12/WhisperBox/internal/service"
	"github.com/Fraol-12/WhisperBox/internal/storage"
	"github.com/Fraol-12/WhisperBox/internal/testutil"
	"github.com/Fraol-12/WhisperBox/pkg/ticket"
)

type testEnv struct {
	app   *fiber.App
	store *testutil.MemStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := testutil.NewMemStore()
	logger := zerolog.Nop()

	complaints := service.NewComplaintService(store, ticket.Generator{}, nil, logger)
	votes := service.NewVoteService(store.VoteLedger(), store, logger)
	authSvc := service.NewAuthService(store.Admins(), auth.NewSigner("handler-test-secret", "whisperbox", time.Hour), logger)

	photos, err := storage.NewPhotoStore(t.TempDir(), 1<<20)
	require.NoError(t, err)

	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler, UnescapePath: true})
	router.Setup(app, &router.Handlers{
		Complaint: handler.NewComplaintHandler(complaints, votes, photos),
		Admin:     handler.NewAdminHandler(authSvc, complaints),
	}, router.Options{
		UploadDir:  photos.Dir(),
		Authorizer: authSvc,
	})
	return &testEnv{app: app, store: store}
}

func (e *testEnv) do(t *testing.T, req *http.Request) (int, []byte) {
	t.Helper()
	resp, err := e.app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, body
}

func jsonRequest(method, target string, body any) *http.Request {
	var r io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, target, r)
	req.Header.Set("Content-Type", "application/json")
	return req
}

type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decodeError(t *testing.T, body []byte) errorEnvelope {
	t.Helper()
	var env errorEnvelope
	require.NoError(t, json.Unmarshal(body, &env), "body: %s", body)
	return env
}

func (e *testEnv) login(t *testing.T, dept model.Department, email string) string {
	t.Helper()
	testutil.SeedAdmin(t, e.store, dept, email)
	status, body := e.do(t, jsonRequest("POST", "/api/admin/login", model.LoginRequest{Email: email, Password: testutil.DefaultPassword}))
	require.Equal(t, http.StatusOK, status, "login: %s", body)
	var resp model.LoginResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	return resp.Token
}

func bearer(req *http.Request, token string) *http.Request {
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestCreateComplaint_JSON(t *testing.T) {
	e := newTestEnv(t)

	status, body := e.do(t, jsonRequest("POST", "/api/complaints", model.ComplaintRequest{Department: "IT", Message: "Projector in room 4 is broken"}))
	require.Equal(t, http.StatusCreated, status, "%s", body)

	var resp model.ComplaintCreatedResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.Equal(t, "Complaint submitted successfully", resp.Message)
	assert.True(t, ticket.Valid(resp.TicketID))
	assert.Equal(t, resp.TicketID, resp.Complaint.TicketID)
	assert.Equal(t, model.StatusPending, resp.Complaint.Status)
	assert.Equal(t, 0, resp.Complaint.Likes)
	assert.Equal(t, []string{}, resp.Complaint.Photos)
}

func TestCreateComplaint_Invalid(t *testing.T) {
	e := newTestEnv(t)

	tests := []struct {
		name     string
		req      *http.Request
		wantCode string
	}{
		{"empty body", httptest.NewRequest("POST", "/api/complaints", nil), "MISSING_FIELDS"},
		{"missing message", jsonRequest("POST", "/api/complaints", model.ComplaintRequest{Department: "IT"}), "MISSING_FIELDS"},
		{"unknown department", jsonRequest("POST", "/api/complaints", model.ComplaintRequest{Department: "Gym", Message: "x"}), "INVALID_DEPARTMENT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := e.do(t, tt.req)
			assert.Equal(t, http.StatusBadRequest, status)
			assert.Equal(t, tt.wantCode, decodeError(t, body).Error.Code)
		})
	}
}

func TestCreateComplaint_MultipartWithPhoto(t *testing.T) {
	e := newTestEnv(t)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("department", "Café"))
	require.NoError(t, w.WriteField("message", "Coffee machine leaks"))
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="photos"; filename="leak.png"`)
	h.Set("Content-Type", "image/png")
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 32)...))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/api/complaints", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	status, body := e.do(t, req)
	require.Equal(t, http.StatusCreated, status, "%s", body)

	var resp model.ComplaintCreatedResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.Equal(t, model.DepartmentCafe, resp.Complaint.Department)
	require.Len(t, resp.Complaint.Photos, 1)

	status, _ = e.do(t, httptest.NewRequest("GET", resp.Complaint.Photos[0], nil))
	assert.Equal(t, http.StatusOK, status)
}

func TestListByDepartment(t *testing.T) {
	e := newTestEnv(t)
	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	e.store.Now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}
	older := testutil.CreateComplaint(t, e.store, model.DepartmentCafe, "Cold soup", "TICKET-0000000A")
	testutil.CreateComplaint(t, e.store, model.DepartmentCafe, "Long queue", "TICKET-0000000B")
	testutil.CreateComplaint(t, e.store, model.DepartmentIT, "Soup in the server room", "TICKET-0000000C")

	status, _ := e.do(t, httptest.NewRequest("POST", "/api/complaints/"+older.ID+"/like", nil))
	require.Equal(t, http.StatusOK, status)

	list := func(target string) []string {
		status, body := e.do(t, httptest.NewRequest("GET", target, nil))
		require.Equal(t, http.StatusOK, status, "%s", body)
		var got []model.Complaint
		require.NoError(t, json.Unmarshal(body, &got))
		ids := []string{}
		for _, c := range got {
			ids = append(ids, c.TicketID)
		}
		return ids
	}

	assert.Equal(t, []string{"TICKET-0000000A", "TICKET-0000000B"}, list("/api/complaints/Cafe"))
	assert.Equal(t, []string{"TICKET-0000000A", "TICKET-0000000B"}, list("/api/complaints/Caf%C3%A9?sortBy=likes"))
	assert.Equal(t, []string{"TICKET-0000000B", "TICKET-0000000A"}, list("/api/complaints/Cafe?sortBy=date"))
	assert.Equal(t, []string{"TICKET-0000000A"}, list("/api/complaints/Cafe?search=SOUP"))
	assert.Equal(t, []string{}, list("/api/complaints/Dorm"))

	status, body := e.do(t, httptest.NewRequest("GET", "/api/complaints/Gym", nil))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_DEPARTMENT", decodeError(t, body).Error.Code)
}

func TestLikeComplaint(t *testing.T) {
	e := newTestEnv(t)
	c := testutil.CreateComplaint(t, e.store, model.DepartmentDorm, "No hot water", "TICKET-000000D1")

	like := func(voter string) (int, []byte) {
		req := httptest.NewRequest("POST", "/api/complaints/"+c.ID+"/like", nil)
		if voter != "" {
			req.Header.Set(middleware.VoterHeader, voter)
		}
		return e.do(t, req)
	}

	status, body := like("device-1")
	require.Equal(t, http.StatusOK, status, "%s", body)
	var resp model.LikeResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.Equal(t, "Complaint liked successfully", resp.Message)
	assert.Equal(t, 1, resp.Likes)

	status, body = like("device-1")
	assert.Equal(t, http.StatusBadRequest, status)
	env := decodeError(t, body)
	assert.Equal(t, "DUPLICATE_VOTE", env.Error.Code)
	assert.Equal(t, "You have already liked this complaint", env.Error.Message)

	status, body = like("device-2")
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.Equal(t, 2, resp.Likes)

	// No header: the IP and User-Agent fingerprint is the identity.
	status, _ = like("")
	assert.Equal(t, http.StatusOK, status)
	status, _ = like("")
	assert.Equal(t, http.StatusBadRequest, status)

	stored, err := e.store.FindByID(t.Context(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.Likes)
}

func TestLikeComplaint_NotFound(t *testing.T) {
	e := newTestEnv(t)

	for _, id := range []string{"not-a-uuid", "00000000-0000-0000-0000-000000000000"} {
		status, body := e.do(t, httptest.NewRequest("POST", "/api/complaints/"+id+"/like", nil))
		assert.Equal(t, http.StatusNotFound, status, id)
		assert.Equal(t, "Complaint not found", decodeError(t, body).Error.Message)
	}
}

func TestAdminLogin_Failures(t *testing.T) {
	e := newTestEnv(t)
	testutil.SeedAdmin(t, e.store, model.DepartmentIT, "it@university.edu")

	status, wrongPw := e.do(t, jsonRequest("POST", "/api/admin/login", model.LoginRequest{Email: "it@university.edu", Password: "wrong"}))
	assert.Equal(t, http.StatusUnauthorized, status)
	status, unknown := e.do(t, jsonRequest("POST", "/api/admin/login", model.LoginRequest{Email: "nobody@university.edu", Password: "wrong"}))
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, wrongPw, unknown)
	assert.Equal(t, "Invalid credentials", decodeError(t, wrongPw).Error.Message)

	status, body := e.do(t, jsonRequest("POST", "/api/admin/login", model.LoginRequest{Email: "it@university.edu"}))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Email and password are required", decodeError(t, body).Error.Message)
}

func TestAdminRoutes_RequireToken(t *testing.T) {
	e := newTestEnv(t)

	for _, req := range []*http.Request{
		httptest.NewRequest("GET", "/api/admin/complaints", nil),
		httptest.NewRequest("GET", "/api/admin/stats", nil),
		jsonRequest("PUT", "/api/admin/complaints/00000000-0000-0000-0000-000000000000/status", model.StatusRequest{Status: "Resolved"}),
		bearer(httptest.NewRequest("GET", "/api/admin/stats", nil), "garbage"),
	} {
		status, _ := e.do(t, req)
		assert.Equal(t, http.StatusUnauthorized, status, req.URL.Path)
	}
}

func TestAdminWorkflow(t *testing.T) {
	e := newTestEnv(t)
	token := e.login(t, model.DepartmentIT, "it@university.edu")
	mine := testutil.CreateComplaint(t, e.store, model.DepartmentIT, "Lab PCs are slow", "TICKET-00000E01")
	theirs := testutil.CreateComplaint(t, e.store, model.DepartmentLibrary, "Too noisy", "TICKET-00000E02")

	status, body := e.do(t, bearer(httptest.NewRequest("GET", "/api/admin/complaints?sortBy=date", nil), token))
	require.Equal(t, http.StatusOK, status)
	var listed []model.Complaint
	require.NoError(t, json.Unmarshal(body, &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, mine.ID, listed[0].ID)

	status, body = e.do(t, bearer(jsonRequest("PUT", "/api/admin/complaints/"+mine.ID+"/status", model.StatusRequest{Status: "In Progress"}), token))
	require.Equal(t, http.StatusOK, status, "%s", body)
	var updated model.ComplaintUpdatedResponse
	require.NoError(t, json.Unmarshal(body, &updated))
	assert.Equal(t, "Status updated successfully", updated.Message)
	assert.Equal(t, model.StatusInProgress, updated.Complaint.Status)

	status, body = e.do(t, bearer(jsonRequest("PUT", "/api/admin/complaints/"+mine.ID+"/reply", model.ReplyRequest{Reply: "Upgrading RAM next week"}), token))
	require.Equal(t, http.StatusOK, status, "%s", body)
	require.NoError(t, json.Unmarshal(body, &updated))
	assert.Equal(t, "Reply added successfully", updated.Message)
	assert.Equal(t, "Upgrading RAM next week", updated.Complaint.Reply)

	status, body = e.do(t, bearer(jsonRequest("PUT", "/api/admin/complaints/"+mine.ID+"/status", model.StatusRequest{Status: "Closed"}), token))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid status", decodeError(t, body).Error.Message)

	status, body = e.do(t, bearer(jsonRequest("PUT", "/api/admin/complaints/"+mine.ID+"/reply", model.ReplyRequest{Reply: "  "}), token))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Reply is required", decodeError(t, body).Error.Message)

	status, body = e.do(t, bearer(jsonRequest("PUT", "/api/admin/complaints/"+theirs.ID+"/status", model.StatusRequest{Status: "Resolved"}), token))
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "Access denied", decodeError(t, body).Error.Message)

	status, _ = e.do(t, bearer(jsonRequest("PUT", "/api/admin/complaints/00000000-0000-0000-0000-000000000000/reply", model.ReplyRequest{Reply: "hi"}), token))
	assert.Equal(t, http.StatusNotFound, status)

	status, body = e.do(t, bearer(httptest.NewRequest("GET", "/api/admin/stats", nil), token))
	require.Equal(t, http.StatusOK, status)
	var stats model.DepartmentStats
	require.NoError(t, json.Unmarshal(body, &stats))
	assert.Equal(t, 1, stats.TotalComplaints)
	assert.Equal(t, map[model.Status]int{model.StatusInProgress: 1}, stats.StatusDistribution)

	untouched, err := e.store.FindByID(t.Context(), theirs.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, untouched.Status)
}

func TestSubmitRateLimit(t *testing.T) {
	e := newTestEnv(t)

	for i := 0; i < 5; i++ {
		status, _ := e.do(t, jsonRequest("POST", "/api/complaints", model.ComplaintRequest{Department: "Registrar", Message: "Transcript delayed"}))
		require.Equal(t, http.StatusCreated, status)
	}
	status, body := e.do(t, jsonRequest("POST", "/api/complaints", model.ComplaintRequest{Department: "Registrar", Message: "Transcript delayed"}))
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.Equal(t, "RATE_LIMITED", decodeError(t, body).Error.Code)
}
