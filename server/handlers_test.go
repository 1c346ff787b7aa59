package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"wavefm/config"
	"wavefm/core/auth"
	"wavefm/model"
	"wavefm/repository"

	"github.com/gorilla/mux"
)

// recordingUserRepo counts mutations so tests can assert nothing was
// persisted on a rejected request.
type recordingUserRepo struct {
	users       map[string]*model.User
	createCalls int
	createErr   error
}

func newRecordingUserRepo() *recordingUserRepo {
	return &recordingUserRepo{users: map[string]*model.User{}}
}

func (r *recordingUserRepo) CreateUser(user *model.User) (int64, error) {
	r.createCalls++
	if r.createErr != nil {
		return 0, r.createErr
	}
	user.ID = int64(len(r.users) + 1)
	r.users[user.Email] = user
	return user.ID, nil
}

func (r *recordingUserRepo) GetUserByID(id int64) (*model.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func (r *recordingUserRepo) GetUserByUsername(username string) (*model.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

func (r *recordingUserRepo) GetUserByEmail(email string) (*model.User, error) {
	return r.users[email], nil
}

func (r *recordingUserRepo) UpdateProfile(userID int64, displayName, bio, avatar string) error {
	return nil
}

func (r *recordingUserRepo) UpdateSettings(userID int64, settings string) error { return nil }

func (r *recordingUserRepo) RecordPlay(userID int64, listeningMinutes int64) error { return nil }

func (r *recordingUserRepo) IncrementPlaylistsCreated(userID int64) error { return nil }

// recordingSongRepo counts writes.
type recordingSongRepo struct {
	createCalls int
	playCalls   int
	songs       []*model.Song
}

func (r *recordingSongRepo) CreateSong(song *model.Song) error {
	r.createCalls++
	r.songs = append(r.songs, song)
	return nil
}

func (r *recordingSongRepo) GetSongByID(id string) (*model.Song, error) {
	for _, s := range r.songs {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, nil
}

func (r *recordingSongRepo) ListSongs() ([]*model.Song, error) { return r.songs, nil }

func (r *recordingSongRepo) ListSongsByUser(userID int64) ([]*model.Song, error) {
	return r.songs, nil
}

func (r *recordingSongRepo) IncrementPlays(id string) error {
	r.playCalls++
	return nil
}

func (r *recordingSongRepo) UpdateCoverArt(id, coverArt string) error { return nil }

func testHandler(userRepo repository.UserRepository, songRepo repository.SongRepository) *APIHandler {
	cfg := &config.Config{
		MaxUploadSize:  50 << 20,
		AudioKeyPrefix: "audio/",
		CoverKeyPrefix: "covers/",
		HistoryLimit:   500,
	}
	return NewAPIHandler(userRepo, songRepo, nil, nil, cfg)
}

func decodeEnvelope(t *testing.T, body *bytes.Buffer) apiResponse {
	t.Helper()
	var resp apiResponse
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response envelope: %v", err)
	}
	return resp
}

func TestRegisterHandler(t *testing.T) {
	auth.Init("test-secret", time.Hour)

	t.Run("creates user and returns token", func(t *testing.T) {
		repo := newRecordingUserRepo()
		h := testHandler(repo, &recordingSongRepo{})

		body := `{"username":"ana","email":"ana@example.com","password":"hunter22"}`
		req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(body))
		rec := httptest.NewRecorder()

		h.RegisterHandler(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		resp := decodeEnvelope(t, rec.Body)
		if !resp.Success {
			t.Fatal("expected success envelope")
		}
		data := resp.Data.(map[string]interface{})
		if data["token"] == "" {
			t.Fatal("expected a token in the response")
		}
	})

	t.Run("missing fields are rejected before persistence", func(t *testing.T) {
		repo := newRecordingUserRepo()
		h := testHandler(repo, &recordingSongRepo{})

		body := `{"username":"ana","password":"hunter22"}`
		req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(body))
		rec := httptest.NewRecorder()

		h.RegisterHandler(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		if repo.createCalls != 0 {
			t.Fatalf("expected no CreateUser call, got %d", repo.createCalls)
		}
	})

	t.Run("duplicate user maps to conflict", func(t *testing.T) {
		repo := newRecordingUserRepo()
		repo.createErr = repository.ErrDuplicateUser
		h := testHandler(repo, &recordingSongRepo{})

		body := `{"username":"ana","email":"ana@example.com","password":"hunter22"}`
		req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(body))
		rec := httptest.NewRecorder()

		h.RegisterHandler(rec, req)

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
	})
}

func TestLoginHandler(t *testing.T) {
	auth.Init("test-secret", time.Hour)

	hash, err := auth.HashPassword("hunter22")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	repo := newRecordingUserRepo()
	repo.users["ana@example.com"] = &model.User{
		ID:           1,
		Username:     "ana",
		Email:        "ana@example.com",
		PasswordHash: hash,
	}
	h := testHandler(repo, &recordingSongRepo{})

	t.Run("valid credentials", func(t *testing.T) {
		body := `{"email":"ana@example.com","password":"hunter22"}`
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
		rec := httptest.NewRecorder()

		h.LoginHandler(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		body := `{"email":"ana@example.com","password":"nope"}`
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
		rec := httptest.NewRecorder()

		h.LoginHandler(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("unknown email", func(t *testing.T) {
		body := `{"email":"ghost@example.com","password":"hunter22"}`
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
		rec := httptest.NewRecorder()

		h.LoginHandler(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})
}

func TestAuthMiddleware(t *testing.T) {
	auth.Init("test-secret", time.Hour)
	h := testHandler(newRecordingUserRepo(), &recordingSongRepo{})

	protected := h.AuthMiddleware(func(w http.ResponseWriter, r *http.Request) {
		userID, err := GetUserIDFromContext(r.Context())
		if err != nil {
			t.Errorf("expected user ID in context: %v", err)
		}
		if userID != 7 {
			t.Errorf("expected user ID 7, got %d", userID)
		}
		w.WriteHeader(http.StatusOK)
	})

	t.Run("valid bearer token", func(t *testing.T) {
		token, err := auth.GenerateToken(7, "ana")
		if err != nil {
			t.Fatalf("GenerateToken failed: %v", err)
		}

		req := httptest.NewRequest(http.MethodGet, "/api/users/profile", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		protected(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("missing header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/users/profile", nil)
		rec := httptest.NewRecorder()

		protected(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("malformed header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/users/profile", nil)
		req.Header.Set("Authorization", "Token abc")
		rec := httptest.NewRecorder()

		protected(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("garbage token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/users/profile", nil)
		req.Header.Set("Authorization", "Bearer not.a.token")
		rec := httptest.NewRecorder()

		protected(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})
}

// buildUploadRequest assembles a multipart upload with the given metadata
// fields and a small fake audio file.
func buildUploadRequest(t *testing.T, fields map[string]string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("failed to write field %s: %v", key, err)
		}
	}

	header := make(map[string][]string)
	header["Content-Disposition"] = []string{`form-data; name="audio"; filename="track.mp3"`}
	header["Content-Type"] = []string{"audio/mpeg"}
	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatalf("failed to create file part: %v", err)
	}
	part.Write([]byte("ID3 fake audio bytes"))
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/music/upload", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func withAuthContext(req *http.Request, userID int64) *http.Request {
	ctx := context.WithValue(req.Context(), contextKeyUserID, userID)
	ctx = context.WithValue(ctx, contextKeyUsername, "ana")
	return req.WithContext(ctx)
}

func TestUploadSongHandlerValidation(t *testing.T) {
	t.Run("unauthenticated request is rejected", func(t *testing.T) {
		songRepo := &recordingSongRepo{}
		h := testHandler(newRecordingUserRepo(), songRepo)

		req := buildUploadRequest(t, map[string]string{
			"title": "Song", "artist": "Ana", "genre": "Pop",
		})
		rec := httptest.NewRecorder()

		h.UploadSongHandler(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		if songRepo.createCalls != 0 {
			t.Fatal("expected no song persisted")
		}
	})

	t.Run("missing genre leaves no partial state", func(t *testing.T) {
		songRepo := &recordingSongRepo{}
		h := testHandler(newRecordingUserRepo(), songRepo)

		req := withAuthContext(buildUploadRequest(t, map[string]string{
			"title": "Song", "artist": "Ana",
		}), 1)
		rec := httptest.NewRecorder()

		h.UploadSongHandler(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
		}
		if songRepo.createCalls != 0 {
			t.Fatalf("expected no CreateSong call, got %d", songRepo.createCalls)
		}
	})

	t.Run("non-audio content type is rejected", func(t *testing.T) {
		songRepo := &recordingSongRepo{}
		h := testHandler(newRecordingUserRepo(), songRepo)

		var buf bytes.Buffer
		writer := multipart.NewWriter(&buf)
		header := make(map[string][]string)
		header["Content-Disposition"] = []string{`form-data; name="audio"; filename="notes.txt"`}
		header["Content-Type"] = []string{"text/plain"}
		part, err := writer.CreatePart(header)
		if err != nil {
			t.Fatalf("failed to create file part: %v", err)
		}
		part.Write([]byte("not audio"))
		writer.Close()

		req := httptest.NewRequest(http.MethodPost, "/api/music/upload", &buf)
		req.Header.Set("Content-Type", writer.FormDataContentType())
		req = withAuthContext(req, 1)
		rec := httptest.NewRecorder()

		h.UploadSongHandler(rec, req)

		if rec.Code != http.StatusUnsupportedMediaType {
			t.Fatalf("expected 415, got %d", rec.Code)
		}
		if songRepo.createCalls != 0 {
			t.Fatal("expected no song persisted")
		}
	})

	t.Run("oversized request is rejected up front", func(t *testing.T) {
		songRepo := &recordingSongRepo{}
		h := testHandler(newRecordingUserRepo(), songRepo)

		req := withAuthContext(buildUploadRequest(t, map[string]string{
			"title": "Song", "artist": "Ana", "genre": "Pop",
		}), 1)
		req.ContentLength = 200 << 20
		rec := httptest.NewRecorder()

		h.UploadSongHandler(rec, req)

		if rec.Code != http.StatusRequestEntityTooLarge {
			t.Fatalf("expected 413, got %d", rec.Code)
		}
		if songRepo.createCalls != 0 {
			t.Fatal("expected no song persisted")
		}
	})
}

func TestUpdateProfileHandlerIdentityCheck(t *testing.T) {
	repo := newRecordingUserRepo()
	repo.users["ana@example.com"] = &model.User{ID: 1, Username: "ana", Email: "ana@example.com"}
	h := testHandler(repo, &recordingSongRepo{})

	t.Run("path ID must match the token identity", func(t *testing.T) {
		body := `{"displayName":"Ana B"}`
		req := httptest.NewRequest(http.MethodPut, "/api/users/2/profile", strings.NewReader(body))
		req = mux.SetURLVars(withAuthContext(req, 1), map[string]string{"id": "2"})
		rec := httptest.NewRecorder()

		h.UpdateProfileHandler(rec, req)

		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
	})

	t.Run("matching identity updates the profile", func(t *testing.T) {
		body := `{"displayName":"Ana B"}`
		req := httptest.NewRequest(http.MethodPut, "/api/users/1/profile", strings.NewReader(body))
		req = mux.SetURLVars(withAuthContext(req, 1), map[string]string{"id": "1"})
		rec := httptest.NewRecorder()

		h.UpdateProfileHandler(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
	})
}

func TestHealthHandler(t *testing.T) {
	h := testHandler(newRecordingUserRepo(), &recordingSongRepo{})

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()

	h.HealthHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	resp := decodeEnvelope(t, rec.Body)
	if !resp.Success {
		t.Fatal("expected success envelope")
	}

	data, ok := resp.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("expected object payload, got %T", resp.Data)
	}
	// No backing services are connected in tests, so each dependency
	// reports unavailable rather than being omitted.
	for _, field := range []string{"database", "redis", "storage"} {
		status, ok := data[field].(string)
		if !ok {
			t.Fatalf("missing %s status in health payload", field)
		}
		if status != "unavailable" {
			t.Fatalf("expected %s status unavailable without a connection, got %q", field, status)
		}
	}
}
