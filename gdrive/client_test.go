package gdrive

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/povertyhq/poverty_backend/models"
	"google.golang.org/api/googleapi"
)

func authError() error {
	return &googleapi.Error{Code: http.StatusUnauthorized, Message: "Invalid Credentials"}
}

// fakeAPI scripts per-call outcomes keyed by the access token presented.
type fakeAPI struct {
	insertCalls  []string // access tokens seen
	insertErrors []error  // popped per call; nil means success
	folders      []string
	createdId    string
}

func (f *fakeAPI) nextInsertError() error {
	if len(f.insertErrors) == 0 {
		return nil
	}
	err := f.insertErrors[0]
	f.insertErrors = f.insertErrors[1:]
	return err
}

func (f *fakeAPI) ListFolders(ctx context.Context, accessToken, name string) ([]string, error) {
	return f.folders, nil
}

func (f *fakeAPI) CreateFolder(ctx context.Context, accessToken, name string) (string, error) {
	return f.createdId, nil
}

func (f *fakeAPI) InsertFile(ctx context.Context, accessToken string, meta FileMeta, media []byte) (*File, error) {
	f.insertCalls = append(f.insertCalls, accessToken)
	if err := f.nextInsertError(); err != nil {
		return nil, err
	}
	return &File{ID: "file1", Url: "https://drive/file1", Size: int64(len(media))}, nil
}

type fakeRefresher struct {
	calls int
	token string
	err   error
}

func (f *fakeRefresher) Refresh(ctx context.Context, refreshToken string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.token, nil
}

type fakeTokenStore struct {
	saved []string
	err   error
}

func (f *fakeTokenStore) SaveAccessToken(ctx context.Context, user *models.User, accessToken string) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, accessToken)
	return nil
}

func testUser() *models.User {
	return &models.User{ID: "u1", AccessToken: "stale", RefreshToken: "refresh", DriveFolderId: "folder1"}
}

func TestUploadRefreshesExpiredTokenOnce(t *testing.T) {
	api := &fakeAPI{insertErrors: []error{authError(), nil}}
	refresher := &fakeRefresher{token: "fresh"}
	store := &fakeTokenStore{}
	client := NewClient(api, refresher, store)
	user := testUser()

	file, err := client.Upload(context.Background(), user, "title", "application/pdf", []byte("pdf"))
	if err != nil {
		t.Fatalf("expected success after refresh, got %v", err)
	}
	if file.ID != "file1" {
		t.Fatalf("unexpected file: %+v", file)
	}

	if refresher.calls != 1 {
		t.Fatalf("expected exactly 1 refresh, got %d", refresher.calls)
	}
	if len(api.insertCalls) != 2 || api.insertCalls[0] != "stale" || api.insertCalls[1] != "fresh" {
		t.Fatalf("expected stale then fresh attempts, got %v", api.insertCalls)
	}
	// the new token was persisted before the retry
	if len(store.saved) != 1 || store.saved[0] != "fresh" {
		t.Fatalf("token not persisted: %v", store.saved)
	}
	if user.AccessToken != "fresh" {
		t.Fatalf("user token not updated: %s", user.AccessToken)
	}
}

func TestUploadSecondAuthFailureIsFinal(t *testing.T) {
	api := &fakeAPI{insertErrors: []error{authError(), authError(), authError()}}
	refresher := &fakeRefresher{token: "fresh"}
	client := NewClient(api, refresher, &fakeTokenStore{})

	_, err := client.Upload(context.Background(), testUser(), "t", "application/pdf", nil)
	if !IsAuthError(err) {
		t.Fatalf("expected the auth error to surface, got %v", err)
	}
	// one original attempt, one retry, no third call
	if len(api.insertCalls) != 2 {
		t.Fatalf("expected 2 attempts, got %d", len(api.insertCalls))
	}
	if refresher.calls != 1 {
		t.Fatalf("expected a single refresh, got %d", refresher.calls)
	}
}

func TestUploadRefreshFailureFailsTheCall(t *testing.T) {
	api := &fakeAPI{insertErrors: []error{authError()}}
	refreshErr := errors.New("refresh denied")
	refresher := &fakeRefresher{err: refreshErr}
	client := NewClient(api, refresher, &fakeTokenStore{})

	_, err := client.Upload(context.Background(), testUser(), "t", "application/pdf", nil)
	if !errors.Is(err, refreshErr) {
		t.Fatalf("expected the refresh error, got %v", err)
	}
	if len(api.insertCalls) != 1 {
		t.Fatalf("no retry should happen after a failed refresh, got %d attempts", len(api.insertCalls))
	}
}

func TestUploadNonAuthErrorIsNotRetried(t *testing.T) {
	upstream := &googleapi.Error{Code: http.StatusServiceUnavailable}
	api := &fakeAPI{insertErrors: []error{upstream}}
	refresher := &fakeRefresher{token: "fresh"}
	client := NewClient(api, refresher, &fakeTokenStore{})

	_, err := client.Upload(context.Background(), testUser(), "t", "application/pdf", nil)
	if !errors.Is(err, upstream) {
		t.Fatalf("expected the upstream error, got %v", err)
	}
	if refresher.calls != 0 {
		t.Fatalf("non-auth errors must not trigger a refresh, got %d", refresher.calls)
	}
	if len(api.insertCalls) != 1 {
		t.Fatalf("expected a single attempt, got %d", len(api.insertCalls))
	}
}

func TestUploadEnsuresAppFolderWhenUnknown(t *testing.T) {
	api := &fakeAPI{createdId: "newFolder"}
	client := NewClient(api, &fakeRefresher{}, &fakeTokenStore{})
	user := testUser()
	user.DriveFolderId = ""

	if _, err := client.Upload(context.Background(), user, "t", "application/pdf", nil); err != nil {
		t.Fatal(err)
	}
}

func TestEnsureAppFolderUsesFirstExisting(t *testing.T) {
	api := &fakeAPI{folders: []string{"a", "b"}}
	client := NewClient(api, &fakeRefresher{}, &fakeTokenStore{})

	id, err := client.EnsureAppFolder(context.Background(), testUser())
	if err != nil {
		t.Fatal(err)
	}
	if id != "a" {
		t.Fatalf("expected first folder, got %s", id)
	}
}

func TestIsAuthError(t *testing.T) {
	if !IsAuthError(authError()) {
		t.Fatal("401 googleapi error should be an auth error")
	}
	if IsAuthError(&googleapi.Error{Code: 500}) {
		t.Fatal("500 is not an auth error")
	}
	if IsAuthError(errors.New("boom")) {
		t.Fatal("plain error is not an auth error")
	}
}
