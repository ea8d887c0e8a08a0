package gdrive

import (
	"context"
	"errors"
	"net/http"

	"github.com/povertyhq/poverty_backend/config"
	"github.com/povertyhq/poverty_backend/models"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/googleapi"
)

const appFolderName = ".poverty"

// File is the durable result of a drive upload.
type File struct {
	ID   string
	Url  string
	Size int64
}

// API is the narrow drive surface the client needs. The production
// implementation wraps the Google Drive v3 service; tests use a fake.
type API interface {
	ListFolders(ctx context.Context, accessToken, name string) ([]string, error)
	CreateFolder(ctx context.Context, accessToken, name string) (string, error)
	InsertFile(ctx context.Context, accessToken string, meta FileMeta, media []byte) (*File, error)
}

// FileMeta describes a file to insert.
type FileMeta struct {
	Title       string
	Description string
	MimeType    string
	FolderId    string
}

// TokenRefresher exchanges a refresh token for a new access token.
type TokenRefresher interface {
	Refresh(ctx context.Context, refreshToken string) (string, error)
}

// TokenStore persists a refreshed access token on the user record.
type TokenStore interface {
	SaveAccessToken(ctx context.Context, user *models.User, accessToken string) error
}

// Client calls the drive API on behalf of a user, transparently refreshing
// an expired credential exactly once per logical call.
type Client struct {
	logger    *logrus.Logger
	api       API
	refresher TokenRefresher
	tokens    TokenStore
}

func NewClient(api API, refresher TokenRefresher, tokens TokenStore) *Client {
	return &Client{
		logger:    config.GetLogger(),
		api:       api,
		refresher: refresher,
		tokens:    tokens,
	}
}

// IsAuthError reports whether err is the 401-equivalent of the remote API.
func IsAuthError(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusUnauthorized
	}
	return false
}

// call runs fn with the user's access token. On an auth error it refreshes
// the token, persists it, and retries once; the second attempt is
// terminal either way. A refresh failure fails the whole call. Bounded to
// one refresh and one retry regardless of failure mode.
func (c *Client) call(ctx context.Context, user *models.User, fn func(accessToken string) error) error {
	for attempt := 1; ; attempt++ {
		err := fn(user.AccessToken)
		if err == nil || attempt > 1 || !IsAuthError(err) {
			return err
		}

		c.logger.Debug("Drive returned authentication error, refreshing token")
		accessToken, refreshErr := c.refresher.Refresh(ctx, user.RefreshToken)
		if refreshErr != nil {
			c.logger.WithFields(logrus.Fields{"error": refreshErr.Error()}).Warn("Failed to refresh drive token")
			return refreshErr
		}

		// persist before the retry so a later request starts from the
		// fresh credential even if the retry fails
		if saveErr := c.tokens.SaveAccessToken(ctx, user, accessToken); saveErr != nil {
			return saveErr
		}
		user.AccessToken = accessToken
		c.logger.Debug("Token refreshed successfully, saved in user")
	}
}

// EnsureAppFolder finds the application folder on the user's drive,
// creating it when missing, and returns its id.
func (c *Client) EnsureAppFolder(ctx context.Context, user *models.User) (string, error) {
	var folderId string
	err := c.call(ctx, user, func(accessToken string) error {
		ids, err := c.api.ListFolders(ctx, accessToken, appFolderName)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			c.logger.Debug("App folder doesn't exist, creating")
			id, err := c.api.CreateFolder(ctx, accessToken, appFolderName)
			if err != nil {
				return err
			}
			folderId = id
			return nil
		}
		if len(ids) > 1 {
			c.logger.Warn("Several app folders exist, using first")
		}
		folderId = ids[0]
		return nil
	})
	return folderId, err
}

// Upload inserts the media under the user's application folder.
func (c *Client) Upload(ctx context.Context, user *models.User, title, contentType string, media []byte) (*File, error) {
	folderId := user.DriveFolderId
	if folderId == "" {
		id, err := c.EnsureAppFolder(ctx, user)
		if err != nil {
			return nil, err
		}
		folderId = id
	}

	var file *File
	err := c.call(ctx, user, func(accessToken string) error {
		inserted, err := c.api.InsertFile(ctx, accessToken, FileMeta{
			Title:       title,
			Description: "Nothing yet",
			MimeType:    contentType,
			FolderId:    folderId,
		}, media)
		if err != nil {
			return err
		}
		file = inserted
		return nil
	})
	return file, err
}
