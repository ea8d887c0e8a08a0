package gdrive

import (
	"context"
	"errors"

	"github.com/povertyhq/poverty_backend/config"
	"github.com/povertyhq/poverty_backend/models"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// oauthRefresher exchanges the stored refresh token for a fresh access
// token at the Google token endpoint.
type oauthRefresher struct {
	conf *oauth2.Config
}

func NewRefresher() TokenRefresher {
	return &oauthRefresher{
		conf: &oauth2.Config{
			ClientID:     config.GoogleClientID(),
			ClientSecret: config.GoogleClientSecret(),
			Endpoint:     google.Endpoint,
		},
	}
}

func (r *oauthRefresher) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", errors.New("user has no refresh token")
	}
	token, err := r.conf.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		return "", err
	}
	return token.AccessToken, nil
}

// userTokenStore persists the refreshed token on the user row.
type userTokenStore struct{}

func NewTokenStore() TokenStore {
	return userTokenStore{}
}

func (userTokenStore) SaveAccessToken(ctx context.Context, user *models.User, accessToken string) error {
	return user.SaveAccessToken(ctx, accessToken)
}
