package main

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/povertyhq/poverty_backend/config"
	"github.com/povertyhq/poverty_backend/models"
	"github.com/povertyhq/poverty_backend/utils"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const userinfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

func oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     config.GoogleClientID(),
		ClientSecret: config.GoogleClientSecret(),
		RedirectURL:  config.RootURL() + "/login/callback",
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
			"https://www.googleapis.com/auth/drive.file",
		},
		Endpoint: google.Endpoint,
	}
}

type googleUserinfo struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// registerAuthRoutes mounts the login flow. The drive.file scope is
// requested up front so the drive wrapper can act for the user later;
// offline access yields the refresh token the retry wrapper depends on.
func registerAuthRoutes(r *gin.Engine, app *application) {
	r.GET("/login", func(c *gin.Context) {
		url := oauthConfig().AuthCodeURL("state",
			oauth2.AccessTypeOffline,
			oauth2.SetAuthURLParam("prompt", "consent"))
		c.Redirect(http.StatusTemporaryRedirect, url)
	})

	r.GET("/login/callback", func(c *gin.Context) {
		ctx := c.Request.Context()

		code := c.Query("code")
		if code == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing code"})
			return
		}

		conf := oauthConfig()
		token, err := conf.Exchange(ctx, code)
		if err != nil {
			config.LogError(app.logger, "auth", "callback", "exchange", nil, err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "code exchange failed"})
			return
		}

		resp, err := conf.Client(ctx, token).Get(userinfoURL)
		if err != nil {
			config.LogError(app.logger, "auth", "callback", "userinfo", nil, err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "userinfo fetch failed"})
			return
		}
		defer resp.Body.Close()

		var info googleUserinfo
		if err := json.NewDecoder(resp.Body).Decode(&info); err != nil || info.Email == "" {
			c.JSON(http.StatusBadGateway, gin.H{"error": "userinfo fetch failed"})
			return
		}

		user, err := models.GetUserByEmail(ctx, info.Email)
		if err != nil {
			user = &models.User{Name: info.Name, Email: info.Email}
			if err := config.GetDB().WithContext(ctx).Create(user).Error; err != nil {
				config.LogError(app.logger, "auth", "callback", "create user", info, err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
				return
			}
			app.logger.WithFields(logrus.Fields{"email": info.Email}).Info("New user registered")
		}

		if err := user.SaveTokens(ctx, token.AccessToken, token.RefreshToken); err != nil {
			config.LogError(app.logger, "auth", "callback", "save tokens", nil, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
			return
		}

		// resolve the drive folder once per login; uploads reuse it
		if user.DriveFolderId == "" {
			folderId, err := app.drive.EnsureAppFolder(ctx, user)
			if err != nil {
				config.LogError(app.logger, "auth", "callback", "ensure folder", nil, err)
			} else if err := user.SaveDriveFolder(ctx, folderId); err != nil {
				config.LogError(app.logger, "auth", "callback", "save folder", nil, err)
			}
		}

		jwt, err := utils.JwtGenerate(user.ID, user.Email)
		if err != nil {
			config.LogError(app.logger, "auth", "callback", "jwt", nil, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"token": jwt})
	})
}
