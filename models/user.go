package models

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/povertyhq/poverty_backend/config"
	"github.com/povertyhq/poverty_backend/utils"
	"gorm.io/gorm"
)

// User owns the external drive credential. AccessToken is mutated only by
// the login flow and the refresh-and-retry wrapper, which persists it
// immediately after a successful refresh.
type User struct {
	ID            string    `gorm:"primaryKey;size:36" json:"id"`
	Name          string    `gorm:"size:100" json:"name"`
	Email         string    `gorm:"size:100;uniqueIndex;not null" json:"email"`
	AccessToken   string    `gorm:"size:2048" json:"-"`
	RefreshToken  string    `gorm:"size:2048" json:"-"`
	DriveFolderId string    `gorm:"size:100" json:"-"`
	LastLogin     time.Time `json:"lastLogin"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

func userCacheKey(id string) string {
	return "User:" + id
}

// GetUser resolves a user by id, through the redis cache when available.
func GetUser(ctx context.Context, id string) (*User, error) {
	var user User
	exists, err := config.GetRedisObject(userCacheKey(id), &user)
	if err == nil && exists {
		return &user, nil
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Where("id = ?", id).Take(&user).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	_ = config.SetRedisObject(userCacheKey(user.ID), &user, 15*time.Minute)
	return &user, nil
}

func GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	db := config.GetDB()
	if err := db.WithContext(ctx).Where("email = ?", email).Take(&user).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &user, nil
}

// SaveTokens persists a fresh credential pair after login.
func (u *User) SaveTokens(ctx context.Context, accessToken, refreshToken string) error {
	u.AccessToken = accessToken
	if refreshToken != "" {
		u.RefreshToken = refreshToken
	}
	u.LastLogin = time.Now()

	db := config.GetDB()
	if err := db.WithContext(ctx).Model(u).Updates(map[string]interface{}{
		"AccessToken":  u.AccessToken,
		"RefreshToken": u.RefreshToken,
		"LastLogin":    u.LastLogin,
	}).Error; err != nil {
		return err
	}
	return config.DeleteRedisKey(userCacheKey(u.ID))
}

// SaveAccessToken persists a refreshed access token. Called by the
// external-API wrapper right after a successful refresh, before the retry.
func (u *User) SaveAccessToken(ctx context.Context, accessToken string) error {
	u.AccessToken = accessToken
	db := config.GetDB()
	if err := db.WithContext(ctx).Model(u).Update("AccessToken", accessToken).Error; err != nil {
		return err
	}
	return config.DeleteRedisKey(userCacheKey(u.ID))
}

// SaveDriveFolder records the application folder id found or created on
// the user's drive at login.
func (u *User) SaveDriveFolder(ctx context.Context, folderId string) error {
	u.DriveFolderId = folderId
	db := config.GetDB()
	if err := db.WithContext(ctx).Model(u).Update("DriveFolderId", folderId).Error; err != nil {
		return err
	}
	return config.DeleteRedisKey(userCacheKey(u.ID))
}
