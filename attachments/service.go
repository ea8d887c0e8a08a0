package attachments

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/povertyhq/poverty_backend/config"
	"github.com/povertyhq/poverty_backend/gdrive"
	"github.com/povertyhq/poverty_backend/models"
	"github.com/povertyhq/poverty_backend/utils"
	"github.com/sirupsen/logrus"
)

// CreateAttributes is the inbound attachment payload. Type selects the
// media source: "scan" triggers the scanning service, "media" decodes the
// caller-supplied base64 contents.
type CreateAttributes struct {
	Title       string `json:"title"`
	Type        string `json:"type" binding:"required,oneof=scan media"`
	ContentType string `json:"contentType" binding:"omitempty,previewable"`
	Contents    string `json:"contents" binding:"omitempty,base64"`
}

// Scanner acquires a document from the scanning service.
type Scanner interface {
	Scan(ctx context.Context) ([]byte, string, error)
}

// Uploader moves a committed payload to the user's drive.
type Uploader interface {
	Upload(ctx context.Context, user *models.User, title, contentType string, media []byte) (*gdrive.File, error)
}

// Service implements the staged attachment lifecycle: Stage acquires the
// media and parks it in memory, Commit uploads it to the drive and removes
// it. Staged -> Committed is terminal; an entry that is never committed is
// simply abandoned.
type Service struct {
	logger    *logrus.Logger
	store     *Store
	scant     Scanner
	previewer *Previewer
	drive     Uploader
}

func NewService(store *Store, scant Scanner, previewer *Previewer, drive Uploader) *Service {
	return &Service{
		logger:    config.GetLogger(),
		store:     store,
		scant:     scant,
		previewer: previewer,
		drive:     drive,
	}
}

// Stage acquires the binary payload, derives its preview and parks the
// attachment under a fresh opaque id.
func (s *Service) Stage(ctx context.Context, user *models.User, attrs CreateAttributes) (*StagedAttachment, error) {
	media, contentType, err := s.getMedia(ctx, attrs)
	if err != nil {
		return nil, err
	}

	preview, err := s.previewer.Preview(ctx, media, contentType)
	if err != nil {
		s.logger.WithFields(logrus.Fields{"error": err.Error()}).Debug("Failed to create preview")
		return nil, err
	}

	attachment := &StagedAttachment{
		UserID:      user.ID,
		Media:       media,
		ContentType: contentType,
		Length:      len(media),
		Title:       attrs.Title,
		Preview:     preview,
	}
	id := s.store.Put(attachment)
	s.logger.WithFields(logrus.Fields{"id": id}).Debug("Staged attachment created")
	return attachment, nil
}

// Commit uploads the staged payload to the user's drive folder and removes
// the staging entry. Committing is exactly-once per id: the entry is gone
// after the first success, so a second attempt fails with not-found. A
// failed upload leaves the entry staged so the caller may retry.
func (s *Service) Commit(ctx context.Context, user *models.User, stagedId string) (models.AttachmentInfo, error) {
	attachment, ok := s.store.Get(stagedId)
	if !ok {
		return models.AttachmentInfo{}, utils.ErrorStagedAttachmentNotFound
	}

	file, err := s.drive.Upload(ctx, user, attachment.Title, attachment.ContentType, attachment.Media)
	if err != nil {
		return models.AttachmentInfo{}, err
	}

	s.store.Remove(stagedId)
	s.logger.WithFields(logrus.Fields{"id": file.ID}).Debug("File created successfully on drive")

	return models.AttachmentInfo{
		FileId:  file.ID,
		Url:     file.Url,
		Size:    file.Size,
		Preview: attachment.Preview,
	}, nil
}

func (s *Service) getMedia(ctx context.Context, attrs CreateAttributes) ([]byte, string, error) {
	if attrs.Type == "scan" {
		s.logger.Debug("Submitting scan request")
		return s.scant.Scan(ctx)
	}

	media, err := base64.StdEncoding.DecodeString(attrs.Contents)
	if err != nil {
		return nil, "", fmt.Errorf("bad media contents: %w", err)
	}
	s.logger.WithFields(logrus.Fields{
		"size":        len(media),
		"contentType": attrs.ContentType,
	}).Debug("Uploaded media received successfully")
	return media, attrs.ContentType, nil
}
