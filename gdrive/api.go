package gdrive

import (
	"bytes"
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const folderMimeType = "application/vnd.google-apps.folder"

// driveAPI is the production API backed by the Google Drive v3 service.
// A service is built per call with the caller's current access token so
// a refreshed credential takes effect on the retry.
type driveAPI struct{}

func NewDriveAPI() API {
	return driveAPI{}
}

func (driveAPI) service(ctx context.Context, accessToken string) (*drive.Service, error) {
	source := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})
	return drive.NewService(ctx, option.WithTokenSource(source))
}

func (a driveAPI) ListFolders(ctx context.Context, accessToken, name string) ([]string, error) {
	srv, err := a.service(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("name = '%s' and mimeType = '%s' and trashed = false", name, folderMimeType)
	list, err := srv.Files.List().Q(query).Fields("files(id)").Context(ctx).Do()
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(list.Files))
	for _, f := range list.Files {
		ids = append(ids, f.Id)
	}
	return ids, nil
}

func (a driveAPI) CreateFolder(ctx context.Context, accessToken, name string) (string, error) {
	srv, err := a.service(ctx, accessToken)
	if err != nil {
		return "", err
	}

	folder, err := srv.Files.Create(&drive.File{
		Name:     name,
		MimeType: folderMimeType,
	}).Fields("id").Context(ctx).Do()
	if err != nil {
		return "", err
	}
	return folder.Id, nil
}

func (a driveAPI) InsertFile(ctx context.Context, accessToken string, meta FileMeta, media []byte) (*File, error) {
	srv, err := a.service(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	file := &drive.File{
		Name:        meta.Title,
		Description: meta.Description,
	}
	if meta.FolderId != "" {
		file.Parents = []string{meta.FolderId}
	}

	inserted, err := srv.Files.Create(file).
		Media(bytes.NewReader(media), googleapi.ContentType(meta.MimeType)).
		Fields("id, webViewLink, size").
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}

	return &File{
		ID:   inserted.Id,
		Url:  inserted.WebViewLink,
		Size: inserted.Size,
	}, nil
}
