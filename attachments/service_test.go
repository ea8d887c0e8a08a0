package attachments

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/povertyhq/poverty_backend/gdrive"
	"github.com/povertyhq/poverty_backend/models"
	"github.com/povertyhq/poverty_backend/utils"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			img.Set(x, y, color.RGBA{R: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

type fakeUploader struct {
	calls int
	err   error
	file  *gdrive.File
}

func (f *fakeUploader) Upload(ctx context.Context, user *models.User, title, contentType string, media []byte) (*gdrive.File, error) {
	f.calls = f.calls + 1
	if f.err != nil {
		return nil, f.err
	}
	return f.file, nil
}

type fakeScanner struct {
	media []byte
	err   error
}

func (f *fakeScanner) Scan(ctx context.Context) ([]byte, string, error) {
	if f.err != nil {
		return nil, "", f.err
	}
	return f.media, "application/pdf", nil
}

func mediaAttrs(t *testing.T) CreateAttributes {
	return CreateAttributes{
		Title:       "receipt",
		Type:        "media",
		ContentType: "image/png",
		Contents:    base64.StdEncoding.EncodeToString(pngBytes(t)),
	}
}

func TestStageAndCommitOnce(t *testing.T) {
	store := NewStore()
	uploader := &fakeUploader{file: &gdrive.File{ID: "f1", Url: "https://drive/f1", Size: 42}}
	service := NewService(store, &fakeScanner{}, NewPreviewer(), uploader)
	user := &models.User{ID: "u1"}

	staged, err := service.Stage(context.Background(), user, mediaAttrs(t))
	if err != nil {
		t.Fatal(err)
	}
	if staged.ID == "" || staged.Preview == "" {
		t.Fatalf("incomplete staged attachment: %+v", staged)
	}
	if store.Len() != 1 {
		t.Fatalf("expected 1 staged entry, got %d", store.Len())
	}

	info, err := service.Commit(context.Background(), user, staged.ID)
	if err != nil {
		t.Fatal(err)
	}
	if info.FileId != "f1" || info.Url != "https://drive/f1" || info.Size != 42 {
		t.Fatalf("unexpected attachment info: %+v", info)
	}
	if info.Preview != staged.Preview {
		t.Fatal("preview must carry over to the committed info")
	}
	if store.Len() != 0 {
		t.Fatal("commit must remove the staged entry")
	}

	// second commit of the same id fails: committing is exactly-once
	if _, err := service.Commit(context.Background(), user, staged.ID); !errors.Is(err, utils.ErrorStagedAttachmentNotFound) {
		t.Fatalf("expected not-found on second commit, got %v", err)
	}
	if uploader.calls != 1 {
		t.Fatalf("expected a single upload, got %d", uploader.calls)
	}
}

func TestCommitUnknownId(t *testing.T) {
	service := NewService(NewStore(), &fakeScanner{}, NewPreviewer(), &fakeUploader{})

	_, err := service.Commit(context.Background(), &models.User{ID: "u1"}, "nope")
	if !errors.Is(err, utils.ErrorStagedAttachmentNotFound) {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestCommitFailedUploadLeavesEntryStaged(t *testing.T) {
	store := NewStore()
	uploadErr := errors.New("drive down")
	uploader := &fakeUploader{err: uploadErr}
	service := NewService(store, &fakeScanner{}, NewPreviewer(), uploader)
	user := &models.User{ID: "u1"}

	staged, err := service.Stage(context.Background(), user, mediaAttrs(t))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := service.Commit(context.Background(), user, staged.ID); !errors.Is(err, uploadErr) {
		t.Fatalf("expected the upload error, got %v", err)
	}
	if store.Len() != 1 {
		t.Fatal("a failed commit must leave the entry staged")
	}

	// the caller may retry once the drive recovers
	uploader.err = nil
	uploader.file = &gdrive.File{ID: "f2", Url: "https://drive/f2", Size: 7}
	info, err := service.Commit(context.Background(), user, staged.ID)
	if err != nil {
		t.Fatal(err)
	}
	if info.FileId != "f2" {
		t.Fatalf("unexpected info after retry: %+v", info)
	}
	if store.Len() != 0 {
		t.Fatal("retry success must remove the entry")
	}
}

func TestStageBadBase64(t *testing.T) {
	service := NewService(NewStore(), &fakeScanner{}, NewPreviewer(), &fakeUploader{})

	attrs := CreateAttributes{Type: "media", ContentType: "image/png", Contents: "not base64!!!"}
	if _, err := service.Stage(context.Background(), &models.User{ID: "u1"}, attrs); err == nil {
		t.Fatal("expected an error for invalid base64 contents")
	}
}

func TestStageScanUsesScanner(t *testing.T) {
	store := NewStore()
	previewer := &Previewer{convert: func(ctx context.Context, src, dst string) error {
		return imaging.Save(imaging.New(10, 10, color.Gray{Y: 128}), dst)
	}}
	scanner := &fakeScanner{media: []byte("%PDF-1.4 fake")}
	service := NewService(store, scanner, previewer, &fakeUploader{})

	staged, err := service.Stage(context.Background(), &models.User{ID: "u1"}, CreateAttributes{Title: "scan", Type: "scan"})
	if err != nil {
		t.Fatal(err)
	}
	if staged.ContentType != "application/pdf" {
		t.Fatalf("scan media must be pdf, got %s", staged.ContentType)
	}
	if staged.Length != len(scanner.media) {
		t.Fatalf("length mismatch: %d", staged.Length)
	}
	if staged.Preview == "" {
		t.Fatal("expected a preview for the scanned pdf")
	}
}

func TestStageScannerFailure(t *testing.T) {
	scanErr := errors.New("scanner offline")
	service := NewService(NewStore(), &fakeScanner{err: scanErr}, NewPreviewer(), &fakeUploader{})

	if _, err := service.Stage(context.Background(), &models.User{ID: "u1"}, CreateAttributes{Type: "scan"}); !errors.Is(err, scanErr) {
		t.Fatalf("expected the scanner error, got %v", err)
	}
}
