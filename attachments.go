package main

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/povertyhq/poverty_backend/attachments"
	"github.com/povertyhq/poverty_backend/config"
	"github.com/povertyhq/poverty_backend/jsonapi"
	"github.com/povertyhq/poverty_backend/models"
	"github.com/povertyhq/poverty_backend/utils"
)

type attachmentDocument struct {
	Data struct {
		Type       string                       `json:"type"`
		Attributes attachments.CreateAttributes `json:"attributes" binding:"required"`
	} `json:"data" binding:"required"`
}

// stageAttachmentHandler accepts an upload or scan request and stages the
// resulting payload. The response carries only the staged id and preview;
// the binary stays server side until a business record commits it.
func stageAttachmentHandler(app *application) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var doc attachmentDocument
		if err := c.ShouldBindJSON(&doc); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "malformed document"})
			return
		}

		user, err := sessionUser(ctx)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		staged, err := app.attachments.Stage(ctx, user, doc.Data.Attributes)
		if err != nil {
			config.LogError(app.logger, "attachments", "stage", doc.Data.Attributes.Type, nil, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "staging failed"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"data": gin.H{
				"id":   staged.ID,
				"type": "attachment",
				"attributes": gin.H{
					"preview": staged.Preview,
				},
			},
		})
	}
}

// sessionUser resolves the authenticated user from the request context.
func sessionUser(ctx context.Context) (*models.User, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == "" {
		return nil, utils.ErrorUnauthorized
	}
	return models.GetUser(ctx, userId)
}

// attachmentCommitHooks wraps a resource's hooks for types carrying an
// attachment. On create and update, a staged attachment referenced through
// the "attachment" relationship is committed to the drive first and its
// durable info written into the attributes; a failed commit fails the
// whole write, leaving the entry staged for a retry.
type attachmentCommitHooks struct {
	inner       models.ResourceHooks
	attachments *attachments.Service
}

func (h attachmentCommitHooks) BeforeCreate(ctx context.Context, resource *jsonapi.InboundResource) error {
	if err := h.inner.BeforeCreate(ctx, resource); err != nil {
		return err
	}
	return h.commitAttachment(ctx, resource)
}

func (h attachmentCommitHooks) BeforeUpdate(ctx context.Context, resource *jsonapi.InboundResource) error {
	if err := h.inner.BeforeUpdate(ctx, resource); err != nil {
		return err
	}
	return h.commitAttachment(ctx, resource)
}

func (h attachmentCommitHooks) AfterList(ctx context.Context, records []jsonapi.Record) error {
	return h.inner.AfterList(ctx, records)
}

func (h attachmentCommitHooks) commitAttachment(ctx context.Context, resource *jsonapi.InboundResource) error {
	ref, ok := resource.Relationship("attachment")
	if !ok {
		return nil
	}
	// not a foreign key, so the decoder must never see it
	resource.DropRelationship("attachment")

	user, err := sessionUser(ctx)
	if err != nil {
		return err
	}

	info, err := h.attachments.Commit(ctx, user, ref.Data.ID)
	if err != nil {
		return err
	}
	if resource.Attributes == nil {
		resource.Attributes = map[string]interface{}{}
	}
	resource.Attributes["attachment"] = info
	return nil
}
