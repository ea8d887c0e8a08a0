package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/povertyhq/poverty_backend/config"
	"github.com/povertyhq/poverty_backend/jsonapi"
	"github.com/povertyhq/poverty_backend/models"
	"github.com/povertyhq/poverty_backend/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// registerResource mounts the full CRUD surface of one resource type:
//
//	GET    /api/<plural>          list, with ?include= and ?fields[type]=
//	GET    /api/<plural>/:id      detail
//	POST   /api/<plural>          create
//	PATCH  /api/<plural>/:id      partial update
//	DELETE /api/<plural>/:id      delete
func registerResource[T any](api *gin.RouterGroup, app *application, typeName string, hooks models.ResourceHooks) {
	info, ok := app.registry.Type(typeName)
	if !ok {
		app.logger.WithFields(logrus.Fields{"type": typeName}).Panic("unknown resource type")
	}
	base := "/" + info.Plural

	api.GET(base, listResource[T](app, typeName, hooks))
	api.GET(base+"/:id", getResource[T](app, typeName, hooks))
	api.POST(base, createResource[T](app, typeName, hooks))
	api.PATCH(base+"/:id", updateResource[T](app, typeName, hooks))
	api.DELETE(base+"/:id", deleteResource[T](app, typeName))
}

// parseFields reads the ?fields[type]=a,b,c query parameters into per-type
// selectors. A leading "-" on the first name flips the list to exclusion.
func parseFields(c *gin.Context) map[string]jsonapi.FieldSelector {
	raw := c.QueryMap("fields")
	if len(raw) == 0 {
		return nil
	}
	fields := make(map[string]jsonapi.FieldSelector, len(raw))
	for typeName, list := range raw {
		fields[typeName] = jsonapi.ParseFieldSelector(strings.Split(list, ","))
	}
	return fields
}

func listResource[T any](app *application, typeName string, hooks models.ResourceHooks) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		tree := jsonapi.Compile(c.Query("include"))
		query := config.GetDB().WithContext(ctx)
		for _, path := range tree.Preloads(typeName, app.registry) {
			query = query.Preload(path)
		}

		var items []T
		if err := query.Find(&items).Error; err != nil {
			config.LogError(app.logger, "resources", "list", typeName, nil, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
			return
		}

		records, err := jsonapi.ToRecords(items)
		if err != nil {
			config.LogError(app.logger, "resources", "list", typeName, nil, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "serialization failed"})
			return
		}
		if err := hooks.AfterList(ctx, records); err != nil {
			config.LogError(app.logger, "resources", "list", typeName, nil, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "aggregation failed"})
			return
		}

		c.JSON(http.StatusOK, jsonapi.BuildEnvelope(records, typeName, app.registry, parseFields(c), false))
	}
}

func getResource[T any](app *application, typeName string, hooks models.ResourceHooks) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		tree := jsonapi.Compile(c.Query("include"))
		query := config.GetDB().WithContext(ctx)
		for _, path := range tree.Preloads(typeName, app.registry) {
			query = query.Preload(path)
		}

		var item T
		if err := query.Where("id = ?", c.Param("id")).Take(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
				return
			}
			config.LogError(app.logger, "resources", "get", typeName, nil, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
			return
		}

		record, err := jsonapi.ToRecord(item)
		if err != nil {
			config.LogError(app.logger, "resources", "get", typeName, nil, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "serialization failed"})
			return
		}
		// the same decoration runs on detail so computed totals are
		// consistent with list responses
		if err := hooks.AfterList(ctx, []jsonapi.Record{record}); err != nil {
			config.LogError(app.logger, "resources", "get", typeName, nil, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "aggregation failed"})
			return
		}

		c.JSON(http.StatusOK, jsonapi.BuildEnvelope([]jsonapi.Record{record}, typeName, app.registry, parseFields(c), true))
	}
}

func createResource[T any](app *application, typeName string, hooks models.ResourceHooks) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var doc jsonapi.Document
		if err := c.ShouldBindJSON(&doc); err != nil || doc.Data == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "malformed document"})
			return
		}

		if err := hooks.BeforeCreate(ctx, doc.Data); err != nil {
			respondHookError(c, app, typeName, "create", err)
			return
		}

		model, err := modelFromAttributes[T](jsonapi.Decode(doc.Data))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "malformed attributes"})
			return
		}

		if err := config.GetDB().WithContext(ctx).Create(model).Error; err != nil {
			config.LogError(app.logger, "resources", "create", typeName, doc.Data.Attributes, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "write failed"})
			return
		}

		record, err := jsonapi.ToRecord(model)
		if err != nil {
			config.LogError(app.logger, "resources", "create", typeName, nil, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "serialization failed"})
			return
		}
		c.JSON(http.StatusCreated, jsonapi.BuildEnvelope([]jsonapi.Record{record}, typeName, app.registry, nil, true))
	}
}

func updateResource[T any](app *application, typeName string, hooks models.ResourceHooks) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var doc jsonapi.Document
		if err := c.ShouldBindJSON(&doc); err != nil || doc.Data == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "malformed document"})
			return
		}

		if err := hooks.BeforeUpdate(ctx, doc.Data); err != nil {
			respondHookError(c, app, typeName, "update", err)
			return
		}

		updates, err := typedUpdates[T](jsonapi.Decode(doc.Data))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "malformed attributes"})
			return
		}
		if len(updates) == 0 {
			c.Status(http.StatusNoContent)
			return
		}

		var model T
		result := config.GetDB().WithContext(ctx).Model(&model).Where("id = ?", c.Param("id")).Updates(updates)
		if result.Error != nil {
			config.LogError(app.logger, "resources", "update", typeName, updates, result.Error)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "write failed"})
			return
		}
		if result.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func deleteResource[T any](app *application, typeName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var model T
		result := config.GetDB().WithContext(c.Request.Context()).Where("id = ?", c.Param("id")).Delete(&model)
		if result.Error != nil {
			config.LogError(app.logger, "resources", "delete", typeName, nil, result.Error)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
			return
		}
		if result.RowsAffected == 0 {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "nothing deleted"})
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func respondHookError(c *gin.Context, app *application, typeName, op string, err error) {
	switch {
	case errors.Is(err, utils.ErrorStagedAttachmentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "staged attachment not found"})
	case errors.Is(err, utils.ErrorUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	default:
		config.LogError(app.logger, "resources", op, typeName, nil, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "hook failed"})
	}
}

// modelFromAttributes roundtrips a wire attribute map through the model's
// json tags, giving typed values (decimals, lists, times) for the ORM.
func modelFromAttributes[T any](attrs map[string]interface{}) (*T, error) {
	raw, err := json.Marshal(attrs)
	if err != nil {
		return nil, err
	}
	var model T
	if err := json.Unmarshal(raw, &model); err != nil {
		return nil, err
	}
	return &model, nil
}

// typedUpdates builds a partial update map keyed by Go field names, so the
// ORM resolves columns through its naming strategy and the values keep
// their concrete types. Only fields actually present in attrs are written;
// the id and unpersisted fields are never updatable.
func typedUpdates[T any](attrs map[string]interface{}) (map[string]interface{}, error) {
	model, err := modelFromAttributes[T](attrs)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	v := reflect.ValueOf(model).Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() || field.Name == "ID" {
			continue
		}
		if field.Tag.Get("gorm") == "-" {
			continue
		}
		jsonName := strings.Split(field.Tag.Get("json"), ",")[0]
		if jsonName == "" || jsonName == "-" {
			continue
		}
		if _, present := attrs[jsonName]; !present {
			continue
		}
		// joined records ride along in attrs only when a preload was
		// serialized back; they are never written
		if strings.Contains(field.Tag.Get("gorm"), "foreignKey:") {
			continue
		}
		updates[field.Name] = v.Field(i).Interface()
	}
	return updates, nil
}
