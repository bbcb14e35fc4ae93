package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/penpal-app/penpal-api/internal/constants"
	"github.com/penpal-app/penpal-api/internal/database"
	"github.com/penpal-app/penpal-api/internal/dto"
	"github.com/penpal-app/penpal-api/internal/models"
	"github.com/penpal-app/penpal-api/internal/repository"
	"github.com/penpal-app/penpal-api/internal/services"
)

type tagTestEnv struct {
	db     *gorm.DB
	router *gin.Engine
}

func setupTagTestEnv(t *testing.T) tagTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, database.MigrateDB(db))

	database.SetDB(db)

	tagRepo := repository.NewTagRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	tagService := services.NewTagService(tagRepo)
	auditService := services.NewAuditService(auditRepo)
	handler := NewTagHandler(tagService, auditService)

	r := gin.New()
	// Tag mutations require an authenticated user; the test middleware
	// stands in for RequireAuth.
	r.Use(func(c *gin.Context) {
		c.Set(constants.ContextKeyUserID, uint64(1))
		c.Next()
	})
	r.GET("/api/documents/tags", handler.ListTags)
	r.POST("/api/documents/tags", handler.CreateTag)
	r.GET("/api/documents/tags/:id", handler.GetTag)
	r.PATCH("/api/documents/tags/:id", handler.UpdateTag)
	r.DELETE("/api/documents/tags/:id", handler.DeleteTag)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return tagTestEnv{db: db, router: r}
}

func (env tagTestEnv) do(t *testing.T, method, url string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if payload != nil {
		body, err := json.Marshal(payload)
		require.NoError(t, err)
		req = httptest.NewRequest(method, url, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func (env tagTestEnv) createTag(t *testing.T, name string) dto.TagDTO {
	t.Helper()
	w := env.do(t, http.MethodPost, "/api/documents/tags", map[string]string{"name": name})
	require.Equal(t, http.StatusCreated, w.Code)

	var tag dto.TagDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tag))
	return tag
}

func TestTagHandler_Create_GeneratesSlug(t *testing.T) {
	env := setupTagTestEnv(t)

	tag := env.createTag(t, "Go Lang")
	require.Equal(t, "Go Lang", tag.Name)
	require.Equal(t, "go-lang", tag.Slug)
}

func TestTagHandler_Create_SlugCollisionGetsSuffix(t *testing.T) {
	env := setupTagTestEnv(t)

	first := env.createTag(t, "Go Lang")
	require.Equal(t, "go-lang", first.Slug)

	// A different name that slugifies to the same value.
	second := env.createTag(t, "go lang!")
	require.Equal(t, "go-lang-1", second.Slug)

	third := env.createTag(t, "GO LANG?")
	require.Equal(t, "go-lang-2", third.Slug)
}

func TestTagHandler_Create_DuplicateName(t *testing.T) {
	env := setupTagTestEnv(t)
	env.createTag(t, "golang")

	w := env.do(t, http.MethodPost, "/api/documents/tags", map[string]string{"name": "golang"})
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestTagHandler_Create_BlankName(t *testing.T) {
	env := setupTagTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/documents/tags", map[string]string{"name": "   "})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "name")
}

func TestTagHandler_List_OrderedByName(t *testing.T) {
	env := setupTagTestEnv(t)
	env.createTag(t, "zig")
	env.createTag(t, "ada")
	env.createTag(t, "go")

	w := env.do(t, http.MethodGet, "/api/documents/tags", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Tags []dto.TagDTO `json:"tags"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response.Tags, 3)
	require.Equal(t, "ada", response.Tags[0].Name)
	require.Equal(t, "go", response.Tags[1].Name)
	require.Equal(t, "zig", response.Tags[2].Name)
}

func TestTagHandler_Rename_RederivesSlug(t *testing.T) {
	env := setupTagTestEnv(t)
	tag := env.createTag(t, "Golang Tips")

	w := env.do(t, http.MethodPatch, fmt.Sprintf("/api/documents/tags/%d", tag.ID), map[string]string{
		"name": "Go Tips",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var renamed dto.TagDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &renamed))
	require.Equal(t, "Go Tips", renamed.Name)
	require.Equal(t, "go-tips", renamed.Slug)
}

func TestTagHandler_Rename_KeepingOwnNameIsFine(t *testing.T) {
	env := setupTagTestEnv(t)
	tag := env.createTag(t, "golang")

	w := env.do(t, http.MethodPatch, fmt.Sprintf("/api/documents/tags/%d", tag.ID), map[string]string{
		"name": "golang",
	})
	require.Equal(t, http.StatusOK, w.Code)
}

func TestTagHandler_Delete_SlugStaysReserved(t *testing.T) {
	env := setupTagTestEnv(t)
	tag := env.createTag(t, "golang")

	w := env.do(t, http.MethodDelete, fmt.Sprintf("/api/documents/tags/%d", tag.ID), nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	// Deleted tags disappear from lookups...
	w = env.do(t, http.MethodGet, fmt.Sprintf("/api/documents/tags/%d", tag.ID), nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	// ...but keep their slug reserved, so a recreated tag gets a suffix.
	recreated := env.createTag(t, "Golang")
	require.Equal(t, "golang-1", recreated.Slug)

	var count int64
	require.NoError(t, env.db.Model(&models.Tag{}).Count(&count).Error)
	require.Equal(t, int64(2), count)
}
