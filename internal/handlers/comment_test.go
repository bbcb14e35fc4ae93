package handlers

import (
	"bytes"
	"encoding/json"
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

type commentTestEnv struct {
	db     *gorm.DB
	router *gin.Engine
}

func setupCommentTestEnv(t *testing.T) commentTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, database.MigrateDB(db))

	database.SetDB(db)

	docRepo := repository.NewDocumentRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	commentService := services.NewCommentService(commentRepo, docRepo)
	auditService := services.NewAuditService(auditRepo)
	handler := NewCommentHandler(commentService, auditService)

	r := gin.New()
	r.GET("/api/documents/docs/:id/comments", handler.ListComments)
	r.POST("/api/documents/docs/:id/comments", handler.CreateComment)
	r.GET("/api/documents/comments/:id", handler.GetComment)
	r.PATCH("/api/documents/comments/:id", handler.UpdateComment)
	r.DELETE("/api/documents/comments/:id", handler.DeleteComment)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return commentTestEnv{db: db, router: r}
}

func (env commentTestEnv) createUser(t *testing.T, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "irrelevant",
	}
	require.NoError(t, env.db.Create(user).Error)
	return user
}

func (env commentTestEnv) createDocument(t *testing.T, authorID uint64, title string, isPublic bool) *models.Document {
	t.Helper()
	doc := &models.Document{
		AuthorID:     authorID,
		Title:        title,
		Content:      "content",
		DocumentType: models.DocumentTypeBlog,
		EditorType:   models.EditorTypeHybrid,
		Status:       models.DocumentStatusDraft,
		IsPublic:     isPublic,
	}
	require.NoError(t, env.db.Create(doc).Error)
	return doc
}

func (env commentTestEnv) do(t *testing.T, method, url string, payload any, userID uint64) *httptest.ResponseRecorder {
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
	if userID != 0 {
		authed := gin.New()
		authed.Use(func(c *gin.Context) {
			c.Set(constants.ContextKeyUserID, userID)
			c.Next()
		})
		for _, route := range env.router.Routes() {
			authed.Handle(route.Method, route.Path, route.HandlerFunc)
		}
		authed.ServeHTTP(w, req)
		return w
	}
	env.router.ServeHTTP(w, req)
	return w
}

func TestCommentHandler_CreateAndList(t *testing.T) {
	env := setupCommentTestEnv(t)
	author := env.createUser(t, "author")
	reader := env.createUser(t, "reader")
	doc := env.createDocument(t, author.ID, "Public Doc", true)

	w := env.do(t, http.MethodPost, "/api/documents/docs/"+doc.ID.String()+"/comments", map[string]string{
		"body": "first!",
	}, reader.ID)
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(t, http.MethodPost, "/api/documents/docs/"+doc.ID.String()+"/comments", map[string]string{
		"body": "second",
	}, author.ID)
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(t, http.MethodGet, "/api/documents/docs/"+doc.ID.String()+"/comments", nil, 0)
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Comments []dto.CommentDTO `json:"comments"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response.Comments, 2)
	// Oldest first.
	require.Equal(t, "first!", response.Comments[0].Body)
	require.NotNil(t, response.Comments[0].Author)
	require.Equal(t, "reader", response.Comments[0].Author.Username)
}

func TestCommentHandler_Create_PrivateDocumentForbidden(t *testing.T) {
	env := setupCommentTestEnv(t)
	author := env.createUser(t, "author")
	stranger := env.createUser(t, "stranger")
	doc := env.createDocument(t, author.ID, "Private Doc", false)

	w := env.do(t, http.MethodPost, "/api/documents/docs/"+doc.ID.String()+"/comments", map[string]string{
		"body": "sneaky",
	}, stranger.ID)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestCommentHandler_Create_BlankBody(t *testing.T) {
	env := setupCommentTestEnv(t)
	author := env.createUser(t, "author")
	doc := env.createDocument(t, author.ID, "Public Doc", true)

	w := env.do(t, http.MethodPost, "/api/documents/docs/"+doc.ID.String()+"/comments", map[string]string{
		"body": "   ",
	}, author.ID)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "body")
}

func TestCommentHandler_ListOnDeletedDocument(t *testing.T) {
	env := setupCommentTestEnv(t)
	author := env.createUser(t, "author")
	doc := env.createDocument(t, author.ID, "Doomed Doc", true)

	w := env.do(t, http.MethodPost, "/api/documents/docs/"+doc.ID.String()+"/comments", map[string]string{
		"body": "will be orphaned",
	}, author.ID)
	require.Equal(t, http.StatusCreated, w.Code)

	// Soft-delete the parent directly; its comments must become unreachable.
	require.NoError(t, env.db.Model(doc).Update("soft_delete", true).Error)

	w = env.do(t, http.MethodGet, "/api/documents/docs/"+doc.ID.String()+"/comments", nil, author.ID)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestCommentHandler_UpdateByCommentAuthor(t *testing.T) {
	env := setupCommentTestEnv(t)
	author := env.createUser(t, "author")
	reader := env.createUser(t, "reader")
	doc := env.createDocument(t, author.ID, "Public Doc", true)

	w := env.do(t, http.MethodPost, "/api/documents/docs/"+doc.ID.String()+"/comments", map[string]string{
		"body": "tpyo",
	}, reader.ID)
	require.Equal(t, http.StatusCreated, w.Code)

	var created dto.CommentDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = env.do(t, http.MethodPatch, "/api/documents/comments/"+created.ID.String(), map[string]string{
		"body": "typo",
	}, reader.ID)
	require.Equal(t, http.StatusOK, w.Code)

	var updated dto.CommentDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	require.Equal(t, "typo", updated.Body)
}

func TestCommentHandler_DocumentAuthorModeratesComments(t *testing.T) {
	env := setupCommentTestEnv(t)
	author := env.createUser(t, "author")
	reader := env.createUser(t, "reader")
	doc := env.createDocument(t, author.ID, "Public Doc", true)

	w := env.do(t, http.MethodPost, "/api/documents/docs/"+doc.ID.String()+"/comments", map[string]string{
		"body": "rude remark",
	}, reader.ID)
	require.Equal(t, http.StatusCreated, w.Code)

	var created dto.CommentDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	// The document author may delete comments they did not write.
	w = env.do(t, http.MethodDelete, "/api/documents/comments/"+created.ID.String(), nil, author.ID)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(t, http.MethodGet, "/api/documents/comments/"+created.ID.String(), nil, reader.ID)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestCommentHandler_UnrelatedUserCannotModify(t *testing.T) {
	env := setupCommentTestEnv(t)
	author := env.createUser(t, "author")
	reader := env.createUser(t, "reader")
	stranger := env.createUser(t, "stranger")
	doc := env.createDocument(t, author.ID, "Public Doc", true)

	w := env.do(t, http.MethodPost, "/api/documents/docs/"+doc.ID.String()+"/comments", map[string]string{
		"body": "a comment",
	}, reader.ID)
	require.Equal(t, http.StatusCreated, w.Code)

	var created dto.CommentDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = env.do(t, http.MethodPatch, "/api/documents/comments/"+created.ID.String(), map[string]string{
		"body": "vandalism",
	}, stranger.ID)
	require.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodDelete, "/api/documents/comments/"+created.ID.String(), nil, stranger.ID)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestCommentHandler_GetOnPrivateDocument(t *testing.T) {
	env := setupCommentTestEnv(t)
	author := env.createUser(t, "author")
	stranger := env.createUser(t, "stranger")
	doc := env.createDocument(t, author.ID, "Private Doc", false)

	w := env.do(t, http.MethodPost, "/api/documents/docs/"+doc.ID.String()+"/comments", map[string]string{
		"body": "author's own note",
	}, author.ID)
	require.Equal(t, http.StatusCreated, w.Code)

	var created dto.CommentDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	// Comment visibility follows the document's read rule.
	w = env.do(t, http.MethodGet, "/api/documents/comments/"+created.ID.String(), nil, stranger.ID)
	require.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodGet, "/api/documents/comments/"+created.ID.String(), nil, author.ID)
	require.Equal(t, http.StatusOK, w.Code)
}
