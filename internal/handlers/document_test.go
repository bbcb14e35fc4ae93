package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
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

// DocumentHandlerTestSuite defines the test suite for DocumentHandler
type DocumentHandlerTestSuite struct {
	suite.Suite
	db      *gorm.DB
	handler *DocumentHandler
	router  *gin.Engine
}

// SetupTest runs before each test
func (suite *DocumentHandlerTestSuite) SetupTest() {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	suite.Require().NoError(err)
	suite.Require().NoError(database.MigrateDB(suite.db))

	database.SetDB(suite.db)

	docRepo := repository.NewDocumentRepository(suite.db)
	tagRepo := repository.NewTagRepository(suite.db)
	auditRepo := repository.NewAuditRepository(suite.db)
	docService := services.NewDocumentService(docRepo, tagRepo)
	auditService := services.NewAuditService(auditRepo)
	suite.handler = NewDocumentHandler(docService, auditService)

	gin.SetMode(gin.TestMode)

	suite.router = gin.New()
	suite.router.GET("/api/documents/docs", suite.handler.ListDocuments)
	suite.router.POST("/api/documents/docs", suite.handler.CreateDocument)
	suite.router.GET("/api/documents/docs/:id", suite.handler.GetDocument)
	suite.router.PATCH("/api/documents/docs/:id", suite.handler.UpdateDocument)
	suite.router.DELETE("/api/documents/docs/:id", suite.handler.DeleteDocument)
	suite.router.GET("/api/documents/stats", suite.handler.DocumentStats)
}

// TearDownTest runs after each test
func (suite *DocumentHandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

// Helper function to create test data
func (suite *DocumentHandlerTestSuite) createTestUser(username string) *models.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte("supersecret"), bcrypt.MinCost)
	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: string(hash),
	}
	suite.db.Create(user)
	return user
}

func (suite *DocumentHandlerTestSuite) createTestDocument(authorID uint64, title string, isPublic bool) *models.Document {
	doc := &models.Document{
		AuthorID:     authorID,
		Title:        title,
		Content:      "some stored content",
		DocumentType: models.DocumentTypeBlog,
		EditorType:   models.EditorTypeHybrid,
		Status:       models.DocumentStatusDraft,
		IsPublic:     isPublic,
		WordCount:    3,
		ReadTime:     "1 min read",
	}
	suite.db.Create(doc)
	return doc
}

func (suite *DocumentHandlerTestSuite) createTestTag(name, slug string) *models.Tag {
	tag := &models.Tag{Name: name, Slug: slug}
	suite.db.Create(tag)
	return tag
}

// do issues a request, optionally authenticated as userID (0 = anonymous).
func (suite *DocumentHandlerTestSuite) do(method, url string, payload any, userID uint64) *httptest.ResponseRecorder {
	var req *http.Request
	if payload != nil {
		body, err := json.Marshal(payload)
		suite.Require().NoError(err)
		req = httptest.NewRequest(method, url, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}

	w := httptest.NewRecorder()
	if userID != 0 {
		// Simulates RequireAuth having verified the token.
		authed := gin.New()
		authed.Use(func(c *gin.Context) {
			c.Set(constants.ContextKeyUserID, userID)
			c.Next()
		})
		for _, route := range suite.router.Routes() {
			authed.Handle(route.Method, route.Path, route.HandlerFunc)
		}
		authed.ServeHTTP(w, req)
		return w
	}
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *DocumentHandlerTestSuite) TestCreateDocument_DerivesWordCountAndReadTime() {
	user := suite.createTestUser("writer")

	w := suite.do(http.MethodPost, "/api/documents/docs", map[string]any{
		"title":   "Go Concurrency Patterns",
		"content": "one two three four five",
	}, user.ID)
	suite.Require().Equal(http.StatusCreated, w.Code)

	var response dto.DocumentDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.Equal(uint(5), response.WordCount)
	suite.Equal("1 min read", response.ReadTime)
	suite.Equal(models.DocumentTypeBlog, response.DocumentType)
	suite.Equal(models.EditorTypeHybrid, response.EditorType)
	suite.Equal(models.DocumentStatusDraft, response.Status)
	suite.False(response.IsPublic)
}

func (suite *DocumentHandlerTestSuite) TestCreateDocument_LongContentReadTime() {
	user := suite.createTestUser("writer")

	content := ""
	for i := 0; i < 450; i++ {
		content += fmt.Sprintf("word%d ", i)
	}

	w := suite.do(http.MethodPost, "/api/documents/docs", map[string]any{
		"title":   "A Long Read",
		"content": content,
	}, user.ID)
	suite.Require().Equal(http.StatusCreated, w.Code)

	var response dto.DocumentDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.Equal(uint(450), response.WordCount)
	suite.Equal("2 min read", response.ReadTime)
}

func (suite *DocumentHandlerTestSuite) TestCreateDocument_TitleTrimmedAndTooShort() {
	user := suite.createTestUser("writer")

	// Whitespace padding does not rescue a short title.
	w := suite.do(http.MethodPost, "/api/documents/docs", map[string]any{
		"title":   "  ab  ",
		"content": "real content",
	}, user.ID)
	suite.Require().Equal(http.StatusBadRequest, w.Code)
	suite.Contains(w.Body.String(), "title")

	// Length is counted in characters, not bytes: two accented letters are
	// still too short even though they encode to four bytes.
	w = suite.do(http.MethodPost, "/api/documents/docs", map[string]any{
		"title":   "éé",
		"content": "real content",
	}, user.ID)
	suite.Require().Equal(http.StatusBadRequest, w.Code)
	suite.Contains(w.Body.String(), "title")

	// Three multibyte characters pass.
	w = suite.do(http.MethodPost, "/api/documents/docs", map[string]any{
		"title":   "ééé",
		"content": "real content",
	}, user.ID)
	suite.Require().Equal(http.StatusCreated, w.Code)
}

func (suite *DocumentHandlerTestSuite) TestCreateDocument_BlankContent() {
	user := suite.createTestUser("writer")

	w := suite.do(http.MethodPost, "/api/documents/docs", map[string]any{
		"title":   "Valid Title",
		"content": "   ",
	}, user.ID)
	suite.Require().Equal(http.StatusBadRequest, w.Code)
	suite.Contains(w.Body.String(), "content")
}

func (suite *DocumentHandlerTestSuite) TestCreateDocument_DuplicateTitle() {
	user := suite.createTestUser("writer")
	suite.createTestDocument(user.ID, "My Title", false)

	w := suite.do(http.MethodPost, "/api/documents/docs", map[string]any{
		"title":   "My Title",
		"content": "different content",
	}, user.ID)
	suite.Require().Equal(http.StatusConflict, w.Code)
	suite.Contains(w.Body.String(), "You already have a document with this title.")
}

func (suite *DocumentHandlerTestSuite) TestCreateDocument_SameTitleDifferentAuthors() {
	alice := suite.createTestUser("alice")
	bob := suite.createTestUser("bob")
	suite.createTestDocument(alice.ID, "Shared Title", false)

	w := suite.do(http.MethodPost, "/api/documents/docs", map[string]any{
		"title":   "Shared Title",
		"content": "bob's content",
	}, bob.ID)
	suite.Equal(http.StatusCreated, w.Code)
}

func (suite *DocumentHandlerTestSuite) TestCreateDocument_TitleReusableAfterDelete() {
	user := suite.createTestUser("writer")
	doc := suite.createTestDocument(user.ID, "Recycled Title", false)

	w := suite.do(http.MethodDelete, "/api/documents/docs/"+doc.ID.String(), nil, user.ID)
	suite.Require().Equal(http.StatusNoContent, w.Code)

	w = suite.do(http.MethodPost, "/api/documents/docs", map[string]any{
		"title":   "Recycled Title",
		"content": "fresh content",
	}, user.ID)
	suite.Equal(http.StatusCreated, w.Code)
}

func (suite *DocumentHandlerTestSuite) TestCreateDocument_UnknownTag() {
	user := suite.createTestUser("writer")

	w := suite.do(http.MethodPost, "/api/documents/docs", map[string]any{
		"title":   "Tagged Document",
		"content": "content",
		"tag_ids": []uint64{999},
	}, user.ID)
	suite.Require().Equal(http.StatusBadRequest, w.Code)
	suite.Contains(w.Body.String(), "tag_ids")
}

func (suite *DocumentHandlerTestSuite) TestCreateDocument_WithTags() {
	user := suite.createTestUser("writer")
	tag := suite.createTestTag("golang", "golang")

	w := suite.do(http.MethodPost, "/api/documents/docs", map[string]any{
		"title":   "Tagged Document",
		"content": "content",
		"tag_ids": []uint64{tag.ID},
	}, user.ID)
	suite.Require().Equal(http.StatusCreated, w.Code)

	var response dto.DocumentDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.Require().Len(response.Tags, 1)
	suite.Equal("golang", response.Tags[0].Name)
}

func (suite *DocumentHandlerTestSuite) TestCreateDocument_InvalidStatus() {
	user := suite.createTestUser("writer")

	w := suite.do(http.MethodPost, "/api/documents/docs", map[string]any{
		"title":   "Valid Title",
		"content": "content",
		"status":  "launched",
	}, user.ID)
	suite.Require().Equal(http.StatusBadRequest, w.Code)
	suite.Contains(w.Body.String(), "status")
}

func (suite *DocumentHandlerTestSuite) TestListDocuments_AnonymousSeesPublicOnly() {
	user := suite.createTestUser("writer")
	suite.createTestDocument(user.ID, "Public Doc", true)
	suite.createTestDocument(user.ID, "Private Doc", false)

	w := suite.do(http.MethodGet, "/api/documents/docs", nil, 0)
	suite.Require().Equal(http.StatusOK, w.Code)

	var response struct {
		Documents []dto.DocumentListItemDTO `json:"documents"`
	}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.Require().Len(response.Documents, 1)
	suite.Equal("Public Doc", response.Documents[0].Title)
}

func (suite *DocumentHandlerTestSuite) TestListDocuments_AuthorSeesOwnPrivate() {
	alice := suite.createTestUser("alice")
	bob := suite.createTestUser("bob")
	suite.createTestDocument(alice.ID, "Alice Private", false)
	suite.createTestDocument(bob.ID, "Bob Private", false)
	suite.createTestDocument(bob.ID, "Bob Public", true)

	w := suite.do(http.MethodGet, "/api/documents/docs", nil, alice.ID)
	suite.Require().Equal(http.StatusOK, w.Code)

	var response struct {
		Documents []dto.DocumentListItemDTO `json:"documents"`
	}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))

	titles := make([]string, len(response.Documents))
	for i, d := range response.Documents {
		titles[i] = d.Title
	}
	suite.ElementsMatch([]string{"Alice Private", "Bob Public"}, titles)
}

func (suite *DocumentHandlerTestSuite) TestListDocuments_SearchAndFilter() {
	user := suite.createTestUser("writer")
	suite.createTestDocument(user.ID, "Kubernetes Guide", true)
	suite.createTestDocument(user.ID, "Gardening Notes", true)

	w := suite.do(http.MethodGet, "/api/documents/docs?search=kubernetes", nil, 0)
	suite.Require().Equal(http.StatusOK, w.Code)

	var response struct {
		Documents  []dto.DocumentListItemDTO `json:"documents"`
		Pagination struct {
			Total int64 `json:"total"`
		} `json:"pagination"`
	}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.Require().Len(response.Documents, 1)
	suite.Equal("Kubernetes Guide", response.Documents[0].Title)
	suite.Equal(int64(1), response.Pagination.Total)
}

func (suite *DocumentHandlerTestSuite) TestGetDocument_PrivateOtherViewer() {
	alice := suite.createTestUser("alice")
	bob := suite.createTestUser("bob")
	doc := suite.createTestDocument(alice.ID, "Alice Private", false)

	w := suite.do(http.MethodGet, "/api/documents/docs/"+doc.ID.String(), nil, bob.ID)
	suite.Equal(http.StatusForbidden, w.Code)
}

func (suite *DocumentHandlerTestSuite) TestGetDocument_SoftDeletedIsGone() {
	user := suite.createTestUser("writer")
	doc := suite.createTestDocument(user.ID, "Doomed Doc", true)

	w := suite.do(http.MethodDelete, "/api/documents/docs/"+doc.ID.String(), nil, user.ID)
	suite.Require().Equal(http.StatusNoContent, w.Code)

	// Even the owner gets a 404 after deletion.
	w = suite.do(http.MethodGet, "/api/documents/docs/"+doc.ID.String(), nil, user.ID)
	suite.Equal(http.StatusNotFound, w.Code)

	// The row itself survives for the audit trail.
	var count int64
	suite.db.Model(&models.Document{}).Where("id = ?", doc.ID).Count(&count)
	suite.Equal(int64(1), count)
}

func (suite *DocumentHandlerTestSuite) TestUpdateDocument_RecomputesDerivedFields() {
	user := suite.createTestUser("writer")
	doc := suite.createTestDocument(user.ID, "My Doc", false)

	w := suite.do(http.MethodPatch, "/api/documents/docs/"+doc.ID.String(), map[string]any{
		"content": "a b c d e f g",
	}, user.ID)
	suite.Require().Equal(http.StatusOK, w.Code)

	var response dto.DocumentDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.Equal(uint(7), response.WordCount)
	suite.Equal("1 min read", response.ReadTime)
}

func (suite *DocumentHandlerTestSuite) TestUpdateDocument_NonOwnerForbidden() {
	alice := suite.createTestUser("alice")
	bob := suite.createTestUser("bob")
	doc := suite.createTestDocument(alice.ID, "Alice Doc", true)

	// Public means readable, never writable.
	w := suite.do(http.MethodPatch, "/api/documents/docs/"+doc.ID.String(), map[string]any{
		"title": "Hijacked",
	}, bob.ID)
	suite.Equal(http.StatusForbidden, w.Code)
}

func (suite *DocumentHandlerTestSuite) TestUpdateDocument_DuplicateTitle() {
	user := suite.createTestUser("writer")
	suite.createTestDocument(user.ID, "First Title", false)
	doc := suite.createTestDocument(user.ID, "Second Title", false)

	w := suite.do(http.MethodPatch, "/api/documents/docs/"+doc.ID.String(), map[string]any{
		"title": "First Title",
	}, user.ID)
	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *DocumentHandlerTestSuite) TestUpdateDocument_KeepingOwnTitleIsFine() {
	user := suite.createTestUser("writer")
	doc := suite.createTestDocument(user.ID, "My Title", false)

	w := suite.do(http.MethodPatch, "/api/documents/docs/"+doc.ID.String(), map[string]any{
		"title":       "My Title",
		"description": "now with a description",
	}, user.ID)
	suite.Equal(http.StatusOK, w.Code)
}

func (suite *DocumentHandlerTestSuite) TestUpdateDocument_PublishRecordedInAudit() {
	user := suite.createTestUser("writer")
	doc := suite.createTestDocument(user.ID, "My Doc", false)

	status := string(models.DocumentStatusPublished)
	w := suite.do(http.MethodPatch, "/api/documents/docs/"+doc.ID.String(), map[string]any{
		"status": status,
	}, user.ID)
	suite.Require().Equal(http.StatusOK, w.Code)

	var entry models.AuditLog
	suite.Require().NoError(suite.db.Where("target_id = ?", doc.ID.String()).First(&entry).Error)
	suite.Equal(models.VerbPublish, entry.Verb)
	suite.Contains(string(entry.Diff), "status")
}

func (suite *DocumentHandlerTestSuite) TestUpdateDocument_UnchangedJSONNotInDiff() {
	user := suite.createTestUser("writer")

	w := suite.do(http.MethodPost, "/api/documents/docs", map[string]any{
		"title":        "Structured Doc",
		"content":      "real content",
		"content_json": map[string]any{"type": "doc"},
	}, user.ID)
	suite.Require().Equal(http.StatusCreated, w.Code)
	var created struct {
		ID string `json:"id"`
	}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &created))

	// Resubmitting the stored JSON alongside a real change must not record
	// the JSON columns in the audit diff.
	w = suite.do(http.MethodPatch, "/api/documents/docs/"+created.ID, map[string]any{
		"description":  "now described",
		"content_json": map[string]any{"type": "doc"},
	}, user.ID)
	suite.Require().Equal(http.StatusOK, w.Code)

	var entry models.AuditLog
	suite.Require().NoError(suite.db.
		Where("target_id = ? AND verb = ?", created.ID, models.VerbUpdate).
		First(&entry).Error)
	suite.Contains(string(entry.Diff), "description")
	suite.NotContains(string(entry.Diff), "content_json")
}

func (suite *DocumentHandlerTestSuite) TestDeleteDocument_NotFoundForMissing() {
	user := suite.createTestUser("writer")

	w := suite.do(http.MethodDelete, "/api/documents/docs/00000000-0000-0000-0000-000000000001", nil, user.ID)
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *DocumentHandlerTestSuite) TestDocumentStats_ZeroFilled() {
	user := suite.createTestUser("writer")
	suite.createTestDocument(user.ID, "Draft One", false)

	w := suite.do(http.MethodGet, "/api/documents/stats", nil, user.ID)
	suite.Require().Equal(http.StatusOK, w.Code)

	var response services.DocumentStats
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.Equal(int64(1), response.Total)
	suite.Equal(int64(1), response.ByStatus["draft"])
	suite.Equal(int64(0), response.ByStatus["published"])
	suite.Equal(int64(0), response.ByStatus["archived"])
	suite.Equal(int64(1), response.ByDocumentType["blog"])
	suite.Equal(int64(0), response.ByDocumentType["marketing"])
	suite.Equal(int64(1), response.ByEditorType["hybrid"])
}

func (suite *DocumentHandlerTestSuite) TestDocumentStats_ExcludesDeletedAndOthers() {
	alice := suite.createTestUser("alice")
	bob := suite.createTestUser("bob")
	suite.createTestDocument(bob.ID, "Bob Doc", true)
	doc := suite.createTestDocument(alice.ID, "Alice Doc", false)

	w := suite.do(http.MethodDelete, "/api/documents/docs/"+doc.ID.String(), nil, alice.ID)
	suite.Require().Equal(http.StatusNoContent, w.Code)

	w = suite.do(http.MethodGet, "/api/documents/stats", nil, alice.ID)
	suite.Require().Equal(http.StatusOK, w.Code)

	var response services.DocumentStats
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.Equal(int64(0), response.Total)
}

func TestDocumentHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(DocumentHandlerTestSuite))
}
