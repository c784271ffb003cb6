package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"catering/database"
	"catering/middleware"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

const (
	ownerID    = "user-1"
	strangerID = "user-2"

	menuID   = "11111111-1111-4111-8111-111111111111"
	parentID = "33333333-3333-4333-8333-333333333333"
	childID  = "44444444-4444-4444-8444-444444444444"
	itemID   = "77777777-7777-4777-8777-777777777777"
	tagA     = "55555555-5555-4555-8555-555555555555"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupMockDB(t *testing.T) sqlmock.Sqlmock {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	oldDB := database.DB
	database.DB = gormDB
	t.Cleanup(func() {
		database.DB = oldDB
		sqlDB.Close()
	})
	return mock
}

// asUser stands in for JWTAuth
func asUser(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		middleware.SetCurrentUser(c, userID, userID+"@example.com")
		c.Next()
	}
}

func newTestRouter(userID string) *gin.Engine {
	r := gin.New()
	if userID != "" {
		r.Use(asUser(userID))
	}
	return r
}

func doJSON(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

func menuRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "description", "is_public", "share_token", "owner_user_id", "owner_email", "created_at", "updated_at"})
}

func addMenu(rows *sqlmock.Rows, id, name, token string) *sqlmock.Rows {
	now := time.Now()
	return rows.AddRow(id, name, nil, false, token, ownerID, ownerID+"@example.com", now, now)
}

func categoryRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "menu_id", "parent_category_id", "name", "description", "sort_order", "is_active", "has_subcategories", "created_at", "updated_at"})
}

func addCategory(rows *sqlmock.Rows, id string, parent interface{}, name string, hasSub bool) *sqlmock.Rows {
	now := time.Now()
	return rows.AddRow(id, menuID, parent, name, nil, 0, true, hasSub, now, now)
}

func itemRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "category_id", "name", "description", "ingredients", "image_url", "sort_order", "is_active", "created_at", "updated_at"})
}

func addItem(rows *sqlmock.Rows, id, categoryID, name string, imageURL interface{}) *sqlmock.Rows {
	now := time.Now()
	return rows.AddRow(id, categoryID, name, nil, nil, imageURL, 0, true, now, now)
}

func countRows(n int64) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"count"}).AddRow(n)
}
