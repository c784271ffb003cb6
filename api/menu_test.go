package api

import (
	"context"
	"net/http"
	"testing"
	"time"

	"catering/cache"
	"catering/service"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMenuHandler_Create(t *testing.T) {
	mock := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `menus`").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	r := newTestRouter(ownerID)
	r.POST("/api/menus", NewMenuHandler(nil, nil, nil, "").Create)
	w := doJSON(r, http.MethodPost, "/api/menus", `{"name":"  Wedding <b>Buffet</b> ","isPublic":true}`)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	resp := decode(t, w)
	assert.True(t, resp["success"].(bool))
	assert.Equal(t, "Menu created successfully", resp["message"])

	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "Wedding Buffet", data["name"])
	assert.Equal(t, ownerID, data["ownerUserId"])
	assert.Equal(t, ownerID+"@example.com", data["ownerEmail"])
	assert.Equal(t, true, data["isPublic"])
	assert.Len(t, data["shareToken"], 21)
	assert.NotEmpty(t, data["id"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMenuHandler_Create_RequiresName(t *testing.T) {
	setupMockDB(t)

	r := newTestRouter(ownerID)
	r.POST("/api/menus", NewMenuHandler(nil, nil, nil, "").Create)

	for _, body := range []string{`{"name":""}`, `{"name":"<b></b>"}`, `{}`} {
		w := doJSON(r, http.MethodPost, "/api/menus", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.Equal(t, "Validation error: name: is required", decode(t, w)["error"], body)
	}
}

func TestMenuHandler_Create_Unauthenticated(t *testing.T) {
	r := newTestRouter("")
	r.POST("/api/menus", NewMenuHandler(nil, nil, nil, "").Create)

	w := doJSON(r, http.MethodPost, "/api/menus", `{"name":"x"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMenuHandler_Get_NotOwned(t *testing.T) {
	mock := setupMockDB(t)

	mock.ExpectQuery("SELECT \\* FROM `menus` WHERE id = \\? AND owner_user_id = \\?").
		WithArgs(menuID, strangerID).
		WillReturnRows(menuRows())

	r := newTestRouter(strangerID)
	r.GET("/api/menus/:id", NewMenuHandler(nil, nil, nil, "").Get)
	w := doJSON(r, http.MethodGet, "/api/menus/"+menuID, "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Menu not found", decode(t, w)["error"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMenuHandler_Get_InvalidID(t *testing.T) {
	setupMockDB(t)

	r := newTestRouter(ownerID)
	r.GET("/api/menus/:id", NewMenuHandler(nil, nil, nil, "").Get)
	w := doJSON(r, http.MethodGet, "/api/menus/not-a-uuid", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Validation error: id: must be a valid UUID", decode(t, w)["error"])
}

func TestMenuHandler_List_Pagination(t *testing.T) {
	mock := setupMockDB(t)

	now := time.Now()
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `menus` WHERE owner_user_id = \\?").
		WithArgs(ownerID).
		WillReturnRows(countRows(3))
	mock.ExpectQuery("SELECT menus\\.\\*, \\(SELECT COUNT\\(\\*\\) FROM categories .*\\) AS category_count FROM `menus` WHERE owner_user_id = \\? ORDER BY created_at DESC LIMIT 1 OFFSET 1").
		WithArgs(ownerID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "is_public", "share_token", "owner_user_id", "owner_email", "created_at", "updated_at", "category_count"}).
			AddRow(menuID, "Gala", nil, false, "tok", ownerID, "", now, now, 2))

	r := newTestRouter(ownerID)
	r.GET("/api/menus", NewMenuHandler(nil, nil, nil, "").List)
	w := doJSON(r, http.MethodGet, "/api/menus?page=2&limit=1", "")

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode(t, w)

	menus := resp["data"].([]interface{})
	require.Len(t, menus, 1)
	assert.Equal(t, float64(2), menus[0].(map[string]interface{})["categoryCount"])

	p := resp["pagination"].(map[string]interface{})
	assert.Equal(t, float64(2), p["page"])
	assert.Equal(t, float64(1), p["limit"])
	assert.Equal(t, float64(3), p["total"])
	assert.Equal(t, float64(3), p["totalPages"])
	assert.Equal(t, true, p["hasNext"])
	assert.Equal(t, true, p["hasPrevious"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMenuHandler_List_RejectsLimitAboveMax(t *testing.T) {
	setupMockDB(t)

	r := newTestRouter(ownerID)
	r.GET("/api/menus", NewMenuHandler(nil, nil, nil, "").List)
	w := doJSON(r, http.MethodGet, "/api/menus?limit=101", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Validation error: limit: must be at most 100", decode(t, w)["error"])
}

func TestMenuHandler_Update_Partial(t *testing.T) {
	mock := setupMockDB(t)

	mock.ExpectQuery("SELECT \\* FROM `menus` WHERE id = \\? AND owner_user_id = \\?").
		WithArgs(menuID, ownerID).
		WillReturnRows(addMenu(menuRows(), menuID, "Gala", "tok"))
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `menus` SET `is_public`=\\?,`updated_at`=\\? WHERE id = \\?").
		WithArgs(true, sqlmock.AnyArg(), menuID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectQuery("SELECT \\* FROM `menus` WHERE id = \\?").
		WithArgs(menuID).
		WillReturnRows(menuRows().AddRow(menuID, "Gala", nil, true, "tok", ownerID, "", time.Now(), time.Now()))

	r := newTestRouter(ownerID)
	r.PUT("/api/menus/:id", NewMenuHandler(nil, nil, nil, "").Update)
	w := doJSON(r, http.MethodPut, "/api/menus/"+menuID, `{"isPublic":true}`)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "Gala", data["name"])
	assert.Equal(t, true, data["isPublic"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMenuHandler_Delete_DiscardsImagesAndCache(t *testing.T) {
	mock := setupMockDB(t)

	mock.ExpectQuery("SELECT \\* FROM `menus` WHERE id = \\? AND owner_user_id = \\?").
		WithArgs(menuID, ownerID).
		WillReturnRows(addMenu(menuRows(), menuID, "Gala", "tok"))
	mock.ExpectQuery("SELECT `image_url` FROM `menu_items` WHERE category_id IN \\(SELECT `id` FROM `categories` WHERE menu_id = \\?\\)").
		WithArgs(menuID).
		WillReturnRows(sqlmock.NewRows([]string{"image_url"}).
			AddRow("https://cdn.example.com/menu-items/a.jpg").
			AddRow("https://cdn.example.com/menu-items/b.png"))
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `menus` WHERE id = \\?").
		WithArgs(menuID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	store := newFakeStore()
	janitor := service.NewImageJanitor(store, zap.NewNop())
	mem := cache.NewMemoryCache(time.Minute)
	require.NoError(t, mem.Set(context.Background(), cache.ShareKey("tok"), []byte("{}"), 0))

	r := newTestRouter(ownerID)
	r.DELETE("/api/menus/:id", NewMenuHandler(NewShareCache(mem), janitor, nil, "").Delete)
	w := doJSON(r, http.MethodDelete, "/api/menus/"+menuID, "")

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Menu deleted successfully", decode(t, w)["message"])

	janitor.Wait()
	assert.ElementsMatch(t, []string{
		"https://cdn.example.com/menu-items/a.jpg",
		"https://cdn.example.com/menu-items/b.png",
	}, store.deletedURLs())

	_, err := mem.Get(context.Background(), cache.ShareKey("tok"))
	assert.ErrorIs(t, err, cache.ErrCacheMiss)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMenuHandler_RotateShareToken(t *testing.T) {
	mock := setupMockDB(t)

	mock.ExpectQuery("SELECT \\* FROM `menus` WHERE id = \\? AND owner_user_id = \\?").
		WithArgs(menuID, ownerID).
		WillReturnRows(addMenu(menuRows(), menuID, "Gala", "old-token"))
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `menus` SET `share_token`=\\?,`updated_at`=\\? WHERE id = \\?").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), menuID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	r := newTestRouter(ownerID)
	r.POST("/api/menus/:id/share-token", NewMenuHandler(nil, nil, nil, "").RotateShareToken)
	w := doJSON(r, http.MethodPost, "/api/menus/"+menuID+"/share-token", "")

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := decode(t, w)["data"].(map[string]interface{})
	assert.NotEqual(t, "old-token", data["shareToken"])
	assert.Len(t, data["shareToken"], 21)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMenuHandler_ShareByEmail_Disabled(t *testing.T) {
	setupMockDB(t)

	r := newTestRouter(ownerID)
	r.POST("/api/menus/:id/share-email", NewMenuHandler(nil, nil, nil, "http://localhost:3000").ShareByEmail)
	w := doJSON(r, http.MethodPost, "/api/menus/"+menuID+"/share-email", `{"email":"guest@example.com"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Email sharing is not enabled", decode(t, w)["error"])
}

func TestMenuHandler_PreviewLink(t *testing.T) {
	h := NewMenuHandler(nil, nil, nil, "https://menus.example.com/")
	assert.Equal(t, "https://menus.example.com/preview/abc_DEF-1", h.previewLink("abc_DEF-1"))
}

func TestShareHandler_Get_CachesView(t *testing.T) {
	mock := setupMockDB(t)

	mock.ExpectQuery("SELECT \\* FROM `menus` WHERE share_token = \\?").
		WithArgs("tok").
		WillReturnRows(addMenu(menuRows(), menuID, "Gala", "tok"))
	// inactive categories stay out of the shared view
	mock.ExpectQuery("SELECT \\* FROM `categories` WHERE .*is_active = \\?").
		WillReturnRows(categoryRows())

	mem := cache.NewMemoryCache(time.Minute)
	r := newTestRouter("")
	r.GET("/api/menus/share/:token", NewShareHandler(NewShareCache(mem)).Get)

	first := doJSON(r, http.MethodGet, "/api/menus/share/tok", "")
	require.Equal(t, http.StatusOK, first.Code, first.Body.String())
	data := decode(t, first)["data"].(map[string]interface{})
	assert.Equal(t, "Gala", data["name"])
	assert.Equal(t, false, data["isPublic"])
	assert.NoError(t, mock.ExpectationsWereMet())

	// served from the cache, no further queries expected
	second := doJSON(r, http.MethodGet, "/api/menus/share/tok", "")
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestShareHandler_Get_UnknownToken(t *testing.T) {
	mock := setupMockDB(t)

	mock.ExpectQuery("SELECT \\* FROM `menus` WHERE share_token = \\?").
		WithArgs("nope").
		WillReturnRows(menuRows())

	r := newTestRouter("")
	r.GET("/api/menus/share/:token", NewShareHandler(nil).Get)
	w := doJSON(r, http.MethodGet, "/api/menus/share/nope", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Menu not found or share token is invalid", decode(t, w)["error"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestShareHandler_Order_NoMatchingItems(t *testing.T) {
	mock := setupMockDB(t)

	mock.ExpectQuery("SELECT \\* FROM `menus` WHERE share_token = \\?").
		WithArgs("tok").
		WillReturnRows(addMenu(menuRows(), menuID, "Gala", "tok"))
	mock.ExpectQuery("SELECT .* FROM `menu_items` JOIN categories ON categories.id = menu_items.category_id WHERE categories.menu_id = \\?").
		WillReturnRows(itemRows())

	r := newTestRouter("")
	r.POST("/api/menus/share/:token/order", NewShareHandler(nil).Order)
	w := doJSON(r, http.MethodPost, "/api/menus/share/tok/order", `{"itemIds":["`+itemID+`"]}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "None of the selected items belong to this menu", decode(t, w)["error"])
	assert.NoError(t, mock.ExpectationsWereMet())
}
