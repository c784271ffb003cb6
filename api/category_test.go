package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const otherMenuID = "22222222-2222-4222-8222-222222222222"

func expectOwnedMenu(mock sqlmock.Sqlmock) {
	mock.ExpectQuery("SELECT \\* FROM `menus` WHERE id = \\? AND owner_user_id = \\?").
		WithArgs(menuID, ownerID).
		WillReturnRows(addMenu(menuRows(), menuID, "Gala", "tok"))
}

func expectLockedParent(mock sqlmock.Sqlmock, rows *sqlmock.Rows) {
	mock.ExpectQuery("SELECT \\* FROM `categories` WHERE id = \\? ORDER BY `categories`.`id` LIMIT 1 FOR UPDATE").
		WithArgs(parentID).
		WillReturnRows(rows)
}

func newCategoryHandler() *CategoryHandler {
	return NewCategoryHandler(nil, nil)
}

func TestCategoryHandler_Create_ParentHasItems(t *testing.T) {
	mock := setupMockDB(t)

	expectOwnedMenu(mock)
	mock.ExpectBegin()
	expectLockedParent(mock, addCategory(categoryRows(), parentID, nil, "Mains", false))
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `menu_items` WHERE category_id = \\?").
		WithArgs(parentID).
		WillReturnRows(countRows(2))
	mock.ExpectRollback()

	r := newTestRouter(ownerID)
	r.POST("/api/categories", newCategoryHandler().Create)
	w := doJSON(r, http.MethodPost, "/api/categories",
		`{"menuId":"`+menuID+`","name":"Curries","parentCategoryId":"`+parentID+`"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Cannot add subcategories to a category that has menu items", decode(t, w)["error"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryHandler_Create_ParentInOtherMenu(t *testing.T) {
	mock := setupMockDB(t)

	now := time.Now()
	expectOwnedMenu(mock)
	mock.ExpectBegin()
	expectLockedParent(mock, categoryRows().AddRow(parentID, otherMenuID, nil, "Mains", nil, 0, true, false, now, now))
	mock.ExpectRollback()

	r := newTestRouter(ownerID)
	r.POST("/api/categories", newCategoryHandler().Create)
	w := doJSON(r, http.MethodPost, "/api/categories",
		`{"menuId":"`+menuID+`","name":"Curries","parentCategoryId":"`+parentID+`"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Parent category must be in the same menu", decode(t, w)["error"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryHandler_Create_ParentMissing(t *testing.T) {
	mock := setupMockDB(t)

	expectOwnedMenu(mock)
	mock.ExpectBegin()
	expectLockedParent(mock, categoryRows())
	mock.ExpectRollback()

	r := newTestRouter(ownerID)
	r.POST("/api/categories", newCategoryHandler().Create)
	w := doJSON(r, http.MethodPost, "/api/categories",
		`{"menuId":"`+menuID+`","name":"Curries","parentCategoryId":"`+parentID+`"}`)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Parent category not found", decode(t, w)["error"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryHandler_Create_Subcategory(t *testing.T) {
	mock := setupMockDB(t)

	expectOwnedMenu(mock)
	mock.ExpectBegin()
	expectLockedParent(mock, addCategory(categoryRows(), parentID, nil, "Mains", false))
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `menu_items` WHERE category_id = \\?").
		WithArgs(parentID).
		WillReturnRows(countRows(0))
	mock.ExpectExec("UPDATE `categories` SET `has_subcategories`=\\?,`updated_at`=\\? WHERE id = \\?").
		WithArgs(true, sqlmock.AnyArg(), parentID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO `categories`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	r := newTestRouter(ownerID)
	r.POST("/api/categories", newCategoryHandler().Create)
	w := doJSON(r, http.MethodPost, "/api/categories",
		`{"menuId":"`+menuID+`","name":"Curries","parentCategoryId":"`+parentID+`","sortOrder":2}`)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	data := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, parentID, data["parentCategoryId"])
	assert.Equal(t, menuID, data["menuId"])
	assert.Equal(t, float64(2), data["sortOrder"])
	assert.Equal(t, true, data["isActive"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryHandler_Create_MenuNotOwned(t *testing.T) {
	mock := setupMockDB(t)

	mock.ExpectQuery("SELECT \\* FROM `menus` WHERE id = \\? AND owner_user_id = \\?").
		WithArgs(menuID, strangerID).
		WillReturnRows(menuRows())

	r := newTestRouter(strangerID)
	r.POST("/api/categories", newCategoryHandler().Create)
	w := doJSON(r, http.MethodPost, "/api/categories", `{"menuId":"`+menuID+`","name":"Starters"}`)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Menu not found or unauthorized", decode(t, w)["error"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryHandler_Create_NegativeSortOrder(t *testing.T) {
	setupMockDB(t)

	r := newTestRouter(ownerID)
	r.POST("/api/categories", newCategoryHandler().Create)
	w := doJSON(r, http.MethodPost, "/api/categories", `{"menuId":"`+menuID+`","name":"Starters","sortOrder":-1}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Validation error: sortOrder: must be at least 0", decode(t, w)["error"])
}

func TestCategoryHandler_Delete_LastChildClearsFlag(t *testing.T) {
	mock := setupMockDB(t)

	mock.ExpectQuery("SELECT .* FROM `categories` JOIN menus ON menus.id = categories.menu_id WHERE categories.id = \\? AND menus.owner_user_id = \\?").
		WithArgs(childID, ownerID).
		WillReturnRows(addCategory(categoryRows(), childID, parentID, "Curries", false))
	mock.ExpectQuery("SELECT `image_url` FROM `menu_items` WHERE category_id IN \\(SELECT `id` FROM `categories` WHERE id = \\? OR parent_category_id = \\?\\)").
		WithArgs(childID, childID).
		WillReturnRows(sqlmock.NewRows([]string{"image_url"}))
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT `id` FROM `categories` WHERE id = \\? ORDER BY `categories`.`id` LIMIT 1 FOR UPDATE").
		WithArgs(parentID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(parentID))
	mock.ExpectExec("DELETE FROM `categories` WHERE id = \\?").
		WithArgs(childID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `categories` WHERE parent_category_id = \\?").
		WithArgs(parentID).
		WillReturnRows(countRows(0))
	mock.ExpectExec("UPDATE `categories` SET `has_subcategories`=\\?,`updated_at`=\\? WHERE id = \\?").
		WithArgs(false, sqlmock.AnyArg(), parentID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	r := newTestRouter(ownerID)
	r.DELETE("/api/categories/:id", newCategoryHandler().Delete)
	w := doJSON(r, http.MethodDelete, "/api/categories/"+childID, "")

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Category deleted successfully", decode(t, w)["message"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryHandler_Delete_NotOwned(t *testing.T) {
	mock := setupMockDB(t)

	mock.ExpectQuery("SELECT .* FROM `categories` JOIN menus ON menus.id = categories.menu_id WHERE categories.id = \\? AND menus.owner_user_id = \\?").
		WithArgs(childID, strangerID).
		WillReturnRows(categoryRows())

	r := newTestRouter(strangerID)
	r.DELETE("/api/categories/:id", newCategoryHandler().Delete)
	w := doJSON(r, http.MethodDelete, "/api/categories/"+childID, "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Category not found", decode(t, w)["error"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryHandler_Reorder(t *testing.T) {
	mock := setupMockDB(t)

	expectOwnedMenu(mock)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `categories` WHERE .*parent_category_id IS NULL").
		WithArgs(menuID, childID, parentID).
		WillReturnRows(countRows(2))
	mock.ExpectExec("UPDATE `categories` SET `sort_order`=\\?,`updated_at`=\\? WHERE id = \\?").
		WithArgs(0, sqlmock.AnyArg(), childID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE `categories` SET `sort_order`=\\?,`updated_at`=\\? WHERE id = \\?").
		WithArgs(1, sqlmock.AnyArg(), parentID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	r := newTestRouter(ownerID)
	r.PUT("/api/categories/reorder", newCategoryHandler().Reorder)
	w := doJSON(r, http.MethodPut, "/api/categories/reorder",
		`{"menuId":"`+menuID+`","orderedIds":["`+childID+`","`+parentID+`"]}`)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Categories reordered successfully", decode(t, w)["message"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryHandler_Reorder_NotSiblings(t *testing.T) {
	mock := setupMockDB(t)

	expectOwnedMenu(mock)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `categories` WHERE .*parent_category_id = \\?").
		WithArgs(menuID, childID, itemID, parentID).
		WillReturnRows(countRows(1))
	mock.ExpectRollback()

	r := newTestRouter(ownerID)
	r.PUT("/api/categories/reorder", newCategoryHandler().Reorder)
	w := doJSON(r, http.MethodPut, "/api/categories/reorder",
		`{"menuId":"`+menuID+`","parentCategoryId":"`+parentID+`","orderedIds":["`+childID+`","`+itemID+`"]}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Every id in orderedIds must be a distinct sibling category", decode(t, w)["error"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryHandler_List_RequiresMenuID(t *testing.T) {
	setupMockDB(t)

	r := newTestRouter(ownerID)
	r.GET("/api/categories", newCategoryHandler().List)
	w := doJSON(r, http.MethodGet, "/api/categories", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Validation error: menuId: is required", decode(t, w)["error"])
}

func TestCategoryHandler_List_FollowsSortOrder(t *testing.T) {
	mock := setupMockDB(t)

	// Desserts was moved ahead of Starters by a reorder
	const startersID, dessertsID = childID, "66666666-6666-4666-8666-666666666666"
	now := time.Now()

	expectOwnedMenu(mock)
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `categories` WHERE menu_id = \\? AND parent_category_id IS NULL").
		WithArgs(menuID).
		WillReturnRows(countRows(2))
	mock.ExpectQuery("SELECT \\* FROM `categories` WHERE menu_id = \\? AND parent_category_id IS NULL ORDER BY sort_order ASC,created_at ASC LIMIT 10").
		WithArgs(menuID).
		WillReturnRows(categoryRows().
			AddRow(dessertsID, menuID, nil, "Desserts", nil, 0, true, false, now, now).
			AddRow(startersID, menuID, nil, "Starters", nil, 1, true, false, now, now))
	mock.ExpectQuery("SELECT \\* FROM `categories` WHERE `categories`.`parent_category_id` IN \\(\\?,\\?\\) ORDER BY sort_order ASC,created_at ASC").
		WithArgs(dessertsID, startersID).
		WillReturnRows(categoryRows())

	r := newTestRouter(ownerID)
	r.GET("/api/categories", newCategoryHandler().List)
	w := doJSON(r, http.MethodGet, "/api/categories?menuId="+menuID, "")

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode(t, w)
	data := resp["data"].([]interface{})
	require.Len(t, data, 2)
	assert.Equal(t, "Desserts", data[0].(map[string]interface{})["name"])
	assert.Equal(t, float64(0), data[0].(map[string]interface{})["sortOrder"])
	assert.Equal(t, "Starters", data[1].(map[string]interface{})["name"])
	assert.Equal(t, float64(2), resp["pagination"].(map[string]interface{})["total"])
	assert.NoError(t, mock.ExpectationsWereMet())
}
