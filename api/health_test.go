package api

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealth(t *testing.T) {
	mock := setupMockDB(t)

	for i, table := range []string{"tags", "menus", "categories", "menu_items"} {
		mock.ExpectQuery("SELECT count\\(\\*\\) FROM `" + table + "`").
			WillReturnRows(countRows(int64(i + 1)))
	}

	r := newTestRouter("")
	r.GET("/api/health", Health)
	w := doJSON(r, http.MethodGet, "/api/health", "")

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "ok", data["status"])
	assert.Equal(t, "connected", data["database"])

	stats := data["stats"].(map[string]interface{})
	assert.Equal(t, float64(1), stats["totalTags"])
	assert.Equal(t, float64(2), stats["totalMenus"])
	assert.Equal(t, float64(3), stats["totalCategories"])
	assert.Equal(t, float64(4), stats["totalMenuItems"])
	assert.Equal(t, "/api/menu-items", data["endpoints"].(map[string]interface{})["menuItems"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHealth_QueryFails(t *testing.T) {
	mock := setupMockDB(t)

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `tags`").
		WillReturnError(errors.New("connection reset"))

	r := newTestRouter("")
	r.GET("/api/health", Health)
	w := doJSON(r, http.MethodGet, "/api/health", "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	resp := decode(t, w)
	assert.Equal(t, false, resp["success"])
	assert.True(t, strings.HasPrefix(resp["error"].(string), "Health check failed: "), resp["error"])
	assert.NoError(t, mock.ExpectationsWereMet())
}
