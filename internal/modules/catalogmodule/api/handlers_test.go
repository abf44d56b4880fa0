package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mantonx/titleseeker/internal/database/dbtest"
	"github.com/mantonx/titleseeker/internal/middleware"
	"github.com/mantonx/titleseeker/internal/modules/catalogmodule/service"
	"github.com/mantonx/titleseeker/internal/modules/databasemodule"
	"github.com/mantonx/titleseeker/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupRouter(t *testing.T) (*gin.Engine, *gorm.DB, string) {
	gin.SetMode(gin.TestMode)
	db := dbtest.New(t)
	admin := dbtest.User(t, db, "admin", types.RoleAdmin)

	router := gin.New()
	svc := service.NewCatalogService(db, databasemodule.NewTransactionManager(db))
	RegisterRoutes(router, NewHandler(svc), middleware.NewUserResolver(db))
	return router, db, admin.UUID
}

func postJSON(router *gin.Engine, target string, body interface{}) *httptest.ResponseRecorder {
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestCreateGenreAndSubgenre(t *testing.T) {
	router, _, admin := setupRouter(t)

	genre := map[string]string{
		"key": "horror", "name_uk": "Жахи", "name_en": "Horror",
		"description_uk": "Страшно", "description_en": "Scary",
	}
	w := postJSON(router, "/api/genres/?lang=en&user_uuid="+admin, genre)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, map[string]interface{}{"key": "horror", "name": "Horror", "description": "Scary"}, decode(t, w))

	w = postJSON(router, "/api/genres/?user_uuid="+admin, genre)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Genre already exists", decode(t, w)["detail"])

	sub := map[string]string{"key": "slasher", "name_uk": "Слешер", "name_en": "Slasher"}
	w = postJSON(router, "/api/genres/subgenres/?user_uuid="+admin, sub)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	sub["parent_genre_key"] = "horror"
	w = postJSON(router, "/api/genres/subgenres/?user_uuid="+admin, sub)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "Слешер", body["name"])
	assert.Equal(t, "horror", body["parent_genre_key"])
}

func TestCreateRequiresAdmin(t *testing.T) {
	router, db, _ := setupRouter(t)
	user := dbtest.User(t, db, "viewer", types.RoleUser)

	w := postJSON(router, "/api/characters/?user_uuid="+user.UUID, map[string]string{"key": "laurie", "name_uk": "Лорі", "name_en": "Laurie"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = postJSON(router, "/api/characters/", map[string]string{"key": "laurie"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateRejectsMissingNames(t *testing.T) {
	router, _, admin := setupRouter(t)
	w := postJSON(router, "/api/filters/keywords/?user_uuid="+admin, map[string]string{"key": "dark"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", decode(t, w)["code"])
}

func TestCategories(t *testing.T) {
	router, db, admin := setupRouter(t)
	dbtest.Category(t, db, "neon", "glow")
	dbtest.Category(t, db, "gothic", "contrast")

	w := postJSON(router, "/api/visual-profile/category/?user_uuid="+admin, map[string]interface{}{
		"key": "noir", "name_uk": "Нуар", "name_en": "Noir", "criteria_keys": []string{"glow"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/api/visual-profile/categories/?lang=en&user_uuid="+admin, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var out struct {
		Items []types.CategoryItem `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out.Items, 3)
	assert.Equal(t, []string{"gothic", "neon", "noir"}, []string{out.Items[0].Key, out.Items[1].Key, out.Items[2].Key})
	require.Len(t, out.Items[2].Criteria, 1)
	assert.Equal(t, "glow", out.Items[2].Criteria[0].Key)
}
