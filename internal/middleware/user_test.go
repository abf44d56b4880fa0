package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mantonx/titleseeker/internal/database/dbtest"
	"github.com/mantonx/titleseeker/internal/types"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func setupRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	gin.SetMode(gin.TestMode)
	db := dbtest.New(t)
	users := NewUserResolver(db)

	whoami := func(c *gin.Context) {
		name := "anonymous"
		if u := UserFromContext(c); u != nil {
			name = u.FirstName
		}
		c.String(http.StatusOK, name)
	}

	router := gin.New()
	router.GET("/current", users.CurrentUser(), whoami)
	router.GET("/user/:user_uuid", users.RequireUser(), whoami)
	router.GET("/admin", users.RequireAdmin(), whoami)
	router.GET("/owner", users.RequireOwner(), whoami)
	return router, db
}

func get(router *gin.Engine, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestCurrentUser(t *testing.T) {
	router, db := setupRouter(t)
	user := dbtest.User(t, db, "laurie", types.RoleUser)

	w := get(router, "/current")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "anonymous", w.Body.String())

	w = get(router, "/current?user_uuid="+user.UUID)
	assert.Equal(t, "laurie", w.Body.String())

	w = get(router, "/current?user_uuid=missing")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "User was not authorized")
}

func TestRequireRoles(t *testing.T) {
	router, db := setupRouter(t)
	user := dbtest.User(t, db, "laurie", types.RoleUser)
	admin := dbtest.User(t, db, "loomis", types.RoleAdmin)
	owner := dbtest.User(t, db, "owner", types.RoleOwner)
	deleted := dbtest.User(t, db, "michael", types.RoleAdmin)
	db.Model(deleted).Update("is_deleted", true)

	cases := []struct {
		target string
		code   int
	}{
		{"/user/" + user.UUID, http.StatusOK},
		{"/user/" + deleted.UUID, http.StatusNotFound},
		{"/admin", http.StatusBadRequest},
		{"/admin?user_uuid=" + user.UUID, http.StatusForbidden},
		{"/admin?user_uuid=" + admin.UUID, http.StatusOK},
		{"/admin?user_uuid=" + owner.UUID, http.StatusOK},
		{"/admin?user_uuid=" + deleted.UUID, http.StatusNotFound},
		{"/owner?user_uuid=" + admin.UUID, http.StatusForbidden},
		{"/owner?user_uuid=" + owner.UUID, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.target, func(t *testing.T) {
			assert.Equal(t, tc.code, get(router, tc.target).Code)
		})
	}
}
