package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newParamRouter() *gin.Engine {
	r := gin.New()
	r.GET("/games/:id", ExtractUintParam("id", "gameID"), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": c.MustGet("gameID").(uint)})
	})
	r.GET("/sessions/:sid", ExtractSessionID("sid", "sessionID"), func(c *gin.Context) {
		c.String(http.StatusOK, c.MustGet("sessionID").(string))
	})
	return r
}

func TestExtractUintParam(t *testing.T) {
	r := newParamRouter()

	testCases := []struct {
		path   string
		status int
	}{
		{"/games/42", http.StatusOK},
		{"/games/0", http.StatusBadRequest},
		{"/games/-1", http.StatusBadRequest},
		{"/games/abc", http.StatusBadRequest},
		{"/games/99999999999", http.StatusBadRequest},
	}

	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tc.path, nil))
			assert.Equal(t, tc.status, w.Code)
		})
	}
}

func TestExtractSessionID(t *testing.T) {
	r := newParamRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/sessions/6F9619FF-8B86-D011-B42D-00C04FC964FF", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "6f9619ff-8b86-d011-b42d-00c04fc964ff", w.Body.String(), "UUID нормализуется")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/sessions/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid_param")
}
