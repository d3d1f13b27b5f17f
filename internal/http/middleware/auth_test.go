package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/highwaynet/ucc-service/internal/auth"
	"github.com/highwaynet/ucc-service/internal/model"
)

const testSecret = "test-secret"

func newAuthRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Auth(auth.NewParser(testSecret)))
	router.GET("/whoami", func(c *gin.Context) {
		principal, ok := MustPrincipal(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"userId": principal.UserID})
	})
	return router
}

func doRequest(router *gin.Engine, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestAuthRejectsMalformedHeaders(t *testing.T) {
	router := newAuthRouter(t)

	cases := []struct {
		name   string
		header string
	}{
		{name: "missing header", header: ""},
		{name: "scheme glued to token", header: "Bearerxyz"},
		{name: "wrong scheme", header: "Basic dXNlcjpwYXNz"},
		{name: "empty token", header: "Bearer "},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			recorder := doRequest(router, tc.header)
			assert.Equal(t, http.StatusUnauthorized, recorder.Code)
		})
	}
}

func TestAuthAcceptsBearerToken(t *testing.T) {
	router := newAuthRouter(t)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":     7,
		"designation": model.DesignationITHead,
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)

	recorder := doRequest(router, "Bearer "+signed)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"userId":7`)
}
