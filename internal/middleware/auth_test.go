package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/Igor-Vicente/English.Registration.API/internal/models"
	appErrors "github.com/Igor-Vicente/English.Registration.API/pkg/errors"
	"github.com/Igor-Vicente/English.Registration.API/pkg/response"
)

type stubValidator map[string]*models.AccessClaims

func (s stubValidator) ValidateAccessToken(raw string) (*models.AccessClaims, error) {
	if claims, ok := s[raw]; ok {
		return claims, nil
	}
	return nil, appErrors.Wrap(errors.New("bad token"), appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
}

func newProtectedRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	tokens := stubValidator{
		"learner": {Email: "ana@example.com", RegisteredClaims: jwt.RegisteredClaims{Subject: "u-1"}},
		"admin":   {Email: "root@example.com", IsAdmin: true, RegisteredClaims: jwt.RegisteredClaims{Subject: "u-2"}},
	}
	router := gin.New()
	protected := router.Group("/", JWT(tokens))
	protected.GET("/me", func(c *gin.Context) {
		claims, _ := CurrentClaims(c)
		c.String(http.StatusOK, claims.Subject)
	})
	protected.POST("/modules", RequireClaim(models.ClaimIsAdmin, "true"), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})
	return router
}

func serve(router *gin.Engine, method, path, authorization string) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestJWTMiddleware(t *testing.T) {
	router := newProtectedRouter()

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic learner", http.StatusUnauthorized},
		{"empty token", "Bearer ", http.StatusUnauthorized},
		{"unknown token", "Bearer forged", http.StatusUnauthorized},
		{"valid token", "Bearer learner", http.StatusOK},
		{"case insensitive scheme", "bearer learner", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			recorder := serve(router, http.MethodGet, "/me", tc.header)
			if recorder.Code != tc.status {
				t.Fatalf("unexpected status: %d", recorder.Code)
			}
		})
	}

	recorder := serve(router, http.MethodGet, "/me", "Bearer learner")
	if recorder.Body.String() != "u-1" {
		t.Fatalf("unexpected subject: %s", recorder.Body.String())
	}
}

func TestRequireClaim(t *testing.T) {
	router := newProtectedRouter()

	recorder := serve(router, http.MethodPost, "/modules", "Bearer learner")
	if recorder.Code != http.StatusForbidden {
		t.Fatalf("unexpected status: %d", recorder.Code)
	}
	var body response.Failure
	if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Success || len(body.Errors) != 1 {
		t.Fatalf("unexpected failure body: %+v", body)
	}

	recorder = serve(router, http.MethodPost, "/modules", "Bearer admin")
	if recorder.Code != http.StatusCreated {
		t.Fatalf("unexpected status: %d", recorder.Code)
	}
}

func TestRequireClaimWithoutAuthentication(t *testing.T) {
	gin.SetMode(gin.TestMode)
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest(http.MethodPost, "/modules", nil)

	RequireClaim(models.ClaimIsAdmin, "true")(c)

	if !c.IsAborted() || recorder.Code != http.StatusUnauthorized {
		t.Fatalf("expected unauthorized abort, got %d", recorder.Code)
	}
}

func TestClaimValueIgnoresUnknownNames(t *testing.T) {
	claims := &models.AccessClaims{IsAdmin: true}
	if got := claimValue(claims, models.ClaimName("LastRefreshToken")); got != "" {
		t.Fatalf("unexpected value for unknown claim: %q", got)
	}
}
