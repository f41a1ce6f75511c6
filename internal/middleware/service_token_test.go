package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/talentpulse/assessment-backend/internal/logger"
	"github.com/talentpulse/assessment-backend/internal/services"
)

func newTestRouter(t *testing.T) (*gin.Engine, services.ViewTokenService) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	tokens, err := services.NewViewTokenService(log, "test-secret", time.Minute)
	if err != nil {
		t.Fatalf("NewViewTokenService: %v", err)
	}
	mw := NewServiceTokenMiddleware(log, tokens)

	router := gin.New()
	router.GET("/reports/:assignmentID/view", mw.RequireServiceToken(), func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return router, tokens
}

func get(router *gin.Engine, url string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	router.ServeHTTP(w, req)
	return w
}

func TestServiceTokenAllowsMatchingAssignment(t *testing.T) {
	router, tokens := newTestRouter(t)
	assignmentID := uuid.New()
	token, err := tokens.Issue(assignmentID)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	w := get(router, "/reports/"+assignmentID.String()+"/view?service_role_token="+token)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
}

func TestServiceTokenMissing(t *testing.T) {
	router, _ := newTestRouter(t)
	w := get(router, "/reports/"+uuid.NewString()+"/view")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestServiceTokenInvalid(t *testing.T) {
	router, _ := newTestRouter(t)
	w := get(router, "/reports/"+uuid.NewString()+"/view?service_role_token=garbage")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestServiceTokenWrongAssignment(t *testing.T) {
	router, tokens := newTestRouter(t)
	token, err := tokens.Issue(uuid.New())
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	// Token for one assignment must not open another assignment's report.
	w := get(router, "/reports/"+uuid.NewString()+"/view?service_role_token="+token)
	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}
}
