package implementations

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/projecthub/pkg/projecthub/auth"
	"github.com/mikepea/projecthub/pkg/projecthub/models"
	"go.uber.org/zap"
)

func setupTestRouter(f *fixture, p models.Principal) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(auth.ContextKeyPrincipal, p)
		c.Next()
	})
	h := NewHandler(f.svc, zap.NewNop())
	h.RegisterStudentRoutes(r.Group("/api/students"))
	h.RegisterAdminRoutes(r.Group("/api/admins"))
	return r
}

func TestDetailHandlers(t *testing.T) {
	f := setup(t)
	router := setupTestRouter(f, f.leader)
	path := "/api/students/groups/" + strconv.Itoa(int(f.alpha.ID)) + "/component-details"

	jsonBody, _ := json.Marshal(CreateDetailRequest{
		ComponentID:         f.components[0].ID,
		MarkdownDescription: "REST over gin",
		RepositoryLink:      "https://git.example/alpha-api",
	})
	req, _ := http.NewRequest("POST", path, bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}

	req, _ = http.NewRequest("POST", path, bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusConflict {
		t.Errorf("Expected status 409, got %d", resp.Code)
	}

	req, _ = http.NewRequest("GET", path, nil)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	var details []DetailResponse
	json.Unmarshal(resp.Body.Bytes(), &details)
	if len(details) != 1 || details[0].ComponentName != "API" {
		t.Errorf("Unexpected details %+v", details)
	}

	req, _ = http.NewRequest("DELETE", path+"/"+strconv.Itoa(int(f.components[0].ID)), nil)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", resp.Code)
	}
}

func TestDetailHandlersMemberForbidden(t *testing.T) {
	f := setup(t)
	router := setupTestRouter(f, f.member)

	jsonBody, _ := json.Marshal(CreateDetailRequest{
		ComponentID:         f.components[0].ID,
		MarkdownDescription: "desc",
		RepositoryLink:      "https://git.example/b",
	})
	req, _ := http.NewRequest("POST", "/api/students/groups/"+strconv.Itoa(int(f.alpha.ID))+"/component-details", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusForbidden {
		t.Errorf("Expected status 403, got %d", resp.Code)
	}
}

func TestListBySelectionHandler(t *testing.T) {
	f := setup(t)
	router := setupTestRouter(f, models.Principal{ID: 1, Kind: models.PrincipalAdmin, Role: models.AdminRoleRoot})

	req, _ := http.NewRequest("GET", "/api/admins/selections/"+strconv.Itoa(int(f.selection.ID))+"/component-details", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK || resp.Body.String() != "[]" {
		t.Errorf("Expected empty list, got %d %s", resp.Code, resp.Body.String())
	}
}
