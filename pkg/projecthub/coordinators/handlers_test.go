package coordinators

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
	"github.com/mikepea/projecthub/pkg/projecthub/testutil"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupTestRouter(db *gorm.DB, p models.Principal) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(auth.ContextKeyPrincipal, p)
		c.Next()
	})
	NewHandler(NewService(db, zap.NewNop()), zap.NewNop()).RegisterRoutes(r.Group("/api/admins"))
	return r
}

func TestAssignHandler(t *testing.T) {
	db := testutil.NewDB(t)
	root := testutil.Admin(t, db, "root", models.AdminRoleRoot)
	coord := testutil.Admin(t, db, "coord", models.AdminRoleCoordinator)
	project := testutil.Project(t, db, 3, nil)
	router := setupTestRouter(db, testutil.AdminPrincipal(root))
	path := "/api/admins/projects/" + strconv.Itoa(int(project.ID)) + "/coordinators"

	jsonBody, _ := json.Marshal(AssignRequest{AdminID: coord.ID})
	req, _ := http.NewRequest("POST", path, bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}

	// Second assignment conflicts
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

	var response ProjectCoordinatorResponse
	json.Unmarshal(resp.Body.Bytes(), &response)
	if response.Coordinator == nil || response.Coordinator.AdminID != coord.ID {
		t.Errorf("Expected coordinator %d, got %+v", coord.ID, response.Coordinator)
	}
}

func TestUnassignHandlerNotFound(t *testing.T) {
	db := testutil.NewDB(t)
	root := testutil.Admin(t, db, "root", models.AdminRoleRoot)
	project := testutil.Project(t, db, 3, nil)
	router := setupTestRouter(db, testutil.AdminPrincipal(root))

	req, _ := http.NewRequest("DELETE", "/api/admins/projects/"+strconv.Itoa(int(project.ID))+"/coordinators/42", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", resp.Code)
	}
}
