package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/projecthub/pkg/projecthub/database"
	"github.com/mikepea/projecthub/pkg/projecthub/models"
	"gorm.io/gorm"
)

const testSecret = "test-secret-at-least-16"

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := database.Open(database.DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate failed: %v", err)
	}
	return db
}

func setupTestRouter(db *gorm.DB, tokens *TokenService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := NewHandler(db, tokens)
	handler.RegisterRoutes(r.Group("/auth"))
	return r
}

func createAdmin(t *testing.T, db *gorm.DB, email, password string, role models.AdminRole) models.Admin {
	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	admin := models.Admin{Email: email, FirstName: "Ada", LastName: "Admin", PasswordHash: hash, Role: role}
	if err := db.Create(&admin).Error; err != nil {
		t.Fatalf("Failed to create admin: %v", err)
	}
	return admin
}

func TestPasswordHashing(t *testing.T) {
	password := "testpassword123"

	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	if hash == password {
		t.Error("Hash should not equal plain password")
	}

	if !CheckPassword(password, hash) {
		t.Error("CheckPassword should return true for correct password")
	}

	if CheckPassword("wrongpassword", hash) {
		t.Error("CheckPassword should return false for incorrect password")
	}
}

func TestJWTToken(t *testing.T) {
	tokens := NewTokenService(testSecret, time.Hour)
	token, err := tokens.GenerateToken(models.Principal{ID: 7, Kind: models.PrincipalAdmin, Role: models.AdminRoleCoordinator})
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	claims, err := tokens.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}

	p := claims.Principal()
	if p.ID != 7 || !p.IsCoordinator() {
		t.Errorf("Unexpected principal %+v", p)
	}
}

func TestInvalidToken(t *testing.T) {
	tokens := NewTokenService(testSecret, time.Hour)
	if _, err := tokens.ValidateToken("invalid-token"); err != ErrInvalidToken {
		t.Errorf("Expected ErrInvalidToken, got %v", err)
	}

	other := NewTokenService("another-secret-of-16", time.Hour)
	token, _ := other.GenerateToken(models.Principal{ID: 1, Kind: models.PrincipalStudent})
	if _, err := tokens.ValidateToken(token); err != ErrInvalidToken {
		t.Errorf("Expected ErrInvalidToken for foreign signature, got %v", err)
	}
}

func TestExpiredToken(t *testing.T) {
	tokens := NewTokenService(testSecret, time.Hour)
	tokens.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := tokens.GenerateToken(models.Principal{ID: 1, Kind: models.PrincipalStudent})
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	if _, err := tokens.ValidateToken(token); err != ErrExpiredToken {
		t.Errorf("Expected ErrExpiredToken, got %v", err)
	}
}

func TestTokenWithUnknownKindRejected(t *testing.T) {
	tokens := NewTokenService(testSecret, time.Hour)
	token, _ := tokens.GenerateToken(models.Principal{ID: 1, Kind: "robot"})
	if _, err := tokens.ValidateToken(token); err != ErrInvalidToken {
		t.Errorf("Expected ErrInvalidToken, got %v", err)
	}

	token, _ = tokens.GenerateToken(models.Principal{ID: 1, Kind: models.PrincipalAdmin, Role: "janitor"})
	if _, err := tokens.ValidateToken(token); err != ErrInvalidToken {
		t.Errorf("Expected ErrInvalidToken for unknown role, got %v", err)
	}
}

func TestAdminLogin(t *testing.T) {
	db := setupTestDB(t)
	tokens := NewTokenService(testSecret, time.Hour)
	router := setupTestRouter(db, tokens)
	createAdmin(t, db, "prof@example.com", "password123", models.AdminRoleProfessor)

	jsonBody, _ := json.Marshal(LoginRequest{Email: "prof@example.com", Password: "password123"})
	req, _ := http.NewRequest("POST", "/auth/admins/login", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var response AuthResponse
	json.Unmarshal(resp.Body.Bytes(), &response)

	claims, err := tokens.ValidateToken(response.Token)
	if err != nil {
		t.Fatalf("Returned token invalid: %v", err)
	}
	if claims.Role != models.AdminRoleProfessor {
		t.Errorf("Expected role professor, got %s", claims.Role)
	}
}

func TestAdminLoginWrongPassword(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db, NewTokenService(testSecret, time.Hour))
	createAdmin(t, db, "prof@example.com", "password123", models.AdminRoleProfessor)

	jsonBody, _ := json.Marshal(LoginRequest{Email: "prof@example.com", Password: "wrongpassword"})
	req, _ := http.NewRequest("POST", "/auth/admins/login", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", resp.Code)
	}
}

func TestMeForStudent(t *testing.T) {
	db := setupTestDB(t)
	tokens := NewTokenService(testSecret, time.Hour)
	router := setupTestRouter(db, tokens)

	student := models.Student{Email: "ana@example.com", FirstName: "Ana", LastName: "Lopez"}
	db.Create(&student)
	token, _ := tokens.GenerateToken(models.Principal{ID: student.ID, Kind: models.PrincipalStudent})

	req, _ := http.NewRequest("GET", "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var profile ProfileResponse
	json.Unmarshal(resp.Body.Bytes(), &profile)
	if profile.Email != "ana@example.com" || profile.Name != "Ana Lopez" {
		t.Errorf("Unexpected profile %+v", profile)
	}
}

func TestMeWithoutAuth(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db, NewTokenService(testSecret, time.Hour))

	req, _ := http.NewRequest("GET", "/auth/me", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", resp.Code)
	}
}

func TestRoleGuards(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tokens := NewTokenService(testSecret, time.Hour)
	r := gin.New()
	ok := func(c *gin.Context) { c.Status(http.StatusNoContent) }
	r.GET("/student", AuthMiddleware(tokens), RequireStudent(), ok)
	r.GET("/admin", AuthMiddleware(tokens), RequireAdmin(), ok)
	r.GET("/superior", AuthMiddleware(tokens), RequireAdminRole(models.AdminRoleRoot, models.AdminRoleProfessor), ok)

	student, _ := tokens.GenerateToken(models.Principal{ID: 1, Kind: models.PrincipalStudent})
	coordinator, _ := tokens.GenerateToken(models.Principal{ID: 2, Kind: models.PrincipalAdmin, Role: models.AdminRoleCoordinator})
	root, _ := tokens.GenerateToken(models.Principal{ID: 3, Kind: models.PrincipalAdmin, Role: models.AdminRoleRoot})

	tests := []struct {
		path  string
		token string
		want  int
	}{
		{"/student", student, http.StatusNoContent},
		{"/student", root, http.StatusForbidden},
		{"/admin", student, http.StatusForbidden},
		{"/admin", coordinator, http.StatusNoContent},
		{"/superior", coordinator, http.StatusForbidden},
		{"/superior", root, http.StatusNoContent},
	}

	for _, tt := range tests {
		req, _ := http.NewRequest("GET", tt.path, nil)
		req.Header.Set("Authorization", "Bearer "+tt.token)
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)
		if resp.Code != tt.want {
			t.Errorf("%s: expected %d, got %d", tt.path, tt.want, resp.Code)
		}
	}
}
