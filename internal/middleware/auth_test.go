package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"appointment-booking-client/internal/config"
	"appointment-booking-client/internal/models"
	"appointment-booking-client/internal/utils"
)

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &config.StubConfig{JWTSecret: "mw-secret", JWTExpirationMinutes: 5}

	router := gin.New()
	router.Use(AuthMiddleware(cfg))
	router.GET("/me", func(c *gin.Context) {
		id, _ := GetUserIDFromContext(c)
		role, _ := GetUserRoleFromContext(c)
		c.JSON(http.StatusOK, gin.H{"id": id, "role": role})
	})
	admin := router.Group("/admin", RoleAuthMiddleware(models.RoleAdmin))
	admin.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	patient, err := utils.GenerateToken(&models.UserRecord{BaseModel: models.BaseModel{ID: 7}, Email: "p@example.com", Role: models.RolePatient}, cfg)
	require.NoError(t, err)
	forged, err := utils.GenerateToken(&models.UserRecord{BaseModel: models.BaseModel{ID: 1}, Role: models.RoleAdmin}, &config.StubConfig{JWTSecret: "other", JWTExpirationMinutes: 5})
	require.NoError(t, err)

	tests := []struct {
		name   string
		path   string
		header string
		code   int
		body   string
	}{
		{"missing header", "/me", "", http.StatusUnauthorized, `{"error":"Authorization header required"}`},
		{"bad scheme", "/me", "Token " + patient, http.StatusUnauthorized, `{"error":"Invalid authorization header format"}`},
		{"wrong secret", "/me", "Bearer " + forged, http.StatusUnauthorized, `{"error":"Invalid or expired token"}`},
		{"patient", "/me", "Bearer " + patient, http.StatusOK, `{"id":7,"role":"PATIENT"}`},
		{"patient on admin route", "/admin/ping", "Bearer " + patient, http.StatusForbidden, `{"error":"Access denied"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.code, w.Code)
			assert.JSONEq(t, tt.body, w.Body.String())
		})
	}
}
