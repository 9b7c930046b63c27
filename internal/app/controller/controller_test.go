package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/omsapp/oms-backend/internal/app/model"
	"github.com/omsapp/oms-backend/internal/app/repository"
	"github.com/omsapp/oms-backend/internal/db"
	apperrors "github.com/omsapp/oms-backend/internal/errors"
	"github.com/omsapp/oms-backend/pkg/util"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var testTokenOptions = util.TokenOptions{
	Secret:   "test-jwt-secret-for-controllers",
	Issuer:   "OMS",
	Audience: "OMS",
	TTL:      time.Hour,
}

type capturedReset struct {
	email string
	token string
}

type captureNotifier struct {
	mu   sync.Mutex
	sent []capturedReset
}

func (n *captureNotifier) SendPasswordReset(_ context.Context, email, _ string, token string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, capturedReset{email: email, token: token})
	return nil
}

func (n *captureNotifier) last() (capturedReset, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.sent) == 0 {
		return capturedReset{}, false
	}
	return n.sent[len(n.sent)-1], true
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gin.SetMode(gin.TestMode)
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })
	return testDB
}

func createTestUser(t *testing.T, testDB *gorm.DB, email, password string, role model.UserRole, active bool) *model.User {
	t.Helper()
	hash, err := util.HashPassword(password)
	require.NoError(t, err)

	user := &model.User{
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		FirstName:    "Test",
		LastName:     "User",
		IsActive:     active,
	}
	require.NoError(t, repository.NewUserRepository(testDB).Create(context.Background(), user))
	return user
}

func bearerFor(t *testing.T, user *model.User) string {
	t.Helper()
	token, _, err := util.GenerateToken(util.TokenSubject{
		UserID: user.ID,
		Email:  user.Email,
		Role:   string(user.Role),
	}, testTokenOptions)
	require.NoError(t, err)
	return "Bearer " + token
}

func doJSON(router http.Handler, method, path string, body interface{}, authHeader string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			_ = json.NewEncoder(&buf).Encode(body)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) apperrors.ErrorResponse {
	t.Helper()
	return decodeBody[apperrors.ErrorResponse](t, w)
}
