package identity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cacheport "github.com/MavisVermie/TBR3-sub000/internal/infrastructure/cache/port"
)

func signToken(t *testing.T, secret, sub string, exp time.Duration) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sub,
		"exp": time.Now().Add(exp).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestJWTVerifier(t *testing.T) {
	v := NewJWTVerifier("secret")

	t.Run("valid token resolves subject", func(t *testing.T) {
		userID, err := v.Verify(signToken(t, "secret", "user-1", time.Hour))
		require.NoError(t, err)
		assert.Equal(t, "user-1", userID)
	})

	t.Run("wrong secret rejected", func(t *testing.T) {
		_, err := v.Verify(signToken(t, "other", "user-1", time.Hour))
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired token rejected", func(t *testing.T) {
		_, err := v.Verify(signToken(t, "secret", "user-1", -time.Minute))
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage rejected", func(t *testing.T) {
		_, err := v.Verify("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestRequireAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	v := NewJWTVerifier("secret")

	r := gin.New()
	r.GET("/whoami", RequireAuth(v), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": UserID(c)})
	})

	t.Run("authorization header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, "secret", "user-1", time.Hour))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "user-1")
	})

	t.Run("token query fallback", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/whoami?token="+signToken(t, "secret", "user-2", time.Hour), nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "user-2")
	})

	t.Run("missing token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("malformed header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Token abc")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

type memCache struct {
	values map[string]string
	sets   int
}

func (m *memCache) Get(_ context.Context, key string) (string, error) {
	v, ok := m.values[key]
	if !ok {
		return "", cacheport.ErrMiss
	}
	return v, nil
}

func (m *memCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	if m.values == nil {
		m.values = make(map[string]string)
	}
	m.values[key] = value
	m.sets++
	return nil
}

func (m *memCache) Del(_ context.Context, keys ...string) (int64, error) { return 0, nil }
func (m *memCache) Ping(_ context.Context) error                         { return nil }
func (m *memCache) Close() error                                         { return nil }

type stubDirectory struct {
	users map[string]User
	calls int
}

func (s *stubDirectory) GetUser(_ context.Context, id string) (User, error) {
	s.calls++
	u, ok := s.users[id]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return u, nil
}

func TestCachedDirectory(t *testing.T) {
	inner := &stubDirectory{users: map[string]User{"u1": {ID: "u1", Username: "sara"}}}
	cache := &memCache{}
	d := NewCachedDirectory(inner, cache)

	u, err := d.GetUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "sara", u.Username)
	assert.Equal(t, 1, inner.calls)

	// second lookup served from cache
	u, err = d.GetUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "sara", u.Username)
	assert.Equal(t, 1, inner.calls)

	// misses are not cached
	_, err = d.GetUser(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
	_, err = d.GetUser(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Equal(t, 3, inner.calls)
}
