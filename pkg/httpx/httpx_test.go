package httpx_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/passage/pkg/httpx"
	"github.com/aussiebroadwan/passage/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

type stubVerifier struct {
	claims jwtx.Claims
	err    error
	got    string
}

func (s *stubVerifier) Verify(token string) (jwtx.Claims, error) {
	s.got = token
	return s.claims, s.err
}

func TestChain_Order(t *testing.T) {
	var order []string
	mw := func(name string) httpx.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := httpx.Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		order = append(order, "handler")
	}), mw("first"), mw("second"))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, []string{"first", "second", "handler"}, order)
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer abc.def.ghi", "abc.def.ghi", true},
		{"bearer abc", "abc", true},
		{"Bearer    ", "", false},
		{"Basic dXNlcjpwdw==", "", false},
		{"", "", false},
		{"Bearerabc", "", false},
	}

	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.header != "" {
			r.Header.Set("Authorization", tt.header)
		}
		got, ok := httpx.BearerToken(r)
		require.Equal(t, tt.ok, ok, "header %q", tt.header)
		require.Equal(t, tt.want, got, "header %q", tt.header)
	}
}

func TestAuthnMiddleware(t *testing.T) {
	claims := jwtx.Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "ana@example.com",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}}

	var subject string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject, _ = httpx.SubjectFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	t.Run("missing header", func(t *testing.T) {
		rec := httptest.NewRecorder()
		httpx.AuthnMiddleware(&stubVerifier{})(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Contains(t, rec.Header().Get("WWW-Authenticate"), "missing bearer token")
	})

	t.Run("valid token", func(t *testing.T) {
		v := &stubVerifier{claims: claims}
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer tok")
		rec := httptest.NewRecorder()
		httpx.AuthnMiddleware(v)(next).ServeHTTP(rec, req)

		require.Equal(t, http.StatusNoContent, rec.Code)
		require.Equal(t, "tok", v.got)
		require.Equal(t, "ana@example.com", subject)
	})

	t.Run("expired token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer tok")
		rec := httptest.NewRecorder()
		httpx.AuthnMiddleware(&stubVerifier{err: jwtx.ErrExpired})(next).ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Contains(t, rec.Body.String(), "token expired")
	})

	t.Run("invalid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer tok")
		rec := httptest.NewRecorder()
		httpx.AuthnMiddleware(&stubVerifier{err: errors.New("bad")})(next).ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Contains(t, rec.Body.String(), "token verification failed")
	})
}

func TestDecodeJSON(t *testing.T) {
	t.Run("object", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@x.com","n":1}`))
		doc, err := httpx.DecodeJSON(httptest.NewRecorder(), r)
		require.NoError(t, err)

		var dst struct {
			Email string `json:"email"`
			N     int    `json:"n"`
		}
		require.NoError(t, httpx.Bind(doc, &dst))
		require.Equal(t, "a@x.com", dst.Email)
		require.Equal(t, 1, dst.N)
	})

	for name, body := range map[string]string{
		"empty":    "",
		"not json": "email=a",
		"trailing": `{"a":1}{"b":2}`,
	} {
		t.Run(name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
			_, err := httpx.DecodeJSON(httptest.NewRecorder(), r)
			require.ErrorIs(t, err, httpx.ErrBadBody)
		})
	}
}

func TestQueryInt(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?page=3&limit=abc&neg=-2", nil)
	require.Equal(t, 3, httpx.QueryInt(r, "page", 1))
	require.Equal(t, 10, httpx.QueryInt(r, "limit", 10))
	require.Equal(t, 1, httpx.QueryInt(r, "neg", 1))
	require.Equal(t, 7, httpx.QueryInt(r, "missing", 7))
}
