package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

func TestIssueAndParse(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	iss := NewIssuer("secret", time.Hour).WithClock(func() time.Time { return now })

	token, err := iss.Issue(42)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	id, err := iss.Parse(token)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if id != 42 {
		t.Fatalf("expected 42, got %d", id)
	}

	if _, err := NewIssuer("other", time.Hour).WithClock(func() time.Time { return now }).Parse(token); err == nil {
		t.Fatalf("expected signature mismatch to fail")
	}

	now = now.Add(2 * time.Hour)
	if _, err := iss.Parse(token); err == nil {
		t.Fatalf("expected expired token to fail")
	}
}

func TestParseRejectsOtherAlgorithms(t *testing.T) {
	claims := jwt.RegisteredClaims{Subject: "1", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := NewIssuer("secret", time.Hour).Parse(raw); err == nil {
		t.Fatalf("expected unsigned token to be rejected")
	}
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	iss := NewIssuer("secret", time.Hour)
	router := gin.New()
	router.GET("/me", iss.Middleware(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": UserID(c)})
	})

	token, err := iss.Issue(7)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	cases := []struct {
		header string
		status int
	}{
		{"", http.StatusUnauthorized},
		{"Bearer garbage", http.StatusUnauthorized},
		{token, http.StatusUnauthorized},
		{"Bearer " + token, http.StatusOK},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != tc.status {
			t.Fatalf("header %q: expected %d, got %d", tc.header, tc.status, rec.Code)
		}
	}
}
