package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/righthome-ai/property-copilot/internal/requirement"
	"github.com/righthome-ai/property-copilot/pkg/logger"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret, subject string, expires time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func echoUser() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(GetUserID(r.Context())))
	})
}

func TestAuth(t *testing.T) {
	valid := signToken(t, testSecret, "user-42", time.Now().Add(time.Hour))

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{name: "valid", header: "Bearer " + valid, wantStatus: http.StatusOK, wantBody: "user-42"},
		{name: "lowercase scheme", header: "bearer " + valid, wantStatus: http.StatusOK, wantBody: "user-42"},
		{name: "missing", header: "", wantStatus: http.StatusUnauthorized, wantBody: "missing authorization header"},
		{name: "bad format", header: "Token " + valid, wantStatus: http.StatusUnauthorized, wantBody: "invalid authorization header format"},
		{name: "wrong secret", header: "Bearer " + signToken(t, "other", "user-42", time.Now().Add(time.Hour)), wantStatus: http.StatusUnauthorized, wantBody: "invalid token"},
		{name: "expired", header: "Bearer " + signToken(t, testSecret, "user-42", time.Now().Add(-time.Minute)), wantStatus: http.StatusUnauthorized, wantBody: "invalid token"},
		{name: "no subject", header: "Bearer " + signToken(t, testSecret, "", time.Now().Add(time.Hour)), wantStatus: http.StatusUnauthorized, wantBody: "invalid token"},
	}

	h := Auth(testSecret)(echoUser())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
		})
	}
}

func TestLogging_CorrelationID(t *testing.T) {
	var seen string
	r := chi.NewRouter()
	r.Use(Logging(logger.NewNop()))
	r.Get("/sessions/{id}", func(w http.ResponseWriter, r *http.Request) {
		seen = GetCorrelationID(r.Context())
		w.WriteHeader(http.StatusTeapot)
	})

	req := httptest.NewRequest(http.MethodGet, "/sessions/abc", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get("X-Correlation-ID"))

	req = httptest.NewRequest(http.MethodGet, "/sessions/abc", nil)
	req.Header.Set("X-Correlation-ID", "corr-1")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, "corr-1", seen)
	assert.Equal(t, "corr-1", rec.Header().Get("X-Correlation-ID"))
}

func TestRateLimit(t *testing.T) {
	h := RateLimit(2, time.Minute)(echoUser())

	codes := make([]int, 3)
	for i := range codes {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes[i] = rec.Code
		if rec.Code == http.StatusTooManyRequests {
			assert.Equal(t, "60", rec.Header().Get("Retry-After"))
		}
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	// Another user is counted separately.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	req = req.WithContext(WithUserID(req.Context(), "user-7"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestValidateUtterance(t *testing.T) {
	assert.NoError(t, ValidateUtterance("3 BHK in Mumbai"))
	assert.Error(t, ValidateUtterance(""))
	assert.Error(t, ValidateUtterance("   "))
	assert.Error(t, ValidateUtterance(strings.Repeat("a", MaxUtteranceLength+1)))
	assert.Error(t, ValidateUtterance(string([]byte{0xff, 0xfe})))
}

func TestValidateSessionID(t *testing.T) {
	assert.NoError(t, ValidateSessionID("0190f5c2-7b1a-7cc0-9a55-8d2c7f0e4b11"))
	assert.Error(t, ValidateSessionID("not-a-uuid"))
}

func TestValidateProfile(t *testing.T) {
	zero := requirement.BedroomCount(0)
	studio := requirement.Studio()

	tests := []struct {
		name    string
		profile requirement.Profile
		wantErr bool
	}{
		{name: "empty", profile: requirement.Profile{}},
		{name: "valid", profile: requirement.Profile{City: "Dubai", Currency: requirement.CurrencyAED, Budget: 3e6, Bedrooms: &studio}},
		{name: "negative budget", profile: requirement.Profile{Budget: -1}, wantErr: true},
		{name: "zero bedrooms", profile: requirement.Profile{Bedrooms: &zero}, wantErr: true},
		{name: "unknown city", profile: requirement.Profile{City: "Paris"}, wantErr: true},
		{name: "currency mismatch", profile: requirement.Profile{City: "Mumbai", Currency: requirement.CurrencyAED}, wantErr: true},
		{name: "city without currency or unit", profile: requirement.Profile{City: "Mumbai"}},
		{name: "matching unit", profile: requirement.Profile{City: "Mumbai", Currency: requirement.CurrencyINR, BudgetUnit: requirement.UnitCrore}},
		{name: "unit mismatch", profile: requirement.Profile{City: "Mumbai", BudgetUnit: requirement.UnitMillion}, wantErr: true},
		{name: "currency without city", profile: requirement.Profile{Currency: requirement.CurrencyINR}, wantErr: true},
		{name: "unit without city", profile: requirement.Profile{BudgetUnit: requirement.UnitLakh}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateProfile(tt.profile)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
