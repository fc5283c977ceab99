package middleware

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/fernet/fernet-go"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/api/response"
	"github.com/rs/zerolog/log"
)

const (
	// APIKeyHeader carries the shared internal API key.
	APIKeyHeader = "X-API-Key"
	// TimeTokenHeader carries a fernet token minted from the API key.
	TimeTokenHeader = "X-Time-Token"
	// APIKeyEnv names the environment variable holding the internal API key.
	APIKeyEnv = "INTERNAL_API_KEY"
	// TimeTokenTTL is how long a time token is accepted after it was minted.
	TimeTokenTTL = 5 * time.Minute
)

// tokenKey derives the fernet key of an API key.
func tokenKey(apiKey string) *fernet.Key {
	k := fernet.Key(sha256.Sum256([]byte(apiKey)))
	return &k
}

// GenerateTimeToken mints a time token for apiKey. The token embeds its
// creation time and is valid for TimeTokenTTL.
func GenerateTimeToken(apiKey string) string {
	msg := []byte(strconv.FormatInt(time.Now().Unix(), 10))
	tok, err := fernet.EncryptAndSign(msg, tokenKey(apiKey))
	if err != nil {
		log.Error().Err(err).Msg("failed to generate time token")
		return ""
	}
	return string(tok)
}

// APIKeyMiddleware protects internal endpoints. A request must carry the
// internal API key and a time token minted from it within TimeTokenTTL.
// Returns 500 when no internal API key is configured and 401 otherwise.
func APIKeyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		expected := os.Getenv(APIKeyEnv)
		if expected == "" {
			response.RespondError(w, http.StatusInternalServerError, "internal server error", "Authentication not loaded")
			return
		}

		apiKey := r.Header.Get(APIKeyHeader)
		if apiKey == "" {
			response.RespondError(w, http.StatusUnauthorized, "unauthorized", "Missing API key")
			return
		}
		if subtle.ConstantTimeCompare([]byte(apiKey), []byte(expected)) != 1 {
			response.RespondError(w, http.StatusUnauthorized, "unauthorized", "Invalid API key")
			return
		}

		timeToken := r.Header.Get(TimeTokenHeader)
		if timeToken == "" {
			response.RespondError(w, http.StatusUnauthorized, "unauthorized", "Missing Time token")
			return
		}
		if fernet.VerifyAndDecrypt([]byte(timeToken), TimeTokenTTL, []*fernet.Key{tokenKey(expected)}) == nil {
			response.RespondError(w, http.StatusUnauthorized, "unauthorized", "Time token is invalid or expired")
			return
		}

		next.ServeHTTP(w, r)
	})
}
