package middleware

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/clerk/clerk-sdk-go/v2/jwt"

	"kokurikulumAPI/internal/logger"
)

type contextKey string

const ClerkIDKey contextKey = "clerkID"

// AdminPasswordHeader carries the shared admin password.
const AdminPasswordHeader = "X-Admin-Password"

// verifyToken returns the Clerk user ID of a session token.
var verifyToken = func(ctx context.Context, token string) (string, error) {
	claims, err := jwt.Verify(ctx, &jwt.VerifyParams{Token: token})
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// ClerkAuthMiddleware validates Clerk JWT tokens and stores the user ID in the
// request context.
func ClerkAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			respondWithError(w, http.StatusUnauthorized, "Authorization header required")
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == authHeader {
			respondWithError(w, http.StatusUnauthorized, "Invalid authorization format. Use 'Bearer <token>'")
			return
		}

		clerkID, err := verifyToken(r.Context(), token)
		if err != nil {
			logger.Warn("Token verification failed", "err", err)
			respondWithError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), ClerkIDKey, clerkID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetClerkID extracts Clerk user ID from context
func GetClerkID(ctx context.Context) (string, bool) {
	clerkID, ok := ctx.Value(ClerkIDKey).(string)
	return clerkID, ok
}

type AdminAuthConfig struct {
	// Password is checked when Clerk is disabled.
	Password string
	// UseClerk switches admin access to Clerk sessions.
	UseClerk bool
	// AllowedClerkIDs limits Clerk access to these users. Empty allows any
	// signed-in user.
	AllowedClerkIDs []string
}

// AdminAuth guards the admin dashboard routes.
func AdminAuth(cfg AdminAuthConfig) func(http.Handler) http.Handler {
	if cfg.UseClerk {
		allowed := make(map[string]bool, len(cfg.AllowedClerkIDs))
		for _, id := range cfg.AllowedClerkIDs {
			allowed[id] = true
		}
		return func(next http.Handler) http.Handler {
			return ClerkAuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				clerkID, _ := GetClerkID(r.Context())
				if len(allowed) > 0 && !allowed[clerkID] {
					logger.Warn("Admin access denied", "clerk_id", clerkID)
					respondWithError(w, http.StatusForbidden, "Admin access required")
					return
				}
				next.ServeHTTP(w, r)
			}))
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			given := r.Header.Get(AdminPasswordHeader)
			if given == "" {
				_, given, _ = r.BasicAuth()
			}
			if cfg.Password == "" || subtle.ConstantTimeCompare([]byte(given), []byte(cfg.Password)) != 1 {
				w.Header().Set("WWW-Authenticate", `Basic realm="Admin"`)
				respondWithError(w, http.StatusUnauthorized, "Invalid admin password")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
