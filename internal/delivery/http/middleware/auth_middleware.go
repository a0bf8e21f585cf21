package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"keyskeeper-backend/config"
	"keyskeeper-backend/internal/delivery/http/response"
	"keyskeeper-backend/internal/domain"
	"keyskeeper-backend/pkg/apperror"
	"keyskeeper-backend/pkg/auth"
	"keyskeeper-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// resolveToken extracts and validates the Supabase token from the request,
// returning the auth subject and email claims. On failure it has already
// written the 401 response and aborted.
func resolveToken(c *gin.Context, jwksProvider *auth.Provider, cfg *config.Config) (sub, email string, ok bool) {
	authHeader := c.GetHeader("Authorization")
	var tokenString string

	// 1. Try to get token from Header
	if authHeader != "" {
		tokenString = strings.TrimPrefix(authHeader, "Bearer ")
	} else {
		// 2. Try to get token from Cookie
		cookie, err := c.Cookie("auth_token")
		if err == nil && cookie != "" {
			tokenString = cookie
		}
	}

	if tokenString == "" {
		response.Error(c, http.StatusUnauthorized, "Authorization header or auth_token cookie required", nil)
		c.Abort()
		return "", "", false
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); ok {
			// HS256 - Use Secret
			if cfg.SupabaseJWTSecret == "" {
				return nil, fmt.Errorf("HS256 token received but SUPABASE_JWT_SECRET is not configured")
			}
			return []byte(cfg.SupabaseJWTSecret), nil
		}

		if _, ok := token.Method.(*jwt.SigningMethodRSA); ok {
			// RS256 - Use JWKS
			return jwksProvider.KeyFunc(token)
		}

		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	})

	if err != nil || !token.Valid {
		logger.Log.Warn("token validation failed", "error", err)
		response.Error(c, http.StatusUnauthorized, "Invalid token", nil)
		c.Abort()
		return "", "", false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "Invalid claims", nil)
		c.Abort()
		return "", "", false
	}

	sub, _ = claims["sub"].(string)
	email, _ = claims["email"].(string)
	return sub, email, true
}

// AuthMiddleware resolves the session: it validates the Supabase token, then
// re-reads the profile row to get the authoritative role. A valid token whose
// auth user has no profile row yet is the recoverable "needs verification"
// state, not an access failure.
func AuthMiddleware(jwksProvider *auth.Provider, cfg *config.Config, authUC domain.AuthUsecase) gin.HandlerFunc {
	return func(c *gin.Context) {
		sub, email, ok := resolveToken(c, jwksProvider, cfg)
		if !ok {
			return
		}

		// Fetch fresh profile data from DB to get the correct role. The JWT
		// role claim is never trusted; it may be 'authenticated' or stale.
		profile, err := authUC.GetCurrentProfile(c.Request.Context(), sub)
		if err != nil {
			var appErr *apperror.AppError
			if errors.As(err, &appErr) && appErr.Kind == apperror.KindNeedsVerification {
				response.Error(c, appErr.Code, appErr.Message, response.ErrorBody{
					Kind: string(appErr.Kind),
					Meta: gin.H{"email": email, "resend_available": true},
				})
				c.Abort()
				return
			}
			response.Error(c, http.StatusUnauthorized, "User not found", nil)
			c.Abort()
			return
		}

		role := profile.Role
		if role == "" {
			role = domain.RoleTenant // Fallback
		}

		c.Set(string(domain.KeyUserID), sub)
		c.Set(string(domain.KeyUserEmail), email)
		c.Set(string(domain.KeyUserRole), string(role))

		// Mirror onto the request context so usecases called with
		// c.Request.Context() see the same principal.
		ctx := context.WithValue(c.Request.Context(), domain.KeyUserID, sub)
		ctx = context.WithValue(ctx, domain.KeyUserEmail, email)
		ctx = context.WithValue(ctx, domain.KeyUserRole, string(role))
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// TokenOnlyMiddleware validates the token without requiring a profile row.
// Used by the ensure-profile and resend-verification endpoints, which run in
// the window between email confirmation and profile creation.
func TokenOnlyMiddleware(jwksProvider *auth.Provider, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		sub, email, ok := resolveToken(c, jwksProvider, cfg)
		if !ok {
			return
		}
		c.Set(string(domain.KeyUserID), sub)
		c.Set(string(domain.KeyUserEmail), email)
		c.Next()
	}
}

// RequireRoles gates a route group to the given roles. The 403 payload carries
// the caller's own landing route so the client can redirect instead of showing
// a dead end.
func RequireRoles(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := domain.Role(c.GetString(string(domain.KeyUserRole)))
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}
		response.Error(c, http.StatusForbidden, "Your role does not have access to this area", response.ErrorBody{
			Kind: string(apperror.KindAccessDenied),
			Meta: gin.H{"redirect_to": role.LandingRoute()},
		})
		c.Abort()
	}
}
