package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Shopper context keys
const (
	ShopperKey      = "shopper"
	ShopperScopeKey = "shopper_scope"
	AuthHeaderKey   = "Authorization"
	BearerPrefix    = "Bearer "
)

// ScopeInternal marks tokens issued to back-office and logistics
// callers rather than shoppers.
const ScopeInternal = "internal"

// CartMerger folds a guest cart into a user's cart. It is called when
// an authenticated request still carries a guest session cookie, which
// happens on the first request after login.
type CartMerger interface {
	MergeGuestIntoUser(ctx context.Context, guest, user identity.Identity) error
}

// ShopperConfig holds configuration for the shopper identity middleware
type ShopperConfig struct {
	// JWTSecret verifies shopper access tokens (HS256)
	JWTSecret string
	// JWTIssuer, when set, is required in the token's iss claim
	JWTIssuer string
	// CookieName is the guest session cookie
	CookieName     string
	CookieMaxAge   time.Duration
	CookieSecure   bool
	CookieSameSite http.SameSite
	// Merger is invoked when a login leaves a guest cart behind
	Merger CartMerger
	Logger *zap.Logger
}

type shopperClaims struct {
	Scope string `json:"scope,omitempty"`
	jwt.RegisteredClaims
}

// ShopperIdentity resolves who is shopping on every request: an
// authenticated user when a valid Bearer token is present, otherwise a
// guest keyed by the session cookie. Guests without a cookie get one
// minted here, so every downstream handler always sees an identity.
func ShopperIdentity(cfg ShopperConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		guestKey, _ := c.Cookie(cfg.CookieName)

		authHeader := c.GetHeader(AuthHeaderKey)
		if authHeader != "" {
			if !strings.HasPrefix(authHeader, BearerPrefix) {
				abortUnauthorized(c, dto.ErrCodeInvalidToken, "Invalid authorization header format")
				return
			}
			tokenString := strings.TrimPrefix(authHeader, BearerPrefix)

			claims, err := parseShopperToken(tokenString, cfg)
			if err != nil {
				code := dto.ErrCodeInvalidToken
				message := "Invalid token"
				if errors.Is(err, jwt.ErrTokenExpired) {
					code = dto.ErrCodeTokenExpired
					message = "Token has expired"
				}
				abortUnauthorized(c, code, message)
				return
			}

			userID, err := uuid.Parse(claims.Subject)
			if err != nil {
				abortUnauthorized(c, dto.ErrCodeInvalidToken, "Invalid token subject")
				return
			}
			user := identity.User(userID)

			// A lingering guest cookie means this browser shopped
			// anonymously before logging in; fold that cart in and
			// retire the cookie. Merge failures must not block the
			// request, the guest cart simply survives until retry.
			if guestKey != "" && cfg.Merger != nil {
				if err := cfg.Merger.MergeGuestIntoUser(c.Request.Context(), identity.Guest(guestKey), user); err != nil {
					if cfg.Logger != nil {
						cfg.Logger.Warn("guest cart merge failed",
							zap.String("user_id", userID.String()),
							zap.Error(err))
					}
				} else {
					expireGuestCookie(c, cfg)
				}
			}

			setShopper(c, user, claims.Scope)
			c.Next()
			return
		}

		if guestKey == "" {
			guestKey = uuid.NewString()
			issueGuestCookie(c, cfg, guestKey)
		}

		setShopper(c, identity.Guest(guestKey), "")
		c.Next()
	}
}

func parseShopperToken(tokenString string, cfg ShopperConfig) (*shopperClaims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256"})}
	if cfg.JWTIssuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.JWTIssuer))
	}

	claims := &shopperClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(cfg.JWTSecret), nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenUnverifiable
	}
	return claims, nil
}

func setShopper(c *gin.Context, shopper identity.Identity, scope string) {
	c.Set(ShopperKey, shopper)
	if scope != "" {
		c.Set(ShopperScopeKey, scope)
	}

	ctx := c.Request.Context()
	ctx, _ = logger.WithShopper(ctx, logger.FromContext(ctx), shopper.Key())
	c.Request = c.Request.WithContext(ctx)
}

func issueGuestCookie(c *gin.Context, cfg ShopperConfig, key string) {
	c.SetSameSite(cfg.CookieSameSite)
	c.SetCookie(cfg.CookieName, key, int(cfg.CookieMaxAge.Seconds()), "/", "", cfg.CookieSecure, true)
}

func expireGuestCookie(c *gin.Context, cfg ShopperConfig) {
	c.SetSameSite(cfg.CookieSameSite)
	c.SetCookie(cfg.CookieName, "", -1, "/", "", cfg.CookieSecure, true)
}

func abortUnauthorized(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(code, message))
}

// SameSiteFromString maps a config value to its http.SameSite mode,
// defaulting to Lax for unrecognized values.
func SameSiteFromString(s string) http.SameSite {
	switch strings.ToLower(s) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

// GetShopper returns the identity resolved by ShopperIdentity
func GetShopper(c *gin.Context) (identity.Identity, bool) {
	v, exists := c.Get(ShopperKey)
	if !exists {
		return identity.Identity{}, false
	}
	shopper, ok := v.(identity.Identity)
	return shopper, ok
}

// GetShopperScope returns the scope claim of the caller's token, or ""
func GetShopperScope(c *gin.Context) string {
	return c.GetString(ShopperScopeKey)
}

// RequireInternal rejects callers whose token does not carry the
// internal scope. Fulfilment endpoints sit behind it.
func RequireInternal() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetShopperScope(c) != ScopeInternal {
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponse(
				dto.ErrCodeForbidden,
				"This endpoint requires an internal token",
			))
			return
		}
		c.Next()
	}
}
