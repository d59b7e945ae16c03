// Package auth guards the HTTP surface with JWT bearer tokens resolved
// against the identity provider's JWKS.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"jan-server/services/assistant-api/internal/config"
	"jan-server/services/assistant-api/internal/utils/identity"
)

// SubjectKey is the gin context key carrying the verified token subject.
const SubjectKey = "auth_subject"

// Validator checks bearer tokens against the configured issuer set,
// audience, and JWKS. A disabled validator passes every request through.
type Validator struct {
	cfg     *config.Config
	log     zerolog.Logger
	jwks    *keyfunc.JWKS
	issuers map[string]struct{}
}

// NewValidator starts JWKS fetching when auth is enabled.
func NewValidator(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Validator, error) {
	v := &Validator{cfg: cfg, log: log}
	if !cfg.AuthEnabled {
		return v, nil
	}

	// Tokens minted inside a compose network may carry the service-visible
	// issuer URL instead of the host-visible one.
	v.issuers = make(map[string]struct{}, len(cfg.AuthExtraIssuers)+1)
	v.issuers[strings.TrimSpace(cfg.AuthIssuer)] = struct{}{}
	for _, issuer := range cfg.AuthExtraIssuers {
		if issuer = strings.TrimSpace(issuer); issuer != "" {
			v.issuers[issuer] = struct{}{}
		}
	}

	jwks, err := keyfunc.Get(cfg.AuthJWKSURL, keyfunc.Options{
		Ctx:               ctx,
		RefreshInterval:   time.Hour,
		RefreshUnknownKID: true,
		RefreshErrorHandler: func(err error) {
			log.Error().Err(err).Msg("jwks refresh error")
		},
	})
	if err != nil {
		return nil, err
	}
	v.jwks = jwks
	return v, nil
}

// Middleware enforces bearer auth on the wrapped routes. Verified requests
// carry the token subject in the gin context under SubjectKey and on the
// request context, where services stamp it onto records they create.
func (v *Validator) Middleware() gin.HandlerFunc {
	if v == nil || !v.cfg.AuthEnabled {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		tokenString := bearerToken(c.GetHeader("Authorization"))
		if tokenString == "" {
			abortUnauthorized(c, "missing bearer token")
			return
		}

		claims, err := v.verify(tokenString)
		if err != nil {
			v.log.Debug().Err(err).Msg("rejected bearer token")
			abortUnauthorized(c, "invalid token")
			return
		}

		if subject, err := claims.GetSubject(); err == nil && subject != "" {
			c.Set(SubjectKey, subject)
			c.Request = c.Request.WithContext(identity.WithSubject(c.Request.Context(), subject))
		}
		c.Next()
	}
}

func (v *Validator) verify(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, v.jwks.Keyfunc,
		jwt.WithValidMethods([]string{"RS256", "RS384", "RS512"}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("unexpected token claims")
	}

	issuer, err := claims.GetIssuer()
	if err != nil {
		return nil, err
	}
	if _, allowed := v.issuers[issuer]; !allowed {
		return nil, fmt.Errorf("issuer %q not allowed", issuer)
	}

	if audience := strings.TrimSpace(v.cfg.AuthAudience); audience != "" {
		audiences, err := claims.GetAudience()
		if err != nil {
			return nil, err
		}
		if len(audiences) > 0 && !containsAudience(audiences, audience) {
			return nil, fmt.Errorf("audience %v not accepted", audiences)
		}
	}
	return claims, nil
}

func containsAudience(audiences jwt.ClaimStrings, want string) bool {
	for _, aud := range audiences {
		if aud == want {
			return true
		}
	}
	return false
}

// Ready reports whether the validator can serve requests. Disabled auth is
// always ready.
func (v *Validator) Ready() bool {
	if v == nil || !v.cfg.AuthEnabled {
		return true
	}
	return v.jwks != nil
}

func bearerToken(header string) string {
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": message})
}
