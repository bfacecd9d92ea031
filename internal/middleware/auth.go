package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/goatkit/incidentquery/internal/apierrors"
	"github.com/goatkit/incidentquery/internal/auth"
)

// ContextKeyClaims is the gin context key holding the caller's *auth.Claims.
const ContextKeyClaims = "claims"

// ClaimsDecoder decodes an Authorization header value. Invalid or absent
// credentials yield ok == false.
type ClaimsDecoder interface {
	DecodeHeader(header string) (*auth.Claims, bool)
}

// Authenticate decodes the caller's credential, if any, and stores the
// claims in the context. It never rejects a request; RequirePolicy does.
func Authenticate(decoder ClaimsDecoder) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, ok := decoder.DecodeHeader(c.GetHeader("Authorization")); ok {
			c.Set(ContextKeyClaims, claims)
		}
		c.Next()
	}
}

// ClaimsFromContext returns the claims set by Authenticate.
func ClaimsFromContext(c *gin.Context) (*auth.Claims, bool) {
	v, exists := c.Get(ContextKeyClaims)
	if !exists {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok && claims != nil
}

// RequirePolicy admits the request only if the caller satisfies the policy
// of the given endpoint class. It must run before any data access.
func RequirePolicy(class auth.EndpointClass) gin.HandlerFunc {
	policy, ok := auth.Policies[class]
	if !ok {
		panic("middleware: no policy for endpoint class " + string(class))
	}
	return func(c *gin.Context) {
		claims, _ := ClaimsFromContext(c)
		if err := policy.Admit(claims); err != nil {
			AbortAuth(c, err)
			return
		}
		c.Next()
	}
}

// AbortAuth writes the envelope for an authentication or authorization
// failure.
func AbortAuth(c *gin.Context, err error) {
	switch {
	case errors.Is(err, auth.ErrAuthenticationRequired):
		apierrors.Abort(c, apierrors.CodeUnauthorized, "")
	case errors.Is(err, auth.ErrNotAuthorized):
		apierrors.Abort(c, apierrors.CodeForbidden, "")
	default:
		apierrors.Abort(c, apierrors.CodeInternalError, "")
	}
}
