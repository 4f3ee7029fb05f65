package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	jwtmiddleware "github.com/auth0/go-jwt-middleware/v2"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/pkg/errors"

	"github.com/andrewpaige1/lingocards-api/auth"
	"github.com/andrewpaige1/lingocards-api/config"
	"github.com/andrewpaige1/lingocards-api/errs"
	"github.com/andrewpaige1/lingocards-api/utils"
)

// EnsureValidToken validates tokens signed by auth.CreateToken, read from the
// Authorization header or the auth cookie. Requests without a token pass through
// unauthenticated; RequireUser guards the routes that need a caller.
func EnsureValidToken(cfg *config.Config) (func(http.Handler) http.Handler, error) {
	keyFunc := func(ctx context.Context) (interface{}, error) {
		return []byte(cfg.JWTSecret), nil
	}

	jwtValidator, err := validator.New(
		keyFunc,
		validator.HS256,
		cfg.JWTIssuer,
		[]string{cfg.JWTAudience},
		validator.WithAllowedClockSkew(time.Minute),
	)
	if err != nil {
		return nil, errors.Wrap(err, "set up jwt validator")
	}

	errorHandler := func(w http.ResponseWriter, r *http.Request, err error) {
		slog.DebugContext(r.Context(), "EnsureValidToken: rejected token", slog.String("error", err.Error()))
		utils.WriteError(w, r, errs.Unauthorized("invalid or expired token"))
	}

	mw := jwtmiddleware.New(
		jwtValidator.ValidateToken,
		jwtmiddleware.WithErrorHandler(errorHandler),
		jwtmiddleware.WithCredentialsOptional(true),
		jwtmiddleware.WithTokenExtractor(jwtmiddleware.MultiTokenExtractor(
			jwtmiddleware.AuthHeaderTokenExtractor,
			cookieTokenExtractor,
		)),
	)

	return func(next http.Handler) http.Handler {
		return mw.CheckJWT(next)
	}, nil
}

// cookieTokenExtractor treats a missing cookie as no token rather than an error.
func cookieTokenExtractor(r *http.Request) (string, error) {
	cookie, err := r.Cookie(auth.CookieName)
	if errors.Is(err, http.ErrNoCookie) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return cookie.Value, nil
}
