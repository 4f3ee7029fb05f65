package middleware

import (
	"log/slog"
	"net/http"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/andrewpaige1/lingocards-api/errs"
	"github.com/andrewpaige1/lingocards-api/models"
	"github.com/andrewpaige1/lingocards-api/utils"
)

// RequireUser loads the token's user and attaches it to the request context.
// Requests without a valid token, or whose user no longer exists, get a 401
// before the handler sees the body.
func RequireUser(db *gorm.DB) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			userID, ok := utils.GetSubject(r)
			if !ok {
				utils.WriteError(w, r, errs.Unauthorized("authentication required"))
				return
			}

			var user models.User
			if err := db.WithContext(r.Context()).Where("id = ?", userID).First(&user).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					slog.WarnContext(r.Context(), "RequireUser: token for unknown user", slog.String("user_id", userID))
					utils.WriteError(w, r, errs.Unauthorized("authentication required"))
					return
				}
				utils.WriteError(w, r, errors.Wrap(err, "load user"))
				return
			}

			setLogUser(r.Context(), user.ID)
			next.ServeHTTP(w, r.WithContext(utils.WithUser(r.Context(), &user)))
		}
	}
}
