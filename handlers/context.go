package handlers

import (
	"net/http"

	"github.com/Niladri080/Chat-App/models"
	"github.com/Niladri080/Chat-App/pkg"
)

// contextKey, context value çakışmalarını önlemek için özel tip.
// String key kullanılsaydı başka bir paket aynı key'i ezebilirdi.
type contextKey string

// UserContextKey, auth middleware'ın doğrulanmış kullanıcıyı context'e
// koyduğu key. Handler'lar CurrentUser ile okur.
const UserContextKey contextKey = "user"

// CurrentUser, context'ten doğrulanmış kullanıcıyı çıkarır.
// Middleware'dan geçmemiş bir route'ta çağrılırsa 401 yazar ve false döner.
func CurrentUser(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "authentication required")
		return nil, false
	}
	return user, true
}
