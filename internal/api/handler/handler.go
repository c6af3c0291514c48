package handler

import (
	"net/http"

	"classtrack/internal/api/middleware"
)

// GetUserID pulls the authenticated principal's id out of the request context.
func GetUserID(r *http.Request) (int64, bool) {
	return middleware.GetUserIDFromContext(r.Context())
}
