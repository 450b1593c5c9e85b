package api

import (
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"

	"inventory/internal/auth"
)

// Options configures the API router.
type Options struct {
	Hasher        auth.Hasher
	SessionSecret string
	SessionTTL    time.Duration
	SecureCookie  bool
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(pool *sqlx.DB, opts Options) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{
		Hasher:       opts.Hasher,
		Secret:       opts.SessionSecret,
		TTL:          opts.SessionTTL,
		SecureCookie: opts.SecureCookie,
	}
	itemsHandler := &ItemsHandler{}
	commentsHandler := &CommentsHandler{}
	tagsHandler := &TagsHandler{}

	authMW := AuthMiddleware(opts.SessionSecret)
	authed := func(h http.HandlerFunc) http.Handler { return authMW(h) }

	mux.HandleFunc("GET /heartbeat", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// Public: login and logout.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/auth/logout", authHandler.Logout)
	mux.HandleFunc("DELETE /api/auth/logout", authHandler.Logout)

	mux.Handle("POST /api/auth/password", authed(authHandler.ChangePassword))
	mux.Handle("GET /api/auth/me", authed(authHandler.Me))

	// Items.
	mux.Handle("GET /api/items", authed(itemsHandler.List))
	mux.Handle("POST /api/items", authed(itemsHandler.Create))
	mux.Handle("GET /api/items/{id}", authed(itemsHandler.Get))
	mux.Handle("PUT /api/items/{id}", authed(itemsHandler.Update))
	mux.Handle("DELETE /api/items/{id}", authed(itemsHandler.Delete))
	mux.Handle("GET /api/items/{id}/revisions", authed(itemsHandler.Revisions))
	mux.Handle("PUT /api/items/{id}/image", authed(itemsHandler.UploadImage))
	mux.Handle("GET /api/items/{id}/image", authed(itemsHandler.GetImage))

	// Comments.
	mux.Handle("POST /api/items/{id}/comments", authed(commentsHandler.Create))
	mux.Handle("PUT /api/items/{id}/comments/{comment_id}", authed(commentsHandler.Update))
	mux.Handle("DELETE /api/items/{id}/comments/{comment_id}", authed(commentsHandler.Delete))
	mux.Handle("GET /api/items/{id}/comments/{comment_id}/revisions", authed(commentsHandler.Revisions))

	// Tags.
	mux.Handle("GET /api/tags", authed(tagsHandler.List))
	mux.Handle("POST /api/items/{id}/tags", authed(tagsHandler.Associate))
	mux.Handle("DELETE /api/items/{id}/tags/{tag_id}", authed(tagsHandler.Dissociate))

	return SecurityHeaders(UnitOfWork(pool)(mux))
}
