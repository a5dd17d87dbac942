package server

import (
	"context"
	"net/http"

	"forkful/internal/handlers"
	applog "forkful/internal/log"
	"forkful/internal/media"
)

func newRouter(mediaStore *media.Store) http.Handler {
	mux := http.NewServeMux()
	applog.Debug(context.Background(), "registering http routes")
	mux.HandleFunc("/healthz", handlers.Health)
	mux.HandleFunc("/api/auth/token/", handlers.AuthResource)
	mux.HandleFunc("/api/users", handlers.UsersResource)
	mux.HandleFunc("/api/users/", handlers.UsersResource)
	mux.HandleFunc("/api/tags", handlers.TagsResource)
	mux.HandleFunc("/api/tags/", handlers.TagsResource)
	mux.HandleFunc("/api/ingredients", handlers.IngredientsResource)
	mux.HandleFunc("/api/ingredients/", handlers.IngredientsResource)
	mux.HandleFunc("/api/recipes", handlers.RecipesResource)
	mux.HandleFunc("/api/recipes/", handlers.RecipesResource)
	applog.Debug(context.Background(), "api routes registered")
	if mediaStore != nil {
		mux.Handle("/media/", http.StripPrefix("/media/", http.FileServer(http.Dir(mediaStore.Root()))))
		applog.Debug(context.Background(), "route registered", "path", "/media/", "static", true)
	}
	return mux
}
