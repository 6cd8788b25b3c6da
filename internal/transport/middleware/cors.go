package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS allows the frontend origins to call the API with the session cookie.
// Credentials rule out the "*" origin, so an empty list allows nothing.
func CORS(origins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", RequestIDHeader},
		ExposedHeaders:   []string{RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	})
}
