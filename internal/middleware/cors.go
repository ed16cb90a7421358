package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// CORS returns middleware applying the API's cross-origin policy. An empty
// origin list allows any origin, which is what browser clients of the
// hosted functions expect.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Authorization",
			"X-Client-Info",
			"Apikey",
			"Content-Type",
		},
		ExposedHeaders: []string{
			"Retry-After",
		},
		MaxAge: 600,
	})
	return c.Handler
}
