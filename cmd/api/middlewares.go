package main

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/devphaseX/cqpay-api.git/internal/auth"
)

type contextKey string

const adminContextKey contextKey = "admin"

// requireAdmin authenticates admin routes with a Bearer token.
func (app *application) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", "Authorization")

		token := extractToken(r)
		if token == "" {
			app.unauthorizedResponse(w, r, "invalid or missing authentication token")
			return
		}

		payload, err := app.authToken.ValidateAdminToken(token)
		if err != nil {
			if errors.Is(err, auth.ErrExpiredToken) {
				app.unauthorizedResponse(w, r, "authentication token has expired")
				return
			}

			app.unauthorizedResponse(w, r, "invalid authentication token")
			return
		}

		ctx := context.WithValue(r.Context(), adminContextKey, payload)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func extractToken(r *http.Request) string {
	parts := strings.Fields(r.Header.Get("Authorization"))

	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return parts[1]
	}

	return ""
}

func getAdminFromCtx(r *http.Request) *auth.AdminPayload {
	admin, ok := r.Context().Value(adminContextKey).(*auth.AdminPayload)
	if !ok {
		panic("admin context middleware not ran or functioning properly")
	}
	return admin
}
