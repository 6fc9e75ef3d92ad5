package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/devphaseX/cqpay-api.git/internal/auth"
	"github.com/devphaseX/cqpay-api.git/internal/env"
)

// Issues a bearer token for the /v1/admin routes, signed with AUTH_TOKEN_SECRET.
func main() {
	subject := flag.String("subject", "", "Who the token is for, e.g. the storefront host")
	expiry := flag.Duration("expiry", env.GetDuration("ADMIN_TOKEN_EXPIRY", 24*time.Hour), "How long the token stays valid")

	flag.Parse()

	if *subject == "" {
		log.Fatal("subject is required")
	}

	if *expiry <= 0 {
		log.Fatal("expiry must be positive")
	}

	authToken, err := auth.NewJWTToken(env.GetString("AUTH_TOKEN_SECRET", ""))
	if err != nil {
		log.Fatalf("AUTH_TOKEN_SECRET: %v", err)
	}

	token, err := authToken.GenerateAdminToken(*subject, *expiry)
	if err != nil {
		log.Panic(err)
	}

	fmt.Println(token)
}
