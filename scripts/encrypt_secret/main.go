package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/devphaseX/cqpay-api.git/internal/encrypt"
	"github.com/devphaseX/cqpay-api.git/internal/env"
)

// Reads a secret from stdin and prints the value for COINQVEST_API_SECRET_ENCRYPTED.
func main() {
	passphrase := env.GetString("SECRETS_PASSPHRASE", "")
	if passphrase == "" {
		log.Fatal("SECRETS_PASSPHRASE is required")
	}

	secret, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && secret == "" {
		log.Fatalf("failed to read secret: %v", err)
	}

	sealed, err := encrypt.EncryptSecret(strings.TrimSpace(secret), passphrase)
	if err != nil {
		log.Panic(err)
	}

	fmt.Println(sealed)
}
