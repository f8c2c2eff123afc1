// Command ledger_token mints bearer tokens for systems calling the ledger API.
// The ledger has no login flow; operators issue one token per calling actor.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/SscSPs/ledger_engine/internal/utils"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	subject := flag.String("subject", "", "actor id recorded on every mutation made with the token")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	_ = godotenv.Load()
	viper.SetDefault("JWT_ISSUER", "ledger-engine")
	viper.AutomaticEnv()

	secret := viper.GetString("JWT_SECRET")
	if secret == "" {
		logger.Error("JWT_SECRET environment variable not set")
		os.Exit(1)
	}

	token, err := utils.GenerateJWT(*subject, secret, *ttl, viper.GetString("JWT_ISSUER"))
	if err != nil {
		logger.Error("Failed to generate token", slog.String("error", err.Error()))
		os.Exit(1)
	}
	fmt.Println(token)
}
