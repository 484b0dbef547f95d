// Command devtoken mints an access token for local testing of the API.
// Tokens are normally issued by the identity service in front of it, which
// also owns the users table; the -user id must exist there before it can book.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/iliyamo/cinema-booking/internal/model"
	"github.com/iliyamo/cinema-booking/internal/utils"
)

func main() {
	_ = godotenv.Load()
	userID := flag.Uint64("user", 1, "user id to put in the sub claim")
	role := flag.String("role", model.RoleCustomer, "role claim: customer or admin")
	ttl := flag.Duration("ttl", time.Hour, "token lifetime")
	flag.Parse()

	tok, err := utils.NewAccessToken(os.Getenv("JWT_SECRET"), *userID, *role, *ttl)
	if err != nil {
		fmt.Fprintln(os.Stderr, "devtoken:", err)
		os.Exit(1)
	}
	fmt.Println(tok.Token)
}
