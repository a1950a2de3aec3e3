// Command createtoken mints an identity token the CLI (or a browser
// session cookie) can present to the server.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"

	"github.com/johnlaff/ArchTime/security"
)

func main() {
	userID := flag.String("user", "", "user id (default: new uuid)")
	name := flag.String("name", "", "display name")
	email := flag.String("email", "", "email (must be on the server allow-list)")
	ttl := flag.Int64("ttl", 30*24*3600, "token lifetime in seconds")
	flag.Parse()

	secret := os.Getenv("ARCHTIME_SECRET")
	if secret == "" {
		log.Fatal("ARCHTIME_SECRET is required (base64-encoded)")
	}
	if *email == "" {
		log.Fatal("-email is required")
	}
	if *userID == "" {
		*userID = uuid.NewString()
	}

	token, err := security.CreateIdentityToken(&security.Identity{
		UserID: *userID,
		Name:   *name,
		Email:  *email,
	}, secret, *ttl)
	if err != nil {
		log.Fatalf("failed to create identity token: %v", err)
	}

	fmt.Println(token)
}
