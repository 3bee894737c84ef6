package main

import (
	"crypto/rand"
	"encoding/base64"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// gentoken issues an HS256 bearer token for local testing, signed with JWT_SECRET
//
// Usage:
//   go run cmd/gentoken/main.go -user <uuid> [-ttl 24h]
//   go run cmd/gentoken/main.go -new-secret
//
// Without -user a random user id is generated.
func main() {
	user := flag.String("user", "", "subject (user id) of the token")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	newSecret := flag.Bool("new-secret", false, "print a random JWT_SECRET and exit")
	flag.Parse()

	if *newSecret {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			log.Fatalf("Failed to generate secret: %v", err)
		}
		fmt.Println("JWT_SECRET=" + base64.RawURLEncoding.EncodeToString(buf))
		return
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET is not set (use -new-secret to generate one)")
	}
	if *ttl <= 0 {
		log.Fatalf("ttl must be positive, got %s", *ttl)
	}

	subject := *user
	if subject == "" {
		subject = uuid.NewString()
	} else if _, err := uuid.Parse(subject); err != nil {
		log.Fatalf("user must be a UUID: %v", err)
	}

	now := time.Now()
	token, err := jwt.NewBuilder().
		Subject(subject).
		IssuedAt(now).
		NotBefore(now).
		Expiration(now.Add(*ttl)).
		Build()
	if err != nil {
		log.Fatalf("Failed to build token: %v", err)
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256, []byte(secret)))
	if err != nil {
		log.Fatalf("Failed to sign token: %v", err)
	}

	fmt.Fprintf(os.Stderr, "user %s, expires %s\n", subject, now.Add(*ttl).Format(time.RFC3339))
	fmt.Println(string(signed))
}
