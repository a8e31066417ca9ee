// Gen-jwt prints an HS256 bearer token for a user id, signed with
// JWT_SECRET. Run from project root: go run ./scripts/gen-jwt --user alice
package main

import (
	"fmt"
	"os"
	"time"

	"weddingplan/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"
)

func main() {
	var (
		user string
		ttl  time.Duration
	)
	cmd := &cobra.Command{
		Use:   "gen-jwt",
		Short: "Mint a bearer token for local testing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			secret := config.Get().JWTSecret
			if secret == "" {
				secret = "change-me"
				fmt.Fprintln(cmd.ErrOrStderr(), "JWT_SECRET not set; signing with the development default")
			}
			now := time.Now()
			claims := jwt.RegisteredClaims{
				Subject:   user,
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			}
			signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), signed)
			return nil
		},
	}
	cmd.Flags().StringVar(&user, "user", "test-user", "Subject (user id) of the token")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
