// Command hash-generator prints password digests produced by the service's
// password hasher, for seeding databases and fixtures by hand.
//
//	hash-generator -cost 12 password1 password2
//
// Without -cost the configured work factor (USERAUTH_AUTH_BCRYPT_COST) or the
// bcrypt default is used. Passwords may also be given one per line on stdin.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"

	"github.com/sessionsdev/user-auth-microservice/internal/config"
	"github.com/sessionsdev/user-auth-microservice/internal/service/auth"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "hash-generator:", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("hash-generator", flag.ContinueOnError)
	cost := fs.Int("cost", defaultCost(), "bcrypt work factor")
	if err := fs.Parse(args); err != nil {
		return err
	}

	hasher, err := auth.NewBcryptHasher(*cost)
	if err != nil {
		return err
	}

	passwords := fs.Args()
	if len(passwords) == 0 {
		scanner := bufio.NewScanner(stdin)
		for scanner.Scan() {
			if line := scanner.Text(); line != "" {
				passwords = append(passwords, line)
			}
		}
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("failed to read passwords: %w", err)
		}
	}
	if len(passwords) == 0 {
		return fmt.Errorf("no passwords given")
	}

	for _, password := range passwords {
		digest, err := hasher.Hash(password)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		fmt.Fprintln(stdout, digest)
	}
	return nil
}

// defaultCost reads only the work factor from the environment; the rest of
// the service configuration is not required to hash a password.
func defaultCost() int {
	v := viper.New()
	v.SetEnvPrefix(config.EnvPrefix)
	v.SetDefault("auth_bcrypt_cost", bcrypt.DefaultCost)
	_ = v.BindEnv("auth_bcrypt_cost")
	return v.GetInt("auth_bcrypt_cost")
}
