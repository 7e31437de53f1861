// gen-token печатает подписанный токен для локальной отладки API.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/BuzzLyutic/todo-app/internal/auth"
	"github.com/BuzzLyutic/todo-app/internal/config"
)

func main() {
	sub := flag.String("sub", "test-user", "user id (sub claim)")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	cfg := config.Load()
	token, err := auth.NewVerifier(cfg.JWTSecret).Issue(*sub, *ttl)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fmt.Println(token)
}
