// Command server runs the blog API.
package main

import (
	"flag"
	"fmt"
	"os"

	"blog-api/internal/auth"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to config file (defaults only when empty)")
	hashPassword := flag.String("hash-password", "", "print the bcrypt hash of a password for auth.users and exit")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("blog-api", version)
		os.Exit(0)
	}
	if *hashPassword != "" {
		hash, err := auth.HashPassword(*hashPassword)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(hash)
		os.Exit(0)
	}

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
