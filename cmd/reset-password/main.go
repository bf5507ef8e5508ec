package main

import (
	"flag"
	"log"

	"go-pos-backend/internal/repository"
	"go-pos-backend/internal/service"
	"go-pos-backend/pkg/database"

	"github.com/joho/godotenv"
)

// Operator tool: reset an account password when the holder is locked out.
// Rotates the token version, so every existing session is dropped.
func main() {
	username := flag.String("username", "", "account to reset")
	password := flag.String("password", "", "new password")
	flag.Parse()

	if *username == "" || *password == "" {
		log.Fatal("usage: reset-password -username <name> -password <new password>")
	}

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, relying on system env")
	}

	db := database.ConnectDB()
	authService := service.NewAuthService(repository.NewUserRepo(db))

	if err := authService.ResetPassword(*username, *password); err != nil {
		log.Fatalf("reset failed: %v", err)
	}
	log.Printf("Password for %q has been reset, all sessions invalidated", *username)
}
