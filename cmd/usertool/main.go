package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"gorm.io/gorm"

	"github.com/323network/platform/app/models"
	"github.com/323network/platform/app/repository"
	"github.com/323network/platform/internal/pkg/database"
	"github.com/323network/platform/internal/pkg/env"
)

func main() {
	env.SetupEnvFile()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	database.SetupDatabase()
	users := repository.GetGlobalRepositories().User

	switch os.Args[1] {
	case "create":
		if len(os.Args) != 5 {
			printUsage()
			os.Exit(1)
		}
		createUser(users, os.Args[2], os.Args[3], os.Args[4])
	case "issue-token":
		if len(os.Args) != 3 {
			printUsage()
			os.Exit(1)
		}
		issueToken(users, os.Args[2])
	default:
		log.Printf("Unknown command: %s", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func createUser(users repository.UserRepository, name, email, password string) {
	if _, err := users.GetByEmail(email); err == nil {
		log.Fatalf("A user with email %s already exists", email)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Fatalf("Failed to check for existing user: %v", err)
	}

	user, err := models.CreateUser(name, email, password)
	if err != nil {
		log.Fatalf("Failed to build user: %v", err)
	}
	// Accounts created from the CLI skip the activation flow.
	user.Status = models.STATUS_ACTIVE

	if err := users.Create(user); err != nil {
		log.Fatalf("Failed to create user: %v", err)
	}
	log.Printf("Created user %d (%s)", user.ID, user.Email)
}

func issueToken(users repository.UserRepository, email string) {
	user, err := users.GetByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Fatalf("No user with email %s", email)
		}
		log.Fatalf("Failed to load user: %v", err)
	}

	token, err := user.IssueAPIToken()
	if err != nil {
		log.Fatalf("Failed to generate token: %v", err)
	}
	if err := users.Update(user); err != nil {
		log.Fatalf("Failed to store token hash: %v", err)
	}

	// The raw token is only printed once; the database keeps its hash.
	fmt.Println(token)
}

func printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  usertool create <name> <email> <password>  - Create an active user account")
	fmt.Println("  usertool issue-token <email>               - Issue a fresh API token (prints it once)")
}
