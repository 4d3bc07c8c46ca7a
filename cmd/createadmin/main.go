// Command createadmin bootstraps an admin account, mirroring what the
// service itself never does: the first admin cannot be created over HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"

	"github.com/12344321abc/romantic-flowers-app/internal/model"
	"github.com/12344321abc/romantic-flowers-app/internal/store"
	"github.com/12344321abc/romantic-flowers-app/pkg/config"
	"github.com/12344321abc/romantic-flowers-app/pkg/database"
)

func main() {
	username := flag.String("username", "", "username for the admin account")
	password := flag.String("password", "", "password for the admin account")
	flag.Parse()

	if *username == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "usage: createadmin -username <name> -password <password>")
		os.Exit(2)
	}

	appConfig, err := config.Load("flower-service")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	db, err := database.InitDB(&appConfig.DB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	if err := database.MigrateModels(db,
		&model.FlowerBatch{},
		&model.User{},
		&model.Order{},
		&model.OrderItem{},
		&model.Subscriber{},
	); err != nil {
		fmt.Fprintf(os.Stderr, "failed to run migrations: %v\n", err)
		os.Exit(1)
	}

	st := store.NewPostgresStore(db)
	ctx := context.Background()

	if _, err := st.GetUserByUsername(ctx, *username); err == nil {
		fmt.Fprintf(os.Stderr, "user %q already exists\n", *username)
		os.Exit(1)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to hash password: %v\n", err)
		os.Exit(1)
	}

	user := &model.User{
		Username:    *username,
		Password:    string(hashed),
		Role:        model.RoleAdmin,
		ContactName: "Administrator",
	}
	if err := st.CreateUser(ctx, user); err != nil {
		fmt.Fprintf(os.Stderr, "failed to create user: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("admin %q created (id %d)\n", user.Username, user.ID)
}
