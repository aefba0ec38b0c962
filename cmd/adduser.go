package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tahsinm/registrar/data"
	"github.com/tahsinm/registrar/data/db"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"
)

var (
	usernameFlag string
	passwordFlag string
	roleFlag     string
)

// addUser represents the adduser command
var addUser = &cobra.Command{
	Use:   "adduser",
	Short: "add a portal user",
	Long:  `defaults to interactive but can add username and password with flags`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		dbPool, err := data.NewPool(ctx, false)
		if err != nil {
			fmt.Printf("Could not connect to the database %v", err)
			os.Exit(1)
		}
		q := db.New(dbPool)

		username := usernameFlag
		password := passwordFlag

		switch roleFlag {
		case "admin", "faculty", "student":
		default:
			fmt.Println("Role must be one of admin, faculty, or student.")
			os.Exit(1)
		}

		if username == "" {
			for {
				fmt.Print("Enter username: ")
				if _, err := fmt.Scanln(&username); err != nil {
					slog.Error("Failed to read username", "error", err)
					os.Exit(1)
				}
				username = strings.TrimSpace(username)
				if username == "" {
					fmt.Println("Username cannot be empty. Please try again.")
				} else {
					break
				}
			}
		}

		if password == "" {
			for {
				fmt.Print("Enter password: ")
				bytePassword, err := term.ReadPassword(int(syscall.Stdin))
				fmt.Println() // New line after password input
				if err != nil {
					slog.Error("Failed to read password", "error", err)
					os.Exit(1)
				}
				password = string(bytePassword)
				if password == "" {
					fmt.Println("Password cannot be empty. Please try again.")
					continue
				}

				fmt.Print("Confirm password: ")
				byteConfirmPassword, err := term.ReadPassword(int(syscall.Stdin))
				fmt.Println() // New line after confirmation input
				if err != nil {
					slog.Error("Failed to read password confirmation", "error", err)
					os.Exit(1)
				}
				confirmPassword := string(byteConfirmPassword)

				if password != confirmPassword {
					fmt.Println("Passwords do not match. Please try again.")
					password = ""
				} else {
					break
				}
			}
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			fmt.Printf("Could not encrypt password %v", err)
			os.Exit(1)
		}

		err = q.AuthInsertUser(ctx, db.AuthInsertUserParams{
			Username:          username,
			EncryptedPassword: string(hash),
			Role:              roleFlag,
		})
		if err != nil {
			fmt.Printf("Could not add user %v", err)
			os.Exit(1)
		}
		fmt.Printf("Added %s to the database", username)
	},
}

func init() {
	appCmd.AddCommand(addUser)
	addUser.Flags().StringVarP(&usernameFlag, "username", "u", "", "Username for the new user")
	addUser.Flags().StringVarP(&passwordFlag, "password", "p", "", "Password for the new user")
	addUser.Flags().StringVarP(&roleFlag, "role", "r", "admin", "Role for the new user (admin, faculty, or student)")
}
