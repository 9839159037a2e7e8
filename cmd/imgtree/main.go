package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"imgtree/internal/config"
	"imgtree/internal/domain/models"
	"imgtree/internal/domain/services"
	"imgtree/internal/repository/drive"
	"imgtree/internal/repository/rest"
	"imgtree/internal/service/account"
	"imgtree/internal/service/workspace"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const (
	defaultBackendURL = "http://127.0.0.1:8000/api"
	defaultDriveURL   = "https://www.googleapis.com/drive/v3"
	requestTimeout    = 30 * time.Second
)

func main() {
	_ = godotenv.Load()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var (
	sessionPath string
	verbose     bool
)

// newLogger writes text records to stderr; debug with --verbose, warnings otherwise.
func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func resolveSessionPath() (string, error) {
	if sessionPath != "" {
		return sessionPath, nil
	}
	return config.DefaultSessionPath()
}

func newBackend(baseURL string, logger *slog.Logger) *rest.Client {
	return rest.NewClient(&rest.ClientConfig{
		BaseURL: baseURL,
		Timeout: requestTimeout,
		Logger:  logger,
	})
}

// openWorkspace loads the saved session and the folder tree behind it.
func openWorkspace(ctx context.Context) (services.WorkspaceService, error) {
	path, err := resolveSessionPath()
	if err != nil {
		return nil, err
	}
	sf, err := config.LoadSessionFile(path)
	if err != nil {
		if errors.Is(err, config.ErrNoSession) {
			return nil, fmt.Errorf("%w; run `imgtree login` first", err)
		}
		return nil, err
	}

	logger := newLogger()
	driveURL := os.Getenv("DRIVE_API_URL")
	if driveURL == "" {
		driveURL = defaultDriveURL
	}

	ws := workspace.New(sf.Session, &workspace.Config{
		Backend: newBackend(sf.BackendURL, logger),
		Drive: drive.NewClient(&drive.ClientConfig{
			BaseURL: driveURL,
			Timeout: requestTimeout,
			Logger:  logger,
		}),
		Logger: logger,
	})
	if err := ws.Refresh(ctx); err != nil {
		return nil, fmt.Errorf("loading folders: %w", err)
	}
	return ws, nil
}

// parseParent maps "", "root" and "null" to the root level.
func parseParent(arg string) *string {
	v := strings.TrimSpace(arg)
	switch v {
	case "", "root", "null":
		return nil
	}
	return &v
}

var rootCmd = &cobra.Command{
	Use:           "imgtree",
	Short:         "Manage image folders on the image backend",
	SilenceUsage: true,
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and save the session",
	RunE: func(cmd *cobra.Command, args []string) error {
		backendURL, _ := cmd.Flags().GetString("backend")
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")
		googleToken, _ := cmd.Flags().GetString("google-token")
		if password == "" {
			password = os.Getenv("IMGTREE_PASSWORD")
		}

		logger := newLogger()
		accounts := account.NewAccountService(newBackend(backendURL, logger), logger)

		var (
			result *models.AuthResult
			err    error
		)
		if googleToken != "" {
			result, err = accounts.GoogleLogin(cmd.Context(), &services.GoogleLoginRequest{AccessToken: googleToken})
		} else {
			result, err = accounts.Login(cmd.Context(), &services.LoginRequest{Email: email, Password: password})
		}
		if err != nil {
			return fmt.Errorf("login failed: %w", err)
		}
		return saveLogin(backendURL, result)
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and save the session",
	RunE: func(cmd *cobra.Command, args []string) error {
		backendURL, _ := cmd.Flags().GetString("backend")
		name, _ := cmd.Flags().GetString("name")
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")
		if password == "" {
			password = os.Getenv("IMGTREE_PASSWORD")
		}

		logger := newLogger()
		accounts := account.NewAccountService(newBackend(backendURL, logger), logger)
		result, err := accounts.Register(cmd.Context(), &services.RegisterRequest{Name: name, Email: email, Password: password})
		if err != nil {
			return fmt.Errorf("registration failed: %w", err)
		}
		return saveLogin(backendURL, result)
	},
}

func saveLogin(backendURL string, result *models.AuthResult) error {
	if result.Token == "" {
		return errors.New("backend did not return a token")
	}
	path, err := resolveSessionPath()
	if err != nil {
		return err
	}

	sf := &config.SessionFile{
		BackendURL: backendURL,
		Session: models.Session{
			UserID: result.User.ID,
			Token:  result.Token,
			Email:  result.User.Email,
		},
	}
	if err := config.SaveSessionFile(path, sf); err != nil {
		return err
	}
	fmt.Printf("Logged in as %s (user %s)\n", result.User.Email, result.User.ID)
	return nil
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the saved session",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveSessionPath()
		if err != nil {
			return err
		}
		if err := config.RemoveSessionFile(path); err != nil {
			return err
		}
		fmt.Println("Logged out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the saved session",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveSessionPath()
		if err != nil {
			return err
		}
		sf, err := config.LoadSessionFile(path)
		if err != nil {
			return err
		}
		fmt.Printf("User:    %s\n", sf.Session.UserID)
		fmt.Printf("Email:   %s\n", sf.Session.Email)
		fmt.Printf("Backend: %s\n", sf.BackendURL)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&sessionPath, "session", "", "Session file (default is the user config dir)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log backend calls to stderr")

	backendDefault := os.Getenv("BACKEND_URL")
	if backendDefault == "" {
		backendDefault = defaultBackendURL
	}

	rootCmd.AddCommand(loginCmd)
	loginCmd.Flags().String("backend", backendDefault, "Backend base URL")
	loginCmd.Flags().StringP("email", "e", "", "Account email")
	loginCmd.Flags().StringP("password", "p", "", "Account password (or IMGTREE_PASSWORD)")
	loginCmd.Flags().String("google-token", "", "Sign in with a Google OAuth access token instead")

	rootCmd.AddCommand(registerCmd)
	registerCmd.Flags().String("backend", backendDefault, "Backend base URL")
	registerCmd.Flags().String("name", "", "Display name")
	registerCmd.Flags().StringP("email", "e", "", "Account email")
	registerCmd.Flags().StringP("password", "p", "", "Account password (or IMGTREE_PASSWORD)")

	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)

	addWorkspaceCommands()
}
