// Package app is the shared bootstrap for every console command: config,
// logger, session, API client, and the role gate, wired once.
package app

import (
	"fmt"

	"clinadm/internal/infrastructure/api"
	"clinadm/internal/infrastructure/config"
	"clinadm/internal/infrastructure/session"
	"clinadm/internal/shared/authorization"
	"clinadm/internal/shared/errors"
	"clinadm/internal/shared/logger"
)

// App carries the wired dependencies a command needs.
type App struct {
	Config *config.Config
	Store  *session.Store
	Client *api.Client
	Gate   *authorization.Gate
}

// Bootstrap loads the config, initializes logging, opens the persisted
// session (if any), and builds the API client against it.
func Bootstrap() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&cfg.Logger); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	store := session.NewStore(cfg.Session.TokenPath)
	if err := store.Open(); err != nil {
		return nil, fmt.Errorf("failed to open session: %w", err)
	}

	gate, err := authorization.NewGate()
	if err != nil {
		return nil, fmt.Errorf("failed to build role gate: %w", err)
	}

	client := api.NewClient(cfg.API.TrimmedBaseURL(), store, api.WithTimeout(cfg.API.Timeout()))

	return &App{Config: cfg, Store: store, Client: client, Gate: gate}, nil
}

// Principal returns the signed-in principal or an unauthorized error
// telling the user to log in.
func (a *App) Principal() (*session.Principal, error) {
	principal := a.Store.Current()
	if principal == nil {
		return nil, errors.NewUnauthorizedError("not signed in, run: clinadm login")
	}
	return principal, nil
}

// Role returns the signed-in role, requiring a session.
func (a *App) Role() (authorization.UserRole, error) {
	principal, err := a.Principal()
	if err != nil {
		return "", err
	}
	return principal.Role, nil
}
