package app

import (
	"fmt"

	"github.com/dori/taskdeck/internal/api"
	"github.com/dori/taskdeck/internal/config"
	"github.com/dori/taskdeck/internal/notify"
)

// UserAgent identifies the client to the task API
const UserAgent = "taskdeck"

// App holds the client state and dependencies
type App struct {
	Config   *config.Config
	API      *api.Client
	Notifier *notify.Notifier
}

// New creates a client application from cfg
func New(cfg *config.Config) (*App, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	client, err := api.New(cfg.API.BaseURL,
		api.WithTimeout(cfg.API.Timeout),
		api.WithUserAgent(UserAgent),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create API client: %w", err)
	}

	notifier := notify.NewNotifier(config.AppName)
	notifier.SetEnabled(cfg.Notify.Desktop)

	return &App{
		Config:   cfg,
		API:      client,
		Notifier: notifier,
	}, nil
}
