package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/dori/taskdeck/internal/api"
	"github.com/dori/taskdeck/internal/app"
	"github.com/dori/taskdeck/internal/config"
	"github.com/dori/taskdeck/internal/ui"
	"github.com/dori/taskdeck/internal/ui/theme"
)

var version = "0.1.0"

// env carries global flags and the loaded config to every command
type env struct {
	configPath string
	apiURL     string
	themeName  string

	cfg *config.Config
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	e := &env{}

	cmd := &cobra.Command{
		Use:          "taskdeck",
		Short:        "Terminal client for a task list API",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive list
  taskdeck

  # Quick add with a priority token
  taskdeck add "Buy milk !alta"

  # Export the second page of high priority tasks
  taskdeck list --priority alta --page 2 --format csv

  # Run the companion API server
  taskdeck serve --addr :5000
`),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.load()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return cmd.Help()
			}
			return runTUI(e)
		},
	}

	cmd.PersistentFlags().StringVar(&e.configPath, "config", "", "Config file (default "+config.DefaultPath()+")")
	cmd.PersistentFlags().StringVar(&e.apiURL, "api-url", "", "Task API base URL (overrides config and "+config.EnvAPIURL+")")
	cmd.PersistentFlags().StringVar(&e.themeName, "theme", "", "Theme (nord, dracula, gruvbox, catppuccin)")

	cmd.AddCommand(newAddCmd(e))
	cmd.AddCommand(newListCmd(e))
	cmd.AddCommand(newStatsCmd(e))
	cmd.AddCommand(newHealthCmd(e))
	cmd.AddCommand(newServeCmd(e))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// load reads the config file and applies flag overrides
func (e *env) load() error {
	cfg, err := config.Load(e.configPath)
	if err != nil {
		return err
	}
	if e.apiURL != "" {
		cfg.API.BaseURL = e.apiURL
	}
	if e.themeName != "" {
		cfg.UI.Theme = e.themeName
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	e.cfg = cfg
	return nil
}

func (e *env) client() (*api.Client, error) {
	return api.New(e.cfg.API.BaseURL,
		api.WithTimeout(e.cfg.API.Timeout),
		api.WithUserAgent(app.UserAgent+"/"+version),
	)
}

func runTUI(e *env) error {
	theme.ConfigureColor()
	if t, ok := theme.ByName(e.cfg.UI.Theme); ok {
		theme.SetTheme(t)
	} else {
		fmt.Fprintf(os.Stderr, "unknown theme %q, using %s\n", e.cfg.UI.Theme, theme.Current.Theme.Name)
	}

	// Debug logging (enable by setting TASKDECK_DEBUG=1)
	if os.Getenv("TASKDECK_DEBUG") == "1" {
		f, err := tea.LogToFile(filepath.Join(os.TempDir(), "taskdeck-debug.log"), "taskdeck")
		if err != nil {
			return fmt.Errorf("failed to open debug log: %w", err)
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	application, err := app.New(e.cfg)
	if err != nil {
		return err
	}

	p := tea.NewProgram(
		ui.NewRootModel(application),
		tea.WithAltScreen(),
	)
	_, err = p.Run()
	return err
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "taskdeck v%s\n", version)
			return err
		},
	}
}
