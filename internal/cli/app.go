package cli

import (
	"io"
	"os"
	"strings"
	"time"

	"loipen-tracker/internal/api"
	"loipen-tracker/internal/config"
	"loipen-tracker/internal/domain"
	"loipen-tracker/internal/errors"
	"loipen-tracker/internal/logging"
)

// timeNow is a variable that can be replaced in tests
var timeNow = time.Now

// App holds what every command handler needs: the business API, the loaded
// configuration and where to print.
type App struct {
	businessAPI api.BusinessAPI
	config      *config.Config
	log         logging.Logger
	out         io.Writer
}

// NewAppWithConfig creates a CLI application around businessAPI
func NewAppWithConfig(businessAPI api.BusinessAPI, cfg *config.Config, out io.Writer) *App {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	if out == nil {
		out = os.Stdout
	}
	return &App{
		businessAPI: businessAPI,
		config:      cfg,
		log:         logging.Discard(),
		out:         out,
	}
}

// userID returns the employee the CLI acts for.
func (a *App) userID() (string, error) {
	user := strings.TrimSpace(a.config.Application.UserID)
	if user == "" {
		return "", errors.NewInvalidInputError("user", "", "set --user or LOIPEN_USER")
	}
	return user, nil
}

// location returns the configured time zone, falling back to local time.
func (a *App) location() *time.Location {
	loc, err := a.config.GetLocation()
	if err != nil {
		return time.Local
	}
	return loc
}

// today returns the current calendar day as YYYY-MM-DD in the configured zone.
func (a *App) today() string {
	return timeNow().In(a.location()).Format(domain.DateLayout)
}

func (a *App) formatTime(t time.Time) string {
	layout := a.config.Time.DisplayFormat
	if layout == "" {
		layout = "02.01.2006 15:04"
	}
	return t.In(a.location()).Format(layout)
}
