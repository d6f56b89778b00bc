package cli

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/bookwell/internal/app"
	"github.com/felixgeelhaar/bookwell/internal/booking/domain"
)

// App holds the CLI application dependencies.
type App struct {
	Container     *app.Container
	CurrentUserID uuid.UUID
}

// NewApp creates the CLI application.
func NewApp(container *app.Container, userID uuid.UUID) *App {
	return &App{Container: container, CurrentUserID: userID}
}

// Actor is who the invocation acts as. --as-admin grants admin rights;
// the identity itself comes from BOOKWELL_USER_ID.
func (a *App) Actor() domain.Actor {
	if asAdmin {
		return domain.Admin(a.CurrentUserID)
	}
	return domain.Customer(a.CurrentUserID)
}

// SetAdmin toggles --as-admin. Used by tests.
func SetAdmin(v bool) {
	asAdmin = v
}

// current is the global CLI application instance
var current *App

// SetApp sets the global CLI application instance.
func SetApp(a *App) {
	current = a
}

// GetApp returns the global CLI application instance.
func GetApp() *App {
	return current
}

// RequireApp returns the application or an error when the CLI started
// without a database.
func RequireApp() (*App, error) {
	if current == nil || current.Container == nil {
		return nil, fmt.Errorf("%w: database is not available, check DATABASE_URL or SQLITE_PATH", domain.ErrPersistenceUnavailable)
	}
	return current, nil
}
