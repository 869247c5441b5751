package cmd

import (
	"sync"

	"bookie/events"
	"bookie/service"
)

// App bundles the wired services for whatever transport sits on top.
type App struct {
	Accounts service.AccountService
	Wallet   service.WalletService
	Bets     service.BetService
	Catalog  service.CatalogService
	Bus      *events.Bus
}

var (
	appMu       sync.RWMutex
	application *App
)

func setApplication(a *App) {
	appMu.Lock()
	defer appMu.Unlock()
	application = a
}

// Application returns the wired services, or nil before Run has
// initialized them.
func Application() *App {
	appMu.RLock()
	defer appMu.RUnlock()
	return application
}
