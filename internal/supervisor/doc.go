// Package supervisor runs one launcher session from banner to shutdown.
//
// A Supervisor takes the single-instance lock, prints the startup banners,
// seeds and starts the connectivity monitor, prepares and starts the
// configured launcher, schedules the browser, and then blocks until the
// context is cancelled or the server stops on its own. Shutdown stops the
// server within the configured grace period and waits for every background
// goroutine before Run returns.
//
// Progress is observable through State. Run returns nil for an interrupt,
// ErrAlreadyRunning when another launcher holds the lock, and an error
// wrapping ErrServerExited when the server stops without being asked.
package supervisor
