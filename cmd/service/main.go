package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"gitlab.com/dirk.krummacker/contactbook/internal/api"
	"gitlab.com/dirk.krummacker/contactbook/internal/config"
	"gitlab.com/dirk.krummacker/contactbook/internal/logger"
	"gitlab.com/dirk.krummacker/contactbook/internal/service"
	"gitlab.com/dirk.krummacker/contactbook/internal/store"
	"go.uber.org/zap"
)

// Usage example on the command line:
// > PORT=8000 DB_DRIVER=mysql DBUSER=dirk DBPWD=bullo92 GIN_MODE=release GIN_LOGGING=OFF go run main.go
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid configuration:", err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, "could not create logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("contacts service failed", zap.Error(err))
	}
}

func run(cfg config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stores, err := store.Setup(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer stores.Close()

	svc := service.New(stores.Contacts, stores.Images, log)
	server := &http.Server{
		Addr:    cfg.Addr(),
		Handler: api.SetupHttpRouter(svc, cfg, log),
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", server.Addr), zap.String("prefix", cfg.APIPrefix))
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
