// cmd/server/main.go
package main

import (
	"context"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/duelo-gg/duelo-service/internal/config"
	"github.com/duelo-gg/duelo-service/internal/handlers"
	"github.com/duelo-gg/duelo-service/internal/journal"
	"github.com/duelo-gg/duelo-service/internal/middleware"
	"github.com/duelo-gg/duelo-service/internal/room"
)

func main() {
	cfg := config.FromEnv()

	logger := logrus.New()
	if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(lvl)
	} else {
		logger.Warnf("unknown LOG_LEVEL %q, using info", cfg.LogLevel)
		logger.SetLevel(logrus.InfoLevel)
	}

	var j room.Journal
	if cfg.RedisAddr != "" {
		jr, err := journal.Connect(cfg.RedisAddr, cfg.JournalQueue, logger)
		if err != nil {
			log.Fatalf("journal: %v", err)
		}
		defer jr.Close()
		j = jr
		logger.Infof("room journal enabled (queue %s)", cfg.JournalQueue)
	}

	gs := handlers.NewGameServer(logger, j)

	mux := http.NewServeMux()
	mux.HandleFunc("/", handlers.PingHandler)
	mux.Handle("/rooms", middleware.LogMiddleware(logger)(http.HandlerFunc(
		handlers.ListRoomsHandler(gs),
	)))
	mux.Handle("/ws", middleware.LogMiddleware(logger)(http.HandlerFunc(
		handlers.RoomWSHandler(logger, gs, cfg.OriginPatterns),
	)))

	l, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		log.Fatalf("failed to listen: %v", err)
	}
	logger.Infof("listening on %s", l.Addr())

	// No read/write timeouts on the server: websocket connections are
	// long-lived and manage their own deadlines in the pumps.
	server := &http.Server{Handler: mux}

	errc := make(chan error, 1)
	go func() {
		errc <- server.Serve(l)
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)
	select {
	case err := <-errc:
		logger.Errorf("failed to serve: %v", err)
	case sig := <-sigs:
		logger.Infof("terminating: %v", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = server.Shutdown(ctx)
}
