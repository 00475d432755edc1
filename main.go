package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nstehr/wingman/config"
	"github.com/nstehr/wingman/ipc"
	"github.com/nstehr/wingman/observer"
	"github.com/nstehr/wingman/session"
	"github.com/nstehr/wingman/store"
)

const banner = `
██╗    ██╗██╗███╗   ██╗ ██████╗ ███╗   ███╗ █████╗ ███╗   ██╗
██║    ██║██║████╗  ██║██╔════╝ ████╗ ████║██╔══██╗████╗  ██║
██║ █╗ ██║██║██╔██╗ ██║██║  ███╗██╔████╔██║███████║██╔██╗ ██║
██║███╗██║██║██║╚██╗██║██║   ██║██║╚██╔╝██║██╔══██║██║╚██╗██║
╚███╔███╔╝██║██║ ╚████║╚██████╔╝██║ ╚═╝ ██║██║  ██║██║ ╚████║
 ╚══╝╚══╝ ╚═╝╚═╝  ╚═══╝ ╚═════╝ ╚═╝     ╚═╝╚═╝  ╚═╝╚═╝  ╚═══╝

Drone Fleet Decision Core`

func main() {
	cfgPath := flag.String("config", "", "fleet config (YAML); defaults when empty")
	debug := flag.Bool("debug", false, "debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	fmt.Println(banner)

	slog.Info("starting wingman")

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		slog.Error("failed to load config", "path", *cfgPath, "error", err)
		os.Exit(1)
	}

	var db *store.DB
	if cfg.Server.StorePath != "" {
		db, err = store.Open(cfg.Server.StorePath)
		if err != nil {
			slog.Error("failed to open store", "path", cfg.Server.StorePath, "error", err)
			os.Exit(1)
		}
		defer db.Close()
	}

	var hub *observer.Hub
	if addr := cfg.Server.ObserverAddr; addr != "" {
		hub = observer.NewHub()
		srv := observer.Serve(addr, hub)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
		}()
	}

	socketPath := cfg.Server.SocketPath

	// Unix sockets leave behind a file on unclean shutdown; remove it so we can rebind.
	if err := os.RemoveAll(socketPath); err != nil {
		slog.Error("failed to clean up socket", "path", socketPath, "error", err)
		os.Exit(1)
	}

	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		slog.Error("failed to listen on socket", "path", socketPath, "error", err)
		os.Exit(1)
	}
	defer listener.Close()
	defer os.Remove(socketPath)

	slog.Info("listening on domain socket", "path", socketPath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry := session.NewRegistry(cfg)

	// SIGHUP re-reads the config file and retunes every live fleet.
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-hup:
				next, err := config.Load(*cfgPath)
				if err != nil {
					slog.Error("config reload failed, keeping current config", "path", *cfgPath, "error", err)
					continue
				}
				registry.Reload(next)
			}
		}
	}()

	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				select {
				case <-ctx.Done():
					return
				default:
					slog.Error("failed to accept connection", "error", err)
					continue
				}
			}
			slog.Info("new connection accepted")
			go handleConn(conn, registry, db, hub)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")
}

func handleConn(conn net.Conn, registry *session.Registry, db *store.DB, hub *observer.Hub) {
	c := ipc.NewConnection(conn, nil)
	s := session.New(c, registry.Config())
	s.Store = db
	s.Hub = hub
	registry.Add(s)
	defer registry.Remove(s)
	c.RegisterHandler(ipc.TypeHello, func(env ipc.Envelope) (*ipc.Envelope, error) {
		resp, err := s.HandleHello(env)
		if err == nil {
			c.Team = s.Team
		}
		return resp, err
	})
	c.RegisterHandler(ipc.TypeTick, s.HandleTick)
	c.ReadLoop()
	if err := s.Close(); err != nil {
		slog.Error("failed to close session", "team", s.Team, "error", err)
	}
}
