package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/httprate"
	log "github.com/sirupsen/logrus"

	config "github.com/avvvet/pokesimon-services/configs"
	"github.com/avvvet/pokesimon-services/internal/comm"
	gamecfg "github.com/avvvet/pokesimon-services/internal/gamesvc/config"
	"github.com/avvvet/pokesimon-services/internal/nats"
	"github.com/avvvet/pokesimon-services/internal/socketsvc/broker"
	"github.com/avvvet/pokesimon-services/internal/socketsvc/routes"
	"github.com/avvvet/pokesimon-services/internal/socketsvc/ws"
)

const SERVICE_NAME = "socket"

func main() {
	config.LoadEnv(SERVICE_NAME)

	cfg, err := gamecfg.LoadSocket()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	instanceId := config.CreateUniqueInstance(SERVICE_NAME)
	config.Logging(SERVICE_NAME+"_service_"+instanceId, cfg.LogLevel)

	n, err := nats.Connect(SERVICE_NAME + "-" + instanceId)
	if err != nil {
		log.Fatalf("Error: unable to connect to NATS server %v", err)
	}
	defer n.Close()
	log.Printf("NATS connection established successfully %s", n.Url)

	// Setup router
	r := chi.NewRouter()
	c := config.CORS(cfg.AllowedOrigins)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(config.CustomLoggerMiddleware())
	r.Use(c.Handler)

	// to protect the service api from any over requests
	r.Use(httprate.LimitByIP(cfg.RateLimit, 1*time.Minute))

	s := ws.NewWs()
	routes.SetRoutes(r, s, cfg.AllowedOrigins)

	b := broker.NewBroker(n.Conn, s.Send) // s.Send dependency injection to broker
	s.Broker = b                          // set broker reference for websocket handler logic

	// replies from the game service
	sub, err := b.Subscribe(comm.TopicGameService)
	if err != nil {
		log.Fatalf("Error: unable to subscribe to %s %v", comm.TopicGameService, err)
	}

	server := &http.Server{
		Addr:        ":" + cfg.SocketPort,
		Handler:     r,
		ReadTimeout: 60 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()
	log.Infof("%s service running at port %s", SERVICE_NAME, server.Addr)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	sub.Unsubscribe()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Errorf("%s service shutdown Failed:%+v", SERVICE_NAME, err)
		return
	}
	log.Infof("%s service gracefully stopped", SERVICE_NAME)
}
