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

	config "github.com/avvvet/pokesimon-services/configs"
	"github.com/avvvet/pokesimon-services/internal/comm"
	mongodb "github.com/avvvet/pokesimon-services/internal/db"
	"github.com/avvvet/pokesimon-services/internal/gamesvc/broker"
	gamecfg "github.com/avvvet/pokesimon-services/internal/gamesvc/config"
	"github.com/avvvet/pokesimon-services/internal/gamesvc/db"
	handlers "github.com/avvvet/pokesimon-services/internal/gamesvc/handlers"
	"github.com/avvvet/pokesimon-services/internal/gamesvc/pokeapi"
	"github.com/avvvet/pokesimon-services/internal/gamesvc/random"
	"github.com/avvvet/pokesimon-services/internal/gamesvc/service"
	"github.com/avvvet/pokesimon-services/internal/gamesvc/store"
	nats "github.com/avvvet/pokesimon-services/internal/nats"
	log "github.com/sirupsen/logrus"
)

const SERVICE_NAME = "game"

func main() {
	config.LoadEnv(SERVICE_NAME)

	cfg, err := gamecfg.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	instanceId := config.CreateUniqueInstance(SERVICE_NAME)
	config.Logging(SERVICE_NAME+"_service_"+instanceId, cfg.LogLevel)

	ctx := context.Background()

	gameStore, closeStore, err := openGameStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open %s game store: %v", cfg.StoreDriver, err)
	}
	defer closeStore()
	log.Infof("%s game store ready", cfg.StoreDriver)

	pokeClient := pokeapi.NewClient(cfg.PokeAPIURL, cfg.PokeAPITimeout)
	teamService := service.NewTeamService(pokeClient, cfg.LookupConcurrency)
	gameService := service.NewGameService(gameStore, teamService, random.New(), cfg.CatalogSize)

	// socket clients and lifecycle events go through NATS
	if cfg.NatsEnabled {
		n, err := nats.Connect(SERVICE_NAME + "-" + instanceId)
		if err != nil {
			log.Fatalf("Error: unable to connect to NATS server %v", err)
		}
		defer n.Close()
		log.Printf("NATS connection established successfully %s", n.Url)

		b := broker.NewBroker(n.Conn, gameService)
		gameService.SetNotifier(b)

		sub, err := b.QueueSubscribSocketService(comm.TopicSocketService, SERVICE_NAME)
		if err != nil {
			log.Fatalf("Error: unable to subscribe to queue %v", err)
		}
		defer sub.Unsubscribe()
	}

	// Setup router
	r := chi.NewRouter()
	c := config.CORS(cfg.AllowedOrigins)

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(config.CustomLoggerMiddleware())
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(c.Handler)

	// to protect the service api from any over requests
	r.Use(httprate.LimitByIP(cfg.RateLimit, 1*time.Minute))

	h := handlers.NewHandler(gameService)
	h.SetRoutes(r)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorf("%s service shutdown Failed:%+v", SERVICE_NAME, err)
		return
	}
	log.Infof("%s service gracefully stopped", SERVICE_NAME)
}

// openGameStore builds the store selected by STORE_DRIVER. The returned func
// releases its connections.
func openGameStore(ctx context.Context, cfg gamecfg.Config) (store.GameStore, func(), error) {
	switch cfg.StoreDriver {
	case gamecfg.StorePostgres:
		pool, err := db.Connect(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, nil, err
		}
		if err := db.Migrate(ctx, pool); err != nil {
			db.ClosePool()
			return nil, nil, err
		}
		return store.NewPgGameStore(pool), db.ClosePool, nil

	case gamecfg.StoreMemory:
		log.Warn("games are kept in memory and lost on restart")
		return store.NewMemoryGameStore(), func() {}, nil

	default:
		database, err := mongodb.ConnectToDB(ctx, cfg.MongoURI)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			if err := mongodb.Disconnect(context.Background(), database); err != nil {
				log.Errorf("mongodb disconnect: %v", err)
			}
		}
		if cfg.GameTTL > 0 {
			if err := mongodb.CreateTTLIndexForCollection(ctx, database, store.GamesCollection); err != nil {
				closeFn()
				return nil, nil, err
			}
		}
		return store.NewMongoGameStore(database, cfg.GameTTL), closeFn, nil
	}
}
