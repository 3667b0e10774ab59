package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/httprate"
	log "github.com/sirupsen/logrus"

	config "github.com/crewlink/crewlink-server/configs"
	"github.com/crewlink/crewlink-server/internal/bridge"
	"github.com/crewlink/crewlink-server/internal/db"
	"github.com/crewlink/crewlink-server/internal/game"
	"github.com/crewlink/crewlink-server/internal/handlers"
	natscli "github.com/crewlink/crewlink-server/internal/nats"
	"github.com/crewlink/crewlink-server/internal/store"
	"github.com/crewlink/crewlink-server/internal/ws"
)

const SERVICE_NAME = "game"

var instanceId string

func init() {
	instanceId = "001"
	config.Logging(SERVICE_NAME + "_service_" + instanceId)
	config.LoadEnv(SERVICE_NAME)
}

func main() {

	// mongo connection
	database, cancelDB, err := db.ConnectToDB()
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer cancelDB()
	log.Printf("mongo connection established successfully")

	if err := db.EnsureIndexes(database); err != nil {
		log.Fatalf("Failed to create indexes: %v", err)
	}

	stores := game.Stores{
		Games:   store.NewGameStore(database),
		Players: store.NewPlayerStore(database),
		Rooms:   store.NewRoomStore(database),
		Tasks:   store.NewTaskStore(database),
	}
	svc := game.NewService(stores, nil)

	// Connect to NATS for the automation bridge. The bridge is strictly
	// best-effort, so a missing broker only costs us smart-home effects.
	n, err := natscli.Connect()
	if err != nil {
		log.Errorf("Error: unable to connect to NATS server, continuing without it: %v", err)
		svc.AddSink(bridge.New(nil))
	} else {
		defer n.Conn.Close()
		log.Printf("NATS connection established successfully %s", n.Url)
		svc.AddSink(bridge.New(n.Conn))
	}

	// websocket push surface doubles as an event sink
	wsSvc := ws.NewWs(svc)
	svc.AddSink(wsSvc)
	wsHandler := ws.NewHandler(wsSvc)

	// resolve or reschedule meetings whose timers died with the last
	// process
	if err := svc.RecoverMeetings(context.Background()); err != nil {
		log.Errorf("Error: meeting recovery sweep failed: %v", err)
	}

	// Setup router
	r := chi.NewRouter()
	c := config.CORS()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(config.CustomLoggerMiddleware())
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(c.Handler)

	// to protect the service api from any over requests
	rateLimitStr := os.Getenv("RATE_LIMIT")
	rateLimit, err := strconv.Atoi(rateLimitStr)
	if err != nil {
		log.Fatalf("Invalid RATE_LIMIT value: %v", err)
	}
	r.Use(httprate.LimitByIP(rateLimit, 1*time.Minute))

	// Init handlers and routes
	h := handlers.NewHandler(svc)
	h.InitAuth()
	h.SetRoutes(r, wsHandler.HandleWebSocket)

	// Create server with timeout settings
	server := &http.Server{
		Addr:         ":" + os.Getenv("GAME_SERVICE_PORT"),
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()
	log.Infof("%s service running at port %s", SERVICE_NAME, server.Addr)

	// Wait for interrupt signal to gracefully shutdown the server
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("%s service shutdown Failed:%+v", SERVICE_NAME, err)
	}
	log.Infof("%s service gracefully stopped", SERVICE_NAME)
}
