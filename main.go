package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"launchdash/internal"
	"launchdash/internal/api"
	"launchdash/internal/config"
	"launchdash/internal/dataset"
	"launchdash/internal/metrics"
	"launchdash/internal/query"
	"launchdash/internal/session"
	"launchdash/ui"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	_ "github.com/mattn/go-sqlite3"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	internal.DefaultLogger.SetLevel(internal.ParseLogLevel(appConfig.Log.Level))
	log.Printf("Log level: %s", internal.DefaultLogger.GetLevel())
	gin.SetMode(appConfig.Server.GinMode)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// A bad source stops the process before anything is served
	loadCtx, loadCancel := context.WithTimeout(ctx, 30*time.Second)
	launches, err := dataset.Load(loadCtx, appConfig.Data.Source)
	loadCancel()
	if err != nil {
		log.Fatalf("Failed to load launch dataset: %v", err)
	}

	appMetrics := metrics.New()
	appMetrics.SetDatasetRecords(launches.Len())

	engine := query.NewEngine(launches)
	hub := api.NewSSEHub()
	defer hub.Stop()

	sessions := session.NewManager(engine, hub, appMetrics)
	go sessions.RunJanitor(ctx, appConfig.Session.TTL, appConfig.Session.SweepInterval)

	server, err := ui.NewServer(engine, sessions, hub, appConfig.Slider)
	if err != nil {
		log.Fatalf("Failed to initialize server: %v", err)
	}

	if appConfig.Admin.Enabled {
		go func() {
			log.Printf("🚀 Admin server (health, metrics, pprof) starting on :%s", appConfig.Admin.Port)
			log.Printf("💡 View profiles: go tool pprof -http=:8081 http://localhost:%s/debug/pprof/profile?seconds=30", appConfig.Admin.Port)
			if err := http.ListenAndServe(":"+appConfig.Admin.Port, ui.AdminRouter(appMetrics, launches.Len())); err != nil {
				log.Printf("❌ Admin server failed: %v", err)
			}
		}()
	}

	log.Printf("🚀 Starting launch dashboard on port %s (%d launches, %d sites)",
		appConfig.Server.Port, launches.Len(), len(launches.Sites()))
	log.Fatal(server.Start(":" + appConfig.Server.Port))
}
