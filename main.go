package main

import (
	"log"
	"net/http"
	_ "net/http/pprof"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"goeda/internal"
	"goeda/internal/config"
	"goeda/ui"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	gin.SetMode(appConfig.Server.GinMode)

	server := ui.NewServer(ui.Options{
		Data:     appConfig.Data,
		Limits:   appConfig.Limits,
		Analysis: appConfig.Analysis,
		Logger:   internal.NewDefaultLogger(),
	})

	// Start pprof server for performance profiling
	if appConfig.Profiling.Enabled {
		go func() {
			log.Printf("Profiling server starting on :%s", appConfig.Profiling.Port)
			if err := http.ListenAndServe(":"+appConfig.Profiling.Port, nil); err != nil {
				log.Printf("pprof server failed: %v", err)
			}
		}()
	}

	log.Fatal(server.Start(":" + appConfig.Server.Port))
}
