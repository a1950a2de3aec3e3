package main

import (
	"flag"
	"log"

	"github.com/gin-gonic/gin"

	"github.com/johnlaff/ArchTime/core"
	"github.com/johnlaff/ArchTime/web/handlers/clock"
	"github.com/johnlaff/ArchTime/web/handlers/project"
	"github.com/johnlaff/ArchTime/web/handlers/sync"
	"github.com/johnlaff/ArchTime/web/middlewares"
)

func main() {
	configPath := flag.String("config", "archtime.yaml", "path to server config")
	flag.Parse()

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := core.Open(cfg.Database.Driver, cfg.Database.DSN, parseLogLevel(cfg.Database.LogLevel))
	if err != nil {
		log.Fatalf("database: %v", err)
	}

	r := gin.Default()
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	protected := r.Group("/")
	protected.Use(middlewares.Authentication(cfg.Auth.Secret, cfg.Auth.AllowedEmails))
	{
		clock.Register(protected, db)
		sync.Register(protected, db)
		project.Register(protected, db, cfg.Auth.AdminEmail)
	}

	if err := r.Run(cfg.Listen); err != nil {
		log.Fatalf("server: %v", err)
	}
}

func parseLogLevel(level string) core.LogLevel {
	switch level {
	case "silent":
		return core.LogLevelSilent
	case "error":
		return core.LogLevelError
	case "info":
		return core.LogLevelInfo
	default:
		return core.LogLevelWarn
	}
}
