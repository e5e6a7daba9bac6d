package internal

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"kanzlei-server/internal/config"
	"kanzlei-server/internal/managers"
	"kanzlei-server/internal/migrations"
	"kanzlei-server/internal/routing"
)

const envFile = ".env"

// Init loads the configuration, connects to the database, runs the schema
// migrations, wires the managers together and starts the HTTP server.
func Init() {
	if err := godotenv.Load(envFile); err != nil {
		log.Info("No .env file found, using environment variables from system")
	} else {
		log.Info("Loaded environment variables from .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Error loading configuration: ", err)
	}

	setLogLevel(cfg.LogLevel)

	// Connect to database
	pool := initializeDatabase(cfg)
	defer pool.Close()

	// Run schema migrations before serving traffic
	if err := migrations.Run(cfg.Database.ConnectionString(), cfg.MigrationsPath); err != nil {
		log.Fatal("Error running migrations: ", err)
	}

	// Initialize managers
	databaseMgr := managers.NewDatabaseManager(pool)
	passwordMgr, err := managers.NewPasswordManager(cfg.PasswordPepper, cfg.Cost())
	if err != nil {
		log.Fatal("Error initializing password manager: ", err)
	}
	sessionMgr := managers.NewSessionManager(pool, passwordMgr, cfg.SessionTTL)
	mailMgr := managers.NewMailManager(cfg)

	// Initialize router
	r := routing.InitRouter(databaseMgr, sessionMgr, passwordMgr, mailMgr, cfg)
	log.Info("Initialized router")

	// Handle interrupt signal gracefully
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt)

		<-c
		log.Println("Server shutting down...")
		os.Exit(0)
	}()

	// Start server on the specified port
	log.Printf("Starting server on port %s...\n", cfg.Port)
	if err := http.ListenAndServe(cfg.Port, r); err != nil {
		log.Fatal("Error starting server: ", err)
	}
}

func initializeDatabase(cfg *config.Config) *pgxpool.Pool {
	log.Info("Initializing database")

	poolConfig, err := pgxpool.ParseConfig(cfg.Database.ConnectionString())
	if err != nil {
		log.Fatal("error configuring database: ", err)
	}

	poolConfig.MinConns = 5
	poolConfig.MaxConns = 30
	poolConfig.MaxConnIdleTime = time.Minute * 2
	poolConfig.HealthCheckPeriod = time.Minute * 1

	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		log.Fatal("error connecting to database: ", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		log.Fatal("error pinging database: ", err)
	}

	log.Info("Initialized database")
	return pool
}

func setLogLevel(logLevel string) {
	switch logLevel {
	case "debug":
		log.SetLevel(log.DebugLevel)
	case "info":
		log.SetLevel(log.InfoLevel)
	case "warn":
		log.SetLevel(log.WarnLevel)
	case "error":
		log.SetLevel(log.ErrorLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}
}
