package main

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/javiertc/mechanic-shop-api/internal/config"
	"github.com/javiertc/mechanic-shop-api/internal/database"
	"github.com/javiertc/mechanic-shop-api/internal/handler"
	"github.com/javiertc/mechanic-shop-api/internal/middleware"
	"github.com/javiertc/mechanic-shop-api/internal/queue"
	"github.com/javiertc/mechanic-shop-api/internal/repository"
	"github.com/javiertc/mechanic-shop-api/internal/router"
	queue_publisher "github.com/javiertc/mechanic-shop-api/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(database.Options{
		User: cfg.DBUser, Pass: cfg.DBPass,
		Host: cfg.DBHost, Port: cfg.DBPort, Name: cfg.DBName,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.DBConnMaxLifetimeMin) * time.Minute,
	})
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer func() { _ = db.Close() }()

	// The escalation consumer keeps its own connection and reconnect
	// loop. It logs and retries on broker failures so the API stays up
	// without RabbitMQ.
	go func() {
		if err := queue.StartEscalationConsumer(); err != nil {
			log.Printf("escalation consumer stopped: %v", err)
		}
	}()

	var cache, loginLimit echo.MiddlewareFunc
	cacheCfg := config.LoadCacheConfig()
	limitCfg := config.LoadRateLimitConfig()
	if cacheCfg.Enabled || limitCfg.Enabled {
		if rdb := config.NewRedisClient(); rdb != nil {
			if cacheCfg.Enabled {
				cache = middleware.NewRedisCache(cacheCfg, rdb)
			}
			if limitCfg.Enabled {
				loginLimit = middleware.NewLoginRateLimit(limitCfg, rdb)
			}
		} else {
			log.Printf("redis unreachable, response cache and login rate limit disabled")
		}
	}

	customers := repository.NewCustomerRepo(db)
	employees := repository.NewEmployeeRepo(db)
	cars := repository.NewCarRepo(db)
	serviceTypes := repository.NewServiceTypeRepo(db)
	tickets := repository.NewTicketRepo(db)

	h := router.Handlers{
		Customers:    handler.NewCustomerHandler(cfg, customers, cars),
		Employees:    handler.NewEmployeeHandler(cfg, employees),
		Cars:         handler.NewCarHandler(cars),
		ServiceTypes: handler.NewServiceTypeHandler(serviceTypes, tickets),
		Tickets:      handler.NewTicketHandler(tickets, queue_publisher.PublishTicketEscalated),
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	router.Register(e, h, cfg.JWTSecret, cache, loginLimit)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
