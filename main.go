package main

import (
	"context"
	"crypto/tls"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"taskboard-api/api"
	"taskboard-api/internal/consts"
	"taskboard-api/service"
	"taskboard-api/storage"
	"taskboard-api/stream"
)

func main() {
	if dbg, err := strconv.ParseBool(os.Getenv("DEBUG")); err == nil && dbg {
		log.SetLevel(log.DebugLevel)
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "taskboard.db"
	}
	store, err := storage.Open(dsn)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}

	redisConn := os.Getenv("REDIS_CONNECTION_STRING")
	if redisConn == "" {
		log.Fatal("missing redis config")
	}
	redisOpts, err := redis.ParseURL(redisConn)
	if err != nil {
		parts := strings.Split(redisConn, ",")
		redisOpts = &redis.Options{Addr: parts[0]}
		for _, p := range parts[1:] {
			kv := strings.SplitN(p, "=", 2)
			if len(kv) != 2 {
				continue
			}
			switch strings.ToLower(kv[0]) {
			case "password":
				redisOpts.Password = kv[1]
			case "ssl":
				if strings.ToLower(kv[1]) == "true" {
					redisOpts.TLSConfig = &tls.Config{}
				}
			}
		}
	}
	rc := redis.NewClient(redisOpts)

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("missing JWT_SECRET")
	}
	var jwks *keyfunc.JWKS
	if jwksURL := os.Getenv("AUTH_JWKS_URL"); jwksURL != "" {
		jwks, err = keyfunc.Get(jwksURL, keyfunc.Options{})
		if err != nil {
			log.Fatalf("jwks: %v", err)
		}
	}
	auth := api.NewAuth([]byte(secret), jwks)

	logger := log.New()
	logger.SetLevel(log.GetLevel())

	broadcaster := stream.NewBroadcaster(rc, consts.EventsChannel, logger)
	hub := stream.NewHub()
	go stream.SubscribeEvents(context.Background(), logger, rc, consts.EventsChannel, hub)

	activityLogger := service.NewActivityLogger(store, logger)
	notifications := service.NewNotificationService(store, broadcaster, activityLogger, logger)
	svc := api.Services{
		Users:         service.NewUserService(store, activityLogger, logger),
		Projects:      service.NewProjectService(store, broadcaster, activityLogger, logger),
		Tasks:         service.NewTaskService(store, broadcaster, activityLogger, notifications, logger),
		Tags:          service.NewTagService(store, broadcaster, activityLogger, logger),
		Notifications: notifications,
		Activity:      service.NewActivityService(store),
	}

	reminderInterval := time.Hour
	if v := os.Getenv("REMINDER_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			log.Fatalf("invalid REMINDER_INTERVAL: %v", err)
		}
		reminderInterval = d
	}
	reminder := service.NewReminder(store, notifications, logger)
	if err := reminder.Start(reminderInterval); err != nil {
		log.Fatalf("reminder: %v", err)
	}
	defer reminder.Stop()

	e := echo.New()
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	api.Register(e, svc, auth, hub, logger)

	listenAddr := ":8080"
	if val, ok := os.LookupEnv("PORT"); ok {
		listenAddr = ":" + val
	}

	e.Logger.Fatal(e.Start(listenAddr))
}
