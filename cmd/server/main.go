package main // Entry point package

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/lrotelli01/largebnb/internal/booking"
	"github.com/lrotelli01/largebnb/internal/config"
	"github.com/lrotelli01/largebnb/internal/database"
	"github.com/lrotelli01/largebnb/internal/handler"
	appmw "github.com/lrotelli01/largebnb/internal/middleware"
	"github.com/lrotelli01/largebnb/internal/payment"
	"github.com/lrotelli01/largebnb/internal/queue"
	"github.com/lrotelli01/largebnb/internal/repository"
	"github.com/lrotelli01/largebnb/internal/router"
	"github.com/lrotelli01/largebnb/internal/service"
	"github.com/lrotelli01/largebnb/internal/utils"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env vars win
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("mysql: %v", err)
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		// The booking flow cannot run without the lock store.
		log.Fatal("redis: connection failed")
	}

	// Repositories
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	sessions := repository.NewSessionRepo(rdb)
	properties := repository.NewPropertyRepo(db)
	reservations := repository.NewReservationRepo(db)
	holds := repository.NewHoldRepo(rdb)
	graph := repository.NewGraphRepo(db)
	trending := repository.NewTrendingRepo(rdb)
	reviews := repository.NewReviewRepo(db)
	messages := repository.NewMessageRepo(db)
	notifications := repository.NewNotificationRepo(db)

	// Payment gateway
	var gateway interface {
		booking.PaymentGateway
		payment.Tokenizer
	}
	switch cfg.PaymentDriver {
	case "stripe":
		sg, err := payment.NewStripeGateway(cfg.StripeKey, cfg.StripeCurrency)
		if err != nil {
			log.Fatalf("stripe: %v", err)
		}
		gateway = sg
	default:
		gateway = payment.NewSimulatedGateway()
	}

	// Graph sync runs through RabbitMQ; the consumer applies events to
	// the booking_edges projection in the background. The projection is
	// derived data, so it can be regenerated from reservations whenever
	// it is suspected stale.
	if cfg.GraphRebuild {
		if err := graph.Rebuild(context.Background()); err != nil {
			log.Fatalf("graph rebuild: %v", err)
		}
		log.Println("graph: booking_edges projection rebuilt")
	}
	graphSync := service.NewGraphPublisher(cfg.AMQPURL)
	go queue.StartGraphConsumer(cfg.AMQPURL, graph)

	notifier := service.NewNotifier(notifications, users)

	engine := booking.NewEngine(properties, reservations, holds, users, gateway, graphSync, notifier, utils.NewID)

	// Handlers
	authH := handler.NewAuthHandler(cfg, users, tokens, sessions, reservations, graph)
	bookingH := handler.NewBookingHandler(engine)
	paymentH := handler.NewPaymentMethodHandler(users, gateway)
	propertyH := handler.NewPropertyHandler(properties, trending)
	managerPropH := handler.NewManagerPropertyHandler(properties)
	managerResH := handler.NewManagerReservationHandler(properties, reservations)
	reviewH := handler.NewReviewHandler(reviews, reservations, properties)
	messageH := handler.NewMessageHandler(messages, users, notifier)
	notifH := handler.NewNotificationHandler(notifications)
	favH := handler.NewFavoritesHandler(users, properties)
	recH := handler.NewRecommendationHandler(graph, properties, trending)

	e := echo.New()
	e.HideBanner = true

	cache := appmw.NewRedisCache(config.LoadCacheConfig(), rdb)
	ratelimit := appmw.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret, sessions)
	router.RegisterPublic(e, propertyH, reviewH, cache)
	router.RegisterCustomer(e, router.CustomerHandlers{
		Booking:         bookingH,
		PaymentMethods:  paymentH,
		Reviews:         reviewH,
		Favorites:       favH,
		Recommendations: recH,
		History:         propertyH,
	}, cfg.JWTSecret, sessions, ratelimit)
	router.RegisterManager(e, router.ManagerHandlers{
		Properties:   managerPropH,
		Reservations: managerResH,
		Reviews:      reviewH,
	}, cfg.JWTSecret, sessions)
	router.RegisterShared(e, messageH, notifH, cfg.JWTSecret, sessions)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
