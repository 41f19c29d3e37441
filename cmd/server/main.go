package main

import (
	"context"

	bookinghandler "stayhub/internal/bookings/handler"
	bookingrepo "stayhub/internal/bookings/repository"
	bookingservice "stayhub/internal/bookings/service"
	bookingvalidator "stayhub/internal/bookings/validator"
	hotelhandler "stayhub/internal/hotels/handler"
	hotelrepo "stayhub/internal/hotels/repository"
	hotelservice "stayhub/internal/hotels/service"
	hotelvalidator "stayhub/internal/hotels/validator"
	roomhandler "stayhub/internal/rooms/handler"
	roomrepo "stayhub/internal/rooms/repository"
	roomservice "stayhub/internal/rooms/service"
	roomvalidator "stayhub/internal/rooms/validator"
	userhandler "stayhub/internal/users/handler"
	userrepo "stayhub/internal/users/repository"
	userservice "stayhub/internal/users/service"
	uservalidator "stayhub/internal/users/validator"
	webhookhandler "stayhub/internal/webhooks/handler"
	webhookservice "stayhub/internal/webhooks/service"
	"stayhub/pkg/app"
	"stayhub/pkg/config"
	dbmongo "stayhub/pkg/db/mongo"
	"stayhub/pkg/events"
	"stayhub/pkg/webhook"

	"github.com/joho/godotenv"
)

const ServiceName = "stayhub"

func main() {
	// Missing .env is fine in deployed environments.
	_ = godotenv.Load()

	cfg := config.Load(ServiceName)
	cfg.Log.Info("Starting StayHub service")

	cfg.SetMongo()

	indexCtx, cancelIndexes := context.WithTimeout(context.Background(), cfg.MongoConnTimeout)
	if err := dbmongo.EnsureIndexes(indexCtx, cfg.Client.Mongo.Database(cfg.MongoDatabaseName)); err != nil {
		cfg.Log.Fatal("Failed to ensure database indexes", "error", err)
	}
	cancelIndexes()

	publisher, err := events.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize event publisher", "error", err)
	}

	verifier, err := webhook.NewVerifier(cfg.ClerkWebhookSecret)
	if err != nil {
		cfg.Log.Fatal("Invalid webhook signing secret", "error", err)
	}

	txManager := dbmongo.NewTransactionManager(cfg.Client.Mongo)

	hotelRepo := hotelrepo.NewMongoHotelRepository(cfg)
	roomRepo := roomrepo.NewMongoRoomRepository(cfg)
	bookingRepo := bookingrepo.NewMongoBookingRepository(cfg)
	userRepo := userrepo.NewMongoUserRepository(cfg)

	hotelService := hotelservice.NewHotelService(hotelRepo, roomRepo, hotelvalidator.NewHotelValidator(cfg.Log), cfg)
	roomService := roomservice.NewRoomService(roomRepo, roomvalidator.NewRoomValidator(cfg.Log), cfg)
	bookingService := bookingservice.NewBookingService(
		bookingRepo,
		roomRepo,
		txManager,
		publisher,
		bookingvalidator.NewBookingValidator(cfg.Log),
		cfg,
	)
	userService := userservice.NewUserService(userRepo, uservalidator.NewUserValidator(cfg.Log), cfg)
	syncService := webhookservice.NewSyncService(userRepo, publisher, cfg)

	cfg.Log.Info("Services initialized", "database", cfg.MongoDatabaseName)

	serverApp := app.NewApplication()
	serverApp.SetApp(cfg, publisher,
		hotelhandler.NewHotelHandler(hotelService, cfg.Log),
		roomhandler.NewRoomHandler(roomService, cfg.Log),
		bookinghandler.NewBookingHandler(bookingService, cfg.Log),
		userhandler.NewUserHandler(userService, cfg.Log),
		webhookhandler.NewWebhookHandler(syncService, verifier, cfg.Log),
	)
	serverApp.Run()
}
