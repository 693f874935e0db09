package main

import (
	"context"
	"log"

	"ticketing-service/config"
	"ticketing-service/internal/module/booking/handler"
	"ticketing-service/internal/module/booking/repositories"
	"ticketing-service/internal/module/booking/usecases"
	"ticketing-service/internal/pkg/database"
	"ticketing-service/internal/pkg/gateway"
	"ticketing-service/internal/pkg/http"
	"ticketing-service/internal/pkg/httpclient"
	log_internal "ticketing-service/internal/pkg/log"
	"ticketing-service/internal/pkg/messagestream"
	"ticketing-service/internal/pkg/middleware"
	"ticketing-service/internal/pkg/redis"
	"ticketing-service/internal/pkg/scheduler"
	router "ticketing-service/internal/route"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-playground/validator/v10"
	"github.com/go-redsync/redsync/v4"
	redsyncredis "github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
)

func main() {
	cfg := config.InitConfig()

	app, messageRouters, sched, bookingHandler := initService(cfg)

	for _, r := range messageRouters {
		ctx := context.Background()
		go func(r *message.Router) {
			err := r.Run(ctx)
			if err != nil {
				log.Fatal(err)
			}
		}(r)
	}

	// scheduler: periodic sweep trigger, its worker, and the dashboard
	go sched.StartMonitoring(&cfg.Redis)
	go sched.StartPeriodicSweep(&cfg.Redis, cfg.Reservation.SweepInterval)
	go sched.StartHandler(&cfg.Redis,
		[]string{scheduler.TypeSweepStaleReservations},
		[]func(ctx context.Context, t *asynq.Task) error{bookingHandler.SweepStaleReservations},
	)

	// sweep once at startup so holds that expired while the service was
	// down do not wait a full interval
	sweepClient := sched.InitClient(&cfg.Redis)
	defer sweepClient.Close()
	if _, err := sweepClient.Enqueue(asynq.NewTask(scheduler.TypeSweepStaleReservations, nil)); err != nil {
		log.Println("error enqueue startup sweep:", err)
	}

	// start http server
	http.StartHttpServer(app, cfg.HttpServer.Port)
}

func initService(cfg *config.Config) (*fiber.App, []*message.Router, *scheduler.Scheduler, *handler.BookingHandler) {

	// init database
	db := database.GetConnection(&cfg.Database)
	// init redis
	redisClient := redis.SetupClient(&cfg.Redis)
	// init logger
	logZap := log_internal.SetupLogger()
	log_internal.Init(logZap)
	logger := log_internal.GetLogger()
	// init http client
	cb := httpclient.InitCircuitBreaker(&cfg.HttpClient, cfg.HttpClient.Type)
	httpClient := httpclient.InitHttpClient(&cfg.HttpClient, cb)

	ctx := context.Background()
	// init message stream
	amqp := messagestream.NewAmpq(&cfg.MessageStream)

	subscriber, err := amqp.NewSubscriber()
	if err != nil {
		logger.Error(ctx, "Failed to create subscriber", err)
	}

	publisher, err := amqp.NewPublisher()
	if err != nil {
		logger.Error(ctx, "Failed to create publisher", err)
	}

	rds := redsync.New(redsyncredis.NewPool(redisClient))

	gatewayClient := gateway.NewClient(&cfg.Gateway, httpClient, logger)

	bookingRepo := repositories.New(db, logger, httpClient, redisClient, &cfg.UserService, &cfg.Reservation)
	bookingUsecase := usecases.New(bookingRepo, gatewayClient, publisher, rds, logger, &cfg.Gateway, &cfg.Reservation)
	m := middleware.Middleware{
		Log:  logZap,
		Repo: bookingRepo,
	}

	v := validator.New()
	bookingHandler := handler.BookingHandler{
		Log:       logZap,
		Validator: v,
		Usecase:   bookingUsecase,
		Gateway:   gatewayClient,
		Publish:   publisher,
	}

	var messageRouters []*message.Router

	paymentNotificationRouter, err := messagestream.NewRouter(publisher, "poisoned_queue", "payment_notification_handler", "payment_notification", subscriber, bookingHandler.ConsumePaymentNotification)
	if err != nil {
		logger.Error(ctx, "Failed to create payment_notification router", err)
	}

	messageRouters = append(messageRouters, paymentNotificationRouter)

	sched := &scheduler.Scheduler{Log: logger}

	serverHttp := http.SetupHttpEngine()

	r := router.Initialize(serverHttp, &bookingHandler, &m)

	return r, messageRouters, sched, &bookingHandler
}
