package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"splitship/cmd"
	httpin "splitship/internal/adapters/in/http"
	"splitship/internal/adapters/in/queue"
	"splitship/internal/adapters/out/commerceapi"
	"splitship/internal/adapters/out/postgres/jobqueuerepo"
	"splitship/internal/adapters/out/postgres/refrepo"
	"splitship/internal/adapters/out/postgres/splitrequestrepo"
	"splitship/internal/adapters/out/rates"
	"splitship/internal/adapters/out/redisdedup"
	"splitship/internal/core/domain/services"
	"splitship/internal/core/ports"
	"splitship/internal/jobs"
)

func main() {
	configs := getConfigs()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	gormDB := mustConnectDB(configs)
	mustMigrate(gormDB)

	gateway, err := commerceapi.NewClient(
		configs.CommerceAPIBaseURL,
		configs.CommerceAPIAccessToken,
		mustFloatConfig("COMMERCE_API_RATE_LIMIT", configs.CommerceAPIRateLimit),
	)
	if err != nil {
		log.Fatalf("Failed to create commerce API client: %v", err)
	}

	rateTable, err := rates.Load(configs.ShippingRatesPath)
	if err != nil {
		log.Fatalf("Failed to load shipping rates: %v", err)
	}

	packOptions := services.PackOptions{
		CapCents:            mustInt64Config("PARCEL_CAP_CENTS", configs.ParcelCapCents),
		AbsorbBudgetCents:   mustInt64Config("PARCEL_ABSORB_BUDGET_CENTS", configs.ParcelAbsorbBudgetCents),
		AbsorbItemsPerHeavy: mustIntConfig("PARCEL_ABSORB_ITEMS_PER_HEAVY", configs.ParcelAbsorbItemsPerHeavy),
	}
	if err := packOptions.Validate(); err != nil {
		log.Fatalf("Invalid parcel packing options: %v", err)
	}

	app := cmd.NewCompositionRoot(configs, gormDB, gateway, rateTable, packOptions, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dispatcher := app.CreateDispatcher()
	jobQueue := app.CreateJobQueueRepository()

	jobManager := jobs.NewJobManager(dispatcher, queue.IsSkip, jobQueue, logger)
	if err := jobManager.StartAll(); err != nil {
		log.Fatalf("Failed to start jobs: %v", err)
	}
	defer jobManager.StopAll()

	consumer := startConsumer(ctx, configs, dispatcher, jobQueue, logger)
	e := startWebServer(&app, configs.HTTPPort)

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
	}
	<-consumer
}

func getConfigs() cmd.Config {
	config := cmd.Config{
		HTTPPort:   goDotEnvVariable("HTTP_PORT"),
		DBHost:     goDotEnvVariable("DB_HOST"),
		DBPort:     goDotEnvVariable("DB_PORT"),
		DBUser:     goDotEnvVariable("DB_USER"),
		DBPassword: goDotEnvVariable("DB_PASSWORD"),
		DBName:     goDotEnvVariable("DB_NAME"),
		DBSslMode:  goDotEnvVariable("DB_SSLMODE"),

		KafkaHost:          goDotEnvVariable("KAFKA_HOST"),
		KafkaConsumerGroup: goDotEnvVariable("KAFKA_CONSUMER_GROUP"),
		KafkaWebhookTopic:  goDotEnvVariable("KAFKA_WEBHOOK_TOPIC"),
		KafkaWorkers:       goDotEnvVariable("KAFKA_WORKERS"),

		RedisHost:     goDotEnvVariable("REDIS_HOST"),
		RedisPassword: goDotEnvVariable("REDIS_PASSWORD"),

		CommerceAPIBaseURL:     goDotEnvVariable("COMMERCE_API_BASE_URL"),
		CommerceAPIAccessToken: goDotEnvVariable("COMMERCE_API_ACCESS_TOKEN"),
		CommerceAPIRateLimit:   goDotEnvVariable("COMMERCE_API_RATE_LIMIT"),

		ShippingRatesPath: goDotEnvVariable("SHIPPING_RATES_PATH"),

		ParcelCapCents:            goDotEnvVariable("PARCEL_CAP_CENTS"),
		ParcelAbsorbBudgetCents:   goDotEnvVariable("PARCEL_ABSORB_BUDGET_CENTS"),
		ParcelAbsorbItemsPerHeavy: goDotEnvVariable("PARCEL_ABSORB_ITEMS_PER_HEAVY"),
	}
	return config
}

func goDotEnvVariable(key string) string {
	err := godotenv.Load(".env")
	if err != nil {
		log.Fatalf("Error loading .env file")
	}
	return os.Getenv(key)
}

func mustIntConfig(key, value string) int {
	parsed, err := strconv.Atoi(value)
	if err != nil {
		log.Fatalf("Invalid %s: %v", key, err)
	}
	return parsed
}

func mustInt64Config(key, value string) int64 {
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		log.Fatalf("Invalid %s: %v", key, err)
	}
	return parsed
}

func mustFloatConfig(key, value string) float64 {
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		log.Fatalf("Invalid %s: %v", key, err)
	}
	return parsed
}

func mustConnectDB(configs cmd.Config) *gorm.DB {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		configs.DBHost, configs.DBPort, configs.DBUser,
		configs.DBPassword, configs.DBName, configs.DBSslMode)

	gormDB, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	return gormDB
}

func mustMigrate(gormDB *gorm.DB) {
	err := gormDB.AutoMigrate(
		&splitrequestrepo.SplitRequestDTO{},
		&splitrequestrepo.FulfillmentHoldDTO{},
		&refrepo.ShopDTO{},
		&refrepo.OrderDTO{},
		&refrepo.CustomerDTO{},
		&jobqueuerepo.RetryJobDTO{},
		&jobqueuerepo.DeadLetterDTO{},
	)
	if err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
}

func startConsumer(
	ctx context.Context,
	configs cmd.Config,
	dispatcher *queue.Dispatcher,
	jobQueue ports.JobQueueRepository,
	logger *slog.Logger,
) <-chan struct{} {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: strings.Split(configs.KafkaHost, ","),
		GroupID: configs.KafkaConsumerGroup,
		Topic:   configs.KafkaWebhookTopic,
	})

	redisClient := redis.NewClient(&redis.Options{
		Addr:     configs.RedisHost,
		Password: configs.RedisPassword,
	})
	dedup := redisdedup.NewStore(redisClient, 0)

	workers := mustIntConfig("KAFKA_WORKERS", configs.KafkaWorkers)
	consumer, err := queue.NewConsumer(reader, dispatcher, dedup, jobQueue, workers, logger)
	if err != nil {
		log.Fatalf("Failed to create queue consumer: %v", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer func() {
			if err := reader.Close(); err != nil {
				logger.Error("Kafka reader close failed", "error", err)
			}
		}()
		if err := consumer.Run(ctx); err != nil {
			logger.Error("Queue consumer stopped", "error", err)
		}
	}()
	return done
}

func startWebServer(app *cmd.CompositionRoot, port string) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	server := httpin.NewServer(
		app.CreateResetSplitRequestCommandHandler(),
		app.CreateCancelPaymentOrderCommandHandler(),
		app.CreateGetSplitRequestQueryHandler(),
		app.CreateGetDeadLettersQueryHandler(),
	)
	server.RegisterRoutes(e)

	go func() {
		if err := e.Start(fmt.Sprintf("0.0.0.0:%s", port)); err != nil {
			e.Logger.Info("HTTP server stopped: ", err)
		}
	}()
	return e
}
