package main

import (
	"context"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/freshproduce/marketplace/docs"
	"github.com/freshproduce/marketplace/internal/api"
	"github.com/freshproduce/marketplace/internal/api/handler"
	"github.com/freshproduce/marketplace/internal/core/domain"
	"github.com/freshproduce/marketplace/internal/core/ports"
	"github.com/freshproduce/marketplace/internal/core/service"
	mongostore "github.com/freshproduce/marketplace/internal/infrastructure/db/mongo"
	redisstore "github.com/freshproduce/marketplace/internal/infrastructure/db/redis"
	httpserver "github.com/freshproduce/marketplace/internal/infrastructure/http"
	"github.com/freshproduce/marketplace/internal/infrastructure/http/handlers"
	"github.com/freshproduce/marketplace/internal/infrastructure/mail"
	"github.com/freshproduce/marketplace/internal/infrastructure/queue"
	"github.com/freshproduce/marketplace/internal/infrastructure/storage"
	"github.com/freshproduce/marketplace/internal/pkg/config"
	"github.com/freshproduce/marketplace/internal/pkg/validation"
	"github.com/freshproduce/marketplace/pkg/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return serve(ctx)
	},
}

func serve(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "marketplace",
		Env:     cfg.Env,
	})

	client, db, err := connectMongo(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("mongo disconnect failed")
		}
	}()

	readiness := map[string]handlers.Check{"mongodb": handlers.MongoCheck(db)}

	var idempotency ports.IdempotencyStore
	if cfg.Redis.Addr != "" {
		rdb, err := redisstore.Connect(ctx, redisstore.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, Idempotency-Key replay disabled")
		} else {
			defer rdb.Close()
			idempotency = redisstore.NewIdempotencyStore(rdb, cfg.Redis.IdempotencyTTL)
			readiness["redis"] = handlers.RedisCheck(rdb)
		}
	}

	store, err := storage.New(ctx, storage.Config{
		Driver:  cfg.Uploads.Driver,
		Dir:     cfg.Uploads.Dir,
		BaseURL: cfg.Uploads.URL,
		S3: storage.S3Config{
			Bucket:   cfg.Uploads.S3.Bucket,
			Region:   cfg.Uploads.S3.Region,
			Key:      cfg.Uploads.S3.Key,
			Secret:   cfg.Uploads.S3.Secret,
			Endpoint: cfg.Uploads.S3.Endpoint,
			URL:      cfg.Uploads.S3.URL,
		},
	})
	if err != nil {
		return err
	}

	var notifier ports.OrderNotifier
	mailer := mail.New(mail.Config{
		Host:     cfg.Mail.Host,
		Port:     cfg.Mail.Port,
		Username: cfg.Mail.User,
		Password: cfg.Mail.Password,
		FromName: cfg.Mail.FromName,
	})
	var dispatcher *queue.MailDispatcher
	if mailer.Enabled() {
		dispatcher = queue.NewMailDispatcher(cfg.Mail.Workers, mailer, logger.Component("mail"))
		dispatcher.Start(ctx)
		notifier = dispatcher
	} else {
		log.Info().Msg("EMAIL_USER not set, order confirmations disabled")
	}

	creds, err := service.NewCredentialService(cfg.JWTSecret, cfg.TokenTTL, cfg.BcryptCost)
	if err != nil {
		return err
	}

	v := validation.New()
	users := mongostore.NewUserRepository(db)
	products := mongostore.NewProductRepository(db)
	orders := mongostore.NewOrderRepository(db)
	svcLog := logger.Component("service")

	deps := api.Deps{
		Admins:     service.NewUserService(domain.RoleAdmin, users, creds, v, svcLog),
		Retailers:  service.NewUserService(domain.RoleRetailer, users, creds, v, svcLog),
		Products:   service.NewProductService(products, users, v, svcLog),
		Orders:     service.NewOrderService(orders, products, idempotency, notifier, v, svcLog),
		Tokens:     creds,
		Uploader:   handler.NewImageUploader(store, cfg.Uploads.MaxBytes, logger.Component("upload")),
		Validator:  v,
		Logger:     logger.Component("http"),
		Readiness:  readiness,
		Registerer: prometheus.DefaultRegisterer,
		BodyLimit:  bodyLimit(cfg.Uploads.MaxBytes),
	}
	if local, ok := store.(*storage.Local); ok {
		deps.StaticDir = local.Root()
		deps.StaticURL = cfg.Uploads.URL
	}

	err = httpserver.NewServer(api.NewRouter(deps), cfg.Port, log).Run(ctx)
	if dispatcher != nil {
		dispatcher.Wait()
	}
	return err
}

func connectMongo(ctx context.Context, cfg *config.Config) (*mongo.Client, *mongo.Database, error) {
	client, db, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return nil, nil, err
	}
	if err := mongostore.EnsureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, err
	}
	return client, db, nil
}

// bodyLimit leaves one MiB of headroom over the largest accepted upload for
// the other form fields.
func bodyLimit(maxUpload int64) string {
	if maxUpload <= 0 {
		return ""
	}
	return strconv.FormatInt((maxUpload>>20)+1, 10) + "M"
}
