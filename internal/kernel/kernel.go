// Package kernel assembles the application: it opens the backing stores,
// builds the services and wires their listeners, then mounts every route
// on one router behind the global middleware stack.
package kernel

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/ayoo/app/controllers"
	"github.com/shashiranjanraj/ayoo/app/jobs"
	"github.com/shashiranjanraj/ayoo/app/listeners"
	"github.com/shashiranjanraj/ayoo/app/realtime"
	"github.com/shashiranjanraj/ayoo/app/repositories"
	"github.com/shashiranjanraj/ayoo/app/routes"
	"github.com/shashiranjanraj/ayoo/app/schema"
	"github.com/shashiranjanraj/ayoo/app/services"
	"github.com/shashiranjanraj/ayoo/config"
	"github.com/shashiranjanraj/ayoo/pkg/cache"
	"github.com/shashiranjanraj/ayoo/pkg/database"
	"github.com/shashiranjanraj/ayoo/pkg/event"
	"github.com/shashiranjanraj/ayoo/pkg/graphql"
	"github.com/shashiranjanraj/ayoo/pkg/lock"
	"github.com/shashiranjanraj/ayoo/pkg/logger"
	"github.com/shashiranjanraj/ayoo/pkg/metrics"
	"github.com/shashiranjanraj/ayoo/pkg/middleware"
	"github.com/shashiranjanraj/ayoo/pkg/queue"
	"github.com/shashiranjanraj/ayoo/pkg/reqid"
	"github.com/shashiranjanraj/ayoo/pkg/response"
	"github.com/shashiranjanraj/ayoo/pkg/router"
	"github.com/shashiranjanraj/ayoo/pkg/schedule"
	"github.com/shashiranjanraj/ayoo/pkg/storage"
	"github.com/shashiranjanraj/ayoo/pkg/stream"
	"github.com/shashiranjanraj/ayoo/pkg/workerpool"
	"github.com/shashiranjanraj/ayoo/pkg/ws"
)

// Deps are the external resources the container is built on. Only DB and
// Disk are required.
type Deps struct {
	DB    *gorm.DB
	Redis *redis.Client
	Disk  storage.Disk

	// OrderLog receives the order event stream; nil disables it.
	OrderLog stream.MessageWriter

	// PaymentClient overrides the HTTP client used for the gateway.
	PaymentClient *http.Client

	LockDriver     string
	QueueDriver    string
	RealtimeDriver string
	RealtimeTopic  string
	PoolPending    bool
	Stripe         services.StripeConfig
}

// Container holds the built application.
type Container struct {
	DB        *gorm.DB
	Redis     *redis.Client
	Cache     *cache.Store
	Disk      storage.Disk
	Hub       *ws.Hub
	Relay     *realtime.Relay // nil unless realtime runs over redis
	Pool      *workerpool.Pool
	Events    *event.Dispatcher
	Queue     *queue.Manager
	Publisher *stream.Publisher // nil when the order log is off

	Orders   *services.OrderService
	Catalog  *services.CatalogService
	Auth     *services.AuthService
	Users    *services.UserService
	Vouchers *services.VoucherService
	Stats    *services.StatsService
	Payments *services.PaymentService

	Router *router.Router
}

// Boot opens the configured stores and builds the container. Redis is
// optional unless a driver selects it.
func Boot(ctx context.Context) (*Container, error) {
	if err := config.Load(); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	db, err := database.Connect(ctx)
	if err != nil {
		return nil, err
	}

	rdb, err := cache.Connect(ctx)
	if err != nil {
		logger.Warn("redis unavailable, caching disabled", "addr", config.RedisAddr(), "error", err)
		rdb = nil
	}

	disk, err := storage.Open(ctx)
	if err != nil {
		return nil, err
	}

	var orderLog stream.MessageWriter
	if brokers := config.KafkaBrokers(); len(brokers) > 0 {
		orderLog = stream.NewKafkaWriter(brokers, config.KafkaOrderTopic())
	}

	return New(Deps{
		DB:             db,
		Redis:          rdb,
		Disk:           disk,
		OrderLog:       orderLog,
		LockDriver:     config.LockDriver(),
		QueueDriver:    config.QueueDriver(),
		RealtimeDriver: config.RealtimeDriver(),
		RealtimeTopic:  config.RealtimeRedisChannel(),
		PoolPending:    config.RiderPoolIncludesPending(),
		Stripe: services.StripeConfig{
			SecretKey: config.StripeSecretKey(),
			BaseURL:   config.StripeBaseURL(),
			AppURL:    config.AppURL(),
			Currency:  config.PaymentCurrency(),
		},
	})
}

// New builds the container from d.
func New(d Deps) (*Container, error) {
	if d.DB == nil {
		return nil, errors.New("kernel: database is required")
	}
	if d.Disk == nil {
		return nil, errors.New("kernel: storage disk is required")
	}

	c := &Container{
		DB:    d.DB,
		Redis: d.Redis,
		Cache: cache.New(d.Redis),
		Disk:  d.Disk,
		Hub:   ws.NewHub(),
		Pool:  workerpool.New("events", 8),
	}
	c.Events = event.NewDispatcher(c.Pool)

	locks, err := c.locker(d)
	if err != nil {
		return nil, err
	}
	if c.Queue, err = c.queue(d); err != nil {
		return nil, err
	}
	if d.OrderLog != nil {
		c.Publisher = stream.NewPublisher(d.OrderLog)
	}
	jobs.Register(c.Queue, c.Publisher)

	var sink realtime.Sink = c.Hub
	if d.RealtimeDriver == "redis" {
		if d.Redis == nil {
			return nil, errors.New("kernel: REALTIME_DRIVER=redis needs a redis connection")
		}
		c.Relay = realtime.NewRelay(d.Redis, d.RealtimeTopic, c.Hub)
		sink = c.Relay
	}

	ordersRepo := repositories.NewOrderRepository(d.DB)
	usersRepo := repositories.NewUserRepository(d.DB)
	restaurantsRepo := repositories.NewRestaurantRepository(d.DB)

	c.Orders = services.NewOrderService(ordersRepo, locks, c.Events, services.RiderPool(d.PoolPending))
	c.Catalog = services.NewCatalogService(restaurantsRepo, c.Cache, d.Disk, c.Events)
	c.Auth = services.NewAuthService(usersRepo, restaurantsRepo)
	c.Users = services.NewUserService(usersRepo)
	c.Vouchers = services.NewVoucherService(repositories.NewVoucherRepository(d.DB))
	c.Stats = services.NewStatsService(ordersRepo, usersRepo, restaurantsRepo, c.Cache)
	c.Payments = services.NewPaymentService(d.Stripe, ordersRepo, d.PaymentClient)

	deps := listeners.Deps{
		Notifier: realtime.NewNotifier(sink, c.Orders.Pool()),
		Stats:    c.Stats,
		Catalog:  c.Catalog,
	}
	if c.Publisher != nil {
		deps.Queue = c.Queue
	}
	listeners.Register(c.Events, deps)

	c.Hub.OnMessage = realtime.HandleMessage

	if c.Router, err = c.routes(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Container) locker(d Deps) (lock.Locker, error) {
	switch d.LockDriver {
	case "", "memory":
		return lock.NewMemory(), nil
	case "redis":
		if d.Redis == nil {
			return nil, errors.New("kernel: LOCK_DRIVER=redis needs a redis connection")
		}
		return lock.NewRedis(d.Redis, config.LockTTL()), nil
	default:
		return nil, fmt.Errorf("kernel: unsupported LOCK_DRIVER %q (supported: memory, redis)", d.LockDriver)
	}
}

func (c *Container) queue(d Deps) (*queue.Manager, error) {
	var driver queue.Driver
	switch d.QueueDriver {
	case "", "memory":
		driver = queue.NewMemoryDriver()
	case "redis":
		if d.Redis == nil {
			return nil, errors.New("kernel: QUEUE_DRIVER=redis needs a redis connection")
		}
		driver = queue.NewRedisDriver(d.Redis)
	default:
		return nil, fmt.Errorf("kernel: unsupported QUEUE_DRIVER %q (supported: memory, redis)", d.QueueDriver)
	}
	return queue.New(driver, queue.WithFailedJobStore(d.DB)), nil
}

// routes builds the router. Global middleware runs outermost first:
// metrics, recovery, request id, access log, CORS, rate limit, then
// optional authentication.
func (c *Container) routes() (*router.Router, error) {
	r := router.New()
	r.Use(metrics.Middleware())
	r.Use(middleware.Recovery)
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)
	r.Use(middleware.CORS(middleware.DefaultCORSOptions()))
	r.Use(middleware.RateLimit(200, time.Minute))
	r.Use(middleware.OptionalAuth)

	r.HandleFunc("/metrics", metrics.Handler())
	r.Get("/healthz", "health", c.health)

	if local, ok := c.Disk.(*storage.Local); ok {
		files := http.StripPrefix("/storage/", http.FileServer(http.Dir(local.Root())))
		r.Get("/storage/*", "storage.files", files.ServeHTTP)
	}

	gql, err := schema.New(c.Orders, c.Catalog)
	if err != nil {
		return nil, fmt.Errorf("kernel: graphql schema: %w", err)
	}

	routes.RegisterAPI(r, routes.Handlers{
		Auth:        controllers.NewAuthController(c.Auth),
		Orders:      controllers.NewOrderController(c.Orders, c.Hub),
		Restaurants: controllers.NewRestaurantController(c.Catalog),
		Users:       controllers.NewUserController(c.Users),
		Vouchers:    controllers.NewVoucherController(c.Vouchers),
		Admin:       controllers.NewAdminController(c.Stats, c.Users),
		Payments:    controllers.NewPaymentController(c.Payments),
		Realtime:    controllers.NewRealtimeController(c.Hub),
		GraphQL:     graphql.Handler(gql),
	})
	return r, nil
}

func (c *Container) health(w http.ResponseWriter, r *http.Request) {
	if err := database.Ping(r.Context(), c.DB); err != nil {
		response.Error(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	body := map[string]any{"status": "ok", "realtimeClients": c.Hub.ClientCount()}
	if n, err := c.Queue.Pending(r.Context()); err == nil {
		body["queuePending"] = n
	}
	response.Success(w, body)
}

// Handler is the root HTTP handler.
func (c *Container) Handler() http.Handler { return c.Router.Handler() }

// Close releases the stores and background resources.
func (c *Container) Close() {
	c.Pool.Shutdown()
	if c.Publisher != nil {
		if err := c.Publisher.Close(); err != nil {
			logger.Warn("order log close failed", "error", err)
		}
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	if sqlDB, err := c.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// Schedule returns the periodic tasks: the admin dashboard stats are
// recomputed every minute so the first request after expiry stays fast.
func (c *Container) Schedule() (*schedule.Scheduler, error) {
	s := schedule.New()
	err := s.Every(time.Minute).Name("stats:warm").WithoutOverlapping().Run(c.Stats.Warm)
	if err != nil {
		return nil, err
	}
	return s, nil
}
