package bootstrap

import (
	"context"
	"log"

	"flowcredits-be/internal/config"
	"flowcredits-be/internal/controller"
	"flowcredits-be/internal/handler"
	"flowcredits-be/internal/observability/metrics"
	"flowcredits-be/internal/pkg/logger"
	"flowcredits-be/internal/repository/memory"
	"flowcredits-be/internal/repository/unitofwork"
	"flowcredits-be/internal/service"
	"flowcredits-be/internal/websocket"
	"flowcredits-be/pkg/gateway"
	"flowcredits-be/pkg/locks"
	pktNats "flowcredits-be/pkg/nats"
	"flowcredits-be/pkg/pricing"
	"flowcredits-be/pkg/sequence"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// ReplenishTopic is the in-process queue the alert service publishes to and
// the replenish consumer drains.
const ReplenishTopic = "replenish_credits"

type Container struct {
	// Controllers
	CreditController controller.ICreditController
	PolicyController controller.IPolicyController

	// Background Services (Exposed for main.go to run)
	ReplenishService service.IReplenishService
	BalanceService   service.IBalanceService

	// WebSockets
	BalanceStreamHandler *handler.BalanceStreamHandler
	WebSocketHub         *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 2.5 Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/balance_stream.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 3. Ledger Infrastructure
	seqGen, err := sequence.NewGenerator(cfg.Credits.SnowflakeNode)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize sequence generator: %v", err)
	}
	lockManager := locks.NewManager(cfg.Credits.LockTimeout)
	pricingEngine := pricing.NewEngine(cfg.Credits.BaseRatePerCredit, pricing.DefaultTiers())
	policyCache := memory.NewPolicyCache()
	paymentGateway := gateway.NewMidtransGateway(
		cfg.Midtrans.ServerKey,
		cfg.Midtrans.IsProduction,
		cfg.Midtrans.FinishURL,
	)
	ledgerMetrics := metrics.LedgerWithConfig(metrics.Config{
		ServiceName: "flowcredits",
		Environment: cfg.App.Environment,
	})

	// 4. Services
	alertService := service.NewAlertService(
		uowFactory,
		policyCache,
		natsPub,
		wsHub,
		pubSub,
		ReplenishTopic,
		sysLogger,
		ledgerMetrics,
	)
	purchaseService := service.NewPurchaseService(
		uowFactory,
		pricingEngine,
		paymentGateway,
		lockManager,
		seqGen,
		alertService,
		sysLogger,
		ledgerMetrics,
		cfg.Credits.Currency,
	)
	reservationService := service.NewReservationService(
		uowFactory,
		pricingEngine,
		lockManager,
		seqGen,
		alertService,
		sysLogger,
		ledgerMetrics,
		cfg.Credits.Currency,
	)
	balanceService := service.NewBalanceService(
		uowFactory,
		lockManager,
		sysLogger,
		ledgerMetrics,
		cfg.Credits.ReconcileInterval,
	)
	replenishService := service.NewReplenishService(
		pubSub,
		ReplenishTopic,
		purchaseService,
		sysLogger,
	)
	policyService := service.NewPolicyService(
		uowFactory,
		policyCache,
		sysLogger,
		cfg.Credits.Currency,
	)

	// 5. Controllers
	creditController := controller.NewCreditController(purchaseService, reservationService, balanceService)
	policyController := controller.NewPolicyController(policyService)
	balanceStreamHandler := handler.NewBalanceStreamHandler(wsHub, wsLogger)

	return &Container{
		CreditController:     creditController,
		PolicyController:     policyController,
		ReplenishService:     replenishService,
		BalanceService:       balanceService,
		BalanceStreamHandler: balanceStreamHandler,
		WebSocketHub:         wsHub,
	}
}
