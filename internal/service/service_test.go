package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"flowcredits-be/internal/model"
	"flowcredits-be/internal/pkg/logger"
	"flowcredits-be/internal/repository/memory"
	"flowcredits-be/internal/repository/unitofwork"
	"flowcredits-be/pkg/database"
	"flowcredits-be/pkg/gateway"
	"flowcredits-be/pkg/locks"
	"flowcredits-be/pkg/pricing"
	"flowcredits-be/pkg/sequence"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"
)

// fakeGateway stands in for the external payment gateway so tests can drive
// the checkout and webhook flow without network calls.
type fakeGateway struct {
	chargeErr   error
	charges     []*gateway.ChargeRequest
	validSig    bool
	lastOrderID string
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{validSig: true}
}

func (g *fakeGateway) CreateCharge(ctx context.Context, req *gateway.ChargeRequest) (*gateway.ChargeResult, error) {
	if g.chargeErr != nil {
		return nil, g.chargeErr
	}
	g.charges = append(g.charges, req)
	g.lastOrderID = req.OrderID
	return &gateway.ChargeResult{
		Token:       "snap-token-" + req.OrderID,
		RedirectURL: "https://app.sandbox.midtrans.com/snap/v2/vtweb/" + req.OrderID,
	}, nil
}

func (g *fakeGateway) VerifySignature(orderId, statusCode, grossAmount, signatureKey string) bool {
	return g.validSig
}

type testEnv struct {
	db         *gorm.DB
	uowFactory unitofwork.RepositoryFactory
	gateway    *fakeGateway
	engine     *pricing.Engine
	locks      *locks.Manager
	pubSub     *gochannel.GoChannel

	alerts      IAlertService
	purchase    IPurchaseService
	reservation IReservationService
	balance     IBalanceService
	policy      IPolicyService
}

func testLogger(t *testing.T) logger.ILogger {
	t.Helper()
	return logger.NewIsolatedLogger(filepath.Join(t.TempDir(), "test.log"))
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.NewSQLiteDB(filepath.Join(t.TempDir(), "credits.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&model.CreditTransaction{},
		&model.ClientBalance{},
		&model.Reservation{},
		&model.Payment{},
		&model.CreditPolicy{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	seqGen, err := sequence.NewGenerator(1)
	if err != nil {
		t.Fatalf("sequence generator: %v", err)
	}

	log := logger.NewIsolatedLogger(filepath.Join(t.TempDir(), "test.log"))
	uowFactory := unitofwork.NewRepositoryFactory(db)
	lockManager := locks.NewManager(5 * time.Second)
	engine := pricing.NewEngine(15000, pricing.DefaultTiers())
	policyCache := memory.NewPolicyCache()
	gw := newFakeGateway()
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NewStdLogger(false, false))

	alerts := NewAlertService(uowFactory, policyCache, nil, nil, pubSub, "replenish_credits_test", log, nil)
	purchase := NewPurchaseService(uowFactory, engine, gw, lockManager, seqGen, alerts, log, nil, "IDR")
	reservation := NewReservationService(uowFactory, engine, lockManager, seqGen, alerts, log, nil, "IDR")
	balance := NewBalanceService(uowFactory, lockManager, log, nil, time.Minute)
	policy := NewPolicyService(uowFactory, policyCache, log, "IDR")

	return &testEnv{
		db:          db,
		uowFactory:  uowFactory,
		gateway:     gw,
		engine:      engine,
		locks:       lockManager,
		pubSub:      pubSub,
		alerts:      alerts,
		purchase:    purchase,
		reservation: reservation,
		balance:     balance,
		policy:      policy,
	}
}
