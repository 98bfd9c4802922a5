package postgres_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	postgres_adapter "kitchenpos/internal/adapters/out/postgres"
	"kitchenpos/internal/adapters/out/postgres/orderrepo"
	"kitchenpos/internal/core/domain/model/kernel"
	"kitchenpos/internal/core/domain/model/order"
	"kitchenpos/internal/core/ports"
	"kitchenpos/internal/pkg/errs"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
)

// UnitOfWorkIntegrationTestSuite exercises transaction boundaries against a
// PostgreSQL container.
type UnitOfWorkIntegrationTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB
	factory   ports.UnitOfWorkFactory
}

func (suite *UnitOfWorkIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(30*time.Second)),
	)
	suite.Require().NoError(err)
	suite.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := postgres_adapter.Open(postgres_adapter.Options{DSN: dsn, MaxOpenConns: 10}, slog.Default())
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(postgres_adapter.Migrate(db))

	suite.factory = postgres_adapter.NewGormUnitOfWorkFactory(db, 5*time.Second)
}

func (suite *UnitOfWorkIntegrationTestSuite) SetupTest() {
	err := suite.db.Exec("TRUNCATE TABLE orders, order_sequences RESTART IDENTITY").Error
	suite.Require().NoError(err)
}

func (suite *UnitOfWorkIntegrationTestSuite) TearDownSuite() {
	if suite.db != nil {
		suite.NoError(postgres_adapter.Close(suite.db))
	}
	if suite.container != nil {
		err := suite.container.Terminate(context.Background())
		suite.Require().NoError(err)
	}
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWorkFactory_Create() {
	uow1 := suite.factory.Create()
	uow2 := suite.factory.Create()

	suite.NotSame(uow1, uow2, "Factory should create separate instances")
	suite.NotNil(uow1.OrderRepository())
	suite.NotNil(uow2.OrderRepository())
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_TransactionLifecycle() {
	ctx := context.Background()
	uow := suite.factory.Create()

	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.Begin(ctx), "Multiple begin calls should be safe")
	suite.Require().NoError(uow.Commit(ctx))

	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.Rollback(ctx))
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_TransactionErrors() {
	ctx := context.Background()
	uow := suite.factory.Create()

	suite.ErrorIs(uow.Commit(ctx), gorm.ErrInvalidTransaction)
	suite.ErrorIs(uow.Rollback(ctx), gorm.ErrInvalidTransaction)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_CommitPersistsOrder() {
	ctx := context.Background()
	now := time.Now()
	uow := suite.factory.Create()

	suite.Require().NoError(uow.Begin(ctx))
	created := suite.createOrder(ctx, uow.OrderRepository(), now)

	inTx, err := uow.OrderRepository().Get(ctx, created.ID())
	suite.Require().NoError(err)
	suite.Equal(created.Number(), inTx.Number())

	suite.Require().NoError(uow.Commit(ctx))

	stored, err := suite.factory.Create().OrderRepository().Get(ctx, created.ID())
	suite.Require().NoError(err)
	suite.Equal(created.Number(), stored.Number())
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_RollbackDiscardsOrderAndNumber() {
	ctx := context.Background()
	now := time.Now()
	uow := suite.factory.Create()

	suite.Require().NoError(uow.Begin(ctx))
	created := suite.createOrder(ctx, uow.OrderRepository(), now)
	suite.Require().NoError(uow.Rollback(ctx))

	_, err := suite.factory.Create().OrderRepository().Get(ctx, created.ID())
	suite.ErrorIs(err, errs.ErrObjectNotFound)

	next := suite.factory.Create()
	suite.Require().NoError(next.Begin(ctx))
	again := suite.createOrder(ctx, next.OrderRepository(), now)
	suite.Require().NoError(next.Commit(ctx))

	suite.Equal(created.Number(), again.Number(), "the discarded number is issued again")
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_RollbackAfterCommitIsHarmless() {
	ctx := context.Background()
	uow := suite.factory.Create()

	suite.Require().NoError(uow.Begin(ctx))
	created := suite.createOrder(ctx, uow.OrderRepository(), time.Now())
	suite.Require().NoError(uow.Commit(ctx))

	suite.ErrorIs(uow.Rollback(ctx), gorm.ErrInvalidTransaction)

	_, err := suite.factory.Create().OrderRepository().Get(ctx, created.ID())
	suite.NoError(err)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_SequenceCountsOnlyCommittedOrders() {
	ctx := context.Background()
	now := time.Now()

	for i := 0; i < 3; i++ {
		uow := suite.factory.Create()
		suite.Require().NoError(uow.Begin(ctx))
		suite.createOrder(ctx, uow.OrderRepository(), now)
		suite.Require().NoError(uow.Commit(ctx))
	}

	var counter orderrepo.SequenceDTO
	suite.Require().NoError(suite.db.First(&counter, "day = ?", order.DayKey(now)).Error)
	suite.Equal(3, counter.LastValue)
}

func (suite *UnitOfWorkIntegrationTestSuite) createOrder(ctx context.Context, repo ports.OrderRepository, at time.Time) *order.Order {
	number, err := repo.NextOrderNumber(ctx, at)
	suite.Require().NoError(err)
	o, err := order.NewOrder(number, nil, kernel.MustNewMoney("12.00"), "")
	suite.Require().NoError(err)
	suite.Require().NoError(repo.Add(ctx, o, at))
	return o
}

func TestUnitOfWorkIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(UnitOfWorkIntegrationTestSuite))
}
