package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	kitchenhttp "kitchenpos/internal/adapters/in/http"
	"kitchenpos/internal/adapters/out/broadcast"
	"kitchenpos/internal/adapters/out/postgres"
	"kitchenpos/internal/adapters/out/postgres/orderrepo"
	"kitchenpos/internal/adapters/out/realtime"
	"kitchenpos/internal/adapters/out/relay"
	"kitchenpos/internal/core/application/usecases/commands"
	"kitchenpos/internal/core/application/usecases/queries"
	"kitchenpos/internal/core/domain/services"
	"kitchenpos/internal/jobs"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"gorm.io/gorm"
)

type CompositionRoot struct {
	cfg    Config
	logger *slog.Logger

	gormDB     *gorm.DB
	uowFactory *postgres.GormUnitOfWorkFactory
	policy     services.StatusPolicy

	registry    *prometheus.Registry
	hub         *realtime.Hub
	broadcaster *broadcast.Broadcaster

	// closers release relay resources after the broadcaster has drained.
	closers []func() error
}

func NewCompositionRoot(cfg Config, gormDB *gorm.DB, logger *slog.Logger) (*CompositionRoot, error) {
	policy, err := services.NewStatusPolicy(cfg.OrderStatusPolicy)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	c := &CompositionRoot{
		cfg:        cfg,
		logger:     logger,
		gormDB:     gormDB,
		uowFactory: postgres.NewGormUnitOfWorkFactory(gormDB, cfg.DBQueryTimeout),
		policy:     policy,
		registry:   registry,
		hub:        realtime.NewHub(logger, realtime.Options{ClientBuffer: cfg.WSClientBuffer}),
	}

	sinks := []broadcast.Sink{c.hub}
	relays, err := c.createRelays()
	if err != nil {
		_ = c.closeRelays()
		return nil, err
	}
	sinks = append(sinks, relays...)

	c.broadcaster = broadcast.NewBroadcaster(
		logger,
		broadcast.NewMetrics(registry),
		broadcast.Options{QueueSize: cfg.BroadcastQueueSize},
		sinks...,
	)
	return c, nil
}

// createRelays connects the optional broker relays. A relay without a
// configured address is skipped.
func (c *CompositionRoot) createRelays() ([]broadcast.Sink, error) {
	var sinks []broadcast.Sink

	if c.cfg.AMQPURL != "" {
		conn, err := relay.DialAMQP(c.cfg.AMQPURL)
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, conn.Close)

		amqpRelay, err := relay.NewAMQPRelay(conn.Channel, c.cfg.AMQPExchange, c.logger)
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, amqpRelay.Close)
		sinks = append(sinks, amqpRelay)
	}

	if c.cfg.KafkaHost != "" {
		kafkaRelay := relay.NewKafkaRelay(relay.NewKafkaWriter(c.cfg.KafkaHost, c.cfg.KafkaOrderChangedTopic), c.logger)
		c.closers = append(c.closers, kafkaRelay.Close)
		sinks = append(sinks, kafkaRelay)
	}

	return sinks, nil
}

func (c *CompositionRoot) orderUoWFactory() commands.OrderUoWFactory {
	return FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) orderReader() *orderrepo.GormOrderRepository {
	return orderrepo.NewGormOrderRepository(c.gormDB, c.cfg.DBQueryTimeout)
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler() commands.CreateOrderCommandHandler {
	return commands.NewCreateOrderCommandHandler(c.orderUoWFactory(), c.broadcaster, nil)
}

func (c *CompositionRoot) CreateChangeOrderStatusCommandHandler() commands.ChangeOrderStatusCommandHandler {
	return commands.NewChangeOrderStatusCommandHandler(c.orderUoWFactory(), c.broadcaster, c.policy, nil)
}

func (c *CompositionRoot) CreateGetAllOrdersQueryHandler() queries.GetAllOrdersQueryHandler {
	return queries.NewGetAllOrdersQueryHandler(c.orderReader())
}

func (c *CompositionRoot) CreateGetActiveOrdersQueryHandler() queries.GetActiveOrdersQueryHandler {
	return queries.NewGetActiveOrdersQueryHandler(c.orderReader())
}

func (c *CompositionRoot) CreateGetOrderQueryHandler() queries.GetOrderQueryHandler {
	return queries.NewGetOrderQueryHandler(c.orderReader())
}

func (c *CompositionRoot) CreateServer() *kitchenhttp.Server {
	return kitchenhttp.NewServer(
		c.CreateCreateOrderCommandHandler(),
		c.CreateChangeOrderStatusCommandHandler(),
		c.CreateGetAllOrdersQueryHandler(),
		c.CreateGetActiveOrdersQueryHandler(),
		c.CreateGetOrderQueryHandler(),
		commands.CreateOrderOptions{RequireItems: c.cfg.OrderRequireItems},
		c.logger,
	)
}

func (c *CompositionRoot) CreateRouter() (*echo.Echo, error) {
	return kitchenhttp.NewRouter(kitchenhttp.RouterConfig{
		Server:   c.CreateServer(),
		Realtime: c.hub.Handle,
		Metrics:  kitchenhttp.NewServerMetrics(c.registry),
		Gatherer: c.registry,
		Logger:   c.logger,
	})
}

func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	return jobs.NewJobManager(
		orderrepo.NewGormSequenceRepository(c.gormDB, c.cfg.DBQueryTimeout),
		c.cfg.SequenceRetentionDays,
		c.logger,
	)
}

// Close drains pending events, then disconnects realtime clients and relays.
// The database is left to the caller.
func (c *CompositionRoot) Close(ctx context.Context) error {
	var err error
	if c.broadcaster != nil {
		if closeErr := c.broadcaster.Close(ctx); closeErr != nil {
			err = fmt.Errorf("broadcaster: %w", closeErr)
		}
	}
	c.hub.Close()
	return errors.Join(err, c.closeRelays())
}

func (c *CompositionRoot) closeRelays() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}
