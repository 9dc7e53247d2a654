package cmd

import (
	"log/slog"

	"gorm.io/gorm"

	"splitship/internal/adapters/in/queue"
	"splitship/internal/adapters/out/postgres"
	"splitship/internal/adapters/out/postgres/jobqueuerepo"
	"splitship/internal/core/application/usecases/commands"
	"splitship/internal/core/application/usecases/queries"
	"splitship/internal/core/domain/services"
	"splitship/internal/core/ports"
)

type CompositionRoot struct {
	gormDB      *gorm.DB
	uowFactory  postgres.GormUnitOfWorkFactory
	gateway     ports.FulfillmentGateway
	rates       ports.RateLookup
	packOptions services.PackOptions
	logger      *slog.Logger
}

func NewCompositionRoot(
	_ Config,
	gormDB *gorm.DB,
	gateway ports.FulfillmentGateway,
	rates ports.RateLookup,
	packOptions services.PackOptions,
	logger *slog.Logger,
) CompositionRoot {
	return CompositionRoot{
		gormDB:      gormDB,
		uowFactory:  *postgres.NewGormUnitOfWorkFactory(gormDB),
		gateway:     gateway,
		rates:       rates,
		packOptions: packOptions,
		logger:      logger,
	}
}

func (c *CompositionRoot) CreateProcessOrderCreatedCommandHandler() commands.ProcessOrderCreatedCommandHandler {
	var f commands.SagaUoWFactory = FuncSagaUoWFactory(func() commands.SagaUoW {
		return c.uowFactory.Create()
	})
	return commands.NewProcessOrderCreatedCommandHandler(f, c.gateway, c.rates, c.packOptions, c.logger)
}

func (c *CompositionRoot) CreateCapturePaymentCommandHandler() commands.CapturePaymentCommandHandler {
	var f commands.SplitRequestUoWFactory = FuncSplitRequestUoWFactory(func() commands.SplitRequestUoW {
		return c.uowFactory.Create()
	})
	return commands.NewCapturePaymentCommandHandler(f, c.gateway, c.logger)
}

func (c *CompositionRoot) CreateCancelOrderCommandHandler() commands.CancelOrderCommandHandler {
	var f commands.SagaUoWFactory = FuncSagaUoWFactory(func() commands.SagaUoW {
		return c.uowFactory.Create()
	})
	return commands.NewCancelOrderCommandHandler(f, c.logger)
}

func (c *CompositionRoot) CreateResetSplitRequestCommandHandler() commands.ResetSplitRequestCommandHandler {
	var f commands.SplitRequestUoWFactory = FuncSplitRequestUoWFactory(func() commands.SplitRequestUoW {
		return c.uowFactory.Create()
	})
	return commands.NewResetSplitRequestCommandHandler(f, c.logger)
}

func (c *CompositionRoot) CreateCancelPaymentOrderCommandHandler() commands.CancelPaymentOrderCommandHandler {
	var f commands.SplitRequestUoWFactory = FuncSplitRequestUoWFactory(func() commands.SplitRequestUoW {
		return c.uowFactory.Create()
	})
	return commands.NewCancelPaymentOrderCommandHandler(f, c.gateway, c.logger)
}

func (c *CompositionRoot) CreateGetSplitRequestQueryHandler() queries.GetSplitRequestQueryHandler {
	return queries.NewGetSplitRequestQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetDeadLettersQueryHandler() queries.GetDeadLettersQueryHandler {
	return queries.NewGetDeadLettersQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateJobQueueRepository() ports.JobQueueRepository {
	return jobqueuerepo.NewGormJobQueueRepository(c.gormDB)
}

func (c *CompositionRoot) CreateDispatcher() *queue.Dispatcher {
	return queue.NewDispatcher(
		c.CreateProcessOrderCreatedCommandHandler(),
		c.CreateCapturePaymentCommandHandler(),
		c.CreateCancelOrderCommandHandler(),
		c.logger,
	)
}

type FuncSagaUoWFactory func() commands.SagaUoW

func (f FuncSagaUoWFactory) Create() commands.SagaUoW {
	return f()
}

type FuncSplitRequestUoWFactory func() commands.SplitRequestUoW

func (f FuncSplitRequestUoWFactory) Create() commands.SplitRequestUoW {
	return f()
}
