package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/allisson/bookflow/internal/events/publisher"
	"github.com/allisson/bookflow/internal/http"
	"github.com/allisson/bookflow/internal/metrics"
	workflowHTTP "github.com/allisson/bookflow/internal/workflow/http"
	workflowRepository "github.com/allisson/bookflow/internal/workflow/repository"
	workflowUsecase "github.com/allisson/bookflow/internal/workflow/usecase"
)

// BookStore returns the book store instance.
func (c *Container) BookStore() workflowUsecase.BookStore {
	c.bookStoreInit.Do(func() {
		c.bookStore = workflowRepository.NewMemoryBookRepository()
	})
	return c.bookStore
}

// EventPublisher returns the status-change event publisher.
func (c *Container) EventPublisher(ctx context.Context) (publisher.EventPublisher, error) {
	c.publisherInit.Do(func() {
		topic, err := c.Topic(ctx)
		if err != nil {
			c.initErrors["eventPublisher"] = fmt.Errorf("failed to get topic for event publisher: %w", err)
			return
		}
		c.eventPublisher = publisher.NewEventPublisher(topic, c.config.PublishTimeout, c.Logger())
	})
	if storedErr, exists := c.initErrors["eventPublisher"]; exists {
		return nil, storedErr
	}
	return c.eventPublisher, nil
}

// WorkflowUseCase returns the workflow use case, wrapped with business metrics.
func (c *Container) WorkflowUseCase(ctx context.Context) (workflowUsecase.WorkflowUseCase, error) {
	c.workflowUseCaseInit.Do(func() {
		eventPublisher, err := c.EventPublisher(ctx)
		if err != nil {
			c.initErrors["workflowUseCase"] = fmt.Errorf("failed to get publisher for workflow use case: %w", err)
			return
		}

		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			c.initErrors["workflowUseCase"] = fmt.Errorf("failed to get metrics for workflow use case: %w", err)
			return
		}

		useCase := workflowUsecase.NewWorkflowUseCase(c.BookStore(), eventPublisher, c.Logger())
		c.workflowUseCase = workflowUsecase.NewWorkflowUseCaseWithMetrics(useCase, businessMetrics)
	})
	if storedErr, exists := c.initErrors["workflowUseCase"]; exists {
		return nil, storedErr
	}
	return c.workflowUseCase, nil
}

// BookHandler returns the book workflow HTTP handler.
func (c *Container) BookHandler(ctx context.Context) (*workflowHTTP.BookHandler, error) {
	c.bookHandlerInit.Do(func() {
		useCase, err := c.WorkflowUseCase(ctx)
		if err != nil {
			c.initErrors["bookHandler"] = fmt.Errorf("failed to get use case for book handler: %w", err)
			return
		}
		c.bookHandler = workflowHTTP.NewBookHandler(useCase, c.Logger())
	})
	if storedErr, exists := c.initErrors["bookHandler"]; exists {
		return nil, storedErr
	}
	return c.bookHandler, nil
}

// HTTPServer returns the API HTTP server instance.
func (c *Container) HTTPServer(ctx context.Context) (*http.Server, error) {
	c.httpServerInit.Do(func() {
		logger := c.Logger()

		bookHandler, err := c.BookHandler(ctx)
		if err != nil {
			c.initErrors["httpServer"] = fmt.Errorf("failed to get book handler for http server: %w", err)
			return
		}

		var middlewares []gin.HandlerFunc
		middlewares = append(middlewares, http.CORSMiddleware(
			c.config.CORSEnabled,
			c.config.CORSAllowOrigins,
			logger,
		))
		if c.config.RateLimitEnabled {
			middlewares = append(middlewares, http.RateLimitMiddleware(
				c.config.RateLimitRequestsPerSec,
				c.config.RateLimitBurst,
				logger,
			))
		}
		if provider, err := c.MetricsProvider(); err == nil && provider != nil {
			middlewares = append(middlewares, metrics.HTTPMetricsMiddleware(
				provider.MeterProvider(),
				c.config.MetricsNamespace,
			))
		}

		c.httpServer = http.NewServer(
			c.config.ServerHost,
			c.config.ServerPort,
			logger,
			bookHandler,
			middlewares...,
		)
	})
	if storedErr, exists := c.initErrors["httpServer"]; exists {
		return nil, storedErr
	}
	return c.httpServer, nil
}

// MetricsServer returns the metrics HTTP server, or nil when metrics are disabled.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	c.metricsServerInit.Do(func() {
		provider, err := c.MetricsProvider()
		if err != nil {
			c.initErrors["metricsServer"] = fmt.Errorf("failed to get metrics provider: %w", err)
			return
		}
		if provider == nil {
			return
		}
		c.metricsServer = http.NewMetricsServer(
			c.config.ServerHost,
			c.config.MetricsPort,
			c.Logger(),
			provider,
		)
	})
	if storedErr, exists := c.initErrors["metricsServer"]; exists {
		return nil, storedErr
	}
	return c.metricsServer, nil
}
