package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	cli "github.com/urfave/cli/v3"

	"github.com/flowdeck/flowdeck/pkg/cmd"
	"github.com/flowdeck/flowdeck/pkg/log"
	"github.com/flowdeck/flowdeck/pkg/otelhelper"
	"github.com/flowdeck/flowdeck/pkg/producers/prompt"
	"github.com/flowdeck/flowdeck/pkg/session"
)

const defaultPort = 8085

func main() {
	logger := log.WithModule("api")

	command := &cli.Command{
		Name:                  "flowdeck-api",
		Usage:                 "Serve canvas sessions over HTTP",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus provider (memory, kafka)",
				Value:   "memory",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:    "redis-url",
				Usage:   "Redis URL for the fetch output cache (empty disables caching)",
				Sources: cli.EnvVars("REDIS_URL"),
			},
			&cli.StringFlag{
				Name:    "llm-base-url",
				Usage:   "Base URL of an OpenAI-compatible server for prompt nodes",
				Sources: cli.EnvVars("LLM_BASE_URL"),
			},
			&cli.StringFlag{
				Name:    "llm-api-key",
				Usage:   "API key for the LLM server",
				Sources: cli.EnvVars("LLM_API_KEY", "OPENAI_API_KEY"),
			},
			&cli.StringFlag{
				Name:    "llm-model",
				Usage:   "Default model for prompt nodes",
				Value:   "gpt-4o-mini",
				Sources: cli.EnvVars("LLM_MODEL"),
			},
			&cli.BoolFlag{
				Name:    "tracing",
				Usage:   "Enable OpenTelemetry tracing",
				Sources: cli.EnvVars("TRACING_ENABLED"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			logger.InfoContext(ctx, "Initializing FlowDeck API")

			if command.Bool("tracing") {
				tracerProvider, err := otelhelper.InitTracer(ctx, "flowdeck-api")
				if err != nil {
					return fmt.Errorf("failed to initialize tracer: %w", err)
				}

				defer func() {
					if err := tracerProvider.Shutdown(ctx); err != nil {
						logger.ErrorContext(ctx, "Failed to shutdown tracer provider", "error", err)
					}
				}()
			}

			store := cmd.NewCache(ctx, logger, command.String("redis-url"))
			registry := cmd.NewRegistry(logger, store, prompt.Config{
				BaseURL: command.String("llm-base-url"),
				APIKey:  command.String("llm-api-key"),
				Model:   command.String("llm-model"),
			})

			eventBus := cmd.NewEventBus(command.String("event-bus"), logger)
			defer func() {
				if err := eventBus.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			manager := session.NewManager(logger, eventBus, registry)
			if err := manager.Start(ctx); err != nil {
				return fmt.Errorf("failed to start session manager: %w", err)
			}

			defer manager.Stop(ctx)

			api := NewAPI(
				logger,
				manager,
				registry,
			)

			go func() {
				signals := make(chan os.Signal, 1)
				signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

				sig := <-signals
				logger.InfoContext(ctx, "Received signal, shutting down gracefully", "signal", sig)

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := api.Shutdown(shutdownCtx); err != nil {
					logger.ErrorContext(ctx, "Failed to shut down API server", "error", err)
				}
			}()

			err := api.Start(command.Int("port"))
			if err != nil {
				logger.ErrorContext(ctx, "Failed to start API server", "error", err)
			}

			return nil
		},
	}

	err := command.Run(context.Background(), os.Args)
	if err != nil {
		panic(err)
	}
}
