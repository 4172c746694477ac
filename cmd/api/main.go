package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	logger "github.com/sirupsen/logrus"

	"atoiota/internal/advisory"
	"atoiota/internal/handlers"
	"atoiota/internal/ledger"
	"atoiota/internal/portfolio"
	"atoiota/internal/routes"
	"atoiota/internal/ws"
	"atoiota/pkg/config"
	"atoiota/pkg/evm"
	"atoiota/pkg/tokens"
)

func main() {
	appCfg, err := config.LoadApp(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}
	gin.SetMode(appCfg.Server.Mode)

	// Initialize database
	config.InitDB()
	if os.Getenv("DB_HOST") != "" && os.Getenv("RUN_MIGRATIONS") == "true" {
		config.ExecuteMigrations()
	}

	// Initialize RabbitMQ (optional, will log warning if not configured)
	if os.Getenv("RABBITMQ_HOST") != "" {
		config.InitRabbitMQ()
		defer func() {
			if config.RabbitMQ != nil {
				config.RabbitMQ.Close()
			}
		}()
		log.Println("RabbitMQ initialized successfully")
	} else {
		log.Println("RabbitMQ not configured, skipping initialization")
	}

	// Chain writer: real endpoint or in-process simulator.
	chain, signerAddr := buildChainWriter(appCfg)

	store := portfolio.NewStore(config.DB)
	led := ledger.New(config.DB)
	hub := ws.NewHub()

	pipeline := portfolio.NewPipeline(store, led, chain).WithNotifier(hub)
	if config.RabbitMQ != nil {
		pub, err := config.NewPublisher()
		if err != nil {
			log.Fatal("Failed to create publisher:", err)
		}
		defer pub.Close()
		pipeline = pipeline.WithPublisher(pub)
	}

	// Advisory suggestions also arrive over the broker.
	if config.RabbitMQ != nil {
		consumer, err := config.NewConsumer(config.AdvisoryQueue)
		if err != nil {
			log.Fatal("Failed to create advisory consumer:", err)
		}
		defer consumer.Close()

		go func() {
			err := consumer.Consume(func(msg []byte) error {
				var suggestion advisory.Suggestion
				if err := json.Unmarshal(msg, &suggestion); err != nil {
					logger.Errorf("Failed to unmarshal suggestion: %v", err)
					return err
				}
				if _, err := advisory.ApplyToStore(store, suggestion); err != nil {
					logger.Warnf("Rejected advisory suggestion: %v", err)
					// Bad suggestions are dropped, not requeued.
					return nil
				}
				logger.Infof("Applied advisory suggestion: %s", suggestion.Description)
				return nil
			})
			if err != nil {
				logger.Errorf("Advisory consumer stopped: %v", err)
			}
		}()
	}

	var insights *advisory.InsightClient
	if appCfg.Advisory.GeminiAPIKey != "" {
		insights, err = advisory.NewInsightClient(context.Background(), appCfg.Advisory.GeminiAPIKey)
		if err != nil {
			log.Println("Insights disabled:", err)
			insights = nil
		}
	}

	// Set up router
	r := routes.SetupRouter(routes.Handlers{
		Auth: &handlers.AuthHandler{
			JWTSecret: appCfg.JWT.Secret,
			TokenTTL:  time.Duration(appCfg.JWT.ExpireHours) * time.Hour,
		},
		Allocation: &handlers.AllocationHandler{Store: store, Pipeline: pipeline},
		Transaction: &handlers.TransactionHandler{
			Ledger:       led,
			ExplorerBase: appCfg.Chain.ExplorerBase,
		},
		Advisory: &handlers.AdvisoryHandler{Store: store, Insights: insights},
		Token:    &handlers.TokenHandler{Client: tokens.NewClient(appCfg.Tokens.CoingeckoURL)},
		Hub:      hub,
		JWTSecret: appCfg.JWT.Secret,
	})

	log.Printf("Chain signer: %s", signerAddr)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = appCfg.Server.Port
	}

	if err := r.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

func buildChainWriter(appCfg *config.AppConfig) (evm.Writer, string) {
	if appCfg.Chain.Simulate || appCfg.Chain.RPCURL == "" {
		owner := appCfg.Chain.SimulateOwner
		delay := time.Duration(appCfg.Chain.SimulateDelayMs) * time.Millisecond
		log.Println("Chain writes are simulated")
		return evm.NewSimulator(owner, delay), owner
	}

	client, err := evm.Dial(
		context.Background(),
		appCfg.Chain.RPCURL,
		appCfg.Chain.ContractAddress,
		appCfg.Chain.PrivateKey,
		time.Duration(appCfg.Chain.ConfirmTimeoutSec)*time.Second,
	)
	if err != nil {
		log.Fatal("Failed to connect to chain:", err)
	}
	return client, client.SignerAddress()
}
