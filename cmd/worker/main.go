package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	logrus "github.com/sirupsen/logrus"

	"atoiota/internal/portfolio"
	"atoiota/pkg/config"
	"atoiota/pkg/evm"
)

func main() {
	// Initialize logger
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetLevel(logrus.InfoLevel)

	appCfg, err := config.LoadApp(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Initialize database
	config.InitDB()

	chain := buildChainWriter(appCfg)
	store := portfolio.NewStore(config.DB)

	reconcile := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := portfolio.Reconcile(ctx, store, chain); err != nil {
			logrus.Errorf("Reconcile failed: %v", err)
		}
	}

	// Run once at startup so a fresh deployment picks up chain state
	// immediately.
	reconcile()

	c := cron.New(cron.WithSeconds())
	_, err = c.AddFunc("0 */5 * * * *", reconcile)
	if err != nil {
		logrus.Fatalf("Failed to schedule reconcile job: %v", err)
	}

	logrus.Info("Reconcile worker started, running every 5 minutes")
	c.Start()

	// Keep the process running.
	select {}
}

func buildChainWriter(appCfg *config.AppConfig) evm.Writer {
	if appCfg.Chain.Simulate || appCfg.Chain.RPCURL == "" {
		logrus.Info("Chain reads are simulated")
		return evm.NewSimulator(appCfg.Chain.SimulateOwner,
			time.Duration(appCfg.Chain.SimulateDelayMs)*time.Millisecond)
	}

	client, err := evm.Dial(
		context.Background(),
		appCfg.Chain.RPCURL,
		appCfg.Chain.ContractAddress,
		appCfg.Chain.PrivateKey,
		time.Duration(appCfg.Chain.ConfirmTimeoutSec)*time.Second,
	)
	if err != nil {
		logrus.Fatalf("Failed to connect to chain: %v", err)
	}
	return client
}
