package main

import (
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	ethcommon "github.com/ethereum/go-ethereum/common"
	log "github.com/sirupsen/logrus"

	"github.com/factorline/receivables-registry/app"
	"github.com/factorline/receivables-registry/bank"
	"github.com/factorline/receivables-registry/registry"
	"github.com/factorline/receivables-registry/token"
	"github.com/factorline/receivables-registry/vault"
)

func main() {

	log.SetFormatter(&log.TextFormatter{
		FullTimestamp: true,
	})

	var configFile string
	if len(os.Args) > 1 {
		configFile, _ = filepath.Abs(os.Args[1])
	}
	var envFile string
	if len(os.Args) > 2 {
		envFile, _ = filepath.Abs(os.Args[2])
	}

	app.InitConfig(configFile, envFile)
	app.InitLogger()
	app.InitDB()

	authorizer, err := app.GetAuthorizerAddress()
	if err != nil {
		log.Fatal("[MAIN] Error resolving authorizer address: ", err)
	}
	log.Info("[MAIN] Authorizer address: ", authorizer.Hex())

	registryAddress := ethcommon.HexToAddress(app.Config.Registry.Address)
	sink := app.NewMongoEventSink()

	bk := bank.New()
	ledger := token.NewLedger(
		registryAddress,
		app.Config.Registry.ChainId,
		ethcommon.HexToAddress(app.Config.Registry.TokenAddress),
		sink,
	)
	custody := vault.New(
		ethcommon.HexToAddress(app.Config.Registry.VaultAddress),
		registryAddress,
		bk,
		sink,
	)

	core := registry.New(registry.Config{
		Address: registryAddress,
		Admin:   ethcommon.HexToAddress(app.Config.Registry.Admin),
	}, bk, custody, ledger, app.NewMongoStore(), sink)

	// restore under an exclusive lock so two instances cannot interleave a
	// load with each other's writes
	lockId, err := app.DB.XLock("registry-state")
	if err != nil {
		log.Fatal("[MAIN] Error locking registry state: ", err)
	}
	invoices, batches, err := app.LoadState()
	if err != nil {
		log.Fatal("[MAIN] Error loading registry state: ", err)
	}
	core.Restore(invoices, batches)
	if err := app.DB.Unlock(lockId); err != nil {
		log.Warn("[MAIN] Error unlocking registry state: ", err)
	}
	log.Infof("[MAIN] Restored %d invoices and %d batches", len(invoices), len(batches))

	healthcheck := app.NewHealthCheck(registryAddress.Hex(), authorizer.Hex(), core.Paused)
	go healthcheck.Start()

	// Gracefully shut down server
	gracefulStop := make(chan os.Signal, 1)
	done := make(chan bool, 1)
	signal.Notify(gracefulStop, syscall.SIGINT, syscall.SIGTERM)
	go waitForExitSignals(gracefulStop, done)
	<-done

	log.Debug("[MAIN] Gracefully shutting down server...")
	healthcheck.Stop()
	app.DB.Disconnect()
	log.Debug("[MAIN] Server gracefully stopped")
}

func waitForExitSignals(gracefulStop chan os.Signal, done chan bool) {
	sig := <-gracefulStop
	log.Debug("[MAIN] Got signal: ", sig)
	done <- true
}
