package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	logger "github.com/sirupsen/logrus"
	"github.com/shopspring/decimal"

	"scalpwatch/src/database"
	"scalpwatch/src/executors"
	"scalpwatch/src/handler"
	"scalpwatch/src/marketcache"
	"scalpwatch/src/marketdata"
	"scalpwatch/src/repository"
	"scalpwatch/src/risk"
	"scalpwatch/src/rules"
	"scalpwatch/src/screener"
	"scalpwatch/src/server"
	"scalpwatch/src/statefile"
	"scalpwatch/src/trader"
	"scalpwatch/src/universe"
)

var APP_NAME = os.Getenv("APP_NAME")

func SetupLogger() {
	levelStr := strings.ToLower(os.Getenv("LOG_LEVEL"))

	level, err := logger.ParseLevel(levelStr)
	if err != nil {
		level = logger.DebugLevel
	}

	logger.SetLevel(level)
	logger.SetFormatter(&logger.TextFormatter{
		FullTimestamp: true,
	})
}

// main runs the whole stack in one process: the scan loop, the market
// cache fetcher and the dashboard API share a single trader instance.
func main() {
	SetupLogger()
	defer handlePanic()

	botConfig := executors.GetConfig()

	store, err := statefile.NewStore(botConfig.StateDir)
	if err != nil {
		logger.WithError(err).Fatal("Failed to prepare state directory")
	}

	db, err := database.Connect(database.GetConfig())
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	tradeRepo := repository.NewTradeHistoryRepository(db)

	ruleStore := rules.NewStore(func(f rules.File) error {
		return store.Write(rules.FileName, f)
	})
	var ruleFile rules.File
	if err := store.Read(rules.FileName, &ruleFile); err == nil {
		ruleStore.Load(ruleFile)
	}

	paperTrader := trader.New(trader.Options{
		InitialBalance: decimal.NewFromFloat(botConfig.InitialBalance),
		Store:          store,
		Rules:          ruleStore,
		History:        tradeRepo,
	})

	market := marketdata.NewClient(marketdata.GetConfig())
	scr := screener.New(market)
	tickers := universe.Load(botConfig.TickerDBPath)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	loop := executors.NewLoop(botConfig, scr, paperTrader, market, risk.NewCalendar(), store, tickers)
	go func() {
		if err := loop.Start(ctx); err != nil {
			logger.WithError(err).Error("bot loop exited")
		}
	}()

	go marketcache.NewFetcher(market, store, tickers).Run(ctx, 0)

	router := handler.NewRouter(handler.Deps{
		Store:    store,
		Trader:   paperTrader,
		Trades:   tradeRepo,
		Rules:    ruleStore,
		Screener: scr,
		Market:   market,
		Tickers:  tickers,
	})

	server.StartServer(server.GetConfig().Port, router)
}

func handlePanic() {
	if r := recover(); r != nil {
		logger.WithError(fmt.Errorf("%+v", r)).Error(fmt.Sprintf("Application %s panic", APP_NAME))
	}
	//nolint
	time.Sleep(time.Second * 5)
}
