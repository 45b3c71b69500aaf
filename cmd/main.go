package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"scalpwatch/src/database"
	"scalpwatch/src/executors"
	"scalpwatch/src/marketcache"
	"scalpwatch/src/marketdata"
	"scalpwatch/src/repository"
	"scalpwatch/src/risk"
	"scalpwatch/src/rules"
	"scalpwatch/src/screener"
	"scalpwatch/src/statefile"
	"scalpwatch/src/trader"
	"scalpwatch/src/universe"
)

func main() {
	app := cli.NewApp()
	app.Name = "Scalpwatch CMD"
	app.Usage = "The scalpwatch command line interface"

	app.Commands = []cli.Command{
		botCMD,
		marketCacheCMD,
		screenCMD,
	}

	if err := app.Run(os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var (
	botCMD = cli.Command{
		Name:        "bot",
		Usage:       "run the paper-trading bot loop",
		Action:      botAction,
		ArgsUsage:   "",
		Flags:       []cli.Flag{},
		Description: `Run the screener and paper trader without the dashboard API`,
	}
	marketCacheCMD = cli.Command{
		Name:        "marketcache",
		Usage:       "run the market cache fetcher",
		Action:      marketCacheAction,
		ArgsUsage:   "",
		Flags:       []cli.Flag{},
		Description: `Refresh the market overview cache on an interval`,
	}
	screenCMD = cli.Command{
		Name:        "screen",
		Usage:       "run one intraday scan and print the candidates",
		Action:      screenAction,
		ArgsUsage:   "",
		Flags:       []cli.Flag{},
		Description: `One-shot intraday screen over the watched universe`,
	}
)

func botAction(_ *cli.Context) error {
	logrus.Info("Starting bot CMD")

	config := executors.GetConfig()

	store, err := statefile.NewStore(config.StateDir)
	if err != nil {
		logrus.WithError(err).Error("Starting cmd")
		return err
	}

	db, err := database.Connect(database.GetConfig())
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
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
		InitialBalance: decimal.NewFromFloat(config.InitialBalance),
		Store:          store,
		Rules:          ruleStore,
		History:        tradeRepo,
	})

	market := marketdata.NewClient(marketdata.GetConfig())
	tickers := universe.Load(config.TickerDBPath)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	loop := executors.NewLoop(config, screener.New(market), paperTrader, market, risk.NewCalendar(), store, tickers)
	return loop.Start(ctx)
}

func marketCacheAction(_ *cli.Context) error {
	logrus.Info("Starting market cache CMD")

	config := executors.GetConfig()

	store, err := statefile.NewStore(config.StateDir)
	if err != nil {
		logrus.WithError(err).Error("Starting cmd")
		return err
	}

	market := marketdata.NewClient(marketdata.GetConfig())
	tickers := universe.Load(config.TickerDBPath)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	marketcache.NewFetcher(market, store, tickers).Run(ctx, 10*time.Minute)
	return nil
}

func screenAction(_ *cli.Context) error {
	logrus.Info("Starting screen CMD")

	config := executors.GetConfig()
	market := marketdata.NewClient(marketdata.GetConfig())
	tickers := universe.Load(config.TickerDBPath)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	candidates := screener.New(market).ScreenIntraday(ctx, tickers)

	out, err := json.MarshalIndent(candidates, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
