// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"

	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/lockstake/api"
	"github.com/vechain/lockstake/cmd/lockstake/httpserver"
	"github.com/vechain/lockstake/log"
	"github.com/vechain/lockstake/logdb"
	"github.com/vechain/lockstake/lvldb"
	"github.com/vechain/lockstake/metrics"
)

var (
	version   string
	gitCommit string
	gitTag    string
	logger    = log.WithContext("pkg", "lockstake")
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "Lockstake",
		Usage:     "Node of the time-locked staking ledger",
		Copyright: "2026 VeChain Foundation <https://vechain.org/>",
		Flags: []cli.Flag{
			dataDirFlag,
			genesisFlag,
			devFlag,
			persistFlag,
			apiAddrFlag,
			apiCorsFlag,
			apiTimeoutFlag,
			apiBacktraceLimitFlag,
			apiLogsLimitFlag,
			apiSlowQueriesThresholdFlag,
			apiLog5xxErrorsFlag,
			apiPprofFlag,
			enableAPILogsFlag,
			skipLogsFlag,
			verbosityFlag,
			verbosityStakingFlag,
			jsonLogsFlag,
			enableMetricsFlag,
			metricsAddrFlag,
			enableAdminFlag,
			adminAddrFlag,
			skipNTPFlag,
		},
		Action: defaultAction,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultAction(ctx *cli.Context) error {
	exitSignal := handleExitSignal()
	defer func() { logger.Info("exited") }()

	logLevel, pkgLevels := initLogger(ctx)

	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
	}

	gene := selectGenesis(ctx)
	isDev := ctx.Bool(devFlag.Name)

	var (
		mainDB  *lvldb.LevelDB
		logDB   *logdb.LogDB
		dataDir string
	)
	if !isDev || ctx.Bool(persistFlag.Name) {
		dataDir = makeInstanceDir(ctx, gene)
		mainDB = openMainDB(dataDir)
		if !ctx.Bool(skipLogsFlag.Name) {
			logDB = openLogDB(dataDir)
		}
	} else {
		dataDir = "Memory"
		mainDB = openMemMainDB()
		if !ctx.Bool(skipLogsFlag.Name) {
			logDB = openMemLogDB()
		}
	}
	defer func() { logger.Info("closing main database..."); mainDB.Close() }()
	if logDB != nil {
		defer func() { logger.Info("closing log database..."); logDB.Close() }()
	}

	if !ctx.Bool(skipNTPFlag.Name) {
		go checkClockOffset()
	}

	rt := initRuntime(gene, mainDB, logDB)

	apiLogs := &atomic.Bool{}
	apiLogs.Store(ctx.Bool(enableAPILogsFlag.Name))

	apiHandler, apiCloser := api.New(rt, api.Options{
		AllowedOrigins:       ctx.String(apiCorsFlag.Name),
		BacktraceLimit:       uint32(ctx.Uint64(apiBacktraceLimitFlag.Name)),
		PprofOn:              ctx.Bool(apiPprofFlag.Name),
		SkipLogs:             logDB == nil,
		EnableReqLogger:      apiLogs,
		SlowQueriesThreshold: time.Duration(ctx.Uint64(apiSlowQueriesThresholdFlag.Name)) * time.Millisecond,
		Log5xxErrors:         ctx.Bool(apiLog5xxErrorsFlag.Name),
		EnableMetrics:        ctx.Bool(enableMetricsFlag.Name),
		LogsLimit:            ctx.Uint64(apiLogsLimitFlag.Name),
		EnableMint:           isDev,
		NetworkName:          gene.Name(),
		Version:              fullVersion(),
	})
	defer func() { logger.Info("closing API..."); apiCloser() }()

	apiURL, srvCloser, err := startAPIServer(ctx, apiHandler, gene.ID())
	if err != nil {
		return err
	}
	defer func() { logger.Info("stopping API server..."); srvCloser() }()

	var metricsURL string
	if ctx.Bool(enableMetricsFlag.Name) {
		url, closeFunc, err := httpserver.StartMetricsServer(ctx.String(metricsAddrFlag.Name))
		if err != nil {
			return fmt.Errorf("unable to start metrics server - %w", err)
		}
		metricsURL = url
		defer func() { logger.Info("stopping metrics server..."); closeFunc() }()
	}

	var adminURL string
	if ctx.Bool(enableAdminFlag.Name) {
		url, closeFunc, err := httpserver.StartAdminServer(ctx.String(adminAddrFlag.Name), logLevel, pkgLevels, apiLogs)
		if err != nil {
			return fmt.Errorf("unable to start admin server - %w", err)
		}
		adminURL = url
		defer func() { logger.Info("stopping admin server..."); closeFunc() }()
	}

	printStartupMessage(gene, rt, dataDir, apiURL, metricsURL, adminURL)
	if isDev {
		printDevAccounts()
	}

	<-exitSignal.Done()
	return nil
}
