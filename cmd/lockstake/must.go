// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	goruntime "runtime"
	"time"

	"github.com/beevik/ntp"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/fdlimit"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/lockstake/api/admin/loglevel"
	"github.com/vechain/lockstake/builtin"
	"github.com/vechain/lockstake/co"
	"github.com/vechain/lockstake/genesis"
	"github.com/vechain/lockstake/log"
	"github.com/vechain/lockstake/logdb"
	"github.com/vechain/lockstake/lvldb"
	"github.com/vechain/lockstake/runtime"
	"github.com/vechain/lockstake/state"
	"github.com/vechain/lockstake/thor"
)

// clock offsets above this are reported, since expiry is judged against wall time.
const maxClockOffset = 5 * time.Second

func initLogger(ctx *cli.Context) (*slog.LevelVar, *loglevel.LogLevel) {
	logLevel := new(slog.LevelVar)
	logLevel.Set(log.FromLegacyLevel(ctx.Int(verbosityFlag.Name)))

	var inner slog.Handler
	if ctx.Bool(jsonLogsFlag.Name) {
		inner = log.NewJSONHandler(os.Stdout, log.LevelTrace)
	} else {
		useColor := (isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())) && os.Getenv("TERM") != "dumb"
		inner = log.NewTerminalHandler(os.Stdout, log.LevelTrace, useColor)
	}
	handler := log.NewLevelHandler(inner, logLevel)
	log.SetDefault(log.NewLogger(handler))

	stakingLevel := new(slog.LevelVar)
	stakingLevel.Set(log.FromLegacyLevel(ctx.Int(verbosityStakingFlag.Name)))
	handler.SetPackageLevel("staking", stakingLevel)

	pkgLevels := loglevel.New(logLevel, handler)
	pkgLevels.Track("staking", stakingLevel)
	return logLevel, pkgLevels
}

func selectGenesis(ctx *cli.Context) *genesis.Genesis {
	if ctx.Bool(devFlag.Name) {
		return genesis.NewDevnet()
	}

	path := ctx.String(genesisFlag.Name)
	if path == "" {
		cli.ShowAppHelp(ctx)
		fmt.Println("either --genesis or --dev must be specified")
		os.Exit(1)
	}
	cfg, err := genesis.LoadConfig(path)
	if err != nil {
		fatal(fmt.Sprintf("load genesis file [%v]: %v", path, err))
	}
	gene, err := genesis.NewCustom(cfg)
	if err != nil {
		fatal(fmt.Sprintf("build genesis: %v", err))
	}
	return gene
}

func makeDataDir(ctx *cli.Context) string {
	dataDir := ctx.String(dataDirFlag.Name)
	if dataDir == "" {
		fatal(fmt.Sprintf("unable to infer default data dir, use -%s to specify", dataDirFlag.Name))
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		fatal(fmt.Sprintf("create data dir [%v]: %v", dataDir, err))
	}
	return dataDir
}

func makeInstanceDir(ctx *cli.Context, gene *genesis.Genesis) string {
	dataDir := makeDataDir(ctx)

	instanceDir := filepath.Join(dataDir, fmt.Sprintf("instance-%x", gene.ID().Bytes()[24:]))
	if err := os.MkdirAll(instanceDir, 0o700); err != nil {
		fatal(fmt.Sprintf("create instance dir [%v]: %v", instanceDir, err))
	}
	return instanceDir
}

func suggestFDCache() int {
	limit, err := fdlimit.Current()
	if err != nil {
		fatal("failed to get fd limit:", err)
	}
	if limit <= 1024 {
		logger.Warn("low fd limit, increase it if possible", "limit", limit)
	}

	n := limit / 2
	return min(n, 5120)
}

func openMainDB(instanceDir string) *lvldb.LevelDB {
	fdCache := suggestFDCache()
	logger.Debug("fd cache", "n", fdCache)

	dir := filepath.Join(instanceDir, "main.db")
	db, err := lvldb.New(dir, lvldb.Options{
		CacheSize:              128,
		OpenFilesCacheCapacity: fdCache,
	})
	if err != nil {
		fatal(fmt.Sprintf("open main database [%v]: %v", dir, err))
	}
	return db
}

func openLogDB(instanceDir string) *logdb.LogDB {
	dir := filepath.Join(instanceDir, "logs.db")
	db, err := logdb.New(dir)
	if err != nil {
		fatal(fmt.Sprintf("open log database [%v]: %v", dir, err))
	}
	return db
}

func openMemMainDB() *lvldb.LevelDB {
	db, err := lvldb.NewMem()
	if err != nil {
		fatal(fmt.Sprintf("open main database: %v", err))
	}
	return db
}

func openMemLogDB() *logdb.LogDB {
	db, err := logdb.NewMem()
	if err != nil {
		fatal(fmt.Sprintf("open log database: %v", err))
	}
	return db
}

// initRuntime opens the runtime over the stores and applies the genesis when they are empty.
// logDB may be nil.
func initRuntime(gene *genesis.Genesis, mainDB *lvldb.LevelDB, logDB *logdb.LogDB) *runtime.Runtime {
	rt, err := runtime.New(state.NewStater(mainDB), logDB, nil)
	if err != nil {
		fatal("initialize runtime:", err)
	}
	if err := gene.Build(rt); err != nil {
		fatal("build genesis:", err)
	}
	return rt
}

func checkClockOffset() {
	resp, err := ntp.Query("pool.ntp.org")
	if err != nil {
		logger.Debug("failed to access NTP", "err", err)
		return
	}
	offset := resp.ClockOffset
	if offset < 0 {
		offset = -offset
	}
	if offset > maxClockOffset {
		logger.Warn("clock offset detected, position expiry follows the local clock", "offset", common.PrettyDuration(resp.ClockOffset))
	}
}

func startAPIServer(ctx *cli.Context, handler http.Handler, genesisID thor.Bytes32) (string, func(), error) {
	addr := ctx.String(apiAddrFlag.Name)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, errors.Wrapf(err, "listen API addr [%v]", addr)
	}
	timeout := ctx.Int(apiTimeoutFlag.Name)
	if timeout > 0 {
		handler = handleAPITimeout(handler, time.Duration(timeout)*time.Millisecond)
	}
	handler = handleXGenesisID(handler, genesisID)
	handler = handleXVersion(handler)
	handler = requestBodyLimit(handler)
	srv := &http.Server{Handler: handler, ReadHeaderTimeout: time.Second, ReadTimeout: 5 * time.Second}
	var goes co.Goes
	goes.Go(func() {
		srv.Serve(listener)
	})
	return "http://" + listener.Addr().String() + "/", func() {
		srv.Close()
		goes.Wait()
	}, nil
}

func printStartupMessage(
	gene *genesis.Genesis,
	rt *runtime.Runtime,
	dataDir string,
	apiURL string,
	metricsURL string,
	adminURL string,
) {
	head, err := rt.Head()
	if err != nil {
		fatal("read head:", err)
	}

	fmt.Printf(`Starting %v
    Network      [ %v %v ]
    Head block   [ #%v @%v ]
    Staking      [ %v ]
    Asset        [ %v ]
    Data dir     [ %v ]
    API portal   [ %v ]
    Metrics      [ %v ]
    Admin        [ %v ]
`,
		fmt.Sprintf("Lockstake/%s/%s/%s", fullVersion(), goruntime.GOOS, goruntime.Version()),
		gene.ID(), gene.Name(),
		head.Number, time.Unix(int64(head.Time), 0),
		builtin.Staking.Address,
		builtin.Token.Address,
		dataDir,
		apiURL,
		orDisabled(metricsURL),
		orDisabled(adminURL),
	)
}

func printDevAccounts() {
	fmt.Println("    Dev accounts:")
	for _, a := range genesis.DevAccounts() {
		fmt.Printf("      %v\n", a.Address)
	}
}

func orDisabled(url string) string {
	if url == "" {
		return "disabled"
	}
	return url
}
