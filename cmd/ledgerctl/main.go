// Command ledgerctl is the operator tool for the host ledger: it books
// deposits arriving from outside the protocol and reads wallet balances.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"p2plending/internal/adapter/auth"
	"p2plending/internal/adapter/repository/mysql"
	"p2plending/internal/config"
	"p2plending/internal/domain/storage"
	"p2plending/internal/infrastructure/db"
	"p2plending/internal/logging"
	"p2plending/internal/usecase/escrow"
)

type wallets interface {
	Fund(ctx context.Context, owner, asset string, amount decimal.Decimal) (decimal.Decimal, error)
	WalletBalance(ctx context.Context, owner, asset string) (decimal.Decimal, error)
}

func usage() string {
	return `usage: ledgerctl <command> [flags]

commands:
  credit  -owner <id> -asset <id> -amount <int>   book an inbound deposit
  balance -owner <id> -asset <id>                 print a wallet balance`
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage())
		os.Exit(2)
	}
	svc, closeDB, err := open()
	if err != nil {
		slog.Error("ledgerctl: open", "error", err)
		os.Exit(1)
	}
	defer closeDB()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := runCommand(ctx, svc, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "ledgerctl:", err)
		os.Exit(1)
	}
}

func open() (wallets, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	log, logFile := logging.Setup(logging.Options{
		Service: "ledgerctl",
		Env:     cfg.AppEnv,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	})
	if cfg.CustodyAccount == "" {
		logFile.Close()
		return nil, nil, errors.New("CUSTODY_ACCOUNT is required")
	}
	gdb, err := db.OpenGorm(cfg.DBDriver, cfg.DSN(), cfg.DBLogLevel)
	if err != nil {
		logFile.Close()
		return nil, nil, err
	}
	if err := db.Migrate(gdb, mysql.Models()...); err != nil {
		logFile.Close()
		return nil, nil, err
	}
	tx := mysql.NewGormUoW(gdb, storage.Lifetime{Threshold: cfg.LifetimeThreshold, Bump: cfg.LifetimeBump})
	authz := auth.ContextAuthorizer{Reserved: []string{cfg.CustodyAccount}}
	svc := escrow.NewUsecase(tx, escrow.NewLedger(cfg.CustodyAccount, authz), authz, log, nil)
	return svc, func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
		logFile.Close()
	}, nil
}

func runCommand(ctx context.Context, svc wallets, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errors.New(usage())
	}
	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	owner := fs.String("owner", "", "wallet owner")
	asset := fs.String("asset", "", "asset identifier")
	amount := fs.String("amount", "", "integer amount")
	if err := fs.Parse(args[1:]); err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	if *owner == "" || *asset == "" {
		return fmt.Errorf("%s: -owner and -asset are required", args[0])
	}

	switch args[0] {
	case "credit":
		amt, err := decimal.NewFromString(*amount)
		if err != nil {
			return fmt.Errorf("credit: bad -amount %q", *amount)
		}
		bal, err := svc.Fund(ctx, *owner, *asset, amt)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "credited %s %s to %s, balance %s\n", amt, *asset, *owner, bal)
	case "balance":
		bal, err := svc.WalletBalance(ctx, *owner, *asset)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s %s %s\n", *owner, *asset, bal)
	default:
		return fmt.Errorf("unknown command %q\n%s", args[0], usage())
	}
	return nil
}
