// Command migrate moves a user's records from a legacy account to the
// account they now sign in with, e.g. after switching identity provider.
//
//	migrate -from <legacy uid> -to <new uid>
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/GregMSThompson/patient-payments/internal/bootstrap"
	"github.com/GregMSThompson/patient-payments/internal/config"
	"github.com/GregMSThompson/patient-payments/internal/services"
	"github.com/GregMSThompson/patient-payments/pkg/logger"
)

func exitOnError(message string, err error, log *slog.Logger) {
	if err != nil {
		log.Error(message, "error", err)
		os.Exit(1)
	}
}

func main() {
	from := flag.String("from", "", "legacy uid whose records are moved")
	to := flag.String("to", "", "uid that receives the records")
	flag.Parse()

	// bootstrap
	cfg := config.New()
	bs, err := bootstrap.RunStorage(cfg)
	exitOnError("bootstrap failed", err, bs.Log)
	defer bs.Close()

	// services
	userv := services.NewUserService(bs.Stores.Users)

	ctx := logger.ToContext(context.Background(), bs.Log)
	err = userv.MigrateUser(ctx, *from, *to)
	exitOnError("migration failed", err, bs.Log)
}
