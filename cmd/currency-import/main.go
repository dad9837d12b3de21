// cmd/currency-import/main.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	app "family-ledger/internal"
	"family-ledger/internal/amqp"
	"family-ledger/internal/domain"
)

// currency-import keeps the currency reference filled.
//
//	currency-import -seed               ensure the default currency exists, then exit
//	currency-import -file rows.json     import a JSON array of rows, then exit
//	currency-import -publish rows.json  publish a JSON array of rows to the feed queue
//	currency-import                     consume the feed queue until interrupted
func main() {
	seed := flag.Bool("seed", false, "create the default currency and exit")
	file := flag.String("file", "", "import currency rows from a JSON file and exit")
	publish := flag.String("publish", "", "publish currency rows from a JSON file to the feed queue and exit")
	source := flag.String("source", "manual", "source name recorded on published feed messages")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application := app.NewApplication()
	if err := application.Initialize(ctx); err != nil {
		application.Logger.Error("Failed to initialize application", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = application.Shutdown(shutdownCtx)
	}()

	if err := run(ctx, application, *seed, *file, *publish, *source); err != nil && ctx.Err() == nil {
		application.Logger.Error("Currency import failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, application *app.Application, seed bool, file, publish, source string) error {
	logger := application.Logger

	switch {
	case seed:
		currency, err := application.CurrencyService.DefaultCurrency(ctx)
		if err != nil {
			return err
		}
		logger.Info("Default currency ready", "alpha_code", currency.AlphaCode, "id", currency.ID)
		return nil

	case file != "":
		rows, err := readRows(file)
		if err != nil {
			return err
		}
		inserted, err := application.CurrencyService.BulkImport(ctx, rows)
		if err != nil {
			return err
		}
		logger.Info("Currency file imported", "file", file, "rows", len(rows), "inserted", inserted)
		return nil
	}

	cfg := application.Config.AMQP
	client, err := amqp.NewClient(cfg.URL, cfg.Exchange, cfg.Queue)
	if err != nil {
		return err
	}
	defer client.Close()

	if publish != "" {
		rows, err := readRows(publish)
		if err != nil {
			return err
		}
		return client.PublishCurrencyFeed(ctx, amqp.NewCurrencyFeedMessage(source, rows))
	}

	return client.ConsumeCurrencyFeed(ctx, func(ctx context.Context, msg *amqp.CurrencyFeedMessage) error {
		_, err := application.CurrencyService.BulkImport(ctx, msg.Currencies)
		return err
	})
}

func readRows(path string) ([]domain.CurrencyRow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var rows []domain.CurrencyRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return rows, nil
}
