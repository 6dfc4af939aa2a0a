package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sas-esd/esdmail/libs/config"
	"github.com/sas-esd/esdmail/libs/db"
	"github.com/sas-esd/esdmail/services/esd-service/internal/dispatch"
	"github.com/sas-esd/esdmail/services/esd-service/internal/event"
	"github.com/sas-esd/esdmail/services/esd-service/internal/model"
	"github.com/sas-esd/esdmail/services/esd-service/internal/outbox"
	"github.com/sas-esd/esdmail/services/esd-service/internal/platform"
)

type serialFlags []string

func (s *serialFlags) String() string     { return strings.Join(*s, ",") }
func (s *serialFlags) Set(v string) error { *s = append(*s, v); return nil }

func main() {
	var serials serialFlags
	var (
		envFile     = flag.String("env-file", ".env", "env file to load")
		orderNumber = flag.String("order-number", "10001", "order number")
		email       = flag.String("email", config.String("SIM_EMAIL", "customer@example.com"), "customer email")
		firstName   = flag.String("first-name", "Jane", "customer first name")
		lastName    = flag.String("last-name", "Doe", "customer last name")
		languageID  = flag.String("language-id", platform.LanguageSystem, "context language id (hex)")
		salesChan   = flag.String("sales-channel-id", "", "sales channel id")
	)
	flag.Var(&serials, "serial", "product=serial pair, repeatable")
	flag.Parse()

	if err := config.LoadDotEnv(*envFile); err != nil {
		fatal(err.Error())
	}
	dbURL, err := config.RequiredString("DATABASE_URL")
	if err != nil {
		fatal(err.Error())
	}
	if len(serials) == 0 {
		serials = serialFlags{"ESD Product=XXXX-YYYY-ZZZZ"}
	}
	entries, err := parseSerials(serials)
	if err != nil {
		fatal(err.Error())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := db.Open(ctx, dbURL)
	if err != nil {
		fatal(err.Error())
	}
	defer pool.Close()

	evtCtx := platform.DefaultContext()
	evtCtx.LanguageID = *languageID
	order := model.Order{
		ID:             uuid.NewString(),
		OrderNumber:    *orderNumber,
		SalesChannelID: *salesChan,
		OrderDate:      time.Now().UTC(),
		OrderCustomer:  &model.OrderCustomer{Email: *email, FirstName: *firstName, LastName: *lastName},
	}
	evt := event.NewSerialPaymentStatusPaid(evtCtx, order, map[string]any{"esdSerials": entries})

	tx, err := pool.Begin(ctx)
	if err != nil {
		fatal(err.Error())
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := dispatch.NewRecorder(outbox.NewRepository(pool)).Record(ctx, tx, evt); err != nil {
		fatal(err.Error())
	}
	if err := tx.Commit(ctx); err != nil {
		fatal(err.Error())
	}
	fmt.Printf("recorded %s for order %s (%d serials)\n", evt.Name(), order.OrderNumber, len(entries))
}

func parseSerials(raw []string) ([]map[string]any, error) {
	out := make([]map[string]any, 0, len(raw))
	for _, pair := range raw {
		product, serial, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(product) == "" || strings.TrimSpace(serial) == "" {
			return nil, fmt.Errorf("invalid --serial %q, want product=serial", pair)
		}
		out = append(out, map[string]any{
			"productName": strings.TrimSpace(product),
			"serial":      strings.TrimSpace(serial),
		})
	}
	return out, nil
}

func fatal(msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}
