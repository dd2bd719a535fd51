package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/khatmdev/quadramall-sub001/internal/storefront"
	"github.com/khatmdev/quadramall-sub001/pkg/config"
	"github.com/khatmdev/quadramall-sub001/pkg/env"
	"github.com/khatmdev/quadramall-sub001/pkg/logger"
	"github.com/khatmdev/quadramall-sub001/pkg/money"
)

const envAccessToken = "QUADRAMALL_STOREFRONT_ACCESS_TOKEN"

func main() {
	logg := logger.New(logger.Options{ServiceName: "storefront", Level: logger.ParseLevel(env.Get("QUADRAMALL_LOG_LEVEL", "warn"))})
	_ = godotenv.Load()

	fs := flag.NewFlagSet("storefront", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: storefront [flags] <command>\n\nCommands:\n")
		fmt.Fprintf(fs.Output(), "  summary                  show the cart with every selectable item checked\n")
		fmt.Fprintf(fs.Output(), "  increase|decrease        change -item quantity by one\n")
		fmt.Fprintf(fs.Output(), "  delete-item              remove -item\n")
		fmt.Fprintf(fs.Output(), "  delete-store             remove every item of -store\n\nFlags:\n")
		fs.PrintDefaults()
	}
	token := fs.String("token", env.Get(envAccessToken, ""), "bearer access token")
	itemFlag := fs.String("item", "", "cart item id")
	storeFlag := fs.String("store", "", "store id")
	_ = fs.Parse(os.Args[1:])

	args := fs.Args()
	if len(args) != 1 {
		fs.Usage()
		os.Exit(2)
	}

	cfg, err := config.LoadStorefront()
	if err != nil {
		logg.Error(context.Background(), "failed to load storefront config", err)
		os.Exit(1)
	}

	client, err := storefront.NewClient(cfg.APIBaseURL,
		storefront.WithTimeout(cfg.RequestTimeout),
		storefront.WithAccessToken(*token),
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart client", err)
		os.Exit(1)
	}

	session, err := storefront.NewSession(storefront.SessionParams{
		API:          client,
		Logger:       logg,
		DeleteFanOut: cfg.DeleteFanOut,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cart session", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, session, args[0], *itemFlag, *storeFlag); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	printCart(os.Stdout, session)
}

func run(ctx context.Context, session *storefront.Session, command, item, store string) error {
	if err := session.Load(ctx); err != nil {
		return err
	}

	switch command = strings.ToLower(command); command {
	case "summary":
		return nil
	case "increase", "decrease", "delete-item":
		id, err := uuid.Parse(item)
		if err != nil {
			return fmt.Errorf("-item: %w", err)
		}
		switch command {
		case "increase":
			return session.IncreaseQuantity(ctx, id)
		case "decrease":
			return session.DecreaseQuantity(ctx, id)
		default:
			return session.DeleteItem(ctx, id)
		}
	case "delete-store":
		id, err := uuid.Parse(store)
		if err != nil {
			return fmt.Errorf("-store: %w", err)
		}
		return session.DeleteStore(ctx, id)
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

// printCart checks every active store and prints per-store totals and the order summary.
func printCart(w io.Writer, session *storefront.Session) {
	active, inactive := session.Partition()
	stats := session.StoreStats()
	for _, group := range active {
		_ = session.ToggleStore(group.Store.ID, true)
		s := stats[group.Store.ID]
		fmt.Fprintf(w, "%s (%d items)\n", group.Store.Name, len(group.Items))
		for _, item := range group.Items {
			fmt.Fprintf(w, "  %s  %s x%d  %s\n", item.ID, item.ProductName, item.Quantity, money.FormatVND(item.TotalPrice))
		}
		if s.FlashSaleCount > 0 {
			fmt.Fprintf(w, "  flash sale: %d items, saved %s\n", s.FlashSaleCount, money.FormatVND(s.TotalSavings))
		}
	}
	for _, item := range inactive {
		fmt.Fprintf(w, "unavailable: %s  %s\n", item.ID, item.ProductName)
	}

	summary := session.Summary()
	fmt.Fprintf(w, "\nselected %d  subtotal %s  discount %s  total %s\n",
		summary.ItemCount,
		money.FormatVND(summary.Subtotal),
		money.FormatVND(summary.Discount),
		money.FormatVND(summary.Total),
	)
}
