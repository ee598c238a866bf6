package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"github.com/tinchoocaltana1/becacnc/internal/config"
	"github.com/tinchoocaltana1/becacnc/internal/services"
	"github.com/tinchoocaltana1/becacnc/internal/stats"
	"github.com/tinchoocaltana1/becacnc/internal/store"
)

const usage = "expected 'add-user', 'stats' or 'migrate' subcommand"

func main() {
	addUserCmd := flag.NewFlagSet("add-user", flag.ExitOnError)
	username := addUserCmd.String("username", "", "Username for the new user")
	password := addUserCmd.String("password", "", "Password for the new user")

	statsCmd := flag.NewFlagSet("stats", flag.ExitOnError)
	asJSON := statsCmd.Bool("json", false, "Print the full report as JSON")

	migrateCmd := flag.NewFlagSet("migrate", flag.ExitOnError)

	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	switch os.Args[1] {
	case "add-user":
		addUserCmd.Parse(os.Args[2:])
		if *username == "" || *password == "" {
			fmt.Println("username and password are required")
			addUserCmd.PrintDefaults()
			os.Exit(1)
		}
		createUser(cfg, *username, *password)
	case "stats":
		statsCmd.Parse(os.Args[2:])
		printStats(cfg, *asJSON)
	case "migrate":
		migrateCmd.Parse(os.Args[2:])
		openStore(cfg).Close()
		fmt.Println("Migrations applied.")
	default:
		fmt.Println(usage)
		os.Exit(1)
	}
}

// openStore opens the configured database and applies pending migrations,
// so every subcommand works before the server has ever run.
func openStore(cfg *config.Config) *store.Store {
	db, err := store.NewStore(cfg.DBDriver, cfg.DBDSN, cfg.DBTimeout)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}

func createUser(cfg *config.Config, username, password string) {
	db := openStore(cfg)
	defer db.Close()

	auth := services.NewAuthService(db, "", 0)
	if err := auth.Register(context.Background(), username, password); err != nil {
		log.Fatalf("Failed to create user: %v", err)
	}

	fmt.Printf("User '%s' created successfully.\n", username)
}

func printStats(cfg *config.Config, asJSON bool) {
	db := openStore(cfg)
	defer db.Close()

	report, err := services.NewStatsService(db, cfg.StatsLocation).Report(context.Background())
	if err != nil {
		log.Fatalf("Failed to build stats: %v", err)
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			log.Fatalf("Failed to encode stats: %v", err)
		}
		return
	}

	m := report.Month
	fmt.Printf("%s %d (vs %s %d)\n\n", m.Month, m.Year, m.PreviousMonth, m.PreviousYear)
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "METRIC\tCURRENT\tPREVIOUS\tCHANGE\tTREND")
	writeMoney(tw, "income", m.Income)
	writeMoney(tw, "cost", m.Cost)
	writeMoney(tw, "profit", m.Profit)
	fmt.Fprintf(tw, "completed orders\t%d\t%d\t%+d\t%s\n", m.CompletedOrders.Current, m.CompletedOrders.Previous, m.CompletedOrders.Difference, m.CompletedOrders.Trend)
	fmt.Fprintf(tw, "pending orders\t%d\t\t\t\n", m.PendingOrders)
	fmt.Fprintf(tw, "products sold (all time)\t%d\t\t\t\n", m.ProductsSold)
	fmt.Fprintf(tw, "products sold (month)\t%d\t\t\t\n", m.ProductsSoldInMonth)
	tw.Flush()

	w := report.Week
	fmt.Println("\nLast 7 days (vs the 7 before)")
	tw = tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "METRIC\tCURRENT\tPREVIOUS\tCHANGE\tTREND")
	writeMoney(tw, "income", w.Income)
	writeMoney(tw, "cost", w.Cost)
	writeMoney(tw, "profit", w.Profit)
	tw.Flush()
}

func writeMoney(tw *tabwriter.Writer, name string, c stats.MoneyComparison) {
	change := "no prior data"
	if c.HasPrior {
		change = c.ChangePercent.Decimal.String() + "%"
	}
	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", name, c.Current.StringFixed(2), c.Previous.StringFixed(2), change, c.Trend)
}
