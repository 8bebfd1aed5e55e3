package main

import (
	"context"
	"fmt"
	"iter"
	"log"
	"log/slog"
	"os"

	"github.com/poiesic/dashboard"
	"github.com/poiesic/dashboard/core"
	"github.com/poiesic/dashboard/users"
	"github.com/urfave/cli/v2"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

var sampleUsers = []core.NewUser{
	{FullName: "Galen Slixby", Username: "gslixby0", Email: "gslixby0@abc.net.au", Company: "Yotz PVT LTD", Country: "El Salvador", Contact: "5543218765", Role: core.RoleEditor, CurrentPlan: "enterprise", Billing: "Auto Debit"},
	{FullName: "Halsey Redmore", Username: "hredmore1", Email: "hredmore1@imgur.com", Company: "Skinder PVT LTD", Country: "Albania", Contact: "5503212345", Role: core.RoleAuthor, CurrentPlan: "team", Billing: "Auto Debit"},
	{FullName: "Marjory Sicely", Username: "msicely2", Email: "msicely2@who.int", Company: "Oozz PVT LTD", Country: "Russia", Contact: "5559876543", Role: core.RoleMaintainer, CurrentPlan: "enterprise", Billing: "Auto Debit"},
	{FullName: "Cyrill Risby", Username: "crisby3", Email: "crisby3@wordpress.com", Company: "Oozz PVT LTD", Country: "China", Contact: "5512348765", Role: core.RoleMaintainer, CurrentPlan: "team", Billing: "Manual Paypal"},
	{FullName: "Maggy Hurran", Username: "mhurran4", Email: "mhurran4@yahoo.co.jp", Company: "Aimbo PVT LTD", Country: "Pakistan", Contact: "5587654321", Role: core.RoleSubscriber, CurrentPlan: "enterprise", Billing: "Manual Cash"},
	{FullName: "Silvain Halstead", Username: "shalstead5", Email: "shalstead5@shinystat.com", Company: "Jaxbean PVT LTD", Country: "China", Contact: "5565432109", Role: core.RoleAuthor, CurrentPlan: "company", Billing: "Manual Paypal"},
	{FullName: "Breena Gallemore", Username: "bgallemore6", Email: "bgallemore6@boston.com", Company: "Jazzy PVT LTD", Country: "Canada", Contact: "5521436587", Role: core.RoleSubscriber, CurrentPlan: "company", Billing: "Auto Debit"},
	{FullName: "Kathryne Liger", Username: "kliger7", Email: "kliger7@vinaora.com", Company: "Pixoboo PVT LTD", Country: "France", Contact: "5590817263", Role: core.RoleAuthor, CurrentPlan: "enterprise", Billing: "Auto Debit"},
	{FullName: "Franz Scotfurth", Username: "fscotfurth8", Email: "fscotfurth8@dailymotion.com", Company: "Tekfly PVT LTD", Country: "China", Contact: "5536271890", Role: core.RoleSubscriber, CurrentPlan: "team", Billing: "Manual Cash"},
	{FullName: "Jillene Bellany", Username: "jbellany9", Email: "jbellany9@kickstarter.com", Company: "Gigashots PVT LTD", Country: "Jamaica", Contact: "5510293847", Role: core.RoleMaintainer, CurrentPlan: "company", Billing: "Auto Debit"},
}

func main() {
	app := &cli.App{
		Name:  "seeder",
		Usage: "Import dashboard users from a YAML file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "src",
				Usage: "YAML file with a list of users (defaults to built-in sample users)",
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to BadgerDB database directory",
				Value:   "./dashboard_db",
			},
			&cli.StringFlag{
				Name:  "password",
				Usage: "Password for rows that do not set one",
				Value: "password",
			},
			&cli.IntFlag{
				Name:  "batch-size",
				Usage: "Number of users to import per transaction",
				Value: 5,
			},
			&cli.IntFlag{
				Name:  "hash-cost",
				Usage: "bcrypt cost for imported passwords",
				Value: bcrypt.DefaultCost,
			},
		},
		Before: func(c *cli.Context) error {
			handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			})
			slog.SetDefault(slog.New(handler))
			return nil
		},
		Action: seedCommand,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func seedCommand(c *cli.Context) error {
	if c.Int("batch-size") <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}

	db, err := dashboard.NewDatabase(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	svc, err := db.NewUserService(users.WithHashCost(c.Int("hash-cost")))
	if err != nil {
		return fmt.Errorf("failed to create user service: %w", err)
	}
	defer svc.Release()

	// Determine source of seed data
	var source iter.Seq[core.NewUser]
	if src := c.String("src"); src != "" {
		source, err = usersFromFile(src)
		if err != nil {
			return err
		}
	} else {
		source = usersFromSlice(sampleUsers)
	}

	imported, skipped, err := importBatched(c.Context, svc, withPassword(source, c.String("password")), c.Int("batch-size"))
	if err != nil {
		return err
	}
	slog.Info("seeding finished", "imported", imported, "skipped", skipped)
	return nil
}

// usersFromFile reads a YAML list of users.
func usersFromFile(filename string) (iter.Seq[core.NewUser], error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	var rows []core.NewUser
	if err := yaml.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}
	return usersFromSlice(rows), nil
}

// usersFromSlice returns an iterator over a slice of users.
func usersFromSlice(rows []core.NewUser) iter.Seq[core.NewUser] {
	return func(yield func(core.NewUser) bool) {
		for _, row := range rows {
			if !yield(row) {
				return
			}
		}
	}
}

// withPassword fills in password for rows that have none.
func withPassword(source iter.Seq[core.NewUser], password string) iter.Seq[core.NewUser] {
	return func(yield func(core.NewUser) bool) {
		for row := range source {
			if row.Password == "" {
				row.Password = password
			}
			if !yield(row) {
				return
			}
		}
	}
}

// importBatched reads from a source iterator and imports users in batches.
// Users whose email or username already exists are skipped, so the seeder
// can be re-run against the same database.
func importBatched(ctx context.Context, svc *users.Service, source iter.Seq[core.NewUser], batchSize int) (int, int, error) {
	var imported, skipped int
	batch := make([]core.NewUser, 0, batchSize)

	flush := func() error {
		fresh, dropped, err := svc.FilterExisting(ctx, batch)
		if err != nil {
			return err
		}
		skipped += dropped
		added, err := svc.Import(ctx, fresh)
		if err != nil {
			return err
		}
		imported += len(added)
		batch = batch[:0]
		return nil
	}

	for row := range source {
		batch = append(batch, row)
		if len(batch) == batchSize {
			if err := flush(); err != nil {
				return imported, skipped, err
			}
		}
	}

	// Process any remaining users
	if len(batch) > 0 {
		if err := flush(); err != nil {
			return imported, skipped, err
		}
	}

	return imported, skipped, nil
}
