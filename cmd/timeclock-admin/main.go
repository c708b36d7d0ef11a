// Command timeclock-admin is an offline maintenance CLI for the kiosk's
// ledger: listing entries, soft-deleting a mistaken punch (with
// recalculation), and correcting an employee's name. It opens the same
// sqlite file the kiosk uses and must never run while the kiosk process
// is also writing to it.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/randhum/timeclock/internal/config"
	"github.com/randhum/timeclock/internal/database"
	"github.com/randhum/timeclock/internal/domain"
	"github.com/randhum/timeclock/internal/recalc"
	"github.com/randhum/timeclock/internal/store"
	"github.com/randhum/timeclock/pkg/logger"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	dataDirFlag, args := extractDataDirFlag(args)

	cfg, err := config.Load(dataDirFlag)
	if err != nil {
		fatal("failed to load configuration: %v", err)
	}
	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: true})

	db, err := database.New(database.Config{Path: cfg.DBPath(), Profile: database.ProfileLedger, Name: "timeclock"})
	if err != nil {
		fatal("failed to open database: %v", err)
	}
	defer db.Close()
	if err := db.Migrate(); err != nil {
		fatal("failed to migrate database: %v", err)
	}
	s := store.New(db, log)
	ctx := context.Background()

	switch cmd {
	case "list-entries":
		runListEntries(ctx, s, args)
	case "delete-entry":
		runDeleteEntry(ctx, s, args)
	case "change-employee-name":
		runChangeEmployeeName(ctx, s, args)
	default:
		usage()
		os.Exit(1)
	}
}

// extractDataDirFlag pulls --data-dir out of a subcommand's argument list
// before config.Load runs, since config must be loaded before a
// per-subcommand flag.FlagSet exists to parse it normally.
func extractDataDirFlag(args []string) (string, []string) {
	for i, a := range args {
		switch {
		case a == "--data-dir" && i+1 < len(args):
			rest := append(append([]string{}, args[:i]...), args[i+2:]...)
			return args[i+1], rest
		case len(a) > len("--data-dir=") && a[:len("--data-dir=")] == "--data-dir=":
			rest := append(append([]string{}, args[:i]...), args[i+1:]...)
			return a[len("--data-dir="):], rest
		}
	}
	return "", args
}

func usage() {
	fmt.Fprintln(os.Stderr, `timeclock-admin — offline ledger maintenance

Usage:
  timeclock-admin list-entries (--name NAME | --tag TAG | --all)
  timeclock-admin delete-entry --id ID (--name NAME | --tag TAG) [--force]
  timeclock-admin change-employee-name (--name NAME | --tag TAG) --new-name NEW

Every subcommand also accepts --data-dir DIR to point at a non-default data directory.`)
}

func runListEntries(ctx context.Context, s *store.Store, args []string) {
	fs := flag.NewFlagSet("list-entries", flag.ExitOnError)
	name := fs.String("name", "", "employee name")
	tag := fs.String("tag", "", "employee RFID tag")
	all := fs.Bool("all", false, "list entries for every employee")
	fs.Parse(args)

	since := time.Time{}
	until := time.Now()

	if *all {
		entries, err := s.ListAllActiveEntries(ctx, since, until)
		if err != nil {
			fatal("failed to list entries: %v", err)
		}
		printEntries(entries)
		return
	}

	emp := resolveEmployee(ctx, s, *name, *tag)
	entries, err := s.ListEntries(ctx, emp.ID, since, until)
	if err != nil {
		fatal("failed to list entries: %v", err)
	}
	printEntries(entries)
}

func runDeleteEntry(ctx context.Context, s *store.Store, args []string) {
	fs := flag.NewFlagSet("delete-entry", flag.ExitOnError)
	id := fs.Int64("id", 0, "time entry id")
	name := fs.String("name", "", "employee name")
	tag := fs.String("tag", "", "employee RFID tag")
	force := fs.Bool("force", false, "skip confirmation prompt")
	fs.Parse(args)

	if *id == 0 {
		fatal("--id is required")
	}
	emp := resolveEmployee(ctx, s, *name, *tag)

	if !*force {
		fmt.Printf("Delete entry %d for employee %q (id %d)? [y/N] ", *id, emp.Name, emp.ID)
		var answer string
		fmt.Scanln(&answer)
		if answer != "y" && answer != "Y" {
			fmt.Println("aborted")
			return
		}
	}

	if err := s.SoftDeleteEntry(ctx, *id, emp.ID, recalc.New()); err != nil {
		fatal("failed to delete entry: %v", err)
	}
	fmt.Printf("entry %d deleted and employee %d's sequence recalculated\n", *id, emp.ID)
}

func runChangeEmployeeName(ctx context.Context, s *store.Store, args []string) {
	fs := flag.NewFlagSet("change-employee-name", flag.ExitOnError)
	name := fs.String("name", "", "employee name")
	tag := fs.String("tag", "", "employee RFID tag")
	newName := fs.String("new-name", "", "new employee name")
	fs.Parse(args)

	if *newName == "" {
		fatal("--new-name is required")
	}
	emp := resolveEmployee(ctx, s, *name, *tag)

	if err := s.ChangeEmployeeName(ctx, emp.ID, *newName); err != nil {
		fatal("failed to change employee name: %v", err)
	}
	fmt.Printf("employee %d renamed from %q to %q\n", emp.ID, emp.Name, *newName)
}

func resolveEmployee(ctx context.Context, s *store.Store, name, tag string) *domain.Employee {
	switch {
	case name != "":
		emp, err := s.GetEmployeeByName(ctx, name)
		if err != nil {
			fatal("failed to find employee: %v", err)
		}
		return emp
	case tag != "":
		emp, err := s.GetEmployeeByTag(ctx, tag)
		if err != nil {
			fatal("failed to find employee: %v", err)
		}
		return emp
	default:
		fatal("either --name or --tag is required")
		return nil
	}
}

func printEntries(entries []domain.TimeEntry) {
	for _, e := range entries {
		fmt.Printf("%d\t%d\t%s\t%s\n", e.ID, e.EmployeeID, e.Timestamp.UTC().Format(time.RFC3339), e.Action)
	}
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
