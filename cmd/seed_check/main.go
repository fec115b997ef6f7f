// Command seed_check validates a library seed file and prints what the
// console would load from it.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"library-circulation/library"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: seed_check [seed.yaml]\n\nWithout a file the built-in community library is checked.\n")
	}
	flag.Parse()

	if err := run(os.Stdout, flag.Arg(0)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(out io.Writer, path string) error {
	seed := library.DefaultSeed()
	if path != "" {
		s, err := library.LoadSeed(path)
		if err != nil {
			return err
		}
		seed = s
	}

	lib, err := library.NewFromSeed(seed)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%s: %d items, %d members\n\n", lib.Name, len(lib.Items()), len(lib.Members()))

	fmt.Fprintf(out, "%-6s %-40s %-9s %-25s %-7s %s\n", "ID", "Title", "Kind", "By", "Loan", "Checkouts")
	fmt.Fprintln(out, strings.Repeat("-", 100))
	for _, item := range lib.Items() {
		popular := ""
		if item.IsPopular() {
			popular = " (popular)"
		}
		fmt.Fprintf(out, "%-6s %-40s %-9s %-25s %-7s %d%s\n",
			item.ID,
			truncateString(item.Title, 40),
			item.Kind,
			truncateString(item.Creator(), 25),
			fmt.Sprintf("%dd", item.LoanPeriod()),
			item.TotalCheckouts(),
			popular)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "%-8s %-30s %-10s %s\n", "ID", "Name", "Type", "Max loans")
	fmt.Fprintln(out, strings.Repeat("-", 60))
	for _, m := range lib.Members() {
		fmt.Fprintf(out, "%-8s %-30s %-10s %d\n", m.ID, truncateString(m.Name, 30), m.Membership, m.MaxLoans())
	}
	return nil
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
