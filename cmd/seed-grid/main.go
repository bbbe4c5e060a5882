// Command seed-grid generates a synthetic employee roster and creates a
// review session for it against a running ninebox service.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/okian/ninebox/internal/seedgen"
)

func main() {
	var (
		url     = flag.String("url", "http://localhost:9090", "base URL of the review service")
		subject = flag.String("subject", "seed-reviewer", "subject id the session is created for")
		count   = flag.Int("count", 50, "number of employees to generate")
		seed    = flag.Int64("seed", 42, "deterministic generator seed")
	)
	flag.Parse()

	if *count <= 0 {
		fmt.Fprintln(os.Stderr, "count must be positive")
		os.Exit(1)
	}

	roster := seedgen.New(*seed).Roster(*count)
	client := seedgen.NewClient(*url)

	sessionID, err := client.CreateSession(context.Background(), *subject, roster)
	if err != nil {
		fmt.Fprintln(os.Stderr, "seed failed:", err)
		os.Exit(1)
	}
	fmt.Printf("created session %s for subject %s with %d employees\n", sessionID, *subject, *count)
}
