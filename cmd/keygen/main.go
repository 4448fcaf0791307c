// Command keygen generates an API key and prints the SHA-256 digest to put in
// the auth.key_hashes list of gateway.yaml. The plaintext key is shown once
// and never stored.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/copperline/askgate/internal/auth"
)

func main() {
	env := flag.String("env", "prod", "environment prefix")
	count := flag.Int("count", 1, "number of keys to generate")
	flag.Parse()

	if *count < 1 {
		fmt.Fprintln(os.Stderr, "error: -count must be at least 1")
		os.Exit(1)
	}

	for i := 0; i < *count; i++ {
		rawKey, err := auth.GenerateKey(*env)
		if err != nil {
			log.Fatalf("failed to generate key: %v", err)
		}

		fmt.Println("=== API Key Generated ===")
		fmt.Println()
		fmt.Printf("  Key Prefix:  %s\n", auth.KeyPrefix(rawKey))
		fmt.Println()
		fmt.Println("  API Key (save this, it will NOT be shown again):")
		fmt.Printf("  %s\n", rawKey)
		fmt.Println()
		fmt.Println("  Add to gateway.yaml under auth.key_hashes:")
		fmt.Printf("  - %s\n", auth.HashKey(rawKey))
		fmt.Println()
	}
}
