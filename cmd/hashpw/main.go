// Command hashpw prints the bcrypt hash to use as AUTH_PASSWORD.
//
// The password is read from the first line of stdin so it never appears in
// shell history:
//
//	printf '%s' 'secret' | hashpw
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"expensetracker/internal/auth"
)

func main() {
	cost := flag.Int("cost", bcrypt.DefaultCost, "bcrypt cost")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: hashpw [-cost n] < password")
		flag.PrintDefaults()
	}
	flag.Parse()

	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(os.Stderr, "hashpw: no password on stdin")
		os.Exit(1)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		fmt.Fprintln(os.Stderr, "hashpw: empty password")
		os.Exit(1)
	}

	hash, err := auth.HashPassword(password, *cost)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hashpw: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(hash)
}
