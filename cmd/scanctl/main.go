// Command scanctl verifies a ticket QR code against a running API server.
// It accepts either a QR image file or the raw payload and prints the
// verdict with a terminal color the gate agent can read at a glance.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/emldov7/evMonde--sub000/client"
)

const (
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
	colorReset  = "\033[0m"
)

func main() {
	var (
		server  = flag.String("server", "http://localhost:8080", "API server base URL")
		email   = flag.String("email", "", "organizer account email")
		pass    = flag.String("password", "", "organizer account password")
		imgPath = flag.String("image", "", "path to a QR code image (PNG or JPEG)")
		payload = flag.String("payload", "", "raw QR payload, instead of an image")
		timeout = flag.Duration("timeout", 10*time.Second, "request timeout")
	)
	flag.Parse()

	if *email == "" || *pass == "" {
		fmt.Fprintln(os.Stderr, "scanctl: -email and -password are required")
		os.Exit(2)
	}
	if (*imgPath == "") == (*payload == "") {
		fmt.Fprintln(os.Stderr, "scanctl: provide exactly one of -image or -payload")
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	api := client.New(*server)
	if _, err := api.Login(ctx, *email, *pass); err != nil {
		fmt.Fprintf(os.Stderr, "scanctl: login failed: %v\n", err)
		os.Exit(1)
	}

	var (
		result *client.ScanResult
		err    error
	)
	if *imgPath != "" {
		f, openErr := os.Open(*imgPath)
		if openErr != nil {
			fmt.Fprintf(os.Stderr, "scanctl: %v\n", openErr)
			os.Exit(1)
		}
		result, err = api.ScanImage(ctx, f)
		f.Close()
	} else {
		result, err = api.Scan(ctx, *payload)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "scanctl: %v\n", err)
		os.Exit(1)
	}

	printResult(result)
	if result.Verdict != client.VerdictGreen {
		os.Exit(1)
	}
}

func printResult(res *client.ScanResult) {
	color := colorRed
	switch res.Verdict {
	case client.VerdictGreen:
		color = colorGreen
	case client.VerdictYellow:
		color = colorYellow
	}

	fmt.Printf("%s%s%s\n", color, res.Response.Message, colorReset)
	if res.Response.ParticipantName != "" {
		fmt.Printf("  participant: %s\n", res.Response.ParticipantName)
	}
	if res.Response.EventTitle != "" {
		fmt.Printf("  event:       %s\n", res.Response.EventTitle)
	}
	if res.Response.EventDate != nil {
		fmt.Printf("  date:        %s\n", res.Response.EventDate.Format("2006-01-02 15:04"))
	}
	if res.Response.ScannedCount > 0 {
		fmt.Printf("  scans:       %d\n", res.Response.ScannedCount)
	}
}
