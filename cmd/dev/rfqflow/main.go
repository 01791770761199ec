package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"rfqapi/pkg/config"
)

// rfqflow exercises the RFQ flow end to end against a running server:
// create a quote with a file attachment, read it back, then fetch the
// archive and write it next to the working directory.
func main() {
	var (
		baseURL = flag.String("base-url", "", "server base url (defaults to http://localhost<HTTP_ADDR>)")
		fileURL = flag.String("file-url", "", "direct file url to attach to the quote line item")
		email   = flag.String("email", "customer@example.com", "customer email for the quote")
		out     = flag.String("out", "order_files.zip", "path to write the downloaded archive")
	)
	flag.Parse()

	cfg := config.Load()
	if *baseURL == "" {
		*baseURL = "http://localhost" + cfg.HTTPAddr
	}
	if *fileURL == "" {
		fmt.Fprintln(os.Stderr, "missing -file-url")
		os.Exit(2)
	}

	client := &http.Client{Timeout: 60 * time.Second}

	body, _ := json.Marshal(map[string]any{
		"email": *email,
		"note":  "rfqflow dev run",
		"lineItems": []map[string]any{
			{
				"title":     "Custom part (dev)",
				"quantity":  1,
				"unitPrice": "10.00",
				"fileName":  "part.step",
				"fileUrl":   *fileURL,
			},
		},
	})

	resp, err := client.Post(*baseURL+"/v1/rfq/quotes", "application/json", bytes.NewReader(body))
	if err != nil {
		fmt.Fprintf(os.Stderr, "create quote: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	var created struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusCreated {
		fmt.Fprintf(os.Stderr, "create quote: status %d body %s\n", resp.StatusCode, raw)
		os.Exit(1)
	}
	if err := json.Unmarshal(raw, &created); err != nil {
		fmt.Fprintf(os.Stderr, "create quote: decode: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("created quote %s (%s)\n", created.ID, created.Name)

	dl, err := client.Get(fmt.Sprintf("%s/v1/rfq/download-order-files?draftOrderId=%s", *baseURL, created.ID))
	if err != nil {
		fmt.Fprintf(os.Stderr, "download: %v\n", err)
		os.Exit(1)
	}
	defer dl.Body.Close()

	if dl.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(dl.Body)
		fmt.Fprintf(os.Stderr, "download: status %d body %s\n", dl.StatusCode, b)
		os.Exit(1)
	}

	f, err := os.Create(*out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "create %s: %v\n", *out, err)
		os.Exit(1)
	}
	defer f.Close()

	n, err := io.Copy(f, dl.Body)
	if err != nil {
		fmt.Fprintf(os.Stderr, "write archive: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("wrote %s (%d bytes)\n", *out, n)
}
