//go:build ignore
// +build ignore

// Package main provides a manual concurrency stress test for the bookstore checkout API.
//
// Usage:
//
//	go run ./scripts/concurrency_test.go <isbn> <customer1_id> [customer2_id ...]
//
// Or use the convenience environment variables:
//
//	ISBN=<isbn>  CUSTOMER_IDS=<id1>,<id2>,...  go run ./scripts/concurrency_test.go
//
// What it does:
//  1. Puts one copy of the book in every customer's cart.
//  2. Fires N goroutines (one per customer) all checking out simultaneously.
//  3. Prints how many orders were placed vs. rejected for insufficient stock,
//     then compares the placed count against the stock read before the race.
//
// Prerequisites:
//   - Server must be running against a migrated database.
//   - Every customer needs a saved shipping address.
//   - Set the book's stock low (e.g. PUT /admin/books/<isbn>/stock {"quantity":1})
//     so that customers compete for the last copies.

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"
)

const defaultServerAddr = "http://localhost:8080"

type checkoutResult struct {
	CustomerID string
	OrderID    uint
	StatusCode int
	Message    string
	Err        error
}

var client = &http.Client{Timeout: 10 * time.Second}

func main() {
	serverAddr := os.Getenv("SERVER_URL")
	if serverAddr == "" {
		serverAddr = defaultServerAddr
	}

	isbn := os.Getenv("ISBN")
	var customerIDs []string
	if v := os.Getenv("CUSTOMER_IDS"); v != "" {
		customerIDs = strings.Split(v, ",")
	}

	args := os.Args[1:]
	if len(args) >= 1 {
		isbn = args[0]
	}
	if len(args) >= 2 {
		customerIDs = args[1:]
	}

	if isbn == "" {
		log.Fatal("Usage: ISBN=<isbn> CUSTOMER_IDS=<c1,c2,...> go run ./scripts/concurrency_test.go\n" +
			"  or: go run ./scripts/concurrency_test.go <isbn> <customer1_id> [customer2_id ...]")
	}
	if len(customerIDs) == 0 {
		log.Fatal("At least one customer ID must be provided via CUSTOMER_IDS env or positional args")
	}

	stock, err := fetchStock(serverAddr, isbn)
	if err != nil {
		log.Fatalf("could not read book %s: %v", isbn, err)
	}

	fmt.Printf("=== Bookstore Checkout Concurrency Test ===\n")
	fmt.Printf("Server    : %s\n", serverAddr)
	fmt.Printf("Book      : %s (stock %d)\n", isbn, stock)
	fmt.Printf("Customers : %d\n\n", len(customerIDs))

	for _, cid := range customerIDs {
		cid = strings.TrimSpace(cid)
		status, raw, err := call(serverAddr, http.MethodPost, "/cart/items", cid,
			fmt.Sprintf(`{"isbn":%q,"quantity":1}`, isbn))
		if err != nil || status != http.StatusOK {
			log.Fatalf("customer %s could not fill cart: status=%d err=%v body=%s", cid, status, err, raw)
		}
	}

	results := make([]checkoutResult, len(customerIDs))
	var wg sync.WaitGroup

	// Fire all goroutines simultaneously using a barrier.
	start := make(chan struct{})

	for i, cid := range customerIDs {
		wg.Add(1)
		go func(idx int, customerID string) {
			defer wg.Done()
			<-start
			results[idx] = attemptCheckout(serverAddr, strings.TrimSpace(customerID))
		}(i, cid)
	}

	fmt.Println("Firing all checkouts simultaneously...")
	close(start)

	wg.Wait()
	fmt.Println("All requests completed.")
	fmt.Println()

	var placed, rejected, failures int
	for _, r := range results {
		switch {
		case r.Err != nil:
			failures++
			fmt.Printf("  [ERR ] customer=%-6s err=%v\n", r.CustomerID, r.Err)
		case r.StatusCode == http.StatusCreated:
			placed++
			fmt.Printf("  [OK  ] customer=%-6s order=%d\n", r.CustomerID, r.OrderID)
		case r.StatusCode == http.StatusConflict:
			rejected++
			fmt.Printf("  [SOLD] customer=%-6s %s\n", r.CustomerID, r.Message)
		default:
			failures++
			fmt.Printf("  [FAIL] customer=%-6s status=%d %s\n", r.CustomerID, r.StatusCode, r.Message)
		}
	}

	fmt.Printf("\n--- Summary ---\n")
	fmt.Printf("Orders placed : %d\n", placed)
	fmt.Printf("Out of stock  : %d\n", rejected)
	fmt.Printf("Failures      : %d\n", failures)
	fmt.Printf("Total         : %d\n\n", len(customerIDs))

	fmt.Println("--- Invariant Check ---")
	expected := min(stock, len(customerIDs))
	after, err := fetchStock(serverAddr, isbn)
	if err != nil {
		log.Fatalf("could not re-read book %s: %v", isbn, err)
	}
	fmt.Printf("Expected orders: %d, placed: %d, stock now: %d\n", expected, placed, after)
	if placed != expected || after != stock-placed {
		fmt.Println("[FAIL] stock was oversold or lost")
		os.Exit(1)
	}
	if failures > 0 {
		fmt.Printf("\n[WARNING] %d request(s) failed, check server logs for details.\n", failures)
		os.Exit(1)
	}
	fmt.Println("[OK] no overselling")
}

func attemptCheckout(serverAddr, customerID string) checkoutResult {
	status, raw, err := call(serverAddr, http.MethodPost, "/checkout", customerID,
		`{"new_card":{"number":"4111111111111111","holder_name":"Load Test","expiry_month":12,"expiry_year":2099}}`)
	if err != nil {
		return checkoutResult{CustomerID: customerID, Err: err}
	}

	var parsed struct {
		OrderID uint   `json:"order_id"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return checkoutResult{CustomerID: customerID, StatusCode: status, Err: fmt.Errorf("bad JSON: %s", raw)}
	}
	return checkoutResult{
		CustomerID: customerID,
		OrderID:    parsed.OrderID,
		StatusCode: status,
		Message:    parsed.Error,
	}
}

func fetchStock(serverAddr, isbn string) (int, error) {
	status, raw, err := call(serverAddr, http.MethodGet, "/books/"+isbn, "", "")
	if err != nil {
		return 0, err
	}
	if status != http.StatusOK {
		return 0, fmt.Errorf("status %d: %s", status, raw)
	}
	var book struct {
		QuantityInStock int `json:"quantity_in_stock"`
	}
	if err := json.Unmarshal(raw, &book); err != nil {
		return 0, err
	}
	return book.QuantityInStock, nil
}

func call(serverAddr, method, path, customerID, body string) (int, []byte, error) {
	req, err := http.NewRequest(method, serverAddr+path, bytes.NewBufferString(body))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if customerID != "" {
		req.Header.Set("X-Customer-ID", customerID)
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	return resp.StatusCode, raw, err
}
