package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-resty/resty/v2"
)

// Usage example on the command line:
// > go run . -url=http://localhost:8000/api/contacts -timeout=2m
func main() {
	url := flag.String("url", "http://localhost:8000/api/contacts", "the URL that has to answer with 200")
	interval := flag.Duration("interval", 5*time.Second, "the time between two attempts")
	timeout := flag.Duration("timeout", 0, "give up after this time, 0 waits forever")
	flag.Parse()

	if !waitUntilAvailable(resty.New(), *url, *interval, *timeout) {
		fmt.Println("service did not become available")
		os.Exit(1)
	}
}

// waitUntilAvailable polls the URL until it answers with 200. It returns false if the timeout
// has passed before.
func waitUntilAvailable(client *resty.Client, url string, interval time.Duration, timeout time.Duration) bool {
	var totalWaitTime time.Duration
	for {
		res, err := client.R().Get(url)
		if err == nil {
			fmt.Println(res.Status())
			if res.StatusCode() == http.StatusOK {
				return true
			}
		} else {
			fmt.Println(err)
		}
		if timeout > 0 && totalWaitTime+interval > timeout {
			return false
		}
		totalWaitTime += interval
		fmt.Printf("Waiting %s", totalWaitTime)
		fmt.Println()
		time.Sleep(interval)
	}
}
