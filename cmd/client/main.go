package main

import (
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"time"
)

const createBody = `{
	"firstName": "Marcus",
	"lastName": "Antonius",
	"email": "marcus.antonius@rome.example",
	"phoneNumber": {"countryCode": "+39", "number": "999 777 555"},
	"address": {"street": "Via Sacra 1", "state": "Lazio", "country": "IT", "zipCode": "00186",
		"geocode": {"longitude": 12.4869, "latitude": 41.8919}}
}`

const updateBody = `{"lastName": "Triumvir", "phoneNumber": {"countryCode": "+39", "number": "111 222 333"}}`

// Usage example on the command line:
// > go run . -url=http://localhost:8000/api
func main() {
	baseURL := flag.String("url", "http://localhost:8000/api", "the base URL of the contacts service")
	flag.Parse()
	client := newContactsClient(*baseURL)

	fmt.Println()
	fmt.Println("  Elements      POST       PUT       GET    DELETE ")
	fmt.Println("---------------------------------------------------")
	sizes := []int{1000, 5000, 10000, 50000, 100000}
	for _, loops := range sizes {
		fmt.Printf("%10d", loops)
		ids := make([]string, 0, loops)
		{
			// POST requests
			var duration time.Duration
			for i := 0; i < loops; i++ {
				id, d, err := client.create(createBody)
				exitOnError(err)
				ids = append(ids, id)
				duration += d
			}
			printAverage(duration, loops)
		}
		{
			// PUT requests
			callInLoop(ids, func(id string) (time.Duration, error) {
				return client.send(http.MethodPut, id, updateBody)
			})
		}
		{
			// GET requests
			callInLoop(ids, func(id string) (time.Duration, error) {
				return client.send(http.MethodGet, id, "")
			})
		}
		{
			// DELETE requests
			callInLoop(ids, func(id string) (time.Duration, error) {
				return client.send(http.MethodDelete, id, "")
			})
		}
		fmt.Println()
	}
}

// callInLoop calls f for every id in random order and prints the average duration in
// microseconds.
func callInLoop(ids []string, f func(id string) (time.Duration, error)) {
	shuffled := append([]string(nil), ids...)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	var duration time.Duration
	for _, id := range shuffled {
		d, err := f(id)
		exitOnError(err)
		duration += d
	}
	printAverage(duration, len(ids))
}

func printAverage(duration time.Duration, loops int) {
	fmt.Printf("%10d", duration.Microseconds()/int64(loops))
}

func exitOnError(err error) {
	if err != nil {
		fmt.Println()
		fmt.Println("request failed:", err)
		os.Exit(1)
	}
}
