package main

import (
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"gitlab.com/dirk.krummacker/contactbook/pkg/model"
)

// envelope is the response body of the contacts service.
type envelope struct {
	Success bool          `json:"success"`
	Data    model.Contact `json:"data"`
	Message string        `json:"message"`
}

// contactsClient sends requests to the contacts service and measures their duration.
type contactsClient struct {
	http *resty.Client
}

func newContactsClient(baseURL string) *contactsClient {
	return &contactsClient{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(10 * time.Second).
			SetHeader("Content-Type", "application/json").
			SetHeader("Accept", "application/json"),
	}
}

// create posts a contact and returns its id together with the duration of the call.
func (c *contactsClient) create(body string) (string, time.Duration, error) {
	var result envelope
	before := time.Now()
	res, err := c.http.R().
		SetBody(body).
		SetResult(&result).
		SetError(&result).
		Post("/contact")
	duration := time.Since(before)
	if err != nil {
		return "", duration, err
	}
	if res.IsError() {
		return "", duration, fmt.Errorf("POST failed with %d: %s", res.StatusCode(), result.Message)
	}
	return result.Data.Id, duration, nil
}

// send executes a PUT, GET or DELETE request for one contact.
func (c *contactsClient) send(method string, id string, body string) (time.Duration, error) {
	request := c.http.R().SetPathParam("id", id)
	if body != "" {
		request.SetBody(body)
	}
	before := time.Now()
	res, err := request.Execute(method, "/contact/{id}")
	duration := time.Since(before)
	if err != nil {
		return duration, err
	}
	if res.IsError() {
		return duration, fmt.Errorf("%s %s failed with %d", method, id, res.StatusCode())
	}
	return duration, nil
}
