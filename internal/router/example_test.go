package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"

	"github.com/patric-chuzhbe/userdir/internal/db/memorystorage"
	"github.com/patric-chuzhbe/userdir/internal/logger"
	"github.com/patric-chuzhbe/userdir/internal/models"
	"github.com/patric-chuzhbe/userdir/internal/service"
)

func setupExampleServer() *httptest.Server {
	if err := logger.Init("fatal"); err != nil {
		panic(err)
	}

	db, err := memorystorage.New()
	if err != nil {
		panic(err)
	}

	return httptest.NewServer(New(service.New(db)))
}

func ExampleRouter_GetPing() {
	server := setupExampleServer()
	defer server.Close()

	resp, err := http.Get(server.URL + "/ping")
	if err != nil {
		panic(err)
	}
	defer resp.Body.Close()

	fmt.Println("Status Code:", resp.StatusCode)

	// Output:
	// Status Code: 200
}

func ExampleRouter_PostApiusers() {
	server := setupExampleServer()
	defer server.Close()

	payload := models.CreateUserRequest{Username: "alice"}
	body, err := json.Marshal(payload)
	if err != nil {
		panic(err)
	}

	resp, err := http.Post(server.URL+"/api/users", "application/json", bytes.NewReader(body))
	if err != nil {
		panic(err)
	}
	defer resp.Body.Close()

	fmt.Println("Status Code:", resp.StatusCode)

	// Output:
	// Status Code: 201
}

func ExampleRouter_GetApiusers() {
	server := setupExampleServer()
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/users")
	if err != nil {
		panic(err)
	}
	defer resp.Body.Close()

	var users []any
	if err := json.NewDecoder(resp.Body).Decode(&users); err != nil {
		panic(err)
	}

	fmt.Println("Status Code:", resp.StatusCode)
	fmt.Println("Users:", len(users))

	// Output:
	// Status Code: 200
	// Users: 0
}
