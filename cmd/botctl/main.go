package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
)

// botctl is an operator CLI for the bot's local HTTP API.

func main() {
	baseURL := os.Getenv("BOT_API_URL")
	if baseURL == "" {
		baseURL = "http://127.0.0.1:9877"
	}

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "health":
		err = get(baseURL + "/health")
	case "triggers":
		requireArgs(3, "botctl triggers <chat_id>")
		err = get(baseURL + "/api/triggers/" + os.Args[2])
	case "responses":
		requireArgs(4, "botctl responses <chat_id> <trigger>")
		err = get(baseURL + "/api/responses/" + os.Args[2] + "?trigger=" + url.QueryEscape(os.Args[3]))
	case "search":
		requireArgs(4, "botctl search <chat_id> <keywords...>")
		q := url.QueryEscape(strings.Join(os.Args[3:], " "))
		err = get(baseURL + "/api/search/" + os.Args[2] + "?q=" + q)
	case "stats":
		requireArgs(3, "botctl stats <chat_id>")
		err = get(baseURL + "/api/stats/" + os.Args[2])
	case "edits":
		requireArgs(3, "botctl edits <chat_id>")
		err = get(baseURL + "/api/edits/" + os.Args[2])
	case "log":
		requireArgs(3, "botctl log '<json entry>'")
		err = post(baseURL+"/api/log", os.Args[2])
	default:
		usage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("Usage: botctl <command> [args]")
	fmt.Println("Commands:")
	fmt.Println("  health")
	fmt.Println("  triggers <chat_id>")
	fmt.Println("  responses <chat_id> <trigger>")
	fmt.Println("  search <chat_id> <keywords...>")
	fmt.Println("  stats <chat_id>")
	fmt.Println("  edits <chat_id>")
	fmt.Println("  log '<json entry>'")
}

func requireArgs(n int, usageLine string) {
	if len(os.Args) < n {
		fmt.Println("Usage: " + usageLine)
		os.Exit(1)
	}
}

func get(u string) error {
	resp, err := http.Get(u)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return dump(resp)
}

func post(u, body string) error {
	resp, err := http.Post(u, "application/json", bytes.NewBufferString(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return dump(resp)
}

func dump(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	// Pretty-print JSON responses, pass anything else through
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, body, "", "  "); err != nil {
		fmt.Println(string(body))
		return nil
	}
	fmt.Println(pretty.String())
	return nil
}
