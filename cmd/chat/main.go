package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"

	"github.com/Pushya04/Mental-Health-Chatbot/pkg/models"
)

var (
	serverURL   = flag.String("server", "http://localhost:8000", "EmpaTalk server URL")
	temperature = flag.Float64("temp", 0, "Temperature override (0 = server default)")
	maxTokens   = flag.Int("max-tokens", 0, "Max new tokens override (0 = server default)")
)

func main() {
	flag.Parse()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		fmt.Println("\nBye.")
		os.Exit(0)
	}()

	client := &http.Client{Timeout: 5 * time.Minute}
	sessionID := uuid.NewString()

	boldGreen := color.New(color.FgGreen, color.Bold).SprintFunc()
	boldCyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	fmt.Println(boldGreen("EmpaTalk chat"))
	fmt.Printf("Server: %s\n", boldCyan(*serverURL))
	fmt.Println("Type your message and press Enter. Type 'exit' or press Ctrl+C to quit.")
	fmt.Println()

	var history []models.Turn
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print(boldGreen("You: "))
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if strings.ToLower(input) == "exit" {
			break
		}

		reply, err := generate(client, sessionID, input, history)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			fmt.Println("Make sure the server is running: empatalk")
			continue
		}

		fmt.Printf("%s %s\n\n", boldCyan("EmpaTalk:"), reply)

		history = append(history,
			models.Turn{Role: models.RoleUser, Content: input},
			models.Turn{Role: models.RoleAssistant, Content: reply},
		)
	}
}

func generate(client *http.Client, sessionID, message string, history []models.Turn) (string, error) {
	req := models.GenerateRequest{
		Message:   message,
		History:   history,
		SessionID: sessionID,
	}
	if *temperature > 0 {
		req.Temperature = temperature
	}
	if *maxTokens > 0 {
		req.MaxNewTokens = maxTokens
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", err
	}

	resp, err := client.Post(*serverURL+"/generate", "application/json", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error != "" {
			return "", fmt.Errorf("server: %s", apiErr.Error)
		}
		return "", fmt.Errorf("server returned %s", resp.Status)
	}

	var out models.GenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.Text, nil
}
