package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"
)

var unreadCmd = &cobra.Command{
	Use:   "unread",
	Short: "Show unread message counts per channel",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showUnread()
	},
}

// apiGet performs an authenticated GET against the API and returns the
// response body, translating non-2xx responses into errors.
func apiGet(path string) ([]byte, error) {
	req, err := http.NewRequest("GET", apiURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+authToken)

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp map[string]interface{}
		json.Unmarshal(body, &errResp)
		if msg, ok := errResp["message"].(string); ok {
			return nil, fmt.Errorf("API error: %s", msg)
		}
		return nil, fmt.Errorf("API error: status %d", resp.StatusCode)
	}

	return body, nil
}

func showUnread() error {
	body, err := apiGet("/api/v1/channels/unread")
	if err != nil {
		return err
	}

	if output == "json" {
		fmt.Println(string(body))
		return nil
	}

	var summary struct {
		TotalChannelUnread int `json:"total_unread_count_in_channels"`
		TotalDMUnread      int `json:"total_unread_count_in_dms"`
		Channels           []struct {
			ChannelID       string `json:"channel_id"`
			IsDirectMessage bool   `json:"is_direct_message"`
			UnreadCount     int    `json:"unread_count"`
		} `json:"channels"`
	}
	if err := json.Unmarshal(body, &summary); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	fmt.Printf("\n📬 Unread Messages\n")
	fmt.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	fmt.Printf("Channels: %d unread\n", summary.TotalChannelUnread)
	fmt.Printf("Direct messages: %d unread\n", summary.TotalDMUnread)

	for _, ch := range summary.Channels {
		if ch.UnreadCount == 0 {
			continue
		}
		kind := "channel"
		if ch.IsDirectMessage {
			kind = "dm"
		}
		fmt.Printf("  %s (%s): %d\n", ch.ChannelID, kind, ch.UnreadCount)
	}
	fmt.Printf("\n")

	return nil
}
