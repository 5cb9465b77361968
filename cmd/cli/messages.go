package main

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

var savedCmd = &cobra.Command{
	Use:   "saved",
	Short: "List your saved messages",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showSaved()
	},
}

var (
	filesFileType string
	filesFileName string
	filesLimit    int
)

var filesCmd = &cobra.Command{
	Use:   "files <channel-id>",
	Short: "Browse the files shared in a channel",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return showFiles(args[0])
	},
}

func init() {
	filesCmd.Flags().StringVar(&filesFileType, "type", "", "Filter by file type: image, pdf, doc, ppt, xls")
	filesCmd.Flags().StringVar(&filesFileName, "name", "", "Filter by file name substring")
	filesCmd.Flags().IntVar(&filesLimit, "limit", 20, "Maximum number of files to list")
}

func showSaved() error {
	body, err := apiGet("/api/v1/messages/saved")
	if err != nil {
		return err
	}

	if output == "json" {
		fmt.Println(string(body))
		return nil
	}

	var result struct {
		Messages []struct {
			ID        string `json:"id"`
			ChannelID string `json:"channel_id"`
			Text      string `json:"text"`
			Creation  string `json:"creation"`
		} `json:"messages"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	fmt.Printf("\n🔖 Saved Messages (%d)\n", len(result.Messages))
	fmt.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	for _, m := range result.Messages {
		text := m.Text
		if len(text) > 60 {
			text = text[:57] + "..."
		}
		fmt.Printf("  [%s] %s\n", m.Creation, text)
	}
	fmt.Printf("\n")

	return nil
}

func showFiles(channelID string) error {
	query := url.Values{}
	if filesFileType != "" {
		query.Set("file_type", filesFileType)
	}
	if filesFileName != "" {
		query.Set("file_name", filesFileName)
	}
	query.Set("limit", fmt.Sprintf("%d", filesLimit))

	body, err := apiGet("/api/v1/channels/" + url.PathEscape(channelID) + "/files?" + query.Encode())
	if err != nil {
		return err
	}

	if output == "json" {
		fmt.Println(string(body))
		return nil
	}

	var result struct {
		Files []struct {
			FileName string `json:"file_name"`
			FileType string `json:"file_type"`
			FileSize int64  `json:"file_size"`
			FullName string `json:"full_name"`
			Creation string `json:"creation"`
		} `json:"files"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	fmt.Printf("\n📎 Files in %s (%d)\n", channelID, len(result.Files))
	fmt.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	for _, f := range result.Files {
		fmt.Printf("  %s (%s, %d bytes) shared by %s on %s\n",
			f.FileName, f.FileType, f.FileSize, f.FullName, f.Creation)
	}
	fmt.Printf("\n")

	return nil
}
