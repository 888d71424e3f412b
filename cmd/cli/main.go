package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	serverURL string
	rootCmd   = &cobra.Command{
		Use:   "vidfetch",
		Short: "Vidfetch CLI - remote media download manager",
		Long:  `A command-line interface for submitting and inspecting media download jobs.`,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "Server URL")

	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(fileCmd)
}

var addCmd = &cobra.Command{
	Use:   "add [url...]",
	Short: "Submit one or more URLs for download",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		quality, _ := cmd.Flags().GetString("quality")
		format, _ := cmd.Flags().GetString("format")

		payload := map[string]string{
			"urls":    strings.Join(args, "\n"),
			"quality": quality,
			"format":  format,
		}

		data, _ := json.Marshal(payload)
		resp, err := http.Post(serverURL+"/api/v1/jobs", "application/json", bytes.NewBuffer(data))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode != http.StatusCreated {
			fmt.Fprintf(os.Stderr, "Error: %s\n", string(body))
			os.Exit(1)
		}

		var result struct {
			Created []string `json:"created"`
			Errors  []struct {
				URL    string `json:"url"`
				Reason string `json:"reason"`
			} `json:"errors"`
		}
		json.Unmarshal(body, &result)

		fmt.Printf("Created %d job(s)\n", len(result.Created))
		for _, id := range result.Created {
			fmt.Printf("  %s\n", id)
		}
		for _, e := range result.Errors {
			fmt.Fprintf(os.Stderr, "Rejected %s: %s\n", e.URL, e.Reason)
		}
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List download jobs",
	Run: func(cmd *cobra.Command, args []string) {
		active, _ := cmd.Flags().GetBool("active")
		completed, _ := cmd.Flags().GetBool("completed")

		url := serverURL + "/api/v1/jobs"
		if active {
			url += "/active"
		} else if completed {
			url += "/completed"
		}

		resp, err := http.Get(url)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		var jobs []map[string]interface{}
		json.Unmarshal(body, &jobs)

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tURL\tPLATFORM\tSTATUS\tPROGRESS")
		for _, j := range jobs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.1f%%\n",
				truncate(str(j["id"]), 8),
				truncate(str(j["url"]), 40),
				str(j["platform"]),
				str(j["status"]),
				num(j["progress"]))
		}
		w.Flush()
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show job statistics",
	Run: func(cmd *cobra.Command, args []string) {
		resp, err := http.Get(serverURL + "/api/v1/jobs/stats")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		var stats map[string]interface{}
		json.Unmarshal(body, &stats)

		fmt.Println("Job Statistics:")
		fmt.Printf("  Total:       %v\n", stats["total"])
		fmt.Printf("  Pending:     %v\n", stats["pending"])
		fmt.Printf("  Downloading: %v\n", stats["downloading"])
		fmt.Printf("  Converting:  %v\n", stats["converting"])
		fmt.Printf("  Completed:   %v\n", stats["completed"])
		fmt.Printf("  Failed:      %v\n", stats["failed"])
	},
}

var getCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Get job details",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		resp, err := http.Get(serverURL + "/api/v1/jobs/" + args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode != http.StatusOK {
			fmt.Fprintf(os.Stderr, "Error: %s\n", string(body))
			os.Exit(1)
		}

		var job map[string]interface{}
		json.Unmarshal(body, &job)

		fmt.Printf("Job Details:\n")
		fmt.Printf("  ID:       %s\n", job["id"])
		fmt.Printf("  URL:      %s\n", job["url"])
		fmt.Printf("  Platform: %s\n", job["platform"])
		fmt.Printf("  Status:   %s\n", job["status"])
		fmt.Printf("  Progress: %.1f%%\n", num(job["progress"]))
		fmt.Printf("  Quality:  %s\n", job["quality"])
		fmt.Printf("  Format:   %s\n", job["format"])
		if job["title"] != nil {
			fmt.Printf("  Title:    %s\n", job["title"])
		}
		if job["file_path"] != nil {
			fmt.Printf("  File:     %s\n", job["file_path"])
		}
		if job["error_message"] != nil {
			fmt.Printf("  Error:    %s\n", job["error_message"])
		}
	},
}

var fileCmd = &cobra.Command{
	Use:   "file [id]",
	Short: "Fetch a completed job's artifact into the current directory",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		resp, err := http.Get(serverURL + "/api/v1/jobs/" + args[0] + "/file")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			fmt.Fprintf(os.Stderr, "Error: %s\n", string(body))
			os.Exit(1)
		}

		name := filenameFromHeader(resp.Header.Get("Content-Disposition"))
		if name == "" {
			name = args[0]
		}

		out, err := os.Create(name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer out.Close()

		n, err := io.Copy(out, resp.Body)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s (%d bytes)\n", name, n)
	},
}

func init() {
	addCmd.Flags().StringP("quality", "q", "best", "Quality selector (best, worst, or a height like 720p)")
	addCmd.Flags().StringP("format", "f", "mp4", "Output format (mp4, mp3, webm, avi)")
	listCmd.Flags().Bool("active", false, "Only active jobs")
	listCmd.Flags().Bool("completed", false, "Only completed jobs")
}

func filenameFromHeader(disposition string) string {
	const marker = `filename="`
	idx := strings.Index(disposition, marker)
	if idx < 0 {
		return ""
	}
	rest := disposition[idx+len(marker):]
	end := strings.Index(rest, `"`)
	if end < 0 {
		return ""
	}
	return rest[:end]
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func str(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func num(v interface{}) float64 {
	if f, ok := v.(float64); ok {
		return f
	}
	return 0
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
