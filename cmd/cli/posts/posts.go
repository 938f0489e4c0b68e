package posts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/crucial707/blog-api/cmd/cli/config"
	"github.com/crucial707/blog-api/cmd/cli/output"
	"github.com/crucial707/blog-api/internal/models"
	"github.com/spf13/cobra"
)

// ==========================
// Init Posts
// ==========================
func InitPosts(rootCmd *cobra.Command) {

	postsCmd := &cobra.Command{
		Use:   "posts",
		Short: "Manage blog posts",
	}

	postsCmd.AddCommand(
		listPostsCmd(),
		getPostCmd(),
		createPostCmd(),
		updatePostCmd(),
		deletePostCmd(),
	)

	rootCmd.AddCommand(postsCmd)
}

// ==========================
// LIST
// ==========================
func listPostsCmd() *cobra.Command {
	var page, limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List posts, newest first",
		Run: func(cmd *cobra.Command, args []string) {

			url := config.APIURL() + "/posts"
			if page > 0 && limit > 0 {
				url += "?page=" + strconv.Itoa(page) + "&limit=" + strconv.Itoa(limit)
			}

			resp, err := http.Get(url)
			if err != nil {
				fmt.Println(err)
				return
			}
			defer resp.Body.Close()

			var posts []models.Post
			if err := json.NewDecoder(resp.Body).Decode(&posts); err != nil {
				fmt.Println(err)
				return
			}

			if asJSON {
				b, _ := json.MarshalIndent(posts, "", "  ")
				fmt.Println(string(b))
				return
			}

			rows := make([][]interface{}, 0, len(posts))
			for _, p := range posts {
				rows = append(rows, []interface{}{p.ID, p.Title, p.Author, p.Category, p.ReadTime, p.Views})
			}
			output.RenderTable([]string{"ID", "Title", "Author", "Category", "Read time", "Views"}, rows)
		},
	}

	cmd.Flags().IntVar(&page, "page", 0, "Page number (requires --limit)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Posts per page (requires --page)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print raw JSON instead of a table")

	return cmd
}

// ==========================
// GET
// ==========================
func getPostCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one post (counts as a view)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := http.Get(config.APIURL() + "/posts/" + args[0])
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				b, _ := io.ReadAll(resp.Body)
				return fmt.Errorf("API error: %s", string(b))
			}

			var post models.Post
			if err := json.NewDecoder(resp.Body).Decode(&post); err != nil {
				return err
			}
			b, _ := json.MarshalIndent(post, "", "  ")
			fmt.Println(string(b))
			return nil
		},
	}
}

// ==========================
// CREATE
// ==========================
func createPostCmd() *cobra.Command {
	var title, content, author, tags, category string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a post",
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]string{
				"title":   title,
				"content": content,
				"author":  author,
			}
			if tags != "" {
				payload["tags"] = tags
			}
			if category != "" {
				payload["category"] = category
			}

			if err := authedJSON("POST", "/posts", payload); err != nil {
				return err
			}
			fmt.Println("Post created.")
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Post title")
	cmd.Flags().StringVar(&content, "content", "", "Post content")
	cmd.Flags().StringVar(&author, "author", "", "Author display name")
	cmd.Flags().StringVar(&tags, "tags", "", "Comma-separated tags")
	cmd.Flags().StringVar(&category, "category", "", "Category")
	cmd.MarkFlagRequired("title")
	cmd.MarkFlagRequired("content")
	cmd.MarkFlagRequired("author")

	return cmd
}

// ==========================
// UPDATE
// ==========================
func updatePostCmd() *cobra.Command {
	var title, content, tags, category string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a post you own",
		Long: `Update a post. The API overwrites title, content, tags, and category
from the payload every time; flags you leave unset are cleared on the server.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]string{}
			for flag, val := range map[string]string{
				"title": title, "content": content, "tags": tags, "category": category,
			} {
				if cmd.Flags().Changed(flag) {
					payload[flag] = val
				}
			}

			if err := authedJSON("PUT", "/posts/"+args[0], payload); err != nil {
				return err
			}
			fmt.Println("Post updated.")
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Post title")
	cmd.Flags().StringVar(&content, "content", "", "Post content")
	cmd.Flags().StringVar(&tags, "tags", "", "Comma-separated tags")
	cmd.Flags().StringVar(&category, "category", "", "Category")

	return cmd
}

// ==========================
// DELETE
// ==========================
func deletePostCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a post you own",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := authedJSON("DELETE", "/posts/"+args[0], nil); err != nil {
				return err
			}
			fmt.Println("Post deleted.")
			return nil
		},
	}
}

// authedJSON sends a request with the stored bearer token.
func authedJSON(method, path string, payload interface{}) error {
	token, err := config.ReadToken()
	if err != nil {
		return fmt.Errorf("please login first")
	}

	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, config.APIURL()+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API error: %s", string(b))
	}
	return nil
}
