package cli

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/confab-io/confab/internal/tui"
)

var conversationsCmd = &cobra.Command{
	Use:     "conversations",
	Aliases: []string{"conv"},
	Short:   "Work with stored conversations",
	Long: `Work with the conversations the daemon currently holds in memory.
Conversations live for the daemon's lifetime; restarting it clears them.`,
	RunE: runConversationsList,
}

var conversationsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List stored conversations",
	RunE:    runConversationsList,
}

var conversationsShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Print one conversation",
	Args:  cobra.ExactArgs(1),
	RunE:  runConversationsShow,
}

var conversationsSaveCmd = &cobra.Command{
	Use:   "save [id] [content]",
	Short: "Save a conversation",
	Long: `Save a conversation under the given id, overwriting any previous
content. Content is read from stdin when omitted or given as "-".
Without an id a fresh one is minted and printed.`,
	Args: cobra.MaximumNArgs(2),
	RunE: runConversationsSave,
}

var conversationsBrowseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse conversations interactively",
	RunE:  runConversationsBrowse,
}

func init() {
	conversationsCmd.AddCommand(conversationsBrowseCmd)
	conversationsCmd.AddCommand(conversationsListCmd)
	conversationsCmd.AddCommand(conversationsSaveCmd)
	conversationsCmd.AddCommand(conversationsShowCmd)
}

func runConversationsList(cmd *cobra.Command, args []string) error {
	client, err := connectDaemon()
	if err != nil {
		printDaemonNotRunning()
		return nil
	}

	conversations, err := client.loadConversations()
	if err != nil {
		return fmt.Errorf("failed to load conversations: %s", err)
	}

	if len(conversations) == 0 {
		fmt.Println("No conversations saved yet.")
		return nil
	}

	ids := make([]string, 0, len(conversations))
	for id := range conversations {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	fmt.Printf("Conversations (%d):\n", len(ids))
	for _, id := range ids {
		fmt.Printf("  %-36s  %s\n", id, styleHint.Render(previewLine(conversations[id], 60)))
	}

	return nil
}

func runConversationsShow(cmd *cobra.Command, args []string) error {
	client, err := connectDaemon()
	if err != nil {
		printDaemonNotRunning()
		return nil
	}

	conversations, err := client.loadConversations()
	if err != nil {
		return fmt.Errorf("failed to load conversations: %s", err)
	}

	content, ok := conversations[args[0]]
	if !ok {
		return fmt.Errorf("conversation %q not found", args[0])
	}

	fmt.Print(content)
	if !strings.HasSuffix(content, "\n") {
		fmt.Println()
	}
	return nil
}

func runConversationsSave(cmd *cobra.Command, args []string) error {
	if err := EnsureDaemon(); err != nil {
		return err
	}
	client, err := connectDaemon()
	if err != nil {
		return err
	}

	id := ""
	if len(args) >= 1 {
		id = args[0]
	}
	if id == "" {
		id = uuid.NewString()
	}

	var content string
	if len(args) == 2 && args[1] != "-" {
		content = args[1]
	} else {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		content = string(data)
	}

	if err := client.saveConversation(id, content); err != nil {
		return fmt.Errorf("save failed: %s", err)
	}

	fmt.Printf("Saved conversation %s (%d bytes).\n", id, len(content))
	return nil
}

func runConversationsBrowse(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		// Not a terminal: fall back to the plain listing.
		return runConversationsList(cmd, args)
	}

	if err := EnsureDaemon(); err != nil {
		return err
	}
	client, err := connectDaemon()
	if err != nil {
		return err
	}

	return tui.Browse(func() ([]tui.Conversation, error) {
		snapshot, err := client.loadConversations()
		if err != nil {
			return nil, err
		}
		items := make([]tui.Conversation, 0, len(snapshot))
		for id, content := range snapshot {
			items = append(items, tui.Conversation{ID: id, Content: content})
		}
		sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
		return items, nil
	})
}

// previewLine returns the first line of content, truncated to max
// runes.
func previewLine(content string, max int) string {
	line := content
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	runes := []rune(line)
	if len(runes) > max {
		return string(runes[:max-1]) + "…"
	}
	return line
}
