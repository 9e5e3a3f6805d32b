package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lakesync/internal/core/domain"
	"github.com/custodia-labs/lakesync/internal/logger"
)

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Read synchronised documents",
	Long: `Read documents from the node store.

With the memory store the dataset is loaded first, so these commands
always show the current upstream state. With the sqlite store they read
what the last sync left behind.`,
}

var documentGetCmd = &cobra.Command{
	Use:   "get [doc-id]",
	Short: "Print a document as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentGet,
}

var documentListCmd = &cobra.Command{
	Use:   "list [type]",
	Short: "List documents of a type",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentList,
}

var documentTypesCmd = &cobra.Command{
	Use:   "types",
	Short: "List collections that hold documents",
	Args:  cobra.NoArgs,
	RunE:  runDocumentTypes,
}

// Flags for the get and list commands.
var (
	resolveDepth int
	byCollection bool
)

func init() {
	documentGetCmd.Flags().IntVarP(&resolveDepth, "resolve-depth", "d", 0, "Expand references up to this depth")
	documentListCmd.Flags().BoolVarP(&byCollection, "collection", "c", false,
		"Treat the argument as a collection name from \"document types\"")

	documentCmd.AddCommand(documentGetCmd)
	documentCmd.AddCommand(documentListCmd)
	documentCmd.AddCommand(documentTypesCmd)
	rootCmd.AddCommand(documentCmd)
}

// openForRead builds the services and, for the memory store, runs the
// bulk load so there is something to read.
func openForRead(cmd *cobra.Command) (*app, error) {
	a, err := newApp(cmd, modeRead)
	if err != nil {
		return nil, err
	}
	if a.source.Store == domain.DefaultStore {
		logger.Info("Loading %s/%s into memory", a.source.ProjectID, a.source.Dataset)
		if err := a.sync.Sync(cmd.Context()); err != nil {
			a.Close()
			return nil, fmt.Errorf("loading dataset: %w", err)
		}
	}
	return a, nil
}

func runDocumentGet(cmd *cobra.Command, args []string) error {
	a, err := openForRead(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	docID := args[0]
	node, err := a.documents.Get(cmd.Context(), docID, resolveDepth)
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	data, err := json.MarshalIndent(node.Document, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func runDocumentList(cmd *cobra.Command, args []string) error {
	a, err := openForRead(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	typeTag := args[0]
	list := a.documents.List
	if byCollection {
		list = a.documents.ListCollection
	}
	nodes, err := list(cmd.Context(), typeTag)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if len(nodes) == 0 {
		cmd.Printf("No documents found for type: %s\n", typeTag)
		return nil
	}

	cmd.Printf("Documents of type %s:\n\n", typeTag)
	for i := range nodes {
		cmd.Printf("  %s\n", nodes[i].ID)
		if nodes[i].DocumentID() != nodes[i].ID {
			cmd.Printf("    Draft: %s\n", nodes[i].DocumentID())
		}
		if title := documentTitle(nodes[i].Document); title != "" {
			cmd.Printf("    Title: %s\n", title)
		}
	}

	cmd.Printf("\nTotal: %d documents\n", len(nodes))
	return nil
}

func runDocumentTypes(cmd *cobra.Command, _ []string) error {
	a, err := openForRead(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	types, err := a.documents.Types(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list types: %w", err)
	}

	if len(types) == 0 {
		cmd.Println("No documents synchronised yet.")
		return nil
	}
	for _, t := range types {
		cmd.Println(t)
	}
	return nil
}

// documentTitle picks a human label from the common title fields.
func documentTitle(doc domain.Document) string {
	for _, key := range []string{"title", "name"} {
		if s, ok := doc[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
