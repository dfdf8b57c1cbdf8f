// Package cli exposes the action router as cobra commands. Each registered
// resource becomes a command; its operations become subcommands whose
// results are written as hypermedia documents and printed by a formatter.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/artpar/hyperapi/core/action"
	"github.com/artpar/hyperapi/core/document"
	"github.com/artpar/hyperapi/core/form"
	"github.com/artpar/hyperapi/core/formatter"
	"github.com/artpar/hyperapi/core/mapper"
	"github.com/artpar/hyperapi/core/pagination"
	"github.com/artpar/hyperapi/core/registry"
	"github.com/artpar/hyperapi/core/writer"
)

// Options configure a Channel.
type Options struct {
	Registry *registry.Registry
	Router   *action.Router
	Writer   *writer.Writer

	// Format is the hypermedia format documents are written in before
	// printing.
	Format mapper.Format

	// Formatters defaults to formatter.DefaultRegistry.
	Formatters *formatter.Registry

	// ServerURL is the base of the URLs printed in documents.
	ServerURL string

	// Credentials are the caller's; nil means anonymous.
	Credentials action.Credentials

	Language language.Tag
	Out      io.Writer
}

// Channel implements the CLI channel.
type Channel struct {
	rootCmd    *cobra.Command
	registry   *registry.Registry
	router     *action.Router
	writer     *writer.Writer
	format     mapper.Format
	formatters *formatter.Registry
	serverURL  string
	creds      action.Credentials
	lang       language.Tag
	out        io.Writer
}

// New creates a new CLI channel.
func New(rootCmd *cobra.Command, opts Options) *Channel {
	c := &Channel{
		rootCmd:    rootCmd,
		registry:   opts.Registry,
		router:     opts.Router,
		writer:     opts.Writer,
		format:     opts.Format,
		formatters: opts.Formatters,
		serverURL:  opts.ServerURL,
		creds:      opts.Credentials,
		lang:       opts.Language,
		out:        opts.Out,
	}
	if c.formatters == nil {
		c.formatters = formatter.DefaultRegistry
	}
	if c.creds == nil {
		c.creds = action.Anonymous
	}
	if c.out == nil {
		c.out = os.Stdout
	}
	return c
}

// Name returns the channel name.
func (c *Channel) Name() string {
	return "cli"
}

// Register adds one command per registered resource.
func (c *Channel) Register() error {
	byResource := make(map[string][]*action.Action)
	for _, a := range c.router.Actions() {
		byResource[a.Key.Resource] = append(byResource[a.Key.Resource], a)
	}

	names := make([]string, 0, len(byResource))
	for name := range byResource {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		resourceCmd := &cobra.Command{
			Use:   name,
			Short: fmt.Sprintf("Manage %s", name),
		}
		for _, a := range byResource[name] {
			cmd, err := c.buildActionCommand(a)
			if err != nil {
				return err
			}
			if cmd != nil {
				resourceCmd.AddCommand(cmd)
			}
		}
		c.rootCmd.AddCommand(resourceCmd)
	}
	return nil
}

// Start is a no-op for the CLI channel.
func (c *Channel) Start(ctx context.Context) error {
	return nil
}

// Stop is a no-op for the CLI channel.
func (c *Channel) Stop(ctx context.Context) error {
	return nil
}

// CommandName derives the subcommand verb from an action key: list/create
// on collections, get/replace/update/delete on items and
// list-<nested>/create-<nested> below items.
func CommandName(key action.Key) string {
	verb := map[string]string{
		"GET":    "get",
		"POST":   "create",
		"PUT":    "replace",
		"PATCH":  "update",
		"DELETE": "delete",
	}[key.Method]
	if verb == "" {
		verb = strings.ToLower(key.Method)
	}

	switch key.Kind() {
	case action.KindCollection:
		if key.Method == "GET" {
			return "list"
		}
		return verb
	case action.KindItem:
		return verb
	case action.KindCustomCollection:
		return key.Item
	case action.KindNested:
		if key.Method == "GET" {
			return "list-" + key.Nested
		}
		return verb + "-" + key.Nested
	case action.KindCustomNested:
		return key.Nested + "-" + key.Extra
	default:
		return ""
	}
}

// buildActionCommand creates a cobra command for an action.
func (c *Channel) buildActionCommand(a *action.Action) (*cobra.Command, error) {
	name := CommandName(a.Key)
	if name == "" {
		return nil, nil
	}

	takesID := a.Key.Item == action.AnyRoute
	use := name
	args := cobra.NoArgs
	if takesID {
		use += " <id>"
		args = cobra.ExactArgs(1)
	}

	short := a.Description
	if short == "" {
		short = a.Key.String()
	}

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			segments := a.Key.Segments()
			if takesID {
				segments[1] = args[0]
			}
			return c.run(cmd, a, segments)
		},
	}

	if a.Form != nil {
		for _, fd := range a.Form.FieldDescriptors() {
			usage := string(fd.Type)
			if fd.Required {
				usage += " (required)"
			}
			cmd.Flags().String(fd.Name, "", usage)
			if fd.Required {
				if err := cmd.MarkFlagRequired(fd.Name); err != nil {
					return nil, err
				}
			}
		}
	}
	if a.Returns == action.ReturnsPage {
		cmd.Flags().Int("page", 1, "Page number")
		cmd.Flags().Int("per-page", pagination.DefaultPerPage, "Items per page")
	}
	if a.Returns != action.ReturnsNothing {
		c.addOutputFlags(cmd)
	}
	if a.Key.Method == "DELETE" {
		cmd.Flags().BoolP("force", "f", false, "Delete without confirmation")
	}

	return cmd, nil
}

func (c *Channel) run(cmd *cobra.Command, a *action.Action, segments []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if a.Key.Method == "DELETE" {
		if force, _ := cmd.Flags().GetBool("force"); !force {
			fmt.Fprintf(c.out, "Are you sure you want to delete %s? (use --force to confirm)\n", strings.Join(segments, "/"))
			return nil
		}
	}

	if !a.Permission.Allowed(ctx, c.creds) {
		return fmt.Errorf("%s: %w", a.Key, action.ErrForbidden)
	}

	var body any
	if a.Form != nil {
		data, err := collectInput(cmd, a.Form.FieldDescriptors())
		if err != nil {
			return err
		}
		if body, err = a.Decode(data); err != nil {
			return err
		}
	}

	key, err := action.NewKey(a.Key.Method, segments...)
	if err != nil {
		return err
	}

	req := action.Request{
		Key:         key,
		Body:        body,
		Credentials: c.creds,
		Page:        pageParams(cmd),
		Language:    c.lang,
	}
	result, err := a.Handler(ctx, req)
	if err != nil {
		return err
	}

	if a.Returns == action.ReturnsNothing || result == nil {
		fmt.Fprintf(c.out, "%s: done\n", key)
		return nil
	}

	doc, err := c.document(ctx, a, result)
	if err != nil {
		return err
	}
	return c.print(cmd, a, doc)
}

// document writes the result; pages become an array of item documents.
func (c *Channel) document(ctx context.Context, a *action.Action, result any) (*document.Node, error) {
	wreq := writer.Request{ServerURL: c.serverURL, Language: c.lang, Credentials: c.creds}

	if a.Returns != action.ReturnsPage {
		return c.writer.WriteDocument(ctx, wreq, c.format.SingleModel(), result, a.IdentifierType)
	}

	page, ok := result.(pagination.Page[any])
	if !ok {
		return nil, fmt.Errorf("%s: handler returned %T, want pagination.Page[any]", a.Key, result)
	}
	out := document.NewArray()
	for _, item := range page.Items {
		doc, err := c.writer.WriteDocument(ctx, wreq, c.format.SingleModel(), item, a.IdentifierType)
		if err != nil {
			return nil, err
		}
		out.Append(doc)
	}
	return out, nil
}

func (c *Channel) print(cmd *cobra.Command, a *action.Action, doc *document.Node) error {
	f := c.getFormatter(cmd)
	opts := c.getFormatOptions(cmd)
	if len(opts.Columns) == 0 && f.Name() == "table" {
		opts.Columns = c.defaultColumns(a.IdentifierType)
	}
	return f.Format(c.out, doc, opts)
}

// defaultColumns lists the scalar fields of the returned resource.
func (c *Channel) defaultColumns(identifierType string) []string {
	rep, ok := c.registry.Representor(identifierType)
	if !ok {
		return nil
	}
	var cols []string
	for _, f := range rep.AllFields() {
		cols = append(cols, f.Key)
	}
	return cols
}

// addOutputFlags adds common output format flags to a command.
func (c *Channel) addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("output", "O", "table", "Output format: "+strings.Join(c.formatters.List(), ", "))
	cmd.Flags().StringSlice("columns", nil, "Keys to print")
	cmd.Flags().Bool("no-header", false, "Disable header row (table format)")
	cmd.Flags().Bool("compact", false, "Compact output (json)")
}

// getFormatter returns the formatter for the current command.
func (c *Channel) getFormatter(cmd *cobra.Command) formatter.Formatter {
	outputFmt, _ := cmd.Flags().GetString("output")
	if f, ok := c.formatters.Get(outputFmt); ok {
		return f
	}
	return c.formatters.Default()
}

// getFormatOptions builds format options from command flags.
func (c *Channel) getFormatOptions(cmd *cobra.Command) formatter.FormatOptions {
	columns, _ := cmd.Flags().GetStringSlice("columns")
	noHeader, _ := cmd.Flags().GetBool("no-header")
	compact, _ := cmd.Flags().GetBool("compact")

	return formatter.FormatOptions{
		Columns:  columns,
		NoHeader: noHeader,
		Compact:  compact,
		MaxWidth: 40,
	}
}

func pageParams(cmd *cobra.Command) pagination.Params {
	p := pagination.Params{Page: 1, PerPage: pagination.DefaultPerPage}
	if n, err := cmd.Flags().GetInt("page"); err == nil && n > 0 {
		p.Page = n
	}
	if n, err := cmd.Flags().GetInt("per-page"); err == nil && n > 0 {
		p.PerPage = min(n, pagination.MaxPerPage)
	}
	return p
}

// collectInput reads the form fields that were set on the command line.
func collectInput(cmd *cobra.Command, fields []form.FieldDescriptor) (map[string]any, error) {
	data := make(map[string]any)
	for _, fd := range fields {
		if !cmd.Flags().Changed(fd.Name) {
			continue
		}
		val, _ := cmd.Flags().GetString(fd.Name)
		v, err := convertInput(val, fd.Type)
		if err != nil {
			return nil, fmt.Errorf("--%s: %w", fd.Name, err)
		}
		data[fd.Name] = v
	}
	return data, nil
}

// convertInput converts a flag value to the raw body value the form
// expects for fieldType. Lists are comma-separated.
func convertInput(val string, fieldType form.FieldType) (any, error) {
	if fieldType.IsList() {
		var items []any
		for _, part := range strings.Split(val, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			v, err := convertInput(part, fieldType.Elem())
			if err != nil {
				return nil, err
			}
			items = append(items, v)
		}
		return items, nil
	}

	switch fieldType {
	case form.TypeLong:
		i, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q", val)
		}
		return i, nil
	case form.TypeDouble:
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", val)
		}
		return f, nil
	case form.TypeBoolean:
		switch strings.ToLower(val) {
		case "true", "1", "yes":
			return true, nil
		case "false", "0", "no":
			return false, nil
		}
		return nil, fmt.Errorf("invalid boolean %q", val)
	default:
		return val, nil
	}
}
