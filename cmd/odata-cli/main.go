package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vportal/odata-client/internal/annotations"
	"github.com/vportal/odata-client/internal/client"
	"github.com/vportal/odata-client/internal/config"
	"github.com/vportal/odata-client/internal/constants"
	"github.com/vportal/odata-client/internal/debug"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "odata-cli",
	Short: "OData v4 command line client with transparent CSRF token handling",
	Long: `OData v4 command line client with transparent CSRF token handling.

Requests against SAP-style services that reject calls with 403 and
"X-CSRF-Token: required" are retried once automatically after a token
refresh; no manual token handling is needed.

Examples:
  odata-cli list Products --service https://my-service.com/odata/ --top 10
  odata-cli get Products "'HT-1000'" -u admin -p secret
  odata-cli create Products --data '{"Name":"Notebook"}'
  odata-cli annotations --file annotations.xml SalesOrder.Item`,
	SilenceUsage: true,
}

func init() {
	// Load .env file if it exists
	godotenv.Load()

	cfg = &config.Config{}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfg.ServiceURL, "service", "", "URL of the OData v4 service (overrides ODATA_SERVICE_URL env var)")
	pf.StringVarP(&cfg.Username, "user", "u", "", "Username for basic authentication (overrides ODATA_USERNAME env var)")
	pf.StringVarP(&cfg.Password, "password", "p", "", "Password for basic authentication (overrides ODATA_PASSWORD env var)")
	pf.StringArrayVarP(&cfg.Headers, "header", "H", nil, "Additional default header in 'Name: Value' form (repeatable)")
	pf.BoolVarP(&cfg.Verbose, "verbose", "v", false, "Enable verbose output to stderr")
	pf.IntVar(&cfg.TimeoutSeconds, "timeout", constants.DefaultTimeout, "HTTP timeout in seconds")

	viper.BindPFlag("service_url", pf.Lookup("service"))
	viper.BindPFlag("username", pf.Lookup("user"))
	viper.BindPFlag("password", pf.Lookup("password"))
	viper.BindPFlag("verbose", pf.Lookup("verbose"))

	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.SetEnvPrefix("ODATA")
	viper.AutomaticEnv()

	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newGetCmd())
	rootCmd.AddCommand(newCreateCmd())
	rootCmd.AddCommand(newUpdateCmd())
	rootCmd.AddCommand(newDeleteCmd())
	rootCmd.AddCommand(newActionCmd())
	rootCmd.AddCommand(newTokenCmd())
	rootCmd.AddCommand(newAnnotationsCmd())
}

// newClient validates configuration and constructs the request client
func newClient() (*client.Client, error) {
	if cfg.ServiceURL == "" {
		cfg.ServiceURL = viper.GetString("service_url")
	}
	if cfg.ServiceURL == "" {
		cfg.ServiceURL = viper.GetString("url")
	}
	if cfg.ServiceURL == "" {
		return nil, fmt.Errorf("OData service URL not provided. Use --service or the ODATA_SERVICE_URL environment variable")
	}
	parsed, err := url.Parse(cfg.ServiceURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("%s: %q", constants.ErrInvalidServiceURL, cfg.ServiceURL)
	}

	if cfg.Username == "" {
		cfg.Username = viper.GetString("username")
	}
	if cfg.Password == "" {
		cfg.Password = viper.GetString("password")
	}

	if err := cfg.ParseHeaders(); err != nil {
		return nil, err
	}

	c := client.New(cfg.ServiceURL, cfg.ParsedHeaders, cfg.Verbose)
	if cfg.HasBasicAuth() {
		c.SetBasicAuth(cfg.Username, cfg.Password)
		if cfg.Verbose {
			fmt.Fprintf(os.Stderr, "[VERBOSE] Using basic authentication as %s\n", cfg.Username)
		}
	}
	if cfg.TimeoutSeconds > 0 {
		c.SetHTTPClient(&http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second})
	}
	return c, nil
}

func newListCmd() *cobra.Command {
	var filter, selectFields, expand, orderBy string
	var top, skip int
	var count bool

	cmd := &cobra.Command{
		Use:   "list <entity-set>",
		Short: "Retrieve entities from an entity set",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}

			options := map[string]string{
				constants.QueryFilter:  filter,
				constants.QuerySelect:  selectFields,
				constants.QueryExpand:  expand,
				constants.QueryOrderBy: orderBy,
			}
			if top > 0 {
				options[constants.QueryTop] = strconv.Itoa(top)
			}
			if skip > 0 {
				options[constants.QuerySkip] = strconv.Itoa(skip)
			}
			if count {
				options[constants.QueryCount] = "true"
			}

			resp, err := c.GetEntitySet(cmd.Context(), args[0], options)
			if err != nil {
				return err
			}
			return printJSON(resp)
		},
	}

	cmd.Flags().StringVar(&filter, "filter", "", "OData $filter expression")
	cmd.Flags().StringVar(&selectFields, "select", "", "OData $select list")
	cmd.Flags().StringVar(&expand, "expand", "", "OData $expand list")
	cmd.Flags().StringVar(&orderBy, "orderby", "", "OData $orderby expression")
	cmd.Flags().IntVar(&top, "top", 0, "OData $top limit")
	cmd.Flags().IntVar(&skip, "skip", 0, "OData $skip offset")
	cmd.Flags().BoolVar(&count, "count", false, "Request @odata.count")
	return cmd
}

func newGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <entity-set> <key>",
		Short: "Retrieve a single entity by key",
		Long: `Retrieve a single entity by key.

The key is either a simple value ("'HT-1000'", 42) or a JSON object for
composite keys ('{"OrderID": 1, "ItemID": 10}').`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			key, err := parseKey(args[1])
			if err != nil {
				return err
			}
			resp, err := c.GetEntity(cmd.Context(), args[0], key, nil)
			if err != nil {
				return err
			}
			return printJSON(resp)
		},
	}
	return cmd
}

func newCreateCmd() *cobra.Command {
	var data string

	cmd := &cobra.Command{
		Use:   "create <entity-set>",
		Short: "Create a new entity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			payload, err := parseData(data)
			if err != nil {
				return err
			}
			resp, err := c.CreateEntity(cmd.Context(), args[0], payload)
			if err != nil {
				return err
			}
			return printJSON(resp)
		},
	}

	cmd.Flags().StringVar(&data, "data", "", "Entity data as JSON (required)")
	cmd.MarkFlagRequired("data")
	return cmd
}

func newUpdateCmd() *cobra.Command {
	var data, method string

	cmd := &cobra.Command{
		Use:   "update <entity-set> <key>",
		Short: "Update an existing entity",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			key, err := parseKey(args[1])
			if err != nil {
				return err
			}
			payload, err := parseData(data)
			if err != nil {
				return err
			}
			method = strings.ToUpper(method)
			if method != constants.PATCH && method != constants.PUT {
				return fmt.Errorf("unsupported update method %q, use PATCH or PUT", method)
			}
			resp, err := c.UpdateEntity(cmd.Context(), args[0], key, payload, method)
			if err != nil {
				return err
			}
			return printJSON(resp)
		},
	}

	cmd.Flags().StringVar(&data, "data", "", "Entity data as JSON (required)")
	cmd.Flags().StringVar(&method, "method", constants.PATCH, "HTTP method: PATCH (merge) or PUT (replace)")
	cmd.MarkFlagRequired("data")
	return cmd
}

func newDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <entity-set> <key>",
		Short: "Delete an entity",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			key, err := parseKey(args[1])
			if err != nil {
				return err
			}
			if _, err := c.DeleteEntity(cmd.Context(), args[0], key); err != nil {
				return err
			}
			fmt.Println("deleted")
			return nil
		},
	}
	return cmd
}

func newActionCmd() *cobra.Command {
	var params string

	cmd := &cobra.Command{
		Use:   "action <action-import>",
		Short: "Invoke an action import (POST)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			var payload map[string]interface{}
			if params != "" {
				payload, err = parseData(params)
				if err != nil {
					return err
				}
			}
			resp, err := c.CallAction(cmd.Context(), args[0], payload)
			if err != nil {
				return err
			}
			return printJSON(resp)
		},
	}

	cmd.Flags().StringVar(&params, "params", "", "Action parameters as JSON")
	return cmd
}

func newTokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "token",
		Short: "Fetch a CSRF token from the service and print it masked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			if err := c.RefreshSecurityToken(cmd.Context()); err != nil {
				return err
			}
			fmt.Println(debug.MaskToken(c.SecurityToken()))
			return nil
		},
	}
}

func newAnnotationsCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "annotations [target]",
		Short: "Inspect a UI annotation document (EDMX/CSDL XML)",
		Long: `Inspect a UI annotation document (EDMX/CSDL XML).

Without a target, lists every annotation target in the document. With a
target, prints its line item fields, header info, and selection fields.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				file = cfg.AnnotationsFile
			}
			if file == "" {
				file = viper.GetString("annotations_file")
			}
			if file == "" {
				return fmt.Errorf("annotation document not provided, use --file")
			}
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("failed to read annotation document: %w", err)
			}
			doc, err := annotations.Parse(data)
			if err != nil {
				return err
			}

			if len(args) == 0 {
				for _, target := range doc.Targets() {
					fmt.Println(target)
				}
				return nil
			}

			target := args[0]
			summary := map[string]interface{}{
				"target": target,
			}
			if info := doc.HeaderInfo(target); info != nil {
				summary["headerInfo"] = info
			}
			if fields := doc.LineItem(target); fields != nil {
				summary["lineItem"] = fields
			}
			if fields := doc.Identification(target); fields != nil {
				summary["identification"] = fields
			}
			if paths := doc.SelectionFields(target); paths != nil {
				summary["selectionFields"] = paths
			}
			if contact := doc.Contact(target); contact != nil {
				summary["contact"] = contact
			}
			return printJSON(summary)
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Path to the annotation XML document")
	return cmd
}

// parseKey accepts a JSON object for composite keys or a single literal
func parseKey(raw string) (map[string]interface{}, error) {
	if strings.HasPrefix(strings.TrimSpace(raw), "{") {
		var key map[string]interface{}
		if err := json.Unmarshal([]byte(raw), &key); err != nil {
			return nil, fmt.Errorf("invalid key JSON: %w", err)
		}
		return key, nil
	}

	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return map[string]interface{}{"": n}, nil
	}
	return map[string]interface{}{"": strings.Trim(raw, "'")}, nil
}

func parseData(raw string) (map[string]interface{}, error) {
	var data map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, fmt.Errorf("invalid data JSON: %w", err)
	}
	return data, nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
