package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-resty/resty/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/httpbinder/internal/binder"
	"github.com/GriffinCanCode/httpbinder/internal/httpclient"
	"github.com/GriffinCanCode/httpbinder/internal/infrastructure/server"
	"github.com/GriffinCanCode/httpbinder/internal/infrastructure/tracing"
)

func newRootCommand() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:           "httpbinder",
		Short:         "Named HTTP client bindings",
		Long:          "httpbinder loads declarative HTTP client bindings and serves or exercises them.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&flags.bindingsFile, "bindings", "b", "", "bindings file (overrides BINDINGS_FILE)")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level (overrides LOG_LEVEL)")
	root.PersistentFlags().BoolVar(&flags.dev, "dev", false, "development logging")

	root.AddCommand(
		newServeCommand(flags),
		newBindingsCommand(flags),
		newGetCommand(flags),
	)
	return root
}

func newServeCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the admin server over the configured bindings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(flags)
			if err != nil {
				return err
			}
			defer a.close()

			srv, err := server.New(server.Options{
				Config:   a.config,
				Registry: a.registry,
				Logger:   a.logger,
				Metrics:  a.metrics,
				Gatherer: a.gatherer,
			})
			if err != nil {
				return err
			}

			a.logger.Info("httpbinder starting",
				zap.String("admin_addr", a.config.AdminAddr()),
				zap.Int("clients", len(a.registry.Bindings())),
			)
			return srv.Run(cmd.Context())
		},
	}
}

func newBindingsCommand(flags *globalFlags) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "bindings",
		Short: "Validate and print the configured bindings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(flags)
			if err != nil {
				return err
			}
			defer a.close()

			bindings := a.registry.Bindings()
			switch output {
			case "json":
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(bindings)
			case "text":
				return printBindings(cmd.OutOrStdout(), bindings)
			default:
				return fmt.Errorf("unknown output format %q", output)
			}
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format (text, json)")
	return cmd
}

func printBindings(w io.Writer, bindings []binder.BindingInfo) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tQUALIFIER\tALIASES\tFILTERS\tSOCKET\tPOOL")
	for _, b := range bindings {
		pool := "shared"
		if b.PrivatePool {
			pool = "private"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n",
			b.Name,
			b.Qualifier,
			orDash(strings.Join(b.Aliases, ",")),
			b.Filters,
			orDash(strings.Join(b.SocketConfigurators, ",")),
			pool,
		)
	}
	return tw.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// contentType prefers the declared type and sniffs the body otherwise.
func contentType(resp *resty.Response) string {
	if ct := resp.Header().Get("Content-Type"); ct != "" {
		return ct
	}
	return mimetype.Detect(resp.Body()).String()
}

func newGetCommand(flags *globalFlags) *cobra.Command {
	var (
		headers []string
		trace   bool
	)

	cmd := &cobra.Command{
		Use:   "get <qualifier> <url>",
		Short: "Issue a GET through a bound client and print the body",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(flags)
			if err != nil {
				return err
			}
			defer a.close()

			client, err := a.registry.Client(httpclient.Qualifier(args[0]))
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if trace {
				ctx = tracing.WithTraceID(ctx, tracing.NewTraceID())
			}

			req, err := client.R(ctx)
			if err != nil {
				return err
			}
			for _, h := range headers {
				name, value, ok := strings.Cut(h, ":")
				if !ok {
					return fmt.Errorf("invalid header %q, want Name: value", h)
				}
				req.SetHeader(strings.TrimSpace(name), strings.TrimSpace(value))
			}

			resp, err := client.Execute(func() (*resty.Response, error) {
				return req.Get(args[1])
			})
			if err != nil {
				return err
			}

			a.logger.Info("request completed",
				zap.String("client", client.Name()),
				zap.Int("status", resp.StatusCode()),
				zap.String("content_type", contentType(resp)),
				zap.Duration("duration", resp.Time()),
			)
			if _, err := cmd.OutOrStdout().Write(resp.Body()); err != nil {
				return err
			}
			if resp.IsError() {
				return fmt.Errorf("%s returned %s", args[1], resp.Status())
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&headers, "header", "H", nil, "extra request header, Name: value")
	cmd.Flags().BoolVar(&trace, "trace", false, "attach a fresh trace id")
	return cmd
}
