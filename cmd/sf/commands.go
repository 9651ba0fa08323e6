package main

import (
	"errors"
	"fmt"

	sfrest "github.com/natserract/sfrest/pkg/salesforce/rest"
	"github.com/natserract/sfrest/pkg/store/postgres"
	"github.com/spf13/cobra"
)

// runDemo authorizes, creates one Case and queries Cases. Create and query
// failures are reported independently.
func runDemo(cmd *cobra.Command, flags *rootFlags) error {
	ctx := cmd.Context()
	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()

	a, err := newApp(ctx, flags, errOut)
	if err != nil {
		return err
	}
	defer a.close()

	sess, err := a.client.Authorize(ctx)
	if err != nil {
		return fmt.Errorf("authorization failed: %w", err)
	}
	fmt.Fprintf(out, "Instance URL: %s\n", sess.InstanceURL)

	var errs []error

	fields := sfrest.Record{
		"Subject":  "Test case",
		"Priority": "High",
	}
	id, err := a.insert(ctx, sess, demoObjectType, fields)
	if err != nil {
		fmt.Fprintf(errOut, "Insert record failed: %v\n", err)
		errs = append(errs, err)
	} else {
		fmt.Fprintf(out, "Record created with ID: %s\n", id)
	}

	result, err := a.client.QueryRecords(ctx, sess, demoQuery)
	if err != nil {
		fmt.Fprintf(errOut, "Query records failed: %v\n", err)
		errs = append(errs, err)
	} else {
		fmt.Fprintln(out, "Query result:")
		if err := render(out, flags.output, result); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func newAuthorizeCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "authorize",
		Short: "Check the configured credentials",
		Long:  "Exchange the configured credentials for a session and print the instance URL.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.close()

			sess, err := a.client.Authorize(ctx)
			if err != nil {
				return fmt.Errorf("authorization failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Instance URL: %s\n", sess.InstanceURL)
			return nil
		},
	}
}

func newCreateCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "create OBJECT FIELD=VALUE...",
		Short: "Create a record",
		Long: `Create one record of the given object type.

Values that are valid JSON are sent as JSON (numbers, booleans, null, objects),
anything else is sent as a string.`,
		Example: `  sf create Case Subject="Printer jam" Priority=High
  sf create Account Name=Acme NumberOfEmployees=42`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, err := parseFields(args[1:])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			a, err := newApp(ctx, flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.close()

			sess, err := a.client.Authorize(ctx)
			if err != nil {
				return fmt.Errorf("authorization failed: %w", err)
			}

			id, err := a.insert(ctx, sess, args[0], fields)
			if err != nil {
				return fmt.Errorf("insert record failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Record created with ID: %s\n", id)
			return nil
		},
	}
}

func newQueryCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "query SOQL",
		Short:   "Run a SOQL query",
		Example: `  sf query "SELECT Id, Subject FROM Case LIMIT 10"`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.close()

			sess, err := a.client.Authorize(ctx)
			if err != nil {
				return fmt.Errorf("authorization failed: %w", err)
			}

			result, err := a.client.QueryRecords(ctx, sess, args[0])
			if err != nil {
				return fmt.Errorf("query records failed: %w", err)
			}
			return render(cmd.OutOrStdout(), flags.output, result)
		},
	}
}

func newRecordsCommand(flags *rootFlags) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "records",
		Short: "List records logged with --persist",
		Long:  "List the newest records saved to the Postgres audit log (DB_* environment). Salesforce is not contacted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger, err := newLogger(flags.verbose)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			a := &app{logger: logger}
			defer a.close()

			if err := a.openRecordLog(ctx); err != nil {
				return err
			}
			records, err := a.recordLog.Recent(ctx, limit)
			if err != nil {
				return err
			}
			if records == nil {
				records = []postgres.CreatedRecord{}
			}
			return render(cmd.OutOrStdout(), flags.output, records)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of records to list")

	return cmd
}
