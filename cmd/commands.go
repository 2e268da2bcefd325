package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"roster/internal/controller"
	"roster/internal/handler"
	"roster/internal/render"
	"roster/internal/service"
	"roster/internal/terminal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// reportedError marks a failure the user has already been notified of.
type reportedError struct{ error }

func (e *reportedError) Unwrap() error { return e.error }

func reported(err error) error {
	if err == nil {
		return nil
	}
	return &reportedError{err}
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the roster page and JSON API",
	RunE:  runServe,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the roster, optionally filtered and sorted",
	Example: `  roster list --query "computer" --sort gpa.desc
  roster list --json`,
	RunE: runList,
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a student",
	RunE:  runAdd,
}

var updateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Change fields of an existing student",
	Long: `Loads the student into the form, replaces the fields given as flags and
saves it again under the same id.`,
	Args: cobra.ExactArgs(1),
	RunE: runUpdate,
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a student after confirmation",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Fill an empty roster with example students",
	RunE:  runSeed,
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every student after confirmation",
	RunE:  runClear,
}

var importCmd = &cobra.Command{
	Use:   "import <file.csv>",
	Short: "Import students from a CSV file with an id,name,code,major,gpa header",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the roster as CSV to stdout or --output",
	RunE:  runExport,
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Edit the roster in a full-screen terminal UI",
	RunE:  runTUI,
}

var (
	listQuery string
	listSort  string
	listJSON  bool

	formName  string
	formCode  string
	formMajor string
	formGPA   string

	assumeYes    bool
	exportOutput string
)

func registerCommands() {
	listCmd.Flags().StringVarP(&listQuery, "query", "q", "", "Filter by name, student ID or major")
	listCmd.Flags().StringVarP(&listSort, "sort", "s", service.DefaultSort().String(), "Sort order, e.g. gpa.desc")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Print rows as JSON")

	for _, c := range []*cobra.Command{addCmd, updateCmd} {
		c.Flags().StringVar(&formName, "name", "", "Student name")
		c.Flags().StringVar(&formCode, "code", "", "Student ID")
		c.Flags().StringVar(&formMajor, "major", "", "Major")
		c.Flags().StringVar(&formGPA, "gpa", "", "GPA between 0.0 and 4.0")
	}
	addCmd.MarkFlagRequired("name")
	addCmd.MarkFlagRequired("code")

	deleteCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Do not ask for confirmation")
	clearCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Do not ask for confirmation")

	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Write to this file instead of stdout")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(tuiCmd)
}

// startCLI wires a controller to the terminal and loads the roster.
func startCLI(cmd *cobra.Command) (*terminal.CLI, *controller.Controller, error) {
	cli := terminal.NewCLI(cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
	cli.AssumeYes(assumeYes)
	ctrl := controller.New(newStore(logger), cli,
		controller.WithLogger(logger),
		controller.WithMetrics(stats))
	if err := ctrl.Start(cmd.Context()); err != nil {
		return nil, nil, reported(err)
	}
	return cli, ctrl, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	h := handler.NewRosterHandler(newStore(logger), logger, controller.WithMetrics(stats))
	if err := h.Start(ctx); err != nil {
		return fmt.Errorf("load roster: %w", err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           handler.NewRouter(h, stats, cfg.AllowedOrigins, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server running", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func runList(cmd *cobra.Command, args []string) error {
	spec, err := service.ParseSortSpec(listSort)
	if err != nil {
		return err
	}
	cli, ctrl, err := startCLI(cmd)
	if err != nil {
		return err
	}

	table := render.Render(ctrl.Derive(listQuery, spec))
	if listJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(table.Rows)
	}
	cli.PrintTableFor(table)
	return nil
}

func runAdd(cmd *cobra.Command, args []string) error {
	cli, ctrl, err := startCLI(cmd)
	if err != nil {
		return err
	}
	cli.SetForm(service.StudentForm{Name: formName, Code: formCode, Major: formMajor, GPA: formGPA})
	if err := ctrl.Submit(cmd.Context()); err != nil {
		return reported(err)
	}
	cli.PrintTable()
	return nil
}

func runUpdate(cmd *cobra.Command, args []string) error {
	cli, ctrl, err := startCLI(cmd)
	if err != nil {
		return err
	}

	id := args[0]
	ctrl.Edit(id)
	if _, editing := ctrl.Mode().Editing(); !editing {
		return fmt.Errorf("student %q not found", id)
	}

	form := cli.ReadForm()
	flags := cmd.Flags()
	if flags.Changed("name") {
		form.Name = formName
	}
	if flags.Changed("code") {
		form.Code = formCode
	}
	if flags.Changed("major") {
		form.Major = formMajor
	}
	if flags.Changed("gpa") {
		form.GPA = formGPA
	}
	cli.SetForm(form)

	if err := ctrl.Submit(cmd.Context()); err != nil {
		return reported(err)
	}
	cli.PrintTable()
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	cli, ctrl, err := startCLI(cmd)
	if err != nil {
		return err
	}
	if err := ctrl.Delete(cmd.Context(), args[0]); err != nil {
		return reported(err)
	}
	cli.PrintTable()
	return nil
}

func runSeed(cmd *cobra.Command, args []string) error {
	cli, ctrl, err := startCLI(cmd)
	if err != nil {
		return err
	}
	if err := ctrl.Seed(cmd.Context()); err != nil {
		return reported(err)
	}
	cli.PrintTable()
	return nil
}

func runClear(cmd *cobra.Command, args []string) error {
	cli, ctrl, err := startCLI(cmd)
	if err != nil {
		return err
	}
	if err := ctrl.Clear(cmd.Context()); err != nil {
		return reported(err)
	}
	cli.PrintTable()
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	_, ctrl, err := startCLI(cmd)
	if err != nil {
		return err
	}
	report, err := ctrl.Import(cmd.Context(), f)
	if err != nil {
		return reported(err)
	}

	// Row-level rejections are listed so the file can be fixed and re-run.
	if len(report.Errors) > 0 {
		out, err := yaml.Marshal(map[string]interface{}{"rejected": report.Errors})
		if err != nil {
			return err
		}
		cmd.OutOrStdout().Write(out)
	}
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	_, ctrl, err := startCLI(cmd)
	if err != nil {
		return err
	}

	if exportOutput == "" {
		return ctrl.Export(cmd.OutOrStdout())
	}
	f, err := os.Create(exportOutput)
	if err != nil {
		return err
	}
	if err := ctrl.Export(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func runTUI(cmd *cobra.Command, args []string) error {
	// Log lines would tear the full-screen view.
	quiet := zap.NewNop()
	return terminal.RunTUI(cmd.Context(), newStore(quiet), controller.WithMetrics(stats))
}
