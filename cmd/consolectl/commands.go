package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/BearBump/CourierDesk/internal/apperr"
	"github.com/BearBump/CourierDesk/internal/integrations/backend"
	"github.com/BearBump/CourierDesk/internal/integrations/backend/backendhttp"
	"github.com/BearBump/CourierDesk/internal/integrations/backend/fake"
	"github.com/BearBump/CourierDesk/internal/models"
	"github.com/BearBump/CourierDesk/internal/projection"
	"github.com/BearBump/CourierDesk/internal/services/dashboard"
	"github.com/BearBump/CourierDesk/internal/services/fleet"
	"github.com/BearBump/CourierDesk/internal/services/reports"
	"github.com/BearBump/CourierDesk/internal/services/shipments"
	"github.com/BearBump/CourierDesk/internal/services/transitions"
	"github.com/BearBump/CourierDesk/internal/viewfilter"
)

type CommandFactory struct {
	CreateBackendClient func(flgs *Flags) (backend.Client, error)
}

var defaultCommandFactory = CommandFactory{
	CreateBackendClient: createBackendClient,
}

func createBackendClient(flgs *Flags) (backend.Client, error) {
	if flgs.Fake {
		return fake.New(), nil
	}
	if flgs.BackendURL == "" {
		return nil, errors.New("backend url is required")
	}
	return backendhttp.New(flgs.BackendURL, 10*time.Second, backend.StaticToken(flgs.Token)), nil
}

func (f CommandFactory) CreateRootCommand(flgs *Flags) *cobra.Command {
	root := &cobra.Command{
		Use:           "consolectl",
		Short:         "Operate the shipment console from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&flgs.BackendURL, "backend-url", "http://localhost:3000", "backend base URL")
	pf.StringVar(&flgs.Token, "token", os.Getenv("CONSOLE_TOKEN"), "bearer token")
	pf.BoolVar(&flgs.Fake, "fake", false, "use the in-memory demo backend")
	pf.Int64Var(&flgs.FeeDivisor, "fee-divisor", 25000, "base units per displayed currency unit")
	pf.StringVar(&flgs.Currency, "currency", "$", "currency symbol")

	root.AddCommand(
		f.CreateShipmentsCommand(flgs),
		f.CreateTransitionCommand(flgs),
		f.CreateDashboardCommand(flgs),
		f.CreateReportCommand(flgs),
	)
	return root
}

func projector(flgs *Flags) *projection.Projector {
	return projection.NewProjector(flgs.FeeDivisor, flgs.Currency)
}

func loadWorkspace(ctx context.Context, client backend.Client, flgs *Flags) (*shipments.Workspace, *fleet.Service, error) {
	fl := fleet.New(client, nil, 0)
	ws := shipments.New(client, fl, projector(flgs))
	if err := ws.Reload(ctx); err != nil {
		return nil, nil, err
	}
	return ws, fl, nil
}

func (f CommandFactory) CreateShipmentsCommand(flgs *Flags) *cobra.Command {
	c := &cobra.Command{
		Use:   "shipments",
		Short: "List one tab of shipments",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := f.CreateBackendClient(flgs)
			if err != nil {
				return err
			}
			ws, fl, err := loadWorkspace(ctx, client, flgs)
			if err != nil {
				return err
			}
			filters := viewfilter.Filters{Query: flgs.Query, ServiceType: flgs.Service, BranchID: flgs.Branch}
			if flgs.Branch != "" {
				if branches, err := fl.Branches(ctx); err == nil {
					if id, ok := viewfilter.BranchIDFor(branches, flgs.Branch); ok {
						filters.BranchID = id
					}
				}
			}
			v := ws.View(models.Tab(strings.ToUpper(flgs.Tab)), filters, flgs.Page, flgs.Size)
			return printJSON(cmd.OutOrStdout(), v)
		},
	}
	c.Flags().StringVar(&flgs.Tab, "tab", string(models.TabBooked), "tab to list")
	c.Flags().StringVar(&flgs.Query, "query", "", "tracking id or shipment id substring")
	c.Flags().StringVar(&flgs.Branch, "branch", "", "branch id, code or name")
	c.Flags().StringVar(&flgs.Service, "service", "", "service type")
	c.Flags().IntVar(&flgs.Page, "page", 1, "page number")
	c.Flags().IntVar(&flgs.Size, "size", 10, "page size")
	return c
}

func (f CommandFactory) CreateTransitionCommand(flgs *Flags) *cobra.Command {
	c := &cobra.Command{
		Use:   "transition <shipment-id> <action>",
		Short: "Apply a status action to a shipment",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			draft, err := draftFromFlags(flgs)
			if err != nil {
				return err
			}
			client, err := f.CreateBackendClient(flgs)
			if err != nil {
				return err
			}
			ws, fl, err := loadWorkspace(ctx, client, flgs)
			if err != nil {
				return err
			}
			res, err := transitions.New(client, ws).WithFleet(fl).Execute(ctx, args[0], transitions.Action(strings.ToUpper(args[1])), draft)
			if err != nil {
				return errors.New(apperr.Message(err, ""))
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	fs := c.Flags()
	fs.StringVar(&flgs.BranchID, "branch-id", "", "branch to assign")
	fs.StringVar(&flgs.VehicleID, "vehicle-id", "", "vehicle to assign")
	fs.StringVar(&flgs.CallStatus, "call", "", "call outcome: pending, success or failed")
	fs.BoolVar(&flgs.DriverReady, "driver-ready", false, "driver confirmed")
	fs.BoolVar(&flgs.ProofChecked, "proof-checked", false, "proof of delivery checked")
	fs.StringVar(&flgs.PickupStart, "pickup-start", "", "pickup window start, RFC3339")
	fs.StringVar(&flgs.PickupEnd, "pickup-end", "", "pickup window end, RFC3339")
	fs.StringVar(&flgs.PickupShift, "pickup-shift", "", "pickup shift")
	fs.StringVar(&flgs.Note, "note", "", "note sent with the action")
	return c
}

func draftFromFlags(flgs *Flags) (transitions.Draft, error) {
	d := transitions.Draft{
		CallStatus:   transitions.CallStatus(strings.ToLower(flgs.CallStatus)),
		DriverReady:  flgs.DriverReady,
		ProofChecked: flgs.ProofChecked,
		BranchID:     flgs.BranchID,
		VehicleID:    flgs.VehicleID,
		PickupShift:  flgs.PickupShift,
		Note:         flgs.Note,
	}
	if flgs.PickupStart == "" && flgs.PickupEnd == "" {
		return d, nil
	}
	// одна граница без второй: пусть об этом скажет валидатор окна
	w := &models.PickupWindow{}
	var err error
	if flgs.PickupStart != "" {
		if w.Start, err = time.Parse(time.RFC3339, flgs.PickupStart); err != nil {
			return d, errors.Wrap(err, "parse pickup start")
		}
	}
	if flgs.PickupEnd != "" {
		if w.End, err = time.Parse(time.RFC3339, flgs.PickupEnd); err != nil {
			return d, errors.Wrap(err, "parse pickup end")
		}
	}
	d.PickupWindow = w
	return d, nil
}

func (f CommandFactory) CreateDashboardCommand(flgs *Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Print dashboard stats",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := f.CreateBackendClient(flgs)
			if err != nil {
				return err
			}
			svc := dashboard.New(client, projector(flgs))
			if err := svc.Refresh(cmd.Context()); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), svc.Snapshot())
		},
	}
}

func (f CommandFactory) CreateReportCommand(flgs *Flags) *cobra.Command {
	c := &cobra.Command{
		Use:   "report",
		Short: "Fetch a report, optionally as PDF",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := f.CreateBackendClient(flgs)
			if err != nil {
				return err
			}
			rep, err := reports.New(client).Fetch(cmd.Context(), reports.Params{Type: flgs.ReportType, From: flgs.From, To: flgs.To})
			if err != nil {
				return err
			}
			if flgs.PDFPath == "" {
				return printJSON(cmd.OutOrStdout(), rep)
			}
			out, err := os.Create(flgs.PDFPath)
			if err != nil {
				return errors.Wrap(err, "create pdf file")
			}
			if err := reports.WritePDF(out, rep); err != nil {
				_ = out.Close()
				return err
			}
			if err := out.Close(); err != nil {
				return errors.Wrap(err, "close pdf file")
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "report written to %s\n", flgs.PDFPath)
			return nil
		},
	}
	c.Flags().StringVar(&flgs.ReportType, "type", "", "report type")
	c.Flags().StringVar(&flgs.From, "from", "", "start date, YYYY-MM-DD")
	c.Flags().StringVar(&flgs.To, "to", "", "end date, YYYY-MM-DD")
	c.Flags().StringVar(&flgs.PDFPath, "pdf", "", "write the report as PDF to this path")
	return c
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
