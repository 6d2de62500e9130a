package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/AweemRizwan/smm-optimize-sub001/internal/workflow"
	"github.com/AweemRizwan/smm-optimize-sub001/pkg/models"
)

func newTaskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Inspect and act on workflow tasks",
	}
	cmd.AddCommand(newTaskListCmd())
	cmd.AddCommand(newTaskShowCmd())
	cmd.AddCommand(newTaskActionsCmd())
	cmd.AddCommand(newTaskTransitionCmd())
	return cmd
}

func stageLabel(taskType string) string {
	stage, _ := workflow.ResolveStage(taskType)
	return stage.StatusLabel
}

func completedMark(task models.Task) string {
	if task.IsCompleted {
		return color.GreenString("done")
	}
	return color.YellowString("open")
}

func newTaskListCmd() *cobra.Command {
	var clientID int64

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a client's tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			if clientID <= 0 {
				return fmt.Errorf("--client is required")
			}
			e, err := newEnv(cmd, true)
			if err != nil {
				return err
			}
			defer e.close()

			tasks, fromCache, err := e.api.ListTasks(cmd.Context(), clientID)
			if err != nil {
				return err
			}
			if fromCache {
				_, _ = fmt.Fprintln(cmd.ErrOrStderr(), color.YellowString("server unreachable, showing cached tasks"))
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "ID\tSTAGE\tSTATE\tASSIGNED TO")
			for _, task := range tasks {
				_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", task.TaskID, stageLabel(task.TaskType), completedMark(task), task.AssignedToName)
			}
			return w.Flush()
		},
	}
	cmd.Flags().Int64Var(&clientID, "client", 0, "Client ID")
	_ = cmd.MarkFlagRequired("client")
	return cmd
}

func newTaskShowCmd() *cobra.Command {
	var taskID int64

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show one task",
		RunE: func(cmd *cobra.Command, args []string) error {
			if taskID <= 0 {
				return fmt.Errorf("--id must be a positive task ID")
			}
			e, err := newEnv(cmd, false)
			if err != nil {
				return err
			}
			defer e.close()

			task, err := e.api.GetTask(cmd.Context(), taskID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "Task %d: %s [%s]\n", task.TaskID, stageLabel(task.TaskType), completedMark(*task))
			if task.AssignedToName != "" {
				_, _ = fmt.Fprintf(out, "  Assigned to: %s\n", task.AssignedToName)
			}
			if task.ClientID != nil {
				_, _ = fmt.Fprintf(out, "  Client: %d\n", *task.ClientID)
			}
			return nil
		},
	}
	cmd.Flags().Int64Var(&taskID, "id", 0, "Task ID")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func newTaskActionsCmd() *cobra.Command {
	var taskID int64

	cmd := &cobra.Command{
		Use:   "actions",
		Short: "Show the actions your role may take on a task",
		RunE: func(cmd *cobra.Command, args []string) error {
			if taskID <= 0 {
				return fmt.Errorf("--id must be a positive task ID")
			}
			e, err := newEnv(cmd, false)
			if err != nil {
				return err
			}
			defer e.close()

			user, ok := e.sess.CurrentUser()
			if !ok {
				return errors.New("not logged in; run smmctl login")
			}
			task, err := e.api.GetTask(cmd.Context(), taskID)
			if err != nil {
				return err
			}

			stage, known := workflow.ResolveStage(task.TaskType)
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "Task %d: %s\n", task.TaskID, stage.StatusLabel)
			if !known {
				_, _ = fmt.Fprintln(out, "No actions available for this task type.")
				return nil
			}

			actions := workflow.VisibleActions(stage, user.Role)
			if len(actions) == 0 {
				_, _ = fmt.Fprintf(out, "Your role (%s) cannot act on this stage.\n", user.Role)
				return nil
			}
			for _, a := range actions {
				_, _ = fmt.Fprintf(out, "  %s -> %s\n", a.Label, a.Result)
			}
			if required := workflow.RequiredSelections(stage.ID, user.Role); len(required) > 0 {
				for _, kind := range required {
					_, _ = fmt.Fprintf(out, "Requires a %s selection (--%s).\n", kind, kind)
				}
			}
			return nil
		},
	}
	cmd.Flags().Int64Var(&taskID, "id", 0, "Task ID")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func newTaskTransitionCmd() *cobra.Command {
	var (
		taskID     int64
		result     string
		invoiceID  int64
		calendarID int64
		meetingID  int64
	)

	cmd := &cobra.Command{
		Use:   "transition",
		Short: "Submit a workflow transition for a task",
		RunE: func(cmd *cobra.Command, args []string) error {
			if taskID <= 0 {
				return fmt.Errorf("--id must be a positive task ID")
			}
			res := models.ResultStatus(result)
			switch res {
			case models.ResultApprove, models.ResultChangesRequired, models.ResultDeclined:
			default:
				return fmt.Errorf("--result must be one of approve, changes_required, declined")
			}

			e, err := newEnv(cmd, true)
			if err != nil {
				return err
			}
			defer e.close()

			user, ok := e.sess.CurrentUser()
			if !ok {
				return errors.New("not logged in; run smmctl login")
			}
			task, err := e.api.GetTask(cmd.Context(), taskID)
			if err != nil {
				return err
			}

			req := models.TransitionRequest{ResultStatus: res}
			if invoiceID > 0 {
				req.InvoiceID = &invoiceID
			}
			if calendarID > 0 {
				req.CalendarID = &calendarID
			}
			if meetingID > 0 {
				req.MeetingID = &meetingID
			}

			updated, err := e.api.TransitionTask(cmd.Context(), *task, user.Role, req)
			var missing *workflow.MissingSelectionError
			if errors.As(err, &missing) {
				return fmt.Errorf("%s: pass --%s", missing.Error(), missing.Kind)
			}
			if err != nil {
				return err
			}
			if e.cache != nil && updated.ClientID != nil {
				_ = e.cache.InvalidateClient(cmd.Context(), *updated.ClientID)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Task %d is now in %s\n",
				updated.TaskID, color.GreenString(stageLabel(updated.TaskType)))
			return nil
		},
	}
	cmd.Flags().Int64Var(&taskID, "id", 0, "Task ID")
	cmd.Flags().StringVar(&result, "result", string(models.ResultApprove), "Transition outcome: approve, changes_required, declined")
	cmd.Flags().Int64Var(&invoiceID, "invoice", 0, "Invoice ID (when the stage requires one)")
	cmd.Flags().Int64Var(&calendarID, "calendar", 0, "Calendar ID (when the stage requires one)")
	cmd.Flags().Int64Var(&meetingID, "meeting", 0, "Meeting ID (when the stage requires one)")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}
