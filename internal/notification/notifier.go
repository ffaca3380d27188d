package notification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dayflow-hq/dayflow/internal/auth"
	"github.com/dayflow-hq/dayflow/internal/core/events"
)

// ReviewerDirectory lists the HR and Admin accounts that receive leave
// application emails.
type ReviewerDirectory interface {
	ActiveReviewers() ([]*auth.User, error)
}

// Notifier subscribes to domain events and turns them into emails.
type Notifier struct {
	sender    Sender
	reviewers ReviewerDirectory
	baseURL   string
	logger    *slog.Logger
}

func NewNotifier(sender Sender, reviewers ReviewerDirectory, baseURL string, logger *slog.Logger) *Notifier {
	return &Notifier{
		sender:    sender,
		reviewers: reviewers,
		baseURL:   baseURL,
		logger:    logger,
	}
}

// Register wires the notifier onto the bus.
func (n *Notifier) Register(bus *events.EventBus) {
	bus.Subscribe(events.EventUserRegistered, n.onUserRegistered)
	bus.Subscribe(events.EventPasswordReset, n.onPasswordReset)
	bus.Subscribe(events.EventLeaveApplied, n.onLeaveApplied)
	bus.Subscribe(events.EventLeaveReviewed, n.onLeaveReviewed)
	bus.Subscribe(events.EventPayrollGenerated, n.onPayrollGenerated)
}

func (n *Notifier) onUserRegistered(ctx context.Context, event events.Event) error {
	data, ok := event.Payload().(map[string]interface{})
	if !ok {
		return nil
	}
	email, _ := data["email"].(string)
	name, _ := data["name"].(string)
	token, _ := data["verification_token"].(string)
	if email == "" || token == "" {
		return nil
	}

	body := fmt.Sprintf(
		"Hi %s,\n\nWelcome aboard. Please verify your email address by opening:\n\n%s/api/v1/auth/verify-email?token=%s\n\nThe link expires in 24 hours.",
		name, n.baseURL, token)
	return n.sender.Send([]string{email}, "Verify your email address", body)
}

func (n *Notifier) onPasswordReset(ctx context.Context, event events.Event) error {
	data, ok := event.Payload().(map[string]interface{})
	if !ok {
		return nil
	}
	email, _ := data["email"].(string)
	name, _ := data["name"].(string)
	token, _ := data["reset_token"].(string)
	if email == "" || token == "" {
		return nil
	}

	body := fmt.Sprintf(
		"Hi %s,\n\nA password reset was requested for your account. Open the link below to choose a new password:\n\n%s/reset-password?token=%s\n\nThe link expires in 1 hour. If you did not request this, you can ignore this email.",
		name, n.baseURL, token)
	return n.sender.Send([]string{email}, "Password reset request", body)
}

func (n *Notifier) onLeaveApplied(ctx context.Context, event events.Event) error {
	data, ok := event.Payload().(map[string]interface{})
	if !ok {
		return nil
	}
	employeeName, _ := data["employee_name"].(string)
	leaveType, _ := data["leave_type"].(string)
	dateRange, _ := data["date_range"].(string)

	recipients, err := n.reviewerEmails()
	if err != nil || len(recipients) == 0 {
		return err
	}

	body := fmt.Sprintf(
		"%s has applied for %s leave (%s).\n\nPlease review the request in the leave queue.",
		employeeName, leaveType, dateRange)
	return n.sender.Send(recipients, fmt.Sprintf("Leave request from %s", employeeName), body)
}

func (n *Notifier) onLeaveReviewed(ctx context.Context, event events.Event) error {
	data, ok := event.Payload().(map[string]interface{})
	if !ok {
		return nil
	}
	email, _ := data["employee_email"].(string)
	status, _ := data["status"].(string)
	comments, _ := data["comments"].(string)
	if email == "" {
		return nil
	}

	body := fmt.Sprintf("Your leave request has been %s.", status)
	if comments != "" {
		body += fmt.Sprintf("\n\nReviewer comments: %s", comments)
	}
	return n.sender.Send([]string{email}, fmt.Sprintf("Leave request %s", status), body)
}

func (n *Notifier) onPayrollGenerated(ctx context.Context, event events.Event) error {
	data, ok := event.Payload().(map[string]interface{})
	if !ok {
		return nil
	}
	month, _ := data["month"].(int)
	year, _ := data["year"].(int)
	generated, _ := data["generated"].(int)
	skipped, _ := data["skipped"].(int)

	recipients, err := n.reviewerEmails()
	if err != nil || len(recipients) == 0 {
		return err
	}

	body := fmt.Sprintf(
		"Payroll for %02d/%d has been generated.\n\nRecords created: %d\nSkipped: %d",
		month, year, generated, skipped)
	return n.sender.Send(recipients, "Payroll generation complete", body)
}

func (n *Notifier) reviewerEmails() ([]string, error) {
	reviewers, err := n.reviewers.ActiveReviewers()
	if err != nil {
		n.logger.Error("failed to load reviewer emails", "error", err)
		return nil, err
	}
	emails := make([]string, 0, len(reviewers))
	for _, r := range reviewers {
		if r.Email != "" {
			emails = append(emails, r.Email)
		}
	}
	return emails, nil
}
