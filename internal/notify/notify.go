package notify

import (
	"os/exec"
	"strconv"
	"time"
)

// Urgency levels for notifications
type Urgency int

const (
	UrgencyLow Urgency = iota
	UrgencyNormal
	UrgencyCritical
)

// Notification represents a desktop notification
type Notification struct {
	Title   string
	Body    string
	Urgency Urgency
	Timeout time.Duration
	Icon    string // Optional icon name
}

// Notifier sends desktop notifications through notify-send
type Notifier struct {
	enabled bool
	appName string
	run     func(name string, args ...string) error
}

// NewNotifier creates a disabled notifier; callers opt in with SetEnabled
func NewNotifier(appName string) *Notifier {
	return &Notifier{
		appName: appName,
		run: func(name string, args ...string) error {
			return exec.Command(name, args...).Run()
		},
	}
}

// SetEnabled enables or disables notifications
func (n *Notifier) SetEnabled(enabled bool) {
	n.enabled = enabled
}

// IsEnabled returns whether notifications are enabled
func (n *Notifier) IsEnabled() bool {
	return n.enabled
}

// Args builds the notify-send arguments for notification
func (n *Notifier) Args(notification Notification) []string {
	args := []string{}

	switch notification.Urgency {
	case UrgencyLow:
		args = append(args, "-u", "low")
	case UrgencyCritical:
		args = append(args, "-u", "critical")
	default:
		args = append(args, "-u", "normal")
	}

	// milliseconds
	if notification.Timeout > 0 {
		args = append(args, "-t", strconv.Itoa(int(notification.Timeout.Milliseconds())))
	}

	if notification.Icon != "" {
		args = append(args, "-i", notification.Icon)
	}

	if n.appName != "" {
		args = append(args, "-a", n.appName)
	}

	args = append(args, notification.Title)
	if notification.Body != "" {
		args = append(args, notification.Body)
	}
	return args
}

// Send sends a desktop notification. It is a no-op while disabled.
func (n *Notifier) Send(notification Notification) error {
	if !n.enabled {
		return nil
	}
	return n.run("notify-send", n.Args(notification)...)
}

// SendSuccess reports a completed task operation
func (n *Notifier) SendSuccess(body string) error {
	return n.Send(Notification{
		Title:   n.appName,
		Body:    body,
		Urgency: UrgencyLow,
		Timeout: 3 * time.Second,
		Icon:    "emblem-ok-symbolic",
	})
}

// SendError reports a failed task operation
func (n *Notifier) SendError(body string) error {
	return n.Send(Notification{
		Title:   n.appName,
		Body:    body,
		Urgency: UrgencyCritical,
		Timeout: 5 * time.Second,
		Icon:    "dialog-error-symbolic",
	})
}
