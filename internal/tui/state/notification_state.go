package state

import (
	"time"

	"charm.land/lipgloss/v2"
)

// NotificationLevel represents the severity of a notification.
type NotificationLevel int

const (
	LevelInfo NotificationLevel = iota
	LevelWarning
	LevelError
)

// notificationTTL is how long a notification stays up without a keypress
const notificationTTL = 5 * time.Second

// Notification is a single message with a severity level.
type Notification struct {
	Level   NotificationLevel
	Message string
	At      time.Time
}

// NotificationState holds the messages stacked in the top-right corner.
type NotificationState struct {
	notifications []Notification
	windowWidth   int
	windowHeight  int
	now           func() time.Time
}

// NewNotificationState creates a new NotificationState with no notifications.
func NewNotificationState() *NotificationState {
	return &NotificationState{now: time.Now}
}

// Add appends a notification
func (s *NotificationState) Add(level NotificationLevel, message string) {
	s.notifications = append(s.notifications, Notification{
		Level:   level,
		Message: message,
		At:      s.now(),
	})
}

// Clear removes all notifications.
func (s *NotificationState) Clear() {
	s.notifications = nil
}

// Expire drops notifications older than the display time
func (s *NotificationState) Expire() {
	cutoff := s.now().Add(-notificationTTL)
	kept := s.notifications[:0]
	for _, n := range s.notifications {
		if n.At.After(cutoff) {
			kept = append(kept, n)
		}
	}
	s.notifications = kept
}

// All returns all current notifications.
func (s *NotificationState) All() []Notification {
	return s.notifications
}

// HasAny returns true if there are any notifications.
func (s *NotificationState) HasAny() bool {
	return len(s.notifications) > 0
}

// SetWindowSize updates the window dimensions for positioning calculations.
func (s *NotificationState) SetWindowSize(width, height int) {
	s.windowWidth = width
	s.windowHeight = height
}

// GetLayers creates floating layers for all active notifications, stacked
// from the top-right corner. Notifications that would run off the bottom of
// the screen are not drawn.
func (s *NotificationState) GetLayers(renderFunc func(Notification) string) []*lipgloss.Layer {
	var layers []*lipgloss.Layer
	if s.windowWidth == 0 {
		return layers
	}

	row := 0
	for _, n := range s.notifications {
		view := renderFunc(n)
		height := lipgloss.Height(view)
		if row+height >= s.windowHeight {
			break
		}
		col := max(s.windowWidth-lipgloss.Width(view)-1, 0)
		layers = append(layers, lipgloss.NewLayer(view).X(col).Y(row))
		row += height + 1
	}
	return layers
}
