package api

import (
	"context"
	"net/http"
)

// GetProfile returns the customer profile of the signed-in user.
func (e *Endpoints) GetProfile(ctx context.Context) (*Profile, error) {
	var out Profile
	if err := e.call(ctx, NewRequest("get_profile", http.MethodGet, "profile/", nil), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProfile replaces the customer profile.
func (e *Endpoints) UpdateProfile(ctx context.Context, in ProfileUpdate) (*Profile, error) {
	var out Profile
	if err := e.call(ctx, NewRequest("update_profile", http.MethodPut, "profile/", in), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetManagerProfile returns the service-center profile of a service manager.
func (e *Endpoints) GetManagerProfile(ctx context.Context) (*ManagerProfile, error) {
	var out ManagerProfile
	if err := e.call(ctx, NewRequest("get_manager_profile", http.MethodGet, "service_manager/profile/", nil), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateManagerProfile replaces the service-center profile.
func (e *Endpoints) UpdateManagerProfile(ctx context.Context, in ManagerProfile) (*ManagerProfile, error) {
	var out ManagerProfile
	if err := e.call(ctx, NewRequest("update_manager_profile", http.MethodPut, "service_manager/profile/", in), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListNotifications returns the user's notifications, newest first as the
// server orders them.
func (e *Endpoints) ListNotifications(ctx context.Context) ([]Notification, error) {
	var out []Notification
	err := e.call(ctx, NewRequest("list_notifications", http.MethodGet, "notifications/", nil), &out)
	return out, err
}

// MarkNotificationRead flags one notification as read.
func (e *Endpoints) MarkNotificationRead(ctx context.Context, id ID) error {
	body := map[string]bool{"is_read": true}
	return e.call(ctx, NewRequest("mark_notification_read", http.MethodPatch, "notifications/"+escape(id)+"/", body), nil)
}

// ListServiceHistory returns completed services visible to the user.
func (e *Endpoints) ListServiceHistory(ctx context.Context) ([]ServiceHistory, error) {
	var out []ServiceHistory
	err := e.call(ctx, NewRequest("list_service_history", http.MethodGet, "service-histories/", nil), &out)
	return out, err
}

// ListReminders returns scheduled booking reminders.
func (e *Endpoints) ListReminders(ctx context.Context) ([]Reminder, error) {
	var out []Reminder
	err := e.call(ctx, NewRequest("list_reminders", http.MethodGet, "reminders/", nil), &out)
	return out, err
}

// CreateReminder schedules a reminder for a booking.
func (e *Endpoints) CreateReminder(ctx context.Context, in ReminderRequest) (*Reminder, error) {
	var out Reminder
	if err := e.call(ctx, NewRequest("create_reminder", http.MethodPost, "reminders/", in), &out); err != nil {
		return nil, err
	}
	return &out, nil
}
