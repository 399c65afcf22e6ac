package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/pagepace/pagepace-server/internal/domain"
	"github.com/pagepace/pagepace-server/internal/id"
	"github.com/pagepace/pagepace-server/internal/service"
)

func (s *Server) registerReminderRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getReminderPreference",
		Method:      http.MethodGet,
		Path:        "/api/v1/reminders/preference",
		Summary:     "Get reminder preference",
		Description: "Returns the current user's daily reminder setting",
		Tags:        []string{"Reminders"},
	}, s.handleGetReminderPreference)

	huma.Register(s.api, huma.Operation{
		OperationID: "setReminderPreference",
		Method:      http.MethodPut,
		Path:        "/api/v1/reminders/preference",
		Summary:     "Set reminder preference",
		Description: "Updates the current user's daily reminder setting",
		Tags:        []string{"Reminders"},
	}, s.handleSetReminderPreference)

	huma.Register(s.api, huma.Operation{
		OperationID: "listPushSubscriptions",
		Method:      http.MethodGet,
		Path:        "/api/v1/reminders/subscriptions",
		Summary:     "List push subscriptions",
		Description: "Returns the current user's registered push endpoints",
		Tags:        []string{"Reminders"},
	}, s.handleListPushSubscriptions)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createPushSubscription",
		Method:        http.MethodPost,
		Path:          "/api/v1/reminders/subscriptions",
		Summary:       "Register push subscription",
		Description:   "Registers a push endpoint for reminder delivery",
		Tags:          []string{"Reminders"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreatePushSubscription)

	huma.Register(s.api, huma.Operation{
		OperationID: "deletePushSubscription",
		Method:      http.MethodDelete,
		Path:        "/api/v1/reminders/subscriptions/{id}",
		Summary:     "Remove push subscription",
		Description: "Removes a registered push endpoint",
		Tags:        []string{"Reminders"},
	}, s.handleDeletePushSubscription)

	huma.Register(s.api, huma.Operation{
		OperationID: "dispatchReminders",
		Method:      http.MethodPost,
		Path:        "/api/v1/reminders/dispatch",
		Summary:     "Dispatch due reminders",
		Description: "Runs one reminder dispatch pass immediately",
		Tags:        []string{"Reminders"},
	}, s.handleDispatchReminders)
}

// === DTOs ===

// ReminderPreferenceResponse contains a reminder setting in API responses.
type ReminderPreferenceResponse struct {
	Enabled   bool   `json:"enabled" doc:"Whether daily reminders are on"`
	TimeOfDay string `json:"time_of_day" doc:"Preferred reading time, HH:MM"`
}

// GetReminderPreferenceInput has no parameters; identity comes from context.
type GetReminderPreferenceInput struct{}

// ReminderPreferenceOutput wraps the preference response for Huma.
type ReminderPreferenceOutput struct {
	Body ReminderPreferenceResponse
}

// SetReminderPreferenceRequest is the request body for updating the setting.
type SetReminderPreferenceRequest struct {
	Enabled   bool   `json:"enabled" doc:"Whether daily reminders are on"`
	TimeOfDay string `json:"time_of_day" validate:"required" doc:"Preferred reading time, HH:MM"`
}

// SetReminderPreferenceInput wraps the update request for Huma.
type SetReminderPreferenceInput struct {
	Body SetReminderPreferenceRequest
}

// PushSubscriptionResponse contains a push endpoint in API responses.
type PushSubscriptionResponse struct {
	ID        string    `json:"id" doc:"Subscription ID"`
	Endpoint  string    `json:"endpoint" doc:"Push endpoint URL"`
	CreatedAt time.Time `json:"created_at" doc:"When the endpoint was registered"`
}

// ListPushSubscriptionsInput has no parameters; identity comes from context.
type ListPushSubscriptionsInput struct{}

// ListPushSubscriptionsResponse contains the user's push endpoints.
type ListPushSubscriptionsResponse struct {
	Subscriptions []PushSubscriptionResponse `json:"subscriptions" doc:"Registered push endpoints"`
}

// ListPushSubscriptionsOutput wraps the list response for Huma.
type ListPushSubscriptionsOutput struct {
	Body ListPushSubscriptionsResponse
}

// CreatePushSubscriptionRequest is the request body for registering an endpoint.
type CreatePushSubscriptionRequest struct {
	Endpoint string `json:"endpoint" validate:"required,url" doc:"Push endpoint URL"`
	Keys     string `json:"keys" doc:"Opaque key material for the push service"`
}

// CreatePushSubscriptionInput wraps the register request for Huma.
type CreatePushSubscriptionInput struct {
	Body CreatePushSubscriptionRequest
}

// PushSubscriptionOutput wraps a single subscription response for Huma.
type PushSubscriptionOutput struct {
	Body PushSubscriptionResponse
}

// DeletePushSubscriptionInput contains parameters for removing an endpoint.
type DeletePushSubscriptionInput struct {
	ID string `path:"id" doc:"Subscription ID"`
}

// MessageResponse is a simple confirmation message.
type MessageResponse struct {
	Message string `json:"message" doc:"Confirmation message"`
}

// MessageOutput wraps a confirmation message for Huma.
type MessageOutput struct {
	Body MessageResponse
}

// DispatchRemindersInput has no parameters.
type DispatchRemindersInput struct{}

// DispatchRemindersOutput wraps the dispatch report for Huma.
type DispatchRemindersOutput struct {
	Body service.DispatchReport
}

// === Handlers ===

func (s *Server) handleGetReminderPreference(ctx context.Context, _ *GetReminderPreferenceInput) (*ReminderPreferenceOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	pref, err := s.services.Reminder.Preference(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &ReminderPreferenceOutput{Body: mapReminderPreference(pref)}, nil
}

func (s *Server) handleSetReminderPreference(ctx context.Context, input *SetReminderPreferenceInput) (*ReminderPreferenceOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	pref, err := s.services.Reminder.SetPreference(ctx, userID, input.Body.Enabled, input.Body.TimeOfDay)
	if err != nil {
		return nil, err
	}
	return &ReminderPreferenceOutput{Body: mapReminderPreference(pref)}, nil
}

func (s *Server) handleListPushSubscriptions(ctx context.Context, _ *ListPushSubscriptionsInput) (*ListPushSubscriptionsOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	subs, err := s.services.Reminder.Subscriptions(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := make([]PushSubscriptionResponse, len(subs))
	for i, sub := range subs {
		resp[i] = mapPushSubscription(sub)
	}
	return &ListPushSubscriptionsOutput{Body: ListPushSubscriptionsResponse{Subscriptions: resp}}, nil
}

func (s *Server) handleCreatePushSubscription(ctx context.Context, input *CreatePushSubscriptionInput) (*PushSubscriptionOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	subID, err := id.Generate("sub")
	if err != nil {
		return nil, err
	}

	sub := domain.NewPushSubscription(subID, userID, input.Body.Endpoint, input.Body.Keys, s.clk.Now().UTC())
	if err := s.services.Reminder.Subscribe(ctx, sub); err != nil {
		return nil, err
	}
	return &PushSubscriptionOutput{Body: mapPushSubscription(sub)}, nil
}

func (s *Server) handleDeletePushSubscription(ctx context.Context, input *DeletePushSubscriptionInput) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	// Only the owner may remove a subscription.
	subs, err := s.services.Reminder.Subscriptions(ctx, userID)
	if err != nil {
		return nil, err
	}
	owned := false
	for _, sub := range subs {
		if sub.ID == input.ID {
			owned = true
			break
		}
	}
	if !owned {
		return nil, huma.Error404NotFound("push subscription not found")
	}

	if err := s.services.Reminder.Unsubscribe(ctx, input.ID); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "Subscription removed"}}, nil
}

func (s *Server) handleDispatchReminders(ctx context.Context, _ *DispatchRemindersInput) (*DispatchRemindersOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	report, err := s.services.Reminder.DispatchDue(ctx)
	if err != nil {
		return nil, err
	}
	return &DispatchRemindersOutput{Body: *report}, nil
}

// === Mappers ===

func mapReminderPreference(pref *domain.ReminderPreference) ReminderPreferenceResponse {
	return ReminderPreferenceResponse{
		Enabled:   pref.Enabled,
		TimeOfDay: pref.TimeOfDay,
	}
}

func mapPushSubscription(sub *domain.PushSubscription) PushSubscriptionResponse {
	return PushSubscriptionResponse{
		ID:        sub.ID,
		Endpoint:  sub.Endpoint,
		CreatedAt: sub.CreatedAt,
	}
}
