package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"leadflow/internal/models"
	"leadflow/internal/services"
	"leadflow/internal/utils"
)

type HTTPHandler struct {
	conversion *services.ConversionService
	gate       *services.SessionGate
	choreo     *services.Choreographer
	notifier   *services.Notifier
}

func NewHTTPHandler(conversion *services.ConversionService, gate *services.SessionGate, choreo *services.Choreographer, notifier *services.Notifier) *HTTPHandler {
	return &HTTPHandler{
		conversion: conversion,
		gate:       gate,
		choreo:     choreo,
		notifier:   notifier,
	}
}

// @Summary Convert a contact into a lead
// @Description Find or create the CRM lead for a conversation's contact and link them
// @Tags conversion
// @Accept json
// @Produce json
// @Param request body models.ConvertRequest true "Conversion details"
// @Success 200 {object} models.APIResponse
// @Failure 400 {object} models.APIResponse
// @Failure 409 {object} models.APIResponse
// @Router /convert [post]
func (h *HTTPHandler) Convert(w http.ResponseWriter, r *http.Request) {
	var req models.ConvertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.LogError("Error decoding request on /convert: %v", err)
		models.RespondWithJSON(w, http.StatusBadRequest, models.NewErrorResponse("Error decoding request: "+err.Error()))
		return
	}

	conversation := &models.Conversation{
		ContactNumber: req.ContactNumber,
		AssignedTo:    req.AssignedTo,
	}

	result, err := h.conversion.Convert(r.Context(), conversation)
	if err != nil {
		var linkErr *services.LinkError
		switch {
		case errors.Is(err, services.ErrInvalidIdentifier):
			models.RespondWithJSON(w, http.StatusBadRequest,
				models.NewErrorResponse("The contact number could not be normalized. Check the number and try again."))
		case errors.Is(err, services.ErrConversionInFlight):
			models.RespondWithJSON(w, http.StatusConflict,
				models.NewErrorResponse("A conversion for this contact is already in progress."))
		case errors.As(err, &linkErr):
			// The lead exists; only linking needs to be retried.
			data := map[string]interface{}{
				"lead":       linkErr.Lead,
				"created":    linkErr.Created,
				"link_retry": true,
			}
			models.RespondWithJSON(w, http.StatusOK,
				models.NewWarningResponse("Lead is ready but linking failed. Retry linking.", data))
		case errors.Is(err, services.ErrLeadCreationFailed):
			utils.LogError("Lead creation failed on /convert: %v", err)
			models.RespondWithJSON(w, http.StatusInternalServerError,
				models.NewErrorResponse("The lead could not be created. Try again."))
		default:
			utils.LogError("Error converting contact on /convert: %v", err)
			models.RespondWithJSON(w, http.StatusInternalServerError,
				models.NewErrorResponse("Error converting contact: "+err.Error()))
		}
		return
	}

	models.RespondWithJSON(w, http.StatusOK, models.NewSuccessResponse("Contact converted successfully", result))
}

// @Summary Retry linking a conversation to a lead
// @Description Re-attempt only the linking step after a previous conversion reported a link failure
// @Tags conversion
// @Accept json
// @Produce json
// @Param request body models.RetryLinkRequest true "Link retry details"
// @Success 200 {object} models.APIResponse
// @Failure 400 {object} models.APIResponse
// @Router /retry-link [post]
func (h *HTTPHandler) RetryLink(w http.ResponseWriter, r *http.Request) {
	var req models.RetryLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.LogError("Error decoding request on /retry-link: %v", err)
		models.RespondWithJSON(w, http.StatusBadRequest, models.NewErrorResponse("Error decoding request: "+err.Error()))
		return
	}

	if req.LeadID == "" {
		models.RespondWithJSON(w, http.StatusBadRequest, models.NewErrorResponse("lead_id is required"))
		return
	}

	if err := h.conversion.RetryLink(r.Context(), req.ContactNumber, req.LeadID); err != nil {
		if errors.Is(err, services.ErrInvalidIdentifier) {
			models.RespondWithJSON(w, http.StatusBadRequest,
				models.NewErrorResponse("The contact number could not be normalized."))
			return
		}
		utils.LogError("Error retrying link on /retry-link: %v", err)
		models.RespondWithJSON(w, http.StatusInternalServerError,
			models.NewErrorResponse("Linking failed again: "+err.Error()))
		return
	}

	data := map[string]interface{}{
		"contact_number": req.ContactNumber,
		"lead_id":        req.LeadID,
	}
	models.RespondWithJSON(w, http.StatusOK, models.NewSuccessResponse("Conversation linked successfully", data))
}

// @Summary Send a reply
// @Description Send a reply to a contact, using free-form text inside the session window or the default template outside it
// @Tags messages
// @Accept json
// @Produce json
// @Param request body models.SendReplyRequest true "Reply details"
// @Success 200 {object} models.APIResponse
// @Failure 400 {object} models.APIResponse
// @Router /send-reply [post]
func (h *HTTPHandler) SendReply(w http.ResponseWriter, r *http.Request) {
	var req models.SendReplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.LogError("Error decoding request on /send-reply: %v", err)
		models.RespondWithJSON(w, http.StatusBadRequest, models.NewErrorResponse("Error decoding request: "+err.Error()))
		return
	}

	if req.ContactNumber == "" {
		models.RespondWithJSON(w, http.StatusBadRequest, models.NewErrorResponse("contact_number is required"))
		return
	}

	mode, err := h.gate.SendReply(r.Context(), req.ContactNumber, req.Message)
	if err != nil {
		utils.LogError("Error sending reply on /send-reply: %v", err)
		models.RespondWithJSON(w, http.StatusInternalServerError,
			models.NewErrorResponse("Error sending reply: "+err.Error()))
		return
	}

	data := map[string]interface{}{
		"recipient": req.ContactNumber,
		"mode":      mode,
	}
	models.RespondWithJSON(w, http.StatusOK, models.NewSuccessResponse("Reply sent successfully", data))
}

// @Summary Get the send mode for a contact
// @Description Report whether a free-form reply is permitted or a template is required
// @Tags messages
// @Produce json
// @Param number query string true "Contact phone number"
// @Success 200 {object} models.APIResponse
// @Failure 400 {object} models.APIResponse
// @Router /send-mode [get]
func (h *HTTPHandler) GetSendMode(w http.ResponseWriter, r *http.Request) {
	number := r.URL.Query().Get("number")
	if number == "" {
		models.RespondWithJSON(w, http.StatusBadRequest, models.NewErrorResponse("Please provide the contact number"))
		return
	}

	mode := h.gate.SelectSendMode(r.Context(), number)
	models.RespondWithJSON(w, http.StatusOK, models.NewSuccessResponse("Send mode resolved", mode))
}

// @Summary Get the pending workflow signal
// @Description Replay the pending workflow signal for a consumer that just mounted, unless it already processed it
// @Tags workflow
// @Produce json
// @Param consumer query string true "Stable name of the consuming surface"
// @Success 200 {object} models.APIResponse
// @Failure 400 {object} models.APIResponse
// @Router /workflow/signal [get]
func (h *HTTPHandler) GetWorkflowSignal(w http.ResponseWriter, r *http.Request) {
	consumer := r.URL.Query().Get("consumer")
	if consumer == "" {
		models.RespondWithJSON(w, http.StatusBadRequest, models.NewErrorResponse("Please provide the consumer name"))
		return
	}

	signal := h.choreo.Pending(consumer)
	if signal == nil {
		models.RespondWithJSON(w, http.StatusOK, models.NewSuccessResponse("No pending signal", nil))
		return
	}
	models.RespondWithJSON(w, http.StatusOK, models.NewSuccessResponse("Pending signal", signal))
}

// @Summary Acknowledge a workflow signal
// @Description Claim a signal for a consumer; only the first claim per signal is fresh and should trigger an action
// @Tags workflow
// @Accept json
// @Produce json
// @Param request body models.SignalAckRequest true "Acknowledgement details"
// @Success 200 {object} models.APIResponse
// @Failure 400 {object} models.APIResponse
// @Router /workflow/ack [post]
func (h *HTTPHandler) AckWorkflowSignal(w http.ResponseWriter, r *http.Request) {
	var req models.SignalAckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.LogError("Error decoding request on /workflow/ack: %v", err)
		models.RespondWithJSON(w, http.StatusBadRequest, models.NewErrorResponse("Error decoding request: "+err.Error()))
		return
	}

	if req.Consumer == "" || req.IssuedAt == "" {
		models.RespondWithJSON(w, http.StatusBadRequest, models.NewErrorResponse("consumer and issued_at are required"))
		return
	}

	fresh := h.choreo.Acknowledge(req.Consumer, req.IssuedAt)
	data := map[string]interface{}{
		"consumer":  req.Consumer,
		"issued_at": req.IssuedAt,
		"fresh":     fresh,
	}
	models.RespondWithJSON(w, http.StatusOK, models.NewSuccessResponse("Signal acknowledged", data))
}

// @Summary Report assistant completion
// @Description Advance the post-conversion chain after the assistant step finishes
// @Tags workflow
// @Accept json
// @Produce json
// @Param request body models.AssistantCompleteRequest true "Completion details"
// @Success 200 {object} models.APIResponse
// @Failure 400 {object} models.APIResponse
// @Router /workflow/assistant-complete [post]
func (h *HTTPHandler) AssistantComplete(w http.ResponseWriter, r *http.Request) {
	var req models.AssistantCompleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.LogError("Error decoding request on /workflow/assistant-complete: %v", err)
		models.RespondWithJSON(w, http.StatusBadRequest, models.NewErrorResponse("Error decoding request: "+err.Error()))
		return
	}

	if req.IssuedAt == "" {
		models.RespondWithJSON(w, http.StatusBadRequest, models.NewErrorResponse("issued_at is required"))
		return
	}

	state := h.choreo.AssistantCompleted(r.Context(), req.IssuedAt)
	data := map[string]interface{}{
		"issued_at": req.IssuedAt,
		"state":     state,
	}
	models.RespondWithJSON(w, http.StatusOK, models.NewSuccessResponse("Chain advanced", data))
}

// @Summary Get the workflow chain state
// @Tags workflow
// @Produce json
// @Success 200 {object} models.APIResponse
// @Router /workflow/state [get]
func (h *HTTPHandler) GetWorkflowState(w http.ResponseWriter, r *http.Request) {
	data := map[string]interface{}{
		"state": h.choreo.State(),
	}
	models.RespondWithJSON(w, http.StatusOK, models.NewSuccessResponse("Workflow state", data))
}

// @Summary List notifications
// @Description List the operator's notifications, most recent first
// @Tags notifications
// @Produce json
// @Success 200 {object} models.APIResponse
// @Router /notifications [get]
func (h *HTTPHandler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	data := map[string]interface{}{
		"notifications": h.notifier.All(),
		"unread_count":  h.notifier.UnreadCount(),
	}
	models.RespondWithJSON(w, http.StatusOK, models.NewSuccessResponse("Notifications listed", data))
}

// @Summary Get the unread notification count
// @Tags notifications
// @Produce json
// @Success 200 {object} models.APIResponse
// @Router /notifications/unread-count [get]
func (h *HTTPHandler) GetUnreadCount(w http.ResponseWriter, r *http.Request) {
	data := map[string]interface{}{
		"unread_count": h.notifier.UnreadCount(),
	}
	models.RespondWithJSON(w, http.StatusOK, models.NewSuccessResponse("Unread count", data))
}

// @Summary Mark a notification as read
// @Tags notifications
// @Accept json
// @Produce json
// @Param request body models.MarkReadRequest true "Notification id"
// @Success 200 {object} models.APIResponse
// @Failure 404 {object} models.APIResponse
// @Router /notifications/mark-read [post]
func (h *HTTPHandler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	var req models.MarkReadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.LogError("Error decoding request on /notifications/mark-read: %v", err)
		models.RespondWithJSON(w, http.StatusBadRequest, models.NewErrorResponse("Error decoding request: "+err.Error()))
		return
	}

	if err := h.notifier.MarkRead(req.ID); err != nil {
		models.RespondWithJSON(w, http.StatusNotFound, models.NewErrorResponse("Notification not found"))
		return
	}

	data := map[string]interface{}{
		"id":           req.ID,
		"unread_count": h.notifier.UnreadCount(),
	}
	models.RespondWithJSON(w, http.StatusOK, models.NewSuccessResponse("Notification marked as read", data))
}

// @Summary Mark all notifications as read
// @Tags notifications
// @Produce json
// @Success 200 {object} models.APIResponse
// @Router /notifications/mark-all-read [post]
func (h *HTTPHandler) MarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	h.notifier.MarkAllRead()

	data := map[string]interface{}{
		"unread_count": h.notifier.UnreadCount(),
	}
	models.RespondWithJSON(w, http.StatusOK, models.NewSuccessResponse("All notifications marked as read", data))
}
