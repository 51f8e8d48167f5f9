package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"meet-app/internal/database"
	"meet-app/internal/models"
	"meet-app/internal/services"
	"meet-app/pkg/logger"

	"github.com/go-chi/chi/v5"
)

type MeetingHandlers struct {
	meetingService *services.MeetingService
}

func NewMeetingHandlers(meetingService *services.MeetingService) *MeetingHandlers {
	return &MeetingHandlers{meetingService: meetingService}
}

type createMeetingResponse struct {
	Success     bool   `json:"success"`
	MeetingCode string `json:"meetingCode,omitempty"`
	Error       string `json:"error,omitempty"`
}

type meetingExistsResponse struct {
	Success bool `json:"success"`
	Exists  bool `json:"exists"`
}

type messagesResponse struct {
	Success  bool                 `json:"success"`
	Messages []models.ChatMessage `json:"messages,omitempty"`
	Error    string               `json:"error,omitempty"`
}

func (h *MeetingHandlers) CreateMeeting(w http.ResponseWriter, r *http.Request) {
	code, err := h.meetingService.CreateMeeting(r.Context())
	if err != nil {
		logger.Error("Create meeting error: %v", err)
		writeJSON(w, http.StatusInternalServerError, createMeetingResponse{
			Success: false,
			Error:   "could not create meeting",
		})
		return
	}

	writeJSON(w, http.StatusOK, createMeetingResponse{
		Success:     true,
		MeetingCode: code,
	})
}

func (h *MeetingHandlers) GetMeeting(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	_, err := h.meetingService.GetMeetingInfo(r.Context(), code)
	if err != nil && !errors.Is(err, database.ErrMeetingNotFound) {
		logger.Error("Get meeting error: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, meetingExistsResponse{
		Success: true,
		Exists:  err == nil,
	})
}

func (h *MeetingHandlers) GetMessages(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	messages, err := h.meetingService.GetMessages(r.Context(), code)
	if errors.Is(err, database.ErrMeetingNotFound) {
		writeJSON(w, http.StatusOK, messagesResponse{
			Success: false,
			Error:   "Meeting not found",
		})
		return
	}
	if err != nil {
		logger.Error("Get messages error: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if messages == nil {
		messages = []models.ChatMessage{}
	}
	writeJSON(w, http.StatusOK, messagesResponse{
		Success:  true,
		Messages: messages,
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
