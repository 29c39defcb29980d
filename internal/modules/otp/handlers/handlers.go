// Package handlers provides HTTP handlers for one-time passcode delivery
// and verification.
package handlers

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/stockpro/stockpro/internal/modules/otp"
	"github.com/stockpro/stockpro/internal/web"
)

// Handler handles OTP HTTP requests
type Handler struct {
	service *otp.Service
	log     zerolog.Logger
}

// NewHandler creates a new OTP handler
func NewHandler(service *otp.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "otp").Logger(),
	}
}

type mobileRequest struct {
	Mobile string `json:"mobile"`
	Code   string `json:"code"`
}

type emailRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// HandleSendMobileCode sends a verification code by SMS.
func (h *Handler) HandleSendMobileCode(w http.ResponseWriter, r *http.Request) {
	var req mobileRequest
	if err := web.Decode(r, &req); err != nil {
		web.Error(w, h.log, err)
		return
	}

	if err := h.service.SendMobileCode(req.Mobile); err != nil {
		web.Error(w, h.log, err)
		return
	}

	web.JSON(w, h.log, http.StatusOK, map[string]string{"status": "sent"})
}

// HandleVerifyMobileCode verifies an SMS code and marks the number
// verified.
func (h *Handler) HandleVerifyMobileCode(w http.ResponseWriter, r *http.Request) {
	var req mobileRequest
	if err := web.Decode(r, &req); err != nil {
		web.Error(w, h.log, err)
		return
	}

	if err := h.service.VerifyMobileCode(req.Mobile, req.Code); err != nil {
		web.Error(w, h.log, err)
		return
	}

	web.JSON(w, h.log, http.StatusOK, map[string]string{"status": "verified"})
}

// HandleSendEmailCode sends a verification code by email.
func (h *Handler) HandleSendEmailCode(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := web.Decode(r, &req); err != nil {
		web.Error(w, h.log, err)
		return
	}

	if err := h.service.SendEmailCode(req.Email); err != nil {
		web.Error(w, h.log, err)
		return
	}

	web.JSON(w, h.log, http.StatusOK, map[string]string{"status": "sent"})
}

// HandleVerifyEmailCode verifies an email code and marks the address
// verified.
func (h *Handler) HandleVerifyEmailCode(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := web.Decode(r, &req); err != nil {
		web.Error(w, h.log, err)
		return
	}

	if err := h.service.VerifyEmailCode(req.Email, req.Code); err != nil {
		web.Error(w, h.log, err)
		return
	}

	web.JSON(w, h.log, http.StatusOK, map[string]string{"status": "verified"})
}
