package api

import (
	"errors"
	"net/http"

	"github.com/rpupo63/portfolio-backend/errs"
	"github.com/rpupo63/portfolio-backend/flash"
	"github.com/rpupo63/portfolio-backend/forms"
	"github.com/rpupo63/portfolio-backend/metrics"
	"github.com/rpupo63/portfolio-backend/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type contactHandler struct {
	responder Responder
	logger    zerolog.Logger
	renderer  *renderer
	mailer    services.Mailer
	recipient string
	maxMemory int64
}

func newContactHandler(mailer services.Mailer, rd *renderer, maxMemory int64, recipient string) contactHandler {
	logger := log.With().Str("handlerName", "contactHandler").Logger()

	return contactHandler{
		responder: NewResponder(logger),
		logger:    logger,
		renderer:  rd,
		mailer:    mailer,
		recipient: recipient,
		maxMemory: maxMemory,
	}
}

// sendMessage mails a contact-form submission. Every outcome ends in a redirect
// home with a notice; a mail failure is shown, not retried.
func (h contactHandler) sendMessage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form, result, err := forms.BindContact(r, h.maxMemory)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if !result.Valid() {
			metrics.ContactMessages.WithLabelValues(metrics.ResultInvalid).Inc()
			h.logger.Debug().Err(result.Err()).Msg("incomplete contact form")
			h.renderer.redirect(w, r, "/", flash.Error("Please fill all fields."))
			return
		}

		email := services.ContactEmail(h.recipient, form.Name, form.Email, form.Message)
		if err := h.mailer.Send(r.Context(), email); err != nil {
			metrics.ContactMessages.WithLabelValues(metrics.ResultFailed).Inc()
			h.logger.Error().Err(err).Str("replyTo", form.Email).Msg("could not send contact message")
			h.renderer.redirect(w, r, "/", flash.Error(sendFailureMessage(err)))
			return
		}

		metrics.ContactMessages.WithLabelValues(metrics.ResultOK).Inc()
		h.renderer.redirect(w, r, "/", flash.Success("Message sent successfully! Thank you."))
	}
}

func sendFailureMessage(err error) string {
	var apiErr *errs.ApiErr
	if errs.IsMailTransportError(err) && errors.As(err, &apiErr) {
		return apiErr.UserMessage()
	}
	return "Error sending message: " + err.Error()
}
