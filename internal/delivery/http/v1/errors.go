package v1

import (
	"errors"
	"net/http"

	"github.com/jfredysalazar-proyectos/giftcards-co2-sub000/internal/domain"
	"github.com/jfredysalazar-proyectos/giftcards-co2-sub000/pkg/logger"
	"github.com/jfredysalazar-proyectos/giftcards-co2-sub000/pkg/utils"
)

const saveFailedMessage = "save failed, please retry"

// writeError maps usecase errors onto HTTP statuses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		partial *domain.PartialCommitError
		gwErr   *domain.GatewayError
		valErr  *domain.ValidationError
	)

	switch {
	case errors.As(err, &partial):
		logger.WithContext(r.Context()).Error().Err(err).Msg("Partial commit")
		utils.WriteJSON(w, http.StatusBadGateway, utils.ErrorBody{
			Error:     saveFailedMessage,
			Completed: partial.Completed,
		})
	case errors.As(err, &gwErr):
		logger.WithContext(r.Context()).Error().Err(err).Msg("Gateway call failed")
		utils.WriteError(w, http.StatusBadGateway, saveFailedMessage)
	case errors.As(err, &valErr):
		utils.WriteFieldError(w, http.StatusBadRequest, valErr.Field, valErr.Error())
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrSessionNotFound):
		utils.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrSessionBusy):
		utils.WriteError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrUploadFailed):
		logger.WithContext(r.Context()).Error().Err(err).Msg("Upload failed")
		utils.WriteError(w, http.StatusBadGateway, "upload failed, please retry")
	default:
		logger.WithContext(r.Context()).Error().Err(err).Msg("Unhandled error")
		utils.WriteError(w, http.StatusInternalServerError, "internal server error")
	}
}
