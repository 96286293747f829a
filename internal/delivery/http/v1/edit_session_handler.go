package v1

import (
	"mime"
	"net/http"

	"github.com/jfredysalazar-proyectos/giftcards-co2-sub000/internal/usecase"
	"github.com/jfredysalazar-proyectos/giftcards-co2-sub000/pkg/utils"
)

// EditSessionHandler exposes product edit sessions: open, edit variants and
// gallery, then commit or abandon.
type EditSessionHandler struct {
	sessionUC     *usecase.EditSessionUsecase
	maxUploadSize int64
}

func NewEditSessionHandler(uc *usecase.EditSessionUsecase, maxUploadSizeMB int64) *EditSessionHandler {
	return &EditSessionHandler{sessionUC: uc, maxUploadSize: maxUploadSizeMB << 20}
}

func (h *EditSessionHandler) Open(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	view, err := h.sessionUC.Open(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, view)
}

func (h *EditSessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.sessionUC.Get(r.Context(), r.PathValue("sid"))
	h.respond(w, r, view, err)
}

func (h *EditSessionHandler) Abandon(w http.ResponseWriter, r *http.Request) {
	if err := h.sessionUC.Abandon(r.Context(), r.PathValue("sid")); err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteNoContent(w)
}

type attachImageReq struct {
	URL string `json:"url" validate:"required,url,max=500"`
}

// AddImage appends an image to the gallery. A JSON body attaches an already
// hosted {"url": ...}; otherwise the multipart "file" is uploaded first.
func (h *EditSessionHandler) AddImage(w http.ResponseWriter, r *http.Request) {
	if isJSON(r) {
		var req attachImageReq
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		view, err := h.sessionUC.AttachImage(r.Context(), r.PathValue("sid"), req.URL)
		h.respond(w, r, view, err)
		return
	}

	data, filename, err := readImage(w, r, h.maxUploadSize)
	if err != nil {
		writeError(w, r, err)
		return
	}
	view, err := h.sessionUC.AddImage(r.Context(), r.PathValue("sid"), data, filename)
	h.respond(w, r, view, err)
}

func (h *EditSessionHandler) RemoveImage(w http.ResponseWriter, r *http.Request) {
	idx, err := pathIndex(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	view, err := h.sessionUC.RemoveImage(r.Context(), r.PathValue("sid"), idx)
	h.respond(w, r, view, err)
}

func (h *EditSessionHandler) SetPrimary(w http.ResponseWriter, r *http.Request) {
	idx, err := pathIndex(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	view, err := h.sessionUC.SetPrimary(r.Context(), r.PathValue("sid"), idx)
	h.respond(w, r, view, err)
}

type moveImageReq struct {
	Direction string `json:"direction" validate:"required,oneof=up down"`
}

func (h *EditSessionHandler) MoveImage(w http.ResponseWriter, r *http.Request) {
	idx, err := pathIndex(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req moveImageReq
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	view, err := h.sessionUC.MoveImage(r.Context(), r.PathValue("sid"), idx, req.Direction)
	h.respond(w, r, view, err)
}

func (h *EditSessionHandler) AddVariant(w http.ResponseWriter, r *http.Request) {
	view, err := h.sessionUC.AddVariant(r.Context(), r.PathValue("sid"))
	h.respond(w, r, view, err)
}

// variantReq carries raw editor input; the price is parsed on commit.
type variantReq struct {
	Amount string `json:"amount" validate:"max=50"`
	Price  string `json:"price" validate:"max=20"`
}

func (h *EditSessionHandler) SetVariant(w http.ResponseWriter, r *http.Request) {
	idx, err := pathIndex(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req variantReq
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	view, err := h.sessionUC.SetVariant(r.Context(), r.PathValue("sid"), idx, req.Amount, req.Price)
	h.respond(w, r, view, err)
}

func (h *EditSessionHandler) RemoveVariant(w http.ResponseWriter, r *http.Request) {
	idx, err := pathIndex(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	view, err := h.sessionUC.RemoveVariant(r.Context(), r.PathValue("sid"), idx)
	h.respond(w, r, view, err)
}

func (h *EditSessionHandler) Commit(w http.ResponseWriter, r *http.Request) {
	res, err := h.sessionUC.Commit(r.Context(), r.PathValue("sid"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, res)
}

func (h *EditSessionHandler) respond(w http.ResponseWriter, r *http.Request, view *usecase.SessionView, err error) {
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, view)
}

func isJSON(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "application/json"
}
