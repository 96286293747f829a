package v1

import (
	"net/http"

	"github.com/jfredysalazar-proyectos/giftcards-co2-sub000/internal/domain"
	"github.com/jfredysalazar-proyectos/giftcards-co2-sub000/internal/usecase"
	"github.com/jfredysalazar-proyectos/giftcards-co2-sub000/pkg/utils"
)

type AdminCatalogHandler struct {
	catalogUC *usecase.CatalogUsecase
	sequencer *usecase.OrderSequencer
}

func NewAdminCatalogHandler(uc *usecase.CatalogUsecase, sequencer *usecase.OrderSequencer) *AdminCatalogHandler {
	return &AdminCatalogHandler{catalogUC: uc, sequencer: sequencer}
}

type productReq struct {
	Name            string                `json:"name" validate:"required,max=200"`
	Slug            string                `json:"slug" validate:"omitempty,max=200"`
	Description     string                `json:"description"`
	FullDescription string                `json:"fullDescription"`
	CategoryID      int64                 `json:"categoryId" validate:"required,gt=0"`
	Image           string                `json:"image" validate:"omitempty,url"`
	Gradient        string                `json:"gradient"`
	InStock         *bool                 `json:"inStock"`
	Featured        bool                  `json:"featured"`
	Amounts         []domain.VariantEntry `json:"amounts"`
	Images          []string              `json:"images" validate:"dive,url"`
}

func (req productReq) toProduct() domain.Product {
	inStock := true
	if req.InStock != nil {
		inStock = *req.InStock
	}
	return domain.Product{
		Name:            req.Name,
		Slug:            req.Slug,
		Description:     req.Description,
		FullDescription: req.FullDescription,
		CategoryID:      req.CategoryID,
		Image:           req.Image,
		Gradient:        req.Gradient,
		InStock:         inStock,
		Featured:        req.Featured,
	}
}

func (h *AdminCatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	filter := parseProductFilter(r)
	products, total, err := h.catalogUC.ListProducts(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, domain.Response{
		Success: true,
		Data:    products,
		Meta:    domain.NewPagination(filter.Limit, filter.Offset, total),
	})
}

func (h *AdminCatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	product, err := h.catalogUC.GetProduct(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, product)
}

func (h *AdminCatalogHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productReq
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	product := req.toProduct()
	if err := h.catalogUC.CreateProduct(r.Context(), &product, req.Amounts, req.Images); err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, product)
}

// UpdateProduct replaces descriptive fields. Amounts and images in the body
// are ignored; they are edited through sessions.
func (h *AdminCatalogHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req productReq
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	product := req.toProduct()
	product.ID = id
	if err := h.catalogUC.UpdateProduct(r.Context(), &product); err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, product)
}

func (h *AdminCatalogHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.catalogUC.DeleteProduct(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteNoContent(w)
}

type categoryReq struct {
	Name        string `json:"name" validate:"required,max=100"`
	Slug        string `json:"slug" validate:"omitempty,max=100"`
	Description string `json:"description"`
}

func (h *AdminCatalogHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryReq
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	category := domain.Category{Name: req.Name, Slug: req.Slug, Description: req.Description}
	if err := h.catalogUC.CreateCategory(r.Context(), &category); err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, category)
}

// GetOrder returns the persisted storefront ordering.
func (h *AdminCatalogHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ids, err := h.sequencer.Load(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string][]int64{"productIds": ids})
}

type reorderReq struct {
	ProductIDs []int64 `json:"productIds" validate:"dive,gt=0"`
}

// ReorderProducts persists the full ordering in one bulk call.
func (h *AdminCatalogHandler) ReorderProducts(w http.ResponseWriter, r *http.Request) {
	var req reorderReq
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	h.submit(w, r, req.ProductIDs)
}

type moveReq struct {
	From *int `json:"from" validate:"required,min=0"`
	To   *int `json:"to" validate:"required,min=0"`
}

// MoveProduct applies one drag-and-drop gesture to the persisted ordering
// and submits the result.
func (h *AdminCatalogHandler) MoveProduct(w http.ResponseWriter, r *http.Request) {
	var req moveReq
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if _, err := h.sequencer.Load(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	ids, err := h.sequencer.Move(*req.From, *req.To)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.submit(w, r, ids)
}

func (h *AdminCatalogHandler) submit(w http.ResponseWriter, r *http.Request, ids []int64) {
	ordered, err := h.sequencer.Submit(r.Context(), ids)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string][]int64{"productIds": ordered})
}
