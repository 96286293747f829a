package v1

import (
	"net/http"
	"strconv"

	"github.com/jfredysalazar-proyectos/giftcards-co2-sub000/internal/domain"
	"github.com/jfredysalazar-proyectos/giftcards-co2-sub000/internal/usecase"
	"github.com/jfredysalazar-proyectos/giftcards-co2-sub000/pkg/utils"
)

type CatalogHandler struct {
	catalogUC *usecase.CatalogUsecase
}

func NewCatalogHandler(uc *usecase.CatalogUsecase) *CatalogHandler {
	return &CatalogHandler{catalogUC: uc}
}

func (h *CatalogHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.catalogUC.GetCategories(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, cats)
}

// ListProducts serves the storefront grid in display order.
// Query params: categoryId, featured, inStock, limit, page
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
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

func (h *CatalogHandler) GetProductDetails(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalogUC.GetProductDetails(r.Context(), r.PathValue("slug"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, product)
}

func parseProductFilter(r *http.Request) domain.ProductFilter {
	query := r.URL.Query()

	limit := utils.ParseInt(query.Get("limit"), 20)
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	page := utils.ParseInt(query.Get("page"), 1)
	if page <= 0 {
		page = 1
	}

	filter := domain.ProductFilter{
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
	if id, ok := utils.ParseID(query.Get("categoryId")); ok {
		filter.CategoryID = &id
	}
	if b, err := strconv.ParseBool(query.Get("featured")); err == nil {
		filter.Featured = &b
	}
	if b, err := strconv.ParseBool(query.Get("inStock")); err == nil {
		filter.InStock = &b
	}
	return filter
}
