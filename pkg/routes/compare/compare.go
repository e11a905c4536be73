package compare

import (
	"context"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/fern/pkg/compare"
)

// Comparer is satisfied by compare.Service.
type Comparer interface {
	Compare(ctx context.Context, idA, idB string) (*compare.Comparison, error)
}

type Handler struct {
	comparer Comparer
}

func NewHandler(comparer Comparer) *Handler {
	return &Handler{comparer: comparer}
}

// Register registers comparison routes
func (h *Handler) Register(g *echo.Group) {
	g.GET("", h.Compare)
}

// Compare explains the comparison of two products given by source id
func (h *Handler) Compare(c echo.Context) error {
	ctx := c.Request().Context()

	idA := c.QueryParam("a")
	idB := c.QueryParam("b")
	if idA == "" || idB == "" {
		return httperror.NewHTTPError(http.StatusBadRequest, "a and b query parameters are required")
	}

	comparison, err := h.comparer.Compare(ctx, idA, idB)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, comparison)
}
