package httputil

import (
	"github.com/gin-gonic/gin"
	validation "github.com/jellydator/validation"

	apperrors "github.com/bouncr/iam/internal/errors"
)

// MaxPageSize caps the limit of admin list endpoints.
const MaxPageSize = 100

// Page is the offset and limit of an admin list request.
type Page struct {
	Offset int `form:"offset,default=0" json:"offset"`
	Limit  int `form:"limit,default=50" json:"limit"`
}

// Validate enforces a non-negative offset and a limit between 1 and MaxPageSize.
func (p Page) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Offset, validation.Min(0)),
		validation.Field(&p.Limit, validation.Required, validation.Min(1), validation.Max(MaxPageSize)),
	)
}

// ParsePage reads ?offset=&limit= from the query. Failures wrap ErrInvalidInput.
func ParsePage(c *gin.Context) (Page, error) {
	var page Page
	if err := c.ShouldBindQuery(&page); err != nil {
		return Page{}, apperrors.Wrap(apperrors.ErrInvalidInput, "offset and limit must be integers")
	}
	if err := page.Validate(); err != nil {
		return Page{}, apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
	}
	return page, nil
}
