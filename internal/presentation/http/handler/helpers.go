package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sangkips/inventario/internal/application/service"
	"github.com/sangkips/inventario/internal/domain/entity"
	"github.com/sangkips/inventario/internal/presentation/http/dto/request"
	"github.com/sangkips/inventario/pkg/apperror"
	"github.com/sangkips/inventario/pkg/utils"
)

const dateLayout = "2006-01-02"

// paramID parses a uuid path parameter
func paramID(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := utils.ParseUUID(c.Param(name))
	if err != nil {
		return uuid.Nil, apperror.NewBadRequestError("Invalid " + name)
	}
	return id, nil
}

// parseDateRange reads YYYY-MM-DD bounds in local time. The end date
// includes the whole day.
func parseDateRange(start, end string) (service.DateRange, error) {
	var r service.DateRange
	if start != "" {
		from, err := time.ParseInLocation(dateLayout, start, time.Local)
		if err != nil {
			return r, apperror.NewBadRequestError("start_date must be YYYY-MM-DD")
		}
		r.From = &from
	}
	if end != "" {
		to, err := time.ParseInLocation(dateLayout, end, time.Local)
		if err != nil {
			return r, apperror.NewBadRequestError("end_date must be YYYY-MM-DD")
		}
		to = to.AddDate(0, 0, 1)
		r.To = &to
	}
	if r.From != nil && r.To != nil && !r.From.Before(*r.To) {
		return r, apperror.NewBadRequestError("start_date must not be after end_date")
	}
	return r, nil
}

func toSaleLines(items []request.SaleLineRequest) []entity.SaleLine {
	lines := make([]entity.SaleLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, entity.SaleLine{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return lines
}
