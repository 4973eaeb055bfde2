package middlewares

import (
	"errors"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/yeremiapane/duty-roster/utils"
	"gorm.io/gorm"
)

// ErrorHandler renders the last error a handler pushed with c.Error. Stack
// traces and raw causes are only included when dev is set.
func ErrorHandler(dev bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		code, resp := classify(err)
		if dev {
			resp.Error = err.Error()
			if resp.Stack == "" {
				// untyped errors carry no stack of their own
				resp.Stack = string(debug.Stack())
			}
		} else {
			resp.Stack = ""
		}
		if code >= http.StatusInternalServerError {
			utils.ErrorLogger.WithField("path", c.Request.URL.Path).Errorf("%v", err)
		}
		c.JSON(code, resp)
	}
}

func classify(err error) (int, utils.JSONResponse) {
	if apiErr, ok := utils.AsApiError(err); ok {
		return apiErr.StatusCode, utils.JSONResponse{Message: apiErr.Message, Stack: apiErr.Stack}
	}

	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		return http.StatusBadRequest, utils.JSONResponse{Message: "Validation Error: " + verrs.Error()}
	case errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound, utils.JSONResponse{Message: "Resource not found"}
	case errors.Is(err, gorm.ErrDuplicatedKey),
		errors.Is(err, gorm.ErrForeignKeyViolated):
		return http.StatusBadRequest, utils.JSONResponse{Message: "Database error occurred"}
	}
	return http.StatusInternalServerError, utils.JSONResponse{Message: "Internal server error"}
}
