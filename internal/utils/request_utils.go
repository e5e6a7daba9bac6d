package utils

import (
	"github.com/gin-gonic/gin"

	"kanzlei-server/internal/schemas"
)

// WriteAndLogResponse encodes the response object to JSON and writes it to the HTTP response
// with the provided status code.
func WriteAndLogResponse(ctx *gin.Context, response interface{}, statusCode int) {
	LogMessageWithFields(ctx, "info", "Returning response")
	ctx.JSON(statusCode, response)
}

// WriteAndLogError logs the causing error server-side and sends the sanitized
// error envelope to the caller. The status code always comes from the catalog
// entry, so unknown causes can never leak internal detail.
func WriteAndLogError(ctx *gin.Context, customErr *schemas.CustomError, err error) {
	if customErr == nil {
		customErr = schemas.InternalServerError
	}

	LogMessageWithFieldsAndError(ctx, "error", "Error occurred: returning "+customErr.Name, err)
	errorDto := &schemas.ErrorDTO{
		Error: *customErr,
	}
	ctx.AbortWithStatusJSON(customErr.StatusCode, errorDto)
}
