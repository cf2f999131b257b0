package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/messagely/pkg/apperror"
	"github.com/oksasatya/messagely/pkg/helpers"
	"github.com/oksasatya/messagely/pkg/response"
	"github.com/oksasatya/messagely/pkg/validation"
)

// fail writes err as an error envelope. Internal failures are logged with
// their cause; the client only sees the generic message.
func fail(c *gin.Context, logger logrus.FieldLogger, err error) {
	if apperror.KindOf(err) == apperror.KindInternal {
		helpers.LogError(logger, "request failed", err, logrus.Fields{
			"request_id": c.GetString("request_id"),
			"path":       c.FullPath(),
		})
	}
	response.FromError(c, err)
}

func badPayload(c *gin.Context, err error) {
	response.FromError(c, apperror.Validation("invalid payload", validation.ToDetails(err)))
}
