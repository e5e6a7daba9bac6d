package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"kanzlei-server/internal/managers"
	"kanzlei-server/internal/schemas"
	"kanzlei-server/internal/utils"
)

type ContactHdl interface {
	SubmitContactForm(c *gin.Context)
}

type ContactHandler struct {
	MailManager managers.MailMgr
	Validator   *utils.Validator
}

func NewContactHandler(mailManager managers.MailMgr) ContactHdl {
	return &ContactHandler{
		MailManager: mailManager,
		Validator:   utils.GetValidator(),
	}
}

// SubmitContactForm validates a contact form submission and relays it to the
// firm's inbox. Nothing is persisted.
func (handler *ContactHandler) SubmitContactForm(c *gin.Context) {
	contactRequest := &schemas.ContactRequest{}
	if err := c.ShouldBindJSON(contactRequest); err != nil {
		utils.WriteAndLogError(c, schemas.ValidationError, err)
		return
	}

	if err := handler.Validator.Validate.Struct(contactRequest); err != nil {
		utils.WriteAndLogError(c, schemas.ValidationError, err)
		return
	}

	if err := handler.MailManager.SendContactMail(contactRequest.Name, contactRequest.Email, contactRequest.Subject, contactRequest.Message); err != nil {
		utils.WriteAndLogError(c, schemas.ServiceError, err)
		return
	}

	c.Status(http.StatusNoContent)
}
