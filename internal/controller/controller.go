package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	appcontext "github.com/SeakMengs/AutoSign/internal/app_context"
	"github.com/SeakMengs/AutoSign/internal/auth"
	"github.com/SeakMengs/AutoSign/internal/model"
	"github.com/SeakMengs/AutoSign/internal/util"
	"github.com/gin-gonic/gin"
)

type baseController struct {
	app *appcontext.Application
}

type Controller struct {
	Index    *IndexController
	Document *DocumentController
	Field    *FieldController
	Session  *SessionController
	Signing  *SigningController
}

func newBaseController(app *appcontext.Application) *baseController {
	return &baseController{app: app}
}

func NewController(app *appcontext.Application) *Controller {
	bc := newBaseController(app)

	return &Controller{
		Index:    &IndexController{baseController: bc},
		Document: &DocumentController{baseController: bc},
		Field:    &FieldController{baseController: bc},
		Session:  &SessionController{baseController: bc},
		Signing:  &SigningController{baseController: bc},
	}
}

func (b *baseController) getAuthUser(ctx *gin.Context) (*auth.JWTPayload, error) {
	user, exists := ctx.Get("user")
	if !exists {
		return nil, errors.New("user not found in context")
	}

	jsonUser, err := json.Marshal(user)
	if err != nil {
		return nil, err
	}

	var authUser *auth.JWTPayload
	err = json.Unmarshal(jsonUser, &authUser)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal user: %w", err)
	}

	return authUser, nil
}

// getOwnedDocument resolves :documentId for the authenticated agent. When it
// returns ok == false the response has already been written.
func (b *baseController) getOwnedDocument(ctx *gin.Context) (*auth.JWTPayload, *model.Document, bool) {
	user, err := b.getAuthUser(ctx)
	if err != nil {
		b.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusUnauthorized, "Unauthorized", util.GenerateErrorMessages(err), nil)
		return nil, nil, false
	}

	documentId := ctx.Param("documentId")
	if documentId == "" {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(errors.New("documentId is required"), "documentId"), nil)
		return nil, nil, false
	}

	document, err := b.app.Services.Document.GetForOwner(ctx, documentId, user.ID)
	if err != nil {
		util.ResponseError(ctx, err)
		return nil, nil, false
	}

	return user, document, true
}
