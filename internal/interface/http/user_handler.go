package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/sirupsen/logrus"

	userapp "github.com/oksasatya/user-records/internal/application"
	"github.com/oksasatya/user-records/internal/domain/entity"
	"github.com/oksasatya/user-records/internal/interface/upload"
	"github.com/oksasatya/user-records/pkg/apperror"
	"github.com/oksasatya/user-records/pkg/response"
	"github.com/oksasatya/user-records/pkg/validation"
)

type UserHandler struct {
	Svc     *userapp.Service
	Uploads *upload.Handler
	Logger  *logrus.Logger
}

func NewUserHandler(svc *userapp.Service, uploads *upload.Handler, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Uploads: uploads, Logger: logger}
}

// userResponse is the wire form of a record. LegacyID mirrors ID for
// clients that read "_id".
type userResponse struct {
	LegacyID  string    `json:"_id"`
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	ImageURL  string    `json:"imageUrl"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toUserResponse(u *entity.User) userResponse {
	return userResponse{
		LegacyID:  u.ID,
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		ImageURL:  u.ImageURL,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func toUserResponses(users []entity.User) []userResponse {
	out := make([]userResponse, 0, len(users))
	for i := range users {
		out = append(out, toUserResponse(&users[i]))
	}
	return out
}

type userJSONRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	ImageURL *string `json:"imageUrl"`
}

type searchRequest struct {
	Q    string `form:"q" binding:"required,max=200"`
	Size int    `form:"size" binding:"omitempty,min=1,max=50"`
}

// bindUserInput reads name, email and imageUrl from a JSON body or from
// form fields, keeping track of which fields were supplied at all.
func bindUserInput(c *gin.Context) (userapp.UserInput, error) {
	var in userapp.UserInput
	if c.ContentType() == binding.MIMEJSON {
		var req userJSONRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			return in, err
		}
		in.Name, in.Email, in.ImageURL = req.Name, req.Email, req.ImageURL
	} else {
		in.Name = postForm(c, "name")
		in.Email = postForm(c, "email")
		in.ImageURL = postForm(c, "imageUrl")
	}
	if f, ok := upload.FromContext(c); ok {
		in.UploadedImageURL = f.URL
	}
	return in, nil
}

func postForm(c *gin.Context, key string) *string {
	if v, ok := c.GetPostForm(key); ok {
		return &v
	}
	return nil
}

func (h *UserHandler) List(c *gin.Context) {
	users, err := h.Svc.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponses(users))
}

func (h *UserHandler) Get(c *gin.Context) {
	u, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(u))
}

func (h *UserHandler) Create(c *gin.Context) {
	in, err := bindUserInput(c)
	if err != nil {
		h.discardUpload(c)
		response.Invalid(c, "Invalid payload", validation.ToDetails(err))
		return
	}
	u, err := h.Svc.Create(c.Request.Context(), in)
	if err != nil {
		h.discardUpload(c)
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, toUserResponse(u))
}

func (h *UserHandler) Update(c *gin.Context) {
	in, err := bindUserInput(c)
	if err != nil {
		h.discardUpload(c)
		response.Invalid(c, "Invalid payload", validation.ToDetails(err))
		return
	}
	u, err := h.Svc.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		h.discardUpload(c)
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(u))
}

func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	response.Message(c, http.StatusOK, "User deleted successfully")
}

// Search performs a full-text search via Elasticsearch.
func (h *UserHandler) Search(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Invalid(c, "Invalid query", validation.ToDetails(err))
		return
	}
	users, err := h.Svc.Search(c.Request.Context(), req.Q, req.Size)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponses(users))
}

func (h *UserHandler) discardUpload(c *gin.Context) {
	if f, ok := upload.FromContext(c); ok && h.Uploads != nil {
		h.Uploads.Discard(c.Request.Context(), f)
	}
}

func (h *UserHandler) fail(c *gin.Context, err error) {
	if apperror.KindOf(err) == apperror.KindUnknown {
		if h.Logger != nil {
			h.Logger.WithError(err).WithField("request_id", c.GetString("request_id")).Error("unhandled error")
		}
		response.Internal(c, err.Error())
		return
	}
	response.Error(c, apperror.HTTPStatus(err), err.Error(), apperror.FieldOf(err))
}
