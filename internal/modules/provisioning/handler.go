package provisioning

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"roflexi/internal/domain"
	"roflexi/internal/pkg/response"
	"roflexi/internal/pkg/validator"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// multipartOverhead is the room left for the text fields next to the image.
const multipartOverhead = 1 << 20

type Handler struct {
	service       *Service
	maxImageBytes int64
	log           *zap.Logger
}

func NewHandler(service *Service, maxImageBytes int64, log *zap.Logger) *Handler {
	return &Handler{service: service, maxImageBytes: maxImageBytes, log: log}
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.POST("/create-provider", h.create(domain.RoleProvider))
	r.POST("/create-requester", h.create(domain.RoleRequester))
}

type createForm struct {
	FullName     string                `form:"fullName"`
	Email        string                `form:"email"`
	Age          string                `form:"age"`
	Phone        string                `form:"phone"`
	Password     string                `form:"password"`
	Tags         string                `form:"tags"`
	Location     string                `form:"location"`
	ServiceArea  string                `form:"serviceArea"`
	ProfileImage *multipart.FileHeader `form:"profileImage"`
}

func (h *Handler) create(role domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxImageBytes+multipartOverhead)

		var form createForm
		if err := c.ShouldBind(&form); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				h.tooLarge(c)
				return
			}
			response.Error(c, http.StatusBadRequest, "Invalid request body")
			return
		}

		img, err := h.readImage(form.ProfileImage)
		if err != nil {
			if errors.Is(err, ErrImageTooLarge) {
				h.tooLarge(c)
				return
			}
			response.FieldErrors(c, http.StatusBadRequest, validator.Errors{validator.FieldProfileImage: msgInvalidImage})
			return
		}

		sub := &Submission{
			Role: role,
			Fields: validator.Fields{
				FullName: form.FullName,
				Email:    form.Email,
				Age:      form.Age,
				Phone:    form.Phone,
				Password: form.Password,
			},
			Location:       parseLocation(form.Location),
			ServiceArea:    parseServiceArea(form.ServiceArea),
			Image:          img,
			IdempotencyKey: c.GetHeader("Idempotency-Key"),
		}
		if role == domain.RoleProvider {
			sub.Tags = parseTags(form.Tags)
		}

		res, err := h.service.Provision(c.Request.Context(), sub)
		if err != nil {
			h.fail(c, role, err)
			return
		}

		status := http.StatusCreated
		if res.Replayed {
			status = http.StatusOK
		}
		response.Success(c, status, gin.H{
			"uid":          res.UID,
			"customToken":  res.CustomToken,
			"exchangeCode": res.ExchangeCode,
			"replayed":     res.Replayed,
		})
	}
}

func (h *Handler) readImage(fh *multipart.FileHeader) (*Image, error) {
	if fh == nil {
		return nil, nil
	}
	if fh.Size > h.maxImageBytes {
		return nil, ErrImageTooLarge
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open profile image: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.maxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read profile image: %w", err)
	}
	if int64(len(data)) > h.maxImageBytes {
		return nil, ErrImageTooLarge
	}

	return &Image{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func (h *Handler) tooLarge(c *gin.Context) {
	response.Error(c, http.StatusRequestEntityTooLarge,
		fmt.Sprintf("profileImage must be at most %d bytes", h.maxImageBytes))
}

func (h *Handler) fail(c *gin.Context, role domain.Role, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		response.FieldErrors(c, http.StatusBadRequest, verr.Errors)
	case errors.Is(err, ErrMissingTags):
		response.Error(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrSubmissionInFlight):
		response.Error(c, http.StatusConflict, err.Error())
	case errors.Is(err, ErrIdempotencyKeyUsed):
		response.Error(c, http.StatusUnprocessableEntity, err.Error())
	default:
		h.log.Error("error creating account", zap.String("role", string(role)), zap.Error(err))
		response.ErrorWithDetails(c, http.StatusInternalServerError, "Server error", err.Error())
	}
}
