package v1

import (
	"errors"
	"net/http"

	"github.com/aksbond/Emergency-SOS/internal/apperrors"
	"github.com/aksbond/Emergency-SOS/internal/audit"
	"github.com/aksbond/Emergency-SOS/internal/config"
	"github.com/aksbond/Emergency-SOS/internal/ratelimit"
	"github.com/aksbond/Emergency-SOS/internal/service"
	"github.com/aksbond/Emergency-SOS/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	identityService service.IdentityService
	requestService  service.RequestService
	taxonomyService service.TaxonomyService
	sessions        session.Store
	adminLimiter    *ratelimit.SlidingWindowLimiter
	publisher       audit.Publisher
	logger          *logrus.Logger
	validate        *validator.Validate
	cfg             *config.Config
}

func NewHandler(
	identityService service.IdentityService,
	requestService service.RequestService,
	taxonomyService service.TaxonomyService,
	sessions session.Store,
	adminLimiter *ratelimit.SlidingWindowLimiter,
	publisher audit.Publisher,
	logger *logrus.Logger,
	cfg *config.Config,
) *Handler {
	return &Handler{
		identityService: identityService,
		requestService:  requestService,
		taxonomyService: taxonomyService,
		sessions:        sessions,
		adminLimiter:    adminLimiter,
		publisher:       publisher,
		logger:          logger,
		validate:        validator.New(),
		cfg:             cfg,
	}
}

// @Summary Log in with a mobile number
// @Description Resolve or create an identity by phone number and start a session. First login requires a name.
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "Login request"
// @Success 200 {object} LoginResponse
// @Failure 400 {object} map[string]string "Invalid mobile number or missing name"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /login [post]
func (h *Handler) login(c *gin.Context) {
	var input LoginRequest
	log := h.logger.WithField("method", "login")

	if err := c.ShouldBindJSON(&input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, created, err := h.identityService.ResolveOrCreate(c.Request.Context(), input.Phone, input.Name, input.Surname)
	if err != nil {
		h.respondError(c, log, err)
		return
	}

	token, err := h.sessions.Create(c.Request.Context(), session.Session{
		Phone:  user.Phone,
		UserID: user.UserID,
	})
	if err != nil {
		log.WithError(err).Error("Failed to create session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	h.setSessionCookie(c, token, int(h.cfg.SessionTTL.Seconds()))

	c.JSON(http.StatusOK, LoginResponse{
		Success: true,
		Created: created,
		User:    ModelToUserResponse(user),
	})
}

// @Summary Log out
// @Description Clear the current session: both phone and user id leave together.
// @Tags Auth
// @Produce json
// @Success 200 {object} map[string]bool
// @Failure 401 {object} map[string]string "No valid session"
// @Router /logout [post]
func (h *Handler) logout(c *gin.Context) {
	log := h.logger.WithField("method", "logout")

	token, _ := c.Cookie(sessionCookie)
	if err := h.sessions.Delete(c.Request.Context(), token); err != nil &&
		!errors.Is(err, apperrors.ErrUnauthorized) {
		log.WithError(err).Error("Failed to delete session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	h.setSessionCookie(c, "", -1)

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// @Summary Report session status
// @Description Report whether the caller is authenticated and whether the profile is complete.
// @Tags Auth
// @Produce json
// @Success 200 {object} AuthStatusResponse
// @Router /auth-status [get]
func (h *Handler) authStatus(c *gin.Context) {
	log := h.logger.WithField("method", "authStatus")

	token, err := c.Cookie(sessionCookie)
	if err != nil {
		c.JSON(http.StatusOK, AuthStatusResponse{Authenticated: false})
		return
	}

	sess, err := h.sessions.Get(c.Request.Context(), token)
	if err != nil {
		c.JSON(http.StatusOK, AuthStatusResponse{Authenticated: false})
		return
	}

	// Аутентифицирован и профиль заполнен - два разных предиката:
	// сессия может существовать до того, как задано имя
	profileComplete := false
	if user, err := h.identityService.GetUser(c.Request.Context(), sess.UserID); err == nil {
		profileComplete = user.ProfileComplete()
	} else {
		log.WithError(err).Warn("Failed to load user for auth status")
	}

	c.JSON(http.StatusOK, AuthStatusResponse{
		Authenticated:   true,
		Phone:           sess.Phone,
		UserID:          sess.UserID.String(),
		ProfileComplete: profileComplete,
	})
}

// @Summary Submit an emergency request
// @Description Append one immutable emergency request. Rate limited per identity; MEDICAL is exempt.
// @Tags Requests
// @Accept json
// @Produce json
// @Param request body SubmitRequest true "Submission"
// @Success 201 {object} RequestResponse
// @Failure 400 {object} map[string]string "Invalid request body or taxonomy"
// @Failure 401 {object} map[string]string "No valid session"
// @Failure 409 {object} map[string]string "Profile incomplete"
// @Failure 429 {object} map[string]string "Rate limited"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /submit [post]
func (h *Handler) submit(c *gin.Context) {
	var input SubmitRequest
	log := h.logger.WithField("method", "submit")

	if err := c.ShouldBindJSON(&input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess := currentSession(c)
	req, err := h.requestService.Submit(c.Request.Context(), sess.UserID, service.SubmitInput{
		TypeCode:    input.TypeCode,
		SubTypeCode: input.SubTypeCode,
		Latitude:    input.Latitude,
		Longitude:   input.Longitude,
		Details:     input.Details,
	})
	if err != nil {
		h.respondError(c, log, err)
		return
	}

	c.JSON(http.StatusCreated, ModelToRequestResponse(req, false))
}

// @Summary Update profile
// @Description Overwrite the identity's name and surname. Last write wins, no history is kept.
// @Tags Auth
// @Accept json
// @Produce json
// @Param profile body ProfileRequest true "Profile update"
// @Success 200 {object} UserResponse
// @Failure 400 {object} map[string]string "Invalid request body"
// @Failure 401 {object} map[string]string "No valid session"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /profile [post]
func (h *Handler) updateProfile(c *gin.Context) {
	var input ProfileRequest
	log := h.logger.WithField("method", "updateProfile")

	if err := c.ShouldBindJSON(&input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess := currentSession(c)
	user, err := h.identityService.UpdateProfile(c.Request.Context(), sess.UserID, input.Name, input.Surname)
	if err != nil {
		h.respondError(c, log, err)
		return
	}

	c.JSON(http.StatusOK, ModelToUserResponse(user))
}

// @Summary Get application health status
// @Description Get health status of the application
// @Tags System
// @Produce json
// @Success 200 {object} map[string]string "Status OK"
// @Router /system/health [get]
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// respondError сопоставляет ошибки ядра с HTTP-статусами
func (h *Handler) respondError(c *gin.Context, log *logrus.Entry, err error) {
	switch {
	case errors.Is(err, apperrors.ErrInvalidPhone):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid Indian mobile number."})
	case errors.Is(err, apperrors.ErrMissingName):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name is required for first login."})
	case errors.Is(err, apperrors.ErrInvalidTaxonomy):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request type or subtype."})
	case errors.Is(err, apperrors.ErrProfileIncomplete):
		c.JSON(http.StatusConflict, gin.H{"error": "Profile is incomplete. Set a name before submitting."})
	case errors.Is(err, apperrors.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests. Try again later."})
	case errors.Is(err, apperrors.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized."})
	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied from this IP."})
	default:
		log.WithError(err).Error("Request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
