package http

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"takasafi/internal/ai"
	"takasafi/internal/auth"
	"takasafi/internal/domain"
	"takasafi/internal/repository"
	"takasafi/internal/service"
	"takasafi/internal/storage"
)

const ctxUserIDKey = "userID"

// Generation failures degrade to canned copy instead of an error so the
// form flow never blocks on the model.
const (
	fallbackDescription      = "Join us for this amazing event to help keep our environment clean!"
	fallbackEmptyDescription = "Join us to make a difference!"
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	users       service.UserService
	events      service.EventService
	describer   ai.Describer
	storage     storage.Service
	storageOpts storage.UploadOptions
	jwtSecret   []byte
	tokenTTL    time.Duration
	logger      *logrus.Logger
}

func NewHandler(
	users service.UserService,
	events service.EventService,
	describer ai.Describer,
	store storage.Service,
	storageOpts storage.UploadOptions,
	jwtSecret string,
	tokenTTL time.Duration,
	logger *logrus.Logger,
) *Handler {
	if logger == nil {
		logger = logrus.New()
	}
	return &Handler{
		users:       users,
		events:      events,
		describer:   describer,
		storage:     store,
		storageOpts: storageOpts,
		jwtSecret:   []byte(jwtSecret),
		tokenTTL:    tokenTTL,
		logger:      logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	api := router.Group("/api")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/signup", h.signup)
			authGroup.POST("/login", h.login)
			authGroup.GET("/me", h.authRequired(), h.me)
		}

		api.GET("/events", h.listEvents)
		api.GET("/events/:id", h.getEvent)

		protected := api.Group("", h.authRequired())
		{
			protected.POST("/events", h.createEvent)
			protected.PUT("/events/:id", h.updateEvent)
			protected.DELETE("/events/:id", h.deleteEvent)
			protected.POST("/describe", h.describe)
			protected.POST("/uploads", h.upload)
		}
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// authRequired gates protected routes behind a bearer token. The header must
// consist of exactly two space-separated parts with a Bearer scheme.
func (h *Handler) authRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "No authorization header"})
			return
		}

		parts := strings.Split(header, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid authorization header"})
			return
		}

		claims, err := auth.VerifyToken(parts[1], h.jwtSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid token"})
			return
		}

		c.Set(ctxUserIDKey, claims.Subject)
		c.Next()
	}
}

func currentUserID(c *gin.Context) string {
	return c.GetString(ctxUserIDKey)
}

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Email and password required"})
		return
	}

	user, err := h.users.Register(c.Request.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"message": "Email and password required"})
		case errors.Is(err, service.ErrUserAlreadyExists):
			c.JSON(http.StatusConflict, gin.H{"message": "User already exists"})
		default:
			h.logger.Errorf("signup: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		}
		return
	}

	h.respondWithToken(c, user)
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Email and password required"})
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"message": "Email and password required"})
		case errors.Is(err, service.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
		default:
			h.logger.Errorf("login: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		}
		return
	}

	h.respondWithToken(c, user)
}

func (h *Handler) respondWithToken(c *gin.Context, user *domain.User) {
	token, err := auth.IssueToken(user.ID, user.Email, h.jwtSecret, h.tokenTTL)
	if err != nil {
		h.logger.Errorf("issue token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	c.JSON(http.StatusOK, authResponse{
		Token: token,
		User:  userToResponse(user),
	})
}

func (h *Handler) me(c *gin.Context) {
	user, err := h.users.GetByID(c.Request.Context(), currentUserID(c))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
			return
		}
		h.logger.Errorf("me: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": userToResponse(user)})
}

func (h *Handler) listEvents(c *gin.Context) {
	filter := repository.EventFilter{
		Search:   c.Query("search"),
		Category: domain.EventCategory(c.Query("category")),
	}

	events, err := h.events.ListEvents(c.Request.Context(), filter)
	if err != nil {
		h.logger.Errorf("list events: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	resp := make([]eventResponse, len(events))
	for i := range events {
		resp[i] = eventToResponse(events[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) getEvent(c *gin.Context) {
	event, err := h.events.GetEvent(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Event not found"})
			return
		}
		h.logger.Errorf("get event: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	c.JSON(http.StatusOK, eventToResponse(*event))
}

func (h *Handler) createEvent(c *gin.Context) {
	var req eventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	organizer, err := h.users.GetByID(c.Request.Context(), currentUserID(c))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
			return
		}
		h.logger.Errorf("create event: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	event, err := h.events.CreateEvent(c.Request.Context(), organizer, req.toInput())
	if err != nil {
		h.respondEventError(c, err)
		return
	}

	c.JSON(http.StatusOK, eventToResponse(*event))
}

func (h *Handler) updateEvent(c *gin.Context) {
	var req eventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	event, err := h.events.UpdateEvent(c.Request.Context(), currentUserID(c), c.Param("id"), req.toInput())
	if err != nil {
		h.respondEventError(c, err)
		return
	}

	c.JSON(http.StatusOK, eventToResponse(*event))
}

func (h *Handler) deleteEvent(c *gin.Context) {
	id := c.Param("id")
	if err := h.events.DeleteEvent(c.Request.Context(), currentUserID(c), id); err != nil {
		h.respondEventError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

func (h *Handler) respondEventError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"message": "Only the organizer may modify this event"})
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Event not found"})
	default:
		h.logger.Errorf("event operation: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
	}
}

type describeRequest struct {
	Title    string `json:"title"`
	Category string `json:"category"`
	Location string `json:"location"`
}

func (h *Handler) describe(c *gin.Context) {
	if h.describer == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": "Description service not configured"})
		return
	}

	var req describeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Location) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Title and location required"})
		return
	}

	description, err := h.describer.Describe(c.Request.Context(), req.Title, req.Category, req.Location)
	if err != nil {
		if errors.Is(err, ai.ErrEmptyResponse) {
			description = fallbackEmptyDescription
		} else {
			h.logger.Warnf("generate description: %v", err)
			description = fallbackDescription
		}
	}

	c.JSON(http.StatusOK, gin.H{"description": description})
}

func (h *Handler) upload(c *gin.Context) {
	if h.storage == nil || h.storageOpts.Bucket == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": "Storage service not configured"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "File field required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.logger.Errorf("open upload: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}
	defer file.Close()

	key := uuid.NewString() + strings.ToLower(filepath.Ext(fileHeader.Filename))
	contentType := fileHeader.Header.Get("Content-Type")

	url, err := h.storage.Upload(c.Request.Context(), h.storageOpts, key, contentType, file)
	if err != nil {
		h.logger.Errorf("upload object: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}

type authResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type eventRequest struct {
	Title         string    `json:"title" binding:"required"`
	Description   string    `json:"description"`
	Location      string    `json:"location" binding:"required"`
	ImageURL      string    `json:"imageUrl"`
	StartDateTime time.Time `json:"startDateTime"`
	EndDateTime   time.Time `json:"endDateTime"`
	Price         string    `json:"price"`
	IsFree        bool      `json:"isFree"`
	URL           string    `json:"url"`
	Category      string    `json:"category" binding:"required"`
}

func (r eventRequest) toInput() service.EventInput {
	return service.EventInput{
		Title:       r.Title,
		Description: r.Description,
		Location:    r.Location,
		ImageURL:    r.ImageURL,
		StartsAt:    r.StartDateTime,
		EndsAt:      r.EndDateTime,
		Price:       r.Price,
		IsFree:      r.IsFree,
		URL:         r.URL,
		Category:    domain.EventCategory(r.Category),
	}
}

type eventResponse struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	Location      string `json:"location"`
	ImageURL      string `json:"imageUrl"`
	StartDateTime string `json:"startDateTime"`
	EndDateTime   string `json:"endDateTime"`
	Price         string `json:"price"`
	IsFree        bool   `json:"isFree"`
	URL           string `json:"url,omitempty"`
	Category      string `json:"category"`
	Organizer     string `json:"organizer"`
	OrganizerID   string `json:"organizerId"`
	CreatedAt     string `json:"createdAt"`
}

func userToResponse(user *domain.User) userResponse {
	return userResponse{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
	}
}

func eventToResponse(event domain.Event) eventResponse {
	return eventResponse{
		ID:            event.ID,
		Title:         event.Title,
		Description:   event.Description,
		Location:      event.Location,
		ImageURL:      event.ImageURL,
		StartDateTime: event.StartsAt.Format(time.RFC3339),
		EndDateTime:   event.EndsAt.Format(time.RFC3339),
		Price:         event.Price,
		IsFree:        event.IsFree,
		URL:           event.URL,
		Category:      string(event.Category),
		Organizer:     event.Organizer,
		OrganizerID:   event.OrganizerID,
		CreatedAt:     event.CreatedAt.Format(time.RFC3339),
	}
}
