package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"character-hub/internal/domain"
	"character-hub/internal/favorites"
	"character-hub/internal/service"
	"character-hub/internal/storage"
	"character-hub/internal/token"
)

const identityKey = "identity"

// Handler wires HTTP routes to domain services.
type Handler struct {
	auth       service.AuthService
	characters service.CharacterService
	codec      *token.Codec
	storage    storage.Service
	bucket     string
	artPrefix  string
	logger     *logrus.Logger
}

func NewHandler(auth service.AuthService, characters service.CharacterService, codec *token.Codec, store storage.Service, bucket, artPrefix string, logger *logrus.Logger) *Handler {
	return &Handler{
		auth:       auth,
		characters: characters,
		codec:      codec,
		storage:    store,
		bucket:     bucket,
		artPrefix:  artPrefix,
		logger:     logger,
	}
}

// RegisterRoutes mounts all endpoints. The routes under /api/user are the
// protected ones; everything else bypasses the gate.
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())

	api := router.Group("/api")
	{
		api.POST("/auth/login", h.login)
		api.POST("/auth/register", h.register)
		api.POST("/auth/guest", h.guest)

		api.GET("/roles", h.searchCharacters)
		api.GET("/roles/:id", h.getBackground)
		api.GET("/art", h.listArt)
		api.GET("/health", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"ok": "ok"})
		})
	}

	user := api.Group("/user")
	user.Use(h.requireLogin())
	{
		user.POST("/roles/:id", h.saveFavorite)
		user.GET("/roles", h.listFavorites)
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

// requireLogin is the request gate: it admits only requests carrying a
// verifiable token for a logged-in identity, and attaches that identity to
// the request context.
func (h *Handler) requireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			abortUnauthorized(c, "invalid_token")
			return
		}

		ident, err := h.codec.Verify(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			// forged or mangled tokens are hostile input; expiry is routine
			if errors.Is(err, token.ErrSignatureInvalid) || errors.Is(err, token.ErrMalformed) {
				h.logger.WithError(err).Warnf("rejected token from %s", c.ClientIP())
			} else {
				h.logger.WithError(err).Debugf("rejected token from %s", c.ClientIP())
			}
			abortUnauthorized(c, "token_invalid")
			return
		}

		if ident.IsGuest {
			abortUnauthorized(c, "not_logged_in")
			return
		}

		c.Set(identityKey, ident)
		c.Next()
	}
}

func identityFrom(c *gin.Context) (domain.Identity, bool) {
	value, ok := c.Get(identityKey)
	if !ok {
		return domain.Identity{}, false
	}
	ident, ok := value.(domain.Identity)
	return ident, ok
}

// envelope is the single response shape for every endpoint.
type envelope struct {
	Success bool   `json:"success"`
	Reason  string `json:"reason,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, envelope{Success: true, Data: data})
}

func respondError(c *gin.Context, status int, reason string) {
	c.JSON(status, envelope{Success: false, Reason: reason})
}

func abortUnauthorized(c *gin.Context, reason string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, envelope{Success: false, Reason: reason})
}

// reasonFor maps service errors to a status and a stable machine-readable
// reason.
func reasonFor(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrPasswordFormat):
		return http.StatusBadRequest, "password_format_invalid"
	case errors.Is(err, service.ErrUsernameFormat):
		return http.StatusBadRequest, "username_format_invalid"
	case errors.Is(err, service.ErrEmailFormat):
		return http.StatusBadRequest, "email_format_invalid"
	case errors.Is(err, service.ErrConfirmationMismatch):
		return http.StatusBadRequest, "confirmation_mismatch"
	case errors.Is(err, service.ErrUsernameTaken):
		return http.StatusConflict, "username_taken"
	case errors.Is(err, service.ErrEmailTaken):
		return http.StatusConflict, "email_taken"
	case errors.Is(err, service.ErrUsernameNotFound):
		return http.StatusUnauthorized, "username_not_found"
	case errors.Is(err, service.ErrPasswordIncorrect):
		return http.StatusUnauthorized, "password_incorrect"
	case errors.Is(err, service.ErrKeywordRequired):
		return http.StatusBadRequest, "keyword_required"
	case errors.Is(err, service.ErrCharacterNotFound):
		return http.StatusNotFound, "character_not_found"
	case errors.Is(err, favorites.ErrPersistFailed):
		return http.StatusServiceUnavailable, "persist_failed"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type registerRequest struct {
	Username      string `json:"username"`
	Password      string `json:"password"`
	PasswordAgain string `json:"password_again"`
	Email         string `json:"email"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "bad_request")
		return
	}

	signed, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		status, reason := reasonFor(err)
		respondError(c, status, reason)
		return
	}

	respondOK(c, gin.H{"token": signed})
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "bad_request")
		return
	}

	err := h.auth.Register(c.Request.Context(), service.RegisterInput{
		Username:      req.Username,
		Password:      req.Password,
		PasswordAgain: req.PasswordAgain,
		Email:         req.Email,
	})
	if err != nil {
		status, reason := reasonFor(err)
		respondError(c, status, reason)
		return
	}

	respondOK(c, nil)
}

func (h *Handler) guest(c *gin.Context) {
	signed, quota, err := h.auth.Guest(c.Request.Context())
	if err != nil {
		status, reason := reasonFor(err)
		respondError(c, status, reason)
		return
	}

	respondOK(c, gin.H{"token": signed, "trialCount": quota})
}

func (h *Handler) searchCharacters(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		respondError(c, http.StatusBadRequest, "bad_request")
		return
	}
	size, err := strconv.Atoi(c.DefaultQuery("size", "10"))
	if err != nil || size < 1 {
		respondError(c, http.StatusBadRequest, "bad_request")
		return
	}

	total, characters, err := h.characters.Search(c.Request.Context(), c.Query("keyword"), page, size)
	if err != nil {
		status, reason := reasonFor(err)
		respondError(c, status, reason)
		return
	}

	list := make([]CharacterResponse, len(characters))
	for i := range characters {
		list[i] = characterToResponse(characters[i])
	}
	respondOK(c, gin.H{"total": total, "list": list})
}

func (h *Handler) getBackground(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, http.StatusBadRequest, "bad_request")
		return
	}

	background, err := h.characters.GetBackground(c.Request.Context(), id)
	if err != nil {
		status, reason := reasonFor(err)
		respondError(c, status, reason)
		return
	}

	respondOK(c, gin.H{"background": background})
}

func (h *Handler) saveFavorite(c *gin.Context) {
	ident, ok := identityFrom(c)
	if !ok {
		abortUnauthorized(c, "invalid_token")
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, http.StatusBadRequest, "bad_request")
		return
	}

	if err := h.characters.SaveFavorite(c.Request.Context(), ident.Subject, id); err != nil {
		status, reason := reasonFor(err)
		respondError(c, status, reason)
		return
	}

	respondOK(c, nil)
}

func (h *Handler) listFavorites(c *gin.Context) {
	ident, ok := identityFrom(c)
	if !ok {
		abortUnauthorized(c, "invalid_token")
		return
	}

	characters, err := h.characters.ListFavorites(c.Request.Context(), ident.Subject)
	if err != nil {
		status, reason := reasonFor(err)
		respondError(c, status, reason)
		return
	}

	list := make([]CharacterResponse, len(characters))
	for i := range characters {
		list[i] = characterToResponse(characters[i])
	}
	respondOK(c, gin.H{"list": list})
}

func (h *Handler) listArt(c *gin.Context) {
	if h.storage == nil || h.bucket == "" {
		respondError(c, http.StatusInternalServerError, "storage_not_configured")
		return
	}

	prefix := c.DefaultQuery("prefix", h.artPrefix)
	objects, err := h.storage.ListObjects(c.Request.Context(), h.bucket, prefix)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal_error")
		return
	}

	list := make([]ArtObjectResponse, len(objects))
	for i := range objects {
		list[i] = objectToResponse(objects[i])
	}
	respondOK(c, gin.H{"list": list})
}

type CharacterResponse struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Desc       string `json:"desc"`
	Avatar     string `json:"avatar"`
	Background string `json:"background"`
}

func characterToResponse(ch domain.Character) CharacterResponse {
	return CharacterResponse{
		ID:         ch.ID,
		Name:       ch.Name,
		Desc:       ch.Desc,
		Avatar:     ch.Avatar,
		Background: ch.Background,
	}
}

type ArtObjectResponse struct {
	Key          string  `json:"key"`
	Size         int64   `json:"size"`
	LastModified *string `json:"last_modified,omitempty"`
}

func objectToResponse(obj storage.ObjectInfo) ArtObjectResponse {
	resp := ArtObjectResponse{
		Key:  obj.Key,
		Size: obj.Size,
	}
	if obj.LastModified != nil && !obj.LastModified.IsZero() {
		v := obj.LastModified.Format(time.RFC3339)
		resp.LastModified = &v
	}
	return resp
}
