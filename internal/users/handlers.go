package users

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestIDKey is the gin context key holding the request id
const RequestIDKey = "request_id"

var failureMessages = map[Operation]string{
	OpCreate: "An error occurred while creating the user",
	OpList:   "An error occurred while fetching users",
	OpUpdate: "An error occurred while updating the user",
	OpDelete: "An error occurred while deleting the user",
}

// UserHandlers provides HTTP handlers for user operations
type UserHandlers struct {
	service UserService
	logger  *zap.Logger
}

// NewUserHandlers creates new user handlers
func NewUserHandlers(service UserService, logger *zap.Logger) *UserHandlers {
	return &UserHandlers{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the users resource under router
func (h *UserHandlers) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/users")
	{
		users.POST("", h.CreateUser)
		users.GET("", h.ListUsers)
		users.PUT("/:id", h.UpdateUser)
		users.DELETE("/:id", h.DeleteUser)
	}
}

func (h *UserHandlers) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	user, err := h.service.CreateUser(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, OpCreate, err)
		return
	}

	fields := []zap.Field{zap.String("request_id", c.GetString(RequestIDKey))}
	if user != nil {
		fields = append(fields, zap.Int64("user_id", user.ID))
	}
	h.logger.Info("User created", fields...)

	c.JSON(http.StatusOK, gin.H{"message": "User created successfully"})
}

func (h *UserHandlers) ListUsers(c *gin.Context) {
	users, err := h.service.ListUsers(c.Request.Context())
	if err != nil {
		h.respondError(c, OpList, err)
		return
	}
	if users == nil {
		users = []User{}
	}

	c.JSON(http.StatusOK, users)
}

func (h *UserHandlers) UpdateUser(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if req.ID != id {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id in path does not match id in body"})
		return
	}

	if err := h.service.UpdateUser(c.Request.Context(), &req); err != nil {
		h.respondError(c, OpUpdate, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User updated successfully"})
}

func (h *UserHandlers) DeleteUser(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteUser(c.Request.Context(), id); err != nil {
		h.respondError(c, OpDelete, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return 0, false
	}
	return id, true
}

// respondError is the only place a failure becomes a status code
func (h *UserHandlers) respondError(c *gin.Context, op Operation, err error) {
	var userErr *UserError
	if errors.As(err, &userErr) {
		switch userErr.Kind {
		case ErrorKindInvalidArgument:
			c.JSON(http.StatusBadRequest, gin.H{"error": userErr.Message})
			return
		case ErrorKindNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": userErr.Message})
			return
		case ErrorKindStorage:
		}
	}

	h.logger.Error("User operation failed",
		zap.String("operation", string(op)),
		zap.String("request_id", c.GetString(RequestIDKey)),
		zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": failureMessages[op]})
}
