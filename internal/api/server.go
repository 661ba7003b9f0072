package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"rendezvous/internal/identity"
	"rendezvous/internal/websocket"
	"rendezvous/pkg/types"
)

// Accounts is the slice of the account service the HTTP layer needs. Local
// interface keeps the API decoupled from the concrete service for testing.
type Accounts interface {
	RegisterAccount(ctx context.Context, name, email, password string) (*identity.User, error)
	Login(ctx context.Context, email, password string) (string, *types.Identity, error)
	VerifyToken(token string) (string, error)
}

// Server is the HTTP surface: account endpoints, the WebSocket upgrade and a
// health check. No relay logic lives here.
type Server struct {
	engine   *gin.Engine
	accounts Accounts
	ws       *websocket.Handler
	registry *websocket.Registry
	log      *logrus.Entry
}

// NewServer wires the routes.
func NewServer(accounts Accounts, ws *websocket.Handler, registry *websocket.Registry, log *logrus.Entry) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{
		engine:   engine,
		accounts: accounts,
		ws:       ws,
		registry: registry,
		log:      log,
	}

	auth := engine.Group("/api/auth")
	auth.POST("/register", s.handleRegister)
	auth.POST("/login", s.handleLogin)
	auth.POST("/check", s.handleCheck)

	engine.GET("/ws", func(c *gin.Context) {
		s.ws.HandleWebSocket(c.Writer, c.Request)
	})
	engine.GET("/healthz", s.handleHealth)

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.engine.ServeHTTP(w, r)
}

type credentialsRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleRegister(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" || req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "name, email and password are required"})
		return
	}

	user, err := s.accounts.RegisterAccount(c.Request.Context(), req.Name, req.Email, req.Password)
	switch {
	case err == identity.ErrEmailTaken:
		c.JSON(http.StatusBadRequest, gin.H{"msg": "Email already exists"})
	case err != nil:
		s.log.WithError(err).Error("account registration failed")
		c.JSON(http.StatusInternalServerError, gin.H{"msg": "Server error"})
	default:
		c.JSON(http.StatusOK, gin.H{"msg": "User registered successfully", "userId": user.UserID})
	}
}

func (s *Server) handleLogin(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "email and password are required"})
		return
	}

	token, who, err := s.accounts.Login(c.Request.Context(), req.Email, req.Password)
	switch {
	case err == identity.ErrInvalidCredentials:
		c.JSON(http.StatusBadRequest, gin.H{"msg": "Invalid credentials"})
	case err != nil:
		s.log.WithError(err).Error("login failed")
		c.JSON(http.StatusInternalServerError, gin.H{"msg": "Server error"})
	default:
		c.JSON(http.StatusOK, gin.H{
			"msg":   "Login success",
			"token": token,
			"user":  gin.H{"id": who.ID, "name": who.Name},
		})
	}
}

func (s *Server) handleCheck(c *gin.Context) {
	token := bearerToken(c.GetHeader("Authorization"))
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"msg": "missing bearer token"})
		return
	}
	userID, err := s.accounts.VerifyToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"msg": "invalid token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"userId": userID})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"connections": s.registry.Len(),
	})
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}
