// Package api exposes the HTTP and WebSocket surface of the print daemon
package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/tillpoint/print-engine/internal/discovery"
	"github.com/tillpoint/print-engine/internal/profile"
	"github.com/tillpoint/print-engine/internal/spool"
	"github.com/tillpoint/print-engine/pkg/receipt"
)

// Server is the API server
type Server struct {
	router   *gin.Engine
	store    *profile.Store
	queue    *spool.Queue
	scanner  *discovery.Scanner
	upgrader websocket.Upgrader
}

// NewServer creates the API server and registers all routes
func NewServer(store *profile.Store, queue *spool.Queue, scanner *discovery.Scanner) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.Default()
	router.Use(corsMiddleware())

	server := &Server{
		router:  router,
		store:   store,
		queue:   queue,
		scanner: scanner,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}

	server.setupRoutes()

	return server
}

func (s *Server) setupRoutes() {
	s.router.GET("/profiles", s.handleGetProfiles)
	s.router.POST("/profiles", s.handleCreateProfile)
	s.router.GET("/profiles/:id", s.handleGetProfile)
	s.router.PUT("/profiles/:id", s.handleUpdateProfile)
	s.router.DELETE("/profiles/:id", s.handleDeleteProfile)
	s.router.POST("/profiles/:id/default", s.handleSetDefault)

	s.router.POST("/print", s.handlePrint)
	s.router.POST("/print/test", s.handlePrintTest)

	s.router.GET("/jobs", s.handleGetJobs)
	s.router.GET("/jobs/:id", s.handleGetJob)
	s.router.DELETE("/jobs", s.handleClearJobs)

	s.router.POST("/discover", s.handleDiscover)

	s.router.GET("/ws", s.handleWebSocket)

	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
}

func (s *Server) handleGetProfiles(c *gin.Context) {
	c.JSON(200, gin.H{"profiles": s.store.All()})
}

func (s *Server) handleCreateProfile(c *gin.Context) {
	var p profile.Profile
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}
	if err := validateProfile(&p); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	created, err := s.store.Create(p)
	if err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}

	c.JSON(200, gin.H{"success": true, "profile": created})
}

func (s *Server) handleGetProfile(c *gin.Context) {
	p, err := s.store.Get(c.Param("id"))
	if err != nil {
		c.JSON(404, gin.H{"error": "profile not found"})
		return
	}
	c.JSON(200, p)
}

func (s *Server) handleUpdateProfile(c *gin.Context) {
	var p profile.Profile
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}
	p.ID = c.Param("id")
	if err := validateProfile(&p); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	if err := s.store.Update(p); err != nil {
		c.JSON(404, gin.H{"error": "profile not found"})
		return
	}

	updated, _ := s.store.Get(p.ID)
	c.JSON(200, gin.H{"success": true, "profile": updated})
}

func (s *Server) handleDeleteProfile(c *gin.Context) {
	if err := s.store.Remove(c.Param("id")); err != nil {
		c.JSON(404, gin.H{"error": "profile not found"})
		return
	}
	c.JSON(200, gin.H{"success": true})
}

func (s *Server) handleSetDefault(c *gin.Context) {
	if err := s.store.SetDefault(c.Param("id")); err != nil {
		c.JSON(404, gin.H{"error": "profile not found"})
		return
	}
	c.JSON(200, gin.H{"success": true})
}

// resolveProfile returns the requested profile, or the default one when no
// ID is given
func (s *Server) resolveProfile(id string) (*profile.Profile, error) {
	if id != "" {
		return s.store.Get(id)
	}
	return s.store.DefaultProfile()
}

func (s *Server) handlePrint(c *gin.Context) {
	var req struct {
		ProfileID   string           `json:"profile_id"`
		Receipt     *receipt.Content `json:"receipt"`
		ReceiptPath string           `json:"receipt_path"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	var content *receipt.Content
	var err error

	switch {
	case req.Receipt != nil:
		content = req.Receipt
	case req.ReceiptPath != "":
		content, err = receipt.ParseFile(req.ReceiptPath)
		if err != nil {
			c.JSON(400, gin.H{"error": fmt.Sprintf("failed to load receipt: %v", err)})
			return
		}
	default:
		c.JSON(400, gin.H{"error": "receipt or receipt_path is required"})
		return
	}

	if err := receipt.Validate(content); err != nil {
		c.JSON(400, gin.H{"error": fmt.Sprintf("invalid receipt: %v", err)})
		return
	}

	p, err := s.resolveProfile(req.ProfileID)
	if err != nil {
		c.JSON(404, gin.H{"error": "no usable printer profile"})
		return
	}

	jobID := s.queue.Enqueue(p.ID, content)

	c.JSON(200, gin.H{"success": true, "job_id": jobID})
}

func (s *Server) handlePrintTest(c *gin.Context) {
	var req struct {
		ProfileID string `json:"profile_id"`
	}
	// Body is optional for a test print
	_ = c.ShouldBindJSON(&req)

	p, err := s.resolveProfile(req.ProfileID)
	if err != nil {
		c.JSON(404, gin.H{"error": "no usable printer profile"})
		return
	}

	jobID := s.queue.Enqueue(p.ID, receipt.TestPage(p.Name))

	c.JSON(200, gin.H{"success": true, "job_id": jobID})
}

func (s *Server) handleGetJobs(c *gin.Context) {
	c.JSON(200, gin.H{"jobs": s.queue.All()})
}

func (s *Server) handleGetJob(c *gin.Context) {
	job := s.queue.Get(c.Param("id"))
	if job == nil {
		c.JSON(404, gin.H{"error": "job not found"})
		return
	}
	c.JSON(200, job)
}

func (s *Server) handleClearJobs(c *gin.Context) {
	s.queue.ClearFinished()
	c.JSON(200, gin.H{"success": true})
}

func (s *Server) handleDiscover(c *gin.Context) {
	var req struct {
		Transport string `json:"transport" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "transport is required"})
		return
	}

	t := profile.Transport(req.Transport)
	switch t {
	case profile.TransportUSB, profile.TransportNetwork, profile.TransportBluetooth, profile.TransportSerial:
	default:
		c.JSON(400, gin.H{"error": fmt.Sprintf("transport %q is not scannable", req.Transport)})
		return
	}

	devices := s.scanner.Scan(c.Request.Context(), t)
	s.BroadcastDevices(t, devices)
	c.JSON(200, gin.H{"devices": devices})
}

func validateProfile(p *profile.Profile) error {
	switch p.Transport {
	case profile.TransportUSB, profile.TransportNetwork, profile.TransportBluetooth,
		profile.TransportSerial, profile.TransportFallback:
	default:
		return fmt.Errorf("unknown transport %q", p.Transport)
	}

	switch p.Dialect {
	case "", profile.DialectThermalESCPOS, profile.DialectStandardPCL, profile.DialectDotMatrix:
	default:
		return fmt.Errorf("unknown dialect %q", p.Dialect)
	}

	if p.Name == "" {
		return fmt.Errorf("profile name is required")
	}
	if p.Transport == profile.TransportNetwork && p.Host == "" {
		return fmt.Errorf("network transport requires a host")
	}
	if p.Transport == profile.TransportBluetooth && p.BLEAddress == "" {
		return fmt.Errorf("bluetooth transport requires a device address")
	}
	if p.Transport == profile.TransportSerial && p.Device == "" {
		return fmt.Errorf("serial transport requires a device path")
	}
	return nil
}

// Run starts the API server
func (s *Server) Run(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
