package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/example/facegate/internal/auth"
	"github.com/example/facegate/internal/repository"
	"github.com/example/facegate/internal/usecase"
)

// MaxUploadSize bounds multipart uploads on the enrollment endpoint.
const MaxUploadSize = 8 << 20

const adminTokenTTL = 12 * time.Hour

// AdminAuth configures the admin token issuing and validation.
type AdminAuth struct {
	Secret   string
	Audience string
}

type verifyPayload struct {
	QRCode    string   `json:"qr_code"`
	Frames    []string `json:"frames"`
	Direction string   `json:"direction"`
}

type passwordPayload struct {
	Password string `json:"password"`
	Confirm  string `json:"confirm"`
}

// RegisterRoutes wires the HTTP handlers to the Gin router.
func RegisterRoutes(router *gin.Engine, uc *usecase.AccessUseCase, adminAuth AdminAuth) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.POST("/verify", func(c *gin.Context) {
		var req verifyPayload
		// a malformed body is treated as missing data so the attempt
		// still lands in the audit log
		_ = c.ShouldBindJSON(&req)

		result := uc.Verify(c.Request.Context(), usecase.VerifyRequest{
			QRCode:    req.QRCode,
			Frames:    req.Frames,
			Direction: req.Direction,
		})

		code := http.StatusOK
		if result.Status == usecase.StatusError {
			code = http.StatusBadRequest
		}
		c.JSON(code, gin.H{"status": result.Status, "message": result.Message})
	})

	router.GET("/admin/setup", func(c *gin.Context) {
		configured, err := uc.AdminConfigured(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read setup state"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"configured": configured})
	})

	router.POST("/admin/setup", func(c *gin.Context) {
		var req passwordPayload
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if req.Password != req.Confirm {
			c.JSON(http.StatusBadRequest, gin.H{"error": "passwords do not match"})
			return
		}

		if err := uc.SetupAdmin(c.Request.Context(), req.Password); err != nil {
			var validationErr *usecase.ValidationError
			if errors.As(err, &validationErr) {
				c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Message})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "setup failed"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"status": "ok"})
	})

	router.POST("/admin/login", func(c *gin.Context) {
		var req passwordPayload
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		if err := uc.CheckAdminPassword(c.Request.Context(), req.Password); err != nil {
			if errors.Is(err, usecase.ErrInvalidCredentials) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid password"})
				return
			}
			var validationErr *usecase.ValidationError
			if errors.As(err, &validationErr) {
				c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Message})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
			return
		}

		token, err := auth.IssueToken(adminAuth.Secret, auth.AdminSubject, adminAuth.Audience, adminTokenTTL)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"token": token})
	})

	admin := router.Group("/admin", auth.JWTMiddleware(adminAuth.Secret, adminAuth.Audience))

	admin.POST("/employees", func(c *gin.Context) {
		req := usecase.EnrollRequest{
			FirstName:   c.PostForm("first_name"),
			LastName:    c.PostForm("last_name"),
			ExpiresDate: c.PostForm("qr_expires_at"),
			ImageBase64: c.PostForm("face_image_b64"),
		}

		if file, err := c.FormFile("face_image"); err == nil {
			src, err := file.Open()
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "unable to open image"})
				return
			}
			defer src.Close()
			data, err := io.ReadAll(src)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read image"})
				return
			}
			req.ImageBytes = data
		}

		result, err := uc.Enroll(c.Request.Context(), req)
		if err != nil {
			var enrollErr *usecase.EnrollmentError
			var validationErr *usecase.ValidationError
			switch {
			case errors.As(err, &enrollErr):
				c.JSON(http.StatusBadRequest, gin.H{"error": enrollErr.Message})
			case errors.As(err, &validationErr):
				c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Message})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": "enrollment failed"})
			}
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"user_id": result.UserID,
			"name":    result.Name,
			"qr_code": result.QRCode,
		})
	})

	admin.GET("/employees", func(c *gin.Context) {
		users, err := uc.ListUsers(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list users"})
			return
		}

		payload := make([]gin.H, 0, len(users))
		for _, u := range users {
			payload = append(payload, gin.H{
				"id":            u.ID,
				"name":          u.Name,
				"qr_code":       u.QRCode,
				"qr_expires_at": u.QRExpiresAt,
				"created_at":    u.CreatedAt,
			})
		}
		c.JSON(http.StatusOK, gin.H{"users": payload})
	})

	admin.GET("/employees/:id/qr", func(c *gin.Context) {
		id, err := parseID(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
			return
		}

		payload, err := uc.UserQRPayload(c.Request.Context(), id)
		if err != nil {
			if usecase.IsNotFound(err) {
				c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load user"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_id": id, "payload": payload})
	})

	admin.GET("/reports", func(c *gin.Context) {
		events, err := uc.ListEvents(c.Request.Context(), c.Query("start"), c.Query("end"), c.Query("status"))
		if err != nil {
			var validationErr *usecase.ValidationError
			if errors.As(err, &validationErr) {
				c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Message})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list events"})
			return
		}

		payload := make([]gin.H, 0, len(events))
		for _, ev := range events {
			payload = append(payload, eventJSON(ev))
		}
		c.JSON(http.StatusOK, gin.H{"events": payload})
	})

	admin.GET("/events/:id/image", func(c *gin.Context) {
		id, err := parseID(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
			return
		}

		mime, data, err := uc.EventImage(c.Request.Context(), id)
		if err != nil {
			if usecase.IsNotFound(err) || errors.Is(err, usecase.ErrNoEvidence) {
				c.JSON(http.StatusNotFound, gin.H{"error": "no image for event"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load image"})
			return
		}
		c.Data(http.StatusOK, mime, data)
	})
}

func eventJSON(ev *repository.AccessEvent) gin.H {
	return gin.H{
		"id":         ev.ID,
		"user_id":    ev.UserID,
		"timestamp":  ev.Timestamp,
		"direction":  ev.Direction,
		"status":     ev.Status,
		"error_code": ev.ErrorCode,
		"qr_code":    ev.QRCode,
		"has_image":  ev.AttemptImage != nil && *ev.AttemptImage != "",
	}
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
