package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/atelierlabs/mintline/pkg/pipeline/errs"
)

const maxUploadSize = 32 << 20

func (c *Controller) generateRouter() *gin.Engine {
	router := gin.Default()

	router.GET("/state", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, c.State())
	})

	router.POST("/file", func(ctx *gin.Context) {
		fileHeader, err := ctx.FormFile("file")
		if err != nil {
			ctx.String(http.StatusBadRequest, "missing file field: %s", err.Error())
			return
		}
		if fileHeader.Size > maxUploadSize {
			ctx.String(http.StatusRequestEntityTooLarge, "file too large")
			return
		}

		file, err := fileHeader.Open()
		if err != nil {
			ctx.String(http.StatusBadRequest, err.Error())
			return
		}
		defer file.Close()

		content, err := io.ReadAll(file)
		if err != nil {
			ctx.String(http.StatusBadRequest, err.Error())
			return
		}

		if err := c.SelectFile(fileHeader.Filename, content); err != nil {
			abortWithStageError(ctx, err)
			return
		}

		ctx.JSON(http.StatusOK, c.State())
	})

	router.POST("/upload", func(ctx *gin.Context) {
		address, err := c.UploadImage(ctx.Request.Context())
		if err != nil {
			abortWithStageError(ctx, err)
			return
		}

		ctx.JSON(http.StatusOK, gin.H{"address": address})
	})

	router.POST("/metadata", func(ctx *gin.Context) {
		var request struct {
			Name        string `json:"name"`
			Description string `json:"description"`
		}
		if err := ctx.ShouldBindJSON(&request); err != nil {
			ctx.String(http.StatusBadRequest, err.Error())
			return
		}

		metadata, err := c.BuildMetadata(request.Name, request.Description)
		if err != nil {
			abortWithStageError(ctx, err)
			return
		}

		ctx.JSON(http.StatusOK, metadata)
	})

	router.POST("/metadata/upload", func(ctx *gin.Context) {
		address, err := c.UploadMetadata(ctx.Request.Context())
		if err != nil {
			abortWithStageError(ctx, err)
			return
		}

		ctx.JSON(http.StatusOK, gin.H{"address": address})
	})

	router.GET("/metadata/preview", func(ctx *gin.Context) {
		document, err := c.MetadataPreview(ctx.Request.Context())
		if err != nil {
			abortWithStageError(ctx, err)
			return
		}

		ctx.Data(http.StatusOK, "application/json", []byte(document))
	})

	router.POST("/mint", func(ctx *gin.Context) {
		tx, err := c.Mint(ctx.Request.Context())
		if err != nil {
			abortWithStageError(ctx, err)
			return
		}

		ctx.JSON(http.StatusOK, tx)
	})

	router.POST("/reset", func(ctx *gin.Context) {
		if err := c.Reset(); err != nil {
			abortWithStageError(ctx, err)
			return
		}

		ctx.JSON(http.StatusOK, c.State())
	})

	return router
}

func (c *Controller) GetRouter() *gin.Engine {
	return c.apiRouter
}

func abortWithStageError(ctx *gin.Context, err error) {
	ctx.String(statusForError(err), err.Error())
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, errs.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrStageBusy):
		return http.StatusConflict
	case errors.Is(err, errs.ErrWalletUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, errs.ErrAuthorization):
		return http.StatusUnauthorized
	default:
		return http.StatusBadGateway
	}
}

func (c *Controller) StartServer(ctx context.Context) error {
	slog.Info("starting server", "port", c.apiIpPort)

	if c.apiIpPort == "" {
		slog.Info("api ip port is empty, skipping server")
		return nil
	}

	server := &http.Server{
		Addr:    c.apiIpPort,
		Handler: c.apiRouter,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
		}
	}()

	go func() {
		<-ctx.Done()
		if err := server.Shutdown(context.Background()); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	return nil
}

// Start serves the pipeline API until the context is cancelled.
func (c *Controller) Start(ctx context.Context) error {
	if err := c.StartServer(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	return ctx.Err()
}
