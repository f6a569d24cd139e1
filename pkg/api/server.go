// Package api provides the REST API server for vox2osu
package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/okawaffles/vox2osu/pkg/config"
	"github.com/okawaffles/vox2osu/pkg/converter"
	"github.com/okawaffles/vox2osu/pkg/converter/targets"
	"github.com/okawaffles/vox2osu/pkg/vox"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title VOX2OSU API
// @version 1.0
// @description API for converting VOX charts to osu!mania beatmaps and MIDI previews
// @host localhost:8080
// @BasePath /api/v1

const (
	// RequestIDHeader carries the id assigned to every request
	RequestIDHeader = "X-Request-ID"
	// DiagnosticsHeader carries the number of non-fatal diagnostics of a conversion
	DiagnosticsHeader = "X-Vox2osu-Diagnostics"

	loggerKey = "logger"
)

// ConvertParams are the query parameters accepted by conversion endpoints
type ConvertParams struct {
	Keys     int     `form:"keys" binding:"omitempty,oneof=4 6"`
	Strict   bool    `form:"strict"`
	Offset   float64 `form:"offset"`
	Encoding string  `form:"encoding" binding:"omitempty,oneof=shift_jis utf-8"`
	Title    string  `form:"title"`
	Artist   string  `form:"artist"`
	Creator  string  `form:"creator"`
	DiffName string  `form:"diff_name"`
	Audio    string  `form:"audio"`
}

// Server holds the options every request starts from
type Server struct {
	opts converter.Options
}

// NewRouter builds the gin engine serving the API
func NewRouter(opts converter.Options) *gin.Engine {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	s := &Server{opts: opts}

	r := gin.Default()

	// CORS middleware
	r.Use(corsMiddleware())
	r.Use(requestIDMiddleware(opts.Logger))

	// Health check
	r.GET("/health", healthCheck)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.POST("/convert/vox2osu", s.handleVoxToOsu)
		v1.POST("/convert/vox2midi", s.handleVoxToMIDI)
		v1.POST("/inspect", s.handleInspect)
		v1.GET("/formats", listFormats)
		v1.GET("/lanes", listLanes)
	}

	// Swagger docs
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// StartServer starts the API server on the specified port
func StartServer(port int, opts converter.Options) error {
	return NewRouter(opts).Run(fmt.Sprintf(":%d", port))
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, "+RequestIDHeader)
		c.Header("Access-Control-Expose-Headers", RequestIDHeader+", "+DiagnosticsHeader)

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// requestIDMiddleware tags each request with an id and a logger carrying it
func requestIDMiddleware(logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Header(RequestIDHeader, id)
		c.Set(loggerKey, logger.With("request_id", id))
		c.Next()
	}
}

func requestLogger(c *gin.Context, fallback *log.Logger) *log.Logger {
	if l, ok := c.Get(loggerKey); ok {
		if logger, ok := l.(*log.Logger); ok {
			return logger
		}
	}
	return fallback
}

// healthCheck godoc
// @Summary Health check endpoint
// @Description Returns the health status of the API
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "vox2osu",
	})
}

// listFormats godoc
// @Summary List supported formats
// @Description Returns a list of supported file formats
// @Tags info
// @Produce json
// @Success 200 {object} map[string][]string
// @Router /api/v1/formats [get]
func listFormats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"formats":     []string{string(converter.FormatVOX), string(converter.FormatOsu), string(converter.FormatMIDI)},
		"conversions": converter.GetSupportedConversions(),
	})
}

// listLanes godoc
// @Summary List key modes
// @Description Returns the lanes mapped to output columns for each key mode
// @Tags info
// @Produce json
// @Success 200 {object} map[string][]string
// @Router /api/v1/lanes [get]
func listLanes(c *gin.Context) {
	modes := gin.H{}
	for _, keys := range []int{4, 6} {
		layout, _ := converter.Layout(keys)
		names := make([]string, len(layout))
		for i, lane := range layout {
			names[i] = fmt.Sprintf("%s (%s)", lane, lane.Section())
		}
		modes[fmt.Sprintf("%dK", keys)] = names
	}
	c.JSON(http.StatusOK, modes)
}

// handleVoxToOsu godoc
// @Summary Convert VOX to osu!mania
// @Description Upload a VOX chart and receive a .osu beatmap
// @Tags convert
// @Accept multipart/form-data
// @Produce application/octet-stream
// @Param file formData file true "VOX chart to convert"
// @Param keys query int false "Key mode, 4 or 6 (default: 4)"
// @Param offset query number false "Calibration offset in ms"
// @Param strict query bool false "Fail on malformed lines"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /api/v1/convert/vox2osu [post]
func (s *Server) handleVoxToOsu(c *gin.Context) {
	s.handleConversion(c, converter.FormatOsu)
}

// handleVoxToMIDI godoc
// @Summary Convert VOX to MIDI
// @Description Upload a VOX chart and receive a MIDI preview
// @Tags convert
// @Accept multipart/form-data
// @Produce audio/midi
// @Param file formData file true "VOX chart to convert"
// @Param keys query int false "Key mode, 4 or 6 (default: 4)"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /api/v1/convert/vox2midi [post]
func (s *Server) handleVoxToMIDI(c *gin.Context) {
	s.handleConversion(c, converter.FormatMIDI)
}

// handleInspect godoc
// @Summary Inspect a VOX chart
// @Description Upload a VOX chart and receive its markers, timeline, lane counts and diagnostics
// @Tags inspect
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "VOX chart to inspect"
// @Success 200 {object} converter.Summary
// @Failure 400 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /api/v1/inspect [post]
func (s *Server) handleInspect(c *gin.Context) {
	opts, ok := s.requestOptions(c)
	if !ok {
		return
	}
	_, data, ok := readUpload(c)
	if !ok {
		return
	}

	chart, err := converter.New(nil, opts).Inspect(data)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, chart.Summary())
}

func (s *Server) handleConversion(c *gin.Context, format converter.Format) {
	opts, ok := s.requestOptions(c)
	if !ok {
		return
	}
	filename, data, ok := readUpload(c)
	if !ok {
		return
	}

	target, err := targets.ForFormat(format, opts.Resources)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported conversion"})
		return
	}

	result, chart, err := converter.New(target, opts).Convert(data)
	if err != nil {
		writeError(c, err)
		return
	}

	// Generate output filename
	outputName := converter.OutputPath(filepath.Base(filename), format)
	if strings.TrimSuffix(outputName, filepath.Ext(outputName)) == "" {
		outputName = converter.OutputPath("converted", format)
	}

	var contentType string
	switch format {
	case converter.FormatMIDI:
		contentType = "audio/midi"
	default:
		contentType = "application/octet-stream"
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", outputName))
	c.Header(DiagnosticsHeader, fmt.Sprint(len(chart.Diagnostics)))
	c.Data(http.StatusOK, contentType, result)
}

// requestOptions applies the query parameters to the server options
func (s *Server) requestOptions(c *gin.Context) (converter.Options, bool) {
	var params ConvertParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return converter.Options{}, false
	}

	opts := s.opts
	opts.Logger = requestLogger(c, s.opts.Logger)
	if params.Keys != 0 {
		opts.Keys = params.Keys
	}
	if params.Encoding != "" {
		opts.Encoding = vox.Encoding(params.Encoding)
	}
	opts.Strict = opts.Strict || params.Strict
	opts.Offset += params.Offset
	opts.Resources = opts.Resources.Merge(config.Resources{Osu: config.OsuConfig{
		Metadata: config.OsuMetadata{
			Title:   params.Title,
			Artist:  params.Artist,
			Creator: params.Creator,
			Version: params.DiffName,
		},
		General: config.OsuGeneral{AudioFilename: params.Audio},
	}})
	return opts, true
}

func readUpload(c *gin.Context) (string, []byte, bool) {
	// Get uploaded file
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return "", nil, false
	}
	defer func() { _ = file.Close() }()

	// Read file content
	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file"})
		return "", nil, false
	}
	return header.Filename, data, true
}

// writeError maps conversion failures to status codes
func writeError(c *gin.Context, err error) {
	var strictErr *converter.StrictError
	switch {
	case errors.Is(err, vox.ErrInvalidFormat), errors.Is(err, converter.ErrNoTempo), errors.As(err, &strictErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
