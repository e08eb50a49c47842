package handler

import (
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/palmto/trajgen-backend-go/internal/models"
	"github.com/palmto/trajgen-backend-go/internal/spatial"
	"github.com/palmto/trajgen-backend-go/internal/storage"
	"github.com/palmto/trajgen-backend-go/pkg/response"
)

// pointInterval is the assumed recording interval between consecutive
// trajectory points
const pointInterval = 15 * time.Second

// FileHandler serves media files and the 3D trajectory view
type FileHandler struct {
	media *storage.Media
}

// NewFileHandler creates a new file handler
func NewFileHandler(media *storage.Media) *FileHandler {
	return &FileHandler{media: media}
}

// Download serves a media file as an attachment, searching the media root
// and the generated, matched and cache subdirectories
// GET /api/v1/trajectory/download/:filename
func (h *FileHandler) Download(c *gin.Context) {
	filename := c.Param("filename")

	path, err := h.media.Resolve(filename)
	if err != nil {
		response.NotFound(c, fmt.Sprintf("File %s not found", filename))
		return
	}

	c.FileAttachment(path, filename)
}

// Trajectory3D prepares a trajectory file for the timestamped 3D trail
// view. Epoch timestamps are reconstructed into the local wall-clock time of
// the study area's time zone; consecutive points are spaced at the recording
// interval.
// GET /api/v1/trajectory/3d?filename=...
func (h *FileHandler) Trajectory3D(c *gin.Context) {
	filename := c.DefaultQuery("filename", "demo.csv")

	path, err := h.media.Resolve(filename)
	if err != nil {
		response.NotFound(c, fmt.Sprintf("File %s not found", filename))
		return
	}

	trajs, err := storage.ReadTrajectories(path)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	boundary, err := spatial.ExtractBoundary(models.Points(trajs))
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	lat, lon := boundary.Centroid()
	if _, err := spatial.LocationFor(lon, lat); err != nil {
		if errors.Is(err, spatial.ErrTimezoneNotFound) {
			response.BadRequest(c, "No timezone covers the study area")
			return
		}
		response.InternalError(c, err.Error())
		return
	}

	interval := int64(pointInterval / time.Second)
	fc := models.NewFeatureCollection()
	for _, traj := range trajs {
		coords := make([][]interface{}, 0, len(traj.Geometry))
		for i, p := range traj.Geometry {
			stamp, err := spatial.ResolveLocalTime(lon, lat, traj.Timestamp+int64(i)*interval)
			if err != nil {
				response.InternalError(c, err.Error())
				return
			}
			coords = append(coords, []interface{}{p.Lon, p.Lat, stamp})
		}

		fc.Features = append(fc.Features, models.Feature{
			Type: "Feature",
			Properties: map[string]interface{}{
				"trajectory_id": traj.TripID,
				"start_time":    coords[0][2],
				"end_time":      coords[len(coords)-1][2],
			},
			Geometry: models.Geometry{
				Type:        "LineString",
				Coordinates: coords,
			},
		})
	}

	c.JSON(200, fc)
}
