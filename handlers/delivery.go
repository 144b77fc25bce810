package handlers

import (
	"net/http"

	"logistics-api/models"
	"logistics-api/services"

	"github.com/gin-gonic/gin"
)

type AddTrackRequest struct {
	TrackNode    string `json:"track_node" binding:"required,max=50"`
	TrackAddress string `json:"track_address" binding:"max=200"`
}

type TaskQuery struct {
	TaskStatus models.TaskStatus `form:"task_status" binding:"omitempty,oneof=delivering completed cancelled"`
}

// GetMyTasks lists the driver's own delivery tasks
func (h *Handler) GetMyTasks(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	var q TaskQuery
	if !bindQuery(c, &q) {
		return
	}
	tasks, err := h.deliveries.MyTasks(c.Request.Context(), who, q.TaskStatus)
	if err != nil {
		h.respondError(c, err, "Task not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(tasks), "tasks": tasks})
}

// GetMyStats returns the driver's task counts and completion rate
func (h *Handler) GetMyStats(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	stats, err := h.deliveries.MyStats(c.Request.Context(), who)
	if err != nil {
		h.respondError(c, err, "Task not found")
		return
	}
	c.JSON(http.StatusOK, stats)
}

// AddTrack reports delivery progress on one of the driver's tasks
func (h *Handler) AddTrack(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req AddTrackRequest
	if !bind(c, &req) {
		return
	}
	track, err := h.deliveries.AddTrack(c.Request.Context(), who, id, services.TrackInput{
		Node:    req.TrackNode,
		Address: req.TrackAddress,
	})
	if err != nil {
		h.respondError(c, err, "Task not found")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Track recorded", "track": track})
}

// GetOrderTracks returns the delivery progress of a visible order
func (h *Handler) GetOrderTracks(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	tracks, err := h.deliveries.Tracks(c.Request.Context(), who, id)
	if err != nil {
		h.respondError(c, err, orderNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(tracks), "tracks": tracks})
}
