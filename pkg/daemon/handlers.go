package daemon

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/fm-tuner/tunerd/pkg/config"
	"github.com/fm-tuner/tunerd/pkg/stations"
	"github.com/fm-tuner/tunerd/pkg/tea5767"
	"github.com/fm-tuner/tunerd/pkg/version"
)

func getStatus(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, dispatcher.Snapshot())
}

func getConfig(c *gin.Context) {
	fc, err := config.NewRawFileConfigFromConfig(conf)
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	c.IndentedJSON(http.StatusOK, fc)
}

func getStations(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, stations.All())
}

func getVersion(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, version.Version)
}

// submit pushes a command event through the dispatcher and writes the HTTP
// outcome. Dropped commands map to 409 so clients can tell "busy" from
// "failed".
func submit(c *gin.Context, ev CommandEvent) {
	res, err := dispatcher.Submit(ev)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, ErrBusy):
			status = http.StatusConflict
		case errors.Is(err, ErrNothingTuned):
			status = http.StatusBadRequest
		case errors.Is(err, tea5767.ErrSearchTimeout):
			status = http.StatusGatewayTimeout
		}
		c.IndentedJSON(status, err.Error())
		_ = c.AbortWithError(status, err)
		return
	}

	c.IndentedJSON(http.StatusOK, res)
}

type seekRequest struct {
	Direction string `json:"direction"`
}

func postSeek(c *gin.Context) {
	var req seekRequest
	if err := c.BindJSON(&req); err != nil {
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	switch req.Direction {
	case "up":
		submit(c, CommandEvent{Kind: SeekUp})
	case "down":
		submit(c, CommandEvent{Kind: SeekDown})
	default:
		err := fmt.Errorf("direction must be up or down, got %q", req.Direction)
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
	}
}

type tuneRequest struct {
	Station      string  `json:"station,omitempty"`
	FrequencyMHz float64 `json:"frequencyMHz,omitempty"`
}

func postTune(c *gin.Context) {
	var req tuneRequest
	if err := c.BindJSON(&req); err != nil {
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	if req.Station != "" {
		if _, ok := stations.ByID(req.Station); !ok {
			err := stations.ErrUnknown(req.Station)
			c.IndentedJSON(http.StatusNotFound, err.Error())
			_ = c.AbortWithError(http.StatusNotFound, err)
			return
		}
		submit(c, CommandEvent{Kind: TuneStation, StationID: req.Station})
		return
	}

	if req.FrequencyMHz <= 0 {
		err := fmt.Errorf("need either a station id or a positive frequency")
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}
	submit(c, CommandEvent{Kind: TuneFrequency, FrequencyMHz: req.FrequencyMHz})
}

type stepRequest struct {
	Direction   string `json:"direction"`
	Granularity string `json:"granularity"` // coarse (1.0 MHz) or fine (0.1 MHz)
}

func postStep(c *gin.Context) {
	var req stepRequest
	if err := c.BindJSON(&req); err != nil {
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	var kind EventKind
	switch {
	case req.Direction == "up" && req.Granularity == "coarse":
		kind = StepUpCoarse
	case req.Direction == "up" && req.Granularity == "fine":
		kind = StepUpFine
	case req.Direction == "down" && req.Granularity == "coarse":
		kind = StepDownCoarse
	case req.Direction == "down" && req.Granularity == "fine":
		kind = StepDownFine
	default:
		err := fmt.Errorf("want direction up/down and granularity coarse/fine, got %q/%q", req.Direction, req.Granularity)
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	submit(c, CommandEvent{Kind: kind})
}

func postSave(c *gin.Context) {
	submit(c, CommandEvent{Kind: SavePreset})
}

func putMute(c *gin.Context) {
	var on bool
	if err := c.BindJSON(&on); err != nil {
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	kind := MuteOff
	if on {
		kind = MuteOn
	}
	submit(c, CommandEvent{Kind: kind})
}

func putDefaultFrequency(c *gin.Context) {
	var mhz float64
	if err := c.BindJSON(&mhz); err != nil {
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	band, err := tea5767.ParseBand(conf.Band())
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	lo, hi := band.Limits()
	if mhz < lo || mhz > hi {
		err := fmt.Errorf("%.1f MHz is outside the %s band (%.1f-%.1f)", mhz, band, lo, hi)
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	conf.SetDefaultFrequencyMHz(mhz)
	if err := conf.Save(); err != nil {
		c.IndentedJSON(http.StatusInternalServerError, err.Error())
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}

	logrus.WithFields(logrus.Fields{
		"frequencyMHz": mhz,
	}).Info("default frequency changed")
	c.IndentedJSON(http.StatusOK, "ok")
}

func putSeekWrap(c *gin.Context) {
	var on bool
	if err := c.BindJSON(&on); err != nil {
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	conf.SetWrapOnBandEdge(on)
	if err := conf.Save(); err != nil {
		c.IndentedJSON(http.StatusInternalServerError, err.Error())
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}

	// The running controller keeps its wrap setting; the new value applies
	// from the next daemon start.
	logrus.WithFields(logrus.Fields{
		"wrapOnBandEdge": on,
	}).Info("seek wrap policy changed, effective on next daemon start")
	c.IndentedJSON(http.StatusOK, "ok")
}

// getEvents streams tuner events as SSE until the client goes away.
func getEvents(c *gin.Context) {
	sub := hub.Subscribe()
	defer sub.Close()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")

	c.Stream(func(_ io.Writer) bool {
		select {
		case ev, ok := <-sub.C:
			if !ok {
				return false
			}
			c.SSEvent(ev.Name, string(ev.Data))
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

type scheduleRequest struct {
	Cron    string `json:"cron"`
	Station string `json:"station"`
}

func getSchedule(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, scheduler.Status())
}

func putSchedule(c *gin.Context) {
	var req scheduleRequest
	if err := c.BindJSON(&req); err != nil {
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	if _, ok := stations.ByID(req.Station); !ok {
		err := stations.ErrUnknown(req.Station)
		c.IndentedJSON(http.StatusNotFound, err.Error())
		_ = c.AbortWithError(http.StatusNotFound, err)
		return
	}

	if err := scheduler.Schedule(req.Cron, req.Station); err != nil {
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	logrus.WithFields(logrus.Fields{
		"cron":    req.Cron,
		"station": req.Station,
	}).Info("schedule set")
	c.IndentedJSON(http.StatusCreated, scheduler.Status())
}

func deleteSchedule(c *gin.Context) {
	scheduler.Clear()
	c.IndentedJSON(http.StatusOK, "ok")
}

type postponeRequest struct {
	Duration string `json:"duration"` // Go duration string, e.g. "1h"
}

func postSchedulePostpone(c *gin.Context) {
	var req postponeRequest
	if err := c.BindJSON(&req); err != nil {
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	d, err := time.ParseDuration(req.Duration)
	if err != nil || d <= 0 {
		err := fmt.Errorf("want a positive duration like 1h or 90m, got %q", req.Duration)
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	if err := scheduler.Postpone(d); err != nil {
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}
	c.IndentedJSON(http.StatusOK, scheduler.Status())
}

func postScheduleSkip(c *gin.Context) {
	if err := scheduler.Skip(); err != nil {
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}
	c.IndentedJSON(http.StatusOK, scheduler.Status())
}
