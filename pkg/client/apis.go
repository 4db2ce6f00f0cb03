package client

import (
	"encoding/json"
	"fmt"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/fm-tuner/tunerd/pkg/config"
	"github.com/fm-tuner/tunerd/pkg/daemon"
	"github.com/fm-tuner/tunerd/pkg/stations"
)

func (c *Client) GetStatus() (*daemon.Status, error) {
	ret, err := c.Get("/status")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get tuner status")
	}

	var st daemon.Status
	if err := json.Unmarshal([]byte(ret), &st); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal tuner status")
	}
	return &st, nil
}

func (c *Client) Seek(direction string) (*daemon.Result, error) {
	return c.postCommand("/seek", map[string]any{"direction": direction})
}

func (c *Client) TuneFrequency(mhz float64) (*daemon.Result, error) {
	return c.postCommand("/tune", map[string]any{"frequencyMHz": mhz})
}

func (c *Client) TuneStation(id string) (*daemon.Result, error) {
	return c.postCommand("/tune", map[string]any{"station": id})
}

func (c *Client) Step(direction, granularity string) (*daemon.Result, error) {
	return c.postCommand("/step", map[string]any{
		"direction":   direction,
		"granularity": granularity,
	})
}

func (c *Client) Save() (*daemon.Result, error) {
	return c.postCommand("/save", nil)
}

func (c *Client) SetMute(on bool) (string, error) {
	payload, err := json.Marshal(on)
	if err != nil {
		return "", err
	}
	return c.Put("/mute", string(payload))
}

func (c *Client) SetDefaultFrequency(mhz float64) (string, error) {
	payload, err := json.Marshal(mhz)
	if err != nil {
		return "", err
	}
	return c.Put("/default-frequency", string(payload))
}

func (c *Client) SetSeekWrap(enabled bool) (string, error) {
	payload, err := json.Marshal(enabled)
	if err != nil {
		return "", err
	}
	return c.Put("/seek-wrap", string(payload))
}

func (c *Client) GetStations() ([]stations.Station, error) {
	ret, err := c.Get("/stations")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get station table")
	}

	var list []stations.Station
	if err := json.Unmarshal([]byte(ret), &list); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal station table")
	}
	return list, nil
}

func (c *Client) GetConfig() (*config.RawFileConfig, error) {
	ret, err := c.Get("/config")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get config")
	}

	var conf config.RawFileConfig
	if err := json.Unmarshal([]byte(ret), &conf); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal config")
	}
	return &conf, nil
}

func (c *Client) GetVersion() (string, error) {
	ret, err := c.Get("/version")
	if err != nil {
		return "", pkgerrors.Wrapf(err, "failed to get version")
	}
	// Remove "" around JSON string. I don't want to use a JSON decoder just for this.
	ret = ret[1 : len(ret)-1] // remove the surrounding quotes
	return ret, nil
}

// ===== Schedule APIs =====

func (c *Client) GetSchedule() (*daemon.ScheduleStatus, error) {
	ret, err := c.Get("/schedule")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get schedule")
	}

	var st daemon.ScheduleStatus
	if err := json.Unmarshal([]byte(ret), &st); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal schedule")
	}
	return &st, nil
}

func (c *Client) SetSchedule(cronExpr, station string) (*daemon.ScheduleStatus, error) {
	payload, err := json.Marshal(map[string]string{
		"cron":    cronExpr,
		"station": station,
	})
	if err != nil {
		return nil, err
	}

	ret, err := c.Put("/schedule", string(payload))
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to set schedule")
	}

	var st daemon.ScheduleStatus
	if err := json.Unmarshal([]byte(ret), &st); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal schedule")
	}
	return &st, nil
}

func (c *Client) ClearSchedule() (string, error) {
	return c.Delete("/schedule")
}

func (c *Client) PostponeSchedule(d time.Duration) (*daemon.ScheduleStatus, error) {
	payload, err := json.Marshal(map[string]string{"duration": d.String()})
	if err != nil {
		return nil, err
	}

	ret, err := c.Post("/schedule/postpone", string(payload))
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to postpone schedule")
	}

	var st daemon.ScheduleStatus
	if err := json.Unmarshal([]byte(ret), &st); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal schedule")
	}
	return &st, nil
}

func (c *Client) SkipSchedule() (*daemon.ScheduleStatus, error) {
	ret, err := c.Post("/schedule/skip", "")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to skip schedule")
	}

	var st daemon.ScheduleStatus
	if err := json.Unmarshal([]byte(ret), &st); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal schedule")
	}
	return &st, nil
}

func (c *Client) postCommand(path string, body map[string]any) (*daemon.Result, error) {
	data := ""
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		data = string(b)
	}

	ret, err := c.Post(path, data)
	if err != nil {
		return nil, err
	}

	var res daemon.Result
	if err := json.Unmarshal([]byte(ret), &res); err != nil {
		return nil, fmt.Errorf("failed to unmarshal command result: %w", err)
	}
	return &res, nil
}
