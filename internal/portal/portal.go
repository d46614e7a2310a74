// Package portal serves the device's web interface: the settings form in
// configuration mode, and the read-only data page in station mode. Submitted
// settings are validated and persisted by the config store before a reboot
// is queued.
package portal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/sweeney/soil-sensor/internal/config"
	"github.com/sweeney/soil-sensor/internal/status"
)

// Server serves the portal over HTTP.
type Server struct {
	httpServer *http.Server
	tracker    *status.Tracker
	store      *config.Store
	configMode bool
	reboot     func()
	log        zerolog.Logger
}

// New creates a Server. configMode selects the settings form as the landing
// page; reboot is called after a successful save has been persisted, and
// queues the restart for the top of the next control-loop cycle.
func New(addr string, tracker *status.Tracker, store *config.Store, configMode bool, reboot func(), log zerolog.Logger) *Server {
	s := &Server{
		tracker:    tracker,
		store:      store,
		configMode: configMode,
		reboot:     reboot,
		log:        log,
	}

	r := mux.NewRouter()
	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	r.HandleFunc("/config", s.handleForm).Methods(http.MethodGet)
	r.HandleFunc("/save", s.handleSave).Methods(http.MethodPost)
	r.HandleFunc("/index.json", s.handleJSON).Methods(http.MethodGet)

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: r,
	}
	return s
}

// ListenAndServe starts listening. It blocks until the server is shut down.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Serve accepts connections on the given listener. Useful for tests.
func (s *Server) Serve(ln net.Listener) error {
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if s.configMode {
		s.renderForm(w, http.StatusOK, "")
		return
	}
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	renderData(w, snap, s.store.Current())
}

func (s *Server) handleForm(w http.ResponseWriter, r *http.Request) {
	s.renderForm(w, http.StatusOK, "")
}

func (s *Server) handleJSON(w http.ResponseWriter, r *http.Request) {
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	w.Write(status.FormatJSON(snap))
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderForm(w, http.StatusBadRequest, "Malformed form submission.")
		return
	}

	u, err := updateFromForm(r)
	if err != nil {
		s.renderForm(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	saved, err := s.store.ValidateAndApply(u)
	if err != nil {
		var ve *config.ValidationError
		if errors.As(err, &ve) {
			s.renderForm(w, http.StatusUnprocessableEntity, ve.Msg)
			return
		}
		// Persistence failed: the new settings exist nowhere durable yet,
		// so hold the error on the page and do NOT reboot.
		s.log.Error().Err(err).Msg("settings persist failed")
		s.renderForm(w, http.StatusInternalServerError,
			"Settings could NOT be saved to storage: "+err.Error()+". Device was not rebooted.")
		return
	}

	s.refreshDisplayConfig(saved)
	s.log.Info().Msg("settings saved, queueing reboot")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	renderConfirm(w)
	s.reboot()
}

// refreshDisplayConfig folds the saved settings into the tracker so the
// status endpoints show them before the queued reboot lands. Daemon-level
// fields (poll interval, listen address) are not part of a save and stay
// as they were.
func (s *Server) refreshDisplayConfig(c config.Configuration) {
	sc := s.tracker.Snapshot().Config
	sc.DryReading = c.DryReading
	sc.WetReading = c.WetReading
	sc.SensorType = string(c.SensorType)
	sc.TempUnit = string(c.TempUnit)
	sc.Brightness = c.Brightness
	sc.Broker = ""
	if c.MQTTHost != "" {
		sc.Broker = fmt.Sprintf("tcp://%s:%d", c.MQTTHost, c.MQTTPort)
	}
	s.tracker.SetConfig(sc)
}

func (s *Server) renderForm(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	renderFormHTML(w, s.store.Current(), s.tracker.Snapshot().DeviceID, msg)
}

// updateFromForm builds a partial update from the submitted fields. Blank
// text fields become nil (leave unchanged); numeric fields must parse when
// present.
func updateFromForm(r *http.Request) (config.Update, error) {
	var u config.Update

	if v := r.PostForm.Get("ssid"); v != "" {
		u.WifiSSID = &v
	}
	if v := r.PostForm.Get("password"); v != "" {
		u.WifiPassword = &v
	}
	if v := r.PostForm.Get("sensor_type"); v != "" {
		st := config.SensorType(v)
		u.SensorType = &st
	}

	var err error
	if u.DryReading, err = intField(r, "dry"); err != nil {
		return config.Update{}, err
	}
	if u.WetReading, err = intField(r, "wet"); err != nil {
		return config.Update{}, err
	}
	if u.Brightness, err = intField(r, "brightness"); err != nil {
		return config.Update{}, err
	}
	if u.MQTTPort, err = intField(r, "mqtt_port"); err != nil {
		return config.Update{}, err
	}

	// Checkbox: present means enabled, absent means disabled. The form
	// always renders it, so this is a full (not partial) field.
	enabled := r.PostForm.Get("dht_enabled") != ""
	u.DHTEnabled = &enabled

	if v := r.PostForm.Get("temp_unit"); v != "" {
		tu := config.TempUnit(v)
		u.TempUnit = &tu
	}
	if v := r.PostForm.Get("mqtt_host"); v != "" {
		u.MQTTHost = &v
	}
	if v := r.PostForm.Get("mqtt_user"); v != "" {
		u.MQTTUsername = &v
	}
	if v := r.PostForm.Get("mqtt_pass"); v != "" {
		u.MQTTPassword = &v
	}

	return u, nil
}

func intField(r *http.Request, name string) (*int, error) {
	v := r.PostForm.Get(name)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, errors.New("field " + name + " must be a whole number")
	}
	return &n, nil
}
